package domain

// Nostril identifies one side of the nose.
type Nostril string

const (
	NostrilLeft  Nostril = "left"
	NostrilRight Nostril = "right"
)

// BreathAction is the direction of airflow in a phase.
type BreathAction string

const (
	ActionInhale BreathAction = "inhale"
	ActionExhale BreathAction = "exhale"
)

// BreathPhase is one of the four fixed sub-steps of an alternate-nostril
// breathing cycle. The order is fixed: right-in, left-out, left-in,
// right-out, then the cycle wraps.
type BreathPhase int

const (
	PhaseRightIn BreathPhase = iota
	PhaseLeftOut
	PhaseLeftIn
	PhaseRightOut
	phaseCount
)

func (p BreathPhase) String() string {
	switch p {
	case PhaseRightIn:
		return "right-in"
	case PhaseLeftOut:
		return "left-out"
	case PhaseLeftIn:
		return "left-in"
	case PhaseRightOut:
		return "right-out"
	default:
		return "unknown"
	}
}

func (p BreathPhase) Action() BreathAction {
	if p == PhaseRightIn || p == PhaseLeftIn {
		return ActionInhale
	}
	return ActionExhale
}

// ActiveNostril is the nostril air moves through during this phase.
func (p BreathPhase) ActiveNostril() Nostril {
	if p == PhaseRightIn || p == PhaseRightOut {
		return NostrilRight
	}
	return NostrilLeft
}

// BlockedNostril is the nostril held closed during this phase.
func (p BreathPhase) BlockedNostril() Nostril {
	if p.ActiveNostril() == NostrilRight {
		return NostrilLeft
	}
	return NostrilRight
}

// Instruction is the user-facing cue for the phase.
func (p BreathPhase) Instruction() string {
	switch p {
	case PhaseRightIn:
		return "Block your left nostril, inhale through the right"
	case PhaseLeftOut:
		return "Block your right nostril, exhale through the left"
	case PhaseLeftIn:
		return "Block your right nostril, inhale through the left"
	case PhaseRightOut:
		return "Block your left nostril, exhale through the right"
	default:
		return ""
	}
}

// PhaseSequencer walks the fixed four-phase cycle. Deterministic, no I/O.
type PhaseSequencer struct {
	current BreathPhase
}

func NewPhaseSequencer() *PhaseSequencer {
	return &PhaseSequencer{current: PhaseRightIn}
}

func (s *PhaseSequencer) Current() BreathPhase {
	return s.current
}

// Advance moves to the next phase and reports whether a full cycle just
// closed, which is exactly when the new phase is right-in. The caller owns
// the cycle counter.
func (s *PhaseSequencer) Advance() (BreathPhase, bool) {
	s.current = (s.current + 1) % phaseCount
	return s.current, s.current == PhaseRightIn
}

func (s *PhaseSequencer) Reset() {
	s.current = PhaseRightIn
}
