package domain

type EventKind string

const (
	EventPhaseChanged     EventKind = "phase_changed"
	EventBreathTick       EventKind = "breath_tick"
	EventCycleCompleted   EventKind = "cycle_completed"
	EventClockTick        EventKind = "clock_tick"
	EventPostureAlert     EventKind = "posture_alert"
	EventEyeAlert         EventKind = "eye_alert"
	EventSessionCompleted EventKind = "session_completed"
)

// Event is published by the controller for rendering and audio subscribers.
// Only the fields relevant to the kind are populated.
type Event struct {
	Kind             EventKind
	Phase            BreathPhase
	RemainingSeconds int
	ElapsedSeconds   int
	CycleCount       int
	Severity         string
	Summary          Summary
}
