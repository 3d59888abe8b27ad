package service

import (
	"sync"
	"time"

	detectdomain "nadi/internal/modules/detect/domain"
	"nadi/internal/modules/session/domain"
	sessionout "nadi/internal/modules/session/port/out"
	"nadi/internal/platform/clock"
	apperrors "nadi/internal/platform/errors"
	"nadi/internal/platform/timer"
)

// phaseTransitionDelay separates the end of one breath countdown from the
// start of the next phase's countdown.
const phaseTransitionDelay = 500 * time.Millisecond

// Controller is the session state machine: Idle -> Running <-> Paused ->
// Completed. It owns the phase sequencer, the session clock and the score
// window, and drives them through two recurring timers plus the one-shot
// phase-transition delay.
//
// All state lives behind one mutex. Every scheduled callback carries the
// tokens current at arming time and is discarded under the lock once they
// have moved on, so a cancelled timer can never mutate state late: epoch
// rotates on pause and stop, and the countdown token additionally rotates
// when a countdown cancels itself at expiry. Events are queued under the
// lock and handed to the sink only after it is released.
type Controller struct {
	mu        sync.Mutex
	scheduler timer.Scheduler
	clk       clock.Clock
	sink      sessionout.EventSink

	status    domain.Status
	config    domain.Config
	policy    detectdomain.FeedbackPolicy
	sequencer *domain.PhaseSequencer
	clock     *domain.SessionClock
	window    *domain.ScoreWindow

	cycleCount int
	remaining  int
	startedAt  time.Time

	epoch        uint64
	breathEpoch  uint64
	cancelBreath timer.Cancel
	cancelDelay  timer.Cancel
	cancelClock  timer.Cancel

	pending []domain.Event
}

func NewController(scheduler timer.Scheduler, clk clock.Clock, sink sessionout.EventSink) *Controller {
	return &Controller{
		scheduler: scheduler,
		clk:       clk,
		sink:      sink,
		status:    domain.StatusIdle,
		sequencer: domain.NewPhaseSequencer(),
		clock:     domain.NewSessionClock(),
		window:    domain.NewScoreWindow(),
	}
}

// Start validates the config and moves Idle (or an acknowledged Completed)
// into Running. Validation failures leave all state untouched.
func (c *Controller) Start(cfg domain.Config, policy detectdomain.FeedbackPolicy) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.unlockAndFlush()
	if c.status == domain.StatusRunning || c.status == domain.StatusPaused {
		return apperrors.ErrSessionActive
	}
	c.config = cfg
	c.policy = policy
	c.sequencer.Reset()
	c.clock.Start(cfg.SessionSeconds)
	c.window.Reset()
	c.cycleCount = 0
	c.startedAt = c.clk.Now()
	c.status = domain.StatusRunning
	c.startPhaseLocked()
	c.armClockLocked()
	return nil
}

// Pause freezes the breath countdown and the session clock. No-op unless
// Running.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != domain.StatusRunning {
		return
	}
	c.cancelTimersLocked()
	c.cancelClockTimerLocked()
	c.clock.Pause()
	c.status = domain.StatusPaused
}

// Resume restarts the breath countdown from the full configured breath
// duration for the current phase and lets the session clock advance again.
// The partial countdown from before the pause is deliberately not preserved.
func (c *Controller) Resume() {
	c.mu.Lock()
	defer c.unlockAndFlush()
	if c.status != domain.StatusPaused {
		return
	}
	c.clock.Resume()
	c.status = domain.StatusRunning
	c.startPhaseLocked()
	c.armClockLocked()
}

// Stop halts all countdown advancement and captures the final summary.
// Returns false when there was nothing to stop.
func (c *Controller) Stop() (domain.Summary, bool) {
	c.mu.Lock()
	defer c.unlockAndFlush()
	if c.status != domain.StatusRunning && c.status != domain.StatusPaused {
		return domain.Summary{}, false
	}
	return c.stopLocked(false), true
}

// Acknowledge returns a Completed controller to Idle.
func (c *Controller) Acknowledge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == domain.StatusCompleted {
		c.status = domain.StatusIdle
	}
}

// ReportDetection feeds one classifier frame into the score window. NoFace
// frames never touch the window; frames outside Running are dropped.
func (c *Controller) ReportDetection(signal detectdomain.Signal) {
	c.mu.Lock()
	defer c.unlockAndFlush()
	if c.status != domain.StatusRunning {
		return
	}
	if !signal.FaceVisible {
		return
	}
	result := detectdomain.Classify(signal, c.policy.MaxDeviation)
	c.window.Record(result.Score)
	if result.Alert && c.policy.AudioFeedback {
		c.publishLocked(domain.Event{Kind: domain.EventPostureAlert, Severity: string(result.Severity)})
	}
	if signal.EyesOpen && c.policy.EyeAlerts {
		c.publishLocked(domain.Event{Kind: domain.EventEyeAlert})
	}
}

// Snapshot returns a copy of the current session state.
func (c *Controller) Snapshot() domain.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.State{
		Status:                 c.status,
		Phase:                  c.sequencer.Current(),
		Config:                 c.config,
		CycleCount:             c.cycleCount,
		ElapsedSeconds:         c.clock.Elapsed(),
		RemainingBreathSeconds: c.remaining,
		SmoothedScore:          c.window.Current(),
	}
}

// ─── internals ───────────────────────────────────────────────────────────────

// startPhaseLocked arms a fresh full-length countdown for the current phase.
func (c *Controller) startPhaseLocked() {
	c.remaining = c.config.BreathSeconds
	c.publishLocked(domain.Event{
		Kind:             domain.EventPhaseChanged,
		Phase:            c.sequencer.Current(),
		RemainingSeconds: c.remaining,
	})
	c.breathEpoch++
	epoch, breathEpoch := c.epoch, c.breathEpoch
	c.cancelBreath = c.scheduler.Every(time.Second, func() { c.onBreathTick(epoch, breathEpoch) })
}

func (c *Controller) armClockLocked() {
	epoch := c.epoch
	c.cancelClock = c.scheduler.Every(time.Second, func() { c.onClockTick(epoch) })
}

func (c *Controller) onBreathTick(epoch, breathEpoch uint64) {
	c.mu.Lock()
	defer c.unlockAndFlush()
	if epoch != c.epoch || breathEpoch != c.breathEpoch || c.status != domain.StatusRunning {
		return
	}
	c.remaining--
	if c.remaining > 0 {
		c.publishLocked(domain.Event{
			Kind:             domain.EventBreathTick,
			Phase:            c.sequencer.Current(),
			RemainingSeconds: c.remaining,
		})
		return
	}
	c.remaining = 0
	if c.cancelBreath != nil {
		c.cancelBreath()
		c.cancelBreath = nil
	}
	// The just-cancelled ticker may still deliver a late tick; rotating the
	// countdown token makes it a no-op.
	c.breathEpoch++
	c.publishLocked(domain.Event{
		Kind:             domain.EventBreathTick,
		Phase:            c.sequencer.Current(),
		RemainingSeconds: 0,
	})
	_, cycleCompleted := c.sequencer.Advance()
	if cycleCompleted {
		c.cycleCount++
		c.publishLocked(domain.Event{Kind: domain.EventCycleCompleted, CycleCount: c.cycleCount})
	}
	delayEpoch, delayBreath := c.epoch, c.breathEpoch
	c.cancelDelay = c.scheduler.After(phaseTransitionDelay, func() { c.onTransitionDelay(delayEpoch, delayBreath) })
}

func (c *Controller) onTransitionDelay(epoch, breathEpoch uint64) {
	c.mu.Lock()
	defer c.unlockAndFlush()
	if epoch != c.epoch || breathEpoch != c.breathEpoch || c.status != domain.StatusRunning {
		return
	}
	c.cancelDelay = nil
	c.startPhaseLocked()
}

func (c *Controller) onClockTick(epoch uint64) {
	c.mu.Lock()
	defer c.unlockAndFlush()
	if epoch != c.epoch || c.status != domain.StatusRunning {
		return
	}
	elapsed, expired := c.clock.Tick()
	c.publishLocked(domain.Event{Kind: domain.EventClockTick, ElapsedSeconds: elapsed})
	if expired {
		c.stopLocked(true)
	}
}

func (c *Controller) stopLocked(expired bool) domain.Summary {
	c.cancelTimersLocked()
	c.cancelClockTimerLocked()
	summary := domain.Summary{
		StartedAt:      c.startedAt,
		EndedAt:        c.clk.Now(),
		ElapsedSeconds: c.clock.Elapsed(),
		CycleCount:     c.cycleCount,
		FinalScore:     c.window.Current(),
		Config:         c.config,
		Expired:        expired,
	}
	c.status = domain.StatusCompleted
	c.publishLocked(domain.Event{
		Kind:           domain.EventSessionCompleted,
		ElapsedSeconds: summary.ElapsedSeconds,
		CycleCount:     summary.CycleCount,
		Summary:        summary,
	})
	return summary
}

// cancelTimersLocked invalidates every outstanding callback and cancels the
// breath countdown and transition delay.
func (c *Controller) cancelTimersLocked() {
	c.epoch++
	if c.cancelBreath != nil {
		c.cancelBreath()
		c.cancelBreath = nil
	}
	if c.cancelDelay != nil {
		c.cancelDelay()
		c.cancelDelay = nil
	}
}

func (c *Controller) cancelClockTimerLocked() {
	if c.cancelClock != nil {
		c.cancelClock()
		c.cancelClock = nil
	}
}

func (c *Controller) publishLocked(event domain.Event) {
	c.pending = append(c.pending, event)
}

// unlockAndFlush releases the state lock, then delivers the events queued
// during the critical section in order. The sink runs outside the lock and
// may call back into the controller.
func (c *Controller) unlockAndFlush() {
	events := c.pending
	c.pending = nil
	c.mu.Unlock()
	if c.sink == nil {
		return
	}
	for _, event := range events {
		c.sink.Publish(event)
	}
}
