package service_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	detectdomain "nadi/internal/modules/detect/domain"
	"nadi/internal/modules/session/domain"
	"nadi/internal/modules/session/service"
	"nadi/internal/platform/timer"
)

// fakeScheduler hands timer firing to the test. Recurring tasks fire on
// every Tick call; one-shot tasks fire once via FirePending. Cancelled tasks
// stay visible so tests can simulate imperfect cancellation by invoking
// their callbacks directly.
type fakeScheduler struct {
	mu    sync.Mutex
	tasks []*fakeTask
}

type fakeTask struct {
	fn      func()
	oneShot bool
	active  bool
}

func (s *fakeScheduler) Every(_ time.Duration, fn func()) timer.Cancel {
	return s.add(&fakeTask{fn: fn, active: true})
}

func (s *fakeScheduler) After(_ time.Duration, fn func()) timer.Cancel {
	return s.add(&fakeTask{fn: fn, oneShot: true, active: true})
}

func (s *fakeScheduler) add(task *fakeTask) timer.Cancel {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, task)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		task.active = false
	}
}

// Tick simulates one elapsed second: every active recurring task fires once.
func (s *fakeScheduler) Tick() {
	for _, task := range s.snapshot() {
		if !task.oneShot && s.isActive(task) {
			task.fn()
		}
	}
}

// FirePending fires active one-shot tasks once.
func (s *fakeScheduler) FirePending() {
	for _, task := range s.snapshot() {
		if task.oneShot && s.isActive(task) {
			s.mu.Lock()
			task.active = false
			s.mu.Unlock()
			task.fn()
		}
	}
}

// LastOneShot returns the most recently armed one-shot, fired or not.
func (s *fakeScheduler) LastOneShot() *fakeTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.tasks) - 1; i >= 0; i-- {
		if s.tasks[i].oneShot {
			return s.tasks[i]
		}
	}
	return nil
}

func (s *fakeScheduler) oneShotCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, task := range s.tasks {
		if task.oneShot {
			n++
		}
	}
	return n
}

func (s *fakeScheduler) snapshot() []*fakeTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*fakeTask, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *fakeScheduler) isActive(task *fakeTask) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return task.active
}

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

type recordingSink struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *recordingSink) Publish(event domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingSink) count(kind domain.EventKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func (r *recordingSink) last(kind domain.EventKind) (domain.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Kind == kind {
			return r.events[i], true
		}
	}
	return domain.Event{}, false
}

func newController() (*service.Controller, *fakeScheduler, *recordingSink) {
	sched := &fakeScheduler{}
	sink := &recordingSink{}
	clk := &fakeClock{now: time.Date(2026, 8, 23, 7, 0, 0, 0, time.UTC)}
	return service.NewController(sched, clk, sink), sched, sink
}

func start(t *testing.T, c *service.Controller, cfg domain.Config, policy detectdomain.FeedbackPolicy) {
	t.Helper()
	if err := c.Start(cfg, policy); err != nil {
		t.Fatalf("start: %v", err)
	}
}

func TestStartRejectsInvalidConfigAndStaysIdle(t *testing.T) {
	t.Parallel()
	c, sched, _ := newController()
	err := c.Start(domain.Config{BreathSeconds: 0, SessionSeconds: 300}, detectdomain.DefaultFeedbackPolicy())
	if !errors.Is(err, domain.ErrInvalidConfig) {
		t.Fatalf("got %v, want ErrInvalidConfig", err)
	}
	if got := c.Snapshot().Status; got != domain.StatusIdle {
		t.Fatalf("status %s, want idle", got)
	}
	if len(sched.snapshot()) != 0 {
		t.Fatal("no timers may be armed after a rejected start")
	}
}

func TestStartThenImmediateStopYieldsZeroSummary(t *testing.T) {
	t.Parallel()
	c, _, _ := newController()
	start(t, c, domain.DefaultConfig(), detectdomain.DefaultFeedbackPolicy())
	summary, ok := c.Stop()
	if !ok {
		t.Fatal("stop must report a stopped session")
	}
	if summary.ElapsedSeconds != 0 || summary.CycleCount != 0 {
		t.Fatalf("summary %+v, want zero elapsed and cycles", summary)
	}
	if summary.FinalScore != domain.ScoreUnknown {
		t.Fatalf("final score %d, want unknown", summary.FinalScore)
	}
	if summary.Expired {
		t.Fatal("manual stop must not be marked expired")
	}
}

func TestBreathCountdownAdvancesPhasesAndCountsCycles(t *testing.T) {
	t.Parallel()
	c, sched, sink := newController()
	start(t, c, domain.Config{BreathSeconds: 2, SessionSeconds: 600}, detectdomain.DefaultFeedbackPolicy())

	wantPhases := []domain.BreathPhase{
		domain.PhaseLeftOut,
		domain.PhaseLeftIn,
		domain.PhaseRightOut,
		domain.PhaseRightIn,
	}
	for _, want := range wantPhases {
		sched.Tick()
		sched.Tick()
		sched.FirePending()
		if got := c.Snapshot().Phase; got != want {
			t.Fatalf("phase %s, want %s", got, want)
		}
	}

	snap := c.Snapshot()
	if snap.CycleCount != 1 {
		t.Fatalf("cycle count %d, want 1 after full traversal", snap.CycleCount)
	}
	if sink.count(domain.EventCycleCompleted) != 1 {
		t.Fatalf("cycleCompleted events %d, want 1", sink.count(domain.EventCycleCompleted))
	}
	if event, ok := sink.last(domain.EventPhaseChanged); !ok || event.RemainingSeconds != 2 {
		t.Fatalf("phaseChanged must carry the full countdown, got %+v", event)
	}
}

func TestSessionClockExpiryAutoCompletes(t *testing.T) {
	t.Parallel()
	c, sched, sink := newController()
	start(t, c, domain.Config{BreathSeconds: 4, SessionSeconds: 8}, detectdomain.DefaultFeedbackPolicy())

	for i := 0; i < 8; i++ {
		sched.Tick()
		sched.FirePending()
	}

	snap := c.Snapshot()
	if snap.Status != domain.StatusCompleted {
		t.Fatalf("status %s, want completed after clock expiry", snap.Status)
	}
	event, ok := sink.last(domain.EventSessionCompleted)
	if !ok {
		t.Fatal("missing sessionCompleted event")
	}
	if event.ElapsedSeconds != 8 || event.Summary.ElapsedSeconds != 8 {
		t.Fatalf("sessionCompleted elapsed %d/%d, want 8", event.ElapsedSeconds, event.Summary.ElapsedSeconds)
	}
	if !event.Summary.Expired {
		t.Fatal("auto-completed session must be marked expired")
	}
	// Completed acknowledges back to idle and allows a fresh start.
	c.Acknowledge()
	if got := c.Snapshot().Status; got != domain.StatusIdle {
		t.Fatalf("status %s after acknowledge, want idle", got)
	}
}

func TestPauseFreezesClockAndResumeRestartsFullCountdown(t *testing.T) {
	t.Parallel()
	c, sched, _ := newController()
	start(t, c, domain.Config{BreathSeconds: 4, SessionSeconds: 300}, detectdomain.DefaultFeedbackPolicy())

	sched.Tick()
	snap := c.Snapshot()
	if snap.ElapsedSeconds != 1 || snap.RemainingBreathSeconds != 3 {
		t.Fatalf("after one tick: %+v", snap)
	}

	c.Pause()
	sched.Tick()
	sched.Tick()
	snap = c.Snapshot()
	if snap.Status != domain.StatusPaused {
		t.Fatalf("status %s, want paused", snap.Status)
	}
	if snap.ElapsedSeconds != 1 {
		t.Fatalf("paused elapsed %d, want frozen at 1", snap.ElapsedSeconds)
	}

	c.Resume()
	snap = c.Snapshot()
	if snap.RemainingBreathSeconds != 4 {
		t.Fatalf("resume must restart the full countdown, got %d", snap.RemainingBreathSeconds)
	}
	if snap.ElapsedSeconds != 1 {
		t.Fatalf("resume must keep elapsed at 1, got %d", snap.ElapsedSeconds)
	}
	sched.Tick()
	snap = c.Snapshot()
	if snap.ElapsedSeconds != 2 || snap.RemainingBreathSeconds != 3 {
		t.Fatalf("after resume tick: %+v", snap)
	}
}

func TestStaleCallbacksAfterPauseAreNoOps(t *testing.T) {
	t.Parallel()
	c, sched, sink := newController()
	start(t, c, domain.Config{BreathSeconds: 4, SessionSeconds: 300}, detectdomain.DefaultFeedbackPolicy())

	tasks := sched.snapshot()
	c.Pause()
	// Fire the cancelled breath and clock callbacks directly, as a late
	// delivery from an imperfectly cancelled timer would.
	for _, task := range tasks {
		task.fn()
	}
	snap := c.Snapshot()
	if snap.ElapsedSeconds != 0 || snap.RemainingBreathSeconds != 4 {
		t.Fatalf("stale callbacks mutated state: %+v", snap)
	}
	if sink.count(domain.EventClockTick) != 0 {
		t.Fatal("stale clock callback published a tick")
	}
}

func TestLateBreathTickAfterExpiryCannotAdvanceTwice(t *testing.T) {
	t.Parallel()
	c, sched, sink := newController()
	start(t, c, domain.Config{BreathSeconds: 1, SessionSeconds: 300}, detectdomain.DefaultFeedbackPolicy())

	breath := sched.snapshot()[0]
	breath.fn()
	if got := c.Snapshot().Phase; got != domain.PhaseLeftOut {
		t.Fatalf("phase %s after countdown expiry, want left-out", got)
	}

	// The recurring timer delivers once more after cancelling itself, as an
	// imperfectly cancelled ticker would.
	breath.fn()
	snap := c.Snapshot()
	if snap.Phase != domain.PhaseLeftOut {
		t.Fatalf("late tick from the cancelled countdown advanced the phase to %s", snap.Phase)
	}
	if snap.RemainingBreathSeconds != 0 {
		t.Fatalf("late tick moved the countdown to %d", snap.RemainingBreathSeconds)
	}
	if got := sched.oneShotCount(); got != 1 {
		t.Fatalf("transition delays armed %d, want 1", got)
	}
	if got := sink.count(domain.EventCycleCompleted); got != 0 {
		t.Fatalf("cycleCompleted events %d before the cycle closed, want 0", got)
	}

	// The single delay continues into the next phase with a full countdown.
	sched.FirePending()
	snap = c.Snapshot()
	if snap.Phase != domain.PhaseLeftOut || snap.RemainingBreathSeconds != 1 {
		t.Fatalf("after transition delay: %+v, want left-out with full countdown", snap)
	}
}

func TestPauseDuringTransitionDelayCancelsContinuation(t *testing.T) {
	t.Parallel()
	c, sched, sink := newController()
	start(t, c, domain.Config{BreathSeconds: 1, SessionSeconds: 300}, detectdomain.DefaultFeedbackPolicy())

	sched.Tick()
	delay := sched.LastOneShot()
	if delay == nil {
		t.Fatal("countdown expiry must arm a transition delay")
	}

	c.Pause()
	phaseChangesBefore := sink.count(domain.EventPhaseChanged)
	delay.fn()
	if got := sink.count(domain.EventPhaseChanged); got != phaseChangesBefore {
		t.Fatal("late transition delay fired after pause")
	}
	if got := c.Snapshot().Status; got != domain.StatusPaused {
		t.Fatalf("status %s, want paused", got)
	}

	// The advance itself happened before the pause; resume continues from
	// the next phase with a full countdown.
	c.Resume()
	snap := c.Snapshot()
	if snap.Phase != domain.PhaseLeftOut || snap.RemainingBreathSeconds != 1 {
		t.Fatalf("after resume: %+v, want left-out with full countdown", snap)
	}
}

func TestReportDetectionNoFaceNeverMutatesWindow(t *testing.T) {
	t.Parallel()
	c, _, _ := newController()
	start(t, c, domain.DefaultConfig(), detectdomain.DefaultFeedbackPolicy())

	c.ReportDetection(detectdomain.NoFace())
	if got := c.Snapshot().SmoothedScore; got != domain.ScoreUnknown {
		t.Fatalf("no-face signal mutated the window: score %d", got)
	}

	c.ReportDetection(detectdomain.Signal{FaceVisible: true})
	if got := c.Snapshot().SmoothedScore; got != 100 {
		t.Fatalf("centered face must score 100, got %d", got)
	}
	c.ReportDetection(detectdomain.NoFace())
	if got := c.Snapshot().SmoothedScore; got != 100 {
		t.Fatalf("no-face after a sample changed the score to %d", got)
	}
}

func TestReportDetectionIgnoredOutsideRunning(t *testing.T) {
	t.Parallel()
	c, _, _ := newController()
	signal := detectdomain.Signal{FaceVisible: true}

	c.ReportDetection(signal)
	if got := c.Snapshot().SmoothedScore; got != domain.ScoreUnknown {
		t.Fatalf("idle report mutated window: %d", got)
	}

	start(t, c, domain.DefaultConfig(), detectdomain.DefaultFeedbackPolicy())
	c.Pause()
	c.ReportDetection(signal)
	if got := c.Snapshot().SmoothedScore; got != domain.ScoreUnknown {
		t.Fatalf("paused report mutated window: %d", got)
	}

	c.Resume()
	if _, ok := c.Stop(); !ok {
		t.Fatal("stop after resume")
	}
	c.ReportDetection(signal)
	if got := c.Snapshot().SmoothedScore; got != domain.ScoreUnknown {
		t.Fatalf("stale report after stop mutated window: %d", got)
	}
}

func TestAlertsFollowFeedbackPolicy(t *testing.T) {
	t.Parallel()
	poor := detectdomain.Signal{FaceVisible: true, PostureDeviation: 0.5, EyesOpen: true}

	c, _, sink := newController()
	policy := detectdomain.FeedbackPolicy{MaxDeviation: 0.1, AudioFeedback: true, EyeAlerts: true}
	start(t, c, domain.DefaultConfig(), policy)
	c.ReportDetection(poor)
	if event, ok := sink.last(domain.EventPostureAlert); !ok || event.Severity != string(detectdomain.SeverityPoor) {
		t.Fatalf("expected poor posture alert, got %+v ok=%t", event, ok)
	}
	if sink.count(domain.EventEyeAlert) != 1 {
		t.Fatalf("eye alerts %d, want 1", sink.count(domain.EventEyeAlert))
	}

	muted, _, mutedSink := newController()
	start(t, muted, domain.DefaultConfig(), detectdomain.FeedbackPolicy{MaxDeviation: 0.1})
	muted.ReportDetection(poor)
	if mutedSink.count(domain.EventPostureAlert) != 0 || mutedSink.count(domain.EventEyeAlert) != 0 {
		t.Fatal("alerts raised despite disabled policy")
	}
	if got := muted.Snapshot().SmoothedScore; got != 50 {
		t.Fatalf("score must still be recorded when alerts are muted, got %d", got)
	}
}

// snapshottingSink reads the controller back during Publish, which only
// works when events are delivered outside the controller's lock.
type snapshottingSink struct {
	controller *service.Controller
	statuses   []domain.Status
}

func (s *snapshottingSink) Publish(_ domain.Event) {
	s.statuses = append(s.statuses, s.controller.Snapshot().Status)
}

func TestEventSinkMayQueryControllerDuringPublish(t *testing.T) {
	t.Parallel()
	sched := &fakeScheduler{}
	clk := &fakeClock{now: time.Date(2026, 8, 23, 7, 0, 0, 0, time.UTC)}
	sink := &snapshottingSink{}
	c := service.NewController(sched, clk, sink)
	sink.controller = c

	start(t, c, domain.Config{BreathSeconds: 4, SessionSeconds: 300}, detectdomain.DefaultFeedbackPolicy())
	if _, ok := c.Stop(); !ok {
		t.Fatal("stop must report a stopped session")
	}
	if len(sink.statuses) == 0 {
		t.Fatal("sink observed no events")
	}
	if last := sink.statuses[len(sink.statuses)-1]; last != domain.StatusCompleted {
		t.Fatalf("sink observed status %s during sessionCompleted, want completed", last)
	}
}

func TestLifecycleOpsAreTotalFunctions(t *testing.T) {
	t.Parallel()
	c, _, _ := newController()
	c.Pause()
	c.Resume()
	if _, ok := c.Stop(); ok {
		t.Fatal("stop in idle must be a no-op")
	}
	c.Acknowledge()
	if got := c.Snapshot().Status; got != domain.StatusIdle {
		t.Fatalf("status %s, want idle", got)
	}

	start(t, c, domain.DefaultConfig(), detectdomain.DefaultFeedbackPolicy())
	if err := c.Start(domain.DefaultConfig(), detectdomain.DefaultFeedbackPolicy()); err == nil {
		t.Fatal("second start while running must fail")
	}
	c.Pause()
	c.Pause()
	if _, ok := c.Stop(); !ok {
		t.Fatal("stop from paused must capture a summary")
	}
	if _, ok := c.Stop(); ok {
		t.Fatal("stop twice must be a no-op the second time")
	}
}
