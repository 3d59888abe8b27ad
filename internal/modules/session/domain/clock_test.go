package domain_test

import (
	"testing"

	"nadi/internal/modules/session/domain"
)

func TestSessionClockTicksToExpiry(t *testing.T) {
	t.Parallel()
	c := domain.NewSessionClock()
	c.Start(3)
	for i := 1; i <= 2; i++ {
		elapsed, expired := c.Tick()
		if elapsed != i || expired {
			t.Fatalf("tick %d: got (%d,%t)", i, elapsed, expired)
		}
	}
	elapsed, expired := c.Tick()
	if elapsed != 3 || !expired {
		t.Fatalf("final tick: got (%d,%t), want (3,true)", elapsed, expired)
	}
}

func TestSessionClockPauseFreezesElapsed(t *testing.T) {
	t.Parallel()
	c := domain.NewSessionClock()
	c.Start(10)
	c.Tick()
	c.Pause()
	for i := 0; i < 5; i++ {
		if elapsed, _ := c.Tick(); elapsed != 1 {
			t.Fatalf("paused tick advanced elapsed to %d", elapsed)
		}
	}
	c.Resume()
	if elapsed, _ := c.Tick(); elapsed != 2 {
		t.Fatalf("resume must continue from frozen value, got %d", elapsed)
	}
}

func TestSessionClockTickBeforeStartIsInert(t *testing.T) {
	t.Parallel()
	c := domain.NewSessionClock()
	if elapsed, expired := c.Tick(); elapsed != 0 || expired {
		t.Fatalf("tick before start: got (%d,%t)", elapsed, expired)
	}
}

func TestSessionClockReset(t *testing.T) {
	t.Parallel()
	c := domain.NewSessionClock()
	c.Start(5)
	c.Tick()
	c.Reset()
	if c.Elapsed() != 0 {
		t.Fatalf("reset must zero elapsed, got %d", c.Elapsed())
	}
}
