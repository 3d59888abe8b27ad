package timer

import (
	"sync"
	"time"
)

// Cancel stops a scheduled timer. Safe to call more than once. Cancellation
// does not join an in-flight callback; consumers that need stronger
// guarantees tag callbacks with an epoch and discard stale ones.
type Cancel func()

// Scheduler arms cancellable timers. Callbacks run outside the caller's
// goroutine; consumers serialize through their own locking.
type Scheduler interface {
	// Every invokes fn once per interval until cancelled.
	Every(interval time.Duration, fn func()) Cancel
	// After invokes fn once after the delay unless cancelled first.
	After(delay time.Duration, fn func()) Cancel
}

// WallScheduler schedules against real wall-clock time.
type WallScheduler struct{}

func (WallScheduler) Every(interval time.Duration, fn func()) Cancel {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				return
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}
}

func (WallScheduler) After(delay time.Duration, fn func()) Cancel {
	t := time.AfterFunc(delay, fn)
	return func() { t.Stop() }
}
