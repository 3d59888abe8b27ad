package domain

import (
	"errors"
	"fmt"
	"time"
)

const SchemaVersion = 1

const (
	DefaultBreathSeconds  = 4
	DefaultSessionSeconds = 300
)

// ErrInvalidConfig rejects non-positive durations before any state mutation.
var ErrInvalidConfig = errors.New("invalid session config")

// Config holds the per-session durations. Immutable for the session's
// lifetime once accepted by Start.
type Config struct {
	BreathSeconds  int
	SessionSeconds int
}

func DefaultConfig() Config {
	return Config{BreathSeconds: DefaultBreathSeconds, SessionSeconds: DefaultSessionSeconds}
}

func (c Config) Validate() error {
	if c.BreathSeconds <= 0 {
		return fmt.Errorf("%w: breath duration must be a positive number of seconds, got %d", ErrInvalidConfig, c.BreathSeconds)
	}
	if c.SessionSeconds <= 0 {
		return fmt.Errorf("%w: session duration must be a positive number of seconds, got %d", ErrInvalidConfig, c.SessionSeconds)
	}
	return nil
}

type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

// State is a read-only snapshot of the controller. The controller owns the
// live state exclusively; nothing outside it mutates these fields.
type State struct {
	Status                 Status
	Phase                  BreathPhase
	Config                 Config
	CycleCount             int
	ElapsedSeconds         int
	RemainingBreathSeconds int
	SmoothedScore          int
}

// Summary captures the outcome of a finished session.
type Summary struct {
	StartedAt      time.Time
	EndedAt        time.Time
	ElapsedSeconds int
	CycleCount     int
	FinalScore     int
	Config         Config
	// Expired is true when the session ran its full configured duration
	// rather than being stopped early.
	Expired bool
}

// Record is the persisted form of a session summary.
type Record struct {
	ID             string
	StartedAt      time.Time
	EndedAt        time.Time
	ElapsedSeconds int
	CycleCount     int
	FinalScore     int
	BreathSeconds  int
	SessionSeconds int
	Completed      bool
	NotePath       string
}
