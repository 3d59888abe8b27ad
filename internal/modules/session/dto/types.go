package dto

import "time"

type StartInput struct {
	// Zero values fall back to the stored settings.
	BreathSeconds  int
	SessionSeconds int
}

// DetectionInput carries one classifier frame from a detector adapter.
type DetectionInput struct {
	FaceVisible      bool
	PostureDeviation float64
	HeadDeviation    float64
	EyesOpen         bool
}

type StateOutput struct {
	Status                 string
	Phase                  string
	Instruction            string
	BreathSeconds          int
	SessionSeconds         int
	CycleCount             int
	ElapsedSeconds         int
	RemainingBreathSeconds int
	SmoothedScore          int
}

type SummaryOutput struct {
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

type RecordOutput struct {
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
