package domain

import (
	"errors"
	"fmt"
)

var ErrInvalidSettings = errors.New("invalid settings")

// Settings are the persisted user preferences. Durations seed new sessions;
// the feedback fields gate detection-derived alerts.
type Settings struct {
	BreathSeconds  int     `yaml:"breath_seconds"`
	SessionSeconds int     `yaml:"session_seconds"`
	MaxDeviation   float64 `yaml:"max_deviation"`
	AudioFeedback  bool    `yaml:"audio_feedback"`
	EyeAlerts      bool    `yaml:"eye_alerts"`
	DetectorBinary string  `yaml:"detector_binary,omitempty"`
}

func Default() Settings {
	return Settings{
		BreathSeconds:  4,
		SessionSeconds: 300,
		MaxDeviation:   0.1,
		AudioFeedback:  true,
		EyeAlerts:      false,
	}
}

func (s Settings) Validate() error {
	if s.BreathSeconds <= 0 {
		return fmt.Errorf("%w: breath_seconds must be positive, got %d", ErrInvalidSettings, s.BreathSeconds)
	}
	if s.SessionSeconds <= 0 {
		return fmt.Errorf("%w: session_seconds must be positive, got %d", ErrInvalidSettings, s.SessionSeconds)
	}
	if s.MaxDeviation <= 0 {
		return fmt.Errorf("%w: max_deviation must be positive, got %v", ErrInvalidSettings, s.MaxDeviation)
	}
	return nil
}
