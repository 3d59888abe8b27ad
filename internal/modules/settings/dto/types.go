package dto

type SettingsOutput struct {
	BreathSeconds  int
	SessionSeconds int
	MaxDeviation   float64
	AudioFeedback  bool
	EyeAlerts      bool
	DetectorBinary string
}

// UpdateInput carries partial updates; nil fields keep their stored value.
type UpdateInput struct {
	BreathSeconds  *int
	SessionSeconds *int
	MaxDeviation   *float64
	AudioFeedback  *bool
	EyeAlerts      *bool
	DetectorBinary *string
}
