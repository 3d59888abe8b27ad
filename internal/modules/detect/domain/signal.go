package domain

import "math"

// Signal is one frame of external classifier output. Deviations are
// normalized fractions of the frame dimension. The zero value means no face
// was found.
type Signal struct {
	FaceVisible      bool
	PostureDeviation float64
	HeadDeviation    float64
	EyesOpen         bool
}

func NoFace() Signal {
	return Signal{}
}

// DefaultMaxDeviation is the deviation at which posture is considered poor,
// as a fraction of the frame dimension.
const DefaultMaxDeviation = 0.1

type Severity string

const (
	SeverityGood Severity = "good"
	SeverityOkay Severity = "okay"
	SeverityFair Severity = "fair"
	SeverityPoor Severity = "poor"
)

// Classification maps a face signal onto a posture score band.
type Classification struct {
	Score    int
	Severity Severity
	// Alert is true for the fair and poor bands, which warrant audible
	// feedback when enabled.
	Alert bool
}

// Classify bands the worse of the posture and head deviations against the
// configured maximum. Band edges sit at 0.3, 0.7 and 1.0 of the maximum and
// map to scores 100, 85, 70 and 50.
func Classify(s Signal, maxDeviation float64) Classification {
	if maxDeviation <= 0 {
		maxDeviation = DefaultMaxDeviation
	}
	d := math.Max(s.PostureDeviation, s.HeadDeviation)
	switch {
	case d < 0.3*maxDeviation:
		return Classification{Score: 100, Severity: SeverityGood}
	case d < 0.7*maxDeviation:
		return Classification{Score: 85, Severity: SeverityOkay}
	case d < maxDeviation:
		return Classification{Score: 70, Severity: SeverityFair, Alert: true}
	default:
		return Classification{Score: 50, Severity: SeverityPoor, Alert: true}
	}
}

// FeedbackPolicy gates which detection-derived alerts are raised.
type FeedbackPolicy struct {
	MaxDeviation  float64
	AudioFeedback bool
	EyeAlerts     bool
}

func DefaultFeedbackPolicy() FeedbackPolicy {
	return FeedbackPolicy{MaxDeviation: DefaultMaxDeviation, AudioFeedback: true, EyeAlerts: false}
}
