package domain

import "math"

const (
	// ScoreWindowCapacity bounds the rolling posture-score window.
	ScoreWindowCapacity = 10
	// ScoreUnknown is returned before any sample has been recorded.
	ScoreUnknown = -1
)

// ScoreWindow keeps the last ScoreWindowCapacity posture samples and derives
// a smoothed score from them. Oldest samples are evicted first.
type ScoreWindow struct {
	samples []int
}

func NewScoreWindow() *ScoreWindow {
	return &ScoreWindow{samples: make([]int, 0, ScoreWindowCapacity)}
}

// Record appends a sample, clamped to [0,100], evicting the oldest entry
// once the window is full.
func (w *ScoreWindow) Record(score int) {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	if len(w.samples) == ScoreWindowCapacity {
		w.samples = append(w.samples[:0], w.samples[1:]...)
	}
	w.samples = append(w.samples, score)
}

// Current returns the rounded arithmetic mean of the window, or ScoreUnknown
// when the window is empty.
func (w *ScoreWindow) Current() int {
	if len(w.samples) == 0 {
		return ScoreUnknown
	}
	sum := 0
	for _, s := range w.samples {
		sum += s
	}
	return int(math.Round(float64(sum) / float64(len(w.samples))))
}

func (w *ScoreWindow) Len() int {
	return len(w.samples)
}

func (w *ScoreWindow) Reset() {
	w.samples = w.samples[:0]
}
