package domain_test

import (
	"testing"

	"nadi/internal/modules/session/domain"
)

func TestScoreWindowUnknownBeforeFirstSample(t *testing.T) {
	t.Parallel()
	w := domain.NewScoreWindow()
	if got := w.Current(); got != domain.ScoreUnknown {
		t.Fatalf("empty window must report unknown, got %d", got)
	}
}

func TestScoreWindowEvictsOldestPastCapacity(t *testing.T) {
	t.Parallel()
	w := domain.NewScoreWindow()
	for i := 0; i < 10; i++ {
		w.Record(100)
	}
	w.Record(50)
	if w.Len() != 10 {
		t.Fatalf("window length %d, want 10", w.Len())
	}
	// nine 100s and one 50: round(950/10) = 95
	if got := w.Current(); got != 95 {
		t.Fatalf("smoothed score %d, want 95", got)
	}
}

func TestScoreWindowRoundsMean(t *testing.T) {
	t.Parallel()
	w := domain.NewScoreWindow()
	w.Record(70)
	w.Record(85)
	// mean 77.5 rounds up
	if got := w.Current(); got != 78 {
		t.Fatalf("smoothed score %d, want 78", got)
	}
}

func TestScoreWindowClampsSamples(t *testing.T) {
	t.Parallel()
	w := domain.NewScoreWindow()
	w.Record(-20)
	w.Record(140)
	if got := w.Current(); got != 50 {
		t.Fatalf("smoothed score %d, want 50 from clamped samples", got)
	}
}

func TestScoreWindowReset(t *testing.T) {
	t.Parallel()
	w := domain.NewScoreWindow()
	w.Record(90)
	w.Reset()
	if w.Len() != 0 || w.Current() != domain.ScoreUnknown {
		t.Fatalf("reset window must be empty and unknown, got len=%d current=%d", w.Len(), w.Current())
	}
}
