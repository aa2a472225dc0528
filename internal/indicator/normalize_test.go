package indicator_test

import (
	"math"
	"testing"

	"github.com/trendlab/backtester/internal/indicator"
)

// naiveNormalize recomputes the rolling min/max over the whole window each
// step, the reference the deque implementation must match exactly.
func naiveNormalize(osc []float64, window int) []float64 {
	out := make([]float64, len(osc))
	for i := range osc {
		if i+1 < window {
			continue
		}
		lo, hi := osc[i], osc[i]
		for j := i - window + 1; j <= i; j++ {
			if osc[j] < lo {
				lo = osc[j]
			}
			if osc[j] > hi {
				hi = osc[j]
			}
		}
		if hi == lo {
			continue
		}
		out[i] = 2*(osc[i]-lo)/(hi-lo) - 1
	}
	return out
}

func TestNormalizeBounds(t *testing.T) {
	osc := []float64{0.5, -1.2, 3.4, 2.2, -0.7, 0.1, 5.5, -3.3, 0.9, 0.9, 1.1}
	window := 4

	out := indicator.Normalize(osc, window)
	for i, v := range out {
		if i+1 < window {
			if v != 0 {
				t.Errorf("index %d: %v, want 0 before window fills", i, v)
			}
			continue
		}
		if v < -1 || v > 1 {
			t.Errorf("index %d: %v outside [-1, 1]", i, v)
		}
	}
}

func TestNormalizeZeroRangeFallsBackToZero(t *testing.T) {
	osc := []float64{2, 2, 2, 2, 2}
	out := indicator.Normalize(osc, 3)
	for i, v := range out {
		if v != 0 {
			t.Errorf("index %d: %v, want 0 for zero rolling range", i, v)
		}
	}
}

func TestNormalizeWindowExtremes(t *testing.T) {
	osc := []float64{1, 2, 3}
	out := indicator.Normalize(osc, 3)
	// Index 2 is the window maximum.
	if out[2] != 1 {
		t.Errorf("window max: %v, want 1", out[2])
	}

	out = indicator.Normalize([]float64{3, 2, 1}, 3)
	if out[2] != -1 {
		t.Errorf("window min: %v, want -1", out[2])
	}
}

func TestNormalizeMatchesNaiveRecompute(t *testing.T) {
	// Deterministic pseudo-random walk.
	osc := make([]float64, 500)
	state := uint64(1)
	for i := range osc {
		state = state*6364136223846793005 + 1442695040888963407
		osc[i] = float64(int64(state>>33))/float64(1<<30) - 1
	}

	for _, window := range []int{1, 2, 5, 60, 499, 500} {
		got := indicator.Normalize(osc, window)
		want := naiveNormalize(osc, window)
		for i := range got {
			if math.Abs(got[i]-want[i]) > 1e-12 {
				t.Fatalf("window %d index %d: got %v, want %v", window, i, got[i], want[i])
			}
		}
	}
}
