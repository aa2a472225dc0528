package indicator

// minMaxWindow tracks the min and max of a trailing window using a pair of
// monotonic index deques, giving O(1) amortized updates per step.
type minMaxWindow struct {
	size   int
	values []float64
	minIdx []int // increasing values
	maxIdx []int // decreasing values
}

func newMinMaxWindow(size int) *minMaxWindow {
	return &minMaxWindow{size: size}
}

// Push appends v and evicts anything that fell out of the trailing window.
func (w *minMaxWindow) Push(v float64) {
	i := len(w.values)
	w.values = append(w.values, v)

	for len(w.minIdx) > 0 && w.values[w.minIdx[len(w.minIdx)-1]] >= v {
		w.minIdx = w.minIdx[:len(w.minIdx)-1]
	}
	w.minIdx = append(w.minIdx, i)

	for len(w.maxIdx) > 0 && w.values[w.maxIdx[len(w.maxIdx)-1]] <= v {
		w.maxIdx = w.maxIdx[:len(w.maxIdx)-1]
	}
	w.maxIdx = append(w.maxIdx, i)

	cutoff := i - w.size
	if w.minIdx[0] <= cutoff {
		w.minIdx = w.minIdx[1:]
	}
	if w.maxIdx[0] <= cutoff {
		w.maxIdx = w.maxIdx[1:]
	}
}

func (w *minMaxWindow) Min() float64 { return w.values[w.minIdx[0]] }
func (w *minMaxWindow) Max() float64 { return w.values[w.maxIdx[0]] }

// Normalize rescales each oscillator value into [-1, 1] against the min and
// max of the trailing window ending at that value. Rows with fewer than
// window samples, or a zero rolling range, get 0. That fallback is a defined
// value, not an error: it keeps downstream aggregation total.
func Normalize(osc []float64, window int) []float64 {
	out := make([]float64, len(osc))
	mm := newMinMaxWindow(window)
	for i, v := range osc {
		mm.Push(v)
		if i+1 < window {
			continue
		}
		lo, hi := mm.Min(), mm.Max()
		if hi == lo {
			continue
		}
		out[i] = 2.0*(v-lo)/(hi-lo) - 1.0
	}
	return out
}
