package denoise

import (
	"math"
	"sort"

	"github.com/uyouii/curve-denoising/model"
)

// neighborWindow returns the size nearest sampling indices to t0, re-sorted
// into index order. Distance ties resolve to the smaller index (stable sort).
// A curve shorter than size has no window.
func neighborWindow(curve *model.Curve, t0 float64, size int) ([]int, bool) {
	if size < 1 || curve.Len() < size {
		return nil, false
	}

	idxs := make([]int, curve.Len())
	for i := range idxs {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(a, b int) bool {
		return math.Abs(curve.T[idxs[a]]-t0) < math.Abs(curve.T[idxs[b]]-t0)
	})

	window := append([]int{}, idxs[:size]...)
	sort.Ints(window)
	return window, true
}

// windowValues gathers the curve values at the window indices.
func windowValues(curve *model.Curve, window []int) ([]float64, []float64) {
	t := make([]float64, len(window))
	x := make([]float64, len(window))
	for i, idx := range window {
		t[i] = curve.T[idx]
		x[i] = curve.X[idx]
	}
	return t, x
}
