package denoise

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/uyouii/curve-denoising/model"
)

// EstimateSigma estimates the observation noise standard deviation around t0
// from second-order differences of the 4*k0-2 nearest observations. The
// signal contribution vanishes at first order inside the window, so the
// averaged squared pair differences estimate 2*sigma^2.
func EstimateSigma(curve *model.Curve, t0 float64, k0 int) float64 {
	if k0 < 1 {
		return model.Undefined()
	}

	window, ok := neighborWindow(curve, t0, 4*k0-2)
	if !ok {
		return model.Undefined()
	}
	_, x := windowValues(curve, window)

	diffs := []float64{}
	for j := 0; j+1 < len(x); j += 2 {
		d := x[j+1] - x[j]
		diffs = append(diffs, d*d)
	}
	if len(diffs) == 0 {
		return model.Undefined()
	}

	variance := stat.Mean(diffs, nil) / 2.0
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

// EstimateSigmaList maps EstimateSigma across a curve set, preserving order.
func EstimateSigmaList(set model.CurveSet, t0 float64, k0 int) []float64 {
	res := make([]float64, len(set))
	for i, curve := range set {
		res[i] = EstimateSigma(curve, t0, k0)
	}
	return res
}
