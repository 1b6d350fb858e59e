package denoise

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/uyouii/curve-denoising/model"
)

// EstimateL0 estimates the local Hölder constant from presmoothed grids:
// per curve, the inner-scale and outer-scale squared increments are each
// normalized by the matching |dt|^(2*H0); the larger ratio wins, and the
// per-curve maxima are averaged with missing values excluded.
func EstimateL0(grid []float64, values [][]float64, h0 float64) float64 {
	if model.IsUndefined(h0) || h0 <= 0 || len(grid) != PresmoothGridSize {
		return model.Undefined()
	}

	mid := PresmoothGridSize / 2
	innerDt := math.Abs(grid[mid] - grid[0])
	outerDt := math.Abs(grid[PresmoothGridSize-1] - grid[mid])
	if innerDt == 0 || outerDt == 0 {
		return model.Undefined()
	}

	ratios := []float64{}
	for _, v := range values {
		if len(v) != PresmoothGridSize {
			continue
		}
		left, center, right := v[0], v[mid], v[PresmoothGridSize-1]
		if model.IsUndefined(left) || model.IsUndefined(center) || model.IsUndefined(right) {
			continue
		}
		inner := (center - left) * (center - left) / math.Pow(innerDt, 2.0*h0)
		outer := (right - center) * (right - center) / math.Pow(outerDt, 2.0*h0)
		ratios = append(ratios, math.Max(inner, outer))
	}
	if len(ratios) == 0 {
		return model.Undefined()
	}

	mean := stat.Mean(ratios, nil)
	if model.IsUndefined(mean) || mean < 0 {
		return model.Undefined()
	}
	return math.Sqrt(mean)
}

// EstimateL0Window is the legacy form working on raw neighbor windows at the
// dyadic scale pair (k0, 2*k0-1). A known sigma removes the noise floor
// 2*sigma^2 from each squared increment, clamped at zero.
func EstimateL0Window(set model.CurveSet, t0 float64, k0 int, h0 float64, sigma model.Sigma) float64 {
	if model.IsUndefined(h0) || h0 <= 0 || k0 < 1 {
		return model.Undefined()
	}

	noise := 0.0
	if value, known := sigma.Known(); known {
		noise = 2.0 * value * value
	}

	ratios := []float64{}
	for _, curve := range set {
		window, ok := neighborWindow(curve, t0, 4*k0-2)
		if !ok {
			continue
		}
		t, x := windowValues(curve, window)

		inner := scaledIncrement(t, x, k0, h0, noise)
		outer := scaledIncrement(t, x, 2*k0-1, h0, noise)
		if model.IsUndefined(inner) || model.IsUndefined(outer) {
			continue
		}
		ratios = append(ratios, math.Max(inner, outer))
	}
	if len(ratios) == 0 {
		return model.Undefined()
	}
	return math.Sqrt(stat.Mean(ratios, nil))
}

func scaledIncrement(t, x []float64, k int, h0, noise float64) float64 {
	hi, lo := 2*k-2, k-1
	if hi >= len(x) || lo < 0 {
		return model.Undefined()
	}
	dt := math.Abs(t[hi] - t[lo])
	if dt == 0 {
		return model.Undefined()
	}
	d := x[hi] - x[lo]
	numerator := d*d - noise
	if numerator < 0 {
		numerator = 0
	}
	return numerator / math.Pow(dt, 2.0*h0)
}
