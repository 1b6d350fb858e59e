package denoise

import (
	"math"

	"github.com/uyouii/curve-denoising/common"
	"github.com/uyouii/curve-denoising/model"
)

// CurveEstimator is the Nadaraya-Watson kernel regression: a normalized
// kernel-weighted average of the observations around each target point.
// Target points whose window holds fewer than nObsMin weighted observations
// are reported undefined instead of being computed from a near-empty window.
type CurveEstimator struct {
	kernel  Kernel
	nObsMin int
}

func NewCurveEstimator(kind KernelType, nObsMin int) (*CurveEstimator, error) {
	kernel, err := NewKernel(kind)
	if err != nil {
		return nil, err
	}
	if nObsMin < 1 {
		nObsMin = 1
	}
	return &CurveEstimator{kernel: kernel, nObsMin: nObsMin}, nil
}

// Estimate evaluates the regression of the curve at every target point.
// bandwidths carries either one bandwidth broadcast to every target or one
// per target.
func (e *CurveEstimator) Estimate(curve *model.Curve, targets, bandwidths []float64) (*model.Curve, error) {
	if len(bandwidths) != 1 && len(bandwidths) != len(targets) {
		return nil, common.ErrorInvalidValue
	}
	values := make([]float64, len(targets))
	for i, u := range targets {
		b := bandwidths[0]
		if len(bandwidths) > 1 {
			b = bandwidths[i]
		}
		values[i] = e.estimateAt(curve.T, curve.X, u, b)
	}
	return &model.Curve{T: targets, X: values}, nil
}

// EstimatePooled runs the same regression over observations pooled from
// several curves, the mean-curve path of the pipeline.
func (e *CurveEstimator) EstimatePooled(t, x, targets, bandwidths []float64) (*model.Curve, error) {
	if len(t) != len(x) {
		return nil, common.ErrorLengthNotSame
	}
	if len(bandwidths) != 1 && len(bandwidths) != len(targets) {
		return nil, common.ErrorInvalidValue
	}
	values := make([]float64, len(targets))
	for i, u := range targets {
		b := bandwidths[0]
		if len(bandwidths) > 1 {
			b = bandwidths[i]
		}
		values[i] = e.estimateAt(t, x, u, b)
	}
	return &model.Curve{T: targets, X: values}, nil
}

func (e *CurveEstimator) estimateAt(t, x []float64, u, bandwidth float64) float64 {
	if model.IsUndefined(bandwidth) || bandwidth <= 0 {
		return model.Undefined()
	}

	sum, weighted, cnt := 0.0, 0.0, 0
	for i := range t {
		w := e.kernel.Shape((t[i] - u) / bandwidth)
		if w <= 0 || math.IsNaN(x[i]) {
			continue
		}
		sum += w
		weighted += w * x[i]
		cnt++
	}
	if cnt < e.nObsMin || sum == 0 {
		return model.Undefined()
	}
	return weighted / sum
}
