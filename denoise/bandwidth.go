package denoise

import (
	"math"

	"github.com/uyouii/curve-denoising/common"
	"github.com/uyouii/curve-denoising/model"
)

// EstimationTarget selects what the bandwidth optimizes for: a single curve,
// the mean curve of the whole set, or the covariance surface. Aggregating
// across curves changes the effective sample size entering the MSE formula.
type EstimationTarget int

const (
	TargetCurve      EstimationTarget = 1
	TargetMean       EstimationTarget = 2
	TargetCovariance EstimationTarget = 3
)

// BandwidthSelector turns the local estimates (sigma, H0, L0) and a sample
// size into the bandwidth minimizing the asymptotic mean squared error of
// the kernel regression.
type BandwidthSelector struct {
	kernel Kernel
	target EstimationTarget
}

func NewBandwidthSelector(kind KernelType, target EstimationTarget) (*BandwidthSelector, error) {
	kernel, err := NewKernel(kind)
	if err != nil {
		return nil, err
	}
	switch target {
	case TargetCurve, TargetMean, TargetCovariance:
	default:
		return nil, common.ErrorInvalidValue
	}
	return &BandwidthSelector{kernel: kernel, target: target}, nil
}

// Select evaluates the closed-form bandwidth
//
//	b = (sigma^2 * |K|_2^2 * (2H0+1) / (2 H0 nEff L0^2))^(1/(2H0+1))
//
// Any undefined input propagates to an undefined bandwidth.
func (s *BandwidthSelector) Select(sigma, h0, l0, nEff float64) float64 {
	if model.IsUndefined(sigma) || model.IsUndefined(h0) || model.IsUndefined(l0) {
		return model.Undefined()
	}
	if h0 <= 0 || l0 <= 0 || nEff < 1 {
		return model.Undefined()
	}
	numerator := sigma * sigma * s.kernel.SquaredNorm() * (2.0*h0 + 1.0)
	denominator := 2.0 * h0 * nEff * l0 * l0
	return math.Pow(numerator/denominator, 1.0/(2.0*h0+1.0))
}

// EffectiveSampleSize resolves the nEff of the target: a single curve uses
// its own sample count; the mean curve pools every observation in the set;
// the covariance surface scales by the mean count again since it averages
// over observation pairs.
func (s *BandwidthSelector) EffectiveSampleSize(set model.CurveSet, curve *model.Curve) float64 {
	switch s.target {
	case TargetMean:
		return float64(set.TotalSampleCount())
	case TargetCovariance:
		return float64(set.TotalSampleCount()) * set.MeanSampleCount()
	default:
		return float64(curve.Len())
	}
}
