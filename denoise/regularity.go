package denoise

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/uyouii/curve-denoising/common"
	"github.com/uyouii/curve-denoising/model"
)

// Strategy selects how the Hölder exponent is estimated.
type Strategy int

const (
	// StrategyContinuous compares presmoothed increments at two dyadic
	// scales of the presmoothing interval.
	StrategyContinuous Strategy = 1
	// StrategyDiscrete is the legacy estimator built on raw neighbor
	// windows and the theta second-moment differences.
	StrategyDiscrete Strategy = 2
)

// RegularityEstimator estimates the local Hölder exponent H0 of the signal
// underlying a curve set, optionally escalating through derivative orders
// for signals smoother than order 1.
type RegularityEstimator struct {
	strategy Strategy
	k0       int
	gamma    float64
	sigma    model.Sigma

	// escalationExponent is the Gamma of the continuous stopping band
	// phi = log(m)^(-Gamma); legacyEpsilon is the fixed band of the
	// discrete strategy.
	escalationExponent float64
	legacyEpsilon      float64
}

func NewRegularityEstimator(cfg Config) (*RegularityEstimator, error) {
	if cfg.K0 < 1 {
		return nil, common.ErrorInvalidValue
	}
	if cfg.Strategy != StrategyContinuous && cfg.Strategy != StrategyDiscrete {
		return nil, common.ErrorInvalidValue
	}
	if cfg.Gamma <= 0 || cfg.Gamma >= 1 {
		return nil, common.ErrorInvalidValue
	}
	return &RegularityEstimator{
		strategy:           cfg.Strategy,
		k0:                 cfg.K0,
		gamma:              cfg.Gamma,
		sigma:              cfg.Sigma,
		escalationExponent: cfg.EscalationExponent,
		legacyEpsilon:      cfg.LegacyEpsilon,
	}, nil
}

// EstimateH0 estimates the Hölder exponent of the set at t0 with the
// configured strategy. The result is floored at MinH0 whenever defined.
func (e *RegularityEstimator) EstimateH0(set model.CurveSet, t0 float64) float64 {
	switch e.strategy {
	case StrategyDiscrete:
		return e.discreteH0(set, t0)
	default:
		return e.continuousH0At(set, t0, 0)
	}
}

// EstimateH0List maps EstimateH0 across query locations, preserving order.
func (e *RegularityEstimator) EstimateH0List(set model.CurveSet, t0s []float64) []float64 {
	res := make([]float64, len(t0s))
	for i, t0 := range t0s {
		res[i] = e.EstimateH0(set, t0)
	}
	return res
}

// EstimateH0Deriv runs the order-escalation loop for derivable curves. Each
// pass presmooths with the current derivative order and re-estimates the
// residual regularity of that derivative; the loop escalates while the
// residual stays above the stopping band and is hard-capped at
// MaxEscalationIters passes. It returns the escalation count and the final
// residual; the combined regularity is their sum.
func (e *RegularityEstimator) EstimateH0Deriv(set model.CurveSet, t0 float64) (int, float64) {
	stop := e.stopThreshold(set.MeanSampleCount())

	cpt := 0
	residual := model.Undefined()
	for iter := 0; iter < MaxEscalationIters; iter++ {
		residual = e.estimateAtOrder(set, t0, cpt)
		if model.IsUndefined(residual) || residual <= stop {
			break
		}
		if iter == MaxEscalationIters-1 {
			break
		}
		cpt++
	}
	return cpt, residual
}

// EstimateH0DerivValue is EstimateH0Deriv collapsed into the reported
// regularity: derivative order already absorbed plus fractional residual.
func (e *RegularityEstimator) EstimateH0DerivValue(set model.CurveSet, t0 float64) float64 {
	cpt, residual := e.EstimateH0Deriv(set, t0)
	if model.IsUndefined(residual) {
		return residual
	}
	return float64(cpt) + residual
}

func (e *RegularityEstimator) EstimateH0DerivList(set model.CurveSet, t0s []float64) []float64 {
	res := make([]float64, len(t0s))
	for i, t0 := range t0s {
		res[i] = e.EstimateH0DerivValue(set, t0)
	}
	return res
}

func (e *RegularityEstimator) stopThreshold(m float64) float64 {
	if e.strategy == StrategyDiscrete {
		return 1 - e.legacyEpsilon
	}
	if m <= 1 {
		return 1
	}
	return 1 - math.Pow(math.Log(m), -e.escalationExponent)
}

func (e *RegularityEstimator) estimateAtOrder(set model.CurveSet, t0 float64, cpt int) float64 {
	if e.strategy == StrategyDiscrete {
		return e.discreteH0AtOrder(set, t0, cpt)
	}
	return e.continuousH0At(set, t0, cpt)
}

// continuousH0At presmooths derivative order cpt of every curve on the
// 11-point grid and compares squared increments at scales delta/2 (center
// minus left edge) and delta (right edge minus left edge):
// H0 = (log b - log a) / (2 log 2).
func (e *RegularityEstimator) continuousH0At(set model.CurveSet, t0 float64, cpt int) float64 {
	pre, err := NewPresmoother(e.gamma, cpt+1, cpt, cpt+1)
	if err != nil {
		return model.Undefined()
	}
	_, values := pre.Smooth(set, t0)
	return continuousH0(values)
}

func continuousH0(values [][]float64) float64 {
	inner, outer := []float64{}, []float64{}
	for _, v := range values {
		if len(v) != PresmoothGridSize {
			continue
		}
		left, center, right := v[0], v[PresmoothGridSize/2], v[PresmoothGridSize-1]
		if model.IsUndefined(left) || model.IsUndefined(center) || model.IsUndefined(right) {
			continue
		}
		inner = append(inner, (center-left)*(center-left))
		outer = append(outer, (right-left)*(right-left))
	}
	if len(inner) == 0 {
		return model.Undefined()
	}

	a := stat.Mean(inner, nil)
	b := stat.Mean(outer, nil)
	if a <= 0 || b <= 0 {
		return model.Undefined()
	}
	return math.Max((math.Log(b)-math.Log(a))/(2.0*logTwo), MinH0)
}

// discreteH0 applies the legacy neighbor-window estimator to the raw
// observations around t0.
func (e *RegularityEstimator) discreteH0(set model.CurveSet, t0 float64) float64 {
	if sigma, known := e.sigma.Known(); known {
		alpha, beta, ok := e.thetaAverages(set, t0, 4*e.k0-2, []int{2*e.k0 - 1, e.k0})
		if !ok {
			return model.Undefined()
		}
		return knownSigmaH0(alpha, beta, sigma)
	}

	scales := []int{4*e.k0 - 3, 2*e.k0 - 1, e.k0}
	averages, ok := e.thetaAveragesMulti(set, t0, 8*e.k0-7, scales)
	if !ok {
		return model.Undefined()
	}
	return unknownSigmaH0(averages[0], averages[1], averages[2])
}

// discreteH0AtOrder is the escalation form of the legacy estimator: the raw
// window is replaced by presmoothed derivative values of order cpt on a
// window-sized grid over the presmoothing interval.
func (e *RegularityEstimator) discreteH0AtOrder(set model.CurveSet, t0 float64, cpt int) float64 {
	pre, err := NewPresmoother(e.gamma, cpt+1, cpt, cpt+1)
	if err != nil {
		return model.Undefined()
	}

	if sigma, known := e.sigma.Known(); known {
		_, values := pre.SmoothGrid(set, t0, 4*e.k0-2)
		alpha, ok1 := thetaGridAverage(values, 2*e.k0-1)
		beta, ok2 := thetaGridAverage(values, e.k0)
		if !ok1 || !ok2 {
			return model.Undefined()
		}
		return knownSigmaH0(alpha, beta, sigma)
	}

	_, values := pre.SmoothGrid(set, t0, 8*e.k0-7)
	alpha, ok1 := thetaGridAverage(values, 4*e.k0-3)
	beta, ok2 := thetaGridAverage(values, 2*e.k0-1)
	gamma, ok3 := thetaGridAverage(values, e.k0)
	if !ok1 || !ok2 || !ok3 {
		return model.Undefined()
	}
	return unknownSigmaH0(alpha, beta, gamma)
}

// theta is the squared increment between the window positions k-1 and 2k-2,
// the dyadic scale pair of the asymptotic theory.
func theta(values []float64, k int) float64 {
	hi, lo := 2*k-2, k-1
	if hi >= len(values) || lo < 0 {
		return model.Undefined()
	}
	d := values[hi] - values[lo]
	return d * d
}

func (e *RegularityEstimator) thetaAverages(set model.CurveSet, t0 float64, windowSize int, scales []int) (float64, float64, bool) {
	averages, ok := e.thetaAveragesMulti(set, t0, windowSize, scales)
	if !ok {
		return 0, 0, false
	}
	return averages[0], averages[1], true
}

func (e *RegularityEstimator) thetaAveragesMulti(set model.CurveSet, t0 float64, windowSize int, scales []int) ([]float64, bool) {
	sums := make([]float64, len(scales))
	cnt := 0
	for _, curve := range set {
		window, ok := neighborWindow(curve, t0, windowSize)
		if !ok {
			continue
		}
		_, x := windowValues(curve, window)
		defined := true
		vals := make([]float64, len(scales))
		for i, k := range scales {
			vals[i] = theta(x, k)
			if model.IsUndefined(vals[i]) {
				defined = false
				break
			}
		}
		if !defined {
			continue
		}
		for i := range scales {
			sums[i] += vals[i]
		}
		cnt++
	}
	if cnt == 0 {
		return nil, false
	}
	for i := range sums {
		sums[i] /= float64(cnt)
	}
	return sums, true
}

func thetaGridAverage(values [][]float64, k int) (float64, bool) {
	sum, cnt := 0.0, 0
	for _, v := range values {
		th := theta(v, k)
		if model.IsUndefined(th) {
			continue
		}
		sum += th
		cnt++
	}
	if cnt == 0 {
		return 0, false
	}
	return sum / float64(cnt), true
}

// unknownSigmaH0 cancels the noise term by differencing the theta averages
// across the three scales. When the differences are not strictly decreasing
// and convex, the sentinel parts (2 log 2, 0) force H0 = 1: an explicit
// fallback for numerically inconsistent samples, not an error.
func unknownSigmaH0(alpha, beta, gamma float64) float64 {
	first, second := 2.0*logTwo, 0.0
	if alpha-beta > 0 && beta-gamma > 0 && alpha-beta > beta-gamma {
		first = math.Log(alpha - beta)
		second = math.Log(beta - gamma)
	}
	return math.Max((first-second)/(2.0*logTwo), MinH0)
}

// knownSigmaH0 removes the known noise contribution 2*sigma^2 directly,
// with the same sentinel fallback when a theta average does not exceed it.
func knownSigmaH0(alpha, beta, sigma float64) float64 {
	noise := 2.0 * sigma * sigma
	first, second := 2.0*logTwo, 0.0
	if alpha > noise && beta > noise && alpha > beta {
		first = math.Log(alpha - noise)
		second = math.Log(beta - noise)
	}
	return math.Max((first-second)/(2.0*logTwo), MinH0)
}
