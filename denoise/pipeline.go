package denoise

import (
	"context"
	"math"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/uyouii/curve-denoising/common"
	"github.com/uyouii/curve-denoising/model"
	"github.com/uyouii/curve-denoising/utils"
)

// Config collects the tuning knobs of the whole pipeline. Zero values are
// not usable; start from NewDefaultConfig and override.
type Config struct {
	K0                 int
	Gamma              float64
	EscalationExponent float64
	LegacyEpsilon      float64
	Strategy           Strategy
	Kernel             KernelType
	Sigma              model.Sigma
	MinObs             int
}

func NewDefaultConfig() Config {
	return Config{
		K0:                 DefaultK0,
		Gamma:              DefaultGamma,
		EscalationExponent: DefaultEscalationExponent,
		LegacyEpsilon:      DefaultLegacyEpsilon,
		Strategy:           StrategyContinuous,
		Kernel:             KernelEpanechnikov,
		Sigma:              model.UnknownSigma(),
		MinObs:             DefaultMinObs,
	}
}

// Pipeline sequences noise, regularity, constant and bandwidth estimation
// across a curve set and a query grid, then applies the kernel regression.
// Curves are processed independently; results always align positionally
// with the inputs regardless of scheduling.
type Pipeline struct {
	cfg        Config
	regularity *RegularityEstimator
	estimator  *CurveEstimator
}

func NewPipeline(cfg Config) (*Pipeline, error) {
	regularity, err := NewRegularityEstimator(cfg)
	if err != nil {
		return nil, err
	}
	estimator, err := NewCurveEstimator(cfg.Kernel, cfg.MinObs)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		cfg:        cfg,
		regularity: regularity,
		estimator:  estimator,
	}, nil
}

// SmoothCurves denoises every curve of the set on its own sampling grid,
// with parameters estimated at the query locations t0s.
func (p *Pipeline) SmoothCurves(ctx context.Context, set model.CurveSet, t0s []float64) (*model.SmoothResult, error) {
	return p.smooth(ctx, set, t0s, false)
}

// SmoothDerivableCurves is SmoothCurves with the order-escalation
// regularity path, for signals smoother than order 1.
func (p *Pipeline) SmoothDerivableCurves(ctx context.Context, set model.CurveSet, t0s []float64) (*model.SmoothResult, error) {
	return p.smooth(ctx, set, t0s, true)
}

func (p *Pipeline) smooth(ctx context.Context, set model.CurveSet, t0s []float64, escalate bool) (*model.SmoothResult, error) {
	logger := utils.GetLogger(ctx)

	defer func() {
		if err := recover(); err != nil {
			logger.Error("smooth recover panic error!", zap.Any("err", err),
				zap.String("panic info", utils.GetPanicInfo()))
		}
	}()

	if set.IsEmpty() || len(t0s) == 0 {
		return nil, common.ErrorInvalidValue
	}

	selector, err := NewBandwidthSelector(p.cfg.Kernel, TargetCurve)
	if err != nil {
		return nil, err
	}

	params := p.estimateParameters(set, t0s, selector, escalate)

	smoothed := make(model.CurveSet, len(set))
	g, _ := errgroup.WithContext(ctx)
	for i, curve := range set {
		i, curve := i, curve
		g.Go(func() error {
			bandwidths := make([]float64, curve.Len())
			for j, u := range curve.T {
				prm := nearestParameter(params, u)
				bandwidths[j] = selector.Select(prm.Sigma, prm.H0, prm.L0, float64(curve.Len()))
			}
			res, smoothErr := p.estimator.Estimate(curve, curve.T, bandwidths)
			if smoothErr != nil {
				return smoothErr
			}
			smoothed[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("smooth curves failed", zap.Error(err))
		return nil, err
	}

	logger.Info("smooth curves done",
		zap.Int("curveCount", len(set)), zap.Int("queryCount", len(t0s)),
		zap.Bool("escalate", escalate))

	return &model.SmoothResult{Parameters: params, Smooth: smoothed}, nil
}

// SmoothMeanCurve estimates the mean curve of the whole set: observations
// are pooled across curves at each target point, with the minimum
// observation floor guarding sparse regions. targets defaults to t0s.
func (p *Pipeline) SmoothMeanCurve(ctx context.Context, set model.CurveSet, t0s, targets []float64) (*model.SmoothResult, error) {
	logger := utils.GetLogger(ctx)

	defer func() {
		if err := recover(); err != nil {
			logger.Error("SmoothMeanCurve recover panic error!", zap.Any("err", err),
				zap.String("panic info", utils.GetPanicInfo()))
		}
	}()

	if set.IsEmpty() || len(t0s) == 0 {
		return nil, common.ErrorInvalidValue
	}
	if len(targets) == 0 {
		targets = t0s
	}

	selector, err := NewBandwidthSelector(p.cfg.Kernel, TargetMean)
	if err != nil {
		return nil, err
	}

	params := p.estimateParameters(set, t0s, selector, false)

	pooledT := make([]float64, 0, set.TotalSampleCount())
	pooledX := make([]float64, 0, set.TotalSampleCount())
	for _, curve := range set {
		pooledT = append(pooledT, curve.T...)
		pooledX = append(pooledX, curve.X...)
	}

	nEff := selector.EffectiveSampleSize(set, nil)
	bandwidths := make([]float64, len(targets))
	for i, u := range targets {
		prm := nearestParameter(params, u)
		bandwidths[i] = selector.Select(prm.Sigma, prm.H0, prm.L0, nEff)
	}

	mean, err := p.estimator.EstimatePooled(pooledT, pooledX, targets, bandwidths)
	if err != nil {
		logger.Error("smooth mean curve failed", zap.Error(err))
		return nil, err
	}

	return &model.SmoothResult{
		Parameters: params,
		Smooth:     model.CurveSet{mean},
	}, nil
}

// estimateParameters runs sigma -> H0 -> L0 -> bandwidth at every query
// location; the reported bandwidth uses the target's effective sample size
// with the mean curve count standing in for the single-curve case.
func (p *Pipeline) estimateParameters(set model.CurveSet, t0s []float64, selector *BandwidthSelector, escalate bool) []model.ParameterEstimate {
	params := make([]model.ParameterEstimate, len(t0s))
	for i, t0 := range t0s {
		sigma, known := p.cfg.Sigma.Known()
		if !known {
			sigma = utils.MeanSkipUndefined(EstimateSigmaList(set, t0, p.cfg.K0))
		}

		var h0 float64
		if escalate {
			h0 = p.regularity.EstimateH0DerivValue(set, t0)
		} else {
			h0 = p.regularity.EstimateH0(set, t0)
		}

		var l0 float64
		if p.cfg.Strategy == StrategyDiscrete {
			l0 = EstimateL0Window(set, t0, p.cfg.K0, h0, p.cfg.Sigma)
		} else {
			l0 = p.presmoothedL0(set, t0, h0)
		}

		nEff := selector.EffectiveSampleSize(set, nil)
		if selector.target == TargetCurve {
			nEff = set.MeanSampleCount()
		}

		params[i] = model.ParameterEstimate{
			T0:        t0,
			Sigma:     sigma,
			H0:        h0,
			L0:        l0,
			Bandwidth: selector.Select(sigma, h0, l0, nEff),
		}
	}
	return params
}

func (p *Pipeline) presmoothedL0(set model.CurveSet, t0, h0 float64) float64 {
	pre, err := NewPresmoother(p.cfg.Gamma, 1, 0, 1)
	if err != nil {
		return model.Undefined()
	}
	grid, values := pre.Smooth(set, t0)
	return EstimateL0(grid, values, h0)
}

// nearestParameter picks the query location closest to u; the first wins on
// ties so the choice is deterministic.
func nearestParameter(params []model.ParameterEstimate, u float64) model.ParameterEstimate {
	best := params[0]
	bestDist := math.Abs(params[0].T0 - u)
	for _, prm := range params[1:] {
		dist := math.Abs(prm.T0 - u)
		if dist < bestDist {
			best, bestDist = prm, dist
		}
	}
	return best
}
