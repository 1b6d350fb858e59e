package denoise

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/uyouii/curve-denoising/model"
	"github.com/uyouii/curve-denoising/utils"
)

// fbmCurves samples nCurves independent fractional Brownian motion paths
// with Hurst exponent h on a common grid, plus iid Gaussian noise, via the
// Cholesky factor of the fBm covariance.
func fbmCurves(t *testing.T, h float64, nCurves, nPoints int, sigma float64, seed uint64) model.CurveSet {
	t.Helper()

	ts := utils.Linspace(1.0/float64(nPoints), 1, nPoints)

	cov := mat.NewSymDense(nPoints, nil)
	for i := 0; i < nPoints; i++ {
		for j := i; j < nPoints; j++ {
			s, u := ts[i], ts[j]
			c := 0.5 * (math.Pow(s, 2*h) + math.Pow(u, 2*h) - math.Pow(math.Abs(s-u), 2*h))
			if i == j {
				c += 1e-10
			}
			cov.SetSym(i, j, c)
		}
	}

	var chol mat.Cholesky
	require.True(t, chol.Factorize(cov), "fbm covariance must be positive definite")
	var lower mat.TriDense
	chol.LTo(&lower)

	standard := distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewSource(seed)}
	noise := distuv.Normal{Mu: 0, Sigma: sigma, Src: rand.NewSource(seed + 1)}

	set := make(model.CurveSet, 0, nCurves)
	for c := 0; c < nCurves; c++ {
		z := mat.NewVecDense(nPoints, nil)
		for i := 0; i < nPoints; i++ {
			z.SetVec(i, standard.Rand())
		}
		var path mat.VecDense
		path.MulVec(&lower, z)

		xs := make([]float64, nPoints)
		for i := range xs {
			xs[i] = path.AtVec(i)
			if sigma > 0 {
				xs[i] += noise.Rand()
			}
		}
		curve, err := model.NewCurve(ts, xs)
		require.NoError(t, err)
		set = append(set, curve)
	}
	return set
}

func sinCurve(t *testing.T, nPoints int, sigma float64, seed uint64) *model.Curve {
	t.Helper()

	ts := utils.Linspace(0, 1, nPoints)
	xs := make([]float64, nPoints)
	noise := distuv.Normal{Mu: 0, Sigma: sigma, Src: rand.NewSource(seed)}
	for i, u := range ts {
		xs[i] = math.Sin(2 * math.Pi * u)
		if sigma > 0 {
			xs[i] += noise.Rand()
		}
	}
	curve, err := model.NewCurve(ts, xs)
	require.NoError(t, err)
	return curve
}

func TestH0FloorOnRawParts(t *testing.T) {
	// Ratios barely above 1 estimate a regularity below the floor.
	assert.Equal(t, MinH0, unknownSigmaH0(2.05, 1.0, 0.0))
	assert.Equal(t, MinH0, knownSigmaH0(1.05, 1.0, 0.0))

	row := make([]float64, PresmoothGridSize)
	row[0], row[5], row[10] = 0, 1, 0.5
	assert.Equal(t, MinH0, continuousH0([][]float64{row}))
}

func TestLegacyFallbackAssumesRegular(t *testing.T) {
	// When the scale differences are not strictly decreasing and convex the
	// sentinel parts (2 log 2, 0) force H0 = 1 by construction. This pins
	// the behavior down rather than endorsing it.
	assert.Equal(t, 1.0, unknownSigmaH0(1.0, 1.0, 1.0))
	assert.Equal(t, 1.0, unknownSigmaH0(0.0, 0.0, 1.0))
	assert.Equal(t, 1.0, knownSigmaH0(0.1, 0.2, 1.0))

	ts := utils.Linspace(0.1, 0.9, 9)
	xs := []float64{0, 1, 0, 1, 0, 1, 0, 1, 0}
	curve, err := model.NewCurve(ts, xs)
	require.NoError(t, err)

	cfg := NewDefaultConfig()
	cfg.Strategy = StrategyDiscrete
	cfg.K0 = 2
	est, err := NewRegularityEstimator(cfg)
	require.NoError(t, err)

	assert.Equal(t, 1.0, est.EstimateH0(model.CurveSet{curve}, 0.5))
}

func TestDiscreteH0RecoversHurstWithKnownSigma(t *testing.T) {
	const sigma = 0.05
	for i, h := range []float64{0.2, 0.5, 0.8} {
		h := h
		t.Run(fmt.Sprintf("h=%v", h), func(t *testing.T) {
			set := fbmCurves(t, h, 1500, 101, sigma, uint64(100+i))

			cfg := NewDefaultConfig()
			cfg.Strategy = StrategyDiscrete
			cfg.K0 = 10
			cfg.Sigma = model.KnownSigma(sigma)
			est, err := NewRegularityEstimator(cfg)
			require.NoError(t, err)

			got := est.EstimateH0(set, 0.5)
			assert.InDelta(t, h, got, 0.12)
		})
	}
}

func TestContinuousH0RecoversHurst(t *testing.T) {
	for i, h := range []float64{0.2, 0.5, 0.8} {
		h := h
		t.Run(fmt.Sprintf("h=%v", h), func(t *testing.T) {
			set := fbmCurves(t, h, 400, 150, 0.01, uint64(200+i))

			cfg := NewDefaultConfig()
			est, err := NewRegularityEstimator(cfg)
			require.NoError(t, err)

			// Presmoothing attenuates both scales slightly unevenly, so the
			// band here is wider than the discrete known-sigma one.
			got := est.EstimateH0(set, 0.5)
			assert.InDelta(t, h, got, 0.2)
		})
	}
}

func TestEstimateH0ListPreservesOrder(t *testing.T) {
	set := fbmCurves(t, 0.5, 50, 80, 0.01, 42)

	cfg := NewDefaultConfig()
	est, err := NewRegularityEstimator(cfg)
	require.NoError(t, err)

	t0s := []float64{0.3, 0.5, 0.7}
	res := est.EstimateH0List(set, t0s)
	require.Len(t, res, 3)
	for i, t0 := range t0s {
		assert.InDelta(t, est.EstimateH0(set, t0), res[i], 1e-12)
	}
}

func TestEscalationRecoversRoughHurst(t *testing.T) {
	// Rough paths stop the escalation at order zero, so the derivable-curve
	// entry point reproduces the direct estimate.
	for i, h := range []float64{0.2, 0.5} {
		h := h
		t.Run(fmt.Sprintf("h=%v", h), func(t *testing.T) {
			set := fbmCurves(t, h, 400, 150, 0.01, uint64(300+i))

			cfg := NewDefaultConfig()
			cfg.EscalationExponent = 2.0
			est, err := NewRegularityEstimator(cfg)
			require.NoError(t, err)

			cpt, residual := est.EstimateH0Deriv(set, 0.5)
			assert.Equal(t, 0, cpt)
			assert.InDelta(t, h, residual, 0.2)
		})
	}
}

func TestEscalationTerminatesAtCapOnSmoothSignal(t *testing.T) {
	// An infinitely derivable signal keeps every residual near 1, so the
	// loop must be stopped by the hard cap.
	set := model.CurveSet{sinCurve(t, 250, 0, 1), sinCurve(t, 250, 0, 2), sinCurve(t, 250, 0, 3)}

	cfg := NewDefaultConfig()
	est, err := NewRegularityEstimator(cfg)
	require.NoError(t, err)

	cpt, residual := est.EstimateH0Deriv(set, 0.5)
	assert.LessOrEqual(t, cpt, MaxEscalationIters-1)
	assert.GreaterOrEqual(t, cpt, 1)

	value := est.EstimateH0DerivValue(set, 0.5)
	if model.IsUndefined(residual) {
		assert.True(t, model.IsUndefined(value))
	} else {
		assert.InDelta(t, float64(cpt)+residual, value, 1e-12)
		assert.GreaterOrEqual(t, residual, MinH0)
	}
}

func TestH0AlwaysAtLeastFloor(t *testing.T) {
	sets := []model.CurveSet{
		fbmCurves(t, 0.2, 30, 60, 0.05, 7),
		{sinCurve(t, 120, 0.1, 8)},
	}

	for _, strategy := range []Strategy{StrategyContinuous, StrategyDiscrete} {
		cfg := NewDefaultConfig()
		cfg.Strategy = strategy
		est, err := NewRegularityEstimator(cfg)
		require.NoError(t, err)

		for _, set := range sets {
			for _, t0 := range []float64{0.25, 0.5, 0.75} {
				got := est.EstimateH0(set, t0)
				if model.IsUndefined(got) {
					continue
				}
				assert.GreaterOrEqual(t, got, MinH0)
			}
		}
	}
}
