package denoise

import (
	"math"

	"github.com/uyouii/curve-denoising/common"
	"github.com/uyouii/curve-denoising/localpoly"
	"github.com/uyouii/curve-denoising/model"
)

// Presmoother produces stable low-variance point evaluations of every curve
// on a short grid around a query location, feeding the regularity and
// constant estimators. Grid points the local polynomial fit cannot resolve
// come back as NaN and are skipped downstream instead of failing the batch.
type Presmoother struct {
	gamma  float64
	order  int
	drv    int
	degree int
}

func NewPresmoother(gamma float64, order, drv, degree int) (*Presmoother, error) {
	if gamma <= 0 || gamma >= 1 {
		return nil, common.ErrorInvalidValue
	}
	if order < 1 || drv < 0 || degree < drv {
		return nil, common.ErrorInvalidValue
	}
	return &Presmoother{
		gamma:  gamma,
		order:  order,
		drv:    drv,
		degree: degree,
	}, nil
}

// Delta is the width of the presmoothing interval, exp(-log(m)^gamma) for
// mean sample count m. It shrinks slower than 1/m so the interval always
// holds enough observations.
func (p *Presmoother) Delta(m float64) float64 {
	if m <= 1 {
		return model.Undefined()
	}
	return math.Exp(-math.Pow(math.Log(m), p.gamma))
}

// NaiveBandwidth is the pilot bandwidth for the local polynomial fit, before
// any regularity information is available.
func (p *Presmoother) NaiveBandwidth(m float64) float64 {
	delta := p.Delta(m)
	if model.IsUndefined(delta) {
		return model.Undefined()
	}
	b1 := math.Pow(delta/math.Round(m), 1.0/(2.0*float64(p.order)+1.0))
	b2 := delta / math.Log(1+m)
	return math.Min(b1, b2)
}

// Smooth evaluates every curve on the common PresmoothGridSize-point grid
// spanning [t0-delta/2, t0+delta/2]. It returns the abscissa and one row of
// fitted values per curve, position-aligned with the set.
func (p *Presmoother) Smooth(set model.CurveSet, t0 float64) ([]float64, [][]float64) {
	return p.SmoothGrid(set, t0, PresmoothGridSize)
}

// SmoothGrid is Smooth with a caller-chosen grid size; the discrete-neighbor
// escalation path needs window-sized grids.
func (p *Presmoother) SmoothGrid(set model.CurveSet, t0 float64, gridSize int) ([]float64, [][]float64) {
	m := set.MeanSampleCount()
	delta := p.Delta(m)
	bNaive := p.NaiveBandwidth(m)

	values := make([][]float64, len(set))
	if model.IsUndefined(delta) || model.IsUndefined(bNaive) {
		grid := undefinedSlice(gridSize)
		for i := range values {
			values[i] = undefinedSlice(gridSize)
		}
		return grid, values
	}

	lower, upper := t0-delta/2.0, t0+delta/2.0

	// The division by 3 compensates for the Gaussian weighting convention
	// of the local polynomial routine.
	lp, err := localpoly.NewLocalPolynomial(bNaive/3.0, p.drv, p.degree)
	if err != nil {
		grid := undefinedSlice(gridSize)
		for i := range values {
			values[i] = undefinedSlice(gridSize)
		}
		return grid, values
	}

	var grid []float64
	for i, curve := range set {
		grid, values[i] = lp.FitGrid(curve.T, curve.X, lower, upper, gridSize)
	}
	return grid, values
}

func undefinedSlice(n int) []float64 {
	res := make([]float64, n)
	for i := range res {
		res[i] = model.Undefined()
	}
	return res
}
