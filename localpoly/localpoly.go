package localpoly

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/uyouii/curve-denoising/common"
	"github.com/uyouii/curve-denoising/utils"
)

const minWeight = 1e-12

// LocalPolynomial fits a degree-p polynomial by Gaussian-weighted least
// squares inside a moving window and evaluates the derivative-th derivative
// of the fit. Callers treat it as a black-box numeric routine: any grid
// point where the local system is underdetermined or singular comes back
// as NaN instead of an error.
type LocalPolynomial struct {
	bandwidth  float64
	derivative int
	degree     int
}

func NewLocalPolynomial(bandwidth float64, derivative, degree int) (*LocalPolynomial, error) {
	if bandwidth <= 0 || math.IsNaN(bandwidth) {
		return nil, common.ErrorInvalidValue
	}
	if degree < 0 || derivative < 0 || derivative > degree {
		return nil, common.ErrorInvalidValue
	}
	return &LocalPolynomial{
		bandwidth:  bandwidth,
		derivative: derivative,
		degree:     degree,
	}, nil
}

// FitGrid evaluates the fit on gridSize equally spaced points over
// [lower, upper] and returns both the grid and the fitted values.
func (lp *LocalPolynomial) FitGrid(t, x []float64, lower, upper float64, gridSize int) ([]float64, []float64) {
	grid := utils.Linspace(lower, upper, gridSize)
	fitted := make([]float64, len(grid))
	for i, u := range grid {
		fitted[i] = lp.FitAt(t, x, u)
	}
	return grid, fitted
}

// FitAt solves the weighted least squares system centered at u. Columns of
// the design matrix are powers of (t_i - u), so the derivative-th fitted
// coefficient times derivative! is the local derivative estimate.
func (lp *LocalPolynomial) FitAt(t, x []float64, u float64) float64 {
	if len(t) != len(x) {
		return math.NaN()
	}

	cols := lp.degree + 1

	zs, sws, ys := []float64{}, []float64{}, []float64{}
	for i := range t {
		z := (t[i] - u) / lp.bandwidth
		w := gaussianShape(z)
		if w < minWeight || math.IsNaN(x[i]) {
			continue
		}
		zs = append(zs, t[i]-u)
		sws = append(sws, math.Sqrt(w))
		ys = append(ys, x[i])
	}

	if len(zs) < cols {
		return math.NaN()
	}

	a := mat.NewDense(len(zs), cols, nil)
	b := mat.NewVecDense(len(zs), nil)
	for i := range zs {
		pow := 1.0
		for j := 0; j < cols; j++ {
			a.Set(i, j, sws[i]*pow)
			pow *= zs[i]
		}
		b.SetVec(i, sws[i]*ys[i])
	}

	var qr mat.QR
	qr.Factorize(a)

	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, b); err != nil {
		return math.NaN()
	}

	return beta.AtVec(lp.derivative) * factorial(lp.derivative)
}

func gaussianShape(z float64) float64 {
	return math.Exp(-z * z / 2.0)
}

func factorial(n int) float64 {
	result := 1.0
	for i := 2; i <= n; i++ {
		result *= float64(i)
	}
	return result
}
