package model

import (
	"fmt"

	"github.com/uyouii/curve-denoising/common"
)

// Curve is a single irregularly sampled observation of an underlying signal:
// sampling points T in [0, 1], strictly ascending, paired with noisy values X.
type Curve struct {
	T []float64
	X []float64
}

func NewCurve(t, x []float64) (*Curve, error) {
	if len(t) == 0 {
		return nil, common.ErrorEmptyCurve
	}
	if len(t) != len(x) {
		return nil, common.ErrorLengthNotSame
	}
	for i := range t {
		if t[i] < 0 || t[i] > 1 {
			return nil, common.ErrorOutOfRange
		}
		if i > 0 && t[i] <= t[i-1] {
			return nil, common.ErrorNotAscending
		}
	}
	return &Curve{T: t, X: x}, nil
}

func (c *Curve) Len() int {
	if c == nil {
		return 0
	}
	return len(c.T)
}

func (c *Curve) IsEmpty() bool {
	return c.Len() == 0
}

func (c *Curve) DebugString() string {
	return fmt.Sprintf("sampleCount: %v", c.Len())
}

// CurveSet is an ordered collection of curves; every transformation keeps
// results aligned positionally with this order.
type CurveSet []*Curve

func NewCurveSet(ts, xs [][]float64) (CurveSet, error) {
	if len(ts) != len(xs) {
		return nil, common.ErrorLengthNotSame
	}
	set := make(CurveSet, 0, len(ts))
	for i := range ts {
		curve, err := NewCurve(ts[i], xs[i])
		if err != nil {
			return nil, err
		}
		set = append(set, curve)
	}
	return set, nil
}

func (s CurveSet) IsEmpty() bool {
	return len(s) == 0
}

// MeanSampleCount is the m of the bandwidth formulas: the average number of
// sampling points per curve.
func (s CurveSet) MeanSampleCount() float64 {
	if len(s) == 0 {
		return 0
	}
	total := 0
	for _, curve := range s {
		total += curve.Len()
	}
	return float64(total) / float64(len(s))
}

func (s CurveSet) TotalSampleCount() int {
	total := 0
	for _, curve := range s {
		total += curve.Len()
	}
	return total
}
