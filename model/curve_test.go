package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/uyouii/curve-denoising/common"
)

func TestNewCurveChecksInvariants(t *testing.T) {
	_, err := NewCurve([]float64{}, []float64{})
	assert.ErrorIs(t, err, common.ErrorEmptyCurve)

	_, err = NewCurve([]float64{0.1, 0.2}, []float64{1})
	assert.ErrorIs(t, err, common.ErrorLengthNotSame)

	_, err = NewCurve([]float64{0.2, 0.1}, []float64{1, 2})
	assert.ErrorIs(t, err, common.ErrorNotAscending)

	_, err = NewCurve([]float64{0.1, 0.1}, []float64{1, 2})
	assert.ErrorIs(t, err, common.ErrorNotAscending)

	_, err = NewCurve([]float64{-0.1, 0.5}, []float64{1, 2})
	assert.ErrorIs(t, err, common.ErrorOutOfRange)

	curve, err := NewCurve([]float64{0, 0.5, 1}, []float64{1, 2, 3})
	assert.NoError(t, err)
	assert.Equal(t, 3, curve.Len())
}

func TestCurveSetCounts(t *testing.T) {
	set, err := NewCurveSet(
		[][]float64{{0.1, 0.2}, {0.1, 0.2, 0.3, 0.4}},
		[][]float64{{1, 2}, {1, 2, 3, 4}},
	)
	assert.NoError(t, err)
	assert.Equal(t, 6, set.TotalSampleCount())
	assert.InDelta(t, 3.0, set.MeanSampleCount(), 1e-12)
}

func TestUndefinedSentinel(t *testing.T) {
	assert.True(t, IsUndefined(Undefined()))
	assert.False(t, IsUndefined(0))
	assert.True(t, math.IsNaN(Undefined()))
}

func TestSigmaSumType(t *testing.T) {
	_, known := UnknownSigma().Known()
	assert.False(t, known)

	value, known := KnownSigma(0.25).Known()
	assert.True(t, known)
	assert.Equal(t, 0.25, value)
}
