package denoise

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uyouii/curve-denoising/model"
	"github.com/uyouii/curve-denoising/utils"
)

func TestPresmootherValidates(t *testing.T) {
	_, err := NewPresmoother(0, 1, 0, 1)
	assert.Error(t, err)
	_, err = NewPresmoother(1, 1, 0, 1)
	assert.Error(t, err)
	_, err = NewPresmoother(0.5, 0, 0, 1)
	assert.Error(t, err)
	_, err = NewPresmoother(0.5, 1, 2, 1)
	assert.Error(t, err)

	pre, err := NewPresmoother(0.5, 1, 0, 1)
	assert.NoError(t, err)
	assert.NotNil(t, pre)
}

func TestPresmootherDeltaAndNaiveBandwidth(t *testing.T) {
	pre, err := NewPresmoother(0.5, 1, 0, 1)
	require.NoError(t, err)

	m := 200.0
	delta := pre.Delta(m)
	assert.InDelta(t, math.Exp(-math.Pow(math.Log(m), 0.5)), delta, 1e-12)

	want := math.Min(math.Pow(delta/200.0, 1.0/3.0), delta/math.Log(201))
	assert.InDelta(t, want, pre.NaiveBandwidth(m), 1e-12)

	assert.True(t, model.IsUndefined(pre.Delta(1)))
	assert.True(t, model.IsUndefined(pre.NaiveBandwidth(0)))
}

func TestPresmootherRecoversLinearSignal(t *testing.T) {
	// A degree-1 local fit reproduces an affine signal exactly at every
	// grid point.
	ts := utils.Linspace(0.001, 1, 200)
	xs := make([]float64, len(ts))
	for i, u := range ts {
		xs[i] = 2*u - 0.3
	}
	curve, err := model.NewCurve(ts, xs)
	require.NoError(t, err)
	set := model.CurveSet{curve, curve}

	pre, err := NewPresmoother(DefaultGamma, 1, 0, 1)
	require.NoError(t, err)

	grid, values := pre.Smooth(set, 0.5)
	require.Len(t, grid, PresmoothGridSize)
	require.Len(t, values, 2)
	for _, row := range values {
		require.Len(t, row, PresmoothGridSize)
		for j, u := range grid {
			assert.InDelta(t, 2*u-0.3, row[j], 1e-8)
		}
	}

	delta := pre.Delta(set.MeanSampleCount())
	assert.InDelta(t, 0.5-delta/2, grid[0], 1e-12)
	assert.InDelta(t, 0.5+delta/2, grid[PresmoothGridSize-1], 1e-12)
}

func TestPresmootherDegenerateSetIsUndefined(t *testing.T) {
	curve, err := model.NewCurve([]float64{0.5}, []float64{1})
	require.NoError(t, err)

	pre, err := NewPresmoother(DefaultGamma, 1, 0, 1)
	require.NoError(t, err)

	grid, values := pre.Smooth(model.CurveSet{curve}, 0.5)
	require.Len(t, grid, PresmoothGridSize)
	for _, row := range values {
		for _, v := range row {
			assert.True(t, model.IsUndefined(v))
		}
	}
}
