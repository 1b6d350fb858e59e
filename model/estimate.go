package model

import "math"

// Undefined is the sentinel for an inconclusive estimate: too few samples in
// a window, a failed monotonicity condition, a sub-threshold kernel weight
// sum. It propagates through downstream stages instead of failing a batch.
func Undefined() float64 {
	return math.NaN()
}

func IsUndefined(v float64) bool {
	return math.IsNaN(v)
}

// Sigma carries the observation noise level when the caller knows it in
// advance; otherwise the pipeline estimates it from finite differences.
type Sigma struct {
	value float64
	known bool
}

func KnownSigma(value float64) Sigma {
	return Sigma{value: value, known: true}
}

func UnknownSigma() Sigma {
	return Sigma{}
}

func (s Sigma) Known() (float64, bool) {
	return s.value, s.known
}

// ParameterEstimate collects the pointwise estimates at one query location.
// Any field may be Undefined when the input around T0 is degenerate.
type ParameterEstimate struct {
	T0        float64 `json:"t0"`
	Sigma     float64 `json:"sigma"`
	H0        float64 `json:"h0"`
	L0        float64 `json:"l0"`
	Bandwidth float64 `json:"b"`
}

// SmoothResult pairs the per-query-point parameters with the smoothed curves,
// both position-aligned with the inputs that produced them.
type SmoothResult struct {
	Parameters []ParameterEstimate `json:"parameters"`
	Smooth     CurveSet            `json:"smooth"`
}
