package denoise

import "math"

const (
	// PresmoothGridSize is fixed and odd so the grid center lands on t0.
	PresmoothGridSize = 11

	// MinH0 floors the Hölder exponent: regularity below this threshold is
	// not distinguishable from noise at the sample sizes this estimator
	// targets, so it is silently clamped, never reported as an error.
	MinH0 = 0.1

	// MaxEscalationIters caps the order-escalation loop on pathological
	// inputs.
	MaxEscalationIters = 5

	DefaultK0                 = 2
	DefaultGamma              = 0.5
	DefaultEscalationExponent = 1.2
	DefaultLegacyEpsilon      = 0.1
	DefaultMinObs             = 2
)

var logTwo = math.Log(2)
