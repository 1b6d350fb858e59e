package denoise

import (
	"github.com/uyouii/curve-denoising/common"
)

type KernelType string

const (
	KernelUniform      KernelType = "uniform"
	KernelEpanechnikov KernelType = "epanechnikov"
	KernelBiweight     KernelType = "biweight"
)

// Kernel is a compactly supported weighting function on [-1, 1].
type Kernel interface {
	// Shape evaluates the kernel at z; zero outside [-1, 1].
	Shape(z float64) float64
	// SquaredNorm is the L2 norm of the kernel, the constant entering the
	// asymptotic MSE bandwidth formula.
	SquaredNorm() float64
}

func NewKernel(kind KernelType) (Kernel, error) {
	switch kind {
	case KernelUniform:
		return &UniformKernel{}, nil
	case KernelEpanechnikov:
		return &EpanechnikovKernel{}, nil
	case KernelBiweight:
		return &BiweightKernel{}, nil
	}
	return nil, common.ErrorInvalidValue
}

type UniformKernel struct{}

func (k *UniformKernel) Shape(z float64) float64 {
	if z < -1 || z > 1 {
		return 0
	}
	return 0.5
}

func (k *UniformKernel) SquaredNorm() float64 {
	return 0.5
}

type EpanechnikovKernel struct{}

func (k *EpanechnikovKernel) Shape(z float64) float64 {
	if z < -1 || z > 1 {
		return 0
	}
	return 0.75 * (1 - z*z)
}

func (k *EpanechnikovKernel) SquaredNorm() float64 {
	return 0.6
}

// BiweightKernel is the beta-family quartic kernel.
type BiweightKernel struct{}

func (k *BiweightKernel) Shape(z float64) float64 {
	if z < -1 || z > 1 {
		return 0
	}
	u := 1 - z*z
	return 15.0 / 16.0 * u * u
}

func (k *BiweightKernel) SquaredNorm() float64 {
	return 5.0 / 7.0
}
