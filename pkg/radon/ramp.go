package radon

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// RampKernel returns the first size coefficients of the spatial-domain ramp
// filter used by filtered backprojection. Only non-negative offsets are
// stored; FilterSinogram applies the kernel symmetrically.
//
//	k[0] = 1
//	k[i] = -4 / (π² i²)  for odd i
//	k[i] = 0             for even i > 0
func RampKernel(size int) ([]float64, error) {
	if size <= 1 {
		return nil, fmt.Errorf("%w: kernel size must be greater than 1, got %d", ErrInvalidParameter, size)
	}
	kernel := make([]float64, size)
	kernel[0] = 1
	for i := 1; i < size; i += 2 {
		kernel[i] = -4 / (math.Pi * math.Pi * float64(i*i))
	}
	return kernel, nil
}

// KernelResponse returns the real frequency response of a symmetric kernel
// sampled on an n-point grid, for frequencies 0 through n/2. The kernel is
// mirrored around offset 0, so n must be at least 2*len(kernel)-1.
//
// A truncated ramp kernel has a small positive response at DC that rises
// towards the Nyquist frequency.
func KernelResponse(kernel []float64, n int) ([]float64, error) {
	if len(kernel) == 0 {
		return nil, fmt.Errorf("%w: empty kernel", ErrInvalidParameter)
	}
	if n < 2*len(kernel)-1 {
		return nil, fmt.Errorf("%w: %d points cannot hold a mirrored kernel of size %d", ErrInvalidParameter, n, len(kernel))
	}

	seq := make([]float64, n)
	seq[0] = kernel[0]
	for i := 1; i < len(kernel); i++ {
		seq[i] = kernel[i]
		seq[n-i] = kernel[i]
	}

	coeffs := fourier.NewFFT(n).Coefficients(nil, seq)
	response := make([]float64, len(coeffs))
	for i, c := range coeffs {
		// the mirrored sequence is even, so the imaginary part is rounding noise
		response[i] = real(c)
	}
	return response, nil
}
