package radon

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// FilterSinogram convolves every angle row of sinogram with the symmetric
// kernel and returns a new sinogram of the same shape:
//
//	out[i] = s[i]*k[0] + Σ_{dx≥1} (s[i+dx] + s[i-dx]) * k[dx]
//
// Terms that fall outside the detector range are dropped rather than wrapped
// or mirrored. The sinogram must have more than two detectors.
func FilterSinogram(sinogram mat.Matrix, kernel []float64) (*mat.Dense, error) {
	if sinogram == nil {
		return nil, fmt.Errorf("%w: nil sinogram", ErrInvalidShape)
	}
	nAngles, nDetectors := sinogram.Dims()
	if nAngles < 1 || nDetectors <= 2 {
		return nil, fmt.Errorf("%w: filtering needs at least 1 angle and 3 detectors, got %dx%d",
			ErrInvalidShape, nAngles, nDetectors)
	}
	if len(kernel) == 0 {
		return nil, fmt.Errorf("%w: empty kernel", ErrInvalidParameter)
	}

	filtered := mat.NewDense(nAngles, nDetectors, nil)
	row := make([]float64, nDetectors)
	out := make([]float64, nDetectors)
	for a := 0; a < nAngles; a++ {
		mat.Row(row, a, sinogram)
		convolveSymmetric(out, row, kernel)
		filtered.SetRow(a, out)
	}
	return filtered, nil
}

func convolveSymmetric(dst, src, kernel []float64) {
	n := len(src)
	for i := range src {
		acc := src[i] * kernel[0]
		for dx := 1; dx < len(kernel); dx++ {
			if i+dx < n {
				acc += src[i+dx] * kernel[dx]
			}
			if i-dx >= 0 {
				acc += src[i-dx] * kernel[dx]
			}
		}
		dst[i] = acc
	}
}
