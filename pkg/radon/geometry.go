package radon

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Angle returns the emission angle in radians of projection i out of n.
// Projections cover half a turn; the other half is redundant for parallel beams.
func Angle(i, n int) float64 {
	return float64(i) / float64(n) * math.Pi
}

// DetectorOffset returns the perpendicular offset of detector j out of n from
// the rotation centre, for a detector array spanning widthPx pixels.
func DetectorOffset(j, n int, widthPx float64) float64 {
	return widthPx * (-0.5 + float64(j)/float64(n))
}

// WorkingSize is the side of the square region of m that the projector uses:
// the smaller of its two dimensions.
func WorkingSize(m mat.Matrix) int {
	r, c := m.Dims()
	return min(r, c)
}

func validateWidth(width float64) error {
	if math.IsNaN(width) || width <= 0 || width > 1 {
		return fmt.Errorf("%w: width fraction must be in (0, 1], got %g", ErrInvalidParameter, width)
	}
	return nil
}

func validateCount(name string, n int) error {
	if n < 1 {
		return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidParameter, name, n)
	}
	return nil
}
