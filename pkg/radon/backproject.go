package radon

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"tomograph/pkg/raster"
)

// Reconstruct backprojects sinogram onto an outputSize×outputSize image and
// returns one frame per angle. Frame k holds the accumulated contributions of
// angles 0 through k, so the last frame is the final reconstruction and the
// whole stack shows how it converges.
//
// width must match the fraction used when the sinogram was acquired. Angles
// are processed strictly in increasing order; WithWorkers has no effect.
func Reconstruct(sinogram mat.Matrix, width float64, outputSize int, opts ...Option) ([]*mat.Dense, error) {
	if err := validateSinogram(sinogram); err != nil {
		return nil, err
	}
	if err := validateCount("output size", outputSize); err != nil {
		return nil, err
	}
	if err := validateWidth(width); err != nil {
		return nil, err
	}

	o := newOptions(opts)
	nAngles, _ := sinogram.Dims()
	widthPx := float64(outputSize) * width

	acc := mat.NewDense(outputSize, outputSize, nil)
	frames := make([]*mat.Dense, 0, nAngles)
	for a := 0; a < nAngles; a++ {
		if err := o.ctx.Err(); err != nil {
			return nil, err
		}
		backprojectAngle(acc, sinogram, a, widthPx)
		frames = append(frames, mat.DenseCopyOf(acc))
		o.report(a)
	}
	return frames, nil
}

// BackprojectAngle adds the contribution of a single sinogram row to dst,
// which must be square. Each detector value is divided by the length of its
// ray before being added to every pixel the ray crosses; empty rays add
// nothing.
func BackprojectAngle(dst *mat.Dense, sinogram mat.Matrix, angle int, width float64) error {
	if err := validateSinogram(sinogram); err != nil {
		return err
	}
	if dst == nil {
		return fmt.Errorf("%w: nil destination", ErrInvalidShape)
	}
	r, c := dst.Dims()
	if r != c || r < 1 {
		return fmt.Errorf("%w: destination must be square, got %dx%d", ErrInvalidShape, r, c)
	}
	nAngles, _ := sinogram.Dims()
	if angle < 0 || angle >= nAngles {
		return fmt.Errorf("%w: angle %d outside [0, %d)", ErrInvalidParameter, angle, nAngles)
	}
	if err := validateWidth(width); err != nil {
		return err
	}
	backprojectAngle(dst, sinogram, angle, float64(r)*width)
	return nil
}

func backprojectAngle(dst *mat.Dense, sinogram mat.Matrix, a int, widthPx float64) {
	size, _ := dst.Dims()
	nAngles, nDetectors := sinogram.Dims()
	angle := Angle(a, nAngles)
	for d := 0; d < nDetectors; d++ {
		ray := raster.SampleRay(angle, DetectorOffset(d, nDetectors, widthPx), size)
		if ray.Len() == 0 {
			continue
		}
		v := sinogram.At(a, d) / float64(ray.Len())
		for _, p := range ray {
			dst.Set(p.Row, p.Col, dst.At(p.Row, p.Col)+v)
		}
	}
}

func validateSinogram(sinogram mat.Matrix) error {
	if sinogram == nil {
		return fmt.Errorf("%w: nil sinogram", ErrInvalidShape)
	}
	nAngles, nDetectors := sinogram.Dims()
	if nAngles < 1 || nDetectors < 1 {
		return fmt.Errorf("%w: sinogram must have at least one angle and one detector, got %dx%d",
			ErrInvalidShape, nAngles, nDetectors)
	}
	return nil
}
