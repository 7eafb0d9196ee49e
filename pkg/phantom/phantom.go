// Package phantom generates synthetic test images for the scanner.
//
// Like the gonum constructors they build on, Uniform, Point, Disc and Rays
// panic when size is not positive. New checks the size and returns an error
// instead.
package phantom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"tomograph/pkg/raster"
)

// Uniform returns a size×size image filled with v. size must be positive.
func Uniform(size int, v float64) *mat.Dense {
	data := make([]float64, size*size)
	for i := range data {
		data[i] = v
	}
	return mat.NewDense(size, size, data)
}

// Point returns a size×size black image with a single pixel of value v at
// the rotation centre. size must be positive.
func Point(size int, v float64) *mat.Dense {
	img := mat.NewDense(size, size, nil)
	img.Set(size/2, size/2, v)
	return img
}

// Disc returns a size×size image with value v inside a centred disc of the
// given radius and 0 elsewhere. size must be positive.
func Disc(size int, radius, v float64) *mat.Dense {
	img := mat.NewDense(size, size, nil)
	c := float64(size / 2)
	for r := 0; r < size; r++ {
		for col := 0; col < size; col++ {
			dr, dc := float64(r)-c, float64(col)-c
			if dr*dr+dc*dc <= radius*radius {
				img.Set(r, col, v)
			}
		}
	}
	return img
}

// Rays draws nRays parallel rays at angle alpha, as the projector samples
// them, with intensities rising from 1/nRays to 1. Offsets span half the
// image width around the centre. The centre pixel is set to 1 as a marker.
// It is useful for inspecting the rasterization. size must be positive.
func Rays(size, nRays int, alpha float64) *mat.Dense {
	img := mat.NewDense(size, size, nil)
	half := float64(size) / 4
	for i := 0; i < nRays; i++ {
		delta := 0.0
		if nRays > 1 {
			delta = -half + 2*half*float64(i)/float64(nRays-1)
		}
		v := float64(i+1) / float64(nRays)
		for _, p := range raster.SampleRay(alpha, delta, size) {
			img.Set(p.Row, p.Col, v)
		}
	}
	img.Set(size/2, size/2, 1)
	return img
}

// Kinds lists the names accepted by New.
var Kinds = []string{"uniform", "point", "disc", "rays"}

// New builds a phantom by name with default shape parameters.
func New(kind string, size int) (*mat.Dense, error) {
	if size < 1 {
		return nil, fmt.Errorf("phantom size must be positive, got %d", size)
	}
	switch kind {
	case "uniform":
		return Uniform(size, 1), nil
	case "point":
		return Point(size, 1), nil
	case "disc":
		return Disc(size, float64(size)/4, 1), nil
	case "rays":
		return Rays(size, 20, 3*math.Pi/8), nil
	default:
		return nil, fmt.Errorf("unknown phantom %q (must be one of %v)", kind, Kinds)
	}
}
