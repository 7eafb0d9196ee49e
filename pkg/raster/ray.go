// Package raster rasterizes parallel-beam rays onto a square pixel grid.
//
// A ray is described by its emission angle and its perpendicular offset from
// the rotation centre. Only the part of the ray inside the disc inscribed in
// the grid is sampled, so every returned pixel lies within the grid.
package raster

import "math"

// Pixel addresses a single sample of a square grid.
type Pixel struct {
	Row int
	Col int
}

// Ray is the ordered sequence of pixels crossed by one ray. A pixel may appear
// more than once when consecutive steps truncate to the same coordinates.
type Ray []Pixel

// Len returns the number of samples in the ray, used for per-ray normalization.
func (r Ray) Len() int {
	return len(r)
}

// SampleRay returns the pixels crossed by a ray emitted at angle (radians) and
// shifted by displacement pixels from the centre of a size×size grid.
//
// The ray is stepped with integer parameter r in [-maxR, maxR) where
// maxR = floor(sqrt(c² - d²)) - 1 and c = size/2. Coordinates are truncated
// toward zero. A ray missing the inscribed disc yields an empty Ray.
func SampleRay(angle, displacement float64, size int) Ray {
	rCircle := size / 2
	radicand := float64(rCircle*rCircle) - displacement*displacement
	if radicand < 0 {
		return nil
	}

	maxR := int(math.Sqrt(radicand)) - 1
	if maxR <= 0 {
		return nil
	}

	sinA := math.Sin(angle)
	cosA := math.Cos(angle)
	dx := -int(displacement * sinA)
	dy := int(displacement * cosA)

	ray := make(Ray, 0, 2*maxR)
	for r := -maxR; r < maxR; r++ {
		fr := float64(r)
		ray = append(ray, Pixel{
			Row: rCircle + int(fr*cosA) + dx,
			Col: rCircle + int(fr*sinA) + dy,
		})
	}
	return ray
}
