package phantom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestUniform(t *testing.T) {
	img := Uniform(5, 2)
	assert.Equal(t, 50.0, floats.Sum(img.RawMatrix().Data))
}

func TestPoint(t *testing.T) {
	img := Point(9, 3)
	assert.Equal(t, 3.0, img.At(4, 4))
	assert.Equal(t, 3.0, floats.Sum(img.RawMatrix().Data))
}

func TestDisc(t *testing.T) {
	img := Disc(21, 5, 1)
	assert.Equal(t, 1.0, img.At(10, 10))
	assert.Equal(t, 1.0, img.At(10, 15))
	assert.Zero(t, img.At(10, 16))
	assert.Zero(t, img.At(0, 0))
}

func TestRaysMarksCentreAndGradesIntensity(t *testing.T) {
	img := Rays(100, 4, math.Pi/2)
	assert.Equal(t, 1.0, img.At(50, 50))
	assert.Equal(t, 1.0, floats.Max(img.RawMatrix().Data))
	assert.Equal(t, 0.25, floats.Min(filterPositive(img.RawMatrix().Data)))
}

func TestRaysSingleRay(t *testing.T) {
	img := Rays(40, 1, 0)
	// one vertical central ray of value 1
	for r := 1; r < 39; r++ {
		assert.Equal(t, 1.0, img.At(r, 20), "row %d", r)
	}
}

func TestNew(t *testing.T) {
	for _, kind := range Kinds {
		img, err := New(kind, 16)
		require.NoError(t, err, kind)
		r, c := img.Dims()
		assert.Equal(t, 16, r)
		assert.Equal(t, 16, c)
	}
	_, err := New("shepp-logan", 16)
	assert.Error(t, err)
	_, err = New("point", 0)
	assert.Error(t, err)
}

func filterPositive(data []float64) []float64 {
	var out []float64
	for _, v := range data {
		if v > 0 {
			out = append(out, v)
		}
	}
	return out
}

func TestNonPositiveSize(t *testing.T) {
	for _, kind := range Kinds {
		_, err := New(kind, 0)
		assert.Error(t, err, kind)
	}

	assert.Panics(t, func() { Uniform(0, 1) })
	assert.Panics(t, func() { Point(-1, 1) })
	assert.Panics(t, func() { Disc(0, 1, 1) })
	assert.Panics(t, func() { Rays(0, 3, 0) })
}
