package radon

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

var approx = cmpopts.EquateApprox(0, 1e-12)

func TestRampKernelClosedForm(t *testing.T) {
	got, err := RampKernel(5)
	require.NoError(t, err)

	pi2 := math.Pi * math.Pi
	want := []float64{1.0, -4 / pi2, 0.0, -4 / (9 * pi2), 0.0}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("RampKernel(5) mismatch (-want +got):\n%s", diff)
	}
}

func TestRampKernelRejectsSmallSizes(t *testing.T) {
	for _, size := range []int{-3, 0, 1} {
		k, err := RampKernel(size)
		assert.ErrorIs(t, err, ErrInvalidParameter, "size %d", size)
		assert.Nil(t, k)
	}
	k, err := RampKernel(2)
	require.NoError(t, err)
	assert.Len(t, k, 2)
}

func TestFilterSinogramIdentityKernel(t *testing.T) {
	s := mat.NewDense(3, 5, []float64{
		1, 2, 3, 4, 5,
		-1, 0, 7, 2, 2,
		9, 8, 7, 6, 5,
	})
	identity := []float64{1, 0, 0}

	once, err := FilterSinogram(s, identity)
	require.NoError(t, err)
	twice, err := FilterSinogram(once, identity)
	require.NoError(t, err)
	assert.True(t, mat.Equal(s, twice))
}

func TestFilterSinogramTruncatedBoundary(t *testing.T) {
	s := mat.NewDense(1, 4, []float64{1, 2, 3, 4})
	got, err := FilterSinogram(s, []float64{1, 0.5})
	require.NoError(t, err)

	want := []float64{
		1 + 2*0.5,
		2 + (3+1)*0.5,
		3 + (4+2)*0.5,
		4 + 3*0.5,
	}
	if diff := cmp.Diff(want, mat.Row(nil, 0, got), approx); diff != "" {
		t.Errorf("filtered row mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterSinogramKernelLongerThanRow(t *testing.T) {
	s := mat.NewDense(1, 3, []float64{1, 1, 1})
	kernel, err := RampKernel(9)
	require.NoError(t, err)

	got, err := FilterSinogram(s, kernel)
	require.NoError(t, err)
	k1 := kernel[1]
	want := []float64{1 + k1, 1 + 2*k1, 1 + k1}
	if diff := cmp.Diff(want, mat.Row(nil, 0, got), approx); diff != "" {
		t.Errorf("filtered row mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterSinogramPreservesShapeAndInput(t *testing.T) {
	s := filled(6, 9, 2)
	orig := mat.DenseCopyOf(s)
	kernel, err := RampKernel(5)
	require.NoError(t, err)

	got, err := FilterSinogram(s, kernel)
	require.NoError(t, err)
	r, c := got.Dims()
	assert.Equal(t, 6, r)
	assert.Equal(t, 9, c)
	assert.True(t, mat.Equal(orig, s), "input sinogram must not be modified")
}

func TestFilterSinogramRejectsNarrowSinogram(t *testing.T) {
	for _, detectors := range []int{1, 2} {
		s := filled(4, detectors, 1)
		got, err := FilterSinogram(s, []float64{1, 0.5})
		assert.ErrorIs(t, err, ErrInvalidShape, "%d detectors", detectors)
		assert.Nil(t, got)
	}
}

func TestFilterSinogramRejectsEmptyKernel(t *testing.T) {
	_, err := FilterSinogram(filled(2, 5, 1), nil)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestKernelResponse(t *testing.T) {
	flat, err := KernelResponse([]float64{1}, 8)
	require.NoError(t, err)
	if diff := cmp.Diff([]float64{1, 1, 1, 1, 1}, flat, approx); diff != "" {
		t.Errorf("delta response mismatch (-want +got):\n%s", diff)
	}

	kernel, err := RampKernel(5)
	require.NoError(t, err)
	resp, err := KernelResponse(kernel, 16)
	require.NoError(t, err)
	require.Len(t, resp, 9)

	assert.InDelta(t, 1+2*(kernel[1]+kernel[3]), resp[0], 1e-12)
	assert.InDelta(t, 1-2*(kernel[1]+kernel[3]), resp[8], 1e-12)
	assert.Greater(t, resp[8], resp[0], "ramp response should rise towards Nyquist")
	assert.Positive(t, resp[0])
}

func TestKernelResponseRejectsShortGrid(t *testing.T) {
	_, err := KernelResponse([]float64{1, 2, 3}, 4)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = KernelResponse(nil, 4)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}
