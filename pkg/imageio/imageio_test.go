package imageio

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestToGridGray(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 3, 2))
	img.SetGray(2, 1, color.Gray{Y: 255})
	img.SetGray(0, 0, color.Gray{Y: 0})

	grid, err := ToGrid(img)
	require.NoError(t, err)
	r, c := grid.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
	assert.InDelta(t, 1.0, grid.At(1, 2), 1e-9)
	assert.Zero(t, grid.At(0, 0))
}

func TestToGridRejectsColour(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	grid, err := ToGrid(img)
	assert.ErrorIs(t, err, ErrInvalidShape)
	assert.Nil(t, grid)
}

func TestToGridChannel(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{R: 255, G: 0, B: 51, A: 255})

	red, err := ToGridChannel(img, Red)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, red.At(0, 0), 1e-9)

	green, err := ToGridChannel(img, Green)
	require.NoError(t, err)
	assert.Zero(t, green.At(0, 0))

	blue, err := ToGridChannel(img, Blue)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, blue.At(0, 0), 1e-9)

	_, err = ToGridChannel(img, Channel("alpha"))
	assert.Error(t, err)
}

func TestParseChannel(t *testing.T) {
	c, err := ParseChannel(" Red ")
	require.NoError(t, err)
	assert.Equal(t, Red, c)

	_, err = ParseChannel("cyan")
	assert.Error(t, err)
}

func TestFromGridClamps(t *testing.T) {
	grid := mat.NewDense(1, 3, []float64{-1, 0.5, 2})
	img := FromGrid(grid, 0, 1)
	assert.Equal(t, uint16(0), img.Gray16At(0, 0).Y)
	assert.Equal(t, uint16(32767), img.Gray16At(1, 0).Y)
	assert.Equal(t, uint16(65535), img.Gray16At(2, 0).Y)

	flat := FromGrid(grid, 3, 3)
	assert.Equal(t, uint16(0), flat.Gray16At(2, 0).Y)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	grid := mat.NewDense(8, 8, nil)
	grid.Set(4, 2, 1)

	path := filepath.Join(dir, "nested", "frame.png")
	require.NoError(t, Save(path, FromGrid(grid, 0, 1)))

	img, err := Load(path)
	require.NoError(t, err)
	assert.True(t, IsGray(img))

	back, err := ToGrid(img)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(grid, back, 1e-9))
}

func TestSaveJPEG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.jpg")
	require.NoError(t, Save(path, FromGrid(mat.NewDense(8, 8, nil), 0, 1)))

	img, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}
