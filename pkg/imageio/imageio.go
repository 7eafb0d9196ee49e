// Package imageio moves images between files, image.Image values and the
// float grids the projector works on.
package imageio

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // register GIF decoding
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"  // register BMP decoding
	_ "golang.org/x/image/tiff" // register TIFF decoding
	_ "golang.org/x/image/webp" // register WebP decoding
	"gonum.org/v1/gonum/mat"

	"tomograph/pkg/radon"
)

// ErrInvalidShape is returned when an image carries more than one channel and
// no explicit reduction was requested.
var ErrInvalidShape = radon.ErrInvalidShape

// Channel selects how a colour image is reduced to a single channel.
type Channel string

const (
	Red   Channel = "red"
	Green Channel = "green"
	Blue  Channel = "blue"
	// Luma uses the ITU-R BT.601 weights applied by color.GrayModel.
	Luma Channel = "luma"
)

// ParseChannel validates a channel name from configuration or flags.
func ParseChannel(s string) (Channel, error) {
	switch c := Channel(strings.ToLower(strings.TrimSpace(s))); c {
	case Red, Green, Blue, Luma:
		return c, nil
	default:
		return "", fmt.Errorf("unknown channel %q (must be red, green, blue or luma)", s)
	}
}

// Load decodes the image stored at path. PNG, JPEG, GIF, BMP, TIFF and WebP
// are recognized.
func Load(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}

// IsGray reports whether img has a single intensity channel.
func IsGray(img image.Image) bool {
	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		return true
	}
	return false
}

// ToGrid converts a grayscale image to a grid of intensities in [0, 1], row
// index first. Colour images are rejected with ErrInvalidShape; use
// ToGridChannel to reduce them.
func ToGrid(img image.Image) (*mat.Dense, error) {
	if !IsGray(img) {
		return nil, fmt.Errorf("%w: %T has more than one channel", ErrInvalidShape, img)
	}
	return ToGridChannel(img, Luma)
}

// ToGridChannel converts img to a grid of intensities in [0, 1] using the
// selected channel.
func ToGridChannel(img image.Image, ch Channel) (*mat.Dense, error) {
	if _, err := ParseChannel(string(ch)); err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidShape)
	}

	grid := mat.NewDense(height, width, nil)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := img.At(bounds.Min.X+x, bounds.Min.Y+y)
			var v uint32
			switch ch {
			case Red:
				v, _, _, _ = c.RGBA()
			case Green:
				_, v, _, _ = c.RGBA()
			case Blue:
				_, _, v, _ = c.RGBA()
			default:
				v = uint32(color.Gray16Model.Convert(c).(color.Gray16).Y)
			}
			grid.Set(y, x, float64(v)/65535.0)
		}
	}
	return grid, nil
}

// FromGrid maps grid values linearly so that low becomes black and high
// becomes white, clamping everything outside [low, high].
func FromGrid(grid mat.Matrix, low, high float64) *image.Gray16 {
	rows, cols := grid.Dims()
	img := image.NewGray16(image.Rect(0, 0, cols, rows))
	span := high - low
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			var v float64
			if span > 0 {
				v = (grid.At(y, x) - low) / span
			}
			value := uint16(math.Max(0, math.Min(65535, v*65535)))
			img.SetGray16(x, y, color.Gray16{Y: value})
		}
	}
	return img
}

// Save writes img to path as JPEG when the extension is .jpg or .jpeg and as
// PNG otherwise. Parent directories are created as needed.
func Save(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(file, img, &jpeg.Options{Quality: 90})
	default:
		err = png.Encode(file, img)
	}
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	return err
}
