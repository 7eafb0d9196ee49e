package visualization

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"tomograph/pkg/imageio"
)

// Display levels are taken from these percentiles of the final frame's
// middle row, which keeps the bright streaks of unfiltered backprojection
// from washing out the rest of the image.
const (
	lowPercentile  = 0.05
	highPercentile = 0.95
)

// Viewer renders a reconstruction stack for inspection: one image per
// frame, all sharing the display levels of the final frame so that the
// sequence can be played back as an animation.
type Viewer struct {
	// frames holds the cumulative reconstructions, one per angle
	frames []*mat.Dense

	// display window mapped to black..white
	low  float64
	high float64
}

// NewViewer creates a viewer for frames. frames must not be empty.
func NewViewer(frames []*mat.Dense) (*Viewer, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("no frames to view")
	}
	v := &Viewer{frames: frames}
	v.low, v.high = DisplayLevels(frames[len(frames)-1])
	return v, nil
}

// Len returns the number of frames.
func (v *Viewer) Len() int {
	return len(v.frames)
}

// Levels returns the display window shared by all frames.
func (v *Viewer) Levels() (low, high float64) {
	return v.low, v.high
}

// DisplayLevels computes the display window of frame from the 5th and 95th
// percentiles of its middle row. When that row is flat the full range of the
// frame is used instead, and a flat frame gets a unit window.
func DisplayLevels(frame mat.Matrix) (low, high float64) {
	rows, _ := frame.Dims()
	row := mat.Row(nil, rows/2, frame)
	sort.Float64s(row)
	low = stat.Quantile(lowPercentile, stat.Empirical, row, nil)
	high = stat.Quantile(highPercentile, stat.Empirical, row, nil)
	if high > low {
		return low, high
	}

	all := mat.DenseCopyOf(frame).RawMatrix().Data
	low, high = floats.Min(all), floats.Max(all)
	if high > low {
		return low, high
	}
	return low, low + 1
}

// ExtractFrame renders frame index as a 16-bit grayscale image.
func (v *Viewer) ExtractFrame(index int) (image.Image, error) {
	if index < 0 || index >= len(v.frames) {
		return nil, fmt.Errorf("frame %d out of range [0, %d)", index, len(v.frames))
	}
	return imageio.FromGrid(v.frames[index], v.low, v.high), nil
}

// SaveFrame saves a rendered frame; the format follows the file extension.
func (v *Viewer) SaveFrame(img image.Image, filename string) error {
	return imageio.Save(filename, img)
}

// SaveFrameSequence renders every step-th frame into outputDir as
// frame_NNN.<format>. The final frame is always written. It returns the
// paths written, in frame order.
func (v *Viewer) SaveFrameSequence(outputDir string, step int, format string) ([]string, error) {
	if step < 1 {
		step = 1
	}
	if format == "" {
		format = "png"
	}

	var written []string
	last := len(v.frames) - 1
	for i := 0; i <= last; i++ {
		if i%step != 0 && i != last {
			continue
		}
		img, err := v.ExtractFrame(i)
		if err != nil {
			return written, err
		}
		filename := filepath.Join(outputDir, fmt.Sprintf("frame_%03d.%s", i, format))
		if err := v.SaveFrame(img, filename); err != nil {
			return written, fmt.Errorf("failed to save frame %d: %w", i, err)
		}
		written = append(written, filename)
	}
	return written, nil
}

// SinogramImage renders a sinogram with its full value range, one image row
// per angle.
func SinogramImage(sinogram mat.Matrix) image.Image {
	data := mat.DenseCopyOf(sinogram).RawMatrix().Data
	low, high := floats.Min(data), floats.Max(data)
	return imageio.FromGrid(sinogram, low, high)
}

// SaveProfilePlot plots the middle row of the final frame together with the
// display window. The output format follows the file extension (png, svg,
// pdf, ...).
func (v *Viewer) SaveProfilePlot(filename string) error {
	final := v.frames[len(v.frames)-1]
	rows, cols := final.Dims()

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Final frame, row %d", rows/2)
	p.X.Label.Text = "column"
	p.Y.Label.Text = "intensity"

	pts := make(plotter.XYs, cols)
	for c := 0; c < cols; c++ {
		pts[c] = plotter.XY{X: float64(c), Y: final.At(rows/2, c)}
	}
	profile, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("failed to build profile: %w", err)
	}
	profile.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	profile.Width = vg.Points(1)
	p.Add(plotter.NewGrid(), profile)
	p.Legend.Add("profile", profile)

	for _, level := range []struct {
		name  string
		value float64
	}{{"low level", v.low}, {"high level", v.high}} {
		line, err := plotter.NewLine(plotter.XYs{{X: 0, Y: level.value}, {X: float64(cols - 1), Y: level.value}})
		if err != nil {
			return fmt.Errorf("failed to build %s: %w", level.name, err)
		}
		line.Color = color.RGBA{R: 214, G: 39, B: 40, A: 255}
		line.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(line)
		p.Legend.Add(level.name, line)
	}
	p.Legend.Top = true

	return p.Save(8*vg.Inch, 4*vg.Inch, filename)
}
