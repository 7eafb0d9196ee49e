package radon

import (
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"tomograph/pkg/raster"
)

// Project simulates a parallel-beam acquisition of img and returns its
// sinogram: one row per angle, one column per detector. Each cell holds the
// sum of the image samples crossed by the corresponding ray.
//
// Only the leading min(rows, cols) square of img is used. The detector array
// spans width (a fraction in (0, 1]) of that square.
//
// With WithWorkers(n > 1) angles are projected concurrently; progress is
// still reported in increasing angle order.
func Project(img mat.Matrix, nAngles, nDetectors int, width float64, opts ...Option) (*mat.Dense, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidShape)
	}
	size := WorkingSize(img)
	if size < 1 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidShape)
	}
	if err := validateCount("number of angles", nAngles); err != nil {
		return nil, err
	}
	if err := validateCount("number of detectors", nDetectors); err != nil {
		return nil, err
	}
	if err := validateWidth(width); err != nil {
		return nil, err
	}

	o := newOptions(opts)
	sinogram := mat.NewDense(nAngles, nDetectors, nil)
	widthPx := float64(size) * width

	if o.workers <= 1 {
		for a := 0; a < nAngles; a++ {
			if err := o.ctx.Err(); err != nil {
				return nil, err
			}
			projectAngle(sinogram, img, a, nAngles, widthPx, size)
			o.report(a)
		}
		return sinogram, nil
	}

	tracker := newProgressTracker(nAngles, o.report)
	g, ctx := errgroup.WithContext(o.ctx)
	g.SetLimit(o.workers)
	for a := 0; a < nAngles; a++ {
		a := a
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			projectAngle(sinogram, img, a, nAngles, widthPx, size)
			tracker.complete(a)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sinogram, nil
}

// projectAngle fills row a of the sinogram. Rows are disjoint, so concurrent
// calls for different angles do not interfere.
func projectAngle(dst *mat.Dense, img mat.Matrix, a, nAngles int, widthPx float64, size int) {
	_, nDetectors := dst.Dims()
	angle := Angle(a, nAngles)
	for d := 0; d < nDetectors; d++ {
		var sum float64
		for _, p := range raster.SampleRay(angle, DetectorOffset(d, nDetectors, widthPx), size) {
			sum += img.At(p.Row, p.Col)
		}
		dst.Set(a, d, sum)
	}
}

// progressTracker turns out-of-order completions into in-order reports.
type progressTracker struct {
	mu     sync.Mutex
	done   []bool
	next   int
	report func(int)
}

func newProgressTracker(n int, report func(int)) *progressTracker {
	return &progressTracker{done: make([]bool, n), report: report}
}

func (t *progressTracker) complete(angle int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.done[angle] = true
	for t.next < len(t.done) && t.done[t.next] {
		t.report(t.next)
		t.next++
	}
}
