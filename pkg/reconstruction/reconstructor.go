package reconstruction

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/mat"

	"tomograph/internal/models"
	"tomograph/pkg/config"
	"tomograph/pkg/imageio"
	"tomograph/pkg/radon"
)

// Params holds the scan and output parameters of one run.
type Params struct {
	// InputFile is the image to scan. It may be empty when Scan is called
	// directly with an in-memory image.
	InputFile string

	// OutputDir receives frames, sinograms, the profile plot and the study
	// record. Nothing is written when it is empty.
	OutputDir string

	// ImageSize is the side of the reconstructed frames in pixels.
	ImageSize int

	// NumAngles projections are taken over half a turn.
	NumAngles int

	NumDetectors int

	// Width is the fraction of the image covered by the detector array.
	Width float64

	// MaskSize is the ramp filter length; 0 backprojects the raw sinogram.
	MaskSize int

	// NumCores is the number of angles projected concurrently.
	NumCores int

	// Channel reduces colour input images to one channel.
	Channel imageio.Channel

	SaveFrames   bool
	FrameFormat  string
	FrameStep    int
	SaveSinogram bool
	SaveProfile  bool
	SaveRecord   bool
	SaveDicom    bool

	Patient models.Patient
}

// ParamsFromConfig builds run parameters from a validated configuration.
func ParamsFromConfig(cfg *config.Config, inputFile string) (*Params, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	channel, err := imageio.ParseChannel(cfg.Input.Channel)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &Params{
		InputFile:    inputFile,
		OutputDir:    cfg.Output.Dir,
		ImageSize:    cfg.Scan.ImageSize,
		NumAngles:    cfg.Scan.NumAngles,
		NumDetectors: cfg.Scan.NumDetectors,
		Width:        cfg.Scan.Width,
		MaskSize:     cfg.Scan.MaskSize,
		NumCores:     cfg.Scan.NumCores,
		Channel:      channel,
		SaveFrames:   cfg.Output.SaveFrames,
		FrameFormat:  cfg.Output.FrameFormat,
		FrameStep:    cfg.Output.FrameStep,
		SaveSinogram: cfg.Output.SaveSinogram,
		SaveProfile:  cfg.Output.SaveProfile,
		SaveRecord:   cfg.Output.SaveRecord,
		SaveDicom:    cfg.Output.SaveDicom,
		Patient: models.Patient{
			ID:       cfg.Patient.ID,
			Name:     cfg.Patient.Name,
			Sex:      cfg.Patient.Sex,
			Comments: cfg.Patient.Comments,
		},
	}, nil
}

// Reconstructor runs the simulated CT pipeline:
// 1. Loading the source image and reducing it to one channel
// 2. Projecting it into a sinogram
// 3. Filtering the sinogram with a ramp kernel (optional)
// 4. Backprojecting into a stack of progressively refined frames
// 5. Writing outputs and calculating quality metrics
type Reconstructor struct {
	params *Params
	logger *log.Logger

	// source is the scanned image
	source *mat.Dense

	// sinogram is the raw projection data, filtered the ramp-filtered copy
	sinogram *mat.Dense
	filtered *mat.Dense
	kernel   []float64

	// frames is the reconstruction stack, one frame per angle
	frames []*mat.Dense

	metrics ValidationMetrics
	record  *models.StudyRecord
}

// NewReconstructor creates a new reconstructor. A nil logger falls back to
// log.Default().
func NewReconstructor(params *Params, logger *log.Logger) *Reconstructor {
	if logger == nil {
		logger = log.Default()
	}
	return &Reconstructor{
		params: params,
		logger: logger,
	}
}

// Process loads the input image, scans it and writes the configured outputs.
func (r *Reconstructor) Process(ctx context.Context) error {
	start := time.Now()

	r.logger.Info("Step 1: loading source image", "path", r.params.InputFile)
	src, err := r.loadSource()
	if err != nil {
		return fmt.Errorf("failed to load source image: %w", err)
	}

	if err := r.Scan(ctx, src); err != nil {
		return err
	}

	if r.params.OutputDir != "" {
		r.logger.Info("Step 5: writing outputs", "dir", r.params.OutputDir)
		if err := r.writeOutputs(); err != nil {
			return fmt.Errorf("failed to write outputs: %w", err)
		}
	}

	r.logger.Info("Reconstruction completed", "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

// Scan runs projection, filtering and backprojection on src and computes the
// validation metrics. It performs no file I/O.
func (r *Reconstructor) Scan(ctx context.Context, src *mat.Dense) error {
	if src == nil {
		return fmt.Errorf("no source image")
	}
	p := r.params
	r.source = src
	r.sinogram, r.filtered, r.kernel, r.frames = nil, nil, nil, nil
	r.metrics, r.record = ValidationMetrics{}, nil

	r.logger.Info("Step 2: projecting", "angles", p.NumAngles, "detectors", p.NumDetectors, "width", p.Width)
	sinogram, err := radon.Project(src, p.NumAngles, p.NumDetectors, p.Width,
		radon.WithContext(ctx),
		radon.WithWorkers(p.NumCores),
		radon.WithProgress(r.progress("projection", p.NumAngles)))
	if err != nil {
		return fmt.Errorf("failed to project image: %w", err)
	}
	r.sinogram = sinogram

	backprojected := mat.Matrix(sinogram)
	if p.MaskSize > 0 {
		r.logger.Info("Step 3: filtering sinogram", "maskSize", p.MaskSize)
		if err := r.filterSinogram(); err != nil {
			return fmt.Errorf("failed to filter sinogram: %w", err)
		}
		backprojected = r.filtered
	} else {
		r.logger.Info("Step 3: filtering disabled")
	}

	r.logger.Info("Step 4: backprojecting", "size", p.ImageSize)
	frames, err := radon.Reconstruct(backprojected, p.Width, p.ImageSize,
		radon.WithContext(ctx),
		radon.WithProgress(r.progress("backprojection", p.NumAngles)))
	if err != nil {
		return fmt.Errorf("failed to reconstruct image: %w", err)
	}
	r.frames = frames

	r.metrics = calculateValidationMetrics(src, frames[len(frames)-1])
	if r.metrics.Compared {
		r.logger.Info("Validation metrics", "rmse", r.metrics.RMSE, "ssim", r.metrics.SSIM, "correlation", r.metrics.Correlation)
	} else {
		r.logger.Debug("Skipping validation metrics, source and output sizes differ")
	}
	return nil
}

func (r *Reconstructor) filterSinogram() error {
	kernel, err := radon.RampKernel(r.params.MaskSize)
	if err != nil {
		return err
	}
	r.kernel = kernel
	r.logger.Debug("Ramp kernel", "coefficients", kernel)

	if response, err := radon.KernelResponse(kernel, 4*len(kernel)); err == nil {
		r.logger.Debug("Ramp kernel response", "dc", response[0], "nyquist", response[len(response)-1])
	}

	filtered, err := radon.FilterSinogram(r.sinogram, kernel)
	if err != nil {
		return err
	}
	r.filtered = filtered
	return nil
}

// progress logs the completion percentage of a stage whenever it advances.
func (r *Reconstructor) progress(stage string, n int) radon.ProgressFunc {
	last := -1
	return func(angle int) {
		pct := 100 * (angle + 1) / n
		if pct != last {
			last = pct
			r.logger.Debug("Progress", "stage", stage, "angle", angle, "percent", pct)
		}
	}
}

func (r *Reconstructor) loadSource() (*mat.Dense, error) {
	img, err := imageio.Load(r.params.InputFile)
	if err != nil {
		return nil, err
	}
	if imageio.IsGray(img) {
		return imageio.ToGrid(img)
	}
	r.logger.Warn("Reducing colour image to a single channel", "channel", r.params.Channel)
	return imageio.ToGridChannel(img, r.params.Channel)
}

// GetMetrics returns the validation metrics of the last scan.
func (r *Reconstructor) GetMetrics() ValidationMetrics {
	return r.metrics
}

// Sinogram returns the raw sinogram of the last scan.
func (r *Reconstructor) Sinogram() *mat.Dense {
	return r.sinogram
}

// FilteredSinogram returns the ramp-filtered sinogram, or nil when filtering
// was disabled.
func (r *Reconstructor) FilteredSinogram() *mat.Dense {
	return r.filtered
}

// Kernel returns the ramp kernel used for filtering, if any.
func (r *Reconstructor) Kernel() []float64 {
	return r.kernel
}

// Frames returns the reconstruction stack.
func (r *Reconstructor) Frames() []*mat.Dense {
	return r.frames
}

// Record returns the study record of the last Process run, or nil when no
// outputs were written.
func (r *Reconstructor) Record() *models.StudyRecord {
	return r.record
}

// Source returns the scanned image.
func (r *Reconstructor) Source() *mat.Dense {
	return r.source
}
