package cli

import (
	"time"

	"github.com/spf13/cobra"

	"tomograph/pkg/reconstruction"
)

func newScanCmd() *cobra.Command {
	var (
		size, angles, detectors, mask, cores, step int
		width                                      float64
		channel, output, format                    string
		saveDicom                                  bool
	)

	cmd := &cobra.Command{
		Use:   "scan <image>",
		Short: "Scan an image and reconstruct it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			cfg := configFromContext(ctx)

			flags := cmd.Flags()
			if flags.Changed("size") {
				cfg.Scan.ImageSize = size
			}
			if flags.Changed("angles") {
				cfg.Scan.NumAngles = angles
			}
			if flags.Changed("detectors") {
				cfg.Scan.NumDetectors = detectors
			}
			if flags.Changed("width") {
				cfg.Scan.Width = width
			}
			if flags.Changed("mask") {
				cfg.Scan.MaskSize = mask
			}
			if flags.Changed("cores") {
				cfg.Scan.NumCores = cores
			}
			if flags.Changed("channel") {
				cfg.Input.Channel = channel
			}
			if flags.Changed("output") {
				cfg.Output.Dir = output
			}
			if flags.Changed("format") {
				cfg.Output.FrameFormat = format
			}
			if flags.Changed("frame-step") {
				cfg.Output.FrameStep = step
			}
			if flags.Changed("dicom") {
				cfg.Output.SaveDicom = saveDicom
			}

			params, err := reconstruction.ParamsFromConfig(cfg, args[0])
			if err != nil {
				return err
			}

			start := time.Now()
			r := reconstruction.NewReconstructor(params, logger)
			if err := r.Process(ctx); err != nil {
				return err
			}
			elapsed(logger, start, "Scan finished")

			if m := r.GetMetrics(); m.Compared {
				logger.Infof("RMSE %.4f  SSIM %.4f  correlation %.4f", m.RMSE, m.SSIM, m.Correlation)
			}
			if rec := r.Record(); rec != nil {
				logger.Info("Study record written", "uid", rec.StudyUID)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&size, "size", 400, "reconstructed image size in pixels")
	f.IntVar(&angles, "angles", 50, "number of projection angles")
	f.IntVar(&detectors, "detectors", 10, "number of detectors")
	f.Float64Var(&width, "width", 0.9, "fraction of the image covered by the detectors")
	f.IntVar(&mask, "mask", 5, "ramp filter size, 0 to disable filtering")
	f.IntVar(&cores, "cores", 1, "angles projected concurrently")
	f.StringVar(&channel, "channel", "red", "channel used for colour images (red, green, blue, luma)")
	f.StringVarP(&output, "output", "o", "tomograph_output", "output directory")
	f.StringVar(&format, "format", "png", "frame format (png, jpeg)")
	f.IntVar(&step, "frame-step", 1, "save every n-th frame")
	f.BoolVar(&saveDicom, "dicom", true, "export the final frame as DICOM")
	return cmd
}
