package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	"tomograph/pkg/imageio"
	"tomograph/pkg/phantom"
)

func newPhantomCmd() *cobra.Command {
	var size int

	cmd := &cobra.Command{
		Use:   "phantom <kind> <output>",
		Short: "Write a synthetic test image",
		Long:  fmt.Sprintf("Write a synthetic test image. Kinds: %s.", strings.Join(phantom.Kinds, ", ")),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			img, err := phantom.New(args[0], size)
			if err != nil {
				return err
			}
			high := floats.Max(img.RawMatrix().Data)
			if high <= 0 {
				high = 1
			}
			if err := imageio.Save(args[1], imageio.FromGrid(img, 0, high)); err != nil {
				return fmt.Errorf("failed to save phantom: %w", err)
			}
			logger.Info("Phantom written", "kind", args[0], "size", size, "path", args[1])
			return nil
		},
	}
	cmd.Flags().IntVar(&size, "size", 400, "image size in pixels")
	return cmd
}
