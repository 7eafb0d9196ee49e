package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"tomograph/pkg/radon"
)

func newKernelCmd() *cobra.Command {
	var size, points int

	cmd := &cobra.Command{
		Use:   "kernel",
		Short: "Print ramp filter coefficients and frequency response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kernel, err := radon.RampKernel(size)
			if err != nil {
				return err
			}
			if points == 0 {
				points = 4 * size
			}
			response, err := radon.KernelResponse(kernel, points)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "offset  coefficient")
			for i, k := range kernel {
				fmt.Fprintf(out, "%6d  %+.6f\n", i, k)
			}
			fmt.Fprintln(out, "\nfrequency  response")
			for i, r := range response {
				fmt.Fprintf(out, "%9.4f  %.6f\n", float64(i)/float64(points), r)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&size, "size", 5, "number of kernel coefficients")
	cmd.Flags().IntVar(&points, "points", 0, "frequency grid size (default 4*size)")
	return cmd
}
