package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"tomograph/pkg/config"
)

var version = "dev"

// SetVersion sets the version reported by --version.
func SetVersion(v string) {
	version = v
}

// Execute runs the tomograph CLI.
func Execute() error {
	return newRootCmd().ExecuteContext(context.Background())
}

func newRootCmd() *cobra.Command {
	var (
		verbose    bool
		configPath string
	)

	root := &cobra.Command{
		Use:          "tomograph",
		Short:        "Simulate CT acquisition and filtered backprojection",
		Long:         `tomograph simulates a parallel-beam CT scanner: it projects an image into a sinogram, optionally filters it with a ramp kernel and reconstructs it frame by frame through backprojection.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			level := charmlog.InfoLevel
			if verbose || cfg.Output.Verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(withConfig(ctx, cfg))
			return nil
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("tomograph %s\n", version))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "tomograph.yaml", "configuration file")

	root.AddCommand(newScanCmd())
	root.AddCommand(newPhantomCmd())
	root.AddCommand(newKernelCmd())
	root.AddCommand(newConfigCmd())
	return root
}
