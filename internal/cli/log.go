// Package cli implements the tomograph command-line interface.
//
// Commands:
//   - scan: project an image, filter the sinogram and reconstruct it
//   - phantom: write a synthetic test image
//   - kernel: print ramp filter coefficients and their frequency response
//   - config init: write the default configuration file
//
// All commands accept --verbose (-v) for debug logging and --config (-c) to
// select a YAML configuration file.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"tomograph/pkg/config"
)

// newLogger creates a logger writing to w at the given level, with
// "HH:MM:SS.ms" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

type ctxKey int

const (
	loggerKey ctxKey = iota
	configKey
)

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

func withConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// configFromContext returns the configuration attached to ctx, or the
// defaults.
func configFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	return config.DefaultConfig()
}

// elapsed logs msg with the time since start, rounded to milliseconds.
func elapsed(l *log.Logger, start time.Time, msg string) {
	l.Infof("%s (%s)", msg, time.Since(start).Round(time.Millisecond))
}
