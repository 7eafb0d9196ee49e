package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tomograph/pkg/config"
	"tomograph/pkg/imageio"
	"tomograph/pkg/reconstruction"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)
	logger.Debug("hidden")
	assert.Zero(t, buf.Len())
	logger.Info("shown")
	assert.NotZero(t, buf.Len())
}

func TestContextDefaults(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, log.Default(), loggerFromContext(ctx))
	assert.Equal(t, config.DefaultConfig().Scan, configFromContext(ctx).Scan)

	cfg := config.DefaultConfig()
	cfg.Scan.NumAngles = 7
	assert.Equal(t, 7, configFromContext(withConfig(ctx, cfg)).Scan.NumAngles)
}

func TestKernelCommand(t *testing.T) {
	out, err := run(t, "kernel", "--size", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "+1.000000")
	assert.Contains(t, out, "-0.405285") // -4/π²
	assert.Contains(t, out, "frequency  response")
}

func TestKernelCommandRejectsSizeOne(t *testing.T) {
	_, err := run(t, "kernel", "--size", "1")
	assert.Error(t, err)
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tomograph.yaml")
	_, err := run(t, "config", "init", path)
	require.NoError(t, err)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Scan.NumAngles)
}

func TestPhantomCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "point.png")
	_, err := run(t, "phantom", "point", path, "--size", "16")
	require.NoError(t, err)

	img, err := imageio.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 16, img.Bounds().Dx())

	_, err = run(t, "phantom", "triangle", path)
	assert.Error(t, err)
}

func TestScanCommand(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	dir := t.TempDir()
	input := filepath.Join(dir, "disc.png")
	_, err := run(t, "phantom", "disc", input, "--size", "24")
	require.NoError(t, err)

	output := filepath.Join(dir, "out")
	_, err = run(t, "scan", input,
		"--size", "24", "--angles", "6", "--detectors", "8", "--width", "1",
		"--mask", "3", "--cores", "2", "--output", output, "--frame-step", "2")
	require.NoError(t, err)

	for _, name := range []string{"final.png", reconstruction.RecordFile, reconstruction.SinogramFile, reconstruction.DicomFile} {
		_, err := os.Stat(filepath.Join(output, name))
		assert.NoError(t, err, name)
	}
	entries, err := os.ReadDir(filepath.Join(output, reconstruction.FramesDir))
	require.NoError(t, err)
	assert.Len(t, entries, 4) // frames 0, 2, 4 and the final frame 5

	noDicom := filepath.Join(dir, "no-dicom")
	_, err = run(t, "scan", input,
		"--size", "24", "--angles", "4", "--detectors", "8", "--output", noDicom, "--dicom=false")
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(noDicom, reconstruction.DicomFile))
	assert.FileExists(t, filepath.Join(noDicom, "final.png"))
}

func TestScanCommandInvalidFlags(t *testing.T) {
	_, err := run(t, "scan", "missing.png", "--mask", "1")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "maskSize"))
}
