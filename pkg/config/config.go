// Package config provides configuration loading and management for tomograph.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Scan parameters
	Scan struct {
		// ImageSize is the side of the reconstructed image in pixels
		ImageSize int `yaml:"imageSize"`

		// NumAngles is the number of projection angles over half a turn
		NumAngles int `yaml:"numAngles"`

		// NumDetectors is the number of detectors in the array
		NumDetectors int `yaml:"numDetectors"`

		// Width is the fraction of the image covered by the detector array
		Width float64 `yaml:"width"`

		// MaskSize is the ramp filter length; 0 disables filtering
		MaskSize int `yaml:"maskSize"`

		// NumCores specifies how many angles are projected concurrently
		NumCores int `yaml:"numCores"`
	} `yaml:"scan"`

	// Input parameters
	Input struct {
		// Channel used to reduce colour images: red, green, blue or luma
		Channel string `yaml:"channel"`
	} `yaml:"input"`

	// Output parameters
	Output struct {
		// Dir is where frames, plots and the study record are written
		Dir string `yaml:"dir"`

		SaveFrames bool `yaml:"saveFrames"`

		// FrameFormat is png or jpeg
		FrameFormat string `yaml:"frameFormat"`

		// FrameStep writes every n-th frame; the final frame is always written
		FrameStep int `yaml:"frameStep"`

		SaveSinogram bool `yaml:"saveSinogram"`
		SaveProfile  bool `yaml:"saveProfile"`
		SaveRecord   bool `yaml:"saveRecord"`

		// SaveDicom exports the final frame with the patient data as DICOM
		SaveDicom bool `yaml:"saveDicom"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`

	// Patient data written to the study record
	Patient struct {
		ID       string `yaml:"id"`
		Name     string `yaml:"name"`
		Sex      string `yaml:"sex"`
		Comments string `yaml:"comments"`
	} `yaml:"patient"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Scan.ImageSize = 400
	cfg.Scan.NumAngles = 50
	cfg.Scan.NumDetectors = 10
	cfg.Scan.Width = 0.9
	cfg.Scan.MaskSize = 5
	cfg.Scan.NumCores = runtime.NumCPU()

	cfg.Input.Channel = "red"

	cfg.Output.Dir = "tomograph_output"
	cfg.Output.SaveFrames = true
	cfg.Output.FrameFormat = "png"
	cfg.Output.FrameStep = 1
	cfg.Output.SaveSinogram = true
	cfg.Output.SaveProfile = true
	cfg.Output.SaveRecord = true
	cfg.Output.SaveDicom = true
	cfg.Output.Verbose = false

	cfg.Patient.Sex = "male"

	return cfg
}

// Validate checks that every value is usable by the scanner
func (c *Config) Validate() error {
	var errs []error
	if c.Scan.ImageSize < 1 {
		errs = append(errs, fmt.Errorf("scan.imageSize must be positive, got %d", c.Scan.ImageSize))
	}
	if c.Scan.NumAngles < 1 {
		errs = append(errs, fmt.Errorf("scan.numAngles must be positive, got %d", c.Scan.NumAngles))
	}
	if c.Scan.NumDetectors < 1 {
		errs = append(errs, fmt.Errorf("scan.numDetectors must be positive, got %d", c.Scan.NumDetectors))
	}
	if math.IsNaN(c.Scan.Width) || c.Scan.Width <= 0 || c.Scan.Width > 1 {
		errs = append(errs, fmt.Errorf("scan.width must be in (0, 1], got %g", c.Scan.Width))
	}
	if c.Scan.MaskSize < 0 || c.Scan.MaskSize == 1 {
		errs = append(errs, fmt.Errorf("scan.maskSize must be 0 or at least 2, got %d", c.Scan.MaskSize))
	}
	if c.Scan.MaskSize > 0 && c.Scan.NumDetectors <= 2 {
		errs = append(errs, fmt.Errorf("filtering needs more than 2 detectors, got %d", c.Scan.NumDetectors))
	}
	switch c.Output.FrameFormat {
	case "png", "jpeg", "jpg":
	default:
		errs = append(errs, fmt.Errorf("output.frameFormat must be png or jpeg, got %q", c.Output.FrameFormat))
	}
	return errors.Join(errs...)
}

// LoadConfig reads configPath over the defaults. Keys missing from the file
// keep their default value, and a missing file yields DefaultConfig.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return cfg, nil
	case err != nil:
		return nil, fmt.Errorf("reading config %s: %w", configPath, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", configPath, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg as YAML, creating parent directories as needed.
func SaveConfig(cfg *Config, configPath string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return os.WriteFile(configPath, data, 0644)
}

// CreateDefaultConfigFile writes DefaultConfig to configPath.
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}
