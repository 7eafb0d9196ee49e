package models

import "time"

// Patient holds the identifying data attached to a study
type Patient struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Sex      string `yaml:"sex"`
	Comments string `yaml:"comments,omitempty"`
}

// ScanParameters describes the simulated acquisition that produced a study
type ScanParameters struct {
	// ImageSize is the side of the reconstructed image in pixels
	ImageSize int `yaml:"imageSize"`

	NumAngles    int     `yaml:"numAngles"`
	NumDetectors int     `yaml:"numDetectors"`
	Width        float64 `yaml:"width"`

	// MaskSize is the ramp filter length, 0 when the sinogram was not filtered
	MaskSize int `yaml:"maskSize"`
}

// StudyRecord is the exported summary of one reconstruction run
type StudyRecord struct {
	// StudyUID uniquely identifies the run
	StudyUID string `yaml:"studyUID"`

	StudyTime time.Time `yaml:"studyTime"`

	Patient Patient        `yaml:"patient"`
	Scan    ScanParameters `yaml:"scan"`

	// Source is the input image path, empty for generated phantoms
	Source string `yaml:"source,omitempty"`

	// Frames is the number of reconstructed frames
	Frames int `yaml:"frames"`

	// Levels is the display window [low, high] of the final frame
	Levels []float64 `yaml:"levels,flow"`

	// FinalFrame is the file holding the final reconstruction
	FinalFrame string `yaml:"finalFrame,omitempty"`

	// DicomFile is the DICOM export of the final frame, if written
	DicomFile string `yaml:"dicomFile,omitempty"`
}
