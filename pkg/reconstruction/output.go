package reconstruction

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"tomograph/internal/models"
	"tomograph/pkg/dicomio"
	"tomograph/pkg/imageio"
	"tomograph/pkg/visualization"
)

// Output file names inside Params.OutputDir.
const (
	FramesDir        = "frames"
	SinogramFile     = "sinogram.png"
	FilteredFile     = "sinogram_filtered.png"
	ProfileFile      = "profile.png"
	RecordFile       = "record.yaml"
	DicomFile        = "final.dcm"
	finalFramePrefix = "final."
)

func (r *Reconstructor) writeOutputs() error {
	p := r.params
	if err := os.MkdirAll(p.OutputDir, 0755); err != nil {
		return err
	}

	viewer, err := visualization.NewViewer(r.frames)
	if err != nil {
		return err
	}

	format := p.FrameFormat
	if format == "" {
		format = "png"
	}
	finalPath := filepath.Join(p.OutputDir, finalFramePrefix+format)
	final, err := viewer.ExtractFrame(viewer.Len() - 1)
	if err != nil {
		return err
	}
	if err := viewer.SaveFrame(final, finalPath); err != nil {
		return fmt.Errorf("failed to save final frame: %w", err)
	}

	if p.SaveFrames {
		written, err := viewer.SaveFrameSequence(filepath.Join(p.OutputDir, FramesDir), p.FrameStep, format)
		if err != nil {
			return err
		}
		r.logger.Debug("Saved frames", "count", len(written))
	}

	if p.SaveSinogram {
		if err := imageio.Save(filepath.Join(p.OutputDir, SinogramFile), visualization.SinogramImage(r.sinogram)); err != nil {
			return fmt.Errorf("failed to save sinogram: %w", err)
		}
		if r.filtered != nil {
			if err := imageio.Save(filepath.Join(p.OutputDir, FilteredFile), visualization.SinogramImage(r.filtered)); err != nil {
				return fmt.Errorf("failed to save filtered sinogram: %w", err)
			}
		}
	}

	if p.SaveProfile {
		if err := viewer.SaveProfilePlot(filepath.Join(p.OutputDir, ProfileFile)); err != nil {
			return fmt.Errorf("failed to save profile plot: %w", err)
		}
	}

	low, high := viewer.Levels()
	r.record = r.newRecord(filepath.Base(finalPath), low, high)

	if p.SaveDicom {
		meta := dicomio.Metadata{
			StudyUUID: r.record.StudyUID,
			StudyTime: r.record.StudyTime,
			Patient:   p.Patient,
		}
		if err := dicomio.Write(filepath.Join(p.OutputDir, DicomFile), r.frames[len(r.frames)-1], meta); err != nil {
			return fmt.Errorf("failed to save DICOM image: %w", err)
		}
		r.record.DicomFile = DicomFile
	}

	if p.SaveRecord {
		if err := saveRecord(r.record, filepath.Join(p.OutputDir, RecordFile)); err != nil {
			return fmt.Errorf("failed to save study record: %w", err)
		}
	}
	return nil
}

func (r *Reconstructor) newRecord(finalFrame string, low, high float64) *models.StudyRecord {
	p := r.params
	return &models.StudyRecord{
		StudyUID:  uuid.NewString(),
		StudyTime: time.Now().UTC().Truncate(time.Millisecond),
		Patient:   p.Patient,
		Scan: models.ScanParameters{
			ImageSize:    p.ImageSize,
			NumAngles:    p.NumAngles,
			NumDetectors: p.NumDetectors,
			Width:        p.Width,
			MaskSize:     p.MaskSize,
		},
		Source:     p.InputFile,
		Frames:     len(r.frames),
		Levels:     []float64{low, high},
		FinalFrame: finalFrame,
	}
}

func saveRecord(record *models.StudyRecord, path string) error {
	data, err := yaml.Marshal(record)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadRecord reads a study record written by Process.
func LoadRecord(path string) (*models.StudyRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var record models.StudyRecord
	if err := yaml.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("error parsing study record: %w", err)
	}
	return &record, nil
}
