// Package dicomio exports reconstructed frames as single-frame DICOM
// secondary capture images carrying the patient and study metadata.
package dicomio

import (
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/frame"
	"github.com/suyashkumar/dicom/pkg/tag"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"tomograph/internal/models"
)

const (
	secondaryCaptureSOPClass = "1.2.840.10008.5.1.4.1.1.7"
	explicitVRLittleEndian   = "1.2.840.10008.1.2.1"

	// MaxPixel is the value of the brightest pixel after rescaling.
	MaxPixel = 1<<16 - 1
)

// Metadata describes the study an exported image belongs to.
type Metadata struct {
	// StudyUUID identifies the study; it is converted to a "2.25." UID.
	StudyUUID string
	StudyTime time.Time
	Patient   models.Patient
	Modality  string
}

// UID converts a UUID to the DICOM UID form "2.25.<decimal>".
func UID(id uuid.UUID) string {
	return "2.25." + new(big.Int).SetBytes(id[:]).String()
}

// PatientSex maps a free-form sex to the DICOM code M, F or O.
func PatientSex(sex string) string {
	switch strings.ToLower(strings.TrimSpace(sex)) {
	case "m", "male", "mezczyzna":
		return "M"
	case "f", "female", "kobieta":
		return "F"
	default:
		return "O"
	}
}

// Rescale maps grid linearly onto [0, MaxPixel], row-major. A flat grid maps
// to zeros.
func Rescale(grid mat.Matrix) []int {
	data := mat.DenseCopyOf(grid).RawMatrix().Data
	low, high := floats.Min(data), floats.Max(data)
	out := make([]int, len(data))
	if high <= low {
		return out
	}
	scale := MaxPixel / (high - low)
	for i, v := range data {
		out[i] = int((v-low)*scale + 0.5)
	}
	return out
}

// Dataset builds the DICOM dataset for grid. Pixel values are rescaled to
// unsigned 16-bit.
func Dataset(grid mat.Matrix, meta Metadata) (dicom.Dataset, error) {
	rows, cols := grid.Dims()
	studyID, err := uuid.Parse(meta.StudyUUID)
	if err != nil {
		return dicom.Dataset{}, fmt.Errorf("invalid study UUID %q: %w", meta.StudyUUID, err)
	}
	modality := meta.Modality
	if modality == "" {
		modality = "CT"
	}
	instanceUID := UID(uuid.New())

	pixels := Rescale(grid)
	samples := make([][]int, len(pixels))
	for i, v := range pixels {
		samples[i] = []int{v}
	}
	pixelData := dicom.PixelDataInfo{
		IsEncapsulated: false,
		Frames: []*frame.Frame{{
			Encapsulated: false,
			NativeData: frame.NativeFrame{
				BitsPerSample: 16,
				Rows:          rows,
				Cols:          cols,
				Data:          samples,
			},
		}},
	}

	// elements are listed in ascending tag order
	b := &builder{}
	b.add(tag.MediaStorageSOPClassUID, []string{secondaryCaptureSOPClass})
	b.add(tag.MediaStorageSOPInstanceUID, []string{instanceUID})
	b.add(tag.TransferSyntaxUID, []string{explicitVRLittleEndian})
	b.add(tag.SOPClassUID, []string{secondaryCaptureSOPClass})
	b.add(tag.SOPInstanceUID, []string{instanceUID})
	b.add(tag.StudyDate, []string{meta.StudyTime.Format("20060102")})
	b.add(tag.StudyTime, []string{meta.StudyTime.Format("150405.000")})
	b.add(tag.Modality, []string{modality})
	b.add(tag.PatientName, []string{meta.Patient.Name})
	b.add(tag.PatientID, []string{meta.Patient.ID})
	b.add(tag.PatientSex, []string{PatientSex(meta.Patient.Sex)})
	b.add(tag.StudyInstanceUID, []string{UID(studyID)})
	b.add(tag.SeriesInstanceUID, []string{UID(uuid.New())})
	b.add(tag.ImageComments, []string{meta.Patient.Comments})
	b.add(tag.SamplesPerPixel, []int{1})
	b.add(tag.PhotometricInterpretation, []string{"MONOCHROME2"})
	b.add(tag.Rows, []int{rows})
	b.add(tag.Columns, []int{cols})
	b.add(tag.BitsAllocated, []int{16})
	b.add(tag.BitsStored, []int{16})
	b.add(tag.HighBit, []int{15})
	b.add(tag.PixelRepresentation, []int{0})
	b.add(tag.PixelData, pixelData)
	if b.err != nil {
		return dicom.Dataset{}, b.err
	}
	return dicom.Dataset{Elements: b.elems}, nil
}

// Write saves grid as a DICOM file at path.
func Write(path string, grid mat.Matrix, meta Metadata) error {
	ds, err := Dataset(grid, meta)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := dicom.Write(f, ds); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}

// builder collects elements and keeps the first error.
type builder struct {
	elems []*dicom.Element
	err   error
}

func (b *builder) add(t tag.Tag, value any) {
	if b.err != nil {
		return
	}
	elem, err := dicom.NewElement(t, value)
	if err != nil {
		b.err = fmt.Errorf("element %s: %w", t, err)
		return
	}
	b.elems = append(b.elems, elem)
}
