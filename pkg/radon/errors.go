package radon

import "errors"

var (
	// ErrInvalidShape is returned when an image or sinogram has dimensions the
	// requested operation cannot work with, e.g. a sinogram with too few
	// detectors to filter.
	ErrInvalidShape = errors.New("radon: invalid shape")

	// ErrInvalidParameter is returned when a count, size or width fraction is
	// out of its valid range.
	ErrInvalidParameter = errors.New("radon: invalid parameter")
)
