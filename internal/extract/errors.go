package extract

import "errors"

var (
	// ErrUnsupportedFormat is returned when the declared type is outside the supported set.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrFileTooLarge is returned when a payload exceeds the configured maximum.
	ErrFileTooLarge = errors.New("file too large")
	// ErrExtraction is returned when decoding fails or yields no text.
	ErrExtraction = errors.New("text extraction failed")
)
