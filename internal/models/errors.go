package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for request validation.
var (
	ErrMissingName    = errors.New("name is required")
	ErrMissingText    = errors.New("text is required")
	ErrMissingLabels  = errors.New("labels are required")
	ErrMissingSamples = errors.New("at least one sample is required")
)

// Sentinel errors for entity lookups.
var (
	ErrDatasetNotFound = errors.New("dataset not found")
	ErrSampleNotFound  = errors.New("sample not found")
)

// ErrDuplicateKey indicates a unique constraint violation (maps to HTTP 409 Conflict).
var ErrDuplicateKey = errors.New("duplicate key")

// ErrInvalidLabel indicates a label value that does not fit the dataset's schema.
// Wrapped with the offending label name and value.
var ErrInvalidLabel = errors.New("invalid label")

// ErrFieldTooLong returns an error indicating a field exceeds its maximum length.
func ErrFieldTooLong(field string, maxLen int) error {
	return fmt.Errorf("%s exceeds maximum length of %d", field, maxLen)
}
