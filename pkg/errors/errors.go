// Package errors provides common, reusable error values and helpers.
package errors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrDriverNotFound      = errors.New("driver not found")
	ErrDriverAlreadyExists = errors.New("driver already exists")

	// Document errors
	ErrDocumentNotFound      = errors.New("document not found")
	ErrInvalidDocumentType   = errors.New("invalid document type")
	ErrInvalidDocumentData   = errors.New("document data does not match document type")
	ErrUnknownDocumentType   = errors.New("unknown document type")
	ErrDocumentDataRequired  = errors.New("document data is required")
	ErrInvalidVehicleType    = errors.New("invalid vehicle type")
	ErrInvalidDocumentStatus = errors.New("invalid document status")

	// Assessment errors
	ErrAssessmentFailed    = errors.New("kyc assessment failed")
	ErrEmptyDriverProfile  = errors.New("driver profile is empty")
	ErrAssessmentNotCached = errors.New("assessment not cached")
)

// New constructs an error from a message.
func New(message string) error {
	return errors.New(message)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
