package ledger

import (
	"errors"
	"fmt"

	"github.com/careledger/ledger/codec"
	"github.com/careledger/ledger/patient"
)

// Sentinel errors for common failure scenarios.
var (
	// Bill errors
	ErrBillNotFound    = errors.New("ledger: bill not found")
	ErrPaymentNotFound = errors.New("ledger: payment not found")

	// ErrPatientNotFound is the patient directory's not-found error under
	// its ledger name, so callers can match either spelling with errors.Is.
	ErrPatientNotFound = patient.ErrNotFound

	// Lifecycle errors
	ErrNotStarted     = errors.New("ledger: not started")
	ErrAlreadyStarted = errors.New("ledger: already started")

	// Store errors
	ErrStoreClosed = errors.New("ledger: store is closed")
)

// ValidationError reports rejected input with the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("ledger: validation failed for %s: %s", e.Field, e.Message)
}

// ParseError reports a persisted record that could not be decoded. Stores
// attach one to every skipped row.
type ParseError = codec.ParseError

// MultiError collects independent failures, such as the per-hook errors
// raised during shutdown.
type MultiError struct {
	Errors []error
}

func (e MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "ledger: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("ledger: %d errors occurred", len(e.Errors))
}

// Add appends a non-nil error.
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors.
func (e MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}

// First returns the first error or nil.
func (e MultiError) First() error {
	if len(e.Errors) > 0 {
		return e.Errors[0]
	}
	return nil
}

// IsNotFound returns true if the error reports a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrBillNotFound) ||
		errors.Is(err, ErrPaymentNotFound) ||
		errors.Is(err, ErrPatientNotFound)
}

// IsValidation returns true if the error is a ValidationError.
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// IsParse returns true if the error carries a record parse failure.
func IsParse(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
