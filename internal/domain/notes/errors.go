package notes

import (
	"errors"
	"fmt"
)

// Error codes returned in the {"error":{"code","message"}} envelope.
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeMissingParameters = "MISSING_PARAMETERS"
	CodeMissingBody       = "MISSING_BODY"
	CodeNoUpdates         = "NO_UPDATES"
	CodeInvalidNoteText   = "INVALID_NOTE_TEXT"
	CodeNotFound          = "NOT_FOUND"
	CodeInternal          = "INTERNAL_ERROR"
)

// ErrNoteNotFound is returned when an update targets a note that does not exist.
var ErrNoteNotFound = errors.New("note not found")

// ValidationError is a caller-input failure. It is terminal: the request is
// rejected with 400 and nothing is persisted.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError builds a ValidationError with the default code.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Code: CodeValidation, Message: message}
}

// SequenceAllocationError means the atomic counter increment failed. The
// allocator never falls back to a default sequence number: a transient store
// failure followed by recovery would then hand out duplicates.
type SequenceAllocationError struct {
	PatientID string
	Err       error
}

func (e *SequenceAllocationError) Error() string {
	return fmt.Sprintf("allocate sequence for patient %s: %v", e.PatientID, e.Err)
}

func (e *SequenceAllocationError) Unwrap() error { return e.Err }

// StorageError wraps a durable-store failure on a read or write path.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
