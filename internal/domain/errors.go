package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrConflict      = errors.New("conflict")

	// ErrMalformedEntry marks a raw entry that cannot be processed at all
	// (for example, it has no headword).
	ErrMalformedEntry = errors.New("malformed entry")
	// ErrSchemaViolation marks a normalized entry that fails the published
	// entry schema.
	ErrSchemaViolation = errors.New("schema violation")
)

// FieldError describes a validation error for a specific field.
// Field is a slash-separated path into the entry tree, e.g. "/defs/0/defs/1/en".
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// FailureKind classifies why a single entry was rejected or flagged.
type FailureKind string

const (
	FailureMalformedEntry          FailureKind = "malformed_entry"
	FailureSchemaViolation         FailureKind = "schema_violation"
	FailureAmbiguousDisambiguation FailureKind = "ambiguous_disambiguation"
	FailureEmptySyllable           FailureKind = "empty_syllable"
	FailureUnknownField            FailureKind = "unknown_field"
	// FailureDuplicateEntry rejects an entry whose (head, head_number) was
	// already produced earlier in the same batch.
	FailureDuplicateEntry FailureKind = "duplicate_entry"
)

// Fatal reports whether the kind rejects the entry. Warnings do not.
func (k FailureKind) Fatal() bool {
	return k == FailureMalformedEntry || k == FailureSchemaViolation || k == FailureDuplicateEntry
}

// EntryFailure describes one entry that could not be turned into a Record.
// It never aborts a batch; the pipeline logs it and moves on.
type EntryFailure struct {
	Kind       FailureKind
	Source     string
	Index      int
	Head       string
	Violations []FieldError
	Err        error
}

func (f *EntryFailure) Error() string {
	where := fmt.Sprintf("%s#%d", f.Source, f.Index)
	if f.Head != "" {
		where += fmt.Sprintf(" (%s)", f.Head)
	}
	if len(f.Violations) > 0 {
		return fmt.Sprintf("%s: %s: %d violations", where, f.Kind, len(f.Violations))
	}
	return fmt.Sprintf("%s: %s: %v", where, f.Kind, f.Err)
}

func (f *EntryFailure) Unwrap() error { return f.Err }

// Warning is a non-fatal finding attached to an otherwise valid entry.
type Warning struct {
	Kind    FailureKind
	Path    string
	Message string
}
