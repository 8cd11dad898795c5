package errs

import (
	"errors"
	"fmt"
)

// ValidationError reports bad input shape, range or uniqueness. The caller
// can recover by correcting the input; it is never retried automatically.
type ValidationError struct {
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Detail)
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Detail)
}

// Validation builds a ValidationError for a named field.
func Validation(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Detail: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a reference to an unknown entity id.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// NotFound builds a NotFoundError for the given entity kind and id.
func NotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// ScoringError reports a failed, timed out or malformed response from the
// external scoring pipeline. The submission is aborted and nothing is
// persisted; the caller must resubmit.
type ScoringError struct {
	Detail string
	Err    error
}

func (e *ScoringError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("scoring failed: %s: %v", e.Detail, e.Err)
	}
	return fmt.Sprintf("scoring failed: %s", e.Detail)
}

func (e *ScoringError) Unwrap() error {
	return e.Err
}

// Scoring builds a ScoringError wrapping cause (which may be nil).
func Scoring(cause error, format string, args ...interface{}) error {
	return &ScoringError{Detail: fmt.Sprintf(format, args...), Err: cause}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}

// IsScoring reports whether err is (or wraps) a ScoringError.
func IsScoring(err error) bool {
	var se *ScoringError
	return errors.As(err, &se)
}
