// Package errs defines the error taxonomy shared by every command and event
// handler in the pipeline. Kinds are concrete types, never bare strings, so
// callers switch on type rather than compare messages.
package errs

import "fmt"

// ErrorType mirrors the ErrorRecord.errorType enumeration from the domain
// model (spec ErrorRecord entity).
type ErrorType string

const (
	Network    ErrorType = "NETWORK"
	Parsing    ErrorType = "PARSING"
	Validation ErrorType = "VALIDATION"
	Auth       ErrorType = "AUTH"
	RateLimit  ErrorType = "RATE_LIMIT"
	Timeout    ErrorType = "TIMEOUT"
	Unknown    ErrorType = "UNKNOWN"
)

// Retryable reports whether errors of this type are worth retrying.
func (t ErrorType) Retryable() bool {
	switch t {
	case Network, RateLimit, Timeout:
		return true
	default:
		return false
	}
}

// ValidationError signals bad input: non-retryable, surfaced to the caller.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation: %s", e.Message)
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// InvariantViolationError signals an aggregate method called in a state that
// forbids it. Non-retryable; indicates a bug or a lost race.
type InvariantViolationError struct {
	Aggregate string
	Message   string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("invariant violation on %s: %s", e.Aggregate, e.Message)
}

func NewInvariantViolation(aggregate, message string) *InvariantViolationError {
	return &InvariantViolationError{Aggregate: aggregate, Message: message}
}

// ConcurrencyError signals an optimistic-lock mismatch: the caller's version
// no longer matches the stored row. Retryable by the handler, bounded.
type ConcurrencyError struct {
	Aggregate string
	ID        string
	Expected  int
}

func (e *ConcurrencyError) Error() string {
	return fmt.Sprintf("concurrency conflict on %s %s: expected version %d", e.Aggregate, e.ID, e.Expected)
}

func NewConcurrency(aggregate, id string, expected int) *ConcurrencyError {
	return &ConcurrencyError{Aggregate: aggregate, ID: id, Expected: expected}
}

// NotFoundError signals a missing aggregate by id.
type NotFoundError struct {
	Aggregate string
	ID        string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Aggregate, e.ID)
}

func NewNotFound(aggregate, id string) *NotFoundError {
	return &NotFoundError{Aggregate: aggregate, ID: id}
}

// TransientError wraps a NETWORK/RATE_LIMIT/TIMEOUT failure. Retryable;
// counted by the circuit breaker; becomes Fatal for the job once retries are
// exhausted.
type TransientError struct {
	Type ErrorType
	Err  error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient (%s): %v", e.Type, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

func NewTransient(t ErrorType, err error) *TransientError {
	return &TransientError{Type: t, Err: err}
}

// PermanentError wraps a PARSING/AUTH/VALIDATION failure at the adapter
// boundary. Non-retryable; fails the job and triggers a health failure.
type PermanentError struct {
	Type ErrorType
	Err  error
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("permanent (%s): %v", e.Type, e.Err)
}

func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanent(t ErrorType, err error) *PermanentError {
	return &PermanentError{Type: t, Err: err}
}

// UnknownError is the last-resort bucket for errors that fit no other kind.
type UnknownError struct {
	Err error
}

func (e *UnknownError) Error() string {
	return fmt.Sprintf("unknown: %v", e.Err)
}

func (e *UnknownError) Unwrap() error { return e.Err }

func NewUnknown(err error) *UnknownError {
	return &UnknownError{Err: err}
}
