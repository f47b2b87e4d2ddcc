package shared

import "errors"

// ErrorKind classifies a domain error for callers deciding how to react.
// Only ConflictRetryable and StorageFailure are worth retrying; the rest
// will not succeed again without changed input.
type ErrorKind string

const (
	KindNotFound           ErrorKind = "NOT_FOUND"
	KindIllegalTransition  ErrorKind = "ILLEGAL_TRANSITION"
	KindForbidden          ErrorKind = "FORBIDDEN"
	KindPreconditionFailed ErrorKind = "PRECONDITION_FAILED"
	KindValidationFailed   ErrorKind = "VALIDATION_FAILED"
	KindConflictRetryable  ErrorKind = "CONFLICT_RETRYABLE"
	KindStorageFailure     ErrorKind = "STORAGE_FAILURE"
)

// IsRetryable reports whether a caller may retry the operation unchanged.
func (k ErrorKind) IsRetryable() bool {
	return k == KindConflictRetryable || k == KindStorageFailure
}

// DomainError represents a domain-level error
type DomainError struct {
	Kind    ErrorKind `json:"kind"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is lets errors.Is match any DomainError with the same kind and code.
func (e *DomainError) Is(target error) bool {
	var de *DomainError
	if !errors.As(target, &de) {
		return false
	}
	if de.Code != "" && de.Code != e.Code {
		return false
	}
	return de.Kind == e.Kind
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a ValidationFailed error
func NewValidationError(code, message string) *DomainError {
	return NewDomainError(KindValidationFailed, code, message)
}

// NewPreconditionError creates a PreconditionFailed error carrying a
// human-readable reason for the caller.
func NewPreconditionError(code, message string) *DomainError {
	return NewDomainError(KindPreconditionFailed, code, message)
}

// KindOf returns the ErrorKind of err, or StorageFailure for errors that did
// not originate in the domain (driver errors, commit failures).
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindStorageFailure
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError(KindNotFound, "NOT_FOUND", "Resource not found")
	ErrIllegalTransition   = NewDomainError(KindIllegalTransition, "ILLEGAL_TRANSITION", "Target state is not reachable from the current state")
	ErrForbidden           = NewDomainError(KindForbidden, "FORBIDDEN", "Not authorized to perform this action")
	ErrConcurrencyConflict = NewDomainError(KindConflictRetryable, "CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrStorageFailure      = NewDomainError(KindStorageFailure, "STORAGE_FAILURE", "Underlying store failed to commit")
	ErrInvalidInput        = NewDomainError(KindValidationFailed, "INVALID_INPUT", "Invalid input provided")
)
