// Package errors provides centralized error definitions and error handling utilities
// for the handoff broker. It defines sentinel errors for the durable store, a
// StoreError type that carries the path and operation that failed, semantic error
// types, and classification helpers.
//
// # Usage
//
// Creating errors:
//
//	err := errors.NewStoreError("read queue", cause).WithPath(path).WithOp("read")
//	err := errors.NewValidationError("session type is required").WithField("session_type")
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrDocumentCorrupt) { ... }
//
//	var storeErr *errors.StoreError
//	if errors.As(err, &storeErr) { ... }
//
// Most broker operations never return these errors to their callers: absence and
// corruption are reported as empty results or false. The types here exist for
// the write paths that do return an error and for logging the failures that are
// swallowed.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Store-related sentinel errors
var (
	// ErrDocumentNotFound indicates that a document file does not exist.
	ErrDocumentNotFound = New("document not found")
	// ErrDocumentCorrupt indicates that a document exists but is not valid JSON
	// of the expected shape.
	ErrDocumentCorrupt = New("document corrupt")
	// ErrLockHeld indicates that an advisory lock is held by another process.
	ErrLockHeld = New("lock held by another process")
)

// Signal-related sentinel errors
var (
	// ErrSignalAbsent indicates that no signal of the requested type is outstanding.
	ErrSignalAbsent = New("no signal outstanding")
)

// ErrInvalidInput indicates that input validation failed.
var ErrInvalidInput = New("invalid input")

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// HandoffError is the base interface for all broker errors.
type HandoffError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the error is transient and the operation
	// may succeed on retry.
	IsRetryable() bool
}

// baseError provides common functionality for all error types.
type baseError struct {
	message   string
	cause     error
	severity  Severity
	retryable bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the severity level of the error.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsRetryable reports whether the operation may succeed on retry.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// -----------------------------------------------------------------------------
// Domain Errors
// -----------------------------------------------------------------------------

// StoreError represents a failure reading or writing a coordination document.
//
// Example:
//
//	err := errors.NewStoreError("write plan", cause).WithPath("/p/.coordination/test_plans/plan_1.json")
//	fmt.Println(err) // "store error [op=write, path=...]: write plan: permission denied"
type StoreError struct {
	baseError
	Op   string
	Path string
}

// NewStoreError creates a new StoreError.
func NewStoreError(message string, cause error) *StoreError {
	return &StoreError{
		baseError: baseError{
			message:   message,
			cause:     cause,
			severity:  SeverityError,
			retryable: true,
		},
	}
}

// WithOp records the filesystem operation that failed (read, write, rename, remove).
func (e *StoreError) WithOp(op string) *StoreError {
	e.Op = op
	return e
}

// WithPath records the document path.
func (e *StoreError) WithPath(path string) *StoreError {
	e.Path = path
	return e
}

// WithSeverity sets the error severity.
func (e *StoreError) WithSeverity(s Severity) *StoreError {
	e.severity = s
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *StoreError) WithRetryable(r bool) *StoreError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *StoreError) Error() string {
	var parts []string
	if e.Op != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Op))
	}
	if e.Path != "" {
		parts = append(parts, fmt.Sprintf("path=%s", e.Path))
	}

	prefix := "store error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("store error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *StoreError) Is(target error) bool {
	if _, ok := target.(*StoreError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// ValidationError represents invalid input.
//
// Example:
//
//	err := errors.NewValidationError("session type cannot be empty")
//	err = err.WithField("session_type").WithValue("")
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:   message,
			severity:  SeverityWarning,
			retryable: false,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	prefix := "validation error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("validation error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if errors.Is(target, ErrInvalidInput) {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error represents a transient condition
// that may succeed on retry.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var handoffErr HandoffError
	if As(err, &handoffErr) {
		return handoffErr.IsRetryable()
	}

	return Is(err, ErrLockHeld)
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement HandoffError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var handoffErr HandoffError
	if As(err, &handoffErr) {
		return handoffErr.Severity()
	}
	return SeverityError
}

// IsAbsent reports whether err means nothing is there: a missing document
// or an absent signal. A corrupt document is present but unreadable, and is
// not absent.
func IsAbsent(err error) bool {
	return Is(err, ErrDocumentNotFound) || Is(err, ErrSignalAbsent)
}
