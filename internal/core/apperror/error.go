// Package apperror provides structured error handling for housekeeping runs.
// Every failure surfaced to the operator must be an AppError so the CLI can
// print a consistent message and exit with a non-zero status.
package apperror

import (
	"errors"
	"fmt"
)

// Error codes
const (
	// Infrastructure errors
	CodeInternal       = "INTERNAL_ERROR"
	CodeQueryExecution = "QUERY_EXECUTION_ERROR"

	// Request validation errors
	CodeInvalidParameter   = "INVALID_PARAMETER"
	CodeInvalidCombination = "INVALID_COMBINATION"
	CodeUnknownTarget      = "UNKNOWN_TARGET"

	// Data consistency errors
	CodeInvariantViolation = "INVARIANT_VIOLATION"
)

// AppError is the standard error type for the housekeeper.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (parameter, target, bounds, etc.)
	Details map[string]any `json:"details,omitempty"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions ---

// NewInvalidParameter reports a request parameter outside its domain.
func NewInvalidParameter(name string, value any, reason string) *AppError {
	return &AppError{
		Code:    CodeInvalidParameter,
		Message: fmt.Sprintf("invalid %s: %s", name, reason),
		Details: map[string]any{"parameter": name, "value": value},
	}
}

// NewInvalidCombination reports targets that must not run together.
func NewInvalidCombination(message string, targets ...string) *AppError {
	return &AppError{
		Code:    CodeInvalidCombination,
		Message: message,
		Details: map[string]any{"targets": targets},
	}
}

// NewUnknownTarget reports a target id missing from the registry.
func NewUnknownTarget(id string) *AppError {
	return &AppError{
		Code:    CodeUnknownTarget,
		Message: fmt.Sprintf("unknown purge target %q", id),
		Details: map[string]any{"target": id},
	}
}

// NewInvariantViolation reports data that contradicts an assumption the
// mutator relies on (e.g. MIN(id) > MAX(id) for the same predicate).
func NewInvariantViolation(message string) *AppError {
	return &AppError{
		Code:    CodeInvariantViolation,
		Message: message,
	}
}

// NewQueryExecution wraps a driver error raised while running a statement.
func NewQueryExecution(operation string, err error) *AppError {
	return &AppError{
		Code:    CodeQueryExecution,
		Message: fmt.Sprintf("%s failed", operation),
		Details: map[string]any{"operation": operation},
		Err:     err,
	}
}

// NewInternal creates an internal error
func NewInternal(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal error",
		Err:     err,
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsInvalidParameter checks if error is CodeInvalidParameter
func IsInvalidParameter(err error) bool {
	return HasCode(err, CodeInvalidParameter)
}

// IsInvalidCombination checks if error is CodeInvalidCombination
func IsInvalidCombination(err error) bool {
	return HasCode(err, CodeInvalidCombination)
}

// IsUnknownTarget checks if error is CodeUnknownTarget
func IsUnknownTarget(err error) bool {
	return HasCode(err, CodeUnknownTarget)
}

// IsInvariantViolation checks if error is CodeInvariantViolation
func IsInvariantViolation(err error) bool {
	return HasCode(err, CodeInvariantViolation)
}

// IsQueryExecution checks if error is CodeQueryExecution
func IsQueryExecution(err error) bool {
	return HasCode(err, CodeQueryExecution)
}
