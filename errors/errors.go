// Package errors provides the unified error type for the loom scheduler.
// It implements structured errors with machine-readable codes, retryable
// detection, and cause chains compatible with the standard errors package.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error is the unified scheduler error type.
type Error struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the failed attempt can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *Error) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new Error with automatic retryable detection.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// IsCode reports whether any error in err's chain is an *Error with the
// given code.
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		if e.Code == code {
			return true
		}
		return IsCode(e.Cause, code)
	}
	return false
}

// CodeOf returns the code of the outermost *Error in err's chain, or the
// empty code if there is none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// --- Build-time constructors ---

// CycleDetected creates an error naming the tasks left unplaced after
// repeatedly removing zero-indegree nodes.
func CycleDetected(remaining []string) *Error {
	return &Error{
		Code:    ErrCodeCycleDetected,
		Message: fmt.Sprintf("circular dependency detected among tasks: %s", strings.Join(remaining, ", ")),
		Details: map[string]any{"tasks": remaining},
	}
}

// UnknownDependency creates an error for a dependency on an undeclared name.
func UnknownDependency(task, dep string) *Error {
	return &Error{
		Code:    ErrCodeUnknownDependency,
		Message: fmt.Sprintf("task %q depends on %q, which is not declared", task, dep),
		Details: map[string]any{"task": task, "dependency": dep},
	}
}

// InvalidMappedSignature creates an error for a definition whose body shape
// does not match its item source.
func InvalidMappedSignature(task, reason string) *Error {
	return &Error{
		Code:    ErrCodeInvalidMappedSignature,
		Message: fmt.Sprintf("task %q: %s", task, reason),
		Details: map[string]any{"task": task},
	}
}

// InvalidPolicy creates an error for a policy value outside its range.
func InvalidPolicy(task, reason string) *Error {
	return &Error{
		Code:    ErrCodeInvalidPolicy,
		Message: fmt.Sprintf("task %q: policy: %s", task, reason),
		Details: map[string]any{"task": task},
	}
}

// DuplicateTask creates an error for registering the same name twice.
func DuplicateTask(task string) *Error {
	return &Error{
		Code:    ErrCodeDuplicateTask,
		Message: fmt.Sprintf("task %q is already registered", task),
		Details: map[string]any{"task": task},
	}
}

// SeedConflict creates an error for a declared task whose name is also
// supplied as an initial value.
func SeedConflict(task string) *Error {
	return &Error{
		Code:    ErrCodeDuplicateTask,
		Message: fmt.Sprintf("task %q is also supplied as an initial value", task),
		Details: map[string]any{"task": task},
	}
}

// --- Run-time constructors ---

// TimeoutExceeded creates an error for an attempt that ran past its deadline.
func TimeoutExceeded(task string, seconds float64) *Error {
	return &Error{
		Code:      ErrCodeTimeoutExceeded,
		Message:   fmt.Sprintf("task %q exceeded its timeout of %.3fs", task, seconds),
		Retryable: true,
		Details:   map[string]any{"task": task, "timeout_seconds": seconds},
	}
}

// RetriesExhausted wraps the last attempt's failure after every allowed
// attempt has been used.
func RetriesExhausted(task string, attempts int, last error) *Error {
	return &Error{
		Code:    ErrCodeRetriesExhausted,
		Message: fmt.Sprintf("task %q failed after %d attempts", task, attempts),
		Details: map[string]any{"task": task, "attempts": attempts},
		Cause:   last,
	}
}

// Cancelled creates an error for an instance cancelled by the run.
func Cancelled(task string) *Error {
	return &Error{
		Code:    ErrCodeCancelled,
		Message: fmt.Sprintf("task %q was cancelled", task),
		Details: map[string]any{"task": task},
	}
}

// RecursionLimitExceeded creates an error for dynamic invocations nested
// past the depth ceiling.
func RecursionLimitExceeded(limit int) *Error {
	return &Error{
		Code:    ErrCodeRecursionLimitExceeded,
		Message: fmt.Sprintf("dynamic invocation exceeded the nesting limit of %d", limit),
		Details: map[string]any{"limit": limit},
	}
}

// ResultUnavailable creates an error for reading a slot that was never filled.
func ResultUnavailable(task string) *Error {
	return &Error{
		Code:    ErrCodeResultUnavailable,
		Message: fmt.Sprintf("no result recorded for task %q", task),
		Details: map[string]any{"task": task},
	}
}
