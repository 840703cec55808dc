package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Build-time errors. Reported before any task executes; a run that fails
// validation never starts.
const (
	// ErrCodeCycleDetected indicates the declared tasks form a dependency cycle.
	ErrCodeCycleDetected ErrorCode = "CYCLE_DETECTED"
	// ErrCodeUnknownDependency indicates a task depends on an undeclared name.
	ErrCodeUnknownDependency ErrorCode = "UNKNOWN_DEPENDENCY"
	// ErrCodeInvalidMappedSignature indicates a task's body shape does not
	// match its item source (mapped task without an item body, or the reverse).
	ErrCodeInvalidMappedSignature ErrorCode = "INVALID_MAPPED_SIGNATURE"
	// ErrCodeDuplicateTask indicates a task name was registered twice.
	ErrCodeDuplicateTask ErrorCode = "DUPLICATE_TASK"
	// ErrCodeInvalidPolicy indicates a policy value outside its documented
	// range.
	ErrCodeInvalidPolicy ErrorCode = "INVALID_POLICY"
)

// Run-time errors.
const (
	// ErrCodeTimeoutExceeded indicates an attempt ran past its deadline.
	ErrCodeTimeoutExceeded ErrorCode = "TIMEOUT_EXCEEDED"
	// ErrCodeRetriesExhausted indicates every allowed attempt failed.
	ErrCodeRetriesExhausted ErrorCode = "RETRIES_EXHAUSTED"
	// ErrCodeCancelled indicates an instance was cancelled by the run,
	// not by its own logic.
	ErrCodeCancelled ErrorCode = "CANCELLED"
	// ErrCodeRecursionLimitExceeded indicates dynamic invocations nested
	// past the depth ceiling.
	ErrCodeRecursionLimitExceeded ErrorCode = "RECURSION_LIMIT_EXCEEDED"
)

// Result access errors.
const (
	// ErrCodeResultUnavailable indicates a result slot was read for a task
	// that never reached a terminal state.
	ErrCodeResultUnavailable ErrorCode = "RESULT_UNAVAILABLE"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeTimeoutExceeded: true,
}

// IsRetryableCode returns true if a failed attempt with this code may be
// retried under the task's policy.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
