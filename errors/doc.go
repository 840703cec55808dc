// Package errors defines the scheduler's error taxonomy.
//
// Build-time errors (CYCLE_DETECTED, UNKNOWN_DEPENDENCY,
// INVALID_MAPPED_SIGNATURE, DUPLICATE_TASK) are fatal and reported before
// any task executes. Run-time errors are attached to the task instance
// that produced them; TIMEOUT_EXCEEDED is retryable under the task's
// policy, RETRIES_EXHAUSTED is terminal for the whole run, and CANCELLED
// marks collateral damage of another task's terminal failure.
//
// All constructors return *Error, which participates in errors.Is /
// errors.As chains via Unwrap. Use IsCode to match by code across a chain.
package errors
