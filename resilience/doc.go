// Package resilience provides the policy primitives the task runner is
// built from: a generic retry executor, a token-bucket rate limiter used to
// space out mapped-instance starts, and a bulkhead semaphore used both for
// per-mapped-task worker caps and for the engine-wide blocking pool.
//
// The primitives are policy-free about what they run: classification of
// which failures are retryable and how terminal failures propagate lives
// in the engine.
package resilience
