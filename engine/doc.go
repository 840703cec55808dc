// Package engine is the coordinator of the loom scheduler. It drives the
// tiers of a validated execution plan strictly in order, launches every
// instance of the current tier concurrently, runs each instance under its
// task's policy (retries, timeout, worker cap, rate limiting), collects
// outcomes into the result store, and halts cleanly on the first terminal
// failure by cancelling everything still in flight.
//
// Blocking task bodies are admitted through a bounded pool sized
// independently of the graph, so no tier's progress is blocked by
// synchronous work. Cancellation is cooperative: bodies observe the
// context they are handed.
package engine
