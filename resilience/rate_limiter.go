package resilience

import (
	"context"
	"sync"
	"time"
)

// RateLimiter implements a token-bucket rate limiter. With Burst 1 it
// degenerates into a pacer that enforces a minimum spacing of 1/Rate
// seconds between successive admissions, which is how mapped-task
// limit-per-minute policies use it.
type RateLimiter struct {
	rate  float64
	burst int

	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

// NewRateLimiter creates a rate limiter admitting rate permits per second
// with the given burst capacity.
func NewRateLimiter(rate float64, burst int) *RateLimiter {
	if rate <= 0 {
		rate = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		rate:       rate,
		burst:      burst,
		tokens:     float64(burst),
		lastRefill: time.Now(),
	}
}

// PerMinute creates a pacer admitting n starts per minute, with no burst:
// consecutive admissions are at least 60/n seconds apart.
func PerMinute(n int) *RateLimiter {
	return NewRateLimiter(float64(n)/60.0, 1)
}

// Allow reports whether one permit is immediately available, consuming it
// if so.
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill()
	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

// Wait blocks until a permit is available or the context is cancelled.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	wait := rl.reserve()
	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Tokens returns the number of currently available permits.
func (rl *RateLimiter) Tokens() float64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refill()
	return rl.tokens
}

// Rate returns the admission rate in permits per second.
func (rl *RateLimiter) Rate() float64 { return rl.rate }

// refill adds tokens based on elapsed time. Caller holds mu.
func (rl *RateLimiter) refill() {
	now := time.Now()
	rl.tokens += now.Sub(rl.lastRefill).Seconds() * rl.rate
	rl.lastRefill = now
	if rl.tokens > float64(rl.burst) {
		rl.tokens = float64(rl.burst)
	}
}

// reserve consumes one permit (going negative if needed) and returns how
// long the caller must wait before acting on it.
func (rl *RateLimiter) reserve() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill()
	rl.tokens--
	if rl.tokens >= 0 {
		return 0
	}
	return time.Duration(-rl.tokens / rl.rate * float64(time.Second))
}
