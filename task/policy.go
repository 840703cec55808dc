package task

import (
	"time"

	"github.com/kbukum/loom/errors"
)

// Policy is the per-task robustness policy.
type Policy struct {
	// Retries is the number of re-attempts after a failed attempt. Zero
	// means a single attempt.
	Retries int
	// Timeout bounds each attempt. Zero means no deadline.
	Timeout time.Duration
	// Workers caps concurrently running instances of a mapped task. Zero
	// means unbounded. Ignored for non-mapped tasks.
	Workers int
	// LimitPerMinute spaces out instance starts of a mapped task so that
	// consecutive starts are at least 60/LimitPerMinute seconds apart.
	// Zero means unlimited. Ignored for non-mapped tasks.
	LimitPerMinute int
}

// MaxAttempts returns the total number of attempts the policy allows.
func (p Policy) MaxAttempts() int {
	if p.Retries < 0 {
		return 1
	}
	return p.Retries + 1
}

// StartInterval returns the minimum spacing between instance starts, or
// zero when unlimited.
func (p Policy) StartInterval() time.Duration {
	if p.LimitPerMinute <= 0 {
		return 0
	}
	return time.Duration(float64(time.Minute) / float64(p.LimitPerMinute))
}

// Validate rejects policies outside their documented ranges.
func (p Policy) Validate(taskName string) error {
	if p.Retries < 0 {
		return errors.InvalidPolicy(taskName, "retries must be >= 0")
	}
	if p.Timeout < 0 {
		return errors.InvalidPolicy(taskName, "timeout must be > 0 or unset")
	}
	if p.Workers < 0 {
		return errors.InvalidPolicy(taskName, "workers must be >= 1 or unset")
	}
	if p.LimitPerMinute < 0 {
		return errors.InvalidPolicy(taskName, "limit per minute must be >= 1 or unset")
	}
	return nil
}
