package resilience

import (
	"context"
	"sync"
)

// Bulkhead bounds the number of callers running concurrently. Callers over
// the cap block in Acquire and are admitted in arrival order as slots free.
// The engine uses one bulkhead per mapped task (the workers policy) and one
// shared bulkhead for blocking task bodies.
type Bulkhead struct {
	max int

	mu      sync.Mutex
	inUse   int
	waiters []chan struct{}
}

// NewBulkhead creates a bulkhead admitting up to max concurrent callers.
// max <= 0 means unbounded.
func NewBulkhead(max int) *Bulkhead {
	return &Bulkhead{max: max}
}

// Acquire blocks until a slot is available or the context is cancelled.
// Blocked callers form a FIFO queue.
func (b *Bulkhead) Acquire(ctx context.Context) error {
	if b.max <= 0 {
		return ctx.Err()
	}

	b.mu.Lock()
	if b.inUse < b.max {
		b.inUse++
		b.mu.Unlock()
		return nil
	}
	ready := make(chan struct{})
	b.waiters = append(b.waiters, ready)
	b.mu.Unlock()

	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		b.mu.Lock()
		for i, w := range b.waiters {
			if w == ready {
				b.waiters = append(b.waiters[:i], b.waiters[i+1:]...)
				b.mu.Unlock()
				return ctx.Err()
			}
		}
		b.mu.Unlock()
		// Release handed us the slot concurrently with cancellation;
		// pass it on so the next waiter is not starved.
		b.Release()
		return ctx.Err()
	}
}

// Release returns a previously acquired slot. If anyone is waiting, the
// slot is handed to the head of the queue.
func (b *Bulkhead) Release() {
	if b.max <= 0 {
		return
	}
	b.mu.Lock()
	if len(b.waiters) > 0 {
		ready := b.waiters[0]
		b.waiters = b.waiters[1:]
		b.mu.Unlock()
		close(ready)
		return
	}
	if b.inUse > 0 {
		b.inUse--
	}
	b.mu.Unlock()
}

// Execute runs fn inside a slot.
func (b *Bulkhead) Execute(ctx context.Context, fn func() error) error {
	if err := b.Acquire(ctx); err != nil {
		return err
	}
	defer b.Release()
	return fn()
}

// InUse returns the number of slots currently held.
func (b *Bulkhead) InUse() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.inUse
}

// Waiting returns the number of callers blocked in Acquire.
func (b *Bulkhead) Waiting() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.waiters)
}

// MaxConcurrent returns the cap, 0 meaning unbounded.
func (b *Bulkhead) MaxConcurrent() int { return b.max }
