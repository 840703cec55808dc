package resilience

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestBulkhead_CapsConcurrency(t *testing.T) {
	b := NewBulkhead(2)
	var running, maxRunning atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := b.Execute(context.Background(), func() error {
				cur := running.Add(1)
				for {
					old := maxRunning.Load()
					if cur <= old || maxRunning.CompareAndSwap(old, cur) {
						break
					}
				}
				time.Sleep(20 * time.Millisecond)
				running.Add(-1)
				return nil
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if maxRunning.Load() > 2 {
		t.Fatalf("expected max 2 concurrent, got %d", maxRunning.Load())
	}
}

func TestBulkhead_UnboundedNeverBlocks(t *testing.T) {
	b := NewBulkhead(0)
	if err := b.Acquire(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b.Release()
	if b.MaxConcurrent() != 0 {
		t.Fatal("expected unbounded cap")
	}
}

func TestBulkhead_AcquireRespectsContext(t *testing.T) {
	b := NewBulkhead(1)
	if err := b.Acquire(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := b.Acquire(ctx); err == nil {
		t.Fatal("expected context error while full")
	}
	if b.Waiting() != 0 {
		t.Fatalf("expected cancelled waiter removed from queue, got %d waiting", b.Waiting())
	}
	b.Release()

	// A cancelled waiter must not consume the freed slot.
	if err := b.Acquire(context.Background()); err != nil {
		t.Fatalf("expected slot available after release, got %v", err)
	}
	b.Release()
}

func TestBulkhead_AdmitsWaitersInArrivalOrder(t *testing.T) {
	b := NewBulkhead(1)
	if err := b.Acquire(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := b.Acquire(context.Background()); err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			b.Release()
		}(i)
		// Each waiter must be queued before the next arrives.
		for b.Waiting() != i+1 {
			time.Sleep(time.Millisecond)
		}
	}

	b.Release()
	wg.Wait()

	for i, got := range order {
		if got != i {
			t.Fatalf("expected arrival order, got %v", order)
		}
	}
}

func TestBulkhead_InUse(t *testing.T) {
	b := NewBulkhead(3)
	_ = b.Acquire(context.Background())
	_ = b.Acquire(context.Background())
	if b.InUse() != 2 {
		t.Fatalf("expected 2 in use, got %d", b.InUse())
	}
	b.Release()
	b.Release()
	if b.InUse() != 0 {
		t.Fatalf("expected 0 in use, got %d", b.InUse())
	}
}
