package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetry_SucceedsFirstAttempt(t *testing.T) {
	val, attempts, err := Retry(context.Background(), RetryConfig{MaxAttempts: 3}, func(int) (string, error) {
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != "ok" || attempts != 1 {
		t.Fatalf("expected ok after 1 attempt, got %q after %d", val, attempts)
	}
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	val, attempts, err := Retry(context.Background(), RetryConfig{MaxAttempts: 3}, func(attempt int) (int, error) {
		if attempt < 3 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != 42 || attempts != 3 {
		t.Fatalf("expected 42 after 3 attempts, got %d after %d", val, attempts)
	}
}

func TestRetry_Exhausted(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	_, attempts, err := Retry(context.Background(), RetryConfig{MaxAttempts: 3}, func(int) (int, error) {
		calls++
		return 0, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected last error, got %v", err)
	}
	if calls != 3 || attempts != 3 {
		t.Fatalf("expected 3 attempts, got calls=%d attempts=%d", calls, attempts)
	}
}

func TestRetry_NonRetryableStopsEarly(t *testing.T) {
	fatal := errors.New("fatal")
	calls := 0
	cfg := RetryConfig{
		MaxAttempts: 5,
		RetryIf:     func(err error) bool { return !errors.Is(err, fatal) },
	}
	_, attempts, err := Retry(context.Background(), cfg, func(int) (int, error) {
		calls++
		return 0, fatal
	})
	if !errors.Is(err, fatal) {
		t.Fatalf("expected fatal error, got %v", err)
	}
	if calls != 1 || attempts != 1 {
		t.Fatalf("expected single attempt, got calls=%d attempts=%d", calls, attempts)
	}
}

func TestRetry_ContextCancelledBetweenAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := RetryConfig{MaxAttempts: 5, InitialBackoff: 50 * time.Millisecond}
	_, _, err := Retry(ctx, cfg, func(int) (int, error) {
		cancel()
		return 0, errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRetry_OnRetryCallback(t *testing.T) {
	var seen []int
	cfg := RetryConfig{
		MaxAttempts: 3,
		OnRetry:     func(attempt int, _ error, _ time.Duration) { seen = append(seen, attempt) },
	}
	_, _, _ = Retry(context.Background(), cfg, func(int) (int, error) {
		return 0, errors.New("transient")
	})
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Fatalf("expected callbacks for attempts 1 and 2, got %v", seen)
	}
}

func TestDefaultRetryIf(t *testing.T) {
	if DefaultRetryIf(context.Canceled) {
		t.Fatal("cancellation should not be retryable")
	}
	if !DefaultRetryIf(context.DeadlineExceeded) {
		t.Fatal("deadline expiry is the timeout policy and should be retryable")
	}
	if !DefaultRetryIf(errors.New("anything")) {
		t.Fatal("ordinary errors should be retryable")
	}
}

func TestCalculateBackoff_ZeroInitialMeansImmediate(t *testing.T) {
	if d := calculateBackoff(3, RetryConfig{BackoffFactor: 2}); d != 0 {
		t.Fatalf("expected zero backoff, got %v", d)
	}
}

func TestCalculateBackoff_CapsAtMax(t *testing.T) {
	cfg := RetryConfig{
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     150 * time.Millisecond,
		BackoffFactor:  10,
	}
	if d := calculateBackoff(5, cfg); d > 150*time.Millisecond {
		t.Fatalf("expected cap at 150ms, got %v", d)
	}
}
