package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestError_String(t *testing.T) {
	err := New(ErrCodeCancelled, "task cancelled")
	if !strings.Contains(err.Error(), "CANCELLED") {
		t.Fatalf("expected code in message, got %q", err.Error())
	}
}

func TestError_UnwrapChain(t *testing.T) {
	cause := stderrors.New("boom")
	err := RetriesExhausted("fetch", 3, cause)

	if !stderrors.Is(err, cause) {
		t.Fatal("expected errors.Is to find the cause")
	}
	if err.Details["attempts"] != 3 {
		t.Fatalf("expected attempts detail, got %v", err.Details)
	}
}

func TestIsCode_Nested(t *testing.T) {
	inner := TimeoutExceeded("slow", 0.05)
	outer := RetriesExhausted("slow", 2, inner)

	if !IsCode(outer, ErrCodeRetriesExhausted) {
		t.Fatal("expected outer code match")
	}
	if !IsCode(outer, ErrCodeTimeoutExceeded) {
		t.Fatal("expected nested code match")
	}
	if IsCode(outer, ErrCodeCycleDetected) {
		t.Fatal("unexpected code match")
	}
}

func TestIsCode_PlainError(t *testing.T) {
	if IsCode(stderrors.New("plain"), ErrCodeCancelled) {
		t.Fatal("plain error should not match any code")
	}
}

func TestCodeOf(t *testing.T) {
	if CodeOf(UnknownDependency("a", "b")) != ErrCodeUnknownDependency {
		t.Fatal("unexpected code")
	}
	if CodeOf(stderrors.New("plain")) != "" {
		t.Fatal("expected empty code for plain error")
	}
}

func TestRetryableCodes(t *testing.T) {
	if !TimeoutExceeded("t", 1).Retryable {
		t.Fatal("timeout should be retryable")
	}
	if RetriesExhausted("t", 1, nil).Retryable {
		t.Fatal("exhausted retries should not be retryable")
	}
	if Cancelled("t").Retryable {
		t.Fatal("cancellation should not be retryable")
	}
}

func TestCycleDetected_NamesTasks(t *testing.T) {
	err := CycleDetected([]string{"a", "b"})
	if !strings.Contains(err.Error(), "a, b") {
		t.Fatalf("expected task names in message, got %q", err.Error())
	}
}
