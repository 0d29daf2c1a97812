// File: internal/services/sms/retry_test.go
package sms

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastRetryConfig() *RetryConfig {
	return &RetryConfig{MaxAttempts: 3, Delay: time.Millisecond}
}

func TestRetrySucceedsAfterTransientFailure(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), fastRetryConfig(), func(ctx context.Context) error {
		attempts++
		if attempts < 2 {
			return &SMSError{Type: ErrTypeNetwork, Message: "timeout"}
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestRetryGivesUpAfterMaxAttempts(t *testing.T) {
	attempts := 0
	wantErr := &SMSError{Type: ErrTypeProvider, Message: "boom"}

	err := RetryWithBackoff(context.Background(), fastRetryConfig(), func(ctx context.Context) error {
		attempts++
		return wantErr
	})

	if !errors.Is(err, wantErr) {
		t.Fatalf("expected the last error back, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetrySkipsPermanentErrors(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), fastRetryConfig(), func(ctx context.Context) error {
		attempts++
		return &SMSError{Type: ErrTypeValidation, Message: "bad phone number"}
	})

	if err == nil {
		t.Fatal("expected the validation error to surface")
	}
	if attempts != 1 {
		t.Fatalf("validation errors must not be retried, got %d attempts", attempts)
	}
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, &RetryConfig{MaxAttempts: 3, Delay: time.Second}, func(ctx context.Context) error {
		return &SMSError{Type: ErrTypeNetwork, Message: "timeout"}
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
