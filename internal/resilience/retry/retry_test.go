package retry_test

import (
	"context"
	"errors"
	"net/http"
	"syscall"
	"testing"
	"time"

	"condo-radar/internal/resilience/retry"
)

func fastConfig(maxAttempts int) retry.Config {
	return retry.Config{
		MaxAttempts:    maxAttempts,
		InitialDelay:   time.Millisecond,
		MaxDelay:       5 * time.Millisecond,
		Multiplier:     2.0,
		JitterFraction: 0,
	}
}

func TestWithBackoff_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := retry.WithBackoff(context.Background(), fastConfig(5), func() error {
		calls++
		if calls < 3 {
			return &retry.HTTPError{StatusCode: http.StatusBadGateway, Message: "bad gateway"}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithBackoff err=%v", err)
	}
	if calls != 3 {
		t.Fatalf("calls=%d, want 3", calls)
	}
}

func TestWithBackoff_NonRetryableStopsImmediately(t *testing.T) {
	permanent := &retry.HTTPError{StatusCode: http.StatusNotFound, Message: "not found"}
	calls := 0
	err := retry.WithBackoff(context.Background(), fastConfig(5), func() error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) {
		t.Fatalf("err=%v, want the permanent error unchanged", err)
	}
	if calls != 1 {
		t.Fatalf("calls=%d, want 1", calls)
	}
}

func TestWithBackoff_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := retry.WithBackoff(context.Background(), fastConfig(3), func() error {
		calls++
		return syscall.ECONNREFUSED
	})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if !errors.Is(err, syscall.ECONNREFUSED) {
		t.Fatalf("err=%v, want wrapped ECONNREFUSED", err)
	}
	if calls != 3 {
		t.Fatalf("calls=%d, want 3", calls)
	}
}

func TestWithBackoff_ContextCancelAbortsWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := fastConfig(3)
	cfg.InitialDelay = time.Hour // only the cancelled ctx can end the wait

	err := retry.WithBackoff(ctx, cfg, func() error {
		return syscall.ECONNRESET
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v, want context.Canceled", err)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"context canceled", context.Canceled, false},
		{"deadline exceeded", context.DeadlineExceeded, false},
		{"connection refused", syscall.ECONNREFUSED, true},
		{"connection reset", syscall.ECONNRESET, true},
		{"http 500", &retry.HTTPError{StatusCode: 500}, true},
		{"http 429", &retry.HTTPError{StatusCode: 429}, true},
		{"http 408", &retry.HTTPError{StatusCode: 408}, true},
		{"http 404", &retry.HTTPError{StatusCode: 404}, false},
		{"http 403", &retry.HTTPError{StatusCode: 403}, false},
		{"plain error", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := retry.IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
