package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestConstantBackoff(t *testing.T) {
	delay := 100 * time.Millisecond
	backoff := NewConstantBackoff(delay)

	for i := 0; i < 10; i++ {
		nextDelay := backoff.NextDelay(i)
		if nextDelay != delay {
			t.Errorf("Attempt %d: expected %v, got %v", i, delay, nextDelay)
		}
	}
}

func TestExponentialBackoff(t *testing.T) {
	backoff := NewExponentialBackoff(100*time.Millisecond, time.Second, 2.0, nil)

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{2, 400 * time.Millisecond},
		{3, 800 * time.Millisecond},
		{4, 1000 * time.Millisecond}, // capped at max
		{10, 1000 * time.Millisecond},
	}

	for _, tt := range tests {
		delay := backoff.NextDelay(tt.attempt)
		if delay != tt.expected {
			t.Errorf("Attempt %d: expected %v, got %v", tt.attempt, tt.expected, delay)
		}
	}
}

func TestExponentialBackoffDefaultMultiplier(t *testing.T) {
	backoff := NewExponentialBackoff(10*time.Millisecond, 0, 0, nil)
	if backoff.Multiplier != 2.0 {
		t.Fatalf("expected default multiplier 2.0, got %v", backoff.Multiplier)
	}
	// no cap when MaxDelay is zero
	if got := backoff.NextDelay(5); got != 320*time.Millisecond {
		t.Errorf("expected 320ms, got %v", got)
	}
}

func TestExponentialBackoffJitter(t *testing.T) {
	base := 100 * time.Millisecond
	backoff := NewExponentialBackoff(base, time.Second, 2.0, NewRandSource(7))

	for i := 0; i < 100; i++ {
		delay := backoff.NextDelay(0)
		if delay < base/2 || delay >= base*3/2 {
			t.Fatalf("jittered delay %v outside [%v, %v)", delay, base/2, base*3/2)
		}
	}
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	var attempts []int
	err := Retry(context.Background(), 3, NewConstantBackoff(time.Millisecond), func(attempt int) error {
		attempts = append(attempts, attempt)
		if attempt < 2 {
			return errors.New("not yet")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(attempts) != 3 || attempts[2] != 2 {
		t.Errorf("unexpected attempts %v", attempts)
	}
}

func TestRetryExhausted(t *testing.T) {
	sentinel := errors.New("down")
	calls := 0
	err := Retry(context.Background(), 2, NewConstantBackoff(time.Millisecond), func(int) error {
		calls++
		return sentinel
	})
	if !errors.Is(err, ErrRetriesExhausted) || !errors.Is(err, sentinel) {
		t.Fatalf("expected exhausted error wrapping the last failure, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRetryStopsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Retry(ctx, 5, NewConstantBackoff(time.Hour), func(int) error {
		calls++
		cancel()
		return errors.New("fail")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected a single call before cancellation, got %d", calls)
	}
}
