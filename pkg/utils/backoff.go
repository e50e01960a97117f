package utils

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrRetriesExhausted is wrapped by Retry once every attempt has failed
var ErrRetriesExhausted = errors.New("retries exhausted")

// BackoffStrategy computes the delay before a retry
type BackoffStrategy interface {
	// NextDelay returns the delay before retry number attempt+1
	NextDelay(attempt int) time.Duration
}

// ConstantBackoff waits the same delay before every retry
type ConstantBackoff struct {
	Delay time.Duration
}

func NewConstantBackoff(delay time.Duration) *ConstantBackoff {
	return &ConstantBackoff{Delay: delay}
}

func (cb *ConstantBackoff) NextDelay(int) time.Duration {
	return cb.Delay
}

// ExponentialBackoff grows the delay by Multiplier per attempt. A zero MaxDelay
// leaves it uncapped. With a Jitter source the delay is scaled by a factor in
// [0.5, 1.5); the source must not be shared across goroutines.
type ExponentialBackoff struct {
	BaseDelay  time.Duration
	Multiplier float64
	MaxDelay   time.Duration
	Jitter     *RandSource
}

// NewExponentialBackoff defaults a non-positive multiplier to 2
func NewExponentialBackoff(baseDelay, maxDelay time.Duration, multiplier float64, jitter *RandSource) *ExponentialBackoff {
	if multiplier <= 0 {
		multiplier = 2.0
	}
	return &ExponentialBackoff{
		BaseDelay:  baseDelay,
		Multiplier: multiplier,
		MaxDelay:   maxDelay,
		Jitter:     jitter,
	}
}

func (eb *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	delay := float64(eb.BaseDelay) * math.Pow(eb.Multiplier, float64(attempt))
	if eb.MaxDelay > 0 {
		delay = math.Min(delay, float64(eb.MaxDelay))
	}
	if eb.Jitter != nil {
		delay *= eb.Jitter.UniformFloat64(0.5, 1.5)
	}
	return time.Duration(delay)
}

// Retry calls fn up to maxRetries+1 times, sleeping strategy.NextDelay between
// attempts, until it returns nil or ctx is done. fn receives the 0-based
// attempt number.
func Retry(ctx context.Context, maxRetries int, strategy BackoffStrategy, fn func(attempt int) error) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(strategy.NextDelay(attempt - 1))
			select {
			case <-ctx.Done():
				timer.Stop()
				return errors.Join(ctx.Err(), lastErr)
			case <-timer.C:
			}
		}
		if lastErr = fn(attempt); lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, maxRetries+1, lastErr)
}
