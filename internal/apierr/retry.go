package apierr

import (
	"context"
	"fmt"
	"time"
)

// RetryConfig bounds the retry loop around one service call. MaxRetries is
// the number of attempts after the first; delays double from BaseDelay up to
// MaxDelay.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

func (c RetryConfig) attempts() int {
	return max(c.MaxRetries, 0) + 1
}

func (c RetryConfig) firstDelay() time.Duration {
	if c.BaseDelay > 0 {
		return c.BaseDelay
	}
	return time.Millisecond
}

func (c RetryConfig) capDelay(d time.Duration) time.Duration {
	if c.MaxDelay > 0 {
		return min(d, c.MaxDelay)
	}
	return min(d, c.firstDelay())
}

// RetryWithBackoff calls fn until it succeeds, fails permanently, or the
// attempt budget runs out. Retry eligibility comes from IsRetryable: rate
// limits, timeouts, server errors, and malformed responses are worth another
// attempt; contract violations, quota exhaustion, and auth failures fail the
// call on the spot. fn is expected to return errors already mapped through
// Classify.
func RetryWithBackoff[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	var zero T
	delay := cfg.firstDelay()

	for attempt := 1; ; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		if !IsRetryable(err) {
			return zero, err
		}
		if attempt >= cfg.attempts() {
			return zero, fmt.Errorf("gave up after %d attempts: %w", attempt, err)
		}

		if err := sleep(ctx, delay); err != nil {
			return zero, err
		}
		delay = cfg.capDelay(delay * 2)
	}
}

// sleep waits for d or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
