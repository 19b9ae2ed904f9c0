package retry

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// BackoffFunc maps a zero-based attempt number to the delay before the next attempt.
type BackoffFunc func(attempt int) time.Duration

// Exponential doubles the delay on every attempt: base, 2*base, 4*base, ...
func Exponential(base time.Duration) BackoffFunc {
	return func(attempt int) time.Duration {
		return base << uint(attempt)
	}
}

// Constant returns the same delay for every attempt.
func Constant(delay time.Duration) BackoffFunc {
	return func(int) time.Duration {
		return delay
	}
}

// sleep is swapped out in tests.
var sleep = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Do invokes op up to attempts times, waiting backoff(attempt) between
// failures. It returns nil on the first success, the last error once
// attempts are exhausted, or ctx.Err() if the context is canceled while
// waiting.
func Do(ctx context.Context, attempts int, backoff BackoffFunc, op func(ctx context.Context) error) error {
	if attempts < 1 {
		return errors.New("retry: attempts must be >= 1")
	}
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if attempt == attempts-1 {
			break
		}
		if serr := sleep(ctx, backoff(attempt)); serr != nil {
			return serr
		}
	}
	return errors.Wrapf(err, "retry: %d attempts exhausted", attempts)
}
