package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

var ErrAttemptsExceeded = errors.New("retry attempts exceeded")

// Policy is a named retry policy. Delay before attempt n (0-based) is
// BaseDelay*2^n plus up to Jitter of random noise.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Jitter      time.Duration
}

func (p Policy) delay(attempt int) time.Duration {
	d := p.BaseDelay << attempt
	if p.Jitter > 0 {
		d += time.Duration(rand.Int63n(int64(p.Jitter)))
	}

	return d
}

// Do runs fn until it returns retryable=false or attempts are exhausted.
// The first attempt runs immediately.
func (p Policy) Do(ctx context.Context, fn func() (retryable bool, err error)) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.delay(attempt - 1)):
			}
		}

		retryable, err := fn()
		if err == nil {
			return nil
		}
		if !retryable {
			return err
		}

		lastErr = err
	}

	return errors.Join(ErrAttemptsExceeded, lastErr)
}
