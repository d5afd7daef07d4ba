package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoSucceedsAfterRetries(t *testing.T) {
	p := Policy{MaxAttempts: 5, BaseDelay: time.Millisecond}

	calls := 0
	err := p.Do(context.Background(), func() (bool, error) {
		calls++
		if calls < 3 {
			return true, errors.New("transient")
		}
		return false, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	p := Policy{MaxAttempts: 5, BaseDelay: time.Millisecond}

	fatal := errors.New("fatal")
	calls := 0
	err := p.Do(context.Background(), func() (bool, error) {
		calls++
		return false, fatal
	})
	require.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	p := Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, Jitter: time.Millisecond}

	calls := 0
	err := p.Do(context.Background(), func() (bool, error) {
		calls++
		return true, errors.New("transient")
	})
	require.ErrorIs(t, err, ErrAttemptsExceeded)
	assert.Equal(t, 3, calls)
}

func TestDoRespectsContext(t *testing.T) {
	p := Policy{MaxAttempts: 10, BaseDelay: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Do(ctx, func() (bool, error) {
		return true, errors.New("transient")
	})
	require.ErrorIs(t, err, context.Canceled)
}
