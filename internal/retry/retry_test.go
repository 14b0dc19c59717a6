package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy() Policy {
	return Policy{
		MaxAttempts:      3,
		InitialBackoff:   time.Millisecond,
		RateLimitBackoff: time.Millisecond,
	}
}

func retryAll(error) Action { return Retry }

func TestDoSucceedsFirstTry(t *testing.T) {
	calls := 0
	val, err := Do(context.Background(), fastPolicy(), retryAll, func() (int, error) {
		calls++
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, val)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesTransientErrors(t *testing.T) {
	calls := 0
	val, err := Do(context.Background(), fastPolicy(), retryAll, func() (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("flaky")
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", val)
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnPermanentError(t *testing.T) {
	permanent := errors.New("not found")
	calls := 0

	_, err := Do(context.Background(), fastPolicy(), func(error) Action { return Stop }, func() (int, error) {
		calls++
		return 0, permanent
	})

	assert.Equal(t, 1, calls)
	var permErr *PermanentError
	require.ErrorAs(t, err, &permErr)
	assert.ErrorIs(t, err, permanent)
}

func TestDoExhaustsAttempts(t *testing.T) {
	cause := errors.New("still broken")
	calls := 0

	_, err := Do(context.Background(), fastPolicy(), retryAll, func() (int, error) {
		calls++
		return 0, cause
	})

	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, cause)
}

func TestDoHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := Policy{MaxAttempts: 5, InitialBackoff: time.Hour}

	calls := 0
	_, err := Do(ctx, policy, retryAll, func() (int, error) {
		calls++
		cancel()
		return 0, errors.New("flaky")
	})

	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDoCallsOnRetry(t *testing.T) {
	var attempts []int
	policy := fastPolicy()
	policy.OnRetry = func(attempt int, _ error, _ time.Duration) {
		attempts = append(attempts, attempt)
	}

	_, _ = Do(context.Background(), policy, retryAll, func() (int, error) {
		return 0, errors.New("flaky")
	})

	assert.Equal(t, []int{1, 2}, attempts)
}
