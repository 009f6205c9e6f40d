package retrylimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.InitialDelay = time.Millisecond
	cfg.MaxDelay = 5 * time.Millisecond
	cfg.ThrottleDelay = time.Millisecond
	cfg.Jitter = false
	return cfg
}

func TestWithRetrySucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}
		return nil
	}, nil, fastConfig())

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetryGivesUp(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	var retried []int

	cfg := fastConfig()
	cfg.OnRetry = func(attempt int, err error) { retried = append(retried, attempt) }

	err := WithRetry(context.Background(), func() error {
		calls++
		return boom
	}, nil, cfg)

	require.ErrorIs(t, err, boom)
	assert.Equal(t, cfg.MaxAttempts, calls)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestWithRetryStopsOnFatal(t *testing.T) {
	notFound := errors.New("not found")
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return Fatal(notFound)
	}, nil, fastConfig())

	require.ErrorIs(t, err, notFound)
	assert.Equal(t, 1, calls)
	assert.Nil(t, Fatal(nil))
}

func TestWithRetryHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := WithRetry(ctx, func() error {
		calls++
		return nil
	}, nil, fastConfig())

	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestThrottleLowersLimit(t *testing.T) {
	lim := NewAdaptiveLimiter(100, 10, 200, 5, 0.5)
	throttled := errors.New("HTTP Error 429: Too Many Requests")

	cfg := fastConfig()
	cfg.MaxAttempts = 2
	cfg.Classify = func(err error) Class {
		if errors.Is(err, throttled) {
			return Throttle
		}
		return DefaultClassifier(err)
	}

	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		if calls == 1 {
			return throttled
		}
		return nil
	}, lim, cfg)

	require.NoError(t, err)
	assert.InDelta(t, 50, lim.CurrentLimit(), 0.001)
}

func TestAdaptiveLimiterBounds(t *testing.T) {
	lim := NewAdaptiveLimiter(4, 1, 8, 2, 0.1)
	lim.cooldown = 0

	lim.Throttled()
	assert.InDelta(t, 1, lim.CurrentLimit(), 0.001)

	lim.lastError = time.Time{}
	for range 10 {
		lim.Success()
	}
	assert.InDelta(t, 8, lim.CurrentLimit(), 0.001)
}
