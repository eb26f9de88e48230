package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() BackoffConfig {
	return BackoffConfig{
		InitialDelay: time.Millisecond,
		MaxDelay:     10 * time.Millisecond,
		Multiplier:   2.0,
		MaxAttempts:  3,
		Jitter:       false,
	}
}

func TestRetrySucceedsFirstAttempt(t *testing.T) {
	b := NewBackoff(testConfig())

	calls := 0
	err := b.Retry(context.Background(), func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	b := NewBackoff(testConfig())

	calls := 0
	err := b.Retry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	b := NewBackoff(testConfig())

	calls := 0
	sentinel := errors.New("always failing")
	err := b.Retry(context.Background(), func() error {
		calls++
		return sentinel
	})

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 3, calls)
}

func TestRetryWithPredicateStopsOnNonRetryable(t *testing.T) {
	b := NewBackoff(testConfig())

	calls := 0
	fatal := errors.New("fatal")
	err := b.RetryWithPredicate(context.Background(), func() error {
		calls++
		return fatal
	}, func(err error) bool { return false })

	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls)
}

func TestRetryRespectsContextCancellation(t *testing.T) {
	cfg := testConfig()
	cfg.InitialDelay = time.Second
	cfg.MaxDelay = time.Second
	b := NewBackoff(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := b.Retry(ctx, func() error {
		return errors.New("keep retrying")
	})

	assert.ErrorIs(t, err, context.Canceled)
}

type hintedErr struct {
	after time.Duration
}

func (e *hintedErr) Error() string             { return "rate limited" }
func (e *hintedErr) RetryAfter() time.Duration { return e.after }

func TestRetryHonorsRetryAfterHint(t *testing.T) {
	cfg := testConfig()
	cfg.MaxAttempts = 2
	b := NewBackoff(cfg)

	start := time.Now()
	calls := 0
	err := b.Retry(context.Background(), func() error {
		calls++
		if calls == 1 {
			return &hintedErr{after: 50 * time.Millisecond}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestGetNextDelayGrowsAndCaps(t *testing.T) {
	b := NewBackoff(testConfig())

	d1 := b.GetNextDelay(1)
	d2 := b.GetNextDelay(2)
	d5 := b.GetNextDelay(5)

	assert.Equal(t, time.Millisecond, d1)
	assert.Equal(t, 2*time.Millisecond, d2)
	assert.Equal(t, 10*time.Millisecond, d5) // capped at MaxDelay
}

func TestCalculateDelayWithJitterStaysInBounds(t *testing.T) {
	cfg := testConfig()
	cfg.Jitter = true
	cfg.InitialDelay = 100 * time.Millisecond
	cfg.MaxDelay = time.Minute
	b := NewBackoff(cfg)

	for i := 0; i < 50; i++ {
		d := b.GetNextDelay(1)
		assert.GreaterOrEqual(t, d, 75*time.Millisecond)
		assert.LessOrEqual(t, d, 125*time.Millisecond)
	}
}
