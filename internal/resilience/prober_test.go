// File: internal/resilience/prober_test.go
package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestProber(t *testing.T) (*Prober, *[]time.Duration) {
	t.Helper()
	p := NewProber(zaptest.NewLogger(t))
	var delays []time.Duration
	p.sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return ctx.Err()
	}
	return p, &delays
}

func TestProberSucceedsImmediately(t *testing.T) {
	p, delays := newTestProber(t)

	outcome := p.WaitUntilReady(context.Background(),
		func(ctx context.Context) error { return nil },
		DefaultBackoff())

	require.True(t, outcome.Succeeded)
	assert.Equal(t, 1, outcome.Attempts)
	assert.Empty(t, *delays, "no sleep before a first-attempt success")
}

func TestProberSucceedsAfterRetries(t *testing.T) {
	p, delays := newTestProber(t)
	calls := 0

	outcome := p.WaitUntilReady(context.Background(),
		func(ctx context.Context) error {
			calls++
			if calls < 4 {
				return errors.New("connection refused")
			}
			return nil
		},
		BackoffConfig{MaxAttempts: 10, InitialDelay: 100 * time.Millisecond, BackoffFactor: 2, MaxDelay: time.Second})

	require.True(t, outcome.Succeeded)
	assert.Equal(t, 4, outcome.Attempts)
	assert.Len(t, *delays, 3)
}

func TestProberDelaySequenceIsCappedAndNonDecreasing(t *testing.T) {
	p, delays := newTestProber(t)

	outcome := p.WaitUntilReady(context.Background(),
		func(ctx context.Context) error { return errors.New("still down") },
		BackoffConfig{
			MaxAttempts:   6,
			InitialDelay:  2500 * time.Millisecond,
			BackoffFactor: 1.5,
			MaxDelay:      15 * time.Second,
		})

	require.False(t, outcome.Succeeded)
	assert.Equal(t, 6, outcome.Attempts)

	want := []time.Duration{
		2500 * time.Millisecond,
		3750 * time.Millisecond,
		5625 * time.Millisecond,
		8437500 * time.Microsecond,
		12656250 * time.Microsecond,
	}
	require.Equal(t, want, *delays)
	for i := 1; i < len(*delays); i++ {
		assert.GreaterOrEqual(t, (*delays)[i], (*delays)[i-1])
		assert.LessOrEqual(t, (*delays)[i], 15*time.Second)
	}
}

func TestProberDelayNeverExceedsMax(t *testing.T) {
	p, delays := newTestProber(t)

	p.WaitUntilReady(context.Background(),
		func(ctx context.Context) error { return errors.New("down") },
		BackoffConfig{MaxAttempts: 10, InitialDelay: 4 * time.Second, BackoffFactor: 3, MaxDelay: 10 * time.Second})

	for _, d := range *delays {
		assert.LessOrEqual(t, d, 10*time.Second)
	}
	// The cap is reached on the second step and holds.
	assert.Equal(t, 10*time.Second, (*delays)[len(*delays)-1])
}

func TestProberExhaustionCarriesLastError(t *testing.T) {
	p, _ := newTestProber(t)
	probeErr := errors.New("connection refused")

	outcome := p.WaitUntilReady(context.Background(),
		func(ctx context.Context) error { return probeErr },
		BackoffConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, BackoffFactor: 1.5, MaxDelay: time.Second})

	require.False(t, outcome.Succeeded)
	assert.Equal(t, 3, outcome.Attempts)

	var exhausted *ExhaustedError
	require.ErrorAs(t, outcome.LastError, &exhausted)
	assert.Equal(t, 3, exhausted.Attempts)
	assert.ErrorIs(t, outcome.LastError, ErrNotReady)
	assert.Contains(t, outcome.LastError.Error(), "connection refused")
	assert.Contains(t, outcome.LastError.Error(), "3 attempts")
}

func TestProberRespectsContextCancellation(t *testing.T) {
	p := NewProber(zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	p.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	outcome := p.WaitUntilReady(ctx,
		func(ctx context.Context) error {
			calls++
			return errors.New("down")
		},
		BackoffConfig{MaxAttempts: 100, InitialDelay: time.Millisecond, BackoffFactor: 1, MaxDelay: time.Second})

	require.False(t, outcome.Succeeded)
	assert.Equal(t, 1, calls, "cancellation during the first backoff stops further probes")
	assert.ErrorIs(t, outcome.LastError, context.Canceled)
}

func TestProberRejectsInvalidConfig(t *testing.T) {
	p, _ := newTestProber(t)

	outcome := p.WaitUntilReady(context.Background(),
		func(ctx context.Context) error { return nil },
		BackoffConfig{MaxAttempts: 0, BackoffFactor: 1.5})

	require.False(t, outcome.Succeeded)
	assert.Zero(t, outcome.Attempts)
	require.Error(t, outcome.LastError)
}
