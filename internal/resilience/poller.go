// File: internal/resilience/poller.go
// Description: Polling for eventually-consistent values. The document
// assistant indexes uploads asynchronously and exposes no completion
// signal, so repeated read-and-test, optionally forcing a page reload
// between attempts, is the only observable way to detect the transition.

package resilience

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Oktaliem/ragproof/api/schemas"
)

// PollConfig bounds one poll invocation. Total wall-clock bound is
// MaxAttempts * Interval plus refresh cost. Read-only configuration owned
// by the caller; safe to share across many calls.
type PollConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts" yaml:"max_attempts"`
	Interval    time.Duration `mapstructure:"interval" yaml:"interval"`
	// RefreshBetweenAttempts reloads the observed page before each retry.
	// The server never pushes updates, so some counters only move on a
	// fresh render; left tunable because a reload is not free.
	RefreshBetweenAttempts bool          `mapstructure:"refresh_between_attempts" yaml:"refresh_between_attempts"`
	RefreshTimeout         time.Duration `mapstructure:"refresh_timeout" yaml:"refresh_timeout"`
}

func (c PollConfig) validate() error {
	if c.MaxAttempts < 1 {
		return fmt.Errorf("poll config: max_attempts must be >= 1, got %d", c.MaxAttempts)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("poll config: interval must be positive, got %v", c.Interval)
	}
	return nil
}

// PollResult pairs the invocation outcome with the last value read.
type PollResult[T any] struct {
	Outcome schemas.ProbeOutcome
	Value   T
}

// Poller repeatedly reads an observable value until a predicate holds.
type Poller struct {
	logger *zap.Logger
}

// NewPoller creates a Poller logging through the given logger.
func NewPoller(logger *zap.Logger) *Poller {
	return &Poller{logger: logger.Named("poller")}
}

// PollUntil calls read and tests the value with predicate. On a miss, if
// attempts remain, it optionally invokes onRefresh (bounded by
// cfg.RefreshTimeout), waits cfg.Interval, and retries. A read that fails
// to locate its target counts as "value not yet present" rather than a
// hard error, unless it is the final attempt. The predicate must be pure.
//
// A value satisfying on attempt k costs exactly k reads and at most k-1
// refreshes. Exhaustion returns a failed outcome naming the last observed
// value and attempt count.
func PollUntil[T any](
	ctx context.Context,
	p *Poller,
	read func(ctx context.Context) (T, error),
	predicate func(T) bool,
	cfg PollConfig,
	onRefresh func(ctx context.Context) error,
) PollResult[T] {
	start := time.Now()
	var result PollResult[T]
	if err := cfg.validate(); err != nil {
		result.Outcome = schemas.ProbeOutcome{Elapsed: time.Since(start), LastError: err}
		return result
	}

	// The limiter paces retries at one read per interval; the first
	// attempt passes immediately on the initial burst token.
	limiter := rate.NewLimiter(rate.Every(cfg.Interval), 1)
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			result.Outcome = schemas.ProbeOutcome{Attempts: attempt - 1, Elapsed: time.Since(start), LastError: err}
			return result
		}

		value, err := read(ctx)
		if err == nil {
			result.Value = value
			if predicate(value) {
				p.logger.Debug("Poll satisfied.",
					zap.Int("attempt", attempt),
					zap.String("value", fmt.Sprint(value)))
				result.Outcome = schemas.ProbeOutcome{
					Succeeded:    true,
					Attempts:     attempt,
					Elapsed:      time.Since(start),
					LastObserved: fmt.Sprint(value),
				}
				return result
			}
			lastErr = fmt.Errorf("%w: observed %v", ErrNotYetConsistent, value)
		} else {
			// Missing target: the value simply has not rendered yet.
			lastErr = err
			p.logger.Debug("Poll read failed, treating as not yet present.",
				zap.Int("attempt", attempt), zap.Error(err))
		}

		if attempt == cfg.MaxAttempts {
			break
		}
		if cfg.RefreshBetweenAttempts && onRefresh != nil {
			if err := refreshBounded(ctx, onRefresh, cfg.RefreshTimeout); err != nil {
				p.logger.Warn("Refresh between poll attempts failed.", zap.Int("attempt", attempt), zap.Error(err))
			}
		}
	}

	lastObserved := fmt.Sprint(result.Value)
	result.Outcome = schemas.ProbeOutcome{
		Attempts:     cfg.MaxAttempts,
		Elapsed:      time.Since(start),
		LastObserved: lastObserved,
		LastError: &ExhaustedError{
			Op:           "poll",
			Attempts:     cfg.MaxAttempts,
			Elapsed:      time.Since(start),
			LastObserved: lastObserved,
			LastErr:      lastErr,
		},
	}
	p.logger.Warn("Poll budget exhausted.",
		zap.Int("attempts", cfg.MaxAttempts),
		zap.String("last_observed", lastObserved),
		zap.Error(lastErr))
	return result
}

// refreshBounded runs onRefresh under its own deadline so a hung reload
// cannot consume the remaining poll budget.
func refreshBounded(ctx context.Context, onRefresh func(ctx context.Context) error, timeout time.Duration) error {
	if timeout <= 0 {
		return onRefresh(ctx)
	}
	refreshCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return onRefresh(refreshCtx)
}
