// File: internal/resilience/prober.go
// Description: Readiness probing with exponential backoff. Used once at
// environment bring-up: the target service takes unpredictable time to
// accept connections, and "connection refused" is a normal, retryable
// outcome there, not a fault.

package resilience

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Oktaliem/ragproof/api/schemas"
)

// BackoffConfig bounds a readiness probe. Passed by value; never mutated by
// the prober.
type BackoffConfig struct {
	MaxAttempts   int           `mapstructure:"max_attempts" yaml:"max_attempts"`
	InitialDelay  time.Duration `mapstructure:"initial_delay" yaml:"initial_delay"`
	BackoffFactor float64       `mapstructure:"backoff_factor" yaml:"backoff_factor"`
	MaxDelay      time.Duration `mapstructure:"max_delay" yaml:"max_delay"`
}

// DefaultBackoff matches the bring-up profile of the document assistant:
// 2.5s, 3.75s, 5.6s, ... capped at 15s.
func DefaultBackoff() BackoffConfig {
	return BackoffConfig{
		MaxAttempts:   10,
		InitialDelay:  2500 * time.Millisecond,
		BackoffFactor: 1.5,
		MaxDelay:      15 * time.Second,
	}
}

func (c BackoffConfig) validate() error {
	if c.MaxAttempts < 1 {
		return fmt.Errorf("backoff config: max_attempts must be >= 1, got %d", c.MaxAttempts)
	}
	if c.BackoffFactor < 1 {
		return fmt.Errorf("backoff config: backoff_factor must be >= 1, got %v", c.BackoffFactor)
	}
	return nil
}

// Prober drives a boundary probe until it succeeds or the attempt budget is
// exhausted. Exhaustion is fatal to the calling journey; proceeding against
// a non-ready environment only produces misleading downstream failures.
type Prober struct {
	logger *zap.Logger
	// sleep is swapped out by tests to observe the delay sequence.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewProber creates a Prober logging through the given logger.
func NewProber(logger *zap.Logger) *Prober {
	return &Prober{
		logger: logger.Named("prober"),
		sleep:  sleepCtx,
	}
}

// WaitUntilReady invokes probe until it returns nil. Between failed
// attempts it sleeps delay, then grows delay by cfg.BackoffFactor up to
// cfg.MaxDelay; the delay sequence is therefore non-decreasing and bounded.
func (p *Prober) WaitUntilReady(ctx context.Context, probe func(ctx context.Context) error, cfg BackoffConfig) schemas.ProbeOutcome {
	start := time.Now()
	if err := cfg.validate(); err != nil {
		return schemas.ProbeOutcome{Attempts: 0, Elapsed: time.Since(start), LastError: err}
	}

	delay := cfg.InitialDelay
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := probe(ctx); err == nil {
			p.logger.Info("Target ready.", zap.Int("attempt", attempt), zap.Duration("elapsed", time.Since(start)))
			return schemas.ProbeOutcome{Succeeded: true, Attempts: attempt, Elapsed: time.Since(start)}
		} else {
			lastErr = err
			p.logger.Debug("Probe failed, backing off.",
				zap.Int("attempt", attempt),
				zap.Duration("next_delay", delay),
				zap.Error(err))
		}

		if attempt == cfg.MaxAttempts {
			break
		}
		if err := p.sleep(ctx, delay); err != nil {
			return schemas.ProbeOutcome{Attempts: attempt, Elapsed: time.Since(start), LastError: err}
		}
		delay = time.Duration(float64(delay) * cfg.BackoffFactor)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	out := schemas.ProbeOutcome{
		Attempts: cfg.MaxAttempts,
		Elapsed:  time.Since(start),
		LastError: &ExhaustedError{
			Op:       "readiness probe",
			Attempts: cfg.MaxAttempts,
			Elapsed:  time.Since(start),
			LastErr:  fmt.Errorf("%w: %v", ErrNotReady, lastErr),
		},
	}
	p.logger.Error("Readiness budget exhausted.", zap.Int("attempts", out.Attempts), zap.Error(out.LastError))
	return out
}

// sleepCtx sleeps for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
