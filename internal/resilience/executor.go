// File: internal/resilience/executor.go
// Description: Bounded retry with environment reset for single logical
// actions. A whole-journey abort is reserved for unrecoverable or
// setup-level failures; per-item failures inside a batch (e.g. exercising
// every option of the model selector) are counted and reported instead.

package resilience

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Oktaliem/ragproof/api/schemas"
)

// Executor wraps risky actions in a reset-and-retry loop.
type Executor struct {
	logger *zap.Logger
}

// NewExecutor creates an Executor logging through the given logger.
func NewExecutor(logger *zap.Logger) *Executor {
	return &Executor{logger: logger.Named("executor")}
}

// ExecuteWithRecovery runs action up to maxAttempts times. On failure the
// error is classified by isRecoverable (nil defaults to IsRecoverable):
// unrecoverable errors abort immediately with the error surfaced in the
// outcome; recoverable ones trigger reset (typically reload plus selector
// reacquisition) and a retry. Exhausting the budget returns a failed
// outcome without an error escalation, so callers iterating independent
// items can continue past individual failures.
func (e *Executor) ExecuteWithRecovery(
	ctx context.Context,
	name string,
	action func(ctx context.Context) error,
	isRecoverable func(error) bool,
	reset func(ctx context.Context) error,
	maxAttempts int,
) schemas.ActionOutcome {
	start := time.Now()
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if isRecoverable == nil {
		isRecoverable = IsRecoverable
	}

	recovered := false
	for attempt := 1; ; attempt++ {
		err := action(ctx)
		if err == nil {
			return schemas.ActionOutcome{
				Succeeded:    true,
				AttemptsUsed: attempt,
				Recovered:    recovered,
				Elapsed:      time.Since(start),
			}
		}

		// The caller's context going away is not a transient page fault.
		if ctx.Err() != nil {
			return schemas.ActionOutcome{
				AttemptsUsed:  attempt,
				Recovered:     recovered,
				Elapsed:       time.Since(start),
				FailureReason: ctx.Err().Error(),
			}
		}

		if !isRecoverable(err) {
			e.logger.Error("Action failed with unrecoverable error.",
				zap.String("action", name),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return schemas.ActionOutcome{
				AttemptsUsed:  attempt,
				Recovered:     recovered,
				Elapsed:       time.Since(start),
				FailureReason: err.Error(),
			}
		}

		if attempt == maxAttempts {
			e.logger.Warn("Action retry budget exhausted.",
				zap.String("action", name),
				zap.Int("attempts", attempt),
				zap.Error(err))
			return schemas.ActionOutcome{
				AttemptsUsed: attempt,
				Recovered:    recovered,
				Elapsed:      time.Since(start),
				FailureReason: (&ExhaustedError{
					Op:       name,
					Attempts: attempt,
					Elapsed:  time.Since(start),
					LastErr:  err,
				}).Error(),
			}
		}

		e.logger.Info("Recoverable failure, resetting environment.",
			zap.String("action", name),
			zap.Int("attempt", attempt),
			zap.Error(err))
		recovered = true
		if reset != nil {
			if resetErr := reset(ctx); resetErr != nil {
				e.logger.Warn("Environment reset failed, retrying anyway.",
					zap.String("action", name), zap.Error(resetErr))
			}
		}
	}
}
