// File: internal/journey/journey.go
// Description: Composition of resilient steps into a single journey.
// Journeys are assembled purely as ordered step lists; new scenarios are
// built by reordering and recombining existing steps, never by duplicating
// their internals.

package journey

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Oktaliem/ragproof/api/schemas"
)

// StepFunc is one named, idempotent-on-retry unit of work over the shared
// State. It must leave the State usable for the next step even when it
// fails softly.
type StepFunc func(ctx context.Context, st *State) error

type step struct {
	name string
	soft bool
	fn   StepFunc
}

// Journey is an ordered list of steps executed strictly sequentially: step
// N's effects are fully observable through the State before step N+1
// begins.
type Journey struct {
	name   string
	target string
	logger *zap.Logger
	steps  []step
}

// New starts a journey definition.
func New(name, target string, logger *zap.Logger) *Journey {
	return &Journey{
		name:   name,
		target: target,
		logger: logger.Named("journey").With(zap.String("journey", name)),
	}
}

// Step appends a hard step: its failure aborts the remaining chain.
func (j *Journey) Step(name string, fn StepFunc) *Journey {
	j.steps = append(j.steps, step{name: name, fn: fn})
	return j
}

// SoftStep appends a fail-soft step: its failure is logged and the journey
// continues with the unmodified State.
func (j *Journey) SoftStep(name string, fn StepFunc) *Journey {
	j.steps = append(j.steps, step{name: name, soft: true, fn: fn})
	return j
}

// Run executes the journey over st and returns the report. Sessions opened
// during the run are torn down before Run returns, on success or failure.
func (j *Journey) Run(ctx context.Context, st *State) schemas.JourneyReport {
	report := schemas.JourneyReport{
		RunID:     uuid.New().String(),
		Journey:   j.name,
		Target:    j.target,
		StartedAt: time.Now(),
		Succeeded: true,
	}
	j.logger.Info("Journey starting.", zap.String("run_id", report.RunID), zap.Int("steps", len(j.steps)))

	defer func() {
		// Teardown must survive a canceled journey context.
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		st.CloseAll(closeCtx)
	}()

	aborted := false
	for _, s := range j.steps {
		if aborted {
			report.Steps = append(report.Steps, schemas.StepOutcome{Name: s.name, Status: schemas.StepSkipped})
			continue
		}

		stepStart := time.Now()
		j.logger.Info("Step starting.", zap.String("step", s.name))
		err := s.fn(ctx, st)
		elapsed := time.Since(stepStart)

		switch {
		case err == nil:
			j.logger.Info("Step passed.", zap.String("step", s.name), zap.Duration("elapsed", elapsed))
			report.Steps = append(report.Steps, schemas.StepOutcome{
				Name: s.name, Status: schemas.StepPassed, Elapsed: elapsed,
			})
		case s.soft:
			j.logger.Warn("Soft step failed, continuing.",
				zap.String("step", s.name), zap.Duration("elapsed", elapsed), zap.Error(err))
			report.Steps = append(report.Steps, schemas.StepOutcome{
				Name: s.name, Status: schemas.StepSoftFailed, Elapsed: elapsed, Reason: err.Error(),
			})
		default:
			j.logger.Error("Hard step failed, aborting journey.",
				zap.String("step", s.name), zap.Duration("elapsed", elapsed), zap.Error(err))
			report.Steps = append(report.Steps, schemas.StepOutcome{
				Name: s.name, Status: schemas.StepFailed, Elapsed: elapsed, Reason: err.Error(),
			})
			report.Succeeded = false
			aborted = true
		}

		if ctx.Err() != nil && !aborted {
			report.Succeeded = false
			aborted = true
		}
	}

	report.Elapsed = time.Since(report.StartedAt)
	j.logger.Info("Journey finished.",
		zap.String("run_id", report.RunID),
		zap.Bool("succeeded", report.Succeeded),
		zap.Duration("elapsed", report.Elapsed))
	return report
}
