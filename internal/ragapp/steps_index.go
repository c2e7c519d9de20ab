// File: internal/ragapp/steps_index.go
// Description: Steps around the document index lifecycle. Indexing is
// asynchronous with no completion signal; every verification here is a
// poll over the textual counters, reloading between attempts because the
// server never pushes updates.

package ragapp

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Oktaliem/ragproof/internal/journey"
	"github.com/Oktaliem/ragproof/internal/resilience"
	"github.com/Oktaliem/ragproof/internal/selector"
)

// ClearIndex clicks the clear-all-data control. The confirm dialog it
// raises is answered by the session's standing auto-accept handler.
func (s *Steps) ClearIndex() journey.StepFunc {
	return func(ctx context.Context, st *journey.State) error {
		main, err := s.foreground(st)
		if err != nil {
			return err
		}
		outcome := s.executor.ExecuteWithRecovery(ctx, "clear index", func(ctx context.Context) error {
			spec, err := s.resolveRequired(ctx, main, clearIndexButton)
			if err != nil {
				return err
			}
			return main.Click(ctx, spec)
		}, nil, s.reset(main), s.cfg.Poll.ActionRetries)

		if !outcome.Succeeded {
			return fmt.Errorf("clear index: %s", outcome.FailureReason)
		}
		if outcome.Recovered {
			s.logger.Info("Clear index needed recovery.", zap.Int("attempts", outcome.AttemptsUsed))
		}
		return nil
	}
}

// LoadSampleData triggers the sample corpus load.
func (s *Steps) LoadSampleData() journey.StepFunc {
	return func(ctx context.Context, st *journey.State) error {
		main, err := s.foreground(st)
		if err != nil {
			return err
		}
		outcome := s.executor.ExecuteWithRecovery(ctx, "load sample data", func(ctx context.Context) error {
			spec, err := s.resolveRequired(ctx, main, loadSampleButton)
			if err != nil {
				return err
			}
			return main.Click(ctx, spec)
		}, nil, s.reset(main), s.cfg.Poll.ActionRetries)

		if !outcome.Succeeded {
			return fmt.Errorf("load sample data: %s", outcome.FailureReason)
		}
		return nil
	}
}

// UploadDocument attaches the file at path to the upload control and
// submits it.
func (s *Steps) UploadDocument(path string) journey.StepFunc {
	return func(ctx context.Context, st *journey.State) error {
		main, err := s.foreground(st)
		if err != nil {
			return err
		}
		outcome := s.executor.ExecuteWithRecovery(ctx, "upload document", func(ctx context.Context) error {
			input, found := uploadInput.Resolve(ctx, main, false, s.logger)
			if !found {
				return fmt.Errorf("%w: %s", resilience.ErrTargetNotFound, uploadInput.Name)
			}
			if err := main.SetFiles(ctx, input, []string{path}); err != nil {
				return err
			}
			submit, err := s.resolveRequired(ctx, main, uploadSubmit)
			if err != nil {
				return err
			}
			return main.Click(ctx, submit)
		}, nil, s.reset(main), s.cfg.Poll.ActionRetries)

		if !outcome.Succeeded {
			return fmt.Errorf("upload %s: %s", path, outcome.FailureReason)
		}
		return nil
	}
}

// VerifyStatusBanner checks that a confirmation banner surfaced after a
// state-changing action. Composed as a soft step: the banner is transient
// and its absence alone does not prove the action failed.
func (s *Steps) VerifyStatusBanner() journey.StepFunc {
	return func(ctx context.Context, st *journey.State) error {
		main, err := s.foreground(st)
		if err != nil {
			return err
		}
		result := resilience.PollUntil(ctx, s.poller,
			func(ctx context.Context) (bool, error) {
				spec, found := statusBanner.Resolve(ctx, main, true, s.logger)
				if !found {
					return false, nil
				}
				text, err := main.TextContent(ctx, spec)
				if err != nil {
					return false, err
				}
				return text != "", nil
			},
			func(visible bool) bool { return visible },
			resilience.PollConfig{MaxAttempts: 5, Interval: s.cfg.Poll.Answer.Interval},
			nil,
		)
		if !result.Outcome.Succeeded {
			return fmt.Errorf("no status banner appeared: %w", result.Outcome.LastError)
		}
		return nil
	}
}

// WaitForCountersZero polls both counters until each stabilizes at exactly
// zero. Used after ClearIndex.
func (s *Steps) WaitForCountersZero() journey.StepFunc {
	return s.waitForCounters("counters zero", func(n int) bool { return n == 0 })
}

// WaitForCountersPositive polls both counters until each is greater than
// zero. Used after LoadSampleData and uploads; shares the larger indexing
// budget because embedding and upsert lag the banner.
func (s *Steps) WaitForCountersPositive() journey.StepFunc {
	return s.waitForCounters("counters positive", func(n int) bool { return n > 0 })
}

func (s *Steps) waitForCounters(name string, predicate func(int) bool) journey.StepFunc {
	return func(ctx context.Context, st *journey.State) error {
		main, err := s.foreground(st)
		if err != nil {
			return err
		}
		for _, c := range []struct {
			label string
			chain selector.Chain
		}{
			{"documents", documentCounter},
			{"chunks", chunkCounter},
		} {
			result := resilience.PollUntil(ctx, s.poller,
				func(ctx context.Context) (int, error) {
					return readCounter(ctx, main, c.chain, s.logger)
				},
				predicate,
				s.cfg.Poll.Indexing,
				main.Reload,
			)
			if !result.Outcome.Succeeded {
				return fmt.Errorf("%s: %s counter: %w", name, c.label, result.Outcome.LastError)
			}
			s.logger.Info("Counter reached expected state.",
				zap.String("counter", c.label),
				zap.Int("value", result.Value),
				zap.Int("attempts", result.Outcome.Attempts))
		}
		return nil
	}
}
