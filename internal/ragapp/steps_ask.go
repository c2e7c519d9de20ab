// File: internal/ragapp/steps_ask.go
// Description: Steps around the question/answer flow and the model
// selector. The answer streams in token by token, so "answered" means the
// text is non-empty and has stopped growing between reads.

package ragapp

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Oktaliem/ragproof/internal/journey"
	"github.com/Oktaliem/ragproof/internal/resilience"
)

// SelectModel picks the configured model in the model selector.
func (s *Steps) SelectModel() journey.StepFunc {
	return s.selectModelValue(func() string { return s.cfg.Target.Model })
}

func (s *Steps) selectModelValue(value func() string) journey.StepFunc {
	return func(ctx context.Context, st *journey.State) error {
		main, err := s.foreground(st)
		if err != nil {
			return err
		}
		outcome := s.executor.ExecuteWithRecovery(ctx, "select model", func(ctx context.Context) error {
			spec, err := s.resolveRequired(ctx, main, modelSelect)
			if err != nil {
				return err
			}
			return main.SelectOption(ctx, spec, value())
		}, nil, s.reset(main), s.cfg.Poll.ActionRetries)

		if !outcome.Succeeded {
			return fmt.Errorf("select model %q: %s", value(), outcome.FailureReason)
		}
		return nil
	}
}

// ExerciseModelOptions iterates every option of the model selector and
// selects each in turn under the recovery policy. Individual failures are
// counted, not escalated; the step only fails when no option could be
// selected at all. This is the batch shape of the partial-failure policy.
func (s *Steps) ExerciseModelOptions() journey.StepFunc {
	return func(ctx context.Context, st *journey.State) error {
		main, err := s.foreground(st)
		if err != nil {
			return err
		}
		if _, err := s.resolveRequired(ctx, main, modelSelect); err != nil {
			return err
		}

		var options []string
		lookup := "Array.from(document.querySelectorAll('select option')).map(o => o.value)"
		if err := main.Evaluate(ctx, lookup, &options); err != nil {
			return fmt.Errorf("list model options: %w", err)
		}
		if len(options) == 0 {
			return fmt.Errorf("model selector has no options")
		}

		succeeded := 0
		for _, opt := range options {
			outcome := s.executor.ExecuteWithRecovery(ctx, "select model "+opt, func(ctx context.Context) error {
				target, err := s.resolveRequired(ctx, main, modelSelect)
				if err != nil {
					return err
				}
				return main.SelectOption(ctx, target, opt)
			}, nil, s.reset(main), s.cfg.Poll.ActionRetries)
			if outcome.Succeeded {
				succeeded++
			} else {
				s.logger.Warn("Model option failed.",
					zap.String("option", opt),
					zap.String("reason", outcome.FailureReason))
			}
		}

		s.logger.Info("Model options exercised.",
			zap.Int("total", len(options)),
			zap.Int("succeeded", succeeded))
		if succeeded == 0 {
			return fmt.Errorf("all %d model options failed", len(options))
		}
		return nil
	}
}

// AskQuestion fills the question box and submits it.
func (s *Steps) AskQuestion(question string) journey.StepFunc {
	return func(ctx context.Context, st *journey.State) error {
		main, err := s.foreground(st)
		if err != nil {
			return err
		}
		outcome := s.executor.ExecuteWithRecovery(ctx, "ask question", func(ctx context.Context) error {
			input, err := s.resolveRequired(ctx, main, questionInput)
			if err != nil {
				return err
			}
			if err := main.Fill(ctx, input, question); err != nil {
				return err
			}
			ask, err := s.resolveRequired(ctx, main, askButton)
			if err != nil {
				return err
			}
			return main.Click(ctx, ask)
		}, nil, s.reset(main), s.cfg.Poll.ActionRetries)

		if !outcome.Succeeded {
			return fmt.Errorf("ask question: %s", outcome.FailureReason)
		}
		return nil
	}
}

// answerObservation is one read of the streaming answer area.
type answerObservation struct {
	Text string
	// Stable is true when the text matches the previous read, meaning the
	// stream has (at least momentarily) stopped growing.
	Stable bool
}

func (o answerObservation) String() string { return truncate(o.Text, 120) }

// WaitForAnswer polls the answer area until it holds non-empty text that
// did not change between two consecutive reads. Reloading between attempts
// would discard the streamed answer, so this poll never refreshes.
func (s *Steps) WaitForAnswer() journey.StepFunc {
	return func(ctx context.Context, st *journey.State) error {
		main, err := s.foreground(st)
		if err != nil {
			return err
		}

		previous := ""
		read := func(ctx context.Context) (answerObservation, error) {
			spec, found := answerArea.Resolve(ctx, main, true, s.logger)
			if !found {
				return answerObservation{}, fmt.Errorf("%w: %s", resilience.ErrTargetNotFound, answerArea.Name)
			}
			text, err := main.TextContent(ctx, spec)
			if err != nil {
				return answerObservation{}, err
			}
			obs := answerObservation{Text: text, Stable: text != "" && text == previous}
			previous = text
			return obs, nil
		}

		cfg := s.cfg.Poll.Answer
		cfg.RefreshBetweenAttempts = false
		result := resilience.PollUntil(ctx, s.poller, read,
			func(o answerObservation) bool { return o.Stable },
			cfg, nil)
		if !result.Outcome.Succeeded {
			return fmt.Errorf("no stable answer: %w", result.Outcome.LastError)
		}
		s.logger.Info("Answer received.",
			zap.Int("length", len(result.Value.Text)),
			zap.Int("attempts", result.Outcome.Attempts))
		return nil
	}
}
