// File: internal/ragapp/journeys.go
// Description: Named journey assemblies. A journey is nothing but an
// ordered step list over the shared catalog.

package ragapp

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Oktaliem/ragproof/internal/journey"
)

// BuildJourney assembles the named journey, or lists the known names on a
// miss.
func (s *Steps) BuildJourney(name string, logger *zap.Logger) (*journey.Journey, error) {
	target := s.cfg.Target.BaseURL
	switch name {
	case "smoke":
		return journey.New("smoke", target, logger).
			Step("wait-for-ready", s.WaitForReady()).
			Step("login", s.Login()).
			SoftStep("verify-auth-token", s.VerifyAuthToken()).
			Step("navigate-home", s.NavigateHome()).
			SoftStep("logout", s.Logout()), nil

	case "index-lifecycle":
		return journey.New("index-lifecycle", target, logger).
			Step("wait-for-ready", s.WaitForReady()).
			Step("login", s.Login()).
			Step("navigate-home", s.NavigateHome()).
			Step("clear-index", s.ClearIndex()).
			Step("wait-counters-zero", s.WaitForCountersZero()).
			Step("load-sample-data", s.LoadSampleData()).
			SoftStep("verify-status-banner", s.VerifyStatusBanner()).
			Step("wait-counters-positive", s.WaitForCountersPositive()), nil

	case "qa":
		return journey.New("qa", target, logger).
			Step("wait-for-ready", s.WaitForReady()).
			Step("login", s.Login()).
			Step("navigate-home", s.NavigateHome()).
			Step("select-model", s.SelectModel()).
			Step("ask-question", s.AskQuestion("What documents are indexed?")).
			Step("wait-for-answer", s.WaitForAnswer()), nil

	case "models":
		return journey.New("models", target, logger).
			Step("wait-for-ready", s.WaitForReady()).
			Step("login", s.Login()).
			Step("navigate-home", s.NavigateHome()).
			Step("exercise-model-options", s.ExerciseModelOptions()), nil

	case "full":
		return journey.New("full", target, logger).
			Step("wait-for-ready", s.WaitForReady()).
			Step("login", s.Login()).
			SoftStep("verify-auth-token", s.VerifyAuthToken()).
			Step("navigate-home", s.NavigateHome()).
			Step("clear-index", s.ClearIndex()).
			Step("wait-counters-zero", s.WaitForCountersZero()).
			Step("load-sample-data", s.LoadSampleData()).
			Step("wait-counters-positive", s.WaitForCountersPositive()).
			Step("select-model", s.SelectModel()).
			Step("ask-question", s.AskQuestion("Summarize the sample documents.")).
			Step("wait-for-answer", s.WaitForAnswer()).
			SoftStep("open-api-docs", s.OpenAPIDocs()).
			SoftStep("logout", s.Logout()), nil

	default:
		return nil, fmt.Errorf("unknown journey %q (known: smoke, index-lifecycle, qa, models, full)", name)
	}
}
