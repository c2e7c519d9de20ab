// File: internal/ragapp/steps.go
// Description: The composable step catalog for the document assistant.
// Each method returns a journey.StepFunc; scenarios are assembled by
// listing steps in order, never by duplicating their internals.

package ragapp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/Oktaliem/ragproof/api/schemas"
	"github.com/Oktaliem/ragproof/internal/config"
	"github.com/Oktaliem/ragproof/internal/journey"
	"github.com/Oktaliem/ragproof/internal/resilience"
	"github.com/Oktaliem/ragproof/internal/selector"
)

// State keys shared between steps.
const (
	tokenKey = "auth_token"
)

// DocsSession is the registry name of the API documentation tab.
const DocsSession = "api-docs"

// Steps builds journey steps bound to one target deployment.
type Steps struct {
	cfg      *config.Config
	logger   *zap.Logger
	prober   *resilience.Prober
	poller   *resilience.Poller
	executor *resilience.Executor
}

// NewSteps wires the step catalog with the resilience primitives.
func NewSteps(cfg *config.Config, logger *zap.Logger) *Steps {
	log := logger.Named("ragapp")
	return &Steps{
		cfg:      cfg,
		logger:   log,
		prober:   resilience.NewProber(log),
		poller:   resilience.NewPoller(log),
		executor: resilience.NewExecutor(log),
	}
}

// foreground returns the session the current step drives.
func (s *Steps) foreground(st *journey.State) (schemas.SessionContext, error) {
	fg := st.Foreground()
	if fg == nil {
		return nil, fmt.Errorf("no session open; the journey must start with WaitForReady")
	}
	return fg, nil
}

// WaitForReady opens the main session and probes the health endpoint with
// backoff until the target reports healthy. Standing up the stack takes
// unpredictable time; a refused connection here is a retryable outcome.
// Budget exhaustion is fatal: nothing downstream is meaningful against a
// non-ready environment.
func (s *Steps) WaitForReady() journey.StepFunc {
	return func(ctx context.Context, st *journey.State) error {
		main, err := st.OpenSession(ctx, journey.MainSession)
		if err != nil {
			return err
		}
		// Dialogs are auto-accepted for the whole session lifetime; the
		// clear-index confirm would otherwise stall every later await.
		if _, err := main.AutoAcceptDialogs(); err != nil {
			return fmt.Errorf("register dialog handler: %w", err)
		}

		healthURL := s.cfg.Target.URL(s.cfg.Target.HealthPath)
		outcome := s.prober.WaitUntilReady(ctx, func(ctx context.Context) error {
			if err := main.Navigate(ctx, healthURL); err != nil {
				return err
			}
			body, err := main.TextContent(ctx, schemas.CSS("body"))
			if err != nil {
				return err
			}
			if !strings.Contains(strings.ToLower(body), "healthy") {
				return fmt.Errorf("%w: health endpoint returned %q", resilience.ErrNotReady, truncate(body, 120))
			}
			return nil
		}, s.cfg.Readiness)

		if !outcome.Succeeded {
			return outcome.LastError
		}
		return nil
	}
}

// Login drives the login form and captures the bearer token the UI stores.
func (s *Steps) Login() journey.StepFunc {
	return func(ctx context.Context, st *journey.State) error {
		main, err := s.foreground(st)
		if err != nil {
			return err
		}
		if err := main.Navigate(ctx, s.cfg.Target.URL("/login")); err != nil {
			return err
		}

		outcome := s.executor.ExecuteWithRecovery(ctx, "login", func(ctx context.Context) error {
			user, found := loginUsername.Resolve(ctx, main, true, s.logger)
			if !found {
				return fmt.Errorf("%w: login username", resilience.ErrTargetNotFound)
			}
			pass, found := loginPassword.Resolve(ctx, main, true, s.logger)
			if !found {
				return fmt.Errorf("%w: login password", resilience.ErrTargetNotFound)
			}
			submit, found := loginSubmit.Resolve(ctx, main, true, s.logger)
			if !found {
				return fmt.Errorf("%w: login submit", resilience.ErrTargetNotFound)
			}

			if err := main.Fill(ctx, user, s.cfg.Target.Username); err != nil {
				return err
			}
			if err := main.Fill(ctx, pass, s.cfg.Target.Password); err != nil {
				return err
			}
			if err := main.Click(ctx, submit); err != nil {
				return err
			}

			// The app redirects off /login once the token is accepted.
			result := resilience.PollUntil(ctx, s.poller,
				func(ctx context.Context) (string, error) { return main.CurrentURL(ctx) },
				func(loc string) bool { return !strings.Contains(loc, "/login") },
				resilience.PollConfig{MaxAttempts: 10, Interval: 500 * time.Millisecond},
				nil,
			)
			if !result.Outcome.Succeeded {
				return fmt.Errorf("still on login page: %w", result.Outcome.LastError)
			}
			return nil
		}, nil, s.reset(main), s.cfg.Poll.ActionRetries)

		if !outcome.Succeeded {
			return fmt.Errorf("login failed: %s", outcome.FailureReason)
		}

		var token string
		if err := main.Evaluate(ctx,
			`window.localStorage.getItem('access_token') || window.localStorage.getItem('token') || ''`,
			&token); err != nil {
			return fmt.Errorf("read stored token: %w", err)
		}
		if token != "" {
			st.Put(tokenKey, token)
		}
		return nil
	}
}

// VerifyAuthToken parses the captured bearer token without verifying the
// signature (the harness never holds the server secret) and checks that it
// is a well-formed JWT that has not already expired.
func (s *Steps) VerifyAuthToken() journey.StepFunc {
	return func(ctx context.Context, st *journey.State) error {
		raw, ok := st.Get(tokenKey)
		if !ok || raw == "" {
			return fmt.Errorf("no auth token captured; did Login run?")
		}

		claims := jwt.MapClaims{}
		if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
			return fmt.Errorf("stored token is not a valid JWT: %w", err)
		}
		exp, err := claims.GetExpirationTime()
		if err != nil {
			return fmt.Errorf("token has no readable exp claim: %w", err)
		}
		if exp != nil && exp.Before(time.Now()) {
			return fmt.Errorf("token already expired at %s", exp.Time)
		}
		sub, _ := claims.GetSubject()
		s.logger.Info("Auth token verified.", zap.String("subject", sub))
		return nil
	}
}

// NavigateHome loads the chat UI root.
func (s *Steps) NavigateHome() journey.StepFunc {
	return func(ctx context.Context, st *journey.State) error {
		main, err := s.foreground(st)
		if err != nil {
			return err
		}
		return main.Navigate(ctx, s.cfg.Target.URL("/"))
	}
}

// Logout clicks the logout control. Usually composed as a soft step: a
// missing logout button should not fail an otherwise green run.
func (s *Steps) Logout() journey.StepFunc {
	return func(ctx context.Context, st *journey.State) error {
		main, err := s.foreground(st)
		if err != nil {
			return err
		}
		spec, found := logoutButton.Resolve(ctx, main, true, s.logger)
		if !found {
			return fmt.Errorf("%w: logout button", resilience.ErrTargetNotFound)
		}
		return main.Click(ctx, spec)
	}
}

// OpenAPIDocs opens the documentation surface in a second tab, verifies it
// is gated by authentication state, and returns focus to the main tab.
// Exactly one session is foregrounded at a time.
func (s *Steps) OpenAPIDocs() journey.StepFunc {
	return func(ctx context.Context, st *journey.State) error {
		docs, err := st.OpenSession(ctx, DocsSession)
		if err != nil {
			return err
		}
		defer func() {
			// The docs check must not leave the foreground pointer off the
			// main tab for later steps.
			if err := st.BringToFront(ctx, journey.MainSession); err != nil {
				s.logger.Warn("Failed to refocus main session.", zap.Error(err))
			}
		}()

		if err := docs.Navigate(ctx, s.cfg.Target.URL("/api-docs")); err != nil {
			return err
		}
		loc, err := docs.CurrentURL(ctx)
		if err != nil {
			return err
		}
		// A fresh tab has no stored token, so the gate must bounce it to
		// the login page.
		if !strings.Contains(loc, "/login") {
			body, _ := docs.TextContent(ctx, schemas.CSS("body"))
			return fmt.Errorf("api docs reachable without authentication (at %s): %s", loc, truncate(body, 80))
		}
		s.logger.Info("API docs correctly gated by authentication.", zap.String("redirected_to", loc))
		return nil
	}
}

// reset builds the environment reset used between recovery attempts:
// reload the page so selectors are reacquired against fresh markup.
func (s *Steps) reset(session schemas.SessionContext) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return session.Reload(ctx)
	}
}

// resolveRequired resolves a chain or fails hard with the taxonomy error.
func (s *Steps) resolveRequired(ctx context.Context, session schemas.SessionContext, chain selector.Chain) (schemas.SelectorSpec, error) {
	spec, found := chain.Resolve(ctx, session, true, s.logger)
	if !found {
		return schemas.SelectorSpec{}, fmt.Errorf("%w: %s", resilience.ErrTargetNotFound, chain.Name)
	}
	return spec, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
