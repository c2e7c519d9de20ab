// File: internal/browser/session.go
package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Oktaliem/ragproof/api/schemas"
	"github.com/Oktaliem/ragproof/internal/config"
	"github.com/Oktaliem/ragproof/internal/resilience"
)

// Session is one live browser tab driven over CDP. It implements
// schemas.SessionContext. A session is owned by exactly one journey step at
// a time; the type is safe for the sequential hand-off that implies but is
// not meant for concurrent step execution.
type Session struct {
	id      string
	taskCtx context.Context
	cancel  context.CancelFunc
	logger  *zap.Logger
	cfg     config.BrowserConfig

	// Dialog auto-accept state. The CDP listener cannot be detached once
	// installed, so releasing the handler just flips the flag.
	dialogMu        sync.Mutex
	dialogInstalled bool
	dialogActive    bool

	onClose   func()
	closeOnce sync.Once
}

var _ schemas.SessionContext = (*Session)(nil)

// newSession wraps an already-created chromedp tab context.
func newSession(taskCtx context.Context, cancel context.CancelFunc, cfg config.BrowserConfig, logger *zap.Logger) *Session {
	id := uuid.New().String()
	return &Session{
		id:      id,
		taskCtx: taskCtx,
		cancel:  cancel,
		cfg:     cfg,
		logger:  logger.Named("session").With(zap.String("session_id", id[:8])),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// run executes chromedp actions on the session's context chain, bounded by
// the operation context and the given timeout.
func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	opCtx, opCancel := CombineContext(s.taskCtx, ctx)
	defer opCancel()
	if timeout > 0 {
		var cancel context.CancelFunc
		opCtx, cancel = context.WithTimeout(opCtx, timeout)
		defer cancel()
	}
	return chromedp.Run(opCtx, actions...)
}

func (s *Session) actionTimeout() time.Duration {
	if s.cfg.ActionTimeout > 0 {
		return s.cfg.ActionTimeout
	}
	return 15 * time.Second
}

func (s *Session) navTimeout() time.Duration {
	if s.cfg.NavigationTimeout > 0 {
		return s.cfg.NavigationTimeout
	}
	return 45 * time.Second
}

// Navigate loads url and waits for the document body to be ready.
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.logger.Debug("Navigating.", zap.String("url", url))
	if err := s.run(ctx, s.navTimeout(),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("navigate to %q: %w", url, err)
	}
	return nil
}

// Reload re-requests the current document. Pollers use this to force the
// server to re-emit eventually-consistent state.
func (s *Session) Reload(ctx context.Context) error {
	if err := s.run(ctx, s.navTimeout(),
		chromedp.Reload(),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	return nil
}

// CurrentURL reports the document location after any redirects.
func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	var loc string
	if err := s.run(ctx, s.actionTimeout(), chromedp.Location(&loc)); err != nil {
		return "", fmt.Errorf("read location: %w", err)
	}
	return loc, nil
}

// Exists reports whether any node matches the candidate. A miss is a
// normal outcome, not an error.
func (s *Session) Exists(ctx context.Context, spec schemas.SelectorSpec) (bool, error) {
	var present bool
	if err := s.run(ctx, s.actionTimeout(), chromedp.Evaluate(existsJS(spec), &present)); err != nil {
		return false, fmt.Errorf("existence check %s: %w", spec, err)
	}
	return present, nil
}

// IsVisible reports whether a matching node is currently rendered.
func (s *Session) IsVisible(ctx context.Context, spec schemas.SelectorSpec) (bool, error) {
	var visible bool
	if err := s.run(ctx, s.actionTimeout(), chromedp.Evaluate(visibleJS(spec), &visible)); err != nil {
		return false, fmt.Errorf("visibility check %s: %w", spec, err)
	}
	return visible, nil
}

// TextContent returns the trimmed inner text of the first match, or
// resilience.ErrTargetNotFound when no node matches.
func (s *Session) TextContent(ctx context.Context, spec schemas.SelectorSpec) (string, error) {
	var text *string
	if err := s.run(ctx, s.actionTimeout(), chromedp.Evaluate(textContentJS(spec), &text)); err != nil {
		return "", fmt.Errorf("read text %s: %w", spec, err)
	}
	if text == nil {
		return "", fmt.Errorf("%w: %s", resilience.ErrTargetNotFound, spec)
	}
	return *text, nil
}

// Click waits for the target to be visible and clicks it.
func (s *Session) Click(ctx context.Context, spec schemas.SelectorSpec) error {
	query, opt := toQuery(spec)
	if err := s.run(ctx, s.actionTimeout(),
		chromedp.WaitVisible(query, opt),
		chromedp.Click(query, opt),
	); err != nil {
		return fmt.Errorf("click %s: %w", spec, err)
	}
	return nil
}

// Fill clears the target control and types value into it.
func (s *Session) Fill(ctx context.Context, spec schemas.SelectorSpec, value string) error {
	query, opt := toQuery(spec)
	if err := s.run(ctx, s.actionTimeout(),
		chromedp.WaitVisible(query, opt),
		chromedp.Clear(query, opt),
		chromedp.SendKeys(query, value, opt),
	); err != nil {
		return fmt.Errorf("fill %s: %w", spec, err)
	}
	return nil
}

// SelectOption picks an option of a <select> control by value and fires the
// input/change events the app's scripts listen for.
func (s *Session) SelectOption(ctx context.Context, spec schemas.SelectorSpec, value string) error {
	v, _ := json.Marshal(value)
	expr := fmt.Sprintf(`(() => {
	const el = %s;
	if (!el) return "missing";
	const match = Array.from(el.options || []).some(o => o.value === %s);
	if (!match) return "no-option";
	el.value = %s;
	el.dispatchEvent(new Event('input', {bubbles: true}));
	el.dispatchEvent(new Event('change', {bubbles: true}));
	return "ok";
})()`, lookupJS(spec), v, v)

	var status string
	if err := s.run(ctx, s.actionTimeout(), chromedp.Evaluate(expr, &status)); err != nil {
		return fmt.Errorf("select %s: %w", spec, err)
	}
	switch status {
	case "ok":
		return nil
	case "missing":
		return fmt.Errorf("%w: %s", resilience.ErrTargetNotFound, spec)
	default:
		return fmt.Errorf("select %s: option %q not present", spec, value)
	}
}

// SetFiles attaches local files to an <input type="file"> control.
func (s *Session) SetFiles(ctx context.Context, spec schemas.SelectorSpec, paths []string) error {
	query, opt := toQuery(spec)
	if err := s.run(ctx, s.actionTimeout(),
		chromedp.WaitReady(query, opt),
		chromedp.SetUploadFiles(query, paths, opt),
	); err != nil {
		return fmt.Errorf("set files %s: %w", spec, err)
	}
	return nil
}

// Evaluate runs a JavaScript expression and unmarshals the result into out.
func (s *Session) Evaluate(ctx context.Context, expr string, out any) error {
	if out == nil {
		var discard any
		out = &discard
	}
	if err := s.run(ctx, s.actionTimeout(), chromedp.Evaluate(expr, out)); err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	return nil
}

// BringToFront makes this tab the foreground page.
func (s *Session) BringToFront(ctx context.Context) error {
	if err := s.run(ctx, s.actionTimeout(), page.BringToFront()); err != nil {
		return fmt.Errorf("bring to front: %w", err)
	}
	return nil
}

// SetOnClose registers a callback invoked once when the session closes.
// The manager uses it to drop the session from its registry.
func (s *Session) SetOnClose(callback func()) {
	s.onClose = callback
}

// Close tears the tab down. Safe to call more than once.
func (s *Session) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.logger.Debug("Closing session.")
		s.cancel()
		if s.onClose != nil {
			s.onClose()
		}
	})
	return nil
}
