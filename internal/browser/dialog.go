// File: internal/browser/dialog.go
// Description: Process-wide dialog auto-accept for a session. Clearing the
// index raises a blocking confirm() that would stall every subsequent
// await; the handler answers it deterministically and logs the message.

package browser

import (
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// AutoAcceptDialogs installs a standing CDP listener that accepts every
// JavaScript dialog (alert/confirm/prompt) raised by this session's page.
// The registration is idempotent: a second call does not install a second
// listener, so one prompt never receives two answers. The returned release
// deactivates the handler; the listener itself lives until the session's
// context ends.
func (s *Session) AutoAcceptDialogs() (func(), error) {
	s.dialogMu.Lock()
	defer s.dialogMu.Unlock()

	s.dialogActive = true
	if !s.dialogInstalled {
		s.dialogInstalled = true
		chromedp.ListenTarget(s.taskCtx, func(ev any) {
			opening, ok := ev.(*page.EventJavascriptDialogOpening)
			if !ok {
				return
			}
			s.dialogMu.Lock()
			active := s.dialogActive
			s.dialogMu.Unlock()
			if !active {
				return
			}
			s.logger.Info("Auto-accepting dialog.",
				zap.String("type", string(opening.Type)),
				zap.String("message", opening.Message))
			// Answer from a separate goroutine: the listener runs on the
			// CDP event loop and HandleJavaScriptDialog round-trips on it.
			go func() {
				if err := chromedp.Run(s.taskCtx,
					page.HandleJavaScriptDialog(true),
				); err != nil && s.taskCtx.Err() == nil {
					s.logger.Warn("Failed to accept dialog.", zap.Error(err))
				}
			}()
		})
	}

	release := func() {
		s.dialogMu.Lock()
		s.dialogActive = false
		s.dialogMu.Unlock()
	}
	return release, nil
}
