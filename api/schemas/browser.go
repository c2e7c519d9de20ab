package schemas

import "context"

// SessionContext is the browser-automation capability the harness drives.
// The concrete implementation lives in internal/browser (chromedp); every
// component above it consumes this interface so the resilience layer and
// the step catalog can be exercised against fakes.
type SessionContext interface {
	// ID returns the stable identifier of this session (one tab).
	ID() string

	// Navigate loads the given URL and waits for the load event.
	Navigate(ctx context.Context, url string) error
	// Reload re-navigates to the current document, forcing the server to
	// re-emit its state. Used by pollers against endpoints that never push.
	Reload(ctx context.Context) error
	// CurrentURL reports the document location after any redirects.
	CurrentURL(ctx context.Context) (string, error)

	// Exists reports whether at least one node matches the candidate.
	// A miss is a normal outcome, not an error.
	Exists(ctx context.Context, spec SelectorSpec) (bool, error)
	// IsVisible reports whether a matching node is currently rendered.
	IsVisible(ctx context.Context, spec SelectorSpec) (bool, error)
	// TextContent returns the trimmed inner text of the first match.
	TextContent(ctx context.Context, spec SelectorSpec) (string, error)

	Click(ctx context.Context, spec SelectorSpec) error
	Fill(ctx context.Context, spec SelectorSpec, value string) error
	// SelectOption picks an option of a <select> control by value.
	SelectOption(ctx context.Context, spec SelectorSpec, value string) error
	// SetFiles attaches local files to an <input type="file"> control.
	SetFiles(ctx context.Context, spec SelectorSpec, paths []string) error

	// Evaluate runs a JavaScript expression in the page and unmarshals the
	// result into out (may be nil to discard).
	Evaluate(ctx context.Context, expr string, out any) error

	// AutoAcceptDialogs installs a standing handler that accepts every
	// JavaScript dialog raised by the page for the lifetime of the session.
	// Registering twice is a no-op; the returned release detaches the
	// handler early.
	AutoAcceptDialogs() (release func(), err error)

	// BringToFront makes this session's tab the foreground page.
	BringToFront(ctx context.Context) error

	// Close tears the tab down. Safe to call more than once.
	Close(ctx context.Context) error
}

// SessionFactory opens additional sessions (tabs) within one browser.
// Implemented by the browser Manager; consumed by journeys that need a
// secondary surface such as the API documentation page.
type SessionFactory interface {
	NewSession(ctx context.Context) (SessionContext, error)
	// Sessions lists the currently open sessions in creation order.
	Sessions() []SessionContext
}
