// File: internal/browser/manager.go
package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Oktaliem/ragproof/api/schemas"
	"github.com/Oktaliem/ragproof/internal/config"
)

const shutdownGracePeriod = 15 * time.Second

// Manager owns the browser process and creates sessions (tabs) within it.
// It implements schemas.SessionFactory. Launching is deferred until the
// first session is requested.
type Manager struct {
	logger *zap.Logger
	cfg    config.BrowserConfig

	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	mu       sync.RWMutex
	sessions map[string]*Session
	order    []string

	initOnce sync.Once
	initErr  error
}

var _ schemas.SessionFactory = (*Manager)(nil)

// NewManager creates a browser manager bound to parentCtx for its process
// lifetime.
func NewManager(parentCtx context.Context, cfg config.BrowserConfig, logger *zap.Logger) *Manager {
	m := &Manager{
		logger:   logger.Named("browser_manager"),
		cfg:      cfg,
		sessions: make(map[string]*Session),
	}
	m.allocCtx = parentCtx
	return m
}

// initialize launches Chrome via the exec allocator plus one browser-level
// context that owns the process.
func (m *Manager) initialize() error {
	m.initOnce.Do(func() {
		m.logger.Info("Launching browser.", zap.Bool("headless", m.cfg.Headless))

		opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
		if !m.cfg.Headless {
			opts = append(opts, chromedp.Flag("headless", false))
		}
		// Container-friendly defaults; the harness usually runs in CI.
		opts = append(opts,
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)
		if m.cfg.IgnoreTLSErrors {
			opts = append(opts, chromedp.Flag("ignore-certificate-errors", true))
		}
		for _, arg := range m.cfg.Args {
			opts = append(opts, chromedp.Flag(arg, true))
		}

		allocCtx, allocCancel := chromedp.NewExecAllocator(m.allocCtx, opts...)
		browserCtx, browserCancel := chromedp.NewContext(allocCtx)

		// Force the browser process to start now so a missing Chrome
		// binary fails here rather than inside the first journey step.
		if err := chromedp.Run(browserCtx); err != nil {
			browserCancel()
			allocCancel()
			m.initErr = fmt.Errorf("failed to launch browser: %w", err)
			return
		}

		m.allocCtx = allocCtx
		m.allocCancel = allocCancel
		m.browserCtx = browserCtx
		m.browserCancel = browserCancel
	})
	return m.initErr
}

// NewSession opens a new tab and returns its session handle.
func (m *Manager) NewSession(ctx context.Context) (schemas.SessionContext, error) {
	if err := m.initialize(); err != nil {
		return nil, err
	}

	taskCtx, taskCancel := chromedp.NewContext(m.browserCtx)
	// Materialize the tab so it is addressable before the caller uses it.
	// The tab lives on the browser context chain; the caller's ctx only
	// bounds the creation itself.
	openCtx, openCancel := CombineContext(taskCtx, ctx)
	err := chromedp.Run(openCtx)
	openCancel()
	if err != nil {
		taskCancel()
		return nil, fmt.Errorf("failed to open tab: %w", err)
	}

	s := newSession(taskCtx, taskCancel, m.cfg, m.logger)
	s.SetOnClose(func() { m.forget(s.id) })

	m.mu.Lock()
	m.sessions[s.id] = s
	m.order = append(m.order, s.id)
	m.mu.Unlock()

	m.logger.Info("Session opened.", zap.String("session_id", s.id[:8]))
	return s, nil
}

// Sessions lists the open sessions in creation order.
func (m *Manager) Sessions() []schemas.SessionContext {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]schemas.SessionContext, 0, len(m.sessions))
	for _, id := range m.order {
		if s, ok := m.sessions[id]; ok {
			out = append(out, s)
		}
	}
	return out
}

func (m *Manager) forget(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	for i, known := range m.order {
		if known == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Shutdown closes all open sessions and then the browser process itself.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.RLock()
	open := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		open = append(open, s)
	}
	m.mu.RUnlock()

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownGracePeriod)
	defer cancel()

	g, gctx := errgroup.WithContext(shutdownCtx)
	for _, s := range open {
		g.Go(func() error { return s.Close(gctx) })
	}
	err := g.Wait()

	if m.browserCancel != nil {
		m.browserCancel()
	}
	if m.allocCancel != nil {
		m.allocCancel()
	}
	m.logger.Info("Browser manager shut down.", zap.Int("sessions_closed", len(open)))
	return err
}
