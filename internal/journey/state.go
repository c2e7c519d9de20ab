// File: internal/journey/state.go
package journey

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Oktaliem/ragproof/api/schemas"
)

// State is the shared context a journey threads through its steps. It keeps
// a registry of named sessions (browser tabs) with an explicit foreground
// pointer, plus a scratch area for values one step captures for a later one
// (e.g. the bearer token the login step reads back).
//
// Steps run strictly sequentially, so State needs no locking: exactly one
// step owns it at any moment.
type State struct {
	factory    schemas.SessionFactory
	logger     *zap.Logger
	sessions   map[string]schemas.SessionContext
	order      []string
	foreground string
	values     map[string]string
}

// MainSession is the registry name of the session a journey opens first.
const MainSession = "main"

// NewState creates an empty state backed by the given session factory.
func NewState(factory schemas.SessionFactory, logger *zap.Logger) *State {
	return &State{
		factory:  factory,
		logger:   logger.Named("state"),
		sessions: make(map[string]schemas.SessionContext),
		values:   make(map[string]string),
	}
}

// OpenSession opens a new tab, registers it under name, and foregrounds it.
func (st *State) OpenSession(ctx context.Context, name string) (schemas.SessionContext, error) {
	if _, exists := st.sessions[name]; exists {
		return nil, fmt.Errorf("session %q already open", name)
	}
	s, err := st.factory.NewSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("open session %q: %w", name, err)
	}
	st.sessions[name] = s
	st.order = append(st.order, name)
	st.foreground = name
	return s, nil
}

// Session returns the named session.
func (st *State) Session(name string) (schemas.SessionContext, bool) {
	s, ok := st.sessions[name]
	return s, ok
}

// Foreground returns the session currently in the foreground, or nil when
// none is open.
func (st *State) Foreground() schemas.SessionContext {
	if st.foreground == "" {
		return nil
	}
	return st.sessions[st.foreground]
}

// BringToFront foregrounds the named session. Only one session is driven at
// a time; switching the pointer also raises the tab in the browser.
func (st *State) BringToFront(ctx context.Context, name string) error {
	s, ok := st.sessions[name]
	if !ok {
		return fmt.Errorf("session %q not open", name)
	}
	if err := s.BringToFront(ctx); err != nil {
		return err
	}
	st.foreground = name
	return nil
}

// Put stores a scratch value for a later step.
func (st *State) Put(key, value string) { st.values[key] = value }

// Get reads a scratch value captured by an earlier step.
func (st *State) Get(key string) (string, bool) {
	v, ok := st.values[key]
	return v, ok
}

// CloseAll tears down every registered session, newest first. Called at
// journey exit, including on failure, so no tab outlives its journey.
func (st *State) CloseAll(ctx context.Context) {
	for i := len(st.order) - 1; i >= 0; i-- {
		name := st.order[i]
		if s, ok := st.sessions[name]; ok {
			if err := s.Close(ctx); err != nil {
				st.logger.Warn("Failed to close session.", zap.String("name", name), zap.Error(err))
			}
			delete(st.sessions, name)
		}
	}
	st.order = nil
	st.foreground = ""
}
