// File: internal/mocks/mocks.go
// Description: Scripted fakes for the browser capability interfaces. A
// FakeSession models one tab as maps of selector state that tests mutate
// between steps, so step and journey logic can be exercised without a
// browser process.
package mocks

import (
	"context"
	"fmt"

	"github.com/Oktaliem/ragproof/api/schemas"
	"github.com/Oktaliem/ragproof/internal/resilience"
)

// FakeSession implements schemas.SessionContext over in-memory page state.
// Selector maps are keyed by SelectorSpec.Value ("name=value" for attribute
// selectors). Hook funcs, when set, run before the default behavior and may
// mutate the fake to simulate page transitions.
type FakeSession struct {
	Name string
	URL  string

	Present map[string]bool
	Visible map[string]bool
	Texts   map[string]string

	Fills    map[string]string
	Clicks   []string
	Selected map[string]string
	Files    map[string][]string

	OnNavigate func(url string)
	OnReload   func()
	OnClick    func(value string) error
	OnSelect   func(specValue, option string) error
	// OnTextContent runs before each text read, so tests can advance
	// scripted page state between poll attempts.
	OnTextContent func(value string)
	OnClose       func()
	EvaluateFn    func(expr string, out any) error

	Reloads        int
	Fronted        int
	Closed         int
	DialogInstalls int
	DialogReleases int
	DialogErr      error

	NavErr   error
	CloseErr error
}

var (
	_ schemas.SessionContext = (*FakeSession)(nil)
	_ schemas.SessionFactory = (*FakeFactory)(nil)
)

// NewFakeSession returns a fake with all state maps initialized.
func NewFakeSession(name string) *FakeSession {
	return &FakeSession{
		Name:     name,
		Present:  make(map[string]bool),
		Visible:  make(map[string]bool),
		Texts:    make(map[string]string),
		Fills:    make(map[string]string),
		Selected: make(map[string]string),
		Files:    make(map[string][]string),
	}
}

// Show marks a selector value both present and visible with the given text.
func (f *FakeSession) Show(value, text string) {
	f.Present[value] = true
	f.Visible[value] = true
	f.Texts[value] = text
}

// Hide removes a selector value from the page.
func (f *FakeSession) Hide(value string) {
	delete(f.Present, value)
	delete(f.Visible, value)
	delete(f.Texts, value)
}

func (f *FakeSession) ID() string { return f.Name }

func (f *FakeSession) Navigate(_ context.Context, url string) error {
	if f.NavErr != nil {
		return f.NavErr
	}
	f.URL = url
	if f.OnNavigate != nil {
		f.OnNavigate(url)
	}
	return nil
}

func (f *FakeSession) Reload(_ context.Context) error {
	f.Reloads++
	if f.OnReload != nil {
		f.OnReload()
	}
	return nil
}

func (f *FakeSession) CurrentURL(_ context.Context) (string, error) { return f.URL, nil }

func (f *FakeSession) Exists(_ context.Context, spec schemas.SelectorSpec) (bool, error) {
	return f.Present[spec.Value], nil
}

func (f *FakeSession) IsVisible(_ context.Context, spec schemas.SelectorSpec) (bool, error) {
	return f.Visible[spec.Value], nil
}

func (f *FakeSession) TextContent(_ context.Context, spec schemas.SelectorSpec) (string, error) {
	if f.OnTextContent != nil {
		f.OnTextContent(spec.Value)
	}
	text, ok := f.Texts[spec.Value]
	if !ok {
		return "", fmt.Errorf("%w: %s", resilience.ErrTargetNotFound, spec.Value)
	}
	return text, nil
}

func (f *FakeSession) Click(_ context.Context, spec schemas.SelectorSpec) error {
	if f.OnClick != nil {
		if err := f.OnClick(spec.Value); err != nil {
			return err
		}
	}
	f.Clicks = append(f.Clicks, spec.Value)
	return nil
}

func (f *FakeSession) Fill(_ context.Context, spec schemas.SelectorSpec, value string) error {
	f.Fills[spec.Value] = value
	return nil
}

func (f *FakeSession) SelectOption(_ context.Context, spec schemas.SelectorSpec, value string) error {
	if f.OnSelect != nil {
		if err := f.OnSelect(spec.Value, value); err != nil {
			return err
		}
	}
	f.Selected[spec.Value] = value
	return nil
}

func (f *FakeSession) SetFiles(_ context.Context, spec schemas.SelectorSpec, paths []string) error {
	f.Files[spec.Value] = paths
	return nil
}

func (f *FakeSession) Evaluate(_ context.Context, expr string, out any) error {
	if f.EvaluateFn != nil {
		return f.EvaluateFn(expr, out)
	}
	return nil
}

func (f *FakeSession) AutoAcceptDialogs() (func(), error) {
	if f.DialogErr != nil {
		return nil, f.DialogErr
	}
	f.DialogInstalls++
	return func() { f.DialogReleases++ }, nil
}

func (f *FakeSession) BringToFront(_ context.Context) error {
	f.Fronted++
	return nil
}

func (f *FakeSession) Close(_ context.Context) error {
	f.Closed++
	if f.OnClose != nil {
		f.OnClose()
	}
	return f.CloseErr
}

// FakeFactory implements schemas.SessionFactory. Without a NewFn it hands
// out fresh empty FakeSessions named fake-1, fake-2, ...
type FakeFactory struct {
	NewFn  func(ctx context.Context) (schemas.SessionContext, error)
	Opened []schemas.SessionContext
}

func (f *FakeFactory) NewSession(ctx context.Context) (schemas.SessionContext, error) {
	var (
		s   schemas.SessionContext
		err error
	)
	if f.NewFn != nil {
		s, err = f.NewFn(ctx)
	} else {
		s = NewFakeSession(fmt.Sprintf("fake-%d", len(f.Opened)+1))
	}
	if err != nil {
		return nil, err
	}
	f.Opened = append(f.Opened, s)
	return s, nil
}

func (f *FakeFactory) Sessions() []schemas.SessionContext { return f.Opened }
