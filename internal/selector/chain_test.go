// File: internal/selector/chain_test.go
package selector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Oktaliem/ragproof/api/schemas"
)

// fakeProbe scripts presence and visibility per selector value and records
// the order candidates were checked in.
type fakeProbe struct {
	present map[string]bool
	visible map[string]bool
	errOn   map[string]error
	checked []string
}

func (f *fakeProbe) Exists(_ context.Context, spec schemas.SelectorSpec) (bool, error) {
	f.checked = append(f.checked, spec.Value)
	if err := f.errOn[spec.Value]; err != nil {
		return false, err
	}
	return f.present[spec.Value], nil
}

func (f *fakeProbe) IsVisible(_ context.Context, spec schemas.SelectorSpec) (bool, error) {
	f.checked = append(f.checked, spec.Value)
	if err := f.errOn[spec.Value]; err != nil {
		return false, err
	}
	return f.visible[spec.Value], nil
}

func TestResolveFirstHitWins(t *testing.T) {
	chain := NewChain("status banner",
		schemas.CSS("#banner"),
		schemas.CSS(".banner"),
		schemas.XPath("//div[@role='status']"),
	)
	probe := &fakeProbe{present: map[string]bool{
		".banner":              true,
		"//div[@role='status']": true,
	}}

	spec, found := chain.Resolve(context.Background(), probe, false, zaptest.NewLogger(t))

	require.True(t, found)
	assert.Equal(t, schemas.CSS(".banner"), spec)
	assert.Equal(t, []string{"#banner", ".banner"}, probe.checked,
		"resolution short-circuits and never reaches later candidates")
}

func TestResolvePrefersFirstCandidateWhenPresent(t *testing.T) {
	chain := NewChain("submit", schemas.CSS("#submit"), schemas.Text("Submit"))
	probe := &fakeProbe{present: map[string]bool{"#submit": true, "Submit": true}}

	spec, found := chain.Resolve(context.Background(), probe, false, nil)

	require.True(t, found)
	assert.Equal(t, schemas.CSS("#submit"), spec)
	assert.Len(t, probe.checked, 1)
}

func TestResolveFullMissIsNotAnError(t *testing.T) {
	chain := NewChain("optional hint", schemas.CSS("#hint"), schemas.CSS(".hint"))
	probe := &fakeProbe{}

	spec, found := chain.Resolve(context.Background(), probe, false, zaptest.NewLogger(t))

	assert.False(t, found)
	assert.Equal(t, schemas.SelectorSpec{}, spec)
	assert.Len(t, probe.checked, 2, "every candidate gets its chance before the miss")
}

func TestResolveVisibilityRequiredSkipsHiddenMatch(t *testing.T) {
	chain := NewChain("ask button", schemas.CSS("#ask"), schemas.CSS("button.ask"))
	probe := &fakeProbe{
		present: map[string]bool{"#ask": true, "button.ask": true},
		visible: map[string]bool{"button.ask": true},
	}

	spec, found := chain.Resolve(context.Background(), probe, true, nil)

	require.True(t, found)
	assert.Equal(t, schemas.CSS("button.ask"), spec, "a present but hidden candidate does not resolve")
}

func TestResolveProbeErrorTreatedAsMiss(t *testing.T) {
	chain := NewChain("counter", schemas.CSS("#count"), schemas.Attr("data-stat", "documents"))
	probe := &fakeProbe{
		present: map[string]bool{"data-stat=documents": true},
		errOn:   map[string]error{"#count": errors.New("execution context was destroyed")},
	}

	spec, found := chain.Resolve(context.Background(), probe, false, nil)

	require.True(t, found)
	assert.Equal(t, schemas.Attr("data-stat", "documents"), spec)
}

func TestResolveEmptyChain(t *testing.T) {
	chain := NewChain("nothing")
	_, found := chain.Resolve(context.Background(), &fakeProbe{}, false, nil)
	assert.False(t, found)
}

func TestResolveStopsOnCanceledContext(t *testing.T) {
	chain := NewChain("target", schemas.CSS("#a"), schemas.CSS("#b"))
	probe := &fakeProbe{present: map[string]bool{"#a": true}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, found := chain.Resolve(ctx, probe, false, nil)

	assert.False(t, found)
	assert.Empty(t, probe.checked)
}

func TestResolvePerCandidateTimeoutDoesNotLeak(t *testing.T) {
	chain := NewChain("target", schemas.CSS("#a"))
	chain.PerCandidateTimeout = 50 * time.Millisecond
	probe := &fakeProbe{present: map[string]bool{"#a": true}}

	_, found := chain.Resolve(context.Background(), probe, false, nil)
	assert.True(t, found)
}
