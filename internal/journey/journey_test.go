// File: internal/journey/journey_test.go
package journey

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Oktaliem/ragproof/api/schemas"
	"github.com/Oktaliem/ragproof/internal/mocks"
)

func newTestState(t *testing.T) (*State, *mocks.FakeFactory) {
	t.Helper()
	factory := &mocks.FakeFactory{}
	return NewState(factory, zaptest.NewLogger(t)), factory
}

func TestRunAllStepsPass(t *testing.T) {
	st, _ := newTestState(t)
	var trace []string
	j := New("smoke", "http://localhost:8000", zaptest.NewLogger(t)).
		Step("first", func(ctx context.Context, st *State) error {
			trace = append(trace, "first")
			return nil
		}).
		Step("second", func(ctx context.Context, st *State) error {
			trace = append(trace, "second")
			return nil
		})

	report := j.Run(context.Background(), st)

	require.True(t, report.Succeeded)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, []string{"first", "second"}, trace)

	want := []schemas.StepOutcome{
		{Name: "first", Status: schemas.StepPassed},
		{Name: "second", Status: schemas.StepPassed},
	}
	ignoreTiming := cmpopts.IgnoreFields(schemas.StepOutcome{}, "Elapsed")
	if diff := cmp.Diff(want, report.Steps, ignoreTiming); diff != "" {
		t.Errorf("step outcomes mismatch (-want +got):\n%s", diff)
	}
}

func TestRunHardFailureSkipsRemainingSteps(t *testing.T) {
	st, _ := newTestState(t)
	ran := map[string]bool{}
	mark := func(name string, err error) StepFunc {
		return func(ctx context.Context, st *State) error {
			ran[name] = true
			return err
		}
	}

	report := New("lifecycle", "t", zaptest.NewLogger(t)).
		Step("setup", mark("setup", nil)).
		Step("breaks", mark("breaks", errors.New("login form never appeared"))).
		Step("never-runs", mark("never-runs", nil)).
		SoftStep("also-never-runs", mark("also-never-runs", nil)).
		Run(context.Background(), st)

	require.False(t, report.Succeeded)
	assert.False(t, ran["never-runs"])
	assert.False(t, ran["also-never-runs"])

	require.Len(t, report.Steps, 4)
	assert.Equal(t, schemas.StepPassed, report.Steps[0].Status)
	assert.Equal(t, schemas.StepFailed, report.Steps[1].Status)
	assert.Equal(t, "login form never appeared", report.Steps[1].Reason)
	assert.Equal(t, schemas.StepSkipped, report.Steps[2].Status)
	assert.Equal(t, schemas.StepSkipped, report.Steps[3].Status)
}

func TestRunSoftFailureContinues(t *testing.T) {
	st, _ := newTestState(t)
	ranAfter := false

	report := New("qa", "t", zaptest.NewLogger(t)).
		SoftStep("banner-check", func(ctx context.Context, st *State) error {
			return errors.New("status banner missing")
		}).
		Step("after", func(ctx context.Context, st *State) error {
			ranAfter = true
			return nil
		}).
		Run(context.Background(), st)

	require.True(t, report.Succeeded, "a soft failure never fails the journey")
	assert.True(t, ranAfter)
	assert.Equal(t, schemas.StepSoftFailed, report.Steps[0].Status)
	assert.Equal(t, "status banner missing", report.Steps[0].Reason)
	assert.Equal(t, schemas.StepPassed, report.Steps[1].Status)
}

func TestRunClosesSessionsOnFailure(t *testing.T) {
	st, factory := newTestState(t)

	report := New("teardown", "t", zaptest.NewLogger(t)).
		Step("open", func(ctx context.Context, st *State) error {
			_, err := st.OpenSession(ctx, MainSession)
			return err
		}).
		Step("open-docs", func(ctx context.Context, st *State) error {
			_, err := st.OpenSession(ctx, "docs")
			return err
		}).
		Step("explode", func(ctx context.Context, st *State) error {
			return errors.New("boom")
		}).
		Run(context.Background(), st)

	require.False(t, report.Succeeded)
	require.Len(t, factory.Opened, 2)
	for _, s := range factory.Opened {
		fake := s.(*mocks.FakeSession)
		assert.Equal(t, 1, fake.Closed, "session %s must be closed after the run", fake.Name)
	}
	assert.Nil(t, st.Foreground())
}

func TestStateSessionRegistry(t *testing.T) {
	st, _ := newTestState(t)
	ctx := context.Background()

	main, err := st.OpenSession(ctx, MainSession)
	require.NoError(t, err)
	assert.Same(t, main, st.Foreground())

	docs, err := st.OpenSession(ctx, "docs")
	require.NoError(t, err)
	assert.Same(t, docs, st.Foreground(), "a freshly opened session takes the foreground")

	_, err = st.OpenSession(ctx, "docs")
	assert.Error(t, err, "duplicate names are rejected")

	require.NoError(t, st.BringToFront(ctx, MainSession))
	assert.Same(t, main, st.Foreground())
	assert.Equal(t, 1, main.(*mocks.FakeSession).Fronted, "switching the pointer raises the tab")

	assert.Error(t, st.BringToFront(ctx, "nope"))

	got, ok := st.Session("docs")
	require.True(t, ok)
	assert.Same(t, docs, got)
}

func TestStateScratchValues(t *testing.T) {
	st, _ := newTestState(t)

	_, ok := st.Get("token")
	assert.False(t, ok)

	st.Put("token", "abc.def.ghi")
	v, ok := st.Get("token")
	require.True(t, ok)
	assert.Equal(t, "abc.def.ghi", v)
}

func TestCloseAllTearsDownNewestFirst(t *testing.T) {
	var closed []string
	factory := &mocks.FakeFactory{}
	st := NewState(factory, zaptest.NewLogger(t))
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		s, err := st.OpenSession(ctx, name)
		require.NoError(t, err)
		fake := s.(*mocks.FakeSession)
		fake.Name = name
		fake.OnClose = func() { closed = append(closed, fake.Name) }
	}

	st.CloseAll(ctx)

	assert.Equal(t, []string{"c", "b", "a"}, closed)
	assert.Nil(t, st.Foreground())

	// Closing an already empty state is a no-op.
	st.CloseAll(ctx)
	assert.Len(t, closed, 3)
}
