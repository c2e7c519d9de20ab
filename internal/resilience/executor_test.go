// File: internal/resilience/executor_test.go
package resilience

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestExecutorRecoversAfterTransientFailures(t *testing.T) {
	e := NewExecutor(zaptest.NewLogger(t))
	attempts, resets := 0, 0

	outcome := e.ExecuteWithRecovery(context.Background(), "flaky click",
		func(ctx context.Context) error {
			attempts++
			if attempts < 3 {
				return errors.New("execution context was destroyed")
			}
			return nil
		},
		nil,
		func(ctx context.Context) error {
			resets++
			return nil
		},
		3)

	require.True(t, outcome.Succeeded)
	assert.Equal(t, 3, outcome.AttemptsUsed)
	assert.True(t, outcome.Recovered)
	assert.Equal(t, 2, resets)
	assert.Empty(t, outcome.FailureReason)
}

func TestExecutorUnrecoverableAbortsImmediately(t *testing.T) {
	e := NewExecutor(zaptest.NewLogger(t))
	resets := 0
	fatal := errors.New("assertion violated: wrong page entirely")

	outcome := e.ExecuteWithRecovery(context.Background(), "strict action",
		func(ctx context.Context) error { return fatal },
		func(err error) bool { return false },
		func(ctx context.Context) error {
			resets++
			return nil
		},
		5)

	require.False(t, outcome.Succeeded)
	assert.Equal(t, 1, outcome.AttemptsUsed)
	assert.False(t, outcome.Recovered)
	assert.Zero(t, resets, "no reset for an unrecoverable error")
	assert.Equal(t, fatal.Error(), outcome.FailureReason)
}

func TestExecutorExhaustionReturnsFailedOutcomeWithoutEscalation(t *testing.T) {
	e := NewExecutor(zaptest.NewLogger(t))
	attempts := 0

	outcome := e.ExecuteWithRecovery(context.Background(), "hopeless action",
		func(ctx context.Context) error {
			attempts++
			return fmt.Errorf("%w: thing", ErrTargetNotFound)
		},
		nil,
		func(ctx context.Context) error { return nil },
		4)

	require.False(t, outcome.Succeeded)
	assert.Equal(t, 4, outcome.AttemptsUsed)
	assert.Equal(t, 4, attempts)
	assert.True(t, outcome.Recovered)
	assert.Contains(t, outcome.FailureReason, "4 attempts")
}

func TestExecutorSucceedsFirstTry(t *testing.T) {
	e := NewExecutor(zaptest.NewLogger(t))

	outcome := e.ExecuteWithRecovery(context.Background(), "easy action",
		func(ctx context.Context) error { return nil },
		nil, nil, 3)

	require.True(t, outcome.Succeeded)
	assert.Equal(t, 1, outcome.AttemptsUsed)
	assert.False(t, outcome.Recovered)
}

func TestExecutorResetFailureStillRetries(t *testing.T) {
	e := NewExecutor(zaptest.NewLogger(t))
	attempts := 0

	outcome := e.ExecuteWithRecovery(context.Background(), "action",
		func(ctx context.Context) error {
			attempts++
			if attempts < 2 {
				return errors.New("page load timed out")
			}
			return nil
		},
		nil,
		func(ctx context.Context) error { return errors.New("reload also failed") },
		3)

	require.True(t, outcome.Succeeded)
	assert.Equal(t, 2, outcome.AttemptsUsed)
}

func TestExecutorStopsWhenCallerContextEnds(t *testing.T) {
	e := NewExecutor(zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	outcome := e.ExecuteWithRecovery(ctx, "canceled action",
		func(ctx context.Context) error {
			attempts++
			cancel()
			return errors.New("execution context was destroyed")
		},
		nil, nil, 10)

	require.False(t, outcome.Succeeded)
	assert.Equal(t, 1, attempts, "a dead caller context ends the loop")
	assert.Contains(t, outcome.FailureReason, context.Canceled.Error())
}

func TestIsRecoverableClassification(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"destroyed context", errors.New("Execution context was destroyed, most likely because of a navigation"), true},
		{"stale node", errors.New("node with given id does not belong to the document"), true},
		{"deadline", context.DeadlineExceeded, true},
		{"wrapped deadline", fmt.Errorf("click: %w", context.DeadlineExceeded), true},
		{"target not found", fmt.Errorf("%w: banner", ErrTargetNotFound), true},
		{"not yet consistent", fmt.Errorf("%w: observed 3", ErrNotYetConsistent), true},
		{"arbitrary failure", errors.New("assertion failed"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsRecoverable(tc.err))
		})
	}
}
