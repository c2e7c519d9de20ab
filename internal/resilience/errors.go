// File: internal/resilience/errors.go
package resilience

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors for the harness failure taxonomy. Callers classify with
// errors.Is; everything outside this set is treated as unrecoverable and
// propagates to the journey layer immediately.
var (
	// ErrNotReady marks the environment as unreachable at probe time.
	ErrNotReady = errors.New("environment not ready")
	// ErrNotYetConsistent marks an observed value that has not reached the
	// expected state. Retried by polling.
	ErrNotYetConsistent = errors.New("value not yet consistent")
	// ErrTargetNotFound marks a selector chain miss. Soft for callers that
	// tolerate optional UI elements, hard for callers that require one.
	ErrTargetNotFound = errors.New("no selector candidate matched")
)

// ExhaustedError reports a probe, poll, or action whose attempt budget ran
// out. It always carries attempt count, elapsed time, and the last observed
// value or error, never a bare boolean.
type ExhaustedError struct {
	Op           string
	Attempts     int
	Elapsed      time.Duration
	LastObserved string
	LastErr      error
}

func (e *ExhaustedError) Error() string {
	msg := fmt.Sprintf("%s: budget exhausted after %d attempts in %s", e.Op, e.Attempts, e.Elapsed.Round(time.Millisecond))
	if e.LastObserved != "" {
		msg += fmt.Sprintf(" (last observed: %q)", e.LastObserved)
	}
	if e.LastErr != nil {
		msg += fmt.Sprintf(": %v", e.LastErr)
	}
	return msg
}

func (e *ExhaustedError) Unwrap() error { return e.LastErr }

// transientFragments are substrings of error messages raised by the CDP
// layer for faults that a reload-and-reacquire cycle is known to clear.
var transientFragments = []string{
	"context canceled",
	"execution context was destroyed",
	"execution context destroyed",
	"cannot find context with specified id",
	"node with given id does not belong to the document",
	"could not find node",
	"node not visible",
	"detached from document",
	"page load timed out",
	"websocket url timeout",
}

// IsRecoverable reports whether err belongs to the transient fault class
// eligible for reset-and-retry: destroyed execution contexts, navigation
// timeouts, and stale node handles. Context cancellation from the caller's
// own deadline is recoverable only when the parent context is still live,
// which the executor checks separately.
func IsRecoverable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTargetNotFound) || errors.Is(err, ErrNotYetConsistent) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, frag := range transientFragments {
		if strings.Contains(msg, frag) {
			return true
		}
	}
	return false
}
