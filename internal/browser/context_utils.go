// File: internal/browser/context_utils.go
package browser

import "context"

// CombineContext derives a context from parentCtx that is additionally
// canceled when secondaryCtx is done. chromedp actions must run on the
// session's own context chain to keep its target values, but still have to
// respect per-operation deadlines; this bridges the two.
func CombineContext(parentCtx, secondaryCtx context.Context) (context.Context, context.CancelFunc) {
	combinedCtx, cancel := context.WithCancel(parentCtx)

	go func() {
		select {
		case <-secondaryCtx.Done():
			cancel()
		case <-combinedCtx.Done():
		}
	}()

	return combinedCtx, cancel
}
