// File: internal/selector/chain.go
// Description: Priority-ordered selector resolution. Several targets in the
// document assistant UI (status banners, dynamically labelled buttons) have
// no stable identifier across builds, so a logical target degrades
// gracefully through a fallback list instead of failing on the first miss.

package selector

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Oktaliem/ragproof/api/schemas"
)

// Probe is the read-only subset of the session capability the chain needs.
// Satisfied by schemas.SessionContext.
type Probe interface {
	Exists(ctx context.Context, spec schemas.SelectorSpec) (bool, error)
	IsVisible(ctx context.Context, spec schemas.SelectorSpec) (bool, error)
}

// Chain is an ordered list of candidate strategies for one logical target.
// Order encodes preference; the first hit wins. Immutable once constructed.
type Chain struct {
	// Name identifies the logical target in logs ("document counter").
	Name       string
	Candidates []schemas.SelectorSpec
	// PerCandidateTimeout bounds each membership check; zero means the
	// caller's context deadline applies unchanged.
	PerCandidateTimeout time.Duration
}

// NewChain builds a chain for a named logical target.
func NewChain(name string, candidates ...schemas.SelectorSpec) Chain {
	return Chain{Name: name, Candidates: candidates}
}

// Resolve walks the candidates in order and returns the first whose target
// is currently present, and visible when visibilityRequired is set. It
// short-circuits on the first hit and never aggregates matches. A full miss
// returns found=false, not an error, so callers can implement soft-fail
// behavior for optional UI elements. The probe is read-only; resolving has
// no side effects on the page.
func (c Chain) Resolve(ctx context.Context, probe Probe, visibilityRequired bool, logger *zap.Logger) (schemas.SelectorSpec, bool) {
	for i, spec := range c.Candidates {
		if ctx.Err() != nil {
			return schemas.SelectorSpec{}, false
		}
		checkCtx := ctx
		var cancel context.CancelFunc
		if c.PerCandidateTimeout > 0 {
			checkCtx, cancel = context.WithTimeout(ctx, c.PerCandidateTimeout)
		}
		hit := c.matches(checkCtx, probe, spec, visibilityRequired)
		if cancel != nil {
			cancel()
		}
		if hit {
			if logger != nil && i > 0 {
				// A fallback firing usually means the markup changed.
				logger.Debug("Selector resolved via fallback candidate.",
					zap.String("target", c.Name),
					zap.Int("candidate", i),
					zap.String("spec", spec.String()))
			}
			return spec, true
		}
	}
	if logger != nil {
		logger.Debug("No selector candidate matched.",
			zap.String("target", c.Name),
			zap.Int("candidates", len(c.Candidates)))
	}
	return schemas.SelectorSpec{}, false
}

// matches treats probe errors as a miss: an unreadable candidate is
// indistinguishable from an absent one for resolution purposes.
func (c Chain) matches(ctx context.Context, probe Probe, spec schemas.SelectorSpec, visibilityRequired bool) bool {
	if visibilityRequired {
		visible, err := probe.IsVisible(ctx, spec)
		return err == nil && visible
	}
	exists, err := probe.Exists(ctx, spec)
	return err == nil && exists
}
