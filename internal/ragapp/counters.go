// File: internal/ragapp/counters.go
package ragapp

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/Oktaliem/ragproof/api/schemas"
	"github.com/Oktaliem/ragproof/internal/resilience"
	"github.com/Oktaliem/ragproof/internal/selector"
)

// parseCounter extracts the integer from a counter rendering such as
// "Documents: 12", "12 chunks", or a bare "12". The markup drifts between
// builds; the number is the only stable part.
func parseCounter(text string) (int, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsDigit(r)
	})
	if len(fields) == 0 {
		return 0, fmt.Errorf("no number in counter text %q", text)
	}
	// The label never contains digits, so the first numeric run is the
	// counter value.
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, fmt.Errorf("counter text %q: %w", text, err)
	}
	return n, nil
}

// readCounter resolves the chain on the session and parses the value. A
// chain miss surfaces as ErrTargetNotFound, which pollers treat as "not
// yet rendered".
func readCounter(ctx context.Context, s schemas.SessionContext, chain selector.Chain, logger *zap.Logger) (int, error) {
	spec, found := chain.Resolve(ctx, s, true, logger)
	if !found {
		return 0, fmt.Errorf("%w: %s", resilience.ErrTargetNotFound, chain.Name)
	}
	text, err := s.TextContent(ctx, spec)
	if err != nil {
		return 0, err
	}
	return parseCounter(text)
}
