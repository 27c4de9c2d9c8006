// Package noop provides the default Enricher: it always declines, so a
// deployment with no configured AI backend still works end to end (items
// are created and stay lexically searchable, just without summaries,
// keywords, concepts, or embeddings).
package noop

import (
	"context"

	"github.com/shirokuma-library/mcp-knowledge-base/internal/enrich"
)

// Enricher always reports ErrUnavailable.
type Enricher struct{}

// New constructs a noop Enricher.
func New() *Enricher { return &Enricher{} }

// Enrich implements enrich.Enricher.
func (*Enricher) Enrich(context.Context, string) (*enrich.Result, error) {
	return nil, enrich.ErrUnavailable
}
