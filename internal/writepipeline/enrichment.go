package writepipeline

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shirokuma-library/mcp-knowledge-base/internal/embedstore"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/enrich"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/store"
)

// runEnrichment invokes the configured capability and swallows
// ErrUnavailable into a nil result: this is the recoverable path spec §4.8
// calls "the single most important failure policy in the system" — a
// user's write is never lost because the embedding model is down.
func (p *Pipeline) runEnrichment(ctx context.Context, itemID int64, text string) *enrich.Result {
	result, err := p.enricher.Enrich(ctx, text)
	if err != nil {
		if errors.Is(err, enrich.ErrUnavailable) {
			log.Warn("enrichment unavailable, committing write without it", "item_id", itemID, "error", err)
		} else {
			log.Warn("enrichment failed, committing write without it", "item_id", itemID, "error", err)
		}
		return nil
	}
	return result
}

// applyEnrichment writes whichever enrichment outputs are present. On
// create, an absent output simply stays null (CreateItem already left it
// so); on update, an absent output leaves the prior value untouched (spec
// §4.8 step 4).
func applyEnrichment(ctx context.Context, tx *sql.Tx, item *store.Item, result *enrich.Result, dim int) error {
	if result == nil {
		return nil
	}

	if result.Summary != nil {
		if err := store.UpdateItemFields(ctx, tx, item.ID, map[string]any{"summary": *result.Summary}); err != nil {
			return err
		}
	}

	if result.Keywords != nil {
		kws := make([]store.KeywordWeight, len(result.Keywords))
		for i, kw := range result.Keywords {
			kws[i] = store.KeywordWeight{Name: kw.Name, Weight: kw.Weight}
		}
		if err := store.ReplaceItemKeywords(ctx, tx, item.ID, kws); err != nil {
			return err
		}
	}

	if result.Concepts != nil {
		cs := make([]store.ConceptWeight, len(result.Concepts))
		for i, c := range result.Concepts {
			cs[i] = store.ConceptWeight{Name: c.Name, Weight: c.Weight}
		}
		if err := store.ReplaceItemConcepts(ctx, tx, item.ID, cs); err != nil {
			return err
		}
	}

	if result.Embedding != nil {
		if err := embedstore.Upsert(ctx, tx, item.ID, result.Embedding, dim); err != nil {
			return err
		}
	}

	return nil
}
