// Package writepipeline orchestrates create_item and update_item end to
// end: validate, resolve vocabulary, enrich, persist, and rebuild every
// derived index, all inside one transaction (spec §4.8).
package writepipeline

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shirokuma-library/mcp-knowledge-base/internal/coreerr"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/embedstore"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/enrich"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/itemmodel"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/lexical"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/logging"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/store"
)

var log = logging.GetLogger("writepipeline")

// Pipeline holds the dependencies the Write Pipeline needs beyond the
// Storage Engine itself.
type Pipeline struct {
	db               *store.Store
	enricher         enrich.Enricher
	embeddingDim     int
}

// New constructs a Pipeline. enricher may be a noop.Enricher; the pipeline
// treats enrichment failure identically regardless of backend.
func New(db *store.Store, enricher enrich.Enricher, embeddingDim int) *Pipeline {
	return &Pipeline{db: db, enricher: enricher, embeddingDim: embeddingDim}
}

// Create runs the 10-step pipeline for a new item (spec §4.8).
func (p *Pipeline) Create(ctx context.Context, req *itemmodel.CreateRequest) (*store.Item, error) {
	var result *store.Item

	err := p.db.Transaction(ctx, func(tx *sql.Tx) error {
		statusID, err := resolveStatus(ctx, tx, req.Status)
		if err != nil {
			return err
		}

		tagIDs, err := ensureTags(ctx, tx, req.Tags)
		if err != nil {
			return err
		}

		item := &store.Item{
			Type:        req.Type,
			Title:       req.Title,
			Description: req.Description,
			Content:     req.Content,
			StatusID:    statusID,
			Priority:    req.Priority,
			Version:     req.Version,
			Category:    req.Category,
			StartDate:   req.StartDate,
			EndDate:     req.EndDate,
		}
		if err := store.CreateItem(ctx, tx, item); err != nil {
			return err
		}

		enrichment := p.runEnrichment(ctx, item.ID, mergedText(item))

		if err := applyEnrichment(ctx, tx, item, enrichment, p.embeddingDim); err != nil {
			return err
		}

		if err := store.ReplaceItemTags(ctx, tx, item.ID, tagIDs); err != nil {
			return err
		}

		if err := p.rebuildIndexes(ctx, tx, item); err != nil {
			return err
		}

		if len(req.Related) > 0 {
			if err := validateRelationTargets(ctx, tx, req.Related); err != nil {
				return err
			}
			if _, err := store.AddRelations(ctx, tx, item.ID, req.Related, req.Bidirectional); err != nil {
				return err
			}
		}

		full, err := store.GetItemFull(ctx, tx, item.ID)
		if err != nil {
			return err
		}
		result = full
		return nil
	})

	return result, err
}

// Update runs the same pipeline shape for an existing item, applying only
// the fields the caller's Patch set present (spec §4.2, §4.8).
func (p *Pipeline) Update(ctx context.Context, id int64, req *itemmodel.UpdateRequest) (*store.Item, error) {
	var result *store.Item

	err := p.db.Transaction(ctx, func(tx *sql.Tx) error {
		current, err := store.GetItemFull(ctx, tx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return coreerr.New(coreerr.KindNotFound, fmt.Sprintf("item %d not found", id))
		}

		effectiveStart := current.StartDate
		if req.StartDate.Present {
			effectiveStart = req.StartDate.Value
		}
		effectiveEnd := current.EndDate
		if req.EndDate.Present {
			effectiveEnd = req.EndDate.Value
		}
		if err := itemmodel.ValidateDateRange(effectiveStart, effectiveEnd); err != nil {
			return err
		}

		set := map[string]any{}
		applyStringPatch(set, "type", req.Type)
		applyStringPatch(set, "title", req.Title)
		applyNullableStringPatch(set, "description", req.Description)
		applyNullableStringPatch(set, "content", req.Content)
		applyNullableStringPatch(set, "version", req.Version)
		applyNullableStringPatch(set, "category", req.Category)

		if req.Priority.Present {
			set["priority"] = string(*req.Priority.Value)
		}
		if req.Status.Present {
			statusID, err := resolveStatus(ctx, tx, *req.Status.Value)
			if err != nil {
				return err
			}
			set["status_id"] = statusID
		}
		if req.StartDate.Present {
			set["start_date"] = dateOrNil(req.StartDate.Value)
		}
		if req.EndDate.Present {
			set["end_date"] = dateOrNil(req.EndDate.Value)
		}

		if len(set) > 0 {
			if err := store.UpdateItemFields(ctx, tx, id, set); err != nil {
				return err
			}
		}

		var tagIDs []int64
		if req.Tags.Present {
			names := []string{}
			if req.Tags.Value != nil {
				names = *req.Tags.Value
			}
			tagIDs, err = ensureTags(ctx, tx, names)
			if err != nil {
				return err
			}
			if err := store.ReplaceItemTags(ctx, tx, id, tagIDs); err != nil {
				return err
			}
		}

		merged, err := store.GetItem(ctx, tx, id)
		if err != nil {
			return err
		}

		enrichment := p.runEnrichment(ctx, id, mergedText(merged))
		if err := applyEnrichment(ctx, tx, merged, enrichment, p.embeddingDim); err != nil {
			return err
		}

		// Content explicitly cleared and no fresh enrichment produced a
		// replacement embedding: the stale vector would otherwise keep
		// scoring this item against a body of text it no longer has.
		if req.Content.Present && req.Content.Value == nil && (enrichment == nil || enrichment.Embedding == nil) {
			if err := embedstore.Delete(ctx, tx, id); err != nil {
				return err
			}
		}

		if err := p.rebuildIndexes(ctx, tx, merged); err != nil {
			return err
		}

		if len(req.Related) > 0 {
			if err := validateRelationTargets(ctx, tx, req.Related); err != nil {
				return err
			}
			if _, err := store.AddRelations(ctx, tx, id, req.Related, req.Bidirectional); err != nil {
				return err
			}
		}

		full, err := store.GetItemFull(ctx, tx, id)
		if err != nil {
			return err
		}
		result = full
		return nil
	})

	return result, err
}

// Delete removes an item and everything cascading from it.
func (p *Pipeline) Delete(ctx context.Context, id int64) error {
	return p.db.Transaction(ctx, func(tx *sql.Tx) error {
		return store.DeleteItem(ctx, tx, id)
	})
}

func resolveStatus(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	st, err := store.GetStatusByName(ctx, tx, name)
	if err != nil {
		return 0, err
	}
	if st == nil {
		return 0, coreerr.New(coreerr.KindUnknownStatus, "unknown status: "+name).
			WithDetails(map[string]any{"status": name})
	}
	return st.ID, nil
}

func ensureTags(ctx context.Context, tx *sql.Tx, names []string) ([]int64, error) {
	ids := make([]int64, 0, len(names))
	for _, name := range names {
		id, err := store.EnsureTag(ctx, tx, name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func validateRelationTargets(ctx context.Context, tx *sql.Tx, ids []int64) error {
	for _, id := range ids {
		item, err := store.GetItem(ctx, tx, id)
		if err != nil {
			return err
		}
		if item == nil {
			return coreerr.New(coreerr.KindUnknownItem, fmt.Sprintf("related item %d does not exist", id)).
				WithDetails(map[string]any{"item_id": id})
		}
	}
	return nil
}

func mergedText(item *store.Item) string {
	var desc, content string
	if item.Description != nil {
		desc = *item.Description
	}
	if item.Content != nil {
		content = *item.Content
	}
	return item.Title + " " + desc + " " + content
}

func (p *Pipeline) rebuildIndexes(ctx context.Context, tx *sql.Tx, item *store.Item) error {
	var desc, content, si string
	if item.Description != nil {
		desc = *item.Description
	}
	if item.Content != nil {
		content = *item.Content
	}
	if item.SearchIndex != nil {
		si = *item.SearchIndex
	}
	tagNames, err := store.GetItemTags(ctx, tx, item.ID)
	if err != nil {
		return err
	}
	tags := strings.Join(itemmodel.SortedTagNames(tagNames), " ")
	text := lexical.DocumentText(item.Title, desc, content, si, tags)
	return lexical.RebuildItemIndex(ctx, tx, item.ID, text)
}

func applyStringPatch(set map[string]any, col string, p itemmodel.Patch[string]) {
	if p.Present {
		set[col] = *p.Value
	}
}

func applyNullableStringPatch(set map[string]any, col string, p itemmodel.Patch[string]) {
	if !p.Present {
		return
	}
	if p.Value == nil {
		set[col] = nil
	} else {
		set[col] = *p.Value
	}
}

func dateOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format("2006-01-02")
}
