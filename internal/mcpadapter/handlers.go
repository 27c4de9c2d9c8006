package mcpadapter

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shirokuma-library/mcp-knowledge-base/internal/itemmodel"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/itemwire"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/search"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/store"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/sysstate"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/vocab"
)

func (s *Server) handleCreateItem(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	var p CreateItemParams
	if err := itemwire.DecodeArgs(args, &p); err != nil {
		return nil, err
	}

	req, err := itemmodel.ValidateCreate(p.RawCreate())
	if err != nil {
		return nil, err
	}

	item, err := s.pipeline.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	return itemwire.ToItem(item), nil
}

func (s *Server) handleGetItem(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	var p GetItemParams
	if err := itemwire.DecodeArgs(args, &p); err != nil {
		return nil, err
	}

	item, err := store.GetItemFull(ctx, s.db.DB(), p.ID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("item %d not found", p.ID)
	}
	return itemwire.ToItem(item), nil
}

func (s *Server) handleUpdateItem(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	idVal, ok := args["id"]
	if !ok {
		return nil, fmt.Errorf("id is required")
	}
	idFloat, ok := idVal.(float64)
	if !ok {
		return nil, fmt.Errorf("id must be a number")
	}
	id := int64(idFloat)

	raw, err := itemwire.RawUpdateFromArgs(args)
	if err != nil {
		return nil, err
	}

	req, err := itemmodel.ValidateUpdate(raw)
	if err != nil {
		return nil, err
	}

	item, err := s.pipeline.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	return itemwire.ToItem(item), nil
}

func (s *Server) handleDeleteItem(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	var p DeleteItemParams
	if err := itemwire.DecodeArgs(args, &p); err != nil {
		return nil, err
	}
	if err := s.pipeline.Delete(ctx, p.ID); err != nil {
		return nil, err
	}
	return map[string]bool{"deleted": true}, nil
}

func (s *Server) handleListItems(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	var p ListItemsParams
	if err := itemwire.DecodeArgs(args, &p); err != nil {
		return nil, err
	}

	statusIDs, err := s.resolveStatusIDs(ctx, p.Status)
	if err != nil {
		return nil, err
	}

	types := p.Types
	if p.Type != nil && *p.Type != "" {
		types = append(types, *p.Type)
	}

	filters := &store.ItemFilters{
		Types:      types,
		StatusIDs:  statusIDs,
		Priorities: p.Priority,
		TagNames:   p.Tags,
		SortBy:     p.SortBy,
		SortOrder:  p.SortOrder,
		Limit:      p.Limit,
		Offset:     p.Offset,
	}

	items, err := search.List(ctx, s.db.DB(), filters)
	if err != nil {
		return nil, err
	}
	return itemwire.ToItems(items), nil
}

// resolveStatusIDs looks up each status name's id; ItemFilters filters by
// id, not name, since status rows are keyed by a surrogate id (spec §3
// Status).
func (s *Server) resolveStatusIDs(ctx context.Context, names []string) ([]int64, error) {
	ids := make([]int64, 0, len(names))
	for _, name := range names {
		st, err := store.GetStatusByName(ctx, s.db.DB(), name)
		if err != nil {
			return nil, err
		}
		if st == nil {
			return nil, fmt.Errorf("unknown status: %s", name)
		}
		ids = append(ids, st.ID)
	}
	return ids, nil
}

func (s *Server) handleSearchItems(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	var p SearchItemsParams
	if err := itemwire.DecodeArgs(args, &p); err != nil {
		return nil, err
	}

	statusIDs, err := s.resolveStatusIDs(ctx, p.Status)
	if err != nil {
		return nil, err
	}

	filters := &store.ItemFilters{
		Types:      p.Types,
		StatusIDs:  statusIDs,
		Priorities: p.Priority,
		TagNames:   p.Tags,
	}

	results, err := search.Search(ctx, s.db.DB(), p.Query, filters, p.Limit)
	if err != nil {
		return nil, err
	}
	return itemwire.ToResults(results), nil
}

func (s *Server) handleGetRelatedItems(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	var p GetRelatedItemsParams
	if err := itemwire.DecodeArgs(args, &p); err != nil {
		return nil, err
	}

	strategy := search.Strategy(p.Strategy)
	if strategy == "" {
		strategy = search.StrategyHybrid
	}

	weights := search.HybridWeights{}
	if p.Weights != nil {
		if p.Weights.Keywords != nil {
			weights.Keywords = *p.Weights.Keywords
		}
		if p.Weights.Concepts != nil {
			weights.Concepts = *p.Weights.Concepts
		}
		if p.Weights.Embedding != nil {
			weights.Embedding = *p.Weights.Embedding
		}
	}

	opts := search.RelatedOptions{
		Strategy:         strategy,
		Limit:            p.Limit,
		Weights:          weights,
		IncludeRelations: p.IncludeRelations,
		Depth:            p.Depth,
	}

	results, err := search.Related(ctx, s.db.DB(), p.ID, opts)
	if err != nil {
		return nil, err
	}

	manual, computed := itemwire.SplitManualComputed(results)
	return map[string]interface{}{"manual": manual, "computed": computed}, nil
}

func (s *Server) handleFindSimilarItems(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	var p FindSimilarItemsParams
	if err := itemwire.DecodeArgs(args, &p); err != nil {
		return nil, err
	}
	results, err := search.FindSimilar(ctx, s.db.DB(), p.ID, p.Limit)
	if err != nil {
		return nil, err
	}
	return itemwire.ToResults(results), nil
}

func (s *Server) handleAddRelations(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	var p AddRelationsParams
	if err := itemwire.DecodeArgs(args, &p); err != nil {
		return nil, err
	}

	var inserted int64
	err := s.db.Transaction(ctx, func(tx *sql.Tx) error {
		for _, id := range p.TargetIDs {
			item, err := store.GetItem(ctx, tx, id)
			if err != nil {
				return err
			}
			if item == nil {
				return fmt.Errorf("related item %d does not exist", id)
			}
		}
		n, err := store.AddRelations(ctx, tx, p.SourceID, p.TargetIDs, p.Bidirectional)
		if err != nil {
			return err
		}
		inserted = n
		return nil
	})
	if err != nil {
		return nil, err
	}

	return map[string]int64{"inserted": inserted}, nil
}

func (s *Server) handleGetTags(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	var p GetTagsParams
	if err := itemwire.DecodeArgs(args, &p); err != nil {
		return nil, err
	}
	usage, err := store.ListTagUsage(ctx, s.db.DB(), p.Prefix, p.Limit)
	if err != nil {
		return nil, err
	}
	return usage, nil
}

func (s *Server) handleGetStats(ctx context.Context, _ map[string]interface{}) (interface{}, error) {
	return store.GetStats(ctx, s.db.DB())
}

func (s *Server) handleGetCurrentState(ctx context.Context, _ map[string]interface{}) (interface{}, error) {
	return s.sysState.GetCurrent(ctx)
}

func (s *Server) handleUpdateCurrentState(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	var p UpdateCurrentStateParams
	if err := itemwire.DecodeArgs(args, &p); err != nil {
		return nil, err
	}
	return s.sysState.Update(ctx, sysstate.UpdateRequest{
		Content:  p.Content,
		Tags:     p.Tags,
		Metadata: p.Metadata,
	})
}

func (s *Server) handleCheckpoint(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	var p CheckpointParams
	if err := itemwire.DecodeArgs(args, &p); err != nil {
		return nil, err
	}
	if p.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	return s.sysState.Checkpoint(ctx, p.Name)
}

func (s *Server) handleRemoveRelation(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	var p RemoveRelationParams
	if err := itemwire.DecodeArgs(args, &p); err != nil {
		return nil, err
	}
	if err := store.RemoveRelation(ctx, s.db.DB(), p.SourceID, p.TargetID); err != nil {
		return nil, err
	}
	return map[string]bool{"removed": true}, nil
}

func (s *Server) handleRenameTag(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	var p RenameTagParams
	if err := itemwire.DecodeArgs(args, &p); err != nil {
		return nil, err
	}
	if err := vocab.RenameTag(ctx, s.db.DB(), p.ID, p.NewName); err != nil {
		return nil, err
	}
	return map[string]bool{"renamed": true}, nil
}

func (s *Server) handleDeleteVocab(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	var p DeleteVocabParams
	if err := itemwire.DecodeArgs(args, &p); err != nil {
		return nil, err
	}
	if err := vocab.Delete(ctx, s.db.DB(), vocab.Kind(p.Kind), p.ID, p.Force); err != nil {
		return nil, err
	}
	return map[string]bool{"deleted": true}, nil
}

func (s *Server) handleGetGarbageVocab(ctx context.Context, _ map[string]interface{}) (interface{}, error) {
	return vocab.Garbage(ctx, s.db.DB())
}
