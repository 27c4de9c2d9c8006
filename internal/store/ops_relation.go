package store

import (
	"context"
	"fmt"
	"time"

	"github.com/shirokuma-library/mcp-knowledge-base/internal/coreerr"
)

// AddRelations inserts a directed edge from sourceID to each of targetIDs,
// and when bidirectional is set also inserts the reverse edge. Relations are
// not symmetric by default (spec §3 ItemRelation). A self-loop is rejected
// outright as ConflictingRelation (spec §3, §7) rather than silently
// dropped; a duplicate edge is a no-op via INSERT OR IGNORE and does not
// count toward the returned inserted total (spec §4.6).
func AddRelations(ctx context.Context, q Querier, sourceID int64, targetIDs []int64, bidirectional bool) (int64, error) {
	now := time.Now().UTC()
	var inserted int64
	for _, targetID := range targetIDs {
		if targetID == sourceID {
			return inserted, coreerr.New(coreerr.KindConflictingRelation,
				fmt.Sprintf("item %d cannot be related to itself", sourceID)).
				WithDetails(map[string]any{"item_id": sourceID})
		}
		res, err := q.ExecContext(ctx, `
			INSERT OR IGNORE INTO item_relations (source_id, target_id, created_at) VALUES (?, ?, ?)
		`, sourceID, targetID, now)
		if err != nil {
			return inserted, fmt.Errorf("failed to relate item %d to %d: %w", sourceID, targetID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
		if bidirectional {
			if _, err := q.ExecContext(ctx, `
				INSERT OR IGNORE INTO item_relations (source_id, target_id, created_at) VALUES (?, ?, ?)
			`, targetID, sourceID, now); err != nil {
				return inserted, fmt.Errorf("failed to relate item %d to %d: %w", targetID, sourceID, err)
			}
		}
	}
	return inserted, nil
}

// RemoveRelation deletes a single directed edge, if present.
func RemoveRelation(ctx context.Context, q Querier, sourceID, targetID int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM item_relations WHERE source_id = ? AND target_id = ?`, sourceID, targetID)
	if err != nil {
		return fmt.Errorf("failed to remove relation %d -> %d: %w", sourceID, targetID, err)
	}
	return nil
}

// GetOutgoing returns the ids an item points to.
func GetOutgoing(ctx context.Context, q Querier, itemID int64) ([]int64, error) {
	return relatedIDs(ctx, q, `SELECT target_id FROM item_relations WHERE source_id = ? ORDER BY target_id`, itemID)
}

// GetIncoming returns the ids that point to an item.
func GetIncoming(ctx context.Context, q Querier, itemID int64) ([]int64, error) {
	return relatedIDs(ctx, q, `SELECT source_id FROM item_relations WHERE target_id = ? ORDER BY source_id`, itemID)
}

// GetNeighbors returns the union of outgoing and incoming ids, used as the
// undirected adjacency BFS over the graph needs (spec §4.6).
func GetNeighbors(ctx context.Context, q Querier, itemID int64) ([]int64, error) {
	out, err := GetOutgoing(ctx, q, itemID)
	if err != nil {
		return nil, err
	}
	in, err := GetIncoming(ctx, q, itemID)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]bool, len(out)+len(in))
	var merged []int64
	for _, ids := range [][]int64{out, in} {
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				merged = append(merged, id)
			}
		}
	}
	return merged, nil
}

func relatedIDs(ctx context.Context, q Querier, query string, itemID int64) ([]int64, error) {
	rows, err := q.QueryContext(ctx, query, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query relations for item %d: %w", itemID, err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// BFSReachable walks the undirected adjacency graph breadth-first from
// startID out to maxDepth hops, returning each reached id together with the
// hop distance at which it was first discovered (spec §4.6
// get_related_items depth-bounded traversal). startID itself is not
// included.
func BFSReachable(ctx context.Context, q Querier, startID int64, maxDepth int) (map[int64]int, error) {
	depths := map[int64]int{startID: 0}
	frontier := []int64{startID}

	for depth := 1; depth <= maxDepth && len(frontier) > 0; depth++ {
		var next []int64
		for _, id := range frontier {
			neighbors, err := GetNeighbors(ctx, q, id)
			if err != nil {
				return nil, err
			}
			for _, n := range neighbors {
				if _, seen := depths[n]; seen {
					continue
				}
				depths[n] = depth
				next = append(next, n)
			}
		}
		frontier = next
	}

	delete(depths, startID)
	return depths, nil
}
