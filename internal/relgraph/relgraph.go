// Package relgraph layers the candidate-expansion behavior search needs
// (spec §4.7.3) on top of the Storage Engine's relation ops: manually
// declared edges surfaced first and flagged, then a depth-bounded BFS
// frontier used only when the caller opts in.
package relgraph

import (
	"context"

	"github.com/shirokuma-library/mcp-knowledge-base/internal/store"
)

// Manual pairs a directly-related item id with its edge direction, used to
// mark manually declared relations as always-first results (spec §4.7.3:
// "Manually declared relations are always returned first, flagged
// source=manual").
type Manual struct {
	ItemID    int64
	Direction string // "outgoing" or "incoming"
}

// DirectRelations returns every item directly connected to itemID by a
// declared edge, in either direction.
func DirectRelations(ctx context.Context, q store.Querier, itemID int64) ([]Manual, error) {
	out, err := store.GetOutgoing(ctx, q, itemID)
	if err != nil {
		return nil, err
	}
	in, err := store.GetIncoming(ctx, q, itemID)
	if err != nil {
		return nil, err
	}

	var manual []Manual
	seen := make(map[int64]bool)
	for _, id := range out {
		if !seen[id] {
			seen[id] = true
			manual = append(manual, Manual{ItemID: id, Direction: "outgoing"})
		}
	}
	for _, id := range in {
		if !seen[id] {
			seen[id] = true
			manual = append(manual, Manual{ItemID: id, Direction: "incoming"})
		}
	}
	return manual, nil
}

// Expand returns ids reachable from itemID within depth hops (excluding
// itemID itself), used to widen the candidate set when includeRelations is
// requested (spec §4.7.3). Edges always score 1.0 before fusion; the
// caller decides how that signal blends with the others.
func Expand(ctx context.Context, q store.Querier, itemID int64, depth int) ([]int64, error) {
	reached, err := store.BFSReachable(ctx, q, itemID, depth)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(reached))
	for id := range reached {
		ids = append(ids, id)
	}
	return ids, nil
}
