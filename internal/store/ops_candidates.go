package store

import (
	"context"
	"fmt"
)

// SharedVocabCandidates returns every item id (other than itemID) sharing at
// least one tag, keyword, or concept with it — the narrowing step spec
// §4.7.3 requires before ranking ("implementers must narrow via the
// vocabulary junctions before ranking").
func SharedVocabCandidates(ctx context.Context, q Querier, itemID int64) (map[int64]bool, error) {
	queries := []string{
		`SELECT DISTINCT it2.item_id FROM item_tags it1
		 JOIN item_tags it2 ON it2.tag_id = it1.tag_id
		 WHERE it1.item_id = ? AND it2.item_id <> ?`,
		`SELECT DISTINCT ik2.item_id FROM item_keywords ik1
		 JOIN item_keywords ik2 ON ik2.keyword_id = ik1.keyword_id
		 WHERE ik1.item_id = ? AND ik2.item_id <> ?`,
		`SELECT DISTINCT ic2.item_id FROM item_concepts ic1
		 JOIN item_concepts ic2 ON ic2.concept_id = ic1.concept_id
		 WHERE ic1.item_id = ? AND ic2.item_id <> ?`,
	}

	out := make(map[int64]bool)
	for _, query := range queries {
		rows, err := q.QueryContext(ctx, query, itemID, itemID)
		if err != nil {
			return nil, fmt.Errorf("failed to find shared-vocabulary candidates for item %d: %w", itemID, err)
		}
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, err
			}
			out[id] = true
		}
		rows.Close()
	}
	return out, nil
}
