package store

import (
	"context"
	"fmt"
)

// Stats summarizes the knowledge base for the get_stats tool (spec §6,
// SPEC_FULL §6 "Database statistics").
type Stats struct {
	TotalItems      int
	ItemsByType     map[string]int
	ItemsByStatus   map[string]int
	ItemsByPriority map[string]int
	TotalRelations  int
	AvgConnections  float64
	TotalTags       int
	TotalKeywords   int
	TotalConcepts   int
}

// GetStats aggregates counts across items, vocabulary, and relations.
func GetStats(ctx context.Context, q Querier) (*Stats, error) {
	s := &Stats{
		ItemsByType:     map[string]int{},
		ItemsByStatus:   map[string]int{},
		ItemsByPriority: map[string]int{},
	}

	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&s.TotalItems); err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}

	if err := scanCountsByColumn(ctx, q, `SELECT type, COUNT(*) FROM items GROUP BY type`, s.ItemsByType); err != nil {
		return nil, err
	}
	if err := scanCountsByColumn(ctx, q, `
		SELECT st.name, COUNT(*) FROM items i
		JOIN statuses st ON st.id = i.status_id
		GROUP BY st.name
	`, s.ItemsByStatus); err != nil {
		return nil, err
	}
	if err := scanCountsByColumn(ctx, q, `SELECT priority, COUNT(*) FROM items GROUP BY priority`, s.ItemsByPriority); err != nil {
		return nil, err
	}

	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM item_relations`).Scan(&s.TotalRelations); err != nil {
		return nil, fmt.Errorf("failed to count relations: %w", err)
	}
	if s.TotalItems > 0 {
		s.AvgConnections = float64(s.TotalRelations) / float64(s.TotalItems)
	}

	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM tags`).Scan(&s.TotalTags); err != nil {
		return nil, fmt.Errorf("failed to count tags: %w", err)
	}
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM keywords`).Scan(&s.TotalKeywords); err != nil {
		return nil, fmt.Errorf("failed to count keywords: %w", err)
	}
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM concepts`).Scan(&s.TotalConcepts); err != nil {
		return nil, fmt.Errorf("failed to count concepts: %w", err)
	}

	return s, nil
}

func scanCountsByColumn(ctx context.Context, q Querier, query string, into map[string]int) error {
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to run grouped count query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return fmt.Errorf("failed to scan grouped count: %w", err)
		}
		into[key] = count
	}
	return rows.Err()
}
