package lexical

import (
	"context"
	"database/sql"
	"fmt"
)

// Querier is the minimal subset of store.Querier this package needs,
// redeclared here so lexical has no import-time dependency on the storage
// package's concrete types.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// RebuildItemIndex replaces the lexical_terms rows for itemID with the
// term-frequency table of text (Write Pipeline step 7). A zero-length text
// still clears stale rows, upholding I4 ("lexical-index entry present iff
// the item exists").
func RebuildItemIndex(ctx context.Context, q Querier, itemID int64, text string) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM lexical_terms WHERE item_id = ?`, itemID); err != nil {
		return fmt.Errorf("failed to clear lexical index for item %d: %w", itemID, err)
	}

	freq := TermFrequencies(Tokenize(text))
	for term, tf := range freq {
		if _, err := q.ExecContext(ctx, `
			INSERT INTO lexical_terms (item_id, term, term_freq) VALUES (?, ?, ?)
		`, itemID, term, tf); err != nil {
			return fmt.Errorf("failed to index term %q for item %d: %w", term, itemID, err)
		}
	}
	return nil
}

// DocumentFrequency returns, for each term, the number of distinct items
// containing it — the corpus-wide statistic IDF needs.
func DocumentFrequency(ctx context.Context, q Querier, terms []string) (map[string]int, error) {
	out := make(map[string]int, len(terms))
	for _, term := range terms {
		if _, ok := out[term]; ok {
			continue
		}
		var count int
		if err := q.QueryRowContext(ctx, `SELECT COUNT(DISTINCT item_id) FROM lexical_terms WHERE term = ?`, term).Scan(&count); err != nil {
			return nil, fmt.Errorf("failed to count document frequency for %q: %w", term, err)
		}
		out[term] = count
	}
	return out, nil
}

// TotalDocuments returns the number of items with at least one indexed
// term, the N in the smoothed-IDF formula.
func TotalDocuments(ctx context.Context, q Querier) (int, error) {
	var count int
	err := q.QueryRowContext(ctx, `SELECT COUNT(DISTINCT item_id) FROM lexical_terms`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count indexed documents: %w", err)
	}
	return count, nil
}

// CandidatesForTerms returns the set of item ids whose index contains any
// of terms, narrowing the scan before scoring.
func CandidatesForTerms(ctx context.Context, q Querier, terms []string) (map[int64]bool, error) {
	out := make(map[int64]bool)
	for _, term := range terms {
		rows, err := q.QueryContext(ctx, `SELECT item_id FROM lexical_terms WHERE term = ?`, term)
		if err != nil {
			return nil, fmt.Errorf("failed to look up candidates for %q: %w", term, err)
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

// TermFreqForItem returns an item's term-frequency row as a map.
func TermFreqForItem(ctx context.Context, q Querier, itemID int64) (map[string]int, error) {
	rows, err := q.QueryContext(ctx, `SELECT term, term_freq FROM lexical_terms WHERE item_id = ?`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to read term frequencies for item %d: %w", itemID, err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var term string
		var tf int
		if err := rows.Scan(&term, &tf); err != nil {
			return nil, err
		}
		out[term] = tf
	}
	return out, rows.Err()
}
