// Package embedstore holds the dense-vector side of retrieval: a
// brute-force cosine scan over item_embeddings (spec §4.5). The baseline
// is intentionally simple; ScanSimilar is the one entry point callers use,
// and no approximate index is implemented in this repository.
package embedstore

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/shirokuma-library/mcp-knowledge-base/internal/coreerr"
)

// Querier is the minimal DB surface this package needs.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Pack serializes vec as packed little-endian float32s.
func Pack(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// Unpack reverses Pack.
func Unpack(buf []byte) []float32 {
	if len(buf)%4 != 0 {
		return nil
	}
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vec
}

// Upsert writes or replaces an item's embedding row, rejecting a vector
// whose dimension doesn't match dim (spec §4.5: "dimension mismatch on
// insert is EmbeddingDimMismatch").
func Upsert(ctx context.Context, q Querier, itemID int64, vec []float32, dim int) error {
	if len(vec) != dim {
		return coreerr.New(coreerr.KindEmbeddingDimMismatch,
			fmt.Sprintf("embedding has dimension %d, expected %d", len(vec), dim)).
			WithDetails(map[string]any{"got": len(vec), "want": dim})
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO item_embeddings (item_id, vector, dim) VALUES (?, ?, ?)
		ON CONFLICT(item_id) DO UPDATE SET vector = excluded.vector, dim = excluded.dim
	`, itemID, Pack(vec), dim)
	if err != nil {
		return fmt.Errorf("failed to upsert embedding for item %d: %w", itemID, err)
	}
	return nil
}

// Delete removes an item's embedding row, used when an update clears the
// embedding field (spec §4.8 step 8).
func Delete(ctx context.Context, q Querier, itemID int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM item_embeddings WHERE item_id = ?`, itemID); err != nil {
		return fmt.Errorf("failed to delete embedding for item %d: %w", itemID, err)
	}
	return nil
}

// Get returns an item's embedding, or nil if it has none.
func Get(ctx context.Context, q Querier, itemID int64) ([]float32, error) {
	var blob []byte
	err := q.QueryRowContext(ctx, `SELECT vector FROM item_embeddings WHERE item_id = ?`, itemID).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read embedding for item %d: %w", itemID, err)
	}
	return Unpack(blob), nil
}

// Cosine computes cosine similarity between two equal-length vectors,
// returning 0 for a zero-magnitude vector rather than dividing by zero.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// Neighbor pairs an item id with its similarity to some query vector.
type Neighbor struct {
	ItemID int64
	Score  float64
}

// ScanSimilar does the brute-force baseline: load every embedding row
// restricted to candidateIDs (or all rows when candidateIDs is nil) and
// score by cosine similarity against query.
func ScanSimilar(ctx context.Context, q Querier, query []float32, candidateIDs []int64) ([]Neighbor, error) {
	var rows *sql.Rows
	var err error

	if candidateIDs == nil {
		rows, err = q.QueryContext(ctx, `SELECT item_id, vector FROM item_embeddings`)
	} else {
		placeholders := make([]byte, 0, 2*len(candidateIDs))
		args := make([]any, len(candidateIDs))
		for i, id := range candidateIDs {
			if i > 0 {
				placeholders = append(placeholders, ',')
			}
			placeholders = append(placeholders, '?')
			args[i] = id
		}
		rows, err = q.QueryContext(ctx, fmt.Sprintf(`SELECT item_id, vector FROM item_embeddings WHERE item_id IN (%s)`, placeholders), args...)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan embeddings: %w", err)
	}
	defer rows.Close()

	var out []Neighbor
	for rows.Next() {
		var id int64
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, err
		}
		out = append(out, Neighbor{ItemID: id, Score: Cosine(query, Unpack(blob))})
	}
	return out, rows.Err()
}
