package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shirokuma-library/mcp-knowledge-base/internal/coreerr"
)

// GetStatusByName resolves a status name to its row, or nil if unknown.
func GetStatusByName(ctx context.Context, q Querier, name string) (*Status, error) {
	var st Status
	err := q.QueryRowContext(ctx, `SELECT id, name, is_closable, sort_order FROM statuses WHERE name = ?`, name).
		Scan(&st.ID, &st.Name, &st.IsClosable, &st.SortOrder)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up status %q: %w", name, err)
	}
	return &st, nil
}

// GetStatusByID resolves a status id to its row.
func GetStatusByID(ctx context.Context, q Querier, id int64) (*Status, error) {
	var st Status
	err := q.QueryRowContext(ctx, `SELECT id, name, is_closable, sort_order FROM statuses WHERE id = ?`, id).
		Scan(&st.ID, &st.Name, &st.IsClosable, &st.SortOrder)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up status %d: %w", id, err)
	}
	return &st, nil
}

// ListStatuses returns every status ordered by sort_order.
func ListStatuses(ctx context.Context, q Querier) ([]*Status, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, name, is_closable, sort_order FROM statuses ORDER BY sort_order`)
	if err != nil {
		return nil, fmt.Errorf("failed to list statuses: %w", err)
	}
	defer rows.Close()

	var out []*Status
	for rows.Next() {
		var st Status
		if err := rows.Scan(&st.ID, &st.Name, &st.IsClosable, &st.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan status: %w", err)
		}
		out = append(out, &st)
	}
	return out, rows.Err()
}

// CreateStatus inserts a new status.
func CreateStatus(ctx context.Context, q Querier, st *Status) error {
	res, err := q.ExecContext(ctx, `INSERT INTO statuses (name, is_closable, sort_order) VALUES (?, ?, ?)`,
		st.Name, st.IsClosable, st.SortOrder)
	if err != nil {
		return fmt.Errorf("failed to create status %q: %w", st.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read new status id: %w", err)
	}
	st.ID = id
	return nil
}

// DeleteStatus removes a status, refusing when any item still references it
// (spec §3 Status: "Deletion refused when any item references it").
func DeleteStatus(ctx context.Context, q Querier, id int64) error {
	var count int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM items WHERE status_id = ?`, id).Scan(&count); err != nil {
		return fmt.Errorf("failed to count items for status %d: %w", id, err)
	}
	if count > 0 {
		return coreerr.New(coreerr.KindConflict, fmt.Sprintf("status %d is referenced by %d item(s)", id, count))
	}

	res, err := q.ExecContext(ctx, `DELETE FROM statuses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete status %d: %w", id, err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return coreerr.New(coreerr.KindNotFound, fmt.Sprintf("status %d not found", id))
	}
	return nil
}
