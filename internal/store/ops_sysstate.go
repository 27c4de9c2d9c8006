package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// GetCurrentState returns the single active SystemState row, creating an
// empty one on first call (spec §4.9: "reading before any state has been
// recorded returns a fresh, empty state rather than an error").
func GetCurrentState(ctx context.Context, q Querier) (*SystemState, error) {
	st, err := scanActiveState(ctx, q)
	if err != nil {
		return nil, err
	}
	if st != nil {
		return st, nil
	}

	now := time.Now().UTC()
	fresh := &SystemState{IsActive: true, CreatedAt: now, UpdatedAt: now}
	res, err := q.ExecContext(ctx, `
		INSERT INTO system_state (version, content, summary, metrics, context, checkpoint,
			related_items, tags, metadata, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
	`, fresh.Version, fresh.Content, fresh.Summary, fresh.Metrics, fresh.Context, fresh.Checkpoint,
		"[]", "[]", fresh.Metadata, fresh.CreatedAt, fresh.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create initial system state: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read new system state id: %w", err)
	}
	fresh.ID = id
	return fresh, nil
}

func scanActiveState(ctx context.Context, q Querier) (*SystemState, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, version, content, summary, metrics, context, checkpoint,
		       related_items, tags, metadata, is_active, created_at, updated_at
		FROM system_state WHERE is_active = 1 ORDER BY id DESC LIMIT 1
	`)

	var st SystemState
	var relatedItems, tags string
	err := row.Scan(&st.ID, &st.Version, &st.Content, &st.Summary, &st.Metrics, &st.Context, &st.Checkpoint,
		&relatedItems, &tags, &st.Metadata, &st.IsActive, &st.CreatedAt, &st.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read current system state: %w", err)
	}

	st.RelatedItems = decodeIDList(relatedItems)
	st.Tags = decodeStringList(tags)
	return &st, nil
}

// UpdateCurrentState applies a partial update to the active state row
// (nil fields in partial are left unchanged), mirroring the items
// update_item semantics (spec §4.9).
func UpdateCurrentState(ctx context.Context, q Querier, partial *SystemState) (*SystemState, error) {
	current, err := GetCurrentState(ctx, q)
	if err != nil {
		return nil, err
	}

	if partial.Version != "" {
		current.Version = partial.Version
	}
	if partial.Content != "" {
		current.Content = partial.Content
	}
	if partial.Summary != "" {
		current.Summary = partial.Summary
	}
	if partial.Metrics != "" {
		current.Metrics = partial.Metrics
	}
	if partial.Context != "" {
		current.Context = partial.Context
	}
	if partial.Checkpoint != "" {
		current.Checkpoint = partial.Checkpoint
	}
	if partial.RelatedItems != nil {
		current.RelatedItems = partial.RelatedItems
	}
	if partial.Tags != nil {
		current.Tags = partial.Tags
	}
	if partial.Metadata != "" {
		current.Metadata = partial.Metadata
	}
	current.UpdatedAt = time.Now().UTC()

	_, err = q.ExecContext(ctx, `
		UPDATE system_state SET version = ?, content = ?, summary = ?, metrics = ?, context = ?,
			checkpoint = ?, related_items = ?, tags = ?, metadata = ?, updated_at = ?
		WHERE id = ?
	`, current.Version, current.Content, current.Summary, current.Metrics, current.Context,
		current.Checkpoint, encodeIDList(current.RelatedItems), encodeStringList(current.Tags),
		current.Metadata, current.UpdatedAt, current.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update system state: %w", err)
	}
	return current, nil
}

// Checkpoint clones the active state row, marks the clone inactive, and
// retains it as a history entry keyed by name; the active row itself is
// left untouched (spec §4.9).
func Checkpoint(ctx context.Context, q Querier, name string) (*SystemState, error) {
	current, err := GetCurrentState(ctx, q)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	clone := *current
	clone.Checkpoint = name
	clone.IsActive = false
	clone.CreatedAt = now
	clone.UpdatedAt = now

	res, err := q.ExecContext(ctx, `
		INSERT INTO system_state (version, content, summary, metrics, context, checkpoint,
			related_items, tags, metadata, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)
	`, clone.Version, clone.Content, clone.Summary, clone.Metrics, clone.Context, clone.Checkpoint,
		encodeIDList(clone.RelatedItems), encodeStringList(clone.Tags), clone.Metadata,
		clone.CreatedAt, clone.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to record checkpoint %q: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read new checkpoint id: %w", err)
	}
	clone.ID = id
	return &clone, nil
}

// ListCheckpoints returns every retained checkpoint history entry, most
// recent first.
func ListCheckpoints(ctx context.Context, q Querier) ([]*SystemState, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, version, content, summary, metrics, context, checkpoint,
		       related_items, tags, metadata, is_active, created_at, updated_at
		FROM system_state WHERE is_active = 0 AND checkpoint <> '' ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}
	defer rows.Close()

	var out []*SystemState
	for rows.Next() {
		var st SystemState
		var relatedItems, tags string
		if err := rows.Scan(&st.ID, &st.Version, &st.Content, &st.Summary, &st.Metrics, &st.Context,
			&st.Checkpoint, &relatedItems, &tags, &st.Metadata, &st.IsActive, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan checkpoint: %w", err)
		}
		st.RelatedItems = decodeIDList(relatedItems)
		st.Tags = decodeStringList(tags)
		out = append(out, &st)
	}
	return out, rows.Err()
}

func encodeIDList(ids []int64) string {
	b, err := json.Marshal(ids)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func decodeIDList(raw string) []int64 {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var ids []int64
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil
	}
	return ids
}

func encodeStringList(vals []string) string {
	b, err := json.Marshal(vals)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func decodeStringList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var vals []string
	if err := json.Unmarshal([]byte(raw), &vals); err != nil {
		return nil
	}
	return vals
}
