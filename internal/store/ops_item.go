package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shirokuma-library/mcp-knowledge-base/internal/embedstore"
)

// ItemFilters narrows ListItems (spec §4.7.1 Filtered list).
type ItemFilters struct {
	Types      []string
	StatusIDs  []int64
	Priorities []string
	TagNames   []string
	SortBy     string // "created", "updated", "priority"
	SortOrder  string // "asc", "desc"
	Limit      int
	Offset     int
}

// CreateItem inserts a new item row, assigning its id and timestamps.
func CreateItem(ctx context.Context, q Querier, item *Item) error {
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	if item.Priority == "" {
		item.Priority = PriorityMedium
	}

	res, err := q.ExecContext(ctx, `
		INSERT INTO items (
			type, title, description, content, status_id, priority,
			version, category, start_date, end_date, summary,
			embedding, search_index, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		item.Type, item.Title, item.Description, item.Content, item.StatusID, string(item.Priority),
		item.Version, item.Category, dateString(item.StartDate), dateString(item.EndDate), item.Summary,
		packEmbedding(item.Embedding), item.SearchIndex, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read new item id: %w", err)
	}
	item.ID = id
	return nil
}

// GetItem retrieves the base item row by id, without tags/keywords/concepts.
// Returns nil, nil when not found.
func GetItem(ctx context.Context, q Querier, id int64) (*Item, error) {
	row := q.QueryRowContext(ctx, `
		SELECT i.id, i.type, i.title, i.description, i.content, i.status_id, s.name,
		       i.priority, i.version, i.category, i.start_date, i.end_date, i.summary,
		       i.embedding, i.search_index, i.created_at, i.updated_at
		FROM items i
		JOIN statuses s ON s.id = i.status_id
		WHERE i.id = ?
	`, id)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return item, err
}

// GetItemFull retrieves the item row plus its tags, keywords, and concepts.
func GetItemFull(ctx context.Context, q Querier, id int64) (*Item, error) {
	item, err := GetItem(ctx, q, id)
	if err != nil || item == nil {
		return item, err
	}
	if item.Tags, err = GetItemTags(ctx, q, id); err != nil {
		return nil, err
	}
	if item.Keywords, err = GetItemKeywords(ctx, q, id); err != nil {
		return nil, err
	}
	if item.Concepts, err = GetItemConcepts(ctx, q, id); err != nil {
		return nil, err
	}
	// The embedding store (item_embeddings) is authoritative; the items
	// table's own embedding column is left null and superseded here.
	vec, err := embedstore.Get(ctx, q, id)
	if err != nil {
		return nil, err
	}
	item.Embedding = vec
	return item, nil
}

func scanItem(row *sql.Row) (*Item, error) {
	var item Item
	var description, content, version, category, startDate, endDate, summary, searchIndex sql.NullString
	var embedding []byte

	err := row.Scan(
		&item.ID, &item.Type, &item.Title, &description, &content, &item.StatusID, &item.StatusName,
		&item.Priority, &version, &category, &startDate, &endDate, &summary,
		&embedding, &searchIndex, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.Description = nullableString(description)
	item.Content = nullableString(content)
	item.Version = nullableString(version)
	item.Category = nullableString(category)
	item.Summary = nullableString(summary)
	item.SearchIndex = nullableString(searchIndex)
	item.StartDate = parseDateString(startDate)
	item.EndDate = parseDateString(endDate)
	item.Embedding = unpackEmbedding(embedding)

	return &item, nil
}

// UpdateItemFields applies a dynamic partial update built by the Item Model
// layer (only fields present in the caller's map are touched; a nil value
// clears the column to NULL), then bumps updated_at. This mirrors the
// teacher's dynamic-SET-clause UpdateMemory.
func UpdateItemFields(ctx context.Context, q Querier, id int64, set map[string]any) error {
	if len(set) == 0 {
		// update_item(id, {}) is a no-op per P2.
		return nil
	}

	var clauses []string
	var args []any
	for col, val := range set {
		clauses = append(clauses, col+" = ?")
		args = append(args, val)
	}
	clauses = append(clauses, "updated_at = ?")
	args = append(args, time.Now().UTC())
	args = append(args, id)

	query := fmt.Sprintf("UPDATE items SET %s WHERE id = ?", strings.Join(clauses, ", "))
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update item %d: %w", id, err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("item %d not found", id)
	}
	return nil
}

// DeleteItem removes an item; ON DELETE CASCADE on every junction/relation/
// lexical/embedding table does the cascade work spec §3's Lifecycle
// paragraph and P3 require.
func DeleteItem(ctx context.Context, q Querier, id int64) error {
	res, err := q.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item %d: %w", id, err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("item %d not found", id)
	}
	return nil
}

// ListItems returns items matching filters, sorted and paginated per
// spec §4.7.1.
func ListItems(ctx context.Context, q Querier, f *ItemFilters) ([]*Item, error) {
	var whereClauses []string
	var args []any

	if len(f.Types) > 0 {
		whereClauses = append(whereClauses, "i.type IN ("+placeholders(len(f.Types))+")")
		for _, t := range f.Types {
			args = append(args, t)
		}
	}
	if len(f.StatusIDs) > 0 {
		whereClauses = append(whereClauses, "i.status_id IN ("+placeholders(len(f.StatusIDs))+")")
		for _, s := range f.StatusIDs {
			args = append(args, s)
		}
	}
	if len(f.Priorities) > 0 {
		whereClauses = append(whereClauses, "i.priority IN ("+placeholders(len(f.Priorities))+")")
		for _, p := range f.Priorities {
			args = append(args, p)
		}
	}
	if len(f.TagNames) > 0 {
		whereClauses = append(whereClauses, fmt.Sprintf(`i.id IN (
			SELECT it.item_id FROM item_tags it
			JOIN tags t ON t.id = it.tag_id
			WHERE t.name IN (%s)
		)`, placeholders(len(f.TagNames))))
		for _, t := range f.TagNames {
			args = append(args, t)
		}
	}

	query := `
		SELECT i.id, i.type, i.title, i.description, i.content, i.status_id, s.name,
		       i.priority, i.version, i.category, i.start_date, i.end_date, i.summary,
		       i.embedding, i.search_index, i.created_at, i.updated_at
		FROM items i
		JOIN statuses s ON s.id = i.status_id
	`
	if len(whereClauses) > 0 {
		query += " WHERE " + strings.Join(whereClauses, " AND ")
	}
	query += " ORDER BY " + orderByClause(f.SortBy, f.SortOrder)

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, maxInt(f.Offset, 0))

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// priorityCaseSQL generates the CASE expression implementing the
// CRITICAL > HIGH > MEDIUM > LOW > MINIMAL total order (spec §4.7.1) from
// the single source of truth, ValidPriorities and Priority.Rank, instead
// of duplicating the ranking in SQL by hand.
func priorityCaseSQL() string {
	var sb strings.Builder
	sb.WriteString("CASE i.priority")
	for _, p := range ValidPriorities {
		fmt.Fprintf(&sb, " WHEN '%s' THEN %d", string(p), p.Rank())
	}
	fmt.Fprintf(&sb, " ELSE %d END", len(ValidPriorities))
	return sb.String()
}

// orderByClause builds the ORDER BY for list/priority sort; priority uses a
// CASE expression implementing CRITICAL > HIGH > MEDIUM > LOW > MINIMAL
// since that order isn't lexical (spec §4.7.1).
func orderByClause(sortBy, sortOrder string) string {
	dir := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		dir = "ASC"
	}

	switch sortBy {
	case "priority":
		return fmt.Sprintf("%s %s, i.id ASC", priorityCaseSQL(), dir)
	case "created":
		return fmt.Sprintf("i.created_at %s, i.id ASC", dir)
	default:
		return fmt.Sprintf("i.updated_at %s, i.id ASC", dir)
	}
}

func scanItems(rows *sql.Rows) ([]*Item, error) {
	var out []*Item
	for rows.Next() {
		var item Item
		var description, content, version, category, startDate, endDate, summary, searchIndex sql.NullString
		var embedding []byte

		err := rows.Scan(
			&item.ID, &item.Type, &item.Title, &description, &content, &item.StatusID, &item.StatusName,
			&item.Priority, &version, &category, &startDate, &endDate, &summary,
			&embedding, &searchIndex, &item.CreatedAt, &item.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		item.Description = nullableString(description)
		item.Content = nullableString(content)
		item.Version = nullableString(version)
		item.Category = nullableString(category)
		item.Summary = nullableString(summary)
		item.SearchIndex = nullableString(searchIndex)
		item.StartDate = parseDateString(startDate)
		item.EndDate = parseDateString(endDate)
		item.Embedding = unpackEmbedding(embedding)
		out = append(out, &item)
	}
	return out, rows.Err()
}

// ReplaceItemTags replaces the full set of tag links for an item (Write
// Pipeline step 6: "replace, not merge").
func ReplaceItemTags(ctx context.Context, q Querier, itemID int64, tagIDs []int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM item_tags WHERE item_id = ?`, itemID); err != nil {
		return fmt.Errorf("failed to clear tags for item %d: %w", itemID, err)
	}
	for _, tagID := range tagIDs {
		if _, err := q.ExecContext(ctx, `INSERT OR IGNORE INTO item_tags (item_id, tag_id) VALUES (?, ?)`, itemID, tagID); err != nil {
			return fmt.Errorf("failed to link tag %d to item %d: %w", tagID, itemID, err)
		}
	}
	return nil
}

// ReplaceItemKeywords replaces the full set of weighted keyword links.
func ReplaceItemKeywords(ctx context.Context, q Querier, itemID int64, keywords []KeywordWeight) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM item_keywords WHERE item_id = ?`, itemID); err != nil {
		return fmt.Errorf("failed to clear keywords for item %d: %w", itemID, err)
	}
	for _, kw := range keywords {
		id, err := EnsureKeyword(ctx, q, kw.Name)
		if err != nil {
			return err
		}
		if _, err := q.ExecContext(ctx, `INSERT OR IGNORE INTO item_keywords (item_id, keyword_id, weight) VALUES (?, ?, ?)`, itemID, id, kw.Weight); err != nil {
			return fmt.Errorf("failed to link keyword %q to item %d: %w", kw.Name, itemID, err)
		}
	}
	return nil
}

// ReplaceItemConcepts replaces the full set of weighted concept links.
func ReplaceItemConcepts(ctx context.Context, q Querier, itemID int64, concepts []ConceptWeight) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM item_concepts WHERE item_id = ?`, itemID); err != nil {
		return fmt.Errorf("failed to clear concepts for item %d: %w", itemID, err)
	}
	for _, c := range concepts {
		id, err := EnsureConcept(ctx, q, c.Name)
		if err != nil {
			return err
		}
		if _, err := q.ExecContext(ctx, `INSERT OR IGNORE INTO item_concepts (item_id, concept_id, weight) VALUES (?, ?, ?)`, itemID, id, c.Weight); err != nil {
			return fmt.Errorf("failed to link concept %q to item %d: %w", c.Name, itemID, err)
		}
	}
	return nil
}

// GetItemTags returns the normalized tag names linked to an item.
func GetItemTags(ctx context.Context, q Querier, itemID int64) ([]string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT t.name FROM tags t
		JOIN item_tags it ON it.tag_id = t.id
		WHERE it.item_id = ? ORDER BY t.name
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags for item %d: %w", itemID, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// GetItemKeywords returns the weighted keywords linked to an item.
func GetItemKeywords(ctx context.Context, q Querier, itemID int64) ([]KeywordWeight, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT k.name, ik.weight FROM keywords k
		JOIN item_keywords ik ON ik.keyword_id = k.id
		WHERE ik.item_id = ? ORDER BY ik.weight DESC
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list keywords for item %d: %w", itemID, err)
	}
	defer rows.Close()

	var out []KeywordWeight
	for rows.Next() {
		var kw KeywordWeight
		if err := rows.Scan(&kw.Name, &kw.Weight); err != nil {
			return nil, err
		}
		out = append(out, kw)
	}
	return out, rows.Err()
}

// GetItemConcepts returns the weighted concepts linked to an item.
func GetItemConcepts(ctx context.Context, q Querier, itemID int64) ([]ConceptWeight, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT c.name, ic.weight FROM concepts c
		JOIN item_concepts ic ON ic.concept_id = c.id
		WHERE ic.item_id = ? ORDER BY ic.weight DESC
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list concepts for item %d: %w", itemID, err)
	}
	defer rows.Close()

	var out []ConceptWeight
	for rows.Next() {
		var c ConceptWeight
		if err := rows.Scan(&c.Name, &c.Weight); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "?"
	}
	return strings.Join(parts, ", ")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func dateString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}

func parseDateString(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", ns.String)
	if err != nil {
		return nil
	}
	return &t
}
