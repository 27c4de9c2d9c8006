package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shirokuma-library/mcp-knowledge-base/internal/coreerr"
)

// vocabulary names the three parallel tables tags/keywords/concepts share
// ensure-exists and rename semantics for (spec §4.3).
type vocabulary struct {
	table      string // "tags", "keywords", "concepts"
	junction   string // "item_tags", "item_keywords", "item_concepts"
	junctionFK string // "tag_id", "keyword_id", "concept_id"
}

var (
	tagVocab      = vocabulary{"tags", "item_tags", "tag_id"}
	keywordVocab  = vocabulary{"keywords", "item_keywords", "keyword_id"}
	conceptVocab  = vocabulary{"concepts", "item_concepts", "concept_id"}
)

// ensureVocabEntry inserts name into the given vocabulary if missing, and
// returns its id either way. Concurrent duplicate inserts collapse onto the
// unique-name constraint; a conflict here just means another writer won the
// race, so we re-select rather than fail (spec §4.3).
func ensureVocabEntry(ctx context.Context, q Querier, v vocabulary, name string) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, fmt.Sprintf(`SELECT id FROM %s WHERE name = ?`, v.table), name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to look up %s %q: %w", v.table, name, err)
	}

	res, err := q.ExecContext(ctx, fmt.Sprintf(`INSERT OR IGNORE INTO %s (name) VALUES (?)`, v.table), name)
	if err != nil {
		return 0, fmt.Errorf("failed to insert %s %q: %w", v.table, name, err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read new %s id: %w", v.table, err)
	}
	if id != 0 {
		return id, nil
	}

	// INSERT OR IGNORE no-op: another writer already inserted it.
	if err := q.QueryRowContext(ctx, fmt.Sprintf(`SELECT id FROM %s WHERE name = ?`, v.table), name).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to re-read %s %q after conflict: %w", v.table, name, err)
	}
	return id, nil
}

// EnsureTag ensures a tag row exists for name, returning its id.
func EnsureTag(ctx context.Context, q Querier, name string) (int64, error) {
	return ensureVocabEntry(ctx, q, tagVocab, name)
}

// EnsureKeyword ensures a keyword row exists for name, returning its id.
func EnsureKeyword(ctx context.Context, q Querier, name string) (int64, error) {
	return ensureVocabEntry(ctx, q, keywordVocab, name)
}

// EnsureConcept ensures a concept row exists for name, returning its id.
func EnsureConcept(ctx context.Context, q Querier, name string) (int64, error) {
	return ensureVocabEntry(ctx, q, conceptVocab, name)
}

// VocabUsage is a (name, usage_count) pair returned by getTags() (spec §4.3).
type VocabUsage struct {
	Name  string
	Count int
}

// ListTagUsage returns every tag with its item usage count, optionally
// filtered by prefix, for the get_tags tool (spec §6).
func ListTagUsage(ctx context.Context, q Querier, prefix string, limit int) ([]VocabUsage, error) {
	query := `
		SELECT t.name, COUNT(it.item_id) AS usage_count
		FROM tags t
		LEFT JOIN item_tags it ON it.tag_id = t.id
		WHERE (? = '' OR t.name LIKE ? || '%')
		GROUP BY t.id
		ORDER BY usage_count DESC, t.name ASC
	`
	args := []any{prefix, prefix}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	var out []VocabUsage
	for rows.Next() {
		var u VocabUsage
		if err := rows.Scan(&u.Name, &u.Count); err != nil {
			return nil, fmt.Errorf("failed to scan tag usage: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// RenameTag renames a tag and, because the name is keyed by the junction's
// foreign key rather than its text, every junction row continues pointing at
// the same tag id — no junction rewrite is needed, but we still do it inside
// one transaction the caller controls to keep the rename atomic with any
// concurrent read.
func RenameTag(ctx context.Context, q Querier, id int64, newName string) error {
	res, err := q.ExecContext(ctx, `UPDATE tags SET name = ? WHERE id = ?`, newName, id)
	if err != nil {
		return fmt.Errorf("failed to rename tag %d: %w", id, err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return coreerr.New(coreerr.KindNotFound, fmt.Sprintf("tag %d not found", id))
	}
	return nil
}

// DeleteTag removes a tag, refusing when it is still in use unless force is
// set, in which case junction rows are removed first (spec §4.3).
func DeleteTag(ctx context.Context, q Querier, id int64, force bool) error {
	return deleteVocabEntry(ctx, q, tagVocab, id, force)
}

// DeleteKeyword removes a keyword under the same usage-count policy as
// DeleteTag.
func DeleteKeyword(ctx context.Context, q Querier, id int64, force bool) error {
	return deleteVocabEntry(ctx, q, keywordVocab, id, force)
}

// DeleteConcept removes a concept under the same usage-count policy as
// DeleteTag.
func DeleteConcept(ctx context.Context, q Querier, id int64, force bool) error {
	return deleteVocabEntry(ctx, q, conceptVocab, id, force)
}

func deleteVocabEntry(ctx context.Context, q Querier, v vocabulary, id int64, force bool) error {
	var count int
	if err := q.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = ?`, v.junction, v.junctionFK), id).Scan(&count); err != nil {
		return fmt.Errorf("failed to count usages of %s %d: %w", v.table, id, err)
	}
	if count > 0 && !force {
		return coreerr.New(coreerr.KindConflict, fmt.Sprintf("%s %d is used by %d item(s)", v.table, id, count))
	}
	if count > 0 {
		if _, err := q.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE %s = ?`, v.junction, v.junctionFK), id); err != nil {
			return fmt.Errorf("failed to clear %s junctions for %d: %w", v.table, id, err)
		}
	}

	res, err := q.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, v.table), id)
	if err != nil {
		return fmt.Errorf("failed to delete %s %d: %w", v.table, id, err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return coreerr.New(coreerr.KindNotFound, fmt.Sprintf("%s %d not found", v.table, id))
	}
	return nil
}

// GarbageVocab reports unused vocabulary rows across all three tables
// (spec §3 I5: "reported by a garbage query").
type GarbageVocab struct {
	Tags     []string
	Keywords []string
	Concepts []string
}

// FindGarbageVocab lists every tag/keyword/concept with zero item usages.
func FindGarbageVocab(ctx context.Context, q Querier) (*GarbageVocab, error) {
	g := &GarbageVocab{}
	for _, spec := range []struct {
		v   vocabulary
		out *[]string
	}{
		{tagVocab, &g.Tags},
		{keywordVocab, &g.Keywords},
		{conceptVocab, &g.Concepts},
	} {
		names, err := unusedNames(ctx, q, spec.v)
		if err != nil {
			return nil, err
		}
		*spec.out = names
	}
	return g, nil
}

func unusedNames(ctx context.Context, q Querier, v vocabulary) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT t.name FROM %s t
		LEFT JOIN %s j ON j.%s = t.id
		WHERE j.%s IS NULL
		ORDER BY t.name
	`, v.table, v.junction, v.junctionFK, v.junctionFK)

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to find garbage %s: %w", v.table, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan garbage %s: %w", v.table, err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}
