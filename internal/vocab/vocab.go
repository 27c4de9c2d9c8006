// Package vocab manages the lifecycle of the tag/keyword/concept
// vocabularies once they exist: renaming, deleting (optionally forcing
// through still-in-use rows), and reporting rows no item references any
// more (spec §3 I5, §4.3). The Storage Engine already holds the table-level
// mechanics (internal/store's ops_vocab.go); this package is the
// caller-facing surface get_garbage_vocab, rename_tag, and delete_vocab
// dispatch through, the same split writepipeline draws between storage
// primitives and orchestration.
package vocab

import (
	"context"
	"fmt"

	"github.com/shirokuma-library/mcp-knowledge-base/internal/store"
)

// Kind selects which of the three parallel vocabulary tables an operation
// targets.
type Kind string

const (
	KindTag     Kind = "tag"
	KindKeyword Kind = "keyword"
	KindConcept Kind = "concept"
)

// Garbage reports every tag/keyword/concept with zero item usages, the
// query spec §3's I5 promises ("garbage reported by a garbage query").
func Garbage(ctx context.Context, q store.Querier) (*store.GarbageVocab, error) {
	return store.FindGarbageVocab(ctx, q)
}

// RenameTag renames a tag in place. Only tags expose a rename operation:
// keywords and concepts are enrichment-derived and regenerated on the next
// write rather than edited directly (spec §4.3).
func RenameTag(ctx context.Context, q store.Querier, id int64, newName string) error {
	return store.RenameTag(ctx, q, id, newName)
}

// Delete removes a vocabulary entry of the given kind. It refuses when the
// entry is still attached to at least one item unless force is set, in
// which case the junction rows are cleared first (spec §4.3).
func Delete(ctx context.Context, q store.Querier, kind Kind, id int64, force bool) error {
	switch kind {
	case KindTag:
		return store.DeleteTag(ctx, q, id, force)
	case KindKeyword:
		return store.DeleteKeyword(ctx, q, id, force)
	case KindConcept:
		return store.DeleteConcept(ctx, q, id, force)
	default:
		return fmt.Errorf("unknown vocabulary kind: %s", kind)
	}
}
