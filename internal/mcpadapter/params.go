package mcpadapter

import "github.com/shirokuma-library/mcp-knowledge-base/internal/itemwire"

// CreateItemParams is the create_item tool's argument shape (spec §6 table).
type CreateItemParams = itemwire.CreateBody

// GetItemParams is get_item's argument shape.
type GetItemParams struct {
	ID int64 `json:"id"`
}

// UpdateItemParams is update_item's argument shape, limited to the fields
// that carry no absent/null/value distinction. handleUpdateItem does not
// decode into it: it reads "id" straight from the arguments map and passes
// the map to itemwire.RawUpdateFromArgs, which tells "absent" (key missing)
// from "explicitly null" (JSON null) from "set" (non-null) per field.
type UpdateItemParams struct {
	ID            int64    `json:"id"`
	Related       []int64  `json:"related,omitempty"`
	Bidirectional bool     `json:"bidirectional,omitempty"`
}

// DeleteItemParams is delete_item's argument shape.
type DeleteItemParams struct {
	ID int64 `json:"id"`
}

// ListItemsParams is list_items' argument shape.
type ListItemsParams struct {
	Type       *string  `json:"type,omitempty"`
	Types      []string `json:"types,omitempty"`
	Status     []string `json:"status,omitempty"`
	Priority   []string `json:"priority,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	SortBy     string   `json:"sortBy,omitempty"`
	SortOrder  string   `json:"sortOrder,omitempty"`
	Limit      int      `json:"limit,omitempty"`
	Offset     int      `json:"offset,omitempty"`
}

// SearchItemsParams is search_items' argument shape.
type SearchItemsParams struct {
	Query     string   `json:"query"`
	Types     []string `json:"types,omitempty"`
	Status    []string `json:"status,omitempty"`
	Priority  []string `json:"priority,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Limit     int      `json:"limit,omitempty"`
}

// HybridWeightsParams carries the optional per-strategy weight overrides for
// get_related_items (spec §4.7.3).
type HybridWeightsParams struct {
	Keywords  *float64 `json:"keywords,omitempty"`
	Concepts  *float64 `json:"concepts,omitempty"`
	Embedding *float64 `json:"embedding,omitempty"`
}

// GetRelatedItemsParams is get_related_items' argument shape.
type GetRelatedItemsParams struct {
	ID               int64                `json:"id"`
	Strategy         string               `json:"strategy,omitempty"`
	Weights          *HybridWeightsParams `json:"weights,omitempty"`
	Depth            int                  `json:"depth,omitempty"`
	IncludeRelations bool                 `json:"includeRelations,omitempty"`
	Limit            int                  `json:"limit,omitempty"`
}

// FindSimilarItemsParams is find_similar_items' argument shape.
type FindSimilarItemsParams struct {
	ID    int64 `json:"id"`
	Limit int   `json:"limit,omitempty"`
}

// AddRelationsParams is add_relations' argument shape.
type AddRelationsParams struct {
	SourceID      int64   `json:"source_id"`
	TargetIDs     []int64 `json:"target_ids"`
	Bidirectional bool    `json:"bidirectional,omitempty"`
}

// GetTagsParams is get_tags' argument shape.
type GetTagsParams struct {
	Prefix string `json:"prefix,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// UpdateCurrentStateParams is update_current_state's argument shape (spec
// §4.9).
type UpdateCurrentStateParams struct {
	Content  string   `json:"content,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Metadata string   `json:"metadata,omitempty"`
}

// CheckpointParams is checkpoint's argument shape.
type CheckpointParams struct {
	Name string `json:"name"`
}

// RemoveRelationParams is remove_relation's argument shape.
type RemoveRelationParams struct {
	SourceID int64 `json:"source_id"`
	TargetID int64 `json:"target_id"`
}

// RenameTagParams is rename_tag's argument shape.
type RenameTagParams struct {
	ID      int64  `json:"id"`
	NewName string `json:"new_name"`
}

// DeleteVocabParams is delete_vocab's argument shape (spec §4.3
// rename/delete-with-force).
type DeleteVocabParams struct {
	Kind  string `json:"kind"`
	ID    int64  `json:"id"`
	Force bool   `json:"force,omitempty"`
}

// GetGarbageVocabParams is get_garbage_vocab's argument shape; it takes no
// arguments but needs a type so itemwire.DecodeArgs has somewhere to land.
type GetGarbageVocabParams struct{}
