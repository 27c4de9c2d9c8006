// Package itemwire holds the protocol-agnostic wire projections and raw
// JSON-argument decoding shared by the MCP adapter and the REST mirror.
// Neither adapter carries its own copy of the embedding-stripping logic
// (spec invariant P7: the embedding vector is never serialized to API
// responses) or the three-way update-field semantics (§4.2); both sit here
// once and get used from both transports.
package itemwire

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shirokuma-library/mcp-knowledge-base/internal/coreerr"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/itemmodel"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/search"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/store"
)

// Item is store.Item minus the embedding vector.
type Item struct {
	ID          int64                 `json:"id"`
	Type        string                `json:"type"`
	Title       string                `json:"title"`
	Description *string               `json:"description,omitempty"`
	Content     *string               `json:"content,omitempty"`
	Status      string                `json:"status"`
	Priority    string                `json:"priority"`
	Version     *string               `json:"version,omitempty"`
	Category    *string               `json:"category,omitempty"`
	StartDate   *string               `json:"start_date,omitempty"`
	EndDate     *string               `json:"end_date,omitempty"`
	Summary     *string               `json:"summary,omitempty"`
	Tags        []string              `json:"tags,omitempty"`
	Keywords    []store.KeywordWeight `json:"keywords,omitempty"`
	Concepts    []store.ConceptWeight `json:"concepts,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

func ToItem(item *store.Item) *Item {
	if item == nil {
		return nil
	}
	w := &Item{
		ID:          item.ID,
		Type:        item.Type,
		Title:       item.Title,
		Description: item.Description,
		Content:     item.Content,
		Status:      item.StatusName,
		Priority:    string(item.Priority),
		Version:     item.Version,
		Category:    item.Category,
		Summary:     item.Summary,
		Tags:        item.Tags,
		Keywords:    item.Keywords,
		Concepts:    item.Concepts,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
	if item.StartDate != nil {
		s := item.StartDate.Format("2006-01-02")
		w.StartDate = &s
	}
	if item.EndDate != nil {
		s := item.EndDate.Format("2006-01-02")
		w.EndDate = &s
	}
	return w
}

func ToItems(items []*store.Item) []*Item {
	out := make([]*Item, len(items))
	for i, item := range items {
		out[i] = ToItem(item)
	}
	return out
}

// Result is a scored search/related-item result, stripped the same way.
type Result struct {
	Item   *Item   `json:"item"`
	Score  float64 `json:"score"`
	Source string  `json:"source,omitempty"`
}

func ToResults(results []search.Result) []Result {
	out := make([]Result, len(results))
	for i, r := range results {
		out[i] = Result{Item: ToItem(r.Item), Score: r.Score, Source: r.Source}
	}
	return out
}

// SplitManualComputed partitions related-item results by the manual-vs-
// computed relation distinction (spec §5 Relations).
func SplitManualComputed(results []search.Result) (manual, computed []Result) {
	wired := ToResults(results)
	manual = make([]Result, 0, len(wired))
	computed = make([]Result, 0, len(wired))
	for _, r := range wired {
		if r.Source == "manual" {
			manual = append(manual, r)
		} else {
			computed = append(computed, r)
		}
	}
	return manual, computed
}

// ErrorBody renders err as the {code, message, details} shape coreerr
// errors carry on the wire (spec §7), where code is the error kind; any
// other error gets the kind KindOf reports and its plain message.
func ErrorBody(err error) map[string]any {
	if e, ok := coreerr.As(err); ok {
		return map[string]any{"code": e.Kind, "message": e.Message, "details": e.Details}
	}
	return map[string]any{"code": coreerr.KindOf(err), "message": err.Error()}
}

// CreateBody is the create_item argument/body shape shared by both the MCP
// adapter's tools/call arguments and the REST mirror's JSON body.
type CreateBody struct {
	Type          string   `json:"type"`
	Title         string   `json:"title"`
	Description   *string  `json:"description,omitempty"`
	Content       *string  `json:"content,omitempty"`
	Status        *string  `json:"status,omitempty"`
	Priority      *string  `json:"priority,omitempty"`
	Version       *string  `json:"version,omitempty"`
	Category      *string  `json:"category,omitempty"`
	StartDate     *string  `json:"start_date,omitempty"`
	EndDate       *string  `json:"end_date,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Related       []int64  `json:"related,omitempty"`
	Bidirectional bool     `json:"bidirectional,omitempty"`
}

// RawCreate converts the body into an itemmodel.RawCreate ready for
// itemmodel.ValidateCreate.
func (b CreateBody) RawCreate() *itemmodel.RawCreate {
	return &itemmodel.RawCreate{
		Type:          b.Type,
		Title:         b.Title,
		Description:   b.Description,
		Content:       b.Content,
		Status:        b.Status,
		Priority:      b.Priority,
		Version:       b.Version,
		Category:      b.Category,
		StartDate:     b.StartDate,
		EndDate:       b.EndDate,
		Tags:          b.Tags,
		Related:       b.Related,
		Bidirectional: b.Bidirectional,
	}
}

// RawUpdateFromArgs builds an itemmodel.RawUpdate directly off a loosely
// typed arguments map (tools/call arguments, or a REST body decoded into
// map[string]interface{}) so it can tell "key absent" from "key present
// with JSON null" from "key present with a value" for every nullable field
// (spec §4.2 update semantics).
func RawUpdateFromArgs(args map[string]interface{}) (*itemmodel.RawUpdate, error) {
	raw := &itemmodel.RawUpdate{}

	if v, ok := args["type"]; ok && v != nil {
		s, _ := v.(string)
		raw.Type = &s
	}
	if v, ok := args["title"]; ok && v != nil {
		s, _ := v.(string)
		raw.Title = &s
	}
	if v, ok := args["status"]; ok && v != nil {
		s, _ := v.(string)
		raw.Status = &s
	}
	if v, ok := args["priority"]; ok && v != nil {
		s, _ := v.(string)
		raw.Priority = &s
	}

	raw.Description = NullableStringField(args, "description")
	raw.Content = NullableStringField(args, "content")
	raw.Version = NullableStringField(args, "version")
	raw.Category = NullableStringField(args, "category")
	raw.StartDate = NullableStringField(args, "start_date")
	raw.EndDate = NullableStringField(args, "end_date")

	if v, ok := args["tags"]; ok {
		if v == nil {
			empty := []string{}
			raw.Tags = &empty
		} else {
			list, ok := v.([]interface{})
			if !ok {
				return nil, fmt.Errorf("tags must be an array of strings")
			}
			tags := make([]string, 0, len(list))
			for _, item := range list {
				str, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("tags must be an array of strings")
				}
				tags = append(tags, str)
			}
			raw.Tags = &tags
		}
	}

	if v, ok := args["related"]; ok && v != nil {
		list, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("related must be an array of item ids")
		}
		ids := make([]int64, 0, len(list))
		for _, item := range list {
			f, ok := item.(float64)
			if !ok {
				return nil, fmt.Errorf("related must be an array of item ids")
			}
			ids = append(ids, int64(f))
		}
		raw.Related = ids
	}
	if v, ok := args["bidirectional"]; ok && v != nil {
		b, _ := v.(bool)
		raw.Bidirectional = b
	}

	return raw, nil
}

// NullableStringField returns nil if key is absent, a non-nil pointer to a
// nil *string if key is present with JSON null, and a pointer to a pointer
// to the value otherwise.
func NullableStringField(args map[string]interface{}, key string) **string {
	v, ok := args[key]
	if !ok {
		return nil
	}
	if v == nil {
		var p *string
		return &p
	}
	s, _ := v.(string)
	sp := &s
	return &sp
}

// DecodeArgs round-trips a loosely-typed arguments map through JSON into a
// concrete params struct.
func DecodeArgs(args map[string]interface{}, into interface{}) error {
	b, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("failed to marshal arguments: %w", err)
	}
	if err := json.Unmarshal(b, into); err != nil {
		return fmt.Errorf("failed to decode arguments: %w", err)
	}
	return nil
}
