package itemmodel

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/shirokuma-library/mcp-knowledge-base/internal/coreerr"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/store"
)

// typeRegexp is the dynamic type token spec §3 requires: lowercase,
// digits, underscores only.
var typeRegexp = regexp.MustCompile(`^[a-z0-9_]+$`)

const (
	maxTitleLen       = 512
	maxDescriptionLen = 2048 // 2 KB
	dateLayout        = "2006-01-02"
)

// CreateRequest is a validated create_item payload, ready for the Write
// Pipeline. Nullable fields use plain pointers since on create an absent
// field and an explicit null mean the same thing: leave it unset.
type CreateRequest struct {
	Type        string
	Title       string
	Description *string
	Content     *string
	Status      string // resolved name, defaults to "Open"
	Priority    store.Priority
	Version     *string
	Category    *string
	StartDate   *time.Time
	EndDate     *time.Time
	Tags        []string
	Related     []int64
	Bidirectional bool
}

// UpdateRequest is a validated update_item payload. Each optional field is a
// Patch so the Write Pipeline can distinguish "not sent" from "sent null".
type UpdateRequest struct {
	Type        Patch[string]
	Title       Patch[string]
	Description Patch[string]
	Content     Patch[string]
	Status      Patch[string]
	Priority    Patch[store.Priority]
	Version     Patch[string]
	Category    Patch[string]
	StartDate   Patch[time.Time]
	EndDate     Patch[time.Time]
	Tags        Patch[[]string]
	Related     []int64
	Bidirectional bool
}

// ValidateType checks the type token against the dynamic-type regex
// (spec §3 I2, §4.2).
func ValidateType(t string) error {
	if !typeRegexp.MatchString(t) {
		return coreerr.New(coreerr.KindInvalidType, "type must match ^[a-z0-9_]+$: "+t).
			WithDetails(map[string]any{"type": t})
	}
	return nil
}

// ValidateTitle checks title non-empty-after-trim and within the length
// bound (spec §3, §4.2).
func ValidateTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", coreerr.New(coreerr.KindValidation, "title must not be empty")
	}
	if len(trimmed) > maxTitleLen {
		return "", coreerr.New(coreerr.KindValidation, "title exceeds maximum length").
			WithDetails(map[string]any{"field": "title", "max_len": maxTitleLen})
	}
	return trimmed, nil
}

// ValidateDescription checks the optional short-string bound.
func ValidateDescription(desc string) error {
	if len(desc) > maxDescriptionLen {
		return coreerr.New(coreerr.KindValidation, "description exceeds maximum length").
			WithDetails(map[string]any{"field": "description", "max_len": maxDescriptionLen})
	}
	return nil
}

// ValidatePriority checks p against the enumerated set (spec §3, §4.2).
func ValidatePriority(p string) (store.Priority, error) {
	if !store.IsValidPriority(p) {
		return "", coreerr.New(coreerr.KindInvalidPriority, "priority must be one of the enumerated levels: "+p).
			WithDetails(map[string]any{"priority": p, "valid": store.ValidPriorities})
	}
	return store.Priority(p), nil
}

// ParseDate parses an ISO-8601 YYYY-MM-DD date strictly.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, coreerr.New(coreerr.KindInvalidDate, "date must be YYYY-MM-DD: "+s).
			WithDetails(map[string]any{"value": s})
	}
	return t, nil
}

// ValidateDateRange enforces start_date <= end_date when both are present.
func ValidateDateRange(start, end *time.Time) error {
	if start != nil && end != nil && start.After(*end) {
		return coreerr.New(coreerr.KindInvalidDate, "start_date must not be after end_date")
	}
	return nil
}

// NormalizeTags lowercases and trims each tag, then dedupes while
// preserving first-seen order (spec §3, §4.2).
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	var out []string
	for _, t := range tags {
		norm := strings.ToLower(strings.TrimSpace(t))
		if norm == "" || seen[norm] {
			continue
		}
		seen[norm] = true
		out = append(out, norm)
	}
	return out
}

// SortedTagNames gives a deterministic order over a tag set, independent of
// whatever order the storage layer happened to return them in. The Write
// Pipeline uses this to build the tag text that feeds the lexical index
// (internal/writepipeline's rebuildIndexes), and search.Search uses it the
// same way when building phrase-match text, so reindexing the same tag set
// always produces identical document text.
func SortedTagNames(tags []string) []string {
	out := append([]string(nil), tags...)
	sort.Strings(out)
	return out
}
