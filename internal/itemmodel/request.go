package itemmodel

import (
	"time"
)

// RawCreate is the unvalidated create_item payload as it arrives from a
// protocol adapter (MCP tool call or REST body) — every optional field is a
// plain pointer/slice, nil meaning "absent".
type RawCreate struct {
	Type        string
	Title       string
	Description *string
	Content     *string
	Status      *string
	Priority    *string
	Version     *string
	Category    *string
	StartDate   *string
	EndDate     *string
	Tags        []string
	Related       []int64
	Bidirectional bool
}

// RawUpdate is the unvalidated update_item payload. Every optional field is
// a **string (or equivalent double pointer) so the adapter layer can convey
// "field omitted" (outer nil) versus "field explicitly set to null" (outer
// non-nil, inner nil) versus "field set to a value" (both non-nil). The
// stringPatch/datePatch helpers below turn these into Patch values;
// itemwire.RawUpdateFromArgs builds them from decoded JSON arguments.
type RawUpdate struct {
	Type        *string
	Title       *string
	Description **string
	Content     **string
	Status      *string
	Priority    *string
	Version     **string
	Category    **string
	StartDate   **string
	EndDate     **string
	Tags        *[]string
	Related       []int64
	Bidirectional bool
}

// ValidateCreate validates a raw create_item payload end to end, returning a
// fully normalized CreateRequest or the first coreerr encountered.
func ValidateCreate(raw *RawCreate) (*CreateRequest, error) {
	if err := ValidateType(raw.Type); err != nil {
		return nil, err
	}
	title, err := ValidateTitle(raw.Title)
	if err != nil {
		return nil, err
	}

	req := &CreateRequest{
		Type:          raw.Type,
		Title:         title,
		Status:        "Open",
		Priority:      "MEDIUM",
		Tags:          NormalizeTags(raw.Tags),
		Related:       raw.Related,
		Bidirectional: raw.Bidirectional,
	}

	if raw.Description != nil {
		if err := ValidateDescription(*raw.Description); err != nil {
			return nil, err
		}
		req.Description = raw.Description
	}
	req.Content = raw.Content
	req.Version = raw.Version
	req.Category = raw.Category

	if raw.Status != nil && *raw.Status != "" {
		req.Status = *raw.Status
	}
	if raw.Priority != nil {
		p, err := ValidatePriority(*raw.Priority)
		if err != nil {
			return nil, err
		}
		req.Priority = p
	}

	if raw.StartDate != nil {
		t, err := ParseDate(*raw.StartDate)
		if err != nil {
			return nil, err
		}
		req.StartDate = &t
	}
	if raw.EndDate != nil {
		t, err := ParseDate(*raw.EndDate)
		if err != nil {
			return nil, err
		}
		req.EndDate = &t
	}
	if err := ValidateDateRange(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}

	return req, nil
}

// ValidateUpdate validates a raw update_item payload, translating each
// field into a Patch that preserves the absent/null/value distinction
// (spec §4.2 update semantics).
func ValidateUpdate(raw *RawUpdate) (*UpdateRequest, error) {
	req := &UpdateRequest{
		Related:       raw.Related,
		Bidirectional: raw.Bidirectional,
	}

	if raw.Type != nil {
		if err := ValidateType(*raw.Type); err != nil {
			return nil, err
		}
		req.Type = Set(*raw.Type)
	}

	if raw.Title != nil {
		title, err := ValidateTitle(*raw.Title)
		if err != nil {
			return nil, err
		}
		req.Title = Set(title)
	}

	if raw.Status != nil && *raw.Status != "" {
		req.Status = Set(*raw.Status)
	}

	if raw.Priority != nil {
		p, err := ValidatePriority(*raw.Priority)
		if err != nil {
			return nil, err
		}
		req.Priority = Set(p)
	}

	var err error
	if req.Description, err = stringPatch(raw.Description, ValidateDescription); err != nil {
		return nil, err
	}
	if req.Content, err = stringPatch(raw.Content, nil); err != nil {
		return nil, err
	}
	if req.Version, err = stringPatch(raw.Version, nil); err != nil {
		return nil, err
	}
	if req.Category, err = stringPatch(raw.Category, nil); err != nil {
		return nil, err
	}

	if req.StartDate, err = datePatch(raw.StartDate); err != nil {
		return nil, err
	}
	if req.EndDate, err = datePatch(raw.EndDate); err != nil {
		return nil, err
	}
	if req.StartDate.Present && req.EndDate.Present {
		if err := ValidateDateRange(req.StartDate.Value, req.EndDate.Value); err != nil {
			return nil, err
		}
	}

	if raw.Tags != nil {
		req.Tags = Set(NormalizeTags(*raw.Tags))
	}

	return req, nil
}

// stringPatch converts a **string field (nil = absent, non-nil pointing at
// nil = explicit null, non-nil pointing at a value = set) into a
// Patch[string], running an optional validator on non-null values.
func stringPatch(field **string, validate func(string) error) (Patch[string], error) {
	if field == nil {
		return Unset[string](), nil
	}
	if *field == nil {
		return Clear[string](), nil
	}
	if validate != nil {
		if err := validate(**field); err != nil {
			return Patch[string]{}, err
		}
	}
	return Set(**field), nil
}

// datePatch converts a **string date field into a Patch[time.Time],
// parsing strictly on non-null values.
func datePatch(field **string) (Patch[time.Time], error) {
	if field == nil {
		return Unset[time.Time](), nil
	}
	if *field == nil {
		return Clear[time.Time](), nil
	}
	t, err := ParseDate(**field)
	if err != nil {
		return Patch[time.Time]{}, err
	}
	return Set(t), nil
}
