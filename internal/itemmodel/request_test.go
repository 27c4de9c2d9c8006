package itemmodel

import "testing"

func strPtr(s string) *string { return &s }

func TestValidateCreateDefaults(t *testing.T) {
	req, err := ValidateCreate(&RawCreate{Type: "task", Title: "Do the thing"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Status != "Open" {
		t.Errorf("expected default status Open, got %q", req.Status)
	}
	if req.Priority != "MEDIUM" {
		t.Errorf("expected default priority MEDIUM, got %q", req.Priority)
	}
}

func TestValidateCreateRejectsBadType(t *testing.T) {
	if _, err := ValidateCreate(&RawCreate{Type: "Bad Type", Title: "x"}); err == nil {
		t.Error("expected error for invalid type token")
	}
}

func TestValidateCreateRejectsInvertedDateRange(t *testing.T) {
	raw := &RawCreate{
		Type:      "task",
		Title:     "x",
		StartDate: strPtr("2026-06-01"),
		EndDate:   strPtr("2026-01-01"),
	}
	if _, err := ValidateCreate(raw); err == nil {
		t.Error("expected error for start_date after end_date")
	}
}

// TestUpdateEmptyPayloadIsNoop covers spec property P2: update_item(id, {})
// must leave every field Unset.
func TestUpdateEmptyPayloadIsNoop(t *testing.T) {
	req, err := ValidateUpdate(&RawUpdate{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Type.Present || req.Title.Present || req.Description.Present ||
		req.Content.Present || req.Status.Present || req.Priority.Present ||
		req.Version.Present || req.Category.Present || req.StartDate.Present ||
		req.EndDate.Present || req.Tags.Present {
		t.Error("an empty update payload must leave every field Unset")
	}
}

func TestUpdateDistinguishesAbsentNullAndValue(t *testing.T) {
	value := "new description"
	var explicitNull *string

	// Absent: field key never set at all (simulated directly on RawUpdate).
	absent, err := ValidateUpdate(&RawUpdate{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if absent.Description.Present {
		t.Error("absent field should not be Present")
	}

	// Explicit null: Description points at a nil *string.
	cleared, err := ValidateUpdate(&RawUpdate{Description: &explicitNull})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cleared.Description.Present || cleared.Description.Value != nil {
		t.Error("explicit null should be Present with a nil Value")
	}

	// Set: Description points at a pointer to a value.
	vp := &value
	set, err := ValidateUpdate(&RawUpdate{Description: &vp})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !set.Description.Present || set.Description.Value == nil || *set.Description.Value != value {
		t.Error("set field should be Present with the given value")
	}
}

func TestValidateUpdateRejectsBadPriority(t *testing.T) {
	bad := "URGENT"
	if _, err := ValidateUpdate(&RawUpdate{Priority: &bad}); err == nil {
		t.Error("expected error for invalid priority")
	}
}
