package itemmodel

import (
	"strings"
	"testing"

	"github.com/shirokuma-library/mcp-knowledge-base/internal/coreerr"
)

func TestValidateType(t *testing.T) {
	valid := []string{"issue", "task_item", "note123", "a"}
	for _, v := range valid {
		if err := ValidateType(v); err != nil {
			t.Errorf("ValidateType(%q) should be valid, got %v", v, err)
		}
	}

	invalid := []string{"Issue", "task-item", "has space", "", "émoji"}
	for _, v := range invalid {
		err := ValidateType(v)
		if err == nil {
			t.Errorf("ValidateType(%q) should be invalid", v)
			continue
		}
		if coreerr.KindOf(err) != coreerr.KindInvalidType {
			t.Errorf("ValidateType(%q) error kind = %v, want KindInvalidType", v, coreerr.KindOf(err))
		}
	}
}

func TestValidateTitle(t *testing.T) {
	title, err := ValidateTitle("  hello world  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if title != "hello world" {
		t.Errorf("expected trimmed title, got %q", title)
	}

	if _, err := ValidateTitle("   "); err == nil {
		t.Error("blank title should be rejected")
	}

	if _, err := ValidateTitle(strings.Repeat("x", maxTitleLen+1)); err == nil {
		t.Error("overlong title should be rejected")
	}
}

func TestValidatePriority(t *testing.T) {
	for _, p := range []string{"CRITICAL", "HIGH", "MEDIUM", "LOW", "MINIMAL"} {
		if _, err := ValidatePriority(p); err != nil {
			t.Errorf("ValidatePriority(%q) should be valid, got %v", p, err)
		}
	}
	if _, err := ValidatePriority("URGENT"); err == nil {
		t.Error("unknown priority should be rejected")
	}
}

func TestParseDate(t *testing.T) {
	if _, err := ParseDate("2026-07-31"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := ParseDate("07/31/2026"); err == nil {
		t.Error("non-ISO date should be rejected")
	}
}

func TestValidateDateRange(t *testing.T) {
	start, _ := ParseDate("2026-01-01")
	end, _ := ParseDate("2026-06-01")

	if err := ValidateDateRange(&start, &end); err != nil {
		t.Errorf("start before end should be valid, got %v", err)
	}
	if err := ValidateDateRange(&end, &start); err == nil {
		t.Error("start after end should be rejected")
	}
	if err := ValidateDateRange(nil, &end); err != nil {
		t.Errorf("missing start should not error: %v", err)
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" Go ", "go", "RUST", "", "  "})
	want := []string{"go", "rust"}
	if len(got) != len(want) {
		t.Fatalf("NormalizeTags() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("NormalizeTags()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
