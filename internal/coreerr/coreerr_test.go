package coreerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOfNil(t *testing.T) {
	if got := KindOf(nil); got != "" {
		t.Errorf("KindOf(nil) = %q, want empty", got)
	}
}

func TestKindOfTypedError(t *testing.T) {
	err := New(KindUnknownItem, "item 42 not found")
	if got := KindOf(err); got != KindUnknownItem {
		t.Errorf("KindOf() = %q, want %q", got, KindUnknownItem)
	}
}

func TestKindOfWrappedError(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", New(KindConflict, "already related"))
	if got := KindOf(err); got != KindConflict {
		t.Errorf("KindOf(wrapped) = %q, want %q", got, KindConflict)
	}
}

func TestKindOfUnrecognizedErrorDefaultsToStorageError(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != KindStorageError {
		t.Errorf("KindOf(plain error) = %q, want %q", got, KindStorageError)
	}
}

func TestWithDetails(t *testing.T) {
	err := New(KindEmbeddingDimMismatch, "bad dims").WithDetails(map[string]any{"expected": 8, "got": 4})
	if err.Details["expected"] != 8 {
		t.Errorf("WithDetails did not attach expected detail, got %+v", err.Details)
	}
}
