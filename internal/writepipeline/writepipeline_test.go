package writepipeline

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shirokuma-library/mcp-knowledge-base/internal/enrich/noop"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/itemmodel"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/store"
)

func newTestPipeline(t *testing.T) (*Pipeline, *store.Store) {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db, noop.New(), 8), db
}

// TestCreateRoundTrip covers spec property P1: every field supplied on
// create comes back unchanged (after normalization) from get_item.
func TestCreateRoundTrip(t *testing.T) {
	p, db := newTestPipeline(t)
	ctx := context.Background()

	desc := "a description"
	req := &itemmodel.CreateRequest{
		Type:        "task",
		Title:       "Write tests",
		Description: &desc,
		Status:      "Open",
		Priority:    "HIGH",
		Tags:        []string{"go", "testing"},
	}

	item, err := p.Create(ctx, req)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.GetItemFull(ctx, db.DB(), item.ID)
	if err != nil {
		t.Fatalf("GetItemFull failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected item to exist after create")
	}
	if got.Type != req.Type || got.Title != req.Title {
		t.Errorf("round-trip mismatch: got %+v", got)
	}
	if got.Description == nil || *got.Description != desc {
		t.Error("description did not round-trip")
	}
	if got.StatusName != "Open" {
		t.Errorf("expected status Open, got %q", got.StatusName)
	}
	if string(got.Priority) != "HIGH" {
		t.Errorf("expected priority HIGH, got %q", got.Priority)
	}
	if len(got.Tags) != 2 {
		t.Errorf("expected 2 tags, got %v", got.Tags)
	}
}

// TestUpdateEmptyIsNoop covers spec property P2: update_item(id, {}) must
// not change any field.
func TestUpdateEmptyIsNoop(t *testing.T) {
	p, db := newTestPipeline(t)
	ctx := context.Background()

	created, err := p.Create(ctx, &itemmodel.CreateRequest{Type: "task", Title: "original", Status: "Open", Priority: "MEDIUM"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	before, err := store.GetItemFull(ctx, db.DB(), created.ID)
	if err != nil {
		t.Fatalf("GetItemFull failed: %v", err)
	}

	_, err = p.Update(ctx, created.ID, &itemmodel.UpdateRequest{})
	if err != nil {
		t.Fatalf("empty Update failed: %v", err)
	}

	after, err := store.GetItemFull(ctx, db.DB(), created.ID)
	if err != nil {
		t.Fatalf("GetItemFull failed: %v", err)
	}

	if before.Title != after.Title || before.StatusName != after.StatusName || before.Priority != after.Priority {
		t.Errorf("empty update payload changed state: before=%+v after=%+v", before, after)
	}
}

// TestUpdateTwiceWithSamePayloadIsIdempotent is the second half of P2.
func TestUpdateTwiceWithSamePayloadIsIdempotent(t *testing.T) {
	p, db := newTestPipeline(t)
	ctx := context.Background()

	created, err := p.Create(ctx, &itemmodel.CreateRequest{Type: "task", Title: "original", Status: "Open", Priority: "MEDIUM"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	req := &itemmodel.UpdateRequest{Title: itemmodel.Set("renamed")}

	if _, err := p.Update(ctx, created.ID, req); err != nil {
		t.Fatalf("first update failed: %v", err)
	}
	first, err := store.GetItemFull(ctx, db.DB(), created.ID)
	if err != nil {
		t.Fatalf("GetItemFull failed: %v", err)
	}

	if _, err := p.Update(ctx, created.ID, req); err != nil {
		t.Fatalf("second update failed: %v", err)
	}
	second, err := store.GetItemFull(ctx, db.DB(), created.ID)
	if err != nil {
		t.Fatalf("GetItemFull failed: %v", err)
	}

	if first.Title != second.Title {
		t.Errorf("repeated identical update changed title: %q vs %q", first.Title, second.Title)
	}
}

// TestDeleteCascade covers spec property P3: after delete, the item id
// appears nowhere — its tag junction rows are gone too.
func TestDeleteCascade(t *testing.T) {
	p, db := newTestPipeline(t)
	ctx := context.Background()

	created, err := p.Create(ctx, &itemmodel.CreateRequest{
		Type: "task", Title: "to delete", Status: "Open", Priority: "MEDIUM",
		Tags: []string{"ephemeral"},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := p.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	got, err := store.GetItem(ctx, db.DB(), created.ID)
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if got != nil {
		t.Error("item should not exist after delete")
	}

	tags, err := store.GetItemTags(ctx, db.DB(), created.ID)
	if err != nil {
		t.Fatalf("GetItemTags failed: %v", err)
	}
	if len(tags) != 0 {
		t.Errorf("expected no tag rows after delete, got %v", tags)
	}
}

// TestCreateSucceedsWithEnrichmentAlwaysUnavailable covers spec property
// P8: with the enrichment capability permanently failing, create_item
// still succeeds and persists.
func TestCreateSucceedsWithEnrichmentAlwaysUnavailable(t *testing.T) {
	p, db := newTestPipeline(t)
	ctx := context.Background()

	item, err := p.Create(ctx, &itemmodel.CreateRequest{Type: "task", Title: "no ai needed", Status: "Open", Priority: "MEDIUM"})
	if err != nil {
		t.Fatalf("Create should succeed even when enrichment always fails: %v", err)
	}

	got, err := store.GetItem(ctx, db.DB(), item.ID)
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if got == nil {
		t.Fatal("item should persist despite enrichment unavailability")
	}
	if got.Embedding != nil {
		t.Error("noop enricher should not have produced an embedding")
	}
}

func TestUpdateUnknownItemReturnsNotFound(t *testing.T) {
	p, _ := newTestPipeline(t)
	ctx := context.Background()

	_, err := p.Update(ctx, 99999, &itemmodel.UpdateRequest{Title: itemmodel.Set("x")})
	if err == nil {
		t.Fatal("expected an error updating a nonexistent item")
	}
}
