package search

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shirokuma-library/mcp-knowledge-base/internal/enrich/noop"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/itemmodel"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/store"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/writepipeline"
)

func newTestDB(t *testing.T) *store.Store {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestSearchFindsExactTitleTerm covers spec property P4: after a
// successful write, a search for a unique term from the item's title
// returns that item.
func TestSearchFindsExactTitleTerm(t *testing.T) {
	db := newTestDB(t)
	pipeline := writepipeline.New(db, noop.New(), 8)
	ctx := context.Background()

	created, err := pipeline.Create(ctx, &itemmodel.CreateRequest{
		Type: "note", Title: "Quetzalcoatl migration plan", Status: "Open", Priority: "MEDIUM",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	results, err := Search(ctx, db.DB(), "Quetzalcoatl", &store.ItemFilters{}, 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected search to find the item by its unique title term")
	}
	found := false
	for _, r := range results {
		if r.Item.ID == created.ID {
			found = true
		}
	}
	if !found {
		t.Errorf("created item %d not present in search results %v", created.ID, results)
	}
}

func TestSearchEmptyQueryReturnsFilteredList(t *testing.T) {
	db := newTestDB(t)
	pipeline := writepipeline.New(db, noop.New(), 8)
	ctx := context.Background()

	if _, err := pipeline.Create(ctx, &itemmodel.CreateRequest{Type: "note", Title: "first", Status: "Open", Priority: "MEDIUM"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := pipeline.Create(ctx, &itemmodel.CreateRequest{Type: "note", Title: "second", Status: "Open", Priority: "MEDIUM"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	results, err := Search(ctx, db.DB(), "", &store.ItemFilters{}, 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results for an empty query, got %d", len(results))
	}
}

func TestListAppliesTypeFilter(t *testing.T) {
	db := newTestDB(t)
	pipeline := writepipeline.New(db, noop.New(), 8)
	ctx := context.Background()

	if _, err := pipeline.Create(ctx, &itemmodel.CreateRequest{Type: "task", Title: "a task", Status: "Open", Priority: "MEDIUM"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := pipeline.Create(ctx, &itemmodel.CreateRequest{Type: "note", Title: "a note", Status: "Open", Priority: "MEDIUM"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	items, err := List(ctx, db.DB(), &store.ItemFilters{Types: []string{"task"}})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 1 || items[0].Type != "task" {
		t.Errorf("expected exactly one task item, got %+v", items)
	}
}
