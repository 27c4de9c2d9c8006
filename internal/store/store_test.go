package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shirokuma-library/mcp-knowledge-base/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCreateItemDefaultsPriority(t *testing.T) {
	db := newTestStore(t)
	ctx := context.Background()

	st, err := store.GetStatusByName(ctx, db.DB(), "Open")
	if err != nil {
		t.Fatalf("GetStatusByName failed: %v", err)
	}
	if st == nil {
		t.Fatal("expected a seeded 'Open' status")
	}

	item := &store.Item{Type: "task", Title: "no priority set", StatusID: st.ID}
	if err := store.CreateItem(ctx, db.DB(), item); err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}
	if item.Priority != store.PriorityMedium {
		t.Errorf("expected default priority MEDIUM, got %q", item.Priority)
	}
	if item.ID == 0 {
		t.Error("expected CreateItem to assign a nonzero id")
	}
}

func TestDeleteUnknownItemErrors(t *testing.T) {
	db := newTestStore(t)
	if err := store.DeleteItem(context.Background(), db.DB(), 999999); err == nil {
		t.Error("expected an error deleting a nonexistent item")
	}
}

func TestGetStatsCountsItems(t *testing.T) {
	db := newTestStore(t)
	ctx := context.Background()

	st, err := store.GetStatusByName(ctx, db.DB(), "Open")
	if err != nil || st == nil {
		t.Fatalf("GetStatusByName failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		item := &store.Item{Type: "task", Title: "item", StatusID: st.ID, Priority: store.PriorityMedium}
		if err := store.CreateItem(ctx, db.DB(), item); err != nil {
			t.Fatalf("CreateItem failed: %v", err)
		}
	}

	stats, err := store.GetStats(ctx, db.DB())
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.TotalItems != 3 {
		t.Errorf("TotalItems = %d, want 3", stats.TotalItems)
	}
	if stats.ItemsByType["task"] != 3 {
		t.Errorf("ItemsByType[task] = %d, want 3", stats.ItemsByType["task"])
	}
}

func TestListTagUsageOrdersByCountThenName(t *testing.T) {
	db := newTestStore(t)
	ctx := context.Background()

	st, err := store.GetStatusByName(ctx, db.DB(), "Open")
	if err != nil || st == nil {
		t.Fatalf("GetStatusByName failed: %v", err)
	}

	a := &store.Item{Type: "task", Title: "a", StatusID: st.ID, Priority: store.PriorityMedium}
	if err := store.CreateItem(ctx, db.DB(), a); err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}
	b := &store.Item{Type: "task", Title: "b", StatusID: st.ID, Priority: store.PriorityMedium}
	if err := store.CreateItem(ctx, db.DB(), b); err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}

	popularID, err := store.EnsureTag(ctx, db.DB(), "popular")
	if err != nil {
		t.Fatalf("EnsureTag failed: %v", err)
	}
	rareID, err := store.EnsureTag(ctx, db.DB(), "rare")
	if err != nil {
		t.Fatalf("EnsureTag failed: %v", err)
	}
	if err := store.ReplaceItemTags(ctx, db.DB(), a.ID, []int64{popularID, rareID}); err != nil {
		t.Fatalf("ReplaceItemTags failed: %v", err)
	}
	if err := store.ReplaceItemTags(ctx, db.DB(), b.ID, []int64{popularID}); err != nil {
		t.Fatalf("ReplaceItemTags failed: %v", err)
	}

	usage, err := store.ListTagUsage(ctx, db.DB(), "", 0)
	if err != nil {
		t.Fatalf("ListTagUsage failed: %v", err)
	}
	if len(usage) != 2 || usage[0].Name != "popular" || usage[0].Count != 2 {
		t.Errorf("expected 'popular' first with count 2, got %+v", usage)
	}
}
