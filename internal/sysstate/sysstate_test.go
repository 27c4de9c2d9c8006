package sysstate

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shirokuma-library/mcp-knowledge-base/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db, 10*time.Second)
}

func TestGetCurrentCreatesDefaultOnFirstCall(t *testing.T) {
	s := newTestService(t)
	st, err := s.GetCurrent(context.Background())
	if err != nil {
		t.Fatalf("GetCurrent failed: %v", err)
	}
	if st == nil {
		t.Fatal("expected a default state on first call")
	}
}

func TestUpdateAndCheckpointRoundTrip(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	if _, err := s.Update(ctx, UpdateRequest{Content: "active work", Tags: []string{"focus"}}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	cp, err := s.Checkpoint(ctx, "milestone-1")
	if err != nil {
		t.Fatalf("Checkpoint failed: %v", err)
	}
	if cp.Content != "active work" {
		t.Errorf("checkpoint content = %q, want %q", cp.Content, "active work")
	}

	if _, err := s.Update(ctx, UpdateRequest{Content: "new work"}); err != nil {
		t.Fatalf("second Update failed: %v", err)
	}

	checkpoints, err := s.ListCheckpoints(ctx)
	if err != nil {
		t.Fatalf("ListCheckpoints failed: %v", err)
	}
	if len(checkpoints) != 1 {
		t.Fatalf("expected 1 retained checkpoint, got %d", len(checkpoints))
	}
	if checkpoints[0].Content != "active work" {
		t.Errorf("checkpoint should freeze the state at the time it was taken; got %q", checkpoints[0].Content)
	}

	current, err := s.GetCurrent(ctx)
	if err != nil {
		t.Fatalf("GetCurrent failed: %v", err)
	}
	if current.Content != "new work" {
		t.Errorf("current state should reflect the later update, got %q", current.Content)
	}
}
