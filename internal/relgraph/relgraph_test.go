package relgraph

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shirokuma-library/mcp-knowledge-base/internal/enrich/noop"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/itemmodel"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/store"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/writepipeline"
)

func newItem(t *testing.T, ctx context.Context, p *writepipeline.Pipeline, title string) int64 {
	t.Helper()
	item, err := p.Create(ctx, &itemmodel.CreateRequest{Type: "task", Title: title, Status: "Open", Priority: "MEDIUM"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return item.ID
}

// TestDirectedRelationIsOneWay covers spec property P6: a relation added
// from a to b makes b an outgoing neighbor of a, but a does not become
// an outgoing neighbor of b — only an incoming one — unless declared
// bidirectional.
func TestDirectedRelationIsOneWay(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	defer db.Close()

	pipeline := writepipeline.New(db, noop.New(), 8)
	ctx := context.Background()

	a := newItem(t, ctx, pipeline, "a")
	b := newItem(t, ctx, pipeline, "b")

	if _, err := store.AddRelations(ctx, db.DB(), a, []int64{b}, false); err != nil {
		t.Fatalf("AddRelations failed: %v", err)
	}

	outA, err := store.GetOutgoing(ctx, db.DB(), a)
	if err != nil {
		t.Fatalf("GetOutgoing failed: %v", err)
	}
	if len(outA) != 1 || outA[0] != b {
		t.Errorf("expected a's outgoing relations to be [%d], got %v", b, outA)
	}

	outB, err := store.GetOutgoing(ctx, db.DB(), b)
	if err != nil {
		t.Fatalf("GetOutgoing failed: %v", err)
	}
	if len(outB) != 0 {
		t.Errorf("b should have no outgoing relations from a one-way edge, got %v", outB)
	}

	inB, err := store.GetIncoming(ctx, db.DB(), b)
	if err != nil {
		t.Fatalf("GetIncoming failed: %v", err)
	}
	if len(inB) != 1 || inB[0] != a {
		t.Errorf("expected b's incoming relations to be [%d], got %v", a, inB)
	}
}

func TestBidirectionalRelationCreatesBothEdges(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	defer db.Close()

	pipeline := writepipeline.New(db, noop.New(), 8)
	ctx := context.Background()

	a := newItem(t, ctx, pipeline, "a")
	b := newItem(t, ctx, pipeline, "b")

	if _, err := store.AddRelations(ctx, db.DB(), a, []int64{b}, true); err != nil {
		t.Fatalf("AddRelations failed: %v", err)
	}

	outB, err := store.GetOutgoing(ctx, db.DB(), b)
	if err != nil {
		t.Fatalf("GetOutgoing failed: %v", err)
	}
	if len(outB) != 1 || outB[0] != a {
		t.Errorf("expected b's outgoing relations to include a when bidirectional, got %v", outB)
	}
}

func TestDirectRelationsReportsDirection(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	defer db.Close()

	pipeline := writepipeline.New(db, noop.New(), 8)
	ctx := context.Background()

	a := newItem(t, ctx, pipeline, "a")
	b := newItem(t, ctx, pipeline, "b")

	if _, err := store.AddRelations(ctx, db.DB(), a, []int64{b}, false); err != nil {
		t.Fatalf("AddRelations failed: %v", err)
	}

	manualFromA, err := DirectRelations(ctx, db.DB(), a)
	if err != nil {
		t.Fatalf("DirectRelations failed: %v", err)
	}
	if len(manualFromA) != 1 || manualFromA[0].ItemID != b || manualFromA[0].Direction != "outgoing" {
		t.Errorf("expected a's direct relations to report b as outgoing, got %+v", manualFromA)
	}

	manualFromB, err := DirectRelations(ctx, db.DB(), b)
	if err != nil {
		t.Fatalf("DirectRelations failed: %v", err)
	}
	if len(manualFromB) != 1 || manualFromB[0].ItemID != a || manualFromB[0].Direction != "incoming" {
		t.Errorf("expected b's direct relations to report a as incoming, got %+v", manualFromB)
	}
}
