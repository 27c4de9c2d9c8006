package embedstore

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/shirokuma-library/mcp-knowledge-base/internal/coreerr"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/store"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	vec := []float32{0.1, -0.2, 3.5, 0}
	got := Unpack(Pack(vec))
	if len(got) != len(vec) {
		t.Fatalf("Unpack(Pack(vec)) length = %d, want %d", len(got), len(vec))
	}
	for i := range vec {
		if math.Abs(float64(got[i]-vec[i])) > 1e-6 {
			t.Errorf("element %d = %v, want %v", i, got[i], vec[i])
		}
	}
}

func TestCosineIdentical(t *testing.T) {
	vec := []float32{1, 2, 3}
	if got := Cosine(vec, vec); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("Cosine(v, v) = %v, want 1", got)
	}
}

func TestCosineOrthogonal(t *testing.T) {
	if got := Cosine([]float32{1, 0}, []float32{0, 1}); got != 0 {
		t.Errorf("Cosine(orthogonal) = %v, want 0", got)
	}
}

func TestCosineMismatchedLength(t *testing.T) {
	if got := Cosine([]float32{1, 2}, []float32{1, 2, 3}); got != 0 {
		t.Errorf("Cosine(mismatched) = %v, want 0", got)
	}
}

func TestUpsertRejectsDimensionMismatch(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	defer db.Close()

	err = Upsert(context.Background(), db.DB(), 1, []float32{1, 2}, 4)
	if err == nil {
		t.Fatal("expected a dimension mismatch error")
	}
	if coreerr.KindOf(err) != coreerr.KindEmbeddingDimMismatch {
		t.Errorf("KindOf(err) = %v, want KindEmbeddingDimMismatch", coreerr.KindOf(err))
	}
}

func TestGetReturnsNilForMissingEmbedding(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	defer db.Close()

	got, err := Get(context.Background(), db.DB(), 999)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("Get() = %v, want nil for an item with no embedding", got)
	}
}
