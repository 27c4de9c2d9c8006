package search

import (
	"math"
	"testing"

	"github.com/shirokuma-library/mcp-knowledge-base/internal/store"
)

func TestKeywordCosineIdentical(t *testing.T) {
	kws := []store.KeywordWeight{{Name: "go", Weight: 1}, {Name: "sql", Weight: 0.5}}
	got := KeywordCosine(kws, kws)
	if math.Abs(got-1.0) > 1e-9 {
		t.Errorf("cosine of a vector with itself = %v, want 1", got)
	}
}

func TestKeywordCosineDisjoint(t *testing.T) {
	a := []store.KeywordWeight{{Name: "go", Weight: 1}}
	b := []store.KeywordWeight{{Name: "rust", Weight: 1}}
	if got := KeywordCosine(a, b); got != 0 {
		t.Errorf("disjoint vectors should have 0 cosine similarity, got %v", got)
	}
}

func TestKeywordCosineEmpty(t *testing.T) {
	if got := KeywordCosine(nil, nil); got != 0 {
		t.Errorf("empty vectors should score 0, got %v", got)
	}
}

func TestConceptJaccard(t *testing.T) {
	a := []store.ConceptWeight{{Name: "auth", Weight: 1}, {Name: "storage", Weight: 0.4}}
	b := []store.ConceptWeight{{Name: "auth", Weight: 0.8}}
	got := ConceptJaccard(a, b)
	// intersection weighted = min(1, 0.8) = 0.8, union size = 2 -> 0.4
	if math.Abs(got-0.4) > 1e-9 {
		t.Errorf("ConceptJaccard = %v, want 0.4", got)
	}
}

// TestFuseBounds covers spec property P5: the fused hybrid score must
// land in [0, 1] whenever each sub-score is itself in [0, 1] and the
// weights sum to 1.
func TestFuseBounds(t *testing.T) {
	weights := HybridWeights{Keywords: 0.3, Concepts: 0.1, Embedding: 0.6}
	cases := [][3]float64{
		{0, 0, 0},
		{1, 1, 1},
		{1, 0, 0},
		{0.5, 0.5, 0.5},
	}
	for _, c := range cases {
		score := Fuse(weights, c[0], c[1], c[2])
		if score < 0 || score > 1 {
			t.Errorf("Fuse(%v) = %v, want a value in [0, 1]", c, score)
		}
	}
}

func TestFuseMissingSignalContributesZero(t *testing.T) {
	weights := HybridWeights{Keywords: 0.3, Concepts: 0.1, Embedding: 0.6}
	got := Fuse(weights, 0, 0, 1)
	want := 0.6
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Fuse with only embedding signal = %v, want %v", got, want)
	}
}
