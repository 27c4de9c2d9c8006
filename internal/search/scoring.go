package search

import (
	"math"

	"github.com/shirokuma-library/mcp-knowledge-base/internal/store"
)

// KeywordCosine computes cosine similarity between two sparse
// keyword-weight vectors (spec §4.7.3 keywords strategy).
func KeywordCosine(a, b []store.KeywordWeight) float64 {
	av := toWeightMap(a)
	bv := toWeightMap(b)
	return cosineOverMaps(av, bv)
}

// ConceptJaccard computes the Jaccard index of two concept label sets,
// weighted by min(weight_S, weight_C) per matching concept (spec §4.7.3
// concepts strategy).
func ConceptJaccard(a, b []store.ConceptWeight) float64 {
	av := toConceptMap(a)
	bv := toConceptMap(b)
	if len(av) == 0 && len(bv) == 0 {
		return 0
	}

	union := make(map[string]bool, len(av)+len(bv))
	for k := range av {
		union[k] = true
	}
	for k := range bv {
		union[k] = true
	}

	var weightedIntersection, unionSize float64
	for name := range union {
		unionSize++
		wa, inA := av[name]
		wb, inB := bv[name]
		if inA && inB {
			weightedIntersection += math.Min(wa, wb)
		}
	}
	if unionSize == 0 {
		return 0
	}
	return weightedIntersection / unionSize
}

func toWeightMap(kws []store.KeywordWeight) map[string]float64 {
	m := make(map[string]float64, len(kws))
	for _, k := range kws {
		m[k.Name] = k.Weight
	}
	return m
}

func toConceptMap(cs []store.ConceptWeight) map[string]float64 {
	m := make(map[string]float64, len(cs))
	for _, c := range cs {
		m[c.Name] = c.Weight
	}
	return m
}

func cosineOverMaps(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var dot, magA, magB float64
	for k, wa := range a {
		magA += wa * wa
		if wb, ok := b[k]; ok {
			dot += wa * wb
		}
	}
	for _, wb := range b {
		magB += wb * wb
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// HybridWeights are the per-strategy weights the hybrid fusion applies
// (spec §4.7.3, defaults {keywords: 0.3, concepts: 0.1, embedding: 0.6}).
type HybridWeights struct {
	Keywords  float64
	Concepts  float64
	Embedding float64
}

// Fuse computes the weighted sum Σ w_k · score_k across the three
// sub-strategies; a missing sub-signal contributes 0 rather than being
// excluded from the weights (spec §4.7.3). The result-set-wide
// renormalization to [0, 1] happens afterward, over the whole candidate
// set (see normalizeScores in search.go), the same max-normalization
// technique the lexical scorer uses.
func Fuse(weights HybridWeights, keywordScore, conceptScore, embeddingScore float64) float64 {
	return weights.Keywords*keywordScore + weights.Concepts*conceptScore + weights.Embedding*embeddingScore
}
