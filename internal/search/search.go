// Package search implements the three retrieval families spec §4.7
// unifies under one candidate-scoring pipeline: filtered list, lexical
// search, and keyword/concept/embedding/hybrid related-item retrieval.
package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shirokuma-library/mcp-knowledge-base/internal/coreerr"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/embedstore"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/itemmodel"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/lexical"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/relgraph"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/store"
)

var (
	readTimeout   = 10 * time.Second
	readTimeoutMu sync.RWMutex
)

// Init sets the overall read timeout applied to List, Search, Related, and
// FindSimilar (spec §5, config Retrieval.ReadTimeout). Call once at startup;
// a non-positive duration is ignored.
func Init(d time.Duration) {
	if d <= 0 {
		return
	}
	readTimeoutMu.Lock()
	defer readTimeoutMu.Unlock()
	readTimeout = d
}

func getReadTimeout() time.Duration {
	readTimeoutMu.RLock()
	defer readTimeoutMu.RUnlock()
	return readTimeout
}

// wrapTimeout turns a context deadline expiry into the wire-visible
// coreerr.KindTimeout, leaving every other error untouched.
func wrapTimeout(err error) error {
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		return coreerr.New(coreerr.KindTimeout, "read timed out")
	}
	return err
}

// Result pairs an item with its retrieval score and, for related-item
// queries, whether it was a manually declared relation.
type Result struct {
	Item   *store.Item
	Score  float64
	Source string // "manual" or "computed"; empty for list/search
}

// List runs the pure relational filter + sort (spec §4.7.1).
func List(ctx context.Context, q store.Querier, filters *store.ItemFilters) ([]*store.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, getReadTimeout())
	defer cancel()

	items, err := store.ListItems(ctx, q, filters)
	if err != nil {
		return nil, wrapTimeout(err)
	}
	for _, item := range items {
		if err := loadVocab(ctx, q, item); err != nil {
			return nil, wrapTimeout(err)
		}
	}
	return items, nil
}

// Search runs the lexical query intersected with filters, sorted by
// lexical score descending with the standard tie-break (spec §4.7.2).
func Search(ctx context.Context, q store.Querier, rawQuery string, filters *store.ItemFilters, limit int) ([]Result, error) {
	ctx, cancel := context.WithTimeout(ctx, getReadTimeout())
	defer cancel()

	parsed := lexical.ParseQuery(rawQuery)

	// Filter-only candidates: reuse ListItems with a generous limit since
	// the lexical/filter intersection needs every matching id, not a page.
	// (ListItems turns a non-positive limit into its default page of 50.)
	filterCopy := *filters
	filterCopy.Limit = 1<<31 - 1
	filterCopy.Offset = 0
	filtered, err := store.ListItems(ctx, q, &filterCopy)
	if err != nil {
		return nil, wrapTimeout(err)
	}

	if parsed.Empty() {
		results := make([]Result, 0, len(filtered))
		for _, item := range filtered {
			results = append(results, Result{Item: item})
		}
		sortByTieBreak(results)
		return capResults(results, limit), nil
	}

	byID := make(map[int64]*store.Item, len(filtered))
	var candidateIDs []int64
	for _, item := range filtered {
		byID[item.ID] = item
		candidateIDs = append(candidateIDs, item.ID)
	}

	scores, err := lexical.Score(ctx, q, parsed, candidateIDs, func(id int64) string {
		item := byID[id]
		var desc, content, si string
		if item.Description != nil {
			desc = *item.Description
		}
		if item.Content != nil {
			content = *item.Content
		}
		if item.SearchIndex != nil {
			si = *item.SearchIndex
		}
		tagNames, err := store.GetItemTags(ctx, q, id)
		if err != nil {
			return lexical.DocumentText(item.Title, desc, content, si, "")
		}
		tags := strings.Join(itemmodel.SortedTagNames(tagNames), " ")
		return lexical.DocumentText(item.Title, desc, content, si, tags)
	})
	if err != nil {
		return nil, wrapTimeout(err)
	}

	var results []Result
	for id, score := range scores {
		item := byID[id]
		if err := loadVocab(ctx, q, item); err != nil {
			return nil, wrapTimeout(err)
		}
		results = append(results, Result{Item: item, Score: score})
	}
	sortByTieBreak(results)
	return capResults(results, limit), nil
}

// Strategy selects which related-item sub-scorer(s) to use.
type Strategy string

const (
	StrategyKeywords  Strategy = "keywords"
	StrategyConcepts  Strategy = "concepts"
	StrategyEmbedding Strategy = "embedding"
	StrategyHybrid    Strategy = "hybrid"
)

// RelatedOptions configures a related-items query (spec §4.7.3).
type RelatedOptions struct {
	Strategy         Strategy
	Limit            int
	Weights          HybridWeights
	IncludeRelations bool
	Depth            int
}

// Related returns the top-N items related to seedID under the requested
// strategy, manual relations always first and flagged, followed by
// computed results ordered by fused score (spec §4.7.3).
func Related(ctx context.Context, q store.Querier, seedID int64, opts RelatedOptions) ([]Result, error) {
	ctx, cancel := context.WithTimeout(ctx, getReadTimeout())
	defer cancel()

	seed, err := store.GetItemFull(ctx, q, seedID)
	if err != nil {
		return nil, wrapTimeout(err)
	}
	if seed == nil {
		return nil, fmt.Errorf("item %d not found", seedID)
	}

	manualIDs, err := relgraph.DirectRelations(ctx, q, seedID)
	if err != nil {
		return nil, wrapTimeout(err)
	}
	manualSet := make(map[int64]bool, len(manualIDs))
	var manualResults []Result
	for _, m := range manualIDs {
		if manualSet[m.ItemID] {
			continue
		}
		manualSet[m.ItemID] = true
		item, err := store.GetItemFull(ctx, q, m.ItemID)
		if err != nil || item == nil {
			continue
		}
		manualResults = append(manualResults, Result{Item: item, Score: 1.0, Source: "manual"})
	}
	sortByTieBreak(manualResults)

	candidates, err := store.SharedVocabCandidates(ctx, q, seedID)
	if err != nil {
		return nil, wrapTimeout(err)
	}
	if opts.IncludeRelations {
		depth := opts.Depth
		if depth <= 0 {
			depth = 1
		}
		expanded, err := relgraph.Expand(ctx, q, seedID, depth)
		if err != nil {
			return nil, wrapTimeout(err)
		}
		for _, id := range expanded {
			candidates[id] = true
		}
	}
	delete(candidates, seedID)
	for id := range manualSet {
		delete(candidates, id)
	}

	var candidateIDs []int64
	for id := range candidates {
		candidateIDs = append(candidateIDs, id)
	}

	var embedQuery []float32
	if opts.Strategy == StrategyEmbedding || opts.Strategy == StrategyHybrid {
		embedQuery, err = embedstore.Get(ctx, q, seedID)
		if err != nil {
			return nil, wrapTimeout(err)
		}
	}

	weights := opts.Weights
	if weights == (HybridWeights{}) {
		weights = HybridWeights{Keywords: 0.3, Concepts: 0.1, Embedding: 0.6}
	}

	// Brute-force cosine scan over every embedded candidate in one query,
	// instead of a per-candidate embedstore.Get (spec §4.5, §4.7.3).
	embedScores := make(map[int64]float64, len(candidateIDs))
	if len(embedQuery) > 0 && len(candidateIDs) > 0 {
		neighbors, err := embedstore.ScanSimilar(ctx, q, embedQuery, candidateIDs)
		if err != nil {
			return nil, wrapTimeout(err)
		}
		for _, n := range neighbors {
			embedScores[n.ItemID] = n.Score
		}
	}

	var computed []Result
	for _, id := range candidateIDs {
		candidate, err := store.GetItemFull(ctx, q, id)
		if err != nil || candidate == nil {
			continue
		}

		var score float64
		switch opts.Strategy {
		case StrategyKeywords:
			score = KeywordCosine(seed.Keywords, candidate.Keywords)
		case StrategyConcepts:
			score = ConceptJaccard(seed.Concepts, candidate.Concepts)
		case StrategyEmbedding:
			score = embedScores[id]
		default: // hybrid
			kw := KeywordCosine(seed.Keywords, candidate.Keywords)
			cs := ConceptJaccard(seed.Concepts, candidate.Concepts)
			score = Fuse(weights, kw, cs, embedScores[id])
		}
		computed = append(computed, Result{Item: candidate, Score: score})
	}

	computed = normalizeScores(computed)
	sortByTieBreak(computed)

	all := append(manualResults, computed...)
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	return capResults(all, limit), nil
}

// FindSimilar is shorthand for Related with the embedding strategy (spec
// §4.7.4).
func FindSimilar(ctx context.Context, q store.Querier, seedID int64, limit int) ([]Result, error) {
	return Related(ctx, q, seedID, RelatedOptions{Strategy: StrategyEmbedding, Limit: limit})
}

func loadVocab(ctx context.Context, q store.Querier, item *store.Item) error {
	var err error
	if item.Tags, err = store.GetItemTags(ctx, q, item.ID); err != nil {
		return err
	}
	if item.Keywords, err = store.GetItemKeywords(ctx, q, item.ID); err != nil {
		return err
	}
	if item.Concepts, err = store.GetItemConcepts(ctx, q, item.ID); err != nil {
		return err
	}
	return nil
}

// normalizeScores renormalizes a result set's scores to [0, 1] by its own
// maximum, the technique the lexical scorer and the hybrid fusion both use.
func normalizeScores(results []Result) []Result {
	var max float64
	for _, r := range results {
		if r.Score > max {
			max = r.Score
		}
	}
	if max == 0 {
		return results
	}
	for i := range results {
		results[i].Score /= max
	}
	return results
}

// sortByTieBreak applies the uniform tie-break rule: score desc, then
// updated_at desc, then id asc (spec §4.7, "Tie-break rule").
func sortByTieBreak(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if !results[i].Item.UpdatedAt.Equal(results[j].Item.UpdatedAt) {
			return results[i].Item.UpdatedAt.After(results[j].Item.UpdatedAt)
		}
		return results[i].Item.ID < results[j].Item.ID
	})
}

func capResults(results []Result, limit int) []Result {
	if limit > 0 && len(results) > limit {
		return results[:limit]
	}
	return results
}
