package lexical

import (
	"context"
	"math"
)

// DocText fetches the folded document text for an item, used only to
// verify quoted-phrase adjacency (the inverted index itself is
// unordered-bag-of-words, so phrase matching re-tokenizes the concatenated
// fields and looks for the phrase terms as a contiguous run of tokens).
type DocText func(itemID int64) string

// tfidf applies logarithmic term frequency and smoothed IDF:
// tf' = 1 + ln(tf), idf = ln((N+1)/(df+1)) + 1 (spec §4.4).
func tfidf(tf, df, n int) float64 {
	if tf <= 0 {
		return 0
	}
	tfPrime := 1 + math.Log(float64(tf))
	idf := math.Log((float64(n)+1)/(float64(df)+1)) + 1
	return tfPrime * idf
}

// Score ranks candidates against query, returning a score per matching item
// normalized to [0, 1] by the maximum raw score in the result set (spec
// §4.4). Candidates that don't satisfy any OR-group are omitted. docText
// may be nil if query carries no phrase clauses.
func Score(ctx context.Context, q Querier, query Query, candidates []int64, docText DocText) (map[int64]float64, error) {
	if query.Empty() || len(candidates) == 0 {
		return map[int64]float64{}, nil
	}

	terms := query.AllTerms()
	df, err := DocumentFrequency(ctx, q, terms)
	if err != nil {
		return nil, err
	}
	n, err := TotalDocuments(ctx, q)
	if err != nil {
		return nil, err
	}

	// Narrow candidates to those whose index actually contains one of the
	// query terms before paying for a per-item TermFreqForItem lookup.
	termHits, err := CandidatesForTerms(ctx, q, terms)
	if err != nil {
		return nil, err
	}

	raw := make(map[int64]float64)
	for _, id := range candidates {
		if !termHits[id] {
			continue
		}
		tf, err := TermFreqForItem(ctx, q, id)
		if err != nil {
			return nil, err
		}

		var best float64
		matched := false
		for _, group := range query.Groups {
			groupScore, ok := scoreGroup(group, tf, df, n, id, docText)
			if !ok {
				continue
			}
			matched = true
			if groupScore > best {
				best = groupScore
			}
		}
		if matched {
			raw[id] = best
		}
	}

	return normalize(raw), nil
}

func scoreGroup(group []Clause, tf map[string]int, df map[string]int, n int, itemID int64, docText DocText) (float64, bool) {
	var total float64
	for _, clause := range group {
		for _, term := range clause.Terms {
			if tf[term] <= 0 {
				return 0, false
			}
		}
		if clause.Phrase {
			if docText == nil || !containsPhrase(docText(itemID), clause.Terms) {
				return 0, false
			}
		}
		for _, term := range clause.Terms {
			total += tfidf(tf[term], df[term], n)
		}
	}
	return total, true
}

// containsPhrase checks whether the tokenized form of text contains terms
// as a contiguous run, after the same folding/stripping used at index time.
func containsPhrase(text string, terms []string) bool {
	tokens := Tokenize(text)
	if len(terms) > len(tokens) {
		return false
	}
	for i := 0; i+len(terms) <= len(tokens); i++ {
		match := true
		for j, t := range terms {
			if tokens[i+j] != t {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func normalize(raw map[int64]float64) map[int64]float64 {
	var max float64
	for _, v := range raw {
		if v > max {
			max = v
		}
	}
	if max == 0 {
		return raw
	}
	out := make(map[int64]float64, len(raw))
	for id, v := range raw {
		out[id] = v / max
	}
	return out
}
