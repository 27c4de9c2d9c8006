// Package lexical maintains the manual inverted index over item text and
// scores queries against it with TF-IDF (spec §4.4). The corpus otherwise
// reaches for SQLite FTS5/BM25 for full-text search; this package builds
// its own scorer because the spec pins the exact formula (logarithmic term
// frequency, smoothed IDF, per-query max-normalization), which an FTS5
// virtual table wouldn't expose control over.
package lexical

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stopWords is the short builtin list spec §4.4 names; nothing more.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "of": true, "to": true, "and": true, "or": true,
}

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Tokenize case-folds, strips accents, splits on non-alphanumeric
// boundaries, and drops stop words, producing the token stream both
// indexing and querying share.
func Tokenize(text string) []string {
	folded := strings.ToLower(text)
	stripped, _, err := transform.String(stripAccents, folded)
	if err != nil {
		stripped = folded
	}

	var tokens []string
	var sb strings.Builder
	flush := func() {
		if sb.Len() == 0 {
			return
		}
		tok := sb.String()
		sb.Reset()
		if !stopWords[tok] {
			tokens = append(tokens, tok)
		}
	}
	for _, r := range stripped {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

// TermFrequencies counts token occurrences, the per-document input to
// indexing.
func TermFrequencies(tokens []string) map[string]int {
	freq := make(map[string]int, len(tokens))
	for _, t := range tokens {
		freq[t]++
	}
	return freq
}

// DocumentText concatenates the fields spec §4.4 indexes, in order. tags
// should already be joined in a deterministic order (itemmodel.SortedTagNames)
// so the same tag set always produces identical document text across
// reindexing and query-time phrase matching.
func DocumentText(title, description, content, searchIndex, tags string) string {
	var sb strings.Builder
	for _, part := range []string{title, description, content, searchIndex, tags} {
		if part == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(part)
	}
	return sb.String()
}
