package lexical

import "strings"

// Clause is one term or quoted phrase in a query.
type Clause struct {
	Terms  []string // tokenized words; len > 1 only for a phrase
	Phrase bool
}

// Query is a disjunction of conjunctions: any Group satisfying all its
// Clauses matches (spec §4.4: "AND, OR, and quoted phrases; default
// connector is AND").
type Query struct {
	Groups [][]Clause
}

// AllTerms returns every distinct token across the query, the candidate-set
// and IDF lookup key list.
func (q Query) AllTerms() []string {
	seen := make(map[string]bool)
	var out []string
	for _, group := range q.Groups {
		for _, c := range group {
			for _, t := range c.Terms {
				if !seen[t] {
					seen[t] = true
					out = append(out, t)
				}
			}
		}
	}
	return out
}

// Empty reports whether the query carries no terms at all (spec §4.4:
// "Empty queries return no lexical results").
func (q Query) Empty() bool {
	return len(q.AllTerms()) == 0
}

// ParseQuery splits raw on whitespace-separated "OR" into groups, then each
// group on whitespace-separated "AND" (or bare whitespace, the implicit
// AND) into clauses, honoring double-quoted phrases as a single clause.
func ParseQuery(raw string) Query {
	words := splitRespectingQuotes(raw)

	var groups [][]Clause
	var current []Clause
	for _, w := range words {
		switch w {
		case "OR":
			if len(current) > 0 {
				groups = append(groups, current)
				current = nil
			}
		case "AND":
			// explicit AND is the default connector; no-op between clauses.
		default:
			phrase := strings.HasPrefix(w, `"`) && strings.HasSuffix(w, `"`) && len(w) >= 2
			text := w
			if phrase {
				text = strings.Trim(w, `"`)
			}
			tokens := Tokenize(text)
			if len(tokens) == 0 {
				continue
			}
			current = append(current, Clause{Terms: tokens, Phrase: phrase && len(tokens) > 1})
		}
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return Query{Groups: groups}
}

// splitRespectingQuotes tokenizes raw on whitespace, keeping a
// double-quoted span as one element (quotes retained for ParseQuery to
// detect).
func splitRespectingQuotes(raw string) []string {
	var out []string
	var sb strings.Builder
	inQuotes := false

	flush := func() {
		if sb.Len() > 0 {
			out = append(out, sb.String())
			sb.Reset()
		}
	}

	for _, r := range raw {
		switch {
		case r == '"':
			sb.WriteRune(r)
			inQuotes = !inQuotes
			if !inQuotes {
				flush()
			}
		case r == ' ' && !inQuotes:
			flush()
		default:
			sb.WriteRune(r)
		}
	}
	flush()
	return out
}
