package lexical

import "testing"

func TestParseQueryImplicitAnd(t *testing.T) {
	q := ParseQuery("storage engine")
	if len(q.Groups) != 1 || len(q.Groups[0]) != 2 {
		t.Fatalf("ParseQuery() = %+v, want one group of two clauses", q)
	}
}

func TestParseQueryOrSplitsGroups(t *testing.T) {
	q := ParseQuery("storage OR lexical")
	if len(q.Groups) != 2 {
		t.Fatalf("ParseQuery() = %+v, want two groups", q)
	}
}

func TestParseQueryQuotedPhrase(t *testing.T) {
	q := ParseQuery(`"write pipeline"`)
	if len(q.Groups) != 1 || len(q.Groups[0]) != 1 {
		t.Fatalf("ParseQuery() = %+v, want a single phrase clause", q)
	}
	clause := q.Groups[0][0]
	if !clause.Phrase || len(clause.Terms) != 2 {
		t.Errorf("expected a two-word phrase clause, got %+v", clause)
	}
}

func TestQueryEmpty(t *testing.T) {
	if !ParseQuery("").Empty() {
		t.Error("empty raw query should produce an Empty() query")
	}
	if !ParseQuery("the a of").Empty() {
		t.Error("a query of only stop words should be Empty()")
	}
	if ParseQuery("go").Empty() {
		t.Error("a query with a real term should not be Empty()")
	}
}

func TestAllTermsDeduplicates(t *testing.T) {
	q := ParseQuery("go go OR rust")
	terms := q.AllTerms()
	if len(terms) != 2 {
		t.Errorf("AllTerms() = %v, want 2 distinct terms", terms)
	}
}
