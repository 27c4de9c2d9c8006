package lexical

import "testing"

func TestTokenizeFoldsCaseAndDropsStopWords(t *testing.T) {
	got := Tokenize("The Quick Brown Fox")
	want := []string{"quick", "brown", "fox"}
	if len(got) != len(want) {
		t.Fatalf("Tokenize() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Tokenize()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTokenizeStripsAccents(t *testing.T) {
	got := Tokenize("café")
	if len(got) != 1 || got[0] != "cafe" {
		t.Errorf("Tokenize(café) = %v, want [cafe]", got)
	}
}

func TestTokenizeSplitsOnPunctuation(t *testing.T) {
	got := Tokenize("auth.go, storage-layer!")
	want := []string{"auth", "go", "storage", "layer"}
	if len(got) != len(want) {
		t.Fatalf("Tokenize() = %v, want %v", got, want)
	}
}

func TestTermFrequencies(t *testing.T) {
	freq := TermFrequencies([]string{"go", "go", "sql"})
	if freq["go"] != 2 || freq["sql"] != 1 {
		t.Errorf("TermFrequencies() = %v", freq)
	}
}

func TestDocumentTextSkipsEmptyParts(t *testing.T) {
	got := DocumentText("title", "", "content", "", "")
	want := "title content"
	if got != want {
		t.Errorf("DocumentText() = %q, want %q", got, want)
	}
}
