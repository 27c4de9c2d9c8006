package lexical

import "testing"

func TestContainsPhraseMatchesContiguousRun(t *testing.T) {
	if !containsPhrase("the write pipeline orchestrates steps", []string{"write", "pipeline"}) {
		t.Error("expected phrase to match a contiguous run")
	}
}

func TestContainsPhraseRejectsOutOfOrder(t *testing.T) {
	if containsPhrase("pipeline the write orchestrates steps", []string{"write", "pipeline"}) {
		t.Error("phrase should not match when terms are not contiguous in order")
	}
}

func TestNormalizeScalesByMax(t *testing.T) {
	got := normalize(map[int64]float64{1: 2, 2: 4})
	if got[1] != 0.5 || got[2] != 1 {
		t.Errorf("normalize() = %v, want {1:0.5, 2:1}", got)
	}
}

func TestNormalizeAllZeroLeavesUnchanged(t *testing.T) {
	got := normalize(map[int64]float64{1: 0, 2: 0})
	if got[1] != 0 || got[2] != 0 {
		t.Errorf("normalize() = %v, want all zero", got)
	}
}

func TestTfidfZeroTermFrequency(t *testing.T) {
	if got := tfidf(0, 3, 10); got != 0 {
		t.Errorf("tfidf(0, ...) = %v, want 0", got)
	}
}

func TestTfidfIncreasesWithTermFrequency(t *testing.T) {
	low := tfidf(1, 2, 10)
	high := tfidf(5, 2, 10)
	if high <= low {
		t.Errorf("tfidf should increase with term frequency: low=%v high=%v", low, high)
	}
}
