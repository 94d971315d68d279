package tokenize

import (
	"reflect"
	"sort"
	"testing"
)

func TestTokenizeSplitsOnGapChars(t *testing.T) {
	got := Tokenize("Väg 40, Uppsala!", nil, false)
	want := []string{"väg", "40", "uppsala"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestTokenizeDropsExcludedSingleChar(t *testing.T) {
	got := Tokenize("a + b", nil, false)
	for _, w := range got {
		if w == "+" {
			t.Fatalf("expected '+' to be dropped: %v", got)
		}
	}
}

func TestTokenizeUniqueMode(t *testing.T) {
	got := Tokenize("uppsala uppsala stockholm", nil, true)
	want := []string{"uppsala", "stockholm"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestTokenizeDropsStopwords(t *testing.T) {
	sw := &Stopwords{sorted: []string{"och", "på"}}
	got := Tokenize("hus och gård", sw, false)
	for _, w := range got {
		if w == "och" {
			t.Fatalf("expected stopword dropped: %v", got)
		}
	}
}

func TestMorphologicalVariantsDefiniteNoun(t *testing.T) {
	v := morphologicalVariants("travbanan")
	want := []string{"travbanan", "travbana", "travban"}
	if !reflect.DeepEqual(v, want) {
		t.Fatalf("got %v, want %v", v, want)
	}
}

func TestMorphologicalVariantsBlacklistedSingleTrim(t *testing.T) {
	v := morphologicalVariants("året")
	want := []string{"året", "år"}
	if !reflect.DeepEqual(v, want) {
		t.Fatalf("got %v, want %v", v, want)
	}
}

func TestMorphologicalVariantsGenitive(t *testing.T) {
	v := morphologicalVariants("karlsborgs")
	want := []string{"karlsborgs", "karlsborg"}
	if !reflect.DeepEqual(v, want) {
		t.Fatalf("got %v, want %v", v, want)
	}
}

func TestGenerateCombinationsExcludesMeaninglessAloneAtLength1(t *testing.T) {
	combos := GenerateCombinations([]string{"stora", "torget"}, 1, 1)
	sort.Strings(combos)
	for _, c := range combos {
		if c == "stora" || c == "torget" {
			t.Fatalf("expected meaningless-alone words excluded at length 1: %v", combos)
		}
	}
}

func TestGenerateCombinationsIncludesFullWindow(t *testing.T) {
	combos := GenerateCombinations([]string{"stora", "torget"}, 2, 2)
	found := false
	for _, c := range combos {
		if c == "stora torget" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected full window present: %v", combos)
	}
}

func TestGenerateCombinationsDropsFreestandingNumbers(t *testing.T) {
	combos := GenerateCombinations([]string{"väg", "40"}, 2, 1)
	for _, c := range combos {
		if c == "40" || c == "väg 40" {
			t.Fatalf("expected freestanding numbers dropped from combinations: %v", combos)
		}
	}
}
