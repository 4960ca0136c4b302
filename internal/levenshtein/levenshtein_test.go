package levenshtein

import "testing"

func seqOf(ss ...string) func(func(string) bool) {
	return func(yield func(string) bool) {
		for _, s := range ss {
			if !yield(s) {
				return
			}
		}
	}
}

func TestClosestStrings_PicksSingleClosest(t *testing.T) {
	got := ClosestStrings(3, "greet", seqOf("greet1", "greeting", "wave"))
	if len(got) != 1 || got[0] != "greet1" {
		t.Fatalf("ClosestStrings = %v, want [greet1]", got)
	}
}

func TestClosestStrings_TiesAreAllReturnedSorted(t *testing.T) {
	got := ClosestStrings(3, "cat", seqOf("bat", "hat", "dog"))
	want := []string{"bat", "hat"}
	if len(got) != len(want) {
		t.Fatalf("ClosestStrings = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ClosestStrings = %v, want %v", got, want)
		}
	}
}

func TestClosestStrings_NothingWithinBound(t *testing.T) {
	got := ClosestStrings(1, "cat", seqOf("elephant", "giraffe"))
	if len(got) != 0 {
		t.Fatalf("ClosestStrings = %v, want empty", got)
	}
}

func TestSuggestionFor_SingleMatch(t *testing.T) {
	got := SuggestionFor("greet/1", seqOf("greet/2", "wave/1"))
	if got != `did you mean "greet/2"?` {
		t.Errorf("SuggestionFor = %q", got)
	}
}

func TestSuggestionFor_NoneWithinRange(t *testing.T) {
	got := SuggestionFor("greet/1", seqOf("completely/9", "unrelated/4"))
	if got != "" {
		t.Errorf("SuggestionFor = %q, want empty", got)
	}
}

func TestSuggestionFor_MultipleMatches(t *testing.T) {
	got := SuggestionFor("cat/1", seqOf("bat/1", "hat/1"))
	if got == "" {
		t.Fatal("expected a non-empty multi-candidate suggestion")
	}
}
