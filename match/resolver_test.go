package match

import "testing"

func pool() []Candidate {
	return []Candidate{
		{ID: 10, Name: "Skeleton", Label: "Skeleton"},
		{ID: 12, Name: "Skeleton", Label: "Skeleton#2"},
		{ID: 14, Name: "Tryx", Label: "Tryx"},
		{ID: 20, Name: "Ashbringer", Label: "Ashbringer"},
	}
}

func TestLabelMatch(t *testing.T) {
	r := NewResolver(nil)
	v := r.Resolve("Tryx", []Candidate{{ID: 14, Name: "Tryx", Label: "Tryx"}})
	if !v.Matched {
		t.Fatal("expected match")
	}
	if v.Kind != MatchLabel {
		t.Errorf("Kind = %q, want %q", v.Kind, MatchLabel)
	}
	if v.Confidence < 0.9 {
		t.Errorf("Confidence = %f, want >= 0.9", v.Confidence)
	}
	if v.Candidate.ID != 14 {
		t.Errorf("Candidate.ID = %d, want 14", v.Candidate.ID)
	}
}

func TestDecoratedLabelMatch(t *testing.T) {
	r := NewResolver(nil)
	v := r.Resolve("Skeleton#2", pool())
	if !v.Matched || v.Candidate.ID != 12 {
		t.Fatalf("Skeleton#2 = %+v, want unit 12", v)
	}
	if v.Kind != MatchLabel || v.Confidence != 1.0 {
		t.Errorf("kind/confidence = %q/%f, want label/1.0", v.Kind, v.Confidence)
	}
}

func TestIndexedPick(t *testing.T) {
	// Two same-named units; #2 is the second-lowest-ID one even if the pool
	// is shuffled.
	shuffled := []Candidate{
		{ID: 12, Name: "Tryx", Label: "Tryx#2"},
		{ID: 9, Name: "Tryx", Label: "Tryx"},
	}
	r := NewResolver(nil)

	v := r.Resolve("Tryx#2", shuffled)
	if !v.Matched || v.Candidate.ID != 12 {
		t.Errorf("Tryx#2 = %+v, want unit 12", v)
	}

	v = r.Resolve("Tryx#1", shuffled)
	if !v.Matched || v.Candidate.ID != 9 {
		t.Errorf("Tryx#1 = %+v, want unit 9", v)
	}
}

func TestBareNameWithDuplicates(t *testing.T) {
	r := NewResolver(nil)
	v := r.Resolve("Skeleton", pool())
	if !v.Matched || v.Candidate.ID != 10 {
		t.Errorf("Skeleton = %+v, want the first (unit 10)", v)
	}
	if v.Kind != MatchLabel {
		// "Skeleton" is also the first unit's decorated label.
		t.Errorf("Kind = %q, want %q", v.Kind, MatchLabel)
	}
}

func TestOutOfRangeIndex(t *testing.T) {
	r := NewResolver(nil)
	v := r.Resolve("Skeleton#5", pool())
	if v.Matched {
		t.Fatal("expected no match for out-of-range index")
	}
	if v.Kind != MatchNone {
		t.Errorf("Kind = %q, want %q", v.Kind, MatchNone)
	}
	if len(v.Alternatives) != 2 {
		t.Errorf("Alternatives = %v, want the whole same-named group", v.Alternatives)
	}
}

func TestAliasMatch(t *testing.T) {
	reg := NewAliasRegistry(map[string][]string{"Ashbringer": {"Ash"}})
	r := NewResolver(reg)
	v := r.Resolve("Ash", pool())
	if !v.Matched || v.Candidate.ID != 20 {
		t.Fatalf("Ash = %+v, want unit 20", v)
	}
	if v.Kind != MatchAlias {
		t.Errorf("Kind = %q, want %q", v.Kind, MatchAlias)
	}
}

func TestFuzzyMatch(t *testing.T) {
	r := NewResolver(nil)

	v := r.Resolve("Skeletn", []Candidate{{ID: 10, Name: "Skeleton", Label: "Skeleton"}})
	if !v.Matched || v.Kind != MatchFuzzy {
		t.Fatalf("Skeletn = %+v, want fuzzy match", v)
	}
	if v.Confidence < 0.6 {
		t.Errorf("Confidence = %f, want >= floor", v.Confidence)
	}

	// Containment earns a bonus.
	v = r.Resolve("Grave", []Candidate{{ID: 21, Name: "Gravekeeper", Label: "Gravekeeper"}})
	if !v.Matched || v.Kind != MatchFuzzy {
		t.Errorf("Grave = %+v, want fuzzy match via containment", v)
	}
}

func TestNoMatchBelowFloor(t *testing.T) {
	r := NewResolver(nil)
	v := r.Resolve("Zzz", pool())
	if v.Matched {
		t.Fatalf("Zzz matched %+v, want none", v.Candidate)
	}
	if v.Kind != MatchNone {
		t.Errorf("Kind = %q, want %q", v.Kind, MatchNone)
	}
}

func TestFuzzyTieKeepsInputOrder(t *testing.T) {
	r := NewResolver(nil)
	candidates := []Candidate{
		{ID: 2, Name: "Wisp", Label: "Wisp"},
		{ID: 1, Name: "Wasp", Label: "Wasp"},
	}
	v := r.Resolve("Wosp", candidates)
	if !v.Matched || v.Candidate.ID != 2 {
		t.Errorf("tie broke to %+v, want the earlier candidate (unit 2)", v.Candidate)
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "abc", 3},
		{"abc", "abc", 0},
		{"kitten", "sitting", 3},
		{"skeleton", "skeletn", 1},
	}
	for _, tc := range tests {
		if got := levenshtein(tc.a, tc.b); got != tc.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestSplitIndex(t *testing.T) {
	tests := []struct {
		in    string
		base  string
		index int
	}{
		{"Skeleton#2", "Skeleton", 2},
		{"Skeleton", "Skeleton", 0},
		{"Skeleton#x", "Skeleton#x", 0},
		{"#2", "#2", 0},
		{"Skeleton#", "Skeleton#", 0},
	}
	for _, tc := range tests {
		base, index := splitIndex(tc.in)
		if base != tc.base || index != tc.index {
			t.Errorf("splitIndex(%q) = (%q,%d), want (%q,%d)", tc.in, base, index, tc.base, tc.index)
		}
	}
}
