package engine

import "testing"

func TestFullBelief(t *testing.T) {
	if got := FullBelief.Count(); got != 25 {
		t.Fatalf("FullBelief.Count() = %d, want 25", got)
	}
	for s := Suit(0); s < NumSuits; s++ {
		for r := Rank(1); r <= NumRanks; r++ {
			if !FullBelief.Possible(s, r) {
				t.Errorf("FullBelief excludes (%d,%d)", s, r)
			}
		}
	}
	if !EmptyBelief.Empty() {
		t.Error("EmptyBelief.Empty() = false")
	}
}

func TestPossible_UnknownIdentity(t *testing.T) {
	if FullBelief.Possible(UnknownSuit, 1) || FullBelief.Possible(0, UnknownRank) {
		t.Error("Possible should be false for unknown suit or rank")
	}
}

func TestCluePredicate(t *testing.T) {
	cases := []struct {
		clue Clue
		in   func(s Suit, r Rank) bool
	}{
		{Clue{Kind: ClueColor, Value: 0}, func(s Suit, r Rank) bool { return s == 0 }},
		{Clue{Kind: ClueColor, Value: 4}, func(s Suit, r Rank) bool { return s == 4 }},
		{Clue{Kind: ClueRank, Value: 1}, func(s Suit, r Rank) bool { return r == 1 }},
		{Clue{Kind: ClueRank, Value: 5}, func(s Suit, r Rank) bool { return r == 5 }},
	}
	for _, tc := range cases {
		p, err := CluePredicate(tc.clue)
		if err != nil {
			t.Fatalf("CluePredicate(%+v): %v", tc.clue, err)
		}
		if p.Count() != 5 {
			t.Errorf("CluePredicate(%+v).Count() = %d, want 5", tc.clue, p.Count())
		}
		for s := Suit(0); s < NumSuits; s++ {
			for r := Rank(1); r <= NumRanks; r++ {
				if got, want := p.Possible(s, r), tc.in(s, r); got != want {
					t.Errorf("clue %+v (%d,%d) = %v, want %v", tc.clue, s, r, got, want)
				}
			}
		}
	}
}

// TestComplementPartition: a predicate and its complement split the 25
// identities exactly.
func TestComplementPartition(t *testing.T) {
	p, _ := CluePredicate(Clue{Kind: ClueRank, Value: 3})
	c := p.Complement()
	if p.Intersect(c) != EmptyBelief {
		t.Errorf("predicate and complement overlap")
	}
	if p|c != FullBelief {
		t.Errorf("predicate and complement do not cover FullBelief")
	}
	if c.Count() != 20 {
		t.Errorf("complement Count = %d, want 20", c.Count())
	}
}

func TestMatrixLayout(t *testing.T) {
	b := beliefBit(2, 4) | beliefBit(0, 0)
	m := b.Matrix()
	if !m[2][4] || !m[0][0] {
		t.Errorf("Matrix missing set entries: %v", m)
	}
	n := 0
	for s := range m {
		for r := range m[s] {
			if m[s][r] {
				n++
			}
		}
	}
	if n != 2 {
		t.Errorf("Matrix has %d set entries, want 2", n)
	}
}
