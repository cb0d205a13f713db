package domination

import "testing"

func TestCompareSameStartLongerEndWins(t *testing.T) {
	m1 := &Match{RegexID: 1, Start: 0, End: 3}
	m2 := &Match{RegexID: 1, Start: 0, End: 5}
	if Compare(m2, m1) >= 0 {
		t.Fatal("longer End at equal Start should be preferred")
	}
	if Compare(m1, m2) <= 0 {
		t.Fatal("shorter End at equal Start should not be preferred")
	}
}

func TestCompareEarlierStartWins(t *testing.T) {
	m1 := &Match{RegexID: 1, Start: 0, End: 10}
	m2 := &Match{RegexID: 1, Start: 2, End: 10}
	if Compare(m2, m1) <= 0 {
		t.Fatal("later Start should not be preferred even with an equal End")
	}
	if Compare(m1, m2) >= 0 {
		t.Fatal("earlier Start should be preferred")
	}
}

func TestCompareIdenticalSpansEqual(t *testing.T) {
	m1 := &Match{RegexID: 1, Start: 1, End: 4}
	m2 := &Match{RegexID: 1, Start: 1, End: 4}
	if Compare(m1, m2) != 0 {
		t.Fatal("identical spans of the same regex should compare equal")
	}
}

func TestCompareDifferentRegexesAreIncomparable(t *testing.T) {
	m1 := &Match{RegexID: 1, Start: 0, End: 100}
	m2 := &Match{RegexID: 2, Start: 50, End: 51}
	if Compare(m1, m2) != 0 || Compare(m2, m1) != 0 {
		t.Fatal("matches of different regexes must compare equal (incomparable)")
	}
}

func TestCompareNilPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Compare(m, nil) should panic: a nil Match violates the heap's contract")
		}
	}()
	Compare(&Match{RegexID: 1}, nil)
}

func TestSuppressesInsideSpan(t *testing.T) {
	a := &Match{RegexID: 1, Start: 0, End: 5}
	b := &Match{RegexID: 1, Start: 3, End: 4}
	if !Suppresses(a, b) {
		t.Fatal("a committed at [0,5] should suppress b starting inside it")
	}
	if Suppresses(b, a) {
		t.Fatal("b should not suppress the earlier-starting a")
	}
}

// Suppression is about where b starts, not where it ends: a match
// extending past the winner's span is still foreclosed once the winner
// is delivered, and b's Final flag plays no part.
func TestSuppressesIgnoresEndAndFinal(t *testing.T) {
	a := &Match{RegexID: 1, Start: 0, End: 2, Final: true}
	b := &Match{RegexID: 1, Start: 2, End: 7, Final: true}
	if !Suppresses(a, b) {
		t.Fatal("b starting at a's last position should be suppressed despite its longer end")
	}
	c := &Match{RegexID: 1, Start: 3, End: 4}
	if Suppresses(a, c) {
		t.Fatal("c starting after a's span should not be suppressed")
	}
}

func TestSuppressesDifferentRegex(t *testing.T) {
	a := &Match{RegexID: 1, Start: 0, End: 5}
	b := &Match{RegexID: 2, Start: 3, End: 4}
	if Suppresses(a, b) {
		t.Fatal("matches of different regexes never suppress each other")
	}
}

func TestStronglyDominates(t *testing.T) {
	a := &Match{RegexID: 1, Start: 0, End: 5, Final: true}
	b := &Match{RegexID: 1, Start: 1, End: 4, Final: false}
	if !StronglyDominates(a, b) {
		t.Fatal("a (final, spanning b) should strongly dominate b")
	}
	if StronglyDominates(b, a) {
		t.Fatal("b should not strongly dominate a")
	}
}

func TestStronglyDominatesRequiresFinal(t *testing.T) {
	a := &Match{RegexID: 1, Start: 0, End: 5, Final: false}
	b := &Match{RegexID: 1, Start: 1, End: 4, Final: false}
	if StronglyDominates(a, b) {
		t.Fatal("a non-final match should never strongly dominate")
	}
}

func TestStronglyDominatesDifferentRegex(t *testing.T) {
	a := &Match{RegexID: 1, Start: 0, End: 5, Final: true}
	b := &Match{RegexID: 2, Start: 1, End: 4, Final: false}
	if StronglyDominates(a, b) {
		t.Fatal("matches of different regexes can never strongly dominate")
	}
}

func TestHeapOrdersByPreference(t *testing.T) {
	h := NewHeap()
	m1 := NewMatch(1, 5)
	m1.End = 6
	m2 := NewMatch(1, 2)
	m2.End = 9
	m3 := NewMatch(1, 2)
	m3.End = 20
	h.PushMatch(m1)
	h.PushMatch(m2)
	h.PushMatch(m3)

	if got := h.Peek(); got != m3 {
		t.Fatalf("Peek() = %+v, want the earliest-start, longest-end match", got)
	}
}

func TestHeapRemoveArbitrary(t *testing.T) {
	h := NewHeap()
	m1 := NewMatch(1, 0)
	m2 := NewMatch(1, 1)
	m3 := NewMatch(1, 2)
	h.PushMatch(m1)
	h.PushMatch(m2)
	h.PushMatch(m3)

	h.RemoveMatch(m1)
	if h.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", h.Len())
	}
	if got := h.Peek(); got != m2 {
		t.Fatalf("Peek() = %+v, want m2 (now the earliest start)", got)
	}

	// Removing an already-removed match is a no-op, not a panic.
	h.RemoveMatch(m1)
	if h.Len() != 2 {
		t.Fatalf("Len() after redundant remove = %d, want 2", h.Len())
	}
}

func TestHeapFixAfterExtension(t *testing.T) {
	h := NewHeap()
	m1 := NewMatch(1, 0)
	m1.End = 1
	m2 := NewMatch(1, 0)
	m2.End = 2
	h.PushMatch(m1)
	h.PushMatch(m2)
	if got := h.Peek(); got != m2 {
		t.Fatalf("Peek() = %+v, want m2 (longer End)", got)
	}

	m1.End = 10
	h.Fix(m1)
	if got := h.Peek(); got != m1 {
		t.Fatalf("Peek() after Fix = %+v, want m1 (now longer End)", got)
	}
}

func TestHeapPeekEmpty(t *testing.T) {
	h := NewHeap()
	if got := h.Peek(); got != nil {
		t.Fatalf("Peek() on empty heap = %v, want nil", got)
	}
}
