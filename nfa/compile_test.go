package nfa

import "testing"

// closure expands a set of states by following every epsilon-like edge
// (Split, Epsilon) reachable without consuming a byte. It's a minimal
// simulation harness for exercising Compile's output directly, independent
// of the lazy-DFA determinization built on top of it in package dfa.
func closure(store *Store, states map[StateID]bool, owner uint32, out map[StateID]bool) {
	var walk func(id StateID)
	seen := map[StateID]bool{}
	walk = func(id StateID) {
		if seen[id] {
			return
		}
		seen[id] = true
		n := store.Node(id)
		switch n.Kind {
		case KindSplit:
			walk(n.Left)
			walk(n.Right)
		case KindEpsilon:
			walk(n.Next)
		default:
			out[id] = true
		}
	}
	for id := range states {
		walk(id)
	}
}

// runMatches reports whether the fragment starting at start matches input
// exactly (start to end of string) for the given owner id.
func runMatches(t *testing.T, store *Store, start StateID, owner uint32, input string) bool {
	t.Helper()
	cur := map[StateID]bool{}
	closure(store, map[StateID]bool{start: true}, owner, cur)

	for i := 0; i < len(input); i++ {
		b := input[i]
		next := map[StateID]bool{}
		for id := range cur {
			n := store.Node(id)
			switch n.Kind {
			case KindByteRange:
				if b >= n.Lo && b <= n.Hi {
					next[n.Next] = true
				}
			case KindSparse:
				for _, tr := range n.Transitions {
					if b >= tr.Lo && b <= tr.Hi {
						next[tr.Next] = true
					}
				}
			}
		}
		cur = map[StateID]bool{}
		closure(store, next, owner, cur)
	}

	for id := range cur {
		n := store.Node(id)
		if n.Kind == KindMatch && n.Owner == owner {
			return true
		}
	}
	return false
}

func compileAndCheck(t *testing.T, pattern string, cases map[string]bool) {
	t.Helper()
	store := NewStore()
	start, _, _, err := Compile(pattern, store, 7)
	if err != nil {
		t.Fatalf("Compile(%q): %v", pattern, err)
	}
	for input, want := range cases {
		got := runMatches(t, store, start, 7, input)
		if got != want {
			t.Errorf("pattern %q, input %q: matched=%v, want %v", pattern, input, got, want)
		}
	}
}

func TestCompileLiteral(t *testing.T) {
	compileAndCheck(t, "abc", map[string]bool{
		"abc": true,
		"ab":  false,
		"abcd": false,
		"":    false,
	})
}

func TestCompileCaseFoldLiteral(t *testing.T) {
	compileAndCheck(t, "(?i)abc", map[string]bool{
		"abc": true,
		"ABC": true,
		"AbC": true,
		"abd": false,
	})
}

func TestCompileCaseFoldLiteralUnicode(t *testing.T) {
	compileAndCheck(t, "(?i)café", map[string]bool{
		"café": true,
		"CAFÉ": true,
		"Café": true,
		"cafe": false,
	})
}

func TestCompileCharClass(t *testing.T) {
	compileAndCheck(t, "[a-c]", map[string]bool{
		"a": true,
		"b": true,
		"c": true,
		"d": false,
	})
}

func TestCompileNegatedCharClass(t *testing.T) {
	compileAndCheck(t, "[^,]", map[string]bool{
		"a": true,
		",": false,
		"é": true, // multi-byte rune, exercises the non-ASCII fast path
	})
}

func TestCompileAlternate(t *testing.T) {
	compileAndCheck(t, "cat|dog", map[string]bool{
		"cat": true,
		"dog": true,
		"cow": false,
	})
}

func TestCompileStar(t *testing.T) {
	compileAndCheck(t, "ab*", map[string]bool{
		"a":    true,
		"ab":   true,
		"abbb": true,
		"b":    false,
	})
}

func TestCompilePlus(t *testing.T) {
	compileAndCheck(t, "ab+", map[string]bool{
		"a":    false,
		"ab":   true,
		"abbb": true,
	})
}

func TestCompileQuest(t *testing.T) {
	compileAndCheck(t, "ab?c", map[string]bool{
		"ac":  true,
		"abc": true,
		"abbc": false,
	})
}

func TestCompileRepeatExact(t *testing.T) {
	compileAndCheck(t, "a{3}", map[string]bool{
		"aaa":  true,
		"aa":   false,
		"aaaa": false,
	})
}

func TestCompileRepeatRange(t *testing.T) {
	compileAndCheck(t, "a{2,4}", map[string]bool{
		"a":     false,
		"aa":    true,
		"aaa":   true,
		"aaaa":  true,
		"aaaaa": false,
	})
}

func TestCompileRepeatOpenEnded(t *testing.T) {
	compileAndCheck(t, "a{2,}", map[string]bool{
		"a":      false,
		"aa":     true,
		"aaaaaa": true,
	})
}

func TestCompileAnyChar(t *testing.T) {
	compileAndCheck(t, "a.c", map[string]bool{
		"abc":  true,
		"aéc": true,
		"ac":   false,
	})
}

func TestCompileWholePatternAnchors(t *testing.T) {
	store := NewStore()
	_, anchoredStart, anchoredEnd, err := Compile("^abc$", store, 1)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !anchoredStart || !anchoredEnd {
		t.Fatalf("anchoredStart=%v anchoredEnd=%v, want true, true", anchoredStart, anchoredEnd)
	}
}

func TestCompileStartAnchorOnly(t *testing.T) {
	store := NewStore()
	_, anchoredStart, anchoredEnd, err := Compile("^abc", store, 1)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !anchoredStart || anchoredEnd {
		t.Fatalf("anchoredStart=%v anchoredEnd=%v, want true, false", anchoredStart, anchoredEnd)
	}
}

func TestCompileInvalidPattern(t *testing.T) {
	store := NewStore()
	_, _, _, err := Compile("a(", store, 1)
	if err == nil {
		t.Fatal("expected error for unbalanced group")
	}
	var ce *CompileError
	if !asCompileError(err, &ce) {
		t.Fatalf("expected *CompileError, got %T", err)
	}
}

func asCompileError(err error, target **CompileError) bool {
	ce, ok := err.(*CompileError)
	if ok {
		*target = ce
	}
	return ok
}

func TestCompileSharesStoreAcrossRegexes(t *testing.T) {
	store := NewStore()
	s1, _, _, err := Compile("foo", store, 1)
	if err != nil {
		t.Fatalf("Compile foo: %v", err)
	}
	s2, _, _, err := Compile("bar", store, 2)
	if err != nil {
		t.Fatalf("Compile bar: %v", err)
	}
	store.AttachStart(s1)
	store.AttachStart(s2)

	if !runMatches(t, store, s1, 1, "foo") {
		t.Error("foo should match its own fragment")
	}
	if runMatches(t, store, s1, 2, "foo") {
		t.Error("foo fragment should not report a match for owner 2")
	}
	if !runMatches(t, store, s2, 2, "bar") {
		t.Error("bar should match its own fragment")
	}
}
