// Package prefilter implements the sound negative oracle that lets the
// match engine skip input positions where no registered pattern can
// possibly begin a match. It never suppresses a true match: above the
// activation threshold it narrows the search, below it (or whenever any
// registered pattern lacks a usable literal prefix) it is a no-op.
//
// The oracle is an Aho-Corasick automaton over each pattern's literal
// prefix, backed by the ahocorasick library's multi-literal scan.
package prefilter

import (
	"github.com/coregx/ahocorasick"

	"github.com/coregx/rmatch/nfa"
)

// RegexStart names the NFA start state of one registered regex, the unit
// BuildFromNFA extracts a literal prefix from.
type RegexStart struct {
	ID    uint32
	Start nfa.StateID
}

// Gate is the constructed prefilter: an Aho-Corasick automaton over every
// pattern's literal prefix, or a permanently "possible everywhere" no-op
// when any pattern lacks one.
type Gate struct {
	automaton   *ahocorasick.Automaton
	hasWildcard bool
}

// BuildFromNFA walks each regex's NFA start chain to extract its literal
// prefix (the longest run of single-byte transitions before the first
// branch) and builds the Aho-Corasick automaton over all of them. A
// pattern that contributes no usable prefix (it starts with a class,
// star, or alternation) makes the whole Gate a no-op: a pattern without a
// literal prefix must make the prefilter report "possible" everywhere
// rather than being silently excluded from the scan.
//
// Every prefix is truncated to the length of the shortest one before
// registration. Automaton.Find reports the occurrence with the earliest
// end; with mixed-length prefixes that occurrence can start later than an
// occurrence of a longer prefix it overlaps (patterns "b" and "abc" on
// input "abc": "b" ends first but starts at 1, hiding "abc" at 0), which
// would make NextPossible skip a real match start. Equal-length prefixes
// make earliest-end and earliest-start coincide, so the single Find call
// is a sound answer to "no pattern can begin before m.Start".
func BuildFromNFA(store *nfa.Store, starts []RegexStart) (*Gate, error) {
	g := &Gate{}
	lits := make([][]byte, 0, len(starts))
	minLen := 0
	for _, rs := range starts {
		lit := literalPrefix(store, rs.Start)
		if len(lit) == 0 {
			g.hasWildcard = true
			continue
		}
		if minLen == 0 || len(lit) < minLen {
			minLen = len(lit)
		}
		lits = append(lits, lit)
	}
	if g.hasWildcard || len(lits) == 0 {
		return g, nil
	}

	builder := ahocorasick.NewBuilder()
	seen := make(map[string]bool, len(lits))
	for _, lit := range lits {
		lit = lit[:minLen]
		if seen[string(lit)] {
			continue
		}
		seen[string(lit)] = true
		builder.AddPattern(lit)
	}
	automaton, err := builder.Build()
	if err != nil {
		return nil, err
	}
	g.automaton = automaton
	return g, nil
}

// literalPrefix walks the NFA fragment rooted at start, following
// single-byte (Lo == Hi) ByteRange and Epsilon transitions, and returns
// the concrete byte sequence collected before hitting a branch (Split,
// Sparse), a non-singleton byte range, a Match node, or a dangling edge.
func literalPrefix(store *nfa.Store, start nfa.StateID) []byte {
	var lit []byte
	id := start
	seen := map[nfa.StateID]bool{}
	for id != nfa.InvalidState && !seen[id] {
		seen[id] = true
		n := store.Node(id)
		switch n.Kind {
		case nfa.KindEpsilon:
			id = n.Next
		case nfa.KindByteRange:
			if n.Lo != n.Hi {
				return lit
			}
			lit = append(lit, n.Lo)
			id = n.Next
		default:
			return lit
		}
	}
	return lit
}

// NextPossible returns the smallest position >= from at which some
// registered pattern might begin a match, or len(buf) if none can. When
// the Gate has a wildcard pattern (or no literal patterns to scan for at
// all), every position is possible, so NextPossible returns from
// unconditionally: this is what makes the prefilter a sound negative
// oracle rather than a heuristic one.
func (g *Gate) NextPossible(buf []byte, from int) int {
	if g.hasWildcard || g.automaton == nil {
		return from
	}
	m := g.automaton.Find(buf, from)
	if m == nil {
		return len(buf)
	}
	return m.Start
}
