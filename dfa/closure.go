package dfa

import (
	"github.com/coregx/rmatch/nfa"
	"github.com/coregx/rmatch/stateset"
)

// closure expands raw (a set of NFA ids reached by consuming a byte, or
// the Start Node's id when building the initial DFA node) into its
// epsilon-closure, following Split, Epsilon, and EpsilonSet edges. The
// result contains only "real" states — ByteRange, Sparse, and Match nodes
// — which is exactly the basis a DFA Node is defined over.
func closure(store *nfa.Store, raw stateset.Set) stateset.Set {
	var result stateset.Set
	seen := map[nfa.StateID]bool{}

	var walk func(id nfa.StateID)
	walk = func(id nfa.StateID) {
		if seen[id] {
			return
		}
		seen[id] = true
		n := store.Node(id)
		switch n.Kind {
		case nfa.KindSplit:
			walk(n.Left)
			walk(n.Right)
		case nfa.KindEpsilon:
			walk(n.Next)
		case nfa.KindEpsilonSet:
			for _, t := range n.Targets {
				walk(t)
			}
		default:
			result = result.Add(uint32(id))
		}
	}

	raw.Each(func(id uint32) { walk(nfa.StateID(id)) })
	return result
}

// move collects the raw set of NFA ids reachable from basis by consuming
// byte b, before epsilon-closure.
func move(store *nfa.Store, basis stateset.Set, b byte) stateset.Set {
	var raw stateset.Set
	basis.Each(func(id uint32) {
		n := store.Node(nfa.StateID(id))
		switch n.Kind {
		case nfa.KindByteRange:
			if b >= n.Lo && b <= n.Hi {
				raw = raw.Add(uint32(n.Next))
			}
		case nfa.KindSparse:
			for _, tr := range n.Transitions {
				if b >= tr.Lo && b <= tr.Hi {
					raw = raw.Add(uint32(tr.Next))
				}
			}
		}
	})
	return raw
}
