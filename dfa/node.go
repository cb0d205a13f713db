// Package dfa provides lazy DFA node storage: a memoising map from an NFA
// subset (package stateset's canonical Set) to the DFA node that
// represents it, built on demand as the match engine walks input bytes.
//
// The cache is shared across every registered regex: a basis set may
// contain NFA nodes owned by many different Regexps at once, so each Node
// tracks, per regex id, whether that regex is active (some basis member
// belongs to it) and terminal (some basis member is one of its accept
// states) rather than a single pattern-wide "isMatch" flag.
package dfa

import (
	"sync"

	"github.com/coregx/rmatch/nfa"
	"github.com/coregx/rmatch/stateset"
)

// NodeID identifies a Node within a Storage for its lifetime.
type NodeID uint32

// Node is a single DFA state: an immutable basis (the NFA subset it
// represents) plus a lazily computed, memoised transition table. Two Nodes
// with equal Basis are never constructed: Storage's compute-if-absent
// lookup guarantees identity follows basis equality.
type Node struct {
	ID    NodeID
	Basis stateset.Set

	// Active holds the ids of regexes with a live (non-accepting) NFA
	// position somewhere in Basis.
	Active stateset.Set
	// Terminal holds the ids of regexes with an accept state in Basis:
	// reaching this Node means that regex has a completed match ending
	// at the current input position.
	Terminal stateset.Set

	once        sync.Once
	transitions [256]*Node
}

// IsDead reports whether this Node's basis is empty: no further input can
// ever lead anywhere but this same dead node, and no regex is active.
func (n *Node) IsDead() bool {
	return n.Basis.Empty()
}

// IsTerminalFor reports whether regexID has a completed match at this
// Node.
func (n *Node) IsTerminalFor(regexID uint32) bool {
	return n.Terminal.Contains(regexID)
}

// IsActiveFor reports whether regexID still has a live NFA position in
// this Node's basis.
func (n *Node) IsActiveFor(regexID uint32) bool {
	return n.Active.Contains(regexID)
}

func newNode(id NodeID, basis stateset.Set, store *nfa.Store) *Node {
	n := &Node{ID: id, Basis: basis}
	basis.Each(func(stateID uint32) {
		node := store.Node(nfa.StateID(stateID))
		switch node.Kind {
		case nfa.KindMatch:
			n.Terminal = n.Terminal.Add(node.Owner)
		case nfa.KindByteRange, nfa.KindSparse:
			n.Active = n.Active.Add(node.Owner)
		}
	})
	return n
}
