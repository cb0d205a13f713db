package dfa

import (
	"sync"

	"github.com/coregx/rmatch/nfa"
	"github.com/coregx/rmatch/stateset"
)

// Storage is a StateSet → Node map shared by every regex of one Matcher. It provides atomic
// "compute-if-absent" semantics: concurrent callers asking for the same
// basis during construction always receive the same *Node. Keys are
// stateset hashes, so each map bucket holds every Node whose basis hashes
// alike and lookups confirm actual content equality.
type Storage struct {
	mu    sync.RWMutex
	nfa   *nfa.Store
	nodes map[stateset.Key][]*Node

	nextID       NodeID
	start        *Node
	startTargets int // Start Node target count start was built from
	maxNodes     NodeID
	clears   int
}

// NewStorage creates an empty Storage bound to nfaStore. All Nodes it
// produces reference nfaStore for lazy transition computation. maxNodes
// caps how many distinct Nodes are held at once before the table is
// cleared and rebuilt (see getOrCreate); 0 means unbounded.
func NewStorage(nfaStore *nfa.Store, maxNodes uint32) *Storage {
	return &Storage{nfa: nfaStore, nodes: make(map[stateset.Key][]*Node), maxNodes: NodeID(maxNodes)}
}

// Start returns the DFA start node: the canonical node for the
// epsilon-closure of the NFA Store's Start Node, i.e. every registered
// regex's start position at once. The node is cached and rebuilt when
// regexes have been attached to the Start Node since it was last built.
func (s *Storage) Start() *Node {
	targets := len(s.nfa.Node(nfa.StartNodeID).Targets)
	s.mu.Lock()
	if s.start != nil && s.startTargets == targets {
		defer s.mu.Unlock()
		return s.start
	}
	s.mu.Unlock()

	basis := closure(s.nfa, stateset.New(uint32(nfa.StartNodeID)))
	n := s.getOrCreate(basis)

	s.mu.Lock()
	if s.start == nil || s.startTargets != targets {
		s.start = n
		s.startTargets = targets
	}
	defer s.mu.Unlock()
	return s.start
}

// getOrCreate returns the canonical Node for basis, building and
// registering one if this is the first request for that content. Safe for
// concurrent use: at most one Node is ever materialised per distinct
// basis, regardless of how many goroutines race to request it.
func (s *Storage) getOrCreate(basis stateset.Set) *Node {
	key := basis.CanonicalKey()

	s.mu.RLock()
	for _, n := range s.nodes[key] {
		if n.Basis.Equal(basis) {
			s.mu.RUnlock()
			return n
		}
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.nodes[key] {
		if n.Basis.Equal(basis) {
			return n
		}
	}
	if s.maxNodes > 0 && s.nextID >= s.maxNodes {
		s.clearLocked()
	}
	n := newNode(s.nextID, basis, s.nfa)
	s.nextID++
	s.nodes[key] = append(s.nodes[key], n)
	return n
}

// clearLocked drops every entry from the Node table, keeping the
// underlying map allocation and restarting id assignment from zero. s.start
// is left untouched: it is a direct pointer, not a map lookup, so it stays
// valid and Start() keeps returning it. Nodes already handed out to callers
// (held by a live matchSet, or reachable through another Node's
// transitions array) stay individually valid: a Node's transitions row is
// computed once and never consulted through Storage again, so clearing
// only affects future getOrCreate lookups, not Nodes already in use. The
// table is cleared entirely and search continues; states are never evicted
// individually, and clears is tracked for introspection only, not compared
// against a ceiling.
func (s *Storage) clearLocked() {
	for k := range s.nodes {
		delete(s.nodes, k)
	}
	s.nextID = 0
	s.clears++
}

// Clears reports how many times the Node table has been cleared to stay
// within MaxDFANodes. A non-zero count under sustained matching indicates
// the configured cap is too small for the registered pattern set's
// reachable state space.
func (s *Storage) Clears() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clears
}

// Step returns the Node reached from n by consuming byte b, computing and
// caching n's entire transition row on first use. Subsequent calls for
// any byte on this Node are O(1).
func (s *Storage) Step(n *Node, b byte) *Node {
	n.once.Do(func() { s.computeRow(n) })
	return n.transitions[b]
}

func (s *Storage) computeRow(n *Node) {
	for b := 0; b < 256; b++ {
		raw := move(s.nfa, n.Basis, byte(b))
		closed := closure(s.nfa, raw)
		n.transitions[b] = s.getOrCreate(closed)
	}
}

// Size reports how many distinct DFA nodes have been materialised since
// the node table was last cleared (see clearLocked).
func (s *Storage) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int(s.nextID)
}
