package registry

import (
	"sync"

	"github.com/coregx/rmatch/nfa"
)

// Registry indexes every registered pattern to its Regexp, one per
// unique pattern string, and owns the shared NFA Store every pattern
// compiles into.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*Regexp
	all    []*Regexp
	nfa    *nfa.Store
	nextID uint32
}

// New creates an empty Registry whose patterns compile into store.
func New(store *nfa.Store) *Registry {
	return &Registry{byName: make(map[string]*Regexp), nfa: store}
}

// Add compiles pattern if it has not been seen before, attaching its
// start NFA node to the shared Start Node, and attaches action to its
// Regexp. A second Add for an already-known pattern attaches another
// action rather than recompiling; both actions fire on every future
// commit for that pattern.
func (g *Registry) Add(pattern string, action Action) (*Regexp, error) {
	g.mu.RLock()
	if r, ok := g.byName[pattern]; ok {
		g.mu.RUnlock()
		r.AddAction(action)
		return r, nil
	}
	g.mu.RUnlock()

	g.mu.Lock()
	defer g.mu.Unlock()
	if r, ok := g.byName[pattern]; ok {
		r.AddAction(action)
		return r, nil
	}

	id := g.nextID
	start, anchoredStart, anchoredEnd, err := nfa.Compile(pattern, g.nfa, id)
	if err != nil {
		return nil, &ParseError{Pattern: pattern, Err: err}
	}
	g.nfa.AttachStart(start)

	r := newRegexp(id, pattern, start, anchoredStart, anchoredEnd)
	r.AddAction(action)
	g.nextID++
	g.byName[pattern] = r
	g.all = append(g.all, r)
	return r, nil
}

// Remove is a no-op: Regexps live for their Registry's lifetime, since
// their NFA nodes are already woven into the shared Start Node and the
// interned DFA node bases. It exists so hosts that manage pattern sets
// symmetrically (add/remove) have something to call; a pattern that
// should stop firing can simply have no actions attached in a new
// Matcher.
func (g *Registry) Remove(pattern string) {}

// Get returns the Regexp registered for pattern, if any.
func (g *Registry) Get(pattern string) (*Regexp, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	r, ok := g.byName[pattern]
	return r, ok
}

// ByID returns the Regexp with the given id. Ids are assigned
// sequentially starting at 0, so this is an O(1) slice index.
func (g *Registry) ByID(id uint32) *Regexp {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if int(id) >= len(g.all) {
		return nil
	}
	return g.all[id]
}

// All returns every registered Regexp, in registration order. The
// returned slice must not be modified.
func (g *Registry) All() []*Regexp {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.all
}

// Len reports how many distinct patterns are registered.
func (g *Registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.all)
}
