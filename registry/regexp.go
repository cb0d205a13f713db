// Package registry implements the Regexp registry: pattern-keyed storage
// for each compiled pattern's attached actions, NFA start state, and the
// per-regex domination heap that decides which of several concurrently
// live matches eventually gets committed.
package registry

import (
	"sync"

	"github.com/coregx/rmatch/domination"
	"github.com/coregx/rmatch/nfa"
)

// Action is invoked once per committed match for the pattern it is
// attached to, with the full input buffer and the match's [start, end]
// span (both inclusive — a single-byte match has start == end).
type Action func(buf []byte, start, end int)

// Sink receives a Regexp's committed matches. Committing is where
// "perform the attached actions" and "record for in-order, deduplicated
// delivery" meet: Sink implementations (package matcher's Sink) are
// responsible for invoking PerformActions themselves, after whatever
// ordering bookkeeping they need.
type Sink interface {
	Commit(r *Regexp, buf []byte, start, end int)
}

// Regexp is one uniquely-registered pattern: its compiled NFA start
// state, attached actions, and live-match bookkeeping.
type Regexp struct {
	ID      uint32
	Pattern string
	Start   nfa.StateID

	// AnchoredStart and AnchoredEnd record a leading "^"/"\A" or trailing
	// "$"/"\z" stripped from the pattern at compile time (nfa.Compile):
	// the NFA itself carries no anchoring, so package matcher's engine
	// consults these flags directly — AnchoredStart gates which position
	// a Match for this regex may ever be seeded at (matcher.seed,
	// matcher.advance), AnchoredEnd gates whether a Final match is
	// committable only once its End reaches the last byte of the input
	// (matcher.resolve).
	AnchoredStart bool
	AnchoredEnd   bool

	// Heap holds this regex's live matches, ordered by domination
	// preference. It is not internally synchronized: the match loop is
	// single-threaded per Matcher run (parallelism is limited to the
	// construction phase), so Heap access is safe without a
	// lock as long as callers don't mix matching with concurrent Add
	// calls that mutate this same Regexp — which Add never does once a
	// Regexp exists, only actions are appended, under actionsMu below.
	Heap *domination.Heap

	actionsMu sync.Mutex
	actions   []Action
}

func newRegexp(id uint32, pattern string, start nfa.StateID, anchoredStart, anchoredEnd bool) *Regexp {
	return &Regexp{
		ID:            id,
		Pattern:       pattern,
		Start:         start,
		AnchoredStart: anchoredStart,
		AnchoredEnd:   anchoredEnd,
		Heap:          domination.NewHeap(),
	}
}

// AddAction attaches a to this Regexp's action list.
func (r *Regexp) AddAction(a Action) {
	r.actionsMu.Lock()
	r.actions = append(r.actions, a)
	r.actionsMu.Unlock()
}

// PerformActions invokes every attached action once with (buf, start,
// end). Actions run outside any lock: a slow or reentrant action must
// never block a concurrent Add from attaching further actions.
func (r *Regexp) PerformActions(buf []byte, start, end int) {
	r.actionsMu.Lock()
	actions := r.actions
	r.actionsMu.Unlock()
	for _, a := range actions {
		a(buf, start, end)
	}
}

// RegisterMatch adds m to this Regexp's live-match set and domination
// heap. m must not already be registered.
//
// Draining the heap back out is deliberately not a Regexp method: a
// commit is only safe once the heap minimum is both Final and Matched,
// and any other live Match whose span overlaps the winner's must be
// discarded first, which needs visibility into the engine's per-position
// matchSet bookkeeping that Regexp does not have. See matcher.resolve.
func (r *Regexp) RegisterMatch(m *domination.Match) {
	r.Heap.PushMatch(m)
}

// RemoveMatch removes m from this Regexp's heap. Removing a Match the
// heap is not currently holding can only happen if the engine's own
// bookkeeping has drifted out of sync with the heap, so it panics with a
// *RegistryConflictError rather than silently doing nothing.
func (r *Regexp) RemoveMatch(m *domination.Match) {
	if !m.InHeap() {
		panic(&RegistryConflictError{Op: "RemoveMatch", Pattern: r.Pattern})
	}
	r.Heap.RemoveMatch(m)
}
