package matcher

import (
	"math"

	"github.com/coregx/rmatch/buffer"
	"github.com/coregx/rmatch/dfa"
	"github.com/coregx/rmatch/domination"
	"github.com/coregx/rmatch/prefilter"
	"github.com/coregx/rmatch/registry"
	"github.com/coregx/rmatch/stateset"
)

// matchSet is the set of live Matches sharing a common starting position,
// keyed by the DFA node their shared NFA subset has reached after
// consuming input through the current position.
//
// resolved records regex ids whose Match at this start has already been
// committed or discarded. The shared DFA node keeps every co-resident
// regex's NFA threads alive as long as any regex here is live, so
// advance's discovery step would otherwise see a resolved regex still
// active in the basis, find it absent from matches, and rebuild a Match
// for it at this same start — resurrecting a span the domination protocol
// already ruled out.
type matchSet struct {
	start    int
	node     *dfa.Node
	matches  map[uint32]*domination.Match
	resolved map[uint32]bool
}

func newMatchSet(start int, node *dfa.Node) *matchSet {
	return &matchSet{
		start:    start,
		node:     node,
		matches:  make(map[uint32]*domination.Match),
		resolved: make(map[uint32]bool),
	}
}

// run streams b through the shared automaton, invoking each touched
// Regexp's attached actions via sink as matches become committable. Each
// input byte goes through the same sequence: advance (dropping emptied
// MatchSets), prefilter gate, seed, then domination and commit, followed by an
// end-of-input pass that finalises or abandons whatever is still live.
// End of input is b.HasNext() going false, not a sentinel error; it is a
// normal terminal event.
//
// gate and fastLane are snapshots taken by Match under their respective
// locks (matcher.ensureGate, matcher.ensureFastLane) rather than read
// from m directly: both fields are rebuilt as the registry grows, and
// reading them here unsynchronized would race a concurrent Match call
// on the same Matcher rebuilding them.
func (m *Matcher) run(b *buffer.Buffer, sink *Sink, gate *prefilter.Gate, fastLane [128]bool) {
	buf := b.Bytes()
	startNode := m.dfaStore.Start()
	live := make(map[int]*matchSet)
	touched := m.acquireTouched()
	defer m.releaseTouched(touched)

	usePrefilter := gate != nil && m.cfg.Prefilter == Auto && m.registry.Len() >= int(m.cfg.PrefilterThreshold)
	useFastLane := m.cfg.Engine == Fastpath

	// pfNext is the next position at which the gate says some pattern
	// might begin. Rescanning happens only when the cursor reaches it, so
	// the Aho-Corasick automaton walks each input region once per run, not
	// once per position.
	pfNext := 0
	if usePrefilter {
		pfNext = gate.NextPossible(buf, 0)
	}

	for b.HasNext() {
		p := b.Pos()
		c := b.Next()
		for k := range touched {
			delete(touched, k)
		}

		// Advance every matchSet seeded at an earlier position.
		for s, ms := range live {
			m.advance(ms, c, p, touched)
			if len(ms.matches) == 0 {
				delete(live, s)
			}
		}

		// Seed: try to start a new MatchSet at p. The fast lane skips the
		// DFA transition outright for an ASCII byte known to start no
		// registered pattern; the prefilter gate narrows further when
		// enabled. Either is purely an optimisation over calling Step and
		// checking IsDead directly.
		canStart := !useFastLane || c >= 128 || fastLane[c]
		if usePrefilter {
			if p == pfNext {
				pfNext = gate.NextPossible(buf, p+1)
			} else {
				canStart = false
			}
		}
		if canStart {
			if next := m.dfaStore.Step(startNode, c); !next.IsDead() {
				ms := newMatchSet(p, next)
				m.seed(ms, p, touched)
				if len(ms.matches) > 0 {
					live[p] = ms
				}
			}
		}

		for _, r := range touched {
			resolve(live, r, buf, sink)
		}

		sink.flushUpTo(buf, minLiveStart(live))
	}

	// End of input: nothing can be extended further, so every still-live
	// Match becomes Final regardless of whether its regex was still
	// active. Matches that never reached an accepting node (never
	// Matched) are abandoned without commit; matches that did are
	// resolved through the same domination+commit path as the main loop.
	for _, ms := range live {
		for _, mm := range ms.matches {
			mm.Final = true
		}
	}
	for _, r := range m.registry.All() {
		resolve(live, r, buf, sink)
	}
	sink.flushUpTo(buf, math.MaxInt)
}

func minLiveStart(live map[int]*matchSet) int {
	min := math.MaxInt
	for s := range live {
		if s < min {
			min = s
		}
	}
	return min
}

// seed populates ms (already positioned at the DFA node reached by
// consuming buf[p] from the Start Node) with one fresh Match per regex
// with any basis member there. Active alone is not enough: a regex whose
// shortest match is exactly one byte (e.g. "[a-z]") reaches a node where
// its only basis member is the Match state itself, so it is Terminal but
// never Active — skipping such regexes here would silently drop them.
//
// A regex compiled from an AnchoredStart pattern (a leading "^"/"\A") can
// only ever start at position 0: the NFA itself has no notion of
// anchoring (stripAnchors strips "^"/"$" before compilation), so this
// gate is what keeps such a regex from being seeded at p == ms.start != 0.
func (m *Matcher) seed(ms *matchSet, p int, touched map[uint32]*registry.Regexp) {
	stateset.Union(ms.node.Active, ms.node.Terminal).Each(func(id uint32) {
		r := m.registry.ByID(id)
		if r.AnchoredStart && p != 0 {
			return
		}
		mm := domination.NewMatch(id, p)
		if ms.node.IsTerminalFor(id) {
			mm.End = p
			mm.Matched = true
		}
		r.RegisterMatch(mm)
		ms.matches[id] = mm
		touched[id] = r
	})
}

// advance transitions ms by c, extending or finalising each tracked
// regex's Match and newly tracking any regex whose NFA nodes only enter
// the basis after the first byte.
//
// End only advances on a terminal node: a regex that is active but not
// currently accepting (mid-way through a later alternative) must not have
// its span stretched to a position that isn't actually a valid match
// there. Final is set the moment the regex drops out of the node's active
// set — at that point nothing can ever revive this regex in this
// MatchSet, since Thompson NFA simulation never resurrects a dead thread.
//
// TODO: registry.ByID takes an RLock per live Match per input byte; a
// lock-free snapshot of the registry taken once per Match call (the
// registry is read-only for the duration of a run) would remove that
// per-byte lock from the hot path.
func (m *Matcher) advance(ms *matchSet, c byte, p int, touched map[uint32]*registry.Regexp) {
	next := m.dfaStore.Step(ms.node, c)
	ms.node = next

	for id, mm := range ms.matches {
		r := m.registry.ByID(id)
		if next.IsTerminalFor(id) {
			mm.End = p
			mm.Matched = true
			r.Heap.Fix(mm)
		}
		if !next.IsActiveFor(id) {
			mm.Final = true
		}
		touched[id] = r
	}

	stateset.Union(next.Active, next.Terminal).Each(func(id uint32) {
		if _, ok := ms.matches[id]; ok {
			return
		}
		if ms.resolved[id] {
			return
		}
		r := m.registry.ByID(id)
		if r.AnchoredStart && ms.start != 0 {
			return
		}
		mm := domination.NewMatch(id, ms.start)
		if next.IsTerminalFor(id) {
			mm.End = p
			mm.Matched = true
		}
		r.RegisterMatch(mm)
		ms.matches[id] = mm
		touched[id] = r
	})
}

// resolve drains every currently committable Match of r, enforcing the
// domination protocol's non-overlap guarantee: the Regexp's heap is
// ordered by Compare, which always ranks the earliest-starting live Match
// first regardless of Final/Matched status, so the heap minimum is always
// the earliest candidate still in play.
//
// Once that minimum is Final, one of two things happens:
//   - it never Matched (its thread died before reaching an accept state),
//     or r is AnchoredEnd ("$"/"\z" was stripped at compile time, see
//     nfa.stripAnchors) and the minimum's End isn't the last byte of buf:
//     it is discarded without commit, and the next heap minimum (if any)
//     is considered in its place;
//   - it did Matched (and, if r is AnchoredEnd, ends at len(buf)-1): every
//     other live Match of r the minimum suppresses (domination.Suppresses:
//     its Start falls inside the winner's span) is discarded uncommitted,
//     since it can never be the non-overlapping match reported for that
//     region. The minimum is then committed.
//
// This is what turns the racing, per-character MatchSet simulation into
// the single non-overlapping, leftmost-longest match per regex the caller
// observes: of several simultaneous attempts racing to match the same
// regex across an overlapping region of input, exactly one is ever
// delivered.
func resolve(live map[int]*matchSet, r *registry.Regexp, buf []byte, sink registry.Sink) {
	for {
		winner := r.Heap.Peek()
		if winner == nil || !winner.Final {
			return
		}
		if !winner.Matched || (r.AnchoredEnd && winner.End != len(buf)-1) {
			deactivate(live, r, winner)
			continue
		}
		for _, other := range r.Heap.Snapshot() {
			if other.Inactive {
				continue
			}
			if domination.Suppresses(winner, other) {
				deactivate(live, r, other)
			}
		}
		deactivate(live, r, winner)
		sink.Commit(r, buf, winner.Start, winner.End)
	}
}

// deactivate removes mm from r's heap and from the live MatchSet it
// belongs to, marking it Inactive so it is never touched again. The
// regex id is recorded in the MatchSet's resolved set: the MatchSet may
// stay alive for other regexes sharing its DFA node, and without that
// record advance's discovery step would rebuild a Match for the regex at
// this same start (see the matchSet doc). A MatchSet whose last Match is
// removed is dropped from live immediately; its start position is never
// seeded again, so the resolved set can die with it.
func deactivate(live map[int]*matchSet, r *registry.Regexp, mm *domination.Match) {
	r.RemoveMatch(mm)
	mm.Inactive = true
	if ms, ok := live[mm.Start]; ok {
		ms.resolved[mm.RegexID] = true
		delete(ms.matches, mm.RegexID)
		if len(ms.matches) == 0 {
			delete(live, mm.Start)
		}
	}
}
