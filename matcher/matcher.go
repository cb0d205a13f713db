// Package matcher provides the Matcher façade: register patterns with
// per-match actions, then stream input through every registered pattern
// at once via a single lazy-DFA pass, committing non-overlapping matches
// in order as soon as the domination protocol resolves each one.
package matcher

import (
	"sync"

	"github.com/coregx/rmatch/buffer"
	"github.com/coregx/rmatch/dfa"
	"github.com/coregx/rmatch/nfa"
	"github.com/coregx/rmatch/prefilter"
	"github.com/coregx/rmatch/registry"
)

// Action is invoked once per committed match, with the full input and the
// match's [start, end] span (both inclusive).
type Action = registry.Action

// Matcher matches every registered pattern against an input stream in a
// single pass. The zero value is not valid; use New.
type Matcher struct {
	cfg      Config
	nfaStore *nfa.Store
	dfaStore *dfa.Storage
	registry *registry.Registry

	gateMu      sync.Mutex
	gate        *prefilter.Gate
	gateBuiltAt int // registry.Len() at the time gate was last built

	// fastLane and touchedPool back EngineKind Fastpath: fastLane[b]
	// caches whether ASCII byte b can ever start some registered pattern
	// from the shared Start Node, letting run skip the seed-side DFA
	// transition outright for the common case of a byte that starts
	// nothing; touchedPool reuses the per-character scratch map across
	// Match calls instead of allocating one per call.
	fastMu      sync.Mutex
	fastLane    [128]bool
	fastBuiltAt int
	touchedPool sync.Pool
}

// New creates a Matcher configured by cfg, failing with a *ConfigError if
// cfg is invalid.
func New(cfg Config) (*Matcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	store := nfa.NewStore()
	return &Matcher{
		cfg:      cfg,
		nfaStore: store,
		dfaStore: dfa.NewStorage(store, cfg.MaxDFANodes),
		registry: registry.New(store),
	}, nil
}

// Add registers pattern, attaching action to fire once per committed
// match. Adding an already-registered pattern attaches another action
// rather than recompiling. Fails with a *registry.ParseError if pattern
// does not compile.
func (m *Matcher) Add(pattern string, action Action) error {
	_, err := m.registry.Add(pattern, action)
	return err
}

// Match streams buf through every registered pattern, invoking attached
// actions for each committed match in non-decreasing start order (ties
// broken by Regexp id). buf is wrapped in a buffer.Buffer and consumed to
// exhaustion; it is not copied, so the caller must not mutate it while
// Match runs.
func (m *Matcher) Match(buf []byte) {
	gate := m.ensureGate()
	fastLane := m.ensureFastLane()
	sink := NewSink()
	m.run(buffer.New(buf), sink, gate, fastLane)
}

// Shutdown releases resources held by the Matcher. The current
// implementation holds nothing beyond Go-managed memory, so this is a
// no-op kept for interface symmetry with hosts that manage Matcher
// lifecycles explicitly (file handles, workers) in the broader corpus
// idiom.
func (m *Matcher) Shutdown() {}

// ensureGate (re)builds the prefilter gate if the registry has grown
// since the last build and returns the gate to use for this Match call.
// Building is idempotent and safe to call before every Match: once the
// pattern set stabilises, it is a single length check. The returned gate
// is read out under gateMu so a concurrent Match on the same Matcher
// never observes a torn write; the *Gate itself is never mutated after
// BuildFromNFA constructs it, so sharing the pointer beyond the lock is
// safe.
func (m *Matcher) ensureGate() *prefilter.Gate {
	if m.cfg.Prefilter == Disabled {
		return nil
	}
	m.gateMu.Lock()
	defer m.gateMu.Unlock()
	n := m.registry.Len()
	if m.gate == nil || m.gateBuiltAt != n {
		all := m.registry.All()
		starts := make([]prefilter.RegexStart, len(all))
		for i, r := range all {
			starts[i] = prefilter.RegexStart{ID: r.ID, Start: r.Start}
		}
		gate, err := prefilter.BuildFromNFA(m.nfaStore, starts)
		if err != nil {
			// A prefilter build failure only degrades performance (the
			// gate would otherwise narrow positions); matching
			// correctness never depends on it, so fall back to no
			// prefilter rather than surfacing an error from Match.
			return nil
		}
		m.gate = gate
		m.gateBuiltAt = n
	}
	return m.gate
}

// ensureFastLane (re)builds the Fastpath ASCII start-byte table if the
// registry has grown since the last build and returns the table to use
// for this Match call. A zero table under the Default engine: the table
// only exists to let run skip a seed-side DFA transition it would
// otherwise have to make anyway. The table is copied out under fastMu so
// a concurrent Match on the same Matcher never observes a torn write.
func (m *Matcher) ensureFastLane() [128]bool {
	if m.cfg.Engine != Fastpath {
		return [128]bool{}
	}
	m.fastMu.Lock()
	defer m.fastMu.Unlock()
	n := m.registry.Len()
	if m.fastBuiltAt != n {
		start := m.dfaStore.Start()
		var table [128]bool
		for b := 0; b < 128; b++ {
			table[b] = !m.dfaStore.Step(start, byte(b)).IsDead()
		}
		m.fastLane = table
		m.fastBuiltAt = n
	}
	return m.fastLane
}

// acquireTouched and releaseTouched pool the per-character "which
// Regexps changed this step" scratch map under Fastpath, avoiding one
// allocation per Match call; the Default engine allocates fresh each
// time, pooling only on the path explicitly asked to optimise for
// repeated calls.
func (m *Matcher) acquireTouched() map[uint32]*registry.Regexp {
	if m.cfg.Engine != Fastpath {
		return make(map[uint32]*registry.Regexp)
	}
	if v := m.touchedPool.Get(); v != nil {
		return v.(map[uint32]*registry.Regexp)
	}
	return make(map[uint32]*registry.Regexp)
}

func (m *Matcher) releaseTouched(touched map[uint32]*registry.Regexp) {
	if m.cfg.Engine != Fastpath {
		return
	}
	for k := range touched {
		delete(touched, k)
	}
	m.touchedPool.Put(touched)
}
