package matcher

import (
	"sort"

	"github.com/coregx/rmatch/registry"
)

// Sink is the runnable-matches sink: a deduplicating, in-order collector
// for committed matches. A regex's domination heap only orders matches
// within that one regex, so committing as soon as a match is ready could
// deliver it before an earlier-starting match belonging to a different
// regex that hasn't finished yet. Sink buffers commits and releases them
// only once no live match anywhere can possibly have an earlier start,
// which is exactly what the match engine calls flushUpTo with after every
// input position.
type Sink struct {
	pending []pendingCommit
}

type pendingCommit struct {
	r          *registry.Regexp
	start, end int
}

// NewSink returns an empty Sink.
func NewSink() *Sink {
	return &Sink{}
}

// Commit buffers a committed match for r's inclusive span [start, end]. It does not
// invoke r's actions itself; flushUpTo does, once ordering is safe. A commit
// identical to one still buffered (same Regexp and span) is dropped.
func (s *Sink) Commit(r *registry.Regexp, buf []byte, start, end int) {
	for _, pc := range s.pending {
		if pc.r == r && pc.start == start && pc.end == end {
			return
		}
	}
	s.pending = append(s.pending, pendingCommit{r: r, start: start, end: end})
}

// flushUpTo invokes actions, in (start, Regexp id) order, for every
// buffered commit whose start is strictly less than minLiveStart: no
// future commit can ever have a smaller start than the earliest start
// among currently live matches, so anything before that point is safe to
// release now. Passing a minLiveStart beyond the input length flushes
// everything, which the match engine does once at end of input.
func (s *Sink) flushUpTo(buf []byte, minLiveStart int) {
	sort.Slice(s.pending, func(i, j int) bool {
		if s.pending[i].start != s.pending[j].start {
			return s.pending[i].start < s.pending[j].start
		}
		return s.pending[i].r.ID < s.pending[j].r.ID
	})
	i := 0
	for ; i < len(s.pending); i++ {
		pc := s.pending[i]
		if pc.start >= minLiveStart {
			break
		}
		pc.r.PerformActions(buf, pc.start, pc.end)
	}
	s.pending = s.pending[i:]
}
