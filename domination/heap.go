package domination

import "container/heap"

// Heap is a per-regex priority structure over live Matches, ordered so
// that the most-preferred Match (per Compare) is always at index 0. It
// tracks each Match's position so RemoveMatch can drop an arbitrary element in
// O(log n) instead of the O(n) scan a plain slice would need (grounded on
// the standard container/heap indexed-heap pattern, the same technique
// used elsewhere in the corpus for top-k and arbitrary-removal priority
// queues).
type Heap struct {
	items []*Match
}

// NewHeap returns an empty Heap.
func NewHeap() *Heap {
	return &Heap{}
}

// container/heap.Interface implementation. Not meant to be called
// directly; use PushMatch, RemoveMatch, Peek, and Fix below.

func (h *Heap) Len() int { return len(h.items) }

func (h *Heap) Less(i, j int) bool {
	return Compare(h.items[i], h.items[j]) < 0
}

func (h *Heap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.items[i].heapIndex = i
	h.items[j].heapIndex = j
}

func (h *Heap) Push(x any) {
	m := x.(*Match)
	m.heapIndex = len(h.items)
	h.items = append(h.items, m)
}

func (h *Heap) Pop() any {
	old := h.items
	n := len(old)
	m := old[n-1]
	old[n-1] = nil
	m.heapIndex = -1
	h.items = old[:n-1]
	return m
}

// PushMatch registers m with the heap.
func (h *Heap) PushMatch(m *Match) {
	heap.Push(h, m)
}

// RemoveMatch removes m from the heap. A no-op if m is not currently
// registered (heapIndex < 0).
func (h *Heap) RemoveMatch(m *Match) {
	if m.heapIndex < 0 || m.heapIndex >= len(h.items) {
		return
	}
	heap.Remove(h, m.heapIndex)
}

// Fix re-establishes heap order after m's Start/End changed in place
// (extending a live match's End mutates the Match the heap already holds
// a pointer to).
func (h *Heap) Fix(m *Match) {
	if m.heapIndex < 0 || m.heapIndex >= len(h.items) {
		return
	}
	heap.Fix(h, m.heapIndex)
}

// Peek returns the current heap minimum (the most-preferred live Match)
// without removing it, or nil if the heap is empty.
func (h *Heap) Peek() *Match {
	if len(h.items) == 0 {
		return nil
	}
	return h.items[0]
}

// Snapshot returns a shallow copy of every Match currently on the heap, in
// no particular order. The match engine's commit step scans it for the
// matches a winner suppresses, which does not need heap order.
func (h *Heap) Snapshot() []*Match {
	return append([]*Match(nil), h.items...)
}
