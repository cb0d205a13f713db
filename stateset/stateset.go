// Package stateset provides Set, a canonical, hashable representation of a
// finite set of NFA node ids. Sets with equal content compare equal and
// hash equal regardless of insertion order or which internal
// representation (bitmask or sorted slice) built them, which is what lets
// package dfa memoise DFA nodes by the NFA subset they represent.
package stateset

import (
	"hash/fnv"
	"sort"
)

// bitmaskLimit is one past the largest id a bitmask representation can hold. Sets
// containing any id at or above this threshold use a sorted slice instead.
const bitmaskLimit = 64

// Key is a cached hash summary of a Set's content, used as a bucket key
// by package dfa's Storage. Two Sets with equal content always produce
// equal Keys; Keys from different content occasionally collide (it's a
// hash, not a perfect digest), so callers that index by Key must still
// confirm actual membership equality on lookup, exactly the way a
// textbook hash map handles bucket collisions.
type Key struct {
	hash uint64
}

// Set is a finite set of uint32 NFA node ids with O(size) equality and
// hashing. Zero value is the empty set.
type Set struct {
	bits    uint64 // valid when sorted == nil
	sorted  []uint32
	hash    uint64
	hashSet bool
}

// New builds a Set from the given ids, which may repeat or arrive in any
// order.
func New(ids ...uint32) Set {
	var s Set
	for _, id := range ids {
		s.add(id)
	}
	return s
}

// Add returns a Set with id inserted. Add never mutates the receiver: Sets
// are treated as immutable values once built, so this is copy-on-write
// from the caller's perspective (the underlying slice may be reused when
// there is spare capacity, same as append).
func (s Set) Add(id uint32) Set {
	s.add(id)
	return s
}

func (s *Set) add(id uint32) {
	s.hashSet = false
	if s.sorted == nil && id < bitmaskLimit {
		s.bits |= 1 << id
		return
	}
	if s.sorted == nil {
		s.promote()
	}
	s.insertSorted(id)
}

// promote converts a bitmask representation to a sorted slice, used when
// an id at or beyond bitmaskLimit needs to be inserted.
func (s *Set) promote() {
	s.sorted = s.sorted[:0]
	for i := 0; i < bitmaskLimit; i++ {
		if s.bits&(1<<uint(i)) != 0 {
			s.sorted = append(s.sorted, uint32(i))
		}
	}
	s.bits = 0
}

func (s *Set) insertSorted(id uint32) {
	i := sort.Search(len(s.sorted), func(i int) bool { return s.sorted[i] >= id })
	if i < len(s.sorted) && s.sorted[i] == id {
		return
	}
	s.sorted = append(s.sorted, 0)
	copy(s.sorted[i+1:], s.sorted[i:])
	s.sorted[i] = id
}

// Contains reports whether id is a member of s.
func (s Set) Contains(id uint32) bool {
	if s.sorted == nil {
		return id < bitmaskLimit && s.bits&(1<<id) != 0
	}
	i := sort.Search(len(s.sorted), func(i int) bool { return s.sorted[i] >= id })
	return i < len(s.sorted) && s.sorted[i] == id
}

// Len reports the number of members.
func (s Set) Len() int {
	if s.sorted == nil {
		return popcount(s.bits)
	}
	return len(s.sorted)
}

func popcount(bits uint64) int {
	n := 0
	for bits != 0 {
		bits &= bits - 1
		n++
	}
	return n
}

// Empty reports whether s has no members.
func (s Set) Empty() bool {
	return s.Len() == 0
}

// Each calls fn once per member, in ascending id order.
func (s Set) Each(fn func(id uint32)) {
	if s.sorted == nil {
		for i := 0; i < bitmaskLimit; i++ {
			if s.bits&(1<<uint(i)) != 0 {
				fn(uint32(i))
			}
		}
		return
	}
	for _, id := range s.sorted {
		fn(id)
	}
}

// ToSlice returns the members in ascending order.
func (s Set) ToSlice() []uint32 {
	out := make([]uint32, 0, s.Len())
	s.Each(func(id uint32) { out = append(out, id) })
	return out
}

// Union returns a new Set containing every id in s or other.
func Union(a, b Set) Set {
	out := a
	out.sorted = append([]uint32(nil), out.sorted...)
	b.Each(func(id uint32) { out.add(id) })
	return out
}

// Equal reports whether s and other contain the same ids. This does not
// depend on which internal representation either Set uses.
func (s Set) Equal(other Set) bool {
	if s.sorted == nil && other.sorted == nil {
		return s.bits == other.bits
	}
	if s.Len() != other.Len() {
		return false
	}
	equal := true
	s.Each(func(id uint32) {
		if !other.Contains(id) {
			equal = false
		}
	})
	return equal
}

// Hash returns a 64-bit FNV-1a hash over the set's (ascending, so order
// independent) member ids. Hashing is O(size); callers on a hot path
// should compute Key once via CanonicalKey and reuse it, rather than
// calling Hash directly per comparison.
func (s Set) Hash() uint64 {
	h := fnv.New64a()
	var buf [4]byte
	s.Each(func(id uint32) {
		buf[0] = byte(id)
		buf[1] = byte(id >> 8)
		buf[2] = byte(id >> 16)
		buf[3] = byte(id >> 24)
		h.Write(buf[:])
	})
	return h.Sum64()
}

// CanonicalKey returns s's cached Key, computing and caching the hash on
// first use. Two Sets with equal content always produce equal Keys.
func (s *Set) CanonicalKey() Key {
	if !s.hashSet {
		s.hash = s.Hash()
		s.hashSet = true
	}
	return Key{hash: s.hash}
}
