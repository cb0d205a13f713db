package nfa

import (
	"errors"
	"testing"
)

func TestNewStoreHasStartNode(t *testing.T) {
	s := NewStore()
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
	start := s.Node(StartNodeID)
	if start.Kind != KindEpsilonSet {
		t.Fatalf("start node kind = %v, want KindEpsilonSet", start.Kind)
	}
}

func TestAddAssignsSequentialIDs(t *testing.T) {
	s := NewStore()
	a := s.AddMatch(1)
	b := s.AddMatch(2)
	if a != 1 || b != 2 {
		t.Fatalf("ids = %d, %d, want 1, 2", a, b)
	}
	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}
}

func TestPatchNext(t *testing.T) {
	s := NewStore()
	match := s.AddMatch(0)
	br := s.AddByteRange(0, 'a', 'a', InvalidState)
	if err := s.PatchNext(br, match); err != nil {
		t.Fatalf("PatchNext: %v", err)
	}
	if got := s.Node(br).Next; got != match {
		t.Fatalf("Next = %d, want %d", got, match)
	}
}

func TestPatchNextWrongKind(t *testing.T) {
	s := NewStore()
	split := s.AddSplit(0, InvalidState, InvalidState)
	if err := s.PatchNext(split, 0); err == nil {
		t.Fatal("expected error patching Next on a Split node")
	}
}

func TestPatchSplitSlots(t *testing.T) {
	s := NewStore()
	left := s.AddMatch(0)
	right := s.AddMatch(0)
	split := s.AddSplit(0, InvalidState, InvalidState)
	if err := s.PatchLeft(split, left); err != nil {
		t.Fatalf("PatchLeft: %v", err)
	}
	if err := s.PatchRight(split, right); err != nil {
		t.Fatalf("PatchRight: %v", err)
	}
	n := s.Node(split)
	if n.Left != left || n.Right != right {
		t.Fatalf("split targets = %d, %d, want %d, %d", n.Left, n.Right, left, right)
	}
}

func TestPatchOutOfRange(t *testing.T) {
	s := NewStore()
	err := s.PatchNext(999, 0)
	if err == nil {
		t.Fatal("expected error for out-of-range state id")
	}
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("err = %v, want it to wrap ErrInvalidState", err)
	}
	// A wrong-kind patch is a distinct failure, not an invalid id.
	split := s.AddSplit(0, InvalidState, InvalidState)
	if err := s.PatchNext(split, 0); errors.Is(err, ErrInvalidState) {
		t.Fatalf("wrong-kind patch error should not wrap ErrInvalidState, got %v", err)
	}
}

func TestAttachStart(t *testing.T) {
	s := NewStore()
	regexStart := s.AddMatch(0)
	s.AttachStart(regexStart)
	s.AttachStart(regexStart)
	targets := s.Node(StartNodeID).Targets
	if len(targets) != 2 {
		t.Fatalf("len(Targets) = %d, want 2", len(targets))
	}
}

func TestAddSparseCopiesTransitions(t *testing.T) {
	s := NewStore()
	transitions := []Transition{{Lo: 'a', Hi: 'z', Next: InvalidState}}
	id := s.AddSparse(0, transitions)
	transitions[0].Lo = 'A'
	if got := s.Node(id).Transitions[0].Lo; got != 'a' {
		t.Fatalf("Sparse node aliased caller's slice, got Lo=%q", got)
	}
}
