package core

import "testing"

func newTestTS() (*LabeledTS, *IDPool) {
	pool := NewIDPool()
	return NewLabeledTS(pool), pool
}

func TestLabeledTSGetOrAddStateIdentity(t *testing.T) {
	ts, _ := newTestTS()
	id1 := NewStateID(CStrVal("A"))
	id2 := NewStateID(CStrVal("A"))
	h1 := ts.GetOrAddState(id1)
	h2 := ts.GetOrAddState(id2)
	if h1 != h2 {
		t.Fatalf("equal ids must resolve to the same state handle")
	}
	id3 := NewStateID(CStrVal("B"))
	h3 := ts.GetOrAddState(id3)
	if h1 == h3 {
		t.Fatalf("distinct ids must resolve to distinct handles")
	}
}

func TestLabeledTSParallelLabelsDeduped(t *testing.T) {
	ts, _ := newTestTS()
	s := ts.GetOrAddState(NewStateID(CStrVal("S")))
	init := ts.Initial()
	t1 := ts.GetOrAddTrans(init, s, CStrVal("a"))
	t2 := ts.GetOrAddTrans(init, s, CStrVal("a"))
	if t1 != t2 {
		t.Fatalf("same (src,tgt,label) must reuse one transition")
	}
	t3 := ts.GetOrAddTrans(init, s, CStrVal("b"))
	if t1 == t3 {
		t.Fatalf("different labels must create different parallel transitions")
	}
	if ts.NumTrans() != 2 {
		t.Fatalf("expected 2 distinct transitions, got %d", ts.NumTrans())
	}
}

func TestLabeledTSAddAnonTransAlwaysCreates(t *testing.T) {
	ts, _ := newTestTS()
	s := ts.AddAnonState()
	init := ts.Initial()
	ts.AddAnonTrans(init, s)
	ts.AddAnonTrans(init, s)
	if ts.NumTrans() != 2 {
		t.Fatalf("AddAnonTrans must always create, got %d transitions", ts.NumTrans())
	}
}

func TestLabeledTSRemoveStateClearsIncident(t *testing.T) {
	ts, _ := newTestTS()
	s := ts.GetOrAddState(NewStateID(CStrVal("S")))
	init := ts.Initial()
	tr := ts.GetOrAddTrans(init, s, CStrVal("a"))
	if err := ts.RemoveState(s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ts.NumStates() != 1 {
		t.Fatalf("expected only the initial state to remain, got %d", ts.NumStates())
	}
	if ts.NumTrans() != 0 {
		t.Fatalf("expected incident transition removed, got %d", ts.NumTrans())
	}
	_ = tr
}

func TestLabeledTSRemoveTransIdempotentOnEdges(t *testing.T) {
	ts, _ := newTestTS()
	s := ts.GetOrAddState(NewStateID(CStrVal("S")))
	init := ts.Initial()
	keep := ts.GetOrAddTrans(init, s, CStrVal("keep"))
	drop := ts.GetOrAddTrans(init, s, CStrVal("drop"))

	if err := ts.RemoveTrans(drop); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for th := range ts.Transitions() {
		if th == drop {
			t.Fatalf("removed transition must not be yielded by Transitions()")
		}
	}
	found := false
	for th := range ts.OutTransitions(init) {
		if th == drop {
			t.Fatalf("removed transition must not be yielded by OutTransitions()")
		}
		if th == keep {
			found = true
		}
	}
	if !found {
		t.Fatalf("unrelated transition must remain after removal")
	}
}

func TestLabeledTSRemoveUnknownStateIsError(t *testing.T) {
	ts, _ := newTestTS()
	bogus := StateHandle{idx: 99, gen: 0}
	if err := ts.RemoveState(bogus); err == nil || !Is(err, CodeInvalidArgument) {
		t.Fatalf("expected InvalidArgument for out-of-range handle, got %v", err)
	}
}

func TestLabeledTSIteratorInvalidatedByRemoval(t *testing.T) {
	ts, _ := newTestTS()
	s1 := ts.GetOrAddState(NewStateID(CStrVal("S1")))
	s2 := ts.GetOrAddState(NewStateID(CStrVal("S2")))

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic after removal mid-iteration")
		}
	}()
	for range ts.States() {
		_ = ts.RemoveState(s2)
		_ = s1
	}
}

func TestLabeledTSCloneIndependence(t *testing.T) {
	ts, _ := newTestTS()
	s := ts.GetOrAddState(NewStateID(CStrVal("S")))
	ts.GetOrAddTrans(ts.Initial(), s, CStrVal("a"))

	clone := ts.Clone()
	extra := clone.GetOrAddState(NewStateID(CStrVal("T")))
	clone.GetOrAddTrans(clone.Initial(), extra, CStrVal("b"))

	if ts.NumStates() == clone.NumStates() {
		t.Fatalf("mutating the clone must not affect the original")
	}
}
