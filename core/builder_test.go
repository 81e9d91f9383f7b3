package core

import "testing"

func TestBuilderReplaysTracesWithFrequency(t *testing.T) {
	pool := NewIDPool()
	log := NewInMemoryEventLog(
		NewTrace("a", "b"),
		NewTrace("a", "b"),
		NewTrace("a", "c"),
	)
	b := NewBuilder(BuilderConfig{}, nil)
	ts, err := b.Build(pool, log, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ts.TraceCount() != 3 {
		t.Fatalf("expected 3 traces replayed, got %d", ts.TraceCount())
	}

	first, ok := ts.GetFirstOutTrans(ts.Initial(), CStrVal("a"))
	if !ok {
		t.Fatalf("expected an 'a' transition out of the initial state")
	}
	if ts.Frequency(first) != 3 {
		t.Fatalf("expected frequency 3 for shared prefix 'a', got %d", ts.Frequency(first))
	}

	sAfterA := ts.Target(first)
	bTrans, ok := ts.GetFirstOutTrans(sAfterA, CStrVal("b"))
	if !ok {
		t.Fatalf("expected a 'b' transition after 'a'")
	}
	if ts.Frequency(bTrans) != 2 {
		t.Fatalf("expected frequency 2 for 'a'->'b', got %d", ts.Frequency(bTrans))
	}
}

func TestBuilderMarksAcceptingStates(t *testing.T) {
	pool := NewIDPool()
	log := NewInMemoryEventLog(NewTrace("a"))
	b := NewBuilder(BuilderConfig{}, nil)
	ts, err := b.Build(pool, log, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	trans, ok := ts.GetFirstOutTrans(ts.Initial(), CStrVal("a"))
	if !ok {
		t.Fatalf("expected transition")
	}
	final := ts.Target(trans)
	if ts.Accepting(final) != AcceptTrue {
		t.Fatalf("expected final state to be accepting")
	}
	if ts.Accepting(ts.Initial()) != AcceptUnset {
		t.Fatalf("expected initial state to remain Unset when it is not itself a trace end")
	}
}

func TestBuilderProgressCancellation(t *testing.T) {
	pool := NewIDPool()
	log := NewInMemoryEventLog(NewTrace("a"), NewTrace("b"), NewTrace("c"))
	b := NewBuilder(BuilderConfig{}, nil)
	calls := 0
	partial, err := b.Build(pool, log, func(percent int) ProgressSignal {
		calls++
		return Cancel
	})
	if err == nil || !Is(err, CodeCanceled) {
		t.Fatalf("expected CodeCanceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected cancellation after first trace, got %d calls", calls)
	}

	// The partial TS built before cancellation must still be returned and
	// detachable, not discarded.
	if partial == nil {
		t.Fatalf("expected a non-nil partial TS alongside the canceled error")
	}
	if partial.TraceCount() != 1 {
		t.Fatalf("expected the one trace replayed before cancellation to be counted, got %d", partial.TraceCount())
	}
	detached := Detach(partial)
	if detached.TraceCount() != partial.TraceCount() {
		t.Fatalf("expected the partial TS to be detachable like a completed one")
	}
}

func TestDetachIsIndependent(t *testing.T) {
	pool := NewIDPool()
	log := NewInMemoryEventLog(NewTrace("a"))
	b := NewBuilder(BuilderConfig{}, nil)
	ts, err := b.Build(pool, log, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	detached := Detach(ts)
	trans, _ := detached.GetFirstOutTrans(detached.Initial(), CStrVal("a"))
	if err := detached.RemoveTrans(trans); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	origTrans, ok := ts.GetFirstOutTrans(ts.Initial(), CStrVal("a"))
	if !ok {
		t.Fatalf("expected original TS to be unaffected by detached mutation")
	}
	if ts.Frequency(origTrans) != 1 {
		t.Fatalf("expected original TS frequency untouched")
	}
}
