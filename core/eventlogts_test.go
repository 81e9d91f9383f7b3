package core

import "testing"

func TestEventLogTSFrequencyAccumulates(t *testing.T) {
	pool := NewIDPool()
	ts := NewEventLogTS(pool)
	s := ts.GetOrAddState(NewStateID(CStrVal("S")))
	tr := ts.GetOrAddTransWithFreq(ts.Initial(), s, CStrVal("a"), 1)
	ts.GetOrAddTransWithFreq(ts.Initial(), s, CStrVal("a"), 1)
	if ts.Frequency(tr) != 2 {
		t.Fatalf("expected frequency 2, got %d", ts.Frequency(tr))
	}
}

func TestEventLogTSAcceptingTriState(t *testing.T) {
	pool := NewIDPool()
	ts := NewEventLogTS(pool)
	s := ts.GetOrAddState(NewStateID(CStrVal("S")))
	if ts.Accepting(s) != AcceptUnset {
		t.Fatalf("expected Unset by default")
	}
	ts.SetAccepting(s, AcceptTrue)
	if ts.Accepting(s) != AcceptTrue {
		t.Fatalf("expected True after SetAccepting")
	}
}

func TestEventLogTSRemoveStateDropsFrequencies(t *testing.T) {
	pool := NewIDPool()
	ts := NewEventLogTS(pool)
	s := ts.GetOrAddState(NewStateID(CStrVal("S")))
	tr := ts.GetOrAddTransWithFreq(ts.Initial(), s, CStrVal("a"), 3)
	if err := ts.RemoveState(s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ts.Frequency(tr) != 0 {
		t.Fatalf("expected frequency cleared after state removal")
	}
}
