package core

import "testing"

func buildSimpleWorkflowTS(t *testing.T) *EventLogTS {
	t.Helper()
	pool := NewIDPool()
	log := NewInMemoryEventLog(
		NewTrace("a", "b", "c"),
		NewTrace("a", "b", "c"),
	)
	b := NewBuilder(BuilderConfig{}, nil)
	ts, err := b.Build(pool, log, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return ts
}

func TestRegionSynthesizerLifecycleRequiresConfigure(t *testing.T) {
	rs := NewRegionSynthesizer(20, nil)
	if rs.State() != SynthFresh {
		t.Fatalf("expected Fresh state initially")
	}
	if err := rs.Synthesize(nil); err == nil {
		t.Fatalf("expected an error synthesizing before Configure")
	}
}

func TestRegionSynthesizerGetPNPanicsBeforeSynthesis(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected GetPN to panic before a successful Synthesize")
		}
	}()
	rs := NewRegionSynthesizer(20, nil)
	_ = rs.GetPN()
}

func TestRegionSynthesizerFullPipeline(t *testing.T) {
	ts := buildSimpleWorkflowTS(t)
	sas := NewSASConverter(nil).Convert(ts)
	sloop := NewSLoopConverter(nil).Convert(sas)

	rs := NewRegionSynthesizer(20, nil)
	if err := rs.Configure(sloop, SLIgnore, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := rs.Synthesize(nil); err != nil {
		t.Fatalf("unexpected synthesis error: %v", err)
	}
	if rs.State() != SynthSynthesized {
		t.Fatalf("expected Synthesized state, got %v", rs.State())
	}

	net := rs.GetPN()
	if net.NumTransitions() == 0 {
		t.Fatalf("expected at least one transition in the synthesized net")
	}
	src, ok := net.Source()
	if !ok {
		t.Fatalf("expected a source place")
	}
	sink, ok := net.Sink()
	if !ok {
		t.Fatalf("expected a sink place")
	}
	if src == sink {
		t.Fatalf("expected distinct source and sink places")
	}

	marking := rs.GetInitialMarking()
	if !marking.Test(uint(src)) {
		t.Fatalf("expected the source place to be marked initially")
	}

	// Every TS trace must be a firing sequence of the synthesized net from
	// its initial marking: replay "a","b","c" and confirm each step is
	// enabled, including any steps whose input place is a region place
	// rather than the source place.
	for _, lbl := range []string{"a", "b", "c"} {
		tr, ok := findTransByName(net, lbl)
		if !ok {
			t.Fatalf("expected a transition named %q", lbl)
		}
		if !net.Enabled(tr, marking) {
			t.Fatalf("expected transition %q to be enabled by the replay so far", lbl)
		}
		marking = net.Fire(tr, marking)
	}
	if !marking.Test(uint(sink)) {
		t.Fatalf("expected the sink place to be marked after replaying the full trace")
	}
}

func findTransByName(net *PetriNet, name string) (PNTrans, bool) {
	for t := 0; t < net.NumTransitions(); t++ {
		if net.TransName(PNTrans(t)) == name {
			return PNTrans(t), true
		}
	}
	return 0, false
}

func TestRegionSynthesizerSkipsWorkflowNetWhenDisabled(t *testing.T) {
	ts := buildSimpleWorkflowTS(t)
	sas := NewSASConverter(nil).Convert(ts)
	sloop := NewSLoopConverter(nil).Convert(sas)

	rs := NewRegionSynthesizer(20, nil)
	if err := rs.Configure(sloop, SLIgnore, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := rs.Synthesize(nil); err != nil {
		t.Fatalf("unexpected synthesis error: %v", err)
	}

	net := rs.GetPN()
	if _, ok := net.Source(); ok {
		t.Fatalf("expected no source place when make_wfnet is disabled")
	}
	if _, ok := net.Sink(); ok {
		t.Fatalf("expected no sink place when make_wfnet is disabled")
	}
	for i := 0; i < net.NumPlaces(); i++ {
		if net.PlaceName(PNPlace(i)) == "source" || net.PlaceName(PNPlace(i)) == "sink" {
			t.Fatalf("expected no synthetic source/sink places, found %q", net.PlaceName(PNPlace(i)))
		}
	}
}

func TestRegionSynthesizerRejectsMultipleAcceptingStates(t *testing.T) {
	pool := NewIDPool()
	log := NewInMemoryEventLog(NewTrace("a", "b"), NewTrace("a", "c"))
	b := NewBuilder(BuilderConfig{}, nil)
	ts, err := b.Build(pool, log, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	count := 0
	for s := range ts.States() {
		if ts.Accepting(s) == AcceptTrue {
			count++
		}
	}
	if count < 2 {
		t.Fatalf("test setup expected two distinct accepting states, got %d", count)
	}

	rs := NewRegionSynthesizer(20, nil)
	if err := rs.Configure(ts, SLIgnore, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := rs.Synthesize(nil); err == nil || !Is(err, CodeNotAWorkflowNet) {
		t.Fatalf("expected CodeNotAWorkflowNet, got %v", err)
	}
}

func TestRegionSynthesizerInfeasibleForOversizedTS(t *testing.T) {
	pool := NewIDPool()
	ts := NewEventLogTS(pool)
	cur := ts.Initial()
	for i := 0; i < 10; i++ {
		next := ts.AddAnonState()
		ts.GetOrAddTransWithFreq(cur, next, CStrVal("a"), 1)
		cur = next
	}
	ts.SetAccepting(cur, AcceptTrue)

	rs := NewRegionSynthesizer(5, nil)
	if err := rs.Configure(ts, SLIgnore, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := rs.Synthesize(nil); err == nil || !Is(err, CodeSynthesisInfeasible) {
		t.Fatalf("expected CodeSynthesisInfeasible, got %v", err)
	}
	if rs.State() != SynthFailed {
		t.Fatalf("expected Failed state after infeasible synthesis")
	}
}
