package core

import "testing"

func TestInMemoryEventLogIterationOrder(t *testing.T) {
	log := NewInMemoryEventLog(NewTrace("a", "b"), NewTrace("c"))

	var got [][]string
	for tr := range log.Traces() {
		var acts []string
		for e := range tr.Events() {
			a, _ := e.Activity().AsString()
			acts = append(acts, a)
		}
		got = append(got, acts)
	}

	if len(got) != 2 || len(got[0]) != 2 || len(got[1]) != 1 {
		t.Fatalf("unexpected trace shape: %v", got)
	}
	if got[0][0] != "a" || got[0][1] != "b" || got[1][0] != "c" {
		t.Fatalf("unexpected trace content: %v", got)
	}
}

func TestInMemoryEventLogResetIsNoop(t *testing.T) {
	log := NewInMemoryEventLog(NewTrace("x"))
	if err := log.Reset(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	count := 0
	for range log.Traces() {
		count++
	}
	if count != 1 {
		t.Fatalf("expected traces to survive Reset, got %d", count)
	}
}

func TestEventAttributeLookup(t *testing.T) {
	e := NewEvent("a", map[string]AttrValue{"k": Int64Val(42)})
	v, ok := e.Attribute("k")
	i, iok := v.AsInt64()
	if !ok || !iok || i != 42 {
		t.Fatalf("expected attribute k=42")
	}
	if _, ok := e.Attribute("missing"); ok {
		t.Fatalf("expected missing attribute to be absent")
	}
}
