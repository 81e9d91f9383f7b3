package core

import "testing"

func TestPetriNetFireMovesToken(t *testing.T) {
	n := NewPetriNet()
	p0 := n.AddPlace("p0")
	p1 := n.AddPlace("p1")
	tr := n.AddTransition("t")
	n.AddInputArc(p0, tr, 1, ArcRegular)
	n.AddOutputArc(tr, p1)
	n.SetEnds(p0, p1)

	m := n.InitialMarking()
	if !n.Enabled(tr, m) {
		t.Fatalf("expected t to be enabled under the initial marking")
	}
	m2 := n.Fire(tr, m)
	if m2.Test(uint(p0)) {
		t.Fatalf("expected p0 to be cleared after firing")
	}
	if !m2.Test(uint(p1)) {
		t.Fatalf("expected p1 to be marked after firing")
	}
	if !m.Test(uint(p0)) {
		t.Fatalf("expected Fire not to mutate the original marking")
	}
}

func TestPetriNetInhibitorArcBlocksFiring(t *testing.T) {
	n := NewPetriNet()
	p0 := n.AddPlace("p0")
	guard := n.AddPlace("guard")
	tr := n.AddTransition("t")
	n.AddInputArc(p0, tr, 1, ArcRegular)
	n.AddInputArc(guard, tr, 1, ArcInhibitor)
	n.SetEnds(p0, p0)

	m := n.NewMarking()
	m.Set(uint(p0))
	m.Set(uint(guard))
	if n.Enabled(tr, m) {
		t.Fatalf("expected inhibitor arc to block firing while guard is marked")
	}
	m.Clear(uint(guard))
	if !n.Enabled(tr, m) {
		t.Fatalf("expected t to be enabled once the guard is cleared")
	}
}

func TestPetriNetInitialMarkingRequiresEnds(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic calling InitialMarking before SetEnds")
		}
	}()
	n := NewPetriNet()
	n.AddPlace("p0")
	_ = n.InitialMarking()
}
