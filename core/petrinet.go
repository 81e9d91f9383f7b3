package core

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// ArcKind discriminates a Petri-net arc's semantics: a Regular arc requires
// (and consumes, on the input side) a token at its place; an Inhibitor arc
// requires the place to be empty and never consumes anything.
type ArcKind byte

const (
	ArcRegular ArcKind = iota
	ArcInhibitor
)

// PNPlace and PNTrans are arena indices into a PetriNet. Unlike the TS's
// generational handles, a PetriNet is built once by the region synthesizer
// and never mutated afterward, so no staleness detection is needed here.
type PNPlace int32
type PNTrans int32

type pnArc struct {
	place  PNPlace
	weight int
	kind   ArcKind
}

type pnPlace struct {
	name string
}

type pnTrans struct {
	name string
	in   []pnArc   // input arcs, keyed by place
	out  []PNPlace // output places (always regular, weight 1 under the safe/1-bounded nets this package produces)
}

// PetriNet is a bipartite place/transition net. Markings are represented as
// bitsets over places: the nets the region synthesizer produces are safe
// (1-bounded), so presence/absence of a token is all a marking needs to
// record (spec.md §3.5/§4.L).
type PetriNet struct {
	places     []pnPlace
	trans      []pnTrans
	source     PNPlace
	sink       PNPlace
	hasEnds    bool
	initPlaces []PNPlace // region places whose region contains the TS's initial state
}

// NewPetriNet returns an empty net.
func NewPetriNet() *PetriNet {
	return &PetriNet{}
}

// AddPlace appends a new place named name and returns its handle.
func (n *PetriNet) AddPlace(name string) PNPlace {
	n.places = append(n.places, pnPlace{name: name})
	return PNPlace(len(n.places) - 1)
}

// AddTransition appends a new transition named name and returns its handle.
func (n *PetriNet) AddTransition(name string) PNTrans {
	n.trans = append(n.trans, pnTrans{name: name})
	return PNTrans(len(n.trans) - 1)
}

// SetEnds records the net's unique source and sink places, the workflow-net
// structural requirement (spec.md §3.6).
func (n *PetriNet) SetEnds(source, sink PNPlace) {
	n.source, n.sink, n.hasEnds = source, sink, true
}

// Source and Sink return the net's designated endpoints. ok is false until
// SetEnds has been called.
func (n *PetriNet) Source() (PNPlace, bool) {
	if !n.hasEnds {
		return 0, false
	}
	return n.source, true
}

func (n *PetriNet) Sink() (PNPlace, bool) {
	if !n.hasEnds {
		return 0, false
	}
	return n.sink, true
}

// AddInputArc records that t consumes (Regular) or requires-empty
// (Inhibitor) place p with the given weight.
func (n *PetriNet) AddInputArc(p PNPlace, t PNTrans, weight int, kind ArcKind) {
	n.trans[t].in = append(n.trans[t].in, pnArc{place: p, weight: weight, kind: kind})
}

// AddOutputArc records that firing t produces a token at place p.
func (n *PetriNet) AddOutputArc(t PNTrans, p PNPlace) {
	n.trans[t].out = append(n.trans[t].out, p)
}

// NumPlaces and NumTransitions report the net's size.
func (n *PetriNet) NumPlaces() int      { return len(n.places) }
func (n *PetriNet) NumTransitions() int { return len(n.trans) }

// PlaceName and TransName return the human-readable name attached to a
// place or transition, used by the DOT emitter.
func (n *PetriNet) PlaceName(p PNPlace) string { return n.places[p].name }
func (n *PetriNet) TransName(t PNTrans) string { return n.trans[t].name }

// InputArcs returns t's input arcs.
func (n *PetriNet) InputArcs(t PNTrans) []pnArc { return n.trans[t].in }

// OutputPlaces returns the places t produces a token into when fired.
func (n *PetriNet) OutputPlaces(t PNTrans) []PNPlace { return n.trans[t].out }

// NewMarking returns an all-empty marking sized to the net's place count.
func (n *PetriNet) NewMarking() *bitset.BitSet {
	return bitset.New(uint(len(n.places)))
}

// AddInitialPlace records that p must carry a token in the initial marking,
// on top of the source place. Region synthesis calls this once per region
// that contains the TS's initial state (spec.md §4.M step 3).
func (n *PetriNet) AddInitialPlace(p PNPlace) {
	n.initPlaces = append(n.initPlaces, p)
}

// InitialMarking returns a marking with every place registered via
// AddInitialPlace set, plus the source place if SetEnds has been called
// (region synthesis skips SetEnds entirely when run with MakeWorkflowNet
// false, producing a plain region net with no synthetic endpoints).
func (n *PetriNet) InitialMarking() *bitset.BitSet {
	m := n.NewMarking()
	if n.hasEnds {
		m.Set(uint(n.source))
	}
	for _, p := range n.initPlaces {
		m.Set(uint(p))
	}
	return m
}

// Enabled reports whether t can fire under marking: every Regular input
// place must be marked, every Inhibitor input place must be unmarked.
func (n *PetriNet) Enabled(t PNTrans, marking *bitset.BitSet) bool {
	for _, a := range n.trans[t].in {
		marked := marking.Test(uint(a.place))
		switch a.kind {
		case ArcRegular:
			if !marked {
				return false
			}
		case ArcInhibitor:
			if marked {
				return false
			}
		}
	}
	return true
}

// Fire returns the marking that results from firing t, without mutating
// marking. The caller must have checked Enabled first; Fire does not
// re-check.
func (n *PetriNet) Fire(t PNTrans, marking *bitset.BitSet) *bitset.BitSet {
	out := marking.Clone()
	for _, a := range n.trans[t].in {
		if a.kind == ArcRegular {
			out.Clear(uint(a.place))
		}
	}
	for _, p := range n.trans[t].out {
		out.Set(uint(p))
	}
	return out
}

// String renders a short human-readable summary, useful in logs and panics.
func (n *PetriNet) String() string {
	return fmt.Sprintf("PetriNet{places=%d, transitions=%d}", len(n.places), len(n.trans))
}
