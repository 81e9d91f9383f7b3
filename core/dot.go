package core

import (
	"fmt"
	"io"

	"github.com/bits-and-blooms/bitset"
)

// WriteDOT renders ts as a Graphviz digraph: one node per state (labeled
// with its canonical StateID, or "anon" for an anonymous state) and one
// edge per transition (labeled with its activity). Every node and edge
// carries an explicit label= attribute, matching the convention the rest of
// this package's DOT output follows (spec.md §4.D/§7).
func WriteDOT(w io.Writer, ts *LabeledTS) error {
	bw := newDotWriter(w)
	bw.printf("digraph ts {\n")
	for s := range ts.States() {
		label := "anon"
		if id, ok := ts.StateIDOf(s); ok {
			label = id.CanonicalString()
		}
		accShape := ""
		bw.printf("  s%d [label=%q%s];\n", s.idx, label, accShape)
	}
	for th := range ts.Transitions() {
		src, tgt := ts.Source(th), ts.Target(th)
		bw.printf("  s%d -> s%d [label=%q];\n", src.idx, tgt.idx, ts.TransLabel(th).CanonicalString())
	}
	bw.printf("}\n")
	return bw.err
}

// WriteEventLogTSDOT renders an EventLogTS the same way WriteDOT does, but
// additionally marks each accepting state with a double-circle shape and
// annotates each transition's label with its replay frequency.
func WriteEventLogTSDOT(w io.Writer, ts *EventLogTS) error {
	bw := newDotWriter(w)
	bw.printf("digraph ts {\n")
	for s := range ts.States() {
		label := "anon"
		if id, ok := ts.StateIDOf(s); ok {
			label = id.CanonicalString()
		}
		shape := ""
		if ts.Accepting(s) == AcceptTrue {
			shape = `, shape=doublecircle`
		}
		bw.printf("  s%d [label=%q%s];\n", s.idx, label, shape)
	}
	for th := range ts.Transitions() {
		src, tgt := ts.Source(th), ts.Target(th)
		lbl := fmt.Sprintf("%s (%d)", ts.TransLabel(th).CanonicalString(), ts.Frequency(th))
		bw.printf("  s%d -> s%d [label=%q];\n", src.idx, tgt.idx, lbl)
	}
	bw.printf("}\n")
	return bw.err
}

// WritePetriNetDOT renders a PetriNet as a Graphviz digraph: places as
// circles, transitions as boxes, inhibitor arcs drawn with an open-circle
// arrowhead (arrowhead=odot) to distinguish them from regular arcs.
func WritePetriNetDOT(w io.Writer, net *PetriNet, marking *bitset.BitSet) error {
	bw := newDotWriter(w)
	bw.printf("digraph pn {\n")
	for i := 0; i < net.NumPlaces(); i++ {
		p := PNPlace(i)
		fill := ""
		if marking != nil && marking.Test(uint(p)) {
			fill = `, style=filled, fillcolor=black`
		}
		bw.printf("  p%d [label=%q, shape=circle%s];\n", i, net.PlaceName(p), fill)
	}
	for i := 0; i < net.NumTransitions(); i++ {
		t := PNTrans(i)
		bw.printf("  t%d [label=%q, shape=box];\n", i, net.TransName(t))
		for _, a := range net.InputArcs(t) {
			arrow := ""
			if a.kind == ArcInhibitor {
				arrow = `, arrowhead=odot`
			}
			bw.printf("  p%d -> t%d [label=%q%s];\n", a.place, i, fmt.Sprintf("%d", a.weight), arrow)
		}
		for _, p := range net.OutputPlaces(t) {
			bw.printf("  t%d -> p%d [label=\"1\"];\n", i, p)
		}
	}
	bw.printf("}\n")
	return bw.err
}

// dotWriter accumulates the first write error so callers can check it once
// at the end instead of after every Fprintf.
type dotWriter struct {
	w   io.Writer
	err error
}

func newDotWriter(w io.Writer) *dotWriter { return &dotWriter{w: w} }

func (d *dotWriter) printf(format string, args ...any) {
	if d.err != nil {
		return
	}
	_, d.err = fmt.Fprintf(d.w, format, args...)
}
