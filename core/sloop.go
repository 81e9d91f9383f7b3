package core

import "github.com/sirupsen/logrus"

// sloopMidMarker tags an intermediate state created by SLoopConverter.Convert
// with the label of the loop it was lifted from. The region synthesizer does
// not read it; no SelfLoopPolicy collapses a lifted loop.
type sloopMidMarker struct {
	label string
}

// SLoopConverter lifts every self-loop transition (a transition whose
// source and target are the same state) into a two-hop detour through a
// fresh intermediate state, carrying the original label and frequency on
// both hops. Region synthesis cannot place a self-loop directly (a region's
// entering/leaving sets would have to both contain and exclude the same
// transition), so self-loops must be eliminated from the TS before region
// synthesis runs. This is the J component (spec.md §4.J).
type SLoopConverter struct {
	log *logrus.Logger
}

// NewSLoopConverter returns a converter logging through lg (nil falls back
// to logrus's standard logger).
func NewSLoopConverter(lg *logrus.Logger) *SLoopConverter {
	if lg == nil {
		lg = logrus.StandardLogger()
	}
	return &SLoopConverter{log: lg}
}

// outCopy is a snapshot of one outgoing transition, taken before any
// structural mutation so it can be replayed onto a lifted intermediate
// state.
type outCopy struct {
	label AttrValue
	tgt   StateHandle
	freq  uint64
}

// Convert returns a fresh EventLogTS equivalent to ts but with every
// self-loop transition replaced by src -> mid -> src through a fresh
// anonymous intermediate state, each hop carrying ts's original label and
// frequency. mid is also given a copy of s's other outgoing transitions and
// s's accepting flag, so a replay that stops after an odd number of loop
// firings — landing on mid rather than back on s — can still do anything s
// itself could and is accepted exactly when s would have accepted it. This
// is what makes the lift preserve the language ℓ* (spec.md §4.J, §8).
func (c *SLoopConverter) Convert(ts *EventLogTS) *EventLogTS {
	out := ts.Clone()

	loops := make([]TransHandle, 0)
	for th := range out.Transitions() {
		if out.Source(th) == out.Target(th) {
			loops = append(loops, th)
		}
	}

	// Snapshot each loop's sibling out-edges up front, before any loop in
	// the batch is mutated, so a state with more than one self-loop label
	// still gets a correct, independent exclusion set per loop.
	otherOuts := make(map[TransHandle][]outCopy, len(loops))
	for _, th := range loops {
		s := out.Source(th)
		edges := make([]outCopy, 0)
		for oth := range out.OutTransitions(s) {
			if oth == th {
				continue
			}
			edges = append(edges, outCopy{label: out.TransLabel(oth), tgt: out.Target(oth), freq: out.Frequency(oth)})
		}
		otherOuts[th] = edges
	}

	for _, th := range loops {
		s := out.Source(th)
		label := out.TransLabel(th)
		freq := out.Frequency(th)
		accepting := out.Accepting(s)
		siblings := otherOuts[th]

		if err := out.RemoveTrans(th); err != nil {
			panic(err) // th was just observed live; removal cannot fail
		}
		mid := out.AddAnonState()
		out.SetStateData(mid, sloopMidMarker{label: label.CanonicalString()})
		if accepting != AcceptUnset {
			out.SetAccepting(mid, accepting)
		}
		out.GetOrAddTransWithFreq(s, mid, label, freq)
		out.GetOrAddTransWithFreq(mid, s, label, freq)
		for _, e := range siblings {
			out.GetOrAddTransWithFreq(mid, e.tgt, e.label, e.freq)
		}
	}

	c.log.Infof("sloop: lifted %d self-loops", len(loops))
	return out
}
