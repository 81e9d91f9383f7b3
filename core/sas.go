package core

import "github.com/sirupsen/logrus"

// sasAcceptedLabel is the fresh label attached to every transition the SAS
// converter introduces into the single accepting state.
const sasAcceptedLabel = "wf_accepted"

// SASConverter rewrites an EventLogTS so that it has exactly one accepting
// state: every previously-accepting state gets a new transition into a
// fresh sink state, loses its own accepting flag, and the sink becomes the
// TS's only accepting state. This is the I component (spec.md §4.I),
// required before the PN region synthesizer can enforce the workflow-net
// single-sink postcondition.
type SASConverter struct {
	log *logrus.Logger
}

// NewSASConverter returns a converter logging through lg (nil falls back to
// logrus's standard logger).
func NewSASConverter(lg *logrus.Logger) *SASConverter {
	if lg == nil {
		lg = logrus.StandardLogger()
	}
	return &SASConverter{log: lg}
}

// Convert returns a fresh EventLogTS equivalent to ts but with a single
// accepting state. If ts already has exactly one accepting state with no
// outgoing transitions, it is returned unchanged (as a clone).
func (c *SASConverter) Convert(ts *EventLogTS) *EventLogTS {
	out := ts.Clone()

	accepting := make([]StateHandle, 0)
	for s := range out.States() {
		if out.Accepting(s) == AcceptTrue {
			accepting = append(accepting, s)
		}
	}

	if len(accepting) == 1 {
		only := accepting[0]
		hasOut := false
		for range out.OutTransitions(only) {
			hasOut = true
			break
		}
		if !hasOut {
			c.log.Infof("sas: already single-accepting, no conversion needed")
			return out
		}
	}

	sink := out.GetOrAddState(NewStateID(OwnedStringVal("q_f")))
	for _, s := range accepting {
		out.GetOrAddTransWithFreq(s, sink, CStrVal(sasAcceptedLabel), 0)
		out.SetAccepting(s, AcceptFalse)
	}
	out.SetAccepting(sink, AcceptTrue)
	c.log.Infof("sas: redirected %d accepting states into a single sink", len(accepting))
	return out
}
