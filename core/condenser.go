package core

import (
	"math"

	"github.com/sirupsen/logrus"
)

// Condenser removes low-frequency noise from an EventLogTS: any transition
// whose frequency falls below a threshold derived from the TS's trace count
// is dropped, and any state left unreachable from the initial state (other
// than the initial state itself) is dropped with it. This is the G
// component (spec.md §4.G).
type Condenser struct {
	// Theta is the fraction in [0, 1] of TraceCount below which a
	// transition's frequency is considered noise. The absolute cutoff is
	// ceil(Theta * TraceCount); a transition survives iff its frequency is
	// >= that cutoff.
	Theta float64
	log   *logrus.Logger
}

// NewCondenser returns a Condenser with threshold theta, logging through lg
// (nil falls back to logrus's standard logger).
func NewCondenser(theta float64, lg *logrus.Logger) (*Condenser, error) {
	if theta < 0 || theta > 1 {
		return nil, NewError(CodeInvalidArgument, "condenser: theta must be in [0, 1]")
	}
	if lg == nil {
		lg = logrus.StandardLogger()
	}
	return &Condenser{Theta: theta, log: lg}, nil
}

// Condense returns a fresh EventLogTS containing only ts's transitions at or
// above the frequency cutoff, and only the states still reachable from the
// initial state through surviving transitions. ts itself is untouched.
func (c *Condenser) Condense(ts *EventLogTS, progress ProgressFunc) (*EventLogTS, error) {
	progress = orNoop(progress)
	cutoff := uint64(math.Ceil(c.Theta * float64(ts.TraceCount())))
	c.log.Infof("condenser: theta=%.3f traceCount=%d cutoff=%d", c.Theta, ts.TraceCount(), cutoff)

	out := ts.Clone()
	toDrop := make([]TransHandle, 0)
	for th := range out.Transitions() {
		if out.Frequency(th) < cutoff {
			toDrop = append(toDrop, th)
		}
	}
	for i, th := range toDrop {
		if err := out.RemoveTrans(th); err != nil {
			return nil, err
		}
		if progress((i+1)*50/max1(len(toDrop))) == Cancel {
			return nil, NewError(CodeCanceled, "condenser: canceled by progress callback")
		}
	}

	reachable := reachableFrom(out.LabeledTS, out.Initial())
	unreachable := make([]StateHandle, 0)
	for s := range out.States() {
		if s == out.Initial() {
			continue
		}
		if _, ok := reachable[s]; !ok {
			unreachable = append(unreachable, s)
		}
	}
	for i, s := range unreachable {
		if err := out.RemoveState(s); err != nil {
			return nil, err
		}
		if progress(50+(i+1)*50/max1(len(unreachable))) == Cancel {
			return nil, NewError(CodeCanceled, "condenser: canceled by progress callback")
		}
	}
	c.log.Infof("condenser: dropped %d transitions, %d unreachable states", len(toDrop), len(unreachable))
	return out, nil
}

func reachableFrom(ts *LabeledTS, start StateHandle) map[StateHandle]struct{} {
	seen := map[StateHandle]struct{}{start: {}}
	queue := []StateHandle{start}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		for th := range ts.OutTransitions(s) {
			tgt := ts.Target(th)
			if _, ok := seen[tgt]; !ok {
				seen[tgt] = struct{}{}
				queue = append(queue, tgt)
			}
		}
	}
	return seen
}

func max1(n int) int {
	if n == 0 {
		return 1
	}
	return n
}
