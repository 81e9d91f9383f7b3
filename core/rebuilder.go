package core

import (
	"math"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ZSAPolicy selects what the variable-window rebuilder does when neither the
// normal-window nor the widened-window state identity for an event is
// present in the condensed TS (the "zero-state acquisition" case).
type ZSAPolicy byte

const (
	// ZSADropTrace stops replaying the trace at that event. Transitions
	// already added for its earlier events stay in the result, and no state
	// is marked accepting for the trace.
	ZSADropTrace ZSAPolicy = iota
	// ZSASpecState routes the rest of the trace into one shared, synthetic
	// sink state instead of a windowed identity.
	ZSASpecState
	// ZSANewChain routes the rest of the trace through its own private
	// chain of anonymous states, never merged with any other trace's.
	ZSANewChain
)

func (p ZSAPolicy) String() string {
	switch p {
	case ZSADropTrace:
		return "drop-trace"
	case ZSASpecState:
		return "spec-state"
	case ZSANewChain:
		return "new-chain"
	default:
		return "unknown"
	}
}

// VWRebuilderConfig configures a VWRebuilder.
type VWRebuilderConfig struct {
	// InitialWindowSize is the first prefix window size attempted.
	InitialWindowSize int
	// MaxWindowSize caps the widened window; 0 leaves it uncapped.
	MaxWindowSize int
	// Coefficient widens the window between attempts: the next window is
	// ceil(windowSize * (1 + Coefficient)).
	Coefficient float64
	// ZSA selects the fallback policy once the widened window's state is
	// also absent from the condensed TS.
	ZSA ZSAPolicy
}

// VWRebuilder rebuilds a TS from an event log against a condensed TS: each
// event's state uses the normal prefix window, one widened window is tried
// when that state is absent from the condensed TS, and the configured
// ZSAPolicy handles the rest of the trace when the widened state is absent
// too. This is the H component (spec.md §4.H).
type VWRebuilder struct {
	cfg VWRebuilderConfig
	log *logrus.Logger
}

// NewVWRebuilder returns a VWRebuilder for cfg, logging through lg (nil
// falls back to logrus's standard logger).
func NewVWRebuilder(cfg VWRebuilderConfig, lg *logrus.Logger) *VWRebuilder {
	if cfg.InitialWindowSize <= 0 {
		cfg.InitialWindowSize = 1
	}
	if lg == nil {
		lg = logrus.StandardLogger()
	}
	return &VWRebuilder{cfg: cfg, log: lg}
}

func nextWindow(size int, coefficient float64) int {
	return int(math.Ceil(float64(size) * (1 + coefficient)))
}

// Rebuild re-replays src against condensed, the TS produced by G. Per spec.md
// §4.H, the cursor advances with the normal-window state function as long as
// the resulting state is present in condensed; whenever it is absent, a
// widened window (⌈normal_window · (1 + Coefficient)⌉) is tried once, and
// only if that is *also* absent from condensed does the configured ZSAPolicy
// take over for the remainder of that trace. condensed is never mutated; the
// rebuild always produces a fresh EventLogTS bound to pool.
func (r *VWRebuilder) Rebuild(pool *IDPool, condensed *EventLogTS, src EventLog, progress ProgressFunc) (*EventLogTS, error) {
	if condensed == nil {
		return nil, NewError(CodeInvalidArgument, "rebuilder: condensed TS is required")
	}
	progress = orNoop(progress)

	traces := make([]Trace, 0)
	for tr := range src.Traces() {
		traces = append(traces, tr)
	}

	window := r.cfg.InitialWindowSize
	widenedWindow := nextWindow(window, r.cfg.Coefficient)
	if r.cfg.MaxWindowSize > 0 && widenedWindow > r.cfg.MaxWindowSize {
		widenedWindow = r.cfg.MaxWindowSize
	}
	stateFn := PrefixStateFunc(window)
	widenedStateFn := PrefixStateFunc(widenedWindow)
	r.log.Infof("rebuilder: window=%d widened=%d zsaPolicy=%s", window, widenedWindow, r.cfg.ZSA)

	ts := NewEventLogTS(pool)
	maxWindow := window
	if widenedWindow > maxWindow {
		maxWindow = widenedWindow
	}
	ts.SetMaxWindowSize(maxWindow)

	var sharedSink StateHandle
	haveSharedSink := false

	for i, tr := range traces {
		events := collectEvents(tr)
		cur := ts.Initial()
		history := make([]AttrValue, 0, len(events))
		diverted := false
		dropped := false

		for _, act := range events {
			history = append(history, act)

			if diverted {
				switch r.cfg.ZSA {
				case ZSASpecState:
					ts.GetOrAddTransWithFreq(cur, sharedSink, act, 1)
					cur = sharedSink
				case ZSANewChain:
					next := ts.AddAnonState()
					ts.GetOrAddTransWithFreq(cur, next, act, 1)
					cur = next
				}
				continue
			}

			id := stateFn(history)
			if _, ok := condensed.GetState(id); !ok {
				if wide := widenedStateFn(history); true {
					if _, ok2 := condensed.GetState(wide); ok2 {
						id = wide
					} else {
						switch r.cfg.ZSA {
						case ZSADropTrace:
							dropped = true
						case ZSASpecState:
							if !haveSharedSink {
								sharedSink = ts.GetOrAddState(NewStateID(OwnedStringVal("zsa:" + uuid.NewString())))
								haveSharedSink = true
							}
							ts.GetOrAddTransWithFreq(cur, sharedSink, act, 1)
							cur = sharedSink
						case ZSANewChain:
							next := ts.AddAnonState()
							ts.GetOrAddTransWithFreq(cur, next, act, 1)
							cur = next
						}
						if dropped {
							break
						}
						diverted = true
						continue
					}
				}
			}

			next := ts.GetOrAddState(id)
			ts.GetOrAddTransWithFreq(cur, next, act, 1)
			cur = next
		}

		ts.IncTraceCount()
		if !dropped {
			ts.SetAccepting(cur, AcceptTrue)
		}

		if progress(percentOf(i+1, len(traces))) == Cancel {
			return nil, NewError(CodeCanceled, "rebuilder: canceled by progress callback")
		}
	}
	return ts, nil
}

func collectEvents(tr Trace) []AttrValue {
	out := make([]AttrValue, 0)
	for ev := range tr.Events() {
		out = append(out, ev.Activity())
	}
	return out
}

func percentOf(done, total int) int {
	if total == 0 {
		return 100
	}
	return done * 100 / total
}
