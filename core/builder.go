package core

import (
	"github.com/sirupsen/logrus"
)

// BuilderConfig configures a Builder's replay pass over an event log.
type BuilderConfig struct {
	// StateFn derives a state identity from a trace's activity history so
	// far. Defaults to PrefixStateFunc(0) (unbounded prefix) if nil.
	StateFn StateFunc
	// MaxWindowSize records the window size used by StateFn, purely for
	// bookkeeping on the resulting EventLogTS (spec.md §3.3); it has no
	// effect on replay itself.
	MaxWindowSize int
}

// Builder replays an EventLog trace by trace into an EventLogTS, one prefix
// transition per event, accumulating per-transition frequency and marking
// each trace's final state accepting. This is the F component (spec.md
// §4.F): the TS builder.
type Builder struct {
	cfg BuilderConfig
	log *logrus.Logger
}

// NewBuilder returns a Builder using cfg and lg for diagnostic logging. A
// nil logger falls back to logrus's standard logger, matching the teacher
// convention of an injected *logrus.Logger with a safe default.
func NewBuilder(cfg BuilderConfig, lg *logrus.Logger) *Builder {
	if cfg.StateFn == nil {
		cfg.StateFn = PrefixStateFunc(0)
	}
	if lg == nil {
		lg = logrus.StandardLogger()
	}
	return &Builder{cfg: cfg, log: lg}
}

// Build replays src in full into a fresh EventLogTS bound to pool, reporting
// progress via progress (nil is accepted) after each trace. It returns
// CodeCanceled if progress signals Cancel.
func (b *Builder) Build(pool *IDPool, src EventLog, progress ProgressFunc) (*EventLogTS, error) {
	progress = orNoop(progress)
	ts := NewEventLogTS(pool)
	ts.SetMaxWindowSize(b.cfg.MaxWindowSize)

	traces := make([]Trace, 0)
	for tr := range src.Traces() {
		traces = append(traces, tr)
	}
	b.log.Infof("builder: replaying %d traces", len(traces))

	for i, tr := range traces {
		if err := b.replayTrace(ts, tr); err != nil {
			return nil, err
		}
		ts.IncTraceCount()
		percent := 100
		if len(traces) > 0 {
			percent = (i + 1) * 100 / len(traces)
		}
		if progress(percent) == Cancel {
			return ts, NewError(CodeCanceled, "builder: canceled by progress callback")
		}
	}
	b.log.Infof("builder: done, %d states, %d transitions", ts.NumStates(), ts.NumTrans())
	return ts, nil
}

func (b *Builder) replayTrace(ts *EventLogTS, tr Trace) error {
	history := make([]AttrValue, 0)
	cur := ts.Initial()
	for ev := range tr.Events() {
		act := ev.Activity()
		history = append(history, act)
		id := b.cfg.StateFn(history)
		next := ts.GetOrAddState(id)
		ts.GetOrAddTransWithFreq(cur, next, act, 1)
		cur = next
	}
	ts.SetAccepting(cur, AcceptTrue)
	return nil
}

// Detach returns a deep clone of ts: the returned TS may be mutated
// (condensed, rebuilt, converted) without affecting ts. The clone still
// shares ts's identifier pool.
func Detach(ts *EventLogTS) *EventLogTS {
	return ts.Clone()
}
