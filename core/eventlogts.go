package core

// AcceptFlag is an explicit tri-state flag — never collapsed to a bool —
// per spec.md §9's Open Question guidance on tri-state accepting flags.
type AcceptFlag byte

const (
	AcceptUnset AcceptFlag = iota
	AcceptTrue
	AcceptFalse
)

// EventLogTS wraps a LabeledTS with the event-log-specific bundle spec.md
// §3.3 describes for the E layer: a trace count, per-transition frequency,
// per-state accepting flags, and the maximum window size used to build it.
type EventLogTS struct {
	*LabeledTS

	traceCount    uint64
	freq          map[TransHandle]uint64
	accepting     map[StateHandle]AcceptFlag
	maxWindowSize int
}

// NewEventLogTS returns an empty event-log TS over a fresh LabeledTS bound
// to pool.
func NewEventLogTS(pool *IDPool) *EventLogTS {
	return &EventLogTS{
		LabeledTS: NewLabeledTS(pool),
		freq:      make(map[TransHandle]uint64),
		accepting: make(map[StateHandle]AcceptFlag),
	}
}

// TraceCount returns the number of traces folded into this TS so far.
func (ts *EventLogTS) TraceCount() uint64 { return ts.traceCount }

// IncTraceCount bumps the trace count by one; called by the builder after
// each replayed trace.
func (ts *EventLogTS) IncTraceCount() { ts.traceCount++ }

// MaxWindowSize returns the recorded maximum window size (set by the
// builder or the variable-window rebuilder).
func (ts *EventLogTS) MaxWindowSize() int { return ts.maxWindowSize }

// SetMaxWindowSize records the maximum window size used to build this TS.
func (ts *EventLogTS) SetMaxWindowSize(n int) { ts.maxWindowSize = n }

// Frequency returns the number of times transition t has fired.
func (ts *EventLogTS) Frequency(t TransHandle) uint64 { return ts.freq[t] }

// SetFrequency sets t's frequency directly (used when building a TS from an
// already-frequency-bearing source, e.g. condensation).
func (ts *EventLogTS) SetFrequency(t TransHandle, n uint64) { ts.freq[t] = n }

// GetOrAddTransWithFreq is GetOrAddTrans plus a frequency increment: it
// reuses a parallel transition (src, tgt, label) if one exists, creates one
// otherwise, and adds delta to its running frequency.
func (ts *EventLogTS) GetOrAddTransWithFreq(src, tgt StateHandle, label AttrValue, delta uint64) TransHandle {
	h := ts.GetOrAddTrans(src, tgt, label)
	ts.freq[h] += delta
	return h
}

// Accepting returns s's tri-state accepting flag. Unset means "no
// information", per the GLOSSARY.
func (ts *EventLogTS) Accepting(s StateHandle) AcceptFlag {
	if f, ok := ts.accepting[s]; ok {
		return f
	}
	return AcceptUnset
}

// SetAccepting sets s's accepting flag.
func (ts *EventLogTS) SetAccepting(s StateHandle, flag AcceptFlag) {
	ts.accepting[s] = flag
}

// RemoveState overrides LabeledTS.RemoveState to also drop E-layer
// bookkeeping (frequencies of incident transitions, the accepting flag) for
// the removed state so condensation/rebuild never leak stale entries.
func (ts *EventLogTS) RemoveState(s StateHandle) error {
	for th := range ts.OutTransitions(s) {
		delete(ts.freq, th)
	}
	for th := range ts.InTransitions(s) {
		delete(ts.freq, th)
	}
	if err := ts.LabeledTS.RemoveState(s); err != nil {
		return err
	}
	delete(ts.accepting, s)
	return nil
}

// RemoveTrans overrides LabeledTS.RemoveTrans to also drop the removed
// transition's frequency entry.
func (ts *EventLogTS) RemoveTrans(t TransHandle) error {
	if err := ts.LabeledTS.RemoveTrans(t); err != nil {
		return err
	}
	delete(ts.freq, t)
	return nil
}

// Clone deep-copies the event-log TS, including its E-layer bookkeeping.
func (ts *EventLogTS) Clone() *EventLogTS {
	out := &EventLogTS{
		LabeledTS:     ts.LabeledTS.Clone(),
		freq:          make(map[TransHandle]uint64, len(ts.freq)),
		accepting:     make(map[StateHandle]AcceptFlag, len(ts.accepting)),
		traceCount:    ts.traceCount,
		maxWindowSize: ts.maxWindowSize,
	}
	for k, v := range ts.freq {
		out.freq[k] = v
	}
	for k, v := range ts.accepting {
		out.accepting[k] = v
	}
	return out
}
