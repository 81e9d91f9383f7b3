package core

// StateFunc maps a trace's history of activity values so far (oldest first)
// to the StateID the builder should use for the state reached after that
// history. The builder calls it once per prefix of each trace and interns
// the result through the TS's IDPool (via GetOrAddState). This is the
// strategy spec.md §3.2/§4.F call out as pluggable: prefix/suffix windowing,
// infix windowing, and the Parikh (multiset) specialization are all plain
// StateFunc values rather than an interface hierarchy.
type StateFunc func(history []AttrValue) StateID

// PrefixStateFunc returns a StateFunc that identifies a state by the last
// windowSize activities of the history (the "prefix automaton" construction,
// bounded to a finite window). windowSize <= 0 means unbounded: the entire
// history is the identifier.
func PrefixStateFunc(windowSize int) StateFunc {
	return func(history []AttrValue) StateID {
		if windowSize <= 0 || len(history) <= windowSize {
			return NewStateID(history...)
		}
		return NewStateID(history[len(history)-windowSize:]...)
	}
}

// SuffixStateFunc returns a StateFunc that identifies a state by the first
// windowSize activities of the history, counted from the trace's start. This
// is the "suffix automaton" dual of PrefixStateFunc: once the window fills,
// later activities no longer change the identifier.
func SuffixStateFunc(windowSize int) StateFunc {
	return func(history []AttrValue) StateID {
		if windowSize <= 0 || len(history) <= windowSize {
			return NewStateID(history...)
		}
		return NewStateID(history[:windowSize]...)
	}
}

// InfixStateFunc returns a StateFunc that identifies a state by a fixed-size
// window starting at offset from the trace's start, independent of the
// history's total length. If the history is shorter than offset+windowSize,
// the identifier covers whatever is available from offset onward.
func InfixStateFunc(offset, windowSize int) StateFunc {
	return func(history []AttrValue) StateID {
		if offset >= len(history) {
			return EmptyStateID()
		}
		end := offset + windowSize
		if windowSize <= 0 || end > len(history) {
			end = len(history)
		}
		return NewStateID(history[offset:end]...)
	}
}

// ParikhStateFunc returns a StateFunc that identifies a state by the
// commutative multiset of activities in the full history (order-independent),
// backed by a shared ParikhIDPool so repeated multisets intern to the same
// identifier regardless of the order activities were applied in.
func ParikhStateFunc(pool *ParikhIDPool) StateFunc {
	return func(history []AttrValue) StateID {
		id := EmptyStateID()
		for _, act := range history {
			name, _ := act.AsString()
			id = *pool.WithActivity(id, name)
		}
		return id
	}
}
