package core

import "iter"

// StateHandle is a stable reference to a TS state: an arena index plus a
// generation tag. A handle whose generation no longer matches its slot's
// current generation refers to a removed state (spec.md §9's
// "arena+index... with generational tags to detect dangling handles").
type StateHandle struct {
	idx int32
	gen uint32
}

// TransHandle is the transition analogue of StateHandle.
type TransHandle struct {
	idx int32
	gen uint32
}

type stateSlot struct {
	occupied bool
	gen      uint32
	id       *StateID // nil iff anonymous
	data     any
	outs     []TransHandle
	ins      []TransHandle
}

type transSlot struct {
	occupied bool
	gen      uint32
	src, tgt StateHandle
	label    AttrValue
	data     any
}

// LabeledTS is an in-memory labeled directed multigraph: states carry an
// optional StateID identity plus user data, transitions carry a label plus
// user data. See spec.md §3.3/§4.D.
type LabeledTS struct {
	pool    *IDPool
	states  []stateSlot
	trans   []transSlot
	freeSt  []int32
	freeTr  []int32
	idIndex map[string]StateHandle
	anon    map[StateHandle]struct{}
	initial StateHandle

	// removalGen is bumped on every RemoveState/RemoveTrans; iterators
	// capture it at creation and panic if it changes mid-iteration. Pure
	// additions never bump it, matching spec.md §4.D's iterator contract.
	removalGen uint64
}

// NewLabeledTS returns an empty TS with the initial state pre-inserted and
// bound to pool's distinguished initial identifier.
func NewLabeledTS(pool *IDPool) *LabeledTS {
	ts := &LabeledTS{
		pool:    pool,
		idIndex: make(map[string]StateHandle),
		anon:    make(map[StateHandle]struct{}),
	}
	ts.initial = ts.insertState(pool.Initial())
	return ts
}

// Initial returns the TS's distinguished initial state.
func (ts *LabeledTS) Initial() StateHandle { return ts.initial }

func (ts *LabeledTS) insertState(id *StateID) StateHandle {
	var h StateHandle
	if len(ts.freeSt) > 0 {
		i := ts.freeSt[len(ts.freeSt)-1]
		ts.freeSt = ts.freeSt[:len(ts.freeSt)-1]
		ts.states[i].occupied = true
		ts.states[i].id = id
		ts.states[i].data = nil
		ts.states[i].outs = nil
		ts.states[i].ins = nil
		h = StateHandle{idx: i, gen: ts.states[i].gen}
	} else {
		ts.states = append(ts.states, stateSlot{occupied: true, id: id})
		h = StateHandle{idx: int32(len(ts.states) - 1), gen: 0}
	}
	if id != nil {
		ts.idIndex[id.CanonicalString()] = h
	} else {
		ts.anon[h] = struct{}{}
	}
	return h
}

// GetOrAddState returns the state bound to id, creating a regular state if
// none exists yet.
func (ts *LabeledTS) GetOrAddState(id StateID) StateHandle {
	interned := ts.pool.Intern(id)
	if h, ok := ts.idIndex[interned.CanonicalString()]; ok {
		return h
	}
	return ts.insertState(interned)
}

// GetState looks up a regular state by id; ok is false if none exists.
func (ts *LabeledTS) GetState(id StateID) (StateHandle, bool) {
	interned := ts.pool.Intern(id)
	h, ok := ts.idIndex[interned.CanonicalString()]
	return h, ok
}

// AddAnonState unconditionally creates a new anonymous (ID-less) state.
func (ts *LabeledTS) AddAnonState() StateHandle {
	return ts.insertState(nil)
}

func (ts *LabeledTS) mustSlot(h StateHandle) *stateSlot {
	s := &ts.states[h.idx]
	if !s.occupied || s.gen != h.gen {
		panic(ErrStaleHandle)
	}
	return s
}

func (ts *LabeledTS) mustTransSlot(h TransHandle) *transSlot {
	t := &ts.trans[h.idx]
	if !t.occupied || t.gen != h.gen {
		panic(ErrStaleHandle)
	}
	return t
}

// StateIDOf returns the identity bound to s, or (_, false) if s is
// anonymous.
func (ts *LabeledTS) StateIDOf(s StateHandle) (*StateID, bool) {
	sl := ts.mustSlot(s)
	if sl.id == nil {
		return nil, false
	}
	return sl.id, true
}

// IsAnonymous reports whether s carries no identity.
func (ts *LabeledTS) IsAnonymous(s StateHandle) bool {
	_, hasID := ts.StateIDOf(s)
	return !hasID
}

// StateData returns the user payload attached to s.
func (ts *LabeledTS) StateData(s StateHandle) any { return ts.mustSlot(s).data }

// SetStateData attaches a user payload to s.
func (ts *LabeledTS) SetStateData(s StateHandle, data any) { ts.mustSlot(s).data = data }

// TransLabel returns the label attached to t.
func (ts *LabeledTS) TransLabel(t TransHandle) AttrValue { return ts.mustTransSlot(t).label }

// TransData returns the user payload attached to t.
func (ts *LabeledTS) TransData(t TransHandle) any { return ts.mustTransSlot(t).data }

// SetTransData attaches a user payload to t.
func (ts *LabeledTS) SetTransData(t TransHandle, data any) { ts.mustTransSlot(t).data = data }

// Source and Target return the endpoints of t.
func (ts *LabeledTS) Source(t TransHandle) StateHandle { return ts.mustTransSlot(t).src }
func (ts *LabeledTS) Target(t TransHandle) StateHandle { return ts.mustTransSlot(t).tgt }

// GetTrans scans src's out-edges for a transition to tgt labeled label.
func (ts *LabeledTS) GetTrans(src, tgt StateHandle, label AttrValue) (TransHandle, bool) {
	s := ts.mustSlot(src)
	for _, th := range s.outs {
		tr := &ts.trans[th.idx]
		if tr.occupied && tr.tgt == tgt && tr.label.Equal(label) {
			return th, true
		}
	}
	return TransHandle{}, false
}

// GetFirstOutTrans returns the first (by out-edge iteration order)
// transition leaving src labeled label.
func (ts *LabeledTS) GetFirstOutTrans(src StateHandle, label AttrValue) (TransHandle, bool) {
	s := ts.mustSlot(src)
	for _, th := range s.outs {
		tr := &ts.trans[th.idx]
		if tr.occupied && tr.label.Equal(label) {
			return th, true
		}
	}
	return TransHandle{}, false
}

func (ts *LabeledTS) insertTrans(src, tgt StateHandle, label AttrValue) TransHandle {
	var h TransHandle
	if len(ts.freeTr) > 0 {
		i := ts.freeTr[len(ts.freeTr)-1]
		ts.freeTr = ts.freeTr[:len(ts.freeTr)-1]
		ts.trans[i] = transSlot{occupied: true, gen: ts.trans[i].gen, src: src, tgt: tgt, label: label}
		h = TransHandle{idx: i, gen: ts.trans[i].gen}
	} else {
		ts.trans = append(ts.trans, transSlot{occupied: true, src: src, tgt: tgt, label: label})
		h = TransHandle{idx: int32(len(ts.trans) - 1), gen: 0}
	}
	srcSlot := ts.mustSlot(src)
	srcSlot.outs = append(srcSlot.outs, h)
	tgtSlot := ts.mustSlot(tgt)
	tgtSlot.ins = append(tgtSlot.ins, h)
	return h
}

// GetOrAddTrans reuses a parallel transition (src, tgt, label) if one
// exists, else creates it. Parallel transitions between the same pair of
// states are permitted iff labels differ, per spec.md §3.3.
func (ts *LabeledTS) GetOrAddTrans(src, tgt StateHandle, label AttrValue) TransHandle {
	if h, ok := ts.GetTrans(src, tgt, label); ok {
		return h
	}
	return ts.insertTrans(src, tgt, label)
}

// AddAnonTrans always creates a fresh transition, bypassing the parallel-
// label dedup check — used for edges with no meaningful label (self-loop
// lifting's intermediate hops).
func (ts *LabeledTS) AddAnonTrans(src, tgt StateHandle) TransHandle {
	return ts.insertTrans(src, tgt, Empty())
}

// RemoveState clears all of s's incident transitions, then removes s.
// Removing an unknown state is a contract violation.
func (ts *LabeledTS) RemoveState(s StateHandle) error {
	if s.idx < 0 || int(s.idx) >= len(ts.states) {
		return Wrapf(CodeInvalidArgument, nil, "RemoveState: unknown state handle")
	}
	sl := &ts.states[s.idx]
	if !sl.occupied || sl.gen != s.gen {
		return Wrapf(CodeInvalidArgument, nil, "RemoveState: unknown state handle")
	}
	for _, th := range append([]TransHandle(nil), sl.outs...) {
		_ = ts.RemoveTrans(th)
	}
	for _, th := range append([]TransHandle(nil), sl.ins...) {
		_ = ts.RemoveTrans(th)
	}
	if sl.id != nil {
		delete(ts.idIndex, sl.id.CanonicalString())
	} else {
		delete(ts.anon, s)
	}
	sl.occupied = false
	sl.id = nil
	sl.data = nil
	sl.outs = nil
	sl.ins = nil
	sl.gen++
	ts.freeSt = append(ts.freeSt, s.idx)
	ts.removalGen++
	return nil
}

// RemoveTrans detaches t from its endpoints' adjacency lists. Removing an
// unknown transition is a contract violation.
func (ts *LabeledTS) RemoveTrans(t TransHandle) error {
	tr := &ts.trans[t.idx]
	if !tr.occupied || tr.gen != t.gen {
		return Wrapf(CodeInvalidArgument, nil, "RemoveTrans: unknown transition handle")
	}
	if ts.states[tr.src.idx].occupied {
		ts.states[tr.src.idx].outs = removeHandle(ts.states[tr.src.idx].outs, t)
	}
	if ts.states[tr.tgt.idx].occupied {
		ts.states[tr.tgt.idx].ins = removeHandle(ts.states[tr.tgt.idx].ins, t)
	}
	tr.occupied = false
	tr.gen++
	ts.freeTr = append(ts.freeTr, t.idx)
	ts.removalGen++
	return nil
}

func removeHandle(hs []TransHandle, target TransHandle) []TransHandle {
	for i, h := range hs {
		if h == target {
			return append(hs[:i], hs[i+1:]...)
		}
	}
	return hs
}

// States iterates every live state in arena order. Iteration observes
// appended states but panics with ErrIteratorInvalidated if a removal
// happens mid-iteration.
func (ts *LabeledTS) States() iter.Seq[StateHandle] {
	return func(yield func(StateHandle) bool) {
		startGen := ts.removalGen
		for i := 0; i < len(ts.states); i++ {
			if ts.removalGen != startGen {
				panic(ErrIteratorInvalidated)
			}
			if !ts.states[i].occupied {
				continue
			}
			if !yield(StateHandle{idx: int32(i), gen: ts.states[i].gen}) {
				return
			}
		}
	}
}

// Transitions iterates every live transition in arena order, with the same
// validity contract as States.
func (ts *LabeledTS) Transitions() iter.Seq[TransHandle] {
	return func(yield func(TransHandle) bool) {
		startGen := ts.removalGen
		for i := 0; i < len(ts.trans); i++ {
			if ts.removalGen != startGen {
				panic(ErrIteratorInvalidated)
			}
			if !ts.trans[i].occupied {
				continue
			}
			if !yield(TransHandle{idx: int32(i), gen: ts.trans[i].gen}) {
				return
			}
		}
	}
}

// OutTransitions iterates s's outgoing transitions in out-edge-list order.
func (ts *LabeledTS) OutTransitions(s StateHandle) iter.Seq[TransHandle] {
	sl := ts.mustSlot(s)
	return func(yield func(TransHandle) bool) {
		startGen := ts.removalGen
		for i := 0; i < len(sl.outs); i++ {
			if ts.removalGen != startGen {
				panic(ErrIteratorInvalidated)
			}
			if !yield(sl.outs[i]) {
				return
			}
		}
	}
}

// InTransitions iterates s's incoming transitions in in-edge-list order.
func (ts *LabeledTS) InTransitions(s StateHandle) iter.Seq[TransHandle] {
	sl := ts.mustSlot(s)
	return func(yield func(TransHandle) bool) {
		startGen := ts.removalGen
		for i := 0; i < len(sl.ins); i++ {
			if ts.removalGen != startGen {
				panic(ErrIteratorInvalidated)
			}
			if !yield(sl.ins[i]) {
				return
			}
		}
	}
}

// NumStates and NumTrans report live counts (excluding tombstoned slots).
func (ts *LabeledTS) NumStates() int {
	n := 0
	for _, s := range ts.states {
		if s.occupied {
			n++
		}
	}
	return n
}

func (ts *LabeledTS) NumTrans() int {
	n := 0
	for _, t := range ts.trans {
		if t.occupied {
			n++
		}
	}
	return n
}

// Pool returns the identifier pool backing this TS.
func (ts *LabeledTS) Pool() *IDPool { return ts.pool }

// Clone deep-copies the TS: a fresh arena, a fresh id-index (no aliasing
// with ts's), and independently-owned adjacency lists. User data payloads
// are copied by reference (shallow), matching Go's usual copy semantics.
func (ts *LabeledTS) Clone() *LabeledTS {
	out := &LabeledTS{
		pool:    ts.pool,
		states:  make([]stateSlot, len(ts.states)),
		trans:   make([]transSlot, len(ts.trans)),
		idIndex: make(map[string]StateHandle, len(ts.idIndex)),
		anon:    make(map[StateHandle]struct{}, len(ts.anon)),
		initial: ts.initial,
	}
	for i, s := range ts.states {
		cp := s
		cp.outs = append([]TransHandle(nil), s.outs...)
		cp.ins = append([]TransHandle(nil), s.ins...)
		out.states[i] = cp
	}
	copy(out.trans, ts.trans)
	for k, v := range ts.idIndex {
		out.idIndex[k] = v
	}
	for k, v := range ts.anon {
		out.anon[k] = v
	}
	out.freeSt = append([]int32(nil), ts.freeSt...)
	out.freeTr = append([]int32(nil), ts.freeTr...)
	return out
}
