package core

import (
	"strings"
	"sync"
)

// StateID is an ordered, immutable sequence of attribute values. Two
// identifiers compare equal iff they have the same length and pairwise
// equal elements; ordering is lexicographic. StateID values are never
// mutated after creation — Append returns a new sequence.
type StateID struct {
	elems []AttrValue
	// canon caches the canonical string form used as the pool's interning
	// key; it is set when the pool interns the identifier, and
	// CanonicalString computes the form afresh while it is empty.
	canon string
}

// EmptyStateID is the distinguished zero-length identifier used for a TS's
// initial state.
func EmptyStateID() StateID { return StateID{} }

// NewStateID builds a StateID from a slice of attribute values, copying the
// slice so later caller mutation cannot affect the identifier.
func NewStateID(elems ...AttrValue) StateID {
	return StateID{elems: append([]AttrValue(nil), elems...)}
}

// Append returns a new StateID with v appended; it does not mutate id.
func (id StateID) Append(v AttrValue) StateID {
	next := make([]AttrValue, len(id.elems)+1)
	copy(next, id.elems)
	next[len(id.elems)] = v
	return StateID{elems: next}
}

// Len returns the number of elements in id.
func (id StateID) Len() int { return len(id.elems) }

// At returns the element at position i.
func (id StateID) At(i int) AttrValue { return id.elems[i] }

// Extract returns the underlying elements as a fresh slice (a copy).
func (id StateID) Extract() []AttrValue {
	return append([]AttrValue(nil), id.elems...)
}

// Equal reports whether id and o have the same length and pairwise-equal
// elements.
func (id StateID) Equal(o StateID) bool {
	if len(id.elems) != len(o.elems) {
		return false
	}
	for i := range id.elems {
		if !id.elems[i].Equal(o.elems[i]) {
			return false
		}
	}
	return true
}

// Compare totally orders id and o lexicographically.
func (id StateID) Compare(o StateID) int {
	n := len(id.elems)
	if len(o.elems) < n {
		n = len(o.elems)
	}
	for i := 0; i < n; i++ {
		if c := Compare(id.elems[i], o.elems[i]); c != 0 {
			return c
		}
	}
	return cmpInt64(int64(len(id.elems)), int64(len(o.elems)))
}

// CanonicalString returns the deterministic string form used for interning
// and for DOT labels.
func (id StateID) CanonicalString() string {
	if id.canon != "" {
		return id.canon
	}
	var b strings.Builder
	b.WriteByte('[')
	for i, e := range id.elems {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(e.CanonicalString())
	}
	b.WriteByte(']')
	return b.String()
}

// IDPool interns StateID sequences: within one pool, equal sequences map to
// the same handle (pointer identity), and the pool owns a distinguished
// initial identifier (the empty sequence).
type IDPool struct {
	mu      sync.Mutex
	entries map[string]*StateID
	initial *StateID
}

// NewIDPool returns a pool pre-seeded with the initial (empty) identifier.
func NewIDPool() *IDPool {
	p := &IDPool{entries: make(map[string]*StateID)}
	p.initial = p.intern(EmptyStateID())
	return p
}

// Initial returns the pool's distinguished initial identifier handle.
func (p *IDPool) Initial() *StateID { return p.initial }

// Intern returns a stable handle for id; equal sequences (per StateID.Equal)
// return the same pointer for the pool's lifetime.
func (p *IDPool) Intern(id StateID) *StateID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.intern(id)
}

// intern must be called with p.mu held.
func (p *IDPool) intern(id StateID) *StateID {
	key := id.CanonicalString()
	if existing, ok := p.entries[key]; ok {
		return existing
	}
	cp := id
	cp.canon = key
	p.entries[key] = &cp
	return &cp
}

// Size reports the number of distinct identifiers interned so far.
func (p *IDPool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// ActivityIndex assigns a stable, dense integer index to each distinct
// activity name observed, in first-seen order. It backs the Parikh
// specialization of state identity (spec.md §3.2).
type ActivityIndex struct {
	mu      sync.Mutex
	byName  map[string]int
	byIndex []string
}

// NewActivityIndex returns an empty activity index.
func NewActivityIndex() *ActivityIndex {
	return &ActivityIndex{byName: make(map[string]int)}
}

// IndexOf returns the dense index for name, assigning a fresh one if name
// has not been seen before.
func (a *ActivityIndex) IndexOf(name string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if i, ok := a.byName[name]; ok {
		return i
	}
	i := len(a.byIndex)
	a.byName[name] = i
	a.byIndex = append(a.byIndex, name)
	return i
}

// NameAt returns the activity name assigned to index i.
func (a *ActivityIndex) NameAt(i int) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.byIndex[i]
}

// Size reports the number of distinct activities indexed so far.
func (a *ActivityIndex) Size() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.byIndex)
}

// ParikhIDPool specializes IDPool: a Parikh identity is the commutative
// multiset of activities seen so far, so the element at position i of the
// underlying StateID is the occurrence count of the activity with that
// pool-wide index.
type ParikhIDPool struct {
	*IDPool
	Index *ActivityIndex
}

// NewParikhIDPool returns a Parikh-specialized pool sharing a fresh
// activity index.
func NewParikhIDPool() *ParikhIDPool {
	return &ParikhIDPool{IDPool: NewIDPool(), Index: NewActivityIndex()}
}

// WithActivity returns the StateID obtained by incrementing the occurrence
// count of activity in prior, widening the vector if activity's index is
// new, and interns the result.
func (p *ParikhIDPool) WithActivity(prior StateID, activity string) *StateID {
	idx := p.Index.IndexOf(activity)
	elems := prior.Extract()
	for len(elems) <= idx {
		elems = append(elems, Int64Val(0))
	}
	cur, _ := elems[idx].AsInt64()
	elems[idx] = Int64Val(cur + 1)
	return p.Intern(NewStateID(elems...))
}
