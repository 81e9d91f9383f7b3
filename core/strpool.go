package core

import "sync"

// StringPool interns strings and returns a stable borrow: equal inputs
// yield pointer-identical results for as long as the pool lives. This is a
// plain mutex-guarded map rather than an LRU cache — eviction would break
// the "borrow outlives the pool" guarantee spec.md §3.2/§6 requires (see
// DESIGN.md for why an LRU library was rejected here).
type StringPool struct {
	mu      sync.Mutex
	entries map[string]*string
}

// NewStringPool returns an empty pool.
func NewStringPool() *StringPool {
	return &StringPool{entries: make(map[string]*string)}
}

// Intern returns a stable *string for s; repeated calls with an equal s
// return the same pointer.
func (p *StringPool) Intern(s string) *string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if existing, ok := p.entries[s]; ok {
		return existing
	}
	cp := s
	p.entries[s] = &cp
	return &cp
}

// Size reports the number of distinct strings currently interned.
func (p *StringPool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}
