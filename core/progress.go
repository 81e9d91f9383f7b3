package core

import (
	"github.com/benbjohnson/clock"
)

// ProgressSignal is returned by a ProgressFunc to indicate whether the
// calling operation should continue or abort.
type ProgressSignal int

const (
	// Continue lets the operation proceed.
	Continue ProgressSignal = iota
	// Cancel requests the operation abort as soon as it can do so safely.
	Cancel
)

// ProgressFunc is invoked periodically by long-running operations (the
// builder, the condenser, the rebuilder, the region synthesizer) with a
// percentage in [0, 100]. It is a function value, not a stored interface
// pointer, per spec.md §9.
type ProgressFunc func(percent int) ProgressSignal

// noopProgress never cancels; it is the default when a caller passes nil.
func noopProgress(int) ProgressSignal { return Continue }

func orNoop(fn ProgressFunc) ProgressFunc {
	if fn == nil {
		return noopProgress
	}
	return fn
}

// ElapsedTimer measures wall-clock duration for a long operation, reporting
// milliseconds. The underlying clock is injectable so tests can avoid
// sleeping.
type ElapsedTimer struct {
	clock clock.Clock
	start int64
}

// NewElapsedTimer starts a timer using the real wall clock.
func NewElapsedTimer() *ElapsedTimer {
	return NewElapsedTimerWithClock(clock.New())
}

// NewElapsedTimerWithClock starts a timer using the given clock, letting
// tests substitute clock.NewMock().
func NewElapsedTimerWithClock(c clock.Clock) *ElapsedTimer {
	return &ElapsedTimer{clock: c, start: c.Now().UnixMilli()}
}

// ElapsedMS returns the number of milliseconds elapsed since the timer was
// created.
func (t *ElapsedTimer) ElapsedMS() int64 {
	return t.clock.Now().UnixMilli() - t.start
}
