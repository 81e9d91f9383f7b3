package core

import "iter"

// simpleEvent is a plain in-memory Event.
type simpleEvent struct {
	activity AttrValue
	attrs    map[string]AttrValue
}

func (e simpleEvent) Activity() AttrValue { return e.activity }

func (e simpleEvent) Attribute(name string) (AttrValue, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

// NewEvent builds an Event with the given activity name and optional
// attributes.
func NewEvent(activity string, attrs map[string]AttrValue) Event {
	return simpleEvent{activity: CStrVal(activity), attrs: attrs}
}

// simpleTrace is a plain in-memory Trace.
type simpleTrace struct {
	events []Event
}

func (t simpleTrace) Events() iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for _, e := range t.events {
			if !yield(e) {
				return
			}
		}
	}
}

// NewTrace builds a Trace from a list of activity names, each becoming an
// Event with no attributes. It is a convenience constructor for tests.
func NewTrace(activities ...string) Trace {
	events := make([]Event, len(activities))
	for i, a := range activities {
		events[i] = NewEvent(a, nil)
	}
	return simpleTrace{events: events}
}

// InMemoryEventLog is a reference EventLog implementation backed by a
// slice of traces held entirely in memory. It exists so the pipeline is
// exercisable without an external log collaborator — it is not the "real"
// storage backend spec.md §1 treats as out of scope, and satisfies the same
// narrow interface a SQL-backed log would.
type InMemoryEventLog struct {
	traces []Trace
}

// NewInMemoryEventLog returns a log over the given traces, in order.
func NewInMemoryEventLog(traces ...Trace) *InMemoryEventLog {
	return &InMemoryEventLog{traces: traces}
}

func (l *InMemoryEventLog) Traces() iter.Seq[Trace] {
	return func(yield func(Trace) bool) {
		for _, tr := range l.traces {
			if !yield(tr) {
				return
			}
		}
	}
}

// Reset is a no-op: an in-memory log never needs rewinding.
func (l *InMemoryEventLog) Reset() error { return nil }
