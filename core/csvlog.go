package core

import (
	"encoding/csv"
	"fmt"
	"io"
	"iter"
)

// CSVEventLog is a reference EventLog implementation reading a simple CSV
// schema: a header row `trace_id,activity[,attr_name]*` followed by one
// data row per event. It is a thin adapter over the narrow EventLog
// contract (spec.md §6), not a general log-ingestion subsystem — parsing
// logic beyond this one fixed schema is explicitly out of scope (spec.md
// §9's non-goals). encoding/csv is used directly: no CSV parsing library
// appears anywhere in the retrieved example pack (see DESIGN.md).
type CSVEventLog struct {
	opener func() (io.ReadCloser, error)
	traces []Trace
}

// NewCSVEventLog returns a log that (re-)reads its CSV data by invoking
// opener, which Reset also calls to support a second pass.
func NewCSVEventLog(opener func() (io.ReadCloser, error)) (*CSVEventLog, error) {
	l := &CSVEventLog{opener: opener}
	if err := l.Reset(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *CSVEventLog) Reset() error {
	rc, err := l.opener()
	if err != nil {
		return Wrapf(CodeIOFailure, err, "open CSV event log")
	}
	defer rc.Close()

	r := csv.NewReader(rc)
	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			l.traces = nil
			return nil
		}
		return Wrapf(CodeIOFailure, err, "read CSV header")
	}
	if len(header) < 2 || header[0] != "trace_id" || header[1] != "activity" {
		return NewError(CodeInvalidArgument, "CSV header must start with trace_id,activity")
	}
	attrNames := header[2:]

	order := make([]string, 0)
	grouped := make(map[string][]Event)
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Wrapf(CodeIOFailure, err, "read CSV row")
		}
		if len(row) < 2 {
			return NewError(CodeInvalidArgument, fmt.Sprintf("malformed CSV row: %v", row))
		}
		traceID, activity := row[0], row[1]
		attrs := make(map[string]AttrValue, len(attrNames))
		for i, name := range attrNames {
			if 2+i < len(row) {
				attrs[name] = OwnedStringVal(row[2+i])
			}
		}
		if _, seen := grouped[traceID]; !seen {
			order = append(order, traceID)
		}
		grouped[traceID] = append(grouped[traceID], NewEvent(activity, attrs))
	}

	traces := make([]Trace, 0, len(order))
	for _, id := range order {
		traces = append(traces, simpleTrace{events: grouped[id]})
	}
	l.traces = traces
	return nil
}

func (l *CSVEventLog) Traces() iter.Seq[Trace] {
	return func(yield func(Trace) bool) {
		for _, tr := range l.traces {
			if !yield(tr) {
				return
			}
		}
	}
}
