package core

import (
	"errors"
	"fmt"
)

// Code identifies the class of failure reported by an ldopa operation.
type Code byte

const (
	// CodeInvalidArgument marks a precondition violated by the caller, such
	// as removing an unknown state or passing a threshold outside [0, 1].
	CodeInvalidArgument Code = iota + 1
	// CodeNotFound marks a lookup that the caller required to succeed.
	CodeNotFound
	// CodeNotOpen marks an operation against an uninitialized or closed
	// event-log collaborator.
	CodeNotOpen
	// CodeIOFailure marks an I/O error from the DOT emitter or a log reader.
	CodeIOFailure
	// CodeSynthesisInfeasible marks a region synthesis that could not find
	// a consistent assignment for some label.
	CodeSynthesisInfeasible
	// CodeNotAWorkflowNet marks a failed workflow-net postcondition.
	CodeNotAWorkflowNet
	// CodeCanceled marks an operation aborted by its progress callback.
	CodeCanceled
)

func (c Code) String() string {
	switch c {
	case CodeInvalidArgument:
		return "InvalidArgument"
	case CodeNotFound:
		return "NotFound"
	case CodeNotOpen:
		return "NotOpen"
	case CodeIOFailure:
		return "IOFailure"
	case CodeSynthesisInfeasible:
		return "SynthesisInfeasible"
	case CodeNotAWorkflowNet:
		return "NotAWorkflowNet"
	case CodeCanceled:
		return "Canceled"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type returned by this package. It carries a
// Code so callers can branch on failure class without string matching, and
// an optional wrapped cause for context.
type Error struct {
	Code Code
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError constructs an *Error with the given code and message.
func NewError(code Code, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

// Wrapf constructs an *Error with the given code, wrapping cause with a
// formatted message.
func Wrapf(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...), Err: cause}
}

// Is reports whether err is an *Error carrying the given code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// ErrStaleHandle is the panic value raised when a caller presents a state or
// transition handle whose generation no longer matches the slot's current
// occupant — the handle refers to a removed element.
var ErrStaleHandle = NewError(CodeInvalidArgument, "stale handle")

// ErrIteratorInvalidated is returned (as a panic value, matching the
// iterator-validity contract in spec.md §4.D) when an iterator observes a
// structural removal that happened after it was created.
var ErrIteratorInvalidated = NewError(CodeInvalidArgument, "iterator invalidated by removal during iteration")
