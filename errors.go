package ucdp

import "fmt"

// The elaboration engine is fail-fast: every violation surfaces synchronously
// at the offending call as one of the error types below. Errors raised from
// module scope carry the module's hierarchical path (e.g. "top/u_sub/u_leaf")
// in their message.

// engineError tags all errors originating from the elaboration engine, so
// that build entry points can tell them apart from foreign panics.
type engineError interface {
	error
	engineError()
}

// A LockError reports mutation of a namespace, ledger or module after lock.
type LockError struct {
	Msg string
}

func (e *LockError) Error() string { return e.Msg }
func (e *LockError) engineError() {}

func lockErrf(format string, args ...interface{}) *LockError {
	return &LockError{Msg: fmt.Sprintf(format, args...)}
}

// A DuplicateError reports a name collision, naming both colliding objects.
type DuplicateError struct {
	Msg string
}

func (e *DuplicateError) Error() string { return e.Msg }
func (e *DuplicateError) engineError() {}

func duplicateErrf(format string, args ...interface{}) *DuplicateError {
	return &DuplicateError{Msg: fmt.Sprintf(format, args...)}
}

// An UnknownNameError reports a failed namespace lookup. Its message contains
// the full expandable listing of known identifiers plus ranked near-miss
// suggestions.
type UnknownNameError struct {
	Name string
	Msg  string
}

func (e *UnknownNameError) Error() string { return e.Msg }
func (e *UnknownNameError) engineError() {}

// A DirectionError reports an assignment violating read/write orientation,
// naming both sides.
type DirectionError struct {
	Msg string
}

func (e *DirectionError) Error() string { return e.Msg }
func (e *DirectionError) engineError() {}

func directionErrf(format string, args ...interface{}) *DirectionError {
	return &DirectionError{Msg: fmt.Sprintf(format, args...)}
}

// A MultiDriverError reports overlapping explicit drivers on the same bit
// range, naming both sources.
type MultiDriverError struct {
	Msg string
}

func (e *MultiDriverError) Error() string { return e.Msg }
func (e *MultiDriverError) engineError() {}

func multiDriverErrf(format string, args ...interface{}) *MultiDriverError {
	return &MultiDriverError{Msg: fmt.Sprintf(format, args...)}
}

// A TypeError reports malformed type construction, an out-of-range default or
// an illegal cast.
type TypeError struct {
	Msg string
}

func (e *TypeError) Error() string { return e.Msg }
func (e *TypeError) engineError() {}

func typeErrf(format string, args ...interface{}) *TypeError {
	return &TypeError{Msg: fmt.Sprintf(format, args...)}
}

// A ParseError reports malformed expression text or an unknown builtin.
type ParseError struct {
	Input string
	Pos   int
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("in %q at pos %d: %s", e.Input, e.Pos+1, e.Msg)
}
func (e *ParseError) engineError() {}

// A RouteError reports an unresolvable or ambiguous route path, naming the
// module and the path.
type RouteError struct {
	Msg string
}

func (e *RouteError) Error() string { return e.Msg }
func (e *RouteError) engineError() {}

func routeErrf(format string, args ...interface{}) *RouteError {
	return &RouteError{Msg: fmt.Sprintf(format, args...)}
}
