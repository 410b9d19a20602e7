// Package nfa provides a byte-oriented Thompson NFA and a PikeVM that
// executes it.
//
// The NFA is compiled from a tree validated by syntax.Analyze. Runes are
// lowered to UTF-8 byte sequences, anchors to Look states, and groups to
// Capture states. The PikeVM simulates all threads in lockstep and reports
// leftmost-first matches with capture positions in O(states * input) time.
package nfa

import (
	"errors"
	"strconv"
)

var (
	// ErrUnsupported is returned for constructs an automaton cannot
	// express. Backreferences are the only such construct.
	ErrUnsupported = errors.New("nfa: backreferences need a backtracker")

	// ErrTooComplex is returned when compilation passes
	// CompilerConfig.MaxStates.
	ErrTooComplex = errors.New("nfa: too many states")

	// ErrCompilation is returned for a syntax node the compiler does not know.
	ErrCompilation = errors.New("nfa: unknown syntax node")
)

// CompileError is returned by Compile. It wraps one of the sentinels above
// or a *BuildError.
type CompileError struct {
	Pattern string
	Err     error
}

func (e *CompileError) Error() string {
	if e.Pattern == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + " (pattern " + strconv.Quote(e.Pattern) + ")"
}

func (e *CompileError) Unwrap() error { return e.Err }

// BuildError reports a Builder whose states do not form a valid NFA.
// State is InvalidState when the problem is not tied to one state.
type BuildError struct {
	State  StateID
	Reason string
}

func (e *BuildError) Error() string {
	if e.State == InvalidState {
		return "nfa: " + e.Reason
	}
	return "nfa: state " + strconv.FormatUint(uint64(e.State), 10) + ": " + e.Reason
}
