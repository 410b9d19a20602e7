package meta

import (
	"errors"

	"github.com/coregx/rebound/syntax"
)

// ErrNotLiteral rejects a forced StrategyLiteral for a pattern that is not
// a capture-free set of literals.
var ErrNotLiteral = errors.New("rebound: literal strategy needs a capture-free literal pattern")

// CompileError wraps a pattern Compile rejected. An invalid Config is
// reported as a bare *ConfigError instead.
type CompileError struct {
	Pattern string
	Err     error
}

func (e *CompileError) Error() string {
	// A ParseError quotes the offending text and its offset already.
	var pe *syntax.ParseError
	if errors.As(e.Err, &pe) {
		return "rebound: " + e.Err.Error()
	}
	return "rebound: compiling `" + e.Pattern + "`: " + e.Err.Error()
}

func (e *CompileError) Unwrap() error { return e.Err }
