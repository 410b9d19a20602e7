package prog

import (
	"errors"
	"fmt"
)

// ErrResourceExhausted is the kind of MatchError returned when a search runs
// out of its step budget.
var ErrResourceExhausted = errors.New("resource exhausted")

// MatchError reports a search that gave up before reaching a verdict.
type MatchError struct {
	// Kind is ErrResourceExhausted.
	Kind error

	// Steps is the number of instructions executed before giving up.
	Steps int

	// Limit is the configured step budget.
	Limit int
}

// Error implements the error interface.
func (e *MatchError) Error() string {
	return fmt.Sprintf("match aborted after %d steps (limit %d): %v", e.Steps, e.Limit, e.Kind)
}

// Unwrap returns the error kind so errors.Is(err, ErrResourceExhausted) works.
func (e *MatchError) Unwrap() error {
	return e.Kind
}
