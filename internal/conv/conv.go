// Package conv narrows int sizes and indices to the uint32 IDs used by the
// automata.
package conv

import "math"

// IntToUint32 panics when n does not fit. Compile-time limits keep every
// automaton far below 2^32 states, so a failure here is a bug.
func IntToUint32(n int) uint32 {
	if n < 0 || uint64(n) > math.MaxUint32 {
		panic("conv: int out of uint32 range")
	}
	return uint32(n)
}
