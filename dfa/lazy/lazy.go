// Package lazy implements a lazy DFA for existence queries.
//
// The DFA is built from a Thompson NFA one transition at a time, during
// search, and cached. Each DFA state is a set of NFA states plus the
// look-behind context of its position (start of text, after a newline,
// after a word byte, or other). Assertions such as $, \b and the rune-start
// check of unanchored searches also depend on the next byte, so they are
// decided when the outgoing transition for that byte is computed. A match is
// therefore reported one byte late, by the transition that leaves the
// matching position, or by the end-of-input check.
//
// Search time is O(n) once the states it needs are cached. When the cache
// fills up it is cleared and rebuilt; after Config.MaxCacheClears clears in
// one search the search fails with ErrCacheFull and the caller should run
// the PikeVM instead.
//
// Example usage:
//
//	d, err := lazy.New(n, lazy.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	cache := d.NewCache()
//	ok, err := d.TryIsMatch(cache, []byte("test foo123 end"))
package lazy

import (
	"github.com/coregx/rebound/nfa"
)

// DFA is a lazy DFA over an NFA.
//
// Thread safety: a DFA is immutable. All mutable memory lives in a Cache,
// which is owned by one search at a time.
type DFA struct {
	nfa     *nfa.NFA
	config  Config
	classes *nfa.ByteClasses
	norm    normalizer
	pikevm  *nfa.PikeVM

	// stride is the number of transitions per state, one per byte class.
	stride int
}

// New creates a lazy DFA for n.
func New(n *nfa.NFA, config Config) (*DFA, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	classes := n.ByteClasses()
	return &DFA{
		nfa:     n,
		config:  config,
		classes: classes,
		norm:    newNormalizer(n.LookSet()),
		pikevm:  nfa.NewPikeVM(n),
		stride:  classes.AlphabetLen(),
	}, nil
}

// NFA returns the underlying automaton.
func (d *DFA) NFA() *nfa.NFA {
	return d.nfa
}

// NewCache allocates a cache sized for this DFA.
func (d *DFA) NewCache() *Cache {
	return newCache(d)
}

// IsMatch reports whether the pattern matches anywhere in input. It falls
// back to the PikeVM when the DFA gives up.
func (d *DFA) IsMatch(cache *Cache, input []byte) bool {
	ok, err := d.TryIsMatchAt(cache, input, 0)
	if err != nil {
		return d.pikevm.IsMatch(input)
	}
	return ok
}

// TryIsMatch reports whether the pattern matches anywhere in input, or fails
// with ErrCacheFull or ErrStateLimitExceeded.
func (d *DFA) TryIsMatch(cache *Cache, input []byte) (bool, error) {
	return d.TryIsMatchAt(cache, input, 0)
}

// TryIsMatchAt is TryIsMatch for matches starting at or after from. Bytes
// before from still provide look-behind context.
func (d *DFA) TryIsMatchAt(cache *Cache, input []byte, from int) (bool, error) {
	if from < 0 || from > len(input) {
		return false, nil
	}
	cache.clearCount = 0

	sid, err := d.startState(cache, kindAt(input, from))
	if err != nil {
		return false, err
	}
	for pos := from; pos < len(input); pos++ {
		b := input[pos]
		next := cache.trans[int(sid)*cache.stride+int(d.classes.Get(b))]
		if next == InvalidState {
			next, _, err = d.computeTransition(cache, sid, b)
			if err != nil {
				return false, err
			}
		}
		s := cache.states[next]
		if s.matchBefore {
			return true, nil
		}
		if s.IsDead() {
			return false, nil
		}
		sid = next
	}
	return d.matchesAtEOI(cache, cache.states[sid]), nil
}
