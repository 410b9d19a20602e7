package lazy

import (
	"slices"

	"github.com/coregx/rebound/nfa"
)

// explore adds to c.set every NFA state reachable from id without consuming
// input. Look states are always added; they are followed only when resolve
// is set and the assertion holds for (prev, next).
func (d *DFA) explore(c *Cache, id nfa.StateID, resolve bool, prev StartKind, next int) {
	c.stack = append(c.stack[:0], id)
	for len(c.stack) > 0 {
		sid := c.stack[len(c.stack)-1]
		c.stack = c.stack[:len(c.stack)-1]
		if sid == nfa.InvalidState || !c.set.Insert(uint32(sid)) {
			continue
		}
		s := d.nfa.State(sid)
		switch s.Kind() {
		case nfa.StateEpsilon:
			c.stack = append(c.stack, s.Epsilon())
		case nfa.StateCapture:
			_, _, target := s.Capture()
			c.stack = append(c.stack, target)
		case nfa.StateSplit:
			left, right := s.Split()
			c.stack = append(c.stack, right, left)
		case nfa.StateLook:
			look, target := s.Look()
			if resolve && lookHolds(look, prev, next) {
				c.stack = append(c.stack, target)
			}
		}
	}
}

// collect copies the states of c.set that a DFA state must remember into
// c.buf, sorted. Pure epsilon states are implied by what they lead to.
func (d *DFA) collect(c *Cache) []nfa.StateID {
	c.buf = c.buf[:0]
	for _, v := range c.set.Values() {
		id := nfa.StateID(v)
		switch d.nfa.State(id).Kind() {
		case nfa.StateByteRange, nfa.StateSparse, nfa.StateMatch, nfa.StateLook:
			c.buf = append(c.buf, id)
		}
	}
	slices.Sort(c.buf)
	return c.buf
}

// addState interns the state (kind, matchBefore, set), clearing the cache
// when it is full. keep, if valid, is re-interned after a clear and its new
// ID returned as keepID.
func (d *DFA) addState(c *Cache, kind StartKind, matchBefore bool, set []nfa.StateID, keep *State) (id, keepID StateID, err error) {
	if len(set) > d.config.DeterminizationLimit {
		return InvalidState, InvalidState, ErrStateLimitExceeded
	}
	c.key = appendKey(c.key[:0], kind, matchBefore, set)
	if id, ok := c.lookup(); ok {
		return id, idOf(keep), nil
	}

	if c.full() {
		if c.clearCount >= d.config.MaxCacheClears {
			return InvalidState, InvalidState, ErrCacheFull
		}
		c.clear()
		c.clearCount++
		if keep != nil {
			c.key = appendKey(c.key[:0], keep.kind, keep.matchBefore, keep.nfaStates)
			keep.eoi = 0
			c.insert(keep)
			c.key = appendKey(c.key[:0], kind, matchBefore, set)
			if id, ok := c.lookup(); ok {
				return id, keep.id, nil
			}
		}
	}

	s := &State{
		nfaStates:   slices.Clone(set),
		kind:        kind,
		matchBefore: matchBefore,
	}
	return c.insert(s), idOf(keep), nil
}

func idOf(s *State) StateID {
	if s == nil {
		return InvalidState
	}
	return s.id
}

// startState returns the start state for a search whose first position has
// context kind.
func (d *DFA) startState(c *Cache, kind StartKind) (StateID, error) {
	kind = d.norm.normalize(kind)
	if id := c.starts.Get(kind); id != InvalidState {
		return id, nil
	}
	c.set.Clear()
	d.explore(c, d.nfa.StartUnanchored(), false, kind, eoi)
	id, _, err := d.addState(c, kind, false, d.collect(c), nil)
	if err != nil {
		return InvalidState, err
	}
	c.starts.Set(kind, id)
	return id, nil
}

// resolve computes in c.set the closure of s with every assertion decided
// for the next byte, and reports whether it contains a match state.
func (d *DFA) resolve(c *Cache, s *State, next int) bool {
	c.set.Clear()
	for _, id := range s.nfaStates {
		d.explore(c, id, true, s.kind, next)
	}
	for _, v := range c.set.Values() {
		if d.nfa.IsMatch(nfa.StateID(v)) {
			return true
		}
	}
	return false
}

// computeTransition determinizes the transition of from on byte b and
// records it. It returns the target and the possibly renumbered from.
func (d *DFA) computeTransition(c *Cache, from StateID, b byte) (to, newFrom StateID, err error) {
	s := c.states[from]
	matched := d.resolve(c, s, int(b))

	c.buf = c.buf[:0]
	for _, v := range c.set.Values() {
		if target := d.nfa.State(nfa.StateID(v)).Step(b); target != nfa.InvalidState {
			c.buf = append(c.buf, target)
		}
	}
	c.set.Clear()
	for _, id := range c.buf {
		d.explore(c, id, false, 0, eoi)
	}

	kind := d.norm.normalize(kindOf(b))
	to, newFrom, err = d.addState(c, kind, matched, d.collect(c), s)
	if err != nil {
		return InvalidState, InvalidState, err
	}
	c.trans[int(newFrom)*c.stride+int(d.classes.Get(b))] = to
	return to, newFrom, nil
}

// matchesAtEOI reports whether s matches at the end of input.
func (d *DFA) matchesAtEOI(c *Cache, s *State) bool {
	if s.eoi == 0 {
		s.eoi = 1
		if d.resolve(c, s, eoi) {
			s.eoi = 2
		}
	}
	return s.eoi == 2
}
