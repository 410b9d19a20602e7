package meta

import "github.com/coregx/rebound/simd"

// IsMatch reports whether the pattern matches anywhere in haystack.
//
// The error is a *prog.MatchError when a backtracking search exhausts its
// step budget; it is always nil for the other strategies.
func (e *Engine) IsMatch(haystack []byte) (bool, error) {
	if e.strategy == StrategyLiteral {
		e.stats.literal.Add(1)
		if e.ac != nil {
			return e.ac.IsMatch(haystack), nil
		}
		return simd.Memmem(haystack, e.literals[0]) >= 0, nil
	}

	st := e.pool.get()
	defer e.pool.put(st)

	switch e.strategy {
	case StrategyBacktrack:
		return e.searchBacktrack(st, haystack, 0, nil)
	case StrategyPikeVM:
		return e.searchPikeVM(st, haystack, 0, nil), nil
	default:
		return e.isMatchDFA(st, haystack, 0), nil
	}
}

// FindAt returns the leftmost-first match that starts at or after at, or nil.
// Bytes before at are look-behind context for anchors and word boundaries.
func (e *Engine) FindAt(haystack []byte, at int) (*Match, error) {
	if at < 0 || at > len(haystack) {
		return nil, nil
	}
	if e.strategy == StrategyLiteral {
		start, end, ok := e.findLiteral(haystack, at)
		if !ok {
			return nil, nil
		}
		return NewMatch(start, end, haystack), nil
	}

	st := e.pool.get()
	defer e.pool.put(st)

	slots := st.slots[:]
	ok, err := e.search(st, haystack, at, slots)
	if !ok || err != nil {
		return nil, err
	}
	return NewMatch(slots[0], slots[1], haystack), nil
}

// Find returns the leftmost-first match in haystack, or nil.
func (e *Engine) Find(haystack []byte) (*Match, error) {
	return e.FindAt(haystack, 0)
}

// FindSubmatchAt returns the capture slots of the leftmost-first match that
// starts at or after at, or nil when there is none. Slot 2i is the start and
// 2i+1 the end of group i; both are -1 for a group that did not participate.
func (e *Engine) FindSubmatchAt(haystack []byte, at int) ([]int, error) {
	if at < 0 || at > len(haystack) {
		return nil, nil
	}
	slots := make([]int, 2*e.info.CaptureCount)
	for i := range slots {
		slots[i] = -1
	}
	if e.strategy == StrategyLiteral {
		start, end, ok := e.findLiteral(haystack, at)
		if !ok {
			return nil, nil
		}
		slots[0], slots[1] = start, end
		return slots, nil
	}

	st := e.pool.get()
	defer e.pool.put(st)

	ok, err := e.search(st, haystack, at, slots)
	if !ok || err != nil {
		return nil, err
	}
	return slots, nil
}

// search dispatches a position or capture search to the strategy's engines.
func (e *Engine) search(st *searchState, haystack []byte, at int, slots []int) (bool, error) {
	switch e.strategy {
	case StrategyBacktrack:
		return e.searchBacktrack(st, haystack, at, slots)
	case StrategyPikeVM:
		return e.searchPikeVM(st, haystack, at, slots), nil
	}

	// The DFA rules out inputs without a match in one linear pass before the
	// capture engines run.
	if !e.isMatchDFA(st, haystack, at) {
		return false, nil
	}
	if st.backtracker.CanMemoize(len(haystack)) {
		return e.searchBacktrack(st, haystack, at, slots)
	}
	return e.searchPikeVM(st, haystack, at, slots), nil
}

// searchBacktrack runs the backtracking VM, skipping to prefilter candidates.
func (e *Engine) searchBacktrack(st *searchState, haystack []byte, at int, slots []int) (bool, error) {
	e.stats.backtrack.Add(1)

	var next func(int) int
	if t := st.tracker; t != nil {
		next = func(pos int) int { return t.Find(haystack, pos) }
	}
	ok, err := st.backtracker.SearchWith(haystack, at, slots, next)
	if err != nil {
		e.stats.stepLimit.Add(1)
		e.debug("backtrack step budget exhausted",
			"steps", st.backtracker.Steps(),
			"limit", e.btConfig.StepLimit,
			"haystack", len(haystack),
		)
		return false, err
	}
	if t := st.tracker; t != nil {
		if ok {
			t.ConfirmMatch()
		}
		if !t.IsActive() {
			e.stats.prefilterAbandoned.Add(1)
		}
	}
	return ok, nil
}

// searchPikeVM jumps to the first prefilter candidate and runs an
// unanchored PikeVM search from there. No match can start before it.
func (e *Engine) searchPikeVM(st *searchState, haystack []byte, at int, slots []int) bool {
	e.stats.pikevm.Add(1)
	if e.prefilter != nil {
		c := e.prefilter.Find(haystack, at)
		if c < 0 {
			return false
		}
		at = c
	}
	return e.pikevm.SearchWithState(st.pikevm, haystack, at, false, slots)
}

// isMatchDFA answers existence with the lazy DFA, falling back to the
// PikeVM when the DFA gives up.
func (e *Engine) isMatchDFA(st *searchState, haystack []byte, at int) bool {
	if e.prefilter != nil {
		c := e.prefilter.Find(haystack, at)
		if c < 0 {
			return false
		}
		at = c
	}

	e.stats.dfa.Add(1)
	ok, err := e.dfa.TryIsMatchAt(st.cache, haystack, at)
	if n := st.cache.ClearCount(); n > 0 {
		e.stats.dfaClears.Add(uint64(n))
		e.debug("dfa cache cleared", "clears", n, "states", st.cache.Size())
	}
	if err == nil {
		return ok
	}

	e.stats.dfaFallbacks.Add(1)
	e.debug("dfa gave up, falling back to pikevm", "err", err)
	e.stats.pikevm.Add(1)
	return e.pikevm.SearchWithState(st.pikevm, haystack, at, false, nil)
}

// findLiteral finds the leftmost literal occurrence at or after at. At that
// position the first literal in priority order wins, which is the
// leftmost-first choice among alternatives.
func (e *Engine) findLiteral(haystack []byte, at int) (start, end int, ok bool) {
	e.stats.literal.Add(1)
	if e.ac == nil {
		lit := e.literals[0]
		i := simd.Memmem(haystack[at:], lit)
		if i < 0 {
			return -1, -1, false
		}
		return at + i, at + i + len(lit), true
	}
	start, end = e.ac.Find(haystack, at)
	return start, end, start >= 0
}
