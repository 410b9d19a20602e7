package meta

import (
	"sync"

	"github.com/coregx/rebound/dfa/lazy"
	"github.com/coregx/rebound/nfa"
	"github.com/coregx/rebound/prefilter"
	"github.com/coregx/rebound/prog"
)

// searchState holds per-search mutable state for thread-safe concurrent
// searches. It is obtained from the engine's pool, used by one goroutine
// for one call, and returned.
type searchState struct {
	// backtracker owns the frame stack, visited bitset and slot scratch.
	backtracker *prog.Backtracker

	// pikevm is nil when the pattern has no NFA (backreferences).
	pikevm *nfa.PikeVMState

	// cache is nil unless the engine has a lazy DFA.
	cache *lazy.Cache

	// tracker is nil unless the engine has a prefilter.
	tracker *prefilter.Tracker

	// slots receives group 0 for position-only searches.
	slots [2]int
}

// reset prepares the state for reuse. The DFA cache keeps its states
// across searches; it is bounded by its own configuration.
func (s *searchState) reset() {
	if s.tracker != nil {
		s.tracker.Reset()
	}
	s.slots = [2]int{-1, -1}
}

// searchStatePool manages a pool of searchState instances for thread-safe reuse.
// This follows the stdlib regexp pattern of using sync.Pool for concurrent safety.
type searchStatePool struct {
	pool sync.Pool
}

func newSearchStatePool(e *Engine) *searchStatePool {
	p := &searchStatePool{}
	p.pool.New = func() any {
		st := &searchState{
			backtracker: prog.NewBacktracker(e.prog, e.btConfig),
		}
		if e.pikevm != nil {
			st.pikevm = e.pikevm.NewState()
		}
		if e.dfa != nil {
			st.cache = e.dfa.NewCache()
		}
		if e.prefilter != nil {
			st.tracker = prefilter.NewTracker(e.prefilter)
		}
		st.reset()
		return st
	}
	return p
}

func (p *searchStatePool) get() *searchState {
	return p.pool.Get().(*searchState)
}

func (p *searchStatePool) put(st *searchState) {
	if st == nil {
		return
	}
	st.reset()
	p.pool.Put(st)
}
