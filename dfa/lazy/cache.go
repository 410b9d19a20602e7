package lazy

import (
	"github.com/coregx/rebound/internal/conv"
	"github.com/coregx/rebound/internal/sparse"
	"github.com/coregx/rebound/nfa"
)

// Cache holds the DFA states and transitions built during searches.
//
// A DFA is immutable; all mutable memory lives here. A Cache must not be
// used by more than one goroutine at a time. Pool caches for concurrent use.
//
// Memory management:
//   - States are never evicted individually (no LRU overhead)
//   - When the cache is full it is cleared entirely and search continues
//   - After too many clears in one search, the search fails with ErrCacheFull
type Cache struct {
	states []*State
	index  map[string]StateID

	// trans is the transition table, stride entries per state.
	trans  []StateID
	stride int

	starts StartTable

	maxStates  uint32
	clearCount int

	// Statistics for cache performance tuning
	hits   uint64
	misses uint64

	// Scratch space for determinization.
	set   *sparse.SparseSet
	stack []nfa.StateID
	buf   []nfa.StateID
	key   []byte
}

func newCache(d *DFA) *Cache {
	return &Cache{
		index:     make(map[string]StateID),
		stride:    d.stride,
		starts:    newStartTable(),
		maxStates: d.config.MaxStates,
		set:       sparse.NewSparseSet(conv.IntToUint32(d.nfa.States())),
	}
}

// State returns the state with the given ID in the current generation.
func (c *Cache) State(id StateID) *State {
	return c.states[id]
}

// Size returns the current number of states in the cache
func (c *Cache) Size() int {
	return len(c.states)
}

// Stats returns cache hit/miss statistics.
//
// Hit rate = hits / (hits + misses)
func (c *Cache) Stats() (hits, misses uint64, hitRate float64) {
	hits = c.hits
	misses = c.misses
	total := hits + misses
	if total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	return hits, misses, hitRate
}

// ClearCount returns how many times the cache was cleared during the last
// search.
func (c *Cache) ClearCount() int {
	return c.clearCount
}

// Reset drops every state and the statistics.
func (c *Cache) Reset() {
	c.clear()
	c.clearCount = 0
	c.hits = 0
	c.misses = 0
}

// clear drops every state but keeps allocated memory. All StateIDs handed
// out before are stale afterwards.
func (c *Cache) clear() {
	for i := range c.states {
		c.states[i] = nil
	}
	c.states = c.states[:0]
	clear(c.index)
	c.trans = c.trans[:0]
	c.starts.reset()
}

// lookup returns the ID of the state with key c.key, if present.
func (c *Cache) lookup() (StateID, bool) {
	id, ok := c.index[string(c.key)]
	if ok {
		c.hits++
	}
	return id, ok
}

// full reports whether another state would exceed the limit.
func (c *Cache) full() bool {
	return conv.IntToUint32(len(c.states)) >= c.maxStates
}

// insert adds s under key c.key and assigns its ID. The caller checks
// capacity first.
func (c *Cache) insert(s *State) StateID {
	id := StateID(conv.IntToUint32(len(c.states)))
	s.id = id
	c.states = append(c.states, s)
	c.index[string(c.key)] = id
	for i := 0; i < c.stride; i++ {
		c.trans = append(c.trans, InvalidState)
	}
	c.misses++
	return id
}
