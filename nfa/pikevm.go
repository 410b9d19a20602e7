package nfa

import (
	"github.com/coregx/rebound/internal/conv"
	"github.com/coregx/rebound/internal/sparse"
)

// PikeVM executes an NFA by advancing every thread in lockstep, one input
// byte at a time.
//
// Threads are kept in priority order. When two threads reach the same state
// at the same position only the first (higher priority) survives, and when a
// thread matches, every lower-priority thread is dropped. This yields the
// same leftmost-first match, captures included, as a backtracking search
// over the same pattern, in O(states * input) time.
//
// Thread safety: a PikeVM is immutable. Mutable search memory lives in a
// PikeVMState, which must not be shared between goroutines.
type PikeVM struct {
	nfa *NFA
}

// PikeVMState holds mutable per-search state for PikeVM.
// Pool it (via sync.Pool) for concurrent use.
type PikeVMState struct {
	curr, next threadList

	// stack holds pending split branches during epsilon closure.
	stack []closureFrame
}

type threadList struct {
	set     *sparse.SparseSet
	threads []thread
}

func (l *threadList) clear() {
	l.set.Clear()
	l.threads = l.threads[:0]
}

// thread is a consuming or match state reached at the current position,
// together with the captures recorded on the way.
type thread struct {
	state    StateID
	captures cowCaptures
}

type closureFrame struct {
	state    StateID
	captures cowCaptures
}

// cowCaptures implements copy-on-write semantics for capture slots.
// Threads created by a split share slots until one of them records a
// position.
type cowCaptures struct {
	shared *sharedCaptures
}

type sharedCaptures struct {
	data []int
	refs int
}

func newCaptures(n int) cowCaptures {
	if n == 0 {
		return cowCaptures{}
	}
	data := make([]int, n)
	for i := range data {
		data[i] = -1
	}
	return cowCaptures{shared: &sharedCaptures{data: data, refs: 1}}
}

// clone increments ref count and returns a reference to the same data (no copy)
func (c cowCaptures) clone() cowCaptures {
	if c.shared == nil {
		return cowCaptures{}
	}
	c.shared.refs++
	return cowCaptures{shared: c.shared}
}

// release drops a reference held by a dead thread.
func (c cowCaptures) release() {
	if c.shared != nil && c.shared.refs > 0 {
		c.shared.refs--
	}
}

// update sets a slot, copying first when the data is shared. Slots beyond
// the tracked range are ignored.
func (c cowCaptures) update(slotIndex, value int) cowCaptures {
	if c.shared == nil || slotIndex < 0 || slotIndex >= len(c.shared.data) {
		return c
	}
	if c.shared.refs > 1 {
		c.shared.refs--
		data := make([]int, len(c.shared.data))
		copy(data, c.shared.data)
		data[slotIndex] = value
		return cowCaptures{shared: &sharedCaptures{data: data, refs: 1}}
	}
	c.shared.data[slotIndex] = value
	return c
}

// get returns the capture data (may be nil)
func (c cowCaptures) get() []int {
	if c.shared == nil {
		return nil
	}
	return c.shared.data
}

// NewPikeVM creates a new PikeVM for executing the given NFA
func NewPikeVM(nfa *NFA) *PikeVM {
	return &PikeVM{nfa: nfa}
}

// NFA returns the automaton being executed.
func (p *PikeVM) NFA() *NFA {
	return p.nfa
}

// NewState allocates search memory sized for this PikeVM's NFA.
func (p *PikeVM) NewState() *PikeVMState {
	st := &PikeVMState{}
	p.initState(st)
	return st
}

// initState sizes st for the NFA, reusing its memory when possible.
func (p *PikeVM) initState(st *PikeVMState) {
	n := conv.IntToUint32(p.nfa.States())
	for _, l := range []*threadList{&st.curr, &st.next} {
		if l.set == nil {
			l.set = sparse.NewSparseSet(n)
		} else if l.set.Capacity() != int(n) {
			l.set.Resize(n)
		}
		l.clear()
	}
	st.stack = st.stack[:0]
}

// IsMatch reports whether the NFA matches anywhere in input.
// It allocates a fresh state; use IsMatchWithState on hot paths.
func (p *PikeVM) IsMatch(input []byte) bool {
	return p.IsMatchWithState(p.NewState(), input)
}

// IsMatchWithState reports whether the NFA matches anywhere in input. It
// stops at the first thread that reaches the match state.
func (p *PikeVM) IsMatchWithState(st *PikeVMState, input []byte) bool {
	return p.search(st, input, 0, false, nil, true)
}

// Search finds the leftmost-first match at or after from and copies its
// capture slots into slots, which may be shorter than 2*CaptureCount or nil.
func (p *PikeVM) Search(input []byte, from int, slots []int) bool {
	return p.SearchWithState(p.NewState(), input, from, false, slots)
}

// SearchWithState is Search with caller-provided state. When anchored is
// true the match must start exactly at from.
func (p *PikeVM) SearchWithState(st *PikeVMState, input []byte, from int, anchored bool, slots []int) bool {
	return p.search(st, input, from, anchored, slots, false)
}

func (p *PikeVM) search(st *PikeVMState, input []byte, from int, anchored bool, slots []int, earliest bool) bool {
	if from < 0 || from > len(input) {
		return false
	}
	p.initState(st)

	start := p.nfa.startUnanchored
	if anchored {
		start = p.nfa.startAnchored
	}
	nslots := min(len(slots), 2*p.nfa.captureCount)

	curr, next := &st.curr, &st.next
	p.addThread(st, curr, start, input, from, newCaptures(nslots))

	matched := false
	for pos := from; len(curr.threads) > 0; pos++ {
		next.clear()
		for i, t := range curr.threads {
			s := &p.nfa.states[t.state]
			if s.kind == StateMatch {
				matched = true
				copy(slots, t.captures.get())
				if earliest {
					return true
				}
				// Everything after i has lower priority.
				for _, rest := range curr.threads[i+1:] {
					rest.captures.release()
				}
				break
			}
			if pos < len(input) {
				if target := s.Step(input[pos]); target != InvalidState {
					p.addThread(st, next, target, input, pos+1, t.captures)
					continue
				}
			}
			t.captures.release()
		}
		if pos >= len(input) {
			break
		}
		curr, next = next, curr
	}
	return matched
}

// addThread follows epsilon transitions from id at pos and appends every
// consuming or match state reached to list, in priority order. A state
// already in list stops the path.
func (p *PikeVM) addThread(st *PikeVMState, list *threadList, id StateID, input []byte, pos int, caps cowCaptures) {
	st.stack = append(st.stack[:0], closureFrame{state: id, captures: caps})
	for len(st.stack) > 0 {
		f := st.stack[len(st.stack)-1]
		st.stack = st.stack[:len(st.stack)-1]
		sid, caps := f.state, f.captures

		for {
			if !list.set.Insert(uint32(sid)) {
				caps.release()
				break
			}
			s := &p.nfa.states[sid]
			switch s.kind {
			case StateMatch, StateByteRange, StateSparse:
				list.threads = append(list.threads, thread{state: sid, captures: caps})

			case StateEpsilon:
				sid = s.next
				continue

			case StateSplit:
				st.stack = append(st.stack, closureFrame{state: s.right, captures: caps.clone()})
				sid = s.left
				continue

			case StateCapture:
				caps = caps.update(s.CaptureSlot(), pos)
				sid = s.next
				continue

			case StateLook:
				if s.look.Matches(input, pos) {
					sid = s.next
					continue
				}
				caps.release()

			default:
				caps.release()
			}
			break
		}
	}
}
