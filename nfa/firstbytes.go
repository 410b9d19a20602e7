package nfa

// FirstByteSet is the set of bytes that can begin a non-empty match.
type FirstByteSet struct {
	bytes [256]bool
	count int
	// complete is false when the pattern can match the empty string, in
	// which case no byte can be ruled out.
	complete bool
}

// Contains returns true if b can be the first byte of a match.
func (f *FirstByteSet) Contains(b byte) bool {
	return f.bytes[b]
}

// Count returns the number of possible first bytes.
func (f *FirstByteSet) Count() int {
	return f.count
}

// IsComplete returns true if every match starts with a byte in the set.
func (f *FirstByteSet) IsComplete() bool {
	return f.complete
}

// IsUseful reports whether the set can reject start positions.
func (f *FirstByteSet) IsUseful() bool {
	return f.complete && f.count > 0 && f.count < 256
}

// Bytes returns the members of the set in increasing order.
func (f *FirstByteSet) Bytes() []byte {
	out := make([]byte, 0, f.count)
	for b, ok := range f.bytes {
		if ok {
			out = append(out, byte(b))
		}
	}
	return out
}

// Next returns the first position at or after from whose byte is in the
// set, or -1.
func (f *FirstByteSet) Next(input []byte, from int) int {
	for i := max(from, 0); i < len(input); i++ {
		if f.bytes[input[i]] {
			return i
		}
	}
	return -1
}

// FirstBytes collects the bytes consumed by the states reachable from the
// anchored start without consuming input. Look-around assertions are treated
// as satisfied, so the result over-approximates.
func FirstBytes(n *NFA) *FirstByteSet {
	f := &FirstByteSet{complete: true}
	seen := make([]bool, len(n.states))
	stack := []StateID{n.startAnchored}
	add := func(lo, hi byte) {
		for b := int(lo); b <= int(hi); b++ {
			if !f.bytes[b] {
				f.bytes[b] = true
				f.count++
			}
		}
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == InvalidState || seen[id] {
			continue
		}
		seen[id] = true
		s := &n.states[id]
		switch s.kind {
		case StateMatch:
			f.complete = false
		case StateByteRange:
			add(s.lo, s.hi)
		case StateSparse:
			for _, t := range s.transitions {
				add(t.Lo, t.Hi)
			}
		case StateSplit:
			stack = append(stack, s.right, s.left)
		case StateEpsilon, StateCapture, StateLook:
			stack = append(stack, s.next)
		}
	}
	return f
}
