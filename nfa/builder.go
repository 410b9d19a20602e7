package nfa

import (
	"fmt"
	"slices"
)

// Builder appends states one at a time and hands out their IDs. Forward
// references are left as InvalidState and fixed up with Patch and PatchSplit.
type Builder struct {
	states     []State
	anchored   StateID
	unanchored StateID
	looks      LookSet
	classes    *ByteClassSet
}

// NewBuilder returns an empty Builder with room for sizeHint states.
func NewBuilder(sizeHint int) *Builder {
	return &Builder{
		states:     make([]State, 0, max(sizeHint, 4)),
		anchored:   InvalidState,
		unanchored: InvalidState,
		classes:    NewByteClassSet(),
	}
}

func (b *Builder) push(s State) StateID {
	s.id = StateID(len(b.states))
	b.states = append(b.states, s)
	return s.id
}

// AddMatch appends an accepting state.
func (b *Builder) AddMatch() StateID { return b.push(State{kind: StateMatch}) }

// AddFail appends a state with no way out.
func (b *Builder) AddFail() StateID { return b.push(State{kind: StateFail}) }

// AddEpsilon appends a state that moves to next without reading input.
func (b *Builder) AddEpsilon(next StateID) StateID {
	return b.push(State{kind: StateEpsilon, next: next})
}

// AddByteRange appends a state reading one byte in [lo, hi].
func (b *Builder) AddByteRange(lo, hi byte, next StateID) StateID {
	b.classes.SetRange(lo, hi)
	return b.push(State{kind: StateByteRange, lo: lo, hi: hi, next: next})
}

// AddSparse appends a state with one target per byte range. The ranges
// must be disjoint; they are copied and sorted.
func (b *Builder) AddSparse(transitions []Transition) StateID {
	trans := slices.Clone(transitions)
	slices.SortFunc(trans, func(x, y Transition) int { return int(x.Lo) - int(y.Lo) })
	for _, t := range trans {
		b.classes.SetRange(t.Lo, t.Hi)
	}
	return b.push(State{kind: StateSparse, transitions: trans})
}

// AddSplit appends a fork. The thread taking left outranks the one taking right.
func (b *Builder) AddSplit(left, right StateID) StateID {
	return b.push(State{kind: StateSplit, left: left, right: right})
}

// AddCapture appends the opening or closing boundary of a group.
func (b *Builder) AddCapture(group uint32, open bool, next StateID) StateID {
	return b.push(State{kind: StateCapture, captureIndex: group, captureStart: open, next: next})
}

// AddLook appends a zero-width assertion. The bytes it inspects get byte
// classes of their own so the lazy DFA can decide it from the class alone.
func (b *Builder) AddLook(look Look, next StateID) StateID {
	b.looks = b.looks.Insert(look)
	switch look {
	case LookStartLine, LookEndLine:
		b.classes.SetByte('\n')
	case LookWordBoundary, LookNotWordBoundary:
		for _, r := range [...][2]byte{{'0', '9'}, {'A', 'Z'}, {'_', '_'}, {'a', 'z'}} {
			b.classes.SetRange(r[0], r[1])
		}
	case LookRuneStart:
		b.classes.SetRange(0x80, 0xBF)
	}
	return b.push(State{kind: StateLook, look: look, next: next})
}

func (b *Builder) at(id StateID) (*State, error) {
	if int(id) >= len(b.states) {
		return nil, &BuildError{State: id, Reason: "no such state"}
	}
	return &b.states[id], nil
}

// Patch points the single outgoing edge of id at target. Only ByteRange,
// Epsilon, Capture and Look states have one.
func (b *Builder) Patch(id, target StateID) error {
	s, err := b.at(id)
	if err != nil {
		return err
	}
	switch s.kind {
	case StateByteRange, StateEpsilon, StateCapture, StateLook:
		s.next = target
		return nil
	}
	return &BuildError{State: id, Reason: fmt.Sprintf("%s has no single edge to patch", s.kind)}
}

// PatchSplit sets both branches of a Split state.
func (b *Builder) PatchSplit(id, left, right StateID) error {
	s, err := b.at(id)
	if err != nil {
		return err
	}
	if s.kind != StateSplit {
		return &BuildError{State: id, Reason: fmt.Sprintf("%s is not a split", s.kind)}
	}
	s.left, s.right = left, right
	return nil
}

// SetStarts records the anchored start and the unanchored one, which
// loops over the input before entering the anchored start.
func (b *Builder) SetStarts(anchored, unanchored StateID) {
	b.anchored, b.unanchored = anchored, unanchored
}

// States reports how many states have been added.
func (b *Builder) States() int { return len(b.states) }

// Validate checks the starts and every edge for dangling targets.
func (b *Builder) Validate() error {
	n := StateID(len(b.states))
	if b.anchored >= n {
		return &BuildError{State: InvalidState, Reason: "anchored start not set"}
	}
	if b.unanchored >= n {
		return &BuildError{State: InvalidState, Reason: "unanchored start not set"}
	}
	for i := range b.states {
		s := &b.states[i]
		var targets []StateID
		switch s.kind {
		case StateByteRange, StateEpsilon, StateCapture, StateLook:
			targets = []StateID{s.next}
		case StateSplit:
			targets = []StateID{s.left, s.right}
		case StateSparse:
			for _, t := range s.transitions {
				targets = append(targets, t.Next)
			}
		}
		for _, t := range targets {
			if t >= n {
				return &BuildError{State: s.id, Reason: fmt.Sprintf("dangling edge to %d", t)}
			}
		}
	}
	return nil
}

// Build validates the states and freezes them into an NFA. names is
// indexed by group number and its length is the group count including
// group 0; nil means the whole match is the only group.
func (b *Builder) Build(anchored bool, names []string) (*NFA, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if len(names) == 0 {
		names = []string{""}
	}
	return &NFA{
		states:          b.states,
		startAnchored:   b.anchored,
		startUnanchored: b.unanchored,
		anchored:        anchored,
		captureCount:    len(names),
		captureNames:    slices.Clone(names),
		lookSet:         b.looks,
		byteClasses:     b.classes.ByteClasses(),
	}, nil
}
