package lazy

import (
	"encoding/binary"
	"fmt"

	"github.com/coregx/rebound/nfa"
)

// StateID identifies a DFA state within one Cache generation. IDs are
// invalidated when the cache is cleared.
type StateID uint32

// InvalidState marks a transition that has not been computed yet.
const InvalidState StateID = 0xFFFFFFFF

// State is a determinized set of NFA states at some position.
//
// nfaStates holds the consuming states, match states and unresolved look
// states reachable without consuming input, sorted by ID. Look states stay
// unresolved because most assertions depend on the next byte, which is only
// known when the outgoing transition is computed.
type State struct {
	id StateID

	nfaStates []nfa.StateID

	// kind is the look-behind context of the position.
	kind StartKind

	// matchBefore reports that a match ended at the previous position, i.e.
	// the transition into this state passed through an NFA match state.
	matchBefore bool

	// eoi caches the end-of-input check: 0 unknown, 1 no match, 2 match.
	eoi uint8
}

// ID returns the state's identifier
func (s *State) ID() StateID {
	return s.id
}

// IsMatch reports whether a match ended just before this state's position.
func (s *State) IsMatch() bool {
	return s.matchBefore
}

// IsDead reports whether no match can be reached from this state.
func (s *State) IsDead() bool {
	return len(s.nfaStates) == 0 && !s.matchBefore
}

// NFAStates returns the NFA states represented by this DFA state
func (s *State) NFAStates() []nfa.StateID {
	return s.nfaStates
}

// String returns a human-readable representation of the state
func (s *State) String() string {
	return fmt.Sprintf("DFAState(id=%d, kind=%s, matchBefore=%v, nfaStates=%v)",
		s.id, s.kind, s.matchBefore, s.nfaStates)
}

// appendKey encodes the identity of a state: context, match flag and the
// sorted NFA set.
func appendKey(dst []byte, kind StartKind, matchBefore bool, set []nfa.StateID) []byte {
	flag := byte(0)
	if matchBefore {
		flag = 1
	}
	dst = append(dst, byte(kind), flag)
	for _, id := range set {
		dst = binary.LittleEndian.AppendUint32(dst, uint32(id))
	}
	return dst
}
