package nfa

import (
	"fmt"
	"strings"

	"github.com/coregx/rebound/syntax"
)

// StateID indexes NFA.states.
type StateID uint32

// InvalidState marks an unpatched edge and the absence of a transition.
const InvalidState StateID = 1<<32 - 1

// StateKind says which State fields are meaningful.
type StateKind uint8

const (
	StateMatch     StateKind = iota // accepting
	StateByteRange                  // reads one byte in [lo, hi], then next
	StateSparse                     // reads one byte, target chosen by range
	StateSplit                      // forks to left (preferred) and right
	StateEpsilon                    // moves to next
	StateCapture                    // records the position in a slot, then next
	StateLook                       // zero-width assertion, then next
	StateFail                       // dead end
)

var stateKindNames = [...]string{"Match", "ByteRange", "Sparse", "Split", "Epsilon", "Capture", "Look", "Fail"}

func (k StateKind) String() string {
	if int(k) < len(stateKindNames) {
		return stateKindNames[k]
	}
	return fmt.Sprintf("StateKind(%d)", k)
}

// Look is the assertion of a StateLook.
type Look uint8

const (
	LookStartText Look = iota
	LookEndText
	LookStartLine
	LookEndLine
	LookWordBoundary
	LookNotWordBoundary

	// LookRuneStart holds before a byte that is not a UTF-8 continuation
	// byte, and at the end of input. The unanchored prefix loop only enters
	// the pattern there, so matches never start inside a rune.
	LookRuneStart
)

// LookFromAnchor maps a parsed anchor to its assertion.
func LookFromAnchor(k syntax.AnchorKind) Look {
	switch k {
	case syntax.AnchorStartText:
		return LookStartText
	case syntax.AnchorEndText:
		return LookEndText
	case syntax.AnchorStartLine:
		return LookStartLine
	case syntax.AnchorEndLine:
		return LookEndLine
	case syntax.AnchorWordBoundary:
		return LookWordBoundary
	}
	return LookNotWordBoundary
}

// Matches evaluates the assertion between input[pos-1] and input[pos].
func (l Look) Matches(input []byte, pos int) bool {
	switch l {
	case LookWordBoundary:
		return syntax.IsWordBoundary(input, pos)
	case LookNotWordBoundary:
		return !syntax.IsWordBoundary(input, pos)
	case LookRuneStart:
		return syntax.IsRuneStart(input, pos)
	case LookStartText, LookEndText, LookStartLine, LookEndLine:
		return l.anchor().Matches(input, pos)
	}
	return false
}

func (l Look) anchor() syntax.AnchorKind {
	switch l {
	case LookStartText:
		return syntax.AnchorStartText
	case LookEndText:
		return syntax.AnchorEndText
	case LookStartLine:
		return syntax.AnchorStartLine
	}
	return syntax.AnchorEndLine
}

var lookNames = [...]string{`\A`, `\z`, `(?m:^)`, `(?m:$)`, `\b`, `\B`, "runestart"}

func (l Look) String() string {
	if int(l) < len(lookNames) {
		return lookNames[l]
	}
	return fmt.Sprintf("Look(%d)", l)
}

// LookSet is a bit set of assertions.
type LookSet uint16

func (s LookSet) Contains(l Look) bool { return s&(1<<l) != 0 }

func (s LookSet) Insert(l Look) LookSet { return s | 1<<l }

// State is one NFA state. Which fields are set depends on kind:
//
//	ByteRange  lo, hi, next
//	Sparse     transitions
//	Split      left, right
//	Epsilon    next
//	Capture    captureIndex, captureStart, next
//	Look       look, next
type State struct {
	id   StateID
	kind StateKind

	next        StateID
	left, right StateID
	lo, hi      byte
	transitions []Transition

	captureIndex uint32
	captureStart bool
	look         Look
}

// Transition is one arm of a Sparse state: bytes Lo through Hi go to Next.
type Transition struct {
	Lo, Hi byte
	Next   StateID
}

func (s *State) Kind() StateKind { return s.kind }

func (s *State) IsMatch() bool { return s.kind == StateMatch }

// The accessors below return InvalidState targets when called on a state
// of another kind.

func (s *State) Epsilon() StateID { return s.target(StateEpsilon) }

func (s *State) Split() (left, right StateID) {
	if s.kind != StateSplit {
		return InvalidState, InvalidState
	}
	return s.left, s.right
}

func (s *State) Capture() (group uint32, open bool, next StateID) {
	if s.kind != StateCapture {
		return 0, false, InvalidState
	}
	return s.captureIndex, s.captureStart, s.next
}

// CaptureSlot is 2*group for an opening boundary, 2*group+1 for a closing one.
func (s *State) CaptureSlot() int {
	if s.captureStart {
		return 2 * int(s.captureIndex)
	}
	return 2*int(s.captureIndex) + 1
}

func (s *State) Look() (Look, StateID) { return s.look, s.target(StateLook) }

func (s *State) target(k StateKind) StateID {
	if s.kind != k {
		return InvalidState
	}
	return s.next
}

// Step follows the byte b out of a ByteRange or Sparse state. It returns
// InvalidState when b has no transition or s does not consume input.
func (s *State) Step(b byte) StateID {
	if s.kind == StateByteRange {
		if b >= s.lo && b <= s.hi {
			return s.next
		}
		return InvalidState
	}
	for _, t := range s.transitions {
		if b <= t.Hi {
			if b >= t.Lo {
				return t.Next
			}
			break
		}
	}
	return InvalidState
}

func (s *State) String() string {
	switch s.kind {
	case StateMatch:
		return "match"
	case StateFail:
		return "fail"
	case StateByteRange:
		return formatByteRange(s.lo, s.hi) + " -> " + fmt.Sprint(s.next)
	case StateSparse:
		arms := make([]string, 0, len(s.transitions))
		for _, t := range s.transitions {
			arms = append(arms, fmt.Sprintf("%s => %d", formatByteRange(t.Lo, t.Hi), t.Next))
		}
		return "sparse(" + strings.Join(arms, ", ") + ")"
	case StateSplit:
		return fmt.Sprintf("split(%d, %d)", s.left, s.right)
	case StateEpsilon:
		return fmt.Sprintf("eps -> %d", s.next)
	case StateCapture:
		return fmt.Sprintf("capture(slot=%d) -> %d", s.CaptureSlot(), s.next)
	case StateLook:
		return fmt.Sprintf("look(%s) -> %d", s.look, s.next)
	}
	return s.kind.String()
}

func formatByteRange(lo, hi byte) string {
	show := func(b byte) string {
		if b > ' ' && b < 0x7f && b != '-' {
			return string(rune(b))
		}
		return fmt.Sprintf(`\x%02X`, b)
	}
	if lo == hi {
		return show(lo)
	}
	return show(lo) + "-" + show(hi)
}

// NFA is a compiled Thompson NFA over bytes. It is immutable after Build
// and safe for concurrent use.
type NFA struct {
	states []State

	// startAnchored begins a match at the search position only.
	// startUnanchored first skips any number of bytes, entering
	// startAnchored at every rune start; it equals startAnchored when the
	// pattern begins with \A.
	startAnchored, startUnanchored StateID

	anchored     bool
	captureCount int      // groups including group 0
	captureNames []string // by group number, "" when unnamed
	lookSet      LookSet
	byteClasses  ByteClasses
}

func (n *NFA) StartUnanchored() StateID { return n.startUnanchored }

// IsAlwaysAnchored reports that unanchored searches cannot skip input.
func (n *NFA) IsAlwaysAnchored() bool { return n.startAnchored == n.startUnanchored }

// State returns nil for an ID outside the NFA.
func (n *NFA) State(id StateID) *State {
	if uint64(id) >= uint64(len(n.states)) {
		return nil
	}
	return &n.states[id]
}

// IsMatch is false for IDs outside the NFA.
func (n *NFA) IsMatch(id StateID) bool {
	s := n.State(id)
	return s != nil && s.kind == StateMatch
}

func (n *NFA) States() int { return len(n.states) }

// IsAnchored reports that every match starts at the search position.
func (n *NFA) IsAnchored() bool { return n.anchored }

// CaptureCount counts groups including group 0.
func (n *NFA) CaptureCount() int { return n.captureCount }

// SubexpNames returns a copy of the group names.
func (n *NFA) SubexpNames() []string {
	out := make([]string, n.captureCount)
	copy(out, n.captureNames)
	return out
}

func (n *NFA) LookSet() LookSet { return n.lookSet }

func (n *NFA) ByteClasses() *ByteClasses { return &n.byteClasses }

// String lists the states one per line, marking the anchored start with
// '^' and the unanchored start with '>'.
func (n *NFA) String() string {
	var sb strings.Builder
	for i := range n.states {
		id := StateID(i)
		mark := []byte("  ")
		if id == n.startAnchored {
			mark[0] = '^'
		}
		if id == n.startUnanchored {
			mark[1] = '>'
		}
		fmt.Fprintf(&sb, "%s%06d: %s\n", mark, i, &n.states[i])
	}
	return sb.String()
}
