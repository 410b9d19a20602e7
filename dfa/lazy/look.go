package lazy

import (
	"unicode/utf8"

	"github.com/coregx/rebound/nfa"
	"github.com/coregx/rebound/syntax"
)

// eoi stands for the end of input where a next byte is expected.
const eoi = -1

// lookHolds decides an assertion at a position given its look-behind context
// and the next byte (or eoi). It agrees with nfa.Look.Matches.
func lookHolds(l nfa.Look, prev StartKind, next int) bool {
	switch l {
	case nfa.LookStartText:
		return prev == StartText
	case nfa.LookEndText:
		return next == eoi
	case nfa.LookStartLine:
		return prev == StartText || prev == StartLineLF
	case nfa.LookEndLine:
		return next == eoi || next == '\n'
	case nfa.LookWordBoundary:
		return (prev == StartWord) != (next != eoi && syntax.IsWordByte(byte(next)))
	case nfa.LookNotWordBoundary:
		return (prev == StartWord) == (next != eoi && syntax.IsWordByte(byte(next)))
	case nfa.LookRuneStart:
		return next == eoi || utf8.RuneStart(byte(next))
	default:
		return false
	}
}

// normalizer collapses contexts the NFA cannot tell apart, so that bytes of
// one equivalence class always lead to the same DFA state.
type normalizer struct {
	word, line, text bool
}

func newNormalizer(looks nfa.LookSet) normalizer {
	return normalizer{
		word: looks.Contains(nfa.LookWordBoundary) || looks.Contains(nfa.LookNotWordBoundary),
		line: looks.Contains(nfa.LookStartLine),
		text: looks.Contains(nfa.LookStartText),
	}
}

func (n normalizer) normalize(k StartKind) StartKind {
	switch k {
	case StartWord:
		if !n.word {
			return StartNonWord
		}
	case StartLineLF:
		if !n.line {
			return StartNonWord
		}
	case StartText:
		if !n.text {
			if n.line {
				return StartLineLF
			}
			return StartNonWord
		}
	}
	return k
}
