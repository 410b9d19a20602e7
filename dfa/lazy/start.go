package lazy

import "github.com/coregx/rebound/syntax"

// StartKind classifies the byte before a position. It is all the
// look-behind any assertion needs; the byte after comes from the
// transition being computed.
type StartKind uint8

const (
	StartNonWord StartKind = iota // any other byte
	StartWord                     // [0-9A-Za-z_]
	StartText                     // no byte: position 0
	StartLineLF                   // '\n'

	startKindCount
)

var startKindNames = [startKindCount]string{"NonWord", "Word", "Text", "LineLF"}

func (k StartKind) String() string {
	if k < startKindCount {
		return startKindNames[k]
	}
	return "Unknown"
}

// kindOf is the context after reading b.
func kindOf(b byte) StartKind {
	if b == '\n' {
		return StartLineLF
	}
	if syntax.IsWordByte(b) {
		return StartWord
	}
	return StartNonWord
}

func kindAt(input []byte, pos int) StartKind {
	if pos == 0 {
		return StartText
	}
	return kindOf(input[pos-1])
}

// StartTable memoizes one start state per context. Missing entries hold
// InvalidState.
type StartTable [startKindCount]StateID

func newStartTable() StartTable {
	return StartTable{InvalidState, InvalidState, InvalidState, InvalidState}
}

func (t *StartTable) reset() { *t = newStartTable() }

func (t *StartTable) Get(k StartKind) StateID { return t[k] }

func (t *StartTable) Set(k StartKind, id StateID) { t[k] = id }
