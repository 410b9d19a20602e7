package syntax

import "unicode/utf8"

// Matches reports whether the assertion holds at byte offset pos of input.
// All engines evaluate anchors through this function so that they agree.
func (k AnchorKind) Matches(input []byte, pos int) bool {
	switch k {
	case AnchorStartText:
		return pos == 0
	case AnchorEndText:
		return pos == len(input)
	case AnchorStartLine:
		return pos == 0 || input[pos-1] == '\n'
	case AnchorEndLine:
		return pos == len(input) || input[pos] == '\n'
	case AnchorWordBoundary:
		return IsWordBoundary(input, pos)
	case AnchorNotWordBoundary:
		return !IsWordBoundary(input, pos)
	}
	return false
}

// IsWordBoundary reports whether exactly one of the bytes around pos is an
// ASCII word character.
func IsWordBoundary(input []byte, pos int) bool {
	before := pos > 0 && IsWordByte(input[pos-1])
	after := pos < len(input) && IsWordByte(input[pos])
	return before != after
}

// IsRuneStart reports whether a match may begin at pos: the end of input or
// any byte that is not a UTF-8 continuation byte.
func IsRuneStart(input []byte, pos int) bool {
	return pos >= len(input) || utf8.RuneStart(input[pos])
}
