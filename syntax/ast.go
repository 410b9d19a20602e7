// Package syntax parses regular expression patterns into an abstract syntax
// tree and validates that tree before it is lowered into a program.
//
// The pipeline is:
//
//	pattern text -> Parse -> *Node -> Analyze -> *Info (validated tree) -> compilers
//
// Parse never mutates its input and Analyze never mutates the tree it is given:
// the validated tree stored in Info is a fresh copy, so a parsed *Node can be
// analyzed many times under different Limits.
package syntax

import (
	"fmt"
	"strconv"
	"strings"
)

// Op identifies the kind of a syntax tree node.
type Op uint8

const (
	// OpEmpty matches the empty string.
	OpEmpty Op = iota

	// OpLiteral matches a single rune (Node.Rune), case-insensitively if Node.Fold.
	OpLiteral

	// OpClass matches one rune from Node.Class.
	OpClass

	// OpAnyChar matches any rune including newline.
	OpAnyChar

	// OpAnyCharNotNL matches any rune except '\n'.
	OpAnyCharNotNL

	// OpConcat matches Node.Subs in sequence.
	OpConcat

	// OpAlternate matches one of Node.Subs, preferring earlier ones.
	OpAlternate

	// OpRepeat matches Node.Subs[0] between Node.Min and Node.Max times.
	// Max == -1 means unbounded.
	OpRepeat

	// OpGroup wraps Node.Subs[0]. Node.Cap > 0 for capturing groups.
	OpGroup

	// OpAnchor is a zero-width assertion of kind Node.Anchor.
	OpAnchor

	// OpBackref matches the text last captured by group Node.Cap.
	OpBackref
)

// String returns a human-readable name of the Op.
func (op Op) String() string {
	switch op {
	case OpEmpty:
		return "Empty"
	case OpLiteral:
		return "Literal"
	case OpClass:
		return "Class"
	case OpAnyChar:
		return "AnyChar"
	case OpAnyCharNotNL:
		return "AnyCharNotNL"
	case OpConcat:
		return "Concat"
	case OpAlternate:
		return "Alternate"
	case OpRepeat:
		return "Repeat"
	case OpGroup:
		return "Group"
	case OpAnchor:
		return "Anchor"
	case OpBackref:
		return "Backref"
	default:
		return fmt.Sprintf("Op(%d)", op)
	}
}

// AnchorKind identifies a zero-width assertion.
type AnchorKind uint8

const (
	// AnchorStartText asserts the start of input (\A, or ^ without (?m)).
	AnchorStartText AnchorKind = iota

	// AnchorEndText asserts the end of input (\z, or $ without (?m)).
	AnchorEndText

	// AnchorStartLine asserts start of input or a position after '\n'.
	AnchorStartLine

	// AnchorEndLine asserts end of input or a position before '\n'.
	AnchorEndLine

	// AnchorWordBoundary asserts an ASCII word boundary (\b).
	AnchorWordBoundary

	// AnchorNotWordBoundary asserts the absence of an ASCII word boundary (\B).
	AnchorNotWordBoundary
)

// String returns the pattern syntax for the anchor.
func (k AnchorKind) String() string {
	switch k {
	case AnchorStartText:
		return `\A`
	case AnchorEndText:
		return `\z`
	case AnchorStartLine:
		return `(?m:^)`
	case AnchorEndLine:
		return `(?m:$)`
	case AnchorWordBoundary:
		return `\b`
	case AnchorNotWordBoundary:
		return `\B`
	default:
		return fmt.Sprintf("Anchor(%d)", k)
	}
}

// Flags control how a pattern is parsed.
type Flags uint16

const (
	// FoldCase makes literals, classes and backreferences case-insensitive (i).
	FoldCase Flags = 1 << iota

	// MultiLine makes ^ and $ match at line boundaries (m).
	MultiLine

	// DotNL lets . match '\n' (s).
	DotNL

	// NonGreedy swaps the meaning of x* and x*? (U).
	NonGreedy
)

// String renders flags in inline-flag syntax, e.g. "ims".
func (f Flags) String() string {
	var sb strings.Builder
	if f&FoldCase != 0 {
		sb.WriteByte('i')
	}
	if f&MultiLine != 0 {
		sb.WriteByte('m')
	}
	if f&DotNL != 0 {
		sb.WriteByte('s')
	}
	if f&NonGreedy != 0 {
		sb.WriteByte('U')
	}
	return sb.String()
}

// MarshalText implements encoding.TextMarshaler.
func (f Flags) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText parses inline-flag letters such as "is" into f.
func (f *Flags) UnmarshalText(text []byte) error {
	var out Flags
	for i, c := range string(text) {
		switch c {
		case 'i':
			out |= FoldCase
		case 'm':
			out |= MultiLine
		case 's':
			out |= DotNL
		case 'U':
			out |= NonGreedy
		default:
			return &ParseError{Kind: ErrInvalidFlag, Pos: i, Pattern: string(text), Expr: string(c)}
		}
	}
	*f = out
	return nil
}

// ClassProp is a named class reference inside a bracket or escape, such as
// \p{Greek}. Props are resolved against the Unicode table by Analyze.
type ClassProp struct {
	Name    string
	Negated bool
	Pos     int
}

// Node is a node in the pattern syntax tree.
//
// Which fields are meaningful depends on Op:
//
//	OpLiteral   Rune, Fold
//	OpClass     Class, Props, Negated, Fold
//	OpConcat    Subs
//	OpAlternate Subs
//	OpRepeat    Subs[0], Min, Max, Greedy, EmptyLoop
//	OpGroup     Subs[0], Cap, Name
//	OpAnchor    Anchor
//	OpBackref   Cap, Name, Fold
type Node struct {
	Op     Op
	Rune   rune
	Fold   bool
	Class  []RuneRange
	Props  []ClassProp
	Subs   []*Node
	Min    int
	Max    int
	Greedy bool
	Cap    int
	Name   string
	Anchor AnchorKind

	// Negated is set on a parsed class whose Props have not been resolved yet.
	// Analyze folds the negation into Class and clears it.
	Negated bool

	// EmptyLoop marks a repeat whose body can match the empty string while the
	// repeat may iterate more than once. Set by Analyze.
	EmptyLoop bool

	// Pos is the byte offset in the pattern where this node starts.
	Pos int
}

// String returns a compact dump of the tree, used by tests and the debug CLI.
func (n *Node) String() string {
	var sb strings.Builder
	n.dump(&sb)
	return sb.String()
}

func (n *Node) dump(sb *strings.Builder) {
	if n == nil {
		sb.WriteString("<nil>")
		return
	}
	switch n.Op {
	case OpEmpty:
		sb.WriteString("emp{}")
	case OpLiteral:
		if n.Fold {
			sb.WriteString("litfold{")
		} else {
			sb.WriteString("lit{")
		}
		sb.WriteString(quoteRune(n.Rune))
		sb.WriteByte('}')
	case OpClass:
		sb.WriteString("cc{")
		if n.Negated {
			sb.WriteByte('^')
		}
		sep := false
		for _, r := range n.Class {
			if sep {
				sb.WriteByte(' ')
			}
			sep = true
			sb.WriteString(quoteRune(r.Lo))
			if r.Hi != r.Lo {
				sb.WriteByte('-')
				sb.WriteString(quoteRune(r.Hi))
			}
		}
		for _, p := range n.Props {
			if sep {
				sb.WriteByte(' ')
			}
			sep = true
			if p.Negated {
				sb.WriteString(`\P{`)
			} else {
				sb.WriteString(`\p{`)
			}
			sb.WriteString(p.Name)
			sb.WriteByte('}')
		}
		sb.WriteByte('}')
	case OpAnyChar:
		sb.WriteString("dot{}")
	case OpAnyCharNotNL:
		sb.WriteString("dnl{}")
	case OpConcat:
		sb.WriteString("cat{")
		for _, s := range n.Subs {
			s.dump(sb)
		}
		sb.WriteByte('}')
	case OpAlternate:
		sb.WriteString("alt{")
		for i, s := range n.Subs {
			if i > 0 {
				sb.WriteByte('|')
			}
			s.dump(sb)
		}
		sb.WriteByte('}')
	case OpRepeat:
		sb.WriteString("rep{")
		sb.WriteString(strconv.Itoa(n.Min))
		sb.WriteByte(',')
		if n.Max >= 0 {
			sb.WriteString(strconv.Itoa(n.Max))
		}
		if !n.Greedy {
			sb.WriteByte('?')
		}
		sb.WriteByte(' ')
		n.Subs[0].dump(sb)
		sb.WriteByte('}')
	case OpGroup:
		if n.Cap == 0 {
			sb.WriteString("grp{")
		} else {
			sb.WriteString("cap")
			sb.WriteString(strconv.Itoa(n.Cap))
			if n.Name != "" {
				sb.WriteByte('<')
				sb.WriteString(n.Name)
				sb.WriteByte('>')
			}
			sb.WriteByte('{')
		}
		n.Subs[0].dump(sb)
		sb.WriteByte('}')
	case OpAnchor:
		sb.WriteString("anc{")
		sb.WriteString(n.Anchor.String())
		sb.WriteByte('}')
	case OpBackref:
		sb.WriteString("ref{")
		sb.WriteString(strconv.Itoa(n.Cap))
		sb.WriteByte('}')
	default:
		sb.WriteString(n.Op.String())
	}
}

func quoteRune(r rune) string {
	if r >= 0x21 && r < 0x7f && !strings.ContainsRune(`{}|-^\ `, r) {
		return string(r)
	}
	return strconv.QuoteRuneToASCII(r)
}

// CanMatchEmpty reports whether n can match the empty string.
// Backreferences are treated as possibly empty.
func (n *Node) CanMatchEmpty() bool {
	switch n.Op {
	case OpEmpty, OpAnchor, OpBackref:
		return true
	case OpLiteral, OpClass, OpAnyChar, OpAnyCharNotNL:
		return false
	case OpConcat:
		for _, s := range n.Subs {
			if !s.CanMatchEmpty() {
				return false
			}
		}
		return true
	case OpAlternate:
		for _, s := range n.Subs {
			if s.CanMatchEmpty() {
				return true
			}
		}
		return false
	case OpRepeat:
		return n.Min == 0 || n.Subs[0].CanMatchEmpty()
	case OpGroup:
		return n.Subs[0].CanMatchEmpty()
	}
	return false
}

// Walk calls fn for n and every descendant in pre-order. If fn returns false
// the children of that node are skipped.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, s := range n.Subs {
		Walk(s, fn)
	}
}
