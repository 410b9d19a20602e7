package syntax

import (
	"fmt"
	"unicode/utf8"
)

// Limits bound the size of what Analyze accepts.
type Limits struct {
	// MaxRepeat is the largest n allowed in {n}, {n,} and {m,n}.
	MaxRepeat int

	// MaxProgramSize is the largest estimated instruction count. Counted
	// repeats are expanded, so nested repeats multiply.
	MaxProgramSize int

	// MaxNesting bounds the depth of the tree.
	MaxNesting int
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		MaxRepeat:      1000,
		MaxProgramSize: 250_000,
		MaxNesting:     1000,
	}
}

// Info is the result of Analyze: a validated, simplified copy of the tree
// plus the facts the compilers and the engine selector need.
type Info struct {
	// Root is the validated tree. Classes are fully resolved, non-capturing
	// groups are removed, and nested concatenations and alternations are
	// flattened.
	Root *Node

	// NeedsBacktrack is set when the pattern contains constructs that only
	// the backtracking engine can execute (backreferences).
	NeedsBacktrack bool

	// CaptureCount counts groups including the implicit group 0.
	CaptureCount int

	// CaptureNames is indexed by group number; index 0 is "".
	CaptureNames []string

	// MinLen is the minimum match length in bytes.
	MinLen int

	// Nullable reports whether the pattern can match the empty string.
	Nullable bool

	HasWordBoundary bool
	HasLineAnchors  bool

	// AnchoredStart means every match must start at offset 0.
	AnchoredStart bool

	// AnchoredEnd means every match must end at the end of input.
	AnchoredEnd bool

	// ProgramSize is the estimated backtracking instruction count.
	ProgramSize int
}

type analyzer struct {
	limits Limits
	info   *Info
}

// Analyze validates root against limits and returns the simplified tree with
// its properties. root itself is not modified.
func Analyze(root *Node, limits Limits) (*Info, error) {
	if limits.MaxRepeat <= 0 {
		limits.MaxRepeat = DefaultLimits().MaxRepeat
	}
	if limits.MaxProgramSize <= 0 {
		limits.MaxProgramSize = DefaultLimits().MaxProgramSize
	}
	if limits.MaxNesting <= 0 {
		limits.MaxNesting = DefaultLimits().MaxNesting
	}
	a := &analyzer{limits: limits, info: &Info{}}
	out, err := a.rewrite(root, 0)
	if err != nil {
		return nil, err
	}
	size := programSize(out, limits.MaxProgramSize+1)
	if size > limits.MaxProgramSize {
		return nil, &CompileError{
			Kind:   ErrProgramTooLarge,
			Pos:    root.Pos,
			Detail: fmt.Sprintf("estimated %d instructions, limit %d", size, limits.MaxProgramSize),
		}
	}

	info := a.info
	info.Root = out
	info.ProgramSize = size
	// Groups removed by rewriting, such as those under {0}, keep their
	// numbers and never participate.
	info.CaptureNames = CaptureNames(root)
	info.CaptureCount = len(info.CaptureNames)
	info.MinLen = minLen(out)
	info.Nullable = out.CanMatchEmpty()
	info.AnchoredStart = anchoredStart(out)
	info.AnchoredEnd = anchoredEnd(out)
	return info, nil
}

func (a *analyzer) rewrite(n *Node, depth int) (*Node, error) {
	if depth > a.limits.MaxNesting {
		return nil, &CompileError{Kind: ErrNestingTooDeep, Pos: n.Pos}
	}
	switch n.Op {
	case OpClass:
		rs, err := resolveProps(n)
		if err != nil {
			return nil, err
		}
		if len(rs) == 1 && rs[0].Lo == rs[0].Hi {
			return &Node{Op: OpLiteral, Rune: rs[0].Lo, Pos: n.Pos}, nil
		}
		return &Node{Op: OpClass, Class: rs, Pos: n.Pos}, nil

	case OpConcat:
		subs := make([]*Node, 0, len(n.Subs))
		for _, s := range n.Subs {
			r, err := a.rewrite(s, depth+1)
			if err != nil {
				return nil, err
			}
			switch r.Op {
			case OpEmpty:
			case OpConcat:
				subs = append(subs, r.Subs...)
			default:
				subs = append(subs, r)
			}
		}
		switch len(subs) {
		case 0:
			return &Node{Op: OpEmpty, Pos: n.Pos}, nil
		case 1:
			return subs[0], nil
		}
		return &Node{Op: OpConcat, Subs: subs, Pos: n.Pos}, nil

	case OpAlternate:
		subs := make([]*Node, 0, len(n.Subs))
		for _, s := range n.Subs {
			r, err := a.rewrite(s, depth+1)
			if err != nil {
				return nil, err
			}
			if r.Op == OpAlternate {
				subs = append(subs, r.Subs...)
			} else {
				subs = append(subs, r)
			}
		}
		return &Node{Op: OpAlternate, Subs: subs, Pos: n.Pos}, nil

	case OpRepeat:
		if n.Min > a.limits.MaxRepeat || n.Max > a.limits.MaxRepeat {
			return nil, &CompileError{
				Kind:   ErrRepeatTooLarge,
				Pos:    n.Pos,
				Detail: fmt.Sprintf("{%d,%d} exceeds %d", n.Min, n.Max, a.limits.MaxRepeat),
			}
		}
		sub, err := a.rewrite(n.Subs[0], depth+1)
		if err != nil {
			return nil, err
		}
		if n.Min == 1 && n.Max == 1 {
			return sub, nil
		}
		if n.Max == 0 || sub.Op == OpEmpty {
			return &Node{Op: OpEmpty, Pos: n.Pos}, nil
		}
		return &Node{
			Op:        OpRepeat,
			Subs:      []*Node{sub},
			Min:       n.Min,
			Max:       n.Max,
			Greedy:    n.Greedy,
			EmptyLoop: sub.CanMatchEmpty() && (n.Max < 0 || n.Max > 1),
			Pos:       n.Pos,
		}, nil

	case OpGroup:
		sub, err := a.rewrite(n.Subs[0], depth+1)
		if err != nil {
			return nil, err
		}
		if n.Cap == 0 {
			return sub, nil
		}
		return &Node{Op: OpGroup, Cap: n.Cap, Name: n.Name, Subs: []*Node{sub}, Pos: n.Pos}, nil

	case OpAnchor:
		switch n.Anchor {
		case AnchorWordBoundary, AnchorNotWordBoundary:
			a.info.HasWordBoundary = true
		case AnchorStartLine, AnchorEndLine:
			a.info.HasLineAnchors = true
		}
		c := *n
		return &c, nil

	case OpBackref:
		a.info.NeedsBacktrack = true
		c := *n
		return &c, nil
	}
	c := *n
	c.Subs = nil
	return &c, nil
}

// programSize estimates the backtracking instruction count, saturating at
// ceiling so that nested repeats cannot overflow.
func programSize(n *Node, ceiling int) int {
	add := func(a, b int) int {
		if a+b > ceiling {
			return ceiling
		}
		return a + b
	}
	mul := func(a, b int) int {
		if a != 0 && b > ceiling/a {
			return ceiling
		}
		return a * b
	}
	switch n.Op {
	case OpEmpty:
		return 0
	case OpLiteral, OpClass, OpAnyChar, OpAnyCharNotNL, OpAnchor, OpBackref:
		return 1
	case OpConcat:
		total := 0
		for _, s := range n.Subs {
			total = add(total, programSize(s, ceiling))
		}
		return total
	case OpAlternate:
		total := 0
		for _, s := range n.Subs {
			total = add(total, add(programSize(s, ceiling), 2))
		}
		return total
	case OpRepeat:
		body := programSize(n.Subs[0], ceiling)
		if n.EmptyLoop {
			body = add(body, 2)
		}
		total := mul(body, n.Min)
		if n.Max < 0 {
			return add(total, add(body, 2))
		}
		return add(total, mul(add(body, 1), n.Max-n.Min))
	case OpGroup:
		return add(programSize(n.Subs[0], ceiling), 2)
	}
	return 1
}

func minLen(n *Node) int {
	switch n.Op {
	case OpLiteral:
		if n.Fold {
			best := utf8.UTFMax
			for _, r := range FoldOrbit(n.Rune) {
				best = min(best, runeLen(r))
			}
			return best
		}
		return runeLen(n.Rune)
	case OpClass:
		if len(n.Class) == 0 {
			return 0
		}
		return runeLen(n.Class[0].Lo)
	case OpAnyChar, OpAnyCharNotNL:
		return 1
	case OpConcat:
		total := 0
		for _, s := range n.Subs {
			total += minLen(s)
		}
		return total
	case OpAlternate:
		best := -1
		for _, s := range n.Subs {
			if l := minLen(s); best < 0 || l < best {
				best = l
			}
		}
		return max(best, 0)
	case OpRepeat:
		return minLen(n.Subs[0]) * n.Min
	case OpGroup:
		return minLen(n.Subs[0])
	}
	return 0
}

func anchoredStart(n *Node) bool {
	switch n.Op {
	case OpAnchor:
		return n.Anchor == AnchorStartText
	case OpConcat:
		return len(n.Subs) > 0 && anchoredStart(n.Subs[0])
	case OpAlternate:
		for _, s := range n.Subs {
			if !anchoredStart(s) {
				return false
			}
		}
		return len(n.Subs) > 0
	case OpGroup:
		return anchoredStart(n.Subs[0])
	case OpRepeat:
		return n.Min > 0 && anchoredStart(n.Subs[0])
	}
	return false
}

func anchoredEnd(n *Node) bool {
	switch n.Op {
	case OpAnchor:
		return n.Anchor == AnchorEndText
	case OpConcat:
		return len(n.Subs) > 0 && anchoredEnd(n.Subs[len(n.Subs)-1])
	case OpAlternate:
		for _, s := range n.Subs {
			if !anchoredEnd(s) {
				return false
			}
		}
		return len(n.Subs) > 0
	case OpGroup:
		return anchoredEnd(n.Subs[0])
	case OpRepeat:
		return n.Min > 0 && anchoredEnd(n.Subs[0])
	}
	return false
}

// runeLen is utf8.RuneLen with surrogates counted as their 3-byte encoding.
func runeLen(r rune) int {
	if l := utf8.RuneLen(r); l > 0 {
		return l
	}
	return 3
}
