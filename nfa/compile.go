package nfa

import (
	"unicode/utf8"

	"github.com/coregx/rebound/internal/conv"
	"github.com/coregx/rebound/syntax"
)

// CompilerConfig configures NFA compilation behavior
type CompilerConfig struct {
	// MaxStates bounds the number of states. Zero means no limit.
	MaxStates int
}

// DefaultCompilerConfig returns a compiler configuration with sensible defaults
func DefaultCompilerConfig() CompilerConfig {
	return CompilerConfig{
		MaxStates: 1_000_000,
	}
}

// Compiler lowers validated syntax trees into Thompson NFAs.
type Compiler struct {
	config  CompilerConfig
	builder *Builder
}

// NewCompiler creates a new NFA compiler with the given configuration
func NewCompiler(config CompilerConfig) *Compiler {
	return &Compiler{
		config:  config,
		builder: NewBuilder(0),
	}
}

// Compile is shorthand for NewCompiler(config).Compile(info).
func Compile(info *syntax.Info, config CompilerConfig) (*NFA, error) {
	return NewCompiler(config).Compile(info)
}

// Compile builds the NFA for info.Root.
//
// The whole pattern is wrapped in capture group 0. Unless the pattern is
// anchored at the start of text, the unanchored start state is
//
//	L: split(look(runestart) -> anchored start, any byte -> L)
//
// so a search tries each rune start in order, preferring earlier ones.
// Backreferences are rejected with ErrUnsupported.
func (c *Compiler) Compile(info *syntax.Info) (*NFA, error) {
	c.builder = NewBuilder(info.ProgramSize + 8)

	start, end, err := c.compile(info.Root)
	if err != nil {
		return nil, err
	}

	b := c.builder
	open := b.AddCapture(0, true, start)
	closeID := b.AddCapture(0, false, InvalidState)
	if err := b.Patch(end, closeID); err != nil {
		return nil, &CompileError{Err: err}
	}
	if err := b.Patch(closeID, b.AddMatch()); err != nil {
		return nil, &CompileError{Err: err}
	}

	unanchored := open
	if !info.AnchoredStart {
		loop := b.AddSplit(InvalidState, InvalidState)
		look := b.AddLook(LookRuneStart, open)
		anyByte := b.AddByteRange(0x00, 0xFF, loop)
		if err := b.PatchSplit(loop, look, anyByte); err != nil {
			return nil, &CompileError{Err: err}
		}
		unanchored = loop
	}
	b.SetStarts(open, unanchored)

	nfa, err := b.Build(info.AnchoredStart, info.CaptureNames)
	if err != nil {
		return nil, &CompileError{Err: err}
	}
	return nfa, nil
}

// compile returns the entry of the fragment for n and its exit, which is
// always a state accepted by Builder.Patch.
func (c *Compiler) compile(n *syntax.Node) (start, end StateID, err error) {
	if c.config.MaxStates > 0 && c.builder.States() > c.config.MaxStates {
		return InvalidState, InvalidState, &CompileError{Err: ErrTooComplex}
	}

	switch n.Op {
	case syntax.OpEmpty:
		return c.compileEmptyMatch()
	case syntax.OpLiteral:
		if n.Fold {
			orbit := syntax.FoldOrbit(n.Rune)
			rs := make([]syntax.RuneRange, len(orbit))
			for i, r := range orbit {
				rs[i] = syntax.RuneRange{Lo: r, Hi: r}
			}
			return c.compileClass(syntax.CanonicalizeRanges(rs))
		}
		return c.compileLiteral(n.Rune)
	case syntax.OpClass:
		return c.compileClass(n.Class)
	case syntax.OpAnyChar:
		return c.compileClass([]syntax.RuneRange{{Lo: 0, Hi: utf8.MaxRune}})
	case syntax.OpAnyCharNotNL:
		return c.compileClass([]syntax.RuneRange{{Lo: 0, Hi: '\n' - 1}, {Lo: '\n' + 1, Hi: utf8.MaxRune}})
	case syntax.OpConcat:
		return c.compileConcat(n.Subs)
	case syntax.OpAlternate:
		return c.compileAlternate(n.Subs)
	case syntax.OpRepeat:
		return c.compileRepeat(n)
	case syntax.OpGroup:
		bodyStart, bodyEnd, err := c.compile(n.Subs[0])
		if err != nil {
			return InvalidState, InvalidState, err
		}
		group := conv.IntToUint32(n.Cap)
		open := c.builder.AddCapture(group, true, bodyStart)
		closeID := c.builder.AddCapture(group, false, InvalidState)
		if err := c.builder.Patch(bodyEnd, closeID); err != nil {
			return InvalidState, InvalidState, err
		}
		return open, closeID, nil
	case syntax.OpAnchor:
		id := c.builder.AddLook(LookFromAnchor(n.Anchor), InvalidState)
		return id, id, nil
	case syntax.OpBackref:
		return InvalidState, InvalidState, &CompileError{Err: ErrUnsupported}
	default:
		return InvalidState, InvalidState, &CompileError{Err: ErrCompilation}
	}
}

// compileLiteral compiles one rune as a chain of single-byte states.
func (c *Compiler) compileLiteral(r rune) (start, end StateID, err error) {
	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], r)
	start, prev := InvalidState, InvalidState
	for i := 0; i < n; i++ {
		id := c.builder.AddByteRange(buf[i], buf[i], InvalidState)
		if start == InvalidState {
			start = id
		} else if err := c.builder.Patch(prev, id); err != nil {
			return InvalidState, InvalidState, err
		}
		prev = id
	}
	return start, prev, nil
}

// compileClass lowers rune ranges to a UTF-8 automaton. Invalid UTF-8 and
// surrogate encodings have no path through it.
func (c *Compiler) compileClass(ranges []syntax.RuneRange) (start, end StateID, err error) {
	end = c.builder.AddEpsilon(InvalidState)
	if len(ranges) == 0 {
		return c.builder.AddFail(), end, nil
	}
	return c.compileTrie(classSequences(ranges), end), end, nil
}

func (c *Compiler) compileTrie(t *utf8Trie, target StateID) StateID {
	trans := make([]Transition, 0, len(t.children))
	for _, e := range t.children {
		next := target
		if e.child != nil {
			next = c.compileTrie(e.child, target)
		}
		trans = append(trans, Transition{Lo: e.r.lo, Hi: e.r.hi, Next: next})
	}
	if len(trans) == 1 {
		return c.builder.AddByteRange(trans[0].Lo, trans[0].Hi, trans[0].Next)
	}
	return c.builder.AddSparse(trans)
}

// compileConcat chains fragments end to start.
func (c *Compiler) compileConcat(subs []*syntax.Node) (start, end StateID, err error) {
	if len(subs) == 0 {
		return c.compileEmptyMatch()
	}
	start, end, err = c.compile(subs[0])
	if err != nil {
		return InvalidState, InvalidState, err
	}
	for _, sub := range subs[1:] {
		nextStart, nextEnd, err := c.compile(sub)
		if err != nil {
			return InvalidState, InvalidState, err
		}
		if err := c.builder.Patch(end, nextStart); err != nil {
			return InvalidState, InvalidState, err
		}
		end = nextEnd
	}
	return start, end, nil
}

// compileAlternate compiles a|b|c as split(a, split(b, c)) joined by one
// epsilon, so earlier alternatives have priority.
func (c *Compiler) compileAlternate(subs []*syntax.Node) (start, end StateID, err error) {
	if len(subs) == 1 {
		return c.compile(subs[0])
	}
	starts := make([]StateID, 0, len(subs))
	join := c.builder.AddEpsilon(InvalidState)
	for _, sub := range subs {
		s, e, err := c.compile(sub)
		if err != nil {
			return InvalidState, InvalidState, err
		}
		if err := c.builder.Patch(e, join); err != nil {
			return InvalidState, InvalidState, err
		}
		starts = append(starts, s)
	}
	return c.buildSplitChain(starts), join, nil
}

// buildSplitChain builds Split(t0, Split(t1, ...)).
func (c *Compiler) buildSplitChain(targets []StateID) StateID {
	if len(targets) == 1 {
		return targets[0]
	}
	right := c.buildSplitChain(targets[1:])
	return c.builder.AddSplit(targets[0], right)
}

// compileRepeat expands x{n,m} into n copies of x followed by either a star
// loop or m-n nested optional copies.
func (c *Compiler) compileRepeat(n *syntax.Node) (start, end StateID, err error) {
	sub := n.Subs[0]
	start, end = InvalidState, InvalidState
	link := func(s, e StateID) error {
		if start == InvalidState {
			start, end = s, e
			return nil
		}
		if err := c.builder.Patch(end, s); err != nil {
			return err
		}
		end = e
		return nil
	}

	for i := 0; i < n.Min; i++ {
		s, e, err := c.compile(sub)
		if err != nil {
			return InvalidState, InvalidState, err
		}
		if err := link(s, e); err != nil {
			return InvalidState, InvalidState, err
		}
	}

	var s, e StateID
	switch {
	case n.Max < 0:
		s, e, err = c.compileStar(sub, n.Greedy, n.EmptyLoop)
	case n.Max > n.Min:
		s, e, err = c.compileOptionals(sub, n.Max-n.Min, n.Greedy)
	default:
		if start == InvalidState {
			return c.compileEmptyMatch()
		}
		return start, end, nil
	}
	if err != nil {
		return InvalidState, InvalidState, err
	}
	if err := link(s, e); err != nil {
		return InvalidState, InvalidState, err
	}
	return start, end, nil
}

// compileStar compiles L: split(x -> L, exit), swapped when lazy. A nullable
// body is compiled as (x+)? instead, so that an empty iteration reaches the
// loop split again, finds it already visited and leaves through the exit.
func (c *Compiler) compileStar(sub *syntax.Node, greedy, emptyLoop bool) (start, end StateID, err error) {
	bodyStart, bodyEnd, err := c.compile(sub)
	if err != nil {
		return InvalidState, InvalidState, err
	}
	end = c.builder.AddEpsilon(InvalidState)
	split := c.builder.AddSplit(InvalidState, InvalidState)
	if err := c.patchSplit(split, bodyStart, end, greedy); err != nil {
		return InvalidState, InvalidState, err
	}
	if err := c.builder.Patch(bodyEnd, split); err != nil {
		return InvalidState, InvalidState, err
	}
	if !emptyLoop {
		return split, end, nil
	}
	quest := c.builder.AddSplit(InvalidState, InvalidState)
	if err := c.patchSplit(quest, bodyStart, end, greedy); err != nil {
		return InvalidState, InvalidState, err
	}
	return quest, end, nil
}

// compileOptionals compiles count nested copies of (x(x(x)?)?)?.
func (c *Compiler) compileOptionals(sub *syntax.Node, count int, greedy bool) (start, end StateID, err error) {
	end = c.builder.AddEpsilon(InvalidState)
	start, prevEnd := InvalidState, InvalidState
	for i := 0; i < count; i++ {
		bodyStart, bodyEnd, err := c.compile(sub)
		if err != nil {
			return InvalidState, InvalidState, err
		}
		split := c.builder.AddSplit(InvalidState, InvalidState)
		if err := c.patchSplit(split, bodyStart, end, greedy); err != nil {
			return InvalidState, InvalidState, err
		}
		if start == InvalidState {
			start = split
		} else if err := c.builder.Patch(prevEnd, split); err != nil {
			return InvalidState, InvalidState, err
		}
		prevEnd = bodyEnd
	}
	if err := c.builder.Patch(prevEnd, end); err != nil {
		return InvalidState, InvalidState, err
	}
	return start, end, nil
}

func (c *Compiler) patchSplit(split, body, exit StateID, greedy bool) error {
	if greedy {
		return c.builder.PatchSplit(split, body, exit)
	}
	return c.builder.PatchSplit(split, exit, body)
}

// compileEmptyMatch compiles an epsilon transition (matches without consuming input)
func (c *Compiler) compileEmptyMatch() (start, end StateID, err error) {
	id := c.builder.AddEpsilon(InvalidState)
	return id, id, nil
}
