package prog

import (
	"github.com/coregx/rebound/syntax"
)

type compiler struct {
	p     *Program
	loops int
}

// Compile lowers a validated tree into backtracking bytecode.
//
// Alternation and repetition are expressed with InstSplit, whose Out branch
// has priority over Arg. Greedy repeats put the loop body on Out, lazy repeats
// put the exit on Out. The whole match is bracketed by saves to slots 0 and 1.
func Compile(info *syntax.Info) (*Program, error) {
	c := &compiler{
		p: &Program{
			NumCaptures:  info.CaptureCount,
			CaptureNames: append([]string(nil), info.CaptureNames...),
			HasBackrefs:  info.NeedsBacktrack,
			Anchored:     info.AnchoredStart,
		},
	}
	c.emit(Inst{Op: InstSave, Arg: 0})
	c.gen(info.Root)
	c.emit(Inst{Op: InstSave, Arg: 1})
	c.emit(Inst{Op: InstMatch})
	c.p.NumLoops = c.loops
	if err := c.p.Validate(); err != nil {
		return nil, err
	}
	return c.p, nil
}

// emit appends inst with Out defaulting to the next instruction.
func (c *compiler) emit(inst Inst) int {
	pc := len(c.p.Insts)
	if inst.Op != InstMatch && inst.Op != InstFail && inst.Out == 0 {
		inst.Out = pc + 1
	}
	c.p.Insts = append(c.p.Insts, inst)
	return pc
}

func (c *compiler) pc() int {
	return len(c.p.Insts)
}

func (c *compiler) gen(n *syntax.Node) {
	switch n.Op {
	case syntax.OpEmpty:

	case syntax.OpLiteral:
		if n.Fold {
			orbit := syntax.FoldOrbit(n.Rune)
			rs := make([]syntax.RuneRange, len(orbit))
			for i, r := range orbit {
				rs[i] = syntax.RuneRange{Lo: r, Hi: r}
			}
			c.emit(Inst{Op: InstRune, Ranges: syntax.CanonicalizeRanges(rs), Fold: true})
			return
		}
		c.emit(Inst{Op: InstRune1, Rune: n.Rune})

	case syntax.OpClass:
		if len(n.Class) == 0 {
			c.emit(Inst{Op: InstFail})
			return
		}
		c.emit(Inst{Op: InstRune, Ranges: n.Class})

	case syntax.OpAnyChar:
		c.emit(Inst{Op: InstRuneAny})

	case syntax.OpAnyCharNotNL:
		c.emit(Inst{Op: InstRuneAnyNotNL})

	case syntax.OpConcat:
		for _, s := range n.Subs {
			c.gen(s)
		}

	case syntax.OpAlternate:
		var jumps []int
		last := len(n.Subs) - 1
		for i, s := range n.Subs {
			if i == last {
				c.gen(s)
				break
			}
			split := c.emit(Inst{Op: InstSplit})
			c.gen(s)
			jumps = append(jumps, c.emit(Inst{Op: InstJump}))
			c.p.Insts[split].Arg = c.pc()
		}
		end := c.pc()
		for _, j := range jumps {
			c.p.Insts[j].Out = end
		}

	case syntax.OpGroup:
		c.emit(Inst{Op: InstSave, Arg: 2 * n.Cap})
		c.gen(n.Subs[0])
		c.emit(Inst{Op: InstSave, Arg: 2*n.Cap + 1})

	case syntax.OpAnchor:
		c.emit(Inst{Op: InstAssert, Anchor: n.Anchor})

	case syntax.OpBackref:
		c.emit(Inst{Op: InstBackref, Arg: n.Cap, Fold: n.Fold})

	case syntax.OpRepeat:
		c.genRepeat(n)

	default:
		c.emit(Inst{Op: InstFail})
	}
}

func (c *compiler) genRepeat(n *syntax.Node) {
	sub := n.Subs[0]
	for i := 0; i < n.Min; i++ {
		c.gen(sub)
	}
	if n.Max < 0 {
		c.genStar(sub, n.Greedy, n.EmptyLoop)
		return
	}
	var splits []int
	for i := n.Min; i < n.Max; i++ {
		splits = append(splits, c.emit(Inst{Op: InstSplit}))
		c.gen(sub)
	}
	end := c.pc()
	for _, s := range splits {
		c.setSplit(s, s+1, end, n.Greedy)
	}
}

// genStar emits L: split(body, exit); body; jmp L.
//
// A nullable body is emitted as (x+)? with a loop guard instead:
//
//	split(B, exit)
//	B: loopenter; body; loopcheck (exit when empty); split(B, exit)
func (c *compiler) genStar(sub *syntax.Node, greedy, emptyLoop bool) {
	if !emptyLoop {
		loop := c.emit(Inst{Op: InstSplit})
		c.gen(sub)
		c.emit(Inst{Op: InstJump, Out: loop})
		c.setSplit(loop, loop+1, c.pc(), greedy)
		return
	}
	slot := 2*c.p.NumCaptures + c.loops
	c.loops++
	enter := c.emit(Inst{Op: InstSplit})
	body := c.emit(Inst{Op: InstLoopEnter, Arg: slot})
	c.gen(sub)
	check := c.emit(Inst{Op: InstLoopCheck, Arg: slot})
	again := c.emit(Inst{Op: InstSplit})
	exit := c.pc()
	c.p.Insts[check].Exit = exit
	c.setSplit(enter, body, exit, greedy)
	c.setSplit(again, body, exit, greedy)
}

func (c *compiler) setSplit(pc, body, exit int, greedy bool) {
	if greedy {
		c.p.Insts[pc].Out = body
		c.p.Insts[pc].Arg = exit
		return
	}
	c.p.Insts[pc].Out = exit
	c.p.Insts[pc].Arg = body
}
