// Package prog compiles validated syntax trees into backtracking bytecode and
// executes that bytecode with an explicit-stack backtracking VM.
//
// The bytecode is rune-oriented: each consuming instruction decodes one UTF-8
// rune from the input. Invalid UTF-8 never matches a consuming instruction, so
// results agree with the byte-oriented automata in package nfa.
//
// A Program is immutable once Compile returns and can be shared by any number
// of goroutines. A Backtracker holds per-search scratch space and must not be
// used concurrently.
package prog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/coregx/rebound/syntax"
)

// InstOp is a bytecode operation.
type InstOp uint8

const (
	// InstFail never matches.
	InstFail InstOp = iota

	// InstMatch reports a successful match.
	InstMatch

	// InstRune1 consumes one rune equal to Inst.Rune.
	InstRune1

	// InstRune consumes one rune contained in Inst.Ranges.
	InstRune

	// InstRuneAny consumes any valid rune.
	InstRuneAny

	// InstRuneAnyNotNL consumes any valid rune except '\n'.
	InstRuneAnyNotNL

	// InstSplit continues at Out and pushes Arg as the lower-priority alternative.
	InstSplit

	// InstJump continues at Out.
	InstJump

	// InstSave records the current position in slot Arg.
	InstSave

	// InstAssert checks the zero-width assertion Inst.Anchor.
	InstAssert

	// InstBackref consumes the text captured by group Arg.
	InstBackref

	// InstLoopEnter records the current position in loop slot Arg.
	InstLoopEnter

	// InstLoopCheck continues at Exit when no input was consumed since the
	// matching InstLoopEnter, so an empty iteration leaves the loop instead
	// of repeating.
	InstLoopCheck
)

// String returns the mnemonic of the op.
func (op InstOp) String() string {
	switch op {
	case InstFail:
		return "fail"
	case InstMatch:
		return "match"
	case InstRune1:
		return "rune1"
	case InstRune:
		return "rune"
	case InstRuneAny:
		return "any"
	case InstRuneAnyNotNL:
		return "anynotnl"
	case InstSplit:
		return "split"
	case InstJump:
		return "jmp"
	case InstSave:
		return "save"
	case InstAssert:
		return "assert"
	case InstBackref:
		return "backref"
	case InstLoopEnter:
		return "loopenter"
	case InstLoopCheck:
		return "loopcheck"
	default:
		return fmt.Sprintf("op(%d)", op)
	}
}

// Inst is a single bytecode instruction.
type Inst struct {
	Op     InstOp
	Out    int
	Arg    int
	Rune   rune
	Ranges []syntax.RuneRange
	Fold   bool
	Anchor syntax.AnchorKind

	// Exit is the loop exit of an InstLoopCheck.
	Exit int
}

// Program is compiled backtracking bytecode.
type Program struct {
	Insts []Inst
	Start int

	// NumCaptures counts capture groups including group 0.
	NumCaptures int

	// NumLoops is the number of loop slots used by InstLoopEnter/InstLoopCheck.
	// They are stored after the 2*NumCaptures capture slots.
	NumLoops int

	CaptureNames []string
	HasBackrefs  bool
	Anchored     bool
}

// NumSlots returns the length of the slot array a search needs.
func (p *Program) NumSlots() int {
	return 2*p.NumCaptures + p.NumLoops
}

// Len returns the number of instructions.
func (p *Program) Len() int {
	return len(p.Insts)
}

// Validate checks that every jump target is inside the program.
func (p *Program) Validate() error {
	n := len(p.Insts)
	if p.Start < 0 || p.Start >= n {
		return fmt.Errorf("prog: start %d out of range [0,%d)", p.Start, n)
	}
	for pc, inst := range p.Insts {
		switch inst.Op {
		case InstMatch, InstFail:
			continue
		case InstSplit:
			if inst.Arg < 0 || inst.Arg >= n {
				return fmt.Errorf("prog: inst %d: split target %d out of range", pc, inst.Arg)
			}
		case InstSave:
			if inst.Arg < 0 || inst.Arg >= 2*p.NumCaptures {
				return fmt.Errorf("prog: inst %d: save slot %d out of range", pc, inst.Arg)
			}
		case InstBackref:
			if inst.Arg <= 0 || inst.Arg >= p.NumCaptures {
				return fmt.Errorf("prog: inst %d: backref group %d out of range", pc, inst.Arg)
			}
		case InstLoopEnter, InstLoopCheck:
			if inst.Arg < 2*p.NumCaptures || inst.Arg >= p.NumSlots() {
				return fmt.Errorf("prog: inst %d: loop slot %d out of range", pc, inst.Arg)
			}
			if inst.Op == InstLoopCheck && (inst.Exit < 0 || inst.Exit >= n) {
				return fmt.Errorf("prog: inst %d: loop exit %d out of range", pc, inst.Exit)
			}
		}
		if inst.Out < 0 || inst.Out >= n {
			return fmt.Errorf("prog: inst %d: out %d out of range", pc, inst.Out)
		}
	}
	return nil
}

// String dumps the program one instruction per line.
func (p *Program) String() string {
	var sb strings.Builder
	for pc, inst := range p.Insts {
		mark := "  "
		if pc == p.Start {
			mark = "* "
		}
		sb.WriteString(mark)
		sb.WriteString(strconv.Itoa(pc))
		sb.WriteString("\t")
		sb.WriteString(inst.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// String renders one instruction.
func (i *Inst) String() string {
	switch i.Op {
	case InstFail, InstMatch:
		return i.Op.String()
	case InstRune1:
		return fmt.Sprintf("rune1 %q -> %d", i.Rune, i.Out)
	case InstRune:
		var sb strings.Builder
		for _, r := range i.Ranges {
			if r.Lo == r.Hi {
				fmt.Fprintf(&sb, "%q", r.Lo)
			} else {
				fmt.Fprintf(&sb, "%q-%q", r.Lo, r.Hi)
			}
		}
		return fmt.Sprintf("rune [%s] -> %d", sb.String(), i.Out)
	case InstSplit:
		return fmt.Sprintf("split %d, %d", i.Out, i.Arg)
	case InstJump:
		return fmt.Sprintf("jmp %d", i.Out)
	case InstSave, InstLoopEnter:
		return fmt.Sprintf("%s %d -> %d", i.Op, i.Arg, i.Out)
	case InstLoopCheck:
		return fmt.Sprintf("%s %d -> %d, %d", i.Op, i.Arg, i.Out, i.Exit)
	case InstAssert:
		return fmt.Sprintf("assert %s -> %d", i.Anchor, i.Out)
	case InstBackref:
		if i.Fold {
			return fmt.Sprintf("backref/i %d -> %d", i.Arg, i.Out)
		}
		return fmt.Sprintf("backref %d -> %d", i.Arg, i.Out)
	default:
		return fmt.Sprintf("%s -> %d", i.Op, i.Out)
	}
}
