package prog

import (
	"bytes"
	"unicode/utf8"

	"github.com/coregx/rebound/syntax"
)

// Config bounds the work a Backtracker may do.
type Config struct {
	// StepLimit is the number of instructions a single search may execute
	// before it gives up with a *MatchError. Zero means no limit.
	StepLimit int

	// MaxVisitedBits limits the memoization bitset, which needs
	// Program.Len() * (len(input)+1) bits. Larger searches run without
	// memoization and rely on StepLimit. Zero disables memoization.
	MaxVisitedBits int
}

// DefaultConfig returns a 10M step budget and a 256KB visited bitset.
func DefaultConfig() Config {
	return Config{
		StepLimit:      10_000_000,
		MaxVisitedBits: 256 * 1024 * 8,
	}
}

type frameKind uint8

const (
	// frameExplore resumes execution at (pc, pos).
	frameExplore frameKind = iota

	// frameRestore puts the old value back into slot when unwound.
	frameRestore
)

type frame struct {
	kind frameKind
	pc   int
	pos  int // position for explore, old slot value for restore
	slot int
}

// Backtracker executes a Program by depth-first search with an explicit
// stack. Alternatives are explored in priority order, so the first match
// found is the leftmost-first match.
//
// When the program has no backreferences and the input is small enough, a
// bit vector over (pc, pos) pairs records states already explored. A state
// that failed once fails again, so each pair runs at most once and the search
// is O(len(prog) * len(input)). Otherwise the search is exponential in the
// worst case and bounded by Config.StepLimit.
//
// A Backtracker is not safe for concurrent use.
type Backtracker struct {
	prog   *Program
	config Config

	// visited is a bit vector: bit (pc*(inputLen+1) + pos) marks a visited pair.
	visited  []uint64
	inputLen int
	memo     bool

	stack []frame
	slots []int
	steps int
}

// NewBacktracker creates a backtracker for p.
func NewBacktracker(p *Program, config Config) *Backtracker {
	return &Backtracker{
		prog:   p,
		config: config,
		slots:  make([]int, p.NumSlots()),
	}
}

// Program returns the program being executed.
func (b *Backtracker) Program() *Program {
	return b.prog
}

// CanMemoize reports whether a search over haystackLen bytes runs with the
// visited bitset, which makes its running time linear.
func (b *Backtracker) CanMemoize(haystackLen int) bool {
	if b.prog.HasBackrefs || b.config.MaxVisitedBits <= 0 {
		return false
	}
	return b.prog.Len()*(haystackLen+1) <= b.config.MaxVisitedBits
}

// Steps returns the number of instructions executed by the last search.
func (b *Backtracker) Steps() int {
	return b.steps
}

// reset prepares for a search over haystackLen bytes.
func (b *Backtracker) reset(haystackLen int) {
	b.steps = 0
	b.inputLen = haystackLen
	b.memo = b.CanMemoize(haystackLen)
	if !b.memo {
		return
	}
	words := (b.prog.Len()*(haystackLen+1) + 63) / 64
	if cap(b.visited) >= words {
		b.visited = b.visited[:words]
		clear(b.visited)
	} else {
		b.visited = make([]uint64, words)
	}
}

// shouldVisit marks (pc, pos) and reports whether it was unmarked.
func (b *Backtracker) shouldVisit(pc, pos int) bool {
	idx := pc*(b.inputLen+1) + pos
	word, bit := idx/64, uint64(1)<<(idx%64)
	if b.visited[word]&bit != 0 {
		return false
	}
	b.visited[word] |= bit
	return true
}

// IsMatch reports whether the program matches anywhere in input.
func (b *Backtracker) IsMatch(input []byte) (bool, error) {
	return b.Search(input, 0, nil)
}

// Search finds the leftmost-first match starting at or after from. On success
// the capture positions are copied into slots (which may be shorter than
// 2*NumCaptures, or nil).
func (b *Backtracker) Search(input []byte, from int, slots []int) (bool, error) {
	return b.SearchWith(input, from, slots, nil)
}

// SearchWith is Search with a candidate function. next(pos) returns the
// smallest position >= pos where a match may start, or -1 when none can.
// A nil next tries every rune start.
//
// The visited bitset is shared by all start positions of one search: a
// (pc, pos) pair that failed from an earlier start fails from a later one too.
func (b *Backtracker) SearchWith(input []byte, from int, slots []int, next func(int) int) (bool, error) {
	b.reset(len(input))
	if from < 0 || from > len(input) {
		return false, nil
	}
	for start := from; start <= len(input); start++ {
		if next != nil {
			c := next(start)
			if c < 0 {
				return false, nil
			}
			start = c
		}
		if b.prog.Anchored && start > 0 {
			return false, nil
		}
		if !syntax.IsRuneStart(input, start) {
			continue
		}
		matched, err := b.run(input, start)
		if err != nil {
			return false, err
		}
		if matched {
			copy(slots, b.slots[:2*b.prog.NumCaptures])
			return true, nil
		}
	}
	return false, nil
}

// run explores the program from start. Slots are left holding the winning
// thread's captures on success.
//
//nolint:gocyclo,cyclop // instruction dispatch
func (b *Backtracker) run(input []byte, start int) (bool, error) {
	insts := b.prog.Insts
	for i := range b.slots {
		b.slots[i] = -1
	}
	b.stack = append(b.stack[:0], frame{kind: frameExplore, pc: b.prog.Start, pos: start})

outer:
	for len(b.stack) > 0 {
		f := b.stack[len(b.stack)-1]
		b.stack = b.stack[:len(b.stack)-1]
		if f.kind == frameRestore {
			b.slots[f.slot] = f.pos
			continue
		}

		pc, pos := f.pc, f.pos
		for {
			if b.memo && !b.shouldVisit(pc, pos) {
				continue outer
			}
			b.steps++
			if b.config.StepLimit > 0 && b.steps > b.config.StepLimit {
				return false, &MatchError{Kind: ErrResourceExhausted, Steps: b.steps, Limit: b.config.StepLimit}
			}

			inst := &insts[pc]
			switch inst.Op {
			case InstMatch:
				return true, nil

			case InstFail:
				continue outer

			case InstRune1:
				r, size := decodeRune(input, pos)
				if size == 0 || r != inst.Rune {
					continue outer
				}
				pos += size

			case InstRune:
				r, size := decodeRune(input, pos)
				if size == 0 || !syntax.ContainsRune(inst.Ranges, r) {
					continue outer
				}
				pos += size

			case InstRuneAny:
				_, size := decodeRune(input, pos)
				if size == 0 {
					continue outer
				}
				pos += size

			case InstRuneAnyNotNL:
				r, size := decodeRune(input, pos)
				if size == 0 || r == '\n' {
					continue outer
				}
				pos += size

			case InstSplit:
				b.stack = append(b.stack, frame{kind: frameExplore, pc: inst.Arg, pos: pos})

			case InstJump:

			case InstSave:
				b.stack = append(b.stack, frame{kind: frameRestore, slot: inst.Arg, pos: b.slots[inst.Arg]})
				b.slots[inst.Arg] = pos

			case InstAssert:
				if !inst.Anchor.Matches(input, pos) {
					continue outer
				}

			case InstBackref:
				lo, hi := b.slots[2*inst.Arg], b.slots[2*inst.Arg+1]
				if lo < 0 || hi < 0 {
					continue outer
				}
				n, ok := matchBackref(input, pos, input[lo:hi], inst.Fold)
				if !ok {
					continue outer
				}
				pos += n

			case InstLoopEnter:
				// With memoization an empty iteration revisits the loop head at
				// the same position, dies there and leaves through the exit
				// branch of the split that follows the check.
				if !b.memo {
					b.stack = append(b.stack, frame{kind: frameRestore, slot: inst.Arg, pos: b.slots[inst.Arg]})
					b.slots[inst.Arg] = pos
				}

			case InstLoopCheck:
				if !b.memo && b.slots[inst.Arg] == pos {
					pc = inst.Exit
					continue
				}

			default:
				continue outer
			}
			pc = inst.Out
		}
	}
	return false, nil
}

// decodeRune decodes the rune at pos. size is 0 at end of input and for
// invalid UTF-8.
func decodeRune(input []byte, pos int) (rune, int) {
	if pos >= len(input) {
		return 0, 0
	}
	if c := input[pos]; c < utf8.RuneSelf {
		return rune(c), 1
	}
	r, size := utf8.DecodeRune(input[pos:])
	if r == utf8.RuneError && size == 1 {
		return 0, 0
	}
	return r, size
}

// matchBackref matches captured text at input[pos:] and returns the number
// of bytes consumed.
func matchBackref(input []byte, pos int, captured []byte, fold bool) (int, bool) {
	if !fold {
		if bytes.HasPrefix(input[pos:], captured) {
			return len(captured), true
		}
		return 0, false
	}
	i, j := 0, pos
	for i < len(captured) {
		want, n := utf8.DecodeRune(captured[i:])
		got, m := decodeRune(input, j)
		if m == 0 || !syntax.EqualFold(want, got) {
			return 0, false
		}
		i += n
		j += m
	}
	return j - pos, true
}
