package literal

import (
	"bytes"
	"unicode/utf8"

	"github.com/coregx/rebound/syntax"
)

// ExtractorConfig bounds literal extraction.
type ExtractorConfig struct {
	// MaxLiterals is the largest set size kept. A concatenation that would
	// exceed it stops growing and marks its literals inexact; an alternation
	// that exceeds it yields nothing.
	MaxLiterals int

	// MaxLiteralLen truncates longer literals, making them inexact.
	MaxLiteralLen int

	// MaxClassSize is the largest class (counted in runes) expanded into
	// one literal per rune.
	MaxClassSize int
}

// DefaultConfig returns the extraction limits used by the engine.
func DefaultConfig() ExtractorConfig {
	return ExtractorConfig{
		MaxLiterals:   64,
		MaxLiteralLen: 64,
		MaxClassSize:  10,
	}
}

// Extractor extracts literal sequences from validated syntax trees.
type Extractor struct {
	config ExtractorConfig
}

// New creates a new literal extractor with the given configuration.
func New(config ExtractorConfig) *Extractor {
	return &Extractor{config: config}
}

// ExtractPrefixes returns literals such that every match of n begins with
// one of them. Literals are ordered by match priority: for a pattern made
// only of literals, alternations and repeats, the first complete literal
// found at a position is the one a backtracking search would report.
//
// An empty Seq means no finite prefix set exists within the limits. A Seq
// containing the empty literal exists but is useless as a prefilter.
//
// Example:
//
//	seq := extractor.ExtractPrefixes(info.Root) // for "(foo|bar)baz"
//	// seq = ["foobaz", "barbaz"], both complete
func (e *Extractor) ExtractPrefixes(n *syntax.Node) *Seq {
	lits, ok := e.prefixes(n)
	if !ok {
		return NewSeq()
	}
	return NewSeq(dedup(lits)...)
}

// Exact returns the literal strings of n in priority order when n matches
// exactly that set of strings, with no assertions, no capture groups and
// no empty member. ok is false otherwise.
func (e *Extractor) Exact(n *syntax.Node) (lits [][]byte, ok bool) {
	plain := true
	syntax.Walk(n, func(c *syntax.Node) bool {
		switch c.Op {
		case syntax.OpAnchor, syntax.OpGroup, syntax.OpBackref:
			plain = false
		}
		return plain
	})
	if !plain {
		return nil, false
	}
	seq := e.ExtractPrefixes(n)
	if seq.IsEmpty() || !seq.AllComplete() || seq.MinLen() == 0 {
		return nil, false
	}
	return seq.Bytes(), true
}

// prefixes computes the prefix set of n. ok is false when the set is
// unbounded or too large.
func (e *Extractor) prefixes(n *syntax.Node) ([]Literal, bool) {
	switch n.Op {
	case syntax.OpEmpty, syntax.OpAnchor:
		return []Literal{NewLiteral(nil, true)}, true

	case syntax.OpLiteral:
		if !utf8.ValidRune(n.Rune) {
			return nil, false
		}
		if !n.Fold {
			return []Literal{NewLiteral(utf8.AppendRune(nil, n.Rune), true)}, true
		}
		return e.runeSet(syntax.FoldOrbit(n.Rune))

	case syntax.OpClass:
		count := 0
		for _, r := range n.Class {
			count += int(r.Hi-r.Lo) + 1
			if count > e.config.MaxClassSize {
				return nil, false
			}
		}
		runes := make([]rune, 0, count)
		for _, r := range n.Class {
			for c := r.Lo; c <= r.Hi; c++ {
				runes = append(runes, c)
			}
		}
		return e.runeSet(runes)

	case syntax.OpGroup:
		return e.prefixes(n.Subs[0])

	case syntax.OpConcat:
		cur := []Literal{NewLiteral(nil, true)}
		for _, sub := range n.Subs {
			next, ok := e.prefixes(sub)
			if !ok {
				return markInexact(cur), true
			}
			var grew bool
			cur, grew = e.cross(cur, next)
			if !grew {
				break
			}
		}
		return cur, true

	case syntax.OpAlternate:
		var out []Literal
		for _, sub := range n.Subs {
			lits, ok := e.prefixes(sub)
			if !ok {
				return nil, false
			}
			out = append(out, lits...)
			if len(out) > e.config.MaxLiterals {
				return nil, false
			}
		}
		return out, true

	case syntax.OpRepeat:
		return e.repeat(n)
	}
	// AnyChar, AnyCharNotNL and backreferences.
	return nil, false
}

func (e *Extractor) repeat(n *syntax.Node) ([]Literal, bool) {
	sub, ok := e.prefixes(n.Subs[0])
	if !ok {
		return nil, false
	}
	if n.Min == 0 {
		body := sub
		if n.Max != 1 {
			body = markInexact(cloneLits(sub))
		}
		empty := []Literal{NewLiteral(nil, true)}
		if n.Greedy {
			return append(cloneLits(body), empty...), true
		}
		return append(empty, body...), true
	}

	cur := []Literal{NewLiteral(nil, true)}
	for i := 0; i < n.Min; i++ {
		var grew bool
		cur, grew = e.cross(cur, sub)
		if !grew {
			return cur, true
		}
	}
	if n.Max != n.Min {
		cur = markInexact(cur)
	}
	return cur, true
}

// cross appends every literal of next to every complete literal of cur.
// Inexact members of cur are carried unchanged. grew is false when nothing
// remains complete or the product would exceed MaxLiterals, in which case
// cur is returned with all members inexact.
func (e *Extractor) cross(cur, next []Literal) (out []Literal, grew bool) {
	size := 0
	for _, c := range cur {
		if c.Complete {
			size += len(next)
		} else {
			size++
		}
	}
	if size > e.config.MaxLiterals {
		return markInexact(cur), false
	}

	out = make([]Literal, 0, size)
	complete := false
	for _, c := range cur {
		if !c.Complete {
			out = append(out, c)
			continue
		}
		for _, x := range next {
			b := make([]byte, 0, len(c.Bytes)+len(x.Bytes))
			b = append(append(b, c.Bytes...), x.Bytes...)
			lit := NewLiteral(b, x.Complete)
			if len(lit.Bytes) > e.config.MaxLiteralLen {
				lit = NewLiteral(lit.Bytes[:e.config.MaxLiteralLen], false)
			}
			complete = complete || lit.Complete
			out = append(out, lit)
		}
	}
	out = dedup(out)
	return out, complete
}

func (e *Extractor) runeSet(runes []rune) ([]Literal, bool) {
	if len(runes) > e.config.MaxClassSize {
		return nil, false
	}
	out := make([]Literal, 0, len(runes))
	for _, r := range runes {
		if !utf8.ValidRune(r) {
			return nil, false
		}
		out = append(out, NewLiteral(utf8.AppendRune(nil, r), true))
	}
	return out, true
}

func markInexact(lits []Literal) []Literal {
	for i := range lits {
		lits[i].Complete = false
	}
	return dedup(lits)
}

func cloneLits(lits []Literal) []Literal {
	return append([]Literal(nil), lits...)
}

// dedup drops repeated literals, keeping the first occurrence. A complete
// and an inexact copy of the same bytes merge into the inexact one at the
// earlier position.
func dedup(lits []Literal) []Literal {
	out := lits[:0:0]
	for _, lit := range lits {
		dup := false
		for j := range out {
			if bytes.Equal(out[j].Bytes, lit.Bytes) {
				out[j].Complete = out[j].Complete && lit.Complete
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, lit)
		}
	}
	return out
}
