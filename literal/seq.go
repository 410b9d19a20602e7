// Package literal pulls literal byte strings out of analyzed syntax trees.
//
// A prefix Seq, whose members start every match, becomes a prefilter. A
// pattern that is exactly a literal or an alternation of literals is
// searched without an automaton at all.
package literal

import (
	"bytes"
	"fmt"
	"slices"
)

// Literal is one byte string a match may contain. Complete marks a literal
// that is the entire match text; look-around assertions are ignored when
// setting it, so a complete literal still needs its assertions checked.
type Literal struct {
	Bytes    []byte
	Complete bool
}

func NewLiteral(b []byte, complete bool) Literal {
	return Literal{Bytes: b, Complete: complete}
}

func (l Literal) Len() int { return len(l.Bytes) }

func (l Literal) String() string {
	return fmt.Sprintf("literal{%s, complete=%t}", l.Bytes, l.Complete)
}

// Seq is an ordered set of alternative literals. The nil Seq is empty and
// means extraction found nothing usable.
type Seq struct {
	lits []Literal
}

func NewSeq(lits ...Literal) *Seq { return &Seq{lits: lits} }

func (s *Seq) Len() int {
	if s == nil {
		return 0
	}
	return len(s.lits)
}

// Get panics when i is out of range.
func (s *Seq) Get(i int) Literal { return s.lits[i] }

func (s *Seq) IsEmpty() bool { return s.Len() == 0 }

// AllComplete is false for an empty Seq.
func (s *Seq) AllComplete() bool {
	return !s.IsEmpty() && !slices.ContainsFunc(s.lits, func(l Literal) bool { return !l.Complete })
}

// ContainsEmpty reports whether the empty string is a member, which makes
// every position a candidate.
func (s *Seq) ContainsEmpty() bool {
	return !s.IsEmpty() && slices.ContainsFunc(s.lits, func(l Literal) bool { return len(l.Bytes) == 0 })
}

// MinLen is 0 for an empty Seq.
func (s *Seq) MinLen() int {
	if s.IsEmpty() {
		return 0
	}
	return slices.MinFunc(s.lits, func(a, b Literal) int { return len(a.Bytes) - len(b.Bytes) }).Len()
}

// Minimize drops every literal that has a shorter member as a prefix.
// Wherever the longer one occurs the shorter one does too, at the same
// offset, so the set still finds every candidate. A member that absorbed
// a longer literal is no longer complete. Survivors are ordered shortest
// first, ties keeping their original order.
func (s *Seq) Minimize() {
	if s.IsEmpty() {
		return
	}
	slices.SortStableFunc(s.lits, func(a, b Literal) int { return len(a.Bytes) - len(b.Bytes) })
	out := s.lits[:0]
next:
	for _, l := range s.lits {
		for i := range out {
			if bytes.HasPrefix(l.Bytes, out[i].Bytes) {
				if len(l.Bytes) != len(out[i].Bytes) {
					out[i].Complete = false
				}
				continue next
			}
		}
		out = append(out, l)
	}
	s.lits = out
}

// LongestCommonPrefix returns a fresh copy of the prefix shared by all
// members, empty when there is none.
func (s *Seq) LongestCommonPrefix() []byte {
	if s.IsEmpty() {
		return []byte{}
	}
	p := s.lits[0].Bytes
	for _, l := range s.lits[1:] {
		n := 0
		for n < min(len(p), len(l.Bytes)) && p[n] == l.Bytes[n] {
			n++
		}
		p = p[:n]
	}
	return bytes.Clone(p)
}

// Bytes returns the member byte strings in order. They alias the Seq.
func (s *Seq) Bytes() [][]byte {
	if s.IsEmpty() {
		return nil
	}
	out := make([][]byte, len(s.lits))
	for i := range s.lits {
		out[i] = s.lits[i].Bytes
	}
	return out
}

// Clone copies the Seq and every member's bytes.
func (s *Seq) Clone() *Seq {
	if s == nil {
		return nil
	}
	c := &Seq{lits: slices.Clone(s.lits)}
	for i := range c.lits {
		c.lits[i].Bytes = bytes.Clone(c.lits[i].Bytes)
	}
	return c
}
