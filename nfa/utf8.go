package nfa

import (
	"unicode/utf8"

	"github.com/coregx/rebound/syntax"
)

// byteRange is one byte position of a UTF-8 sequence.
type byteRange struct {
	lo, hi byte
}

// utf8Sequence matches every encoding of a contiguous scalar range whose
// encodings share a length and differ only within per-byte ranges.
type utf8Sequence []byteRange

const (
	surrogateLo = 0xD800
	surrogateHi = 0xDFFF
)

// utf8Sequences splits [lo, hi] into byte-range sequences. Surrogates are
// excluded because they have no valid encoding.
func utf8Sequences(lo, hi rune) []utf8Sequence {
	var out []utf8Sequence
	type span struct{ lo, hi rune }
	stack := []span{{lo, hi}}
	maxScalar := [...]rune{0x7F, 0x7FF, 0xFFFF}

	for len(stack) > 0 {
		r := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

	inner:
		for {
			if r.lo <= surrogateHi && r.hi >= surrogateLo {
				if r.hi > surrogateHi {
					stack = append(stack, span{surrogateHi + 1, r.hi})
				}
				r.hi = surrogateLo - 1
			}
			if r.lo > r.hi {
				break
			}

			// Split at encoding length boundaries.
			for _, m := range maxScalar {
				if r.lo <= m && m < r.hi {
					stack = append(stack, span{m + 1, r.hi})
					r.hi = m
					continue inner
				}
			}

			if r.hi < utf8.RuneSelf {
				out = append(out, utf8Sequence{{byte(r.lo), byte(r.hi)}})
				break
			}

			// Split until only the last bytes vary independently.
			for i := uint(1); i < utf8.UTFMax; i++ {
				m := rune(1)<<(6*i) - 1
				if r.lo&^m != r.hi&^m {
					if r.lo&m != 0 {
						stack = append(stack, span{(r.lo | m) + 1, r.hi})
						r.hi = r.lo | m
						continue inner
					}
					if r.hi&m != m {
						stack = append(stack, span{r.hi &^ m, r.hi})
						r.hi = r.hi&^m - 1
						continue inner
					}
				}
			}

			var a, b [utf8.UTFMax]byte
			n := utf8.EncodeRune(a[:], r.lo)
			utf8.EncodeRune(b[:], r.hi)
			seq := make(utf8Sequence, n)
			for i := 0; i < n; i++ {
				seq[i] = byteRange{a[i], b[i]}
			}
			out = append(out, seq)
			break
		}
	}
	return out
}

// utf8Trie merges sequences that share leading byte ranges so the compiled
// automaton has one state per distinct prefix.
type utf8Trie struct {
	children []utf8TrieEdge
}

type utf8TrieEdge struct {
	r     byteRange
	child *utf8Trie // nil for the last byte
}

func (t *utf8Trie) insert(seq utf8Sequence) {
	node := t
	for i, r := range seq {
		node = node.edge(r, i == len(seq)-1)
	}
}

// edge returns the child reached through r, adding the edge if needed. Leaf
// edges have a nil child.
func (t *utf8Trie) edge(r byteRange, leaf bool) *utf8Trie {
	for _, e := range t.children {
		if e.r == r && (e.child == nil) == leaf {
			return e.child
		}
	}
	var child *utf8Trie
	if !leaf {
		child = &utf8Trie{}
	}
	t.children = append(t.children, utf8TrieEdge{r: r, child: child})
	return child
}

// classSequences returns the trie for a set of canonical rune ranges.
func classSequences(ranges []syntax.RuneRange) *utf8Trie {
	root := &utf8Trie{}
	for _, rr := range ranges {
		for _, seq := range utf8Sequences(rr.Lo, rr.Hi) {
			root.insert(seq)
		}
	}
	return root
}
