// Package prefilter finds the positions where a match could start, so the
// matching engines skip text that cannot contain one.
//
// FromPrefixes picks a scanner from the prefix literals of a pattern:
//
//	one byte                        memchr
//	one literal, or a common prefix memmem
//	two or three single bytes       memchr2, memchr3
//	anything else                   Aho-Corasick
//
// FromFirstBytes covers patterns with no useful literals but a small set of
// possible first bytes, such as `\d+`.
package prefilter

import (
	"github.com/coregx/rebound/literal"
	"github.com/coregx/rebound/simd"
)

// Prefilter reports candidate match starts. A candidate is not a match:
// the caller runs an engine from it unless IsComplete holds.
type Prefilter interface {
	// Find returns the first candidate at or after start, or -1.
	Find(haystack []byte, start int) int

	// IsComplete reports that every candidate is a match of exactly
	// LiteralLen bytes.
	IsComplete() bool

	// LiteralLen is the match length when IsComplete holds, else 0.
	LiteralLen() int
}

// MatchFinder is implemented by prefilters that know where the literal
// they found ends.
type MatchFinder interface {
	FindMatch(haystack []byte, start int) (int, int)
}

// A shared prefix shorter than this scans slower with memmem than the
// whole set does with Aho-Corasick.
const minSharedPrefix = 3

// FromPrefixes returns a prefilter for a set of prefix literals, or nil when
// the set is empty or holds the empty string. prefixes is not modified.
func FromPrefixes(prefixes *literal.Seq) Prefilter {
	if prefixes.IsEmpty() || prefixes.ContainsEmpty() {
		return nil
	}
	seq := prefixes.Clone()
	seq.Minimize()

	switch {
	case seq.Len() == 1:
		lit := seq.Get(0)
		return newSubstring(lit.Bytes, lit.Complete)
	case len(seq.LongestCommonPrefix()) >= minSharedPrefix:
		return newSubstring(seq.LongestCommonPrefix(), false)
	case seq.MinLen() == 1 && seq.Len() <= 3:
		// After Minimize a one-byte literal subsumes any literal it prefixes,
		// so the set is made of distinct single bytes.
		first := make([]byte, seq.Len())
		for i := range first {
			first[i] = seq.Get(i).Bytes[0]
		}
		return NewByteSetPrefilter(simd.NewByteTable(first...))
	}
	pf, err := newAhoCorasickPrefilter(seq)
	if err != nil {
		return nil
	}
	return pf
}

// substring scans for one literal, with memchr when it is a single byte.
type substring struct {
	needle   []byte
	complete bool
}

func newSubstring(needle []byte, complete bool) *substring {
	return &substring{needle: append([]byte(nil), needle...), complete: complete}
}

func (p *substring) Find(haystack []byte, start int) int {
	if start < 0 || start >= len(haystack) {
		return -1
	}
	var i int
	if len(p.needle) == 1 {
		i = simd.Memchr(haystack[start:], p.needle[0])
	} else {
		i = simd.Memmem(haystack[start:], p.needle)
	}
	if i < 0 {
		return -1
	}
	return start + i
}

func (p *substring) IsComplete() bool { return p.complete }

func (p *substring) LiteralLen() int {
	if !p.complete {
		return 0
	}
	return len(p.needle)
}
