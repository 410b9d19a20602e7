package prefilter

import (
	"bytes"

	"github.com/coregx/ahocorasick"

	"github.com/coregx/rebound/literal"
)

// LiteralSet finds the leftmost occurrence of any of several literals.
// Among literals starting at the same position the earliest in priority
// order wins, which is the leftmost-first choice for an alternation.
type LiteralSet struct {
	auto     *ahocorasick.Automaton
	patterns [][]byte
	maxLen   int
}

// NewLiteralSet compiles patterns, in priority order, into an Aho-Corasick
// automaton.
func NewLiteralSet(patterns [][]byte) (*LiteralSet, error) {
	builder := ahocorasick.NewBuilder()
	maxLen := 0
	for _, p := range patterns {
		builder.AddPattern(p)
		maxLen = max(maxLen, len(p))
	}
	auto, err := builder.Build()
	if err != nil {
		return nil, err
	}
	return &LiteralSet{auto: auto, patterns: patterns, maxLen: maxLen}, nil
}

// IsMatch reports whether any literal occurs in haystack.
func (s *LiteralSet) IsMatch(haystack []byte) bool {
	return s.auto.IsMatch(haystack)
}

// Find returns the bounds of the leftmost literal occurrence at or after
// at, or -1, -1.
//
// The automaton reports the occurrence that ends first. A literal starting
// earlier must end no sooner, so it starts within maxLen bytes of that end;
// those positions are checked directly.
func (s *LiteralSet) Find(haystack []byte, at int) (int, int) {
	if at < 0 || at >= len(haystack) {
		return -1, -1
	}
	m := s.auto.Find(haystack, at)
	if m == nil {
		return -1, -1
	}
	for p := max(at, m.End-s.maxLen); p <= m.Start; p++ {
		rest := haystack[p:]
		for _, lit := range s.patterns {
			if bytes.HasPrefix(rest, lit) {
				return p, p + len(lit)
			}
		}
	}
	return m.Start, m.End
}

// acPrefilter searches for any of several literal prefixes.
type acPrefilter struct {
	set *LiteralSet
}

func newAhoCorasickPrefilter(seq *literal.Seq) (*acPrefilter, error) {
	set, err := NewLiteralSet(seq.Bytes())
	if err != nil {
		return nil, err
	}
	return &acPrefilter{set: set}, nil
}

// Find implements Prefilter.Find.
func (p *acPrefilter) Find(haystack []byte, start int) int {
	s, _ := p.set.Find(haystack, start)
	return s
}

// FindMatch implements MatchFinder.
func (p *acPrefilter) FindMatch(haystack []byte, start int) (int, int) {
	return p.set.Find(haystack, start)
}

// IsComplete implements Prefilter.IsComplete. The literals of a prefix set
// have different lengths, so a hit always needs verification.
func (p *acPrefilter) IsComplete() bool {
	return false
}

// LiteralLen implements Prefilter.LiteralLen.
func (p *acPrefilter) LiteralLen() int {
	return 0
}
