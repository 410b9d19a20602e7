package syntax

import (
	"sort"
	"unicode"
)

// RuneRange is an inclusive range of runes.
type RuneRange struct {
	Lo, Hi rune
}

const (
	// MaxRune is the largest valid Unicode code point.
	MaxRune = unicode.MaxRune

	minFold = 0x0041
	maxFold = 0x1e943
)

// CanonicalizeRanges sorts ranges and merges overlapping or adjacent ones.
// The input slice is reused.
func CanonicalizeRanges(rs []RuneRange) []RuneRange {
	if len(rs) <= 1 {
		return rs
	}
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].Lo != rs[j].Lo {
			return rs[i].Lo < rs[j].Lo
		}
		return rs[i].Hi < rs[j].Hi
	})
	w := 0
	for _, r := range rs {
		if w > 0 && r.Lo <= rs[w-1].Hi+1 {
			if r.Hi > rs[w-1].Hi {
				rs[w-1].Hi = r.Hi
			}
			continue
		}
		rs[w] = r
		w++
	}
	return rs[:w]
}

// NegateRanges returns the complement of canonical ranges over [0, MaxRune].
func NegateRanges(rs []RuneRange) []RuneRange {
	out := make([]RuneRange, 0, len(rs)+1)
	next := rune(0)
	for _, r := range rs {
		if r.Lo > next {
			out = append(out, RuneRange{next, r.Lo - 1})
		}
		next = r.Hi + 1
	}
	if next <= MaxRune {
		out = append(out, RuneRange{next, MaxRune})
	}
	return out
}

// FoldRanges adds the simple case-fold orbit of every rune in rs and returns
// the canonical result.
func FoldRanges(rs []RuneRange) []RuneRange {
	out := make([]RuneRange, len(rs), len(rs)*2)
	copy(out, rs)
	for _, r := range rs {
		lo, hi := r.Lo, r.Hi
		if lo < minFold {
			lo = minFold
		}
		if hi > maxFold {
			hi = maxFold
		}
		for c := lo; c <= hi; c++ {
			for f := unicode.SimpleFold(c); f != c; f = unicode.SimpleFold(f) {
				if f < r.Lo || f > r.Hi {
					out = append(out, RuneRange{f, f})
				}
			}
		}
	}
	return CanonicalizeRanges(out)
}

// FoldOrbit returns r and every rune that simple-folds to it, sorted.
func FoldOrbit(r rune) []rune {
	orbit := []rune{r}
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		orbit = append(orbit, f)
	}
	sort.Slice(orbit, func(i, j int) bool { return orbit[i] < orbit[j] })
	return orbit
}

// EqualFold reports whether a and b are equal under simple case folding.
func EqualFold(a, b rune) bool {
	if a == b {
		return true
	}
	for f := unicode.SimpleFold(a); f != a; f = unicode.SimpleFold(f) {
		if f == b {
			return true
		}
	}
	return false
}

// ContainsRune reports whether canonical ranges contain r.
func ContainsRune(rs []RuneRange, r rune) bool {
	if len(rs) <= 8 {
		for _, rr := range rs {
			if r < rr.Lo {
				return false
			}
			if r <= rr.Hi {
				return true
			}
		}
		return false
	}
	i := sort.Search(len(rs), func(i int) bool { return rs[i].Hi >= r })
	return i < len(rs) && rs[i].Lo <= r
}

// rangesFromTable flattens a unicode.RangeTable into rune ranges.
func rangesFromTable(t *unicode.RangeTable) []RuneRange {
	var out []RuneRange
	for _, r := range t.R16 {
		lo, hi, stride := rune(r.Lo), rune(r.Hi), rune(r.Stride)
		if stride == 1 {
			out = append(out, RuneRange{lo, hi})
			continue
		}
		for c := lo; c <= hi; c += stride {
			out = append(out, RuneRange{c, c})
		}
	}
	for _, r := range t.R32 {
		lo, hi, stride := rune(r.Lo), rune(r.Hi), rune(r.Stride)
		if stride == 1 {
			out = append(out, RuneRange{lo, hi})
			continue
		}
		for c := lo; c <= hi; c += stride {
			out = append(out, RuneRange{c, c})
		}
	}
	return CanonicalizeRanges(out)
}

// Perl and POSIX class tables. All ASCII.
var (
	perlDigit = []RuneRange{{'0', '9'}}
	perlSpace = []RuneRange{{'\t', '\n'}, {'\f', '\r'}, {' ', ' '}}
	perlWord  = []RuneRange{{'0', '9'}, {'A', 'Z'}, {'_', '_'}, {'a', 'z'}}
)

var posixClasses = map[string][]RuneRange{
	"alnum":  {{'0', '9'}, {'A', 'Z'}, {'a', 'z'}},
	"alpha":  {{'A', 'Z'}, {'a', 'z'}},
	"ascii":  {{0, 0x7f}},
	"blank":  {{'\t', '\t'}, {' ', ' '}},
	"cntrl":  {{0, 0x1f}, {0x7f, 0x7f}},
	"digit":  {{'0', '9'}},
	"graph":  {{'!', '~'}},
	"lower":  {{'a', 'z'}},
	"print":  {{' ', '~'}},
	"punct":  {{'!', '/'}, {':', '@'}, {'[', '`'}, {'{', '~'}},
	"space":  {{'\t', '\r'}, {' ', ' '}},
	"upper":  {{'A', 'Z'}},
	"word":   {{'0', '9'}, {'A', 'Z'}, {'_', '_'}, {'a', 'z'}},
	"xdigit": {{'0', '9'}, {'A', 'F'}, {'a', 'f'}},
}

// IsWordByte reports whether b is an ASCII word character [0-9A-Za-z_].
func IsWordByte(b byte) bool {
	return 'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z' || '0' <= b && b <= '9' || b == '_'
}
