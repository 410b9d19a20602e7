package syntax

import (
	"sync"
	"unicode"
)

// classCache memoizes flattened Unicode tables. Entries are never mutated
// after insertion; callers copy before modifying.
var classCache sync.Map // map[string][]RuneRange

// LookupClass resolves a Unicode class name such as "L", "Lu", "Greek" or
// "Any" to canonical rune ranges. The returned slice must not be modified.
func LookupClass(name string) ([]RuneRange, bool) {
	if v, ok := classCache.Load(name); ok {
		return v.([]RuneRange), true
	}
	var rs []RuneRange
	switch {
	case name == "Any":
		rs = []RuneRange{{0, MaxRune}}
	case unicode.Categories[name] != nil:
		rs = rangesFromTable(unicode.Categories[name])
	case unicode.Scripts[name] != nil:
		rs = rangesFromTable(unicode.Scripts[name])
	default:
		return nil, false
	}
	v, _ := classCache.LoadOrStore(name, rs)
	return v.([]RuneRange), true
}

// resolveProps unions the named classes of a parsed class node with its
// literal ranges, then applies case folding and negation. The result is
// canonical and ready for compilation.
func resolveProps(n *Node) ([]RuneRange, error) {
	rs := make([]RuneRange, len(n.Class), len(n.Class)+8)
	copy(rs, n.Class)
	for _, p := range n.Props {
		tbl, ok := LookupClass(p.Name)
		if !ok {
			return nil, &CompileError{Kind: ErrUnknownClass, Pos: p.Pos, Detail: p.Name}
		}
		if p.Negated {
			rs = append(rs, NegateRanges(tbl)...)
		} else {
			rs = append(rs, tbl...)
		}
	}
	rs = CanonicalizeRanges(rs)
	if n.Fold {
		rs = FoldRanges(rs)
	}
	if n.Negated {
		rs = NegateRanges(rs)
	}
	return rs, nil
}
