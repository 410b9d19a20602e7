package prefilter

import (
	"github.com/coregx/rebound/nfa"
	"github.com/coregx/rebound/simd"
)

// ByteSetPrefilter implements the Prefilter interface for patterns whose
// matches must start with a byte from a fixed set, such as the ASCII digits
// for `\d{3}-\d{4}` or the lead bytes of `[а-я]+`.
//
// It is used when literal extraction fails but the NFA's first-byte set is
// small. Sets of one to three bytes scan with memchr/memchr2/memchr3; larger
// sets use a table scan.
//
// This prefilter is NOT complete: a byte is only a candidate position.
type ByteSetPrefilter struct {
	table *simd.ByteTable
	bytes []byte
}

// NewByteSetPrefilter creates a prefilter for the bytes set in table.
func NewByteSetPrefilter(table *simd.ByteTable) *ByteSetPrefilter {
	p := &ByteSetPrefilter{table: table}
	for b, ok := range table {
		if ok {
			p.bytes = append(p.bytes, byte(b))
		}
	}
	return p
}

// NewDigitPrefilter creates a prefilter for patterns that must start with
// an ASCII digit.
func NewDigitPrefilter() *ByteSetPrefilter {
	return NewByteSetPrefilter(simd.DigitTable)
}

// FromFirstBytes builds a prefilter from an NFA first-byte set, or returns
// nil when the set cannot rule out any position.
func FromFirstBytes(fb *nfa.FirstByteSet) Prefilter {
	if fb == nil || !fb.IsUseful() {
		return nil
	}
	return NewByteSetPrefilter(simd.NewByteTable(fb.Bytes()...))
}

// Find returns the index of the first byte of the set at or after start,
// or -1.
func (p *ByteSetPrefilter) Find(haystack []byte, start int) int {
	if start < 0 || start >= len(haystack) {
		return -1
	}
	h := haystack[start:]
	var idx int
	switch len(p.bytes) {
	case 0:
		return -1
	case 1:
		idx = simd.Memchr(h, p.bytes[0])
	case 2:
		idx = simd.Memchr2(h, p.bytes[0], p.bytes[1])
	case 3:
		idx = simd.Memchr3(h, p.bytes[0], p.bytes[1], p.bytes[2])
	default:
		idx = simd.MemchrInTable(h, p.table)
	}
	if idx < 0 {
		return -1
	}
	return start + idx
}

// IsComplete returns false because finding a byte is only a candidate position.
func (p *ByteSetPrefilter) IsComplete() bool {
	return false
}

// LiteralLen returns 0 because the set does not describe fixed-length literals.
func (p *ByteSetPrefilter) LiteralLen() int {
	return 0
}

// Len returns the number of bytes in the set.
func (p *ByteSetPrefilter) Len() int {
	return len(p.bytes)
}
