package simd

import "encoding/binary"

// ByteTable is a byte set for table-driven scans.
type ByteTable [256]bool

// NewByteTable returns the table holding exactly the given bytes.
func NewByteTable(bs ...byte) *ByteTable {
	var t ByteTable
	for _, b := range bs {
		t[b] = true
	}
	return &t
}

// DigitTable holds the ASCII digits 0-9.
var DigitTable = func() *ByteTable {
	return NewByteTable('0', '1', '2', '3', '4', '5', '6', '7', '8', '9')
}()

// MemchrInTable returns the index of the first byte of haystack in table,
// or -1. Eight bytes are loaded at a time to keep the loop branch-light.
func MemchrInTable(haystack []byte, table *ByteTable) int {
	i := 0
	for ; i+8 <= len(haystack); i += 8 {
		chunk := binary.LittleEndian.Uint64(haystack[i:])
		for k := 0; k < 8; k++ {
			if table[byte(chunk>>(8*k))] {
				return i + k
			}
		}
	}
	for ; i < len(haystack); i++ {
		if table[haystack[i]] {
			return i
		}
	}
	return -1
}

// MemchrDigit returns the index of the first ASCII digit, or -1.
func MemchrDigit(haystack []byte) int {
	return MemchrInTable(haystack, DigitTable)
}
