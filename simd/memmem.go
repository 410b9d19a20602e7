package simd

import "bytes"

// Memmem returns the index of the first instance of needle in haystack,
// or -1 if needle is not present in haystack. An empty needle matches at 0,
// as with bytes.Index.
//
// Candidates come from the two rarest bytes of the needle, searched as a
// pair at their fixed distance, and are verified with bytes.Equal.
//
// Example:
//
//	pos := simd.Memmem([]byte("hello world"), []byte("world"))
//	// pos == 6
func Memmem(haystack, needle []byte) int {
	switch {
	case len(needle) == 0:
		return 0
	case len(needle) > len(haystack):
		return -1
	case len(needle) == 1:
		return Memchr(haystack, needle[0])
	}

	rare := SelectRareBytes(needle)
	if rare.Byte1 == rare.Byte2 {
		return memmemSingle(haystack, needle, rare.Byte1, rare.Index1)
	}

	// Search for the pair anchored at the smaller index.
	b1, i1, b2, i2 := rare.Byte1, rare.Index1, rare.Byte2, rare.Index2
	if i2 < i1 {
		b1, i1, b2, i2 = b2, i2, b1, i1
	}
	last := len(haystack) - len(needle)
	for at := 0; at <= last; {
		// The pair window must stay inside the region where the needle fits.
		window := haystack[at+i1 : last+i2+1]
		p := MemchrPair(window, b1, b2, i2-i1)
		if p < 0 {
			return -1
		}
		start := at + p
		if bytes.Equal(haystack[start:start+len(needle)], needle) {
			return start
		}
		at = start + 1
	}
	return -1
}

// memmemSingle verifies candidates found by scanning for one rare byte.
func memmemSingle(haystack, needle []byte, rareByte byte, rareIdx int) int {
	last := len(haystack) - len(needle)
	for at := 0; at <= last; {
		p := Memchr(haystack[at+rareIdx:last+rareIdx+1], rareByte)
		if p < 0 {
			return -1
		}
		start := at + p
		if bytes.Equal(haystack[start:start+len(needle)], needle) {
			return start
		}
		at = start + 1
	}
	return -1
}
