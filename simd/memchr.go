// Package simd provides fast byte and substring search for prefilters.
//
// Single-byte search dispatches at startup: where the CPU has vector units
// that the runtime's assembly bytes.IndexByte uses (SSE2/AVX2 on x86-64,
// ASIMD on arm64) it delegates to that; elsewhere it runs a SWAR loop that
// tests 8 bytes per uint64. Multi-byte and table searches always use SWAR or
// table lookups.
package simd

import (
	"bytes"
	"encoding/binary"
	"math/bits"

	"golang.org/x/sys/cpu"
)

// hasVectorIndexByte reports whether bytes.IndexByte is vectorized here.
var hasVectorIndexByte = cpu.X86.HasSSE2 || cpu.X86.HasAVX2 || cpu.ARM64.HasASIMD

const (
	lo8 = 0x0101010101010101
	hi8 = 0x8080808080808080
)

// zeroBytes sets the high bit of the lowest zero byte of x, and possibly of
// higher ones; the lowest set bit is always exact.
func zeroBytes(x uint64) uint64 {
	return (x - lo8) & ^x & hi8
}

// Memchr returns the index of the first instance of needle in haystack,
// or -1 if needle is not present in haystack.
func Memchr(haystack []byte, needle byte) int {
	if hasVectorIndexByte {
		return bytes.IndexByte(haystack, needle)
	}
	return memchrSWAR(haystack, needle)
}

// Memchr2 returns the index of the first instance of either needle, or -1.
func Memchr2(haystack []byte, needle1, needle2 byte) int {
	m1 := uint64(needle1) * lo8
	m2 := uint64(needle2) * lo8
	i := 0
	for ; i+8 <= len(haystack); i += 8 {
		chunk := binary.LittleEndian.Uint64(haystack[i:])
		if z := zeroBytes(chunk^m1) | zeroBytes(chunk^m2); z != 0 {
			return i + bits.TrailingZeros64(z)/8
		}
	}
	for ; i < len(haystack); i++ {
		if b := haystack[i]; b == needle1 || b == needle2 {
			return i
		}
	}
	return -1
}

// Memchr3 returns the index of the first instance of any of the three
// needles, or -1.
func Memchr3(haystack []byte, needle1, needle2, needle3 byte) int {
	m1 := uint64(needle1) * lo8
	m2 := uint64(needle2) * lo8
	m3 := uint64(needle3) * lo8
	i := 0
	for ; i+8 <= len(haystack); i += 8 {
		chunk := binary.LittleEndian.Uint64(haystack[i:])
		if z := zeroBytes(chunk^m1) | zeroBytes(chunk^m2) | zeroBytes(chunk^m3); z != 0 {
			return i + bits.TrailingZeros64(z)/8
		}
	}
	for ; i < len(haystack); i++ {
		if b := haystack[i]; b == needle1 || b == needle2 || b == needle3 {
			return i
		}
	}
	return -1
}

// MemchrPair returns the first position i where haystack[i] == byte1 and
// haystack[i+offset] == byte2, or -1.
func MemchrPair(haystack []byte, byte1, byte2 byte, offset int) int {
	if offset < 0 || len(haystack) <= offset {
		return -1
	}
	m1 := uint64(byte1) * lo8
	m2 := uint64(byte2) * lo8
	i := 0
	for ; i+8+offset <= len(haystack); i += 8 {
		c1 := binary.LittleEndian.Uint64(haystack[i:])
		c2 := binary.LittleEndian.Uint64(haystack[i+offset:])
		// Bit k of each mask is exact only up to the first zero byte, so
		// confirm the candidate before returning it.
		z := zeroBytes(c1^m1) & zeroBytes(c2^m2)
		for z != 0 {
			k := bits.TrailingZeros64(z) / 8
			if haystack[i+k] == byte1 && haystack[i+k+offset] == byte2 {
				return i + k
			}
			z &= z - 1
		}
	}
	for ; i+offset < len(haystack); i++ {
		if haystack[i] == byte1 && haystack[i+offset] == byte2 {
			return i
		}
	}
	return -1
}

func memchrSWAR(haystack []byte, needle byte) int {
	m := uint64(needle) * lo8
	i := 0
	for ; i+8 <= len(haystack); i += 8 {
		if z := zeroBytes(binary.LittleEndian.Uint64(haystack[i:]) ^ m); z != 0 {
			return i + bits.TrailingZeros64(z)/8
		}
	}
	for ; i < len(haystack); i++ {
		if haystack[i] == needle {
			return i
		}
	}
	return -1
}
