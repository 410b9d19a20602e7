package simd

// byCommonness lists printable ASCII, tab and newline from most to least
// common in English prose and source code. Uppercase letters are ranked
// from their lowercase form.
const byCommonness = " etaoinsrhldcumfpgwyb,.v\nk_-0()=1\"/:;2'x*3<>4j5{}[]9q687z#+!&|$%@?\\^~`\t\r"

// rank orders bytes by expected frequency; a lower rank is rarer and makes
// a better anchor for a substring scan. Control bytes rank 0, bytes of
// multi-byte UTF-8 sequences rank 5.
var rank = func() (t [256]byte) {
	for b := 0x80; b < 256; b++ {
		t[b] = 5
	}
	for i := 0; i < len(byCommonness); i++ {
		t[byCommonness[i]] = byte(250 - 2*i)
	}
	for b := 'A'; b <= 'Z'; b++ {
		t[b] = t[b+'a'-'A'] / 2
	}
	return t
}()

// ByteRank returns the frequency rank of b.
func ByteRank(b byte) byte { return rank[b] }

// RareByteInfo holds the two rarest distinct bytes of a needle and their
// offsets in it.
type RareByteInfo struct {
	Byte1  byte
	Index1 int
	Byte2  byte
	Index2 int
}

// SelectRareBytes picks the two lowest-ranked bytes of needle, Byte1 being
// the rarer. They are equal only when the needle repeats one byte. Ties go
// to the earlier offset.
func SelectRareBytes(needle []byte) RareByteInfo {
	if len(needle) == 0 {
		return RareByteInfo{}
	}
	r := RareByteInfo{Byte1: needle[0], Byte2: needle[0]}
	second := -1
	for i := 1; i < len(needle); i++ {
		b := needle[i]
		switch {
		case rank[b] < rank[r.Byte1]:
			if b != r.Byte1 {
				r.Byte2, r.Index2, second = r.Byte1, r.Index1, r.Index1
			}
			r.Byte1, r.Index1 = b, i
		case b != r.Byte1 && (second < 0 || rank[b] < rank[r.Byte2]):
			r.Byte2, r.Index2, second = b, i, i
		}
	}
	return r
}
