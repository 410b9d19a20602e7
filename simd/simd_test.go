package simd

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"
)

func TestMemchr(t *testing.T) {
	tests := []struct {
		haystack string
		needle   byte
		want     int
	}{
		{"", 'a', -1},
		{"a", 'a', 0},
		{"hello world", 'o', 4},
		{"hello world", 'z', -1},
		{strings.Repeat("x", 31) + "y", 'y', 31},
		{strings.Repeat("x", 64), 'x', 0},
		{"\x00\xff", 0xff, 1},
	}
	for _, tt := range tests {
		if got := Memchr([]byte(tt.haystack), tt.needle); got != tt.want {
			t.Errorf("Memchr(%q, %q) = %d, want %d", tt.haystack, tt.needle, got, tt.want)
		}
		if got := memchrSWAR([]byte(tt.haystack), tt.needle); got != tt.want {
			t.Errorf("memchrSWAR(%q, %q) = %d, want %d", tt.haystack, tt.needle, got, tt.want)
		}
	}
}

// TestSWAR_Random checks the word-at-a-time searches against a byte loop on
// inputs with many near-miss bytes, which exercise borrow propagation.
func TestSWAR_Random(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	alphabet := []byte{0x00, 0x01, 0x7f, 0x80, 0x81, 'a', 'b'}
	for iter := 0; iter < 2000; iter++ {
		n := rng.Intn(40)
		hay := make([]byte, n)
		for i := range hay {
			hay[i] = alphabet[rng.Intn(len(alphabet))]
		}
		n1 := alphabet[rng.Intn(len(alphabet))]
		n2 := alphabet[rng.Intn(len(alphabet))]
		n3 := alphabet[rng.Intn(len(alphabet))]

		if got, want := memchrSWAR(hay, n1), bytes.IndexByte(hay, n1); got != want {
			t.Fatalf("memchrSWAR(%x, %x) = %d, want %d", hay, n1, got, want)
		}
		if got, want := Memchr2(hay, n1, n2), bytes.IndexAny(hay, string([]byte{n1, n2})); n1 < 0x80 && n2 < 0x80 && got != want {
			t.Fatalf("Memchr2(%x, %x, %x) = %d, want %d", hay, n1, n2, got, want)
		}
		want3 := -1
		for i, b := range hay {
			if b == n1 || b == n2 || b == n3 {
				want3 = i
				break
			}
		}
		if got := Memchr3(hay, n1, n2, n3); got != want3 {
			t.Fatalf("Memchr3(%x) = %d, want %d", hay, got, want3)
		}
		off := rng.Intn(4)
		wantPair := -1
		for i := 0; i+off < len(hay); i++ {
			if hay[i] == n1 && hay[i+off] == n2 {
				wantPair = i
				break
			}
		}
		if got := MemchrPair(hay, n1, n2, off); got != wantPair {
			t.Fatalf("MemchrPair(%x, %x, %x, %d) = %d, want %d", hay, n1, n2, off, got, wantPair)
		}
	}
}

func TestMemmem(t *testing.T) {
	tests := []struct {
		haystack, needle string
	}{
		{"hello world", "world"},
		{"hello world", "xyz"},
		{"aaaaaabaaaa", "aab"},
		{"", ""},
		{"abc", ""},
		{"ab", "abc"},
		{"abcabcabd", "abd"},
		{"zzzzqzzzz", "q"},
		{strings.Repeat("ab", 100) + "abc", "abc"},
		{"@@@x@@@", "@x@"},
		{"aaaa", "aaaa"},
	}
	for _, tt := range tests {
		want := strings.Index(tt.haystack, tt.needle)
		if got := Memmem([]byte(tt.haystack), []byte(tt.needle)); got != want {
			t.Errorf("Memmem(%q, %q) = %d, want %d", tt.haystack, tt.needle, got, want)
		}
	}
}

func TestMemmem_Random(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for iter := 0; iter < 2000; iter++ {
		hay := make([]byte, rng.Intn(50))
		for i := range hay {
			hay[i] = "abcQ"[rng.Intn(4)]
		}
		needle := make([]byte, 1+rng.Intn(5))
		for i := range needle {
			needle[i] = "abcQ"[rng.Intn(4)]
		}
		if got, want := Memmem(hay, needle), bytes.Index(hay, needle); got != want {
			t.Fatalf("Memmem(%q, %q) = %d, want %d", hay, needle, got, want)
		}
	}
}

func TestMemchrInTable(t *testing.T) {
	table := NewByteTable('x', 0xC3)
	if got := MemchrInTable([]byte("abcdefghijkx"), table); got != 11 {
		t.Errorf("MemchrInTable = %d, want 11", got)
	}
	if got := MemchrInTable([]byte("aé"), table); got != 1 {
		t.Errorf("MemchrInTable = %d, want 1", got)
	}
	if got := MemchrInTable([]byte("abc"), table); got != -1 {
		t.Errorf("MemchrInTable = %d, want -1", got)
	}
	if got := MemchrDigit([]byte("order #12")); got != 7 {
		t.Errorf("MemchrDigit = %d, want 7", got)
	}
}

func TestSelectRareBytes(t *testing.T) {
	info := SelectRareBytes([]byte("e@zy"))
	if info.Byte1 != '@' || info.Index1 != 1 {
		t.Errorf("Byte1 = %q@%d, want '@'@1", info.Byte1, info.Index1)
	}
	if info.Byte2 != 'z' || info.Index2 != 2 {
		t.Errorf("Byte2 = %q@%d, want 'z'@2", info.Byte2, info.Index2)
	}
	if got := SelectRareBytes([]byte("aab")); got.Byte1 != 'b' || got.Byte2 != 'a' || got.Index2 != 0 {
		t.Errorf("aab = %+v", got)
	}
	if got := SelectRareBytes([]byte("zz")); got.Byte1 != 'z' || got.Byte2 != 'z' {
		t.Errorf("repeated byte = %+v", got)
	}
	if ByteRank('Q') >= ByteRank('q') || ByteRank(0xC3) != 5 || ByteRank(' ') != 250 {
		t.Error("ByteRank ordering")
	}
	if got := SelectRareBytes([]byte("k")); got.Byte1 != 'k' || got.Byte2 != 'k' {
		t.Errorf("single byte = %+v", got)
	}
}

func BenchmarkMemmem(b *testing.B) {
	hay := []byte(strings.Repeat("the quick brown fox jumps over the lazy dog ", 200) + "needle")
	needle := []byte("needle")
	b.SetBytes(int64(len(hay)))
	for i := 0; i < b.N; i++ {
		if Memmem(hay, needle) < 0 {
			b.Fatal("not found")
		}
	}
}
