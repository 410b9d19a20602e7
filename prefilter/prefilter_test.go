package prefilter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/coregx/rebound/literal"
	"github.com/coregx/rebound/nfa"
	"github.com/coregx/rebound/simd"
	"github.com/coregx/rebound/syntax"
)

func seqOf(complete bool, lits ...string) *literal.Seq {
	out := make([]literal.Literal, len(lits))
	for i, s := range lits {
		out[i] = literal.NewLiteral([]byte(s), complete)
	}
	return literal.NewSeq(out...)
}

// bruteFind returns the leftmost position >= start where any literal occurs.
func bruteFind(haystack []byte, start int, lits []string) int {
	best := -1
	for _, l := range lits {
		if start > len(haystack) {
			break
		}
		if i := bytes.Index(haystack[start:], []byte(l)); i >= 0 && (best < 0 || start+i < best) {
			best = start + i
		}
	}
	return best
}

func TestBuild_Selection(t *testing.T) {
	tests := []struct {
		name string
		seq  *literal.Seq
		want string
	}{
		{"single byte", seqOf(true, "a"), "memchr"},
		{"single literal", seqOf(true, "hello"), "memmem"},
		{"shared prefix", seqOf(true, "foobar", "foobaz"), "memmem"},
		{"redundant after minimize", seqOf(true, "foo", "foobar"), "memmem"},
		{"byte pair", seqOf(true, "a", "b"), "byteset"},
		{"alternation", seqOf(true, "cat", "dog", "bird"), "ahocorasick"},
		{"contains empty", seqOf(false, "abc", ""), "nil"},
		{"empty", literal.NewSeq(), "nil"},
		{"nil", nil, "nil"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pf := FromPrefixes(tt.seq)
			var got string
			switch pf.(type) {
			case nil:
				got = "nil"
			case *substring:
				got = "memmem"
				if len(pf.(*substring).needle) == 1 {
					got = "memchr"
				}
			case *ByteSetPrefilter:
				got = "byteset"
			case *acPrefilter:
				got = "ahocorasick"
			default:
				got = "unknown"
			}
			if got != tt.want {
				t.Errorf("FromPrefixes = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestBuild_DoesNotModifySeq(t *testing.T) {
	seq := seqOf(true, "foobar", "foo")
	_ = FromPrefixes(seq)
	if seq.Len() != 2 || string(seq.Get(0).Bytes) != "foobar" || !seq.Get(1).Complete {
		t.Errorf("FromPrefixes modified the input sequence")
	}
}

func TestPrefilter_Find(t *testing.T) {
	haystack := []byte("the quick brown fox jumps over the lazy dog; the cat sat on a mat")
	sets := [][]string{
		{"q"},
		{"the"},
		{"cat", "dog"},
		{"mat", "map", "man"},
		{"zz", "fox", "sat", "over"},
		{"x", "y"},
		{"nowhere"},
	}
	for _, lits := range sets {
		pf := FromPrefixes(seqOf(false, lits...))
		if pf == nil {
			t.Fatalf("%q: no prefilter", lits)
		}
		for start := 0; start <= len(haystack); start++ {
			got := pf.Find(haystack, start)
			want := bruteFind(haystack, start, lits)
			if start == len(haystack) {
				want = -1
			}
			if got != want {
				t.Fatalf("%q: Find(%d) = %d, want %d", lits, start, got, want)
			}
		}
	}
}

func TestPrefilter_Complete(t *testing.T) {
	pf := FromPrefixes(seqOf(true, "needle"))
	if !pf.IsComplete() || pf.LiteralLen() != 6 {
		t.Errorf("IsComplete() = %v, LiteralLen() = %d", pf.IsComplete(), pf.LiteralLen())
	}
	pf = FromPrefixes(seqOf(false, "needle"))
	if pf.IsComplete() || pf.LiteralLen() != 0 {
		t.Errorf("inexact literal reported complete")
	}
	pf = FromPrefixes(seqOf(true, "needle", "needles"))
	if pf.IsComplete() {
		t.Errorf("minimized literal must not stay complete")
	}
}

func TestAhoCorasick_FindMatch(t *testing.T) {
	pf := FromPrefixes(seqOf(true, "cat", "dog", "bird"))
	mf, ok := pf.(MatchFinder)
	if !ok {
		t.Fatalf("%T does not implement MatchFinder", pf)
	}
	haystack := []byte("the dog and the cat")
	if s, e := mf.FindMatch(haystack, 0); s != 4 || e != 7 {
		t.Errorf("FindMatch(0) = (%d, %d), want (4, 7)", s, e)
	}
	if s, e := mf.FindMatch(haystack, 5); s != 16 || e != 19 {
		t.Errorf("FindMatch(5) = (%d, %d), want (16, 19)", s, e)
	}
	if s, e := mf.FindMatch(haystack, 17); s != -1 || e != -1 {
		t.Errorf("FindMatch(17) = (%d, %d), want (-1, -1)", s, e)
	}
}

func TestLiteralSet_Find(t *testing.T) {
	tests := []struct {
		lits       []string
		input      string
		at         int
		start, end int
	}{
		// A shorter literal ends before a longer one that starts earlier.
		{[]string{"xab", "a"}, "xab", 0, 0, 3},
		{[]string{"b", "abc"}, "abc", 0, 0, 3},
		{[]string{"abcd", "bc", "c"}, "zabcd", 0, 1, 5},
		{[]string{"abcd", "bc", "c"}, "zabcx", 0, 2, 4},
		// Priority order decides between literals at the same start.
		{[]string{"foo", "foobar"}, "xfoobar", 0, 1, 4},
		{[]string{"foobar", "foo"}, "xfoobar", 0, 1, 7},
		{[]string{"xab", "a"}, "xab", 1, 1, 2},
		{[]string{"xab", "a"}, "xab", 3, -1, -1},
		{[]string{"cat", "dog"}, "no pets", 0, -1, -1},
	}
	for _, tt := range tests {
		pats := make([][]byte, len(tt.lits))
		for i, l := range tt.lits {
			pats[i] = []byte(l)
		}
		set, err := NewLiteralSet(pats)
		if err != nil {
			t.Fatalf("NewLiteralSet(%q): %v", tt.lits, err)
		}
		s, e := set.Find([]byte(tt.input), tt.at)
		if s != tt.start || e != tt.end {
			t.Errorf("%q in %q at %d = (%d, %d), want (%d, %d)",
				tt.lits, tt.input, tt.at, s, e, tt.start, tt.end)
		}
	}
}

func TestByteSetPrefilter(t *testing.T) {
	pf := NewDigitPrefilter()
	haystack := []byte("call 555-0100 now")
	if got := pf.Find(haystack, 0); got != 5 {
		t.Errorf("Find(0) = %d, want 5", got)
	}
	if got := pf.Find(haystack, 13); got != -1 {
		t.Errorf("Find(13) = %d, want -1", got)
	}
	if pf.Len() != 10 || pf.IsComplete() {
		t.Errorf("Len() = %d, IsComplete() = %v", pf.Len(), pf.IsComplete())
	}

	wide := NewByteSetPrefilter(simd.NewByteTable('q', 'x', 'z', '!'))
	if got := wide.Find([]byte("abc!def"), 0); got != 3 {
		t.Errorf("wide Find = %d, want 3", got)
	}
}

func TestFromFirstBytes(t *testing.T) {
	compile := func(pattern string) *nfa.NFA {
		t.Helper()
		re, err := syntax.Parse(pattern, 0)
		if err != nil {
			t.Fatal(err)
		}
		info, err := syntax.Analyze(re, syntax.DefaultLimits())
		if err != nil {
			t.Fatal(err)
		}
		n, err := nfa.Compile(info, nfa.DefaultCompilerConfig())
		if err != nil {
			t.Fatal(err)
		}
		return n
	}

	pf := FromFirstBytes(nfa.FirstBytes(compile(`[xyz]\d+`)))
	if pf == nil {
		t.Fatal("expected a prefilter for [xyz]")
	}
	if got := pf.Find([]byte("aaaz12"), 0); got != 3 {
		t.Errorf("Find = %d, want 3", got)
	}
	if pf := FromFirstBytes(nfa.FirstBytes(compile(`a*`))); pf != nil {
		t.Errorf("nullable pattern got prefilter %T", pf)
	}
}

func TestTracker_RetiresOnDenseInput(t *testing.T) {
	tracker := NewTracker(FromPrefixes(seqOf(false, "a")))
	haystack := []byte(strings.Repeat("a", 1000))
	for pos := 0; pos < 200; pos++ {
		if got := tracker.Find(haystack, pos); got != pos {
			t.Fatalf("Find(%d) = %d", pos, got)
		}
	}
	if tracker.IsActive() {
		t.Fatal("tracker should retire a prefilter that never skips")
	}
	// Retired: every position is a candidate.
	if got := tracker.Find([]byte("xxxx"), 2); got != 2 {
		t.Errorf("retired Find = %d, want 2", got)
	}
	tracker.Reset()
	if !tracker.IsActive() {
		t.Error("Reset should re-enable the prefilter")
	}
}

func TestTracker_StaysActiveWhenSkipping(t *testing.T) {
	tracker := NewTracker(FromPrefixes(seqOf(false, "a")))
	haystack := []byte(strings.Repeat("bbbbbbbbba", 500))
	pos := 0
	for {
		p := tracker.Find(haystack, pos)
		if p < 0 {
			break
		}
		pos = p + 1
	}
	candidates, _, active := tracker.Stats()
	if candidates != 500 || !active {
		t.Errorf("candidates = %d, active = %v", candidates, active)
	}
	if NewTracker(nil) != nil {
		t.Error("NewTracker(nil) should be nil")
	}
}

func BenchmarkPrefilter_AhoCorasick(b *testing.B) {
	pf := FromPrefixes(seqOf(false, "apple", "banana", "cherry", "durian"))
	haystack := []byte(strings.Repeat("the quick brown fox jumps over the lazy dog ", 100) + "durian")
	b.SetBytes(int64(len(haystack)))
	for i := 0; i < b.N; i++ {
		if pf.Find(haystack, 0) < 0 {
			b.Fatal("not found")
		}
	}
}
