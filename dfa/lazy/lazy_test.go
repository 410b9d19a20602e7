package lazy

import (
	"errors"
	"strings"
	"testing"

	"github.com/coregx/rebound/nfa"
	"github.com/coregx/rebound/syntax"
)

func compileNFA(t testing.TB, pattern string) *nfa.NFA {
	t.Helper()
	n, err := syntax.Parse(pattern, 0)
	if err != nil {
		t.Fatalf("Parse(%q): %v", pattern, err)
	}
	info, err := syntax.Analyze(n, syntax.DefaultLimits())
	if err != nil {
		t.Fatalf("Analyze(%q): %v", pattern, err)
	}
	a, err := nfa.Compile(info, nfa.DefaultCompilerConfig())
	if err != nil {
		t.Fatalf("Compile(%q): %v", pattern, err)
	}
	return a
}

func newDFA(t testing.TB, pattern string, config Config) *DFA {
	t.Helper()
	d, err := New(compileNFA(t, pattern), config)
	if err != nil {
		t.Fatalf("New(%q): %v", pattern, err)
	}
	return d
}

var patterns = []string{
	`a+`,
	`cat|category`,
	`(a)(b)?`,
	`a{2,4}`,
	`(a+)+b`,
	`^abc`,
	`abc$`,
	`(?m)^b$`,
	`\bfoo\b`,
	`\Bo\B`,
	`x*`,
	`.`,
	`[^a]`,
	`é`,
	`\pL+\d`,
	`(?i)straße`,
	`(?i)k`,
	`(\w+)@(\w+)\.com`,
	`^$`,
	`\A\z`,
	`(?s).+z`,
	`(|a)*b`,
	`(a*)*$`,
	`(?m)(^|a)+x`,
	`[^\x00-\x{10FFFF}]`,
}

var inputs = []string{
	"",
	"a",
	"aaa",
	"category",
	"aab",
	"xabc",
	"abc\n",
	"a\nb\nc",
	"a foo b",
	"afoo",
	"foo",
	"\xff\xfe",
	"a\x80b",
	"aé",
	"\xa9",
	"λλ7",
	"STRAßE",
	"K",
	"bob@example.com",
	"x\nz",
}

func TestDFA_AgreesWithPikeVM(t *testing.T) {
	for _, p := range patterns {
		d := newDFA(t, p, DefaultConfig())
		vm := nfa.NewPikeVM(d.NFA())
		cache := d.NewCache()
		for _, in := range inputs {
			got, err := d.TryIsMatch(cache, []byte(in))
			if err != nil {
				t.Fatalf("%q on %q: %v", p, in, err)
			}
			if want := vm.IsMatch([]byte(in)); got != want {
				t.Errorf("%q on %q: DFA = %v, PikeVM = %v", p, in, got, want)
			}
		}
	}
}

func TestDFA_IsMatchAt(t *testing.T) {
	d := newDFA(t, `\bab`, DefaultConfig())
	cache := d.NewCache()
	input := []byte("xab ab")
	tests := []struct {
		from int
		want bool
	}{
		{0, true},
		{1, true},
		{2, true},
		{5, false},
		{6, false},
		{7, false},
	}
	for _, tt := range tests {
		got, err := d.TryIsMatchAt(cache, input, tt.from)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("from %d = %v, want %v", tt.from, got, tt.want)
		}
	}

	anchored := newDFA(t, `^ab`, DefaultConfig())
	if ok, _ := anchored.TryIsMatchAt(anchored.NewCache(), []byte("abab"), 2); ok {
		t.Error("^ab matched after the start of text")
	}
}

// TestDFA_CacheClears drives a small cache through repeated clears and
// checks that results stay correct.
func TestDFA_CacheClears(t *testing.T) {
	config := DefaultConfig().WithMaxStates(4).WithMaxCacheClears(1000)
	d := newDFA(t, `[a-c]*d[a-c]{3}e`, config)
	cache := d.NewCache()
	input := []byte(strings.Repeat("abcdabc", 50) + "dabce")
	ok, err := d.TryIsMatch(cache, input)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("no match")
	}
	if cache.ClearCount() == 0 {
		t.Error("expected the cache to be cleared")
	}
	if cache.Size() > 4 {
		t.Errorf("cache holds %d states, limit 4", cache.Size())
	}
}

func TestDFA_CacheFull(t *testing.T) {
	config := DefaultConfig().WithMaxStates(2).WithMaxCacheClears(0)
	d := newDFA(t, `a[bc]{5}d`, config)
	cache := d.NewCache()
	input := []byte("abcbcbd")
	_, err := d.TryIsMatch(cache, input)
	if !errors.Is(err, ErrCacheFull) {
		t.Fatalf("err = %v, want ErrCacheFull", err)
	}
	if !d.IsMatch(cache, input) {
		t.Error("IsMatch did not fall back to the PikeVM")
	}
}

func TestDFA_DeterminizationLimit(t *testing.T) {
	d := newDFA(t, `\pL`, DefaultConfig().WithDeterminizationLimit(1))
	_, err := d.TryIsMatch(d.NewCache(), []byte("λ"))
	if !errors.Is(err, ErrStateLimitExceeded) {
		t.Errorf("err = %v, want ErrStateLimitExceeded", err)
	}
}

func TestDFA_CacheReuse(t *testing.T) {
	d := newDFA(t, `foo\d`, DefaultConfig())
	cache := d.NewCache()
	for i := 0; i < 3; i++ {
		if !d.IsMatch(cache, []byte("xx foo1")) {
			t.Fatal("no match")
		}
	}
	hits, misses, rate := cache.Stats()
	if hits == 0 || misses == 0 || rate <= 0 {
		t.Errorf("Stats = %d, %d, %v", hits, misses, rate)
	}
	cache.Reset()
	if cache.Size() != 0 {
		t.Errorf("Size after Reset = %d", cache.Size())
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		ok     bool
	}{
		{"default", DefaultConfig(), true},
		{"one state", DefaultConfig().WithMaxStates(1), false},
		{"negative clears", DefaultConfig().WithMaxCacheClears(-1), false},
		{"zero limit", DefaultConfig().WithDeterminizationLimit(0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err == nil) != tt.ok {
				t.Fatalf("Validate() = %v", err)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("%v is not ErrInvalidConfig", err)
			}
		})
	}
	if _, err := New(compileNFA(t, `a`), Config{}); err == nil {
		t.Error("New accepted a zero config")
	}
}

func TestLookHolds(t *testing.T) {
	tests := []struct {
		look nfa.Look
		prev StartKind
		next int
		want bool
	}{
		{nfa.LookStartText, StartText, 'a', true},
		{nfa.LookStartText, StartLineLF, 'a', false},
		{nfa.LookStartLine, StartLineLF, 'a', true},
		{nfa.LookEndLine, StartWord, '\n', true},
		{nfa.LookEndText, StartWord, '\n', false},
		{nfa.LookEndText, StartWord, eoi, true},
		{nfa.LookWordBoundary, StartWord, eoi, true},
		{nfa.LookWordBoundary, StartText, 'a', true},
		{nfa.LookNotWordBoundary, StartWord, 'a', true},
		{nfa.LookRuneStart, StartNonWord, 0x80, false},
		{nfa.LookRuneStart, StartNonWord, 0xC3, true},
	}
	for _, tt := range tests {
		if got := lookHolds(tt.look, tt.prev, tt.next); got != tt.want {
			t.Errorf("lookHolds(%v, %v, %d) = %v, want %v", tt.look, tt.prev, tt.next, got, tt.want)
		}
	}
}

func BenchmarkDFA_IsMatch(b *testing.B) {
	d := newDFA(b, `(\w+)@(\w+)\.com`, DefaultConfig())
	cache := d.NewCache()
	input := []byte(strings.Repeat("lorem ipsum ", 100) + "user@example.com")
	b.SetBytes(int64(len(input)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if !d.IsMatch(cache, input) {
			b.Fatal("no match")
		}
	}
}
