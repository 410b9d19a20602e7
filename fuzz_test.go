package rebound

import (
	"regexp"
	"testing"
	"unicode/utf8"

	"github.com/coregx/rebound/meta"
)

// Run with:
//
//	go test -fuzz=FuzzBacktrackPikeVM -fuzztime=30s
//	go test -fuzz=FuzzStdlib -fuzztime=30s

var fuzzSeeds = []struct {
	pattern, input string
}{
	{`hello`, "hello world"},
	{`(a+)+b`, "aaaaaaaaaaaaaaaaaaaaaab"},
	{`(\w+)@(\w+)`, "x bob@example y"},
	{`a*?b|c`, "aaac"},
	{`(?i)straße`, "STRAßE"},
	{`(?m)^\d+$`, "12\nab\n34"},
	{`\bfoo\b`, "foo food foo"},
	{`[^x]{2,4}`, "xabcdex"},
	{`(a|ab)(c|bcd)`, "abcd"},
	{`.+`, "héllo\nworld"},
}

// FuzzBacktrackPikeVM checks that the backtracker and the PikeVM agree on
// match existence and position for backreference-free patterns.
func FuzzBacktrackPikeVM(f *testing.F) {
	for _, s := range fuzzSeeds {
		f.Add(s.pattern, s.input)
	}
	f.Fuzz(func(t *testing.T, pattern, input string) {
		if len(pattern) > 64 || len(input) > 256 {
			return
		}
		bt, err := compileStrategy(pattern, meta.StrategyBacktrack)
		if err != nil {
			return
		}
		if bt.Engine().Info().NeedsBacktrack {
			return
		}
		vm, err := compileStrategy(pattern, meta.StrategyPikeVM)
		if err != nil {
			t.Fatalf("pikevm rejected %q accepted by the backtracker: %v", pattern, err)
		}

		h := []byte(input)
		btOK, err := bt.IsMatchE(h)
		if err != nil {
			return
		}
		if vmOK := vm.IsMatch(h); btOK != vmOK {
			t.Fatalf("%q on %q: backtrack %v, pikevm %v", pattern, input, btOK, vmOK)
		}
		btLoc, vmLoc := bt.FindIndex(h), vm.FindIndex(h)
		if !equalInts(btLoc, vmLoc) {
			t.Fatalf("%q on %q: backtrack %v, pikevm %v", pattern, input, btLoc, vmLoc)
		}
	})
}

// FuzzStdlib checks position results against Go's regexp for patterns both
// engines accept, on valid UTF-8 input.
func FuzzStdlib(f *testing.F) {
	for _, s := range fuzzSeeds {
		f.Add(s.pattern, s.input)
	}
	f.Fuzz(func(t *testing.T, pattern, input string) {
		if len(pattern) > 64 || len(input) > 256 || !utf8.ValidString(input) || !utf8.ValidString(pattern) {
			return
		}
		std, err := regexp.Compile(pattern)
		if err != nil {
			return
		}
		re, err := Compile(pattern)
		if err != nil {
			return
		}
		if want, got := std.MatchString(input), re.MatchString(input); want != got {
			t.Fatalf("%q on %q: stdlib %v, rebound %v", pattern, input, want, got)
		}
		if want, got := std.FindStringIndex(input), re.FindStringIndex(input); !equalInts(want, got) {
			t.Fatalf("%q on %q: stdlib %v, rebound %v", pattern, input, want, got)
		}
	})
}

func compileStrategy(pattern string, s meta.Strategy) (*Regex, error) {
	config := DefaultConfig()
	config.Strategy = s
	return CompileWithConfig(pattern, config)
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) || (a == nil) != (b == nil) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
