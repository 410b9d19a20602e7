package syntax

import (
	"errors"
	"testing"
)

func mustAnalyze(t *testing.T, pattern string) *Info {
	t.Helper()
	n, err := Parse(pattern, 0)
	if err != nil {
		t.Fatalf("Parse(%q): %v", pattern, err)
	}
	info, err := Analyze(n, DefaultLimits())
	if err != nil {
		t.Fatalf("Analyze(%q): %v", pattern, err)
	}
	return info
}

// TestAnalyze_Simplify checks the validated tree produced for common shapes.
func TestAnalyze_Simplify(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{`(?:a|b)`, `alt{lit{a}|lit{b}}`},
		{`(?:ab)c`, `cat{lit{a}lit{b}lit{c}}`},
		{`a|(?:b|c)`, `alt{lit{a}|lit{b}|lit{c}}`},
		{`[a]`, `lit{a}`},
		{`(?i)[a-c]`, `cc{A-C a-c}`},
		{`[^\x00-\x{10FFFF}]`, `cc{}`},
		{`a{1}`, `lit{a}`},
		{`a{0}b`, `lit{b}`},
		{`(a)\1`, `cat{cap1{lit{a}}ref{1}}`},
		{`\Qab\E`, `cat{lit{a}lit{b}}`},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			info := mustAnalyze(t, tt.pattern)
			if got := info.Root.String(); got != tt.want {
				t.Errorf("Analyze(%q).Root = %s, want %s", tt.pattern, got, tt.want)
			}
		})
	}
}

// TestAnalyze_Errors checks limit and class-resolution failures.
func TestAnalyze_Errors(t *testing.T) {
	tests := []struct {
		pattern string
		kind    ErrorKind
	}{
		{`a{1001}`, ErrRepeatTooLarge},
		{`a{2,1001}`, ErrRepeatTooLarge},
		{`\p{Klingon}`, ErrUnknownClass},
		{`[a\P{Nope}]`, ErrUnknownClass},
		{`(a{1000}){1000}`, ErrProgramTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			n, err := Parse(tt.pattern, 0)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.pattern, err)
			}
			_, err = Analyze(n, DefaultLimits())
			if err == nil {
				t.Fatalf("Analyze(%q) succeeded, want %v", tt.pattern, tt.kind)
			}
			var ce *CompileError
			if !errors.As(err, &ce) {
				t.Fatalf("Analyze(%q) error %T, want *CompileError", tt.pattern, err)
			}
			if !errors.Is(err, tt.kind) {
				t.Errorf("Analyze(%q) = %v, want kind %v", tt.pattern, err, tt.kind)
			}
		})
	}
}

func TestAnalyze_CustomLimits(t *testing.T) {
	n, err := Parse(`a{50}`, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Analyze(n, Limits{MaxRepeat: 10}); !errors.Is(err, ErrRepeatTooLarge) {
		t.Errorf("MaxRepeat=10: got %v, want ErrRepeatTooLarge", err)
	}
	if _, err := Analyze(n, Limits{MaxProgramSize: 20}); !errors.Is(err, ErrProgramTooLarge) {
		t.Errorf("MaxProgramSize=20: got %v, want ErrProgramTooLarge", err)
	}
	if _, err := Analyze(n, DefaultLimits()); err != nil {
		t.Errorf("default limits: %v", err)
	}
}

func TestAnalyze_EmptyLoop(t *testing.T) {
	tests := []struct {
		pattern string
		want    bool
	}{
		{`(a*)*`, true},
		{`(a|)+`, true},
		{`(?:\b)*`, true},
		{`(a?){3}`, true},
		{`(a?)?`, false},
		{`a*`, false},
		{`(ab)*`, false},
	}
	for _, tt := range tests {
		info := mustAnalyze(t, tt.pattern)
		if info.Root.Op != OpRepeat {
			t.Fatalf("%q: root op %v, want Repeat", tt.pattern, info.Root.Op)
		}
		if info.Root.EmptyLoop != tt.want {
			t.Errorf("%q: EmptyLoop = %v, want %v", tt.pattern, info.Root.EmptyLoop, tt.want)
		}
	}
}

func TestAnalyze_Info(t *testing.T) {
	tests := []struct {
		pattern        string
		needsBacktrack bool
		captures       int
		minLen         int
		anchoredStart  bool
		anchoredEnd    bool
		nullable       bool
	}{
		{`abc`, false, 1, 3, false, false, false},
		{`(a)(b)?`, false, 3, 1, false, false, false},
		{`a?b`, false, 1, 1, false, false, false},
		{`é`, false, 1, 2, false, false, false},
		{`(?i)ſ`, false, 1, 1, false, false, false},
		{`^abc$`, false, 1, 3, true, true, false},
		{`^a|^b`, false, 1, 1, true, false, false},
		{`a|^b`, false, 1, 1, false, false, false},
		{`(a)\1`, true, 2, 1, false, false, false},
		{`a*`, false, 1, 0, false, false, true},
		{`(a){0}b`, false, 2, 1, false, false, false},
		{`(b)(a){0}`, false, 3, 1, false, false, false},
		{`(a){0}\1b`, true, 2, 1, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			info := mustAnalyze(t, tt.pattern)
			if info.NeedsBacktrack != tt.needsBacktrack {
				t.Errorf("NeedsBacktrack = %v, want %v", info.NeedsBacktrack, tt.needsBacktrack)
			}
			if info.CaptureCount != tt.captures {
				t.Errorf("CaptureCount = %d, want %d", info.CaptureCount, tt.captures)
			}
			if info.MinLen != tt.minLen {
				t.Errorf("MinLen = %d, want %d", info.MinLen, tt.minLen)
			}
			if info.AnchoredStart != tt.anchoredStart {
				t.Errorf("AnchoredStart = %v, want %v", info.AnchoredStart, tt.anchoredStart)
			}
			if info.AnchoredEnd != tt.anchoredEnd {
				t.Errorf("AnchoredEnd = %v, want %v", info.AnchoredEnd, tt.anchoredEnd)
			}
			if info.Nullable != tt.nullable {
				t.Errorf("Nullable = %v, want %v", info.Nullable, tt.nullable)
			}
		})
	}
}

func TestAnalyze_RemovedGroupsKeepNumbers(t *testing.T) {
	info := mustAnalyze(t, `(?P<x>a){0}(?P<y>b)`)
	if got, want := info.Root.String(), `cap2<y>{lit{b}}`; got != want {
		t.Errorf("Root = %s, want %s", got, want)
	}
	want := []string{"", "x", "y"}
	if len(info.CaptureNames) != len(want) {
		t.Fatalf("CaptureNames = %q, want %q", info.CaptureNames, want)
	}
	for i := range want {
		if info.CaptureNames[i] != want[i] {
			t.Errorf("CaptureNames[%d] = %q, want %q", i, info.CaptureNames[i], want[i])
		}
	}
}

// TestAnalyze_DoesNotMutate verifies the parsed tree survives analysis unchanged.
func TestAnalyze_DoesNotMutate(t *testing.T) {
	n, err := Parse(`(?i)[\d\pL](?:x|y)*`, 0)
	if err != nil {
		t.Fatal(err)
	}
	before := n.String()
	if _, err := Analyze(n, DefaultLimits()); err != nil {
		t.Fatal(err)
	}
	if after := n.String(); after != before {
		t.Errorf("tree changed:\nbefore %s\nafter  %s", before, after)
	}
}

func TestAnalyze_FlagsObserved(t *testing.T) {
	info := mustAnalyze(t, `(?m)^\bx$`)
	if !info.HasLineAnchors {
		t.Error("HasLineAnchors = false")
	}
	if !info.HasWordBoundary {
		t.Error("HasWordBoundary = false")
	}
}

func TestCharClassHelpers(t *testing.T) {
	rs := CanonicalizeRanges([]RuneRange{{'d', 'f'}, {'a', 'c'}, {'x', 'x'}})
	if len(rs) != 2 || rs[0] != (RuneRange{'a', 'f'}) || rs[1] != (RuneRange{'x', 'x'}) {
		t.Fatalf("CanonicalizeRanges = %v", rs)
	}
	neg := NegateRanges(rs)
	if ContainsRune(neg, 'a') || ContainsRune(neg, 'x') || !ContainsRune(neg, 'g') || !ContainsRune(neg, 0) {
		t.Errorf("NegateRanges = %v", neg)
	}
	if !EqualFold('k', 'K') || !EqualFold('S', 'ſ') || EqualFold('a', 'b') {
		t.Error("EqualFold mismatch")
	}
	orbit := FoldOrbit('k')
	if len(orbit) != 3 || orbit[0] != 'K' || orbit[1] != 'k' || orbit[2] != '\u212A' {
		t.Errorf("FoldOrbit('k') = %q", orbit)
	}
	if r, ok := LookupClass("Greek"); !ok || !ContainsRune(r, 'λ') || ContainsRune(r, 'a') {
		t.Error("LookupClass(Greek) mismatch")
	}
	if _, ok := LookupClass("NotAClass"); ok {
		t.Error("LookupClass(NotAClass) succeeded")
	}
}
