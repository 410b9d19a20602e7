package rebound

import (
	"math/rand/v2"
	"regexp"
	"strings"
	"testing"

	"github.com/dlclark/regexp2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coregx/rebound/meta"
)

// stdlibPatterns have identical leftmost-first semantics in Go's regexp.
var stdlibPatterns = []string{
	`hello`,
	`foo|bar|baz`,
	`foo|foobar`,
	`\d+`,
	`\w+@\w+\.\w+`,
	`(\w+)@(\w+)\.(\w+)`,
	`[a-z]+[0-9]*`,
	`[^aeiou\s]+`,
	`(?i)hello`,
	`(?i)[a-c]+x`,
	`^\w+`,
	`\w+$`,
	`(?m)^\w+$`,
	`(?s)a.+b`,
	`a.+b`,
	`\bword\b`,
	`\Bor\B`,
	`(a|ab)(c|bcd)(d*)`,
	`(a+)(b+)?`,
	`(x)?y`,
	`a{2,3}`,
	`a{2,}?`,
	`(?U)a+`,
	`(?U)a+?`,
	`colou?r`,
	`\s+`,
	`[[:alpha:]]+`,
	`\pL+`,
	`\p{Greek}+`,
	`[\p{Lu}\d]+`,
	`.`,
	`..?`,
	`x*`,
	`(?:ab)+`,
	`(a)(b)(c)(d)(e)(f)(g)(h)(i)(j)`,
	`(\d{3})-(\d{4})`,
	`[\x00-\x7f]+`,
	`\x{263a}`,
	`\.\*\+\?`,
}

var differentialInputs = []string{
	"",
	"hello world",
	"say HELLO, Hello and hello",
	"foo bar baz foobar",
	"call 555-1234 or 555-9876",
	"user@example.com, admin@test.org",
	"abcd abc ab a",
	"aaa aab abb bbb",
	"line one\nline two\nthree",
	"a\nb a-b axxb",
	"a word in words, sword",
	"colour color colr",
	"xy y xxy",
	"καλημέρα κόσμε, Grüße ☺",
	"abcdefghij",
	"   leading and   trailing   ",
	".*+? literal",
}

func TestDifferential_Stdlib(t *testing.T) {
	for _, pattern := range stdlibPatterns {
		std := regexp.MustCompile(pattern)
		re, err := Compile(pattern)
		require.NoError(t, err, pattern)

		for _, input := range differentialInputs {
			assert.Equal(t, std.MatchString(input), re.MatchString(input),
				"MatchString %s on %q", pattern, input)
			assert.Equal(t, std.FindStringSubmatchIndex(input), re.FindStringSubmatchIndex(input),
				"FindStringSubmatchIndex %s on %q", pattern, input)
			assert.Equal(t, std.FindAllStringIndex(input, -1), re.FindAllStringIndex(input, -1),
				"FindAllStringIndex %s on %q", pattern, input)
			assert.Equal(t, std.FindAllStringSubmatchIndex(input, 2), re.FindAllStringSubmatchIndex(input, 2),
				"FindAllStringSubmatchIndex %s on %q", pattern, input)
		}
	}
}

// TestDifferential_Strategies runs every forced strategy against the
// standard library.
func TestDifferential_Strategies(t *testing.T) {
	strategies := []meta.Strategy{meta.StrategyBacktrack, meta.StrategyPikeVM, meta.StrategyLazyDFA}
	for _, pattern := range stdlibPatterns {
		std := regexp.MustCompile(pattern)
		for _, s := range strategies {
			config := DefaultConfig()
			config.Strategy = s
			re, err := CompileWithConfig(pattern, config)
			require.NoError(t, err, pattern)

			for _, input := range differentialInputs {
				assert.Equal(t, std.FindStringSubmatchIndex(input), re.FindStringSubmatchIndex(input),
					"%v: %s on %q", s, pattern, input)
			}
		}
	}
}

// patternGen builds random patterns from constructs whose meaning is the
// same in Go's regexp. Repetition operators only apply to atoms and groups.
type patternGen struct {
	rng *rand.Rand
}

var (
	genWords = []string{"a", "b", "ab", "xab", "abc", "bc", "é", "xé"}
	genAtoms = []string{"a", "b", "x", "é", ".", "[ab]", "[^a]", `\d`, `\w`, "(?i:a)"}
	genLooks = []string{"^", "$", `\b`, `\B`, "(?m:^)", "(?m:$)"}
	genReps  = []string{"*", "+", "?", "*?", "+?", "??", "{0}", "{1,2}", "{0,2}?", "{2}"}
)

func (g *patternGen) pattern(depth int) string {
	switch g.rng.IntN(6) {
	case 0:
		// Literal alternation, where a short alternative often ends before a
		// longer one that starts earlier.
		n := 2 + g.rng.IntN(3)
		alts := make([]string, n)
		for i := range alts {
			alts[i] = genWords[g.rng.IntN(len(genWords))]
		}
		return strings.Join(alts, "|")
	case 1:
		return g.concat(depth) + "|" + g.concat(depth)
	default:
		return g.concat(depth)
	}
}

func (g *patternGen) concat(depth int) string {
	var sb strings.Builder
	for n := 1 + g.rng.IntN(3); n > 0; n-- {
		sb.WriteString(g.term(depth))
	}
	return sb.String()
}

func (g *patternGen) term(depth int) string {
	if g.rng.IntN(8) == 0 {
		return genLooks[g.rng.IntN(len(genLooks))]
	}
	var operand string
	switch {
	case depth > 0 && g.rng.IntN(3) == 0:
		operand = "(" + g.pattern(depth-1) + ")"
	case depth > 0 && g.rng.IntN(4) == 0:
		operand = "(?:" + g.pattern(depth-1) + ")"
	case g.rng.IntN(6) == 0:
		// Nullable group body.
		operand = "(|" + genAtoms[g.rng.IntN(len(genAtoms))] + ")"
	default:
		operand = genAtoms[g.rng.IntN(len(genAtoms))]
	}
	if g.rng.IntN(2) == 0 {
		operand += genReps[g.rng.IntN(len(genReps))]
	}
	return operand
}

func (g *patternGen) input() string {
	const alphabet = "abxé\n 1"
	runes := []rune(alphabet)
	var sb strings.Builder
	for n := g.rng.IntN(9); n > 0; n-- {
		sb.WriteRune(runes[g.rng.IntN(len(runes))])
	}
	return sb.String()
}

// TestDifferential_Random compares generated patterns against the standard
// library under every strategy. The seed is fixed so failures reproduce.
func TestDifferential_Random(t *testing.T) {
	g := &patternGen{rng: rand.New(rand.NewPCG(0x5eed, 0xc0ffee))}
	strategies := []meta.Strategy{
		meta.StrategyAuto, meta.StrategyBacktrack, meta.StrategyPikeVM, meta.StrategyLazyDFA,
	}
	iterations := 400
	if testing.Short() {
		iterations = 50
	}
	for range iterations {
		pattern := g.pattern(2)
		std, err := regexp.Compile(pattern)
		if err != nil {
			continue
		}
		inputs := make([]string, 6)
		for i := range inputs {
			inputs[i] = g.input()
		}
		for _, s := range strategies {
			re, err := compileStrategy(pattern, s)
			require.NoError(t, err, "%v: %s", s, pattern)
			for _, input := range inputs {
				assert.Equal(t, std.FindStringSubmatchIndex(input), re.FindStringSubmatchIndex(input),
					"%v: %s on %q", s, pattern, input)
				assert.Equal(t, std.FindAllStringIndex(input, -1), re.FindAllStringIndex(input, -1),
					"%v: all %s on %q", s, pattern, input)
			}
		}
	}
}

// backrefPatterns are checked against regexp2. Inputs are ASCII so that
// regexp2's rune offsets equal byte offsets, and no pattern uses $, which
// regexp2 also matches before a final newline.
var backrefPatterns = []string{
	`(\w)\1`,
	`(\w+)\s+\1`,
	`(a+)b\1`,
	`(a|b)\1+`,
	`(['"]).*?\1`,
	`(\d)(\d)\2\1`,
	`(?i)(ab)\1`,
	`^(\w+)-\1`,
	`(x)?y\1`,
	`\b(\w+) \1\b`,
	`(a*)\1`,
	`(.)(.)\2\1|z`,
}

var backrefInputs = []string{
	"",
	"hello",
	"abba 1221 xyyx",
	"the the cat sat sat",
	"aabaa aaba abab",
	`say "hi" and 'bye'`,
	"abAB abab ABab",
	"foo-foo bar-baz",
	"xyx y yy",
	"aaaa",
	"z",
}

func TestDifferential_Regexp2(t *testing.T) {
	for _, pattern := range backrefPatterns {
		pcre := regexp2.MustCompile(pattern, regexp2.None)
		re, err := Compile(pattern)
		require.NoError(t, err, pattern)

		for _, input := range backrefInputs {
			m, err := pcre.FindStringMatch(input)
			require.NoError(t, err)
			got := re.FindStringSubmatchIndex(input)
			if m == nil {
				assert.Nil(t, got, "%s on %q", pattern, input)
				continue
			}
			assert.Equal(t, regexp2Slots(m), got, "%s on %q", pattern, input)
		}
	}
}

// regexp2Slots converts a regexp2 match to capture slots.
func regexp2Slots(m *regexp2.Match) []int {
	groups := m.Groups()
	slots := make([]int, 0, 2*len(groups))
	for _, g := range groups {
		if len(g.Captures) == 0 {
			slots = append(slots, -1, -1)
			continue
		}
		slots = append(slots, g.Index, g.Index+g.Length)
	}
	return slots
}
