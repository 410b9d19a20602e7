// Package rebound provides a regular expression engine with backreferences
// and a bounded-time guarantee.
//
// Patterns use Perl-style syntax: the RE2 subset of Go's regexp plus
// backreferences (\1, \k<name>). Each pattern is compiled once into
// backtracking bytecode and, when it has no backreferences, a Thompson NFA.
// A meta engine then picks how to run it:
//   - Literal patterns and literal alternations: memmem or Aho-Corasick
//   - Existence queries: a lazy DFA, with PikeVM fallback
//   - Positions and captures: a prefiltered, memoized backtracker, or the
//     PikeVM when the memo table would not fit
//   - Backreferences: the backtracker under a step budget
//
// Basic usage:
//
//	re, err := rebound.Compile(`(\w+)@(\w+)\.com`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(re.FindString("mail bob@example.com")) // "bob@example.com"
//
//	caps := re.CapturesString("mail bob@example.com")
//	user, _ := caps.Get(1)
//	fmt.Println(string(user)) // "bob"
//
// Backtracking searches on patterns with backreferences can be exponential.
// They run under a step budget (meta.Config.StepLimit); the plain methods
// report "no match" when it runs out, the E-suffixed methods return a
// *prog.MatchError instead.
package rebound

import (
	"iter"
	"unicode/utf8"

	"github.com/coregx/rebound/meta"
)

// Regex represents a compiled regular expression.
//
// A Regex is safe to use concurrently from multiple goroutines.
//
// Example:
//
//	re := rebound.MustCompile(`hello`)
//	if re.IsMatch([]byte("hello world")) {
//	    println("matched!")
//	}
type Regex struct {
	engine  *meta.Engine
	pattern string
}

// Match is the position of a match in its haystack.
type Match = meta.Match

// Compile compiles a regular expression pattern.
//
// Returns a *meta.CompileError if the pattern is invalid or exceeds the
// default limits.
//
// Example:
//
//	re, err := rebound.Compile(`(\d{3})-\1`)
//	if err != nil {
//	    log.Fatal(err)
//	}
func Compile(pattern string) (*Regex, error) {
	return CompileWithConfig(pattern, meta.DefaultConfig())
}

// MustCompile compiles a regular expression pattern and panics if it fails.
//
// This is useful for patterns known to be valid at compile time.
//
// Example:
//
//	var word = rebound.MustCompile(`\b(\w+)\s+\1\b`)
func MustCompile(pattern string) *Regex {
	re, err := Compile(pattern)
	if err != nil {
		panic("rebound: Compile(`" + pattern + "`): " + err.Error())
	}
	return re
}

// CompileWithConfig compiles a pattern with custom configuration.
//
// Example:
//
//	config := rebound.DefaultConfig()
//	config.StepLimit = 100_000
//	config.Flags = syntax.FoldCase
//	re, err := rebound.CompileWithConfig(`(a+)+\1`, config)
func CompileWithConfig(pattern string, config meta.Config) (*Regex, error) {
	engine, err := meta.CompileWithConfig(pattern, config)
	if err != nil {
		return nil, err
	}
	return &Regex{
		engine:  engine,
		pattern: pattern,
	}, nil
}

// DefaultConfig returns the default configuration for compilation.
func DefaultConfig() meta.Config {
	return meta.DefaultConfig()
}

// QuoteMeta returns a string that escapes all regular expression metacharacters
// inside the argument text; the returned string is a regular expression matching
// the literal text.
//
// Example:
//
//	escaped := rebound.QuoteMeta("hello.world")
//	// escaped = "hello\\.world"
func QuoteMeta(s string) string {
	const special = `\.+*?()|[]{}^$`

	n := 0
	for i := 0; i < len(s); i++ {
		if isSpecial(s[i], special) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	buf := make([]byte, len(s)+n)
	j := 0
	for i := 0; i < len(s); i++ {
		if isSpecial(s[i], special) {
			buf[j] = '\\'
			j++
		}
		buf[j] = s[i]
		j++
	}
	return string(buf)
}

func isSpecial(c byte, special string) bool {
	for i := 0; i < len(special); i++ {
		if c == special[i] {
			return true
		}
	}
	return false
}

// String returns the source text used to compile the regular expression.
func (r *Regex) String() string {
	return r.pattern
}

// Strategy returns the execution strategy selected for the pattern.
func (r *Regex) Strategy() meta.Strategy {
	return r.engine.Strategy()
}

// Stats returns the execution counters of the underlying engine.
func (r *Regex) Stats() meta.Stats {
	return r.engine.Stats()
}

// Engine returns the underlying meta engine.
func (r *Regex) Engine() *meta.Engine {
	return r.engine
}

// NumSubexp returns the number of parenthesized subexpressions (capture groups).
func (r *Regex) NumSubexp() int {
	return r.engine.NumCaptures() - 1
}

// SubexpNames returns the names of the parenthesized subexpressions.
// names[0] is always "", as is the name of every unnamed group.
// The slice must not be modified.
func (r *Regex) SubexpNames() []string {
	return r.engine.SubexpNames()
}

// SubexpIndex returns the index of the first subexpression with the given
// name, or -1 if there is none.
func (r *Regex) SubexpIndex(name string) int {
	if name == "" {
		return -1
	}
	for i, n := range r.engine.SubexpNames() {
		if n == name {
			return i
		}
	}
	return -1
}

// IsMatchE reports whether b contains any match of the pattern.
// The error is a *prog.MatchError when the step budget runs out.
func (r *Regex) IsMatchE(b []byte) (bool, error) {
	return r.engine.IsMatch(b)
}

// IsMatch reports whether b contains any match of the pattern.
func (r *Regex) IsMatch(b []byte) bool {
	ok, _ := r.engine.IsMatch(b)
	return ok
}

// Match is IsMatch, named as in the standard library.
func (r *Regex) Match(b []byte) bool {
	return r.IsMatch(b)
}

// MatchString reports whether s contains any match of the pattern.
func (r *Regex) MatchString(s string) bool {
	return r.IsMatch([]byte(s))
}

// FindE returns the leftmost-first match in b, or nil.
// The error is a *prog.MatchError when the step budget runs out.
func (r *Regex) FindE(b []byte) (*Match, error) {
	return r.engine.Find(b)
}

// Find returns a slice holding the text of the leftmost match in b.
// A nil return value indicates no match.
//
// Example:
//
//	re := rebound.MustCompile(`\d+`)
//	match := re.Find([]byte("age: 42"))
//	println(string(match)) // "42"
func (r *Regex) Find(b []byte) []byte {
	m, _ := r.engine.Find(b)
	if m == nil {
		return nil
	}
	return m.Bytes()
}

// FindString returns the text of the leftmost match in s.
// An empty string is returned both for no match and for an empty match;
// use FindStringIndex to tell them apart.
func (r *Regex) FindString(s string) string {
	loc := r.FindStringIndex(s)
	if loc == nil {
		return ""
	}
	return s[loc[0]:loc[1]]
}

// FindIndex returns a two-element slice of integers defining the location of
// the leftmost match in b. The match itself is at b[loc[0]:loc[1]].
// A nil return value indicates no match.
func (r *Regex) FindIndex(b []byte) []int {
	m, _ := r.engine.Find(b)
	if m == nil {
		return nil
	}
	return []int{m.Start(), m.End()}
}

// FindStringIndex returns a two-element slice of integers defining the
// location of the leftmost match in s.
func (r *Regex) FindStringIndex(s string) []int {
	return r.FindIndex([]byte(s))
}

// FindAllE returns the locations of successive non-overlapping matches in b,
// at most n of them when n >= 0. Matches found before the step budget ran
// out are returned together with the *prog.MatchError.
func (r *Regex) FindAllE(b []byte, n int) ([][]int, error) {
	var out [][]int
	err := r.allMatches(b, n, false, func(slots []int) bool {
		out = append(out, []int{slots[0], slots[1]})
		return true
	})
	return out, err
}

// FindAllIndex returns the locations of successive non-overlapping matches
// in b. If n >= 0, at most n matches are returned; n < 0 returns all.
// A nil return value indicates no match.
func (r *Regex) FindAllIndex(b []byte, n int) [][]int {
	out, _ := r.FindAllE(b, n)
	return out
}

// FindAllStringIndex is the string version of FindAllIndex.
func (r *Regex) FindAllStringIndex(s string, n int) [][]int {
	return r.FindAllIndex([]byte(s), n)
}

// FindAll returns successive non-overlapping matches in b.
// If n >= 0, at most n matches are returned; n < 0 returns all.
//
// Example:
//
//	re := rebound.MustCompile(`\d`)
//	matches := re.FindAll([]byte("1 2 3"), -1)
//	// matches = [][]byte{[]byte("1"), []byte("2"), []byte("3")}
func (r *Regex) FindAll(b []byte, n int) [][]byte {
	locs := r.FindAllIndex(b, n)
	if locs == nil {
		return nil
	}
	out := make([][]byte, len(locs))
	for i, loc := range locs {
		out[i] = b[loc[0]:loc[1]:loc[1]]
	}
	return out
}

// FindAllString is the string version of FindAll.
func (r *Regex) FindAllString(s string, n int) []string {
	locs := r.FindAllStringIndex(s, n)
	if locs == nil {
		return nil
	}
	out := make([]string, len(locs))
	for i, loc := range locs {
		out[i] = s[loc[0]:loc[1]]
	}
	return out
}

// Count returns the number of non-overlapping matches in b.
// If n >= 0, counts at most n matches.
func (r *Regex) Count(b []byte, n int) int {
	count := 0
	_ = r.allMatches(b, n, false, func([]int) bool {
		count++
		return true
	})
	return count
}

// CountString is the string version of Count.
func (r *Regex) CountString(s string, n int) int {
	return r.Count([]byte(s), n)
}

// Matches returns an iterator over successive non-overlapping matches in b.
// Each range over the sequence restarts the search from the beginning.
//
// Example:
//
//	for m := range re.Matches(input) {
//	    fmt.Println(m.Start(), m.String())
//	}
func (r *Regex) Matches(b []byte) iter.Seq[*Match] {
	return func(yield func(*Match) bool) {
		_ = r.allMatches(b, -1, false, func(slots []int) bool {
			return yield(meta.NewMatch(slots[0], slots[1], b))
		})
	}
}

// allMatches calls yield with the slots of each successive match until yield
// returns false, n matches were reported (n >= 0), or the input is exhausted.
//
// An empty match adjacent to the previous match is skipped. After an empty
// match the search resumes one rune later.
func (r *Regex) allMatches(b []byte, n int, captures bool, yield func([]int) bool) error {
	pos, prevEnd := 0, -1
	for count := 0; n < 0 || count < n; {
		if pos > len(b) {
			return nil
		}
		slots, err := r.searchAt(b, pos, captures)
		if err != nil || slots == nil {
			return err
		}

		accept := true
		if slots[1] == pos {
			// Empty match at pos.
			if slots[0] == prevEnd {
				accept = false
			}
			pos += runeWidth(b, pos)
		} else {
			pos = slots[1]
		}
		prevEnd = slots[1]

		if accept {
			count++
			if !yield(slots) {
				return nil
			}
		}
	}
	return nil
}

// searchAt returns the slots of the first match at or after pos.
func (r *Regex) searchAt(b []byte, pos int, captures bool) ([]int, error) {
	if captures {
		return r.engine.FindSubmatchAt(b, pos)
	}
	m, err := r.engine.FindAt(b, pos)
	if m == nil || err != nil {
		return nil, err
	}
	return []int{m.Start(), m.End()}, nil
}

// runeWidth returns the width of the UTF-8 sequence at b[pos], at least 1.
func runeWidth(b []byte, pos int) int {
	if pos >= len(b) {
		return 1
	}
	_, w := utf8.DecodeRune(b[pos:])
	return w
}
