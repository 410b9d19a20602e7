package rebound_test

import (
	"errors"
	"fmt"
	"strings"

	"github.com/coregx/rebound"
	"github.com/coregx/rebound/prog"
)

// ExampleCompile demonstrates basic pattern compilation and matching.
func ExampleCompile() {
	re, err := rebound.Compile(`\d+`)
	if err != nil {
		panic(err)
	}

	fmt.Println(re.IsMatch([]byte("hello 123")))
	// Output: true
}

// ExampleRegex_Find demonstrates finding the first match.
func ExampleRegex_Find() {
	re := rebound.MustCompile(`\d+`)
	match := re.Find([]byte("age: 42 years"))
	fmt.Println(string(match))
	// Output: 42
}

// ExampleRegex_FindAllString demonstrates the empty-match rules.
func ExampleRegex_FindAllString() {
	re := rebound.MustCompile(`a*`)
	fmt.Printf("%q\n", re.FindAllString("baaac", -1))
	// Output: ["" "aaa" ""]
}

// ExampleRegex_Captures demonstrates named groups and backreferences.
func ExampleRegex_Captures() {
	re := rebound.MustCompile(`(?P<word>\w+) \k<word>`)
	caps := re.CapturesString("it was the the best")

	word, _ := caps.Name("word")
	start, end, _ := caps.Index(0)
	fmt.Println(string(word), start, end)
	// Output: the 7 14
}

// ExampleRegex_Matches demonstrates iterating over matches.
func ExampleRegex_Matches() {
	re := rebound.MustCompile(`o+`)
	for m := range re.Matches([]byte("foo boo")) {
		fmt.Println(m.Start(), m.String())
	}
	// Output:
	// 1 oo
	// 5 oo
}

// ExampleRegex_ReplaceAllString demonstrates replacement templates.
func ExampleRegex_ReplaceAllString() {
	re := rebound.MustCompile(`(?P<first>\w+) (?P<last>\w+)`)
	fmt.Println(re.ReplaceAllString("Ada Lovelace", "${last}, $first"))
	// Output: Lovelace, Ada
}

// ExampleRegex_Split demonstrates splitting with a limit.
func ExampleRegex_Split() {
	re := rebound.MustCompile(`\s*,\s*`)
	fmt.Printf("%q\n", re.Split("a , b,c ,d", 3))
	// Output: ["a" "b" "c ,d"]
}

// ExampleRegex_IsMatchE demonstrates the step budget on a pathological
// backreference pattern.
func ExampleRegex_IsMatchE() {
	config := rebound.DefaultConfig()
	config.StepLimit = 10_000
	re, err := rebound.CompileWithConfig(`(a+)+\1b`, config)
	if err != nil {
		panic(err)
	}

	_, err = re.IsMatchE([]byte(strings.Repeat("a", 40)))
	fmt.Println(errors.Is(err, prog.ErrResourceExhausted))
	// Output: true
}

// ExampleRegex_Strategy shows the strategy selected for different patterns.
func ExampleRegex_Strategy() {
	for _, p := range []string{`foo|bar`, `\w+@\w+`, `(\w)\1`} {
		fmt.Println(rebound.MustCompile(p).Strategy())
	}
	// Output:
	// literal
	// lazydfa
	// backtrack
}
