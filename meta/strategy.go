package meta

import (
	"fmt"
	"strings"

	"github.com/coregx/rebound/syntax"
)

// Strategy represents the execution strategy for regex matching.
type Strategy int

const (
	// StrategyAuto lets the engine choose from pattern features.
	StrategyAuto Strategy = iota

	// StrategyBacktrack runs every search on the backtracking VM.
	// Selected for:
	//   - Patterns with backreferences (always)
	//   - Explicit request, e.g. to compare engines
	StrategyBacktrack

	// StrategyPikeVM runs every search on the PikeVM: linear time, no DFA
	// cache, no memoized backtracking.
	StrategyPikeVM

	// StrategyLazyDFA answers existence queries with the lazy DFA and finds
	// positions and captures with a prefiltered memoized backtracker, or
	// the PikeVM when the memo bitset would not fit.
	// Selected for:
	//   - Every backreference-free pattern that is not a literal set
	StrategyLazyDFA

	// StrategyLiteral searches for an exact literal set without any
	// automaton: memmem for one literal, Aho-Corasick for several.
	// Selected for:
	//   - Patterns like `hello` or `foo|bar|baz` without capture groups
	StrategyLiteral

	strategyCount
)

var strategyNames = [strategyCount]string{
	StrategyAuto:      "auto",
	StrategyBacktrack: "backtrack",
	StrategyPikeVM:    "pikevm",
	StrategyLazyDFA:   "lazydfa",
	StrategyLiteral:   "literal",
}

// String returns the lower-case name of the Strategy.
func (s Strategy) String() string {
	if s.valid() {
		return strategyNames[s]
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

func (s Strategy) valid() bool {
	return s >= 0 && s < strategyCount
}

// ParseStrategy returns the Strategy with the given name (case-insensitive).
func ParseStrategy(name string) (Strategy, error) {
	for i, n := range strategyNames {
		if strings.EqualFold(name, n) {
			return Strategy(i), nil
		}
	}
	return StrategyAuto, &ConfigError{Field: "Strategy", Message: fmt.Sprintf("unknown strategy %q", name)}
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	if !s.valid() {
		return nil, &ConfigError{Field: "Strategy", Message: "unknown strategy " + s.String()}
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// selection is the outcome of strategy selection, with the reason logged.
type selection struct {
	strategy Strategy
	reason   string
}

// selectStrategy chooses the execution strategy.
//
// Selection order:
//  1. Backreferences → StrategyBacktrack, whatever was requested
//  2. A forced strategy, when it can run the pattern
//  3. Exact literal set without captures → StrategyLiteral
//  4. Otherwise → StrategyLazyDFA (StrategyPikeVM when the DFA is disabled)
func selectStrategy(info *syntax.Info, config Config, literalSet bool) (selection, error) {
	if info.NeedsBacktrack {
		return selection{StrategyBacktrack, "backreferences"}, nil
	}

	switch config.Strategy {
	case StrategyBacktrack, StrategyPikeVM:
		return selection{config.Strategy, "forced"}, nil
	case StrategyLazyDFA:
		if !config.EnableDFA {
			return selection{}, &ConfigError{Field: "Strategy", Message: "lazydfa requires EnableDFA"}
		}
		return selection{StrategyLazyDFA, "forced"}, nil
	case StrategyLiteral:
		if !literalSet {
			return selection{}, ErrNotLiteral
		}
		return selection{StrategyLiteral, "forced"}, nil
	}

	if literalSet {
		return selection{StrategyLiteral, "exact literal set"}, nil
	}
	if !config.EnableDFA {
		return selection{StrategyPikeVM, "dfa disabled"}, nil
	}
	return selection{StrategyLazyDFA, "default"}, nil
}
