// Package meta implements the meta-engine orchestrator that compiles a
// pattern once and selects an execution strategy for it.
//
// The meta-engine coordinates:
//   - Backtracker: bytecode VM with captures, backreferences and a step budget
//   - PikeVM: linear-time NFA simulation with leftmost-first captures
//   - Lazy DFA: on-demand determinization for existence queries
//   - Literal engine: memmem / Aho-Corasick when the pattern is a literal set
//   - Prefilter: literal or first-byte candidate skipping in front of the VMs
//
// Strategy selection is based on:
//   - Pattern features (backreferences force the backtracker)
//   - Literal analysis (exact literal sets bypass the automata)
//   - Input size (memoized backtracking when its bitset fits the budget)
//
// An Engine is immutable after compilation and safe for concurrent use.
// Per-search scratch memory comes from a sync.Pool.
package meta

import (
	"github.com/charmbracelet/log"

	"github.com/coregx/rebound/syntax"
)

// Config controls meta-engine behavior and performance characteristics.
//
// The struct tags let command-line tools load a Config from TOML or YAML.
//
// Example:
//
//	config := meta.DefaultConfig()
//	config.Strategy = meta.StrategyPikeVM // Force NFA-only execution
//	engine, err := meta.CompileWithConfig(`(\w+)@(\w+)`, config)
type Config struct {
	// Strategy forces an execution strategy. StrategyAuto lets the engine
	// choose. Patterns with backreferences always use the backtracker.
	// Default: StrategyAuto
	Strategy Strategy `toml:"strategy" yaml:"strategy"`

	// Flags are the initial parse flags (case folding, multi-line, ...).
	Flags syntax.Flags `toml:"flags" yaml:"flags"`

	// MaxRepeat is the largest counted repetition accepted.
	// Default: 1000
	MaxRepeat int `toml:"max_repeat" yaml:"max_repeat"`

	// MaxProgramSize bounds the estimated compiled program size.
	// Default: 250000
	MaxProgramSize int `toml:"max_program_size" yaml:"max_program_size"`

	// MaxNesting bounds the depth of the syntax tree.
	// Default: 1000
	MaxNesting int `toml:"max_nesting" yaml:"max_nesting"`

	// StepLimit is the number of instructions one backtracking search may
	// execute before failing with a *prog.MatchError. Zero means no limit.
	// Default: 10000000
	StepLimit int `toml:"step_limit" yaml:"step_limit"`

	// MaxVisitedBits is the memoization budget for the backtracker, in bits
	// (program length times input length plus one). Searches above it use
	// the PikeVM instead, unless the pattern needs backtracking.
	// Default: 2097152 (256KB)
	MaxVisitedBits int `toml:"max_visited_bits" yaml:"max_visited_bits"`

	// MaxNFAStates bounds the Thompson NFA.
	// Default: 1000000
	MaxNFAStates int `toml:"max_nfa_states" yaml:"max_nfa_states"`

	// EnableDFA enables the Lazy DFA engine.
	// When false, existence queries use the PikeVM.
	// Default: true
	EnableDFA bool `toml:"enable_dfa" yaml:"enable_dfa"`

	// MaxDFAStates sets the maximum number of DFA states to cache.
	// Default: 10000
	MaxDFAStates uint32 `toml:"max_dfa_states" yaml:"max_dfa_states"`

	// MaxCacheClears is how many times one search may clear a full DFA
	// cache before falling back to the PikeVM.
	// Default: 5
	MaxCacheClears int `toml:"max_cache_clears" yaml:"max_cache_clears"`

	// DeterminizationLimit caps the number of NFA states per DFA state.
	// Default: 10000
	DeterminizationLimit int `toml:"determinization_limit" yaml:"determinization_limit"`

	// EnablePrefilter enables literal-based prefiltering.
	// Default: true
	EnablePrefilter bool `toml:"enable_prefilter" yaml:"enable_prefilter"`

	// MaxLiterals limits the number of literals extracted for prefiltering
	// and for the literal engine.
	// Default: 64
	MaxLiterals int `toml:"max_literals" yaml:"max_literals"`

	// Logger receives debug-level records of strategy selection, DFA cache
	// clears and fallbacks, and step-budget exhaustion. Nil disables logging.
	Logger *log.Logger `toml:"-" yaml:"-"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	limits := syntax.DefaultLimits()
	return Config{
		Strategy:             StrategyAuto,
		MaxRepeat:            limits.MaxRepeat,
		MaxProgramSize:       limits.MaxProgramSize,
		MaxNesting:           limits.MaxNesting,
		StepLimit:            10_000_000,
		MaxVisitedBits:       256 * 1024 * 8,
		MaxNFAStates:         1_000_000,
		EnableDFA:            true,
		MaxDFAStates:         10_000,
		MaxCacheClears:       5,
		DeterminizationLimit: 10_000,
		EnablePrefilter:      true,
		MaxLiterals:          64,
	}
}

// Validate checks if the configuration is valid.
// Returns a *ConfigError naming the first field out of range.
//
// Valid ranges:
//   - MaxRepeat: 1 to 100,000
//   - MaxProgramSize: 1 to 100,000,000
//   - MaxNesting: 1 to 100,000
//   - StepLimit, MaxVisitedBits: >= 0
//   - MaxNFAStates: >= 0 (0 = unlimited)
//   - MaxDFAStates: 2 to 1,000,000 (when EnableDFA)
//   - MaxCacheClears: >= 0, DeterminizationLimit: >= 1 (when EnableDFA)
//   - MaxLiterals: 1 to 1,000 (when EnablePrefilter)
func (c Config) Validate() error {
	if !c.Strategy.valid() {
		return &ConfigError{Field: "Strategy", Message: "unknown strategy " + c.Strategy.String()}
	}
	if c.MaxRepeat < 1 || c.MaxRepeat > 100_000 {
		return &ConfigError{Field: "MaxRepeat", Message: "must be between 1 and 100,000"}
	}
	if c.MaxProgramSize < 1 || c.MaxProgramSize > 100_000_000 {
		return &ConfigError{Field: "MaxProgramSize", Message: "must be between 1 and 100,000,000"}
	}
	if c.MaxNesting < 1 || c.MaxNesting > 100_000 {
		return &ConfigError{Field: "MaxNesting", Message: "must be between 1 and 100,000"}
	}
	if c.StepLimit < 0 {
		return &ConfigError{Field: "StepLimit", Message: "must not be negative"}
	}
	if c.MaxVisitedBits < 0 {
		return &ConfigError{Field: "MaxVisitedBits", Message: "must not be negative"}
	}
	if c.MaxNFAStates < 0 {
		return &ConfigError{Field: "MaxNFAStates", Message: "must not be negative"}
	}

	if c.EnableDFA {
		if c.MaxDFAStates < 2 || c.MaxDFAStates > 1_000_000 {
			return &ConfigError{Field: "MaxDFAStates", Message: "must be between 2 and 1,000,000"}
		}
		if c.MaxCacheClears < 0 {
			return &ConfigError{Field: "MaxCacheClears", Message: "must not be negative"}
		}
		if c.DeterminizationLimit < 1 {
			return &ConfigError{Field: "DeterminizationLimit", Message: "must be positive"}
		}
	}

	if c.EnablePrefilter {
		if c.MaxLiterals < 1 || c.MaxLiterals > 1_000 {
			return &ConfigError{Field: "MaxLiterals", Message: "must be between 1 and 1,000"}
		}
	}
	return nil
}

// limits returns the analyzer limits of c.
func (c Config) limits() syntax.Limits {
	return syntax.Limits{
		MaxRepeat:      c.MaxRepeat,
		MaxProgramSize: c.MaxProgramSize,
		MaxNesting:     c.MaxNesting,
	}
}

// ConfigError represents an invalid configuration parameter.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "rebound: invalid config: " + e.Field + ": " + e.Message
}
