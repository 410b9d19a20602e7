package meta

import (
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/coregx/rebound/dfa/lazy"
	"github.com/coregx/rebound/nfa"
	"github.com/coregx/rebound/prefilter"
	"github.com/coregx/rebound/prog"
	"github.com/coregx/rebound/syntax"
)

// Engine is a compiled pattern together with the strategy chosen for it.
//
// The engine is immutable after compilation. Search methods take scratch
// memory from an internal pool, so one Engine may be used from many
// goroutines at once.
type Engine struct {
	pattern  string
	config   Config
	info     *syntax.Info
	strategy Strategy

	prog     *prog.Program
	btConfig prog.Config

	// nfa and pikevm are nil for patterns with backreferences.
	nfa    *nfa.NFA
	pikevm *nfa.PikeVM

	// dfa is nil unless the strategy is StrategyLazyDFA.
	dfa *lazy.DFA

	// prefilter skips to candidate start positions; may be nil.
	prefilter prefilter.Prefilter

	// literals is the exact literal set, in priority order, for
	// StrategyLiteral. ac is set when there is more than one.
	literals [][]byte
	ac       *prefilter.LiteralSet

	pool   *searchStatePool
	logger *log.Logger
	stats  counters
}

// Stats is a snapshot of engine execution counters.
type Stats struct {
	// BacktrackSearches counts searches run on the backtracking VM
	BacktrackSearches uint64

	// PikeVMSearches counts searches run on the PikeVM
	PikeVMSearches uint64

	// DFASearches counts lazy DFA searches
	DFASearches uint64

	// LiteralSearches counts memmem and Aho-Corasick searches
	LiteralSearches uint64

	// PrefilterAbandoned counts searches whose prefilter was retired
	PrefilterAbandoned uint64

	// DFACacheClears counts cache clears across all DFA searches
	DFACacheClears uint64

	// DFAFallbacks counts DFA searches that gave up and fell back to the PikeVM
	DFAFallbacks uint64

	// StepLimitExceeded counts backtracking searches that ran out of steps
	StepLimitExceeded uint64
}

type counters struct {
	backtrack, pikevm, dfa, literal atomic.Uint64
	prefilterAbandoned              atomic.Uint64
	dfaClears, dfaFallbacks         atomic.Uint64
	stepLimit                       atomic.Uint64
}

// Stats returns a snapshot of the execution counters.
func (e *Engine) Stats() Stats {
	return Stats{
		BacktrackSearches:  e.stats.backtrack.Load(),
		PikeVMSearches:     e.stats.pikevm.Load(),
		DFASearches:        e.stats.dfa.Load(),
		LiteralSearches:    e.stats.literal.Load(),
		PrefilterAbandoned: e.stats.prefilterAbandoned.Load(),
		DFACacheClears:     e.stats.dfaClears.Load(),
		DFAFallbacks:       e.stats.dfaFallbacks.Load(),
		StepLimitExceeded:  e.stats.stepLimit.Load(),
	}
}

// ResetStats zeroes the execution counters.
func (e *Engine) ResetStats() {
	for _, c := range []*atomic.Uint64{
		&e.stats.backtrack, &e.stats.pikevm, &e.stats.dfa, &e.stats.literal,
		&e.stats.prefilterAbandoned, &e.stats.dfaClears, &e.stats.dfaFallbacks,
		&e.stats.stepLimit,
	} {
		c.Store(0)
	}
}

// Pattern returns the source text of the pattern.
func (e *Engine) Pattern() string {
	return e.pattern
}

// Strategy returns the execution strategy selected for this engine.
func (e *Engine) Strategy() Strategy {
	return e.strategy
}

// NumCaptures returns the number of capture groups including group 0.
func (e *Engine) NumCaptures() int {
	return e.info.CaptureCount
}

// SubexpNames returns the capture group names indexed by group number.
// Index 0 and unnamed groups are "".
func (e *Engine) SubexpNames() []string {
	return e.info.CaptureNames
}

// Info returns the analysis of the pattern.
func (e *Engine) Info() *syntax.Info {
	return e.info
}

// Program returns the backtracking bytecode.
func (e *Engine) Program() *prog.Program {
	return e.prog
}

// NFA returns the Thompson NFA, or nil for patterns with backreferences.
func (e *Engine) NFA() *nfa.NFA {
	return e.nfa
}

// Prefilter returns the candidate prefilter, or nil.
func (e *Engine) Prefilter() prefilter.Prefilter {
	return e.prefilter
}

// debug logs at debug level when a logger is configured.
func (e *Engine) debug(msg string, keyvals ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, keyvals...)
	}
}
