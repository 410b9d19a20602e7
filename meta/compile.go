package meta

import (
	"errors"

	"github.com/coregx/rebound/dfa/lazy"
	"github.com/coregx/rebound/literal"
	"github.com/coregx/rebound/nfa"
	"github.com/coregx/rebound/prefilter"
	"github.com/coregx/rebound/prog"
	"github.com/coregx/rebound/syntax"
)

// Compile compiles a regex pattern string into an executable Engine.
//
// Steps:
//  1. Parse the pattern into a syntax tree
//  2. Analyze it against the configured limits
//  3. Compile the backtracking bytecode and, without backreferences, the NFA
//  4. Extract literals and select a strategy
//  5. Build the lazy DFA, literal searcher and prefilter the strategy needs
//
// Compilation is deterministic: it reads no clock, randomness or environment.
//
// Example:
//
//	engine, err := meta.Compile("hello.*world")
//	if err != nil {
//	    log.Fatal(err)
//	}
func Compile(pattern string) (*Engine, error) {
	return CompileWithConfig(pattern, DefaultConfig())
}

// CompileWithConfig compiles a pattern with custom configuration.
//
// Example:
//
//	config := meta.DefaultConfig()
//	config.StepLimit = 1_000_000
//	engine, err := meta.CompileWithConfig(`(a+)\1`, config)
func CompileWithConfig(pattern string, config Config) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	root, err := syntax.Parse(pattern, config.Flags)
	if err != nil {
		return nil, &CompileError{Pattern: pattern, Err: err}
	}
	info, err := syntax.Analyze(root, config.limits())
	if err != nil {
		return nil, &CompileError{Pattern: pattern, Err: err}
	}

	e, err := build(pattern, info, config)
	if err != nil {
		return nil, &CompileError{Pattern: pattern, Err: err}
	}
	return e, nil
}

// build assembles the engines for an analyzed pattern.
func build(pattern string, info *syntax.Info, config Config) (*Engine, error) {
	p, err := prog.Compile(info)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		pattern: pattern,
		config:  config,
		info:    info,
		prog:    p,
		btConfig: prog.Config{
			StepLimit:      config.StepLimit,
			MaxVisitedBits: config.MaxVisitedBits,
		},
	}
	if config.Logger != nil {
		e.logger = config.Logger.With("pattern", pattern)
	}

	extractor := literal.New(literal.ExtractorConfig{
		MaxLiterals:   config.MaxLiterals,
		MaxLiteralLen: literal.DefaultConfig().MaxLiteralLen,
		MaxClassSize:  literal.DefaultConfig().MaxClassSize,
	})

	if !info.NeedsBacktrack {
		n, err := nfa.Compile(info, nfa.CompilerConfig{MaxStates: config.MaxNFAStates})
		switch {
		case err == nil:
			e.nfa = n
			e.pikevm = nfa.NewPikeVM(n)
		case errors.Is(err, nfa.ErrTooComplex) &&
			(config.Strategy == StrategyAuto || config.Strategy == StrategyBacktrack):
			// The bytecode is bounded by the analyzer; run on it alone.
			e.debug("nfa too large, using backtracker", "err", err)
		default:
			return nil, err
		}
	}

	var lits [][]byte
	literalSet := false
	if info.CaptureCount == 1 && !info.NeedsBacktrack {
		lits, literalSet = extractor.Exact(info.Root)
	}

	sel := selection{StrategyBacktrack, "nfa unavailable"}
	if e.nfa != nil || info.NeedsBacktrack {
		sel, err = selectStrategy(info, config, literalSet)
		if err != nil {
			return nil, err
		}
	}

	if sel.strategy == StrategyLiteral {
		e.literals = lits
		if len(lits) > 1 {
			e.ac, err = prefilter.NewLiteralSet(lits)
			if err != nil {
				e.debug("aho-corasick build failed", "err", err)
				sel = selection{StrategyLazyDFA, "literal automaton unavailable"}
				if !config.EnableDFA {
					sel.strategy = StrategyPikeVM
				}
			}
		}
	}

	if sel.strategy == StrategyLazyDFA {
		d, err := lazy.New(e.nfa, lazy.Config{
			MaxStates:            config.MaxDFAStates,
			MaxCacheClears:       config.MaxCacheClears,
			DeterminizationLimit: config.DeterminizationLimit,
		})
		if err != nil {
			return nil, err
		}
		e.dfa = d
	}
	e.strategy = sel.strategy

	if sel.strategy != StrategyLiteral && config.EnablePrefilter && !info.AnchoredStart {
		e.prefilter = buildPrefilter(extractor, info, e.nfa)
	}

	e.pool = newSearchStatePool(e)
	e.debug("strategy selected",
		"strategy", e.strategy,
		"reason", sel.reason,
		"captures", info.CaptureCount,
		"program", p.Len(),
		"prefilter", prefilterName(e.prefilter),
	)
	return e, nil
}

// buildPrefilter prefers a literal prefilter and falls back to the NFA's
// first-byte set.
func buildPrefilter(extractor *literal.Extractor, info *syntax.Info, n *nfa.NFA) prefilter.Prefilter {
	if pf := prefilter.FromPrefixes(extractor.ExtractPrefixes(info.Root)); pf != nil {
		return pf
	}
	if n == nil {
		return nil
	}
	return prefilter.FromFirstBytes(nfa.FirstBytes(n))
}

func prefilterName(pf prefilter.Prefilter) string {
	if pf == nil {
		return "none"
	}
	if _, ok := pf.(*prefilter.ByteSetPrefilter); ok {
		return "byteset"
	}
	if pf.IsComplete() {
		return "literal (complete)"
	}
	return "literal"
}
