// Command rxdump compiles a pattern and prints what the engine made of it:
// the syntax tree, the backtracking program, the NFA, the selected strategy,
// and the matches on any inputs given.
//
// Usage:
//
//	rxdump [flags] PATTERN [INPUT...]
//
// Flags:
//
//	-ast            print the analyzed syntax tree
//	-prog           print the backtracking program
//	-nfa            print the Thompson NFA
//	-strategy name  force auto, backtrack, pikevm, lazydfa or literal
//	-config file    load engine configuration from a .toml or .yaml file
//	-v              log engine decisions to stderr
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/coregx/rebound"
	"github.com/coregx/rebound/meta"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	ast, prog, nfa, verbose bool
	strategy                string
	configPath              string
}

// run executes the command and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	var opts options
	fs := flag.NewFlagSet("rxdump", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.ast, "ast", false, "print the analyzed syntax tree")
	fs.BoolVar(&opts.prog, "prog", false, "print the backtracking program")
	fs.BoolVar(&opts.nfa, "nfa", false, "print the Thompson NFA")
	fs.StringVar(&opts.strategy, "strategy", "", "force a strategy: auto, backtrack, pikevm, lazydfa, literal")
	fs.StringVar(&opts.configPath, "config", "", "load engine configuration from a .toml or .yaml file")
	fs.BoolVar(&opts.verbose, "v", false, "log engine decisions to stderr")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: rxdump [flags] PATTERN [INPUT...]")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return 1
	}

	logger := log.NewWithOptions(stderr, log.Options{
		Prefix:          "rxdump",
		ReportTimestamp: false,
	})
	if opts.verbose {
		logger.SetLevel(log.DebugLevel)
	}

	config, err := buildConfig(opts)
	if err != nil {
		logger.Error("invalid configuration", "err", err)
		fs.Usage()
		return 1
	}
	if opts.verbose {
		config.Logger = logger
	}

	pattern := fs.Arg(0)
	re, err := rebound.CompileWithConfig(pattern, config)
	if err != nil {
		logger.Error("compile failed", "err", err)
		return 1
	}

	dump(stdout, re, opts)

	failed := false
	for i, input := range fs.Args()[1:] {
		if err := printMatches(stdout, re, i, input); err != nil {
			logger.Error("search failed", "input", i, "err", err)
			failed = true
		}
	}
	if failed {
		return 1
	}
	return 0
}

// buildConfig starts from the defaults, applies the config file and then
// the -strategy flag.
func buildConfig(opts options) (meta.Config, error) {
	config := rebound.DefaultConfig()
	if opts.configPath != "" {
		if err := loadConfig(opts.configPath, &config); err != nil {
			return config, err
		}
	}
	if opts.strategy != "" {
		s, err := meta.ParseStrategy(opts.strategy)
		if err != nil {
			return config, err
		}
		config.Strategy = s
	}
	return config, config.Validate()
}

// loadConfig decodes a TOML or YAML file, chosen by extension, over config.
func loadConfig(path string, config *meta.Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), config); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	default:
		return fmt.Errorf("%s: unknown config format, want .toml, .yaml or .yml", path)
	}
	return nil
}

func dump(w io.Writer, re *rebound.Regex, opts options) {
	e := re.Engine()
	info := e.Info()
	fmt.Fprintf(w, "pattern:  %s\n", re.String())
	fmt.Fprintf(w, "strategy: %s\n", re.Strategy())
	fmt.Fprintf(w, "groups:   %d\n", re.NumSubexp())
	fmt.Fprintf(w, "minlen:   %d\n", info.MinLen)
	if pf := e.Prefilter(); pf != nil {
		fmt.Fprintf(w, "prefilter: complete=%v literal_len=%d\n", pf.IsComplete(), pf.LiteralLen())
	}

	if opts.ast {
		fmt.Fprintf(w, "\nast:\n%s\n", info.Root)
	}
	if opts.prog {
		fmt.Fprintf(w, "\nprog:\n%s", e.Program())
	}
	if opts.nfa {
		if n := e.NFA(); n != nil {
			fmt.Fprintf(w, "\nnfa:\n%s", n)
		} else {
			fmt.Fprintln(w, "\nnfa: none (pattern needs backtracking)")
		}
	}
}

func printMatches(w io.Writer, re *rebound.Regex, index int, input string) error {
	names := re.SubexpNames()
	h := []byte(input)
	count := 0
	for caps := range re.AllCaptures(h) {
		start, end, _ := caps.Index(0)
		fmt.Fprintf(w, "input %d: match [%d,%d) %q\n", index, start, end, input[start:end])
		for g := 1; g < caps.Len(); g++ {
			label := fmt.Sprint(g)
			if names[g] != "" {
				label += " " + names[g]
			}
			if s, e, ok := caps.Index(g); ok {
				fmt.Fprintf(w, "  group %s [%d,%d) %q\n", label, s, e, input[s:e])
			} else {
				fmt.Fprintf(w, "  group %s unset\n", label)
			}
		}
		count++
	}
	// AllCaptures stops silently when the step budget runs out.
	if _, err := re.FindAllE(h, -1); err != nil {
		return err
	}
	if count == 0 {
		fmt.Fprintf(w, "input %d: no match\n", index)
	}
	return nil
}
