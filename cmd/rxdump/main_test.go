package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coregx/rebound/meta"
	"github.com/coregx/rebound/syntax"
)

func runCmd(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRun_Usage(t *testing.T) {
	code, _, stderr := runCmd(t)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "usage: rxdump")

	code, _, stderr = runCmd(t, "-bogus", "x")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "usage: rxdump")
}

func TestRun_Matches(t *testing.T) {
	code, stdout, _ := runCmd(t, `(?P<user>\w+)@(\w+)?`, "bob@example x@", "none")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "strategy: lazydfa")
	assert.Contains(t, stdout, `input 0: match [0,11) "bob@example"`)
	assert.Contains(t, stdout, `group 1 user [0,3) "bob"`)
	assert.Contains(t, stdout, `input 0: match [12,14) "x@"`)
	assert.Contains(t, stdout, "group 2 unset")
	assert.Contains(t, stdout, "input 1: no match")
}

func TestRun_Dumps(t *testing.T) {
	code, stdout, _ := runCmd(t, "-ast", "-prog", "-nfa", `a(b|c)\1`)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "strategy: backtrack")
	assert.Contains(t, stdout, "ast:")
	assert.Contains(t, stdout, "prog:")
	assert.Contains(t, stdout, "nfa: none")

	code, stdout, _ = runCmd(t, "-nfa", `ab+`)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "nfa:")
	assert.NotContains(t, stdout, "nfa: none")
}

func TestRun_Strategy(t *testing.T) {
	code, stdout, _ := runCmd(t, "-strategy", "pikevm", "hello", "say hello")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "strategy: pikevm")
	assert.Contains(t, stdout, `match [4,9) "hello"`)

	code, _, stderr := runCmd(t, "-strategy", "quantum", "hello")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unknown strategy")
}

func TestRun_CompileError(t *testing.T) {
	code, _, stderr := runCmd(t, "a(b")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "compile failed")
	assert.Contains(t, stderr, "missing closing )")
}

func TestRun_Verbose(t *testing.T) {
	code, _, stderr := runCmd(t, "-v", `\d+x`, "12x")
	require.Equal(t, 0, code)
	assert.Contains(t, stderr, "strategy selected")
}

func TestRun_StepLimit(t *testing.T) {
	path := writeFile(t, "limits.toml", "step_limit = 1000\n")
	code, _, stderr := runCmd(t, "-config", path, `(a+)+\1b`, "aaaaaaaaaaaaaaaaaaaaaaaa")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "search failed")
}

func TestLoadConfig(t *testing.T) {
	tomlPath := writeFile(t, "c.toml", `
strategy = "backtrack"
flags = "im"
step_limit = 5000
enable_dfa = false
max_literals = 8
`)
	yamlPath := writeFile(t, "c.yaml", `
strategy: pikevm
flags: s
max_repeat: 50
enable_prefilter: false
`)

	config := meta.DefaultConfig()
	require.NoError(t, loadConfig(tomlPath, &config))
	assert.Equal(t, meta.StrategyBacktrack, config.Strategy)
	assert.Equal(t, syntax.FoldCase|syntax.MultiLine, config.Flags)
	assert.Equal(t, 5000, config.StepLimit)
	assert.False(t, config.EnableDFA)
	assert.Equal(t, 8, config.MaxLiterals)
	assert.Equal(t, meta.DefaultConfig().MaxRepeat, config.MaxRepeat, "unset keys keep defaults")

	config = meta.DefaultConfig()
	require.NoError(t, loadConfig(yamlPath, &config))
	assert.Equal(t, meta.StrategyPikeVM, config.Strategy)
	assert.Equal(t, syntax.DotNL, config.Flags)
	assert.Equal(t, 50, config.MaxRepeat)
	assert.False(t, config.EnablePrefilter)
	assert.True(t, config.EnableDFA)
}

func TestLoadConfig_Errors(t *testing.T) {
	config := meta.DefaultConfig()
	assert.Error(t, loadConfig(writeFile(t, "c.json", "{}"), &config))
	assert.Error(t, loadConfig(writeFile(t, "c.toml", `strategy = "nope"`), &config))
	assert.Error(t, loadConfig(writeFile(t, "c.yaml", "flags: x"), &config))
	assert.Error(t, loadConfig(filepath.Join(t.TempDir(), "missing.toml"), &config))

	opts := options{configPath: writeFile(t, "bad.toml", "max_repeat = 0")}
	_, err := buildConfig(opts)
	var cfgErr *meta.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestRun_ConfigFile(t *testing.T) {
	path := writeFile(t, "ci.yaml", "flags: i\n")
	code, stdout, _ := runCmd(t, "-config", path, "hello", "HeLLo")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, `match [0,5) "HeLLo"`)
}
