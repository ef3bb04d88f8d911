package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sambeau/esql/config"
	"github.com/sambeau/esql/pkg/esql/esql"
)

func noEnv(string) string { return "" }

// runCLI runs the command and returns stdout, stderr and the exit status.
func runCLI(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr, noEnv)
	return stdout.String(), stderr.String(), exitCode(err)
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 1
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestEvalInline(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{"pipeline", "from logs | where status >= 500 | limit 10", "FROM logs | WHERE (status >= 500) | LIMIT 10\n"},
		{"row", "ROW a = 1, b = \"x\"", "ROW a = 1, b = \"x\"\n"},
		{"set", "SET max_rows = 5; FROM i", "SET max_rows = 5; FROM i\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, code := runCLI(t, "-e", tt.query)
			assert.Equal(t, 0, code)
			assert.Equal(t, tt.expected, stdout)
			assert.Empty(t, stderr)
		})
	}
}

func TestEvalSyntaxError(t *testing.T) {
	stdout, stderr, code := runCLI(t, "-e", "FROM logs | EVAL x = )")
	assert.Equal(t, exitSyntax, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Syntax error:\n  in: <eval>\n  at: line 1, column 22")
	assert.Contains(t, stderr, "    FROM logs | EVAL x = )\n")
	assert.Contains(t, stderr, strings.Repeat(" ", 4+21)+"^\n")
}

func TestDevFlag(t *testing.T) {
	_, stderr, code := runCLI(t, "-e", "FROM i | INSIST a")
	assert.Equal(t, exitSyntax, code)
	assert.Contains(t, stderr, "INSIST is only available in development mode")

	stdout, stderr, code := runCLI(t, "--dev", "-e", "FROM i | INSIST a")
	assert.Equal(t, 0, code)
	assert.Equal(t, "FROM i | INSIST a\n", stdout)
	assert.Contains(t, stderr, "warning: parser.dev_mode is enabled")
}

func TestMaxDepthFlag(t *testing.T) {
	_, stderr, code := runCLI(t, "--max-depth", "4", "-e", "ROW a = ((((((1))))))")
	assert.Equal(t, exitSyntax, code)
	assert.Contains(t, stderr, "Nesting error")
	assert.Contains(t, stderr, "maximum depth of 4")

	_, _, code = runCLI(t, "--max-depth", "-1", "-e", "ROW a = 1")
	assert.Equal(t, exitIO, code, "invalid overrides fail validation")
}

func TestTreeOutput(t *testing.T) {
	stdout, _, code := runCLI(t, "--tree", "-e", "ROW a = 1")
	assert.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(stdout, "Statements  ROW a = 1\n"))
	assert.Contains(t, stdout, "RowCommand  ROW a = 1\n")
	assert.Contains(t, stdout, "IntegerLiteral  1\n")
}

func TestJSONOutput(t *testing.T) {
	stdout, _, code := runCLI(t, "--json", "-e", "FROM i | LIMIT 1")
	assert.Equal(t, 0, code)

	var res jsonResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &res))
	assert.True(t, res.OK)
	assert.Equal(t, "<eval>", res.File)
	assert.Equal(t, "FROM i | LIMIT 1", res.Query)
	assert.Equal(t, 1, res.Nodes["LimitCommand"])
	assert.Nil(t, res.Error)

	stdout, stderr, code := runCLI(t, "--json", "-e", "FROM i |")
	assert.Equal(t, exitSyntax, code)
	assert.Empty(t, stderr)

	var failed map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &failed))
	assert.Equal(t, false, failed["ok"])
	errObj := failed["error"].(map[string]any)
	assert.Equal(t, "EOF-0001", errObj["code"])
	assert.Equal(t, "eof", errObj["class"])
	assert.Equal(t, "<eval>", errObj["file"])
}

func TestCheckFiles(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.esql", "FROM logs | LIMIT 1\n")
	bad := writeFile(t, dir, "bad.esql", "FROM logs |\n  WHERE\n")

	stdout, stderr, code := runCLI(t, "--check", good)
	assert.Equal(t, 0, code)
	assert.Empty(t, stdout)
	assert.Empty(t, stderr)

	stdout, stderr, code = runCLI(t, "--check", good, bad)
	assert.Equal(t, exitSyntax, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "in: "+bad)
	assert.Contains(t, stderr, "at: line ")

	_, stderr, code = runCLI(t, "--check", filepath.Join(dir, "missing.esql"), bad)
	assert.Equal(t, exitIO, code, "I/O failures win over syntax errors")
	assert.Contains(t, stderr, "Error reading")
}

func TestCheckRequiresFiles(t *testing.T) {
	_, _, code := runCLI(t, "--check")
	assert.Equal(t, exitIO, code)
}

func TestParseFilesPrintsQueries(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.esql", "from a")
	b := writeFile(t, dir, "b.esql", "from b | keep x")

	stdout, _, code := runCLI(t, a, b)
	assert.Equal(t, 0, code)
	assert.Equal(t, "FROM a\nFROM b | KEEP x\n", stdout)
}

func TestDirectoryTargets(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.esql", "FROM b")
	writeFile(t, dir, "nested/a.esql", "FROM a")
	writeFile(t, dir, "notes.txt", "not a query")
	writeFile(t, dir, ".hidden/c.esql", "FROM c")

	files, err := expandTargets([]string{dir}, config.StringOrSlice{"*.esql"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "b.esql"),
		filepath.Join(dir, "nested", "a.esql"),
	}, files)

	stdout, _, code := runCLI(t, dir)
	assert.Equal(t, 0, code)
	assert.Equal(t, "FROM b\nFROM a\n", stdout)
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "esql.yaml", `
parser:
  dev_mode: true
profiles:
  strict:
    dev_mode: false
`)

	_, _, code := runCLI(t, "--config", cfgPath, "-e", "FROM i | INSIST a")
	assert.Equal(t, 0, code)

	_, _, code = runCLI(t, "--config", cfgPath, "--profile", "strict", "-e", "FROM i | INSIST a")
	assert.Equal(t, exitSyntax, code)

	_, stderr, code := runCLI(t, "--config", cfgPath, "--profile", "nope", "-e", "ROW a = 1")
	assert.Equal(t, exitIO, code)
	assert.Empty(t, stderr)

	_, _, code = runCLI(t, "--config", filepath.Join(dir, "missing.yaml"), "-e", "ROW a = 1")
	assert.Equal(t, exitIO, code)
}

func TestConfigFromEnv(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "esql.yaml", "parser:\n  max_depth: 4\n")
	getenv := func(key string) string {
		if key == "ESQL_CONFIG" {
			return cfgPath
		}
		return ""
	}

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-e", "ROW a = ((((((1))))))"}, &stdout, &stderr, getenv)
	assert.Equal(t, exitSyntax, exitCode(err))
}

func TestLogLevelFlag(t *testing.T) {
	_, stderr, code := runCLI(t, "--log-level", "debug", "-e", "ROW a = 1")
	assert.Equal(t, 0, code)
	assert.Contains(t, stderr, "parsed query")

	_, _, code = runCLI(t, "--log-level", "loud", "-e", "ROW a = 1")
	assert.Equal(t, exitIO, code)
}

func TestVersionAndHelp(t *testing.T) {
	stdout, _, code := runCLI(t, "-V")
	assert.Equal(t, 0, code)
	assert.Equal(t, "esql version dev (unknown)\n", stdout)

	stdout, _, code = runCLI(t, "--help")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Usage:")

	stdout, _, code = runCLI(t, "-h")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Usage:")

	_, stderr, code := runCLI(t, "--bogus")
	assert.Equal(t, exitIO, code)
	assert.Contains(t, stderr, "Usage:")
}

func TestDescribe(t *testing.T) {
	stdout, _, code := runCLI(t, "describe", "where")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "WHERE condition")

	stdout, _, code = runCLI(t, "describe", "lookup", "join")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "LOOKUP JOIN index ON condition")

	stdout, _, code = runCLI(t, "describe", "--json", "fork")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, `"name": "FORK"`)

	_, stderr, code := runCLI(t, "describe")
	assert.Equal(t, exitSyntax, code)
	assert.Contains(t, stderr, "Usage: esql describe")

	var out, errOut bytes.Buffer
	err := run(context.Background(), []string{"describe", "whre"}, &out, &errOut, noEnv)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Did you mean: WHERE")
}

func TestWatchRequiresTargets(t *testing.T) {
	_, _, code := runCLI(t, "--watch")
	assert.Equal(t, exitIO, code)
}

func TestWatcherRechecksChangedFiles(t *testing.T) {
	dir := t.TempDir()
	query := writeFile(t, dir, "q.esql", "FROM a")

	cfg := config.Defaults()
	cfg.Watch.Debounce = 50 * time.Millisecond
	log, _ := test.NewNullLogger()

	var stdout, stderr bytes.Buffer
	c := &checker{
		opts:   esql.FromConfig(cfg),
		stdout: &stdout,
		stderr: &stderr,
		log:    log,
		check:  true,
	}

	w, err := NewWatcher(c, cfg, []string{dir}, &stdout, &stderr)
	require.NoError(t, err)
	defer w.Close()

	results := make(chan bool, 10)
	w.onCheck = func(path string, ok bool) {
		if path == query {
			results <- ok
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	// waitFor drains re-check results until one matches want
	waitFor := func(want bool) {
		t.Helper()
		timeout := time.After(5 * time.Second)
		for {
			select {
			case ok := <-results:
				if ok == want {
					return
				}
			case <-timeout:
				t.Fatalf("no re-check with ok=%v", want)
			}
		}
	}

	require.NoError(t, os.WriteFile(query, []byte("FROM a |"), 0644))
	waitFor(false)

	require.NoError(t, os.WriteFile(query, []byte("FROM a | LIMIT 1"), 0644))
	waitFor(true)
}

func TestWatcherWants(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "single.query", "FROM a")
	sub := filepath.Join(dir, "queries")
	require.NoError(t, os.MkdirAll(sub, 0755))

	cfg := config.Defaults()
	w, err := NewWatcher(&checker{}, cfg, []string{file, sub}, &bytes.Buffer{}, &bytes.Buffer{})
	require.NoError(t, err)
	defer w.Close()

	assert.True(t, w.wants(file), "named files are always wanted")
	assert.True(t, w.wants(filepath.Join(sub, "x.esql")))
	assert.True(t, w.wants(filepath.Join(sub, "deep", "x.esql")))
	assert.False(t, w.wants(filepath.Join(sub, "x.txt")))
	assert.False(t, w.wants(filepath.Join(dir, "other.esql")))
}
