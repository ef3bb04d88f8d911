package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) string { return "" }

func writeConfig(t *testing.T, content string) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	path = filepath.Join(dir, "esql.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return dir, path
}

func TestInterpolateEnv(t *testing.T) {
	getenv := func(key string) string {
		switch key {
		case "ESQL_LEVEL":
			return "debug"
		case "ESQL_PORT":
			return "9000"
		default:
			return ""
		}
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple substitution", "level: ${ESQL_LEVEL}", "level: debug"},
		{"with default (env set)", "level: ${ESQL_LEVEL:-info}", "level: debug"},
		{"with default (env not set)", "level: ${UNSET_VAR:-info}", "level: info"},
		{"unset without default", "level: ${UNSET_VAR}", "level: "},
		{"multiple substitutions", "listen: ${HOST:-127.0.0.1}:${ESQL_PORT}", "listen: 127.0.0.1:9000"},
		{"no substitution needed", "static: value", "static: value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(interpolateEnv([]byte(tt.input), getenv)))
		})
	}
}

func TestLoad(t *testing.T) {
	dir, path := writeConfig(t, `
parser:
  dev_mode: true
  max_depth: 64

logging:
  level: debug
  format: json
  output: logs/esql.log

metrics:
  enabled: true
  listen: 127.0.0.1:9100

watch:
  patterns: "*.query"

repl:
  history_file: .esql_history
`)

	cfg, resolved, err := LoadWithPath(path, noEnv)
	require.NoError(t, err)

	assert.Equal(t, path, resolved)
	assert.Equal(t, dir, cfg.BaseDir)
	assert.True(t, cfg.Parser.DevMode)
	assert.Equal(t, 64, cfg.Parser.MaxDepth)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, filepath.Join(dir, "logs", "esql.log"), cfg.Logging.Output)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "esql", cfg.Metrics.Namespace)
	assert.Equal(t, StringOrSlice{"*.query"}, cfg.Watch.Patterns)
	assert.Equal(t, filepath.Join(dir, ".esql_history"), cfg.REPL.HistoryFile)
}

func TestLoadKeepsStreamOutputs(t *testing.T) {
	_, path := writeConfig(t, "logging:\n  output: stdout\n")

	cfg, err := Load(path, noEnv)
	require.NoError(t, err)
	assert.Equal(t, "stdout", cfg.Logging.Output)
}

func TestLoadEmptyFileUsesDefaults(t *testing.T) {
	_, path := writeConfig(t, "")

	cfg, err := Load(path, noEnv)
	require.NoError(t, err)
	assert.Equal(t, Defaults().Parser, cfg.Parser)
	assert.Equal(t, Defaults().Logging, cfg.Logging)
}

func TestLoadWithEnvInterpolation(t *testing.T) {
	_, path := writeConfig(t, `
parser:
  max_depth: ${ESQL_MAX_DEPTH:-100}
logging:
  level: ${ESQL_LOG_LEVEL}
`)
	getenv := func(key string) string {
		if key == "ESQL_LOG_LEVEL" {
			return "trace"
		}
		return ""
	}

	cfg, err := Load(path, getenv)
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Parser.MaxDepth)
	assert.Equal(t, "trace", cfg.Logging.Level)
}

func TestLoadInvalidYAML(t *testing.T) {
	_, path := writeConfig(t, "parser: [unclosed\n")

	_, err := Load(path, noEnv)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name      string
		config    string
		errSubstr string
	}{
		{
			name:   "valid minimal config",
			config: "logging:\n  level: info\n",
		},
		{
			name:      "zero max depth",
			config:    "parser:\n  max_depth: 0\n",
			errSubstr: "invalid parser.max_depth: 0",
		},
		{
			name:      "invalid log level",
			config:    "logging:\n  level: verbose\n",
			errSubstr: "invalid logging.level: verbose",
		},
		{
			name:      "invalid log format",
			config:    "logging:\n  format: xml\n",
			errSubstr: "invalid logging.format: xml",
		},
		{
			name:      "metrics without listen",
			config:    "metrics:\n  enabled: true\n  listen: \"\"\n",
			errSubstr: "metrics.listen is required",
		},
		{
			name:      "bad metrics namespace",
			config:    "metrics:\n  enabled: true\n  namespace: 9lives\n",
			errSubstr: "invalid metrics.namespace",
		},
		{
			name:      "bad metrics compression",
			config:    "metrics:\n  enabled: true\n  compression: max\n",
			errSubstr: "invalid metrics.compression: max",
		},
		{
			name:   "bad namespace ignored when metrics disabled",
			config: "metrics:\n  namespace: a-b\n",
		},
		{
			name:      "negative debounce",
			config:    "watch:\n  debounce: -1s\n",
			errSubstr: "invalid watch.debounce",
		},
		{
			name:      "bad glob",
			config:    "watch:\n  patterns: \"[\"\n",
			errSubstr: "watch.patterns[0]: invalid glob",
		},
		{
			name:      "bad profile level",
			config:    "profiles:\n  ci:\n    logging:\n      level: loud\n",
			errSubstr: "invalid profiles.ci.logging.level: loud",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, path := writeConfig(t, tt.config)
			_, err := Load(path, noEnv)
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), "configuration errors:")
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestValidationCollectsAllErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Parser.MaxDepth = -1
	cfg.Logging.Level = "loud"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Equal(t, "configuration errors:\n"+
		"  - invalid parser.max_depth: -1 (must be at least 1)\n"+
		"  - invalid logging.level: loud (must be trace, debug, info, warn, or error)", err.Error())
}

func TestResolveConfigPath(t *testing.T) {
	_, err := ResolveConfigPath("/nonexistent/path/esql.yaml", noEnv)
	assert.Error(t, err)

	_, path := writeConfig(t, "")
	resolved, err := ResolveConfigPath(path, noEnv)
	require.NoError(t, err)
	assert.Equal(t, path, resolved)
}

func TestResolveConfigPathFromEnv(t *testing.T) {
	_, path := writeConfig(t, "")
	getenv := func(key string) string {
		if key == "ESQL_CONFIG" {
			return path
		}
		return ""
	}

	resolved, err := ResolveConfigPath("", getenv)
	require.NoError(t, err)
	assert.Equal(t, path, resolved)

	missing := func(string) string { return "/nonexistent/esql.yaml" }
	_, err = ResolveConfigPath("", missing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ESQL_CONFIG")
}

func TestWarnings(t *testing.T) {
	tests := []struct {
		name     string
		modify   func(*Config)
		expected []string
	}{
		{
			name:   "defaults",
			modify: func(*Config) {},
		},
		{
			name:     "dev mode",
			modify:   func(c *Config) { c.Parser.DevMode = true },
			expected: []string{"parser.dev_mode is enabled"},
		},
		{
			name:     "deep nesting",
			modify:   func(c *Config) { c.Parser.MaxDepth = 50000 },
			expected: []string{"parser.max_depth 50000 is very high"},
		},
		{
			name: "metrics on all interfaces",
			modify: func(c *Config) {
				c.Metrics.Enabled = true
				c.Metrics.Listen = ":9464"
			},
			expected: []string{"metrics.listen binds all interfaces"},
		},
		{
			name:     "no watch patterns",
			modify:   func(c *Config) { c.Watch.Patterns = nil },
			expected: []string{"watch.patterns is empty"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.modify(cfg)
			warnings := Warnings(cfg)
			require.Len(t, warnings, len(tt.expected))
			for i, want := range tt.expected {
				assert.Contains(t, warnings[i], want)
			}
		})
	}
}

func TestApplyProfile(t *testing.T) {
	_, path := writeConfig(t, `
logging:
  level: warn
profiles:
  dev:
    dev_mode: true
    logging:
      level: trace
  ci:
    max_depth: 50
    logging:
      format: json
`)
	cfg, err := Load(path, noEnv)
	require.NoError(t, err)

	require.NoError(t, ApplyProfile(cfg, "dev"))
	assert.True(t, cfg.Parser.DevMode)
	assert.Equal(t, "trace", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, 500, cfg.Parser.MaxDepth)

	require.NoError(t, ApplyProfile(cfg, "ci"))
	assert.True(t, cfg.Parser.DevMode, "unset dev_mode leaves the current value")
	assert.Equal(t, 50, cfg.Parser.MaxDepth)
	assert.Equal(t, "json", cfg.Logging.Format)

	err = ApplyProfile(cfg, "prod")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "available: ci, dev")
}

func TestApplyProfileWithoutProfiles(t *testing.T) {
	err := ApplyProfile(Defaults(), "dev")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no profiles defined")
}
