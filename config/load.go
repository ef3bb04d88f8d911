package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads configuration from a file with ENV interpolation.
// If configPath is empty, it searches default locations.
func Load(configPath string, getenv func(string) string) (*Config, error) {
	cfg, _, err := LoadWithPath(configPath, getenv)
	return cfg, err
}

// LoadWithPath reads configuration and returns both the config and the resolved path.
func LoadWithPath(configPath string, getenv func(string) string) (*Config, string, error) {
	path, err := ResolveConfigPath(configPath, getenv)
	if err != nil {
		return nil, "", err
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := Parse(data, getenv)
	if err != nil {
		return nil, "", err
	}
	cfg.BaseDir = filepath.Dir(absPath)
	cfg.resolvePaths()

	if err := Validate(cfg); err != nil {
		return nil, "", err
	}
	return cfg, absPath, nil
}

// Parse decodes YAML on top of Defaults after interpolating environment
// variables. It does not validate.
func Parse(data []byte, getenv func(string) string) (*Config, error) {
	data = interpolateEnv(data, getenv)

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// resolvePaths makes file paths relative to the config file's directory.
func (c *Config) resolvePaths() {
	if isFileOutput(c.Logging.Output) && !filepath.IsAbs(c.Logging.Output) {
		c.Logging.Output = filepath.Join(c.BaseDir, c.Logging.Output)
	}
	if c.REPL.HistoryFile != "" && !filepath.IsAbs(c.REPL.HistoryFile) && !strings.HasPrefix(c.REPL.HistoryFile, "~") {
		c.REPL.HistoryFile = filepath.Join(c.BaseDir, c.REPL.HistoryFile)
	}
	for name, p := range c.Profiles {
		if isFileOutput(p.Logging.Output) && !filepath.IsAbs(p.Logging.Output) {
			p.Logging.Output = filepath.Join(c.BaseDir, p.Logging.Output)
			c.Profiles[name] = p
		}
	}
}

func isFileOutput(output string) bool {
	return output != "" && output != "stderr" && output != "stdout"
}

// ResolveConfigPath finds the config file to use.
// Search order: explicit path > ESQL_CONFIG env > ./esql.yaml > ~/.config/esql/esql.yaml
func ResolveConfigPath(explicit string, getenv func(string) string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	if envPath := getenv("ESQL_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("ESQL_CONFIG file not found: %s", envPath)
		}
		return envPath, nil
	}

	if _, err := os.Stat("esql.yaml"); err == nil {
		return "esql.yaml", nil
	}

	home, err := os.UserHomeDir()
	if err == nil {
		xdgPath := filepath.Join(home, ".config", "esql", "esql.yaml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath, nil
		}
	}

	return "", ErrNoConfig
}

// ErrNoConfig is returned when no config file exists in any default location.
var ErrNoConfig = fmt.Errorf("no config file found (tried ESQL_CONFIG, esql.yaml, ~/.config/esql/esql.yaml)")

// envPattern matches ${VAR} or ${VAR:-default}
var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// interpolateEnv replaces ${VAR} and ${VAR:-default} patterns with environment values.
func interpolateEnv(data []byte, getenv func(string) string) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		parts := envPattern.FindSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		value := getenv(string(parts[1]))
		if value == "" && len(parts) >= 3 && len(parts[2]) > 0 {
			value = string(parts[2])
		}
		return []byte(value)
	})
}

// metricName matches valid Prometheus metric name prefixes
var metricName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Validate checks the configuration for errors.
// Call this again after applying CLI overrides.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Parser.MaxDepth < 1 {
		errs = append(errs, fmt.Sprintf("invalid parser.max_depth: %d (must be at least 1)", cfg.Parser.MaxDepth))
	}

	errs = append(errs, validateLogging("logging", cfg.Logging)...)

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Listen == "" {
			errs = append(errs, "metrics.listen is required when metrics are enabled")
		}
		if !metricName.MatchString(cfg.Metrics.Namespace) {
			errs = append(errs, fmt.Sprintf("invalid metrics.namespace: %q (letters, digits and underscores only)", cfg.Metrics.Namespace))
		}
		if !validCompression[cfg.Metrics.Compression] {
			errs = append(errs, fmt.Sprintf("invalid metrics.compression: %s (must be none, fastest, default, or best)", cfg.Metrics.Compression))
		}
	}

	if cfg.Watch.Debounce < 0 {
		errs = append(errs, fmt.Sprintf("invalid watch.debounce: %s (must not be negative)", cfg.Watch.Debounce))
	}
	for i, p := range cfg.Watch.Patterns {
		if _, err := filepath.Match(p, ""); err != nil {
			errs = append(errs, fmt.Sprintf("watch.patterns[%d]: invalid glob %q", i, p))
		}
	}

	for _, name := range profileNames(cfg) {
		p := cfg.Profiles[name]
		if p.MaxDepth < 0 {
			errs = append(errs, fmt.Sprintf("profiles.%s: invalid max_depth: %d", name, p.MaxDepth))
		}
		errs = append(errs, validateLogging("profiles."+name+".logging", p.Logging)...)
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

var validLevels = map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
var validFormats = map[string]bool{"json": true, "text": true}
var validCompression = map[string]bool{"none": true, "fastest": true, "default": true, "best": true}

// validateLogging checks a logging block. Empty fields are allowed in
// profiles, where they mean "inherit".
func validateLogging(prefix string, l LoggingConfig) []string {
	var errs []string
	if l.Level != "" && !validLevels[l.Level] {
		errs = append(errs, fmt.Sprintf("invalid %s.level: %s (must be trace, debug, info, warn, or error)", prefix, l.Level))
	}
	if l.Format != "" && !validFormats[l.Format] {
		errs = append(errs, fmt.Sprintf("invalid %s.format: %s (must be json or text)", prefix, l.Format))
	}
	return errs
}

// Warnings returns non-fatal configuration issues that should be reported to the user.
func Warnings(cfg *Config) []string {
	var warnings []string

	if cfg.Parser.DevMode {
		warnings = append(warnings, "parser.dev_mode is enabled - development grammar may change without notice")
	}
	if cfg.Parser.MaxDepth > 10000 {
		warnings = append(warnings, fmt.Sprintf("parser.max_depth %d is very high - deeply nested queries may exhaust the stack", cfg.Parser.MaxDepth))
	}
	if cfg.Metrics.Enabled && strings.HasPrefix(cfg.Metrics.Listen, ":") {
		warnings = append(warnings, "metrics.listen binds all interfaces - consider 127.0.0.1"+cfg.Metrics.Listen)
	}
	if len(cfg.Watch.Patterns) == 0 {
		warnings = append(warnings, "watch.patterns is empty - only files named on the command line will be re-checked")
	}

	return warnings
}

// ApplyProfile applies a named profile to the configuration.
// Only set values in the profile override the base config.
func ApplyProfile(cfg *Config, profileName string) error {
	if len(cfg.Profiles) == 0 {
		return fmt.Errorf("no profiles defined in config")
	}

	p, ok := cfg.Profiles[profileName]
	if !ok {
		return fmt.Errorf("unknown profile %q (available: %s)", profileName, strings.Join(profileNames(cfg), ", "))
	}

	if p.DevMode != nil {
		cfg.Parser.DevMode = *p.DevMode
	}
	if p.MaxDepth != 0 {
		cfg.Parser.MaxDepth = p.MaxDepth
	}
	if p.Logging.Level != "" {
		cfg.Logging.Level = p.Logging.Level
	}
	if p.Logging.Format != "" {
		cfg.Logging.Format = p.Logging.Format
	}
	if p.Logging.Output != "" {
		cfg.Logging.Output = p.Logging.Output
	}
	return nil
}

func profileNames(cfg *Config) []string {
	names := make([]string, 0, len(cfg.Profiles))
	for name := range cfg.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
