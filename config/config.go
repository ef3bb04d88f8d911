package config

import "time"

// Config represents the complete esql configuration
type Config struct {
	BaseDir  string                   `yaml:"-"` // Directory containing config file, for resolving relative paths
	Parser   ParserConfig             `yaml:"parser"`
	Logging  LoggingConfig            `yaml:"logging"`
	Metrics  MetricsConfig            `yaml:"metrics"`
	Watch    WatchConfig              `yaml:"watch"`
	REPL     REPLConfig               `yaml:"repl"`
	Profiles map[string]ProfileConfig `yaml:"profiles"` // Named profiles, selected with --profile
}

// ParserConfig holds parser settings
type ParserConfig struct {
	DevMode  bool `yaml:"dev_mode"`  // Enable grammar still under development
	MaxDepth int  `yaml:"max_depth"` // Nesting limit (default: 500)
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`  // trace, debug, info, warn, error
	Format string `yaml:"format"` // json or text
	Output string `yaml:"output"` // stderr, stdout, or file path
}

// MetricsConfig holds Prometheus settings
type MetricsConfig struct {
	Enabled     bool   `yaml:"enabled"`     // Expose /metrics in watch mode
	Listen      string `yaml:"listen"`      // Address for the metrics endpoint (default: "127.0.0.1:9464")
	Namespace   string `yaml:"namespace"`   // Metric name prefix (default: "esql")
	Compression string `yaml:"compression"` // none, fastest, default, best
}

// WatchConfig holds --watch settings
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"` // Quiet period before re-checking (default: 200ms)
	Patterns StringOrSlice `yaml:"patterns"` // File globs to re-check inside watched directories
}

// REPLConfig holds interactive shell settings
type REPLConfig struct {
	HistoryFile string `yaml:"history_file"` // Empty disables history
	Prompt      string `yaml:"prompt"`
	Tree        bool   `yaml:"tree"` // Start with tree output on
}

// ProfileConfig holds per-profile overrides.
// All fields are optional - only set values override the base config
type ProfileConfig struct {
	DevMode  *bool         `yaml:"dev_mode"`
	MaxDepth int           `yaml:"max_depth"`
	Logging  LoggingConfig `yaml:"logging"`
}

// StringOrSlice supports YAML fields that can be either a string or a slice of strings
type StringOrSlice []string

// UnmarshalYAML implements yaml.Unmarshaler to handle both string and []string
func (s *StringOrSlice) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var single string
	if err := unmarshal(&single); err == nil {
		*s = []string{single}
		return nil
	}

	var slice []string
	if err := unmarshal(&slice); err != nil {
		return err
	}
	*s = slice
	return nil
}

// Contains checks if the slice contains the given string
func (s StringOrSlice) Contains(str string) bool {
	for _, v := range s {
		if v == str {
			return true
		}
	}
	return false
}

// Defaults returns a Config with sensible defaults
func Defaults() *Config {
	return &Config{
		Parser: ParserConfig{
			DevMode:  false,
			MaxDepth: 500,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
			Output: "stderr",
		},
		Metrics: MetricsConfig{
			Enabled:     false,
			Listen:      "127.0.0.1:9464",
			Namespace:   "esql",
			Compression: "default",
		},
		Watch: WatchConfig{
			Debounce: 200 * time.Millisecond,
			Patterns: StringOrSlice{"*.esql"},
		},
		REPL: REPLConfig{
			Prompt: "esql> ",
		},
	}
}
