package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sambeau/esql/config"
	"github.com/sambeau/esql/pkg/esql/esql"
	"github.com/sambeau/esql/pkg/esql/repl"
)

// Version information, set at build time via -ldflags
var (
	Version = "dev"     // -X main.Version=$(git describe --tags --always)
	Commit  = "unknown" // -X main.Commit=$(git rev-parse --short HEAD)
)

// exitError carries a specific process exit status out of run.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

const (
	exitSyntax = 1 // At least one query failed to parse
	exitIO     = 2 // A file could not be read, or bad usage
)

func main() {
	ctx := context.Background()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Getenv); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			if ee.err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", ee.err)
			}
			os.Exit(ee.code)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main entry point, designed for testability (Mat Ryer pattern)
func run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) error {
	// Check for subcommands first
	if len(args) > 0 && args[0] == "describe" {
		return describeCommand(args[1:], stdout, stderr)
	}

	flags := flag.NewFlagSet("esql", flag.ContinueOnError)
	flags.SetOutput(io.Discard) // Suppress default -h output

	var (
		evalQuery   = flags.String("e", "", "Parse a query string")
		checkMode   = flags.Bool("check", false, "Report syntax errors only")
		treeOutput  = flags.Bool("tree", false, "Print the syntax tree")
		jsonOutput  = flags.Bool("json", false, "Print results as JSON")
		devMode     = flags.Bool("dev", false, "Enable development grammar")
		maxDepth    = flags.Int("max-depth", 0, "Override the nesting limit")
		configPath  = flags.String("config", "", "Path to config file")
		profile     = flags.String("profile", "", "Config profile to apply")
		logLevel    = flags.String("log-level", "", "Override the log level")
		watchMode   = flags.Bool("watch", false, "Re-check files when they change")
		showVersion = flags.Bool("V", false, "Show version")
		showHelp    = flags.Bool("help", false, "Show help")
	)
	flags.StringVar(evalQuery, "eval", "", "Alias for -e")
	flags.BoolVar(showVersion, "version", false, "Alias for -V")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(stdout)
			return nil
		}
		printUsage(stderr)
		return &exitError{code: exitIO, err: err}
	}

	if *showHelp {
		printUsage(stdout)
		return nil
	}
	if *showVersion {
		fmt.Fprintf(stdout, "esql version %s (%s)\n", Version, Commit)
		return nil
	}

	cfg, err := loadConfig(*configPath, getenv)
	if err != nil {
		return &exitError{code: exitIO, err: fmt.Errorf("loading config: %w", err)}
	}
	if *profile != "" {
		if err := config.ApplyProfile(cfg, *profile); err != nil {
			return &exitError{code: exitIO, err: fmt.Errorf("applying profile %q: %w", *profile, err)}
		}
	}

	// Apply CLI overrides
	if *devMode {
		cfg.Parser.DevMode = true
	}
	if *maxDepth != 0 {
		cfg.Parser.MaxDepth = *maxDepth
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	// Full validation after CLI overrides applied
	if err := config.Validate(cfg); err != nil {
		return &exitError{code: exitIO, err: fmt.Errorf("config validation: %w", err)}
	}
	for _, w := range config.Warnings(cfg) {
		fmt.Fprintf(stderr, "warning: %s\n", w)
	}

	log, closer, err := esql.NewLogger(cfg.Logging)
	if err != nil {
		return &exitError{code: exitIO, err: err}
	}
	defer closer.Close()
	if cfg.Logging.Output == "" || cfg.Logging.Output == "stderr" {
		log.SetOutput(stderr)
	}

	c := &checker{
		opts:   append(esql.FromConfig(cfg), esql.WithLogger(log)),
		stdout: stdout,
		stderr: stderr,
		log:    log,
		check:  *checkMode,
		tree:   *treeOutput,
		json:   *jsonOutput,
	}

	// Mode dispatch
	switch {
	case *evalQuery != "":
		return checkResult(c.checkSource("<eval>", *evalQuery), false)

	case *watchMode:
		if flags.NArg() == 0 {
			return &exitError{code: exitIO, err: errors.New("--watch requires at least one file or directory")}
		}
		ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		return runWatch(ctx, cfg, c, flags.Args())

	case flags.NArg() > 0:
		files, err := expandTargets(flags.Args(), cfg.Watch.Patterns)
		if err != nil {
			return &exitError{code: exitIO, err: err}
		}
		ok, ioFailed := c.checkFiles(files)
		return checkResult(ok, ioFailed)

	case *checkMode:
		return &exitError{code: exitIO, err: errors.New("--check requires at least one file")}

	default:
		repl.Start(stdout, repl.Config{
			Prompt:      cfg.REPL.Prompt,
			HistoryFile: cfg.REPL.HistoryFile,
			DevMode:     cfg.Parser.DevMode,
			Tree:        cfg.REPL.Tree || *treeOutput,
			MaxDepth:    cfg.Parser.MaxDepth,
			Logger:      log,
		}, Version)
		return nil
	}
}

// loadConfig loads the config file, falling back to defaults when none
// exists and none was asked for.
func loadConfig(path string, getenv func(string) string) (*config.Config, error) {
	cfg, _, err := config.LoadWithPath(path, getenv)
	if errors.Is(err, config.ErrNoConfig) {
		return config.Defaults(), nil
	}
	return cfg, err
}

// checkResult converts a check outcome into run's error.
func checkResult(ok bool, ioFailed bool) error {
	switch {
	case ioFailed:
		return &exitError{code: exitIO}
	case !ok:
		return &exitError{code: exitSyntax}
	}
	return nil
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `esql - piped query parser version %s

Usage:
  esql [options] [file|dir...]
  esql -e "query"
  esql --check <file|dir>...
  esql --watch <file|dir>...
  esql describe [--json] <topic>

Commands:
  describe <topic>      Show help for a command or operator

Options:
  -e, --eval <query>    Parse a query string
  --check               Report syntax errors only (exit 1 on errors, 2 on I/O failure)
  --tree                Print the syntax tree instead of the canonical query
  --json                Print results as JSON, one object per query
  --dev                 Enable development grammar
  --max-depth <n>       Override the nesting limit
  --watch               Re-check files when they change (serves /metrics if enabled)
  --config <path>       Path to config file (default: $ESQL_CONFIG, ./esql.yaml)
  --profile <name>      Apply a config profile
  --log-level <level>   Override the log level (trace, debug, info, warn, error)
  -V, --version         Show version information
  -h, --help            Show this help message

Directories are searched for files matching watch.patterns (default *.esql).

Examples:
  esql                               Start interactive REPL
  esql -e 'FROM logs | LIMIT 10'     Parse a query and print its canonical form
  esql --tree query.esql             Print the syntax tree
  esql --check queries/              Check every .esql file under queries/
  esql --watch --dev queries/        Re-check on change with development grammar
  esql describe stats                Show help for STATS
`, Version)
}
