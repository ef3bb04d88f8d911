// Package repl implements the interactive query shell.
package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/sirupsen/logrus"

	"github.com/sambeau/esql/pkg/esql/ast"
	perrors "github.com/sambeau/esql/pkg/esql/errors"
	"github.com/sambeau/esql/pkg/esql/esql"
	"github.com/sambeau/esql/pkg/esql/help"
	"github.com/sambeau/esql/pkg/esql/lexer"
)

const PROMPT = "esql> "
const PROMPT_DEV = "esql(dev)> "
const CONTINUATION_PROMPT = "   .. "

// Config holds shell settings.
type Config struct {
	Prompt      string // Defaults to PROMPT
	HistoryFile string // Empty disables history
	DevMode     bool
	Tree        bool
	MaxDepth    int
	Logger      logrus.FieldLogger
	Metrics     *esql.Metrics
}

// completionWords holds command and keyword spellings for tab completion
var completionWords = buildCompletionWords()

func buildCompletionWords() []string {
	words := lexer.CommandNames()
	words = append(words,
		"AND", "OR", "NOT", "IN", "IS", "NULL", "LIKE", "RLIKE", "TRUE", "FALSE",
		"AS", "BY", "ON", "WITH", "METADATA", "ASC", "DESC", "NULLS", "FIRST", "LAST",
		"JOIN", "INFO", "APPEND_SEPARATOR",
	)
	return words
}

// Start starts the REPL with line editing, history, and tab completion
func Start(out io.Writer, cfg Config, version string) {
	line := liner.NewLiner()
	defer line.Close()

	// Enable Ctrl+C to abort current line
	line.SetCtrlCAborts(true)
	line.SetCompleter(filterCompletions)

	if cfg.HistoryFile != "" {
		if f, err := os.Open(expandHome(cfg.HistoryFile)); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
		defer func() {
			path := expandHome(cfg.HistoryFile)
			os.MkdirAll(filepath.Dir(path), 0755)
			if f, err := os.Create(path); err == nil {
				line.WriteHistory(f)
				f.Close()
			}
		}()
	}

	fmt.Fprintln(out, "esql", version)
	fmt.Fprintln(out, "Type 'exit' or Ctrl+D to quit")
	fmt.Fprintln(out, "Use Tab for completion, ↑↓ for history")
	fmt.Fprintln(out, "Type ':help' for REPL commands")
	fmt.Fprintln(out, "")

	s := NewSession(out, cfg)
	for {
		input, err := line.Prompt(s.Prompt())
		if err != nil {
			if err == liner.ErrPromptAborted {
				if s.Pending() {
					fmt.Fprintln(out, "^C (cleared)")
				} else {
					fmt.Fprintln(out, "^C")
				}
				s.Reset()
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(out, "Error reading input: %v\n", err)
			continue
		}

		query, quit := s.Feed(input)
		if quit {
			return
		}
		if query != "" {
			line.AppendHistory(query)
		}
	}
}

// Session holds shell state between lines. It is separate from the
// terminal so it can be driven by tests.
type Session struct {
	out    io.Writer
	cfg    Config
	buffer strings.Builder
}

// NewSession creates a session writing results to out.
func NewSession(out io.Writer, cfg Config) *Session {
	if cfg.Prompt == "" {
		cfg.Prompt = PROMPT
	}
	return &Session{out: out, cfg: cfg}
}

// Prompt returns the prompt for the next line.
func (s *Session) Prompt() string {
	switch {
	case s.Pending():
		return CONTINUATION_PROMPT
	case s.cfg.DevMode && s.cfg.Prompt == PROMPT:
		return PROMPT_DEV
	}
	return s.cfg.Prompt
}

// Pending reports whether a multi-line query is being collected.
func (s *Session) Pending() bool {
	return s.buffer.Len() > 0
}

// Reset discards a partly entered query.
func (s *Session) Reset() {
	s.buffer.Reset()
}

// Feed handles one line of input. It returns the complete query when one
// was parsed, for history, and whether the user asked to quit.
func (s *Session) Feed(input string) (query string, quit bool) {
	trimmed := strings.TrimSpace(input)

	if !s.Pending() {
		switch {
		case trimmed == "exit" || trimmed == "quit":
			fmt.Fprintln(s.out, "Goodbye!")
			return "", true
		case strings.HasPrefix(trimmed, ":"):
			s.handleReplCommand(trimmed)
			return "", false
		case trimmed == "":
			return "", false
		}
	}

	if s.Pending() {
		s.buffer.WriteString("\n")
	}
	s.buffer.WriteString(input)

	full := s.buffer.String()
	if needsMoreInput(full) {
		return "", false
	}
	s.buffer.Reset()

	s.run(full)
	return full, false
}

func (s *Session) run(query string) {
	opts := []esql.Option{
		esql.WithDevMode(s.cfg.DevMode),
		esql.WithMaxDepth(s.cfg.MaxDepth),
	}
	if s.cfg.Logger != nil {
		opts = append(opts, esql.WithLogger(s.cfg.Logger))
	}
	if s.cfg.Metrics != nil {
		opts = append(opts, esql.WithMetrics(s.cfg.Metrics))
	}

	stmts, err := esql.Parse(query, opts...)
	if err != nil {
		printError(s.out, query, err)
		return
	}
	if s.cfg.Tree {
		ast.Fprint(s.out, stmts)
		return
	}
	fmt.Fprintln(s.out, stmts.String())
}

// handleReplCommand handles REPL meta-commands that start with ':'
func (s *Session) handleReplCommand(cmd string) {
	name, arg, _ := strings.Cut(cmd, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case ":help", ":h", ":?":
		fmt.Fprintln(s.out, "REPL Commands:")
		fmt.Fprintln(s.out, "  :help, :h, :?        Show this help")
		fmt.Fprintln(s.out, "  :dev                 Toggle development grammar")
		fmt.Fprintln(s.out, "  :tree                Toggle tree output")
		fmt.Fprintln(s.out, "  :describe <topic>    Describe a command, or: commands, operators, dev")
		fmt.Fprintln(s.out, "  exit, quit           Exit the REPL")
		fmt.Fprintln(s.out, "")
		fmt.Fprintln(s.out, "End a line with '|' to continue the query on the next line.")

	case ":dev":
		s.cfg.DevMode = !s.cfg.DevMode
		if s.cfg.DevMode {
			fmt.Fprintln(s.out, "Development mode ON")
		} else {
			fmt.Fprintln(s.out, "Development mode OFF")
		}

	case ":tree":
		s.cfg.Tree = !s.cfg.Tree
		if s.cfg.Tree {
			fmt.Fprintln(s.out, "Tree output ON")
		} else {
			fmt.Fprintln(s.out, "Tree output OFF")
		}

	case ":describe", ":d":
		result, err := help.DescribeTopic(arg)
		if err != nil {
			fmt.Fprintln(s.out, err)
			return
		}
		io.WriteString(s.out, help.FormatText(result, 80))

	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type :help for commands)\n", cmd)
	}
}

// filterCompletions returns completion suggestions for the word being typed
func filterCompletions(line string) []string {
	if strings.TrimSpace(line) == "" {
		return nil
	}

	// Don't complete if line ends with whitespace (including tabs from pasting)
	if last := line[len(line)-1]; last == ' ' || last == '\t' {
		return nil
	}

	start := strings.LastIndexAny(line, " \t|(,") + 1
	prefix, word := line[:start], line[start:]
	upper := strings.ToUpper(word)

	var matches []string
	for _, candidate := range completionWords {
		if strings.HasPrefix(candidate, upper) {
			// Keep the user's case for what they already typed
			if word == strings.ToLower(word) {
				candidate = strings.ToLower(candidate)
			}
			matches = append(matches, prefix+candidate)
		}
	}
	return matches
}

// needsMoreInput reports whether the query continues on the next line:
// it ends with '|' or ';', or has unclosed brackets or quotes.
func needsMoreInput(input string) bool {
	input = strings.TrimSpace(input)
	if input == "" {
		return false
	}
	if strings.HasSuffix(input, "|") || strings.HasSuffix(input, ";") {
		return true
	}

	depth := 0
	var quote byte
	for i := 0; i < len(input); i++ {
		ch := input[i]

		if quote != 0 {
			switch {
			case ch == '\\' && quote == '"':
				i++
			case ch == quote:
				quote = 0
			}
			continue
		}

		switch ch {
		case '"', '`':
			if strings.HasPrefix(input[i:], `"""`) {
				end := strings.Index(input[i+3:], `"""`)
				if end < 0 {
					return true
				}
				i += end + 5
				continue
			}
			quote = ch
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		}
	}

	return depth > 0 || quote != 0
}

// printError prints a parse error with the offending source line
func printError(out io.Writer, source string, err error) {
	e, ok := perrors.As(err)
	if !ok {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	io.WriteString(out, e.PrettyString())
	io.WriteString(out, "\n")
	io.WriteString(out, e.SourceContext(source))
}

func expandHome(path string) string {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return path
}
