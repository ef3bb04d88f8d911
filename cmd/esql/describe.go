package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/sambeau/esql/pkg/esql/help"
)

// describeCommand implements the 'esql describe <topic>' subcommand
func describeCommand(args []string, stdout, stderr io.Writer) error {
	jsonOutput := false
	var words []string

	for _, arg := range args {
		if arg == "--json" {
			jsonOutput = true
		} else if !strings.HasPrefix(arg, "-") {
			words = append(words, arg)
		}
	}
	topic := strings.Join(words, " ")

	if topic == "" {
		fmt.Fprintln(stderr, `Usage: esql describe [--json] <topic>

Topics:
  commands           List all commands
  source             List source commands
  processing         List processing commands
  dev                List commands that need --dev
  operators          List operators by precedence
  <command>          Help for a specific command (where, stats, lookup join, ...)

Examples:
  esql describe commands
  esql describe where
  esql describe lookup join
  esql describe --json stats`)
		return &exitError{code: exitSyntax}
	}

	result, err := help.DescribeTopic(topic)
	if err != nil {
		return &exitError{code: exitSyntax, err: err}
	}

	if jsonOutput {
		data, err := help.FormatJSON(result)
		if err != nil {
			return fmt.Errorf("formatting JSON: %w", err)
		}
		fmt.Fprintln(stdout, string(data))
		return nil
	}
	fmt.Fprint(stdout, help.FormatText(result, 80))
	return nil
}
