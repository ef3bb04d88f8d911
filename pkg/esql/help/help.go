// Package help provides a unified help system for query commands and
// operators, accessible via CLI (`esql describe`) and REPL (`:describe`).
package help

import (
	"fmt"
	"sort"
	"strings"

	perrors "github.com/sambeau/esql/pkg/esql/errors"
)

// TopicResult represents the help output for a topic
type TopicResult struct {
	Kind        string         `json:"kind"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Syntax      string         `json:"syntax,omitempty"`
	Category    string         `json:"category,omitempty"`
	Dev         bool           `json:"dev,omitempty"`
	Commands    []CommandInfo  `json:"commands,omitempty"`
	Operators   []OperatorInfo `json:"operators,omitempty"`
}

// topics are the special keywords accepted by DescribeTopic.
var topics = []string{"commands", "operators", "source", "processing", "dev"}

// Commands returns every command, sources first, then alphabetically.
func Commands() []CommandInfo {
	return filterCommands(func(CommandInfo) bool { return true })
}

// DescribeTopic returns help information for the given topic.
// Topics can be: commands, operators, source, processing, dev, or a
// command keyword in any case (eval, LOOKUP).
func DescribeTopic(topic string) (*TopicResult, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("no topic specified (try: %s, or a command such as WHERE)", strings.Join(topics, ", "))
	}

	lower := strings.ToLower(topic)
	switch lower {
	case "commands":
		return &TopicResult{Kind: "command-list", Name: "commands", Commands: Commands()}, nil
	case "operators":
		return describeOperators(), nil
	case "source", "processing":
		return &TopicResult{
			Kind:     "command-list",
			Name:     lower,
			Commands: filterCommands(func(c CommandInfo) bool { return c.Category == lower }),
		}, nil
	case "dev":
		return &TopicResult{
			Kind:        "command-list",
			Name:        "dev",
			Description: "Available only in development mode (--dev)",
			Commands:    filterCommands(func(c CommandInfo) bool { return c.Dev }),
		}, nil
	}

	// Multi-word forms name the leading keyword: "lookup join", "inline stats"
	word := strings.Fields(lower)[0]
	if info, ok := commandMetadata[word]; ok {
		return &TopicResult{
			Kind:        "command",
			Name:        info.Name,
			Description: info.Description,
			Syntax:      info.Syntax,
			Category:    info.Category,
			Dev:         info.Dev,
		}, nil
	}

	return nil, unknownTopicError(topic)
}

func describeOperators() *TopicResult {
	operators := make([]OperatorInfo, len(operatorMetadata))
	copy(operators, operatorMetadata)

	// Sort by precedence, loosest first, keeping table order within a level
	sort.SliceStable(operators, func(i, j int) bool {
		return operators[i].Precedence < operators[j].Precedence
	})

	return &TopicResult{
		Kind:      "operator-list",
		Name:      "operators",
		Operators: operators,
	}
}

func filterCommands(keep func(CommandInfo) bool) []CommandInfo {
	var cmds []CommandInfo
	for _, info := range commandMetadata {
		if keep(info) {
			cmds = append(cmds, info)
		}
	}
	sort.Slice(cmds, func(i, j int) bool {
		if cmds[i].Category != cmds[j].Category {
			return categoryRank(cmds[i].Category) < categoryRank(cmds[j].Category)
		}
		return cmds[i].Name < cmds[j].Name
	})
	return cmds
}

func categoryRank(category string) int {
	switch category {
	case "setting":
		return 0
	case "source":
		return 1
	default:
		return 2
	}
}

// unknownTopicError generates a helpful error for unknown topics
func unknownTopicError(topic string) error {
	suggestions := findSuggestions(topic)

	if len(suggestions) > 0 {
		return fmt.Errorf("unknown topic: %s\nDid you mean: %s?", topic, strings.Join(suggestions, ", "))
	}

	return fmt.Errorf("unknown topic: %s\nTry: %s, or a command such as WHERE", topic, strings.Join(topics, ", "))
}

// findSuggestions finds up to three topics close to the given unknown topic
func findSuggestions(topic string) []string {
	candidates := make([]string, 0, len(commandMetadata)+len(topics))
	for _, info := range commandMetadata {
		candidates = append(candidates, info.Name)
	}
	sort.Strings(candidates)
	candidates = append(candidates, topics...)

	return perrors.FindTopMatches(topic, candidates, 3)
}
