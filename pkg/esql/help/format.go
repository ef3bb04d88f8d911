package help

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormatText formats a TopicResult for terminal output with the given width
func FormatText(result *TopicResult, width int) string {
	if width <= 0 {
		width = 80
	}

	var sb strings.Builder

	switch result.Kind {
	case "command":
		formatCommandText(&sb, result, width)
	case "command-list":
		formatCommandListText(&sb, result, width)
	case "operator-list":
		formatOperatorListText(&sb, result)
	default:
		fmt.Fprintf(&sb, "Unknown result kind: %s\n", result.Kind)
	}

	return sb.String()
}

// FormatJSON formats a TopicResult as JSON
func FormatJSON(result *TopicResult) ([]byte, error) {
	return json.MarshalIndent(result, "", "  ")
}

// formatCommandText formats a single command's help output
func formatCommandText(sb *strings.Builder, result *TopicResult, width int) {
	fmt.Fprintf(sb, "%s\n\n", result.Name)
	fmt.Fprintf(sb, "  %s\n\n", result.Syntax)
	sb.WriteString(wrap(result.Description, width))
	sb.WriteString("\n\n")
	fmt.Fprintf(sb, "Category: %s\n", result.Category)
	if result.Dev {
		sb.WriteString("\nAvailable only in development mode (--dev).\n")
	}
}

// formatCommandListText formats a list of commands grouped by category
func formatCommandListText(sb *strings.Builder, result *TopicResult, width int) {
	title := "Commands"
	switch result.Name {
	case "source":
		title = "Source Commands"
	case "processing":
		title = "Processing Commands"
	case "dev":
		title = "Development Commands"
	}
	fmt.Fprintf(sb, "%s\n%s\n\n", title, strings.Repeat("=", len(title)))
	if result.Description != "" {
		fmt.Fprintf(sb, "%s\n\n", result.Description)
	}

	categoryNames := map[string]string{
		"setting":    "Settings",
		"source":     "Source",
		"processing": "Processing",
	}

	// Find max name length for alignment
	maxLen := 0
	for _, c := range result.Commands {
		if len(c.Name) > maxLen {
			maxLen = len(c.Name)
		}
	}

	category := ""
	for _, c := range result.Commands {
		if c.Category != category {
			if category != "" {
				sb.WriteString("\n")
			}
			category = c.Category
			fmt.Fprintf(sb, "%s:\n", categoryNames[category])
		}
		padding := strings.Repeat(" ", maxLen-len(c.Name)+2)
		desc := c.Description
		if c.Dev && result.Name != "dev" {
			desc += " (dev)"
		}
		line := fmt.Sprintf("  %s%s%s", c.Name, padding, desc)
		if len(line) > width {
			line = line[:width-3] + "..."
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	sb.WriteString("\nUse 'esql describe <command>' for details on a specific command.\n")
}

// formatOperatorListText formats the operators list, loosest binding first
func formatOperatorListText(sb *strings.Builder, result *TopicResult) {
	sb.WriteString("Operators\n")
	sb.WriteString("=========\n\n")

	maxLen := 6 // Minimum for alignment
	for _, op := range result.Operators {
		if len(op.Symbol) > maxLen {
			maxLen = len(op.Symbol)
		}
	}

	precedence := -1
	for _, op := range result.Operators {
		if op.Precedence != precedence {
			if precedence != -1 {
				sb.WriteString("\n")
			}
			precedence = op.Precedence
			fmt.Fprintf(sb, "Precedence %d (%s):\n", op.Precedence, op.Category)
		}
		padding := strings.Repeat(" ", maxLen-len(op.Symbol)+2)
		fmt.Fprintf(sb, "  %s%s%s\n", op.Symbol, padding, op.Description)
	}
}

// wrap breaks text into lines no longer than width
func wrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	var sb strings.Builder
	lineLen := 0
	for i, w := range words {
		if i > 0 {
			if lineLen+1+len(w) > width {
				sb.WriteString("\n")
				lineLen = 0
			} else {
				sb.WriteString(" ")
				lineLen++
			}
		}
		sb.WriteString(w)
		lineLen += len(w)
	}
	return sb.String()
}
