package errors

import "strings"

// SourceContext returns the source line the error points at, trimmed of
// leading indentation, with a caret line underlining the offending token.
// It returns "" when the error has no usable position.
func (e *EsqlError) SourceContext(source string) string {
	lines := strings.Split(source, "\n")
	if e.Line <= 0 || e.Line > len(lines) {
		return ""
	}
	sourceLine := strings.TrimRight(lines[e.Line-1], "\r")

	// Columns to trim from the left, tabs counted as 8
	trimCount := 0
	for i := 0; i < len(sourceLine); i++ {
		if sourceLine[i] == '\t' {
			trimCount += 8
		} else if sourceLine[i] == ' ' {
			trimCount++
		} else {
			break
		}
	}

	var sb strings.Builder
	sb.WriteString("    ")
	sb.WriteString(strings.TrimLeft(sourceLine, " \t"))
	sb.WriteString("\n")

	if e.Column <= 0 {
		return sb.String()
	}

	visualCol := 0
	for i := 0; i < e.Column-1 && i < len(sourceLine); i++ {
		if sourceLine[i] == '\t' {
			visualCol += 8
		} else {
			visualCol++
		}
	}
	adjustedCol := max(visualCol-trimCount, 0)

	// Underline the token, but never past the end of its line
	width := e.End - e.Offset
	if rest := len(sourceLine) - (e.Column - 1); width > rest {
		width = rest
	}
	width = max(width, 1)

	sb.WriteString("    ")
	sb.WriteString(strings.Repeat(" ", adjustedCol))
	sb.WriteString("^")
	sb.WriteString(strings.Repeat("~", width-1))
	sb.WriteString("\n")
	return sb.String()
}
