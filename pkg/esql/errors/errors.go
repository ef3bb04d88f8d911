// Package errors provides structured error types for the query parser.
//
// Every parse failure is an EsqlError built from a code in ErrorCatalog.
// The error carries the offending token, its source span and the token
// kinds the parser would have accepted, and it unwraps to one of the class
// sentinels so callers can use errors.Is without inspecting codes.
package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// ErrorClass categorizes errors for filtering and templating.
type ErrorClass string

const (
	ClassSyntax    ErrorClass = "syntax"    // Tokens that match no alternative
	ClassEOF       ErrorClass = "eof"       // Input ended inside a construct
	ClassRecursion ErrorClass = "recursion" // Nesting deeper than the configured limit
	ClassFeature   ErrorClass = "feature"   // Construct only available in dev mode
)

// Class sentinels. An EsqlError unwraps to the sentinel for its class.
var (
	ErrSyntax                 = stderrors.New("syntax error")
	ErrUnexpectedEOF          = stderrors.New("unexpected end of query")
	ErrRecursionLimitExceeded = stderrors.New("recursion limit exceeded")
	ErrFeatureDisabled        = stderrors.New("feature disabled")
)

// EsqlError represents a failure to parse a query.
type EsqlError struct {
	Class    ErrorClass     `json:"class"`              // Error category
	Code     string         `json:"code"`               // Error code (e.g., "SYNTAX-0001")
	Message  string         `json:"message"`            // Human-readable message
	Hints    []string       `json:"hints,omitempty"`    // Suggestions for fixing
	Line     int            `json:"line"`               // 1-based line (0 if unknown)
	Column   int            `json:"column"`             // 1-based column (0 if unknown)
	Offset   int            `json:"offset"`             // Byte offset of the offending token
	End      int            `json:"end"`                // Byte offset just past the offending token
	Token    string         `json:"token,omitempty"`    // Offending token text
	Expected []string       `json:"expected,omitempty"` // Token kinds that would have been accepted
	File     string         `json:"file,omitempty"`     // File path (if known)
	Data     map[string]any `json:"data,omitempty"`     // Template variables
}

// Error implements the error interface.
func (e *EsqlError) Error() string {
	return e.String()
}

// Unwrap returns the sentinel for the error's class.
func (e *EsqlError) Unwrap() error {
	switch e.Class {
	case ClassEOF:
		return ErrUnexpectedEOF
	case ClassRecursion:
		return ErrRecursionLimitExceeded
	case ClassFeature:
		return ErrFeatureDisabled
	default:
		return ErrSyntax
	}
}

// String returns a formatted string representation of the error.
func (e *EsqlError) String() string {
	var sb strings.Builder

	// Location prefix
	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteString(": ")
	}
	if e.Line > 0 {
		sb.WriteString(fmt.Sprintf("line %d, column %d: ", e.Line, e.Column))
	}

	sb.WriteString(e.Message)

	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}

	return sb.String()
}

// PrettyString returns a multi-line formatted string for display.
func (e *EsqlError) PrettyString() string {
	var sb strings.Builder

	switch e.Class {
	case ClassRecursion:
		sb.WriteString("Nesting error")
	case ClassFeature:
		sb.WriteString("Feature error")
	default:
		sb.WriteString("Syntax error")
	}

	// Location
	if e.File != "" {
		sb.WriteString(":\n  in: ")
		sb.WriteString(e.File)
		if e.Line > 0 {
			sb.WriteString(fmt.Sprintf("\n  at: line %d, column %d", e.Line, e.Column))
		}
		sb.WriteString("\n  ")
	} else if e.Line > 0 {
		sb.WriteString(fmt.Sprintf(": line %d, column %d\n  ", e.Line, e.Column))
	} else {
		sb.WriteString(":\n  ")
	}

	sb.WriteString(e.Message)

	for _, hint := range e.Hints {
		sb.WriteString("\n  hint: ")
		sb.WriteString(hint)
	}

	return sb.String()
}

// ToJSON returns the error as JSON bytes.
func (e *EsqlError) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ToJSONIndent returns the error as indented JSON bytes.
func (e *EsqlError) ToJSONIndent() ([]byte, error) {
	return json.MarshalIndent(e, "", "  ")
}

// WithFile returns a copy of the error with the file path set.
func (e *EsqlError) WithFile(file string) *EsqlError {
	copy := *e
	copy.File = file
	return &copy
}

// WithPosition returns a copy of the error with line and column set.
func (e *EsqlError) WithPosition(line, column int) *EsqlError {
	copy := *e
	copy.Line = line
	copy.Column = column
	return &copy
}

// WithSpan returns a copy of the error pointing at the byte range [start, end).
func (e *EsqlError) WithSpan(start, end int) *EsqlError {
	copy := *e
	copy.Offset = start
	copy.End = end
	return &copy
}

// ErrorDef defines an error in the catalog.
type ErrorDef struct {
	Class    ErrorClass // Error category
	Template string     // Message template with {{.placeholders}}
	Hints    []string   // Hint templates (may use {{.placeholders}})
}

// ErrorCatalog maps error codes to their definitions.
var ErrorCatalog = map[string]ErrorDef{
	// ========================================
	// Syntax errors (SYNTAX-0xxx)
	// ========================================
	"SYNTAX-0001": {
		Class:    ClassSyntax,
		Template: "expected {{.Expected}}, got '{{.Got}}'",
	},
	"SYNTAX-0002": {
		Class:    ClassSyntax,
		Template: "unexpected '{{.Got}}' after the end of the query",
		Hints:    []string{"separate commands with '|'"},
	},
	"SYNTAX-0003": {
		Class:    ClassSyntax,
		Template: "unknown command '{{.Got}}'",
	},
	"SYNTAX-0004": {
		Class:    ClassSyntax,
		Template: "{{.Construct}} requires at least one {{.Element}}",
	},
	"SYNTAX-0005": {
		Class:    ClassSyntax,
		Template: "invalid number literal: {{.Literal}}",
	},
	"SYNTAX-0006": {
		Class:    ClassSyntax,
		Template: "array literal mixes {{.First}} and {{.Got}} values",
		Hints:    []string{"array elements must all be numbers, all booleans or all strings"},
	},
	"SYNTAX-0007": {
		Class:    ClassSyntax,
		Template: "{{.Message}}",
	},
	"SYNTAX-0008": {
		Class:    ClassSyntax,
		Template: "{{.Got}} cannot start a query",
		Hints:    []string{"a query starts with a source command such as FROM, ROW or SHOW"},
	},
	"SYNTAX-0009": {
		Class:    ClassSyntax,
		Template: "{{.Got}} cannot follow '|'",
		Hints:    []string{"{{.Got}} is a source command and may only start a query"},
	},
	"SYNTAX-0010": {
		Class:    ClassSyntax,
		Template: "invalid string literal: {{.Literal}}",
	},

	// ========================================
	// End of input (EOF-0xxx)
	// ========================================
	"EOF-0001": {
		Class:    ClassEOF,
		Template: "unexpected end of query, expected {{.Expected}}",
	},

	// ========================================
	// Nesting (LIMIT-0xxx)
	// ========================================
	"LIMIT-0001": {
		Class:    ClassRecursion,
		Template: "query nesting exceeds the maximum depth of {{.Max}}",
		Hints:    []string{"reduce the number of nested parentheses, casts or sub-pipelines"},
	},

	// ========================================
	// Feature gate (FEATURE-0xxx)
	// ========================================
	"FEATURE-0001": {
		Class:    ClassFeature,
		Template: "{{.Feature}} is only available in development mode",
		Hints:    []string{"enable development mode to use {{.Feature}}"},
	},
}

// New creates an EsqlError from the catalog.
// If the code is not found, creates a generic syntax error with the message.
func New(code string, data map[string]any) *EsqlError {
	def, ok := ErrorCatalog[code]
	if !ok {
		msg := code
		if data != nil {
			if m, ok := data["message"].(string); ok {
				msg = m
			}
		}
		return &EsqlError{
			Class:   ClassSyntax,
			Code:    code,
			Message: msg,
			Data:    data,
		}
	}

	msg := renderTemplate(def.Template, data)

	var hints []string
	for _, hintTmpl := range def.Hints {
		rendered := renderTemplate(hintTmpl, data)
		if rendered != "" {
			hints = append(hints, rendered)
		}
	}

	return &EsqlError{
		Class:   def.Class,
		Code:    code,
		Message: msg,
		Hints:   hints,
		Data:    data,
	}
}

// NewWithPosition creates an EsqlError with position information.
func NewWithPosition(code string, line, column int, data map[string]any) *EsqlError {
	err := New(code, data)
	err.Line = line
	err.Column = column
	return err
}

// renderTemplate renders a Go template with the given data.
func renderTemplate(tmplStr string, data map[string]any) string {
	if data == nil {
		return tmplStr
	}

	tmpl, err := template.New("").Parse(tmplStr)
	if err != nil {
		return tmplStr
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return tmplStr
	}

	return buf.String()
}

// Is reports whether err is an EsqlError of the given class.
func Is(err error, class ErrorClass) bool {
	var e *EsqlError
	if stderrors.As(err, &e) {
		return e.Class == class
	}
	return false
}

// As returns err as an EsqlError, if it is one.
func As(err error) (*EsqlError, bool) {
	var e *EsqlError
	ok := stderrors.As(err, &e)
	return e, ok
}

// JoinExpected renders a list of expected token kinds the way messages use
// them: "a", "a or b", "a, b or c". Duplicates are dropped.
func JoinExpected(kinds []string) string {
	seen := make(map[string]bool, len(kinds))
	var uniq []string
	for _, k := range kinds {
		if !seen[k] {
			seen[k] = true
			uniq = append(uniq, k)
		}
	}
	switch len(uniq) {
	case 0:
		return "something else"
	case 1:
		return uniq[0]
	}
	return strings.Join(uniq[:len(uniq)-1], ", ") + " or " + uniq[len(uniq)-1]
}

// ============================================================================
// Fuzzy Matching - "Did you mean?" suggestions
// ============================================================================

// maxDistance is the largest edit distance still worth suggesting for a
// word of length n.
func maxDistance(n int) int {
	switch {
	case n <= 3:
		return 1
	case n <= 6:
		return 2
	}
	return 3
}

// FindClosestMatch finds the candidate closest to input, ignoring case.
// Candidates that contain the input's letters in order are preferred;
// otherwise the nearest by edit distance is returned if it is close enough.
func FindClosestMatch(input string, candidates []string) string {
	matches := FindTopMatches(input, candidates, 1)
	if len(matches) == 0 {
		return ""
	}
	return matches[0]
}

// FindTopMatches returns up to n candidates close to input, best first.
func FindTopMatches(input string, candidates []string, n int) []string {
	if input == "" || len(candidates) == 0 || n <= 0 {
		return nil
	}

	type match struct {
		value    string
		distance int
	}
	var matches []match
	limit := maxDistance(len(input))
	for _, candidate := range candidates {
		if strings.EqualFold(candidate, input) {
			continue
		}
		dist := fuzzy.LevenshteinDistance(strings.ToLower(input), strings.ToLower(candidate))
		if dist <= limit {
			matches = append(matches, match{candidate, dist})
		}
	}
	if len(matches) == 0 {
		for _, rank := range fuzzy.RankFindFold(input, candidates) {
			if rank.Distance <= limit*2 && !strings.EqualFold(rank.Target, input) {
				matches = append(matches, match{rank.Target, rank.Distance})
			}
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].distance != matches[j].distance {
			return matches[i].distance < matches[j].distance
		}
		return matches[i].value < matches[j].value
	})

	var result []string
	for i := 0; i < len(matches) && len(result) < n; i++ {
		result = append(result, matches[i].value)
	}
	return result
}

// NewUnknownCommand creates an unknown-command error with an optional
// "did you mean" hint drawn from the known command names.
func NewUnknownCommand(word string, known []string) *EsqlError {
	err := New("SYNTAX-0003", map[string]any{"Got": word})
	if suggestion := FindClosestMatch(word, known); suggestion != "" {
		err.Hints = append(err.Hints, "did you mean "+suggestion+"?")
	}
	return err
}
