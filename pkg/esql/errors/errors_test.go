package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEsqlError_String(t *testing.T) {
	tests := []struct {
		name     string
		err      *EsqlError
		expected string
	}{
		{
			name:     "message only",
			err:      &EsqlError{Message: "something went wrong"},
			expected: "something went wrong",
		},
		{
			name: "with line and column",
			err: &EsqlError{
				Message: "unexpected token",
				Line:    5,
				Column:  10,
			},
			expected: "line 5, column 10: unexpected token",
		},
		{
			name: "with file",
			err: &EsqlError{
				Message: "syntax error",
				File:    "q.esql",
				Line:    3,
				Column:  1,
			},
			expected: "q.esql: line 3, column 1: syntax error",
		},
		{
			name: "with hints",
			err: &EsqlError{
				Message: "unknown command 'WHRE'",
				Line:    1,
				Column:  10,
				Hints:   []string{"did you mean WHERE?"},
			},
			expected: "line 1, column 10: unknown command 'WHRE'\n  did you mean WHERE?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.String())
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestEsqlError_PrettyString(t *testing.T) {
	err := &EsqlError{
		Class:   ClassFeature,
		Message: "EXPLAIN is only available in development mode",
		File:    "q.esql",
		Line:    1,
		Column:  1,
		Hints:   []string{"enable development mode to use EXPLAIN"},
	}

	pretty := err.PrettyString()
	assert.Contains(t, pretty, "Feature error")
	assert.Contains(t, pretty, "in: q.esql")
	assert.Contains(t, pretty, "at: line 1, column 1")
	assert.Contains(t, pretty, "hint: enable development mode")
}

func TestNew(t *testing.T) {
	t.Run("catalog code", func(t *testing.T) {
		err := New("SYNTAX-0001", map[string]any{"Expected": "')'", "Got": "|"})
		assert.Equal(t, ClassSyntax, err.Class)
		assert.Equal(t, "SYNTAX-0001", err.Code)
		assert.Equal(t, "expected ')', got '|'", err.Message)
	})

	t.Run("hints are rendered", func(t *testing.T) {
		err := New("FEATURE-0001", map[string]any{"Feature": "EXPLAIN"})
		assert.Equal(t, ClassFeature, err.Class)
		assert.Equal(t, "EXPLAIN is only available in development mode", err.Message)
		assert.Equal(t, []string{"enable development mode to use EXPLAIN"}, err.Hints)
	})

	t.Run("unknown code", func(t *testing.T) {
		err := New("NOPE-0001", map[string]any{"message": "custom"})
		assert.Equal(t, ClassSyntax, err.Class)
		assert.Equal(t, "custom", err.Message)
	})

	t.Run("with position", func(t *testing.T) {
		err := NewWithPosition("LIMIT-0001", 2, 7, map[string]any{"Max": 500})
		assert.Equal(t, "line 2, column 7: query nesting exceeds the maximum depth of 500\n  reduce the number of nested parentheses, casts or sub-pipelines", err.String())
	})
}

func TestCatalogTemplatesRender(t *testing.T) {
	for code, def := range ErrorCatalog {
		t.Run(code, func(t *testing.T) {
			assert.NotEmpty(t, def.Class)
			assert.NotEmpty(t, def.Template)
		})
	}
}

func TestUnwrapToClassSentinel(t *testing.T) {
	tests := []struct {
		code     string
		sentinel error
	}{
		{"SYNTAX-0001", ErrSyntax},
		{"EOF-0001", ErrUnexpectedEOF},
		{"LIMIT-0001", ErrRecursionLimitExceeded},
		{"FEATURE-0001", ErrFeatureDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", New(tt.code, map[string]any{}))
			assert.True(t, stderrors.Is(err, tt.sentinel))

			e, ok := As(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, e.Code)
			assert.True(t, Is(err, e.Class))
		})
	}

	assert.False(t, Is(stderrors.New("plain"), ClassSyntax))
}

func TestCopiesDoNotMutate(t *testing.T) {
	orig := New("SYNTAX-0002", map[string]any{"Got": "x"})
	withFile := orig.WithFile("a.esql").WithPosition(3, 4).WithSpan(10, 11)

	assert.Empty(t, orig.File)
	assert.Zero(t, orig.Line)
	assert.Equal(t, "a.esql", withFile.File)
	assert.Equal(t, 3, withFile.Line)
	assert.Equal(t, 4, withFile.Column)
	assert.Equal(t, 10, withFile.Offset)
	assert.Equal(t, 11, withFile.End)
}

func TestToJSON(t *testing.T) {
	err := &EsqlError{
		Class:    ClassSyntax,
		Code:     "SYNTAX-0001",
		Message:  "expected ')', got '|'",
		Line:     1,
		Column:   12,
		Offset:   11,
		End:      12,
		Token:    "|",
		Expected: []string{"')'"},
	}

	data, jerr := err.ToJSON()
	require.NoError(t, jerr)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "syntax", decoded["class"])
	assert.Equal(t, "|", decoded["token"])
	assert.Equal(t, float64(11), decoded["offset"])
	assert.Equal(t, []any{"')'"}, decoded["expected"])
	assert.NotContains(t, decoded, "file")
}

func TestJoinExpected(t *testing.T) {
	assert.Equal(t, "something else", JoinExpected(nil))
	assert.Equal(t, "')'", JoinExpected([]string{"')'"}))
	assert.Equal(t, "',' or ')'", JoinExpected([]string{"','", "')'"}))
	assert.Equal(t, "a, b or c", JoinExpected([]string{"a", "b", "a", "c"}))
}

func TestFindClosestMatch(t *testing.T) {
	commands := []string{"EVAL", "FROM", "KEEP", "LIMIT", "SORT", "STATS", "WHERE"}

	tests := []struct {
		input    string
		expected string
	}{
		{"WHRE", "WHERE"},
		{"where", ""},
		{"stast", "STATS"},
		{"LIMT", "LIMIT"},
		{"xyzzy", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, FindClosestMatch(tt.input, commands))
		})
	}
}

func TestNewUnknownCommand(t *testing.T) {
	err := NewUnknownCommand("WHRE", []string{"WHERE", "KEEP"})
	assert.Equal(t, "unknown command 'WHRE'", err.Message)
	assert.Equal(t, []string{"did you mean WHERE?"}, err.Hints)

	err = NewUnknownCommand("QQQQQQQ", []string{"WHERE", "KEEP"})
	assert.Empty(t, err.Hints)
}
