package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceContext(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		err      *EsqlError
		expected string
	}{
		{
			name:     "single line",
			source:   "FROM i | EVAL x = )",
			err:      &EsqlError{Line: 1, Column: 19, Offset: 18, End: 19},
			expected: "    FROM i | EVAL x = )\n                      ^\n",
		},
		{
			name:     "underlines the whole token",
			source:   "FROM i | WHEER a",
			err:      &EsqlError{Line: 1, Column: 10, Offset: 9, End: 14},
			expected: "    FROM i | WHEER a\n             ^~~~~\n",
		},
		{
			name:     "indented second line",
			source:   "FROM i |\n    EVAL x = )",
			err:      &EsqlError{Line: 2, Column: 14, Offset: 22, End: 23},
			expected: "    EVAL x = )\n             ^\n",
		},
		{
			name:     "end of input",
			source:   "FROM i |",
			err:      &EsqlError{Line: 1, Column: 9, Offset: 8, End: 8},
			expected: "    FROM i |\n            ^\n",
		},
		{
			name:     "span crossing lines is clipped",
			source:   "ROW a = \"\"\"x\ny\"\"\"",
			err:      &EsqlError{Line: 1, Column: 9, Offset: 8, End: 17},
			expected: "    ROW a = \"\"\"x\n            ^~~~\n",
		},
		{
			name:     "no line",
			source:   "FROM i",
			err:      &EsqlError{},
			expected: "",
		},
		{
			name:     "line out of range",
			source:   "FROM i",
			err:      &EsqlError{Line: 3, Column: 1},
			expected: "",
		},
		{
			name:     "no column",
			source:   "FROM i",
			err:      &EsqlError{Line: 1},
			expected: "    FROM i\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.SourceContext(tt.source))
		})
	}
}
