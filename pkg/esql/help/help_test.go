package help

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sambeau/esql/pkg/esql/lexer"
)

func TestEveryCommandIsDocumented(t *testing.T) {
	for _, name := range lexer.CommandNames() {
		t.Run(name, func(t *testing.T) {
			result, err := DescribeTopic(name)
			require.NoError(t, err)
			assert.Equal(t, "command", result.Kind)
			assert.Equal(t, name, result.Name)
			assert.NotEmpty(t, result.Syntax)
			assert.NotEmpty(t, result.Description)
		})
	}
	assert.Len(t, Commands(), len(lexer.CommandNames()))
}

func TestDescribeCommandCaseInsensitive(t *testing.T) {
	for _, topic := range []string{"where", "WHERE", "Where", " where ", "lookup join", "INLINE STATS"} {
		t.Run(topic, func(t *testing.T) {
			result, err := DescribeTopic(topic)
			require.NoError(t, err)
			assert.Equal(t, "command", result.Kind)
		})
	}
}

func TestDescribeDevCommand(t *testing.T) {
	result, err := DescribeTopic("insist")
	require.NoError(t, err)
	assert.True(t, result.Dev)
	assert.Contains(t, FormatText(result, 80), "development mode")

	result, err = DescribeTopic("eval")
	require.NoError(t, err)
	assert.False(t, result.Dev)
}

func TestDescribeCommandLists(t *testing.T) {
	tests := []struct {
		topic    string
		contains []string
		excludes []string
	}{
		{"commands", []string{"FROM", "WHERE", "SET"}, nil},
		{"source", []string{"FROM", "ROW", "PROMQL"}, []string{"WHERE"}},
		{"processing", []string{"WHERE", "FORK", "FUSE"}, []string{"FROM", "SET"}},
		{"dev", []string{"EXPLAIN", "EXTERNAL", "INSIST", "MMR", "LEFT", "RIGHT"}, []string{"FROM", "WHERE"}},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			result, err := DescribeTopic(tt.topic)
			require.NoError(t, err)
			assert.Equal(t, "command-list", result.Kind)

			var names []string
			for _, c := range result.Commands {
				names = append(names, c.Name)
			}
			for _, want := range tt.contains {
				assert.Contains(t, names, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, names, unwanted)
			}
		})
	}
}

func TestCommandsOrder(t *testing.T) {
	cmds := Commands()
	require.NotEmpty(t, cmds)
	assert.Equal(t, "SET", cmds[0].Name)
	assert.Equal(t, "source", cmds[1].Category)
	assert.Equal(t, "processing", cmds[len(cmds)-1].Category)
}

func TestDescribeOperators(t *testing.T) {
	result, err := DescribeTopic("operators")
	require.NoError(t, err)
	assert.Equal(t, "operator-list", result.Kind)
	require.NotEmpty(t, result.Operators)

	assert.Equal(t, "|", result.Operators[0].Symbol)
	assert.Equal(t, "::", result.Operators[len(result.Operators)-1].Symbol)
	for i := 1; i < len(result.Operators); i++ {
		assert.LessOrEqual(t, result.Operators[i-1].Precedence, result.Operators[i].Precedence)
	}
}

func TestUnknownTopic(t *testing.T) {
	_, err := DescribeTopic("whre")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown topic: whre")
	assert.Contains(t, err.Error(), "Did you mean: WHERE")

	_, err = DescribeTopic("xyzzyplugh")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Try: commands, operators")

	_, err = DescribeTopic("")
	assert.Error(t, err)
}

func TestFormatText(t *testing.T) {
	result, err := DescribeTopic("stats")
	require.NoError(t, err)
	text := FormatText(result, 80)
	assert.True(t, strings.HasPrefix(text, "STATS\n"))
	assert.Contains(t, text, "BY group")
	assert.Contains(t, text, "Category: processing")

	result, err = DescribeTopic("commands")
	require.NoError(t, err)
	text = FormatText(result, 0)
	assert.Contains(t, text, "Commands\n========")
	assert.Contains(t, text, "Source:")
	assert.Contains(t, text, "INSIST")
	assert.Contains(t, text, "(dev)")
	for _, line := range strings.Split(text, "\n") {
		assert.LessOrEqual(t, len(line), 80)
	}

	result, err = DescribeTopic("operators")
	require.NoError(t, err)
	text = FormatText(result, 80)
	assert.Contains(t, text, "Precedence 8 (cast):")

	assert.Contains(t, FormatText(&TopicResult{Kind: "bogus"}, 80), "Unknown result kind")
}

func TestFormatJSON(t *testing.T) {
	result, err := DescribeTopic("fork")
	require.NoError(t, err)

	data, err := FormatJSON(result)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "command", decoded["kind"])
	assert.Equal(t, "FORK", decoded["name"])
	assert.NotContains(t, decoded, "dev")
}

func TestWrap(t *testing.T) {
	assert.Equal(t, "one two\nthree", wrap("one two three", 8))
	assert.Equal(t, "", wrap("   ", 10))
}
