package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type expectedToken struct {
	typ     TokenType
	literal string
}

func lexAll(input string) []expectedToken {
	var out []expectedToken
	for _, tok := range New(input).Tokenize() {
		out = append(out, expectedToken{tok.Type, tok.Literal})
	}
	return out
}

func TestNextToken(t *testing.T) {
	input := `FROM logs-* | WHERE a > 1 AND b == "x" | LIMIT 10`

	expected := []expectedToken{
		{FROM, "FROM"},
		{UNQUOTED_SOURCE, "logs-*"},
		{PIPE, "|"},
		{WHERE, "WHERE"},
		{UNQUOTED_IDENTIFIER, "a"},
		{GT, ">"},
		{INTEGER_LITERAL, "1"},
		{AND, "AND"},
		{UNQUOTED_IDENTIFIER, "b"},
		{EQ, "=="},
		{QUOTED_STRING, `"x"`},
		{PIPE, "|"},
		{LIMIT, "LIMIT"},
		{INTEGER_LITERAL, "10"},
		{EOF, ""},
	}

	assert.Equal(t, expected, lexAll(input))
}

func TestKeywordsAreCaseInsensitive(t *testing.T) {
	expected := []expectedToken{
		{FROM, "from"},
		{UNQUOTED_SOURCE, "idx"},
		{PIPE, "|"},
		{WHERE, "Where"},
		{NOT, "not"},
		{TRUE, "TrUe"},
		{EOF, ""},
	}
	assert.Equal(t, expected, lexAll("from idx | Where not TrUe"))
}

func TestContextKeywords(t *testing.T) {
	input := "ROW a = 1 | STATS c = count(*) BY host | SORT c DESC NULLS LAST | EVAL by = 1"

	expected := []expectedToken{
		{ROW, "ROW"},
		{UNQUOTED_IDENTIFIER, "a"},
		{ASSIGN, "="},
		{INTEGER_LITERAL, "1"},
		{PIPE, "|"},
		{STATS, "STATS"},
		{UNQUOTED_IDENTIFIER, "c"},
		{ASSIGN, "="},
		{UNQUOTED_IDENTIFIER, "count"},
		{LP, "("},
		{ASTERISK, "*"},
		{RP, ")"},
		{BY, "BY"},
		{UNQUOTED_IDENTIFIER, "host"},
		{PIPE, "|"},
		{SORT, "SORT"},
		{UNQUOTED_IDENTIFIER, "c"},
		{DESC, "DESC"},
		{NULLS, "NULLS"},
		{LAST, "LAST"},
		{PIPE, "|"},
		{EVAL, "EVAL"},
		{UNQUOTED_IDENTIFIER, "by"},
		{ASSIGN, "="},
		{INTEGER_LITERAL, "1"},
		{EOF, ""},
	}

	assert.Equal(t, expected, lexAll(input))
}

func TestSourcePatterns(t *testing.T) {
	input := `FROM remote:logs, idx::failures, "quoted" METADATA _id, _index`

	expected := []expectedToken{
		{FROM, "FROM"},
		{UNQUOTED_SOURCE, "remote"},
		{COLON, ":"},
		{UNQUOTED_SOURCE, "logs"},
		{COMMA, ","},
		{UNQUOTED_SOURCE, "idx"},
		{CAST_OP, "::"},
		{UNQUOTED_SOURCE, "failures"},
		{COMMA, ","},
		{QUOTED_STRING, `"quoted"`},
		{METADATA, "METADATA"},
		{UNQUOTED_SOURCE, "_id"},
		{COMMA, ","},
		{UNQUOTED_SOURCE, "_index"},
		{EOF, ""},
	}

	assert.Equal(t, expected, lexAll(input))
}

func TestNamePatterns(t *testing.T) {
	input := "FROM i | KEEP emp_*, first_name | RENAME a AS b, c = d | DROP `x y`*"

	expected := []expectedToken{
		{FROM, "FROM"},
		{UNQUOTED_SOURCE, "i"},
		{PIPE, "|"},
		{KEEP, "KEEP"},
		{ID_PATTERN, "emp_*"},
		{COMMA, ","},
		{ID_PATTERN, "first_name"},
		{PIPE, "|"},
		{RENAME, "RENAME"},
		{ID_PATTERN, "a"},
		{AS, "AS"},
		{ID_PATTERN, "b"},
		{COMMA, ","},
		{ID_PATTERN, "c"},
		{ASSIGN, "="},
		{ID_PATTERN, "d"},
		{PIPE, "|"},
		{DROP, "DROP"},
		{ID_PATTERN, "`x y`*"},
		{EOF, ""},
	}

	assert.Equal(t, expected, lexAll(input))
}

func TestJoinModes(t *testing.T) {
	t.Run("lookup join", func(t *testing.T) {
		expected := []expectedToken{
			{FROM, "FROM"},
			{UNQUOTED_SOURCE, "a"},
			{PIPE, "|"},
			{LOOKUP, "LOOKUP"},
			{JOIN, "JOIN"},
			{UNQUOTED_SOURCE, "lu"},
			{AS, "AS"},
			{UNQUOTED_SOURCE, "l"},
			{ON, "ON"},
			{UNQUOTED_IDENTIFIER, "x"},
			{EQ, "=="},
			{UNQUOTED_IDENTIFIER, "l"},
			{DOT, "."},
			{UNQUOTED_IDENTIFIER, "y"},
			{EOF, ""},
		}
		assert.Equal(t, expected, lexAll("FROM a | LOOKUP JOIN lu AS l ON x == l.y"))
	})

	t.Run("lookup command", func(t *testing.T) {
		expected := []expectedToken{
			{FROM, "FROM"},
			{UNQUOTED_SOURCE, "a"},
			{PIPE, "|"},
			{LOOKUP, "LOOKUP"},
			{UNQUOTED_SOURCE, "tbl"},
			{ON, "ON"},
			{ID_PATTERN, "f1"},
			{COMMA, ","},
			{ID_PATTERN, "f2*"},
			{EOF, ""},
		}
		assert.Equal(t, expected, lexAll("FROM a | LOOKUP tbl ON f1, f2*"))
	})
}

func TestEnrichModes(t *testing.T) {
	expected := []expectedToken{
		{ENRICH, "ENRICH"},
		{ENRICH_POLICY_NAME, "_remote:my-policy"},
		{ON, "ON"},
		{ID_PATTERN, "k"},
		{WITH, "WITH"},
		{ID_PATTERN, "n"},
		{ASSIGN, "="},
		{ID_PATTERN, "v"},
		{EOF, ""},
	}
	assert.Equal(t, expected, lexAll("ENRICH _remote:my-policy ON k WITH n = v"))
}

func TestParameters(t *testing.T) {
	expected := []expectedToken{
		{EVAL, "EVAL"},
		{PARAM, "?"},
		{COMMA, ","},
		{NAMED_OR_POSITIONAL_PARAM, "?name"},
		{COMMA, ","},
		{NAMED_OR_POSITIONAL_PARAM, "?1"},
		{COMMA, ","},
		{DOUBLE_PARAMS, "??"},
		{COMMA, ","},
		{NAMED_OR_POSITIONAL_DOUBLE_PARAMS, "??field"},
		{EOF, ""},
	}
	assert.Equal(t, expected, lexAll("EVAL ?, ?name, ?1, ??, ??field"))
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input    string
		expected TokenType
	}{
		{"1", INTEGER_LITERAL},
		{"1.5", DECIMAL_LITERAL},
		{".5", DECIMAL_LITERAL},
		{"1.", DECIMAL_LITERAL},
		{"1e10", DECIMAL_LITERAL},
		{"2.5E-3", DECIMAL_LITERAL},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks := New("ROW " + tt.input).Tokenize()
			require.Len(t, toks, 3)
			assert.Equal(t, tt.expected, toks[1].Type)
			assert.Equal(t, tt.input, toks[1].Literal)
		})
	}
}

func TestStrings(t *testing.T) {
	toks := New(`ROW "a\"b", """raw "q" """`).Tokenize()
	require.Len(t, toks, 5)
	assert.Equal(t, QUOTED_STRING, toks[1].Type)
	assert.Equal(t, `"a\"b"`, toks[1].Literal)
	assert.Equal(t, QUOTED_STRING, toks[3].Type)
	assert.Equal(t, `"""raw "q" """`, toks[3].Literal)
}

func TestComments(t *testing.T) {
	input := "FROM a // trailing\n| /* outer /* nested */ still */ LIMIT 1"
	expected := []expectedToken{
		{FROM, "FROM"},
		{UNQUOTED_SOURCE, "a"},
		{PIPE, "|"},
		{LIMIT, "LIMIT"},
		{INTEGER_LITERAL, "1"},
		{EOF, ""},
	}
	assert.Equal(t, expected, lexAll(input))
}

func TestForkFrames(t *testing.T) {
	input := "FROM a | FORK (WHERE x) (SORT y DESC | LIMIT 1) | KEEP z"
	expected := []expectedToken{
		{FROM, "FROM"},
		{UNQUOTED_SOURCE, "a"},
		{PIPE, "|"},
		{FORK, "FORK"},
		{LP, "("},
		{WHERE, "WHERE"},
		{UNQUOTED_IDENTIFIER, "x"},
		{RP, ")"},
		{LP, "("},
		{SORT, "SORT"},
		{UNQUOTED_IDENTIFIER, "y"},
		{DESC, "DESC"},
		{PIPE, "|"},
		{LIMIT, "LIMIT"},
		{INTEGER_LITERAL, "1"},
		{RP, ")"},
		{PIPE, "|"},
		{KEEP, "KEEP"},
		{ID_PATTERN, "z"},
		{EOF, ""},
	}
	assert.Equal(t, expected, lexAll(input))
}

func TestPromqlBody(t *testing.T) {
	input := `PROMQL step=1m (sum(rate(http_requests_total{job=~"api"}[5m]))) | KEEP x`
	expected := []expectedToken{
		{PROMQL, "PROMQL"},
		{PROMQL_UNQUOTED_IDENTIFIER, "step"},
		{ASSIGN, "="},
		{PROMQL_UNQUOTED_IDENTIFIER, "1m"},
		{LP, "("},
		{PROMQL_UNQUOTED_IDENTIFIER, "sum"},
		{LP, "("},
		{PROMQL_UNQUOTED_IDENTIFIER, "rate"},
		{LP, "("},
		{PROMQL_UNQUOTED_IDENTIFIER, "http_requests_total"},
		{LEFT_BRACES, "{"},
		{PROMQL_UNQUOTED_IDENTIFIER, "job"},
		{PROMQL_OTHER, "=~"},
		{QUOTED_STRING, `"api"`},
		{RIGHT_BRACES, "}"},
		{OPENING_BRACKET, "["},
		{PROMQL_UNQUOTED_IDENTIFIER, "5m"},
		{CLOSING_BRACKET, "]"},
		{RP, ")"},
		{RP, ")"},
		{RP, ")"},
		{PIPE, "|"},
		{KEEP, "KEEP"},
		{ID_PATTERN, "x"},
		{EOF, ""},
	}
	assert.Equal(t, expected, lexAll(input))
}

func TestSetStatements(t *testing.T) {
	expected := []expectedToken{
		{SET, "SET"},
		{UNQUOTED_IDENTIFIER, "a"},
		{ASSIGN, "="},
		{INTEGER_LITERAL, "1"},
		{SEMICOLON, ";"},
		{FROM, "FROM"},
		{UNQUOTED_SOURCE, "b"},
		{EOF, ""},
	}
	assert.Equal(t, expected, lexAll("SET a = 1; FROM b"))
}

func TestPositions(t *testing.T) {
	toks := New("FROM a\n| WHERE x").Tokenize()
	require.Len(t, toks, 6)

	assert.Equal(t, 1, toks[0].Line)
	assert.Equal(t, 1, toks[0].Column)
	assert.Equal(t, Span{Start: 0, End: 4}, toks[0].Span)

	assert.Equal(t, 2, toks[2].Line)
	assert.Equal(t, 1, toks[2].Column)

	assert.Equal(t, 2, toks[4].Line)
	assert.Equal(t, 9, toks[4].Column)
	assert.Equal(t, Span{Start: 15, End: 16}, toks[4].Span)
}

func TestIllegalTokens(t *testing.T) {
	tests := []struct {
		input   string
		message string
	}{
		{`ROW "unterminated`, "unterminated string"},
		{"ROW `oops", "unterminated quoted identifier"},
		{"ROW a ! b", "unexpected character '!'"},
		{"ROW a $ b", "unexpected character '$'"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var illegal *Token
			for _, tok := range New(tt.input).Tokenize() {
				if tok.Type == ILLEGAL {
					tok := tok
					illegal = &tok
					break
				}
			}
			require.NotNil(t, illegal)
			assert.Equal(t, tt.message, illegal.Literal)
		})
	}
}

func TestTokenTypeDisplay(t *testing.T) {
	assert.Equal(t, "'|'", PIPE.Display())
	assert.Equal(t, "identifier", UNQUOTED_IDENTIFIER.Display())
	assert.Equal(t, "BY", BY.Display())
	assert.Equal(t, "end of query", EOF.Display())
	assert.Equal(t, "UNKNOWN", TokenType(-1).String())
}

func TestCommandNames(t *testing.T) {
	names := CommandNames()
	assert.Contains(t, names, "FROM")
	assert.Contains(t, names, "MV_EXPAND")
	assert.IsIncreasing(t, names)

	tt, ok := LookupCommand("where")
	assert.True(t, ok)
	assert.Equal(t, WHERE, tt)
	assert.True(t, IsCommand(tt))
	assert.False(t, IsCommand(BY))
}
