package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sambeau/esql/pkg/esql/ast"
	perrors "github.com/sambeau/esql/pkg/esql/errors"
)

func mustParse(t *testing.T, input string, opts ...Option) *ast.Statements {
	t.Helper()
	stmts, err := Parse(input, opts...)
	require.NoError(t, err, input)
	require.NotNil(t, stmts)
	return stmts
}

func mustFail(t *testing.T, input string, opts ...Option) *perrors.EsqlError {
	t.Helper()
	stmts, err := Parse(input, opts...)
	require.Error(t, err, input)
	assert.Nil(t, stmts)
	e, ok := perrors.As(err)
	require.True(t, ok, "expected *EsqlError, got %T", err)
	return e
}

func whereCondition(t *testing.T, expr string, opts ...Option) ast.BooleanExpression {
	t.Helper()
	cmds := ast.Commands(mustParse(t, "FROM i | WHERE "+expr, opts...).Query)
	require.Len(t, cmds, 2)
	where, ok := cmds[1].(*ast.WhereCommand)
	require.True(t, ok, "got %T", cmds[1])
	return where.Condition
}

func rowValue(t *testing.T, expr string) ast.BooleanExpression {
	t.Helper()
	cmds := ast.Commands(mustParse(t, "ROW a = "+expr).Query)
	row, ok := cmds[0].(*ast.RowCommand)
	require.True(t, ok, "got %T", cmds[0])
	require.Len(t, row.Fields, 1)
	return row.Fields[0].Value
}

func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"a OR b AND c", "(a OR (b AND c))"},
		{"a AND b OR c", "((a AND b) OR c)"},
		{"a OR b OR c", "((a OR b) OR c)"},
		{"NOT a AND b", "((NOT a) AND b)"},
		{"NOT NOT a", "(NOT (NOT a))"},
		{"a AND NOT b OR c", "((a AND (NOT b)) OR c)"},
		{"a == 1 AND NOT b IS NULL", "((a == 1) AND (NOT (b IS NULL)))"},
		{"a + b * c > 10", "((a + (b * c)) > 10)"},
		{"a - b - c == 0", "(((a - b) - c) == 0)"},
		{"a % 2 == 0 OR a / 2 > 1", "(((a % 2) == 0) OR ((a / 2) > 1))"},
		{"-a * 2 > b", "((-a * 2) > b)"},
		{"-(a + b) < 1", "(-((a + b)) < 1)"},
		{"2 * (3 + 4) >= x", "((2 * ((3 + 4))) >= x)"},
		{"a::long + 1 > b", "((a::long + 1) > b)"},
		{`"1"::int::long == 1`, `("1"::int::long == 1)`},
		{"f(a, b) > 1", "(f(a, b) > 1)"},
		{"a.b.c == `x y`", "(a.b.c == `x y`)"},
		{"@timestamp > now() - 1 day", "(@timestamp > (now() - 1 day))"},
		{"true AND null IS NULL", "(true AND (null IS NULL))"},
		{"x == ?name", "(x == ?name)"},
		{"a != b", "(a != b)"},
		{"a <= b", "(a <= b)"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, whereCondition(t, tt.input).String())
		})
	}
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"x IN (1, 2, 3)", "(x IN (1, 2, 3))"},
		{"x NOT IN (1)", "(x NOT IN (1))"},
		{"x + 1 IN (a, b * 2)", "((x + 1) IN (a, (b * 2)))"},
		{"x IS NULL", "(x IS NULL)"},
		{"x IS NOT NULL", "(x IS NOT NULL)"},
		{`name LIKE "a*"`, `(name LIKE "a*")`},
		{`name NOT LIKE "a*"`, `(name NOT LIKE "a*")`},
		{`name RLIKE "a.*"`, `(name RLIKE "a.*")`},
		{`name NOT RLIKE ("a.*", "b.*")`, `(name NOT RLIKE ("a.*", "b.*"))`},
		{`name LIKE (?p1, "b*")`, `(name LIKE (?p1, "b*"))`},
		{`title : "quick"`, `(title : "quick")`},
		{`title::text : "quick" AND year > 2000`, `((title::text : "quick") AND (year > 2000))`},
		{`a.b : ?q`, `(a.b : ?q)`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, whereCondition(t, tt.input).String())
		})
	}
}

func TestExpressionNodeTypes(t *testing.T) {
	cmp, ok := whereCondition(t, "a > 1").(*ast.Comparison)
	require.True(t, ok)
	assert.Equal(t, ast.OpGt, cmp.Operator)
	deref, ok := cmp.Left.(*ast.Dereference)
	require.True(t, ok)
	assert.Equal(t, "a", deref.Name.Name())
	lit, ok := cmp.Right.(*ast.IntegerLiteral)
	require.True(t, ok)
	assert.Equal(t, int64(1), lit.Value)

	in, ok := whereCondition(t, "x NOT IN (1, 2)").(*ast.InExpression)
	require.True(t, ok)
	assert.True(t, in.Negated)
	assert.Len(t, in.List, 2)

	like, ok := whereCondition(t, `x LIKE ("a", "b")`).(*ast.LikeListExpression)
	require.True(t, ok)
	assert.Len(t, like.Patterns, 2)

	match, ok := whereCondition(t, `f::keyword : "v"`).(*ast.MatchExpression)
	require.True(t, ok)
	assert.Equal(t, "f", match.Field.Name())
	require.NotNil(t, match.FieldType)
	assert.Equal(t, "keyword", match.FieldType.Name)

	fn, ok := whereCondition(t, `starts_with(name, "a")`).(*ast.FunctionExpression)
	require.True(t, ok)
	assert.Equal(t, "starts_with", fn.FunctionName())
	assert.Len(t, fn.Args, 2)
}

func TestSignedNumbersInExpressions(t *testing.T) {
	// in expressions a sign is an operator
	unary, ok := rowValue(t, "-1").(*ast.ArithmeticUnary)
	require.True(t, ok)
	assert.Equal(t, ast.OpSub, unary.Operator)
	operand, ok := unary.Operand.(*ast.IntegerLiteral)
	require.True(t, ok)
	assert.Equal(t, int64(1), operand.Value)

	// in constant positions it is part of the literal
	cmds := ast.Commands(mustParse(t, "FROM i | LIMIT -1").Query)
	limit := cmds[1].(*ast.LimitCommand)
	count, ok := limit.Count.(*ast.IntegerLiteral)
	require.True(t, ok)
	assert.Equal(t, int64(-1), count.Value)
	assert.Equal(t, "-1", count.Text)
}

func TestCasts(t *testing.T) {
	cast, ok := rowValue(t, "x::long::string").(*ast.InlineCast)
	require.True(t, ok)
	assert.Equal(t, "string", cast.Type.Name)
	inner, ok := cast.Value.(*ast.InlineCast)
	require.True(t, ok)
	assert.Equal(t, "long", inner.Type.Name)
	assert.Equal(t, "x::long::string", cast.String())

	assert.Equal(t, "(a)::double", rowValue(t, "(a)::DOUBLE").String())
}

func TestFunctionCalls(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"count(*)", "count(*)"},
		{"now()", "now()"},
		{"coalesce(a, b, 1)", "coalesce(a, b, 1)"},
		{"round(a * 2, 1)", "round((a * 2), 1)"},
		{"`weird fn`(a)", "`weird fn`(a)"},
		{"?fn(x)", "?fn(x)"},
		{`match(title, "x", {"fuzziness": "AUTO", "boost": 2.5})`, `match(title, "x", {"fuzziness": "AUTO", "boost": 2.5})`},
		{`f(a, {"nested": {"k": [1, 2]}})`, `f(a, {"nested": {"k": [1, 2]}})`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, rowValue(t, tt.input).String())
		})
	}

	fn := rowValue(t, `match(title, "x", {"boost": 2.5})`).(*ast.FunctionExpression)
	require.NotNil(t, fn.Options)
	boost, ok := fn.Options.Get("boost")
	require.True(t, ok)
	assert.Equal(t, 2.5, boost.(*ast.DecimalLiteral).Value)
	_, ok = fn.Options.Get("missing")
	assert.False(t, ok)

	param := rowValue(t, "?fn(x)").(*ast.FunctionExpression)
	assert.IsType(t, &ast.InputParameter{}, param.Name)
}

func TestFunctionOptionsMustFollowArguments(t *testing.T) {
	e := mustFail(t, `ROW a = f({"k": 1})`)
	assert.Equal(t, "SYNTAX-0001", e.Code)
	assert.Equal(t, "{", e.Token)
}

func TestPredicatesDoNotChain(t *testing.T) {
	for _, input := range []string{
		"FROM i | WHERE a < b < c",
		"FROM i | WHERE a IN (1) IN (2)",
		"FROM i | WHERE a IS NULL IS NULL",
	} {
		e := mustFail(t, input)
		assert.Equal(t, "SYNTAX-0002", e.Code, input)
	}
}

func TestEmptyInList(t *testing.T) {
	e := mustFail(t, "FROM i | WHERE a IN ()")
	assert.Equal(t, "SYNTAX-0004", e.Code)
	assert.Equal(t, "IN requires at least one value", e.Message)
	assert.Equal(t, ")", e.Token)
}
