package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sambeau/esql/pkg/esql/ast"
	"github.com/sambeau/esql/pkg/esql/parser"
)

// walkAll parses input in development mode so every node type is reachable.
func walkAll(t *testing.T, input string) *ast.Statements {
	t.Helper()
	stmts, err := parser.Parse(input, parser.WithDevMode(true))
	require.NoError(t, err)
	return stmts
}

func TestWalkVisitsEveryCommand(t *testing.T) {
	inputs := []string{
		`SET a = {"x": [1, 2]}; FROM i, (FROM j METADATA _id) | WHERE a > 1 AND b IN (1, 2) OR c IS NOT NULL`,
		`ROW a = -1, b = f(x, {"k": "v"}) | EVAL c = a::long * 2 | KEEP [t].a*, b | DROP c`,
		`TS m | STATS s = sum(x) WHERE x > 0 BY h | INLINE STATS m = max(s) | SORT s DESC NULLS LAST`,
		`FROM i | RENAME a AS b | DISSECT msg "%{a}" APPEND_SEPARATOR=":" | GROK msg "%{WORD:w}" | ENRICH p ON k WITH n = f`,
		`FROM i | MV_EXPAND t | LOOKUP JOIN l AS q ON k | LEFT JOIN r ON a == b | LOOKUP tbl ON a`,
		`FROM i | CHANGE_POINT v ON t AS ty, pv | COMPLETION c = p WITH {} | RERANK "q" ON a, b = x WITH {}`,
		`FROM i | MMR ?v ON e LIMIT 3 | INSIST a | SAMPLE 0.5 | URI_PARTS p = u | METRICS_INFO`,
		`FROM i | FORK (WHERE a LIKE "x*" | LIMIT 1) (WHERE b RLIKE ("a", "b")) | FUSE rrf SCORE BY s WITH {"k": 1}`,
		`EXPLAIN (FROM i | WHERE f : "q")`,
		`EXTERNAL ?src WITH {"format": "csv"}`,
		`PROMQL step=1m v=(sum(rate(x[1m])))`,
		`SHOW INFO`,
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			stmts := walkAll(t, input)
			assert.NotPanics(t, func() {
				ast.Inspect(stmts, func(ast.Node) bool { return true })
			})
		})
	}
}

func TestInspectVisitsInSourceOrder(t *testing.T) {
	stmts := walkAll(t, "FROM i | EVAL x = a + b | WHERE c")

	var names []string
	ast.Inspect(stmts, func(n ast.Node) bool {
		if id, ok := n.(*ast.Identifier); ok {
			names = append(names, id.Name)
		}
		return true
	})
	assert.Equal(t, []string{"x", "a", "b", "c"}, names)
}

func TestInspectCanPrune(t *testing.T) {
	stmts := walkAll(t, "FROM i | EVAL x = f(g(a)) | WHERE b")

	var functions []string
	ast.Inspect(stmts, func(n ast.Node) bool {
		if fn, ok := n.(*ast.FunctionExpression); ok {
			functions = append(functions, fn.FunctionName())
			return false
		}
		return true
	})
	assert.Equal(t, []string{"f"}, functions)
}

func TestCount(t *testing.T) {
	stmts := walkAll(t, "FROM i | WHERE a > 1 AND b > 2 | LIMIT 3")
	counts := ast.Count(stmts)

	assert.Equal(t, 1, counts["Statements"])
	assert.Equal(t, 2, counts["CompositeQuery"])
	assert.Equal(t, 1, counts["FromCommand"])
	assert.Equal(t, 2, counts["Comparison"])
	assert.Equal(t, 1, counts["LogicalBinary"])
	assert.Equal(t, 3, counts["IntegerLiteral"])
	assert.Equal(t, 0, counts["FunctionExpression"])
}

type depthVisitor struct {
	depth *int
	max   *int
}

func (v depthVisitor) Visit(n ast.Node) ast.Visitor {
	if n == nil {
		*v.depth--
		return nil
	}
	*v.depth++
	if *v.depth > *v.max {
		*v.max = *v.depth
	}
	return v
}

func TestWalkBalancesVisitNil(t *testing.T) {
	depth, max := 0, 0
	stmts := walkAll(t, "ROW a = ((1 + 2))")
	ast.Walk(depthVisitor{&depth, &max}, stmts)
	assert.Equal(t, 0, depth)
	assert.Greater(t, max, 5)
}
