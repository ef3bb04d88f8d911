package ast

import "fmt"

// A Visitor's Visit method is invoked for each node encountered by Walk.
// If the result visitor w is not nil, Walk visits each of the children of
// node with w, followed by a call of w.Visit(nil).
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses an AST in depth-first order, children in source order.
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}

	switch n := node.(type) {
	// Statements and queries
	case *Statements:
		for _, s := range n.Sets {
			Walk(v, s)
		}
		if n.Query != nil {
			Walk(v, n.Query)
		}
	case *SetCommand:
		Walk(v, n.Name)
		Walk(v, n.Value)
	case *SingleCommandQuery:
		Walk(v, n.Command)
	case *CompositeQuery:
		Walk(v, n.Left)
		Walk(v, n.Right)
	case *SingleForkQuery:
		Walk(v, n.Command)
	case *CompositeForkQuery:
		Walk(v, n.Left)
		Walk(v, n.Right)

	// Source commands
	case *FromCommand:
		for _, s := range n.Sources {
			Walk(v, s)
		}
	case *TimeSeriesCommand:
		for _, s := range n.Sources {
			Walk(v, s)
		}
	case *Subquery:
		Walk(v, n.Query)
	case *RowCommand:
		walkFields(v, n.Fields)
	case *ExplainCommand:
		Walk(v, n.Query)
	case *ExternalCommand:
		Walk(v, n.Source)
		if n.Options != nil {
			Walk(v, n.Options)
		}
	case *PromqlCommand:
		for _, p := range n.Params {
			Walk(v, p)
		}
		if n.ValueName != nil {
			Walk(v, n.ValueName)
		}
		Walk(v, n.Query)
	case *PromqlQuery:
		for _, p := range n.Parts {
			Walk(v, p)
		}
	case *PromqlGroup:
		for _, p := range n.Parts {
			Walk(v, p)
		}

	// Processing commands
	case *EvalCommand:
		walkFields(v, n.Fields)
	case *WhereCommand:
		Walk(v, n.Condition)
	case *KeepCommand:
		walkPatterns(v, n.Patterns)
	case *DropCommand:
		walkPatterns(v, n.Patterns)
	case *InsistCommand:
		walkPatterns(v, n.Patterns)
	case *LimitCommand:
		Walk(v, n.Count)
	case *SampleCommand:
		Walk(v, n.Probability)
	case *StatsCommand:
		for _, a := range n.Aggregates {
			Walk(v, a)
		}
		walkFields(v, n.Grouping)
	case *InlineStatsCommand:
		for _, a := range n.Aggregates {
			Walk(v, a)
		}
		walkFields(v, n.Grouping)
	case *SortCommand:
		for _, o := range n.Orders {
			Walk(v, o)
		}
	case *RenameCommand:
		for _, c := range n.Clauses {
			Walk(v, c)
		}
	case *RenameClause:
		Walk(v, n.Old)
		Walk(v, n.New)
	case *DissectCommand:
		Walk(v, n.Input)
		Walk(v, n.Pattern)
		for _, o := range n.Options {
			Walk(v, o)
		}
	case *DissectOption:
		Walk(v, n.Name)
		Walk(v, n.Value)
	case *GrokCommand:
		Walk(v, n.Input)
		for _, p := range n.Patterns {
			Walk(v, p)
		}
	case *EnrichCommand:
		if n.MatchField != nil {
			Walk(v, n.MatchField)
		}
		for _, w := range n.With {
			Walk(v, w)
		}
	case *EnrichWithClause:
		if n.NewName != nil {
			Walk(v, n.NewName)
		}
		Walk(v, n.Field)
	case *MvExpandCommand:
		Walk(v, n.Field)
	case *JoinCommand:
		Walk(v, n.Target)
		for _, c := range n.Conditions {
			Walk(v, c)
		}
	case *JoinTarget:
		Walk(v, n.Index)
		if n.Qualifier != nil {
			Walk(v, n.Qualifier)
		}
	case *LookupCommand:
		Walk(v, n.Table)
		walkPatterns(v, n.MatchFields)
	case *ChangePointCommand:
		Walk(v, n.Value)
		if n.Key != nil {
			Walk(v, n.Key)
		}
		if n.TypeName != nil {
			Walk(v, n.TypeName)
			Walk(v, n.PvalueName)
		}
	case *CompletionCommand:
		if n.Target != nil {
			Walk(v, n.Target)
		}
		Walk(v, n.Prompt)
		if n.Options != nil {
			Walk(v, n.Options)
		}
	case *RerankCommand:
		if n.Target != nil {
			Walk(v, n.Target)
		}
		Walk(v, n.QueryText)
		for _, f := range n.Fields {
			Walk(v, f)
		}
		if n.Options != nil {
			Walk(v, n.Options)
		}
	case *RerankField:
		Walk(v, n.Name)
		if n.Value != nil {
			Walk(v, n.Value)
		}
	case *MmrCommand:
		if n.Target != nil {
			Walk(v, n.Target)
		}
		if n.QueryVector != nil {
			Walk(v, n.QueryVector)
		}
		Walk(v, n.DiversifyField)
		Walk(v, n.Limit)
		if n.Options != nil {
			Walk(v, n.Options)
		}
	case *ForkCommand:
		for _, b := range n.Branches {
			Walk(v, b)
		}
	case *ForkBranch:
		Walk(v, n.Query)
	case *FuseCommand:
		if n.Type != nil {
			Walk(v, n.Type)
		}
		for _, c := range n.Configurations {
			Walk(v, c)
		}
	case *FuseConfiguration:
		for _, f := range n.Fields {
			Walk(v, f)
		}
		if n.Options != nil {
			Walk(v, n.Options)
		}
	case *UriPartsCommand:
		Walk(v, n.Target)
		Walk(v, n.Input)

	// Command building blocks
	case *Field:
		if n.Name != nil {
			Walk(v, n.Name)
		}
		Walk(v, n.Value)
	case *AggField:
		Walk(v, n.Field)
		if n.Filter != nil {
			Walk(v, n.Filter)
		}
	case *OrderExpression:
		Walk(v, n.Expression)

	// Expressions
	case *LogicalNot:
		Walk(v, n.Operand)
	case *LogicalBinary:
		Walk(v, n.Left)
		Walk(v, n.Right)
	case *InExpression:
		Walk(v, n.Value)
		for _, e := range n.List {
			Walk(v, e)
		}
	case *IsNullExpression:
		Walk(v, n.Value)
	case *LikeExpression:
		Walk(v, n.Value)
		Walk(v, n.Pattern)
	case *RlikeExpression:
		Walk(v, n.Value)
		Walk(v, n.Pattern)
	case *LikeListExpression:
		Walk(v, n.Value)
		for _, p := range n.Patterns {
			Walk(v, p)
		}
	case *RlikeListExpression:
		Walk(v, n.Value)
		for _, p := range n.Patterns {
			Walk(v, p)
		}
	case *MatchExpression:
		Walk(v, n.Field)
		if n.FieldType != nil {
			Walk(v, n.FieldType)
		}
		Walk(v, n.Query)
	case *Comparison:
		Walk(v, n.Left)
		Walk(v, n.Right)
	case *ArithmeticUnary:
		Walk(v, n.Operand)
	case *ArithmeticBinary:
		Walk(v, n.Left)
		Walk(v, n.Right)
	case *Dereference:
		Walk(v, n.Name)
	case *FunctionExpression:
		Walk(v, n.Name)
		for _, a := range n.Args {
			Walk(v, a)
		}
		if n.Options != nil {
			Walk(v, n.Options)
		}
	case *Parenthesized:
		Walk(v, n.Expression)
	case *InlineCast:
		Walk(v, n.Value)
		Walk(v, n.Type)
	case *QualifiedName:
		if n.Qualifier != nil {
			Walk(v, n.Qualifier)
		}
		for _, p := range n.Parts {
			Walk(v, p)
		}
	case *QualifiedNamePattern:
		if n.Qualifier != nil {
			Walk(v, n.Qualifier)
		}
		for _, p := range n.Parts {
			Walk(v, p)
		}
	case *QualifiedIntegerLiteral:
		Walk(v, n.Value)
	case *NumericArrayLiteral:
		for _, e := range n.Values {
			Walk(v, e)
		}
	case *BooleanArrayLiteral:
		for _, e := range n.Values {
			Walk(v, e)
		}
	case *StringArrayLiteral:
		for _, e := range n.Values {
			Walk(v, e)
		}
	case *MapExpression:
		for _, e := range n.Entries {
			Walk(v, e)
		}
	case *EntryExpression:
		Walk(v, n.Key)
		Walk(v, n.Value)

	// Leaves
	case *Identifier, *InputParameter, *IDPattern, *DataType, *NullLiteral,
		*IntegerLiteral, *DecimalLiteral, *BooleanLiteral, *StringLiteral,
		*IndexPattern, *PromqlParam, *PromqlContent, *ShowCommand, *MetricsInfoCommand:

	default:
		panic(fmt.Sprintf("ast.Walk: unexpected node type %T", n))
	}

	v.Visit(nil)
}

func walkFields(v Visitor, fields []*Field) {
	for _, f := range fields {
		Walk(v, f)
	}
}

func walkPatterns(v Visitor, patterns []*QualifiedNamePattern) {
	for _, p := range patterns {
		Walk(v, p)
	}
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Inspect traverses an AST in depth-first order: it starts by calling
// f(node); node must not be nil. If f returns true, Inspect invokes f
// recursively for each of the non-nil children of node, followed by a
// call of f(nil).
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}

// Count returns how many nodes of each concrete type a tree contains,
// keyed by type name without the package prefix.
func Count(node Node) map[string]int {
	counts := make(map[string]int)
	Inspect(node, func(n Node) bool {
		if n != nil {
			counts[typeName(n)]++
		}
		return true
	})
	return counts
}

// typeName returns the concrete type of n without the package prefix.
func typeName(n Node) string {
	name := fmt.Sprintf("%T", n)
	if i := lastDot(name); i >= 0 {
		name = name[i+1:]
	}
	return name
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}
