package ast

import (
	"bytes"
	"math/big"
	"strconv"
	"strings"

	"github.com/sambeau/esql/pkg/esql/lexer"
)

// Expression represents expression nodes
type Expression interface {
	Node
	expressionNode()
}

// BooleanExpression is the loosest expression level: logical operators,
// predicates and anything below them.
type BooleanExpression interface {
	Expression
	booleanExpressionNode()
}

// ValueExpression is a comparison or anything below it.
type ValueExpression interface {
	BooleanExpression
	valueExpressionNode()
}

// OperatorExpression is arithmetic or anything below it.
type OperatorExpression interface {
	ValueExpression
	operatorExpressionNode()
}

// PrimaryExpression is an atom: a constant, a name, a call, a
// parenthesised expression or a cast.
type PrimaryExpression interface {
	OperatorExpression
	primaryExpressionNode()
}

// Constant is a literal value or a query parameter.
type Constant interface {
	PrimaryExpression
	MapValue
	constantNode()
}

// NumericLiteral is an integer or decimal literal.
type NumericLiteral interface {
	Constant
	numericNode()
}

// MapValue is a value inside a map expression or a SET command: a constant
// or a nested map.
type MapValue interface {
	Node
	mapValueNode()
}

// IdentifierOrParameter is one segment of a qualified name.
type IdentifierOrParameter interface {
	Node
	identifierOrParameterNode()
}

// IdentifierPattern is one segment of a qualified name pattern.
type IdentifierPattern interface {
	Node
	identifierPatternNode()
}

// StringOrParameter is a string literal or a parameter standing in for one.
type StringOrParameter interface {
	Node
	stringOrParameterNode()
}

// RegexBooleanExpression is one of the LIKE/RLIKE predicate forms.
type RegexBooleanExpression interface {
	BooleanExpression
	regexNode()
}

type booleanBase struct{}

func (booleanBase) expressionNode()        {}
func (booleanBase) booleanExpressionNode() {}

type valueBase struct{ booleanBase }

func (valueBase) valueExpressionNode() {}

type operatorBase struct{ valueBase }

func (operatorBase) operatorExpressionNode() {}

type primaryBase struct{ operatorBase }

func (primaryBase) primaryExpressionNode() {}

type constantBase struct{ primaryBase }

func (constantBase) constantNode() {}
func (constantBase) mapValueNode() {}

// ============================================================================
// Names
// ============================================================================

// Identifier is a plain or backquoted name.
type Identifier struct {
	Token  lexer.Token
	Name   string // unquoted value
	Quoted bool
}

func (i *Identifier) identifierOrParameterNode() {}
func (i *Identifier) TokenLiteral() string       { return i.Token.Literal }
func (i *Identifier) Pos() lexer.Span            { return i.Token.Span }
func (i *Identifier) String() string {
	if i.Quoted {
		return "`" + strings.ReplaceAll(i.Name, "`", "``") + "`"
	}
	return i.Name
}

// ParamKind distinguishes the three parameter spellings.
type ParamKind int

const (
	ParamAnonymous  ParamKind = iota // ?
	ParamNamed                       // ?name
	ParamPositional                  // ?1
)

// InputParameter is a placeholder bound at execution time. Double
// parameters (??name) stand for identifiers rather than values.
type InputParameter struct {
	constantBase
	Token    lexer.Token
	Kind     ParamKind
	Name     string // for ParamNamed
	Position int    // for ParamPositional
	Double   bool
}

func (p *InputParameter) identifierOrParameterNode() {}
func (p *InputParameter) identifierPatternNode()     {}
func (p *InputParameter) stringOrParameterNode()     {}
func (p *InputParameter) TokenLiteral() string       { return p.Token.Literal }
func (p *InputParameter) Pos() lexer.Span            { return p.Token.Span }
func (p *InputParameter) String() string             { return p.Token.Literal }

// IDPattern is a name segment that may contain '*' wildcards.
type IDPattern struct {
	Token   lexer.Token
	Pattern string
}

func (p *IDPattern) identifierPatternNode() {}
func (p *IDPattern) TokenLiteral() string   { return p.Token.Literal }
func (p *IDPattern) Pos() lexer.Span        { return p.Token.Span }
func (p *IDPattern) String() string         { return p.Pattern }

// QualifiedName is a dotted field name, optionally prefixed with a
// bracketed qualifier ([q].name, a dev-mode form).
type QualifiedName struct {
	Token     lexer.Token // first token of the name
	Bracketed bool
	Qualifier *Identifier // nil for [].name or when not bracketed
	Parts     []IdentifierOrParameter
}

func (qn *QualifiedName) TokenLiteral() string { return qn.Token.Literal }
func (qn *QualifiedName) Pos() lexer.Span {
	span := qn.Token.Span
	if len(qn.Parts) > 0 {
		span = span.Cover(qn.Parts[len(qn.Parts)-1].Pos())
	}
	return span
}
func (qn *QualifiedName) String() string {
	var out bytes.Buffer
	if qn.Bracketed {
		out.WriteString("[")
		if qn.Qualifier != nil {
			out.WriteString(qn.Qualifier.String())
		}
		out.WriteString("].")
	}
	out.WriteString(joinNodes(qn.Parts, "."))
	return out.String()
}

// Name returns the dotted name with quoting removed.
func (qn *QualifiedName) Name() string {
	parts := make([]string, len(qn.Parts))
	for i, p := range qn.Parts {
		if id, ok := p.(*Identifier); ok {
			parts[i] = id.Name
		} else {
			parts[i] = p.String()
		}
	}
	return strings.Join(parts, ".")
}

// QualifiedNamePattern is the wildcard-capable form of QualifiedName used
// by KEEP, DROP, RENAME, ENRICH and INSIST.
type QualifiedNamePattern struct {
	Token     lexer.Token
	Bracketed bool
	Qualifier *Identifier
	Parts     []IdentifierPattern
}

func (qp *QualifiedNamePattern) TokenLiteral() string { return qp.Token.Literal }
func (qp *QualifiedNamePattern) Pos() lexer.Span {
	span := qp.Token.Span
	if len(qp.Parts) > 0 {
		span = span.Cover(qp.Parts[len(qp.Parts)-1].Pos())
	}
	return span
}
func (qp *QualifiedNamePattern) String() string {
	var out bytes.Buffer
	if qp.Bracketed {
		out.WriteString("[")
		if qp.Qualifier != nil {
			out.WriteString(qp.Qualifier.String())
		}
		out.WriteString("].")
	}
	out.WriteString(joinNodes(qp.Parts, "."))
	return out.String()
}

// DataType names the target of an inline cast.
type DataType struct {
	Token lexer.Token
	Name  string
}

func (dt *DataType) TokenLiteral() string { return dt.Token.Literal }
func (dt *DataType) Pos() lexer.Span      { return dt.Token.Span }
func (dt *DataType) String() string       { return dt.Name }

// ============================================================================
// Constants
// ============================================================================

// NullLiteral is the null constant.
type NullLiteral struct {
	constantBase
	Token lexer.Token
}

func (n *NullLiteral) TokenLiteral() string { return n.Token.Literal }
func (n *NullLiteral) Pos() lexer.Span      { return n.Token.Span }
func (n *NullLiteral) String() string       { return "null" }

// IntegerLiteral is a whole number. Values outside the int64 range are
// kept in Big.
type IntegerLiteral struct {
	constantBase
	Token lexer.Token
	Text  string // as written, including any sign
	Value int64
	Big   *big.Int
}

func (il *IntegerLiteral) numericNode()         {}
func (il *IntegerLiteral) TokenLiteral() string { return il.Token.Literal }
func (il *IntegerLiteral) Pos() lexer.Span      { return il.Token.Span }
func (il *IntegerLiteral) String() string       { return il.Text }

// DecimalLiteral is a floating point number.
type DecimalLiteral struct {
	constantBase
	Token lexer.Token
	Text  string
	Value float64
}

func (dl *DecimalLiteral) numericNode()         {}
func (dl *DecimalLiteral) TokenLiteral() string { return dl.Token.Literal }
func (dl *DecimalLiteral) Pos() lexer.Span      { return dl.Token.Span }
func (dl *DecimalLiteral) String() string       { return dl.Text }

// QualifiedIntegerLiteral is an integer followed by a unit: 1 day, 15 minutes.
type QualifiedIntegerLiteral struct {
	constantBase
	Token     lexer.Token
	Value     *IntegerLiteral
	Unit      string
	UnitToken lexer.Token
}

func (ql *QualifiedIntegerLiteral) TokenLiteral() string { return ql.Token.Literal }
func (ql *QualifiedIntegerLiteral) Pos() lexer.Span      { return ql.Token.Span.Cover(ql.UnitToken.Span) }
func (ql *QualifiedIntegerLiteral) String() string       { return ql.Value.String() + " " + ql.Unit }

// BooleanLiteral is true or false.
type BooleanLiteral struct {
	constantBase
	Token lexer.Token
	Value bool
}

func (bl *BooleanLiteral) TokenLiteral() string { return bl.Token.Literal }
func (bl *BooleanLiteral) Pos() lexer.Span      { return bl.Token.Span }
func (bl *BooleanLiteral) String() string       { return strconv.FormatBool(bl.Value) }

// StringLiteral is a quoted string with escapes resolved.
type StringLiteral struct {
	constantBase
	Token lexer.Token
	Value string
}

func (sl *StringLiteral) stringOrParameterNode() {}
func (sl *StringLiteral) TokenLiteral() string   { return sl.Token.Literal }
func (sl *StringLiteral) Pos() lexer.Span        { return sl.Token.Span }
func (sl *StringLiteral) String() string         { return strconv.Quote(sl.Value) }

// NumericArrayLiteral is [1, 2.5, -3].
type NumericArrayLiteral struct {
	constantBase
	Token  lexer.Token // the '[' token
	Values []NumericLiteral
}

func (al *NumericArrayLiteral) TokenLiteral() string { return al.Token.Literal }
func (al *NumericArrayLiteral) Pos() lexer.Span      { return al.Token.Span }
func (al *NumericArrayLiteral) String() string       { return "[" + joinNodes(al.Values, ", ") + "]" }

// BooleanArrayLiteral is [true, false].
type BooleanArrayLiteral struct {
	constantBase
	Token  lexer.Token
	Values []*BooleanLiteral
}

func (al *BooleanArrayLiteral) TokenLiteral() string { return al.Token.Literal }
func (al *BooleanArrayLiteral) Pos() lexer.Span      { return al.Token.Span }
func (al *BooleanArrayLiteral) String() string       { return "[" + joinNodes(al.Values, ", ") + "]" }

// StringArrayLiteral is ["a", "b"].
type StringArrayLiteral struct {
	constantBase
	Token  lexer.Token
	Values []*StringLiteral
}

func (al *StringArrayLiteral) TokenLiteral() string { return al.Token.Literal }
func (al *StringArrayLiteral) Pos() lexer.Span      { return al.Token.Span }
func (al *StringArrayLiteral) String() string       { return "[" + joinNodes(al.Values, ", ") + "]" }

// ============================================================================
// Maps
// ============================================================================

// MapExpression is {"key": value, ...}, used for command options and
// function named parameters.
type MapExpression struct {
	Token   lexer.Token // the '{' token
	Entries []*EntryExpression
}

func (me *MapExpression) mapValueNode()        {}
func (me *MapExpression) TokenLiteral() string { return me.Token.Literal }
func (me *MapExpression) Pos() lexer.Span      { return me.Token.Span }
func (me *MapExpression) String() string       { return "{" + joinNodes(me.Entries, ", ") + "}" }

// Get returns the value stored under key.
func (me *MapExpression) Get(key string) (MapValue, bool) {
	for _, e := range me.Entries {
		if e.Key.Value == key {
			return e.Value, true
		}
	}
	return nil, false
}

// EntryExpression is one "key": value pair.
type EntryExpression struct {
	Token lexer.Token
	Key   *StringLiteral
	Value MapValue
}

func (ee *EntryExpression) TokenLiteral() string { return ee.Token.Literal }
func (ee *EntryExpression) Pos() lexer.Span      { return ee.Key.Pos().Cover(ee.Value.Pos()) }
func (ee *EntryExpression) String() string       { return ee.Key.String() + ": " + ee.Value.String() }

// ============================================================================
// Primary expressions
// ============================================================================

// Dereference reads a field.
type Dereference struct {
	primaryBase
	Name *QualifiedName
}

func (d *Dereference) TokenLiteral() string { return d.Name.TokenLiteral() }
func (d *Dereference) Pos() lexer.Span      { return d.Name.Pos() }
func (d *Dereference) String() string       { return d.Name.String() }

// FunctionExpression is a function call. Star marks count(*).
type FunctionExpression struct {
	primaryBase
	Token   lexer.Token // the name token
	Name    IdentifierOrParameter
	Star    bool
	Args    []BooleanExpression
	Options *MapExpression
}

func (fe *FunctionExpression) TokenLiteral() string { return fe.Token.Literal }
func (fe *FunctionExpression) Pos() lexer.Span      { return fe.Token.Span }
func (fe *FunctionExpression) String() string {
	var out bytes.Buffer
	out.WriteString(fe.Name.String())
	out.WriteString("(")
	if fe.Star {
		out.WriteString("*")
	} else {
		out.WriteString(joinNodes(fe.Args, ", "))
		if fe.Options != nil {
			if len(fe.Args) > 0 {
				out.WriteString(", ")
			}
			out.WriteString(fe.Options.String())
		}
	}
	out.WriteString(")")
	return out.String()
}

// FunctionName returns the called name without quoting.
func (fe *FunctionExpression) FunctionName() string {
	if id, ok := fe.Name.(*Identifier); ok {
		return id.Name
	}
	return fe.Name.String()
}

// Parenthesized is an expression in parentheses.
type Parenthesized struct {
	primaryBase
	Token      lexer.Token // the '(' token
	Expression BooleanExpression
}

func (pe *Parenthesized) TokenLiteral() string { return pe.Token.Literal }
func (pe *Parenthesized) Pos() lexer.Span      { return pe.Token.Span.Cover(pe.Expression.Pos()) }
func (pe *Parenthesized) String() string       { return "(" + pe.Expression.String() + ")" }

// InlineCast is value::type.
type InlineCast struct {
	primaryBase
	Token lexer.Token // the '::' token
	Value PrimaryExpression
	Type  *DataType
}

func (ic *InlineCast) TokenLiteral() string { return ic.Token.Literal }
func (ic *InlineCast) Pos() lexer.Span      { return ic.Value.Pos().Cover(ic.Type.Pos()) }
func (ic *InlineCast) String() string       { return ic.Value.String() + "::" + ic.Type.String() }

// ============================================================================
// Operator expressions
// ============================================================================

// ArithmeticOperator is one of + - * / %.
type ArithmeticOperator string

const (
	OpAdd ArithmeticOperator = "+"
	OpSub ArithmeticOperator = "-"
	OpMul ArithmeticOperator = "*"
	OpDiv ArithmeticOperator = "/"
	OpMod ArithmeticOperator = "%"
)

// ArithmeticUnary is a signed operand: -x, +x.
type ArithmeticUnary struct {
	operatorBase
	Token    lexer.Token
	Operator ArithmeticOperator
	Operand  OperatorExpression
}

func (au *ArithmeticUnary) TokenLiteral() string { return au.Token.Literal }
func (au *ArithmeticUnary) Pos() lexer.Span      { return au.Token.Span.Cover(au.Operand.Pos()) }
func (au *ArithmeticUnary) String() string       { return string(au.Operator) + au.Operand.String() }

// ArithmeticBinary is left op right.
type ArithmeticBinary struct {
	operatorBase
	Token    lexer.Token
	Operator ArithmeticOperator
	Left     OperatorExpression
	Right    OperatorExpression
}

func (ab *ArithmeticBinary) TokenLiteral() string { return ab.Token.Literal }
func (ab *ArithmeticBinary) Pos() lexer.Span      { return ab.Left.Pos().Cover(ab.Right.Pos()) }
func (ab *ArithmeticBinary) String() string {
	return "(" + ab.Left.String() + " " + string(ab.Operator) + " " + ab.Right.String() + ")"
}

// ============================================================================
// Value expressions
// ============================================================================

// ComparisonOperator is one of == != < <= > >=.
type ComparisonOperator string

const (
	OpEq  ComparisonOperator = "=="
	OpNeq ComparisonOperator = "!="
	OpLt  ComparisonOperator = "<"
	OpLte ComparisonOperator = "<="
	OpGt  ComparisonOperator = ">"
	OpGte ComparisonOperator = ">="
)

// Comparison compares two operator expressions.
type Comparison struct {
	valueBase
	Token    lexer.Token
	Operator ComparisonOperator
	Left     OperatorExpression
	Right    OperatorExpression
}

func (c *Comparison) TokenLiteral() string { return c.Token.Literal }
func (c *Comparison) Pos() lexer.Span      { return c.Left.Pos().Cover(c.Right.Pos()) }
func (c *Comparison) String() string {
	return "(" + c.Left.String() + " " + string(c.Operator) + " " + c.Right.String() + ")"
}

// ============================================================================
// Boolean expressions
// ============================================================================

// LogicalOperator is AND or OR.
type LogicalOperator string

const (
	OpAnd LogicalOperator = "AND"
	OpOr  LogicalOperator = "OR"
)

// LogicalNot negates its operand.
type LogicalNot struct {
	booleanBase
	Token   lexer.Token
	Operand BooleanExpression
}

func (ln *LogicalNot) TokenLiteral() string { return ln.Token.Literal }
func (ln *LogicalNot) Pos() lexer.Span      { return ln.Token.Span.Cover(ln.Operand.Pos()) }
func (ln *LogicalNot) String() string       { return "(NOT " + ln.Operand.String() + ")" }

// LogicalBinary is left AND right or left OR right.
type LogicalBinary struct {
	booleanBase
	Token    lexer.Token
	Operator LogicalOperator
	Left     BooleanExpression
	Right    BooleanExpression
}

func (lb *LogicalBinary) TokenLiteral() string { return lb.Token.Literal }
func (lb *LogicalBinary) Pos() lexer.Span      { return lb.Left.Pos().Cover(lb.Right.Pos()) }
func (lb *LogicalBinary) String() string {
	return "(" + lb.Left.String() + " " + string(lb.Operator) + " " + lb.Right.String() + ")"
}

// InExpression tests membership in a non-empty list.
type InExpression struct {
	booleanBase
	Token   lexer.Token // the IN token
	Value   ValueExpression
	Negated bool
	List    []ValueExpression
}

func (ie *InExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *InExpression) Pos() lexer.Span      { return ie.Value.Pos().Cover(ie.Token.Span) }
func (ie *InExpression) String() string {
	op := " IN "
	if ie.Negated {
		op = " NOT IN "
	}
	return "(" + ie.Value.String() + op + "(" + joinNodes(ie.List, ", ") + "))"
}

// IsNullExpression is value IS [NOT] NULL.
type IsNullExpression struct {
	booleanBase
	Token   lexer.Token // the IS token
	Value   ValueExpression
	Negated bool
}

func (in *IsNullExpression) TokenLiteral() string { return in.Token.Literal }
func (in *IsNullExpression) Pos() lexer.Span      { return in.Value.Pos().Cover(in.Token.Span) }
func (in *IsNullExpression) String() string {
	if in.Negated {
		return "(" + in.Value.String() + " IS NOT NULL)"
	}
	return "(" + in.Value.String() + " IS NULL)"
}

func regexString(value ValueExpression, negated bool, op string, patterns string) string {
	if negated {
		op = "NOT " + op
	}
	return "(" + value.String() + " " + op + " " + patterns + ")"
}

// LikeExpression is value [NOT] LIKE pattern.
type LikeExpression struct {
	booleanBase
	Token   lexer.Token
	Value   ValueExpression
	Negated bool
	Pattern StringOrParameter
}

func (le *LikeExpression) regexNode()           {}
func (le *LikeExpression) TokenLiteral() string { return le.Token.Literal }
func (le *LikeExpression) Pos() lexer.Span      { return le.Value.Pos().Cover(le.Pattern.Pos()) }
func (le *LikeExpression) String() string {
	return regexString(le.Value, le.Negated, "LIKE", le.Pattern.String())
}

// RlikeExpression is value [NOT] RLIKE pattern.
type RlikeExpression struct {
	booleanBase
	Token   lexer.Token
	Value   ValueExpression
	Negated bool
	Pattern StringOrParameter
}

func (re *RlikeExpression) regexNode()           {}
func (re *RlikeExpression) TokenLiteral() string { return re.Token.Literal }
func (re *RlikeExpression) Pos() lexer.Span      { return re.Value.Pos().Cover(re.Pattern.Pos()) }
func (re *RlikeExpression) String() string {
	return regexString(re.Value, re.Negated, "RLIKE", re.Pattern.String())
}

// LikeListExpression is value [NOT] LIKE (pattern, ...).
type LikeListExpression struct {
	booleanBase
	Token    lexer.Token
	Value    ValueExpression
	Negated  bool
	Patterns []StringOrParameter
}

func (le *LikeListExpression) regexNode()           {}
func (le *LikeListExpression) TokenLiteral() string { return le.Token.Literal }
func (le *LikeListExpression) Pos() lexer.Span      { return le.Value.Pos().Cover(le.Token.Span) }
func (le *LikeListExpression) String() string {
	return regexString(le.Value, le.Negated, "LIKE", "("+joinNodes(le.Patterns, ", ")+")")
}

// RlikeListExpression is value [NOT] RLIKE (pattern, ...).
type RlikeListExpression struct {
	booleanBase
	Token    lexer.Token
	Value    ValueExpression
	Negated  bool
	Patterns []StringOrParameter
}

func (re *RlikeListExpression) regexNode()           {}
func (re *RlikeListExpression) TokenLiteral() string { return re.Token.Literal }
func (re *RlikeListExpression) Pos() lexer.Span      { return re.Value.Pos().Cover(re.Token.Span) }
func (re *RlikeListExpression) String() string {
	return regexString(re.Value, re.Negated, "RLIKE", "("+joinNodes(re.Patterns, ", ")+")")
}

// MatchExpression is the full-text match operator: field[::type] : query.
type MatchExpression struct {
	booleanBase
	Token     lexer.Token // the ':' token
	Field     *QualifiedName
	FieldType *DataType
	Query     Constant
}

func (me *MatchExpression) TokenLiteral() string { return me.Token.Literal }
func (me *MatchExpression) Pos() lexer.Span      { return me.Field.Pos().Cover(me.Query.Pos()) }
func (me *MatchExpression) String() string {
	field := me.Field.String()
	if me.FieldType != nil {
		field += "::" + me.FieldType.String()
	}
	return "(" + field + " : " + me.Query.String() + ")"
}

// ============================================================================
// Command building blocks
// ============================================================================

// Field is an optionally named expression: [name =] expression.
type Field struct {
	Token lexer.Token
	Name  *QualifiedName
	Value BooleanExpression
}

func (f *Field) TokenLiteral() string { return f.Token.Literal }
func (f *Field) Pos() lexer.Span      { return f.Token.Span.Cover(f.Value.Pos()) }
func (f *Field) String() string {
	if f.Name != nil {
		return f.Name.String() + " = " + f.Value.String()
	}
	return f.Value.String()
}

// AggField is an aggregation with an optional WHERE filter.
type AggField struct {
	Token  lexer.Token
	Field  *Field
	Filter BooleanExpression
}

func (af *AggField) TokenLiteral() string { return af.Token.Literal }
func (af *AggField) Pos() lexer.Span      { return af.Field.Pos() }
func (af *AggField) String() string {
	if af.Filter != nil {
		return af.Field.String() + " WHERE " + af.Filter.String()
	}
	return af.Field.String()
}

// Ordering is the direction of a sort key.
type Ordering string

const (
	OrderDefault Ordering = ""
	OrderAsc     Ordering = "ASC"
	OrderDesc    Ordering = "DESC"
)

// NullsOrdering places nulls first or last.
type NullsOrdering string

const (
	NullsDefault NullsOrdering = ""
	NullsFirst   NullsOrdering = "FIRST"
	NullsLast    NullsOrdering = "LAST"
)

// OrderExpression is one SORT key.
type OrderExpression struct {
	Token      lexer.Token
	Expression BooleanExpression
	Ordering   Ordering
	Nulls      NullsOrdering
}

func (oe *OrderExpression) TokenLiteral() string { return oe.Token.Literal }
func (oe *OrderExpression) Pos() lexer.Span      { return oe.Expression.Pos() }
func (oe *OrderExpression) String() string {
	s := oe.Expression.String()
	if oe.Ordering != OrderDefault {
		s += " " + string(oe.Ordering)
	}
	if oe.Nulls != NullsDefault {
		s += " NULLS " + string(oe.Nulls)
	}
	return s
}
