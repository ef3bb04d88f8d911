package ast

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/sambeau/esql/pkg/esql/lexer"
)

type sourceBase struct{}

func (sourceBase) commandNode()       {}
func (sourceBase) sourceCommandNode() {}

type processingBase struct{}

func (processingBase) commandNode()           {}
func (processingBase) processingCommandNode() {}

// ============================================================================
// Index patterns
// ============================================================================

// IndexSource is an entry in a FROM or TS source list.
type IndexSource interface {
	Node
	indexSourceNode()
}

// IndexPattern names one or more indices: [cluster:]index[::selector], or
// a quoted string.
type IndexPattern struct {
	Token    lexer.Token
	Cluster  string
	Index    string
	Selector string
	Quoted   bool
	EndSpan  lexer.Span
}

func (ip *IndexPattern) indexSourceNode()     {}
func (ip *IndexPattern) TokenLiteral() string { return ip.Token.Literal }
func (ip *IndexPattern) Pos() lexer.Span      { return ip.Token.Span.Cover(ip.EndSpan) }
func (ip *IndexPattern) String() string {
	if ip.Quoted {
		return strconv.Quote(ip.Index)
	}
	var s string
	if ip.Cluster != "" {
		s = ip.Cluster + ":"
	}
	s += ip.Index
	if ip.Selector != "" {
		s += "::" + ip.Selector
	}
	return s
}

// Subquery is a parenthesised pipeline inside a FROM source list (dev mode).
type Subquery struct {
	Token lexer.Token // the '(' token
	Query Query
}

func (sq *Subquery) indexSourceNode()     {}
func (sq *Subquery) TokenLiteral() string { return sq.Token.Literal }
func (sq *Subquery) Pos() lexer.Span      { return sq.Token.Span.Cover(sq.Query.Pos()) }
func (sq *Subquery) String() string       { return "(" + sq.Query.String() + ")" }

func sourceList(keyword string, sources []IndexSource, metadata []string) string {
	s := keyword + " " + joinNodes(sources, ", ")
	if len(metadata) > 0 {
		s += " METADATA " + strings.Join(metadata, ", ")
	}
	return s
}

// ============================================================================
// Source commands
// ============================================================================

// FromCommand reads from indices.
type FromCommand struct {
	sourceBase
	Token    lexer.Token
	Sources  []IndexSource
	Metadata []string
}

func (c *FromCommand) TokenLiteral() string { return c.Token.Literal }
func (c *FromCommand) Pos() lexer.Span      { return c.Token.Span }
func (c *FromCommand) String() string       { return sourceList("FROM", c.Sources, c.Metadata) }

// TimeSeriesCommand reads from time series indices (TS).
type TimeSeriesCommand struct {
	sourceBase
	Token    lexer.Token
	Sources  []IndexSource
	Metadata []string
}

func (c *TimeSeriesCommand) TokenLiteral() string { return c.Token.Literal }
func (c *TimeSeriesCommand) Pos() lexer.Span      { return c.Token.Span }
func (c *TimeSeriesCommand) String() string       { return sourceList("TS", c.Sources, c.Metadata) }

// RowCommand produces a single row from literal fields.
type RowCommand struct {
	sourceBase
	Token  lexer.Token
	Fields []*Field
}

func (c *RowCommand) TokenLiteral() string { return c.Token.Literal }
func (c *RowCommand) Pos() lexer.Span      { return c.Token.Span }
func (c *RowCommand) String() string       { return "ROW " + joinNodes(c.Fields, ", ") }

// ShowCommand is SHOW INFO.
type ShowCommand struct {
	sourceBase
	Token lexer.Token
	Info  lexer.Token
}

func (c *ShowCommand) TokenLiteral() string { return c.Token.Literal }
func (c *ShowCommand) Pos() lexer.Span      { return c.Token.Span.Cover(c.Info.Span) }
func (c *ShowCommand) String() string       { return "SHOW INFO" }

// ExplainCommand wraps a query whose plan should be explained (dev mode).
type ExplainCommand struct {
	sourceBase
	Token lexer.Token
	Query Query
}

func (c *ExplainCommand) TokenLiteral() string { return c.Token.Literal }
func (c *ExplainCommand) Pos() lexer.Span      { return c.Token.Span }
func (c *ExplainCommand) String() string       { return "EXPLAIN (" + c.Query.String() + ")" }

// ExternalCommand reads from an external source (dev mode).
type ExternalCommand struct {
	sourceBase
	Token   lexer.Token
	Source  StringOrParameter
	Options *MapExpression
}

func (c *ExternalCommand) TokenLiteral() string { return c.Token.Literal }
func (c *ExternalCommand) Pos() lexer.Span      { return c.Token.Span }
func (c *ExternalCommand) String() string {
	return "EXTERNAL " + c.Source.String() + withOptions(c.Options)
}

func withOptions(m *MapExpression) string {
	if m == nil {
		return ""
	}
	return " WITH " + m.String()
}

// PromqlParam is a name=value setting before the PromQL query.
type PromqlParam struct {
	Token      lexer.Token // the name token
	Name       string
	Value      string // as written
	ValueToken lexer.Token
}

func (p *PromqlParam) TokenLiteral() string { return p.Token.Literal }
func (p *PromqlParam) Pos() lexer.Span      { return p.Token.Span.Cover(p.ValueToken.Span) }
func (p *PromqlParam) String() string       { return p.Name + "=" + p.Value }

// PromqlPart is a piece of a captured PromQL query.
type PromqlPart interface {
	Node
	promqlPartNode()
}

// PromqlContent is a maximal run of non-parenthesis tokens.
type PromqlContent struct {
	Tokens []lexer.Token
	Span   lexer.Span
	Text   string
}

func (pc *PromqlContent) promqlPartNode()      {}
func (pc *PromqlContent) TokenLiteral() string { return pc.Tokens[0].Literal }
func (pc *PromqlContent) Pos() lexer.Span      { return pc.Span }
func (pc *PromqlContent) String() string       { return pc.Text }

// PromqlGroup is a balanced parenthesised group, parentheses included in Span.
type PromqlGroup struct {
	Token lexer.Token // the '(' token
	Parts []PromqlPart
	Span  lexer.Span
	Text  string
}

func (pg *PromqlGroup) promqlPartNode()      {}
func (pg *PromqlGroup) TokenLiteral() string { return pg.Token.Literal }
func (pg *PromqlGroup) Pos() lexer.Span      { return pg.Span }
func (pg *PromqlGroup) String() string       { return pg.Text }

// PromqlQuery is the captured text between the outer parentheses.
type PromqlQuery struct {
	Token lexer.Token // the outer '(' token
	Parts []PromqlPart
	Span  lexer.Span // between the parentheses
	Text  string
}

func (pq *PromqlQuery) TokenLiteral() string { return pq.Token.Literal }
func (pq *PromqlQuery) Pos() lexer.Span      { return pq.Span }
func (pq *PromqlQuery) String() string       { return "(" + pq.Text + ")" }

// PromqlCommand embeds a PromQL query; the body is captured, not parsed.
type PromqlCommand struct {
	sourceBase
	Token     lexer.Token
	Params    []*PromqlParam
	ValueName *Identifier
	Query     *PromqlQuery
}

func (c *PromqlCommand) TokenLiteral() string { return c.Token.Literal }
func (c *PromqlCommand) Pos() lexer.Span      { return c.Token.Span }
func (c *PromqlCommand) String() string {
	var out bytes.Buffer
	out.WriteString("PROMQL ")
	for _, p := range c.Params {
		out.WriteString(p.String())
		out.WriteString(" ")
	}
	if c.ValueName != nil {
		out.WriteString(c.ValueName.String())
		out.WriteString("=")
	}
	out.WriteString(c.Query.String())
	return out.String()
}

// ============================================================================
// Processing commands
// ============================================================================

// EvalCommand computes new columns.
type EvalCommand struct {
	processingBase
	Token  lexer.Token
	Fields []*Field
}

func (c *EvalCommand) TokenLiteral() string { return c.Token.Literal }
func (c *EvalCommand) Pos() lexer.Span      { return c.Token.Span }
func (c *EvalCommand) String() string       { return "EVAL " + joinNodes(c.Fields, ", ") }

// WhereCommand filters rows.
type WhereCommand struct {
	processingBase
	Token     lexer.Token
	Condition BooleanExpression
}

func (c *WhereCommand) TokenLiteral() string { return c.Token.Literal }
func (c *WhereCommand) Pos() lexer.Span      { return c.Token.Span.Cover(c.Condition.Pos()) }
func (c *WhereCommand) String() string       { return "WHERE " + c.Condition.String() }

// KeepCommand keeps the matching columns.
type KeepCommand struct {
	processingBase
	Token    lexer.Token
	Patterns []*QualifiedNamePattern
}

func (c *KeepCommand) TokenLiteral() string { return c.Token.Literal }
func (c *KeepCommand) Pos() lexer.Span      { return c.Token.Span }
func (c *KeepCommand) String() string       { return "KEEP " + joinNodes(c.Patterns, ", ") }

// DropCommand removes the matching columns.
type DropCommand struct {
	processingBase
	Token    lexer.Token
	Patterns []*QualifiedNamePattern
}

func (c *DropCommand) TokenLiteral() string { return c.Token.Literal }
func (c *DropCommand) Pos() lexer.Span      { return c.Token.Span }
func (c *DropCommand) String() string       { return "DROP " + joinNodes(c.Patterns, ", ") }

// InsistCommand forces unmapped fields into the schema (dev mode).
type InsistCommand struct {
	processingBase
	Token    lexer.Token
	Patterns []*QualifiedNamePattern
}

func (c *InsistCommand) TokenLiteral() string { return c.Token.Literal }
func (c *InsistCommand) Pos() lexer.Span      { return c.Token.Span }
func (c *InsistCommand) String() string       { return "INSIST " + joinNodes(c.Patterns, ", ") }

// LimitCommand caps the number of rows.
type LimitCommand struct {
	processingBase
	Token lexer.Token
	Count Constant
}

func (c *LimitCommand) TokenLiteral() string { return c.Token.Literal }
func (c *LimitCommand) Pos() lexer.Span      { return c.Token.Span.Cover(c.Count.Pos()) }
func (c *LimitCommand) String() string       { return "LIMIT " + c.Count.String() }

// SampleCommand keeps a random fraction of rows.
type SampleCommand struct {
	processingBase
	Token       lexer.Token
	Probability Constant
}

func (c *SampleCommand) TokenLiteral() string { return c.Token.Literal }
func (c *SampleCommand) Pos() lexer.Span      { return c.Token.Span.Cover(c.Probability.Pos()) }
func (c *SampleCommand) String() string       { return "SAMPLE " + c.Probability.String() }

func aggregation(keyword string, aggs []*AggField, grouping []*Field) string {
	s := keyword
	if len(aggs) > 0 {
		s += " " + joinNodes(aggs, ", ")
	}
	if len(grouping) > 0 {
		s += " BY " + joinNodes(grouping, ", ")
	}
	return s
}

// StatsCommand aggregates rows, optionally grouped.
type StatsCommand struct {
	processingBase
	Token      lexer.Token
	Aggregates []*AggField
	Grouping   []*Field
}

func (c *StatsCommand) TokenLiteral() string { return c.Token.Literal }
func (c *StatsCommand) Pos() lexer.Span      { return c.Token.Span }
func (c *StatsCommand) String() string       { return aggregation("STATS", c.Aggregates, c.Grouping) }

// InlineStatsCommand aggregates and joins the results back onto each row.
// Legacy marks the single-word INLINESTATS spelling.
type InlineStatsCommand struct {
	processingBase
	Token      lexer.Token
	Legacy     bool
	Aggregates []*AggField
	Grouping   []*Field
}

func (c *InlineStatsCommand) TokenLiteral() string { return c.Token.Literal }
func (c *InlineStatsCommand) Pos() lexer.Span      { return c.Token.Span }
func (c *InlineStatsCommand) String() string {
	if c.Legacy {
		return aggregation("INLINESTATS", c.Aggregates, c.Grouping)
	}
	return aggregation("INLINE STATS", c.Aggregates, c.Grouping)
}

// SortCommand orders rows.
type SortCommand struct {
	processingBase
	Token  lexer.Token
	Orders []*OrderExpression
}

func (c *SortCommand) TokenLiteral() string { return c.Token.Literal }
func (c *SortCommand) Pos() lexer.Span      { return c.Token.Span }
func (c *SortCommand) String() string       { return "SORT " + joinNodes(c.Orders, ", ") }

// RenameClause renames one column. Assign records the new = old spelling.
type RenameClause struct {
	Token  lexer.Token
	Old    *QualifiedNamePattern
	New    *QualifiedNamePattern
	Assign bool
}

func (rc *RenameClause) TokenLiteral() string { return rc.Token.Literal }
func (rc *RenameClause) Pos() lexer.Span      { return rc.Old.Pos().Cover(rc.New.Pos()) }
func (rc *RenameClause) String() string {
	if rc.Assign {
		return rc.New.String() + " = " + rc.Old.String()
	}
	return rc.Old.String() + " AS " + rc.New.String()
}

// RenameCommand renames columns.
type RenameCommand struct {
	processingBase
	Token   lexer.Token
	Clauses []*RenameClause
}

func (c *RenameCommand) TokenLiteral() string { return c.Token.Literal }
func (c *RenameCommand) Pos() lexer.Span      { return c.Token.Span }
func (c *RenameCommand) String() string       { return "RENAME " + joinNodes(c.Clauses, ", ") }

// DissectOption is a name=value setting after the DISSECT pattern.
type DissectOption struct {
	Name  *Identifier
	Value Constant
}

func (o *DissectOption) TokenLiteral() string { return o.Name.TokenLiteral() }
func (o *DissectOption) Pos() lexer.Span      { return o.Name.Pos().Cover(o.Value.Pos()) }
func (o *DissectOption) String() string       { return o.Name.String() + "=" + o.Value.String() }

// DissectCommand splits a string by a delimiter pattern.
type DissectCommand struct {
	processingBase
	Token   lexer.Token
	Input   PrimaryExpression
	Pattern *StringLiteral
	Options []*DissectOption
}

func (c *DissectCommand) TokenLiteral() string { return c.Token.Literal }
func (c *DissectCommand) Pos() lexer.Span      { return c.Token.Span }
func (c *DissectCommand) String() string {
	s := "DISSECT " + c.Input.String() + " " + c.Pattern.String()
	if len(c.Options) > 0 {
		s += " " + joinNodes(c.Options, ", ")
	}
	return s
}

// GrokCommand extracts fields with grok patterns.
type GrokCommand struct {
	processingBase
	Token    lexer.Token
	Input    PrimaryExpression
	Patterns []*StringLiteral
}

func (c *GrokCommand) TokenLiteral() string { return c.Token.Literal }
func (c *GrokCommand) Pos() lexer.Span      { return c.Token.Span }
func (c *GrokCommand) String() string {
	return "GROK " + c.Input.String() + " " + joinNodes(c.Patterns, ", ")
}

// EnrichWithClause copies one policy field: [new =] field.
type EnrichWithClause struct {
	NewName *QualifiedNamePattern
	Field   *QualifiedNamePattern
}

func (w *EnrichWithClause) TokenLiteral() string { return w.Field.TokenLiteral() }
func (w *EnrichWithClause) Pos() lexer.Span {
	if w.NewName != nil {
		return w.NewName.Pos().Cover(w.Field.Pos())
	}
	return w.Field.Pos()
}
func (w *EnrichWithClause) String() string {
	if w.NewName != nil {
		return w.NewName.String() + " = " + w.Field.String()
	}
	return w.Field.String()
}

// EnrichCommand adds fields from an enrich policy.
type EnrichCommand struct {
	processingBase
	Token       lexer.Token
	Policy      string
	PolicyToken lexer.Token
	MatchField  *QualifiedNamePattern
	With        []*EnrichWithClause
}

func (c *EnrichCommand) TokenLiteral() string { return c.Token.Literal }
func (c *EnrichCommand) Pos() lexer.Span      { return c.Token.Span }
func (c *EnrichCommand) String() string {
	s := "ENRICH " + c.Policy
	if c.MatchField != nil {
		s += " ON " + c.MatchField.String()
	}
	if len(c.With) > 0 {
		s += " WITH " + joinNodes(c.With, ", ")
	}
	return s
}

// MvExpandCommand expands a multi-valued field into rows.
type MvExpandCommand struct {
	processingBase
	Token lexer.Token
	Field *QualifiedName
}

func (c *MvExpandCommand) TokenLiteral() string { return c.Token.Literal }
func (c *MvExpandCommand) Pos() lexer.Span      { return c.Token.Span.Cover(c.Field.Pos()) }
func (c *MvExpandCommand) String() string       { return "MV_EXPAND " + c.Field.String() }

// JoinType is the kind of join.
type JoinType string

const (
	JoinLookup JoinType = "LOOKUP"
	JoinLeft   JoinType = "LEFT"
	JoinRight  JoinType = "RIGHT"
)

// JoinTarget is the joined index with an optional qualifier (dev mode).
type JoinTarget struct {
	Index     *IndexPattern
	Qualifier *Identifier
}

func (jt *JoinTarget) TokenLiteral() string { return jt.Index.TokenLiteral() }
func (jt *JoinTarget) Pos() lexer.Span      { return jt.Index.Pos() }
func (jt *JoinTarget) String() string {
	if jt.Qualifier != nil {
		return jt.Index.String() + " AS " + jt.Qualifier.String()
	}
	return jt.Index.String()
}

// JoinCommand joins rows with another index.
type JoinCommand struct {
	processingBase
	Token      lexer.Token
	Type       JoinType
	Target     *JoinTarget
	Conditions []BooleanExpression
}

func (c *JoinCommand) TokenLiteral() string { return c.Token.Literal }
func (c *JoinCommand) Pos() lexer.Span      { return c.Token.Span }
func (c *JoinCommand) String() string {
	return string(c.Type) + " JOIN " + c.Target.String() + " ON " + joinNodes(c.Conditions, ", ")
}

// LookupCommand is the dev-mode LOOKUP table ON fields command.
type LookupCommand struct {
	processingBase
	Token       lexer.Token
	Table       *IndexPattern
	MatchFields []*QualifiedNamePattern
}

func (c *LookupCommand) TokenLiteral() string { return c.Token.Literal }
func (c *LookupCommand) Pos() lexer.Span      { return c.Token.Span }
func (c *LookupCommand) String() string {
	return "LOOKUP " + c.Table.String() + " ON " + joinNodes(c.MatchFields, ", ")
}

// ChangePointCommand detects change points in a metric.
type ChangePointCommand struct {
	processingBase
	Token      lexer.Token
	Value      *QualifiedName
	Key        *QualifiedName
	TypeName   *QualifiedName
	PvalueName *QualifiedName
}

func (c *ChangePointCommand) TokenLiteral() string { return c.Token.Literal }
func (c *ChangePointCommand) Pos() lexer.Span      { return c.Token.Span }
func (c *ChangePointCommand) String() string {
	s := "CHANGE_POINT " + c.Value.String()
	if c.Key != nil {
		s += " ON " + c.Key.String()
	}
	if c.TypeName != nil {
		s += " AS " + c.TypeName.String() + ", " + c.PvalueName.String()
	}
	return s
}

func targetPrefix(target *QualifiedName) string {
	if target == nil {
		return ""
	}
	return target.String() + " = "
}

// CompletionCommand sends a prompt to an inference endpoint.
type CompletionCommand struct {
	processingBase
	Token   lexer.Token
	Target  *QualifiedName
	Prompt  PrimaryExpression
	Options *MapExpression
}

func (c *CompletionCommand) TokenLiteral() string { return c.Token.Literal }
func (c *CompletionCommand) Pos() lexer.Span      { return c.Token.Span }
func (c *CompletionCommand) String() string {
	return "COMPLETION " + targetPrefix(c.Target) + c.Prompt.String() + withOptions(c.Options)
}

// RerankField is one field RERANK scores: name [= expression].
type RerankField struct {
	Name  *QualifiedName
	Value BooleanExpression
}

func (rf *RerankField) TokenLiteral() string { return rf.Name.TokenLiteral() }
func (rf *RerankField) Pos() lexer.Span      { return rf.Name.Pos() }
func (rf *RerankField) String() string {
	if rf.Value != nil {
		return rf.Name.String() + " = " + rf.Value.String()
	}
	return rf.Name.String()
}

// RerankCommand re-scores rows against a query text.
type RerankCommand struct {
	processingBase
	Token     lexer.Token
	Target    *QualifiedName
	QueryText Constant
	Fields    []*RerankField
	Options   *MapExpression
}

func (c *RerankCommand) TokenLiteral() string { return c.Token.Literal }
func (c *RerankCommand) Pos() lexer.Span      { return c.Token.Span }
func (c *RerankCommand) String() string {
	return "RERANK " + targetPrefix(c.Target) + c.QueryText.String() +
		" ON " + joinNodes(c.Fields, ", ") + withOptions(c.Options)
}

// MmrCommand diversifies results with maximal marginal relevance (dev mode).
type MmrCommand struct {
	processingBase
	Token          lexer.Token
	Target         *QualifiedName
	QueryVector    PrimaryExpression
	DiversifyField *QualifiedName
	Limit          *IntegerLiteral
	Options        *MapExpression
}

func (c *MmrCommand) TokenLiteral() string { return c.Token.Literal }
func (c *MmrCommand) Pos() lexer.Span      { return c.Token.Span }
func (c *MmrCommand) String() string {
	s := "MMR " + targetPrefix(c.Target)
	if c.QueryVector != nil {
		s += c.QueryVector.String() + " "
	}
	return s + "ON " + c.DiversifyField.String() + " LIMIT " + c.Limit.String() + withOptions(c.Options)
}

// ForkBranch is one parenthesised sub-pipeline of FORK.
type ForkBranch struct {
	Token lexer.Token // the '(' token
	Query ForkQuery
}

func (fb *ForkBranch) TokenLiteral() string { return fb.Token.Literal }
func (fb *ForkBranch) Pos() lexer.Span      { return fb.Token.Span.Cover(fb.Query.Pos()) }
func (fb *ForkBranch) String() string       { return "(" + fb.Query.String() + ")" }

// ForkCommand runs several sub-pipelines over the same input.
type ForkCommand struct {
	processingBase
	Token    lexer.Token
	Branches []*ForkBranch
}

func (c *ForkCommand) TokenLiteral() string { return c.Token.Literal }
func (c *ForkCommand) Pos() lexer.Span      { return c.Token.Span }
func (c *ForkCommand) String() string       { return "FORK " + joinNodes(c.Branches, " ") }

// FuseConfigKind identifies a FUSE clause.
type FuseConfigKind string

const (
	FuseScoreBy FuseConfigKind = "SCORE BY"
	FuseKeyBy   FuseConfigKind = "KEY BY"
	FuseGroupBy FuseConfigKind = "GROUP BY"
	FuseWith    FuseConfigKind = "WITH"
)

// FuseConfiguration is one FUSE clause. Fields holds the SCORE, GROUP or
// KEY names; Options holds the WITH map.
type FuseConfiguration struct {
	Token   lexer.Token
	Kind    FuseConfigKind
	Fields  []*QualifiedName
	Options *MapExpression
}

func (fc *FuseConfiguration) TokenLiteral() string { return fc.Token.Literal }
func (fc *FuseConfiguration) Pos() lexer.Span      { return fc.Token.Span }
func (fc *FuseConfiguration) String() string {
	if fc.Kind == FuseWith {
		return "WITH " + fc.Options.String()
	}
	return string(fc.Kind) + " " + joinNodes(fc.Fields, ", ")
}

// FuseCommand merges FORK branch results.
type FuseCommand struct {
	processingBase
	Token          lexer.Token
	Type           *Identifier
	Configurations []*FuseConfiguration
}

func (c *FuseCommand) TokenLiteral() string { return c.Token.Literal }
func (c *FuseCommand) Pos() lexer.Span      { return c.Token.Span }
func (c *FuseCommand) String() string {
	s := "FUSE"
	if c.Type != nil {
		s += " " + c.Type.String()
	}
	if len(c.Configurations) > 0 {
		s += " " + joinNodes(c.Configurations, " ")
	}
	return s
}

// UriPartsCommand splits a URI into component columns under a prefix.
type UriPartsCommand struct {
	processingBase
	Token  lexer.Token
	Target *QualifiedName
	Input  PrimaryExpression
}

func (c *UriPartsCommand) TokenLiteral() string { return c.Token.Literal }
func (c *UriPartsCommand) Pos() lexer.Span      { return c.Token.Span }
func (c *UriPartsCommand) String() string {
	return "URI_PARTS " + c.Target.String() + " = " + c.Input.String()
}

// MetricsInfoCommand lists metric metadata.
type MetricsInfoCommand struct {
	processingBase
	Token lexer.Token
}

func (c *MetricsInfoCommand) TokenLiteral() string { return c.Token.Literal }
func (c *MetricsInfoCommand) Pos() lexer.Span      { return c.Token.Span }
func (c *MetricsInfoCommand) String() string       { return "METRICS_INFO" }
