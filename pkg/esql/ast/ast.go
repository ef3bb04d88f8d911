// Package ast defines the syntax tree produced by the query parser.
//
// A query is a pipeline: one source command followed by any number of
// processing commands, each introduced by '|'. The tree encodes the
// pipeline as a left-leaning spine of CompositeQuery nodes, so
//
//	FROM a | WHERE x | LIMIT 1
//
// becomes Composite(Composite(Single(FROM a), WHERE x), LIMIT 1).
//
// Expressions are layered the same way the grammar is. A PrimaryExpression
// is also an OperatorExpression, a ValueExpression and a BooleanExpression,
// so a lower-level node can stand wherever a higher level is expected.
//
// Nodes are built once by the parser and never mutated afterwards.
package ast

import (
	"bytes"
	"strings"

	"github.com/sambeau/esql/pkg/esql/lexer"
)

// Node represents any node in the AST
type Node interface {
	TokenLiteral() string
	String() string
	Pos() lexer.Span
}

// Query is a complete pipeline.
type Query interface {
	Node
	queryNode()
}

// Command is any pipeline stage.
type Command interface {
	Node
	commandNode()
}

// SourceCommand is a command that can start a query.
type SourceCommand interface {
	Command
	sourceCommandNode()
}

// ProcessingCommand is a command that follows a '|'.
type ProcessingCommand interface {
	Command
	processingCommandNode()
}

// Statements is the root of every parse: optional SET commands followed by
// exactly one query.
type Statements struct {
	Sets  []*SetCommand
	Query Query
}

func (s *Statements) TokenLiteral() string {
	if len(s.Sets) > 0 {
		return s.Sets[0].TokenLiteral()
	}
	if s.Query != nil {
		return s.Query.TokenLiteral()
	}
	return ""
}

func (s *Statements) Pos() lexer.Span {
	var span lexer.Span
	if s.Query != nil {
		span = s.Query.Pos()
	}
	if len(s.Sets) > 0 {
		span = span.Cover(s.Sets[0].Pos())
	}
	return span
}

func (s *Statements) String() string {
	var out bytes.Buffer
	for _, set := range s.Sets {
		out.WriteString(set.String())
		out.WriteString(" ")
	}
	if s.Query != nil {
		out.WriteString(s.Query.String())
	}
	return out.String()
}

// SetCommand assigns a query setting: SET name = value;
type SetCommand struct {
	Token lexer.Token // the SET token
	Name  *Identifier
	Value MapValue
}

func (sc *SetCommand) commandNode()         {}
func (sc *SetCommand) TokenLiteral() string { return sc.Token.Literal }
func (sc *SetCommand) Pos() lexer.Span      { return sc.Token.Span.Cover(sc.Value.Pos()) }
func (sc *SetCommand) String() string {
	return "SET " + sc.Name.String() + " = " + sc.Value.String() + ";"
}

// SingleCommandQuery is a pipeline consisting of its source command only.
type SingleCommandQuery struct {
	Command SourceCommand
}

func (q *SingleCommandQuery) queryNode()           {}
func (q *SingleCommandQuery) TokenLiteral() string { return q.Command.TokenLiteral() }
func (q *SingleCommandQuery) Pos() lexer.Span      { return q.Command.Pos() }
func (q *SingleCommandQuery) String() string       { return q.Command.String() }

// CompositeQuery appends one processing command to a query.
type CompositeQuery struct {
	Token lexer.Token // the PIPE token
	Left  Query
	Right ProcessingCommand
}

func (q *CompositeQuery) queryNode()           {}
func (q *CompositeQuery) TokenLiteral() string { return q.Token.Literal }
func (q *CompositeQuery) Pos() lexer.Span      { return q.Left.Pos().Cover(q.Right.Pos()) }
func (q *CompositeQuery) String() string {
	return q.Left.String() + " | " + q.Right.String()
}

// ForkQuery is a sub-pipeline inside FORK. Unlike Query it starts with a
// processing command.
type ForkQuery interface {
	Node
	forkQueryNode()
}

// SingleForkQuery is a sub-pipeline of one command.
type SingleForkQuery struct {
	Command ProcessingCommand
}

func (q *SingleForkQuery) forkQueryNode()       {}
func (q *SingleForkQuery) TokenLiteral() string { return q.Command.TokenLiteral() }
func (q *SingleForkQuery) Pos() lexer.Span      { return q.Command.Pos() }
func (q *SingleForkQuery) String() string       { return q.Command.String() }

// CompositeForkQuery appends one processing command to a sub-pipeline.
type CompositeForkQuery struct {
	Token lexer.Token // the PIPE token
	Left  ForkQuery
	Right ProcessingCommand
}

func (q *CompositeForkQuery) forkQueryNode()       {}
func (q *CompositeForkQuery) TokenLiteral() string { return q.Token.Literal }
func (q *CompositeForkQuery) Pos() lexer.Span      { return q.Left.Pos().Cover(q.Right.Pos()) }
func (q *CompositeForkQuery) String() string {
	return q.Left.String() + " | " + q.Right.String()
}

// Commands returns the commands of a pipeline in execution order.
func Commands(q Query) []Command {
	var reversed []Command
	for q != nil {
		switch n := q.(type) {
		case *CompositeQuery:
			reversed = append(reversed, n.Right)
			q = n.Left
		case *SingleCommandQuery:
			reversed = append(reversed, n.Command)
			q = nil
		default:
			q = nil
		}
	}
	return reverse(reversed)
}

// ForkCommands returns the commands of a FORK sub-pipeline in execution order.
func ForkCommands(q ForkQuery) []Command {
	var reversed []Command
	for q != nil {
		switch n := q.(type) {
		case *CompositeForkQuery:
			reversed = append(reversed, n.Right)
			q = n.Left
		case *SingleForkQuery:
			reversed = append(reversed, n.Command)
			q = nil
		default:
			q = nil
		}
	}
	return reverse(reversed)
}

func reverse(cmds []Command) []Command {
	for i, j := 0, len(cmds)-1; i < j; i, j = i+1, j-1 {
		cmds[i], cmds[j] = cmds[j], cmds[i]
	}
	return cmds
}

// Depth returns the number of CompositeQuery nodes on the left spine,
// which equals the number of pipes in the query.
func Depth(q Query) int {
	depth := 0
	for {
		c, ok := q.(*CompositeQuery)
		if !ok {
			return depth
		}
		depth++
		q = c.Left
	}
}

func joinNodes[T Node](nodes []T, sep string) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return strings.Join(parts, sep)
}
