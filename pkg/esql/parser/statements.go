package parser

import (
	"github.com/sambeau/esql/pkg/esql/ast"
	perrors "github.com/sambeau/esql/pkg/esql/errors"
	"github.com/sambeau/esql/pkg/esql/lexer"
)

// parseSetCommand parses SET name = value;
func (p *Parser) parseSetCommand() *ast.SetCommand {
	tok := p.advance()
	name := p.parseIdentifier()
	p.expect(lexer.ASSIGN)
	cmd := &ast.SetCommand{Token: tok, Name: name, Value: p.parseMapValue()}
	p.expect(lexer.SEMICOLON)
	return cmd
}

// parseQuery parses a source command and its processing commands into a
// left-leaning chain of composite queries.
func (p *Parser) parseQuery() ast.Query {
	var query ast.Query = &ast.SingleCommandQuery{Command: p.parseSourceCommand()}
	for p.at(lexer.PIPE) {
		pipe := p.advance()
		query = &ast.CompositeQuery{Token: pipe, Left: query, Right: p.parseProcessingCommand()}
	}
	return query
}

// parseNestedQuery parses "( query )" as used by EXPLAIN and subqueries.
func (p *Parser) parseNestedQuery(first lexer.TokenType) (lexer.Token, ast.Query) {
	open := p.expect(lexer.LP)
	p.enter()
	defer p.leave()

	if first != lexer.ILLEGAL && !p.at(first) {
		p.unexpected(first.Display())
	}
	query := p.parseQuery()
	if !p.at(lexer.RP) {
		p.unexpected(lexer.PIPE.Display(), lexer.RP.Display())
	}
	p.advance()
	return open, query
}

// ============================================================================
// Command dispatch errors
// ============================================================================

var sourceCommands = []lexer.TokenType{
	lexer.FROM, lexer.ROW, lexer.SHOW, lexer.TS, lexer.PROMQL,
}

var devSourceCommands = []lexer.TokenType{
	lexer.EXPLAIN, lexer.EXTERNAL,
}

var processingCommands = []lexer.TokenType{
	lexer.EVAL, lexer.WHERE, lexer.KEEP, lexer.LIMIT, lexer.STATS, lexer.SORT,
	lexer.DROP, lexer.RENAME, lexer.DISSECT, lexer.GROK, lexer.ENRICH,
	lexer.MV_EXPAND, lexer.LOOKUP, lexer.CHANGE_POINT, lexer.COMPLETION,
	lexer.SAMPLE, lexer.FORK, lexer.RERANK, lexer.INLINE, lexer.INLINESTATS,
	lexer.FUSE, lexer.URI_PARTS, lexer.METRICS_INFO,
}

var devProcessingCommands = []lexer.TokenType{
	lexer.INSIST, lexer.MMR, lexer.LEFT, lexer.RIGHT,
}

func isOneOf(tt lexer.TokenType, types []lexer.TokenType) bool {
	for _, t := range types {
		if t == tt {
			return true
		}
	}
	return false
}

func (p *Parser) commandNames(types ...[]lexer.TokenType) []string {
	var names []string
	for _, group := range types {
		for _, t := range group {
			names = append(names, t.Display())
		}
	}
	return names
}

func (p *Parser) expectedSourceCommands() []string {
	if p.devMode {
		return p.commandNames(sourceCommands, devSourceCommands)
	}
	return p.commandNames(sourceCommands)
}

func (p *Parser) expectedProcessingCommands() []string {
	if p.devMode {
		return p.commandNames(processingCommands, devProcessingCommands)
	}
	return p.commandNames(processingCommands)
}

// commandError reports a token that cannot start a command at this point.
func (p *Parser) commandError(tok lexer.Token, atSource bool) {
	switch {
	case !p.devMode && isOneOf(tok.Type, devSourceCommands) && atSource:
		p.featureDisabled(tok, tok.Type.Display())
	case !p.devMode && isOneOf(tok.Type, devProcessingCommands) && !atSource:
		p.featureDisabled(tok, tok.Type.Display())
	case atSource && (isOneOf(tok.Type, processingCommands) || isOneOf(tok.Type, devProcessingCommands)):
		p.fail(p.errorAt(tok, "SYNTAX-0008", map[string]any{"Got": tok.Type.Display()}))
	case !atSource && (isOneOf(tok.Type, sourceCommands) || isOneOf(tok.Type, devSourceCommands)):
		p.fail(p.errorAt(tok, "SYNTAX-0009", map[string]any{"Got": tok.Type.Display()}))
	case tok.Type == lexer.UNQUOTED_IDENTIFIER:
		e := perrors.NewUnknownCommand(tok.Literal, lexer.CommandNames())
		e.Line, e.Column = tok.Line, tok.Column
		e.Offset, e.End = tok.Span.Start, tok.Span.End
		e.Token = tok.Literal
		p.fail(e)
	}
	if atSource {
		p.unexpected(p.expectedSourceCommands()...)
	}
	p.unexpected(p.expectedProcessingCommands()...)
}
