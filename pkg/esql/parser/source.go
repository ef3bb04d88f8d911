package parser

import (
	"github.com/sambeau/esql/pkg/esql/ast"
	"github.com/sambeau/esql/pkg/esql/lexer"
)

// parseSourceCommand parses the command that starts a query.
func (p *Parser) parseSourceCommand() ast.SourceCommand {
	tok := p.cur()
	switch tok.Type {
	case lexer.FROM:
		return p.parseFromCommand()
	case lexer.TS:
		return p.parseTimeSeriesCommand()
	case lexer.ROW:
		return p.parseRowCommand()
	case lexer.SHOW:
		return p.parseShowCommand()
	case lexer.PROMQL:
		return p.parsePromqlCommand()
	case lexer.EXPLAIN:
		if p.devMode {
			return p.parseExplainCommand()
		}
	case lexer.EXTERNAL:
		if p.devMode {
			return p.parseExternalCommand()
		}
	}
	p.commandError(tok, true)
	return nil
}

func (p *Parser) parseFromCommand() *ast.FromCommand {
	cmd := &ast.FromCommand{Token: p.advance()}
	cmd.Sources, cmd.Metadata = p.parseSources()
	return cmd
}

func (p *Parser) parseTimeSeriesCommand() *ast.TimeSeriesCommand {
	cmd := &ast.TimeSeriesCommand{Token: p.advance()}
	cmd.Sources, cmd.Metadata = p.parseSources()
	return cmd
}

// parseSources parses a source list and an optional METADATA clause.
func (p *Parser) parseSources() ([]ast.IndexSource, []string) {
	sources := []ast.IndexSource{p.parseIndexSource()}
	for p.at(lexer.COMMA) {
		p.advance()
		sources = append(sources, p.parseIndexSource())
	}

	var metadata []string
	if p.at(lexer.METADATA) {
		p.advance()
		for {
			field := p.expect(lexer.UNQUOTED_SOURCE)
			metadata = append(metadata, field.Literal)
			if !p.at(lexer.COMMA) {
				break
			}
			p.advance()
		}
	}
	return sources, metadata
}

func (p *Parser) parseIndexSource() ast.IndexSource {
	if p.at(lexer.LP) {
		tok := p.cur()
		if !p.devMode {
			p.featureDisabled(tok, "subqueries")
		}
		open, query := p.parseNestedQuery(lexer.FROM)
		return &ast.Subquery{Token: open, Query: query}
	}
	return p.parseIndexPattern()
}

// parseIndexPattern parses [cluster:]index[::selector] or a quoted string.
func (p *Parser) parseIndexPattern() *ast.IndexPattern {
	tok := p.cur()
	switch tok.Type {
	case lexer.QUOTED_STRING:
		s := p.parseString()
		return &ast.IndexPattern{Token: tok, Index: s.Value, Quoted: true, EndSpan: tok.Span}
	case lexer.UNQUOTED_SOURCE:
		p.advance()
	default:
		p.unexpected("index pattern")
	}

	ip := &ast.IndexPattern{Token: tok, Index: tok.Literal, EndSpan: tok.Span}
	if p.at(lexer.COLON) {
		p.advance()
		index := p.expectSourceWord("index pattern")
		ip.Cluster, ip.Index = ip.Index, index.Literal
		ip.EndSpan = index.Span
	}
	if p.at(lexer.CAST_OP) {
		p.advance()
		selector := p.expectSourceWord("selector")
		ip.Selector = selector.Literal
		ip.EndSpan = selector.Span
	}
	return ip
}

func (p *Parser) expectSourceWord(what string) lexer.Token {
	if !p.at(lexer.UNQUOTED_SOURCE) {
		p.unexpected(what)
	}
	return p.advance()
}

func (p *Parser) parseRowCommand() *ast.RowCommand {
	return &ast.RowCommand{Token: p.advance(), Fields: p.parseFields()}
}

func (p *Parser) parseShowCommand() *ast.ShowCommand {
	tok := p.advance()
	return &ast.ShowCommand{Token: tok, Info: p.expect(lexer.INFO)}
}

func (p *Parser) parseExplainCommand() *ast.ExplainCommand {
	tok := p.advance()
	_, query := p.parseNestedQuery(lexer.ILLEGAL)
	return &ast.ExplainCommand{Token: tok, Query: query}
}

func (p *Parser) parseExternalCommand() *ast.ExternalCommand {
	tok := p.advance()
	source := p.parseStringOrParameter()
	return &ast.ExternalCommand{Token: tok, Source: source, Options: p.parseCommandOptions()}
}

// ============================================================================
// Fields
// ============================================================================

// parseField parses [name =] expression.
func (p *Parser) parseField() *ast.Field {
	tok := p.cur()
	name := p.tryAssignmentTarget()
	return &ast.Field{Token: tok, Name: name, Value: p.parseBooleanExpression(LOWEST)}
}

func (p *Parser) parseFields() []*ast.Field {
	fields := []*ast.Field{p.parseField()}
	for p.at(lexer.COMMA) {
		p.advance()
		fields = append(fields, p.parseField())
	}
	return fields
}
