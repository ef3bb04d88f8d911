package parser

import (
	"strconv"
	"strings"

	"github.com/sambeau/esql/pkg/esql/ast"
	"github.com/sambeau/esql/pkg/esql/lexer"
)

// ============================================================================
// Identifiers and parameters
// ============================================================================

func (p *Parser) parseIdentifier() *ast.Identifier {
	tok := p.cur()
	switch tok.Type {
	case lexer.UNQUOTED_IDENTIFIER:
		p.advance()
		return &ast.Identifier{Token: tok, Name: tok.Literal}
	case lexer.QUOTED_IDENTIFIER:
		p.advance()
		return &ast.Identifier{Token: tok, Name: unquoteIdentifier(tok.Literal), Quoted: true}
	}
	p.unexpected(lexer.UNQUOTED_IDENTIFIER.Display())
	return nil
}

// unquoteIdentifier strips backquotes; a doubled backquote is a literal one.
func unquoteIdentifier(lit string) string {
	if len(lit) < 2 {
		return lit
	}
	return strings.ReplaceAll(lit[1:len(lit)-1], "``", "`")
}

func isParam(tt lexer.TokenType) bool {
	switch tt {
	case lexer.PARAM, lexer.NAMED_OR_POSITIONAL_PARAM,
		lexer.DOUBLE_PARAMS, lexer.NAMED_OR_POSITIONAL_DOUBLE_PARAMS:
		return true
	}
	return false
}

func isValueParam(tt lexer.TokenType) bool {
	return tt == lexer.PARAM || tt == lexer.NAMED_OR_POSITIONAL_PARAM
}

// parseParameter parses ?, ?name, ?1 and their double forms.
func (p *Parser) parseParameter() *ast.InputParameter {
	tok := p.cur()
	if !isParam(tok.Type) {
		p.unexpected(lexer.PARAM.Display())
	}
	p.advance()

	param := &ast.InputParameter{Token: tok}
	body := strings.TrimPrefix(tok.Literal, "?")
	if strings.HasPrefix(body, "?") {
		param.Double = true
		body = body[1:]
	}
	switch {
	case body == "":
		param.Kind = ast.ParamAnonymous
	case isDigits(body):
		param.Kind = ast.ParamPositional
		param.Position, _ = strconv.Atoi(body)
	default:
		param.Kind = ast.ParamNamed
		param.Name = body
	}
	return param
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

func (p *Parser) parseIdentifierOrParameter() ast.IdentifierOrParameter {
	if isParam(p.cur().Type) {
		return p.parseParameter()
	}
	if !p.at(lexer.UNQUOTED_IDENTIFIER, lexer.QUOTED_IDENTIFIER) {
		p.unexpected(lexer.UNQUOTED_IDENTIFIER.Display(), lexer.PARAM.Display())
	}
	return p.parseIdentifier()
}

// ============================================================================
// Qualified names
// ============================================================================

// startsQualifiedName reports whether the current token can begin a
// qualified name.
func (p *Parser) startsQualifiedName() bool {
	tok := p.cur()
	switch {
	case tok.Is(lexer.UNQUOTED_IDENTIFIER, lexer.QUOTED_IDENTIFIER):
		return true
	case isParam(tok.Type):
		return true
	case tok.Type == lexer.OPENING_BRACKET && p.devMode:
		return p.peek(1).Is(lexer.UNQUOTED_IDENTIFIER, lexer.CLOSING_BRACKET)
	}
	return false
}

// parseQualifiedName parses a.b.c, [q].a.b or [q].[a.b].
func (p *Parser) parseQualifiedName() *ast.QualifiedName {
	first := p.cur()
	qn := &ast.QualifiedName{Token: first}

	if p.at(lexer.OPENING_BRACKET) {
		qn.Bracketed = true
		qn.Qualifier = p.parseBracketQualifier()
		if p.at(lexer.OPENING_BRACKET) {
			p.advance()
			qn.Parts = p.parseFieldName()
			p.expect(lexer.CLOSING_BRACKET)
			return qn
		}
	}

	qn.Parts = p.parseFieldName()
	return qn
}

// parseBracketQualifier parses the "[q]." prefix of a qualified name.
func (p *Parser) parseBracketQualifier() *ast.Identifier {
	open := p.cur()
	if !p.devMode {
		p.featureDisabled(open, "qualified names")
	}
	p.advance()
	var qualifier *ast.Identifier
	if !p.at(lexer.CLOSING_BRACKET) {
		tok := p.cur()
		if tok.Type != lexer.UNQUOTED_IDENTIFIER && tok.Type != lexer.ID_PATTERN {
			p.unexpected(lexer.UNQUOTED_IDENTIFIER.Display(), lexer.CLOSING_BRACKET.Display())
		}
		p.advance()
		qualifier = &ast.Identifier{Token: tok, Name: tok.Literal}
	}
	p.expect(lexer.CLOSING_BRACKET)
	p.expect(lexer.DOT)
	return qualifier
}

func (p *Parser) parseFieldName() []ast.IdentifierOrParameter {
	parts := []ast.IdentifierOrParameter{p.parseIdentifierOrParameter()}
	for p.at(lexer.DOT) {
		p.advance()
		parts = append(parts, p.parseIdentifierOrParameter())
	}
	return parts
}

func (p *Parser) parseQualifiedNames() []*ast.QualifiedName {
	names := []*ast.QualifiedName{p.parseQualifiedName()}
	for p.at(lexer.COMMA) {
		p.advance()
		names = append(names, p.parseQualifiedName())
	}
	return names
}

// tryAssignmentTarget parses an optional "name =" prefix. When the tokens
// ahead are not a qualified name followed by '=', nothing is consumed.
func (p *Parser) tryAssignmentTarget() *ast.QualifiedName {
	if !p.startsQualifiedName() {
		return nil
	}
	cp := p.mark()
	var name *ast.QualifiedName
	ok := p.speculate(func() { name = p.parseQualifiedName() })
	if ok && p.at(lexer.ASSIGN) {
		p.advance()
		return name
	}
	if ok {
		p.rewind(cp)
	}
	return nil
}

// ============================================================================
// Name patterns
// ============================================================================

func (p *Parser) parseQualifiedNamePattern() *ast.QualifiedNamePattern {
	first := p.cur()
	qp := &ast.QualifiedNamePattern{Token: first}

	if p.at(lexer.OPENING_BRACKET) {
		qp.Bracketed = true
		qp.Qualifier = p.parseBracketQualifier()
		if p.at(lexer.OPENING_BRACKET) {
			p.advance()
			qp.Parts = p.parseFieldNamePattern()
			p.expect(lexer.CLOSING_BRACKET)
			return qp
		}
	}

	qp.Parts = p.parseFieldNamePattern()
	return qp
}

func (p *Parser) parseFieldNamePattern() []ast.IdentifierPattern {
	parts := []ast.IdentifierPattern{p.parseIdentifierPattern()}
	for p.at(lexer.DOT) {
		p.advance()
		parts = append(parts, p.parseIdentifierPattern())
	}
	return parts
}

func (p *Parser) parseIdentifierPattern() ast.IdentifierPattern {
	tok := p.cur()
	switch {
	case tok.Is(lexer.ID_PATTERN, lexer.UNQUOTED_IDENTIFIER, lexer.QUOTED_IDENTIFIER):
		p.advance()
		return &ast.IDPattern{Token: tok, Pattern: tok.Literal}
	case isParam(tok.Type):
		return p.parseParameter()
	}
	p.unexpected(lexer.ID_PATTERN.Display(), lexer.PARAM.Display())
	return nil
}

func (p *Parser) parseQualifiedNamePatterns() []*ast.QualifiedNamePattern {
	patterns := []*ast.QualifiedNamePattern{p.parseQualifiedNamePattern()}
	for p.at(lexer.COMMA) {
		p.advance()
		patterns = append(patterns, p.parseQualifiedNamePattern())
	}
	return patterns
}

// ============================================================================
// Types
// ============================================================================

func (p *Parser) parseDataType() *ast.DataType {
	tok := p.cur()
	if tok.Type != lexer.UNQUOTED_IDENTIFIER {
		p.unexpected("type name")
	}
	p.advance()
	return &ast.DataType{Token: tok, Name: strings.ToLower(tok.Literal)}
}
