package parser

import (
	"strings"

	"github.com/sambeau/esql/pkg/esql/ast"
	"github.com/sambeau/esql/pkg/esql/lexer"
)

// parsePromqlCommand parses PROMQL [name=value ...] [valueName=](query).
// The query body is captured as balanced token groups, not parsed.
func (p *Parser) parsePromqlCommand() *ast.PromqlCommand {
	cmd := &ast.PromqlCommand{Token: p.advance()}

	for !p.at(lexer.LP) {
		if p.peek(1).Type == lexer.ASSIGN && p.peek(2).Type == lexer.LP {
			cmd.ValueName = p.parsePromqlValueName()
			break
		}
		cmd.Params = append(cmd.Params, p.parsePromqlParam())
	}

	cmd.Query = p.parsePromqlQuery()
	return cmd
}

func isPromqlName(tt lexer.TokenType) bool {
	switch tt {
	case lexer.PROMQL_UNQUOTED_IDENTIFIER, lexer.UNQUOTED_IDENTIFIER, lexer.QUOTED_IDENTIFIER:
		return true
	}
	return false
}

func promqlName(tok lexer.Token) string {
	if tok.Type == lexer.QUOTED_IDENTIFIER {
		return unquoteIdentifier(tok.Literal)
	}
	return tok.Literal
}

func (p *Parser) parsePromqlValueName() *ast.Identifier {
	tok := p.cur()
	if !isPromqlName(tok.Type) {
		p.unexpected(lexer.UNQUOTED_IDENTIFIER.Display())
	}
	p.advance()
	p.expect(lexer.ASSIGN)
	return &ast.Identifier{Token: tok, Name: promqlName(tok), Quoted: tok.Type == lexer.QUOTED_IDENTIFIER}
}

// parsePromqlParam parses one name=value setting.
func (p *Parser) parsePromqlParam() *ast.PromqlParam {
	name := p.cur()
	if !isPromqlName(name.Type) {
		p.unexpected("PROMQL parameter", lexer.LP.Display())
	}
	p.advance()
	p.expect(lexer.ASSIGN)

	value := p.cur()
	switch {
	case value.Is(lexer.PROMQL_UNQUOTED_IDENTIFIER, lexer.UNQUOTED_IDENTIFIER,
		lexer.QUOTED_IDENTIFIER, lexer.QUOTED_STRING, lexer.INTEGER_LITERAL, lexer.DECIMAL_LITERAL):
	case isValueParam(value.Type):
	default:
		p.unexpected("parameter value")
	}
	p.advance()

	return &ast.PromqlParam{Token: name, Name: promqlName(name), Value: value.Literal, ValueToken: value}
}

// isPromqlContent reports whether a token may appear in a content run.
// Parentheses delimit groups; anything else the lexer produced is text.
func isPromqlContent(tt lexer.TokenType) bool {
	switch tt {
	case lexer.LP, lexer.RP, lexer.EOF, lexer.ILLEGAL, lexer.PIPE:
		return false
	}
	return true
}

// parsePromqlQuery parses the outer parentheses and the parts between them.
func (p *Parser) parsePromqlQuery() *ast.PromqlQuery {
	open := p.expect(lexer.LP)
	p.enter()
	defer p.leave()

	parts := p.parsePromqlParts()
	if len(parts) == 0 {
		if p.at(lexer.RP) {
			p.fail(p.errorAt(p.cur(), "SYNTAX-0004", map[string]any{"Construct": "PROMQL", "Element": "query expression"}))
		}
		p.unexpected("PromQL query")
	}
	if !p.at(lexer.RP) {
		p.unexpected(lexer.RP.Display())
	}
	closing := p.advance()

	span := lexer.Span{Start: open.Span.End, End: closing.Span.Start}
	return &ast.PromqlQuery{
		Token: open,
		Parts: parts,
		Span:  span,
		Text:  p.sourceText(span, func() string { return joinPromqlParts(parts) }),
	}
}

// parsePromqlParts collects content runs and balanced groups until a ')'
// or a token that cannot appear in PromQL.
func (p *Parser) parsePromqlParts() []ast.PromqlPart {
	var parts []ast.PromqlPart
	for {
		switch {
		case p.at(lexer.LP):
			parts = append(parts, p.parsePromqlGroup())
		case isPromqlContent(p.cur().Type):
			parts = append(parts, p.parsePromqlContent())
		default:
			return parts
		}
	}
}

func (p *Parser) parsePromqlContent() *ast.PromqlContent {
	var tokens []lexer.Token
	for isPromqlContent(p.cur().Type) {
		tokens = append(tokens, p.advance())
	}
	span := tokens[0].Span.Cover(tokens[len(tokens)-1].Span)
	return &ast.PromqlContent{
		Tokens: tokens,
		Span:   span,
		Text: p.sourceText(span, func() string {
			literals := make([]string, len(tokens))
			for i, t := range tokens {
				literals[i] = t.Literal
			}
			return strings.Join(literals, " ")
		}),
	}
}

func (p *Parser) parsePromqlGroup() *ast.PromqlGroup {
	open := p.advance()
	p.enter()
	defer p.leave()

	parts := p.parsePromqlParts()
	if !p.at(lexer.RP) {
		p.unexpected(lexer.RP.Display())
	}
	closing := p.advance()

	span := open.Span.Cover(closing.Span)
	return &ast.PromqlGroup{
		Token: open,
		Parts: parts,
		Span:  span,
		Text:  p.sourceText(span, func() string { return "(" + joinPromqlParts(parts) + ")" }),
	}
}

func joinPromqlParts(parts []ast.PromqlPart) string {
	texts := make([]string, len(parts))
	for i, part := range parts {
		texts[i] = part.String()
	}
	return strings.Join(texts, " ")
}

// sourceText returns the original text of span when the stream can supply
// it, and the fallback rendering otherwise.
func (p *Parser) sourceText(span lexer.Span, fallback func() string) string {
	if s, ok := p.s.(sourced); ok {
		src := s.Source()
		if span.Start >= 0 && span.Start <= span.End && span.End <= len(src) {
			return src[span.Start:span.End]
		}
	}
	return fallback()
}
