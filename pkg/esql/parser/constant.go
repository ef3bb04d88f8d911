package parser

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/sambeau/esql/pkg/esql/ast"
	"github.com/sambeau/esql/pkg/esql/lexer"
)

// parseConstant parses a literal, a parameter or an array. A leading sign
// is accepted on numbers here, unlike in general expressions where it
// becomes a unary operator.
func (p *Parser) parseConstant() ast.Constant {
	tok := p.cur()
	switch tok.Type {
	case lexer.PLUS, lexer.MINUS:
		if p.peek(1).Is(lexer.INTEGER_LITERAL, lexer.DECIMAL_LITERAL) {
			sign := p.advance()
			return p.parseNumber(&sign, true)
		}
	case lexer.NULL, lexer.TRUE, lexer.FALSE, lexer.QUOTED_STRING,
		lexer.INTEGER_LITERAL, lexer.DECIMAL_LITERAL:
		return p.parseLiteral()
	case lexer.OPENING_BRACKET:
		return p.parseArrayLiteral()
	case lexer.PARAM, lexer.NAMED_OR_POSITIONAL_PARAM:
		return p.parseParameter()
	}
	p.unexpected("constant")
	return nil
}

// parseLiteral parses an unsigned scalar literal.
func (p *Parser) parseLiteral() ast.Constant {
	tok := p.cur()
	switch tok.Type {
	case lexer.NULL:
		p.advance()
		return &ast.NullLiteral{Token: tok}
	case lexer.TRUE, lexer.FALSE:
		return p.parseBoolean()
	case lexer.QUOTED_STRING:
		return p.parseString()
	case lexer.INTEGER_LITERAL, lexer.DECIMAL_LITERAL:
		return p.parseNumber(nil, true)
	}
	p.unexpected("constant")
	return nil
}

func (p *Parser) parseBoolean() *ast.BooleanLiteral {
	tok := p.cur()
	if !tok.Is(lexer.TRUE, lexer.FALSE) {
		p.unexpected(lexer.TRUE.Display(), lexer.FALSE.Display())
	}
	p.advance()
	return &ast.BooleanLiteral{Token: tok, Value: tok.Type == lexer.TRUE}
}

func (p *Parser) parseString() *ast.StringLiteral {
	tok := p.cur()
	if tok.Type != lexer.QUOTED_STRING {
		p.unexpected(lexer.QUOTED_STRING.Display())
	}
	value, err := unquoteString(tok.Literal)
	if err != nil {
		p.fail(p.errorAt(tok, "SYNTAX-0010", map[string]any{"Literal": err.Error()}))
	}
	p.advance()
	return &ast.StringLiteral{Token: tok, Value: value}
}

// parseStringOrParameter parses a string literal or a value parameter.
func (p *Parser) parseStringOrParameter() ast.StringOrParameter {
	if isValueParam(p.cur().Type) {
		return p.parseParameter()
	}
	if !p.at(lexer.QUOTED_STRING) {
		p.unexpected(lexer.QUOTED_STRING.Display(), lexer.PARAM.Display())
	}
	return p.parseString()
}

// unquoteString resolves a quoted string literal. Triple-quoted strings
// are raw; single-quoted strings accept \t \n \r \" and \\.
func unquoteString(lit string) (string, error) {
	if strings.HasPrefix(lit, `"""`) && len(lit) >= 6 {
		return lit[3 : len(lit)-3], nil
	}
	if len(lit) < 2 {
		return "", fmt.Errorf("%s is not quoted", lit)
	}
	body := lit[1 : len(lit)-1]
	if !strings.Contains(body, `\`) {
		return body, nil
	}

	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		ch := body[i]
		if ch != '\\' {
			sb.WriteByte(ch)
			continue
		}
		i++
		if i >= len(body) {
			return "", fmt.Errorf("%s ends with a backslash", lit)
		}
		switch body[i] {
		case 't':
			sb.WriteByte('\t')
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case '"':
			sb.WriteByte('"')
		case '\\':
			sb.WriteByte('\\')
		default:
			return "", fmt.Errorf("%s has unknown escape \\%c", lit, body[i])
		}
	}
	return sb.String(), nil
}

// parseNumber parses an integer or decimal literal, folding in a sign
// token already consumed by the caller. An integer followed by a bare
// word becomes a qualified integer (1 day) when qualified is true.
func (p *Parser) parseNumber(sign *lexer.Token, qualified bool) ast.Constant {
	tok := p.cur()
	if !tok.Is(lexer.INTEGER_LITERAL, lexer.DECIMAL_LITERAL) {
		p.unexpected("number")
	}
	p.advance()

	text := tok.Literal
	numTok := tok
	if sign != nil {
		text = sign.Literal + tok.Literal
		numTok = lexer.Token{
			Type:    tok.Type,
			Literal: text,
			Span:    sign.Span.Cover(tok.Span),
			Line:    sign.Line,
			Column:  sign.Column,
		}
	}

	if tok.Type == lexer.DECIMAL_LITERAL {
		value, err := strconv.ParseFloat(text, 64)
		if err != nil {
			p.fail(p.errorAt(numTok, "SYNTAX-0005", map[string]any{"Literal": text}))
		}
		return &ast.DecimalLiteral{Token: numTok, Text: text, Value: value}
	}

	lit := p.integerLiteral(numTok, text)
	if qualified && p.at(lexer.UNQUOTED_IDENTIFIER) {
		unit := p.advance()
		return &ast.QualifiedIntegerLiteral{Token: numTok, Value: lit, Unit: unit.Literal, UnitToken: unit}
	}
	return lit
}

// integerLiteral converts text to an IntegerLiteral, keeping values that
// overflow int64 in Big.
func (p *Parser) integerLiteral(tok lexer.Token, text string) *ast.IntegerLiteral {
	value, err := strconv.ParseInt(text, 10, 64)
	if err == nil {
		return &ast.IntegerLiteral{Token: tok, Text: text, Value: value}
	}
	b, ok := new(big.Int).SetString(text, 10)
	if !ok {
		p.fail(p.errorAt(tok, "SYNTAX-0005", map[string]any{"Literal": text}))
	}
	return &ast.IntegerLiteral{Token: tok, Text: text, Big: b}
}

// parseInteger parses an optionally signed integer constant.
func (p *Parser) parseInteger() *ast.IntegerLiteral {
	var sign *lexer.Token
	if p.at(lexer.PLUS, lexer.MINUS) && p.peek(1).Type == lexer.INTEGER_LITERAL {
		tok := p.advance()
		sign = &tok
	}
	if !p.at(lexer.INTEGER_LITERAL) {
		p.unexpected(lexer.INTEGER_LITERAL.Display())
	}
	return p.parseNumber(sign, false).(*ast.IntegerLiteral)
}

// ============================================================================
// Arrays
// ============================================================================

type arrayKind string

const (
	numericArray arrayKind = "numeric"
	booleanArray arrayKind = "boolean"
	stringArray  arrayKind = "string"
)

// parseArrayElement parses one array element and reports its kind.
func (p *Parser) parseArrayElement() (ast.Constant, arrayKind) {
	tok := p.cur()
	switch tok.Type {
	case lexer.PLUS, lexer.MINUS:
		if p.peek(1).Is(lexer.INTEGER_LITERAL, lexer.DECIMAL_LITERAL) {
			sign := p.advance()
			return p.parseNumber(&sign, false), numericArray
		}
	case lexer.INTEGER_LITERAL, lexer.DECIMAL_LITERAL:
		return p.parseNumber(nil, false), numericArray
	case lexer.TRUE, lexer.FALSE:
		return p.parseBoolean(), booleanArray
	case lexer.QUOTED_STRING:
		return p.parseString(), stringArray
	}
	p.unexpected("number", "boolean", "string")
	return nil, ""
}

// parseArrayLiteral parses [a, b, ...]. All elements must be of one kind.
func (p *Parser) parseArrayLiteral() ast.Constant {
	open := p.expect(lexer.OPENING_BRACKET)

	first, kind := p.parseArrayElement()
	elements := []ast.Constant{first}
	for p.at(lexer.COMMA) {
		p.advance()
		tok := p.cur()
		elem, k := p.parseArrayElement()
		if k != kind {
			p.fail(p.errorAt(tok, "SYNTAX-0006", map[string]any{"First": string(kind), "Got": string(k)}))
		}
		elements = append(elements, elem)
	}
	p.expectClosing(lexer.CLOSING_BRACKET)

	switch kind {
	case numericArray:
		arr := &ast.NumericArrayLiteral{Token: open}
		for _, e := range elements {
			arr.Values = append(arr.Values, e.(ast.NumericLiteral))
		}
		return arr
	case booleanArray:
		arr := &ast.BooleanArrayLiteral{Token: open}
		for _, e := range elements {
			arr.Values = append(arr.Values, e.(*ast.BooleanLiteral))
		}
		return arr
	default:
		arr := &ast.StringArrayLiteral{Token: open}
		for _, e := range elements {
			arr.Values = append(arr.Values, e.(*ast.StringLiteral))
		}
		return arr
	}
}

// ============================================================================
// Maps
// ============================================================================

// parseMapExpression parses {"key": value, ...}. Values are constants or
// nested maps.
func (p *Parser) parseMapExpression() *ast.MapExpression {
	open := p.expect(lexer.LEFT_BRACES)
	p.enter()
	defer p.leave()

	m := &ast.MapExpression{Token: open}
	if p.at(lexer.RIGHT_BRACES) {
		p.advance()
		return m
	}
	for {
		m.Entries = append(m.Entries, p.parseEntryExpression())
		if !p.at(lexer.COMMA) {
			break
		}
		p.advance()
	}
	p.expectClosing(lexer.RIGHT_BRACES)
	return m
}

func (p *Parser) parseEntryExpression() *ast.EntryExpression {
	tok := p.cur()
	key := p.parseString()
	p.expect(lexer.COLON)
	return &ast.EntryExpression{Token: tok, Key: key, Value: p.parseMapValue()}
}

func (p *Parser) parseMapValue() ast.MapValue {
	if p.at(lexer.LEFT_BRACES) {
		return p.parseMapExpression()
	}
	return p.parseConstant()
}

// parseCommandOptions parses an optional trailing WITH {...}.
func (p *Parser) parseCommandOptions() *ast.MapExpression {
	if !p.at(lexer.WITH) {
		return nil
	}
	p.advance()
	return p.parseMapExpression()
}
