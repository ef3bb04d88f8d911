package parser

import (
	"github.com/sambeau/esql/pkg/esql/ast"
	"github.com/sambeau/esql/pkg/esql/lexer"
)

// Precedence levels
const (
	_ int = iota
	LOWEST
	LOGIC_OR  // OR
	LOGIC_AND // AND
	LOGIC_NOT // NOT
	PREDICATE // == != < <= > >= IN LIKE RLIKE IS :
	SUM       // + -
	PRODUCT   // * / %
	PREFIX    // -X or +X
	CAST      // X::type
)

var logicalPrecedences = map[lexer.TokenType]int{
	lexer.OR:  LOGIC_OR,
	lexer.AND: LOGIC_AND,
}

var logicalOperators = map[lexer.TokenType]ast.LogicalOperator{
	lexer.OR:  ast.OpOr,
	lexer.AND: ast.OpAnd,
}

var arithmeticPrecedences = map[lexer.TokenType]int{
	lexer.PLUS:     SUM,
	lexer.MINUS:    SUM,
	lexer.ASTERISK: PRODUCT,
	lexer.SLASH:    PRODUCT,
	lexer.PERCENT:  PRODUCT,
}

var arithmeticOperators = map[lexer.TokenType]ast.ArithmeticOperator{
	lexer.PLUS:     ast.OpAdd,
	lexer.MINUS:    ast.OpSub,
	lexer.ASTERISK: ast.OpMul,
	lexer.SLASH:    ast.OpDiv,
	lexer.PERCENT:  ast.OpMod,
}

var comparisonOperators = map[lexer.TokenType]ast.ComparisonOperator{
	lexer.EQ:  ast.OpEq,
	lexer.NEQ: ast.OpNeq,
	lexer.LT:  ast.OpLt,
	lexer.LTE: ast.OpLte,
	lexer.GT:  ast.OpGt,
	lexer.GTE: ast.OpGte,
}

// ============================================================================
// Boolean expressions
// ============================================================================

// parseBooleanExpression parses NOT, AND and OR over predicates by
// precedence climbing. Binary operators are left-associative.
func (p *Parser) parseBooleanExpression(precedence int) ast.BooleanExpression {
	p.enter()
	defer p.leave()

	var left ast.BooleanExpression
	if p.at(lexer.NOT) {
		tok := p.advance()
		left = &ast.LogicalNot{Token: tok, Operand: p.parseBooleanExpression(LOGIC_NOT)}
	} else {
		left = p.parsePredicate()
	}

	for {
		prec, ok := logicalPrecedences[p.cur().Type]
		if !ok || prec < precedence {
			return left
		}
		tok := p.advance()
		right := p.parseBooleanExpression(prec + 1)
		left = &ast.LogicalBinary{
			Token:    tok,
			Operator: logicalOperators[tok.Type],
			Left:     left,
			Right:    right,
		}
	}
}

// parsePredicate parses a value expression with at most one trailing
// predicate. Predicates do not chain: a IN (1) IN (2) is an error.
func (p *Parser) parsePredicate() ast.BooleanExpression {
	if match := p.tryMatchExpression(); match != nil {
		return match
	}

	value := p.parseValueExpression()

	negated := false
	if p.at(lexer.NOT) && p.peek(1).Is(lexer.IN, lexer.LIKE, lexer.RLIKE) {
		p.advance()
		negated = true
	}

	switch p.cur().Type {
	case lexer.IN:
		return p.parseInExpression(value, negated)
	case lexer.LIKE, lexer.RLIKE:
		return p.parseRegexExpression(value, negated)
	case lexer.IS:
		return p.parseIsNullExpression(value)
	}
	return value
}

func (p *Parser) parseInExpression(value ast.ValueExpression, negated bool) ast.BooleanExpression {
	tok := p.advance()
	p.expect(lexer.LP)
	if p.at(lexer.RP) {
		p.fail(p.errorAt(p.cur(), "SYNTAX-0004", map[string]any{"Construct": "IN", "Element": "value"}))
	}

	list := []ast.ValueExpression{p.parseValueExpression()}
	for p.at(lexer.COMMA) {
		p.advance()
		list = append(list, p.parseValueExpression())
	}
	p.expectClosing(lexer.RP)

	return &ast.InExpression{Token: tok, Value: value, Negated: negated, List: list}
}

func (p *Parser) parseRegexExpression(value ast.ValueExpression, negated bool) ast.BooleanExpression {
	tok := p.advance()

	if p.at(lexer.LP) {
		p.advance()
		patterns := []ast.StringOrParameter{p.parseStringOrParameter()}
		for p.at(lexer.COMMA) {
			p.advance()
			patterns = append(patterns, p.parseStringOrParameter())
		}
		p.expectClosing(lexer.RP)
		if tok.Type == lexer.LIKE {
			return &ast.LikeListExpression{Token: tok, Value: value, Negated: negated, Patterns: patterns}
		}
		return &ast.RlikeListExpression{Token: tok, Value: value, Negated: negated, Patterns: patterns}
	}

	pattern := p.parseStringOrParameter()
	if tok.Type == lexer.LIKE {
		return &ast.LikeExpression{Token: tok, Value: value, Negated: negated, Pattern: pattern}
	}
	return &ast.RlikeExpression{Token: tok, Value: value, Negated: negated, Pattern: pattern}
}

func (p *Parser) parseIsNullExpression(value ast.ValueExpression) ast.BooleanExpression {
	tok := p.advance()
	negated := false
	if p.at(lexer.NOT) {
		p.advance()
		negated = true
	}
	p.expect(lexer.NULL)
	return &ast.IsNullExpression{Token: tok, Value: value, Negated: negated}
}

// tryMatchExpression parses field[::type] : query when the tokens ahead
// have that shape and consumes nothing otherwise.
func (p *Parser) tryMatchExpression() ast.BooleanExpression {
	if !p.startsQualifiedName() {
		return nil
	}

	cp := p.mark()
	var field *ast.QualifiedName
	var fieldType *ast.DataType
	ok := p.speculate(func() {
		field = p.parseQualifiedName()
		if p.at(lexer.CAST_OP) {
			p.advance()
			fieldType = p.parseDataType()
		}
	})
	if !ok {
		return nil
	}
	if !p.at(lexer.COLON) {
		p.rewind(cp)
		return nil
	}

	tok := p.advance()
	return &ast.MatchExpression{Token: tok, Field: field, FieldType: fieldType, Query: p.parseConstant()}
}

// ============================================================================
// Value and operator expressions
// ============================================================================

// parseValueExpression parses an arithmetic expression with an optional
// comparison. Comparisons do not chain.
func (p *Parser) parseValueExpression() ast.ValueExpression {
	left := p.parseOperatorExpression(LOWEST)

	op, ok := comparisonOperators[p.cur().Type]
	if !ok {
		return left
	}
	tok := p.advance()
	right := p.parseOperatorExpression(LOWEST)
	return &ast.Comparison{Token: tok, Operator: op, Left: left, Right: right}
}

// parseOperatorExpression parses arithmetic by precedence climbing.
func (p *Parser) parseOperatorExpression(precedence int) ast.OperatorExpression {
	p.enter()
	defer p.leave()

	var left ast.OperatorExpression
	if p.at(lexer.PLUS, lexer.MINUS) {
		tok := p.advance()
		operand := p.parseOperatorExpression(PREFIX)
		left = &ast.ArithmeticUnary{Token: tok, Operator: arithmeticOperators[tok.Type], Operand: operand}
	} else {
		left = p.parsePrimaryExpression()
	}

	for {
		prec, ok := arithmeticPrecedences[p.cur().Type]
		if !ok || prec < precedence {
			return left
		}
		tok := p.advance()
		right := p.parseOperatorExpression(prec + 1)
		left = &ast.ArithmeticBinary{
			Token:    tok,
			Operator: arithmeticOperators[tok.Type],
			Left:     left,
			Right:    right,
		}
	}
}

// ============================================================================
// Primary expressions
// ============================================================================

// parsePrimaryExpression parses an atom followed by any number of casts.
// Each cast counts as one level of nesting.
func (p *Parser) parsePrimaryExpression() ast.PrimaryExpression {
	p.enter()
	defer p.leave()

	expr := p.parseAtom()
	casts := 0
	for p.at(lexer.CAST_OP) {
		tok := p.advance()
		casts++
		if p.depth+casts > p.maxDepth {
			p.fail(p.errorAt(tok, "LIMIT-0001", map[string]any{"Max": p.maxDepth}))
		}
		expr = &ast.InlineCast{Token: tok, Value: expr, Type: p.parseDataType()}
	}
	if p.depth+casts > p.depthReached {
		p.depthReached = p.depth + casts
	}
	return expr
}

func (p *Parser) parseAtom() ast.PrimaryExpression {
	tok := p.cur()
	switch tok.Type {
	case lexer.LP:
		p.advance()
		inner := p.parseBooleanExpression(LOWEST)
		p.expect(lexer.RP)
		return &ast.Parenthesized{Token: tok, Expression: inner}

	case lexer.NULL, lexer.TRUE, lexer.FALSE, lexer.QUOTED_STRING,
		lexer.INTEGER_LITERAL, lexer.DECIMAL_LITERAL:
		return p.parseLiteral()

	case lexer.OPENING_BRACKET:
		if !p.devMode && p.peek(1).Is(lexer.UNQUOTED_IDENTIFIER, lexer.CLOSING_BRACKET) {
			// neither can start an array literal
			p.featureDisabled(tok, "qualified names")
		}
		if name := p.tryBracketedName(); name != nil {
			return &ast.Dereference{Name: name}
		}
		return p.parseArrayLiteral()

	case lexer.PARAM, lexer.NAMED_OR_POSITIONAL_PARAM:
		switch p.peek(1).Type {
		case lexer.LP:
			return p.parseFunctionExpression()
		case lexer.DOT:
			return &ast.Dereference{Name: p.parseQualifiedName()}
		}
		return p.parseParameter()

	case lexer.DOUBLE_PARAMS, lexer.NAMED_OR_POSITIONAL_DOUBLE_PARAMS,
		lexer.UNQUOTED_IDENTIFIER, lexer.QUOTED_IDENTIFIER:
		if p.peek(1).Type == lexer.LP {
			return p.parseFunctionExpression()
		}
		return &ast.Dereference{Name: p.parseQualifiedName()}

	case lexer.FIRST, lexer.LAST:
		if p.peek(1).Type == lexer.LP {
			return p.parseFunctionExpression()
		}
	}
	p.unexpected("expression")
	return nil
}

// tryBracketedName parses [q].name in development mode. The same opening
// bracket also starts an array literal, so nothing is consumed unless a
// complete qualified name follows.
func (p *Parser) tryBracketedName() *ast.QualifiedName {
	if !p.startsQualifiedName() {
		return nil
	}
	var name *ast.QualifiedName
	if p.speculate(func() { name = p.parseQualifiedName() }) {
		return name
	}
	return nil
}

// parseFunctionExpression parses name(*), name() or
// name(arg, ... [, {options}]).
func (p *Parser) parseFunctionExpression() ast.PrimaryExpression {
	tok := p.cur()
	var name ast.IdentifierOrParameter
	if tok.Is(lexer.FIRST, lexer.LAST) {
		p.advance()
		name = &ast.Identifier{Token: tok, Name: tok.Literal}
	} else {
		name = p.parseIdentifierOrParameter()
	}
	p.expect(lexer.LP)

	p.enter()
	defer p.leave()

	fn := &ast.FunctionExpression{Token: tok, Name: name}
	switch {
	case p.at(lexer.ASTERISK):
		p.advance()
		fn.Star = true
		p.expect(lexer.RP)
		return fn
	case p.at(lexer.RP):
		p.advance()
		return fn
	}

	fn.Args = append(fn.Args, p.parseBooleanExpression(LOWEST))
	for p.at(lexer.COMMA) {
		p.advance()
		if p.at(lexer.LEFT_BRACES) {
			fn.Options = p.parseMapExpression()
			break
		}
		fn.Args = append(fn.Args, p.parseBooleanExpression(LOWEST))
	}
	if fn.Options != nil {
		p.expect(lexer.RP)
	} else {
		p.expectClosing(lexer.RP)
	}
	return fn
}
