package parser

import (
	"github.com/sambeau/esql/pkg/esql/ast"
	"github.com/sambeau/esql/pkg/esql/lexer"
)

// parseProcessingCommand parses the command after a '|'.
func (p *Parser) parseProcessingCommand() ast.ProcessingCommand {
	tok := p.cur()
	switch tok.Type {
	case lexer.EVAL:
		return &ast.EvalCommand{Token: p.advance(), Fields: p.parseFields()}
	case lexer.WHERE:
		return &ast.WhereCommand{Token: p.advance(), Condition: p.parseBooleanExpression(LOWEST)}
	case lexer.KEEP:
		return &ast.KeepCommand{Token: p.advance(), Patterns: p.parseQualifiedNamePatterns()}
	case lexer.DROP:
		return &ast.DropCommand{Token: p.advance(), Patterns: p.parseQualifiedNamePatterns()}
	case lexer.LIMIT:
		return &ast.LimitCommand{Token: p.advance(), Count: p.parseConstant()}
	case lexer.SAMPLE:
		return &ast.SampleCommand{Token: p.advance(), Probability: p.parseConstant()}
	case lexer.STATS:
		return p.parseStatsCommand()
	case lexer.INLINE, lexer.INLINESTATS:
		return p.parseInlineStatsCommand()
	case lexer.SORT:
		return p.parseSortCommand()
	case lexer.RENAME:
		return p.parseRenameCommand()
	case lexer.DISSECT:
		return p.parseDissectCommand()
	case lexer.GROK:
		return p.parseGrokCommand()
	case lexer.ENRICH:
		return p.parseEnrichCommand()
	case lexer.MV_EXPAND:
		return &ast.MvExpandCommand{Token: p.advance(), Field: p.parseQualifiedName()}
	case lexer.LOOKUP:
		if p.peek(1).Type == lexer.JOIN {
			return p.parseJoinCommand()
		}
		if !p.devMode {
			p.featureDisabled(tok, "LOOKUP")
		}
		return p.parseLookupCommand()
	case lexer.LEFT, lexer.RIGHT:
		if !p.devMode {
			p.featureDisabled(tok, tok.Type.Display()+" JOIN")
		}
		return p.parseJoinCommand()
	case lexer.CHANGE_POINT:
		return p.parseChangePointCommand()
	case lexer.COMPLETION:
		return p.parseCompletionCommand()
	case lexer.RERANK:
		return p.parseRerankCommand()
	case lexer.FORK:
		return p.parseForkCommand()
	case lexer.FUSE:
		return p.parseFuseCommand()
	case lexer.URI_PARTS:
		return p.parseUriPartsCommand()
	case lexer.METRICS_INFO:
		return &ast.MetricsInfoCommand{Token: p.advance()}
	case lexer.INSIST:
		if p.devMode {
			return &ast.InsistCommand{Token: p.advance(), Patterns: p.parseQualifiedNamePatterns()}
		}
	case lexer.MMR:
		if p.devMode {
			return p.parseMmrCommand()
		}
	}
	p.commandError(tok, false)
	return nil
}

// ============================================================================
// Aggregation
// ============================================================================

// parseStatsCommand parses STATS [aggregates] [BY grouping]. Both parts
// are optional.
func (p *Parser) parseStatsCommand() *ast.StatsCommand {
	cmd := &ast.StatsCommand{Token: p.advance()}
	if !p.at(lexer.BY) && !p.atCommandEnd() {
		cmd.Aggregates = p.parseAggFields()
	}
	if p.at(lexer.BY) {
		p.advance()
		cmd.Grouping = p.parseFields()
	}
	return cmd
}

// parseInlineStatsCommand parses INLINE STATS and the older INLINESTATS.
// Aggregates are required.
func (p *Parser) parseInlineStatsCommand() *ast.InlineStatsCommand {
	tok := p.advance()
	cmd := &ast.InlineStatsCommand{Token: tok, Legacy: tok.Type == lexer.INLINESTATS}
	if !cmd.Legacy {
		p.expect(lexer.STATS)
	}
	cmd.Aggregates = p.parseAggFields()
	if p.at(lexer.BY) {
		p.advance()
		cmd.Grouping = p.parseFields()
	}
	return cmd
}

func (p *Parser) parseAggFields() []*ast.AggField {
	fields := []*ast.AggField{p.parseAggField()}
	for p.at(lexer.COMMA) {
		p.advance()
		fields = append(fields, p.parseAggField())
	}
	return fields
}

func (p *Parser) parseAggField() *ast.AggField {
	tok := p.cur()
	agg := &ast.AggField{Token: tok, Field: p.parseField()}
	if p.at(lexer.WHERE) {
		p.advance()
		agg.Filter = p.parseBooleanExpression(LOWEST)
	}
	return agg
}

// ============================================================================
// SORT
// ============================================================================

func (p *Parser) parseSortCommand() *ast.SortCommand {
	cmd := &ast.SortCommand{Token: p.advance()}
	cmd.Orders = append(cmd.Orders, p.parseOrderExpression())
	for p.at(lexer.COMMA) {
		p.advance()
		cmd.Orders = append(cmd.Orders, p.parseOrderExpression())
	}
	return cmd
}

func (p *Parser) parseOrderExpression() *ast.OrderExpression {
	order := &ast.OrderExpression{Token: p.cur(), Expression: p.parseBooleanExpression(LOWEST)}
	switch p.cur().Type {
	case lexer.ASC:
		p.advance()
		order.Ordering = ast.OrderAsc
	case lexer.DESC:
		p.advance()
		order.Ordering = ast.OrderDesc
	}
	if p.at(lexer.NULLS) {
		p.advance()
		switch p.cur().Type {
		case lexer.FIRST:
			order.Nulls = ast.NullsFirst
		case lexer.LAST:
			order.Nulls = ast.NullsLast
		default:
			p.unexpected(lexer.FIRST.Display(), lexer.LAST.Display())
		}
		p.advance()
	}
	return order
}

// ============================================================================
// RENAME, DISSECT, GROK, ENRICH
// ============================================================================

func (p *Parser) parseRenameCommand() *ast.RenameCommand {
	cmd := &ast.RenameCommand{Token: p.advance()}
	cmd.Clauses = append(cmd.Clauses, p.parseRenameClause())
	for p.at(lexer.COMMA) {
		p.advance()
		cmd.Clauses = append(cmd.Clauses, p.parseRenameClause())
	}
	return cmd
}

// parseRenameClause parses old AS new or new = old.
func (p *Parser) parseRenameClause() *ast.RenameClause {
	tok := p.cur()
	first := p.parseQualifiedNamePattern()
	switch p.cur().Type {
	case lexer.AS:
		p.advance()
		return &ast.RenameClause{Token: tok, Old: first, New: p.parseQualifiedNamePattern()}
	case lexer.ASSIGN:
		p.advance()
		return &ast.RenameClause{Token: tok, Old: p.parseQualifiedNamePattern(), New: first, Assign: true}
	}
	p.unexpected(lexer.AS.Display(), lexer.ASSIGN.Display())
	return nil
}

func (p *Parser) parseDissectCommand() *ast.DissectCommand {
	cmd := &ast.DissectCommand{Token: p.advance()}
	cmd.Input = p.parsePrimaryExpression()
	cmd.Pattern = p.parseString()
	if p.at(lexer.UNQUOTED_IDENTIFIER) {
		for {
			name := p.parseIdentifier()
			p.expect(lexer.ASSIGN)
			cmd.Options = append(cmd.Options, &ast.DissectOption{Name: name, Value: p.parseConstant()})
			if !p.at(lexer.COMMA) {
				break
			}
			p.advance()
		}
	}
	return cmd
}

func (p *Parser) parseGrokCommand() *ast.GrokCommand {
	cmd := &ast.GrokCommand{Token: p.advance()}
	cmd.Input = p.parsePrimaryExpression()
	cmd.Patterns = append(cmd.Patterns, p.parseString())
	for p.at(lexer.COMMA) {
		p.advance()
		cmd.Patterns = append(cmd.Patterns, p.parseString())
	}
	return cmd
}

func (p *Parser) parseEnrichCommand() *ast.EnrichCommand {
	cmd := &ast.EnrichCommand{Token: p.advance()}

	policy := p.cur()
	switch policy.Type {
	case lexer.ENRICH_POLICY_NAME:
		p.advance()
		cmd.Policy = policy.Literal
	case lexer.QUOTED_STRING:
		cmd.Policy = p.parseString().Value
	default:
		p.unexpected(lexer.ENRICH_POLICY_NAME.Display())
	}
	cmd.PolicyToken = policy

	if p.at(lexer.ON) {
		p.advance()
		cmd.MatchField = p.parseQualifiedNamePattern()
	}
	if p.at(lexer.WITH) {
		p.advance()
		cmd.With = append(cmd.With, p.parseEnrichWithClause())
		for p.at(lexer.COMMA) {
			p.advance()
			cmd.With = append(cmd.With, p.parseEnrichWithClause())
		}
	}
	return cmd
}

// parseEnrichWithClause parses [new =] field.
func (p *Parser) parseEnrichWithClause() *ast.EnrichWithClause {
	first := p.parseQualifiedNamePattern()
	if p.at(lexer.ASSIGN) {
		p.advance()
		return &ast.EnrichWithClause{NewName: first, Field: p.parseQualifiedNamePattern()}
	}
	return &ast.EnrichWithClause{Field: first}
}

// ============================================================================
// Joins
// ============================================================================

var joinTypes = map[lexer.TokenType]ast.JoinType{
	lexer.LOOKUP: ast.JoinLookup,
	lexer.LEFT:   ast.JoinLeft,
	lexer.RIGHT:  ast.JoinRight,
}

// parseJoinCommand parses LOOKUP|LEFT|RIGHT JOIN target ON conditions.
func (p *Parser) parseJoinCommand() *ast.JoinCommand {
	tok := p.advance()
	p.expect(lexer.JOIN)
	cmd := &ast.JoinCommand{Token: tok, Type: joinTypes[tok.Type]}
	cmd.Target = p.parseJoinTarget()
	p.expect(lexer.ON)
	cmd.Conditions = append(cmd.Conditions, p.parseBooleanExpression(LOWEST))
	for p.at(lexer.COMMA) {
		p.advance()
		cmd.Conditions = append(cmd.Conditions, p.parseBooleanExpression(LOWEST))
	}
	return cmd
}

// parseJoinTarget parses the joined index and, in development mode, an
// optional [AS] qualifier.
func (p *Parser) parseJoinTarget() *ast.JoinTarget {
	target := &ast.JoinTarget{Index: p.parseIndexPattern()}
	if p.at(lexer.AS) || p.at(lexer.UNQUOTED_SOURCE) {
		if !p.devMode {
			p.featureDisabled(p.cur(), "join qualifiers")
		}
		if p.at(lexer.AS) {
			p.advance()
		}
		tok := p.expectSourceWord("qualifier")
		target.Qualifier = &ast.Identifier{Token: tok, Name: tok.Literal}
	}
	return target
}

// parseLookupCommand parses the development LOOKUP table ON fields.
func (p *Parser) parseLookupCommand() *ast.LookupCommand {
	cmd := &ast.LookupCommand{Token: p.advance()}
	cmd.Table = p.parseIndexPattern()
	p.expect(lexer.ON)
	cmd.MatchFields = p.parseQualifiedNamePatterns()
	return cmd
}

// ============================================================================
// Analytics and inference
// ============================================================================

// parseChangePointCommand parses CHANGE_POINT value [ON key] [AS type, pvalue].
func (p *Parser) parseChangePointCommand() *ast.ChangePointCommand {
	cmd := &ast.ChangePointCommand{Token: p.advance()}
	cmd.Value = p.parseQualifiedName()
	if p.at(lexer.ON) {
		p.advance()
		cmd.Key = p.parseQualifiedName()
	}
	if p.at(lexer.AS) {
		p.advance()
		cmd.TypeName = p.parseQualifiedName()
		p.expect(lexer.COMMA)
		cmd.PvalueName = p.parseQualifiedName()
	}
	return cmd
}

// parseCompletionCommand parses COMPLETION [target =] prompt [WITH {...}].
func (p *Parser) parseCompletionCommand() *ast.CompletionCommand {
	cmd := &ast.CompletionCommand{Token: p.advance()}
	cmd.Target = p.tryAssignmentTarget()
	cmd.Prompt = p.parsePrimaryExpression()
	cmd.Options = p.parseCommandOptions()
	return cmd
}

// parseRerankCommand parses RERANK [target =] query ON fields [WITH {...}].
func (p *Parser) parseRerankCommand() *ast.RerankCommand {
	cmd := &ast.RerankCommand{Token: p.advance()}
	cmd.Target = p.tryAssignmentTarget()
	cmd.QueryText = p.parseConstant()
	p.expect(lexer.ON)
	cmd.Fields = append(cmd.Fields, p.parseRerankField())
	for p.at(lexer.COMMA) {
		p.advance()
		cmd.Fields = append(cmd.Fields, p.parseRerankField())
	}
	cmd.Options = p.parseCommandOptions()
	return cmd
}

func (p *Parser) parseRerankField() *ast.RerankField {
	field := &ast.RerankField{Name: p.parseQualifiedName()}
	if p.at(lexer.ASSIGN) {
		p.advance()
		field.Value = p.parseBooleanExpression(LOWEST)
	}
	return field
}

// parseMmrCommand parses MMR [target =] [vector] ON field LIMIT n [WITH {...}].
func (p *Parser) parseMmrCommand() *ast.MmrCommand {
	cmd := &ast.MmrCommand{Token: p.advance()}
	cmd.Target = p.tryAssignmentTarget()
	if !p.at(lexer.ON) {
		cmd.QueryVector = p.parsePrimaryExpression()
	}
	p.expect(lexer.ON)
	cmd.DiversifyField = p.parseQualifiedName()
	p.expect(lexer.LIMIT)
	cmd.Limit = p.parseInteger()
	cmd.Options = p.parseCommandOptions()
	return cmd
}

// ============================================================================
// FORK and FUSE
// ============================================================================

// parseForkCommand parses FORK (branch) (branch) ...
func (p *Parser) parseForkCommand() *ast.ForkCommand {
	cmd := &ast.ForkCommand{Token: p.advance()}
	if !p.at(lexer.LP) {
		p.unexpected(lexer.LP.Display())
	}
	for p.at(lexer.LP) {
		cmd.Branches = append(cmd.Branches, p.parseForkBranch())
	}
	return cmd
}

func (p *Parser) parseForkBranch() *ast.ForkBranch {
	open := p.advance()
	p.enter()
	defer p.leave()

	var query ast.ForkQuery = &ast.SingleForkQuery{Command: p.parseProcessingCommand()}
	for p.at(lexer.PIPE) {
		pipe := p.advance()
		query = &ast.CompositeForkQuery{Token: pipe, Left: query, Right: p.parseProcessingCommand()}
	}
	if !p.at(lexer.RP) {
		p.unexpected(lexer.PIPE.Display(), lexer.RP.Display())
	}
	p.advance()
	return &ast.ForkBranch{Token: open, Query: query}
}

// parseFuseCommand parses FUSE [type] followed by SCORE BY, KEY BY,
// GROUP BY and WITH clauses in any order.
func (p *Parser) parseFuseCommand() *ast.FuseCommand {
	cmd := &ast.FuseCommand{Token: p.advance()}
	if p.at(lexer.UNQUOTED_IDENTIFIER, lexer.QUOTED_IDENTIFIER) {
		cmd.Type = p.parseIdentifier()
	}
	for {
		tok := p.cur()
		var config *ast.FuseConfiguration
		switch tok.Type {
		case lexer.SCORE:
			p.advance()
			p.expect(lexer.BY)
			config = &ast.FuseConfiguration{Token: tok, Kind: ast.FuseScoreBy, Fields: []*ast.QualifiedName{p.parseQualifiedName()}}
		case lexer.GROUP:
			p.advance()
			p.expect(lexer.BY)
			config = &ast.FuseConfiguration{Token: tok, Kind: ast.FuseGroupBy, Fields: []*ast.QualifiedName{p.parseQualifiedName()}}
		case lexer.KEY:
			p.advance()
			p.expect(lexer.BY)
			config = &ast.FuseConfiguration{Token: tok, Kind: ast.FuseKeyBy, Fields: p.parseQualifiedNames()}
		case lexer.WITH:
			p.advance()
			config = &ast.FuseConfiguration{Token: tok, Kind: ast.FuseWith, Options: p.parseMapExpression()}
		default:
			return cmd
		}
		cmd.Configurations = append(cmd.Configurations, config)
	}
}

// parseUriPartsCommand parses URI_PARTS prefix = expression.
func (p *Parser) parseUriPartsCommand() *ast.UriPartsCommand {
	cmd := &ast.UriPartsCommand{Token: p.advance()}
	cmd.Target = p.parseQualifiedName()
	p.expect(lexer.ASSIGN)
	cmd.Input = p.parsePrimaryExpression()
	return cmd
}
