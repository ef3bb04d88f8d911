// Package parser implements a recursive descent parser for piped queries.
//
// The parser consumes a TokenStream and produces an *ast.Statements. It
// stops at the first error; the error is an *errors.EsqlError carrying the
// offending token, its span and the token kinds that would have been
// accepted. No partial tree is returned.
//
// Grammar alternatives that are still under development are only
// attempted when the parser is created WithDevMode(true).
package parser

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sambeau/esql/pkg/esql/ast"
	perrors "github.com/sambeau/esql/pkg/esql/errors"
	"github.com/sambeau/esql/pkg/esql/lexer"
)

// DefaultMaxDepth bounds how deeply expressions and sub-pipelines may nest.
const DefaultMaxDepth = 500

// TokenStream is the token source the parser reads from.
type TokenStream interface {
	Current() lexer.Token
	Lookahead(k int) lexer.Token
	Advance() lexer.Token
	Mark() int
	Reset(mark int)
}

// sourced is implemented by streams that can return the text they were
// lexed from. PROMQL capture uses it to reproduce the original query text.
type sourced interface {
	Source() string
}

var nopLogger = newNopLogger()

func newNopLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Option configures a Parser.
type Option func(*Parser)

// WithDevMode enables grammar that is still under development.
func WithDevMode(enabled bool) Option {
	return func(p *Parser) { p.devMode = enabled }
}

// WithMaxDepth sets the nesting limit. Values below 1 select DefaultMaxDepth.
func WithMaxDepth(depth int) Option {
	return func(p *Parser) {
		if depth < 1 {
			depth = DefaultMaxDepth
		}
		p.maxDepth = depth
	}
}

// WithLogger sets the logger for parse tracing.
func WithLogger(log logrus.FieldLogger) Option {
	return func(p *Parser) {
		if log != nil {
			p.log = log
		}
	}
}

// WithFilename names the input in error messages.
func WithFilename(name string) Option {
	return func(p *Parser) { p.filename = name }
}

// Parser represents the parser
type Parser struct {
	s        TokenStream
	devMode  bool
	maxDepth int
	filename string
	log      logrus.FieldLogger

	depth        int
	depthReached int
	rewinds      int
}

// New creates a new parser instance
func New(s TokenStream, opts ...Option) *Parser {
	p := &Parser{
		s:        s,
		maxDepth: DefaultMaxDepth,
		log:      nopLogger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse lexes and parses input.
func Parse(input string, opts ...Option) (*ast.Statements, error) {
	return New(lexer.StreamString(input), opts...).ParseStatements()
}

// DevMode reports whether development grammar is enabled.
func (p *Parser) DevMode() bool {
	return p.devMode
}

// DepthReached returns the deepest nesting seen during the last parse.
func (p *Parser) DepthReached() int {
	return p.depthReached
}

// Rewinds returns how many speculative parses were abandoned.
func (p *Parser) Rewinds() int {
	return p.rewinds
}

// ParseStatements parses SET commands followed by one query and EOF.
func (p *Parser) ParseStatements() (stmts *ast.Statements, err error) {
	start := time.Now()
	defer p.recover(&err)

	result := &ast.Statements{}
	for p.at(lexer.SET) {
		result.Sets = append(result.Sets, p.parseSetCommand())
	}
	result.Query = p.parseQuery()
	p.expectEnd()

	p.log.WithFields(logrus.Fields{
		"commands": len(ast.Commands(result.Query)),
		"sets":     len(result.Sets),
		"depth":    p.depthReached,
		"rewinds":  p.rewinds,
		"elapsed":  time.Since(start),
	}).Debug("parsed query")
	return result, nil
}

// bailout carries the first error up to ParseStatements.
type bailout struct {
	err *perrors.EsqlError
}

func (p *Parser) fail(err *perrors.EsqlError) {
	panic(bailout{err})
}

func (p *Parser) recover(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	b, ok := r.(bailout)
	if !ok {
		panic(r)
	}
	e := b.err
	if p.filename != "" {
		e = e.WithFile(p.filename)
	}
	p.log.WithFields(logrus.Fields{
		"code":   e.Code,
		"line":   e.Line,
		"column": e.Column,
	}).Debug("parse failed")
	*errp = e
}

// ============================================================================
// Token helpers
// ============================================================================

func (p *Parser) cur() lexer.Token {
	return p.s.Current()
}

func (p *Parser) peek(k int) lexer.Token {
	return p.s.Lookahead(k)
}

func (p *Parser) advance() lexer.Token {
	return p.s.Advance()
}

func (p *Parser) at(types ...lexer.TokenType) bool {
	return p.cur().Is(types...)
}

// expect consumes a token of type t or fails.
func (p *Parser) expect(t lexer.TokenType) lexer.Token {
	if !p.at(t) {
		p.unexpected(t.Display())
	}
	return p.advance()
}

// expectClosing consumes the token that ends a comma-separated list.
func (p *Parser) expectClosing(t lexer.TokenType) lexer.Token {
	if !p.at(t) {
		p.unexpected(lexer.COMMA.Display(), t.Display())
	}
	return p.advance()
}

// atCommandEnd reports whether the current command has no more arguments.
func (p *Parser) atCommandEnd() bool {
	return p.at(lexer.PIPE, lexer.EOF, lexer.RP)
}

// ============================================================================
// Errors
// ============================================================================

func (p *Parser) errorAt(tok lexer.Token, code string, data map[string]any) *perrors.EsqlError {
	e := perrors.NewWithPosition(code, tok.Line, tok.Column, data)
	e.Offset = tok.Span.Start
	e.End = tok.Span.End
	e.Token = tok.Literal
	return e
}

// unexpected fails on the current token, listing what would have been
// accepted instead.
func (p *Parser) unexpected(expected ...string) {
	tok := p.cur()
	switch tok.Type {
	case lexer.ILLEGAL:
		// ILLEGAL tokens already contain a descriptive error message
		p.fail(p.errorAt(tok, "SYNTAX-0007", map[string]any{"Message": tok.Literal}))
	case lexer.EOF:
		e := p.errorAt(tok, "EOF-0001", map[string]any{"Expected": perrors.JoinExpected(expected)})
		e.Expected = expected
		p.fail(e)
	}
	e := p.errorAt(tok, "SYNTAX-0001", map[string]any{
		"Expected": perrors.JoinExpected(expected),
		"Got":      tok.Literal,
	})
	e.Expected = expected
	p.fail(e)
}

func (p *Parser) featureDisabled(tok lexer.Token, feature string) {
	p.fail(p.errorAt(tok, "FEATURE-0001", map[string]any{"Feature": feature}))
}

func (p *Parser) expectEnd() {
	tok := p.cur()
	switch tok.Type {
	case lexer.EOF:
		return
	case lexer.ILLEGAL:
		p.unexpected()
	}
	e := p.errorAt(tok, "SYNTAX-0002", map[string]any{"Got": tok.Literal})
	e.Expected = []string{lexer.PIPE.Display(), lexer.EOF.Display()}
	p.fail(e)
}

// ============================================================================
// Nesting
// ============================================================================

// enter records one level of nesting and fails once the limit is passed.
// Every call must be paired with a deferred leave.
func (p *Parser) enter() {
	p.depth++
	if p.depth > p.depthReached {
		p.depthReached = p.depth
	}
	if p.depth > p.maxDepth {
		p.fail(p.errorAt(p.cur(), "LIMIT-0001", map[string]any{"Max": p.maxDepth}))
	}
}

func (p *Parser) leave() {
	p.depth--
}

// ============================================================================
// Checkpoints
// ============================================================================

type checkpoint struct {
	mark  int
	depth int
}

func (p *Parser) mark() checkpoint {
	return checkpoint{mark: p.s.Mark(), depth: p.depth}
}

func (p *Parser) reset(cp checkpoint) {
	p.s.Reset(cp.mark)
	p.depth = cp.depth
}

// speculate runs fn from the current position. If fn fails the stream is
// rewound, the error is dropped and speculate returns false.
func (p *Parser) speculate(fn func()) (ok bool) {
	cp := p.mark()
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if _, isBailout := r.(bailout); !isBailout {
			panic(r)
		}
		p.rewind(cp)
		ok = false
	}()
	fn()
	return true
}

// rewind resets to a checkpoint after an abandoned alternative.
func (p *Parser) rewind(cp checkpoint) {
	p.rewinds++
	p.log.WithField("offset", p.cur().Span.Start).Trace("rewinding speculative parse")
	p.reset(cp)
}
