// Package esql provides a public API for parsing piped queries.
//
// It wraps the lexer and parser with the ambient concerns an embedding
// program needs: a logrus logger, Prometheus parse metrics and settings
// loaded from a config file.
package esql

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sambeau/esql/config"
	"github.com/sambeau/esql/pkg/esql/ast"
	perrors "github.com/sambeau/esql/pkg/esql/errors"
	"github.com/sambeau/esql/pkg/esql/lexer"
	"github.com/sambeau/esql/pkg/esql/parser"
)

// Option configures a Parse or Check call.
type Option func(*options)

type options struct {
	devMode  bool
	maxDepth int
	filename string
	logger   logrus.FieldLogger
	metrics  *Metrics
}

// WithDevMode enables grammar that is still under development.
func WithDevMode(enabled bool) Option {
	return func(o *options) { o.devMode = enabled }
}

// WithMaxDepth sets the nesting limit. Values below 1 select the parser default.
func WithMaxDepth(depth int) Option {
	return func(o *options) { o.maxDepth = depth }
}

// WithFilename names the input in error messages.
func WithFilename(name string) Option {
	return func(o *options) { o.filename = name }
}

// WithLogger sets the logger handed to the parser.
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) { o.logger = log }
}

// WithMetrics records every parse in m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// FromConfig returns the options described by cfg's parser section.
func FromConfig(cfg *config.Config) []Option {
	return []Option{
		WithDevMode(cfg.Parser.DevMode),
		WithMaxDepth(cfg.Parser.MaxDepth),
	}
}

// Parse lexes and parses query. On failure the error is an
// *errors.EsqlError and the returned tree is nil.
func Parse(query string, opts ...Option) (*ast.Statements, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	lex := lexer.NewWithFilename(query, o.filename)
	stream := lexer.NewStream(lex.Tokenize(), query)

	popts := []parser.Option{
		parser.WithDevMode(o.devMode),
		parser.WithMaxDepth(o.maxDepth),
		parser.WithFilename(o.filename),
	}
	if o.logger != nil {
		popts = append(popts, parser.WithLogger(o.logger))
	}

	start := time.Now()
	stmts, err := parser.New(stream, popts...).ParseStatements()
	if o.metrics != nil {
		o.metrics.observe(err, time.Since(start), stream.Len())
	}
	if err != nil {
		return nil, err
	}
	return stmts, nil
}

// Check parses query and discards the tree.
func Check(query string, opts ...Option) error {
	_, err := Parse(query, opts...)
	return err
}

// errorClass returns the metric label for err.
func errorClass(err error) string {
	if e, ok := perrors.As(err); ok {
		return string(e.Class)
	}
	return "unknown"
}
