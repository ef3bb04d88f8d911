package lexer

import (
	"fmt"
	"sort"
	"strings"
)

// TokenType represents different types of tokens
type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF

	// Identifiers and literals
	UNQUOTED_IDENTIFIER               // foo, _bar, @timestamp
	QUOTED_IDENTIFIER                 // `foo bar`
	QUOTED_STRING                     // "text", """raw"""
	INTEGER_LITERAL                   // 42
	DECIMAL_LITERAL                   // 4.2, .5, 1e10
	UNQUOTED_SOURCE                   // logs-*, remote_cluster, 2024.01.*
	ID_PATTERN                        // emp_*, `first name`*
	ENRICH_POLICY_NAME                // my-policy, _remote:my-policy
	PARAM                             // ?
	NAMED_OR_POSITIONAL_PARAM         // ?name, ?1
	DOUBLE_PARAMS                     // ??
	NAMED_OR_POSITIONAL_DOUBLE_PARAMS // ??name, ??1

	// PromQL body content
	PROMQL_UNQUOTED_IDENTIFIER // http_requests_total, 5m, step
	PROMQL_COMMENT             // # comment
	PROMQL_OTHER               // =~ !~ ^ @ and anything else PromQL uses

	// Operators and punctuation
	PIPE            // |
	COMMA           // ,
	DOT             // .
	COLON           // :
	CAST_OP         // ::
	SEMICOLON       // ;
	ASSIGN          // =
	EQ              // ==
	NEQ             // !=
	LT              // <
	LTE             // <=
	GT              // >
	GTE             // >=
	PLUS            // +
	MINUS           // -
	ASTERISK        // *
	SLASH           // /
	PERCENT         // %
	LP              // (
	RP              // )
	OPENING_BRACKET // [
	CLOSING_BRACKET // ]
	LEFT_BRACES     // {
	RIGHT_BRACES    // }

	// Expression keywords
	AND
	OR
	NOT
	IN
	IS
	NULL
	LIKE
	RLIKE
	TRUE
	FALSE

	// Context keywords, only recognised inside the commands that use them
	ASC
	DESC
	NULLS
	FIRST
	LAST
	BY
	ON
	WITH
	AS
	METADATA
	INFO
	JOIN
	SCORE
	KEY
	GROUP

	// Command keywords
	FROM
	ROW
	SHOW
	TS
	PROMQL
	EXPLAIN
	EXTERNAL
	EVAL
	WHERE
	KEEP
	LIMIT
	STATS
	SORT
	DROP
	RENAME
	DISSECT
	GROK
	ENRICH
	MV_EXPAND
	LOOKUP
	LEFT
	RIGHT
	CHANGE_POINT
	COMPLETION
	SAMPLE
	FORK
	RERANK
	INLINE
	INLINESTATS
	FUSE
	URI_PARTS
	METRICS_INFO
	INSIST
	MMR
	SET

	tokenTypeCount
)

var tokenNames = [...]string{
	ILLEGAL:                           "ILLEGAL",
	EOF:                               "EOF",
	UNQUOTED_IDENTIFIER:               "UNQUOTED_IDENTIFIER",
	QUOTED_IDENTIFIER:                 "QUOTED_IDENTIFIER",
	QUOTED_STRING:                     "QUOTED_STRING",
	INTEGER_LITERAL:                   "INTEGER_LITERAL",
	DECIMAL_LITERAL:                   "DECIMAL_LITERAL",
	UNQUOTED_SOURCE:                   "UNQUOTED_SOURCE",
	ID_PATTERN:                        "ID_PATTERN",
	ENRICH_POLICY_NAME:                "ENRICH_POLICY_NAME",
	PARAM:                             "PARAM",
	NAMED_OR_POSITIONAL_PARAM:         "NAMED_OR_POSITIONAL_PARAM",
	DOUBLE_PARAMS:                     "DOUBLE_PARAMS",
	NAMED_OR_POSITIONAL_DOUBLE_PARAMS: "NAMED_OR_POSITIONAL_DOUBLE_PARAMS",
	PROMQL_UNQUOTED_IDENTIFIER:        "PROMQL_UNQUOTED_IDENTIFIER",
	PROMQL_COMMENT:                    "PROMQL_COMMENT",
	PROMQL_OTHER:                      "PROMQL_OTHER",
	PIPE:                              "PIPE",
	COMMA:                             "COMMA",
	DOT:                               "DOT",
	COLON:                             "COLON",
	CAST_OP:                           "CAST_OP",
	SEMICOLON:                         "SEMICOLON",
	ASSIGN:                            "ASSIGN",
	EQ:                                "EQ",
	NEQ:                               "NEQ",
	LT:                                "LT",
	LTE:                               "LTE",
	GT:                                "GT",
	GTE:                               "GTE",
	PLUS:                              "PLUS",
	MINUS:                             "MINUS",
	ASTERISK:                          "ASTERISK",
	SLASH:                             "SLASH",
	PERCENT:                           "PERCENT",
	LP:                                "LP",
	RP:                                "RP",
	OPENING_BRACKET:                   "OPENING_BRACKET",
	CLOSING_BRACKET:                   "CLOSING_BRACKET",
	LEFT_BRACES:                       "LEFT_BRACES",
	RIGHT_BRACES:                      "RIGHT_BRACES",
	AND:                               "AND",
	OR:                                "OR",
	NOT:                               "NOT",
	IN:                                "IN",
	IS:                                "IS",
	NULL:                              "NULL",
	LIKE:                              "LIKE",
	RLIKE:                             "RLIKE",
	TRUE:                              "TRUE",
	FALSE:                             "FALSE",
	ASC:                               "ASC",
	DESC:                              "DESC",
	NULLS:                             "NULLS",
	FIRST:                             "FIRST",
	LAST:                              "LAST",
	BY:                                "BY",
	ON:                                "ON",
	WITH:                              "WITH",
	AS:                                "AS",
	METADATA:                          "METADATA",
	INFO:                              "INFO",
	JOIN:                              "JOIN",
	SCORE:                             "SCORE",
	KEY:                               "KEY",
	GROUP:                             "GROUP",
	FROM:                              "FROM",
	ROW:                               "ROW",
	SHOW:                              "SHOW",
	TS:                                "TS",
	PROMQL:                            "PROMQL",
	EXPLAIN:                           "EXPLAIN",
	EXTERNAL:                          "EXTERNAL",
	EVAL:                              "EVAL",
	WHERE:                             "WHERE",
	KEEP:                              "KEEP",
	LIMIT:                             "LIMIT",
	STATS:                             "STATS",
	SORT:                              "SORT",
	DROP:                              "DROP",
	RENAME:                            "RENAME",
	DISSECT:                           "DISSECT",
	GROK:                              "GROK",
	ENRICH:                            "ENRICH",
	MV_EXPAND:                         "MV_EXPAND",
	LOOKUP:                            "LOOKUP",
	LEFT:                              "LEFT",
	RIGHT:                             "RIGHT",
	CHANGE_POINT:                      "CHANGE_POINT",
	COMPLETION:                        "COMPLETION",
	SAMPLE:                            "SAMPLE",
	FORK:                              "FORK",
	RERANK:                            "RERANK",
	INLINE:                            "INLINE",
	INLINESTATS:                       "INLINESTATS",
	FUSE:                              "FUSE",
	URI_PARTS:                         "URI_PARTS",
	METRICS_INFO:                      "METRICS_INFO",
	INSIST:                            "INSIST",
	MMR:                               "MMR",
	SET:                               "SET",
}

// String returns a string representation of the token type
func (tt TokenType) String() string {
	if tt >= 0 && tt < tokenTypeCount {
		return tokenNames[tt]
	}
	return "UNKNOWN"
}

var symbols = map[TokenType]string{
	PIPE:            "|",
	COMMA:           ",",
	DOT:             ".",
	COLON:           ":",
	CAST_OP:         "::",
	SEMICOLON:       ";",
	ASSIGN:          "=",
	EQ:              "==",
	NEQ:             "!=",
	LT:              "<",
	LTE:             "<=",
	GT:              ">",
	GTE:             ">=",
	PLUS:            "+",
	MINUS:           "-",
	ASTERISK:        "*",
	SLASH:           "/",
	PERCENT:         "%",
	LP:              "(",
	RP:              ")",
	OPENING_BRACKET: "[",
	CLOSING_BRACKET: "]",
	LEFT_BRACES:     "{",
	RIGHT_BRACES:    "}",
}

var literalDescriptions = map[TokenType]string{
	EOF:                               "end of query",
	UNQUOTED_IDENTIFIER:               "identifier",
	QUOTED_IDENTIFIER:                 "quoted identifier",
	QUOTED_STRING:                     "string",
	INTEGER_LITERAL:                   "integer",
	DECIMAL_LITERAL:                   "decimal",
	UNQUOTED_SOURCE:                   "index pattern",
	ID_PATTERN:                        "name pattern",
	ENRICH_POLICY_NAME:                "policy name",
	PARAM:                             "parameter",
	NAMED_OR_POSITIONAL_PARAM:         "parameter",
	DOUBLE_PARAMS:                     "identifier parameter",
	NAMED_OR_POSITIONAL_DOUBLE_PARAMS: "identifier parameter",
	PROMQL_UNQUOTED_IDENTIFIER:        "PromQL identifier",
	PROMQL_COMMENT:                    "PromQL comment",
	PROMQL_OTHER:                      "PromQL operator",
}

// Display returns the form of a token type used in error messages:
// quoted symbols for punctuation, descriptions for literals, and the
// upper-case spelling for keywords.
func (tt TokenType) Display() string {
	if s, ok := symbols[tt]; ok {
		return "'" + s + "'"
	}
	if d, ok := literalDescriptions[tt]; ok {
		return d
	}
	return tt.String()
}

// Span is a half-open byte range [Start, End) into the query text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Cover returns the smallest span containing both s and other.
func (s Span) Cover(other Span) Span {
	out := s
	if other.Start < out.Start {
		out.Start = other.Start
	}
	if other.End > out.End {
		out.End = other.End
	}
	return out
}

// Token represents a single token
type Token struct {
	Type    TokenType
	Literal string
	Span    Span
	Line    int
	Column  int
}

// String returns a string representation of the token
func (t Token) String() string {
	return fmt.Sprintf("{Type: %s, Literal: %s, Line: %d, Column: %d}",
		t.Type.String(), t.Literal, t.Line, t.Column)
}

// Is reports whether the token has one of the given types.
func (t Token) Is(types ...TokenType) bool {
	for _, tt := range types {
		if t.Type == tt {
			return true
		}
	}
	return false
}

// commands maps folded command words to their token types.
var commands = map[string]TokenType{
	"from":         FROM,
	"row":          ROW,
	"show":         SHOW,
	"ts":           TS,
	"promql":       PROMQL,
	"explain":      EXPLAIN,
	"external":     EXTERNAL,
	"eval":         EVAL,
	"where":        WHERE,
	"keep":         KEEP,
	"limit":        LIMIT,
	"stats":        STATS,
	"sort":         SORT,
	"drop":         DROP,
	"rename":       RENAME,
	"dissect":      DISSECT,
	"grok":         GROK,
	"enrich":       ENRICH,
	"mv_expand":    MV_EXPAND,
	"lookup":       LOOKUP,
	"left":         LEFT,
	"right":        RIGHT,
	"change_point": CHANGE_POINT,
	"completion":   COMPLETION,
	"sample":       SAMPLE,
	"fork":         FORK,
	"rerank":       RERANK,
	"inline":       INLINE,
	"inlinestats":  INLINESTATS,
	"fuse":         FUSE,
	"uri_parts":    URI_PARTS,
	"metrics_info": METRICS_INFO,
	"insist":       INSIST,
	"mmr":          MMR,
	"set":          SET,
}

// expressionKeywords are reserved in every expression context.
var expressionKeywords = map[string]TokenType{
	"and":   AND,
	"or":    OR,
	"not":   NOT,
	"in":    IN,
	"is":    IS,
	"null":  NULL,
	"like":  LIKE,
	"rlike": RLIKE,
	"true":  TRUE,
	"false": FALSE,
}

// contextKeywords lists the extra words a command reserves while its
// arguments are being lexed.
var contextKeywords = map[TokenType]map[string]TokenType{
	STATS:        {"by": BY, "where": WHERE},
	INLINESTATS:  {"by": BY, "where": WHERE},
	SORT:         {"asc": ASC, "desc": DESC, "nulls": NULLS, "first": FIRST, "last": LAST},
	FUSE:         {"score": SCORE, "key": KEY, "group": GROUP, "by": BY, "with": WITH},
	CHANGE_POINT: {"on": ON, "as": AS},
	RERANK:       {"on": ON, "with": WITH},
	COMPLETION:   {"with": WITH},
	MMR:          {"on": ON, "limit": LIMIT, "with": WITH},
	EXTERNAL:     {"with": WITH},
	SHOW:         {"info": INFO},
	FROM:         {"metadata": METADATA},
	TS:           {"metadata": METADATA},
	LOOKUP:       {"on": ON, "as": AS},
	LEFT:         {"on": ON, "as": AS},
	RIGHT:        {"on": ON, "as": AS},
	RENAME:       {"as": AS},
	ENRICH:       {"on": ON, "with": WITH},
}

// IsCommand reports whether tt is a command keyword.
func IsCommand(tt TokenType) bool {
	return tt >= FROM && tt <= SET
}

// IsKeyword reports whether tt is any reserved word.
func IsKeyword(tt TokenType) bool {
	return tt >= AND && tt < tokenTypeCount
}

// LookupCommand returns the command token type for a word, ignoring case.
func LookupCommand(word string) (TokenType, bool) {
	tt, ok := commands[strings.ToLower(word)]
	return tt, ok
}

// CommandNames returns the upper-case spellings of all command keywords,
// sorted alphabetically.
func CommandNames() []string {
	names := make([]string, 0, len(commands))
	for word := range commands {
		names = append(names, strings.ToUpper(word))
	}
	sort.Strings(names)
	return names
}
