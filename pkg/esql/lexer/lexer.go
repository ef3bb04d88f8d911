// Package lexer turns query text into tokens.
//
// The query language is context sensitive: the same word can be a keyword
// in one command and a field name in another, and index patterns, name
// patterns and embedded PromQL each have their own character classes. The
// lexer keeps a stack of frames, one per (possibly nested) pipeline, and
// each frame records which command owns it and which mode its arguments
// are lexed in.
package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

type mode int

const (
	modeCommand      mode = iota // expecting a command keyword
	modeExpression               // command arguments: expressions
	modeSource                   // index patterns (FROM, TS, JOIN targets)
	modeJoinPending              // after LOOKUP/LEFT/RIGHT, before JOIN
	modePattern                  // name patterns (KEEP, DROP, RENAME, ENRICH, INSIST)
	modeEnrichPolicy             // the policy name after ENRICH
	modePromqlParams             // PROMQL name=value parameters
	modePromqlBody               // inside the parenthesised PromQL query
)

var commandModes = map[TokenType]mode{
	FROM:     modeSource,
	TS:       modeSource,
	KEEP:     modePattern,
	DROP:     modePattern,
	RENAME:   modePattern,
	INSIST:   modePattern,
	ENRICH:   modeEnrichPolicy,
	LOOKUP:   modeJoinPending,
	LEFT:     modeJoinPending,
	RIGHT:    modeJoinPending,
	PROMQL:   modePromqlParams,
	INLINE:   modeCommand,
	EXPLAIN:  modeExpression,
	FORK:     modeExpression,
	EXTERNAL: modeExpression,
}

// frame is the lexing state of one pipeline. Nested frames are pushed by
// the '(' that opens a FORK branch, an EXPLAIN body or a FROM subquery and
// popped by the matching ')'.
type frame struct {
	mode    mode
	command TokenType
	parens  int
	nested  bool
	joined  bool // a JOIN keyword followed LOOKUP/LEFT/RIGHT
}

// Lexer represents the lexical analyzer
type Lexer struct {
	filename     string
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int
	column       int
	fold         cases.Caser
	frames       []frame
	lastType     TokenType
}

// New creates a new lexer instance
func New(input string) *Lexer {
	return NewWithFilename(input, "<input>")
}

// NewWithFilename creates a new lexer instance with a specific filename
func NewWithFilename(input string, filename string) *Lexer {
	l := &Lexer{
		filename: filename,
		input:    input,
		line:     1,
		fold:     cases.Fold(),
		frames:   []frame{{mode: modeCommand}},
		lastType: ILLEGAL,
	}
	l.readChar()
	return l
}

// Filename returns the name the lexer was created with.
func (l *Lexer) Filename() string {
	return l.filename
}

// Input returns the text being lexed.
func (l *Lexer) Input() string {
	return l.input
}

// Tokenize lexes the whole input. The returned slice always ends with EOF.
func (l *Lexer) Tokenize() []Token {
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens
		}
	}
}

// NextToken scans the input and returns the next token
func (l *Lexer) NextToken() Token {
	f := l.top()

	var tok Token
	if f.mode == modePromqlBody {
		tok = l.nextPromqlBodyToken()
	} else {
		l.skipWhitespace()
		start, line, col := l.position, l.line, l.column
		switch {
		case l.atEnd():
			tok = Token{Type: EOF, Span: Span{Start: len(l.input), End: len(l.input)}, Line: line, Column: col}
		case f.mode == modeSource || f.mode == modeJoinPending:
			tok = l.nextSourceToken(f, start, line, col)
		case f.mode == modePattern:
			tok = l.nextPatternToken(f, start, line, col)
		case f.mode == modeEnrichPolicy:
			tok = l.nextEnrichPolicyToken(start, line, col)
		case f.mode == modePromqlParams:
			tok = l.nextPromqlParamToken(start, line, col)
		default:
			tok = l.nextExpressionToken(f, start, line, col)
		}
	}

	l.transition(tok)
	l.lastType = tok.Type
	return tok
}

func (l *Lexer) top() *frame {
	return &l.frames[len(l.frames)-1]
}

// transition updates the frame stack after a token has been produced.
func (l *Lexer) transition(tok Token) {
	f := l.top()

	if f.mode == modePromqlBody {
		switch tok.Type {
		case LP:
			f.parens++
		case RP:
			f.parens--
			if f.parens == 0 {
				f.mode = modeExpression
			}
		}
		return
	}

	switch tok.Type {
	case EOF, ILLEGAL:
		return
	case PIPE:
		f.mode = modeCommand
		f.command = ILLEGAL
		f.parens = 0
		f.joined = false
		return
	case LP:
		switch {
		case f.mode == modePromqlParams:
			f.mode = modePromqlBody
			f.parens = 1
		case f.parens == 0 && opensPipeline(f):
			l.frames = append(l.frames, frame{mode: modeCommand, command: ILLEGAL, nested: true})
		default:
			f.parens++
		}
		return
	case RP:
		if f.parens == 0 && f.nested {
			l.frames = l.frames[:len(l.frames)-1]
			return
		}
		if f.parens > 0 {
			f.parens--
		}
		return
	case SEMICOLON:
		if f.command == SET {
			f.mode = modeCommand
			f.command = ILLEGAL
		}
		return
	}

	switch f.mode {
	case modeCommand:
		if IsCommand(tok.Type) {
			f.command = tok.Type
			if m, ok := commandModes[tok.Type]; ok {
				f.mode = m
			} else {
				f.mode = modeExpression
			}
			return
		}
		f.mode = modeExpression
	case modeJoinPending:
		f.joined = tok.Type == JOIN
		f.mode = modeSource
	case modeSource:
		if tok.Type == ON && isJoinCommand(f.command) {
			if f.joined {
				f.mode = modeExpression
			} else {
				f.mode = modePattern
			}
		}
	case modeEnrichPolicy:
		f.mode = modePattern
	}
}

func opensPipeline(f *frame) bool {
	switch f.command {
	case FORK, EXPLAIN:
		return f.mode == modeExpression
	case FROM, TS:
		return f.mode == modeSource
	}
	return false
}

func isJoinCommand(tt TokenType) bool {
	return tt == LOOKUP || tt == LEFT || tt == RIGHT
}

// readChar reads the next character and advances position.
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = len(l.input)
		l.readPosition = len(l.input)
		return
	}

	l.ch = l.input[l.readPosition]
	l.position = l.readPosition
	l.readPosition++

	if l.ch == '\n' {
		l.line++
		l.column = 0
	} else if l.ch < utf8.RuneSelf || l.ch >= 0xC0 {
		// continuation bytes of a multi-byte rune share its column
		l.column++
	}
}

// peekChar returns the next character without advancing position
func (l *Lexer) peekChar() byte {
	return l.peekCharN(1)
}

// peekCharN returns the character n positions ahead without advancing position
func (l *Lexer) peekCharN(n int) byte {
	pos := l.position + n
	if pos >= len(l.input) {
		return 0
	}
	return l.input[pos]
}

func (l *Lexer) atEnd() bool {
	return l.position >= len(l.input)
}

func (l *Lexer) token(tt TokenType, start, line, col int) Token {
	return Token{
		Type:    tt,
		Literal: l.input[start:l.position],
		Span:    Span{Start: start, End: l.position},
		Line:    line,
		Column:  col,
	}
}

// illegal builds an ILLEGAL token whose literal is the error message.
func (l *Lexer) illegal(message string, start, line, col int) Token {
	return Token{
		Type:    ILLEGAL,
		Literal: message,
		Span:    Span{Start: start, End: l.position},
		Line:    line,
		Column:  col,
	}
}

// skipWhitespace skips blanks, // line comments and nested /* */ comments.
func (l *Lexer) skipWhitespace() {
	for !l.atEnd() {
		switch {
		case isWhitespace(l.ch):
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for !l.atEnd() && l.ch != '\n' {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '*':
			l.skipBlockComment()
		default:
			return
		}
	}
}

func (l *Lexer) skipBlockComment() {
	depth := 0
	for !l.atEnd() {
		switch {
		case l.ch == '/' && l.peekChar() == '*':
			depth++
			l.readChar()
			l.readChar()
		case l.ch == '*' && l.peekChar() == '/':
			depth--
			l.readChar()
			l.readChar()
			if depth == 0 {
				return
			}
		default:
			l.readChar()
		}
	}
}

func (l *Lexer) nextExpressionToken(f *frame, start, line, col int) Token {
	switch {
	case isLetter(l.ch) || l.ch == '_' || l.ch == '@':
		word := l.readIdentifier()
		return l.token(l.lookupWord(f, word), start, line, col)
	case l.ch == '`':
		return l.readQuotedIdentifier(start, line, col)
	case isDigit(l.ch) || (l.ch == '.' && isDigit(l.peekChar()) && !l.afterOperand()):
		return l.readNumber(start, line, col)
	case l.ch == '"':
		return l.readString(start, line, col)
	case l.ch == '?':
		return l.readParam(start, line, col)
	}
	return l.readPunct(start, line, col)
}

// lookupWord classifies a bare word according to the current frame.
func (l *Lexer) lookupWord(f *frame, word string) TokenType {
	folded := l.fold.String(word)
	if f.mode == modeCommand {
		if tt, ok := commands[folded]; ok {
			return tt
		}
		return UNQUOTED_IDENTIFIER
	}
	if tt, ok := expressionKeywords[folded]; ok {
		return tt
	}
	if tt, ok := contextKeywords[f.command][folded]; ok {
		return tt
	}
	return UNQUOTED_IDENTIFIER
}

func (l *Lexer) afterOperand() bool {
	switch l.lastType {
	case UNQUOTED_IDENTIFIER, QUOTED_IDENTIFIER, RP, CLOSING_BRACKET,
		INTEGER_LITERAL, DECIMAL_LITERAL, PARAM, NAMED_OR_POSITIONAL_PARAM,
		DOUBLE_PARAMS, NAMED_OR_POSITIONAL_DOUBLE_PARAMS:
		return true
	}
	return false
}

// readIdentifier reads an identifier or keyword.
func (l *Lexer) readIdentifier() string {
	position := l.position
	l.readChar()
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readQuotedIdentifier reads a backquoted identifier; a doubled backquote
// stands for a literal one.
func (l *Lexer) readQuotedIdentifier(start, line, col int) Token {
	l.readChar()
	for {
		if l.atEnd() {
			return l.illegal("unterminated quoted identifier", start, line, col)
		}
		if l.ch == '`' {
			l.readChar()
			if l.ch == '`' {
				l.readChar()
				continue
			}
			return l.token(QUOTED_IDENTIFIER, start, line, col)
		}
		l.readChar()
	}
}

// readNumber reads an integer or decimal literal.
func (l *Lexer) readNumber(start, line, col int) Token {
	tt := INTEGER_LITERAL
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && l.peekChar() != '.' && !isLetter(l.peekChar()) {
		tt = DECIMAL_LITERAL
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peekCharN(2))) {
			tt = DECIMAL_LITERAL
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}
	return l.token(tt, start, line, col)
}

// readString reads a double-quoted string or a triple-quoted raw string.
// The literal keeps the quotes; the parser unescapes it.
func (l *Lexer) readString(start, line, col int) Token {
	if strings.HasPrefix(l.input[l.position:], `"""`) {
		l.readChar()
		l.readChar()
		l.readChar()
		for {
			if l.atEnd() {
				return l.illegal("unterminated string", start, line, col)
			}
			if strings.HasPrefix(l.input[l.position:], `"""`) {
				l.readChar()
				l.readChar()
				l.readChar()
				// """"a"""" closes with up to two extra quotes
				for i := 0; i < 2 && l.ch == '"'; i++ {
					l.readChar()
				}
				return l.token(QUOTED_STRING, start, line, col)
			}
			l.readChar()
		}
	}

	l.readChar()
	for {
		if l.atEnd() || l.ch == '\n' || l.ch == '\r' {
			return l.illegal("unterminated string", start, line, col)
		}
		switch l.ch {
		case '\\':
			l.readChar()
			if l.atEnd() {
				return l.illegal("unterminated string", start, line, col)
			}
			l.readChar()
		case '"':
			l.readChar()
			return l.token(QUOTED_STRING, start, line, col)
		default:
			l.readChar()
		}
	}
}

// readParam reads ?, ?name, ?1, ?? and ??name.
func (l *Lexer) readParam(start, line, col int) Token {
	tt := PARAM
	l.readChar()
	if l.ch == '?' {
		tt = DOUBLE_PARAMS
		l.readChar()
	}
	if isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
		if tt == PARAM {
			tt = NAMED_OR_POSITIONAL_PARAM
		} else {
			tt = NAMED_OR_POSITIONAL_DOUBLE_PARAMS
		}
	}
	return l.token(tt, start, line, col)
}

func (l *Lexer) readPunct(start, line, col int) Token {
	ch := l.ch
	l.readChar()

	var tt TokenType
	switch ch {
	case '|':
		tt = PIPE
	case ',':
		tt = COMMA
	case '.':
		tt = DOT
	case ';':
		tt = SEMICOLON
	case '(':
		tt = LP
	case ')':
		tt = RP
	case '[':
		tt = OPENING_BRACKET
	case ']':
		tt = CLOSING_BRACKET
	case '{':
		tt = LEFT_BRACES
	case '}':
		tt = RIGHT_BRACES
	case '+':
		tt = PLUS
	case '-':
		tt = MINUS
	case '*':
		tt = ASTERISK
	case '/':
		tt = SLASH
	case '%':
		tt = PERCENT
	case '=':
		tt = ASSIGN
		if l.ch == '=' {
			l.readChar()
			tt = EQ
		}
	case '!':
		if l.ch != '=' {
			return l.illegal("unexpected character '!'", start, line, col)
		}
		l.readChar()
		tt = NEQ
	case '<':
		tt = LT
		if l.ch == '=' {
			l.readChar()
			tt = LTE
		}
	case '>':
		tt = GT
		if l.ch == '=' {
			l.readChar()
			tt = GTE
		}
	case ':':
		tt = COLON
		if l.ch == ':' {
			l.readChar()
			tt = CAST_OP
		}
	default:
		r, size := utf8.DecodeRuneInString(l.input[start:])
		for l.position < start+size {
			l.readChar()
		}
		return l.illegal(fmt.Sprintf("unexpected character %s", strconv.QuoteRune(r)), start, line, col)
	}
	return l.token(tt, start, line, col)
}

func (l *Lexer) nextSourceToken(f *frame, start, line, col int) Token {
	switch {
	case l.ch == '"':
		return l.readString(start, line, col)
	case l.ch == '?':
		return l.readParam(start, line, col)
	case l.isSourceChar():
		for l.isSourceChar() {
			l.readChar()
		}
		folded := l.fold.String(l.input[start:l.position])
		if f.mode == modeJoinPending {
			if folded == "join" {
				return l.token(JOIN, start, line, col)
			}
			return l.token(UNQUOTED_SOURCE, start, line, col)
		}
		if tt, ok := contextKeywords[f.command][folded]; ok {
			return l.token(tt, start, line, col)
		}
		return l.token(UNQUOTED_SOURCE, start, line, col)
	}
	return l.readPunct(start, line, col)
}

func (l *Lexer) isSourceChar() bool {
	if l.atEnd() || isWhitespace(l.ch) {
		return false
	}
	switch l.ch {
	case ',', '|', ':', '"', '(', ')', '[', ']', '=', '?':
		return false
	case '/':
		next := l.peekChar()
		return next != '/' && next != '*'
	}
	return true
}

func (l *Lexer) nextPatternToken(f *frame, start, line, col int) Token {
	switch {
	case isLetter(l.ch) || l.ch == '_' || l.ch == '@' || l.ch == '*' || l.ch == '`':
		plain := true
		for {
			if l.ch == '`' {
				plain = false
				l.readChar()
				for {
					if l.atEnd() {
						return l.illegal("unterminated quoted identifier", start, line, col)
					}
					if l.ch == '`' {
						l.readChar()
						if l.ch != '`' {
							break
						}
					}
					l.readChar()
				}
				continue
			}
			if isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' || l.ch == '@' || l.ch == '*' {
				if l.ch == '*' {
					plain = false
				}
				l.readChar()
				continue
			}
			break
		}
		if plain {
			if tt, ok := contextKeywords[f.command][l.fold.String(l.input[start:l.position])]; ok {
				return l.token(tt, start, line, col)
			}
		}
		return l.token(ID_PATTERN, start, line, col)
	case l.ch == '?':
		return l.readParam(start, line, col)
	}
	return l.readPunct(start, line, col)
}

func (l *Lexer) nextEnrichPolicyToken(start, line, col int) Token {
	switch {
	case l.ch == '"':
		return l.readString(start, line, col)
	case l.ch == '?':
		return l.readParam(start, line, col)
	case isPolicyChar(l.ch):
		for !l.atEnd() && isPolicyChar(l.ch) {
			l.readChar()
		}
		return l.token(ENRICH_POLICY_NAME, start, line, col)
	}
	return l.readPunct(start, line, col)
}

func isPolicyChar(ch byte) bool {
	if isWhitespace(ch) || ch == 0 {
		return false
	}
	switch ch {
	case '\\', '/', '?', '"', '<', '>', '|', ',', '#', '(', ')':
		return false
	}
	return true
}

func (l *Lexer) nextPromqlParamToken(start, line, col int) Token {
	switch {
	case l.ch == '"':
		return l.readString(start, line, col)
	case l.ch == '`':
		return l.readQuotedIdentifier(start, line, col)
	case l.ch == '?':
		return l.readParam(start, line, col)
	case isPromqlParamChar(l.ch):
		for !l.atEnd() && isPromqlParamChar(l.ch) {
			l.readChar()
		}
		return l.token(PROMQL_UNQUOTED_IDENTIFIER, start, line, col)
	}
	return l.readPunct(start, line, col)
}

func isPromqlParamChar(ch byte) bool {
	if isWhitespace(ch) || ch == 0 {
		return false
	}
	switch ch {
	case '=', '(', ')', '|', '"', ',', '`', '?':
		return false
	}
	return true
}

// nextPromqlBodyToken lexes PromQL text. Whitespace is skipped because the
// parser reconstructs the text from spans; '#' starts a comment.
func (l *Lexer) nextPromqlBodyToken() Token {
	for !l.atEnd() && isWhitespace(l.ch) {
		l.readChar()
	}
	start, line, col := l.position, l.line, l.column
	if l.atEnd() {
		return Token{Type: EOF, Span: Span{Start: len(l.input), End: len(l.input)}, Line: line, Column: col}
	}

	switch {
	case l.ch == '#':
		for !l.atEnd() && l.ch != '\n' {
			l.readChar()
		}
		return l.token(PROMQL_COMMENT, start, line, col)
	case l.ch == '"' || l.ch == '\'':
		return l.readPromqlString(start, line, col)
	case l.ch == '`':
		l.readChar()
		for !l.atEnd() && l.ch != '`' {
			l.readChar()
		}
		if l.atEnd() {
			return l.illegal("unterminated string", start, line, col)
		}
		l.readChar()
		return l.token(QUOTED_STRING, start, line, col)
	case isDigit(l.ch) || (l.ch == '.' && isDigit(l.peekChar())):
		for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' || l.ch == '.' ||
			((l.ch == '+' || l.ch == '-') && (l.input[l.position-1] == 'e' || l.input[l.position-1] == 'E')) {
			l.readChar()
		}
		return l.token(classifyPromqlNumber(l.input[start:l.position]), start, line, col)
	case isLetter(l.ch) || l.ch == '_' || l.ch == ':':
		for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' || l.ch == ':' || l.ch == '.' {
			l.readChar()
		}
		return l.token(PROMQL_UNQUOTED_IDENTIFIER, start, line, col)
	}

	ch := l.ch
	l.readChar()
	switch ch {
	case '(':
		return l.token(LP, start, line, col)
	case ')':
		return l.token(RP, start, line, col)
	case ',':
		return l.token(COMMA, start, line, col)
	case '[':
		return l.token(OPENING_BRACKET, start, line, col)
	case ']':
		return l.token(CLOSING_BRACKET, start, line, col)
	case '{':
		return l.token(LEFT_BRACES, start, line, col)
	case '}':
		return l.token(RIGHT_BRACES, start, line, col)
	case '+':
		return l.token(PLUS, start, line, col)
	case '-':
		return l.token(MINUS, start, line, col)
	case '*':
		return l.token(ASTERISK, start, line, col)
	case '/':
		return l.token(SLASH, start, line, col)
	case '%':
		return l.token(PERCENT, start, line, col)
	case '=':
		switch l.ch {
		case '~':
			l.readChar()
			return l.token(PROMQL_OTHER, start, line, col)
		case '=':
			l.readChar()
			return l.token(EQ, start, line, col)
		}
		return l.token(ASSIGN, start, line, col)
	case '!':
		switch l.ch {
		case '~':
			l.readChar()
			return l.token(PROMQL_OTHER, start, line, col)
		case '=':
			l.readChar()
			return l.token(NEQ, start, line, col)
		}
	case '<':
		if l.ch == '=' {
			l.readChar()
			return l.token(LTE, start, line, col)
		}
		return l.token(LT, start, line, col)
	case '>':
		if l.ch == '=' {
			l.readChar()
			return l.token(GTE, start, line, col)
		}
		return l.token(GT, start, line, col)
	}

	_, size := utf8.DecodeRuneInString(l.input[start:])
	for l.position < start+size {
		l.readChar()
	}
	return l.token(PROMQL_OTHER, start, line, col)
}

func (l *Lexer) readPromqlString(start, line, col int) Token {
	quote := l.ch
	l.readChar()
	for {
		if l.atEnd() || l.ch == '\n' {
			return l.illegal("unterminated string", start, line, col)
		}
		switch l.ch {
		case '\\':
			l.readChar()
			if l.atEnd() {
				return l.illegal("unterminated string", start, line, col)
			}
			l.readChar()
		case quote:
			l.readChar()
			return l.token(QUOTED_STRING, start, line, col)
		default:
			l.readChar()
		}
	}
}

func classifyPromqlNumber(s string) TokenType {
	if _, err := strconv.ParseUint(s, 10, 64); err == nil {
		return INTEGER_LITERAL
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return DECIMAL_LITERAL
	}
	// durations such as 5m or 1h30m
	return PROMQL_UNQUOTED_IDENTIFIER
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}
