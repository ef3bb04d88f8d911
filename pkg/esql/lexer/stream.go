package lexer

// Stream is a materialised token sequence with a cursor. It supports
// arbitrary lookahead and cheap mark/reset, which the parser uses at the
// few points where the grammar needs to backtrack.
//
// Reading past the end keeps returning the final EOF token.
type Stream struct {
	tokens []Token
	pos    int
	source string
}

// NewStream creates a stream over tokens. source is the text the tokens
// were produced from; it may be empty when the text is not available. An
// EOF token is appended if the sequence does not already end with one.
func NewStream(tokens []Token, source string) *Stream {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != EOF {
		end := len(source)
		line, col := 1, 0
		if len(tokens) > 0 {
			last := tokens[len(tokens)-1]
			if last.Span.End > end {
				end = last.Span.End
			}
			line, col = last.Line, last.Column+len(last.Literal)
		}
		tokens = append(tokens[:len(tokens):len(tokens)], Token{
			Type:   EOF,
			Span:   Span{Start: end, End: end},
			Line:   line,
			Column: col,
		})
	}
	return &Stream{tokens: tokens, source: source}
}

// StreamString lexes input and returns a stream over the result.
func StreamString(input string) *Stream {
	return NewStream(New(input).Tokenize(), input)
}

// Current returns the token under the cursor.
func (s *Stream) Current() Token {
	return s.tokens[s.pos]
}

// Lookahead returns the token k positions after the cursor; Lookahead(0)
// is the current token.
func (s *Stream) Lookahead(k int) Token {
	i := s.pos + k
	if i < 0 {
		i = 0
	}
	if i >= len(s.tokens) {
		i = len(s.tokens) - 1
	}
	return s.tokens[i]
}

// Advance consumes the current token and returns it.
func (s *Stream) Advance() Token {
	tok := s.tokens[s.pos]
	if s.pos < len(s.tokens)-1 {
		s.pos++
	}
	return tok
}

// Mark returns a checkpoint that Reset can return to.
func (s *Stream) Mark() int {
	return s.pos
}

// Reset moves the cursor back to a checkpoint taken with Mark.
func (s *Stream) Reset(mark int) {
	switch {
	case mark < 0:
		s.pos = 0
	case mark >= len(s.tokens):
		s.pos = len(s.tokens) - 1
	default:
		s.pos = mark
	}
}

// Source returns the text the tokens were lexed from.
func (s *Stream) Source() string {
	return s.source
}

// Len returns the number of tokens, including the final EOF.
func (s *Stream) Len() int {
	return len(s.tokens)
}
