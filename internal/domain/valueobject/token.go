package valueobject

import (
	"fmt"
	"strings"
)

// Token is one semantic leaf of a syntax tree together with the trivia
// attached to it. StartByte and EndByte address the token text in the
// source the token was derived from; they are not updated by edits.
type Token struct {
	Index           int      `json:"index"`
	Text            string   `json:"text"`
	NodeType        string   `json:"nodeType"`
	StartByte       uint32   `json:"startByte"`
	EndByte         uint32   `json:"endByte"`
	StartPos        Position `json:"startPos"`
	EndPos          Position `json:"endPos"`
	Leading         Trivia   `json:"-"`
	Trailing        Trivia   `json:"-"`
	InStringLiteral bool     `json:"inStringLiteral,omitempty"`
}

// ByteLength returns the token text length in bytes.
func (t Token) ByteLength() uint32 {
	return ClampToUint32(len(t.Text))
}

// TokenStream is the full ordered token sequence of one source file.
// Rendering the stream reproduces the file byte for byte. All edit
// operations are pure and return a new stream.
type TokenStream struct {
	tokens []Token
}

// NewTokenStream builds a stream from already-derived tokens. Indices are
// assigned here, starting at 1.
func NewTokenStream(tokens []Token) *TokenStream {
	owned := make([]Token, len(tokens))
	copy(owned, tokens)
	for i := range owned {
		owned[i].Index = i + 1
	}
	return &TokenStream{tokens: owned}
}

// Len returns the number of tokens in the stream.
func (s *TokenStream) Len() int {
	return len(s.tokens)
}

// Tokens returns a copy of the token slice.
func (s *TokenStream) Tokens() []Token {
	out := make([]Token, len(s.tokens))
	copy(out, s.tokens)
	return out
}

// At returns the token with the given 1-based index.
func (s *TokenStream) At(index int) (Token, bool) {
	if index < 1 || index > len(s.tokens) {
		return Token{}, false
	}
	return s.tokens[index-1], true
}

// FirstInByteRange returns the first token whose text lies entirely inside
// [start, end).
func (s *TokenStream) FirstInByteRange(start, end uint32) (Token, bool) {
	for _, tok := range s.tokens {
		if tok.StartByte >= start && tok.EndByte <= end {
			return tok, true
		}
		if tok.StartByte >= end {
			break
		}
	}
	return Token{}, false
}

// Render concatenates leading trivia, token text and trailing trivia for
// every token in order.
func (s *TokenStream) Render() string {
	var b strings.Builder
	for _, tok := range s.tokens {
		b.WriteString(tok.Leading.Text())
		b.WriteString(tok.Text)
		b.WriteString(tok.Trailing.Text())
	}
	return b.String()
}

// WithTokenText returns a stream where the indexed token carries new text.
// Leading and trailing trivia are spliced around the replacement unchanged.
func (s *TokenStream) WithTokenText(index int, text string) (*TokenStream, error) {
	if index < 1 || index > len(s.tokens) {
		return nil, fmt.Errorf("token index %d out of range [1, %d]", index, len(s.tokens))
	}
	out := s.clone()
	out.tokens[index-1].Text = text
	return out, nil
}

// WithoutTokenText returns the indexed token's text and a stream where that
// text is removed. The token slot and both trivia runs stay in place, so
// surrounding layout is untouched.
func (s *TokenStream) WithoutTokenText(index int) (string, *TokenStream, error) {
	if index < 1 || index > len(s.tokens) {
		return "", nil, fmt.Errorf("token index %d out of range [1, %d]", index, len(s.tokens))
	}
	out := s.clone()
	deleted := out.tokens[index-1].Text
	out.tokens[index-1].Text = ""
	return deleted, out, nil
}

// WithLeadingTrivia returns a stream where the indexed token carries the
// given leading trivia.
func (s *TokenStream) WithLeadingTrivia(index int, leading Trivia) (*TokenStream, error) {
	if index < 1 || index > len(s.tokens) {
		return nil, fmt.Errorf("token index %d out of range [1, %d]", index, len(s.tokens))
	}
	out := s.clone()
	out.tokens[index-1].Leading = append(Trivia(nil), leading...)
	return out, nil
}

func (s *TokenStream) clone() *TokenStream {
	out := make([]Token, len(s.tokens))
	copy(out, s.tokens)
	return &TokenStream{tokens: out}
}

// ReplaceDocComment rewrites the leading trivia of a token so that the
// documentation block attached to it becomes doc line comments carrying the
// given text. The attached block is the contiguous run of doc-comment lines
// directly above the token; a blank line or an ordinary comment ends it.
// When no block is attached the new comment is inserted above the token.
// Indentation of the token and of every unrelated piece is preserved.
func ReplaceDocComment(leading Trivia, text string) Trivia {
	indentStart := len(leading)
	for indentStart > 0 && leading[indentStart-1].IsIndentation() {
		indentStart--
	}
	indent := leading[indentStart:]

	// Walk backwards over doc-comment lines of the shape
	// [indentation] doc-comment [newline].
	blockStart := indentStart
	i := indentStart
	for {
		j := i
		if j > 0 && leading[j-1].Kind == TriviaNewlines {
			if leading[j-1].NewlineCount() > 1 {
				break
			}
			j--
		} else if i != indentStart {
			break
		}
		if j == 0 || !leading[j-1].IsDocComment() {
			break
		}
		j--
		for j > 0 && leading[j-1].IsIndentation() {
			j--
		}
		blockStart = j
		i = j
	}

	lines := strings.Split(text, "\n")
	replacement := make(Trivia, 0, len(lines)*(len(indent)+2))
	for _, line := range lines {
		replacement = append(replacement, indent...)
		trimmed := strings.TrimLeft(line, " \t")
		var comment string
		switch {
		case strings.HasPrefix(trimmed, "///"):
			// Already a doc line, keep it as given.
			comment = trimmed
		case line == "":
			comment = "///"
		default:
			comment = "/// " + line
		}
		replacement = append(replacement, TriviaPiece{Kind: TriviaDocLineComment, Text: comment})
		replacement = append(replacement, TriviaPiece{Kind: TriviaNewlines, Text: "\n"})
	}

	out := make(Trivia, 0, blockStart+len(replacement)+len(indent))
	out = append(out, leading[:blockStart]...)
	out = append(out, replacement...)
	out = append(out, indent...)
	return out
}
