package valueobject

import "strings"

// TriviaKind tags a single run of non-semantic source text.
type TriviaKind string

const (
	TriviaSpaces          TriviaKind = "spaces"
	TriviaTabs            TriviaKind = "tabs"
	TriviaNewlines        TriviaKind = "newlines"
	TriviaCarriageReturns TriviaKind = "carriage_returns"
	TriviaLineComment     TriviaKind = "line_comment"
	TriviaDocLineComment  TriviaKind = "doc_line_comment"
	TriviaBlockComment    TriviaKind = "block_comment"
	TriviaDocBlockComment TriviaKind = "doc_block_comment"
	TriviaUnexpected      TriviaKind = "unexpected"
)

// TriviaPiece is one tagged run of trivia text. Pieces always concatenate
// back to the exact source bytes they were scanned from.
type TriviaPiece struct {
	Kind TriviaKind
	Text string
}

// IsWhitespace reports whether the piece is spaces, tabs, newlines or
// carriage returns.
func (p TriviaPiece) IsWhitespace() bool {
	switch p.Kind {
	case TriviaSpaces, TriviaTabs, TriviaNewlines, TriviaCarriageReturns:
		return true
	default:
		return false
	}
}

// IsIndentation reports whether the piece is a horizontal whitespace run.
func (p TriviaPiece) IsIndentation() bool {
	return p.Kind == TriviaSpaces || p.Kind == TriviaTabs
}

// IsComment reports whether the piece is any comment form.
func (p TriviaPiece) IsComment() bool {
	switch p.Kind {
	case TriviaLineComment, TriviaDocLineComment, TriviaBlockComment, TriviaDocBlockComment:
		return true
	default:
		return false
	}
}

// IsDocComment reports whether the piece is a documentation comment.
func (p TriviaPiece) IsDocComment() bool {
	return p.Kind == TriviaDocLineComment || p.Kind == TriviaDocBlockComment
}

// NewlineCount returns the number of line breaks the piece contains.
func (p TriviaPiece) NewlineCount() int {
	return strings.Count(p.Text, "\n")
}

// Trivia is an ordered list of trivia pieces.
type Trivia []TriviaPiece

// Text renders the trivia back to source text.
func (t Trivia) Text() string {
	var b strings.Builder
	for _, p := range t {
		b.WriteString(p.Text)
	}
	return b.String()
}

// AttachedDocBlock returns the run of doc-comment pieces directly attached
// to the token this trivia leads, in source order. The block ends upward at
// a blank line, an ordinary comment or the start of the trivia; trailing
// indentation before the token does not belong to the block. Attachment is
// strict: a doc comment separated from the token by a blank line is not
// part of the block.
func (t Trivia) AttachedDocBlock() Trivia {
	indentStart := len(t)
	for indentStart > 0 && t[indentStart-1].IsIndentation() {
		indentStart--
	}

	blockStart := indentStart
	i := indentStart
	for {
		j := i
		if j > 0 && t[j-1].Kind == TriviaNewlines {
			if t[j-1].NewlineCount() > 1 {
				break
			}
			j--
		} else if i != indentStart {
			break
		}
		if j == 0 || !t[j-1].IsDocComment() {
			break
		}
		j--
		for j > 0 && t[j-1].IsIndentation() {
			j--
		}
		blockStart = j
		i = j
	}

	return t[blockStart:indentStart]
}

// ContainsBlankLine reports whether the trivia contains two or more
// consecutive line breaks separated only by horizontal whitespace.
func (t Trivia) ContainsBlankLine() bool {
	breaks := 0
	for _, p := range t {
		switch {
		case p.Kind == TriviaNewlines:
			breaks += p.NewlineCount()
			if breaks >= 2 {
				return true
			}
		case p.IsIndentation() || p.Kind == TriviaCarriageReturns:
			// horizontal whitespace does not reset the run
		default:
			breaks = 0
		}
	}
	return false
}

// ScanTrivia splits raw inter-token source text into tagged pieces.
// Block comments nest, as they do in the source language.
func ScanTrivia(text string) Trivia {
	var pieces Trivia
	i := 0
	for i < len(text) {
		start := i
		switch c := text[i]; {
		case c == ' ':
			for i < len(text) && text[i] == ' ' {
				i++
			}
			pieces = append(pieces, TriviaPiece{Kind: TriviaSpaces, Text: text[start:i]})
		case c == '\t':
			for i < len(text) && text[i] == '\t' {
				i++
			}
			pieces = append(pieces, TriviaPiece{Kind: TriviaTabs, Text: text[start:i]})
		case c == '\n':
			for i < len(text) && text[i] == '\n' {
				i++
			}
			pieces = append(pieces, TriviaPiece{Kind: TriviaNewlines, Text: text[start:i]})
		case c == '\r':
			// Treat \r\n pairs as a newline run so line counting stays exact.
			for i < len(text) && (text[i] == '\r' || text[i] == '\n') {
				i++
			}
			if strings.ContainsRune(text[start:i], '\n') {
				pieces = append(pieces, TriviaPiece{Kind: TriviaNewlines, Text: text[start:i]})
			} else {
				pieces = append(pieces, TriviaPiece{Kind: TriviaCarriageReturns, Text: text[start:i]})
			}
		case strings.HasPrefix(text[i:], "//"):
			for i < len(text) && text[i] != '\n' {
				i++
			}
			kind := TriviaLineComment
			if strings.HasPrefix(text[start:], "///") && !strings.HasPrefix(text[start:], "////") {
				kind = TriviaDocLineComment
			}
			pieces = append(pieces, TriviaPiece{Kind: kind, Text: text[start:i]})
		case strings.HasPrefix(text[i:], "/*"):
			depth := 0
			for i < len(text) {
				if strings.HasPrefix(text[i:], "/*") {
					depth++
					i += 2
					continue
				}
				if strings.HasPrefix(text[i:], "*/") {
					depth--
					i += 2
					if depth == 0 {
						break
					}
					continue
				}
				i++
			}
			kind := TriviaBlockComment
			if strings.HasPrefix(text[start:], "/**") && !strings.HasPrefix(text[start:], "/***") {
				kind = TriviaDocBlockComment
			}
			pieces = append(pieces, TriviaPiece{Kind: kind, Text: text[start:i]})
		default:
			for i < len(text) && !isTriviaBoundary(text, i) {
				i++
			}
			pieces = append(pieces, TriviaPiece{Kind: TriviaUnexpected, Text: text[start:i]})
		}
	}
	return pieces
}

func isTriviaBoundary(text string, i int) bool {
	switch text[i] {
	case ' ', '\t', '\n', '\r':
		return true
	}
	return strings.HasPrefix(text[i:], "//") || strings.HasPrefix(text[i:], "/*")
}

// SplitInterTokenGap divides the raw text between two tokens into the
// previous token's trailing trivia and the next token's leading trivia.
// Trailing trivia extends up to, and never past, the first line break.
func SplitInterTokenGap(gap string) (trailing, leading Trivia) {
	pieces := ScanTrivia(gap)
	for idx, p := range pieces {
		if p.Kind == TriviaNewlines {
			return pieces[:idx], pieces[idx:]
		}
	}
	return pieces, nil
}
