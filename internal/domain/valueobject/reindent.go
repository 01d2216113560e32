package valueobject

import (
	"fmt"
	"strings"
)

// ByteRange is a half-open [Start, End) span of source bytes.
type ByteRange struct {
	Start uint32
	End   uint32
}

// Contains reports whether the offset falls inside the range.
func (r ByteRange) Contains(offset uint32) bool {
	return offset >= r.Start && offset < r.End
}

// ReindentStream normalizes the leading whitespace of every line to the
// token nesting depth times width spaces. Depth counts the braces
// enclosing a token; a brace token itself sits at the depth outside its
// block. Ranges in extraIndent add one level each, which is how case
// bodies end up one level below their labels. Tokens inside string
// literals are never touched, nor is whitespace between tokens that share
// a line. The operation is idempotent.
func ReindentStream(stream *TokenStream, extraIndent []ByteRange, width int) (*TokenStream, error) {
	if width < 1 {
		return nil, fmt.Errorf("indent width %d must be positive", width)
	}
	if stream == nil {
		return nil, fmt.Errorf("token stream cannot be nil")
	}

	tokens := stream.Tokens()
	depths := tokenDepths(tokens, extraIndent)

	for i := range tokens {
		if tokens[i].InStringLiteral {
			continue
		}
		indent := strings.Repeat(" ", depths[i]*width)
		tokens[i].Leading = reindentLeading(tokens[i].Leading, indent, i == 0)
	}

	return NewTokenStream(tokens), nil
}

// tokenDepths computes the brace nesting depth of every token. Empty
// token texts left behind by deletions do not count as braces.
func tokenDepths(tokens []Token, extraIndent []ByteRange) []int {
	depths := make([]int, len(tokens))
	depth := 0
	for i, tok := range tokens {
		d := depth
		if !tok.InStringLiteral {
			switch tok.Text {
			case "{":
				depth++
			case "}":
				if depth > 0 {
					depth--
				}
				d = depth
			}
		}
		for _, r := range extraIndent {
			if r.Contains(tok.StartByte) {
				d++
			}
		}
		depths[i] = d
	}
	return depths
}

// reindentLeading rewrites the horizontal whitespace after every line
// break in the trivia. Blank lines lose trailing whitespace, comment
// lines align with the token, and everything that is not at a line start
// stays as it was.
func reindentLeading(leading Trivia, indent string, atStreamStart bool) Trivia {
	out := make(Trivia, 0, len(leading))
	lineStart := atStreamStart
	i := 0
	for i < len(leading) {
		p := leading[i]
		if p.Kind == TriviaNewlines {
			out = append(out, p)
			lineStart = true
			i++
			continue
		}
		if lineStart && p.IsIndentation() {
			j := i
			for j < len(leading) && leading[j].IsIndentation() {
				j++
			}
			blankLine := j < len(leading) && leading[j].Kind == TriviaNewlines
			if !blankLine && indent != "" {
				out = append(out, TriviaPiece{Kind: TriviaSpaces, Text: indent})
			}
			i = j
			lineStart = false
			continue
		}
		if lineStart {
			if p.IsComment() && indent != "" {
				out = append(out, TriviaPiece{Kind: TriviaSpaces, Text: indent})
			}
			out = append(out, p)
			lineStart = false
			i++
			continue
		}
		out = append(out, p)
		i++
	}
	if lineStart && indent != "" {
		out = append(out, TriviaPiece{Kind: TriviaSpaces, Text: indent})
	}
	return out
}
