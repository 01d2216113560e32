package treesitter

import (
	"strings"
	"swiftscope/internal/domain/valueobject"
)

// endOfFileTokenType marks the synthetic token closing every stream. It
// carries whatever trivia follows the last real token, so rendering a
// stream always reproduces the full source, comment-only files included.
const endOfFileTokenType = "end_of_file"

// deriveTokens flattens a converted tree into the token stream the domain
// operates on. Tokens are the semantic leaves in source order; comment
// leaves are skipped so their text lands in the gaps between tokens, where
// the trivia scanner classifies it. The text between two tokens splits at
// the first line break, everything up to it trailing the earlier token and
// the rest leading the later one.
func deriveTokens(root *valueobject.SyntaxNode, source []byte) *valueobject.TokenStream {
	var leaves []leafToken
	collectLeaves(root, false, &leaves)

	tokens := make([]valueobject.Token, 0, len(leaves)+1)
	for _, leaf := range leaves {
		tokens = append(tokens, valueobject.Token{
			Text:            string(source[leaf.node.StartByte:leaf.node.EndByte]),
			NodeType:        leaf.node.Type,
			StartByte:       leaf.node.StartByte,
			EndByte:         leaf.node.EndByte,
			StartPos:        leaf.node.StartPos,
			EndPos:          leaf.node.EndPos,
			InStringLiteral: leaf.inString,
		})
	}

	end := valueobject.ClampToUint32(len(source))
	endPos := positionAtOffset(source, len(source))
	tokens = append(tokens, valueobject.Token{
		NodeType:  endOfFileTokenType,
		StartByte: end,
		EndByte:   end,
		StartPos:  endPos,
		EndPos:    endPos,
	})

	prevEnd := uint32(0)
	for i := range tokens {
		gap := string(source[prevEnd:tokens[i].StartByte])
		if i == 0 {
			tokens[i].Leading = valueobject.ScanTrivia(gap)
		} else {
			trailing, leading := valueobject.SplitInterTokenGap(gap)
			tokens[i-1].Trailing = trailing
			tokens[i].Leading = leading
		}
		prevEnd = tokens[i].EndByte
	}

	return valueobject.NewTokenStream(tokens)
}

// leafToken pairs a leaf node with its string-literal containment.
type leafToken struct {
	node     *valueobject.SyntaxNode
	inString bool
}

// collectLeaves gathers token-bearing leaves in source order. Missing
// nodes are zero-width parser insertions and carry no text; comments are
// trivia, not tokens.
func collectLeaves(node *valueobject.SyntaxNode, inString bool, out *[]leafToken) {
	if node == nil {
		return
	}

	if isStringLiteralNode(node.Type) {
		inString = true
	}

	if len(node.Children) == 0 {
		if node.Missing || node.StartByte >= node.EndByte {
			return
		}
		if isCommentNode(node.Type) {
			return
		}
		*out = append(*out, leafToken{node: node, inString: inString})
		return
	}

	for _, child := range node.Children {
		collectLeaves(child, inString, out)
	}
}

func isCommentNode(nodeType string) bool {
	return nodeType == "comment" || nodeType == "multiline_comment"
}

func isStringLiteralNode(nodeType string) bool {
	return strings.HasSuffix(nodeType, "_string_literal") || nodeType == "regex_literal"
}

// positionAtOffset computes the zero-based position of a byte offset by
// scanning the source prefix.
func positionAtOffset(source []byte, offset int) valueobject.Position {
	if offset > len(source) {
		offset = len(source)
	}
	row := 0
	lineStart := 0
	for i := range offset {
		if source[i] == '\n' {
			row++
			lineStart = i + 1
		}
	}
	return valueobject.Position{
		Row:    valueobject.ClampToUint32(row),
		Column: valueobject.ClampToUint32(offset - lineStart),
	}
}
