package swiftparser

import (
	"swiftscope/internal/domain/valueobject"
)

// documentationFor parses the doc comment attached to a declaration's
// first token. Attachment is strict: only doc pieces in that token's
// leading trivia count, and a blank line or an ordinary comment above the
// declaration cuts the block off. Comments hanging off earlier tokens are
// never attributed here because they live in those tokens' trivia.
func (w *outlineWalk) documentationFor(node *valueobject.SyntaxNode) *valueobject.Documentation {
	token, ok := w.tree.Tokens().FirstInByteRange(node.StartByte, node.EndByte)
	if !ok {
		return nil
	}
	return valueobject.ParseDocComment(token.Leading.AttachedDocBlock())
}
