package treesitter

import (
	"swiftscope/internal/domain/valueobject"
)

// IndentationAnalyzer finds the spans that sit one indentation level below
// what brace counting alone gives. Switch cases are the one Swift
// construct that nests without braces: the statements after a case label's
// colon are indented one deeper than the label.
type IndentationAnalyzer struct{}

// NewIndentationAnalyzer creates an indentation analyzer.
func NewIndentationAnalyzer() *IndentationAnalyzer {
	return &IndentationAnalyzer{}
}

// ExtraIndentRanges returns one byte range per switch case, covering the
// case body from just after the label's colon to the end of the entry.
func (a *IndentationAnalyzer) ExtraIndentRanges(tree *valueobject.SyntaxTree) []valueobject.ByteRange {
	if tree == nil {
		return nil
	}

	var ranges []valueobject.ByteRange
	for _, entry := range tree.GetNodesByType("switch_entry") {
		colon := entry.FirstChildOfType(":")
		if colon == nil || colon.EndByte >= entry.EndByte {
			continue
		}
		ranges = append(ranges, valueobject.ByteRange{
			Start: colon.EndByte,
			End:   entry.EndByte,
		})
	}
	return ranges
}
