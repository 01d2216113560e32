package treesitter

import (
	"context"
	"fmt"
	"strings"
	"swiftscope/internal/domain/valueobject"
	"swiftscope/internal/port/outbound"
)

// maxDiagnosticSnippet bounds how much offending source text a diagnostic
// message quotes.
const maxDiagnosticSnippet = 40

// DiagnosticsExtractor turns the error and missing nodes of a parsed tree
// into a structured report. Extraction never fails: out-of-range
// locations degrade to empty context fields and a clean tree yields an
// empty report.
type DiagnosticsExtractor struct{}

// NewDiagnosticsExtractor creates a diagnostics extractor.
func NewDiagnosticsExtractor() *DiagnosticsExtractor {
	return &DiagnosticsExtractor{}
}

// ExtractDiagnostics walks the tree and reports every syntax problem with
// its resolved location, source line, caret and context window.
func (e *DiagnosticsExtractor) ExtractDiagnostics(
	ctx context.Context,
	tree *valueobject.SyntaxTree,
	options outbound.DiagnosticOptions,
) (valueobject.DiagnosticReport, error) {
	report := valueobject.DiagnosticReport{Path: options.Path}
	if tree == nil {
		return report, nil
	}

	e.collect(tree, tree.RootNode(), options.ContextLines, &report.Diagnostics)
	return report, nil
}

// collect gathers diagnostics in source order. Children of an error node
// are still visited, since missing nodes often hide inside error spans.
func (e *DiagnosticsExtractor) collect(
	tree *valueobject.SyntaxTree,
	node *valueobject.SyntaxNode,
	contextLines int,
	out *[]valueobject.Diagnostic,
) {
	if node == nil {
		return
	}

	switch {
	case node.IsMissingNode():
		diag := e.buildDiagnostic(tree, node, contextLines)
		diag.Message = fmt.Sprintf("expected '%s'", node.Type)
		diag.FixIts = []valueobject.FixIt{{
			Category: valueobject.FixItInsert,
			Message:  fmt.Sprintf("insert '%s'", node.Type),
			Text:     node.Type,
		}}
		*out = append(*out, diag)
	case node.IsErrorNode():
		diag := e.buildDiagnostic(tree, node, contextLines)
		snippet := tree.GetNodeText(node)
		if snippet == "" {
			diag.Message = "syntax error"
		} else {
			diag.Message = fmt.Sprintf("unexpected text %q", truncateSnippet(snippet))
		}
		*out = append(*out, diag)
	}

	for _, child := range node.Children {
		e.collect(tree, child, contextLines, out)
	}
}

// buildDiagnostic resolves a node's location into the line, caret and
// context fields. Line and column are 1-based on the report.
func (e *DiagnosticsExtractor) buildDiagnostic(
	tree *valueobject.SyntaxTree,
	node *valueobject.SyntaxNode,
	contextLines int,
) valueobject.Diagnostic {
	row := node.StartPos.Row
	column := node.StartPos.Column

	diag := valueobject.Diagnostic{
		Line:   int(row) + 1,
		Column: int(column) + 1,
	}

	if int(row) >= tree.LineCount() {
		return diag
	}

	diag.SourceLine = tree.LineText(row)
	if int(column) <= len(diag.SourceLine) {
		diag.Caret = strings.Repeat(" ", int(column)) + "^"
	}
	diag.Context = contextWindow(tree, row, contextLines)

	return diag
}

// contextWindow returns up to contextLines lines either side of row,
// clamped to the file.
func contextWindow(tree *valueobject.SyntaxTree, row uint32, contextLines int) []string {
	if contextLines <= 0 {
		return nil
	}

	first := int(row) - contextLines
	if first < 0 {
		first = 0
	}
	last := int(row) + contextLines
	if last >= tree.LineCount() {
		last = tree.LineCount() - 1
	}

	window := make([]string, 0, last-first+1)
	for line := first; line <= last; line++ {
		window = append(window, tree.LineText(valueobject.ClampToUint32(line)))
	}
	return window
}

// truncateSnippet shortens quoted source text so messages stay one line.
func truncateSnippet(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > maxDiagnosticSnippet {
		return s[:maxDiagnosticSnippet] + "..."
	}
	return s
}
