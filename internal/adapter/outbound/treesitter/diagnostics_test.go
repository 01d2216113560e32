package treesitter

import (
	"context"
	"strings"
	"swiftscope/internal/domain/valueobject"
	"swiftscope/internal/port/outbound"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// diagnosticTree wraps hand-built nodes into a syntax tree over the source.
func diagnosticTree(t *testing.T, source string, root *valueobject.SyntaxNode) *valueobject.SyntaxTree {
	t.Helper()
	tree, err := valueobject.NewSyntaxTree(
		context.Background(), valueobject.LanguageSwift, root, []byte(source), nil, valueobject.ParseMetadata{},
	)
	require.NoError(t, err)
	return tree
}

func TestExtractDiagnostics(t *testing.T) {
	extractor := NewDiagnosticsExtractor()

	t.Run("should return an empty report for a clean tree", func(t *testing.T) {
		source := "let x = 1\n"
		tree := diagnosticTree(t, source, &valueobject.SyntaxNode{Type: "source_file", EndByte: 10})

		report, err := extractor.ExtractDiagnostics(context.Background(), tree, outbound.DiagnosticOptions{
			Path: "Clean.swift",
		})
		require.NoError(t, err)
		assert.Equal(t, "Clean.swift", report.Path)
		assert.Empty(t, report.Diagnostics)
	})

	t.Run("should tolerate a nil tree", func(t *testing.T) {
		report, err := extractor.ExtractDiagnostics(context.Background(), nil, outbound.DiagnosticOptions{})
		require.NoError(t, err)
		assert.False(t, report.HasDiagnostics())
	})

	t.Run("should report error nodes with line and caret", func(t *testing.T) {
		source := "first\nsecond\nthird\n"
		errNode := &valueobject.SyntaxNode{
			Type: "ERROR", StartByte: 6, EndByte: 12,
			StartPos: valueobject.Position{Row: 1, Column: 0},
			EndPos:   valueobject.Position{Row: 1, Column: 6},
		}
		root := &valueobject.SyntaxNode{
			Type: "source_file", EndByte: 19,
			Children: []*valueobject.SyntaxNode{errNode},
		}
		tree := diagnosticTree(t, source, root)

		report, err := extractor.ExtractDiagnostics(context.Background(), tree, outbound.DiagnosticOptions{})
		require.NoError(t, err)
		require.Len(t, report.Diagnostics, 1)

		diag := report.Diagnostics[0]
		assert.Equal(t, `unexpected text "second"`, diag.Message)
		assert.Equal(t, 2, diag.Line)
		assert.Equal(t, 1, diag.Column)
		assert.Equal(t, "second", diag.SourceLine)
		assert.Equal(t, "^", diag.Caret)
		assert.Empty(t, diag.Context, "No context lines were requested")
	})

	t.Run("should report missing nodes with an insert fix-it", func(t *testing.T) {
		source := "f(x\n"
		missing := &valueobject.SyntaxNode{
			Type: ")", StartByte: 3, EndByte: 3, Missing: true,
			StartPos: valueobject.Position{Row: 0, Column: 3},
			EndPos:   valueobject.Position{Row: 0, Column: 3},
		}
		root := &valueobject.SyntaxNode{
			Type: "source_file", EndByte: 4,
			Children: []*valueobject.SyntaxNode{missing},
		}
		tree := diagnosticTree(t, source, root)

		report, err := extractor.ExtractDiagnostics(context.Background(), tree, outbound.DiagnosticOptions{})
		require.NoError(t, err)
		require.Len(t, report.Diagnostics, 1)

		diag := report.Diagnostics[0]
		assert.Equal(t, "expected ')'", diag.Message)
		assert.Equal(t, 1, diag.Line)
		assert.Equal(t, 4, diag.Column)
		assert.Equal(t, "   ^", diag.Caret)
		require.Len(t, diag.FixIts, 1)
		assert.Equal(t, valueobject.FixItInsert, diag.FixIts[0].Category)
		assert.Equal(t, "insert ')'", diag.FixIts[0].Message)
		assert.Equal(t, ")", diag.FixIts[0].Text)
	})

	t.Run("should visit children of error nodes", func(t *testing.T) {
		source := "first\nsecond\nthird\n"
		missing := &valueobject.SyntaxNode{
			Type: "}", StartByte: 12, EndByte: 12, Missing: true,
			StartPos: valueobject.Position{Row: 1, Column: 6},
			EndPos:   valueobject.Position{Row: 1, Column: 6},
		}
		errNode := &valueobject.SyntaxNode{
			Type: "ERROR", StartByte: 6, EndByte: 12,
			StartPos: valueobject.Position{Row: 1, Column: 0},
			EndPos:   valueobject.Position{Row: 1, Column: 6},
			Children: []*valueobject.SyntaxNode{missing},
		}
		root := &valueobject.SyntaxNode{
			Type: "source_file", EndByte: 19,
			Children: []*valueobject.SyntaxNode{errNode},
		}
		tree := diagnosticTree(t, source, root)

		report, err := extractor.ExtractDiagnostics(context.Background(), tree, outbound.DiagnosticOptions{})
		require.NoError(t, err)
		require.Len(t, report.Diagnostics, 2, "The missing node inside the error span must surface too")
		assert.Contains(t, report.Diagnostics[0].Message, "unexpected text")
		assert.Equal(t, "expected '}'", report.Diagnostics[1].Message)
	})

	t.Run("should clamp the context window to the file", func(t *testing.T) {
		source := "first\nsecond\nthird\n"
		errNode := &valueobject.SyntaxNode{
			Type: "ERROR", StartByte: 6, EndByte: 12,
			StartPos: valueobject.Position{Row: 1, Column: 0},
			EndPos:   valueobject.Position{Row: 1, Column: 6},
		}
		root := &valueobject.SyntaxNode{
			Type: "source_file", EndByte: 19,
			Children: []*valueobject.SyntaxNode{errNode},
		}
		tree := diagnosticTree(t, source, root)

		report, err := extractor.ExtractDiagnostics(context.Background(), tree, outbound.DiagnosticOptions{
			ContextLines: 10,
		})
		require.NoError(t, err)
		require.Len(t, report.Diagnostics, 1)
		assert.Equal(t, []string{"first", "second", "third", ""}, report.Diagnostics[0].Context)
	})

	t.Run("should truncate long snippets", func(t *testing.T) {
		source := strings.Repeat("x", 45)
		errNode := &valueobject.SyntaxNode{
			Type: "ERROR", StartByte: 0, EndByte: 45,
			EndPos: valueobject.Position{Row: 0, Column: 45},
		}
		root := &valueobject.SyntaxNode{
			Type: "source_file", EndByte: 45,
			Children: []*valueobject.SyntaxNode{errNode},
		}
		tree := diagnosticTree(t, source, root)

		report, err := extractor.ExtractDiagnostics(context.Background(), tree, outbound.DiagnosticOptions{})
		require.NoError(t, err)
		require.Len(t, report.Diagnostics, 1)
		assert.Equal(t,
			`unexpected text "`+strings.Repeat("x", 40)+`..."`,
			report.Diagnostics[0].Message)
	})

	t.Run("should flatten newlines inside snippets", func(t *testing.T) {
		source := "bad\ntext\n"
		errNode := &valueobject.SyntaxNode{
			Type: "ERROR", StartByte: 0, EndByte: 8,
			EndPos: valueobject.Position{Row: 1, Column: 4},
		}
		root := &valueobject.SyntaxNode{
			Type: "source_file", EndByte: 9,
			Children: []*valueobject.SyntaxNode{errNode},
		}
		tree := diagnosticTree(t, source, root)

		report, err := extractor.ExtractDiagnostics(context.Background(), tree, outbound.DiagnosticOptions{})
		require.NoError(t, err)
		require.Len(t, report.Diagnostics, 1)
		assert.Equal(t, `unexpected text "bad text"`, report.Diagnostics[0].Message)
	})
}
