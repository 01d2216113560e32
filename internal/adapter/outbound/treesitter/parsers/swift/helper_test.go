package swiftparser

import (
	"context"
	"strings"
	"swiftscope/internal/adapter/outbound/treesitter"
	"swiftscope/internal/domain/valueobject"
	"swiftscope/internal/port/outbound"
	"testing"

	"github.com/stretchr/testify/require"
)

func parseSwift(t *testing.T, source string) *valueobject.SyntaxTree {
	t.Helper()

	parser, err := treesitter.NewSwiftParser()
	require.NoError(t, err, "Swift parser should initialize")

	tree, err := parser.Parse(context.Background(), []byte(source))
	require.NoError(t, err, "source should parse")
	require.NotNil(t, tree, "parse should produce a tree")
	return tree
}

func extractOutline(t *testing.T, source string, options outbound.OutlineOptions) valueobject.SourceOutline {
	t.Helper()

	tree := parseSwift(t, source)
	outline, err := NewSwiftOutlineExtractor().ExtractOutline(context.Background(), tree, options)
	require.NoError(t, err, "outline extraction should succeed")
	return outline
}

// declarationAt resolves a dotted sibling-index path against the forest and
// fails the test when no entry carries it.
func declarationAt(
	t *testing.T,
	forest []valueobject.DeclarationOverview,
	path string,
) valueobject.DeclarationOverview {
	t.Helper()

	for _, decl := range forest {
		if decl.Path == path {
			return decl
		}
		if strings.HasPrefix(path, decl.Path+".") {
			return declarationAt(t, decl.Members, path)
		}
	}
	t.Fatalf("no declaration at path %q", path)
	return valueobject.DeclarationOverview{}
}
