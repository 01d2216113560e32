package swiftparser

import (
	"context"
	"swiftscope/internal/domain/valueobject"
	"swiftscope/internal/port/outbound"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractOutlineRejectsNilTree(t *testing.T) {
	extractor := NewSwiftOutlineExtractor()

	_, err := extractor.ExtractOutline(context.Background(), nil, outbound.OutlineOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil")
}

func TestExtractOutlineRejectsWrongLanguage(t *testing.T) {
	tree, err := valueobject.NewSyntaxTree(
		context.Background(),
		"go",
		&valueobject.SyntaxNode{Type: "source_file"},
		nil,
		nil,
		valueobject.ParseMetadata{},
	)
	require.NoError(t, err)

	_, err = NewSwiftOutlineExtractor().ExtractOutline(context.Background(), tree, outbound.OutlineOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported language")
}

func TestExtractOutlineStampsPath(t *testing.T) {
	outline := extractOutline(t, "struct Model {}\n", outbound.OutlineOptions{
		Path: "Sources/App/Model.swift",
	})

	assert.Equal(t, "Sources/App/Model.swift", outline.Path)
	require.Len(t, outline.Declarations, 1)
	assert.Equal(t, "Model", outline.Declarations[0].Name)
}

func TestExtractOutlineImplementsPort(t *testing.T) {
	var _ outbound.OutlineExtractor = NewSwiftOutlineExtractor()
}
