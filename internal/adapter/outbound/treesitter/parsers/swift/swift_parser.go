// Package swiftparser walks parsed Swift syntax trees and builds the
// declaration overview consumed by the renderers. Extraction is read-only:
// the tree is never modified, and repeated runs over the same tree yield
// identical paths.
package swiftparser

import (
	"context"
	"errors"
	"fmt"
	"swiftscope/internal/application/common/slogger"
	"swiftscope/internal/domain/valueobject"
	"swiftscope/internal/port/outbound"
)

// SwiftOutlineExtractor implements outbound.OutlineExtractor for trees
// produced by the tree-sitter Swift adapter.
type SwiftOutlineExtractor struct{}

// NewSwiftOutlineExtractor creates a Swift outline extractor.
func NewSwiftOutlineExtractor() *SwiftOutlineExtractor {
	return &SwiftOutlineExtractor{}
}

// ExtractOutline builds the visibility-filtered declaration forest of one
// parsed file. A file with no qualifying declarations yields an empty
// outline, not an error.
func (e *SwiftOutlineExtractor) ExtractOutline(
	ctx context.Context,
	tree *valueobject.SyntaxTree,
	options outbound.OutlineOptions,
) (valueobject.SourceOutline, error) {
	if err := validateTree(tree); err != nil {
		return valueobject.SourceOutline{}, err
	}

	walk := &outlineWalk{
		tree:          tree,
		minVisibility: options.MinVisibility,
		includeDocs:   options.IncludeDocumentation,
	}

	outline := valueobject.SourceOutline{
		Path:         options.Path,
		Imports:      extractImports(tree),
		Declarations: walk.extractMembers(tree.RootNode().Children, "", "", ""),
	}

	slogger.Debug(ctx, "Swift outline extracted", slogger.Fields{
		"path":           options.Path,
		"imports":        len(outline.Imports),
		"declarations":   outline.DeclarationCount(),
		"min_visibility": options.MinVisibility.String(),
	})

	return outline, nil
}

// ExtractImports collects the module names a file imports without walking
// the declaration forest. A file with no imports yields nil.
func (e *SwiftOutlineExtractor) ExtractImports(
	ctx context.Context,
	tree *valueobject.SyntaxTree,
) ([]string, error) {
	if err := validateTree(tree); err != nil {
		return nil, err
	}
	return extractImports(tree), nil
}

// validateTree rejects trees the extractor cannot walk.
func validateTree(tree *valueobject.SyntaxTree) error {
	if tree == nil {
		return errors.New("syntax tree cannot be nil")
	}
	if tree.RootNode() == nil {
		return errors.New("syntax tree has no root node")
	}
	if tree.Language() != valueobject.LanguageSwift {
		return fmt.Errorf("unsupported language: %s", tree.Language())
	}
	return nil
}
