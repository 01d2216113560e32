package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"swiftscope/internal/adapter/outbound/treesitter"
	swiftparser "swiftscope/internal/adapter/outbound/treesitter/parsers/swift"
	"swiftscope/internal/domain/errors/domain"
	"swiftscope/internal/domain/valueobject"
	"swiftscope/internal/port/inbound"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAnalysisService(t *testing.T) (*TreeAnalysisService, *TreeArena) {
	t.Helper()

	parser, err := treesitter.NewSwiftParser()
	require.NoError(t, err, "Swift parser should initialize")

	arena := NewTreeArena()
	svc := NewTreeAnalysisService(
		parser,
		swiftparser.NewSwiftOutlineExtractor(),
		treesitter.NewDiagnosticsExtractor(),
		arena,
	)
	return svc, arena
}

func TestOpenSource(t *testing.T) {
	svc, arena := newAnalysisService(t)
	ctx := context.Background()

	t.Run("should open source and serve it back exactly", func(t *testing.T) {
		source := "public struct Point {\n    public var x: Int\n}\n"

		handle, err := svc.OpenSource(ctx, source)
		require.NoError(t, err)
		require.NotEqual(t, uuid.Nil, handle)

		rendered, err := svc.SerializeToCode(ctx, handle)
		require.NoError(t, err)
		assert.Equal(t, source, rendered)
	})

	t.Run("should keep every open handle independent", func(t *testing.T) {
		first, err := svc.OpenSource(ctx, "let a = 1\n")
		require.NoError(t, err)
		second, err := svc.OpenSource(ctx, "let b = 2\n")
		require.NoError(t, err)
		assert.NotEqual(t, first, second)

		one, err := svc.SerializeToCode(ctx, first)
		require.NoError(t, err)
		two, err := svc.SerializeToCode(ctx, second)
		require.NoError(t, err)
		assert.Equal(t, "let a = 1\n", one)
		assert.Equal(t, "let b = 2\n", two)
	})

	t.Run("should open source with syntax errors", func(t *testing.T) {
		handle, err := svc.OpenSource(ctx, "func broken( {\n")
		require.NoError(t, err, "Syntax errors surface as diagnostics, not parse failures")

		tree, err := arena.Get(handle)
		require.NoError(t, err)
		assert.True(t, tree.HasSyntaxErrors())
	})
}

func TestOpenFile(t *testing.T) {
	svc, _ := newAnalysisService(t)
	ctx := context.Background()

	t.Run("should parse a file from disk", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "User.swift")
		source := "struct User {\n    let name: String\n}\n"
		require.NoError(t, os.WriteFile(path, []byte(source), 0o600))

		handle, err := svc.OpenFile(ctx, path)
		require.NoError(t, err)

		rendered, err := svc.SerializeToCode(ctx, handle)
		require.NoError(t, err)
		assert.Equal(t, source, rendered)
	})

	t.Run("should report missing files", func(t *testing.T) {
		_, err := svc.OpenFile(ctx, filepath.Join(t.TempDir(), "Gone.swift"))
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrFileNotFound)
	})
}

func TestOverview(t *testing.T) {
	svc, _ := newAnalysisService(t)
	ctx := context.Background()

	t.Run("should extract the declaration forest", func(t *testing.T) {
		handle, err := svc.OpenSource(ctx, "public struct Point {\n    public var x: Int\n}\n")
		require.NoError(t, err)

		outline, err := svc.Overview(ctx, handle, inbound.AnalysisOptions{
			MinVisibility: valueobject.VisibilityPublic,
		})
		require.NoError(t, err)
		require.Len(t, outline.Declarations, 1)
		assert.Equal(t, "Point", outline.Declarations[0].Name)
		require.Len(t, outline.Declarations[0].Members, 1)
		assert.Equal(t, "x", outline.Declarations[0].Members[0].Name)
	})

	t.Run("should apply the visibility filter", func(t *testing.T) {
		handle, err := svc.OpenSource(ctx, "public struct Visible {}\nstruct Hidden {}\n")
		require.NoError(t, err)

		outline, err := svc.Overview(ctx, handle, inbound.AnalysisOptions{
			MinVisibility: valueobject.VisibilityPublic,
		})
		require.NoError(t, err)
		require.Len(t, outline.Declarations, 1)
		assert.Equal(t, "Visible", outline.Declarations[0].Name)
	})

	t.Run("should reject unknown handles", func(t *testing.T) {
		_, err := svc.Overview(ctx, uuid.New(), inbound.AnalysisOptions{})
		assert.ErrorIs(t, err, domain.ErrInvalidHandle)
	})
}

func TestImports(t *testing.T) {
	svc, _ := newAnalysisService(t)
	ctx := context.Background()

	t.Run("should list imports sorted and deduplicated", func(t *testing.T) {
		source := "import UIKit\nimport Foundation\nimport UIKit\n\nstruct A {}\n"
		handle, err := svc.OpenSource(ctx, source)
		require.NoError(t, err)

		imports, err := svc.Imports(ctx, handle)
		require.NoError(t, err)
		assert.Equal(t, []string{"Foundation", "UIKit"}, imports)
	})

	t.Run("should return nothing for a file without imports", func(t *testing.T) {
		handle, err := svc.OpenSource(ctx, "let x = 1\n")
		require.NoError(t, err)

		imports, err := svc.Imports(ctx, handle)
		require.NoError(t, err)
		assert.Empty(t, imports)
	})

	t.Run("should reject unknown handles", func(t *testing.T) {
		_, err := svc.Imports(ctx, uuid.New())
		assert.ErrorIs(t, err, domain.ErrInvalidHandle)
	})
}

func TestDiagnostics(t *testing.T) {
	svc, _ := newAnalysisService(t)
	ctx := context.Background()

	t.Run("should report problems in broken source", func(t *testing.T) {
		handle, err := svc.OpenSource(ctx, "func broken( {\n")
		require.NoError(t, err)

		report, err := svc.Diagnostics(ctx, handle, 0)
		require.NoError(t, err)
		assert.True(t, report.HasDiagnostics())
	})

	t.Run("should report nothing for clean source", func(t *testing.T) {
		handle, err := svc.OpenSource(ctx, "let x = 1\n")
		require.NoError(t, err)

		report, err := svc.Diagnostics(ctx, handle, 2)
		require.NoError(t, err)
		assert.Empty(t, report.Diagnostics)
	})

	t.Run("should reject unknown handles", func(t *testing.T) {
		_, err := svc.Diagnostics(ctx, uuid.New(), 0)
		assert.ErrorIs(t, err, domain.ErrInvalidHandle)
	})
}

func TestRelease(t *testing.T) {
	svc, arena := newAnalysisService(t)
	ctx := context.Background()

	t.Run("should invalidate the handle", func(t *testing.T) {
		handle, err := svc.OpenSource(ctx, "let x = 1\n")
		require.NoError(t, err)

		require.NoError(t, svc.Release(ctx, handle))
		assert.Equal(t, 0, arena.Len())

		_, err = svc.SerializeToCode(ctx, handle)
		assert.ErrorIs(t, err, domain.ErrInvalidHandle)
	})

	t.Run("should tolerate unknown handles", func(t *testing.T) {
		assert.NoError(t, svc.Release(ctx, uuid.New()))
	})
}
