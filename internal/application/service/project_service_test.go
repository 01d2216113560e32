package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"swiftscope/internal/adapter/outbound/treesitter"
	swiftparser "swiftscope/internal/adapter/outbound/treesitter/parsers/swift"
	"swiftscope/internal/domain/valueobject"
	"swiftscope/internal/port/inbound"
	"swiftscope/internal/port/outbound"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProjectFile(t *testing.T, dir, name, source string) outbound.SourceFileInfo {
	t.Helper()
	absolute := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(absolute, []byte(source), 0o600))
	return outbound.SourceFileInfo{
		Path:         filepath.Join("Sources", name),
		AbsolutePath: absolute,
		Size:         int64(len(source)),
	}
}

func newProjectService(t *testing.T, discoverer *stubDiscoverer) *ProjectAnalysisService {
	t.Helper()
	parser, err := treesitter.NewSwiftParser()
	require.NoError(t, err, "Swift parser should initialize")
	outlines := swiftparser.NewSwiftOutlineExtractor()
	return NewProjectAnalysisService(discoverer, parser, outlines, outbound.DiscoveryOptions{}, 2)
}

func TestAnalyzeProject(t *testing.T) {
	ctx := context.Background()

	t.Run("should merge per-file outlines sorted by path", func(t *testing.T) {
		dir := t.TempDir()
		beta := writeProjectFile(t, dir, "Beta.swift",
			"import Foundation\nimport Combine\n\npublic struct Beta {}\n\npublic func beta() {}\n")
		alpha := writeProjectFile(t, dir, "Alpha.swift", "public struct Alpha {}\n")
		svc := newProjectService(t, &stubDiscoverer{files: []outbound.SourceFileInfo{beta, alpha}})

		project, err := svc.AnalyzeProject(ctx, dir, inbound.AnalysisOptions{
			MinVisibility:        valueobject.VisibilityPublic,
			IncludeDocumentation: true,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, project.FileCount)
		assert.Equal(t, 3, project.DeclarationCount)
		require.Len(t, project.Files, 2)
		assert.Equal(t, filepath.Join("Sources", "Alpha.swift"), project.Files[0].Path,
			"Files merge in path order regardless of discovery order")
		assert.Equal(t, filepath.Join("Sources", "Beta.swift"), project.Files[1].Path)
		assert.Equal(t, []string{"Combine", "Foundation"}, project.Imports)
	})

	t.Run("should apply the visibility floor per file", func(t *testing.T) {
		dir := t.TempDir()
		mixed := writeProjectFile(t, dir, "Mixed.swift",
			"public struct Shown {}\nstruct Hidden {}\n")
		svc := newProjectService(t, &stubDiscoverer{files: []outbound.SourceFileInfo{mixed}})

		project, err := svc.AnalyzeProject(ctx, dir, inbound.AnalysisOptions{
			MinVisibility: valueobject.VisibilityPublic,
		})
		require.NoError(t, err)
		require.Equal(t, 1, project.DeclarationCount)
		assert.Equal(t, "Shown", project.Files[0].Declarations[0].Name)
	})

	t.Run("should skip files that fail to parse", func(t *testing.T) {
		dir := t.TempDir()
		alpha := writeProjectFile(t, dir, "Alpha.swift", "public struct Alpha {}\n")
		gone := outbound.SourceFileInfo{
			Path:         filepath.Join("Sources", "Gone.swift"),
			AbsolutePath: filepath.Join(dir, "Gone.swift"),
		}
		svc := newProjectService(t, &stubDiscoverer{files: []outbound.SourceFileInfo{alpha, gone}})

		project, err := svc.AnalyzeProject(ctx, dir, inbound.AnalysisOptions{
			MinVisibility: valueobject.VisibilityPublic,
		})
		require.NoError(t, err, "A file vanishing mid-run does not fail the project")
		assert.Equal(t, 1, project.FileCount)
		assert.Equal(t, filepath.Join("Sources", "Alpha.swift"), project.Files[0].Path)
	})

	t.Run("should produce an empty outline for empty projects", func(t *testing.T) {
		svc := newProjectService(t, &stubDiscoverer{})

		project, err := svc.AnalyzeProject(ctx, t.TempDir(), inbound.AnalysisOptions{})
		require.NoError(t, err)
		assert.Zero(t, project.FileCount)
		assert.Zero(t, project.DeclarationCount)
		assert.Empty(t, project.Files)
	})

	t.Run("should wrap discovery failures", func(t *testing.T) {
		svc := newProjectService(t, &stubDiscoverer{err: assert.AnError})

		_, err := svc.AnalyzeProject(ctx, t.TempDir(), inbound.AnalysisOptions{})
		require.Error(t, err)
		assert.ErrorIs(t, err, assert.AnError)
		assert.Contains(t, err.Error(), "discover source files")
	})
}
