package filefilter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	domainerrors "swiftscope/internal/domain/errors/domain"
	"swiftscope/internal/port/outbound"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ outbound.FileDiscoverer = (*SwiftFileDiscoverer)(nil)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func discoveredPaths(files []outbound.SourceFileInfo) []string {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	return paths
}

func TestDiscoverSourceFilesFindsSwiftSources(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Package.swift", "// swift-tools-version:5.9\n")
	writeFile(t, root, "Sources/App/Model.swift", "struct Model {}\n")
	writeFile(t, root, "Sources/App/README.md", "docs\n")
	writeFile(t, root, "Tests/AppTests/ModelTests.swift", "final class ModelTests {}\n")

	discoverer := NewSwiftFileDiscoverer()
	files, err := discoverer.DiscoverSourceFiles(context.Background(), root, outbound.DiscoveryOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Package.swift",
		"Sources/App/Model.swift",
		"Tests/AppTests/ModelTests.swift",
	}, discoveredPaths(files))

	for _, f := range files {
		assert.True(t, filepath.IsAbs(f.AbsolutePath))
		assert.Positive(t, f.Size)
		assert.False(t, f.ModifiedAt.IsZero())
	}
}

func TestDiscoverRespectsGitignore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".gitignore", "Generated/\n*.tmp.swift\n")
	writeFile(t, root, "Sources/Kept.swift", "struct Kept {}\n")
	writeFile(t, root, "Sources/Draft.tmp.swift", "struct Draft {}\n")
	writeFile(t, root, "Generated/Schema.swift", "struct Schema {}\n")

	discoverer := NewSwiftFileDiscoverer()
	files, err := discoverer.DiscoverSourceFiles(context.Background(), root, outbound.DiscoveryOptions{
		RespectGitignore: true,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Sources/Kept.swift"}, discoveredPaths(files))
}

func TestDiscoverNestedGitignoreScopes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Sources/.gitignore", "Legacy.swift\n")
	writeFile(t, root, "Sources/Current.swift", "struct Current {}\n")
	writeFile(t, root, "Sources/Legacy.swift", "struct Legacy {}\n")
	writeFile(t, root, "Legacy.swift", "struct RootLegacy {}\n")

	discoverer := NewSwiftFileDiscoverer()
	files, err := discoverer.DiscoverSourceFiles(context.Background(), root, outbound.DiscoveryOptions{
		RespectGitignore: true,
	})
	require.NoError(t, err)

	// The nested ignore file only applies below its own directory.
	assert.Equal(t, []string{"Legacy.swift", "Sources/Current.swift"}, discoveredPaths(files))
}

func TestDiscoverGitignoreDisabled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".gitignore", "*.swift\n")
	writeFile(t, root, "Kept.swift", "struct Kept {}\n")

	discoverer := NewSwiftFileDiscoverer()
	files, err := discoverer.DiscoverSourceFiles(context.Background(), root, outbound.DiscoveryOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Kept.swift"}, discoveredPaths(files))
}

func TestDiscoverIncludeExcludeGlobs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Sources/App/Model.swift", "struct Model {}\n")
	writeFile(t, root, "Sources/App/ModelTests.swift", "final class ModelTests {}\n")
	writeFile(t, root, "Scripts/tool.swift", "print(1)\n")

	discoverer := NewSwiftFileDiscoverer()
	files, err := discoverer.DiscoverSourceFiles(context.Background(), root, outbound.DiscoveryOptions{
		IncludeGlobs: []string{"Sources/**/*.swift"},
		ExcludeGlobs: []string{"**/*Tests.swift"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Sources/App/Model.swift"}, discoveredPaths(files))
}

func TestDiscoverMaxFileSize(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Small.swift", "struct A {}\n")
	writeFile(t, root, "Large.swift", "struct B {}\n// padding padding padding padding\n")

	discoverer := NewSwiftFileDiscoverer()
	files, err := discoverer.DiscoverSourceFiles(context.Background(), root, outbound.DiscoveryOptions{
		MaxFileSize: 20,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Small.swift"}, discoveredPaths(files))
}

func TestDiscoverSkipsBuildDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Sources/App.swift", "struct App {}\n")
	writeFile(t, root, ".build/checkouts/Dep/Sources/Dep.swift", "struct Dep {}\n")
	writeFile(t, root, ".git/hooks/sample.swift", "struct Hook {}\n")

	discoverer := NewSwiftFileDiscoverer()
	files, err := discoverer.DiscoverSourceFiles(context.Background(), root, outbound.DiscoveryOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Sources/App.swift"}, discoveredPaths(files))
}

func TestDiscoverMissingRoot(t *testing.T) {
	discoverer := NewSwiftFileDiscoverer()
	_, err := discoverer.DiscoverSourceFiles(context.Background(), filepath.Join(t.TempDir(), "absent"), outbound.DiscoveryOptions{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrFileNotFound))
}

func TestDiscoverRootIsFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "File.swift", "struct A {}\n")

	discoverer := NewSwiftFileDiscoverer()
	_, err := discoverer.DiscoverSourceFiles(context.Background(), filepath.Join(root, "File.swift"), outbound.DiscoveryOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestDiscoverSymlinkedFilesSkippedByDefault(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	writeFile(t, outside, "Linked.swift", "struct Linked {}\n")

	linkPath := filepath.Join(root, "Linked.swift")
	if err := os.Symlink(filepath.Join(outside, "Linked.swift"), linkPath); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	writeFile(t, root, "Local.swift", "struct Local {}\n")

	discoverer := NewSwiftFileDiscoverer()
	files, err := discoverer.DiscoverSourceFiles(context.Background(), root, outbound.DiscoveryOptions{})
	require.NoError(t, err)

	// Symlinked files still resolve; only symlinked directories need the
	// FollowSymlinks option.
	assert.Equal(t, []string{"Linked.swift", "Local.swift"}, discoveredPaths(files))
}

func TestDiscoverFollowsSymlinkedDirectories(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	writeFile(t, outside, "Dep.swift", "struct Dep {}\n")

	linkPath := filepath.Join(root, "Vendored")
	if err := os.Symlink(outside, linkPath); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	discoverer := NewSwiftFileDiscoverer()

	files, err := discoverer.DiscoverSourceFiles(context.Background(), root, outbound.DiscoveryOptions{})
	require.NoError(t, err)
	assert.Empty(t, discoveredPaths(files))

	files, err = discoverer.DiscoverSourceFiles(context.Background(), root, outbound.DiscoveryOptions{
		FollowSymlinks: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Vendored/Dep.swift"}, discoveredPaths(files))
}
