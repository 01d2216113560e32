// Package filefilter discovers the Swift source files of a project tree.
// Include and exclude globs use doublestar syntax against slash-separated
// paths relative to the walked root; .gitignore files are honored at every
// directory level.
package filefilter

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"swiftscope/internal/application/common/slogger"
	domainerrors "swiftscope/internal/domain/errors/domain"
	"swiftscope/internal/port/outbound"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
)

const swiftExtension = ".swift"

// skippedDirs are never descended into regardless of options. They hold
// build products and repository metadata, not sources.
var skippedDirs = map[string]struct{}{
	".git":         {},
	".build":       {},
	".swiftpm":     {},
	"DerivedData":  {},
	"node_modules": {},
}

// SwiftFileDiscoverer implements outbound.FileDiscoverer for directory
// trees on the local filesystem.
type SwiftFileDiscoverer struct{}

// NewSwiftFileDiscoverer creates a file discoverer.
func NewSwiftFileDiscoverer() *SwiftFileDiscoverer {
	return &SwiftFileDiscoverer{}
}

// ignoreScope is one .gitignore file together with the directory its
// patterns are anchored to, as a slash-relative path from the root.
type ignoreScope struct {
	base    string
	matcher *ignore.GitIgnore
}

// discovery carries the state of one walk.
type discovery struct {
	root    string
	options outbound.DiscoveryOptions
	scopes  []ignoreScope
	visited map[string]struct{}
	files   []outbound.SourceFileInfo
}

// DiscoverSourceFiles walks root and returns the Swift sources to analyze
// in deterministic path order.
func (d *SwiftFileDiscoverer) DiscoverSourceFiles(
	ctx context.Context,
	root string,
	options outbound.DiscoveryOptions,
) ([]outbound.SourceFileInfo, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %s: %w", root, err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domainerrors.FileNotFoundError(root)
		}
		return nil, domainerrors.FileReadError(root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("discovery root %s is not a directory", root)
	}

	walk := &discovery{
		root:    absRoot,
		options: options,
		visited: map[string]struct{}{absRoot: {}},
	}
	if err := walk.walkDir(ctx, absRoot, ""); err != nil {
		return nil, err
	}

	sort.Slice(walk.files, func(i, j int) bool {
		return walk.files[i].Path < walk.files[j].Path
	})

	slogger.Debug(ctx, "Source discovery finished", slogger.Fields{
		"root":  root,
		"files": len(walk.files),
	})
	return walk.files, nil
}

// walkDir walks one directory subtree. relBase is the slash-relative path
// of dir under the discovery root; empty for the root itself.
func (w *discovery) walkDir(ctx context.Context, dir, relBase string) error {
	if w.options.RespectGitignore {
		w.loadIgnoreFile(ctx, dir, relBase)
	}
	scopeDepth := len(w.scopes)
	defer func() {
		w.scopes = w.scopes[:scopeDepth]
	}()

	entries, err := os.ReadDir(dir)
	if err != nil {
		return domainerrors.FileReadError(dir, err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		name := entry.Name()
		rel := name
		if relBase != "" {
			rel = relBase + "/" + name
		}
		absolute := filepath.Join(dir, name)

		if entry.IsDir() {
			if w.skipDir(name, rel) {
				continue
			}
			if err := w.walkDir(ctx, absolute, rel); err != nil {
				return err
			}
			continue
		}

		if entry.Type()&fs.ModeSymlink != 0 {
			if err := w.visitSymlink(ctx, absolute, rel, name); err != nil {
				return err
			}
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		w.visitFile(ctx, absolute, rel, info)
	}
	return nil
}

// visitSymlink resolves a symlink entry. Files behind symlinks are always
// candidates; directories are only walked when the options ask for it, and
// each resolved target is walked at most once.
func (w *discovery) visitSymlink(ctx context.Context, absolute, rel, name string) error {
	resolved, err := filepath.EvalSymlinks(absolute)
	if err != nil {
		return nil
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return nil
	}

	if info.IsDir() {
		if !w.options.FollowSymlinks || w.skipDir(name, rel) {
			return nil
		}
		if _, seen := w.visited[resolved]; seen {
			return nil
		}
		w.visited[resolved] = struct{}{}
		return w.walkDir(ctx, absolute, rel)
	}

	w.visitFile(ctx, absolute, rel, info)
	return nil
}

// visitFile records a file when it passes extension, glob, gitignore and
// size checks.
func (w *discovery) visitFile(ctx context.Context, absolute, rel string, info fs.FileInfo) {
	if !w.matchesIncludes(rel) || w.matchesExcludes(rel) || w.ignored(rel, false) {
		return
	}
	if w.options.MaxFileSize > 0 && info.Size() > w.options.MaxFileSize {
		slogger.Debug(ctx, "Skipping oversized source file", slogger.Fields{
			"path":  rel,
			"size":  info.Size(),
			"limit": w.options.MaxFileSize,
		})
		return
	}

	w.files = append(w.files, outbound.SourceFileInfo{
		Path:         rel,
		AbsolutePath: absolute,
		Size:         info.Size(),
		ModifiedAt:   info.ModTime(),
	})
}

// skipDir reports whether a directory is excluded from the walk.
func (w *discovery) skipDir(name, rel string) bool {
	if _, skip := skippedDirs[name]; skip {
		return true
	}
	if w.matchesExcludes(rel) {
		return true
	}
	return w.ignored(rel, true)
}

// matchesIncludes checks the include globs, defaulting to Swift sources.
func (w *discovery) matchesIncludes(rel string) bool {
	if len(w.options.IncludeGlobs) == 0 {
		return strings.HasSuffix(rel, swiftExtension)
	}
	for _, glob := range w.options.IncludeGlobs {
		if matched, err := doublestar.Match(glob, rel); err == nil && matched {
			return true
		}
	}
	return false
}

// matchesExcludes checks the exclude globs.
func (w *discovery) matchesExcludes(rel string) bool {
	for _, glob := range w.options.ExcludeGlobs {
		if matched, err := doublestar.Match(glob, rel); err == nil && matched {
			return true
		}
	}
	return false
}

// ignored checks the path against every .gitignore scope above it.
func (w *discovery) ignored(rel string, isDir bool) bool {
	if !w.options.RespectGitignore {
		return false
	}
	probe := rel
	if isDir {
		probe = rel + "/"
	}
	for _, scope := range w.scopes {
		scoped := probe
		if scope.base != "" {
			if !strings.HasPrefix(probe, scope.base+"/") {
				continue
			}
			scoped = strings.TrimPrefix(probe, scope.base+"/")
		}
		if scope.matcher.MatchesPath(scoped) {
			return true
		}
	}
	return false
}

// loadIgnoreFile pushes the directory's .gitignore onto the scope stack
// when one exists.
func (w *discovery) loadIgnoreFile(ctx context.Context, dir, relBase string) {
	path := filepath.Join(dir, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		return
	}
	matcher, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		slogger.Warn(ctx, "Failed to parse .gitignore, continuing without it", slogger.Fields{
			"path":  path,
			"error": err.Error(),
		})
		return
	}
	w.scopes = append(w.scopes, ignoreScope{base: relBase, matcher: matcher})
}
