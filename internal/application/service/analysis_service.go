package service

import (
	"context"

	"swiftscope/internal/application/common"
	"swiftscope/internal/application/common/slogger"
	"swiftscope/internal/domain/valueobject"
	"swiftscope/internal/port/inbound"
	"swiftscope/internal/port/outbound"

	"github.com/google/uuid"
)

// TreeAnalysisService parses sources into the arena and serves read
// operations against open trees.
type TreeAnalysisService struct {
	parser      outbound.SyntaxParser
	outlines    outbound.OutlineExtractor
	diagnostics outbound.DiagnosticExtractor
	arena       *TreeArena
}

// NewTreeAnalysisService creates the analysis service. All dependencies
// are required.
func NewTreeAnalysisService(
	parser outbound.SyntaxParser,
	outlines outbound.OutlineExtractor,
	diagnostics outbound.DiagnosticExtractor,
	arena *TreeArena,
) *TreeAnalysisService {
	if parser == nil {
		panic("parser cannot be nil")
	}
	if outlines == nil {
		panic("outlines cannot be nil")
	}
	if diagnostics == nil {
		panic("diagnostics cannot be nil")
	}
	if arena == nil {
		panic("arena cannot be nil")
	}
	return &TreeAnalysisService{
		parser:      parser,
		outlines:    outlines,
		diagnostics: diagnostics,
		arena:       arena,
	}
}

// OpenFile parses a file from disk and returns a handle to the tree.
func (s *TreeAnalysisService) OpenFile(ctx context.Context, path string) (uuid.UUID, error) {
	tree, err := s.parser.ParseFile(ctx, path)
	if err != nil {
		return uuid.Nil, common.WrapServiceError(common.OpOpenFile, err)
	}

	handle := s.arena.Put(tree)
	slogger.Info(ctx, "File opened", slogger.Fields{
		"path":       path,
		"handle":     handle.String(),
		"has_errors": tree.HasSyntaxErrors(),
		"open_trees": s.arena.Len(),
	})
	return handle, nil
}

// OpenSource parses in-memory source text and returns a handle.
func (s *TreeAnalysisService) OpenSource(ctx context.Context, source string) (uuid.UUID, error) {
	tree, err := s.parser.Parse(ctx, []byte(source))
	if err != nil {
		return uuid.Nil, common.WrapServiceError(common.OpParseSource, err)
	}

	handle := s.arena.Put(tree)
	slogger.Debug(ctx, "Source opened", slogger.Fields{
		"handle":       handle.String(),
		"source_bytes": len(source),
		"has_errors":   tree.HasSyntaxErrors(),
	})
	return handle, nil
}

// Overview extracts the declaration forest of an open tree.
func (s *TreeAnalysisService) Overview(
	ctx context.Context,
	handle uuid.UUID,
	options inbound.AnalysisOptions,
) (valueobject.SourceOutline, error) {
	tree, err := s.arena.Get(handle)
	if err != nil {
		return valueobject.SourceOutline{}, err
	}

	outline, err := s.outlines.ExtractOutline(ctx, tree, outbound.OutlineOptions{
		MinVisibility:        options.MinVisibility,
		IncludeDocumentation: options.IncludeDocumentation,
	})
	if err != nil {
		return valueobject.SourceOutline{}, common.WrapServiceError(common.OpExtractOutline, err)
	}
	return outline, nil
}

// Imports lists the module names an open tree imports, sorted and
// deduplicated.
func (s *TreeAnalysisService) Imports(ctx context.Context, handle uuid.UUID) ([]string, error) {
	tree, err := s.arena.Get(handle)
	if err != nil {
		return nil, err
	}

	imports, err := s.outlines.ExtractImports(ctx, tree)
	if err != nil {
		return nil, common.WrapServiceError(common.OpExtractImports, err)
	}
	return imports, nil
}

// Diagnostics reports the syntax problems of an open tree.
func (s *TreeAnalysisService) Diagnostics(
	ctx context.Context,
	handle uuid.UUID,
	contextLines int,
) (valueobject.DiagnosticReport, error) {
	tree, err := s.arena.Get(handle)
	if err != nil {
		return valueobject.DiagnosticReport{}, err
	}

	report, err := s.diagnostics.ExtractDiagnostics(ctx, tree, outbound.DiagnosticOptions{
		ContextLines: contextLines,
	})
	if err != nil {
		return valueobject.DiagnosticReport{}, common.WrapServiceError(common.OpExtractDiagnostics, err)
	}
	return report, nil
}

// SerializeToCode renders an open tree back to source text. The render is
// exact: parsing the result again yields the same tree.
func (s *TreeAnalysisService) SerializeToCode(ctx context.Context, handle uuid.UUID) (string, error) {
	tree, err := s.arena.Get(handle)
	if err != nil {
		return "", err
	}
	return tree.Tokens().Render(), nil
}

// Release drops a handle. Releasing an unknown handle is not an error.
func (s *TreeAnalysisService) Release(ctx context.Context, handle uuid.UUID) error {
	s.arena.Release(handle)
	slogger.Debug(ctx, "Handle released", slogger.Fields{
		"handle":     handle.String(),
		"open_trees": s.arena.Len(),
	})
	return nil
}
