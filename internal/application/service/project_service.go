package service

import (
	"context"
	"runtime"

	"swiftscope/internal/application/common"
	"swiftscope/internal/application/common/slogger"
	"swiftscope/internal/domain/valueobject"
	"swiftscope/internal/port/inbound"
	"swiftscope/internal/port/outbound"

	"golang.org/x/sync/errgroup"
)

// ProjectAnalysisService walks a project tree and merges per-file
// outlines into one project overview. Files are analyzed concurrently;
// the merge order is fixed by path, so results are deterministic.
type ProjectAnalysisService struct {
	discoverer  outbound.FileDiscoverer
	parser      outbound.SyntaxParser
	outlines    outbound.OutlineExtractor
	discovery   outbound.DiscoveryOptions
	concurrency int
}

// NewProjectAnalysisService creates the project analysis service.
// Concurrency values below one fall back to the CPU count.
func NewProjectAnalysisService(
	discoverer outbound.FileDiscoverer,
	parser outbound.SyntaxParser,
	outlines outbound.OutlineExtractor,
	discovery outbound.DiscoveryOptions,
	concurrency int,
) *ProjectAnalysisService {
	if discoverer == nil {
		panic("discoverer cannot be nil")
	}
	if parser == nil {
		panic("parser cannot be nil")
	}
	if outlines == nil {
		panic("outlines cannot be nil")
	}
	if concurrency < 1 {
		concurrency = runtime.NumCPU()
	}
	return &ProjectAnalysisService{
		discoverer:  discoverer,
		parser:      parser,
		outlines:    outlines,
		discovery:   discovery,
		concurrency: concurrency,
	}
}

// AnalyzeProject discovers, parses and outlines every source file under
// root. Files that disappear or fail to read mid-run are skipped with a
// warning; the rest of the project is still analyzed.
func (s *ProjectAnalysisService) AnalyzeProject(
	ctx context.Context,
	root string,
	options inbound.AnalysisOptions,
) (valueobject.ProjectOutline, error) {
	files, err := s.discoverer.DiscoverSourceFiles(ctx, root, s.discovery)
	if err != nil {
		return valueobject.ProjectOutline{}, common.WrapServiceError(common.OpDiscoverFiles, err)
	}

	results := make([]*valueobject.SourceOutline, len(files))
	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, file := range files {
		g.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			tree, err := s.parser.ParseFile(groupCtx, file.AbsolutePath)
			if err != nil {
				slogger.Warn(groupCtx, "Skipping file that failed to parse", slogger.Fields{
					"path":  file.Path,
					"error": err.Error(),
				})
				return nil
			}

			outline, err := s.outlines.ExtractOutline(groupCtx, tree, outbound.OutlineOptions{
				MinVisibility:        options.MinVisibility,
				IncludeDocumentation: options.IncludeDocumentation,
				Path:                 file.Path,
			})
			if err != nil {
				slogger.Warn(groupCtx, "Skipping file that failed to outline", slogger.Fields{
					"path":  file.Path,
					"error": err.Error(),
				})
				return nil
			}

			results[i] = &outline
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return valueobject.ProjectOutline{}, common.WrapServiceError(common.OpAnalyzeProject, err)
	}

	outlines := make([]valueobject.SourceOutline, 0, len(results))
	for _, r := range results {
		if r != nil {
			outlines = append(outlines, *r)
		}
	}

	project := valueobject.NewProjectOutline(outlines)
	slogger.Info(ctx, "Project analyzed", slogger.Fields{
		"root":         root,
		"files":        project.FileCount,
		"skipped":      len(files) - project.FileCount,
		"declarations": project.DeclarationCount,
		"imports":      len(project.Imports),
	})
	return project, nil
}
