package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"swiftscope/internal/adapter/outbound/filefilter"
	"swiftscope/internal/adapter/outbound/messaging"
	"swiftscope/internal/adapter/outbound/treesitter"
	swiftparser "swiftscope/internal/adapter/outbound/treesitter/parsers/swift"
	"swiftscope/internal/application/common/slogger"
	"swiftscope/internal/application/render"
	"swiftscope/internal/application/service"
	"swiftscope/internal/port/inbound"
	"swiftscope/internal/port/outbound"

	"github.com/spf13/cobra"
)

// indexCmd implements: swiftscope index --root ./Sources [--queue].
func newIndexCmd() *cobra.Command {
	var root string
	var queue bool
	var minVisibility string
	var includeGlobs []string
	var excludeGlobs []string
	var noGitignore bool
	var maxFileSize int64
	var priority string
	var formatFlag string
	var outPath string

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Analyze every Swift file under a project root",
		Long: `Discover the Swift source files under a project root and analyze them.

By default the analysis runs in process and prints one merged project
outline. With --queue, one analysis job per file is published to NATS
JetStream instead and workers store the outlines in PostgreSQL.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if strings.TrimSpace(root) == "" {
				return errors.New("--root is required")
			}
			return runIndex(indexRequest{
				root:          root,
				queue:         queue,
				minVisibility: minVisibility,
				includeGlobs:  includeGlobs,
				excludeGlobs:  excludeGlobs,
				noGitignore:   noGitignore,
				maxFileSize:   maxFileSize,
				priority:      priority,
				formatFlag:    formatFlag,
				outPath:       outPath,
			})
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "Project root directory (required)")
	cmd.Flags().BoolVar(&queue, "queue", false, "Publish analysis jobs to NATS instead of analyzing in process")
	cmd.Flags().StringVar(&minVisibility, "min-visibility", "", "Lowest access level to include")
	cmd.Flags().StringSliceVar(&includeGlobs, "include", nil, "Glob patterns of files to include")
	cmd.Flags().StringSliceVar(&excludeGlobs, "exclude", nil, "Glob patterns of files to exclude")
	cmd.Flags().BoolVar(&noGitignore, "no-gitignore", false, "Ignore .gitignore rules during discovery")
	cmd.Flags().Int64Var(&maxFileSize, "max-file-size", 0, "Skip files larger than this many bytes")
	cmd.Flags().StringVar(&priority, "priority", "", "Job priority for --queue (low, normal, high)")
	cmd.Flags().StringVar(&formatFlag, "format", "", "Output format: json, yaml, markdown or interface")
	cmd.Flags().StringVar(&outPath, "out", "", "Optional path to write output")

	_ = cmd.MarkFlagRequired("root")

	return cmd
}

// indexRequest carries the validated index command flags.
type indexRequest struct {
	root          string
	queue         bool
	minVisibility string
	includeGlobs  []string
	excludeGlobs  []string
	noGitignore   bool
	maxFileSize   int64
	priority      string
	formatFlag    string
	outPath       string
}

// runIndex dispatches to queued submission or in-process analysis.
func runIndex(req indexRequest) error {
	configureLogging("stderr")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	cfg := GetConfig()
	if len(req.includeGlobs) == 0 {
		req.includeGlobs = cfg.Analysis.IncludeGlobs
	}
	if len(req.excludeGlobs) == 0 {
		req.excludeGlobs = cfg.Analysis.ExcludeGlobs
	}
	if req.maxFileSize == 0 {
		req.maxFileSize = cfg.Analysis.MaxFileSizeBytes
	}

	if req.queue {
		return runQueuedIndex(ctx, req)
	}
	return runInlineIndex(ctx, req)
}

// runQueuedIndex publishes one analysis job per discovered file.
func runQueuedIndex(ctx context.Context, req indexRequest) error {
	cfg := GetConfig()

	publisher, err := messaging.NewNATSMessagePublisher(cfg.NATS)
	if err != nil {
		return fmt.Errorf("create publisher: %w", err)
	}
	if err := publisher.Connect(); err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}
	defer func() {
		if err := publisher.Disconnect(); err != nil {
			slogger.ErrorNoCtx("Failed to disconnect publisher", slogger.Fields{"error": err.Error()})
		}
	}()
	if err := publisher.EnsureStream(); err != nil {
		return fmt.Errorf("ensure streams: %w", err)
	}

	indexService := service.NewIndexService(filefilter.NewSwiftFileDiscoverer(), publisher)
	submission, err := indexService.IndexProject(ctx, req.root, inbound.IndexOptions{
		IncludeGlobs:     req.includeGlobs,
		ExcludeGlobs:     req.excludeGlobs,
		RespectGitignore: !req.noGitignore,
		MaxFileSize:      req.maxFileSize,
		MinVisibility:    req.minVisibility,
		Priority:         req.priority,
	})
	if err != nil {
		return err
	}

	return writeRendered(req.outPath, func(w io.Writer) error {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(submission)
	})
}

// runInlineIndex analyzes the project in process and renders the merged
// outline.
func runInlineIndex(ctx context.Context, req indexRequest) error {
	cfg := GetConfig()

	format, err := render.ParseFormat(req.formatFlag)
	if err != nil {
		return err
	}

	options, err := analysisOptionsFromConfig(cfg, req.minVisibility, cfg.Analysis.IncludeDocumentation)
	if err != nil {
		return err
	}

	parser, err := treesitter.NewSwiftParser()
	if err != nil {
		return fmt.Errorf("create parser: %w", err)
	}

	projectService := service.NewProjectAnalysisService(
		filefilter.NewSwiftFileDiscoverer(),
		parser,
		swiftparser.NewSwiftOutlineExtractor(),
		outbound.DiscoveryOptions{
			IncludeGlobs:     req.includeGlobs,
			ExcludeGlobs:     req.excludeGlobs,
			RespectGitignore: !req.noGitignore,
			MaxFileSize:      req.maxFileSize,
		},
		cfg.Analysis.Concurrency,
	)

	project, err := projectService.AnalyzeProject(ctx, req.root, options)
	if err != nil {
		return err
	}

	return writeRendered(req.outPath, func(w io.Writer) error {
		return render.Project(w, project, format)
	})
}

func init() { //nolint:gochecknoinits // required by cobra for command registration
	rootCmd.AddCommand(newIndexCmd())
}
