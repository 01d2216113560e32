package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"swiftscope/internal/application/common/slogger"
	"swiftscope/internal/application/render"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// outlineCmd implements: swiftscope outline --file path.swift [--format json].
func newOutlineCmd() *cobra.Command {
	var filePath string
	var minVisibility string
	var noDocs bool
	var formatFlag string
	var outPath string

	cmd := &cobra.Command{
		Use:   "outline",
		Short: "Extract the declaration outline of a Swift source file",
		Long: `Parse a Swift source file and print its declaration outline: the tree of
types, functions, properties and extensions with visibility, signatures
and documentation.

Pass "-" as the file to read source from standard input. The outline can
be rendered as json, yaml, markdown or as a Swift-like interface view.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if strings.TrimSpace(filePath) == "" {
				return errors.New("--file is required")
			}
			return runOutline(filePath, minVisibility, !noDocs, formatFlag, outPath)
		},
	}

	cmd.Flags().StringVar(&filePath, "file", "", "Path to Swift source file, or - for stdin (required)")
	cmd.Flags().StringVar(&minVisibility, "min-visibility", "", "Lowest access level to include (private, fileprivate, internal, package, public, open)")
	cmd.Flags().BoolVar(&noDocs, "no-docs", false, "Omit documentation from the outline")
	cmd.Flags().StringVar(&formatFlag, "format", "", "Output format: json, yaml, markdown or interface")
	cmd.Flags().StringVar(&outPath, "out", "", "Optional path to write output")

	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// runOutline performs: parse -> extract outline -> render.
func runOutline(filePath, minVisibility string, includeDocs bool, formatFlag, outPath string) error {
	configureLogging("stderr")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	format, err := render.ParseFormat(formatFlag)
	if err != nil {
		return err
	}

	options, err := analysisOptionsFromConfig(GetConfig(), minVisibility, includeDocs)
	if err != nil {
		return err
	}

	services, err := newAnalysisServices()
	if err != nil {
		return err
	}

	handle, path, err := openSourceArg(ctx, services, filePath)
	if err != nil {
		return err
	}
	defer func() { _ = services.analysis.Release(ctx, handle) }()

	outline, err := services.analysis.Overview(ctx, handle, options)
	if err != nil {
		return err
	}
	outline.Path = path

	return writeRendered(outPath, func(w io.Writer) error {
		return render.Outline(w, outline, format)
	})
}

// openSourceArg opens either a file on disk or stdin when the path is
// "-". It returns the handle and the path to stamp into results.
func openSourceArg(ctx context.Context, services *analysisServices, filePath string) (uuid.UUID, string, error) {
	if filePath == "-" {
		src, err := io.ReadAll(os.Stdin)
		if err != nil {
			return uuid.Nil, "", fmt.Errorf("read stdin: %w", err)
		}
		handle, err := services.analysis.OpenSource(ctx, string(src))
		return handle, "", err
	}

	handle, err := services.analysis.OpenFile(ctx, filePath)
	return handle, filePath, err
}

// writeRendered writes the output of renderTo either to stdout or to a
// file when --out is set.
func writeRendered(outPath string, renderTo func(io.Writer) error) error {
	if outPath == "" {
		return renderTo(os.Stdout)
	}

	var b strings.Builder
	if err := renderTo(&b); err != nil {
		return err
	}
	if err := os.WriteFile(outPath, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	slogger.InfoNoCtx("Wrote output", slogger.Fields{"path": outPath})
	return nil
}

func init() { //nolint:gochecknoinits // required by cobra for command registration
	rootCmd.AddCommand(newOutlineCmd())
}
