package cmd

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"swiftscope/internal/application/render"

	"github.com/spf13/cobra"
)

// diagnoseCmd implements: swiftscope diagnose --file path.swift [--context 2].
func newDiagnoseCmd() *cobra.Command {
	var filePath string
	var contextLines int
	var formatFlag string
	var outPath string

	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Report syntax problems in a Swift source file",
		Long: `Parse a Swift source file and report its syntax problems with exact
line and column positions, a caret marker under the offending text, an
optional window of surrounding lines and fix-it hints for missing
tokens.

A clean file produces an empty diagnostics list.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if strings.TrimSpace(filePath) == "" {
				return errors.New("--file is required")
			}
			if contextLines < 0 {
				return errors.New("--context cannot be negative")
			}
			return runDiagnose(filePath, contextLines, formatFlag, outPath)
		},
	}

	cmd.Flags().StringVar(&filePath, "file", "", "Path to Swift source file, or - for stdin (required)")
	cmd.Flags().IntVar(&contextLines, "context", 0, "Lines of source context around each problem")
	cmd.Flags().StringVar(&formatFlag, "format", "text", "Output format: json, yaml, markdown or text")
	cmd.Flags().StringVar(&outPath, "out", "", "Optional path to write output")

	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// runDiagnose performs: parse -> extract diagnostics -> render.
func runDiagnose(filePath string, contextLines int, formatFlag, outPath string) error {
	configureLogging("stderr")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	format, err := render.ParseFormat(formatFlag)
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

	report, err := services.analysis.Diagnostics(ctx, handle, contextLines)
	if err != nil {
		return err
	}
	report.Path = path

	return writeRendered(outPath, func(w io.Writer) error {
		return render.Diagnostics(w, report, format)
	})
}

func init() { //nolint:gochecknoinits // required by cobra for command registration
	rootCmd.AddCommand(newDiagnoseCmd())
}
