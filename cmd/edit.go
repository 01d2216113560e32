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
	"swiftscope/internal/port/inbound"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// editCmd implements: swiftscope edit --file path.swift --line 3 --replace newName.
func newEditCmd() *cobra.Command {
	var filePath string
	var address string
	var line int
	var strategy string
	var column int
	var replaceText string
	var deleteNode bool
	var docText string
	var reindent bool
	var width int
	var writeBack bool
	var outPath string

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Apply one structured edit to a Swift source file",
		Long: `Apply a single token-level edit to a Swift source file and print the
resulting source. Everything the edit does not touch is preserved byte
for byte, comments and whitespace included.

The target token is picked by --address, or by --line with an optional
--strategy (first, last, largest-span, smallest-span, nearest-to-column)
and --column. Exactly one edit operation must be given:

  --replace TEXT   swap the token's text
  --delete         remove the token, keeping surrounding trivia
  --doc TEXT       rewrite the declaration's documentation comment
  --reindent       normalize leading whitespace (no target needed)

By default the edited source goes to stdout; --write rewrites the input
file in place.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if strings.TrimSpace(filePath) == "" {
				return errors.New("--file is required")
			}
			ops := 0
			if replaceText != "" {
				ops++
			}
			if deleteNode {
				ops++
			}
			if docText != "" {
				ops++
			}
			if reindent {
				ops++
			}
			if ops != 1 {
				return errors.New("exactly one of --replace, --delete, --doc or --reindent is required")
			}
			if writeBack && filePath == "-" {
				return errors.New("--write needs a real file, not stdin")
			}
			return runEdit(editRequest{
				filePath:    filePath,
				address:     address,
				line:        line,
				strategy:    strategy,
				column:      column,
				replaceText: replaceText,
				deleteNode:  deleteNode,
				docText:     docText,
				reindent:    reindent,
				width:       width,
				writeBack:   writeBack,
				outPath:     outPath,
			})
		},
	}

	cmd.Flags().StringVar(&filePath, "file", "", "Path to Swift source file, or - for stdin (required)")
	cmd.Flags().StringVar(&address, "address", "", "Token address of the edit target")
	cmd.Flags().IntVar(&line, "line", 0, "1-based line of the edit target")
	cmd.Flags().StringVar(&strategy, "strategy", "", "Token selection strategy for --line")
	cmd.Flags().IntVar(&column, "column", 0, "1-based column for the nearest-to-column strategy")
	cmd.Flags().StringVar(&replaceText, "replace", "", "Replacement text for the addressed token")
	cmd.Flags().BoolVar(&deleteNode, "delete", false, "Delete the addressed token")
	cmd.Flags().StringVar(&docText, "doc", "", "New documentation text for the addressed declaration")
	cmd.Flags().BoolVar(&reindent, "reindent", false, "Normalize indentation of the whole file")
	cmd.Flags().IntVar(&width, "width", 4, "Spaces per indentation level for --reindent")
	cmd.Flags().BoolVar(&writeBack, "write", false, "Rewrite the input file with the edited source")
	cmd.Flags().StringVar(&outPath, "out", "", "Optional path to write the edited source")

	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// editRequest carries the validated edit command flags.
type editRequest struct {
	filePath    string
	address     string
	line        int
	strategy    string
	column      int
	replaceText string
	deleteNode  bool
	docText     string
	reindent    bool
	width       int
	writeBack   bool
	outPath     string
}

// runEdit performs: open -> resolve target -> apply edit -> write source.
func runEdit(req editRequest) error {
	configureLogging("stderr")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	services, err := newAnalysisServices()
	if err != nil {
		return err
	}

	handle, _, err := openSourceArg(ctx, services, req.filePath)
	if err != nil {
		return err
	}
	defer func() { _ = services.analysis.Release(ctx, handle) }()

	result, err := applyEdit(ctx, services.edits, handle, req)
	if err != nil {
		return err
	}
	defer func() { _ = services.analysis.Release(ctx, result.Handle) }()

	return writeEdited(req, result.Source)
}

// applyEdit dispatches to the edit operation the flags selected.
func applyEdit(
	ctx context.Context,
	edits inbound.TreeEditService,
	handle uuid.UUID,
	req editRequest,
) (inbound.EditResult, error) {
	if req.reindent {
		return edits.Reindent(ctx, handle, req.width)
	}

	address, err := resolveTokenAddress(ctx, edits, handle, req.address, req.line, req.strategy, req.column)
	if err != nil {
		return inbound.EditResult{}, err
	}

	switch {
	case req.replaceText != "":
		return edits.ReplaceToken(ctx, handle, address, req.replaceText)
	case req.deleteNode:
		deleted, result, err := edits.DeleteToken(ctx, handle, address)
		if err == nil {
			slogger.InfoNoCtx("Deleted token", slogger.Fields{"address": address, "text": deleted})
		}
		return result, err
	default:
		return edits.SetDocComment(ctx, handle, address, &req.docText)
	}
}

// writeEdited routes the edited source to stdout, --out or back to the
// input file.
func writeEdited(req editRequest, source string) error {
	switch {
	case req.writeBack:
		if err := os.WriteFile(req.filePath, []byte(source), 0o600); err != nil {
			return fmt.Errorf("write file: %w", err)
		}
		slogger.InfoNoCtx("Rewrote file", slogger.Fields{"path": req.filePath})
		return nil
	case req.outPath != "":
		if err := os.WriteFile(req.outPath, []byte(source), 0o600); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		slogger.InfoNoCtx("Wrote output", slogger.Fields{"path": req.outPath})
		return nil
	default:
		_, err := io.WriteString(os.Stdout, source)
		return err
	}
}

func init() { //nolint:gochecknoinits // required by cobra for command registration
	rootCmd.AddCommand(newEditCmd())
}
