package cmd

import (
	"context"
	"os/signal"
	"syscall"

	mcpserver "swiftscope/internal/adapter/inbound/mcp"
	"swiftscope/internal/application/common/slogger"

	"github.com/spf13/cobra"
)

// newMCPCmd creates and returns the mcp command.
func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the analysis tools over the Model Context Protocol",
		Long: `Start an MCP server on standard input and output.

The server exposes the analysis and editing operations as MCP tools so
LLM agents can open Swift files, read their outlines and apply
token-level edits. Stdout carries the protocol; logs go to stderr.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runMCPServer()
		},
	}
}

// runMCPServer builds the facade and serves it until the process is
// signalled.
func runMCPServer() error {
	// Stdout belongs to the MCP transport.
	configureLogging("stderr")

	services, err := newAnalysisServices()
	if err != nil {
		return err
	}

	server, err := mcpserver.NewServer(services.analysis, services.edits)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Serve(ctx); err != nil && ctx.Err() == nil {
		return err
	}

	slogger.InfoNoCtx("MCP server stopped", nil)
	return nil
}

func init() { //nolint:gochecknoinits // Standard Cobra CLI pattern for command registration
	rootCmd.AddCommand(newMCPCmd())
}
