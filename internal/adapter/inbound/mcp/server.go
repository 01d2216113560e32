// Package mcp exposes the Swift analysis facade as MCP tools over stdio.
// Stdout carries the protocol only; all logging goes through slogger,
// which the mcp command points at stderr.
package mcp

import (
	"context"
	"errors"

	"swiftscope/internal/application/common/slogger"
	"swiftscope/internal/port/inbound"
	"swiftscope/internal/version"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverName = "swiftscope-mcp-server"

// Server hosts the MCP tool surface over the tree facade. The analyze
// tools create handles; a handle stays open across reads and edits until
// close_handle drops it, so one parse can back a whole editing session.
type Server struct {
	analysis inbound.TreeAnalysisService
	edits    inbound.TreeEditService
	server   *mcp.Server
}

// NewServer wires the tool surface over the given services.
func NewServer(analysis inbound.TreeAnalysisService, edits inbound.TreeEditService) (*Server, error) {
	if analysis == nil {
		return nil, errors.New("analysis service cannot be nil")
	}
	if edits == nil {
		return nil, errors.New("edit service cannot be nil")
	}

	s := &Server{
		analysis: analysis,
		edits:    edits,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    serverName,
			Version: version.GetVersion().FormatShort(),
		}, nil),
	}
	s.registerTools()
	return s, nil
}

// Serve runs the server over stdio until the context is canceled or the
// client disconnects.
func (s *Server) Serve(ctx context.Context) error {
	slogger.Info(ctx, "Starting MCP server on stdio", slogger.Fields{
		"server":  serverName,
		"version": version.GetVersion().FormatShort(),
	})
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// handleProperty describes the tree-handle parameter shared by every tool
// that operates on an open tree.
func handleProperty() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "string",
		Description: "Tree handle returned by analyze_file or analyze_source",
	}
}

// targetProperties describe how edit tools address a token: either a
// token address, or a 1-based line with an optional selection strategy.
func targetProperties() map[string]*jsonschema.Schema {
	return map[string]*jsonschema.Schema{
		"handle": handleProperty(),
		"address": {
			Type:        "string",
			Description: "Token address, e.g. \"17\". Takes precedence over line",
		},
		"line": {
			Type:        "integer",
			Description: "1-based source line to pick a token from (alternative to address)",
		},
		"strategy": {
			Type:        "string",
			Description: "Token selection strategy for line addressing: first, last, largest-span, smallest-span, nearest-to-column (default first)",
		},
		"column": {
			Type:        "integer",
			Description: "1-based column, used by the nearest-to-column strategy",
		},
	}
}

// analysisProperties describe the overview extraction options shared by
// the analyze tools and the outline tool.
func analysisProperties() map[string]*jsonschema.Schema {
	return map[string]*jsonschema.Schema{
		"min_visibility": {
			Type:        "string",
			Description: "Lowest access level to include: private, fileprivate, internal, package, public, open (default private, i.e. everything)",
		},
		"include_documentation": {
			Type:        "boolean",
			Description: "Parse doc comments into structured documentation (default true)",
		},
	}
}

// registerTools declares every tool the server offers.
func (s *Server) registerTools() {
	analyzeFileProps := analysisProperties()
	analyzeFileProps["path"] = &jsonschema.Schema{
		Type:        "string",
		Description: "Path of the Swift source file to parse",
	}
	s.server.AddTool(&mcp.Tool{
		Name:        "analyze_file",
		Description: "Parse a Swift file and return its declaration outline together with a handle to the parsed tree. The handle stays open for follow-up tools until close_handle.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: analyzeFileProps,
			Required:   []string{"path"},
		},
	}, s.handleAnalyzeFile)

	analyzeSourceProps := analysisProperties()
	analyzeSourceProps["source"] = &jsonschema.Schema{
		Type:        "string",
		Description: "Swift source text to parse",
	}
	s.server.AddTool(&mcp.Tool{
		Name:        "analyze_source",
		Description: "Parse Swift source text and return its declaration outline together with a handle to the parsed tree.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: analyzeSourceProps,
			Required:   []string{"source"},
		},
	}, s.handleAnalyzeSource)

	outlineProps := analysisProperties()
	outlineProps["handle"] = handleProperty()
	outlineProps["format"] = &jsonschema.Schema{
		Type:        "string",
		Description: "Output format: json (structured, default), yaml, markdown or interface",
	}
	s.server.AddTool(&mcp.Tool{
		Name:        "outline",
		Description: "Extract the declaration outline of an open tree, optionally filtered by visibility and rendered as yaml, markdown or Swift interface text.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: outlineProps,
			Required:   []string{"handle"},
		},
	}, s.handleOutline)

	replaceProps := targetProperties()
	replaceProps["new_text"] = &jsonschema.Schema{
		Type:        "string",
		Description: "Replacement text; must lex to exactly one Swift token",
	}
	s.server.AddTool(&mcp.Tool{
		Name:        "replace_node",
		Description: "Replace the text of one token, keeping its surrounding layout and comments. Returns the edited source and a fresh handle; the original handle still addresses the unedited tree.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: replaceProps,
			Required:   []string{"handle", "new_text"},
		},
	}, s.handleReplaceNode)

	s.server.AddTool(&mcp.Tool{
		Name:        "delete_node",
		Description: "Delete the text of one token, keeping its surrounding layout and comments. Returns the removed text, the edited source and a fresh handle.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: targetProperties(),
			Required:   []string{"handle"},
		},
	}, s.handleDeleteNode)

	docProps := targetProperties()
	docProps["text"] = &jsonschema.Schema{
		Type:        "string",
		Description: "New documentation text; lines are emitted as /// comments. Omit to resolve the address without changing anything",
	}
	s.server.AddTool(&mcp.Tool{
		Name:        "set_doc_comment",
		Description: "Replace the documentation comment block attached to a declaration token. Indentation and unrelated leading comments are preserved.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: docProps,
			Required:   []string{"handle"},
		},
	}, s.handleSetDocComment)

	s.server.AddTool(&mcp.Tool{
		Name:        "reindent",
		Description: "Normalize leading whitespace of an open tree to nesting depth times width spaces. Running it twice with the same width changes nothing.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"handle": handleProperty(),
				"width": {
					Type:        "integer",
					Description: "Spaces per nesting level (default 4)",
				},
			},
			Required: []string{"handle"},
		},
	}, s.handleReindent)

	s.server.AddTool(&mcp.Tool{
		Name:        "serialize",
		Description: "Render an open tree back to source text, byte for byte.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"handle": handleProperty(),
			},
			Required: []string{"handle"},
		},
	}, s.handleSerialize)

	s.server.AddTool(&mcp.Tool{
		Name:        "diagnostics",
		Description: "Report the syntax problems of an open tree with line, column, source line and caret.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"handle": handleProperty(),
				"context_lines": {
					Type:        "integer",
					Description: "Lines of surrounding source to include per problem (default 0)",
				},
			},
			Required: []string{"handle"},
		},
	}, s.handleDiagnostics)

	s.server.AddTool(&mcp.Tool{
		Name:        "close_handle",
		Description: "Release an open tree handle. Closing an unknown handle is not an error.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"handle": handleProperty(),
			},
			Required: []string{"handle"},
		},
	}, s.handleCloseHandle)
}
