package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"swiftscope/internal/application/render"
	domainerrors "swiftscope/internal/domain/errors/domain"
	"swiftscope/internal/domain/valueobject"
	"swiftscope/internal/port/inbound"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// defaultIndentWidth applies when reindent is called without a width.
const defaultIndentWidth = 4

type analyzeFileParams struct {
	Path                 string `json:"path"`
	MinVisibility        string `json:"min_visibility,omitempty"`
	IncludeDocumentation *bool  `json:"include_documentation,omitempty"`
}

type analyzeSourceParams struct {
	Source               string `json:"source"`
	MinVisibility        string `json:"min_visibility,omitempty"`
	IncludeDocumentation *bool  `json:"include_documentation,omitempty"`
}

type outlineParams struct {
	Handle               string `json:"handle"`
	MinVisibility        string `json:"min_visibility,omitempty"`
	IncludeDocumentation *bool  `json:"include_documentation,omitempty"`
	Format               string `json:"format,omitempty"`
}

// editTarget addresses one token of an open tree: directly by token
// address, or through a line plus a selection strategy.
type editTarget struct {
	Handle   string `json:"handle"`
	Address  string `json:"address,omitempty"`
	Line     int    `json:"line,omitempty"`
	Strategy string `json:"strategy,omitempty"`
	Column   int    `json:"column,omitempty"`
}

type replaceNodeParams struct {
	editTarget
	NewText string `json:"new_text"`
}

type setDocCommentParams struct {
	editTarget
	Text *string `json:"text,omitempty"`
}

type reindentParams struct {
	Handle string `json:"handle"`
	Width  int    `json:"width,omitempty"`
}

type handleParams struct {
	Handle string `json:"handle"`
}

type diagnosticsParams struct {
	Handle       string `json:"handle"`
	ContextLines int    `json:"context_lines,omitempty"`
}

type analyzeResponse struct {
	Success bool                      `json:"success"`
	Handle  string                    `json:"handle"`
	Path    string                    `json:"path,omitempty"`
	Outline valueobject.SourceOutline `json:"outline"`
}

type outlineResponse struct {
	Success  bool                       `json:"success"`
	Handle   string                     `json:"handle"`
	Format   string                     `json:"format"`
	Outline  *valueobject.SourceOutline `json:"outline,omitempty"`
	Rendered string                     `json:"rendered,omitempty"`
}

type editResponse struct {
	Success bool   `json:"success"`
	Handle  string `json:"handle"`
	Address string `json:"address,omitempty"`
	Deleted string `json:"deleted,omitempty"`
	Source  string `json:"source"`
}

type serializeResponse struct {
	Success bool   `json:"success"`
	Handle  string `json:"handle"`
	Source  string `json:"source"`
}

type diagnosticsResponse struct {
	Success bool                         `json:"success"`
	Handle  string                       `json:"handle"`
	Report  valueobject.DiagnosticReport `json:"report"`
}

type closeResponse struct {
	Success bool   `json:"success"`
	Handle  string `json:"handle"`
	Closed  bool   `json:"closed"`
}

// analysisOptions resolves the shared extraction parameters. An absent
// visibility includes everything; documentation parsing defaults to on.
func analysisOptions(minVisibility string, includeDocs *bool) (inbound.AnalysisOptions, error) {
	options := inbound.AnalysisOptions{
		MinVisibility:        valueobject.VisibilityPrivate,
		IncludeDocumentation: true,
	}

	if minVisibility != "" {
		visibility, err := valueobject.ParseVisibility(minVisibility)
		if err != nil {
			return inbound.AnalysisOptions{}, err
		}
		options.MinVisibility = visibility
	}
	if includeDocs != nil {
		options.IncludeDocumentation = *includeDocs
	}
	return options, nil
}

// parseHandle converts the wire handle into a UUID. Anything that does
// not parse is an unknown handle, not a protocol error.
func parseHandle(raw string) (uuid.UUID, error) {
	handle, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, domainerrors.InvalidHandleError(raw)
	}
	return handle, nil
}

// resolveTarget turns an edit target into the handle and token address
// the edit service operates on. Line addressing goes through the token
// locator first.
func (s *Server) resolveTarget(ctx context.Context, target editTarget) (uuid.UUID, string, error) {
	handle, err := parseHandle(target.Handle)
	if err != nil {
		return uuid.Nil, "", err
	}

	if target.Address != "" {
		return handle, target.Address, nil
	}
	if target.Line < 1 {
		return uuid.Nil, "", errors.New("either address or line is required")
	}

	strategy, err := valueobject.ParseSelectionStrategy(target.Strategy)
	if err != nil {
		return uuid.Nil, "", err
	}

	result, err := s.edits.LocateTokens(ctx, handle, inbound.TokenQuery{
		Line:     target.Line,
		Strategy: strategy,
		Column:   target.Column,
	})
	if err != nil {
		return uuid.Nil, "", err
	}
	if result.Selected == nil {
		return uuid.Nil, "", fmt.Errorf("%w: no token on line %d", domainerrors.ErrNodeNotFound, target.Line)
	}
	return handle, strconv.Itoa(result.Selected.Index), nil
}

func (s *Server) handleAnalyzeFile(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params analyzeFileParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return errorResult("analyze_file", fmt.Errorf("invalid parameters: %w", err))
	}
	if params.Path == "" {
		return errorResult("analyze_file", errors.New("path is required"))
	}
	options, err := analysisOptions(params.MinVisibility, params.IncludeDocumentation)
	if err != nil {
		return errorResult("analyze_file", err)
	}

	handle, err := s.analysis.OpenFile(ctx, params.Path)
	if err != nil {
		return errorResult("analyze_file", err)
	}

	outline, err := s.analysis.Overview(ctx, handle, options)
	if err != nil {
		_ = s.analysis.Release(ctx, handle)
		return errorResult("analyze_file", err)
	}

	return jsonResult(analyzeResponse{
		Success: true,
		Handle:  handle.String(),
		Path:    params.Path,
		Outline: outline,
	})
}

func (s *Server) handleAnalyzeSource(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params analyzeSourceParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return errorResult("analyze_source", fmt.Errorf("invalid parameters: %w", err))
	}
	if params.Source == "" {
		return errorResult("analyze_source", errors.New("source is required"))
	}
	options, err := analysisOptions(params.MinVisibility, params.IncludeDocumentation)
	if err != nil {
		return errorResult("analyze_source", err)
	}

	handle, err := s.analysis.OpenSource(ctx, params.Source)
	if err != nil {
		return errorResult("analyze_source", err)
	}

	outline, err := s.analysis.Overview(ctx, handle, options)
	if err != nil {
		_ = s.analysis.Release(ctx, handle)
		return errorResult("analyze_source", err)
	}

	return jsonResult(analyzeResponse{
		Success: true,
		Handle:  handle.String(),
		Outline: outline,
	})
}

func (s *Server) handleOutline(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params outlineParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return errorResult("outline", fmt.Errorf("invalid parameters: %w", err))
	}
	handle, err := parseHandle(params.Handle)
	if err != nil {
		return errorResult("outline", err)
	}
	options, err := analysisOptions(params.MinVisibility, params.IncludeDocumentation)
	if err != nil {
		return errorResult("outline", err)
	}
	format, err := render.ParseFormat(params.Format)
	if err != nil {
		return errorResult("outline", err)
	}

	outline, err := s.analysis.Overview(ctx, handle, options)
	if err != nil {
		return errorResult("outline", err)
	}

	response := outlineResponse{
		Success: true,
		Handle:  handle.String(),
		Format:  string(format),
	}
	if format == render.FormatJSON {
		response.Outline = &outline
	} else {
		var rendered strings.Builder
		if err := render.Outline(&rendered, outline, format); err != nil {
			return errorResult("outline", err)
		}
		response.Rendered = rendered.String()
	}
	return jsonResult(response)
}

func (s *Server) handleReplaceNode(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params replaceNodeParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return errorResult("replace_node", fmt.Errorf("invalid parameters: %w", err))
	}
	if params.NewText == "" {
		return errorResult("replace_node", errors.New("new_text is required"))
	}

	handle, address, err := s.resolveTarget(ctx, params.editTarget)
	if err != nil {
		return errorResult("replace_node", err)
	}

	result, err := s.edits.ReplaceToken(ctx, handle, address, params.NewText)
	if err != nil {
		return errorResult("replace_node", err)
	}

	return jsonResult(editResponse{
		Success: true,
		Handle:  result.Handle.String(),
		Address: address,
		Source:  result.Source,
	})
}

func (s *Server) handleDeleteNode(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params editTarget
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return errorResult("delete_node", fmt.Errorf("invalid parameters: %w", err))
	}

	handle, address, err := s.resolveTarget(ctx, params)
	if err != nil {
		return errorResult("delete_node", err)
	}

	deleted, result, err := s.edits.DeleteToken(ctx, handle, address)
	if err != nil {
		return errorResult("delete_node", err)
	}

	return jsonResult(editResponse{
		Success: true,
		Handle:  result.Handle.String(),
		Address: address,
		Deleted: deleted,
		Source:  result.Source,
	})
}

func (s *Server) handleSetDocComment(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params setDocCommentParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return errorResult("set_doc_comment", fmt.Errorf("invalid parameters: %w", err))
	}

	handle, address, err := s.resolveTarget(ctx, params.editTarget)
	if err != nil {
		return errorResult("set_doc_comment", err)
	}

	result, err := s.edits.SetDocComment(ctx, handle, address, params.Text)
	if err != nil {
		return errorResult("set_doc_comment", err)
	}

	return jsonResult(editResponse{
		Success: true,
		Handle:  result.Handle.String(),
		Address: address,
		Source:  result.Source,
	})
}

func (s *Server) handleReindent(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params reindentParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return errorResult("reindent", fmt.Errorf("invalid parameters: %w", err))
	}
	handle, err := parseHandle(params.Handle)
	if err != nil {
		return errorResult("reindent", err)
	}
	width := params.Width
	if width == 0 {
		width = defaultIndentWidth
	}

	result, err := s.edits.Reindent(ctx, handle, width)
	if err != nil {
		return errorResult("reindent", err)
	}

	return jsonResult(editResponse{
		Success: true,
		Handle:  result.Handle.String(),
		Source:  result.Source,
	})
}

func (s *Server) handleSerialize(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params handleParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return errorResult("serialize", fmt.Errorf("invalid parameters: %w", err))
	}
	handle, err := parseHandle(params.Handle)
	if err != nil {
		return errorResult("serialize", err)
	}

	source, err := s.analysis.SerializeToCode(ctx, handle)
	if err != nil {
		return errorResult("serialize", err)
	}

	return jsonResult(serializeResponse{
		Success: true,
		Handle:  handle.String(),
		Source:  source,
	})
}

func (s *Server) handleDiagnostics(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params diagnosticsParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return errorResult("diagnostics", fmt.Errorf("invalid parameters: %w", err))
	}
	handle, err := parseHandle(params.Handle)
	if err != nil {
		return errorResult("diagnostics", err)
	}
	if params.ContextLines < 0 {
		return errorResult("diagnostics", errors.New("context_lines cannot be negative"))
	}

	report, err := s.analysis.Diagnostics(ctx, handle, params.ContextLines)
	if err != nil {
		return errorResult("diagnostics", err)
	}

	return jsonResult(diagnosticsResponse{
		Success: true,
		Handle:  handle.String(),
		Report:  report,
	})
}

func (s *Server) handleCloseHandle(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params handleParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return errorResult("close_handle", fmt.Errorf("invalid parameters: %w", err))
	}
	handle, err := parseHandle(params.Handle)
	if err != nil {
		return errorResult("close_handle", err)
	}

	if err := s.analysis.Release(ctx, handle); err != nil {
		return errorResult("close_handle", err)
	}

	return jsonResult(closeResponse{
		Success: true,
		Handle:  handle.String(),
		Closed:  true,
	})
}
