package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	domainerrors "swiftscope/internal/domain/errors/domain"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// jsonResult wraps a payload as a single JSON text content block.
func jsonResult(data any) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response data: %w", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(content)},
		},
	}, nil
}

// errorResult reports a tool failure inside the result with IsError set.
// Tool errors must not surface as protocol-level errors; the calling
// model needs to see them to self-correct.
func errorResult(operation string, err error) (*mcp.CallToolResult, error) {
	result, marshalErr := jsonResult(map[string]any{
		"success":   false,
		"error":     err.Error(),
		"code":      errorCode(err),
		"operation": operation,
	})
	if marshalErr != nil {
		return nil, marshalErr
	}

	result.IsError = true
	return result, nil
}

// errorCode maps an error chain to a stable machine-readable code.
func errorCode(err error) string {
	switch {
	case errors.Is(err, domainerrors.ErrFileNotFound):
		return "FILE_NOT_FOUND"
	case errors.Is(err, domainerrors.ErrFileRead):
		return "FILE_READ_FAILED"
	case errors.Is(err, domainerrors.ErrParseFailed):
		return "PARSE_FAILED"
	case errors.Is(err, domainerrors.ErrInvalidHandle):
		return "INVALID_HANDLE"
	case errors.Is(err, domainerrors.ErrMalformedAddress):
		return "MALFORMED_ADDRESS"
	case errors.Is(err, domainerrors.ErrNodeNotFound):
		return "NODE_NOT_FOUND"
	case errors.Is(err, domainerrors.ErrInvalidInsertionPoint):
		return "INVALID_INSERTION_POINT"
	case errors.Is(err, domainerrors.ErrInvalidReplacementContext):
		return "INVALID_REPLACEMENT"
	case errors.Is(err, domainerrors.ErrModificationFailed):
		return "MODIFICATION_FAILED"
	case errors.Is(err, domainerrors.ErrInvalidIndentWidth):
		return "INVALID_INDENT_WIDTH"
	default:
		return "INVALID_ARGUMENT"
	}
}
