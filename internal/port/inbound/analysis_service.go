package inbound

import (
	"context"

	"swiftscope/internal/domain/valueobject"

	"github.com/google/uuid"
)

// AnalysisOptions configures overview extraction for one request.
type AnalysisOptions struct {
	// MinVisibility filters out declarations below this level.
	MinVisibility valueobject.Visibility

	// IncludeDocumentation controls doc comment parsing.
	IncludeDocumentation bool
}

// TreeAnalysisService is the inbound port for parsing sources and reading
// overviews. Parsed trees are held in a handle table so callers can run
// several operations against one parse.
type TreeAnalysisService interface {
	// OpenFile parses a file from disk and returns a handle to the tree.
	OpenFile(ctx context.Context, path string) (uuid.UUID, error)

	// OpenSource parses in-memory source text and returns a handle.
	OpenSource(ctx context.Context, source string) (uuid.UUID, error)

	// Overview extracts the declaration forest of an open tree.
	Overview(ctx context.Context, handle uuid.UUID, options AnalysisOptions) (valueobject.SourceOutline, error)

	// Imports lists the module names an open tree imports, sorted and
	// deduplicated.
	Imports(ctx context.Context, handle uuid.UUID) ([]string, error)

	// Diagnostics reports the syntax problems of an open tree.
	Diagnostics(ctx context.Context, handle uuid.UUID, contextLines int) (valueobject.DiagnosticReport, error)

	// SerializeToCode renders an open tree back to source text, exactly.
	SerializeToCode(ctx context.Context, handle uuid.UUID) (string, error)

	// Release drops a handle. Releasing an unknown handle is not an error.
	Release(ctx context.Context, handle uuid.UUID) error
}

// ProjectAnalysisService aggregates overviews across many files.
type ProjectAnalysisService interface {
	// AnalyzeProject discovers, parses and outlines every source file
	// under root, merging the results into one project overview.
	AnalyzeProject(ctx context.Context, root string, options AnalysisOptions) (valueobject.ProjectOutline, error)
}

// TokenQuery addresses tokens through a line instead of a token index.
type TokenQuery struct {
	// Line is 1-based, as printed in diagnostics.
	Line int

	// Strategy picks one of the tokens found on the line.
	Strategy valueobject.SelectionStrategy

	// Column is 1-based and only used by nearest-to-column.
	Column int
}

// TokenQueryResult lists the tokens found on a line and the one the
// strategy selected. Both are empty when the line holds no tokens; that
// is a result, not an error.
type TokenQueryResult struct {
	Tokens   []valueobject.Token `json:"tokens"`
	Selected *valueobject.Token  `json:"selected,omitempty"`
}

// EditResult carries the source text produced by a mutation, together
// with the re-parsed tree's handle. Every mutation yields a new tree; the
// original handle keeps addressing the old one until released.
type EditResult struct {
	Handle uuid.UUID `json:"handle"`
	Source string    `json:"source"`
}

// TreeEditService is the inbound port for path-addressed mutation of open
// trees. Addresses are token addresses; LocateTokens converts line/column
// positions into them.
type TreeEditService interface {
	// LocateTokens finds the tokens on one line of an open tree.
	LocateTokens(ctx context.Context, handle uuid.UUID, query TokenQuery) (TokenQueryResult, error)

	// ReplaceToken swaps the text of the addressed token, keeping its
	// trivia. The replacement must lex to exactly one token.
	ReplaceToken(ctx context.Context, handle uuid.UUID, address string, newText string) (EditResult, error)

	// DeleteToken removes the addressed token's text, keeping its trivia,
	// and returns the removed text alongside the edit result.
	DeleteToken(ctx context.Context, handle uuid.UUID, address string) (string, EditResult, error)

	// SetDocComment replaces the documentation attached to the addressed
	// token. A nil text resolves the address and changes nothing.
	SetDocComment(ctx context.Context, handle uuid.UUID, address string, text *string) (EditResult, error)

	// InsertDeclaration is a permanent stub; it always fails with an
	// invalid insertion point.
	InsertDeclaration(ctx context.Context, handle uuid.UUID, address string, content string) (EditResult, error)

	// Reindent normalizes leading whitespace to the nesting depth using
	// width spaces per level.
	Reindent(ctx context.Context, handle uuid.UUID, width int) (EditResult, error)
}
