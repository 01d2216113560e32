package outbound

import (
	"context"

	"swiftscope/internal/domain/valueobject"
)

// SyntaxParser defines the outbound port for parsing source text into
// syntax trees. Implementations must produce trees whose token stream
// renders back to the input byte for byte.
type SyntaxParser interface {
	// Parse parses in-memory source text.
	Parse(ctx context.Context, source []byte) (*valueobject.SyntaxTree, error)

	// ParseFile reads and parses a file from disk.
	ParseFile(ctx context.Context, path string) (*valueobject.SyntaxTree, error)
}

// OutlineOptions configures outline extraction.
type OutlineOptions struct {
	// MinVisibility filters out declarations below this level. Enum cases
	// are judged by their enclosing enum's resolved visibility.
	MinVisibility valueobject.Visibility

	// IncludeDocumentation controls whether doc comments are parsed into
	// structured documentation on each entry.
	IncludeDocumentation bool

	// Path is stamped onto the produced outline for aggregation.
	Path string
}

// OutlineExtractor walks a syntax tree and produces its declaration
// overview.
type OutlineExtractor interface {
	// ExtractOutline builds the visibility-filtered declaration forest of
	// one parsed file.
	ExtractOutline(
		ctx context.Context,
		tree *valueobject.SyntaxTree,
		options OutlineOptions,
	) (valueobject.SourceOutline, error)

	// ExtractImports collects the module names a file imports, sorted and
	// deduplicated, without building the declaration forest.
	ExtractImports(ctx context.Context, tree *valueobject.SyntaxTree) ([]string, error)
}

// DiagnosticOptions configures diagnostic extraction.
type DiagnosticOptions struct {
	// ContextLines is the number of source lines shown around each
	// diagnostic location.
	ContextLines int

	// Path is stamped onto the produced report.
	Path string
}

// DiagnosticExtractor derives syntax diagnostics from a parsed tree.
// Extraction degrades rather than fails: a tree without errors yields an
// empty report.
type DiagnosticExtractor interface {
	ExtractDiagnostics(
		ctx context.Context,
		tree *valueobject.SyntaxTree,
		options DiagnosticOptions,
	) (valueobject.DiagnosticReport, error)
}

// IndentationAnalyzer finds the source spans that need one extra
// indentation level beyond plain brace counting.
type IndentationAnalyzer interface {
	ExtraIndentRanges(tree *valueobject.SyntaxTree) []valueobject.ByteRange
}
