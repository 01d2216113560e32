// Package treesitter adapts the tree-sitter Swift grammar to the domain
// syntax tree model. Parsing converts the native tree into fully owned Go
// values and derives the token stream the mutation operations work on, so
// no tree-sitter state outlives a Parse call.
package treesitter

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"swiftscope/internal/application/common/slogger"
	domainerrors "swiftscope/internal/domain/errors/domain"
	"swiftscope/internal/domain/valueobject"
	"sync"
	"time"

	forest "github.com/alexaandru/go-sitter-forest"
	tree_sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// grammarVersion identifies the grammar bundle used for parse metadata.
const grammarVersion = "go-sitter-forest/swift"

// SwiftParser parses Swift source into domain syntax trees. A parser may
// be shared between goroutines; the underlying tree-sitter parser is not
// reentrant, so parse calls serialize on a mutex.
type SwiftParser struct {
	mu     sync.Mutex
	parser *tree_sitter.Parser
	lang   *tree_sitter.Language
}

// NewSwiftParser creates a parser bound to the Swift grammar.
func NewSwiftParser() (*SwiftParser, error) {
	grammar := forest.GetLanguage(valueobject.LanguageSwift)
	if grammar == nil {
		return nil, errors.New("swift grammar is not available")
	}

	parser := tree_sitter.NewParser()
	if parser == nil {
		return nil, errors.New("failed to create tree-sitter parser")
	}

	if !parser.SetLanguage(grammar) {
		return nil, errors.New("failed to set swift language on parser")
	}

	return &SwiftParser{
		parser: parser,
		lang:   grammar,
	}, nil
}

// Parse parses in-memory Swift source. Syntax errors do not fail the
// parse; they surface as error and missing nodes for the diagnostics
// extractor, and the tree still round-trips to the input exactly.
func (p *SwiftParser) Parse(ctx context.Context, source []byte) (*valueobject.SyntaxTree, error) {
	startTime := time.Now()

	p.mu.Lock()
	tree, err := p.parser.ParseString(ctx, nil, source)
	p.mu.Unlock()
	if err != nil {
		return nil, domainerrors.ParseError(err.Error())
	}
	if tree == nil {
		return nil, domainerrors.ParseError("parser produced no tree")
	}
	defer tree.Close()

	rootNode, nodeCount, maxDepth := convertNode(tree.RootNode(), 0)
	tokens := deriveTokens(rootNode, source)

	metadata, err := valueobject.NewParseMetadata(time.Since(startTime), grammarVersion)
	if err != nil {
		return nil, domainerrors.ParseError(err.Error())
	}
	metadata.NodeCount = nodeCount
	metadata.MaxDepth = maxDepth
	metadata.TokenCount = tokens.Len()
	metadata.ErrorCount = countProblemNodes(rootNode)

	syntaxTree, err := valueobject.NewSyntaxTree(ctx, valueobject.LanguageSwift, rootNode, source, tokens, metadata)
	if err != nil {
		return nil, domainerrors.ParseError(err.Error())
	}

	slogger.Debug(ctx, "Swift source parsed", slogger.Fields{
		"source_length": len(source),
		"node_count":    nodeCount,
		"token_count":   tokens.Len(),
		"error_count":   metadata.ErrorCount,
		"max_depth":     maxDepth,
	})

	return syntaxTree, nil
}

// ParseFile reads and parses a Swift file. Missing files and unreadable
// files are reported as distinct error kinds.
func (p *SwiftParser) ParseFile(ctx context.Context, path string) (*valueobject.SyntaxTree, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domainerrors.FileNotFoundError(path)
		}
		return nil, domainerrors.FileReadError(path, err)
	}

	return p.Parse(ctx, content)
}
