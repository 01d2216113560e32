package valueobject

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"swiftscope/internal/application/common/slogger"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// LanguageSwift is the grammar name of the only language the tool parses.
const LanguageSwift = "swift"

// SyntaxTree represents one parsed source file as an immutable value
// object. The tree owns its source bytes, its node hierarchy and the token
// stream derived from them; rendering the token stream reproduces the
// source exactly. Edits never modify a tree in place, they produce a new
// one from re-parsed output.
type SyntaxTree struct {
	language    string
	rootNode    *SyntaxNode
	source      []byte
	tokens      *TokenStream
	lineOffsets []uint32
	metadata    ParseMetadata
	createdAt   time.Time
	metrics     *syntaxTreeMetrics
}

// ParseMetadata contains metadata about the parse operation.
type ParseMetadata struct {
	ParseDuration  time.Duration
	GrammarVersion string
	NodeCount      int
	MaxDepth       int
	TokenCount     int
	ErrorCount     int
}

// syntaxTreeMetrics holds OTEL metrics for SyntaxTree operations.
type syntaxTreeMetrics struct {
	treeOperationsCounter metric.Int64Counter
	parseTimeHistogram    metric.Float64Histogram
	nodeCountHistogram    metric.Int64Histogram
	tokenCountHistogram   metric.Int64Histogram
	treeDepthHistogram    metric.Int64Histogram
	sourceSizeGauge       metric.Int64Gauge
}

// NewSyntaxTree creates a new SyntaxTree value object with validation.
// Empty source is valid and yields a tree with an empty root.
func NewSyntaxTree(
	ctx context.Context,
	language string,
	rootNode *SyntaxNode,
	source []byte,
	tokens *TokenStream,
	metadata ParseMetadata,
) (*SyntaxTree, error) {
	if language == "" {
		return nil, errors.New("language cannot be empty")
	}

	if rootNode == nil {
		slogger.Error(ctx, "Failed to create SyntaxTree: root node is nil", slogger.Fields{
			"language":      language,
			"source_length": len(source),
		})
		return nil, errors.New("root node cannot be nil")
	}

	if int64(rootNode.EndByte) > int64(len(source)) {
		slogger.Error(ctx, "Failed to create SyntaxTree: root node end byte exceeds source length", slogger.Fields{
			"language":      language,
			"source_length": len(source),
			"root_end_byte": rootNode.EndByte,
		})
		return nil, errors.New("root node end byte exceeds source length")
	}

	if tokens == nil {
		tokens = NewTokenStream(nil)
	}

	metrics, err := initSyntaxTreeMetrics()
	if err != nil {
		slogger.Warn(ctx, "Failed to initialize syntax tree metrics, continuing without metrics", slogger.Fields{
			"error":    err.Error(),
			"language": language,
		})
	}

	st := &SyntaxTree{
		language:    language,
		rootNode:    rootNode,
		source:      source,
		tokens:      tokens,
		lineOffsets: computeLineOffsets(source),
		metadata:    metadata,
		createdAt:   time.Now(),
		metrics:     metrics,
	}

	if metrics != nil {
		metrics.recordCreation(
			ctx,
			language,
			metadata.ParseDuration,
			metadata.NodeCount,
			metadata.TokenCount,
			metadata.MaxDepth,
			int64(len(source)),
		)
	}

	slogger.Debug(ctx, "SyntaxTree created", slogger.Fields{
		"language":       language,
		"node_count":     metadata.NodeCount,
		"token_count":    metadata.TokenCount,
		"max_depth":      metadata.MaxDepth,
		"source_length":  len(source),
		"parse_duration": metadata.ParseDuration.String(),
	})

	return st, nil
}

// NewParseMetadata creates a new ParseMetadata value object.
func NewParseMetadata(duration time.Duration, grammarVersion string) (ParseMetadata, error) {
	if duration < 0 {
		return ParseMetadata{}, errors.New("parse duration cannot be negative")
	}

	return ParseMetadata{
		ParseDuration:  duration,
		GrammarVersion: grammarVersion,
	}, nil
}

// Language returns the language of the syntax tree.
func (st *SyntaxTree) Language() string {
	return st.language
}

// RootNode returns the root node of the syntax tree.
func (st *SyntaxTree) RootNode() *SyntaxNode {
	return st.rootNode
}

// Source returns the source code of the syntax tree.
func (st *SyntaxTree) Source() []byte {
	return st.source
}

// Tokens returns the token stream derived from the tree.
func (st *SyntaxTree) Tokens() *TokenStream {
	return st.tokens
}

// Metadata returns the metadata of the syntax tree.
func (st *SyntaxTree) Metadata() ParseMetadata {
	return st.metadata
}

// CreatedAt returns when the syntax tree was created.
func (st *SyntaxTree) CreatedAt() time.Time {
	return st.createdAt
}

// computeLineOffsets records the byte offset at which each line starts.
// Line 0 starts at offset 0; every '\n' opens a new line.
func computeLineOffsets(source []byte) []uint32 {
	offsets := []uint32{0}
	for i, b := range source {
		if b == '\n' {
			offsets = append(offsets, ClampToUint32(i+1))
		}
	}
	return offsets
}

// LineCount returns the number of lines in the source.
func (st *SyntaxTree) LineCount() int {
	return len(st.lineOffsets)
}

// PositionForOffset converts a byte offset into a zero-based position.
// Offsets past the end of the source map to the end of the last line.
func (st *SyntaxTree) PositionForOffset(offset uint32) Position {
	if int64(offset) > int64(len(st.source)) {
		offset = ClampToUint32(len(st.source))
	}
	row := sort.Search(len(st.lineOffsets), func(i int) bool {
		return st.lineOffsets[i] > offset
	}) - 1
	if row < 0 {
		row = 0
	}
	return Position{
		Row:    ClampToUint32(row),
		Column: offset - st.lineOffsets[row],
	}
}

// OffsetForLine returns the byte offset at which the zero-based line
// starts, or false when the line does not exist.
func (st *SyntaxTree) OffsetForLine(row uint32) (uint32, bool) {
	if int(row) >= len(st.lineOffsets) {
		return 0, false
	}
	return st.lineOffsets[row], true
}

// LineText returns the text of the zero-based line without its newline.
func (st *SyntaxTree) LineText(row uint32) string {
	start, ok := st.OffsetForLine(row)
	if !ok {
		return ""
	}
	end := len(st.source)
	if int(row)+1 < len(st.lineOffsets) {
		end = int(st.lineOffsets[row+1])
	}
	return strings.TrimRight(string(st.source[start:end]), "\r\n")
}

// GetNodesByType returns all nodes of a specific type in document order.
func (st *SyntaxTree) GetNodesByType(nodeType string) []*SyntaxNode {
	var result []*SyntaxNode
	st.collectNodesByType(st.rootNode, nodeType, &result)
	return result
}

// collectNodesByType recursively collects nodes of a specific type.
func (st *SyntaxTree) collectNodesByType(node *SyntaxNode, nodeType string, result *[]*SyntaxNode) {
	if node == nil {
		return
	}

	if node.Type == nodeType {
		*result = append(*result, node)
	}

	for _, child := range node.Children {
		st.collectNodesByType(child, nodeType, result)
	}
}

// GetNodeAtByteOffset returns the deepest node covering a byte offset.
func (st *SyntaxTree) GetNodeAtByteOffset(offset uint32) *SyntaxNode {
	return st.findNodeAtByteOffset(st.rootNode, offset)
}

// findNodeAtByteOffset recursively finds the node at a byte offset.
func (st *SyntaxTree) findNodeAtByteOffset(node *SyntaxNode, offset uint32) *SyntaxNode {
	if node == nil {
		return nil
	}

	if offset >= node.StartByte && offset <= node.EndByte {
		for _, child := range node.Children {
			if childResult := st.findNodeAtByteOffset(child, offset); childResult != nil {
				return childResult
			}
		}
		return node
	}

	return nil
}

// GetNodeText returns the exact source text of a node.
func (st *SyntaxTree) GetNodeText(node *SyntaxNode) string {
	if node == nil {
		return ""
	}

	if int64(node.EndByte) > int64(len(st.source)) || node.StartByte > node.EndByte {
		return ""
	}

	return string(st.source[node.StartByte:node.EndByte])
}

// SanitizeContent removes null bytes (0x00) from content to ensure
// PostgreSQL UTF-8 compatibility. TEXT columns cannot store null bytes,
// which occasionally appear in files that are not really source code.
func SanitizeContent(content string) string {
	if !strings.Contains(content, "\x00") {
		return content
	}
	return strings.ReplaceAll(content, "\x00", "")
}

// GetTreeDepth returns the maximum depth of the syntax tree.
func (st *SyntaxTree) GetTreeDepth() int {
	return st.calculateDepth(st.rootNode, 1)
}

// calculateDepth recursively calculates the depth of the tree.
func (st *SyntaxTree) calculateDepth(node *SyntaxNode, currentDepth int) int {
	if node == nil {
		return currentDepth - 1
	}

	maxDepth := currentDepth
	for _, child := range node.Children {
		childDepth := st.calculateDepth(child, currentDepth+1)
		if childDepth > maxDepth {
			maxDepth = childDepth
		}
	}

	return maxDepth
}

// GetTotalNodeCount returns the total number of nodes in the tree.
func (st *SyntaxTree) GetTotalNodeCount() int {
	return st.countNodes(st.rootNode)
}

// countNodes recursively counts nodes in the tree.
func (st *SyntaxTree) countNodes(node *SyntaxNode) int {
	if node == nil {
		return 0
	}

	count := 1
	for _, child := range node.Children {
		count += st.countNodes(child)
	}

	return count
}

// IsWellFormed checks if the syntax tree is well-formed.
func (st *SyntaxTree) IsWellFormed() (bool, error) {
	return st.validateNode(st.rootNode)
}

// validateNode recursively validates a node and its children.
func (st *SyntaxTree) validateNode(node *SyntaxNode) (bool, error) {
	if node == nil {
		return false, errors.New("node is nil")
	}

	if node.StartByte > node.EndByte {
		return false, errors.New("node start byte is greater than end byte")
	}

	if int64(node.EndByte) > int64(len(st.source)) {
		return false, errors.New("node end byte exceeds source length")
	}

	for _, child := range node.Children {
		isValid, err := st.validateNode(child)
		if !isValid {
			return false, err
		}
	}

	return true, nil
}

// HasSyntaxErrors reports whether the tree contains error or missing nodes.
func (st *SyntaxTree) HasSyntaxErrors() bool {
	return st.hasErrorNodes(st.rootNode)
}

// hasErrorNodes recursively checks for error and missing nodes.
func (st *SyntaxTree) hasErrorNodes(node *SyntaxNode) bool {
	if node == nil {
		return false
	}

	if node.IsErrorNode() || node.IsMissingNode() {
		return true
	}

	for _, child := range node.Children {
		if st.hasErrorNodes(child) {
			return true
		}
	}

	return false
}

// ToSExpression converts the syntax tree to S-expression format.
func (st *SyntaxTree) ToSExpression() string {
	return st.nodeToSExpression(st.rootNode)
}

// nodeToSExpression recursively converts a node to S-expression.
func (st *SyntaxTree) nodeToSExpression(node *SyntaxNode) string {
	if node == nil {
		return ""
	}

	if len(node.Children) == 0 {
		return fmt.Sprintf("(%s)", node.Type)
	}

	var parts []string
	parts = append(parts, node.Type)

	for _, child := range node.Children {
		parts = append(parts, st.nodeToSExpression(child))
	}

	return fmt.Sprintf("(%s)", strings.Join(parts, " "))
}

// initSyntaxTreeMetrics initializes OTEL metrics for SyntaxTree operations.
func initSyntaxTreeMetrics() (*syntaxTreeMetrics, error) {
	meter := otel.Meter("swiftscope/syntax_tree")

	treeOpsCounter, err := meter.Int64Counter(
		"syntax_tree_operations_total",
		metric.WithDescription("Total number of syntax tree operations"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tree operations counter: %w", err)
	}

	parseTimeHist, err := meter.Float64Histogram(
		"syntax_tree_parse_duration_seconds",
		metric.WithDescription("Duration of parse operations in seconds"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create parse time histogram: %w", err)
	}

	nodeCountHist, err := meter.Int64Histogram(
		"syntax_tree_node_count",
		metric.WithDescription("Number of nodes in syntax tree"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create node count histogram: %w", err)
	}

	tokenCountHist, err := meter.Int64Histogram(
		"syntax_tree_token_count",
		metric.WithDescription("Number of tokens in syntax tree"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create token count histogram: %w", err)
	}

	depthHist, err := meter.Int64Histogram(
		"syntax_tree_depth",
		metric.WithDescription("Depth of syntax tree"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create depth histogram: %w", err)
	}

	sourceSizeGauge, err := meter.Int64Gauge(
		"syntax_tree_source_bytes",
		metric.WithDescription("Size of parsed source in bytes"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create source size gauge: %w", err)
	}

	return &syntaxTreeMetrics{
		treeOperationsCounter: treeOpsCounter,
		parseTimeHistogram:    parseTimeHist,
		nodeCountHistogram:    nodeCountHist,
		tokenCountHistogram:   tokenCountHist,
		treeDepthHistogram:    depthHist,
		sourceSizeGauge:       sourceSizeGauge,
	}, nil
}

// recordCreation records metrics for a successful parse.
func (m *syntaxTreeMetrics) recordCreation(
	ctx context.Context,
	language string,
	duration time.Duration,
	nodeCount, tokenCount, depth int,
	sourceSize int64,
) {
	attrs := []attribute.KeyValue{
		attribute.String("language", language),
		attribute.String("operation", "create"),
	}

	m.treeOperationsCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.parseTimeHistogram.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	m.nodeCountHistogram.Record(ctx, int64(nodeCount), metric.WithAttributes(attrs...))
	m.tokenCountHistogram.Record(ctx, int64(tokenCount), metric.WithAttributes(attrs...))
	m.treeDepthHistogram.Record(ctx, int64(depth), metric.WithAttributes(attrs...))
	m.sourceSizeGauge.Record(ctx, sourceSize, metric.WithAttributes(attrs...))
}
