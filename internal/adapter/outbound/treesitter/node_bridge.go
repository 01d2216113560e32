package treesitter

import (
	"swiftscope/internal/domain/valueobject"

	tree_sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// convertNode converts a tree-sitter node and its subtree into the domain
// node representation. It returns the converted node together with the
// subtree's node count and maximum depth, so the caller can fill parse
// metadata without a second walk.
func convertNode(tsNode tree_sitter.Node, depth int) (*valueobject.SyntaxNode, int, int) {
	node := &valueobject.SyntaxNode{
		Type:      tsNode.Type(),
		StartByte: valueobject.ClampUintToUint32(tsNode.StartByte()),
		EndByte:   valueobject.ClampUintToUint32(tsNode.EndByte()),
		StartPos: valueobject.Position{
			Row:    valueobject.ClampUintToUint32(tsNode.StartPoint().Row),
			Column: valueobject.ClampUintToUint32(tsNode.StartPoint().Column),
		},
		EndPos: valueobject.Position{
			Row:    valueobject.ClampUintToUint32(tsNode.EndPoint().Row),
			Column: valueobject.ClampUintToUint32(tsNode.EndPoint().Column),
		},
		Named:   tsNode.IsNamed(),
		Missing: tsNode.IsMissing(),
	}

	nodeCount := 1
	maxDepth := depth

	childCount := tsNode.ChildCount()
	for i := range childCount {
		child := tsNode.Child(i)
		if child.IsNull() {
			continue
		}
		childNode, subCount, childDepth := convertNode(child, depth+1)
		node.Children = append(node.Children, childNode)
		nodeCount += subCount
		if childDepth > maxDepth {
			maxDepth = childDepth
		}
	}

	return node, nodeCount, maxDepth
}

// countProblemNodes counts error and missing nodes in a converted subtree.
func countProblemNodes(node *valueobject.SyntaxNode) int {
	if node == nil {
		return 0
	}

	count := 0
	if node.IsErrorNode() || node.IsMissingNode() {
		count++
	}
	for _, child := range node.Children {
		count += countProblemNodes(child)
	}

	return count
}
