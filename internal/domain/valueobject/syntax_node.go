package valueobject

// SyntaxNode represents a node in a syntax tree. Nodes are fully owned Go
// values; they keep no reference to the parser that produced them.
type SyntaxNode struct {
	Type      string
	StartByte uint32
	EndByte   uint32
	StartPos  Position
	EndPos    Position
	Children  []*SyntaxNode
	Named     bool
	Missing   bool
}

// Position represents a position in source code. Row and Column are
// zero-based, following tree-sitter's convention.
type Position struct {
	Row    uint32 `json:"row"`
	Column uint32 `json:"column"`
}

// IsErrorNode checks if a node represents a parse error.
func (n *SyntaxNode) IsErrorNode() bool {
	return n != nil && n.Type == "ERROR"
}

// IsMissingNode checks if the parser inserted this node to recover from a
// missing token.
func (n *SyntaxNode) IsMissingNode() bool {
	return n != nil && n.Missing
}

// IsLeaf reports whether the node has no children.
func (n *SyntaxNode) IsLeaf() bool {
	return n != nil && len(n.Children) == 0
}

// ByteLength returns the number of source bytes the node spans.
func (n *SyntaxNode) ByteLength() uint32 {
	if n == nil || n.EndByte < n.StartByte {
		return 0
	}
	return n.EndByte - n.StartByte
}

// FirstChildOfType returns the first direct child with the given type.
func (n *SyntaxNode) FirstChildOfType(nodeType string) *SyntaxNode {
	if n == nil {
		return nil
	}
	for _, child := range n.Children {
		if child != nil && child.Type == nodeType {
			return child
		}
	}
	return nil
}

// ChildrenOfType returns all direct children with the given type.
func (n *SyntaxNode) ChildrenOfType(nodeType string) []*SyntaxNode {
	if n == nil {
		return nil
	}
	var result []*SyntaxNode
	for _, child := range n.Children {
		if child != nil && child.Type == nodeType {
			result = append(result, child)
		}
	}
	return result
}

// NamedChildren returns the direct children that correspond to named rules
// in the grammar.
func (n *SyntaxNode) NamedChildren() []*SyntaxNode {
	if n == nil {
		return nil
	}
	var result []*SyntaxNode
	for _, child := range n.Children {
		if child != nil && child.Named {
			result = append(result, child)
		}
	}
	return result
}

// ContainsByte reports whether the offset falls within the node's span.
func (n *SyntaxNode) ContainsByte(offset uint32) bool {
	return n != nil && offset >= n.StartByte && offset < n.EndByte
}
