package swiftparser

import (
	"strings"
	"swiftscope/internal/domain/valueobject"
)

// callableSignature renders the declared shape of a function, initializer
// or subscript: non-visibility modifiers, then every clause from the
// generic parameters through the trailing where clause exactly as written,
// with whitespace runs collapsed to single spaces. The body never
// contributes.
func callableSignature(
	tree *valueobject.SyntaxTree,
	node *valueobject.SyntaxNode,
	modifierWords []string,
) string {
	words := append([]string(nil), modifierWords...)
	if start, end, ok := signatureSpan(node); ok {
		words = append(words, string(tree.Source()[start:end]))
	}
	return normalizeSignature(strings.Join(words, " "))
}

// signatureSpan finds the byte span of the declared clauses after the name
// of a function-family node: generics, parameters, effect specifiers,
// return clause and where clause, ending before the body.
func signatureSpan(node *valueobject.SyntaxNode) (start, end uint32, ok bool) {
	startIdx := clauseStartIndex(node)
	if startIdx < 0 || startIdx >= len(node.Children) {
		return 0, 0, false
	}

	endIdx := -1
	for i := startIdx; i < len(node.Children); i++ {
		child := node.Children[i]
		if child == nil {
			continue
		}
		if child.Type == "function_body" || child.Type == "computed_property" || child.Type == "{" {
			break
		}
		endIdx = i
	}
	if endIdx < startIdx {
		return 0, 0, false
	}
	return node.Children[startIdx].StartByte, node.Children[endIdx].EndByte, true
}

// clauseStartIndex returns the child index at which the post-name clauses
// of a function, initializer or subscript begin.
func clauseStartIndex(node *valueobject.SyntaxNode) int {
	for i, child := range node.Children {
		if child == nil {
			continue
		}
		switch child.Type {
		case "func":
			// keyword, then the name token
			return i + 2
		case "init":
			if i+1 < len(node.Children) && node.Children[i+1] != nil {
				switch node.Children[i+1].Type {
				case "?", "!", "bang", "quest":
					return i + 2
				}
			}
			return i + 1
		case "subscript":
			return i + 1
		}
	}
	return -1
}

// variableSignature renders a bound name's declared type, plus accessor
// requirements for protocol properties. Bindings without a type annotation
// have no signature.
func variableSignature(tree *valueobject.SyntaxTree, binding propertyBinding) string {
	var words []string
	if binding.annotation != nil {
		words = append(words, tree.GetNodeText(binding.annotation))
	}
	if binding.requirements != nil {
		words = append(words, tree.GetNodeText(binding.requirements))
	}
	return normalizeSignature(strings.Join(words, " "))
}

// typealiasSignature renders the generic clauses of a typealias.
func typealiasSignature(tree *valueobject.SyntaxTree, node *valueobject.SyntaxNode) string {
	var words []string
	if tp := node.FirstChildOfType("type_parameters"); tp != nil {
		words = append(words, tree.GetNodeText(tp))
	}
	if tc := node.FirstChildOfType("type_constraints"); tc != nil {
		words = append(words, tree.GetNodeText(tc))
	}
	return normalizeSignature(strings.Join(words, " "))
}

// normalizeSignature collapses all whitespace runs, including newlines, to
// single spaces and trims the ends.
func normalizeSignature(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
