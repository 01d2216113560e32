package swiftparser

import (
	"strings"
	"swiftscope/internal/domain/valueobject"
)

// extractImports collects the module names a file imports, sorted and
// deduplicated.
func extractImports(tree *valueobject.SyntaxTree) []string {
	var imports []string
	for _, node := range tree.GetNodesByType("import_declaration") {
		if name := importedModule(tree, node); name != "" {
			imports = append(imports, name)
		}
	}
	return valueobject.MergeImports(imports)
}

// importedModule returns the dotted module path of one import declaration.
// An import kind specifier such as "import struct Foo.Bar" does not belong
// to the path.
func importedModule(tree *valueobject.SyntaxTree, node *valueobject.SyntaxNode) string {
	if id := node.FirstChildOfType("identifier"); id != nil {
		return normalizeSignature(tree.GetNodeText(id))
	}

	// Grammar fallback: the last word of the declaration is the path.
	fields := strings.Fields(tree.GetNodeText(node))
	if len(fields) < 2 {
		return ""
	}
	return fields[len(fields)-1]
}
