package render

import (
	"fmt"
	"io"
	"strings"

	"swiftscope/internal/domain/valueobject"
)

// InterfaceLine renders one declaration the way a generated interface
// would print it: attributes, access level, modifiers, then the declaring
// keyword and signature. Enum cases carry no access level of their own.
func InterfaceLine(decl valueobject.DeclarationOverview) string {
	var parts []string
	parts = append(parts, decl.Attributes...)

	if decl.Kind != valueobject.KindCase && decl.Visibility != "" {
		parts = append(parts, string(decl.Visibility))
	}
	parts = append(parts, decl.Modifiers...)

	signature := trimModifierPrefix(decl.Signature, decl.Modifiers)

	switch decl.Kind {
	case valueobject.KindStruct:
		parts = append(parts, "struct", decl.Name)
	case valueobject.KindClass:
		parts = append(parts, "class", decl.Name)
	case valueobject.KindEnum:
		parts = append(parts, "enum", decl.Name)
	case valueobject.KindProtocol:
		parts = append(parts, "protocol", decl.Name)
	case valueobject.KindExtension:
		parts = append(parts, "extension", decl.Name)
	case valueobject.KindFunction:
		parts = append(parts, "func", decl.Name+signature)
	case valueobject.KindInitializer:
		parts = append(parts, decl.Name+signature)
	case valueobject.KindSubscript:
		parts = append(parts, "subscript"+signature)
	case valueobject.KindTypealias:
		parts = append(parts, "typealias", decl.Name+signature)
	case valueobject.KindVariable:
		parts = append(parts, "var", decl.Name+signature)
	case valueobject.KindCase:
		parts = append(parts, "case", decl.Name+signature)
	default:
		parts = append(parts, decl.Name+signature)
	}
	return strings.Join(parts, " ")
}

// trimModifierPrefix drops the modifier words a signature starts with so
// the caller can place them before the declaring keyword instead.
func trimModifierPrefix(signature string, modifiers []string) string {
	if len(modifiers) == 0 {
		return signature
	}
	prefix := strings.Join(modifiers, " ")
	return strings.TrimSpace(strings.TrimPrefix(signature, prefix))
}

func writeOutlineInterface(w io.Writer, outline valueobject.SourceOutline) error {
	var b strings.Builder
	for _, imp := range outline.Imports {
		fmt.Fprintf(&b, "import %s\n", imp)
	}
	if len(outline.Imports) > 0 && len(outline.Declarations) > 0 {
		b.WriteString("\n")
	}
	writeForestInterface(&b, outline.Declarations, 0)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeProjectInterface(w io.Writer, project valueobject.ProjectOutline) error {
	var b strings.Builder
	for i, file := range project.Files {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "// %s\n", file.Path)
		for _, imp := range file.Imports {
			fmt.Fprintf(&b, "import %s\n", imp)
		}
		if len(file.Imports) > 0 && len(file.Declarations) > 0 {
			b.WriteString("\n")
		}
		writeForestInterface(&b, file.Declarations, 0)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeForestInterface(b *strings.Builder, forest []valueobject.DeclarationOverview, depth int) {
	indent := strings.Repeat("    ", depth)
	for _, decl := range forest {
		line := indent + InterfaceLine(decl)
		if isContainerKind(decl.Kind) {
			if len(decl.Members) == 0 {
				b.WriteString(line + " {}\n")
				continue
			}
			b.WriteString(line + " {\n")
			writeForestInterface(b, decl.Members, depth+1)
			b.WriteString(indent + "}\n")
			continue
		}
		b.WriteString(line + "\n")
	}
}

func isContainerKind(kind valueobject.DeclarationKind) bool {
	switch kind {
	case valueobject.KindStruct, valueobject.KindClass, valueobject.KindEnum,
		valueobject.KindProtocol, valueobject.KindExtension:
		return true
	default:
		return false
	}
}
