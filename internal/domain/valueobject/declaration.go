package valueobject

// DeclarationKind classifies an overview entry.
type DeclarationKind string

const (
	KindStruct      DeclarationKind = "struct"
	KindClass       DeclarationKind = "class"
	KindEnum        DeclarationKind = "enum"
	KindProtocol    DeclarationKind = "protocol"
	KindExtension   DeclarationKind = "extension"
	KindFunction    DeclarationKind = "function"
	KindVariable    DeclarationKind = "variable"
	KindInitializer DeclarationKind = "initializer"
	KindSubscript   DeclarationKind = "subscript"
	KindTypealias   DeclarationKind = "typealias"
	KindCase        DeclarationKind = "case"
)

// DeclarationOverview is one entry of an outline forest. Paths use 1-based
// sibling indices counted over emitted entries, dot-joined per nesting
// level. Optional fields are omitted from serialized output when empty.
type DeclarationOverview struct {
	Path          string                `json:"path"                    yaml:"path"`
	Kind          DeclarationKind       `json:"kind"                    yaml:"kind"`
	Name          string                `json:"name,omitempty"          yaml:"name,omitempty"`
	FullName      string                `json:"fullName,omitempty"      yaml:"fullName,omitempty"`
	Signature     string                `json:"signature,omitempty"     yaml:"signature,omitempty"`
	Visibility    Visibility            `json:"visibility"              yaml:"visibility"`
	Modifiers     []string              `json:"modifiers,omitempty"     yaml:"modifiers,omitempty"`
	Attributes    []string              `json:"attributes,omitempty"    yaml:"attributes,omitempty"`
	Documentation *Documentation        `json:"documentation,omitempty" yaml:"documentation,omitempty"`
	Members       []DeclarationOverview `json:"members,omitempty"       yaml:"members,omitempty"`
}

// CountDeclarations returns the entry itself plus all nested members.
func (d DeclarationOverview) CountDeclarations() int {
	count := 1
	for _, m := range d.Members {
		count += m.CountDeclarations()
	}
	return count
}

// FindDeclaration resolves a declaration path against an overview forest.
func FindDeclaration(forest []DeclarationOverview, path DeclarationPath) (DeclarationOverview, bool) {
	current := forest
	var found DeclarationOverview
	for depth, index := range path {
		if index < 1 || index > len(current) {
			return DeclarationOverview{}, false
		}
		found = current[index-1]
		if depth < len(path)-1 {
			current = found.Members
		}
	}
	if len(path) == 0 {
		return DeclarationOverview{}, false
	}
	return found, true
}

// CountForest returns the total number of entries in an overview forest.
func CountForest(forest []DeclarationOverview) int {
	count := 0
	for _, d := range forest {
		count += d.CountDeclarations()
	}
	return count
}
