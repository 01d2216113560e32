package swiftparser

import (
	"strconv"
	"swiftscope/internal/domain/valueobject"
)

// outlineWalk carries the inputs of one extraction pass.
type outlineWalk struct {
	tree          *valueobject.SyntaxTree
	minVisibility valueobject.Visibility
	includeDocs   bool
}

// extractMembers walks one member scope in source order and returns the
// emitted overview entries. Sibling indices are 1-based and advance only
// for emitted entries, so filtered declarations never leave gaps in a
// file's path sequence. enumVisibility carries the resolved visibility of
// the directly enclosing enum; its cases use it verbatim since Swift
// forbids access modifiers on enum cases.
func (w *outlineWalk) extractMembers(
	nodes []*valueobject.SyntaxNode,
	parentPath string,
	parentFullName string,
	enumVisibility valueobject.Visibility,
) []valueobject.DeclarationOverview {
	var result []valueobject.DeclarationOverview
	index := 0

	for _, node := range nodes {
		if node == nil {
			continue
		}

		switch node.Type {
		case "class_declaration":
			kind, ok := classDeclarationKind(node)
			if !ok {
				continue
			}
			visibility := declarationVisibility(w.tree, node)
			if kind == valueobject.KindExtension {
				entry, emitted := w.buildExtension(node, parentPath, parentFullName, index+1, visibility)
				if !emitted {
					continue
				}
				index++
				result = append(result, entry)
				continue
			}
			if !visibility.AtLeast(w.minVisibility) {
				continue
			}
			index++
			result = append(result, w.buildContainer(node, kind, parentPath, parentFullName, index, visibility))

		case "protocol_declaration":
			visibility := declarationVisibility(w.tree, node)
			if !visibility.AtLeast(w.minVisibility) {
				continue
			}
			index++
			result = append(result, w.buildContainer(node, valueobject.KindProtocol, parentPath, parentFullName, index, visibility))

		case "function_declaration", "protocol_function_declaration":
			visibility := declarationVisibility(w.tree, node)
			if !visibility.AtLeast(w.minVisibility) {
				continue
			}
			index++
			result = append(result, w.buildCallable(node, parentPath, parentFullName, index, visibility))

		case "property_declaration", "protocol_property_declaration":
			visibility := declarationVisibility(w.tree, node)
			if !visibility.AtLeast(w.minVisibility) {
				continue
			}
			for _, binding := range propertyBindings(w.tree, node) {
				index++
				result = append(result, w.buildVariable(node, binding, parentPath, parentFullName, index, visibility))
			}

		case "enum_entry":
			visibility := enumVisibility
			if !visibility.IsValid() {
				visibility = valueobject.DefaultVisibility
			}
			if !visibility.AtLeast(w.minVisibility) {
				continue
			}
			for _, entry := range enumCases(w.tree, node) {
				index++
				result = append(result, w.buildCase(node, entry, parentPath, parentFullName, index, visibility))
			}

		case "typealias_declaration":
			visibility := declarationVisibility(w.tree, node)
			if !visibility.AtLeast(w.minVisibility) {
				continue
			}
			index++
			result = append(result, w.buildTypealias(node, parentPath, parentFullName, index, visibility))

		case "subscript_declaration":
			visibility := declarationVisibility(w.tree, node)
			if !visibility.AtLeast(w.minVisibility) {
				continue
			}
			index++
			result = append(result, w.buildSubscript(node, parentPath, parentFullName, index, visibility))
		}
	}

	return result
}

// newEntry fills the fields every overview entry shares.
func (w *outlineWalk) newEntry(
	node *valueobject.SyntaxNode,
	kind valueobject.DeclarationKind,
	name, path, fullName string,
	visibility valueobject.Visibility,
) valueobject.DeclarationOverview {
	modifiers, attributes := declarationModifiers(w.tree, node)
	entry := valueobject.DeclarationOverview{
		Path:       path,
		Kind:       kind,
		Name:       name,
		FullName:   fullName,
		Visibility: visibility,
		Modifiers:  modifiers,
		Attributes: attributes,
	}
	if w.includeDocs {
		entry.Documentation = w.documentationFor(node)
	}
	return entry
}

// buildContainer emits a type container and recurses into its member body
// with a fresh sibling counter. Enum containers thread their own resolved
// visibility down to the cases inside.
func (w *outlineWalk) buildContainer(
	node *valueobject.SyntaxNode,
	kind valueobject.DeclarationKind,
	parentPath, parentFullName string,
	index int,
	visibility valueobject.Visibility,
) valueobject.DeclarationOverview {
	name := containerName(w.tree, node)
	path := joinPath(parentPath, index)
	fullName := joinName(parentFullName, name)

	entry := w.newEntry(node, kind, name, path, fullName, visibility)

	caseVisibility := valueobject.Visibility("")
	if kind == valueobject.KindEnum {
		caseVisibility = visibility
	}
	if body := containerBody(node); body != nil {
		entry.Members = w.extractMembers(body.Children, path, fullName, caseVisibility)
	}
	return entry
}

// buildExtension emits an extension only when it still shows something at
// the requested level: a visible member, or the extension declaration
// itself. A rejected extension consumes no sibling index, so the tentative
// index passed in is only committed by the caller on emission.
func (w *outlineWalk) buildExtension(
	node *valueobject.SyntaxNode,
	parentPath, parentFullName string,
	tentativeIndex int,
	visibility valueobject.Visibility,
) (valueobject.DeclarationOverview, bool) {
	name := containerName(w.tree, node)
	path := joinPath(parentPath, tentativeIndex)
	fullName := joinName(parentFullName, name)

	var members []valueobject.DeclarationOverview
	if body := containerBody(node); body != nil {
		members = w.extractMembers(body.Children, path, fullName, "")
	}
	if len(members) == 0 && !visibility.AtLeast(w.minVisibility) {
		return valueobject.DeclarationOverview{}, false
	}

	entry := w.newEntry(node, valueobject.KindExtension, name, path, fullName, visibility)
	entry.Members = members
	return entry, true
}

// buildCallable emits a function or initializer declaration.
func (w *outlineWalk) buildCallable(
	node *valueobject.SyntaxNode,
	parentPath, parentFullName string,
	index int,
	visibility valueobject.Visibility,
) valueobject.DeclarationOverview {
	name, kind := callableName(w.tree, node)
	path := joinPath(parentPath, index)

	entry := w.newEntry(node, kind, name, path, joinName(parentFullName, name), visibility)
	entry.Signature = callableSignature(w.tree, node, entry.Modifiers)
	return entry
}

// buildVariable emits one bound name of a property declaration. All names
// bound by the same statement share its modifiers and documentation.
func (w *outlineWalk) buildVariable(
	node *valueobject.SyntaxNode,
	binding propertyBinding,
	parentPath, parentFullName string,
	index int,
	visibility valueobject.Visibility,
) valueobject.DeclarationOverview {
	path := joinPath(parentPath, index)

	entry := w.newEntry(node, valueobject.KindVariable, binding.name, path, joinName(parentFullName, binding.name), visibility)
	entry.Signature = variableSignature(w.tree, binding)
	return entry
}

// buildCase emits one enum case with the threaded enum visibility.
func (w *outlineWalk) buildCase(
	node *valueobject.SyntaxNode,
	entry enumCase,
	parentPath, parentFullName string,
	index int,
	visibility valueobject.Visibility,
) valueobject.DeclarationOverview {
	path := joinPath(parentPath, index)

	overview := w.newEntry(node, valueobject.KindCase, entry.name, path, joinName(parentFullName, entry.name), visibility)
	if entry.associatedValues != nil {
		overview.Signature = normalizeSignature(w.tree.GetNodeText(entry.associatedValues))
	}
	return overview
}

// buildTypealias emits a typealias declaration.
func (w *outlineWalk) buildTypealias(
	node *valueobject.SyntaxNode,
	parentPath, parentFullName string,
	index int,
	visibility valueobject.Visibility,
) valueobject.DeclarationOverview {
	name := containerName(w.tree, node)
	path := joinPath(parentPath, index)

	entry := w.newEntry(node, valueobject.KindTypealias, name, path, joinName(parentFullName, name), visibility)
	entry.Signature = typealiasSignature(w.tree, node)
	return entry
}

// buildSubscript emits a subscript declaration. Subscripts carry no name
// of their own, the keyword stands in.
func (w *outlineWalk) buildSubscript(
	node *valueobject.SyntaxNode,
	parentPath, parentFullName string,
	index int,
	visibility valueobject.Visibility,
) valueobject.DeclarationOverview {
	path := joinPath(parentPath, index)

	entry := w.newEntry(node, valueobject.KindSubscript, "subscript", path, joinName(parentFullName, "subscript"), visibility)
	entry.Signature = callableSignature(w.tree, node, entry.Modifiers)
	return entry
}

// classDeclarationKind maps the declaring keyword of a class_declaration
// node to an overview kind. The grammar parses struct, class, enum, actor
// and extension declarations as one node type distinguished by keyword;
// actors are reference types and classify as classes.
func classDeclarationKind(node *valueobject.SyntaxNode) (valueobject.DeclarationKind, bool) {
	switch {
	case node.FirstChildOfType("struct") != nil:
		return valueobject.KindStruct, true
	case node.FirstChildOfType("enum") != nil:
		return valueobject.KindEnum, true
	case node.FirstChildOfType("extension") != nil:
		return valueobject.KindExtension, true
	case node.FirstChildOfType("actor") != nil:
		return valueobject.KindClass, true
	case node.FirstChildOfType("class") != nil:
		return valueobject.KindClass, true
	default:
		return "", false
	}
}

// containerName returns the declared name of a type-like declaration. For
// extensions this is the extended type's textual name, including any
// qualification such as "Foo.Bar".
func containerName(tree *valueobject.SyntaxTree, node *valueobject.SyntaxNode) string {
	if id := node.FirstChildOfType("type_identifier"); id != nil {
		return tree.GetNodeText(id)
	}
	if extended := node.FirstChildOfType("user_type"); extended != nil {
		return tree.GetNodeText(extended)
	}
	return ""
}

// containerBody returns the member block of a container declaration.
func containerBody(node *valueobject.SyntaxNode) *valueobject.SyntaxNode {
	for _, bodyType := range []string{"class_body", "enum_class_body", "protocol_body"} {
		if body := node.FirstChildOfType(bodyType); body != nil {
			return body
		}
	}
	return nil
}

// callableName returns the declared name and kind of a function-family
// node. Initializers are named "init" plus any failability mark; operator
// functions use the operator token as their name.
func callableName(
	tree *valueobject.SyntaxTree,
	node *valueobject.SyntaxNode,
) (string, valueobject.DeclarationKind) {
	for i, child := range node.Children {
		if child == nil {
			continue
		}
		switch child.Type {
		case "init":
			name := "init"
			if i+1 < len(node.Children) && node.Children[i+1] != nil {
				if mark := tree.GetNodeText(node.Children[i+1]); mark == "?" || mark == "!" {
					name += mark
				}
			}
			return name, valueobject.KindInitializer
		case "func":
			if i+1 < len(node.Children) && node.Children[i+1] != nil {
				return tree.GetNodeText(node.Children[i+1]), valueobject.KindFunction
			}
			return "", valueobject.KindFunction
		}
	}
	return "", valueobject.KindFunction
}

// propertyBinding is one name bound by a property declaration, together
// with the clauses that shape its signature.
type propertyBinding struct {
	name         string
	annotation   *valueobject.SyntaxNode
	requirements *valueobject.SyntaxNode
}

// propertyBindings lists the names one property declaration binds, in
// source order. A declaration can bind several names through comma
// separated bindings or a tuple pattern; a type annotation applies to
// every name of the binding it follows.
func propertyBindings(
	tree *valueobject.SyntaxTree,
	node *valueobject.SyntaxNode,
) []propertyBinding {
	var bindings []propertyBinding
	patternStart := -1

	for _, child := range node.Children {
		if child == nil {
			continue
		}
		switch child.Type {
		case "pattern", "value_binding_pattern":
			patternStart = len(bindings)
			for _, name := range boundNames(tree, child) {
				bindings = append(bindings, propertyBinding{name: name})
			}
		case "type_annotation":
			if patternStart < 0 {
				continue
			}
			for i := patternStart; i < len(bindings); i++ {
				bindings[i].annotation = child
			}
		case "protocol_property_requirements":
			for i := range bindings {
				bindings[i].requirements = child
			}
		}
	}

	if len(bindings) == 0 {
		if id := node.FirstChildOfType("simple_identifier"); id != nil {
			bindings = append(bindings, propertyBinding{
				name:         tree.GetNodeText(id),
				annotation:   node.FirstChildOfType("type_annotation"),
				requirements: node.FirstChildOfType("protocol_property_requirements"),
			})
		}
	}
	return bindings
}

// boundNames collects the identifiers a binding pattern introduces. Tuple
// patterns bind one name per element; wildcards bind none.
func boundNames(tree *valueobject.SyntaxTree, pattern *valueobject.SyntaxNode) []string {
	var names []string
	var collect func(n *valueobject.SyntaxNode)
	collect = func(n *valueobject.SyntaxNode) {
		if n == nil {
			return
		}
		if n.Type == "simple_identifier" {
			if name := tree.GetNodeText(n); name != "_" {
				names = append(names, name)
			}
			return
		}
		for _, child := range n.Children {
			collect(child)
		}
	}
	collect(pattern)
	return names
}

// enumCase is one case an enum entry declares.
type enumCase struct {
	name             string
	associatedValues *valueobject.SyntaxNode
}

// enumCases lists the cases one enum entry declares. "case a, b(Int)"
// declares two; a raw value never names a case.
func enumCases(tree *valueobject.SyntaxTree, node *valueobject.SyntaxNode) []enumCase {
	var cases []enumCase
	skipRawValue := false

	for _, child := range node.Children {
		if child == nil {
			continue
		}
		switch child.Type {
		case "simple_identifier":
			if skipRawValue {
				continue
			}
			cases = append(cases, enumCase{name: tree.GetNodeText(child)})
		case "enum_type_parameters":
			if len(cases) > 0 {
				cases[len(cases)-1].associatedValues = child
			}
		case "=":
			skipRawValue = true
		case ",":
			skipRawValue = false
		}
	}
	return cases
}

// declarationVisibility resolves a declaration's access level from its
// modifier list. Setter-scoped modifiers never lower the level.
func declarationVisibility(
	tree *valueobject.SyntaxTree,
	node *valueobject.SyntaxNode,
) valueobject.Visibility {
	var keywords []string
	if mods := node.FirstChildOfType("modifiers"); mods != nil {
		for _, child := range mods.ChildrenOfType("visibility_modifier") {
			keywords = append(keywords, tree.GetNodeText(child))
		}
	}
	return valueobject.ResolveVisibility(keywords)
}

// joinPath appends a 1-based sibling index to a parent path.
func joinPath(parent string, index int) string {
	if parent == "" {
		return strconv.Itoa(index)
	}
	return parent + "." + strconv.Itoa(index)
}

// joinName appends a declaration name to its ancestor chain.
func joinName(parent, name string) string {
	if name == "" {
		return parent
	}
	if parent == "" {
		return name
	}
	return parent + "." + name
}
