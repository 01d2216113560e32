package swiftparser

import (
	"swiftscope/internal/domain/valueobject"
)

// declarationModifiers splits a declaration's modifier list into keyword
// modifiers and rendered attributes. Access modifiers resolve into the
// visibility field and are excluded here. The "class" and "indirect"
// keywords sit outside the modifier list in the grammar but read as
// modifiers, so they are folded in at their source position.
func declarationModifiers(
	tree *valueobject.SyntaxTree,
	node *valueobject.SyntaxNode,
) (modifiers, attributes []string) {
	seen := make(map[string]struct{})
	appendModifier := func(word string) {
		if word == "" {
			return
		}
		if _, ok := seen[word]; ok {
			return
		}
		seen[word] = struct{}{}
		modifiers = append(modifiers, word)
	}

	if mods := node.FirstChildOfType("modifiers"); mods != nil {
		for _, child := range mods.Children {
			if child == nil {
				continue
			}
			switch child.Type {
			case "attribute":
				attributes = append(attributes, normalizeSignature(tree.GetNodeText(child)))
			case "visibility_modifier":
				// resolved into the visibility field
			default:
				appendModifier(normalizeSignature(tree.GetNodeText(child)))
			}
		}
	}

	if node.Type != "class_declaration" && node.FirstChildOfType("class") != nil {
		appendModifier("class")
	}
	if node.FirstChildOfType("indirect") != nil {
		appendModifier("indirect")
	}
	return modifiers, attributes
}
