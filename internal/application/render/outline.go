package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"swiftscope/internal/domain/valueobject"

	"gopkg.in/yaml.v3"
)

// Outline writes one file outline in the requested format.
func Outline(w io.Writer, outline valueobject.SourceOutline, format Format) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, outline)
	case FormatYAML:
		return writeYAML(w, outline)
	case FormatMarkdown:
		return writeOutlineMarkdown(w, outline)
	case FormatInterface:
		return writeOutlineInterface(w, outline)
	default:
		return fmt.Errorf("unsupported output format: %q", format)
	}
}

// Project writes a project outline in the requested format.
func Project(w io.Writer, project valueobject.ProjectOutline, format Format) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, project)
	case FormatYAML:
		return writeYAML(w, project)
	case FormatMarkdown:
		return writeProjectMarkdown(w, project)
	case FormatInterface:
		return writeProjectInterface(w, project)
	default:
		return fmt.Errorf("unsupported output format: %q", format)
	}
}

func writeJSON(w io.Writer, payload any) error {
	enc := json.NewEncoder(w)
	// Signatures carry "->"; keep them readable instead of > escapes.
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, payload any) error {
	data, err := yaml.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func writeOutlineMarkdown(w io.Writer, outline valueobject.SourceOutline) error {
	var b strings.Builder
	if outline.Path != "" {
		fmt.Fprintf(&b, "# %s\n\n", outline.Path)
	} else {
		b.WriteString("# Outline\n\n")
	}
	writeImportsMarkdown(&b, outline.Imports)
	writeForestMarkdown(&b, outline.Declarations, 0)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeProjectMarkdown(w io.Writer, project valueobject.ProjectOutline) error {
	var b strings.Builder
	b.WriteString("# Project outline\n\n")
	fmt.Fprintf(&b, "%d files, %d declarations\n\n", project.FileCount, project.DeclarationCount)
	writeImportsMarkdown(&b, project.Imports)
	for _, file := range project.Files {
		fmt.Fprintf(&b, "## %s\n\n", file.Path)
		writeForestMarkdown(&b, file.Declarations, 0)
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeImportsMarkdown(b *strings.Builder, imports []string) {
	if len(imports) == 0 {
		return
	}
	quoted := make([]string, len(imports))
	for i, imp := range imports {
		quoted[i] = "`" + imp + "`"
	}
	fmt.Fprintf(b, "Imports: %s\n\n", strings.Join(quoted, ", "))
}

func writeForestMarkdown(b *strings.Builder, forest []valueobject.DeclarationOverview, depth int) {
	indent := strings.Repeat("    ", depth)
	for _, decl := range forest {
		fmt.Fprintf(b, "%s- `%s` `%s`\n", indent, decl.Path, InterfaceLine(decl))
		if decl.Documentation != nil && decl.Documentation.Description != "" {
			first, _, _ := strings.Cut(decl.Documentation.Description, "\n")
			fmt.Fprintf(b, "%s  %s\n", indent, first)
		}
		writeForestMarkdown(b, decl.Members, depth+1)
	}
}
