package render

import (
	"fmt"
	"io"
	"strings"

	"swiftscope/internal/domain/valueobject"
)

// Diagnostics writes a diagnostic report in the requested format. The
// interface format prints the compiler-style location lines.
func Diagnostics(w io.Writer, report valueobject.DiagnosticReport, format Format) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, report)
	case FormatYAML:
		return writeYAML(w, report)
	case FormatMarkdown:
		return writeDiagnosticsMarkdown(w, report)
	case FormatInterface:
		return writeDiagnosticsText(w, report)
	default:
		return fmt.Errorf("unsupported output format: %q", format)
	}
}

func writeDiagnosticsText(w io.Writer, report valueobject.DiagnosticReport) error {
	var b strings.Builder
	prefix := ""
	if report.Path != "" {
		prefix = report.Path + ":"
	}
	if !report.HasDiagnostics() {
		fmt.Fprintf(&b, "%s no syntax problems found\n", strings.TrimSuffix(prefix, ":"))
		_, err := io.WriteString(w, b.String())
		return err
	}
	for i, diag := range report.Diagnostics {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(prefix + diag.String() + "\n")
		for _, fix := range diag.FixIts {
			fmt.Fprintf(&b, "  fix (%s): %s\n", fix.Category, fix.Message)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeDiagnosticsMarkdown(w io.Writer, report valueobject.DiagnosticReport) error {
	var b strings.Builder
	if report.Path != "" {
		fmt.Fprintf(&b, "# Diagnostics for %s\n\n", report.Path)
	} else {
		b.WriteString("# Diagnostics\n\n")
	}
	if !report.HasDiagnostics() {
		b.WriteString("No syntax problems found.\n")
		_, err := io.WriteString(w, b.String())
		return err
	}
	for _, diag := range report.Diagnostics {
		fmt.Fprintf(&b, "- **%d:%d** %s\n", diag.Line, diag.Column, diag.Message)
		if diag.SourceLine != "" {
			b.WriteString("\n  ```\n")
			fmt.Fprintf(&b, "  %s\n", diag.SourceLine)
			if diag.Caret != "" {
				fmt.Fprintf(&b, "  %s\n", diag.Caret)
			}
			b.WriteString("  ```\n\n")
		}
		for _, fix := range diag.FixIts {
			fmt.Fprintf(&b, "  - fix (%s): %s\n", fix.Category, fix.Message)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
