// Package render turns outline and diagnostic records into output
// documents. Formats cover machine consumption (JSON, YAML) and reading
// (Markdown, Swift interface text).
package render

import "fmt"

// Format selects an output document format.
type Format string

const (
	FormatJSON      Format = "json"
	FormatYAML      Format = "yaml"
	FormatMarkdown  Format = "markdown"
	FormatInterface Format = "interface"
)

// ParseFormat maps a user-supplied format name to a Format. The empty
// string defaults to JSON.
func ParseFormat(value string) (Format, error) {
	switch value {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "interface", "text", "swift":
		return FormatInterface, nil
	default:
		return "", fmt.Errorf("unsupported output format: %q", value)
	}
}
