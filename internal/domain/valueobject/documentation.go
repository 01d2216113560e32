package valueobject

import "strings"

// Documentation is the structured form of a declaration's doc comment.
type Documentation struct {
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Parameters  []ParameterDoc `json:"parameters,omitempty"  yaml:"parameters,omitempty"`
	Returns     string         `json:"returns,omitempty"     yaml:"returns,omitempty"`
	Throws      string         `json:"throws,omitempty"      yaml:"throws,omitempty"`
}

// ParameterDoc documents one parameter, in declaration order.
type ParameterDoc struct {
	Name        string `json:"name"                  yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// IsEmpty reports whether the documentation carries no content at all.
func (d *Documentation) IsEmpty() bool {
	return d == nil ||
		(d.Description == "" && len(d.Parameters) == 0 && d.Returns == "" && d.Throws == "")
}

// ParseDocComment turns an attached doc-comment block into structured
// documentation. Recognized markup follows the source language's doc
// conventions: "- Parameter name: text", a "- Parameters:" group with one
// "- name: text" item per line, "- Returns: text" and "- Throws: text",
// keywords matched case-insensitively. Everything else becomes the
// description, with paragraph breaks preserved. Returns nil when the block
// carries no content.
func ParseDocComment(block Trivia) *Documentation {
	lines := docCommentLines(block)
	if len(lines) == 0 {
		return nil
	}

	var (
		doc         Documentation
		description []string
		sink        *string
		inGroup     bool
	)

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			sink = nil
			inGroup = false
			description = append(description, "")
			continue
		}

		if keyword, name, value, ok := splitDocTag(trimmed); ok {
			switch {
			case strings.EqualFold(keyword, "parameter") && name != "":
				doc.Parameters = append(doc.Parameters, ParameterDoc{Name: name, Description: value})
				sink = &doc.Parameters[len(doc.Parameters)-1].Description
				inGroup = false
				continue
			case strings.EqualFold(keyword, "parameters") && name == "" && value == "":
				sink = nil
				inGroup = true
				continue
			case strings.EqualFold(keyword, "returns") && name == "":
				doc.Returns = value
				sink = &doc.Returns
				inGroup = false
				continue
			case strings.EqualFold(keyword, "throws") && name == "":
				doc.Throws = value
				sink = &doc.Throws
				inGroup = false
				continue
			case inGroup && name == "":
				doc.Parameters = append(doc.Parameters, ParameterDoc{Name: keyword, Description: value})
				sink = &doc.Parameters[len(doc.Parameters)-1].Description
				continue
			}
			inGroup = false
		}

		if sink != nil {
			if *sink == "" {
				*sink = trimmed
			} else {
				*sink += " " + trimmed
			}
			continue
		}
		description = append(description, trimmed)
	}

	doc.Description = joinParagraphs(description)
	if doc.IsEmpty() {
		return nil
	}
	return &doc
}

// splitDocTag splits a "- Keyword name: value" bullet. For single-word
// bullets like "- Returns: value" or group items like "- x: value", name is
// empty and the word is returned as the keyword.
func splitDocTag(line string) (keyword, name, value string, ok bool) {
	if !strings.HasPrefix(line, "-") {
		return "", "", "", false
	}
	body := strings.TrimSpace(strings.TrimPrefix(line, "-"))
	colon := strings.IndexByte(body, ':')
	if colon < 0 {
		return "", "", "", false
	}

	fields := strings.Fields(body[:colon])
	switch len(fields) {
	case 1:
		keyword = fields[0]
	case 2:
		keyword, name = fields[0], fields[1]
	default:
		return "", "", "", false
	}
	return keyword, name, strings.TrimSpace(body[colon+1:]), true
}

// joinParagraphs joins description lines, trimming surrounding blank lines
// and collapsing runs of blank lines to one paragraph break.
func joinParagraphs(lines []string) string {
	var out []string
	blanks := 0
	for _, line := range lines {
		if line == "" {
			blanks++
			continue
		}
		if blanks > 0 && len(out) > 0 {
			out = append(out, "")
		}
		blanks = 0
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// docCommentLines flattens doc-comment pieces into their text lines with
// comment markers removed.
func docCommentLines(block Trivia) []string {
	var lines []string
	for _, piece := range block {
		switch piece.Kind {
		case TriviaDocLineComment:
			text := strings.TrimPrefix(piece.Text, "///")
			text = strings.TrimPrefix(text, " ")
			lines = append(lines, strings.TrimRight(text, " \t"))
		case TriviaDocBlockComment:
			lines = append(lines, docBlockLines(piece.Text)...)
		}
	}
	return lines
}

// docBlockLines strips the delimiters and per-line asterisks of a block
// doc comment.
func docBlockLines(text string) []string {
	text = strings.TrimPrefix(text, "/**")
	text = strings.TrimSuffix(text, "*/")

	raw := strings.Split(text, "\n")
	var lines []string
	for i, line := range raw {
		trimmed := strings.TrimSpace(line)
		trimmed = strings.TrimPrefix(trimmed, "*")
		trimmed = strings.TrimPrefix(trimmed, " ")
		if i == 0 && trimmed == "" {
			continue
		}
		lines = append(lines, trimmed)
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
