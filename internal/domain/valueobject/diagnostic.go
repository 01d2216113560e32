package valueobject

import (
	"fmt"
	"strings"
)

// FixItCategory classifies a suggested correction.
type FixItCategory string

const (
	FixItInsert  FixItCategory = "insert"
	FixItRemove  FixItCategory = "remove"
	FixItReplace FixItCategory = "replace"
)

// FixIt is one suggested correction for a diagnostic.
type FixIt struct {
	Category FixItCategory `json:"category"       yaml:"category"`
	Message  string        `json:"message"        yaml:"message"`
	Text     string        `json:"text,omitempty" yaml:"text,omitempty"`
}

// Diagnostic describes one syntax problem found in a source file. Line and
// Column are 1-based for display. SourceLine and Caret are pre-rendered so
// consumers without access to the source can still show the location.
type Diagnostic struct {
	Message    string   `json:"message"              yaml:"message"`
	Line       int      `json:"line"                 yaml:"line"`
	Column     int      `json:"column"               yaml:"column"`
	SourceLine string   `json:"sourceLine,omitempty" yaml:"sourceLine,omitempty"`
	Caret      string   `json:"caret,omitempty"      yaml:"caret,omitempty"`
	Context    []string `json:"context,omitempty"    yaml:"context,omitempty"`
	FixIts     []FixIt  `json:"fixIts,omitempty"     yaml:"fixIts,omitempty"`
}

// String renders the diagnostic in a compact single-location form.
func (d Diagnostic) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d:%d: %s", d.Line, d.Column, d.Message)
	if d.SourceLine != "" {
		b.WriteString("\n")
		b.WriteString(d.SourceLine)
		if d.Caret != "" {
			b.WriteString("\n")
			b.WriteString(d.Caret)
		}
	}
	return b.String()
}

// DiagnosticReport collects the diagnostics of one file.
type DiagnosticReport struct {
	Path        string       `json:"path,omitempty" yaml:"path,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics"    yaml:"diagnostics"`
}

// HasDiagnostics reports whether any problem was found.
func (r DiagnosticReport) HasDiagnostics() bool {
	return len(r.Diagnostics) > 0
}
