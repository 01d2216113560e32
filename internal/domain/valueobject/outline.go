package valueobject

import "sort"

// SourceOutline is the overview extracted from one source file.
type SourceOutline struct {
	Path         string                `json:"path,omitempty"         yaml:"path,omitempty"`
	Imports      []string              `json:"imports,omitempty"      yaml:"imports,omitempty"`
	Declarations []DeclarationOverview `json:"declarations,omitempty" yaml:"declarations,omitempty"`
}

// DeclarationCount returns the number of entries across the whole forest.
func (o SourceOutline) DeclarationCount() int {
	return CountForest(o.Declarations)
}

// ProjectOutline aggregates the outlines of several files. Imports hold
// the union of all file imports, sorted and deduplicated.
type ProjectOutline struct {
	Files            []SourceOutline `json:"files,omitempty"   yaml:"files,omitempty"`
	Imports          []string        `json:"imports,omitempty" yaml:"imports,omitempty"`
	FileCount        int             `json:"fileCount"         yaml:"fileCount"`
	DeclarationCount int             `json:"declarationCount"  yaml:"declarationCount"`
}

// NewProjectOutline merges per-file outlines into a project overview.
// Files are ordered by path so the result is deterministic regardless of
// the order the outlines were produced in.
func NewProjectOutline(files []SourceOutline) ProjectOutline {
	sorted := make([]SourceOutline, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Path < sorted[j].Path
	})

	project := ProjectOutline{
		Files:     sorted,
		FileCount: len(sorted),
	}
	seen := make(map[string]struct{})
	for _, f := range sorted {
		project.DeclarationCount += f.DeclarationCount()
		for _, imp := range f.Imports {
			if _, ok := seen[imp]; ok {
				continue
			}
			seen[imp] = struct{}{}
			project.Imports = append(project.Imports, imp)
		}
	}
	sort.Strings(project.Imports)
	return project
}

// MergeImports deduplicates and sorts import module names.
func MergeImports(imports []string) []string {
	seen := make(map[string]struct{}, len(imports))
	var out []string
	for _, imp := range imports {
		if _, ok := seen[imp]; ok {
			continue
		}
		seen[imp] = struct{}{}
		out = append(out, imp)
	}
	sort.Strings(out)
	return out
}
