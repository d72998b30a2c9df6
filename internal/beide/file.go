package beide

import (
	"path"
	"strings"
)

// ProjectFile is one source or resource entry of a project.
type ProjectFile struct {
	Path     string `json:"path" yaml:"path"`
	MimeType string `json:"mime_type" yaml:"mime_type"`
	Group    string `json:"group" yaml:"group"`
}

// Folder returns everything before the last slash, or "" for a bare name.
func (f ProjectFile) Folder() string {
	i := strings.LastIndexByte(f.Path, '/')
	if i < 0 {
		return ""
	}
	return f.Path[:i]
}

// Name returns the final path element.
func (f ProjectFile) Name() string {
	if f.Path == "" {
		return ""
	}
	return path.Base(f.Path)
}

// ext returns the name's extension including the dot. A leading dot
// does not start an extension, so ".profile" has none.
func ext(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 {
		return ""
	}
	return name[i:]
}

// Extension returns the name's extension without the dot.
func (f ProjectFile) Extension() string {
	return strings.TrimPrefix(ext(f.Name()), ".")
}

// BaseName returns the name without its extension.
func (f ProjectFile) BaseName() string {
	name := f.Name()
	return strings.TrimSuffix(name, ext(name))
}

// FileTypeRule maps a file type to the tool that builds it. Parsed for
// completeness; nothing in beidekit acts on it.
type FileTypeRule struct {
	MimeType     string `json:"mime_type" yaml:"mime_type"`
	Extension    string `json:"extension" yaml:"extension"`
	HasResources bool   `json:"has_resources" yaml:"has_resources"`
	ToolName     string `json:"tool_name" yaml:"tool_name"`
}
