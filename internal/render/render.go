// Package render writes a ProjectDocument as a table, markdown, JSON or YAML.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"github.com/starford/beidekit/internal/models"
)

// Supported output formats.
const (
	FormatTable    = "table"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
)

// Formats lists every accepted format name.
var Formats = []string{FormatTable, FormatMarkdown, FormatJSON, FormatYAML}

// Render writes doc to w in the given format. An empty format means table.
func Render(w io.Writer, format string, doc models.ProjectDocument) error {
	switch format {
	case "", FormatTable:
		return renderTables(w, doc, false)
	case FormatMarkdown, "md":
		return renderTables(w, doc, true)
	case FormatJSON:
		return renderJSON(w, doc)
	case FormatYAML, "yml":
		return renderYAML(w, doc)
	}
	return fmt.Errorf("render: unknown format %q (want one of %s)", format, strings.Join(Formats, ", "))
}

func renderJSON(w io.Writer, doc models.ProjectDocument) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func renderYAML(w io.Writer, doc models.ProjectDocument) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("render: yaml: %w", err)
	}
	return enc.Close()
}

func renderTables(w io.Writer, doc models.ProjectDocument, markdown bool) error {
	flush := func(t table.Writer) {
		if markdown {
			t.RenderMarkdown()
		} else {
			t.Render()
		}
		_, _ = fmt.Fprintln(w)
	}

	settings := newTable(w, "Setting", "Value")
	settings.SetTitle(doc.Path)
	for _, kv := range [][2]string{
		{"format version", strconv.Itoa(int(doc.FormatVersion))},
		{"byte order", doc.ByteOrder},
		{"target name", doc.TargetName},
		{"target type", doc.TargetType},
		{"system includes as local", strconv.FormatBool(doc.SystemIncludesAsLocal)},
		{"file detection", doc.FileDetection},
		{"language options", flagCell(doc.LanguageOptions, doc.LanguageOptionsUnknown)},
		{"warning mode", doc.WarningMode},
		{"warnings", flagCell(doc.Warnings, doc.WarningsUnknown)},
		{"code generation", flagCell(doc.CodeGeneration, doc.CodeGenerationUnknown)},
		{"optimization", doc.Optimization},
		{"strip", flagCell(doc.Strip, doc.StripUnknown)},
		{"compiler options", doc.CompilerOptions},
		{"linker options", doc.LinkerOptions},
	} {
		settings.AppendRow(table.Row{kv[0], kv[1]})
	}
	flush(settings)

	if len(doc.SystemIncludes)+len(doc.LocalIncludes) > 0 {
		incs := newTable(w, "#", "Kind", "Path")
		for i, p := range doc.SystemIncludes {
			incs.AppendRow(table.Row{i, models.IncludeSystem, p})
		}
		for i, p := range doc.LocalIncludes {
			incs.AppendRow(table.Row{i, models.IncludeLocal, p})
		}
		flush(incs)
	}

	files := newTable(w, "#", "Path", "MIME type", "Group")
	for i, f := range doc.Files {
		files.AppendRow(table.Row{i, f.Path, f.MimeType, f.Group})
	}
	files.AppendFooter(table.Row{"", fmt.Sprintf("%d files", len(doc.Files)), "", ""})
	flush(files)

	if len(doc.FileTypeRules) > 0 {
		rules := newTable(w, "MIME type", "Extension", "Resources", "Tool")
		for _, r := range doc.FileTypeRules {
			rules.AppendRow(table.Row{r.MimeType, r.Extension, r.HasResources, r.ToolName})
		}
		flush(rules)
	}
	return nil
}

func newTable(w io.Writer, header ...any) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	// Footers keep their case.
	t.Style().Format.Footer = text.FormatDefault
	t.AppendHeader(table.Row(header))
	return t
}

// flagCell lists flag names, followed by any unnamed bits in hex.
func flagCell(names []string, unknown uint32) string {
	if unknown != 0 {
		names = append(names[:len(names):len(names)], fmt.Sprintf("0x%08x", unknown))
	}
	return joinOrNone(names)
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}
