// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes beidekit catalog tools for LLM integration via stdio transport.
package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/beidekit/internal/apperr"
	"github.com/starford/beidekit/internal/projectservice"
	"github.com/starford/beidekit/internal/render"
)

const formatNotesURI = "beide://format-notes"

// Server wraps the MCP server with beidekit tools.
type Server struct {
	mcp *server.MCPServer
	svc *projectservice.Service
}

// New creates a new MCP server with all beidekit tools registered.
func New(svc *projectservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"beidekit",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_projects",
		mcp.WithDescription("List catalogued BeIDE projects with target name, type and load status."),
		mcp.WithString("type", mcp.Description("Optional target type filter"),
			mcp.Enum("application", "shared-library", "static-library", "kernel-driver")),
		mcp.WithNumber("limit", mcp.Description("Page size (default 50)")),
		mcp.WithNumber("offset", mcp.Description("Page offset")),
	), s.listProjects)

	s.mcp.AddTool(mcp.NewTool("read_project",
		mcp.WithDescription("Parse a BeIDE project file and return its settings, include paths, files and rules."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Workspace-relative path to the project (e.g. apps/MyApp.proj)")),
		mcp.WithString("format", mcp.Description("Output format"), mcp.Enum(render.Formats...)),
	), s.readProject)

	s.mcp.AddTool(mcp.NewTool("search_projects",
		mcp.WithDescription("Search projects by target name and file paths."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Max results (default 20)")),
	), s.searchProjects)

	s.mcp.AddTool(mcp.NewTool("find_usages",
		mcp.WithDescription("Find all projects whose file list contains the given file."),
		mcp.WithString("file", mcp.Required(), mcp.Description("Project-relative file path (e.g. src/App.cpp)")),
	), s.findUsages)

	s.mcp.AddTool(mcp.NewTool("list_project_files",
		mcp.WithDescription("List the catalogued files of a project (path, MIME type, group) in project order."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Workspace-relative path to the project")),
	), s.listProjectFiles)

	s.mcp.AddTool(mcp.NewTool("upload_project",
		mcp.WithDescription("Validate a base64-encoded BeIDE project file and add it to the workspace. "+
			"Existing files are never overwritten."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Destination path (must use the project extension)")),
		mcp.WithString("content", mcp.Required(), mcp.Description("File bytes as base64 or a data: URI")),
	), s.uploadProject)

	s.mcp.AddTool(mcp.NewTool("get_format_notes",
		mcp.WithDescription("Returns notes on the BeIDE project file format and how to read the other tools' output."),
	), s.getFormatNotes)

	// Resource: format notes.
	s.mcp.AddResource(
		mcp.NewResource(formatNotesURI, "BeIDE Project Format Notes",
			mcp.WithResourceDescription("Record layout and field table of BeIDE project files."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatNotesResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func toolError(err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError("not found")
	}
	return mcp.NewToolResultError(err.Error())
}

func (s *Server) listProjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, total, err := s.svc.ListProjects(ctx,
		req.GetInt("limit", 50), req.GetInt("offset", 0), req.GetString("type", ""), "")
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(map[string]any{"projects": items, "total": total})
}

func (s *Server) readProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	detail, err := s.svc.GetProject(ctx, path)
	if err != nil {
		return toolError(err), nil
	}
	format := req.GetString("format", render.FormatJSON)
	var buf bytes.Buffer
	if err := render.Render(&buf, format, detail.ProjectDocument); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (s *Server) searchProjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, req.GetInt("limit", 20))
	if err != nil {
		return toolError(err), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("no matches"), nil
	}
	return jsonResult(results)
}

func (s *Server) findUsages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	file, err := req.RequireString("file")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	users, err := s.svc.ProjectsUsing(ctx, file)
	if err != nil {
		return toolError(err), nil
	}
	if len(users) == 0 {
		return mcp.NewToolResultText("no projects use " + file), nil
	}
	return mcp.NewToolResultText(strings.Join(users, "\n")), nil
}

func (s *Server) listProjectFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	files, err := s.svc.ProjectFiles(ctx, path)
	if err != nil {
		return toolError(err), nil
	}
	var b strings.Builder
	for _, f := range files {
		fmt.Fprintf(&b, "%s\t%s\t%s\n", f.Path, f.MimeType, f.Group)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) uploadProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := decodeContent(content)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(data) > maxUploadSize {
		return mcp.NewToolResultError(fmt.Sprintf("file too large: %d bytes (max %d)", len(data), maxUploadSize)), nil
	}
	detail, err := s.svc.UploadProject(ctx, path, data)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s (%s, %d files)", path, detail.TargetName, len(detail.Files))), nil
}

func (s *Server) getFormatNotes(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(FormatNotes), nil
}

func (s *Server) readFormatNotesResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatNotesURI,
			MIMEType: "text/markdown",
			Text:     FormatNotes,
		},
	}, nil
}
