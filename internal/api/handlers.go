package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/beidekit/internal/apperr"
	"github.com/starford/beidekit/internal/projectservice"
)

const maxUploadBytes = 16 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *projectservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *projectservice.Service) *Handler {
	return &Handler{svc: svc}
}

// projectPath extracts the project path from the URL (everything after /api/projects/).
// Supports encoded slashes from OpenAPI clients (e.g. apps%2FMyApp.proj).
func projectPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// writeServiceError maps service errors onto status codes.
func writeServiceError(w http.ResponseWriter, op string, err error, attrs ...any) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody(codeNotFound, "not found"))
	case errors.Is(err, apperr.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody(codeConflict, "project already exists"))
	case errors.Is(err, apperr.ErrInvalidProject):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(codeInvalidProject, err.Error()))
	case errors.Is(err, apperr.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, errorBody(codeBadRequest, err.Error()))
	default:
		slog.Error(op+" failed", append(attrs, slog.String("error", err.Error()))...)
		writeJSON(w, http.StatusInternalServerError, errorBody(codeInternal, "internal error"))
	}
}

// ListProjects handles GET /api/projects.
//
//	@Summary		List catalogued projects
//	@Tags			projects
//	@Produce		json
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Param			type	query		string	false	"Filter by target type"	Enums(application, shared-library, static-library, kernel-driver)
//	@Param			sort	query		string	false	"Sort field"	Enums(path, target_name, updated_at)
//	@Success		200		{object}	ProjectListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects [get]
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, total, err := h.svc.ListProjects(r.Context(), queryInt(q, "limit"), queryInt(q, "offset"), q.Get("type"), q.Get("sort"))
	if err != nil {
		writeServiceError(w, "list projects", err)
		return
	}
	writeJSON(w, http.StatusOK, ProjectListResponse{Projects: nonNil(items), Total: total})
}

// GetProject handles GET /api/projects/*.
//
//	@Summary		Read a project file
//	@Tags			projects
//	@Produce		json
//	@Param			path	path		string	true	"Project path"
//	@Success		200		{object}	ProjectDetail
//	@Failure		404		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{path} [get]
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	p := projectPath(r)
	if p == "" {
		writeJSON(w, http.StatusBadRequest, errorBody(codeBadRequest, "path is required"))
		return
	}
	detail, err := h.svc.GetProject(r.Context(), p)
	if err != nil {
		writeServiceError(w, "get project", err, slog.String("path", p))
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// UploadProject handles POST /api/projects (multipart/form-data, field
// "file", optional field "path" for the workspace-relative destination).
//
//	@Summary		Upload a project file
//	@Tags			projects
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"Project file"
//	@Param			path	formData	string	false	"Destination path"
//	@Success		201		{object}	ProjectDetail
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects [post]
func (h *Handler) UploadProject(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(codeBadRequest, "file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(codeBadRequest, "missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	dest := r.FormValue("path")
	if dest == "" {
		dest = path.Base(header.Filename)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(codeBadRequest, "failed to read file"))
		return
	}

	detail, err := h.svc.UploadProject(r.Context(), dest, data)
	if err != nil {
		writeServiceError(w, "upload project", err, slog.String("path", dest))
		return
	}
	writeJSON(w, http.StatusCreated, detail)
}

// Search handles GET /api/search.
//
//	@Summary		Search target names and file paths
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody(codeBadRequest, "query parameter 'q' is required"))
		return
	}
	results, err := h.svc.Search(r.Context(), q, queryInt(r.URL.Query(), "limit"))
	if err != nil {
		writeServiceError(w, "search", err, slog.String("query", q))
		return
	}
	out := make([]SearchResult, len(results))
	for i, res := range results {
		out[i] = SearchResult(res)
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: out})
}

// Usages handles GET /api/usages.
//
//	@Summary		List projects that include a file
//	@Tags			search
//	@Produce		json
//	@Param			file	query		string	true	"Project-relative file path"
//	@Success		200		{object}	UsagesResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/usages [get]
func (h *Handler) Usages(w http.ResponseWriter, r *http.Request) {
	file := r.URL.Query().Get("file")
	if file == "" {
		writeJSON(w, http.StatusBadRequest, errorBody(codeBadRequest, "query parameter 'file' is required"))
		return
	}
	projects, err := h.svc.ProjectsUsing(r.Context(), file)
	if err != nil {
		writeServiceError(w, "usages", err, slog.String("file", file))
		return
	}
	writeJSON(w, http.StatusOK, UsagesResponse{File: file, Projects: projects})
}

// Files handles GET /api/files?project=.
//
//	@Summary		List the catalogued files of a project
//	@Tags			projects
//	@Produce		json
//	@Param			project	query		string	true	"Workspace-relative project path"
//	@Success		200		{object}	ProjectFilesResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/files [get]
func (h *Handler) Files(w http.ResponseWriter, r *http.Request) {
	project := r.URL.Query().Get("project")
	if project == "" {
		writeJSON(w, http.StatusBadRequest, errorBody(codeBadRequest, "query parameter 'project' is required"))
		return
	}
	rows, err := h.svc.ProjectFiles(r.Context(), project)
	if err != nil {
		writeServiceError(w, "project files", err, slog.String("project", project))
		return
	}
	out := make([]ProjectFileItem, len(rows))
	for i, f := range rows {
		out[i] = ProjectFileItem{Path: f.Path, MimeType: f.MimeType, Group: f.Group}
	}
	writeJSON(w, http.StatusOK, ProjectFilesResponse{Project: project, Files: out})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
