package api

import "github.com/starford/beidekit/internal/projectservice"

// ProjectDetail is the full project response type (aliased from the domain layer).
type ProjectDetail = projectservice.ProjectDetail

// ProjectListItem is a lightweight item in a list response (aliased from the domain layer).
type ProjectListItem = projectservice.ProjectListItem

// ProjectListResponse wraps paginated project listings.
type ProjectListResponse struct {
	Projects []ProjectListItem `json:"projects" validate:"required"`
	Total    int               `json:"total" example:"42" validate:"required"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	Path       string `json:"path" example:"apps/MyApp.proj" validate:"required"`
	TargetName string `json:"target_name" example:"MyApp" validate:"required"`
	Snippet    string `json:"snippet" example:"src/<b>App</b>.cpp" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}

// UsagesResponse lists the projects that include a file.
type UsagesResponse struct {
	File     string   `json:"file" example:"src/App.cpp" validate:"required"`
	Projects []string `json:"projects" validate:"required"`
}

// ProjectFileItem is one catalogued file of a project.
type ProjectFileItem struct {
	Path     string `json:"path" example:"src/App.cpp" validate:"required"`
	MimeType string `json:"mime_type" example:"text/x-source-code"`
	Group    string `json:"group" example:"Sources"`
}

// ProjectFilesResponse lists the catalogued files of one project.
type ProjectFilesResponse struct {
	Project string            `json:"project" example:"apps/MyApp.proj" validate:"required"`
	Files   []ProjectFileItem `json:"files" validate:"required"`
}
