package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/beidekit/internal/projectservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *projectservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Projects.
	r.Get("/projects", h.ListProjects)
	r.Post("/projects", h.UploadProject)
	r.Get("/projects/*", h.GetProject)

	// Lookups.
	r.Get("/search", h.Search)
	r.Get("/usages", h.Usages)
	r.Get("/files", h.Files)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
