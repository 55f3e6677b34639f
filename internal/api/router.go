package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/berkano/internal/contentservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *contentservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	dh := NewDatabaseHandler(svc.Registry())
	ch := NewContentHandler(svc)
	ih := NewImportHandler(svc.Registry())

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Database registry.
	r.Get("/databases", dh.List)
	r.Post("/databases", dh.Create)
	r.Get("/databases/active", dh.GetActive)
	r.Put("/databases/active", dh.SetActive)
	r.Post("/databases/import", ih.Upload)
	r.Post("/databases/{name}/copy", dh.Copy)
	r.Delete("/databases/{name}", dh.Delete)
	r.Get("/databases/{name}/stats", dh.Stats)

	// Content index + mapper.
	r.Get("/content", ch.List)
	r.Get("/content-stats", ch.IndexStats)
	r.Get("/content/{id}", ch.Get)
	r.Put("/content/{id}", ch.Save)
	r.Delete("/content/{id}", ch.Delete)
	r.Post("/content/{id}/copy", ch.Copy)
	r.Get("/content/{id}/stats", ch.Stats)

	// SSE endpoint (protected by the same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
