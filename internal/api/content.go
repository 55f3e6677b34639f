package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/berkano/internal/apperr"
	"github.com/starford/berkano/internal/contentservice"
	"github.com/starford/berkano/internal/models"
)

// ContentHandler holds the content route handlers. Routes operate on the
// active database unless a ?db= query parameter names another one.
type ContentHandler struct {
	svc *contentservice.Service
}

// NewContentHandler creates a new ContentHandler.
func NewContentHandler(svc *contentservice.Service) *ContentHandler {
	return &ContentHandler{svc: svc}
}

func dbScope(r *http.Request) string {
	return r.URL.Query().Get("db")
}

// List handles GET /api/content.
func (h *ContentHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListContent(r.Context(), dbScope(r))
	if err != nil {
		writeContentError(w, "list content", "", err)
		return
	}
	if items == nil {
		items = []contentservice.ContentListItem{}
	}
	writeJSON(w, http.StatusOK, ContentListResponse{Content: items, Total: len(items)})
}

// Get handles GET /api/content/{id}.
func (h *ContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	detail, err := h.svc.GetFullContent(r.Context(), dbScope(r), id)
	if err != nil {
		writeContentError(w, "get content", id, err)
		return
	}
	w.Header().Set("ETag", detail.Checksum)
	writeJSON(w, http.StatusOK, detail)
}

// Save handles PUT /api/content/{id}. The optional If-Match header enables
// optimistic concurrency against the stored document's checksum.
func (h *ContentHandler) Save(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var content models.Content
	if err := decodeBody(r.Body, &content); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	content.ID = id

	cs, err := h.svc.SaveFullContent(r.Context(), dbScope(r), &content, r.Header.Get("If-Match"))
	if err != nil {
		writeContentError(w, "save content", id, err)
		return
	}
	w.Header().Set("ETag", cs)
	writeJSON(w, http.StatusOK, SaveContentResponse{ID: id, Checksum: cs})
}

// Delete handles DELETE /api/content/{id}.
func (h *ContentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteContent(r.Context(), dbScope(r), id); err != nil {
		writeContentError(w, "delete content", id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Copy handles POST /api/content/{id}/copy.
func (h *ContentHandler) Copy(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req CopyContentRequest
	if err := decodeBody(r.Body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if err := h.svc.CopyContent(r.Context(), dbScope(r), id, req.NewID); err != nil {
		writeContentError(w, "copy content", id, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// Stats handles GET /api/content/{id}/stats.
func (h *ContentHandler) Stats(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	stats, err := h.svc.ContentStats(r.Context(), dbScope(r), id)
	if err != nil {
		writeContentError(w, "content stats", id, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// IndexStats handles GET /api/content-stats.
func (h *ContentHandler) IndexStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.IndexStats(r.Context(), dbScope(r))
	if err != nil {
		writeContentError(w, "index stats", "", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func writeContentError(w http.ResponseWriter, op, id string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody("already exists"))
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusPreconditionFailed, errorBody("checksum mismatch"))
	case errors.Is(err, apperr.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	default:
		slog.Error(op+" failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
