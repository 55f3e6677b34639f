package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/berkano/internal/apperr"
	"github.com/starford/berkano/internal/registry"
)

// DatabaseHandler holds the database-level route handlers.
type DatabaseHandler struct {
	reg *registry.Registry
}

// NewDatabaseHandler creates a new DatabaseHandler.
func NewDatabaseHandler(reg *registry.Registry) *DatabaseHandler {
	return &DatabaseHandler{reg: reg}
}

// List handles GET /api/databases.
func (h *DatabaseHandler) List(w http.ResponseWriter, _ *http.Request) {
	dbs, err := h.reg.List()
	if err != nil {
		slog.Error("list databases failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, DatabaseListResponse{
		Databases: dbs,
		Active:    h.reg.ActiveName(),
	})
}

// Create handles POST /api/databases.
func (h *DatabaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateDatabaseRequest
	if err := decodeBody(r.Body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	info, err := h.reg.Create(req.Name, req.DisplayName)
	if err != nil {
		writeDatabaseError(w, "create database", req.Name, err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

// Copy handles POST /api/databases/{name}/copy.
func (h *DatabaseHandler) Copy(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var req CopyDatabaseRequest
	if err := decodeBody(r.Body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	info, err := h.reg.Copy(name, req.Destination)
	if err != nil {
		writeDatabaseError(w, "copy database", name, err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

// Delete handles DELETE /api/databases/{name}.
func (h *DatabaseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.reg.Delete(name); err != nil {
		writeDatabaseError(w, "delete database", name, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Stats handles GET /api/databases/{name}/stats.
func (h *DatabaseHandler) Stats(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	stats, err := h.reg.Stats(name)
	if err != nil {
		writeDatabaseError(w, "database stats", name, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// GetActive handles GET /api/databases/active.
func (h *DatabaseHandler) GetActive(w http.ResponseWriter, _ *http.Request) {
	info, err := h.reg.Active()
	if err != nil {
		slog.Error("resolve active database failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// SetActive handles PUT /api/databases/active.
func (h *DatabaseHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	var req SetActiveRequest
	if err := decodeBody(r.Body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if err := h.reg.SetActive(req.Name); err != nil {
		writeDatabaseError(w, "set active database", req.Name, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeBody(r io.Reader, v any) error {
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return errors.New("invalid request body")
	}
	return nil
}

func writeDatabaseError(w http.ResponseWriter, op, name string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("database not found"))
	case errors.Is(err, apperr.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody("database already exists"))
	case errors.Is(err, apperr.ErrIsActive):
		writeJSON(w, http.StatusConflict, errorBody("database is active"))
	case errors.Is(err, apperr.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	default:
		slog.Error(op+" failed", slog.String("name", name), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
