package api

import (
	"io"
	"net/http"

	"github.com/starford/berkano/internal/registry"
	"github.com/starford/berkano/internal/validate"
)

const maxImportBytes = 200 << 20 // 200 MB

// ImportHandler accepts uploaded database files, letting an operator stage a
// prepared database before switching the active pointer to it.
type ImportHandler struct {
	reg *registry.Registry
}

// NewImportHandler creates a handler writing into the registry's storage root.
func NewImportHandler(reg *registry.Registry) *ImportHandler {
	return &ImportHandler{reg: reg}
}

// Upload handles POST /api/databases/import (multipart/form-data, field
// "file"). The uploaded file name becomes the database name and must not
// collide with an existing one.
func (h *ImportHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)

	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	name := header.Filename
	if err := validate.ValidateDatabaseName(name); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("read upload failed"))
		return
	}

	info, err := h.reg.Import(name, data)
	if err != nil {
		writeDatabaseError(w, "import database", name, err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}
