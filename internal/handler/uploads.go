package handler

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

// UploadsHandler serves stored listing images read-only.
type UploadsHandler struct {
	dir string
}

// NewUploadsHandler serves files from dir.
func NewUploadsHandler(dir string) *UploadsHandler {
	return &UploadsHandler{dir: dir}
}

// Serve handles GET /uploads/{name}. Only plain file names directly under
// the upload directory are served; there is no directory listing.
func (h *UploadsHandler) Serve(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
		return
	}

	http.ServeFile(w, r, filepath.Join(h.dir, name))
}
