package handlers

import (
	"net/http"
	"strconv"

	"route-selection-client/internal/domain"
)

// DocumentSource looks up a live artifact document by id.
type DocumentSource interface {
	Get(id string) (domain.Document, bool)
}

type ArtifactHandler struct {
	Docs DocumentSource
}

// Get serves a live map document. Released artifacts answer 404.
func (h *ArtifactHandler) Get(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.Docs.Get(r.PathValue("id"))
	if !ok {
		writeError(w, r, http.StatusNotFound, "artifact not found")
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Body)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Body)
}
