package handlers

import (
	"io"
	"net/http"

	"route-selection-client/internal/api/dto"
	"route-selection-client/internal/platform/apperr"
)

func (h *SelectorHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req dto.SearchRequest
	if !decodeJSON(w, r, h.Validate, &req) {
		return
	}

	_, err := h.Orch.Search(r.Context(), req.Term)
	h.respond(w, r, err)
}

func (h *SelectorHandler) ClearResults(w http.ResponseWriter, r *http.Request) {
	h.Orch.ClearResults()
	h.respond(w, r, nil)
}

// Event accepts a raw message posted by the embedded map. The body is an
// untyped boundary: it is decoded by the orchestrator, and shapes it does not
// recognize are acknowledged with handled=false.
func (h *SelectorHandler) Event(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "unreadable body")
		return
	}

	handled, err := h.Orch.HandleEvent(r.Context(), raw)
	if err != nil && !apperr.IsKind(err, apperr.KindEmptyResult) {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.EventResponse{Handled: handled, State: h.state(r.Context())})
}
