package handlers

import (
	"net/http"
	"strconv"

	"route-selection-client/internal/api/dto"
	"route-selection-client/internal/domain"
)

func (h *SelectorHandler) SetMode(w http.ResponseWriter, r *http.Request) {
	var req dto.ModeRequest
	if !decodeJSON(w, r, h.Validate, &req) {
		return
	}

	mode, err := domain.ParseMode(req.Mode)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	h.respond(w, r, h.Orch.SetMode(mode))
}

func (h *SelectorHandler) AddDepot(w http.ResponseWriter, r *http.Request) {
	var req dto.NodeRequest
	if !decodeJSON(w, r, h.Validate, &req) {
		return
	}
	h.respond(w, r, h.Orch.AddAsDepot(r.Context(), string(req.NodeID)))
}

func (h *SelectorHandler) ClearDepot(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.Orch.ClearDepot(r.Context()))
}

func (h *SelectorHandler) AddStop(w http.ResponseWriter, r *http.Request) {
	var req dto.NodeRequest
	if !decodeJSON(w, r, h.Validate, &req) {
		return
	}
	h.respond(w, r, h.Orch.AddAsStop(r.Context(), string(req.NodeID)))
}

// RemoveStop removes by position. Out-of-range positions leave the
// selection unchanged and still succeed.
func (h *SelectorHandler) RemoveStop(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "index must be an integer")
		return
	}
	h.respond(w, r, h.Orch.RemoveStop(r.Context(), index))
}
