package handlers

import (
	"net/http"

	"route-selection-client/internal/api/dto"
	"route-selection-client/internal/domain"
)

func (h *SelectorHandler) SetTimePeriod(w http.ResponseWriter, r *http.Request) {
	var req dto.TimePeriodRequest
	if !decodeJSON(w, r, h.Validate, &req) {
		return
	}
	h.respond(w, r, h.Orch.SetTimePeriod(*req.Hour, *req.DayOfWeek))
}

func (h *SelectorHandler) SetMapStyle(w http.ResponseWriter, r *http.Request) {
	var req dto.MapStyleRequest
	if !decodeJSON(w, r, h.Validate, &req) {
		return
	}
	h.respond(w, r, h.Orch.SetMapStyle(domain.MapStyle(req.MapType)))
}

// Generate runs optimize then render. A render failure still answers 200
// with the route result and an error on the route state.
func (h *SelectorHandler) Generate(w http.ResponseWriter, r *http.Request) {
	_, err := h.Orch.GenerateRoute(r.Context())
	h.respond(w, r, err)
}
