package handlers

import (
	"context"
	"net/http"

	"route-selection-client/internal/api/dto"
	"route-selection-client/internal/domain"
	"route-selection-client/internal/platform/apperr"
	"route-selection-client/internal/services"

	"github.com/go-playground/validator/v10"
)

// SelectorHandler exposes the orchestrator to view code. Every intent
// answers with the resulting state so the view never tracks state itself.
type SelectorHandler struct {
	Orch     *services.Orchestrator
	Validate *validator.Validate
}

func (h *SelectorHandler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.state(r.Context()))
}

// respond writes the state, or the error when its kind is not an
// informational outcome that still carries state.
func (h *SelectorHandler) respond(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil && !apperr.IsKind(err, apperr.KindEmptyResult) && !apperr.IsKind(err, apperr.KindPartialPipeline) {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, h.state(r.Context()))
}

func (h *SelectorHandler) state(ctx context.Context) dto.StateResponse {
	return toStateResponse(h.Orch.Snapshot(ctx))
}

func toStateResponse(v services.View) dto.StateResponse {
	res := dto.StateResponse{
		Selection: dto.SelectionResponse{
			Mode:  string(v.Selection.Mode),
			Stops: make([]dto.SelectedNode, 0, len(v.Selection.Stops)),
		},
		Results:     toLocations(v.Results.Candidates),
		Notice:      toNotice(v.Notice),
		TimePeriods: make([]dto.TimePeriodResponse, 0, len(v.Settings.TimePeriods)),
		MapStyles:   make([]dto.MapStyleResponse, 0, len(v.Settings.MapStyles)),
		MapStyle:    string(v.Style),
		Route:       toRouteResponse(v.Route),
	}

	if v.Selection.Depot != "" {
		n := toSelectedNode(v.Selection.Depot, v.Locations)
		res.Selection.Depot = &n
	}
	for _, id := range v.Selection.Stops {
		res.Selection.Stops = append(res.Selection.Stops, toSelectedNode(id, v.Locations))
	}

	for _, p := range v.Settings.TimePeriods {
		res.TimePeriods = append(res.TimePeriods, toTimePeriod(p))
	}
	for _, s := range v.Settings.MapStyles {
		res.MapStyles = append(res.MapStyles, dto.MapStyleResponse{Value: string(s.Value), Label: s.Label})
	}
	if v.Period != nil {
		p := toTimePeriod(*v.Period)
		res.TimePeriod = &p
	}
	if v.SelectionMap != nil {
		res.SelectionMapURL = v.SelectionMap.URL()
	}

	return res
}

func toRouteResponse(s services.PipelineSnapshot) dto.RouteResponse {
	res := dto.RouteResponse{State: string(s.State), Generation: s.Generation}
	if s.Artifact != nil {
		res.MapURL = s.Artifact.URL()
	}
	if s.Err != nil {
		res.Error = &dto.NoticeResponse{Kind: apperr.KindOf(s.Err).String(), Message: s.Err.Error()}
	}

	if r := s.Result; r != nil {
		segs := make([]dto.SegmentResponse, 0, len(r.Segments))
		for _, seg := range r.Segments {
			segs = append(segs, dto.SegmentResponse{
				From:           seg.From,
				To:             seg.To,
				TimeMinutes:    seg.TimeMinutes,
				CumulativeTime: seg.CumulativeTime,
			})
		}
		res.Result = &dto.RouteResultResponse{
			Nodes:            r.Nodes,
			Segments:         segs,
			TotalTimeMinutes: r.TotalTimeMinutes,
			TotalDistanceKm:  r.TotalDistanceKm,
			Hour:             r.Hour,
			IsWeekend:        r.IsWeekend,
		}
	}
	return res
}

func toLocations(locs []domain.Location) []dto.LocationResponse {
	out := make([]dto.LocationResponse, 0, len(locs))
	for _, l := range locs {
		out = append(out, dto.LocationResponse{ID: l.ID, Lat: l.Lat, Lon: l.Lon, DistanceKm: l.DistanceKm})
	}
	return out
}

func toSelectedNode(id string, known map[string]domain.Location) dto.SelectedNode {
	n := dto.SelectedNode{ID: id}
	if loc, ok := known[id]; ok {
		lat, lon := loc.Lat, loc.Lon
		n.Lat, n.Lon = &lat, &lon
	}
	return n
}

func toTimePeriod(p domain.TimePeriod) dto.TimePeriodResponse {
	return dto.TimePeriodResponse{Hour: p.Hour, DayOfWeek: p.DayOfWeek, Label: p.Label}
}

func toNotice(n *services.Notice) *dto.NoticeResponse {
	if n == nil {
		return nil
	}
	return &dto.NoticeResponse{Kind: n.Kind.String(), Message: n.Message}
}
