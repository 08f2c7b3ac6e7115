package backend

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"route-selection-client/internal/domain"
)

// NewStubHandler exposes a MockBackend over the same HTTP API the real
// routing backend serves, so the Client can be exercised end to end.
func NewStubHandler(m *MockBackend) http.Handler {
	s := &stubServer{backend: m}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /settings", s.settings)
	mux.HandleFunc("GET /network/nodes", s.searchNodes)
	mux.HandleFunc("GET /network/nearby-nodes", s.nearbyNodes)
	mux.HandleFunc("GET /map/initial", s.initialMap)
	mux.HandleFunc("POST /map/update-with-nodes", s.mapWithNodes)
	mux.HandleFunc("POST /map/update-route", s.mapWithSelection)
	mux.HandleFunc("POST /route/optimize", s.optimize)
	mux.HandleFunc("POST /map/route", s.routeMap)
	return mux
}

type stubServer struct {
	backend *MockBackend
}

func marshalRoute(ids []string) ([]byte, error) {
	b, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("marshal route: %w", err)
	}
	return b, nil
}

func (s *stubServer) settings(w http.ResponseWriter, r *http.Request) {
	st, err := s.backend.Settings(r.Context())
	if err != nil {
		stubError(w, http.StatusInternalServerError, err)
		return
	}

	res := settingsResponse{}
	for _, p := range st.TimePeriods {
		res.TimePeriods = append(res.TimePeriods, timePeriodDTO{Hour: p.Hour, DayOfWeek: p.DayOfWeek, Label: p.Label})
	}
	for _, m := range st.MapStyles {
		res.MapTypes = append(res.MapTypes, mapTypeDTO{Value: string(m.Value), Label: m.Label})
	}
	stubJSON(w, res)
}

func (s *stubServer) searchNodes(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	nodes, err := s.backend.SearchNodes(r.Context(), r.URL.Query().Get("search"), limit)
	if err != nil {
		stubError(w, http.StatusInternalServerError, err)
		return
	}
	stubJSON(w, toNodesResponse(nodes))
}

func (s *stubServer) nearbyNodes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(q.Get("lon"), 64)
	if errLat != nil || errLon != nil {
		stubError(w, http.StatusBadRequest, fmt.Errorf("lat and lon are required"))
		return
	}
	radius, err := strconv.ParseFloat(q.Get("radius"), 64)
	if err != nil {
		radius = 0.001
	}
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil {
		limit = 10
	}

	nodes, err := s.backend.NearbyNodes(r.Context(), lat, lon, radius, limit)
	if err != nil {
		stubError(w, http.StatusInternalServerError, err)
		return
	}
	stubJSON(w, toNodesResponse(nodes))
}

func (s *stubServer) initialMap(w http.ResponseWriter, r *http.Request) {
	doc, err := s.backend.InitialMap(r.Context())
	stubDocument(w, doc, err)
}

func (s *stubServer) mapWithNodes(w http.ResponseWriter, r *http.Request) {
	var req updateWithNodesRequest
	if !stubDecode(w, r, &req) {
		return
	}

	nodes := make([]domain.Location, 0, len(req.Nodes))
	for _, n := range req.Nodes {
		nodes = append(nodes, domain.Location{ID: n.ID, Lat: n.Lat, Lon: n.Lon})
	}

	doc, err := s.backend.MapWithNodes(r.Context(), nodes)
	stubDocument(w, doc, err)
}

func (s *stubServer) mapWithSelection(w http.ResponseWriter, r *http.Request) {
	var req updateRouteRequest
	if !stubDecode(w, r, &req) {
		return
	}

	rr := domain.RenderRequest{Stops: req.Stops, Style: domain.MapStyle(req.MapType)}
	if req.Depot != nil {
		rr.Depot = *req.Depot
	}
	if req.Hour != nil && req.DayOfWeek != nil {
		rr.Period = &domain.TimePeriod{Hour: *req.Hour, DayOfWeek: *req.DayOfWeek}
	}

	doc, err := s.backend.MapWithSelection(r.Context(), rr)
	stubDocument(w, doc, err)
}

func (s *stubServer) optimize(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if !stubDecode(w, r, &req) {
		return
	}

	res, err := s.backend.Optimize(r.Context(), domain.OptimizeRequest{
		Hour:      req.Hour,
		DayOfWeek: req.DayOfWeek,
		DepotID:   req.DepotID,
		StopIDs:   req.StopIDs,
	})
	if err != nil {
		stubError(w, http.StatusUnprocessableEntity, err)
		return
	}

	out := optimizeResponse{
		Route:            json.RawMessage(res.Route),
		Nodes:            make([]nodeID, 0, len(res.Nodes)),
		Segments:         make([]segmentDTO, 0, len(res.Segments)),
		TotalTimeMinutes: res.TotalTimeMinutes,
		TotalDistanceKm:  res.TotalDistanceKm,
		Hour:             res.Hour,
		IsWeekend:        res.IsWeekend,
	}
	for _, n := range res.Nodes {
		out.Nodes = append(out.Nodes, nodeID(n))
	}
	for _, sg := range res.Segments {
		out.Segments = append(out.Segments, segmentDTO{
			FromNode:       nodeID(sg.From),
			ToNode:         nodeID(sg.To),
			TimeMinutes:    sg.TimeMinutes,
			CumulativeTime: sg.CumulativeTime,
		})
	}
	stubJSON(w, out)
}

func (s *stubServer) routeMap(w http.ResponseWriter, r *http.Request) {
	var req routeMapRequest
	if !stubDecode(w, r, &req) {
		return
	}

	doc, err := s.backend.RouteMap(r.Context(), domain.RouteRenderRequest{
		Route:     req.Route,
		Hour:      req.Hour,
		DayOfWeek: req.DayOfWeek,
		Style:     domain.MapStyle(req.MapType),
	})
	stubDocument(w, doc, err)
}

func toNodesResponse(nodes []domain.Location) nodesResponse {
	res := nodesResponse{Nodes: make([]nodeDTO, 0, len(nodes))}
	for _, n := range nodes {
		res.Nodes = append(res.Nodes, nodeDTO{ID: nodeID(n.ID), Lat: n.Lat, Lon: n.Lon, DistanceKm: n.DistanceKm})
	}
	return res
}

func stubDecode(w http.ResponseWriter, r *http.Request, v any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		stubError(w, http.StatusBadRequest, fmt.Errorf("invalid json body: %w", err))
		return false
	}
	return true
}

func stubJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("stub backend: encode failed", "err", err)
	}
}

func stubDocument(w http.ResponseWriter, doc domain.Document, err error) {
	if err != nil {
		stubError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", doc.ContentType)
	_, _ = w.Write(doc.Body)
}

func stubError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
