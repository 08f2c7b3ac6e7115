package backend

import (
	"context"
	"errors"
	"fmt"
	"html"
	"slices"
	"sort"
	"sync"

	"route-selection-client/internal/domain"
)

// Operation names used to inject failures and count calls on MockBackend.
const (
	OpSearchNodes      = "search_nodes"
	OpNearbyNodes      = "nearby_nodes"
	OpInitialMap       = "initial_map"
	OpMapWithNodes     = "map_with_nodes"
	OpMapWithSelection = "map_with_selection"
	OpOptimize         = "optimize"
	OpRouteMap         = "route_map"
	OpSettings         = "settings"
)

// randomStopCount is how many stops the mock picks when asked to synthesize.
const randomStopCount = 3

// MockBackend is an in-memory backend over a fixed node set. It serves tests
// directly and backs the stub HTTP handler for local runs.
//
// SearchNodes deliberately ignores the term and returns the first nodes, like
// a backend that over-returns.
type MockBackend struct {
	mu       sync.Mutex
	nodes    []domain.Location
	settings domain.Settings
	failures map[string]error
	calls    map[string]int
	docSeq   int
}

func NewMockBackend(nodes []domain.Location, settings domain.Settings) *MockBackend {
	return &MockBackend{
		nodes:    slices.Clone(nodes),
		settings: settings,
		failures: map[string]error{},
		calls:    map[string]int{},
	}
}

// Fail makes every later call to op return err. A nil err clears the failure.
func (m *MockBackend) Fail(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, op)
		return
	}
	m.failures[op] = err
}

// Calls returns how many times op was invoked.
func (m *MockBackend) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *MockBackend) enter(op string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[op]++
	return m.failures[op]
}

func (m *MockBackend) node(id string) (domain.Location, bool) {
	for _, n := range m.nodes {
		if n.ID == id {
			return n, true
		}
	}
	return domain.Location{}, false
}

func (m *MockBackend) SearchNodes(ctx context.Context, term string, limit int) ([]domain.Location, error) {
	if err := m.enter(OpSearchNodes); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > len(m.nodes) {
		limit = len(m.nodes)
	}
	return slices.Clone(m.nodes[:limit]), nil
}

func (m *MockBackend) NearbyNodes(ctx context.Context, lat, lon, radius float64, limit int) ([]domain.Location, error) {
	if err := m.enter(OpNearbyNodes); err != nil {
		return nil, err
	}

	origin := domain.Location{Lat: lat, Lon: lon}
	// radius is in degrees, as the backend expects.
	radiusKm := radius * 111.32

	out := make([]domain.Location, 0, max(limit, 0))
	for _, n := range m.nodes {
		km := haversineKm(origin, n)
		if km > radiusKm {
			continue
		}
		d := km
		n.DistanceKm = &d
		out = append(out, n)
	}

	sort.SliceStable(out, func(i, j int) bool { return *out[i].DistanceKm < *out[j].DistanceKm })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockBackend) InitialMap(ctx context.Context) (domain.Document, error) {
	if err := m.enter(OpInitialMap); err != nil {
		return domain.Document{}, err
	}
	return m.document("initial", fmt.Sprintf("%d nodes", len(m.nodes))), nil
}

func (m *MockBackend) MapWithNodes(ctx context.Context, nodes []domain.Location) (domain.Document, error) {
	if err := m.enter(OpMapWithNodes); err != nil {
		return domain.Document{}, err
	}
	return m.document("candidates", fmt.Sprintf("%d candidates", len(nodes))), nil
}

func (m *MockBackend) MapWithSelection(ctx context.Context, req domain.RenderRequest) (domain.Document, error) {
	if err := m.enter(OpMapWithSelection); err != nil {
		return domain.Document{}, err
	}
	return m.document("selection", fmt.Sprintf("depot=%q stops=%v", req.Depot, req.Stops)), nil
}

func (m *MockBackend) Optimize(ctx context.Context, req domain.OptimizeRequest) (*domain.RouteResult, error) {
	if err := m.enter(OpOptimize); err != nil {
		return nil, err
	}
	if len(m.nodes) == 0 {
		return nil, errors.New("no nodes loaded")
	}

	stops := make([]domain.Location, 0, len(req.StopIDs))
	if len(req.StopIDs) == 0 {
		// Synthesize stops from the node set, skipping the depot.
		for _, n := range m.nodes {
			if len(stops) == randomStopCount {
				break
			}
			if n.ID != req.DepotID {
				stops = append(stops, n)
			}
		}
	}
	for _, id := range req.StopIDs {
		n, ok := m.node(id)
		if !ok {
			return nil, fmt.Errorf("unknown stop id %q", id)
		}
		stops = append(stops, n)
	}

	start := m.nodes[0]
	if req.DepotID != "" {
		n, ok := m.node(req.DepotID)
		if !ok {
			return nil, fmt.Errorf("unknown depot id %q", req.DepotID)
		}
		start = n
	} else if len(stops) > 0 {
		start = stops[0]
	}

	planned := planNearestNeighbor(start, stops)

	ids := make([]string, 0, len(planned.Nodes))
	for _, n := range planned.Nodes {
		ids = append(ids, n.ID)
	}
	route, err := marshalRoute(ids)
	if err != nil {
		return nil, err
	}

	return &domain.RouteResult{
		Route:            route,
		Nodes:            ids,
		Segments:         planned.Segments,
		TotalTimeMinutes: planned.TotalMinutes,
		TotalDistanceKm:  planned.TotalDistanceKm,
		Hour:             req.Hour,
		IsWeekend:        req.DayOfWeek >= 5,
	}, nil
}

func (m *MockBackend) RouteMap(ctx context.Context, req domain.RouteRenderRequest) (domain.Document, error) {
	if err := m.enter(OpRouteMap); err != nil {
		return domain.Document{}, err
	}
	return m.document("route", fmt.Sprintf("style=%s route=%s", req.Style, req.Route)), nil
}

func (m *MockBackend) Settings(ctx context.Context) (domain.Settings, error) {
	if err := m.enter(OpSettings); err != nil {
		return domain.Settings{}, err
	}
	return m.settings, nil
}

func (m *MockBackend) document(kind, detail string) domain.Document {
	m.mu.Lock()
	m.docSeq++
	seq := m.docSeq
	m.mu.Unlock()

	body := fmt.Sprintf(
		"<!DOCTYPE html><html><head><title>%s map %d</title></head><body data-kind=%q data-seq=\"%d\">%s</body></html>",
		kind, seq, kind, seq, html.EscapeString(detail),
	)
	return domain.Document{ContentType: domain.DefaultDocumentContentType, Body: []byte(body)}
}
