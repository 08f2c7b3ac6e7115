package backend

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"route-selection-client/internal/domain"
	"route-selection-client/internal/platform/obs"
)

// SearchNodes queries /network/nodes with a search term.
func (c *Client) SearchNodes(ctx context.Context, term string, limit int) (_ []domain.Location, err error) {
	defer obs.Time(ctx, c.observer, "backend.SearchNodes")(&err)

	q := url.Values{}
	q.Set("search", term)
	q.Set("limit", strconv.Itoa(limit))

	var resp nodesResponse
	if err := c.getJSON(ctx, c.endpoint("/network/nodes", q), &resp); err != nil {
		return nil, fmt.Errorf("search nodes %q: %w", term, err)
	}
	return resp.locations(), nil
}

// NearbyNodes queries /network/nearby-nodes around a point.
func (c *Client) NearbyNodes(
	ctx context.Context,
	lat, lon, radius float64,
	limit int,
) (_ []domain.Location, err error) {
	defer obs.Time(ctx, c.observer, "backend.NearbyNodes")(&err)

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("radius", strconv.FormatFloat(radius, 'f', -1, 64))
	q.Set("limit", strconv.Itoa(limit))

	var resp nodesResponse
	if err := c.getJSON(ctx, c.endpoint("/network/nearby-nodes", q), &resp); err != nil {
		return nil, fmt.Errorf("nearby nodes (%g, %g): %w", lat, lon, err)
	}
	return resp.locations(), nil
}

// InitialMap fetches the default map document.
func (c *Client) InitialMap(ctx context.Context) (_ domain.Document, err error) {
	defer obs.Time(ctx, c.observer, "backend.InitialMap")(&err)

	doc, err := c.fetchDocument(ctx, c.endpoint("/map/initial", nil), nil)
	if err != nil {
		return domain.Document{}, fmt.Errorf("initial map: %w", err)
	}
	return doc, nil
}

// MapWithNodes renders a map highlighting the given candidates.
func (c *Client) MapWithNodes(ctx context.Context, nodes []domain.Location) (_ domain.Document, err error) {
	defer obs.Time(ctx, c.observer, "backend.MapWithNodes")(&err)

	body := updateWithNodesRequest{Nodes: make([]outNode, 0, len(nodes))}
	for _, n := range nodes {
		body.Nodes = append(body.Nodes, outNode{ID: n.ID, Lat: n.Lat, Lon: n.Lon})
	}

	doc, err := c.fetchDocument(ctx, c.endpoint("/map/update-with-nodes", nil), body)
	if err != nil {
		return domain.Document{}, fmt.Errorf("map with %d nodes: %w", len(nodes), err)
	}
	return doc, nil
}

// MapWithSelection renders the selected depot and stops.
func (c *Client) MapWithSelection(ctx context.Context, req domain.RenderRequest) (_ domain.Document, err error) {
	defer obs.Time(ctx, c.observer, "backend.MapWithSelection")(&err)

	body := updateRouteRequest{
		Stops:   req.Stops,
		MapType: string(req.Style),
	}
	if body.Stops == nil {
		body.Stops = []string{}
	}
	if req.Depot != "" {
		depot := req.Depot
		body.Depot = &depot
	}
	if req.Period != nil {
		hour, day := req.Period.Hour, req.Period.DayOfWeek
		body.Hour = &hour
		body.DayOfWeek = &day
	}

	doc, err := c.fetchDocument(ctx, c.endpoint("/map/update-route", nil), body)
	if err != nil {
		return domain.Document{}, fmt.Errorf("map with selection: %w", err)
	}
	return doc, nil
}

// Optimize calls /route/optimize.
func (c *Client) Optimize(ctx context.Context, req domain.OptimizeRequest) (_ *domain.RouteResult, err error) {
	defer obs.Time(ctx, c.observer, "backend.Optimize")(&err)

	body := optimizeRequest{
		Hour:      req.Hour,
		DayOfWeek: req.DayOfWeek,
		DepotID:   req.DepotID,
		StopIDs:   req.StopIDs,
	}
	if body.StopIDs == nil {
		body.StopIDs = []string{}
	}

	var resp optimizeResponse
	if err := c.postJSON(ctx, c.endpoint("/route/optimize", nil), body, &resp); err != nil {
		return nil, fmt.Errorf("optimize route: %w", err)
	}
	if len(resp.Nodes) == 0 {
		return nil, errors.New("optimize route: backend returned an empty route")
	}
	return resp.result(), nil
}

// RouteMap renders an optimized route.
func (c *Client) RouteMap(ctx context.Context, req domain.RouteRenderRequest) (_ domain.Document, err error) {
	defer obs.Time(ctx, c.observer, "backend.RouteMap")(&err)

	route := req.Route
	if len(route) == 0 {
		route = []byte("null")
	}

	body := routeMapRequest{
		Route:     route,
		Hour:      req.Hour,
		DayOfWeek: req.DayOfWeek,
		MapType:   string(req.Style),
	}

	doc, err := c.fetchDocument(ctx, c.endpoint("/map/route", nil), body)
	if err != nil {
		return domain.Document{}, fmt.Errorf("route map: %w", err)
	}
	return doc, nil
}

// Settings fetches the time periods and map styles the backend offers.
func (c *Client) Settings(ctx context.Context) (_ domain.Settings, err error) {
	defer obs.Time(ctx, c.observer, "backend.Settings")(&err)

	var resp settingsResponse
	if err := c.getJSON(ctx, c.endpoint("/settings", nil), &resp); err != nil {
		return domain.Settings{}, fmt.Errorf("settings: %w", err)
	}
	return resp.settings(), nil
}
