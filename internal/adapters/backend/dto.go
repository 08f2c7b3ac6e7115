package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"route-selection-client/internal/domain"
)

// nodeID decodes an identifier that the backend may send as a JSON string
// or number.
type nodeID string

func (id *nodeID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return fmt.Errorf("node id is null")
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = nodeID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("node id: %w", err)
	}
	*id = nodeID(n.String())
	return nil
}

type nodeDTO struct {
	ID         nodeID   `json:"id"`
	Lat        float64  `json:"lat"`
	Lon        float64  `json:"lon"`
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

type nodesResponse struct {
	Nodes []nodeDTO `json:"nodes"`
}

func (r nodesResponse) locations() []domain.Location {
	out := make([]domain.Location, 0, len(r.Nodes))
	for _, n := range r.Nodes {
		out = append(out, domain.Location{
			ID:         string(n.ID),
			Lat:        n.Lat,
			Lon:        n.Lon,
			DistanceKm: n.DistanceKm,
		})
	}
	return out
}

type updateWithNodesRequest struct {
	Nodes []outNode `json:"nodes"`
}

type outNode struct {
	ID  string  `json:"id"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type updateRouteRequest struct {
	Stops     []string `json:"stops"`
	Depot     *string  `json:"depot"`
	Hour      *int     `json:"hour,omitempty"`
	DayOfWeek *int     `json:"day_of_week,omitempty"`
	MapType   string   `json:"map_type,omitempty"`
}

type optimizeRequest struct {
	Hour      int      `json:"hour"`
	DayOfWeek int      `json:"day_of_week"`
	DepotID   string   `json:"depot_id,omitempty"`
	StopIDs   []string `json:"stop_ids"`
}

type segmentDTO struct {
	FromNode       nodeID  `json:"from_node"`
	ToNode         nodeID  `json:"to_node"`
	TimeMinutes    float64 `json:"time_minutes"`
	CumulativeTime float64 `json:"cumulative_time"`
}

type optimizeResponse struct {
	Route            json.RawMessage `json:"route"`
	Nodes            []nodeID        `json:"nodes"`
	Segments         []segmentDTO    `json:"segments"`
	TotalTimeMinutes float64         `json:"total_time_minutes"`
	TotalDistanceKm  float64         `json:"total_distance_km"`
	Hour             int             `json:"hour"`
	IsWeekend        bool            `json:"is_weekend"`
}

func (r optimizeResponse) result() *domain.RouteResult {
	nodes := make([]string, 0, len(r.Nodes))
	for _, n := range r.Nodes {
		nodes = append(nodes, string(n))
	}

	segments := make([]domain.Segment, 0, len(r.Segments))
	for _, s := range r.Segments {
		segments = append(segments, domain.Segment{
			From:           string(s.FromNode),
			To:             string(s.ToNode),
			TimeMinutes:    s.TimeMinutes,
			CumulativeTime: s.CumulativeTime,
		})
	}

	route := r.Route
	if len(route) == 0 {
		route = json.RawMessage("null")
	}

	return &domain.RouteResult{
		Route:            []byte(route),
		Nodes:            nodes,
		Segments:         segments,
		TotalTimeMinutes: r.TotalTimeMinutes,
		TotalDistanceKm:  r.TotalDistanceKm,
		Hour:             r.Hour,
		IsWeekend:        r.IsWeekend,
	}
}

type routeMapRequest struct {
	Route     json.RawMessage `json:"route"`
	Hour      int             `json:"hour"`
	DayOfWeek int             `json:"day_of_week"`
	MapType   string          `json:"map_type"`
}

type timePeriodDTO struct {
	Hour      int    `json:"hour"`
	DayOfWeek int    `json:"day_of_week"`
	Label     string `json:"label"`
}

type mapTypeDTO struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type settingsResponse struct {
	TimePeriods []timePeriodDTO `json:"time_periods"`
	MapTypes    []mapTypeDTO    `json:"map_types"`
}

func (r settingsResponse) settings() domain.Settings {
	out := domain.Settings{
		TimePeriods: make([]domain.TimePeriod, 0, len(r.TimePeriods)),
		MapStyles:   make([]domain.MapStyleOption, 0, len(r.MapTypes)),
	}
	for _, p := range r.TimePeriods {
		label := p.Label
		if label == "" {
			label = strconv.Itoa(p.Hour) + ":00"
		}
		out.TimePeriods = append(out.TimePeriods, domain.TimePeriod{Hour: p.Hour, DayOfWeek: p.DayOfWeek, Label: label})
	}
	for _, m := range r.MapTypes {
		out.MapStyles = append(out.MapStyles, domain.MapStyleOption{Value: domain.MapStyle(m.Value), Label: m.Label})
	}
	return out
}
