package backend

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"route-selection-client/internal/domain"
)

// NodeSeed is one entry of a node seed file.
type NodeSeed struct {
	ID  nodeID  `json:"id"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// LoadNodes reads a JSON array of {id, lat, lon} nodes.
func LoadNodes(jsonPath string) ([]domain.Location, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("load nodes: read %q: %w", jsonPath, err)
	}

	var data []NodeSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return nil, fmt.Errorf("load nodes: parse json: %w", err)
	}

	out := make([]domain.Location, 0, len(data))
	seen := make(map[string]struct{}, len(data))
	for i, item := range data {
		loc := domain.Location{ID: strings.TrimSpace(string(item.ID)), Lat: item.Lat, Lon: item.Lon}
		if !loc.Valid() {
			return nil, fmt.Errorf("load nodes: invalid node at index %d", i+1)
		}
		if _, ok := seen[loc.ID]; ok {
			return nil, fmt.Errorf("load nodes: duplicate node id %q at index %d", loc.ID, i+1)
		}
		seen[loc.ID] = struct{}{}
		out = append(out, loc)
	}

	return out, nil
}

// DefaultNodes is a small road-network sample around lower Manhattan, used
// when no seed file is configured.
func DefaultNodes() []domain.Location {
	return []domain.Location{
		{ID: "42", Lat: 40.71280, Lon: -74.00600},
		{ID: "142", Lat: 40.71350, Lon: -74.00520},
		{ID: "423", Lat: 40.71190, Lon: -74.00710},
		{ID: "1001", Lat: 40.71420, Lon: -74.00890},
		{ID: "1002", Lat: 40.71050, Lon: -74.00430},
		{ID: "1003", Lat: 40.71610, Lon: -74.00380},
		{ID: "2040", Lat: 40.70890, Lon: -74.01120},
		{ID: "2041", Lat: 40.71770, Lon: -74.01030},
	}
}

// DefaultSettings mirrors the periods and styles the routing backend ships with.
func DefaultSettings() domain.Settings {
	return domain.Settings{
		TimePeriods: []domain.TimePeriod{
			{Hour: 8, DayOfWeek: 1, Label: "Weekday Morning Rush"},
			{Hour: 13, DayOfWeek: 2, Label: "Weekday Midday"},
			{Hour: 17, DayOfWeek: 3, Label: "Weekday Evening Rush"},
			{Hour: 22, DayOfWeek: 4, Label: "Weekday Night"},
			{Hour: 12, DayOfWeek: 6, Label: "Weekend"},
		},
		MapStyles: []domain.MapStyleOption{
			{Value: "enhanced", Label: "Enhanced"},
			{Value: "basic", Label: "Basic"},
			{Value: "traffic", Label: "Traffic Heatmap"},
		},
	}
}
