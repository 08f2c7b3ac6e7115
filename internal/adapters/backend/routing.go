package backend

import (
	"math"

	"route-selection-client/internal/domain"
)

const (
	earthRadiusKm = 6371.0
	// Average urban speed used by the stub to turn distance into travel time.
	stubSpeedKmh = 30.0
)

type plannedRoute struct {
	Nodes           []domain.Location
	Segments        []domain.Segment
	TotalMinutes    float64
	TotalDistanceKm float64
}

// planNearestNeighbor orders stops using a greedy nearest-neighbor walk
// from start.
//
// The walk minimizes immediate travel time at each step. It does not attempt
// global optimization; it exists so the stub backend returns plausible,
// deterministic routes.
func planNearestNeighbor(start domain.Location, stops []domain.Location) plannedRoute {
	remaining := make(map[string]domain.Location, len(stops))
	for _, s := range stops {
		if s.ID == start.ID {
			continue
		}
		remaining[s.ID] = s
	}

	route := plannedRoute{Nodes: []domain.Location{start}, Segments: []domain.Segment{}}
	current := start

	for len(remaining) > 0 {
		var best domain.Location
		bestKm := math.MaxFloat64

		// Select next stop by minimum distance (greedy step).
		for id, candidate := range remaining {
			km := haversineKm(current, candidate)
			// Tie-breaker keeps ordering deterministic when distances are equal.
			if km < bestKm || (km == bestKm && id < best.ID) {
				bestKm = km
				best = candidate
			}
		}

		minutes := bestKm / stubSpeedKmh * 60
		route.TotalDistanceKm += bestKm
		route.TotalMinutes += minutes
		route.Segments = append(route.Segments, domain.Segment{
			From:           current.ID,
			To:             best.ID,
			TimeMinutes:    minutes,
			CumulativeTime: route.TotalMinutes,
		})
		route.Nodes = append(route.Nodes, best)

		delete(remaining, best.ID)
		current = best
	}

	return route
}

func haversineKm(a, b domain.Location) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}
