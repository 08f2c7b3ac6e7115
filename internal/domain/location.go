package domain

import (
	"math"
	"strings"
)

// Location is a searchable point returned by the backend. It is never
// mutated after being received; later references use only the ID.
type Location struct {
	ID  string
	Lat float64
	Lon float64
	// DistanceKm is set by proximity searches only.
	DistanceKm *float64
}

// Valid reports whether the location carries an id and finite coordinates.
func (l Location) Valid() bool {
	return strings.TrimSpace(l.ID) != "" && Finite(l.Lat) && Finite(l.Lon)
}

// SearchResultSet is the ordered candidate list produced by the most recent
// search. Each new search or map click replaces it wholesale.
type SearchResultSet struct {
	Candidates []Location
}

// Find returns the candidate with the given id.
func (r SearchResultSet) Find(id string) (Location, bool) {
	for _, c := range r.Candidates {
		if c.ID == id {
			return c, true
		}
	}
	return Location{}, false
}

func (r SearchResultSet) Len() int { return len(r.Candidates) }

// FilterByID keeps the candidates whose id contains term, preserving order.
func FilterByID(candidates []Location, term string) []Location {
	out := make([]Location, 0, len(candidates))
	for _, c := range candidates {
		if strings.Contains(c.ID, term) {
			out = append(out, c)
		}
	}
	return out
}

// Finite reports whether f is neither NaN nor infinite.
func Finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
