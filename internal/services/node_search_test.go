package services

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"route-selection-client/internal/domain"
	"route-selection-client/internal/platform/apperr"
)

func ids(locs []domain.Location) []string {
	out := make([]string, 0, len(locs))
	for _, l := range locs {
		out = append(out, l.ID)
	}
	return out
}

func TestSearchByIdentifierSubstringMatch(t *testing.T) {
	be := &countingSearch{nodes: []domain.Location{
		{ID: "142", Lat: 1, Lon: 1},
		{ID: "42", Lat: 2, Lon: 2},
		{ID: "423", Lat: 3, Lon: 3},
		{ID: "17", Lat: 4, Lon: 4},
	}}
	cache := newMemoryCache()
	s := NewNodeSearch(be, cache, NodeSearchConfig{}, nil)

	set, err := s.ByIdentifier(context.Background(), domain.ModeIdentifier, "42", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"142", "42", "423"}
	if got := ids(set.Candidates); !reflect.DeepEqual(got, want) {
		t.Fatalf("ids = %v, want %v", got, want)
	}

	cached, _ := cache.GetMany(context.Background(), want)
	if len(cached) != 3 {
		t.Fatalf("cached = %d, want 3", len(cached))
	}
}

func TestSearchByIdentifierEmptyTerm(t *testing.T) {
	be := &countingSearch{nodes: []domain.Location{{ID: "1", Lat: 1, Lon: 1}}}
	s := NewNodeSearch(be, nil, NodeSearchConfig{}, nil)

	_, err := s.ByIdentifier(context.Background(), domain.ModeIdentifier, "   ", 10)
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
	if be.search != 0 {
		t.Fatalf("backend called %d times, want 0", be.search)
	}

	// Outside identifier mode an empty term lists whatever the backend returns.
	set, err := s.ByIdentifier(context.Background(), domain.ModeMap, "", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set.Len() != 1 {
		t.Fatalf("len = %d, want 1", set.Len())
	}
}

func TestSearchEmptyResultIsDistinctFromNetworkError(t *testing.T) {
	ctx := context.Background()

	empty := NewNodeSearch(&countingSearch{nodes: []domain.Location{{ID: "7", Lat: 1, Lon: 1}}}, nil, NodeSearchConfig{}, nil)
	set, err := empty.ByIdentifier(ctx, domain.ModeIdentifier, "42", 10)
	if !apperr.IsKind(err, apperr.KindEmptyResult) {
		t.Fatalf("err = %v, want empty result", err)
	}
	if set.Len() != 0 {
		t.Fatalf("len = %d, want 0", set.Len())
	}

	failing := NewNodeSearch(&countingSearch{err: errors.New("connection refused")}, nil, NodeSearchConfig{}, nil)
	_, err = failing.ByIdentifier(ctx, domain.ModeIdentifier, "42", 10)
	if !apperr.IsKind(err, apperr.KindNetwork) {
		t.Fatalf("err = %v, want network", err)
	}
}

func TestSearchNearbyInvalidCoordinates(t *testing.T) {
	tests := []struct {
		name string
		lat  *float64
		lon  *float64
	}{
		{"lat missing", nil, floatPtr(-74)},
		{"lon missing", floatPtr(40), nil},
		{"lat NaN", floatPtr(math.NaN()), floatPtr(-74)},
		{"lon infinite", floatPtr(40), floatPtr(math.Inf(1))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be := &countingSearch{}
			s := NewNodeSearch(be, nil, NodeSearchConfig{}, nil)

			_, err := s.Nearby(context.Background(), NearbyQuery{Lat: tt.lat, Lon: tt.lon})
			if !apperr.IsKind(err, apperr.KindValidation) {
				t.Fatalf("err = %v, want validation", err)
			}
			if be.nearby != 0 {
				t.Fatalf("backend called %d times, want 0", be.nearby)
			}
		})
	}
}

func TestSearchNearbyNoCandidates(t *testing.T) {
	be := &countingSearch{}
	s := NewNodeSearch(be, nil, NodeSearchConfig{}, nil)

	_, err := s.Nearby(context.Background(), s.DefaultNearby(40, -74))
	if !apperr.IsKind(err, apperr.KindEmptyResult) {
		t.Fatalf("err = %v, want empty result", err)
	}
	if be.nearby != 1 {
		t.Fatalf("backend calls = %d, want 1", be.nearby)
	}
}
