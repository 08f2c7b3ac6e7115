package services

import (
	"context"
	"strconv"
	"strings"

	"route-selection-client/internal/domain"
	"route-selection-client/internal/platform/apperr"
	"route-selection-client/internal/platform/obs"
	"route-selection-client/internal/ports"
)

// NearbyQuery is a proximity search. Lat and Lon are pointers so a missing
// coordinate can be told apart from zero.
type NearbyQuery struct {
	Lat    *float64
	Lon    *float64
	Radius float64
	Limit  int
}

type NodeSearchConfig struct {
	SearchLimit  int
	NearbyRadius float64
	NearbyLimit  int
}

// NodeSearch unifies identifier and proximity search behind one
// candidate-producing contract. A search that succeeds with no candidates
// returns an EmptyResult error alongside the empty set.
type NodeSearch struct {
	backend  ports.NodeSearchBackend
	cache    ports.LocationCache
	cfg      NodeSearchConfig
	observer obs.Observer
}

// NewNodeSearch builds the adapter. cache may be nil.
func NewNodeSearch(backend ports.NodeSearchBackend, cache ports.LocationCache, cfg NodeSearchConfig, o obs.Observer) *NodeSearch {
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = 10
	}
	if cfg.NearbyRadius <= 0 {
		cfg.NearbyRadius = 0.001
	}
	if cfg.NearbyLimit <= 0 {
		cfg.NearbyLimit = 10
	}
	return &NodeSearch{backend: backend, cache: cache, cfg: cfg, observer: obs.OrNop(o)}
}

// ByIdentifier searches by id. An empty term is rejected in identifier mode.
// Results are re-filtered to ids containing the term.
func (s *NodeSearch) ByIdentifier(ctx context.Context, mode domain.Mode, term string, limit int) (_ domain.SearchResultSet, err error) {
	defer obs.Time(ctx, s.observer, "search.ByIdentifier")(&err)

	term = strings.TrimSpace(term)
	if term == "" && mode == domain.ModeIdentifier {
		return domain.SearchResultSet{}, apperr.Validation("please enter a search term").WithOp("search")
	}
	if limit <= 0 {
		limit = s.cfg.SearchLimit
	}

	nodes, err := s.backend.SearchNodes(ctx, term, limit)
	if err != nil {
		return domain.SearchResultSet{}, apperr.Network("failed to search for nodes", err).WithOp("search")
	}

	return s.publish(ctx, domain.FilterByID(nodes, term), "no nodes match "+term)
}

// Nearby searches around a point. Missing or non-finite coordinates fail
// without calling the backend.
func (s *NodeSearch) Nearby(ctx context.Context, q NearbyQuery) (_ domain.SearchResultSet, err error) {
	defer obs.Time(ctx, s.observer, "search.Nearby")(&err)

	if q.Lat == nil || q.Lon == nil || !domain.Finite(*q.Lat) || !domain.Finite(*q.Lon) {
		s.observer.Warn("invalid coordinates", "lat", fmtCoord(q.Lat), "lon", fmtCoord(q.Lon))
		return domain.SearchResultSet{}, apperr.Validation("invalid coordinates").WithOp("nearby search")
	}

	radius := q.Radius
	if radius <= 0 || !domain.Finite(radius) {
		radius = s.cfg.NearbyRadius
	}
	limit := q.Limit
	if limit <= 0 {
		limit = s.cfg.NearbyLimit
	}

	nodes, err := s.backend.NearbyNodes(ctx, *q.Lat, *q.Lon, radius, limit)
	if err != nil {
		return domain.SearchResultSet{}, apperr.Network("failed to search for nearby nodes", err).WithOp("nearby search")
	}

	return s.publish(ctx, nodes, "no nodes found near this location")
}

// DefaultNearby is the query used for map clicks.
func (s *NodeSearch) DefaultNearby(lat, lon float64) NearbyQuery {
	return NearbyQuery{Lat: &lat, Lon: &lon, Radius: s.cfg.NearbyRadius, Limit: s.cfg.NearbyLimit}
}

func fmtCoord(f *float64) string {
	if f == nil {
		return "missing"
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func (s *NodeSearch) publish(ctx context.Context, nodes []domain.Location, emptyMsg string) (domain.SearchResultSet, error) {
	valid := make([]domain.Location, 0, len(nodes))
	for _, n := range nodes {
		if n.Valid() {
			valid = append(valid, n)
		}
	}

	set := domain.SearchResultSet{Candidates: valid}
	if len(valid) == 0 {
		return set, apperr.EmptyResult(emptyMsg)
	}

	if s.cache != nil {
		if err := s.cache.PutMany(ctx, valid); err != nil {
			s.observer.Warn("location cache write failed", "count", len(valid), "err", err)
		}
	}
	return set, nil
}
