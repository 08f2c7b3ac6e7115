package ports

import (
	"context"
	"route-selection-client/internal/domain"
)

// LocationCache remembers locations seen in search results so committed ids
// can later be resolved to coordinates.
type LocationCache interface {
	// Fetch cached locations for the given ids. Missing ids are absent from the map.
	GetMany(ctx context.Context, ids []string) (map[string]domain.Location, error)
	// Store locations keyed by id.
	PutMany(ctx context.Context, locations []domain.Location) error
}
