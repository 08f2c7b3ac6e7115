package ports

import (
	"context"
	"route-selection-client/internal/domain"
)

// Port: the backend's two location search capabilities.
type NodeSearchBackend interface {
	// Return nodes matching an identifier search term.
	SearchNodes(ctx context.Context, term string, limit int) ([]domain.Location, error)
	// Return nodes within radius of a point, nearest first.
	NearbyNodes(ctx context.Context, lat, lon, radius float64, limit int) ([]domain.Location, error)
}
