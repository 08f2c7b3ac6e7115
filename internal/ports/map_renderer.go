package ports

import (
	"context"
	"route-selection-client/internal/domain"
)

// Contract for requesting server-rendered map documents.
type MapRenderer interface {
	// Return the default map with no selection overlay.
	InitialMap(ctx context.Context) (domain.Document, error)
	// Return a map highlighting a candidate set.
	MapWithNodes(ctx context.Context, nodes []domain.Location) (domain.Document, error)
	// Return a map overlaying the selected depot and stops.
	MapWithSelection(ctx context.Context, req domain.RenderRequest) (domain.Document, error)
	// Return a map of an optimized route.
	RouteMap(ctx context.Context, req domain.RouteRenderRequest) (domain.Document, error)
}
