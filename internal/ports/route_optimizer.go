package ports

import (
	"context"
	"route-selection-client/internal/domain"
)

// Contract for the backend's route optimization capability.
type RouteOptimizer interface {
	// Return the optimized route. An empty StopIDs asks the backend to pick stops.
	Optimize(ctx context.Context, req domain.OptimizeRequest) (*domain.RouteResult, error)
}

// Optional capability exposing the time periods and map styles the backend offers.
type SettingsProvider interface {
	Settings(ctx context.Context) (domain.Settings, error)
}
