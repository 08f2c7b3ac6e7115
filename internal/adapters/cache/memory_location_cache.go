package cache

import (
	"context"
	"fmt"
	"sync"

	"route-selection-client/internal/domain"
	"route-selection-client/internal/ports"
)

// MemoryLocationCache keeps locations for the life of the process.
type MemoryLocationCache struct {
	mu   sync.RWMutex
	locs map[string]domain.Location
}

func NewMemoryLocationCache() *MemoryLocationCache {
	return &MemoryLocationCache{locs: make(map[string]domain.Location)}
}

func (m *MemoryLocationCache) GetMany(ctx context.Context, ids []string) (map[string]domain.Location, error) {
	uniq := uniqueIDs(ids)

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]domain.Location, len(uniq))
	for _, id := range uniq {
		if loc, ok := m.locs[id]; ok {
			out[id] = loc
		}
	}
	return out, nil
}

func (m *MemoryLocationCache) PutMany(ctx context.Context, locations []domain.Location) error {
	for _, loc := range locations {
		if !loc.Valid() {
			return fmt.Errorf("insert location cache: invalid location %q", loc.ID)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, loc := range locations {
		// Distance is relative to one query and is not cached.
		m.locs[loc.ID] = domain.Location{ID: loc.ID, Lat: loc.Lat, Lon: loc.Lon}
	}
	return nil
}

var _ ports.LocationCache = (*MemoryLocationCache)(nil)
