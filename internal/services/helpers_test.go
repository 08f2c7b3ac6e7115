package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"route-selection-client/internal/adapters/artifacts"
	"route-selection-client/internal/adapters/backend"
	"route-selection-client/internal/domain"
	"route-selection-client/internal/ports"
)

type fakeHandle struct {
	id       string
	mu       sync.Mutex
	releases int
}

func (h *fakeHandle) ID() string  { return h.id }
func (h *fakeHandle) URL() string { return "mem://" + h.id }

func (h *fakeHandle) Release(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.releases++
	if h.releases > 1 {
		return fmt.Errorf("handle %s released %d times", h.id, h.releases)
	}
	return nil
}

func (h *fakeHandle) releaseCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.releases
}

// gatedRenderer blocks MapWithSelection until the gate for the request's
// depot is closed, so tests control completion order.
type gatedRenderer struct {
	ports.MapRenderer
	entered chan string
	gates   map[string]chan struct{}
}

func newGatedRenderer(base ports.MapRenderer, depots ...string) *gatedRenderer {
	g := &gatedRenderer{
		MapRenderer: base,
		entered:     make(chan string, len(depots)),
		gates:       map[string]chan struct{}{},
	}
	for _, d := range depots {
		g.gates[d] = make(chan struct{})
	}
	return g
}

func (g *gatedRenderer) MapWithSelection(ctx context.Context, req domain.RenderRequest) (domain.Document, error) {
	g.entered <- req.Depot
	<-g.gates[req.Depot]
	return domain.Document{Body: []byte("selection depot=" + req.Depot)}, nil
}

// countingSearch records backend calls and returns canned nodes.
type countingSearch struct {
	mu     sync.Mutex
	nodes  []domain.Location
	err    error
	search int
	nearby int
}

func (c *countingSearch) SearchNodes(ctx context.Context, term string, limit int) ([]domain.Location, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.search++
	return c.nodes, c.err
}

func (c *countingSearch) NearbyNodes(ctx context.Context, lat, lon, radius float64, limit int) ([]domain.Location, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nearby++
	return c.nodes, c.err
}

type memoryCache struct {
	mu   sync.Mutex
	locs map[string]domain.Location
}

func newMemoryCache() *memoryCache {
	return &memoryCache{locs: map[string]domain.Location{}}
}

func (c *memoryCache) GetMany(ctx context.Context, ids []string) (map[string]domain.Location, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := map[string]domain.Location{}
	for _, id := range ids {
		if loc, ok := c.locs[id]; ok {
			out[id] = loc
		}
	}
	return out, nil
}

func (c *memoryCache) PutMany(ctx context.Context, locations []domain.Location) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, loc := range locations {
		c.locs[loc.ID] = loc
	}
	return nil
}

type fixture struct {
	mock  *backend.MockBackend
	store *artifacts.MemoryStore
	cache *memoryCache
	orch  *Orchestrator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mock := backend.NewMockBackend(backend.DefaultNodes(), backend.DefaultSettings())
	store := artifacts.NewMemoryStore("http://localhost:8080")
	cache := newMemoryCache()

	orch := NewOrchestrator(Backend{
		Search:    mock,
		Renderer:  mock,
		Optimizer: mock,
		Settings:  mock,
		Store:     store,
		Cache:     cache,
	}, OrchestratorConfig{SearchLimit: 10, NearbyRadius: 0.001, NearbyLimit: 10}, nil)

	return &fixture{mock: mock, store: store, cache: cache, orch: orch}
}

func floatPtr(f float64) *float64 { return &f }
