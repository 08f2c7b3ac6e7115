package services

import (
	"context"
	"strings"
	"sync"

	"route-selection-client/internal/domain"
	"route-selection-client/internal/platform/apperr"
	"route-selection-client/internal/platform/obs"
	"route-selection-client/internal/ports"
)

type PipelineState string

const (
	PipelineIdle       PipelineState = "idle"
	PipelineValidating PipelineState = "validating"
	PipelineOptimizing PipelineState = "optimizing"
	PipelineRendering  PipelineState = "rendering"
	PipelineReady      PipelineState = "ready"
	PipelineFailed     PipelineState = "failed"
)

// PipelineSnapshot is a consistent view of the route pipeline.
type PipelineSnapshot struct {
	State      PipelineState
	Generation uint64
	Result     *domain.RouteResult
	// Artifact is the live route map, which may belong to an earlier
	// generation when the latest render failed.
	Artifact ports.ArtifactHandle
	Err      error
}

type GenerateRequest struct {
	Selection domain.Selection
	Period    *domain.TimePeriod
	Style     domain.MapStyle
}

// RoutePipeline runs optimize then render, never reordered or in parallel.
// Each Generate call starts a new generation; a generation that has been
// superseded stops updating the shared state and its render is discarded.
type RoutePipeline struct {
	optimizer ports.RouteOptimizer
	renderer  ports.MapRenderer
	slot      *displaySlot
	observer  obs.Observer

	mu     sync.Mutex
	state  PipelineState
	gen    uint64
	result *domain.RouteResult
	err    error
}

func NewRoutePipeline(
	optimizer ports.RouteOptimizer,
	renderer ports.MapRenderer,
	store ports.ArtifactStore,
	lifecycle *ArtifactLifecycle,
	o obs.Observer,
) *RoutePipeline {
	return &RoutePipeline{
		optimizer: optimizer,
		renderer:  renderer,
		slot:      newDisplaySlot(store, lifecycle),
		observer:  obs.OrNop(o),
		state:     PipelineIdle,
	}
}

func (p *RoutePipeline) Snapshot() PipelineSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PipelineSnapshot{
		State:      p.state,
		Generation: p.gen,
		Result:     p.result,
		Artifact:   p.slot.live(),
		Err:        p.err,
	}
}

// Generate runs a full generation and returns the resulting snapshot.
// A missing time period fails validation without issuing any request. A
// render failure after a successful optimize yields a PartialPipeline error
// with the RouteResult still available.
func (p *RoutePipeline) Generate(ctx context.Context, req GenerateRequest) (_ PipelineSnapshot, err error) {
	defer obs.Time(ctx, p.observer, "route.Generate")(&err)

	gen := p.begin()

	if req.Period == nil {
		return p.fail(gen, apperr.Validation("please select a time period").WithOp("generate route"))
	}
	period := *req.Period

	style := req.Style
	if style == "" {
		style = domain.DefaultMapStyle
	}

	if !p.advance(gen, PipelineOptimizing, nil) {
		return p.superseded(gen)
	}

	result, err := p.optimizer.Optimize(ctx, domain.OptimizeRequest{
		Hour:      period.Hour,
		DayOfWeek: period.DayOfWeek,
		DepotID:   strings.TrimSpace(req.Selection.Depot),
		StopIDs:   req.Selection.OptimizeStops(),
	})
	if err != nil {
		return p.fail(gen, apperr.Network("failed to optimize route", err).WithOp("generate route"))
	}

	if !p.advance(gen, PipelineRendering, result) {
		return p.superseded(gen)
	}

	seq := p.slot.issue()
	doc, err := p.renderer.RouteMap(ctx, domain.RouteRenderRequest{
		Route:     result.Route,
		Hour:      period.Hour,
		DayOfWeek: period.DayOfWeek,
		Style:     style,
	})
	if err != nil {
		return p.fail(gen, apperr.PartialPipeline("failed to generate route map", err).WithOp("generate route"))
	}

	if _, installed, err := p.slot.install(ctx, seq, doc, p.current(gen)); err != nil {
		return p.fail(gen, apperr.PartialPipeline("failed to store route map", err).WithOp("generate route"))
	} else if !installed {
		return p.superseded(gen)
	}

	if !p.advance(gen, PipelineReady, result) {
		return p.superseded(gen)
	}
	return p.Snapshot(), nil
}

func (p *RoutePipeline) begin() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gen++
	p.state = PipelineValidating
	p.result = nil
	p.err = nil
	return p.gen
}

// advance moves to state if gen is still current. A nil result keeps the
// current one.
func (p *RoutePipeline) advance(gen uint64, state PipelineState, result *domain.RouteResult) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen {
		return false
	}
	p.state = state
	if result != nil {
		p.result = result
	}
	return true
}

// current reports whether gen is still the latest generation.
func (p *RoutePipeline) current(gen uint64) func() bool {
	return func() bool {
		p.mu.Lock()
		defer p.mu.Unlock()
		return gen == p.gen
	}
}

func (p *RoutePipeline) fail(gen uint64, err error) (PipelineSnapshot, error) {
	p.mu.Lock()
	if gen == p.gen {
		p.state = PipelineFailed
		p.err = err
	}
	p.mu.Unlock()

	p.observer.Warn("route generation failed", "generation", gen, "kind", apperr.KindOf(err).String(), "err", err)
	return p.Snapshot(), err
}

func (p *RoutePipeline) superseded(gen uint64) (PipelineSnapshot, error) {
	p.observer.Debug("route generation superseded", "generation", gen)
	return p.Snapshot(), nil
}
