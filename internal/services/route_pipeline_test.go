package services

import (
	"context"
	"errors"
	"testing"

	"route-selection-client/internal/adapters/artifacts"
	"route-selection-client/internal/adapters/backend"
	"route-selection-client/internal/domain"
	"route-selection-client/internal/platform/apperr"
	"route-selection-client/internal/ports"
)

func newPipeline() (*RoutePipeline, *backend.MockBackend, *artifacts.MemoryStore) {
	mock := backend.NewMockBackend(backend.DefaultNodes(), backend.DefaultSettings())
	store := artifacts.NewMemoryStore("")
	p := NewRoutePipeline(mock, mock, store, NewArtifactLifecycle("route", nil), nil)
	return p, mock, store
}

var morning = &domain.TimePeriod{Hour: 8, DayOfWeek: 1, Label: "Weekday Morning Rush"}

func TestRoutePipelineReady(t *testing.T) {
	p, mock, _ := newPipeline()

	snap, err := p.Generate(context.Background(), GenerateRequest{
		Selection: domain.Selection{Depot: "42", Stops: []string{"142", "1001"}, Mode: domain.ModeIdentifier},
		Period:    morning,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snap.State != PipelineReady {
		t.Fatalf("state = %s, want ready", snap.State)
	}
	if snap.Result == nil || snap.Artifact == nil {
		t.Fatalf("ready snapshot must expose result and artifact")
	}
	if snap.Result.Nodes[0] != "42" {
		t.Fatalf("first node = %q, want depot", snap.Result.Nodes[0])
	}
	if mock.Calls(backend.OpOptimize) != 1 || mock.Calls(backend.OpRouteMap) != 1 {
		t.Fatalf("calls optimize=%d render=%d, want 1/1", mock.Calls(backend.OpOptimize), mock.Calls(backend.OpRouteMap))
	}
}

func TestRoutePipelineMissingPeriod(t *testing.T) {
	p, mock, _ := newPipeline()

	snap, err := p.Generate(context.Background(), GenerateRequest{
		Selection: domain.Selection{Stops: []string{"42"}},
	})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
	if snap.State != PipelineFailed {
		t.Fatalf("state = %s, want failed", snap.State)
	}
	if mock.Calls(backend.OpOptimize) != 0 {
		t.Fatalf("optimize should not be called")
	}
}

func TestRoutePipelineOptimizeFailureSkipsRender(t *testing.T) {
	p, mock, _ := newPipeline()
	mock.Fail(backend.OpOptimize, errors.New("status 500"))

	snap, err := p.Generate(context.Background(), GenerateRequest{
		Selection: domain.Selection{Stops: []string{"42"}},
		Period:    morning,
	})
	if !apperr.IsKind(err, apperr.KindNetwork) {
		t.Fatalf("err = %v, want network", err)
	}
	if snap.State != PipelineFailed || snap.Result != nil {
		t.Fatalf("snapshot = %+v, want failed without result", snap)
	}
	if mock.Calls(backend.OpRouteMap) != 0 {
		t.Fatalf("render should not be called after optimize failure")
	}
}

func TestRoutePipelineRenderFailureKeepsResult(t *testing.T) {
	ctx := context.Background()
	p, mock, store := newPipeline()
	req := GenerateRequest{
		Selection: domain.Selection{Depot: "42", Stops: []string{"142"}},
		Period:    morning,
		Style:     "traffic",
	}

	first, err := p.Generate(ctx, req)
	if err != nil {
		t.Fatalf("first generate: %v", err)
	}

	mock.Fail(backend.OpRouteMap, errors.New("status 502"))
	snap, err := p.Generate(ctx, req)
	if !apperr.IsKind(err, apperr.KindPartialPipeline) {
		t.Fatalf("err = %v, want partial pipeline", err)
	}
	if snap.State != PipelineFailed {
		t.Fatalf("state = %s, want failed", snap.State)
	}
	if snap.Result == nil || len(snap.Result.Nodes) == 0 {
		t.Fatalf("route result should survive a render failure")
	}
	if snap.Artifact != first.Artifact {
		t.Fatalf("live route artifact should be unchanged")
	}
	if store.Outstanding() != 1 {
		t.Fatalf("outstanding = %d, want 1", store.Outstanding())
	}

	// A new generation is always permitted after a failure.
	mock.Fail(backend.OpRouteMap, nil)
	snap, err = p.Generate(ctx, req)
	if err != nil || snap.State != PipelineReady {
		t.Fatalf("regenerate state=%s err=%v", snap.State, err)
	}
	if snap.Generation != 3 {
		t.Fatalf("generation = %d, want 3", snap.Generation)
	}
}

func TestRoutePipelineRandomMode(t *testing.T) {
	p, _, _ := newPipeline()

	snap, err := p.Generate(context.Background(), GenerateRequest{
		Selection: domain.Selection{Stops: []string{"142", "423"}, Mode: domain.ModeRandom},
		Period:    morning,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.Result.Nodes) < 1 {
		t.Fatalf("nodes = %v, want at least one", snap.Result.Nodes)
	}
}

// heldRouteRenderer blocks RouteMap until release is closed.
type heldRouteRenderer struct {
	ports.MapRenderer
	entered chan struct{}
	release chan struct{}
}

func (h *heldRouteRenderer) RouteMap(ctx context.Context, req domain.RouteRenderRequest) (domain.Document, error) {
	h.entered <- struct{}{}
	<-h.release
	return h.MapRenderer.RouteMap(ctx, req)
}

func TestRoutePipelineSupersededGenerationDoesNotInstall(t *testing.T) {
	ctx := context.Background()
	mock := backend.NewMockBackend(backend.DefaultNodes(), backend.DefaultSettings())
	store := artifacts.NewMemoryStore("")
	renderer := &heldRouteRenderer{
		MapRenderer: mock,
		entered:     make(chan struct{}, 1),
		release:     make(chan struct{}),
	}
	p := NewRoutePipeline(mock, renderer, store, NewArtifactLifecycle("route", nil), nil)

	req := GenerateRequest{
		Selection: domain.Selection{Depot: "42", Stops: []string{"142"}},
		Period:    morning,
	}

	type outcome struct {
		snap PipelineSnapshot
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		snap, err := p.Generate(ctx, req)
		done <- outcome{snap, err}
	}()
	<-renderer.entered

	mock.Fail(backend.OpOptimize, errors.New("status 503"))
	snap, err := p.Generate(ctx, req)
	if !apperr.IsKind(err, apperr.KindNetwork) {
		t.Fatalf("second generate err = %v, want network", err)
	}
	if snap.Generation != 2 {
		t.Fatalf("generation = %d, want 2", snap.Generation)
	}

	close(renderer.release)
	first := <-done
	if first.err != nil {
		t.Fatalf("superseded generate err = %v, want nil", first.err)
	}

	got := p.Snapshot()
	if got.State != PipelineFailed || got.Generation != 2 {
		t.Fatalf("snapshot state=%s gen=%d, want failed/2", got.State, got.Generation)
	}
	if got.Result != nil {
		t.Fatalf("result should be cleared for generation 2")
	}
	if got.Artifact != nil {
		t.Fatalf("superseded generation installed artifact %s", got.Artifact.ID())
	}
	if created, _ := store.Stats(); created != 0 {
		t.Fatalf("created = %d, want 0", created)
	}
}
