package services

import (
	"context"

	"route-selection-client/internal/domain"
	"route-selection-client/internal/platform/apperr"
	"route-selection-client/internal/platform/obs"
	"route-selection-client/internal/ports"
)

// MapBridge keeps the selection map consistent with the selection and with
// click events coming from the embedded map content. A failed render leaves
// the previously displayed artifact in place.
type MapBridge struct {
	renderer ports.MapRenderer
	search   *NodeSearch
	slot     *displaySlot
	observer obs.Observer
}

func NewMapBridge(
	renderer ports.MapRenderer,
	search *NodeSearch,
	store ports.ArtifactStore,
	lifecycle *ArtifactLifecycle,
	o obs.Observer,
) *MapBridge {
	return &MapBridge{
		renderer: renderer,
		search:   search,
		slot:     newDisplaySlot(store, lifecycle),
		observer: obs.OrNop(o),
	}
}

// LoadInitialView displays the default map with no selection overlay.
func (b *MapBridge) LoadInitialView(ctx context.Context) error {
	return b.render(ctx, "load initial map", func(ctx context.Context) (domain.Document, error) {
		return b.renderer.InitialMap(ctx)
	})
}

// RefreshForSelection displays the depot and stops overlay for sel.
func (b *MapBridge) RefreshForSelection(ctx context.Context, sel domain.Selection, period *domain.TimePeriod, style domain.MapStyle) error {
	req := domain.NewRenderRequest(sel, period, style)
	return b.render(ctx, "update route on map", func(ctx context.Context) (domain.Document, error) {
		return b.renderer.MapWithSelection(ctx, req)
	})
}

// ShowCandidates highlights a candidate set on the map.
func (b *MapBridge) ShowCandidates(ctx context.Context, nodes []domain.Location) error {
	if len(nodes) == 0 {
		return nil
	}
	return b.render(ctx, "update map with nodes", func(ctx context.Context) (domain.Document, error) {
		return b.renderer.MapWithNodes(ctx, nodes)
	})
}

// OnInboundEvent decodes a raw message from the embedded map. Messages of
// unknown shape are ignored and report handled=false. A map click runs a
// proximity search and returns its candidates.
func (b *MapBridge) OnInboundEvent(ctx context.Context, raw []byte) (domain.SearchResultSet, bool, error) {
	switch ev := domain.DecodeInboundEvent(raw).(type) {
	case domain.NodeSelected:
		set, err := b.search.Nearby(ctx, b.search.DefaultNearby(ev.Lat, ev.Lon))
		return set, true, err
	case domain.Unknown:
		b.observer.Debug("inbound event ignored", "type", ev.Type)
	}
	return domain.SearchResultSet{}, false, nil
}

// Live returns the displayed artifact handle, or nil.
func (b *MapBridge) Live() ports.ArtifactHandle {
	return b.slot.live()
}

func (b *MapBridge) render(ctx context.Context, op string, fetch func(ctx context.Context) (domain.Document, error)) (err error) {
	defer obs.Time(ctx, b.observer, "bridge."+op)(&err)

	seq := b.slot.issue()

	doc, err := fetch(ctx)
	if err != nil {
		return apperr.Network("failed to "+op, err).WithOp(op)
	}

	_, installed, err := b.slot.install(ctx, seq, doc, nil)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to store map", err).WithOp(op)
	}
	if !installed {
		b.observer.Debug("stale render discarded", "op", op, "seq", seq, "applied", b.slot.appliedSeq())
	}
	return nil
}
