package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"route-selection-client/internal/domain"
	"route-selection-client/internal/platform/apperr"
	"route-selection-client/internal/platform/obs"
	"route-selection-client/internal/ports"
)

// Backend bundles the remote capabilities the orchestrator drives.
// Settings and Cache may be nil.
type Backend struct {
	Search    ports.NodeSearchBackend
	Renderer  ports.MapRenderer
	Optimizer ports.RouteOptimizer
	Settings  ports.SettingsProvider
	Store     ports.ArtifactStore
	Cache     ports.LocationCache
}

// OrchestratorConfig is the explicit client configuration handed to the
// orchestrator at construction.
type OrchestratorConfig struct {
	SearchLimit     int
	NearbyRadius    float64
	NearbyLimit     int
	DefaultMapStyle domain.MapStyle
}

// Notice is the transient message shown to the user after a failed or empty
// operation.
type Notice struct {
	Kind    apperr.Kind
	Message string
}

// View is a read-only snapshot for view code.
type View struct {
	Selection domain.Selection
	// Locations resolves committed depot and stop ids that are known.
	Locations    map[string]domain.Location
	Results      domain.SearchResultSet
	Notice       *Notice
	Settings     domain.Settings
	Period       *domain.TimePeriod
	Style        domain.MapStyle
	SelectionMap ports.ArtifactHandle
	Route        PipelineSnapshot
}

// Orchestrator owns the selection, the search results, both map displays and
// the route pipeline. View code reads View snapshots and issues intents; no
// failure escapes as a panic, and the orchestrator stays usable after any
// error.
type Orchestrator struct {
	backend  Backend
	cfg      OrchestratorConfig
	observer obs.Observer

	selection     *SelectionState
	search        *NodeSearch
	bridge        *MapBridge
	pipeline      *RoutePipeline
	selectionLife *ArtifactLifecycle
	routeLife     *ArtifactLifecycle

	mu       sync.Mutex
	results  domain.SearchResultSet
	notice   *Notice
	settings domain.Settings
	period   *domain.TimePeriod
	style    domain.MapStyle
}

func NewOrchestrator(backend Backend, cfg OrchestratorConfig, o obs.Observer) *Orchestrator {
	o = obs.OrNop(o)
	if cfg.DefaultMapStyle == "" {
		cfg.DefaultMapStyle = domain.DefaultMapStyle
	}

	search := NewNodeSearch(backend.Search, backend.Cache, NodeSearchConfig{
		SearchLimit:  cfg.SearchLimit,
		NearbyRadius: cfg.NearbyRadius,
		NearbyLimit:  cfg.NearbyLimit,
	}, o)

	selectionLife := NewArtifactLifecycle("selection", o)
	routeLife := NewArtifactLifecycle("route", o)

	orch := &Orchestrator{
		backend:       backend,
		cfg:           cfg,
		observer:      o,
		selection:     NewSelectionState(),
		search:        search,
		bridge:        NewMapBridge(backend.Renderer, search, backend.Store, selectionLife, o),
		pipeline:      NewRoutePipeline(backend.Optimizer, backend.Renderer, backend.Store, routeLife, o),
		selectionLife: selectionLife,
		routeLife:     routeLife,
		style:         cfg.DefaultMapStyle,
	}

	orch.selection.Subscribe(func(sel domain.Selection) {
		o.Debug("selection changed", "depot", sel.Depot, "stops", len(sel.Stops), "mode", string(sel.Mode))
	})

	return orch
}

// Start loads the backend settings and the initial map. Both are attempted;
// the first failure is returned.
func (o *Orchestrator) Start(ctx context.Context) error {
	settingsErr := o.LoadSettings(ctx)
	viewErr := o.LoadInitialView(ctx)
	if settingsErr != nil {
		return settingsErr
	}
	return viewErr
}

// LoadSettings fetches time periods and map styles. The first time period
// becomes the selected one if none is selected.
func (o *Orchestrator) LoadSettings(ctx context.Context) error {
	if o.backend.Settings == nil {
		return nil
	}

	settings, err := o.backend.Settings.Settings(ctx)
	if err != nil {
		return o.report(apperr.Network("failed to fetch settings", err).WithOp("load settings"))
	}

	o.mu.Lock()
	o.settings = settings
	if o.period == nil && len(settings.TimePeriods) > 0 {
		p := settings.TimePeriods[0]
		o.period = &p
	}
	if len(settings.MapStyles) > 0 && !hasStyle(settings.MapStyles, o.style) {
		o.style = settings.MapStyles[0].Value
	}
	o.mu.Unlock()

	return nil
}

func (o *Orchestrator) LoadInitialView(ctx context.Context) error {
	if err := o.bridge.LoadInitialView(ctx); err != nil {
		return o.report(err)
	}
	return nil
}

func (o *Orchestrator) SetMode(mode domain.Mode) error {
	switch mode {
	case domain.ModeIdentifier, domain.ModeMap, domain.ModeRandom:
	default:
		return o.report(apperr.Validation(fmt.Sprintf("unknown selection mode %q", mode)).WithOp("set mode"))
	}
	o.selection.SetMode(mode)
	return nil
}

// Search runs an identifier search, replaces the result set and highlights
// the candidates on the selection map.
func (o *Orchestrator) Search(ctx context.Context, term string) (domain.SearchResultSet, error) {
	o.clearNotice()

	sel := o.selection.Snapshot()
	set, err := o.search.ByIdentifier(ctx, sel.Mode, term, o.cfg.SearchLimit)
	if err != nil && !apperr.IsKind(err, apperr.KindEmptyResult) {
		return domain.SearchResultSet{}, o.report(err)
	}

	o.setResults(set)
	if err != nil {
		return set, o.report(err)
	}

	if err := o.bridge.ShowCandidates(ctx, set.Candidates); err != nil {
		// The results stand even when the map could not be updated.
		return set, o.report(err)
	}
	return set, nil
}

// HandleEvent processes a raw message from the embedded map. Unknown
// messages are ignored and report handled=false.
func (o *Orchestrator) HandleEvent(ctx context.Context, raw []byte) (bool, error) {
	set, handled, err := o.bridge.OnInboundEvent(ctx, raw)
	if !handled {
		return false, nil
	}

	o.clearNotice()
	if err != nil && !apperr.IsKind(err, apperr.KindEmptyResult) {
		return true, o.report(err)
	}

	o.setResults(set)
	if err != nil {
		return true, o.report(err)
	}
	return true, nil
}

func (o *Orchestrator) AddAsDepot(ctx context.Context, id string) error {
	id, err := commitID(id)
	if err != nil {
		return o.report(err)
	}
	return o.commit(ctx, func() (domain.Selection, bool) { return o.selection.SetDepot(id) })
}

func (o *Orchestrator) AddAsStop(ctx context.Context, id string) error {
	id, err := commitID(id)
	if err != nil {
		return o.report(err)
	}
	return o.commit(ctx, func() (domain.Selection, bool) { return o.selection.AddStop(id) })
}

func (o *Orchestrator) RemoveStop(ctx context.Context, index int) error {
	return o.refreshIfChanged(ctx, func() (domain.Selection, bool) { return o.selection.RemoveStop(index) })
}

func (o *Orchestrator) ClearDepot(ctx context.Context) error {
	return o.refreshIfChanged(ctx, func() (domain.Selection, bool) { return o.selection.ClearDepot() })
}

// ClearResults empties the result set and the transient notice.
func (o *Orchestrator) ClearResults() {
	o.mu.Lock()
	o.results = domain.SearchResultSet{}
	o.notice = nil
	o.mu.Unlock()
}

// SetTimePeriod selects one of the backend's time periods. Before settings
// are loaded any valid hour and day are accepted.
func (o *Orchestrator) SetTimePeriod(hour, dayOfWeek int) error {
	if hour < 0 || hour > 23 || dayOfWeek < 0 || dayOfWeek > 6 {
		return o.report(apperr.Validation("invalid time period").WithOp("set time period"))
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	period := domain.TimePeriod{Hour: hour, DayOfWeek: dayOfWeek}
	if len(o.settings.TimePeriods) > 0 {
		i := slices.IndexFunc(o.settings.TimePeriods, func(p domain.TimePeriod) bool {
			return p.Hour == hour && p.DayOfWeek == dayOfWeek
		})
		if i < 0 {
			return o.reportLocked(apperr.Validation("unknown time period").WithOp("set time period"))
		}
		period = o.settings.TimePeriods[i]
	}
	o.period = &period
	return nil
}

func (o *Orchestrator) SetMapStyle(style domain.MapStyle) error {
	style = domain.MapStyle(strings.TrimSpace(string(style)))
	if style == "" {
		return o.report(apperr.Validation("map style is required").WithOp("set map style"))
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if len(o.settings.MapStyles) > 0 && !hasStyle(o.settings.MapStyles, style) {
		return o.reportLocked(apperr.Validation(fmt.Sprintf("unknown map style %q", style)).WithOp("set map style"))
	}
	o.style = style
	return nil
}

// GenerateRoute runs the route pipeline against the current selection.
func (o *Orchestrator) GenerateRoute(ctx context.Context) (PipelineSnapshot, error) {
	o.clearNotice()

	o.mu.Lock()
	req := GenerateRequest{
		Selection: o.selection.Snapshot(),
		Period:    clonePeriod(o.period),
		Style:     o.style,
	}
	o.mu.Unlock()

	snap, err := o.pipeline.Generate(ctx, req)
	if err != nil {
		return snap, o.report(err)
	}
	return snap, nil
}

// Snapshot returns the current view. Lookup failures in the location cache
// are logged and leave ids unresolved.
func (o *Orchestrator) Snapshot(ctx context.Context) View {
	sel := o.selection.Snapshot()

	o.mu.Lock()
	v := View{
		Selection:    sel,
		Results:      domain.SearchResultSet{Candidates: slices.Clone(o.results.Candidates)},
		Settings:     o.settings,
		Period:       clonePeriod(o.period),
		Style:        o.style,
		SelectionMap: o.bridge.Live(),
		Route:        o.pipeline.Snapshot(),
	}
	if o.notice != nil {
		n := *o.notice
		v.Notice = &n
	}
	o.mu.Unlock()

	v.Locations = o.resolve(ctx, sel, v.Results)
	return v
}

// Close releases the artifacts of both displays.
func (o *Orchestrator) Close(ctx context.Context) error {
	return errors.Join(
		o.selectionLife.ReleaseAll(ctx),
		o.routeLife.ReleaseAll(ctx),
	)
}

// commit applies a candidate commit, clears the result set and refreshes the
// selection map when the selection changed.
func (o *Orchestrator) commit(ctx context.Context, mutate func() (domain.Selection, bool)) error {
	err := o.refreshIfChanged(ctx, mutate)

	o.mu.Lock()
	o.results = domain.SearchResultSet{}
	o.mu.Unlock()

	return err
}

func (o *Orchestrator) refreshIfChanged(ctx context.Context, mutate func() (domain.Selection, bool)) error {
	sel, changed := mutate()
	if !changed {
		return nil
	}

	o.mu.Lock()
	period := clonePeriod(o.period)
	style := o.style
	o.mu.Unlock()

	if err := o.bridge.RefreshForSelection(ctx, sel, period, style); err != nil {
		return o.report(err)
	}
	return nil
}

func (o *Orchestrator) resolve(ctx context.Context, sel domain.Selection, results domain.SearchResultSet) map[string]domain.Location {
	ids := slices.Clone(sel.Stops)
	if sel.Depot != "" {
		ids = append(ids, sel.Depot)
	}

	out := make(map[string]domain.Location, len(ids))
	if len(ids) == 0 {
		return out
	}

	if o.backend.Cache != nil {
		found, err := o.backend.Cache.GetMany(ctx, ids)
		if err != nil {
			o.observer.Warn("location cache read failed", "err", err)
		}
		for id, loc := range found {
			out[id] = loc
		}
	}

	for _, id := range ids {
		if _, ok := out[id]; ok {
			continue
		}
		if loc, ok := results.Find(id); ok {
			out[id] = loc
		}
	}
	return out
}

func (o *Orchestrator) setResults(set domain.SearchResultSet) {
	o.mu.Lock()
	o.results = set
	o.mu.Unlock()
}

func (o *Orchestrator) clearNotice() {
	o.mu.Lock()
	o.notice = nil
	o.mu.Unlock()
}

// report records err as the transient notice and returns it.
func (o *Orchestrator) report(err error) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.reportLocked(err)
}

func (o *Orchestrator) reportLocked(err error) error {
	if err == nil {
		return nil
	}

	kind := apperr.KindOf(err)
	msg := err.Error()
	var ae *apperr.Error
	if errors.As(err, &ae) {
		msg = ae.Message
	}
	o.notice = &Notice{Kind: kind, Message: msg}

	if kind == apperr.KindEmptyResult {
		o.observer.Info("no results", "msg", msg)
	} else {
		o.observer.Error("operation failed", "kind", kind.String(), "err", err)
	}
	return err
}

func commitID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", apperr.Validation("node id is required").WithOp("commit")
	}
	return id, nil
}

func hasStyle(options []domain.MapStyleOption, style domain.MapStyle) bool {
	return slices.ContainsFunc(options, func(opt domain.MapStyleOption) bool { return opt.Value == style })
}

func clonePeriod(p *domain.TimePeriod) *domain.TimePeriod {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
