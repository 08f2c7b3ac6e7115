package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"route-selection-client/internal/adapters/artifacts"
	"route-selection-client/internal/adapters/backend"
	"route-selection-client/internal/adapters/cache"
	"route-selection-client/internal/api/dto"
	"route-selection-client/internal/services"
)

type testServer struct {
	srv   *httptest.Server
	mock  *backend.MockBackend
	store *artifacts.MemoryStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	mock := backend.NewMockBackend(backend.DefaultNodes(), backend.DefaultSettings())
	store := artifacts.NewMemoryStore("")
	orch := services.NewOrchestrator(services.Backend{
		Search:    mock,
		Renderer:  mock,
		Optimizer: mock,
		Settings:  mock,
		Store:     store,
		Cache:     cache.NewMemoryLocationCache(),
	}, services.OrchestratorConfig{}, nil)

	if err := orch.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	srv := httptest.NewServer(NewRouter(orch, store, nil))
	t.Cleanup(srv.Close)

	return &testServer{srv: srv, mock: mock, store: store}
}

func (s *testServer) do(t *testing.T, method, path, body string) (int, []byte) {
	t.Helper()

	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, s.srv.URL+path, rd)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, b
}

func decodeState(t *testing.T, b []byte) dto.StateResponse {
	t.Helper()
	var st dto.StateResponse
	if err := json.Unmarshal(b, &st); err != nil {
		t.Fatalf("decode state: %v (%s)", err, b)
	}
	return st
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodGet, "/health", "")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if !bytes.Contains(body, []byte(`"ok"`)) {
		t.Fatalf("body = %s", body)
	}
}

func TestSelectionFlow(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodGet, "/state", "")
	if status != http.StatusOK {
		t.Fatalf("state status = %d", status)
	}
	st := decodeState(t, body)
	if st.TimePeriod == nil || st.TimePeriod.Hour != 8 {
		t.Fatalf("time period = %+v, want first period", st.TimePeriod)
	}
	if st.MapStyle != "enhanced" || st.SelectionMapURL == "" {
		t.Fatalf("state = %+v", st)
	}
	initialMap := st.SelectionMapURL

	if status, body = s.do(t, http.MethodPost, "/selection/mode", `{"mode":"nodeid"}`); status != http.StatusOK {
		t.Fatalf("mode status = %d body=%s", status, body)
	}

	status, body = s.do(t, http.MethodPost, "/search", `{"term":"42"}`)
	if status != http.StatusOK {
		t.Fatalf("search status = %d body=%s", status, body)
	}
	if st = decodeState(t, body); len(st.Results) != 3 {
		t.Fatalf("results = %+v, want 3", st.Results)
	}

	if status, body = s.do(t, http.MethodPost, "/selection/depot", `{"node_id":42}`); status != http.StatusOK {
		t.Fatalf("depot status = %d body=%s", status, body)
	}
	status, body = s.do(t, http.MethodPost, "/selection/stops", `{"node_id":"142"}`)
	if status != http.StatusOK {
		t.Fatalf("stop status = %d body=%s", status, body)
	}

	st = decodeState(t, body)
	if st.Selection.Depot == nil || st.Selection.Depot.ID != "42" || st.Selection.Depot.Lat == nil {
		t.Fatalf("depot = %+v, want resolved 42", st.Selection.Depot)
	}
	if len(st.Selection.Stops) != 1 || st.Selection.Stops[0].ID != "142" {
		t.Fatalf("stops = %+v", st.Selection.Stops)
	}
	if len(st.Results) != 0 {
		t.Fatalf("results should be cleared after commit")
	}

	// The superseded initial map has been released.
	if status, _ = s.do(t, http.MethodGet, initialMap, ""); status != http.StatusNotFound {
		t.Fatalf("released artifact status = %d, want 404", status)
	}
	status, body = s.do(t, http.MethodGet, st.SelectionMapURL, "")
	if status != http.StatusOK || !bytes.Contains(body, []byte(`data-kind="selection"`)) {
		t.Fatalf("live artifact status = %d body=%s", status, body)
	}

	status, body = s.do(t, http.MethodPost, "/route/generate", "")
	if status != http.StatusOK {
		t.Fatalf("generate status = %d body=%s", status, body)
	}
	st = decodeState(t, body)
	if st.Route.State != "ready" || st.Route.Result == nil || st.Route.MapURL == "" {
		t.Fatalf("route = %+v, want ready with map", st.Route)
	}

	if status, body = s.do(t, http.MethodDelete, "/selection/stops/0", ""); status != http.StatusOK {
		t.Fatalf("remove status = %d body=%s", status, body)
	}
	if st = decodeState(t, body); len(st.Selection.Stops) != 0 {
		t.Fatalf("stops = %+v, want none", st.Selection.Stops)
	}
}

func TestEmptySearchThenClear(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/search", `{"term":"9999"}`)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200 body=%s", status, body)
	}
	st := decodeState(t, body)
	if st.Notice == nil || st.Notice.Kind != "empty_result" {
		t.Fatalf("notice = %+v, want empty_result", st.Notice)
	}
	if len(st.Results) != 0 {
		t.Fatalf("results = %+v, want none", st.Results)
	}

	status, body = s.do(t, http.MethodPost, "/results/clear", "")
	if status != http.StatusOK {
		t.Fatalf("clear status = %d", status)
	}
	if st = decodeState(t, body); st.Notice != nil {
		t.Fatalf("notice = %+v, want cleared", st.Notice)
	}
}

func TestSetModeAcceptsAliases(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		body string
		want string
	}{
		{`{"mode":"Map"}`, "map"},
		{`{"mode":" nodeId "}`, "identifier"},
		{`{"mode":"RANDOM"}`, "random"},
		{`{"mode":"map-click"}`, "map"},
	}

	for _, tt := range tests {
		status, body := s.do(t, http.MethodPost, "/selection/mode", tt.body)
		if status != http.StatusOK {
			t.Fatalf("%s: status = %d, want 200 (body=%s)", tt.body, status, body)
		}
		if st := decodeState(t, body); st.Selection.Mode != tt.want {
			t.Fatalf("%s: mode = %q, want %q", tt.body, st.Selection.Mode, tt.want)
		}
	}
}

func TestRouteGeneratePartialFailure(t *testing.T) {
	s := newTestServer(t)
	s.mock.Fail(backend.OpRouteMap, io.ErrUnexpectedEOF)

	status, body := s.do(t, http.MethodPost, "/route/generate", "")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}

	st := decodeState(t, body)
	if st.Route.State != "failed" || st.Route.Result == nil {
		t.Fatalf("route = %+v, want failed with result", st.Route)
	}
	if st.Route.Error == nil || st.Route.Error.Kind != "partial_pipeline" {
		t.Fatalf("route error = %+v, want partial_pipeline", st.Route.Error)
	}
}

func TestBadRequests(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"unknown mode", http.MethodPost, "/selection/mode", `{"mode":"walk"}`, http.StatusBadRequest},
		{"missing node id", http.MethodPost, "/selection/stops", `{}`, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/selection/stops", `{"node_id":"1","x":1}`, http.StatusBadRequest},
		{"two objects", http.MethodPost, "/search", `{"term":"1"}{"term":"2"}`, http.StatusBadRequest},
		{"hour out of range", http.MethodPost, "/route/period", `{"hour":25,"day_of_week":1}`, http.StatusBadRequest},
		{"missing day", http.MethodPost, "/route/period", `{"hour":8}`, http.StatusBadRequest},
		{"period not offered", http.MethodPost, "/route/period", `{"hour":3,"day_of_week":0}`, http.StatusBadRequest},
		{"unknown style", http.MethodPost, "/route/style", `{"map_type":"neon"}`, http.StatusBadRequest},
		{"bad index", http.MethodDelete, "/selection/stops/first", "", http.StatusBadRequest},
		{"empty identifier search", http.MethodPost, "/search", `{"term":"  "}`, http.StatusBadRequest},
		{"unknown artifact", http.MethodGet, "/artifacts/nope", "", http.StatusNotFound},
	}

	// Identifier mode makes the empty search a validation failure.
	if status, _ := s.do(t, http.MethodPost, "/selection/mode", `{"mode":"identifier"}`); status != http.StatusOK {
		t.Fatalf("set mode status = %d", status)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := s.do(t, tt.method, tt.path, tt.body)
			if status != tt.want {
				t.Fatalf("status = %d, want %d (body=%s)", status, tt.want, body)
			}
		})
	}
}

func TestEvents(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/events", `{"type":"RESIZE"}`)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	var ev dto.EventResponse
	if err := json.Unmarshal(body, &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.Handled {
		t.Fatalf("unknown event should not be handled")
	}

	status, body = s.do(t, http.MethodPost, "/events", `{"type":"NODE_SELECTED","data":{"lat":40.7128,"lon":-74.006}}`)
	if status != http.StatusOK {
		t.Fatalf("status = %d body=%s", status, body)
	}
	if err := json.Unmarshal(body, &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !ev.Handled || len(ev.State.Results) == 0 || ev.State.Results[0].ID != "42" {
		t.Fatalf("event response = %+v", ev)
	}
	if ev.State.Results[0].DistanceKm == nil {
		t.Fatalf("expected distance on proximity result")
	}
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t)

	req, _ := http.NewRequest(http.MethodGet, s.srv.URL+"/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	resp.Body.Close()

	if got := resp.Header.Get("X-Request-ID"); got != "abc-123" {
		t.Fatalf("request id = %q, want abc-123", got)
	}
}
