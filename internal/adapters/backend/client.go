package backend

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"route-selection-client/internal/platform/obs"
	"route-selection-client/internal/ports"

	"golang.org/x/time/rate"
)

// Client implements the search, render, optimize and settings ports against
// the routing backend's HTTP API.
//
// It coordinates:
//   - Client-side rate limiting of outbound calls
//   - Retry with exponential backoff on transient failures
//   - Decoding of the backend's JSON and document responses
//
// The client is safe for concurrent use.
type Client struct {
	session  *http.Client
	baseURL  string
	limiter  *rate.Limiter
	observer obs.Observer
	maxBody  int64
}

// NewClient builds a client for baseURL (for example http://localhost:5000/api).
// rps <= 0 disables rate limiting.
func NewClient(baseURL string, timeout time.Duration, rps float64, o obs.Observer) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("backend base url is empty")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	limit := rate.Inf
	burst := 1
	if rps > 0 {
		limit = rate.Limit(rps)
		burst = max(1, int(rps))
	}

	return &Client{
		session:  &http.Client{Timeout: timeout},
		baseURL:  baseURL,
		limiter:  rate.NewLimiter(limit, burst),
		observer: obs.OrNop(o),
		maxBody:  32 << 20,
	}, nil
}

var (
	_ ports.NodeSearchBackend = (*Client)(nil)
	_ ports.MapRenderer       = (*Client)(nil)
	_ ports.RouteOptimizer    = (*Client)(nil)
	_ ports.SettingsProvider  = (*Client)(nil)
)
