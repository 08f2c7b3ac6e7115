package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "APP_ENV", "PUBLIC_BASE_URL", "BACKEND_URL", "BACKEND_TIMEOUT", "BACKEND_RPS",
		"NEARBY_RADIUS", "NEARBY_LIMIT", "SEARCH_LIMIT", "DEFAULT_MAP_STYLE",
		"LOCATION_CACHE", "LOCATION_CACHE_TTL", "SQLITE_PATH", "DATABASE_URL", "REDIS_URL",
		"ARTIFACT_STORE", "MINIO_ENDPOINT", "MINIO_ACCESS_KEY", "MINIO_SECRET_KEY", "MINIO_BUCKET", "MINIO_USE_SSL",
	} {
		t.Setenv(k, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Fatalf("port = %q, want 8080", cfg.Port)
	}
	if cfg.PublicBaseURL != "http://localhost:8080" {
		t.Fatalf("public base url = %q", cfg.PublicBaseURL)
	}
	if cfg.NearbyRadius != 0.001 || cfg.NearbyLimit != 10 || cfg.SearchLimit != 10 {
		t.Fatalf("search defaults = %v/%d/%d", cfg.NearbyRadius, cfg.NearbyLimit, cfg.SearchLimit)
	}
	if cfg.BackendTimeout != 15*time.Second {
		t.Fatalf("timeout = %v, want 15s", cfg.BackendTimeout)
	}
	if cfg.DefaultMapStyle != "enhanced" {
		t.Fatalf("style = %q, want enhanced", cfg.DefaultMapStyle)
	}
	if cfg.LocationCache != "memory" || cfg.ArtifactStore != "memory" {
		t.Fatalf("cache/store = %q/%q, want memory/memory", cfg.LocationCache, cfg.ArtifactStore)
	}
	if cfg.BackendURL != "" {
		t.Fatalf("backend url = %q, want empty", cfg.BackendURL)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("BACKEND_URL", "http://backend:5000/api/")
	t.Setenv("NEARBY_RADIUS", "0.005")
	t.Setenv("LOCATION_CACHE", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("LOCATION_CACHE_TTL", "24h")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BackendURL != "http://backend:5000/api" {
		t.Fatalf("backend url = %q, trailing slash should be trimmed", cfg.BackendURL)
	}
	if cfg.PublicBaseURL != "http://localhost:9000" {
		t.Fatalf("public base url = %q", cfg.PublicBaseURL)
	}
	if cfg.NearbyRadius != 0.005 {
		t.Fatalf("radius = %v, want 0.005", cfg.NearbyRadius)
	}
	if cfg.LocationCacheTTL != 24*time.Hour {
		t.Fatalf("ttl = %v, want 24h", cfg.LocationCacheTTL)
	}
}

func TestFromEnvInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown cache", map[string]string{"LOCATION_CACHE": "memcached"}},
		{"redis without url", map[string]string{"LOCATION_CACHE": "redis"}},
		{"postgres without url", map[string]string{"LOCATION_CACHE": "postgres"}},
		{"minio without endpoint", map[string]string{"ARTIFACT_STORE": "minio"}},
		{"bad radius", map[string]string{"NEARBY_RADIUS": "wide"}},
		{"zero radius", map[string]string{"NEARBY_RADIUS": "0"}},
		{"bad limit", map[string]string{"NEARBY_LIMIT": "ten"}},
		{"limit too large", map[string]string{"SEARCH_LIMIT": "1000"}},
		{"bad timeout", map[string]string{"BACKEND_TIMEOUT": "soon"}},
		{"bad backend url", map[string]string{"BACKEND_URL": "not a url"}},
		{"non-numeric port", map[string]string{"PORT": "http"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := FromEnv(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestGet(t *testing.T) {
	t.Setenv("ROUTE_TEST_KEY", "")
	if got := Get("ROUTE_TEST_KEY", "fallback"); got != "fallback" {
		t.Fatalf("Get = %q, want fallback", got)
	}
	t.Setenv("ROUTE_TEST_KEY", "value")
	if got := Get("ROUTE_TEST_KEY", "fallback"); got != "value" {
		t.Fatalf("Get = %q, want value", got)
	}
}
