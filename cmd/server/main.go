package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"route-selection-client/internal/adapters/artifacts"
	"route-selection-client/internal/adapters/backend"
	"route-selection-client/internal/adapters/cache"
	"route-selection-client/internal/api"
	"route-selection-client/internal/api/handlers"
	"route-selection-client/internal/config"
	"route-selection-client/internal/domain"
	"route-selection-client/internal/platform/db"
	"route-selection-client/internal/platform/logger"
	"route-selection-client/internal/ports"
	"route-selection-client/internal/services"
)

// remote is everything the orchestrator needs from the routing backend.
type remote interface {
	ports.NodeSearchBackend
	ports.MapRenderer
	ports.RouteOptimizer
	ports.SettingsProvider
}

// main is the application composition root.
// It wires concrete adapters (backend client, caches, artifact store) behind
// ports and starts the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	lg := logger.New(cfg.Env)
	slog.SetDefault(lg.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rb, err := newRemote(cfg, lg)
	if err != nil {
		log.Fatal(err)
	}

	locations, closeCache, err := newLocationCache(ctx, cfg, lg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := closeCache(); err != nil {
			lg.Warn("close location cache", "err", err)
		}
	}()

	store, docs, err := newArtifactStore(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}

	orch := services.NewOrchestrator(services.Backend{
		Search:    rb,
		Renderer:  rb,
		Optimizer: rb,
		Settings:  rb,
		Store:     store,
		Cache:     locations,
	}, services.OrchestratorConfig{
		SearchLimit:     cfg.SearchLimit,
		NearbyRadius:    cfg.NearbyRadius,
		NearbyLimit:     cfg.NearbyLimit,
		DefaultMapStyle: domain.MapStyle(cfg.DefaultMapStyle),
	}, lg)

	// A backend that is down at startup is reported through the state notice;
	// the server still comes up.
	if err := orch.Start(ctx); err != nil {
		lg.Warn("initial load incomplete", "err", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(orch, docs, lg),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Route generation waits on optimize and render in sequence.
		WriteTimeout: 2*cfg.BackendTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		lg.Info("server listening", "addr", srv.Addr, "backend", backendName(cfg), "cache", cfg.LocationCache, "artifacts", cfg.ArtifactStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("server shutdown", "err", err)
	}
	if err := orch.Close(shutdownCtx); err != nil {
		lg.Error("release artifacts", "err", err)
	}
	lg.Info("server stopped")
}

func backendName(cfg *config.Config) string {
	if cfg.BackendURL == "" {
		return "in-process stub"
	}
	return cfg.BackendURL
}

// newRemote returns the HTTP backend client, or an in-process stub when no
// backend URL is configured.
func newRemote(cfg *config.Config, lg *logger.Logger) (remote, error) {
	if cfg.BackendURL != "" {
		return backend.NewClient(cfg.BackendURL, cfg.BackendTimeout, cfg.BackendRPS, lg)
	}

	nodes := backend.DefaultNodes()
	if seedPath := config.Get("SEED_PATH", ""); seedPath != "" {
		loaded, err := backend.LoadNodes(seedPath)
		if err != nil {
			return nil, err
		}
		nodes = loaded
	}
	return backend.NewMockBackend(nodes, backend.DefaultSettings()), nil
}

func newLocationCache(ctx context.Context, cfg *config.Config, lg *logger.Logger) (ports.LocationCache, func() error, error) {
	noop := func() error { return nil }

	switch cfg.LocationCache {
	case "sqlite":
		conn, err := db.OpenSqlite(cfg.SqlitePath)
		if err != nil {
			return nil, noop, err
		}
		if err := cache.InitSchema(ctx, conn); err != nil {
			_ = conn.Close()
			return nil, noop, err
		}
		return cache.NewSqliteLocationCache(conn, lg), conn.Close, nil

	case "postgres":
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		if err := cache.InitSchema(ctx, conn); err != nil {
			_ = conn.Close()
			return nil, noop, err
		}
		return cache.NewSQLLocationCache(conn, lg), conn.Close, nil

	case "redis":
		client, err := cache.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, noop, err
		}
		return cache.NewRedisLocationCache(client, cfg.LocationCacheTTL, lg), client.Close, nil

	case "memory":
		return cache.NewMemoryLocationCache(), noop, nil

	default:
		return nil, noop, fmt.Errorf("unknown location cache %q", cfg.LocationCache)
	}
}

// newArtifactStore returns the store plus the document source the API serves
// artifacts from. Object storage hands out its own URLs, so it has no source.
func newArtifactStore(ctx context.Context, cfg *config.Config) (ports.ArtifactStore, handlers.DocumentSource, error) {
	if cfg.ArtifactStore == "minio" {
		store, err := artifacts.NewMinIOStore(ctx, artifacts.MinIOConfig{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	}

	store := artifacts.NewMemoryStore(cfg.PublicBaseURL)
	return store, store, nil
}
