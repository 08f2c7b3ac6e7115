package main

import (
	"context"
	"database/sql"
	"log"
	"time"

	"route-selection-client/internal/adapters/cache"
	"route-selection-client/internal/config"
	"route-selection-client/internal/platform/db"
	"route-selection-client/internal/platform/logger"
	"route-selection-client/internal/ports"
)

// dbtool prepares the configured location cache: it creates the schema for
// SQL caches and preloads node coordinates from SEED_PATH when set.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	lg := logger.New(cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var target ports.LocationCache

	switch cfg.LocationCache {
	case "sqlite", "postgres":
		var conn *sql.DB
		if cfg.LocationCache == "sqlite" {
			conn, err = db.OpenSqlite(cfg.SqlitePath)
		} else {
			conn, err = db.Open(cfg.DatabaseURL)
		}
		if err != nil {
			log.Fatal(err)
		}
		defer conn.Close()

		lg.Info("initializing location cache schema", "cache", cfg.LocationCache)
		if err := cache.InitSchema(ctx, conn); err != nil {
			log.Fatalf("schema initialization failed: %v", err)
		}
		lg.Info("schema ready")

		if cfg.LocationCache == "sqlite" {
			target = cache.NewSqliteLocationCache(conn, lg)
		} else {
			target = cache.NewSQLLocationCache(conn, lg)
		}

	case "redis":
		client, err := cache.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal(err)
		}
		defer client.Close()
		target = cache.NewRedisLocationCache(client, cfg.LocationCacheTTL, lg)

	default:
		log.Fatalf("LOCATION_CACHE=%q has nothing to prepare (want sqlite, postgres or redis)", cfg.LocationCache)
	}

	seedPath := config.Get("SEED_PATH", "")
	if seedPath == "" {
		lg.Info("SEED_PATH not set, skipping seed")
		return
	}

	lg.Info("seeding location cache", "path", seedPath)
	n, err := cache.SeedFromJSON(ctx, target, seedPath)
	if err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	lg.Info("seeding complete", "locations", n)
}
