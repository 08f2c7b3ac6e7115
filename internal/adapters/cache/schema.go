package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"route-selection-client/internal/domain"
	"route-selection-client/internal/ports"
)

// Initialize the location cache schema. The statements are valid for both
// SQLite and Postgres.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createLocationCacheQuery := `
	CREATE TABLE IF NOT EXISTS location_cache (
        node_id TEXT PRIMARY KEY,
        lat DOUBLE PRECISION NOT NULL,
        lon DOUBLE PRECISION NOT NULL
    );
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_location_cache_lat_lon
    ON location_cache(lat, lon);
	`

	statements := []string{
		createLocationCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// Populate a location cache from a JSON file of {id, lat, lon} entries.
// Ids may be JSON strings or numbers.
func SeedFromJSON(ctx context.Context, c ports.LocationCache, jsonPath string) (int, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed locations: read %q: %w", jsonPath, err)
	}

	var raw []map[string]json.RawMessage
	if err := json.Unmarshal(bytes, &raw); err != nil {
		return 0, fmt.Errorf("seed locations: parse json: %w", err)
	}

	rows := make([]domain.Location, 0, len(raw))
	for i, item := range raw {
		id := strings.Trim(strings.TrimSpace(string(item["id"])), `"`)
		if id == "" || id == "null" {
			return 0, fmt.Errorf("seed locations: item at index %d: id cannot be empty", i+1)
		}

		var lat, lon float64
		if err := json.Unmarshal(item["lat"], &lat); err != nil {
			return 0, fmt.Errorf("seed locations: item %q: lat: %w", id, err)
		}
		if err := json.Unmarshal(item["lon"], &lon); err != nil {
			return 0, fmt.Errorf("seed locations: item %q: lon: %w", id, err)
		}

		rows = append(rows, domain.Location{ID: id, Lat: lat, Lon: lon})
	}

	if err := c.PutMany(ctx, rows); err != nil {
		return 0, fmt.Errorf("seed locations: %w", err)
	}

	return len(rows), nil
}
