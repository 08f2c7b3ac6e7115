package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"route-selection-client/internal/domain"
	"route-selection-client/internal/platform/obs"
	"route-selection-client/internal/ports"
)

// SQLLocationCache is a Postgres-backed cache mapping node ids to coordinates.
type SQLLocationCache struct {
	DB       *sql.DB
	Observer obs.Observer
}

func NewSQLLocationCache(db *sql.DB, o obs.Observer) *SQLLocationCache {
	return &SQLLocationCache{DB: db, Observer: o}
}

// Fetch cached locations for the given ids.
func (s *SQLLocationCache) GetMany(
	ctx context.Context,
	ids []string,
) (_ map[string]domain.Location, err error) {
	defer obs.Time(ctx, s.Observer, "location.cache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("location cache: db is nil")
	}

	uniq := uniqueIDs(ids)
	if len(uniq) == 0 {
		return map[string]domain.Location{}, nil
	}

	q := `
	SELECT node_id, lat, lon
    FROM location_cache
    WHERE node_id = ANY($1::text[]);
	`

	rows, err := s.DB.QueryContext(ctx, q, uniq)
	if err != nil {
		return nil, fmt.Errorf("get location cache: query location_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.Location, len(uniq))
	for rows.Next() {
		var loc domain.Location
		if err := rows.Scan(&loc.ID, &loc.Lat, &loc.Lon); err != nil {
			return nil, fmt.Errorf("get location cache: scan rows: %w", err)
		}
		out[loc.ID] = loc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get location cache: row iteration: %w", err)
	}

	return out, nil
}

// Store id -> coordinate mappings in the cache.
func (s *SQLLocationCache) PutMany(ctx context.Context, locations []domain.Location) (err error) {
	defer obs.Time(ctx, s.Observer, "location.cache.PutMany")(&err)

	if s.DB == nil {
		return errors.New("location cache: db is nil")
	}

	if len(locations) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert location cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO location_cache (node_id, lat, lon)
    VALUES ($1, $2, $3)
	ON CONFLICT (node_id) DO UPDATE
	SET lat = EXCLUDED.lat,
		lon = EXCLUDED.lon;
	`)
	if err != nil {
		return fmt.Errorf("insert location cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for _, loc := range locations {
		if !loc.Valid() {
			return fmt.Errorf("insert location cache: invalid location %q", loc.ID)
		}

		if _, err := stmt.ExecContext(ctx, loc.ID, loc.Lat, loc.Lon); err != nil {
			return fmt.Errorf("insert location cache node=%q: %w", loc.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert location cache commit: %w", err)
	}

	return nil
}

var _ ports.LocationCache = (*SQLLocationCache)(nil)
