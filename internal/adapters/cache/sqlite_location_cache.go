package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"route-selection-client/internal/domain"
	"route-selection-client/internal/platform/obs"
	"route-selection-client/internal/ports"
)

// SQLite backed cache mapping node ids to coordinates.
type SqliteLocationCache struct {
	DB       *sql.DB
	Observer obs.Observer
}

func NewSqliteLocationCache(db *sql.DB, o obs.Observer) *SqliteLocationCache {
	return &SqliteLocationCache{DB: db, Observer: o}
}

// Fetch cached locations for the given ids.
func (s *SqliteLocationCache) GetMany(
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

	ph := make([]string, 0, len(uniq))
	args := make([]any, 0, len(uniq))
	for _, id := range uniq {
		ph = append(ph, "?")
		args = append(args, id)
	}

	// SQLite does not support binding slices directly in an IN (...) clause.
	// Only the placeholder structure is interpolated; all values remain parameterized.
	q := fmt.Sprintf(`
	SELECT
        node_id,
        lat,
        lon
    FROM location_cache
    WHERE node_id IN (%s);
	`, strings.Join(ph, ","))

	rows, err := s.DB.QueryContext(ctx, q, args...)
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
func (s *SqliteLocationCache) PutMany(ctx context.Context, locations []domain.Location) (err error) {
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
	INSERT OR REPLACE INTO location_cache (
        node_id,
        lat,
        lon
    )
    VALUES (?, ?, ?);
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

// uniqueIDs trims ids and drops blanks and duplicates, preserving order.
func uniqueIDs(ids []string) []string {
	seen := map[string]struct{}{}
	uniq := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}

		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, id)
	}
	return uniq
}

var _ ports.LocationCache = (*SqliteLocationCache)(nil)
