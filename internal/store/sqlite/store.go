// Package sqlite provides the SQLite-backed store for locations and their
// forecast entries.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkarolak/weather-forecast-api/internal/domain"
	"github.com/pkarolak/weather-forecast-api/internal/store"
	"github.com/pkarolak/weather-forecast-api/internal/store/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists locations and forecast entries in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens the SQLite store at path and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_pragma=foreign_keys(ON)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Ping reports whether the store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// InsertLocation inserts one location row and assigns its id. A coordinate
// pair already present yields store.ErrDuplicate.
func (s *Store) InsertLocation(ctx context.Context, loc *domain.Location) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var name any
	if loc.Name() != "" {
		name = loc.Name()
	}

	res, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO locations (latitude, longitude, name, created_at, last_used_at)
		 VALUES (?, ?, ?, ?, ?)`,
		loc.Coordinates().Latitude(),
		loc.Coordinates().Longitude(),
		name,
		toMillis(loc.CreatedAt()),
		toMillis(loc.LastUsedAt()),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}
		return fmt.Errorf("insert location: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert location id: %w", err)
	}
	loc.SetID(id)
	return nil
}

// GetLocation loads one location with its forecast entries.
func (s *Store) GetLocation(ctx context.Context, id int64) (*domain.Location, error) {
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, latitude, longitude, name, created_at, last_used_at
		 FROM locations WHERE id = ?`,
		id,
	)

	loc, err := scanLocation(row, nil)
	if err != nil {
		return nil, err
	}

	entries, err := s.forecastsForLocation(ctx, id)
	if err != nil {
		return nil, err
	}

	return domain.RehydrateLocation(loc.ID(), loc.Coordinates(), loc.Name(), loc.CreatedAt(), loc.LastUsedAt(), entries), nil
}

// FindLocationByCoordinates looks up a location by exact coordinate match.
func (s *Store) FindLocationByCoordinates(ctx context.Context, coords domain.Coordinates) (*domain.Location, error) {
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, latitude, longitude, name, created_at, last_used_at
		 FROM locations WHERE latitude = ? AND longitude = ?`,
		coords.Latitude(),
		coords.Longitude(),
	)
	return scanLocation(row, nil)
}

// TouchLocation persists an updated last_used_at timestamp.
func (s *Store) TouchLocation(ctx context.Context, id int64, lastUsedAt time.Time) error {
	res, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE locations SET last_used_at = ? WHERE id = ?`,
		toMillis(lastUsedAt),
		id,
	)
	if err != nil {
		return fmt.Errorf("touch location: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("touch location: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteLocation deletes one location; forecast entries cascade.
func (s *Store) DeleteLocation(ctx context.Context, id int64) error {
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM locations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete location: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete location: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListLocations returns all locations, most recently used first. Ties are
// broken by id ascending so the order is stable.
func (s *Store) ListLocations(ctx context.Context) ([]*domain.Location, error) {
	return s.listLocationsWhere(ctx,
		`SELECT id, latitude, longitude, name, created_at, last_used_at
		 FROM locations
		 ORDER BY last_used_at DESC, id ASC`)
}

// ListLocationsUsedSince returns locations with last_used_at at or after the
// cutoff, most recently used first.
func (s *Store) ListLocationsUsedSince(ctx context.Context, cutoff time.Time) ([]*domain.Location, error) {
	return s.listLocationsWhere(ctx,
		`SELECT id, latitude, longitude, name, created_at, last_used_at
		 FROM locations
		 WHERE last_used_at >= ?
		 ORDER BY last_used_at DESC, id ASC`,
		toMillis(cutoff))
}

func (s *Store) listLocationsWhere(ctx context.Context, query string, args ...any) ([]*domain.Location, error) {
	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	var locations []*domain.Location
	for rows.Next() {
		loc, err := scanLocation(rows, nil)
		if err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return locations, nil
}

// ReplaceForecasts atomically swaps the stored entries for one location:
// a reader never observes an empty or partial set. The persisted entries are
// returned with their assigned ids.
func (s *Store) ReplaceForecasts(ctx context.Context, locationID int64, entries []domain.ForecastEntry) ([]domain.ForecastEntry, error) {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin replace forecasts: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM forecast_entries WHERE location_id = ?`, locationID); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("delete stale forecasts: %w", err)
	}

	persisted := make([]domain.ForecastEntry, 0, len(entries))
	for _, entry := range entries {
		res, err := tx.ExecContext(
			ctx,
			`INSERT INTO forecast_entries (
			   location_id, forecast_date,
			   temperature, max_temperature, min_temperature,
			   wind_speed, weather_code, retrieved_at
			 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			entry.LocationID(),
			entry.ForecastDate().Format(domain.DateLayout),
			entry.Temperature().Current(),
			entry.Temperature().Maximum(),
			entry.Temperature().Minimum(),
			entry.WindSpeed().Value(),
			entry.WeatherCode(),
			toMillis(entry.RetrievedAt()),
		)
		if err != nil {
			_ = tx.Rollback()
			if isUniqueViolation(err) {
				return nil, store.ErrDuplicate
			}
			return nil, fmt.Errorf("insert forecast entry: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("insert forecast entry id: %w", err)
		}
		persisted = append(persisted, domain.RehydrateForecastEntry(
			id,
			entry.LocationID(),
			entry.ForecastDate(),
			entry.Temperature(),
			entry.WindSpeed(),
			entry.WeatherCode(),
			entry.RetrievedAt(),
		))
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit replace forecasts: %w", err)
	}
	return persisted, nil
}

func (s *Store) forecastsForLocation(ctx context.Context, locationID int64) ([]domain.ForecastEntry, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, location_id, forecast_date,
		        temperature, max_temperature, min_temperature,
		        wind_speed, weather_code, retrieved_at
		 FROM forecast_entries
		 WHERE location_id = ?
		 ORDER BY forecast_date ASC`,
		locationID,
	)
	if err != nil {
		return nil, fmt.Errorf("load forecasts: %w", err)
	}
	defer rows.Close()

	var entries []domain.ForecastEntry
	for rows.Next() {
		var (
			id, locID, retrievedAt          int64
			dateStr                         string
			current, maximum, minimum, wind float64
			weatherCode                     int
		)
		if err := rows.Scan(&id, &locID, &dateStr, &current, &maximum, &minimum, &wind, &weatherCode, &retrievedAt); err != nil {
			return nil, fmt.Errorf("scan forecast entry: %w", err)
		}

		date, err := time.Parse(domain.DateLayout, dateStr)
		if err != nil {
			return nil, fmt.Errorf("parse forecast date %q: %w", dateStr, err)
		}
		temperature, err := domain.NewTemperature(current, maximum, minimum)
		if err != nil {
			return nil, fmt.Errorf("rehydrate temperature: %w", err)
		}
		windSpeed, err := domain.NewWindSpeed(wind)
		if err != nil {
			return nil, fmt.Errorf("rehydrate wind speed: %w", err)
		}

		entries = append(entries, domain.RehydrateForecastEntry(
			id, locID, date, temperature, windSpeed, weatherCode, fromMillis(retrievedAt),
		))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load forecasts: %w", err)
	}
	return entries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLocation(row rowScanner, entries []domain.ForecastEntry) (*domain.Location, error) {
	var (
		id, createdAt, lastUsedAt int64
		latitude, longitude       float64
		name                      sql.NullString
	)
	if err := row.Scan(&id, &latitude, &longitude, &name, &createdAt, &lastUsedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("scan location: %w", err)
	}

	coords, err := domain.NewCoordinates(latitude, longitude)
	if err != nil {
		return nil, fmt.Errorf("rehydrate coordinates: %w", err)
	}

	return domain.RehydrateLocation(id, coords, name.String, fromMillis(createdAt), fromMillis(lastUsedAt), entries), nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
