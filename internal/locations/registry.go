// Package locations maps coordinates to durable Location identities,
// enforcing one location per coordinate pair.
package locations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkarolak/weather-forecast-api/internal/domain"
	"github.com/pkarolak/weather-forecast-api/internal/store"
)

// Store is the persistence contract the registry needs.
type Store interface {
	InsertLocation(ctx context.Context, loc *domain.Location) error
	FindLocationByCoordinates(ctx context.Context, coords domain.Coordinates) (*domain.Location, error)
	TouchLocation(ctx context.Context, id int64, lastUsedAt time.Time) error
	DeleteLocation(ctx context.Context, id int64) error
	ListLocations(ctx context.Context) ([]*domain.Location, error)
}

// Registry implements find-or-create semantics over the location store.
type Registry struct {
	store  Store
	logger *slog.Logger
}

// NewRegistry creates a Registry.
func NewRegistry(store Store, logger *slog.Logger) *Registry {
	return &Registry{store: store, logger: logger}
}

// FindByCoordinates looks up a location by exact coordinate match. There is
// no proximity matching; store.ErrNotFound means no exact row exists.
func (r *Registry) FindByCoordinates(ctx context.Context, coords domain.Coordinates) (*domain.Location, error) {
	return r.store.FindLocationByCoordinates(ctx, coords)
}

// RegisterOrTouch returns the location for the given coordinates, creating
// it when absent. An existing location gets its usage timestamp bumped. The
// returned flag reports whether a new row was created.
//
// Two concurrent identical registrations may both miss the lookup; the
// unique index on (latitude, longitude) is the final arbiter. The loser's
// insert fails with store.ErrDuplicate and falls back to re-reading the
// now-present row instead of erroring out.
func (r *Registry) RegisterOrTouch(ctx context.Context, coords domain.Coordinates, name string) (*domain.Location, bool, error) {
	existing, err := r.store.FindLocationByCoordinates(ctx, coords)
	if err == nil {
		return r.touch(ctx, existing)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, fmt.Errorf("look up location: %w", err)
	}

	loc, err := domain.NewLocation(coords, name)
	if err != nil {
		return nil, false, err
	}

	err = r.store.InsertLocation(ctx, loc)
	if err == nil {
		return loc, true, nil
	}
	if !errors.Is(err, store.ErrDuplicate) {
		return nil, false, fmt.Errorf("insert location: %w", err)
	}

	// Lost the insert race; the row exists now.
	r.logger.Debug("location insert raced, re-reading",
		"latitude", coords.Latitude(), "longitude", coords.Longitude())
	existing, err = r.store.FindLocationByCoordinates(ctx, coords)
	if err != nil {
		return nil, false, fmt.Errorf("re-read location after duplicate insert: %w", err)
	}
	return r.touch(ctx, existing)
}

func (r *Registry) touch(ctx context.Context, loc *domain.Location) (*domain.Location, bool, error) {
	loc.UpdateUsage()
	if err := r.store.TouchLocation(ctx, loc.ID(), loc.LastUsedAt()); err != nil {
		return nil, false, fmt.Errorf("touch location %d: %w", loc.ID(), err)
	}
	return loc, false, nil
}

// Delete removes a location and, by cascade, all its forecast entries.
// A second delete of the same id reports store.ErrNotFound.
func (r *Registry) Delete(ctx context.Context, id int64) error {
	return r.store.DeleteLocation(ctx, id)
}

// List returns all locations, most recently used first.
func (r *Registry) List(ctx context.Context) ([]*domain.Location, error) {
	return r.store.ListLocations(ctx)
}
