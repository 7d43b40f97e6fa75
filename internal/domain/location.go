package domain

import (
	"strings"
	"time"
)

// MaxLocationNameLength bounds the optional location name.
const MaxLocationNameLength = 200

// Location is the aggregate root for a registered coordinate pair. At most
// one Location exists per (latitude, longitude); the storage layer's unique
// index enforces that. A Location owns its forecast entries: deleting it
// deletes them.
type Location struct {
	id          int64
	coordinates Coordinates
	name        string // empty means unnamed
	createdAt   time.Time
	lastUsedAt  time.Time
	forecasts   []ForecastEntry
}

// NewLocation creates an unpersisted Location, stamping createdAt and
// lastUsedAt to now. The id is assigned by the store on insert.
func NewLocation(coordinates Coordinates, name string) (*Location, error) {
	loc := &Location{
		coordinates: coordinates,
		createdAt:   time.Now().UTC(),
	}
	loc.lastUsedAt = loc.createdAt
	if strings.TrimSpace(name) != "" {
		if err := loc.SetName(name); err != nil {
			return nil, err
		}
	}
	return loc, nil
}

// RehydrateLocation reconstructs a persisted Location from stored fields.
// Only the storage layer should call it.
func RehydrateLocation(id int64, coordinates Coordinates, name string, createdAt, lastUsedAt time.Time, forecasts []ForecastEntry) *Location {
	return &Location{
		id:          id,
		coordinates: coordinates,
		name:        name,
		createdAt:   createdAt.UTC(),
		lastUsedAt:  lastUsedAt.UTC(),
		forecasts:   forecasts,
	}
}

func (l *Location) ID() int64                { return l.id }
func (l *Location) Coordinates() Coordinates { return l.coordinates }
func (l *Location) Name() string             { return l.name }
func (l *Location) CreatedAt() time.Time     { return l.createdAt }
func (l *Location) LastUsedAt() time.Time    { return l.lastUsedAt }

// Forecasts returns the entries loaded with this Location.
func (l *Location) Forecasts() []ForecastEntry { return l.forecasts }

// SetID records the identity assigned on insert.
func (l *Location) SetID(id int64) { l.id = id }

// UpdateUsage bumps lastUsedAt to now.
func (l *Location) UpdateUsage() {
	l.lastUsedAt = time.Now().UTC()
}

// SetName renames the location. Empty or whitespace-only names are rejected.
func (l *Location) SetName(name string) error {
	if strings.TrimSpace(name) == "" {
		return validationErrorf("name", "cannot be empty")
	}
	if len(name) > MaxLocationNameLength {
		return validationErrorf("name", "cannot exceed %d characters", MaxLocationNameLength)
	}
	l.name = name
	return nil
}

// ClearName removes the optional name.
func (l *Location) ClearName() {
	l.name = ""
}
