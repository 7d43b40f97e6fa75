package weather

import (
	"context"
	"time"

	"github.com/pkarolak/weather-forecast-api/internal/domain"
)

// CurrentConditions is the upstream's current-weather reading.
type CurrentConditions struct {
	Temperature float64
	WindSpeed   float64
	WeatherCode int
}

// DailySeries carries the upstream's daily forecast as parallel sequences,
// index-aligned by position. Dates use the YYYY-MM-DD layout.
type DailySeries struct {
	Dates           []string
	MaxTemperatures []float64
	MinTemperatures []float64
	WeatherCodes    []int
	MaxWindSpeeds   []float64
}

// ForecastData is one upstream forecast response.
type ForecastData struct {
	Current *CurrentConditions
	Daily   DailySeries
}

// ForecastProvider abstracts the upstream weather service.
type ForecastProvider interface {
	Name() string
	FetchForecast(ctx context.Context, coords domain.Coordinates) (ForecastData, error)
}

// GeoResult is one geolocation lookup result. Status != "success" signals
// the target could not be resolved.
type GeoResult struct {
	Status    string
	Latitude  float64
	Longitude float64
	City      string
	Country   string
}

// GeoProvider abstracts the upstream geolocation service.
type GeoProvider interface {
	Name() string
	Locate(ctx context.Context, target string) (GeoResult, error)
}

// Store is the persistence contract the orchestrator needs.
type Store interface {
	GetLocation(ctx context.Context, id int64) (*domain.Location, error)
	TouchLocation(ctx context.Context, id int64, lastUsedAt time.Time) error
	ReplaceForecasts(ctx context.Context, locationID int64, entries []domain.ForecastEntry) ([]domain.ForecastEntry, error)
}

// Registry resolves coordinates to a durable location identity.
type Registry interface {
	RegisterOrTouch(ctx context.Context, coords domain.Coordinates, name string) (*domain.Location, bool, error)
}
