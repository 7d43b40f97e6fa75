package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pkarolak/weather-forecast-api/internal/domain"
	"github.com/pkarolak/weather-forecast-api/internal/store"
)

// Service orchestrates forecast retrieval: resolve a location, evaluate the
// cached entries, refetch from the upstream when stale, and atomically
// replace the stored set.
type Service struct {
	store    Store
	registry Registry
	forecast ForecastProvider
	geo      GeoProvider
	window   time.Duration
	logger   *slog.Logger

	// Serializes the delete+insert replace step per location so two racing
	// refreshes commit complete sets in some order, never interleaved.
	replaceLocks keyedMutex
}

// NewService creates a Service. A non-positive freshness window falls back
// to DefaultFreshnessWindow.
func NewService(store Store, registry Registry, forecast ForecastProvider, geo GeoProvider, window time.Duration, logger *slog.Logger) *Service {
	if window <= 0 {
		window = DefaultFreshnessWindow
	}
	return &Service{
		store:    store,
		registry: registry,
		forecast: forecast,
		geo:      geo,
		window:   window,
		logger:   logger,
	}
}

// ForecastByLocationID returns the forecast for a known location id,
// serving stored entries while they are fresh.
func (s *Service) ForecastByLocationID(ctx context.Context, id int64) (*ForecastResponse, error) {
	return s.getForecast(ctx, func(ctx context.Context) (*domain.Location, error) {
		loc, err := s.store.GetLocation(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrLocationNotFound, id)
		}
		if err != nil {
			return nil, err
		}
		return loc, nil
	})
}

// ForecastByTarget geolocates an IP address or hostname, registers (or
// touches) the matching location, and returns its forecast.
func (s *Service) ForecastByTarget(ctx context.Context, target string) (*ForecastResponse, error) {
	return s.getForecast(ctx, func(ctx context.Context) (*domain.Location, error) {
		geo, err := s.geo.Locate(ctx, target)
		if err != nil {
			return nil, err
		}
		if geo.Status != "success" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTarget, target)
		}

		coords, err := domain.NewCoordinates(geo.Latitude, geo.Longitude)
		if err != nil {
			return nil, fmt.Errorf("%w: provider returned %v,%v", ErrUpstreamContract, geo.Latitude, geo.Longitude)
		}

		loc, created, err := s.registry.RegisterOrTouch(ctx, coords, geo.City)
		if err != nil {
			return nil, err
		}
		if created {
			s.logger.Info("registered location from target",
				"target", target, "location_id", loc.ID(), "city", geo.City)
		}

		// Reload with forecast entries so the cache decision sees them.
		return s.store.GetLocation(ctx, loc.ID())
	})
}

// RefreshIfStale refetches a location's forecast when its cache is stale.
// It serves the background refresh job and does not bump usage.
func (s *Service) RefreshIfStale(ctx context.Context, id int64) error {
	loc, err := s.store.GetLocation(ctx, id)
	if err != nil {
		return err
	}
	if !IsStale(loc.Forecasts(), time.Now().UTC(), s.window) {
		return nil
	}
	_, err = s.fetchAndReplace(ctx, loc)
	return err
}

// getForecast is the shared cache-then-fetch-then-replace workflow. The
// resolver strategy is the only difference between the by-id and by-target
// entry points.
func (s *Service) getForecast(ctx context.Context, resolve func(context.Context) (*domain.Location, error)) (*ForecastResponse, error) {
	loc, err := resolve(ctx)
	if err != nil {
		return nil, err
	}

	loc.UpdateUsage()
	if err := s.store.TouchLocation(ctx, loc.ID(), loc.LastUsedAt()); err != nil {
		return nil, fmt.Errorf("persist usage for location %d: %w", loc.ID(), err)
	}

	entries := loc.Forecasts()
	if !IsStale(entries, time.Now().UTC(), s.window) {
		s.logger.Debug("cache hit", "location_id", loc.ID())
		return buildResponse(loc, entries, true), nil
	}

	s.logger.Info("cache miss or expired, fetching upstream", "location_id", loc.ID())
	fresh, err := s.fetchAndReplace(ctx, loc)
	if err != nil {
		return nil, err
	}
	return buildResponse(loc, fresh, false), nil
}

// fetchAndReplace fetches the upstream forecast and swaps the stored set in
// one transaction.
func (s *Service) fetchAndReplace(ctx context.Context, loc *domain.Location) ([]domain.ForecastEntry, error) {
	data, err := s.forecast.FetchForecast(ctx, loc.Coordinates())
	if err != nil {
		return nil, err
	}

	entries, err := buildEntries(loc.ID(), data.Daily)
	if err != nil {
		return nil, err
	}

	unlock := s.replaceLocks.lock(loc.ID())
	defer unlock()

	persisted, err := s.store.ReplaceForecasts(ctx, loc.ID(), entries)
	if err != nil {
		return nil, fmt.Errorf("replace forecasts for location %d: %w", loc.ID(), err)
	}

	s.logger.Info("stored fresh forecast", "location_id", loc.ID(), "days", len(persisted))
	return persisted, nil
}

// buildEntries zips the upstream's parallel daily series into one
// ForecastEntry per index. A length mismatch between the sequences violates
// the provider contract and is never silently truncated.
func buildEntries(locationID int64, daily DailySeries) ([]domain.ForecastEntry, error) {
	n := len(daily.Dates)
	if len(daily.MaxTemperatures) != n ||
		len(daily.MinTemperatures) != n ||
		len(daily.WeatherCodes) != n ||
		len(daily.MaxWindSpeeds) != n {
		return nil, fmt.Errorf("%w: daily series lengths %d/%d/%d/%d/%d",
			ErrUpstreamContract,
			n, len(daily.MaxTemperatures), len(daily.MinTemperatures),
			len(daily.WeatherCodes), len(daily.MaxWindSpeeds))
	}

	entries := make([]domain.ForecastEntry, 0, n)
	for i := 0; i < n; i++ {
		date, err := time.Parse(domain.DateLayout, daily.Dates[i])
		if err != nil {
			return nil, fmt.Errorf("%w: bad date %q", ErrUpstreamContract, daily.Dates[i])
		}

		maxTemp := daily.MaxTemperatures[i]
		minTemp := daily.MinTemperatures[i]
		temperature, err := domain.NewTemperature((maxTemp+minTemp)/2, maxTemp, minTemp)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUpstreamContract, err)
		}
		windSpeed, err := domain.NewWindSpeed(daily.MaxWindSpeeds[i])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUpstreamContract, err)
		}

		entry, err := domain.NewForecastEntry(locationID, date, temperature, windSpeed, daily.WeatherCodes[i])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUpstreamContract, err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// keyedMutex provides one mutex per location id. The map is bounded by the
// number of registered locations, so entries are not reclaimed.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func (k *keyedMutex) lock(id int64) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[int64]*sync.Mutex)
	}
	l, ok := k.locks[id]
	if !ok {
		l = &sync.Mutex{}
		k.locks[id] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
