// Package scheduler keeps forecasts warm for recently used locations.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/pkarolak/weather-forecast-api/internal/domain"
)

// recencyWindow bounds which locations the refresh job considers: only
// those used within the last day are worth keeping warm.
const recencyWindow = 24 * time.Hour

// jobTimeout bounds one full refresh pass.
const jobTimeout = 2 * time.Minute

// Refresher refetches a location's forecast when its cache is stale.
type Refresher interface {
	RefreshIfStale(ctx context.Context, id int64) error
}

// LocationSource lists locations used since a cutoff.
type LocationSource interface {
	ListLocationsUsedSince(ctx context.Context, cutoff time.Time) ([]*domain.Location, error)
}

// Scheduler periodically refreshes stale forecasts so interactive requests
// mostly hit a warm cache.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher Refresher
	source    LocationSource
	interval  time.Duration
	logger    *slog.Logger
}

// New creates a Scheduler.
func New(refresher Refresher, source LocationSource, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		refresher: refresher,
		source:    source,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 30
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(s.runOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	locs, err := s.source.ListLocationsUsedSince(ctx, time.Now().UTC().Add(-recencyWindow))
	if err != nil {
		s.logger.Error("refresh job: list locations failed", "error", err)
		return
	}
	if len(locs) == 0 {
		return
	}

	s.logger.Debug("refresh job: checking locations", "count", len(locs))

	// Failures are logged and never abort the pass; the next interactive
	// request falls back to a synchronous fetch.
	for _, loc := range locs {
		if ctx.Err() != nil {
			return
		}
		if err := s.refresher.RefreshIfStale(ctx, loc.ID()); err != nil {
			s.logger.Warn("refresh job: refresh failed",
				"location_id", loc.ID(), "error", err)
		}
	}
}
