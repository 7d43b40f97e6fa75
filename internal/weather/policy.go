package weather

import (
	"time"

	"github.com/pkarolak/weather-forecast-api/internal/domain"
)

// DefaultFreshnessWindow is how long a stored forecast set stays fresh.
const DefaultFreshnessWindow = time.Hour

// IsStale decides whether a location's stored forecast entries need to be
// refetched. An empty set is always stale. Otherwise the set is stale when
// the most recent RetrievedAt is older than now minus the freshness window.
//
// Replacement is atomic, so entries normally share one RetrievedAt; a
// heterogeneous set is tolerated and judged by its maximum timestamp.
func IsStale(entries []domain.ForecastEntry, now time.Time, window time.Duration) bool {
	if len(entries) == 0 {
		return true
	}

	var latest time.Time
	for _, entry := range entries {
		if entry.RetrievedAt().After(latest) {
			latest = entry.RetrievedAt()
		}
	}

	return now.Sub(latest) > window
}
