package weather

import (
	"sort"
	"time"

	"github.com/pkarolak/weather-forecast-api/internal/domain"
)

// DailyForecast is one day of the client-facing forecast response.
type DailyForecast struct {
	Date           string  `json:"date"`
	Temperature    float64 `json:"temperature"`
	MaxTemperature float64 `json:"maxTemperature"`
	MinTemperature float64 `json:"minTemperature"`
	WindSpeed      float64 `json:"windSpeed"`
	WeatherCode    int     `json:"weatherCode"`
}

// ForecastResponse is the client-facing forecast for one location.
// FromCache is true when the stored entries were fresh and no upstream
// call was made.
type ForecastResponse struct {
	LocationID     int64           `json:"locationId"`
	Latitude       float64         `json:"latitude"`
	Longitude      float64         `json:"longitude"`
	Name           *string         `json:"name"`
	DailyForecasts []DailyForecast `json:"dailyForecasts"`
	RetrievedAt    time.Time       `json:"retrievedAt"`
	FromCache      bool            `json:"fromCache"`
}

func buildResponse(loc *domain.Location, entries []domain.ForecastEntry, fromCache bool) *ForecastResponse {
	// Callers are free to hand entries in storage order; the response is
	// always sorted ascending by forecast date.
	sorted := make([]domain.ForecastEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ForecastDate().Before(sorted[j].ForecastDate())
	})

	daily := make([]DailyForecast, 0, len(sorted))
	retrievedAt := time.Now().UTC()
	for i, entry := range sorted {
		daily = append(daily, DailyForecast{
			Date:           entry.ForecastDate().Format(domain.DateLayout),
			Temperature:    entry.Temperature().Current(),
			MaxTemperature: entry.Temperature().Maximum(),
			MinTemperature: entry.Temperature().Minimum(),
			WindSpeed:      entry.WindSpeed().Value(),
			WeatherCode:    entry.WeatherCode(),
		})
		if i == 0 || entry.RetrievedAt().After(retrievedAt) {
			retrievedAt = entry.RetrievedAt()
		}
	}

	var name *string
	if loc.Name() != "" {
		n := loc.Name()
		name = &n
	}

	return &ForecastResponse{
		LocationID:     loc.ID(),
		Latitude:       loc.Coordinates().Latitude(),
		Longitude:      loc.Coordinates().Longitude(),
		Name:           name,
		DailyForecasts: daily,
		RetrievedAt:    retrievedAt,
		FromCache:      fromCache,
	}
}
