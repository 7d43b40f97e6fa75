package domain

import "time"

// DateLayout is the storage and wire format for forecast dates.
const DateLayout = "2006-01-02"

// ForecastEntry is one day's forecast for one location. Entries are
// immutable once created; staleness is handled by delete-and-recreate,
// never by in-place update. At most one entry exists per
// (locationID, forecastDate).
type ForecastEntry struct {
	id           int64
	locationID   int64
	forecastDate time.Time // calendar date, midnight UTC
	temperature  Temperature
	windSpeed    WindSpeed
	weatherCode  int
	retrievedAt  time.Time
}

// NewForecastEntry creates an unpersisted entry, stamping retrievedAt to now.
func NewForecastEntry(locationID int64, forecastDate time.Time, temperature Temperature, windSpeed WindSpeed, weatherCode int) (ForecastEntry, error) {
	if locationID <= 0 {
		return ForecastEntry{}, validationErrorf("location id", "must be positive, got %d", locationID)
	}
	if weatherCode < 0 {
		return ForecastEntry{}, validationErrorf("weather code", "must be non-negative, got %d", weatherCode)
	}
	return ForecastEntry{
		locationID:   locationID,
		forecastDate: truncateToDate(forecastDate),
		temperature:  temperature,
		windSpeed:    windSpeed,
		weatherCode:  weatherCode,
		retrievedAt:  time.Now().UTC(),
	}, nil
}

// RehydrateForecastEntry reconstructs a persisted entry from stored fields.
// Only the storage layer should call it.
func RehydrateForecastEntry(id, locationID int64, forecastDate time.Time, temperature Temperature, windSpeed WindSpeed, weatherCode int, retrievedAt time.Time) ForecastEntry {
	return ForecastEntry{
		id:           id,
		locationID:   locationID,
		forecastDate: truncateToDate(forecastDate),
		temperature:  temperature,
		windSpeed:    windSpeed,
		weatherCode:  weatherCode,
		retrievedAt:  retrievedAt.UTC(),
	}
}

func (f ForecastEntry) ID() int64                { return f.id }
func (f ForecastEntry) LocationID() int64        { return f.locationID }
func (f ForecastEntry) ForecastDate() time.Time  { return f.forecastDate }
func (f ForecastEntry) Temperature() Temperature { return f.temperature }
func (f ForecastEntry) WindSpeed() WindSpeed     { return f.windSpeed }
func (f ForecastEntry) WeatherCode() int         { return f.weatherCode }
func (f ForecastEntry) RetrievedAt() time.Time   { return f.retrievedAt }

func truncateToDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
