package weather

import "errors"

var (
	// ErrLocationNotFound means the requested location id does not exist.
	ErrLocationNotFound = errors.New("weather: location not found")

	// ErrInvalidTarget means the geolocation provider could not resolve the
	// requested IP or hostname. This is the client's fault.
	ErrInvalidTarget = errors.New("weather: target could not be geolocated")

	// ErrUpstreamUnavailable means an upstream call failed after the
	// resilience layer exhausted its retries, or its circuit is open. The
	// orchestrator does not retry further.
	ErrUpstreamUnavailable = errors.New("weather: upstream unavailable")

	// ErrUpstreamTimeout means an upstream call exceeded its time budget.
	ErrUpstreamTimeout = errors.New("weather: upstream timeout")

	// ErrUpstreamContract means an upstream response was malformed, e.g.
	// the daily series were not index-aligned. Always a bug signal.
	ErrUpstreamContract = errors.New("weather: upstream contract violation")
)
