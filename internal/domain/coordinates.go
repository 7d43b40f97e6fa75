// Package domain contains the core model of the service: validated value
// objects and the Location/ForecastEntry aggregates, independent of the
// database and API layers.
package domain

// Coordinates is an immutable latitude/longitude pair. Two values with the
// same latitude and longitude are interchangeable.
type Coordinates struct {
	latitude  float64
	longitude float64
}

// NewCoordinates validates and constructs a Coordinates value.
// Latitude is checked before longitude.
func NewCoordinates(latitude, longitude float64) (Coordinates, error) {
	if latitude < -90 || latitude > 90 {
		return Coordinates{}, validationErrorf("latitude", "must be between -90 and 90, got %v", latitude)
	}
	if longitude < -180 || longitude > 180 {
		return Coordinates{}, validationErrorf("longitude", "must be between -180 and 180, got %v", longitude)
	}
	return Coordinates{latitude: latitude, longitude: longitude}, nil
}

func (c Coordinates) Latitude() float64 { return c.latitude }

func (c Coordinates) Longitude() float64 { return c.longitude }
