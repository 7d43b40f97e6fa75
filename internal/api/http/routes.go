// Package httpapi wires the service into Fiber routes.
package httpapi

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/pkarolak/weather-forecast-api/internal/domain"
	"github.com/pkarolak/weather-forecast-api/internal/store"
	"github.com/pkarolak/weather-forecast-api/internal/weather"
)

var validate = validator.New()

// WeatherService is the forecast workflow surface the handlers need.
type WeatherService interface {
	ForecastByLocationID(ctx context.Context, id int64) (*weather.ForecastResponse, error)
	ForecastByTarget(ctx context.Context, target string) (*weather.ForecastResponse, error)
}

// LocationRegistry is the location management surface the handlers need.
type LocationRegistry interface {
	RegisterOrTouch(ctx context.Context, coords domain.Coordinates, name string) (*domain.Location, bool, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*domain.Location, error)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, registry LocationRegistry, svc WeatherService) {
	api := app.Group("/api")

	api.Post("/locations", func(c *fiber.Ctx) error {
		var req addLocationRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		coords, err := domain.NewCoordinates(*req.Latitude, *req.Longitude)
		if err != nil {
			return mapError(err)
		}

		loc, created, err := registry.RegisterOrTouch(c.UserContext(), coords, req.Name)
		if err != nil {
			return mapError(err)
		}

		status := fiber.StatusOK
		if created {
			status = fiber.StatusCreated
		}
		return c.Status(status).JSON(toLocationResponse(loc))
	})

	api.Get("/locations", func(c *fiber.Ctx) error {
		locs, err := registry.List(c.UserContext())
		if err != nil {
			return mapError(err)
		}

		out := make([]locationResponse, 0, len(locs))
		for _, loc := range locs {
			out = append(out, toLocationResponse(loc))
		}
		return c.JSON(out)
	})

	api.Delete("/locations/:id", func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "id must be an integer")
		}

		if err := registry.Delete(c.UserContext(), int64(id)); err != nil {
			return mapError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	api.Get("/weather/locations/:id", func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "id must be an integer")
		}

		resp, err := svc.ForecastByLocationID(c.UserContext(), int64(id))
		if err != nil {
			return mapError(err)
		}
		return c.JSON(resp)
	})

	api.Get("/weather/by-target/:target", func(c *fiber.Ctx) error {
		target := c.Params("target")
		if target == "" {
			return fiber.NewError(fiber.StatusBadRequest, "target is required")
		}

		resp, err := svc.ForecastByTarget(c.UserContext(), target)
		if err != nil {
			return mapError(err)
		}
		return c.JSON(resp)
	})
}

// addLocationRequest is the POST /api/locations body. Coordinates use
// pointers so a missing field is distinguishable from zero.
type addLocationRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	Name      string   `json:"name" validate:"omitempty,max=200"`
}

type locationResponse struct {
	ID         int64     `json:"id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Name       *string   `json:"name"`
	CreatedAt  time.Time `json:"createdAt"`
	LastUsedAt time.Time `json:"lastUsedAt"`
}

func toLocationResponse(loc *domain.Location) locationResponse {
	var name *string
	if loc.Name() != "" {
		n := loc.Name()
		name = &n
	}
	return locationResponse{
		ID:         loc.ID(),
		Latitude:   loc.Coordinates().Latitude(),
		Longitude:  loc.Coordinates().Longitude(),
		Name:       name,
		CreatedAt:  loc.CreatedAt(),
		LastUsedAt: loc.LastUsedAt(),
	}
}

// mapError translates service errors into client-visible statuses. Nothing
// is swallowed: unknown errors surface as 500 through the app's central
// error handler.
func mapError(err error) error {
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return fiber.NewError(fiber.StatusBadRequest, validationErr.Error())
	case errors.Is(err, weather.ErrLocationNotFound), errors.Is(err, store.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "location not found")
	case errors.Is(err, weather.ErrInvalidTarget):
		return fiber.NewError(fiber.StatusBadRequest, "target could not be geolocated")
	case errors.Is(err, weather.ErrUpstreamContract):
		return fiber.NewError(fiber.StatusBadGateway, "upstream returned a malformed response")
	case errors.Is(err, weather.ErrUpstreamUnavailable), errors.Is(err, weather.ErrUpstreamTimeout):
		return fiber.NewError(fiber.StatusServiceUnavailable, "weather service unavailable")
	default:
		return err
	}
}
