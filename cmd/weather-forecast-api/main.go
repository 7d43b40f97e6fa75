package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/pkarolak/weather-forecast-api/internal/api/http"
	"github.com/pkarolak/weather-forecast-api/internal/config"
	"github.com/pkarolak/weather-forecast-api/internal/domain"
	"github.com/pkarolak/weather-forecast-api/internal/locations"
	"github.com/pkarolak/weather-forecast-api/internal/scheduler"
	"github.com/pkarolak/weather-forecast-api/internal/store"
	"github.com/pkarolak/weather-forecast-api/internal/store/sqlite"
	"github.com/pkarolak/weather-forecast-api/internal/weather"
	"github.com/pkarolak/weather-forecast-api/internal/weather/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	slogger := cfg.NewLogger()

	// SQLite store with embedded migrations.
	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer db.Close()

	if err := seedLocations(context.Background(), db); err != nil {
		log.Fatalf("failed to seed locations: %v", err)
	}

	// Shared HTTP client for outbound provider calls; its timeout bounds
	// each attempt, the providers' total timeout bounds the whole call.
	httpCfg := providers.HTTPClientConfig{
		Client:       &http.Client{Timeout: cfg.UpstreamAttemptTimeout},
		Backoff:      providers.DefaultBackoff(),
		TotalTimeout: cfg.UpstreamTotalTimeout,
	}
	openMeteo := providers.NewOpenMeteoProvider(httpCfg, cfg.OpenMeteoBaseURL)
	ipAPI := providers.NewIPAPIProvider(httpCfg, cfg.IPAPIBaseURL)

	registry := locations.NewRegistry(db, slogger)
	svc := weather.NewService(db, registry, openMeteo, ipAPI, cfg.CacheTTL, slogger)

	// Background refresh keeps forecasts warm for recently used locations.
	var sched *scheduler.Scheduler
	if cfg.RefreshEnabled {
		sched = scheduler.New(svc, db, cfg.RefreshInterval, slogger)
		if err := sched.Start(); err != nil {
			log.Fatalf("failed to start refresh scheduler: %v", err)
		}
		defer sched.Stop()
	}

	app := fiber.New(fiber.Config{
		AppName:               "weather-forecast-api",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				code = fiberErr.Code
			} else {
				slogger.Error("unhandled request error", "path", c.Path(), "error", err)
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	// Aggregate health: store plus both upstream circuit breakers.
	app.Get("/health", func(c *fiber.Ctx) error {
		storeStatus := "ok"
		status := "ok"
		if err := db.Ping(c.UserContext()); err != nil {
			storeStatus = "unreachable"
			status = "degraded"
		}
		weatherStatus := circuitHealth(openMeteo.CircuitState())
		geoStatus := circuitHealth(ipAPI.CircuitState())
		if weatherStatus != "ok" || geoStatus != "ok" {
			status = "degraded"
		}

		code := fiber.StatusOK
		if status != "ok" {
			code = fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"details": fiber.Map{
				"store":       storeStatus,
				"openmeteo":   weatherStatus,
				"geolocation": geoStatus,
			},
		})
	})

	httpapi.RegisterRoutes(app, registry, svc)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			slogger.Error("fiber server stopped", "error", err)
		}
	}()
	slogger.Info("server started", "port", cfg.Port)

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slogger.Error("error during shutdown", "error", err)
	}
}

func circuitHealth(state string) string {
	if state == "closed" {
		return "ok"
	}
	return state
}

// seedLocations inserts a few well-known cities on first start so the API
// is usable out of the box.
func seedLocations(ctx context.Context, db *sqlite.Store) error {
	existing, err := db.ListLocations(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	seeds := []struct {
		lat, lon float64
		name     string
	}{
		{52.2297, 21.0122, "Warsaw"},
		{51.5074, -0.1278, "London"},
		{40.7128, -74.0060, "New York"},
	}

	for _, seed := range seeds {
		coords, err := domain.NewCoordinates(seed.lat, seed.lon)
		if err != nil {
			return err
		}
		loc, err := domain.NewLocation(coords, seed.name)
		if err != nil {
			return err
		}
		if err := db.InsertLocation(ctx, loc); err != nil && !errors.Is(err, store.ErrDuplicate) {
			return err
		}
	}
	return nil
}
