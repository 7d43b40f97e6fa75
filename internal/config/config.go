// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the service.
type AppConfig struct {
	Port   string
	DBPath string

	// CacheTTL is the forecast freshness window.
	CacheTTL time.Duration

	OpenMeteoBaseURL string
	IPAPIBaseURL     string

	// Per-attempt and whole-call budgets for upstream HTTP requests.
	UpstreamAttemptTimeout time.Duration
	UpstreamTotalTimeout   time.Duration

	// Background refresh of stale forecasts for recently used locations.
	RefreshEnabled  bool
	RefreshInterval time.Duration

	LogLevel  string // debug, info, warn, error
	LogFormat string // text, json
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{
		Port:             getenvDefault("PORT", "8080"),
		DBPath:           getenvDefault("DB_PATH", "weather.db"),
		OpenMeteoBaseURL: os.Getenv("OPENMETEO_BASE_URL"),
		IPAPIBaseURL:     os.Getenv("IPAPI_BASE_URL"),
		LogLevel:         getenvDefault("LOG_LEVEL", "info"),
		LogFormat:        getenvDefault("LOG_FORMAT", "text"),
		RefreshEnabled:   getenvBool("REFRESH_ENABLED", true),
	}

	var err error
	if cfg.CacheTTL, err = getenvDuration("CACHE_TTL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.UpstreamAttemptTimeout, err = getenvDuration("UPSTREAM_ATTEMPT_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.UpstreamTotalTimeout, err = getenvDuration("UPSTREAM_TOTAL_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", 30*time.Minute); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NewLogger creates a slog.Logger based on the configuration.
func (c *AppConfig) NewLogger() *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(c.LogFormat) {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	default:
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
