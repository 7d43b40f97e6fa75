package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pkarolak/weather-forecast-api/internal/domain"
	"github.com/pkarolak/weather-forecast-api/internal/weather"
	"github.com/sony/gobreaker"
)

// DefaultOpenMeteoBaseURL is the public Open-Meteo endpoint.
const DefaultOpenMeteoBaseURL = "https://api.open-meteo.com"

const forecastDays = 7

// OpenMeteoProvider implements weather.ForecastProvider against the
// Open-Meteo daily forecast API.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewOpenMeteoProvider creates the provider with its own circuit breaker.
// An empty baseURL falls back to the public endpoint.
func NewOpenMeteoProvider(cfg HTTPClientConfig, baseURL string) *OpenMeteoProvider {
	if baseURL == "" {
		baseURL = DefaultOpenMeteoBaseURL
	}
	if cfg.Backoff == (BackoffConfig{}) {
		cfg.Backoff = DefaultBackoff()
	}
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: baseURL,
		httpCfg: cfg,
		circuit: newCircuitBreaker("openmeteo"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// CircuitState reports the breaker state for the health endpoint.
func (p *OpenMeteoProvider) CircuitState() string {
	return p.circuit.State().String()
}

// FetchForecast fetches the 7-day daily forecast for the given coordinates.
func (p *OpenMeteoProvider) FetchForecast(ctx context.Context, coords domain.Coordinates) (weather.ForecastData, error) {
	ctx, cancel := callContext(ctx, p.httpCfg)
	defer cancel()

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", strconv.FormatFloat(coords.Latitude(), 'f', -1, 64))
		values.Set("longitude", strconv.FormatFloat(coords.Longitude(), 'f', -1, 64))
		values.Set("daily", "temperature_2m_max,temperature_2m_min,weathercode,windspeed_10m_max")
		values.Set("current_weather", "true")
		values.Set("timezone", "auto")
		values.Set("forecast_days", strconv.Itoa(forecastDays))

		u := fmt.Sprintf("%s/v1/forecast?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.ForecastData{}, classifyUpstreamError(err)
	}
	defer resp.Body.Close()

	var payload struct {
		CurrentWeather *struct {
			Temperature float64 `json:"temperature"`
			WindSpeed   float64 `json:"windspeed"`
			WeatherCode int     `json:"weathercode"`
		} `json:"current_weather"`
		Daily struct {
			Time            []string  `json:"time"`
			MaxTemperatures []float64 `json:"temperature_2m_max"`
			MinTemperatures []float64 `json:"temperature_2m_min"`
			WeatherCodes    []int     `json:"weathercode"`
			MaxWindSpeeds   []float64 `json:"windspeed_10m_max"`
		} `json:"daily"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.ForecastData{}, fmt.Errorf("%w: decode openmeteo response: %v", weather.ErrUpstreamContract, err)
	}

	data := weather.ForecastData{
		Daily: weather.DailySeries{
			Dates:           payload.Daily.Time,
			MaxTemperatures: payload.Daily.MaxTemperatures,
			MinTemperatures: payload.Daily.MinTemperatures,
			WeatherCodes:    payload.Daily.WeatherCodes,
			MaxWindSpeeds:   payload.Daily.MaxWindSpeeds,
		},
	}
	if payload.CurrentWeather != nil {
		data.Current = &weather.CurrentConditions{
			Temperature: payload.CurrentWeather.Temperature,
			WindSpeed:   payload.CurrentWeather.WindSpeed,
			WeatherCode: payload.CurrentWeather.WeatherCode,
		}
	}

	return data, nil
}
