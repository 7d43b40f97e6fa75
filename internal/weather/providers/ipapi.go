package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pkarolak/weather-forecast-api/internal/weather"
	"github.com/sony/gobreaker"
)

// DefaultIPAPIBaseURL is the public ip-api.com endpoint.
const DefaultIPAPIBaseURL = "http://ip-api.com"

// IPAPIProvider implements weather.GeoProvider against ip-api.com, which
// geolocates IP addresses and hostnames.
type IPAPIProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewIPAPIProvider creates the provider with its own circuit breaker.
// An empty baseURL falls back to the public endpoint.
func NewIPAPIProvider(cfg HTTPClientConfig, baseURL string) *IPAPIProvider {
	if baseURL == "" {
		baseURL = DefaultIPAPIBaseURL
	}
	if cfg.Backoff == (BackoffConfig{}) {
		cfg.Backoff = DefaultBackoff()
	}
	return &IPAPIProvider{
		name:    "ipapi",
		baseURL: baseURL,
		httpCfg: cfg,
		circuit: newCircuitBreaker("ipapi"),
	}
}

func (p *IPAPIProvider) Name() string {
	return p.name
}

// CircuitState reports the breaker state for the health endpoint.
func (p *IPAPIProvider) CircuitState() string {
	return p.circuit.State().String()
}

// Locate geolocates an IP address or hostname. A failed lookup is reported
// through the result's Status field, not an error: ip-api answers 200 with
// status "fail" for unresolvable targets.
func (p *IPAPIProvider) Locate(ctx context.Context, target string) (weather.GeoResult, error) {
	ctx, cancel := callContext(ctx, p.httpCfg)
	defer cancel()

	buildRequest := func() (*http.Request, error) {
		u := fmt.Sprintf("%s/json/%s", p.baseURL, url.PathEscape(target))
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.GeoResult{}, classifyUpstreamError(err)
	}
	defer resp.Body.Close()

	var payload struct {
		Status    string  `json:"status"`
		Latitude  float64 `json:"lat"`
		Longitude float64 `json:"lon"`
		City      string  `json:"city"`
		Country   string  `json:"country"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.GeoResult{}, fmt.Errorf("%w: decode ip-api response: %v", weather.ErrUpstreamContract, err)
	}

	return weather.GeoResult{
		Status:    payload.Status,
		Latitude:  payload.Latitude,
		Longitude: payload.Longitude,
		City:      payload.City,
		Country:   payload.Country,
	}, nil
}
