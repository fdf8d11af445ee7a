package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kjstillabower/weather-city-client/internal/models"
	"github.com/kjstillabower/weather-city-client/internal/observability"
	"github.com/kjstillabower/weather-city-client/internal/validation"
)

// ErrTransport is returned when a request fails below the HTTP layer
// (timeout, connection refused, DNS). The cause is wrapped rather than
// discarded.
var ErrTransport = errors.New("upstream request failed")

// DefaultGeoURL is the OpenWeatherMap direct geocoding endpoint.
const DefaultGeoURL = "http://api.openweathermap.org/geo/1.0/direct"

// DefaultWeatherURL is the OpenWeatherMap current weather endpoint.
const DefaultWeatherURL = "https://api.openweathermap.org/data/2.5/weather"

// DefaultTimeout bounds each upstream call.
const DefaultTimeout = 10 * time.Second

// Client issues geocoding and current-weather requests against the
// OpenWeatherMap API.
type Client struct {
	apiKey     string
	geoURL     string
	weatherURL string
	client     *http.Client
}

// New returns a Client for the given API key and endpoint URLs. Empty URLs
// and a non-positive timeout fall back to the defaults.
func New(apiKey, geoURL, weatherURL string, timeout time.Duration) (*Client, error) {
	if err := validation.RequireNonBlank("apiKey", apiKey); err != nil {
		return nil, err
	}
	if geoURL == "" {
		geoURL = DefaultGeoURL
	}
	if weatherURL == "" {
		weatherURL = DefaultWeatherURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		apiKey:     apiKey,
		geoURL:     geoURL,
		weatherURL: weatherURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// geoResult is one element of the geocoding endpoint's JSON array.
type geoResult struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Geocode resolves a city name to coordinates. Returns ok=false when the
// upstream knows no match for the name. Fails before any network call when
// city is blank.
func (c *Client) Geocode(ctx context.Context, city string) (models.Coordinates, bool, error) {
	if err := validation.RequireNonBlank("city", city); err != nil {
		return models.Coordinates{}, false, err
	}

	params := url.Values{}
	params.Set("q", city)
	params.Set("limit", "1")
	params.Set("appid", c.apiKey)

	body, err := c.get(ctx, "geocoding", c.geoURL, params)
	if err != nil {
		return models.Coordinates{}, false, fmt.Errorf("geocode %s: %w", city, err)
	}

	var results []geoResult
	if err := json.Unmarshal(body, &results); err != nil {
		return models.Coordinates{}, false, fmt.Errorf("geocode %s: parse response: %w", city, err)
	}
	if len(results) == 0 {
		return models.Coordinates{}, false, nil
	}

	return models.Coordinates{Lat: results[0].Lat, Lon: results[0].Lon}, true, nil
}

// CurrentWeather fetches the weather payload for the coordinates. The body
// is returned verbatim; the upstream schema is not interpreted here.
func (c *Client) CurrentWeather(ctx context.Context, coord models.Coordinates) (models.Payload, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(coord.Lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(coord.Lon, 'f', -1, 64))
	params.Set("appid", c.apiKey)

	body, err := c.get(ctx, "weather", c.weatherURL, params)
	if err != nil {
		return nil, fmt.Errorf("fetch weather: %w", err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("fetch weather: invalid JSON in response")
	}
	return models.Payload(body), nil
}

// get performs one instrumented GET and returns the response body. Non-200
// statuses fail with validation.ErrUpstreamStatus; transport failures wrap
// ErrTransport.
func (c *Client) get(ctx context.Context, endpoint, rawURL string, params url.Values) ([]byte, error) {
	start := time.Now()

	base, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	base.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		observe(endpoint, "error", start)
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if err := validation.RequireSuccessStatus(resp); err != nil {
		observe(endpoint, statusLabel(resp.StatusCode), start)
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		observe(endpoint, "error", start)
		return nil, fmt.Errorf("%w: read body: %v", ErrTransport, err)
	}

	observe(endpoint, "success", start)
	return body, nil
}

func observe(endpoint, status string, start time.Time) {
	observability.UpstreamCallsTotal.WithLabelValues(endpoint, status).Inc()
	observability.UpstreamDuration.WithLabelValues(endpoint, status).Observe(time.Since(start).Seconds())
}

func statusLabel(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "success"
	case statusCode >= 400 && statusCode < 500:
		return "client_error"
	case statusCode >= 500:
		return "server_error"
	default:
		return "error"
	}
}
