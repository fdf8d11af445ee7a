package weather

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/weather-city-client/internal/cache"
	"github.com/kjstillabower/weather-city-client/internal/models"
	"github.com/kjstillabower/weather-city-client/internal/observability"
	"github.com/kjstillabower/weather-city-client/internal/registry"
	"github.com/kjstillabower/weather-city-client/internal/validation"
)

// Mode selects how a client keeps its cache current.
type Mode string

const (
	// OnDemand refreshes only the city being requested.
	OnDemand Mode = "on_demand"
	// Polling refreshes every stale cached entry before serving a request.
	Polling Mode = "polling"
)

// ParseMode maps a config string to a Mode, defaulting to OnDemand.
func ParseMode(s string) Mode {
	if Mode(s) == Polling {
		return Polling
	}
	return OnDemand
}

// Provider issues the two upstream calls the client depends on. Satisfied by
// upstream.Client; mocked in tests.
type Provider interface {
	Geocode(ctx context.Context, city string) (models.Coordinates, bool, error)
	CurrentWeather(ctx context.Context, coord models.Coordinates) (models.Payload, error)
}

// Client resolves city names to coordinates, fetches current weather, and
// caches results per city for a short window. One API key per live client,
// enforced through the KeyRegistry.
type Client struct {
	apiKey   string
	mode     Mode
	provider Provider
	cache    *cache.CityCache
	keys     *registry.KeyRegistry
	logger   *zap.Logger
	now      func() time.Time
}

// New registers the API key and returns a client. Fails with
// registry.ErrDuplicateKey when another live client holds the key; no client
// is created in that case. Callers release the key with Close.
func New(apiKey string, mode Mode, provider Provider, cityCache *cache.CityCache, keys *registry.KeyRegistry, logger *zap.Logger) (*Client, error) {
	if err := validation.RequireNonBlank("apiKey", apiKey); err != nil {
		return nil, err
	}
	if err := keys.Register(apiKey); err != nil {
		return nil, fmt.Errorf("register api key: %w", err)
	}
	if cityCache == nil {
		cityCache = cache.New(cache.DefaultCapacity, cache.DefaultFreshness)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		apiKey:   apiKey,
		mode:     mode,
		provider: provider,
		cache:    cityCache,
		keys:     keys,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Close releases the client's API key back to the registry.
func (c *Client) Close() {
	c.keys.Release(c.apiKey)
}

// Geocode resolves a city name to coordinates. ok is false when the upstream
// has no match. Fails on a blank name before any network call.
func (c *Client) Geocode(ctx context.Context, city string) (models.Coordinates, bool, error) {
	return c.provider.Geocode(ctx, city)
}

// GetWeather returns the current weather payload for the city.
//
// In polling mode every stale cached entry is refreshed first. A fresh cached
// entry for the name is served without touching the upstream. Otherwise the
// name is geocoded; no match yields an empty payload. A fresh entry matching
// both name and coordinates is served in case the geocode was redundant.
// Otherwise the weather is fetched and stored with the current timestamp: an
// existing entry for the city is updated in place, a new city is appended,
// evicting the oldest entry when the cache is at capacity.
func (c *Client) GetWeather(ctx context.Context, city string) (models.Payload, error) {
	if err := validation.RequireNonBlank("city", city); err != nil {
		return nil, err
	}

	observability.WeatherLookupsTotal.Inc()

	if c.mode == Polling {
		if err := c.RefreshStale(ctx); err != nil {
			return nil, fmt.Errorf("refresh stale entries: %w", err)
		}
	}

	now := c.now()
	if entry, ok := c.cache.Fresh(city, now); ok {
		observability.CacheHitsTotal.Inc()
		c.logger.Debug("cache hit", zap.String("city", city), zap.Duration("age", entry.Age(now)))
		return entry.Payload, nil
	}

	coord, found, err := c.Geocode(ctx, city)
	if err != nil {
		return nil, err
	}
	if !found {
		c.logger.Info("no geocoding match", zap.String("city", city))
		return nil, nil
	}

	if entry, ok := c.cache.FreshAt(city, coord, now); ok {
		observability.CacheHitsTotal.Inc()
		return entry.Payload, nil
	}

	observability.CacheMissesTotal.Inc()
	payload, err := c.provider.CurrentWeather(ctx, coord)
	if err != nil {
		return nil, err
	}

	evicted, didEvict := c.cache.Upsert(models.CityWeather{
		CityName:  city,
		Coord:     coord,
		Payload:   payload,
		FetchedAt: c.now(),
	})
	if didEvict {
		observability.CacheEvictionsTotal.Inc()
		c.logger.Debug("evicted oldest entry", zap.String("city", evicted.CityName))
	}
	c.logger.Debug("fetched weather",
		zap.String("city", city),
		zap.Float64("lat", coord.Lat),
		zap.Float64("lon", coord.Lon))

	return payload, nil
}

// RefreshStale re-fetches weather for every cached entry older than the
// freshness window, using the stored coordinates, and updates payload and
// timestamp in place.
func (c *Client) RefreshStale(ctx context.Context) error {
	now := c.now()
	for _, entry := range c.cache.Stale(now) {
		payload, err := c.provider.CurrentWeather(ctx, entry.Coord)
		if err != nil {
			return fmt.Errorf("refresh %s: %w", entry.CityName, err)
		}
		entry.Payload = payload
		entry.FetchedAt = now
		observability.CacheRefreshesTotal.Inc()
		c.logger.Debug("refreshed stale entry", zap.String("city", entry.CityName))
	}
	return nil
}

// RemoveCity drops every cached entry matching the name.
func (c *Client) RemoveCity(city string) {
	removed := c.cache.Remove(city)
	if removed > 0 {
		c.logger.Debug("removed city", zap.String("city", city), zap.Int("entries", removed))
	}
}

// Cities returns the cached entries in insertion order.
func (c *Client) Cities() []models.CityWeather {
	return c.cache.Entries()
}

// SetNow overrides the client's clock. Test hook.
func (c *Client) SetNow(now func() time.Time) {
	c.now = now
}
