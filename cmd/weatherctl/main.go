package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/kjstillabower/weather-city-client/internal/cache"
	"github.com/kjstillabower/weather-city-client/internal/config"
	"github.com/kjstillabower/weather-city-client/internal/observability"
	"github.com/kjstillabower/weather-city-client/internal/registry"
	"github.com/kjstillabower/weather-city-client/internal/upstream"
	"github.com/kjstillabower/weather-city-client/internal/weather"
)

// weatherctl demonstrates the client: fetch weather for one city, print the
// cache, remove the city, print again.
func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	provider, err := upstream.New(cfg.APIKey, cfg.GeoURL, cfg.WeatherURL, cfg.Timeout)
	if err != nil {
		logger.Fatal("upstream client", zap.Error(err))
	}

	keys := registry.NewKeyRegistry()
	client, err := weather.New(
		cfg.APIKey,
		weather.ParseMode(cfg.Mode),
		provider,
		cache.New(cfg.CacheCapacity, cfg.CacheFreshness),
		keys,
		logger,
	)
	if err != nil {
		logger.Fatal("weather client", zap.Error(err))
	}
	defer client.Close()

	ctx := context.Background()
	payload, err := client.GetWeather(ctx, cfg.DemoCity)
	if err != nil {
		logger.Fatal("get weather", zap.String("city", cfg.DemoCity), zap.Error(err))
	}
	fmt.Printf("weather for %s: %s\n", cfg.DemoCity, payload)

	printCache(client)

	client.RemoveCity(cfg.DemoCity)

	printCache(client)
}

func printCache(client *weather.Client) {
	cities := client.Cities()
	fmt.Printf("cached cities (%d):\n", len(cities))
	for _, c := range cities {
		fmt.Printf("  %s (%.4f, %.4f) fetched %s\n", c.CityName, c.Coord.Lat, c.Coord.Lon, c.FetchedAt.Format("15:04:05"))
	}
}
