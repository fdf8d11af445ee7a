package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/weather-city-client/internal/cache"
	"github.com/kjstillabower/weather-city-client/internal/config"
	"github.com/kjstillabower/weather-city-client/internal/httpapi"
	"github.com/kjstillabower/weather-city-client/internal/observability"
	"github.com/kjstillabower/weather-city-client/internal/registry"
	"github.com/kjstillabower/weather-city-client/internal/upstream"
	"github.com/kjstillabower/weather-city-client/internal/weather"
)

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

	handler := httpapi.NewHandler(client, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      handler.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			zap.String("addr", ":"+cfg.ServerPort),
			zap.String("mode", cfg.Mode))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
