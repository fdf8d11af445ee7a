package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry

	// HTTP request rate by method, route, status class.
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency per request.
	HTTPRequestDuration *prometheus.HistogramVec

	// Upstream OpenWeatherMap call rate by endpoint (geocoding, weather) and
	// outcome. Watch for: error vs success ratio.
	UpstreamCallsTotal *prometheus.CounterVec

	// Upstream latency per call. Watch for: p95 near the 10s client timeout.
	UpstreamDuration *prometheus.HistogramVec

	// Weather lookups served from cache without touching the upstream.
	CacheHitsTotal prometheus.Counter

	// Weather lookups that went to the upstream.
	CacheMissesTotal prometheus.Counter

	// Entries evicted because the per-client cache was at capacity.
	CacheEvictionsTotal prometheus.Counter

	// Stale entries re-fetched in place (polling refresh or explicit refresh).
	CacheRefreshesTotal prometheus.Counter

	// Total weather lookups. rate() gives QPS.
	WeatherLookupsTotal prometheus.Counter
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	UpstreamCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstreamCallsTotal",
			Help: "Total calls to the OpenWeatherMap endpoints",
		},
		[]string{"endpoint", "status"},
	)
	UpstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstreamDurationSeconds",
			Help:    "OpenWeatherMap call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "status"},
	)
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cacheHitsTotal",
		Help: "Weather lookups answered from the per-city cache",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cacheMissesTotal",
		Help: "Weather lookups that required an upstream fetch",
	})
	CacheEvictionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cacheEvictionsTotal",
		Help: "Cache entries evicted at capacity, oldest first",
	})
	CacheRefreshesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cacheRefreshesTotal",
		Help: "Stale cache entries re-fetched in place",
	})
	WeatherLookupsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "weatherLookupsTotal",
		Help: "Total weather lookups",
	})

	registry.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		UpstreamCallsTotal,
		UpstreamDuration,
		CacheHitsTotal,
		CacheMissesTotal,
		CacheEvictionsTotal,
		CacheRefreshesTotal,
		WeatherLookupsTotal,
	)
}

// Handler returns the /metrics handler backed by the package registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
