package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kjstillabower/weather-city-client/internal/observability"
	"github.com/kjstillabower/weather-city-client/internal/registry"
	"github.com/kjstillabower/weather-city-client/internal/upstream"
	"github.com/kjstillabower/weather-city-client/internal/validation"
	"github.com/kjstillabower/weather-city-client/internal/weather"
)

// Handler exposes a single weather client over HTTP.
type Handler struct {
	client *weather.Client
	logger *zap.Logger
}

// NewHandler returns a new Handler.
func NewHandler(client *weather.Client, logger *zap.Logger) *Handler {
	return &Handler{
		client: client,
		logger: logger,
	}
}

// Router builds the mux router with middleware applied.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(CorrelationIDMiddleware(h.logger))
	r.Use(MetricsMiddleware)

	r.HandleFunc("/weather/{city}", h.GetWeather).Methods(http.MethodGet)
	r.HandleFunc("/cities", h.ListCities).Methods(http.MethodGet)
	r.HandleFunc("/cities/{city}", h.DeleteCity).Methods(http.MethodDelete)
	r.HandleFunc("/health", h.GetHealth).Methods(http.MethodGet)
	r.Handle("/metrics", observability.Handler()).Methods(http.MethodGet)

	return r
}

// GetWeather handles GET /weather/{city}.
func (h *Handler) GetWeather(w http.ResponseWriter, r *http.Request) {
	city := strings.TrimSpace(mux.Vars(r)["city"])
	if city == "" {
		writeError(w, http.StatusBadRequest, "INVALID_CITY", "city is required")
		return
	}

	payload, err := h.client.GetWeather(r.Context(), city)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if len(payload) == 0 {
		writeError(w, http.StatusNotFound, "CITY_NOT_FOUND", "no geocoding match for city")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

// ListCities handles GET /cities.
func (h *Handler) ListCities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.client.Cities())
}

// DeleteCity handles DELETE /cities/{city}.
func (h *Handler) DeleteCity(w http.ResponseWriter, r *http.Request) {
	city := strings.TrimSpace(mux.Vars(r)["city"])
	if city == "" {
		writeError(w, http.StatusBadRequest, "INVALID_CITY", "city is required")
		return
	}

	h.client.RemoveCity(city)
	w.WriteHeader(http.StatusNoContent)
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "weather-city-client",
		"cities":    len(h.client.Cities()),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// writeServiceError maps client errors onto HTTP status codes.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	logger := h.logger
	if l, ok := r.Context().Value("logger").(*zap.Logger); ok && l != nil {
		logger = l
	}
	logger.Warn("weather lookup failed", zap.Error(err))

	switch {
	case errors.Is(err, validation.ErrBlankParameter):
		writeError(w, http.StatusBadRequest, "INVALID_CITY", err.Error())
	case errors.Is(err, validation.ErrUpstreamStatus):
		writeError(w, http.StatusBadGateway, "UPSTREAM_ERROR", err.Error())
	case errors.Is(err, upstream.ErrTransport):
		writeError(w, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", err.Error())
	case errors.Is(err, registry.ErrDuplicateKey):
		writeError(w, http.StatusConflict, "DUPLICATE_KEY", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"error":   code,
		"message": message,
	})
}
