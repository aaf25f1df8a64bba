package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/w920801-a11y/climate-try/internal/service"
	"github.com/w920801-a11y/climate-try/internal/weather"
)

var validate = validator.New()

type WeatherHandler struct {
	weatherService service.WeatherService
	timeout        time.Duration
}

func NewWeatherHandler(weatherService service.WeatherService, timeout time.Duration) *WeatherHandler {
	return &WeatherHandler{
		weatherService: weatherService,
		timeout:        timeout,
	}
}

func (h *WeatherHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/v1/weather":
		h.GetWeather(w, r)
	case r.Method == http.MethodGet && r.URL.Path == "/v1/health":
		h.Health(w, r)
	default:
		respondWithError(w, http.StatusNotFound, "not found")
	}
}

// locationQuery binds the weather query parameters. Exactly one of q and the
// lat/lon pair must be present.
type locationQuery struct {
	Name string   `validate:"omitempty,max=200"`
	Lat  *float64 `validate:"omitempty,gte=-90,lte=90"`
	Lon  *float64 `validate:"omitempty,gte=-180,lte=180"`
}

func (q locationQuery) toLocation() weather.Location {
	return weather.Location{Name: q.Name, Lat: q.Lat, Lon: q.Lon}
}

func parseLocationQuery(r *http.Request) (locationQuery, error) {
	var q locationQuery

	q.Name = strings.TrimSpace(r.URL.Query().Get("q"))

	latStr := r.URL.Query().Get("lat")
	lonStr := r.URL.Query().Get("lon")
	if latStr != "" || lonStr != "" {
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return q, errors.New("lat must be a number")
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			return q, errors.New("lon must be a number")
		}
		q.Lat, q.Lon = &lat, &lon
	}

	if q.Name == "" && q.Lat == nil {
		return q, errors.New("either 'q' or the 'lat'/'lon' pair is required")
	}
	if q.Name != "" && q.Lat != nil {
		return q, errors.New("'q' and 'lat'/'lon' are mutually exclusive")
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}

	return q, nil
}

func (h *WeatherHandler) GetWeather(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	query, err := parseLocationQuery(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	loc := query.toLocation()
	requestID := uuid.NewString()
	logger := log.With().Str("request_id", requestID).Str("location", loc.Describe()).Logger()

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	snapshot, err := h.weatherService.GetWeather(ctx, loc)
	if err != nil {
		logger.Error().Err(err).Str("kind", string(ClassifyFetchError(err))).
			Msg("failed to get weather data")
		respondWithFetchError(w, err)
		return
	}

	logger.Info().Bool("realtime", snapshot.IsRealtime).Int("sources", len(snapshot.Sources)).
		Msg("served weather snapshot")

	respondWithJSON(w, http.StatusOK, snapshot)
}

func (h *WeatherHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	ok := h.weatherService.CheckOracle(ctx)

	status := http.StatusOK
	if !ok {
		status = http.StatusServiceUnavailable
	}

	respondWithJSON(w, status, HealthResponse{OK: ok})
}
