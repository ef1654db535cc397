package observability

import (
	"net/http"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry

	// HTTP request rate. Watch for: sudden drops (service down) or spikes (traffic surge).
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency. A plan request spans weather, flights and the LLM, so expect seconds.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight.
	HTTPRequestsInFlight prometheus.Gauge

	// Upstream provider calls (geocoding, history, amadeus, openai, weather_service, flight_service).
	UpstreamCallsTotal *prometheus.CounterVec

	// Upstream latency per call. Watch for: history p95 climbing; a long range makes one call per day.
	UpstreamDuration *prometheus.HistogramVec

	// Upstream failures by stable category (see client.CategorizeError).
	UpstreamErrorsTotal *prometheus.CounterVec

	// Geocode cache hits. Misses show up as geocoding calls.
	CacheHitsTotal *prometheus.CounterVec

	// Geocode cache get/set failures; lookups fall through to the provider.
	CacheErrorsTotal *prometheus.CounterVec

	// Historical days requested, by outcome (fetched, skipped). Skips shrink the summary sample.
	WeatherDaysTotal *prometheus.CounterVec

	// Weather reports by outcome (ok, no_data, not_found, error).
	WeatherReportsTotal *prometheus.CounterVec

	// Weather reports per city (allow-list; others go to "other").
	WeatherQueriesByCityTotal *prometheus.CounterVec

	// Flight lookups by outcome (success, error).
	FlightLookupsTotal *prometheus.CounterVec

	// Planner runs by outcome (success, llm_error, invalid).
	PlansTotal *prometheus.CounterVec

	// Circuit breaker state per component: 0 closed, 1 open, 2 half-open.
	CircuitBreakerState *prometheus.GaugeVec

	// Circuit breaker transitions.
	CircuitBreakerTransitionsTotal *prometheus.CounterVec

	// Geocode warming runs and failed runs.
	GeocodeWarmingTotal       prometheus.Counter
	GeocodeWarmingErrorsTotal prometheus.Counter

	// Requests still in flight when shutdown began.
	ShutdownInFlight prometheus.Gauge

	trackedCitiesMu sync.RWMutex
	trackedCities   map[string]struct{}
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
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	UpstreamCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstreamCallsTotal",
			Help: "Total number of upstream provider calls",
		},
		[]string{"provider", "status"},
	)
	UpstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstreamDurationSeconds",
			Help:    "Upstream provider latency in seconds (per call)",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"provider", "status"},
	)
	UpstreamErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstreamErrorsTotal",
			Help: "Upstream failures by error category",
		},
		[]string{"provider", "category"},
	)
	CacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cacheHitsTotal",
			Help: "Total number of cache hits",
		},
		[]string{"cacheType"},
	)
	CacheErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cacheErrorsTotal",
			Help: "Cache operation failures",
		},
		[]string{"operation"},
	)
	WeatherDaysTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherDaysTotal",
			Help: "Historical weather days requested, by outcome",
		},
		[]string{"outcome"},
	)
	WeatherReportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherReportsTotal",
			Help: "Weather reports produced, by outcome",
		},
		[]string{"outcome"},
	)
	WeatherQueriesByCityTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherQueriesByCityTotal",
			Help: "Weather reports by city (allow-list; others use city=other)",
		},
		[]string{"city"},
	)
	FlightLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flightLookupsTotal",
			Help: "Flight lookups, by outcome",
		},
		[]string{"outcome"},
	)
	PlansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plansTotal",
			Help: "Travel plan runs, by outcome",
		},
		[]string{"outcome"},
	)
	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuitBreakerState",
			Help: "Circuit breaker state (0 closed, 1 open, 2 half-open)",
		},
		[]string{"component"},
	)
	CircuitBreakerTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuitBreakerTransitionsTotal",
			Help: "Circuit breaker state transitions",
		},
		[]string{"component", "from", "to"},
	)
	GeocodeWarmingTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "geocodeWarmingTotal",
			Help: "Geocode cache warming runs",
		},
	)
	GeocodeWarmingErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "geocodeWarmingErrorsTotal",
			Help: "Geocode cache warming runs with at least one failed city",
		},
	)
	ShutdownInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "shutdownInFlight",
			Help: "Requests in flight when graceful shutdown started",
		},
	)

	registry.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight,
		UpstreamCallsTotal, UpstreamDuration, UpstreamErrorsTotal,
		CacheHitsTotal, CacheErrorsTotal,
		WeatherDaysTotal, WeatherReportsTotal, WeatherQueriesByCityTotal,
		FlightLookupsTotal, PlansTotal,
		CircuitBreakerState, CircuitBreakerTransitionsTotal,
		GeocodeWarmingTotal, GeocodeWarmingErrorsTotal,
		ShutdownInFlight,
	)
}

// RecordCircuitBreakerTransition counts a transition and updates the state gauge.
func RecordCircuitBreakerTransition(component, from, to string, toValue int) {
	CircuitBreakerTransitionsTotal.WithLabelValues(component, from, to).Inc()
	CircuitBreakerState.WithLabelValues(component).Set(float64(toValue))
}

// SetTrackedCities sets the allow-list for per-city metrics. Other cities count as "other".
func SetTrackedCities(cities []string) {
	trackedCitiesMu.Lock()
	defer trackedCitiesMu.Unlock()
	trackedCities = make(map[string]struct{}, len(cities))
	for _, c := range cities {
		trackedCities[NormalizeCity(c)] = struct{}{}
	}
}

// RecordWeatherQuery records a weather report for the given city.
func RecordWeatherQuery(city string) {
	c := NormalizeCity(city)
	trackedCitiesMu.RLock()
	_, ok := trackedCities[c] // nil map read is safe in Go
	trackedCitiesMu.RUnlock()
	if ok {
		WeatherQueriesByCityTotal.WithLabelValues(c).Inc()
	} else {
		WeatherQueriesByCityTotal.WithLabelValues("other").Inc()
	}
}

// NormalizeCity lower-cases and trims a city name. Also used as the geocode cache key.
func NormalizeCity(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
