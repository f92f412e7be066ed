package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Monitor collects and exposes metrics for the fridge API
type Monitor struct {
	registry      *prometheus.Registry
	requests      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	recipeCalls   *prometheus.CounterVec
	recipeLatency *prometheus.HistogramVec
	fridgeItems   prometheus.Gauge
	startTime     time.Time
}

// NewMonitor creates a new monitoring instance with its own registry
func NewMonitor() *Monitor {
	m := &Monitor{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fridge_http_requests_total",
				Help: "HTTP requests handled, by route and status",
			},
			[]string{"method", "route", "status"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fridge_http_request_duration_seconds",
				Help:    "Time taken to handle HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		recipeCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fridge_recipe_backend_calls_total",
				Help: "Calls to the recipe backend, by outcome",
			},
			[]string{"backend", "outcome"},
		),
		recipeLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fridge_recipe_backend_duration_seconds",
				Help:    "Round trip time to the recipe backend",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"backend"},
		),
		fridgeItems: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fridge_items",
			Help: "Ingredients in the fridge as of the last snapshot",
		}),
		startTime: time.Now(),
	}

	m.registry.MustRegister(
		m.requests,
		m.latency,
		m.recipeCalls,
		m.recipeLatency,
		m.fridgeItems,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records one handled HTTP request
func (m *Monitor) ObserveRequest(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveRecipeCall records one round trip to the recipe backend
func (m *Monitor) ObserveRecipeCall(backend string, d time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.recipeCalls.WithLabelValues(backend, outcome).Inc()
	m.recipeLatency.WithLabelValues(backend).Observe(d.Seconds())
}

// SetFridgeSize records the size of the latest snapshot
func (m *Monitor) SetFridgeSize(n int) {
	m.fridgeItems.Set(float64(n))
}

// Uptime returns how long the monitor has been running
func (m *Monitor) Uptime() time.Duration {
	return time.Since(m.startTime)
}
