package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_requests_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status_code"},
	)

	// Auth metrics
	authAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"operation", "result"}, // register/login/verify, success/failure
	)

	// Item metrics
	itemOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "item_operations_total",
			Help: "Total number of found-item operations",
		},
		[]string{"operation", "status"}, // create/update_status/delete, success/failure/denied
	)

	// Name propagation metrics
	namePropagationItems = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "name_propagation_items_updated",
			Help:    "Number of items touched by a display-name propagation",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 1000},
		},
	)

	// Store metrics
	storeOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_operation_duration_seconds",
			Help:    "Document store operation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		},
		[]string{"operation", "status"},
	)

	// Idempotency metrics
	idempotencyHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "idempotency_hits_total",
			Help: "Total number of idempotency hits",
		},
		[]string{"type"}, // hit or miss
	)

	registerOnce sync.Once
)

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() error {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestsTotal,
			httpRequestDuration,
			authAttemptsTotal,
			itemOperationsTotal,
			namePropagationItems,
			storeOperationDuration,
			idempotencyHitsTotal,
		)
	})
	return nil
}

// HTTPMetricsMiddleware records HTTP metrics
func HTTPMetricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		// Process request
		err := c.Next()

		// Record metrics
		duration := time.Since(start).Seconds()
		method := c.Method()
		route := c.Route().Path
		if route == "" {
			route = c.Path()
		}
		statusCode := strconv.Itoa(c.Response().StatusCode())

		httpRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
		httpRequestDuration.WithLabelValues(method, route, statusCode).Observe(duration)

		return err
	}
}

// RecordAuthAttempt records register/login/verify outcomes
func RecordAuthAttempt(operation string, success bool) {
	authAttemptsTotal.WithLabelValues(operation, result(success)).Inc()
}

// RecordItemOperation records item mutations
func RecordItemOperation(operation, status string) {
	itemOperationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordNamePropagation records how many items a rename touched
func RecordNamePropagation(itemsUpdated int) {
	namePropagationItems.Observe(float64(itemsUpdated))
}

// RecordStoreOperation records document store calls
func RecordStoreOperation(operation string, err error, duration time.Duration) {
	storeOperationDuration.WithLabelValues(operation, result(err == nil)).Observe(duration.Seconds())
}

// RecordIdempotencyHit records idempotency cache hits/misses
func RecordIdempotencyHit(hitType string) {
	idempotencyHitsTotal.WithLabelValues(hitType).Inc()
}

// PrometheusHandler returns the Prometheus metrics handler
func PrometheusHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
