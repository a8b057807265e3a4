package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitIsIdempotent(t *testing.T) {
	require.NoError(t, Init())
	require.NoError(t, Init())
}

func TestRecorders(t *testing.T) {
	before := testutil.ToFloat64(authAttemptsTotal.WithLabelValues("login", "failure"))
	RecordAuthAttempt("login", false)
	assert.Equal(t, before+1, testutil.ToFloat64(authAttemptsTotal.WithLabelValues("login", "failure")))

	before = testutil.ToFloat64(itemOperationsTotal.WithLabelValues("delete", "denied"))
	RecordItemOperation("delete", "denied")
	assert.Equal(t, before+1, testutil.ToFloat64(itemOperationsTotal.WithLabelValues("delete", "denied")))

	RecordNamePropagation(3)
	RecordStoreOperation("items.list", errors.New("boom"), 10*time.Millisecond)
	RecordIdempotencyHit("miss")
}

func TestHTTPMetricsAndHandler(t *testing.T) {
	require.NoError(t, Init())

	app := fiber.New()
	app.Use(HTTPMetricsMiddleware())
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })
	app.Get("/metrics", PrometheusHandler())

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `http_server_requests_total{method="GET",route="/ping",status_code="200"}`)
}
