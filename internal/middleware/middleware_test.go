package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lostfound/found-api/internal/auth"
	"github.com/lostfound/found-api/internal/models"
	"github.com/lostfound/found-api/internal/services"
	"github.com/lostfound/found-api/internal/store/memory"
	apperrors "github.com/lostfound/found-api/pkg/errors"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func decodeError(t *testing.T, resp *http.Response) apperrors.ErrorResponse {
	t.Helper()
	var body apperrors.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc.def", "abc.def", true},
		{"Bearer   abc ", "abc", true},
		{"Bearer ", "", false},
		{"bearer abc", "", false},
		{"Basic abc", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		token, ok := BearerToken(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.token, token, tt.header)
	}
}

func TestAuthenticate(t *testing.T) {
	logger := quietLogger()
	users := memory.NewUserStore()
	tokens := auth.NewTokenIssuer("test-secret", time.Hour, "found-api", "")
	resolver := services.NewIdentityResolver(users, tokens, logger)

	user := &models.User{Name: "Alice", Email: "alice@example.com", PasswordHash: "x", CreatedAt: time.Now()}
	require.NoError(t, users.Create(context.Background(), user))
	token, _, err := tokens.Issue(user.ID)
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/me", NewAuthMiddleware(resolver, logger).Authenticate(), func(c *fiber.Ctx) error {
		identity := GetIdentity(c)
		return c.JSON(fiber.Map{"user_id": GetUserID(c), "name": identity.Name})
	})

	t.Run("missing header", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, apperrors.CodeUnauthenticated, decodeError(t, resp).Error.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, user.ID, body["user_id"])
		assert.Equal(t, "Alice", body["name"])
	})

	t.Run("deleted user", func(t *testing.T) {
		ghost := &models.User{Name: "Ghost", Email: "ghost@example.com", PasswordHash: "x", CreatedAt: time.Now()}
		require.NoError(t, users.Create(context.Background(), ghost))
		ghostToken, _, err := tokens.Issue(ghost.ID)
		require.NoError(t, err)
		users.Delete(context.Background(), ghost.ID)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+ghostToken)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestWriteError(t *testing.T) {
	app := fiber.New()
	app.Get("/forbidden", func(c *fiber.Ctx) error {
		return WriteError(c, apperrors.Forbidden("You can only update your own profile"))
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return WriteError(c, errors.New("disk on fire"))
	})

	req := httptest.NewRequest(http.MethodGet, "/forbidden", nil)
	req.Header.Set(fiber.HeaderXRequestID, "req-1")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body := decodeError(t, resp)
	assert.Equal(t, apperrors.CodeForbidden, body.Error.Code)
	assert.Equal(t, "req-1", body.Error.TraceID)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body = decodeError(t, resp)
	assert.Equal(t, apperrors.CodeInternalError, body.Error.Code)
	assert.NotContains(t, body.Error.Message, "disk on fire")
}

func TestIdempotency_WithoutRedis(t *testing.T) {
	calls := 0
	app := fiber.New()
	app.Post("/items", NewIdempotencyMiddleware(nil, time.Minute, quietLogger()).Handle(), func(c *fiber.Ctx) error {
		calls++
		return c.SendStatus(http.StatusCreated)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/items", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	req := httptest.NewRequest(http.MethodPost, "/items", nil)
	req.Header.Set(idempotencyHeader, "not-a-uuid")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, apperrors.CodeBadRequest, decodeError(t, resp).Error.Code)

	req = httptest.NewRequest(http.MethodPost, "/items", nil)
	req.Header.Set(idempotencyHeader, "5f0c6f55-3c8b-4c38-9f5e-2c0a8f4b1d11")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	assert.Equal(t, 2, calls)
}

func TestShouldCacheHeader(t *testing.T) {
	assert.True(t, shouldCacheHeader("Content-Type"))
	assert.True(t, shouldCacheHeader("location"))
	assert.True(t, shouldCacheHeader("X-Request-ID"))
	assert.False(t, shouldCacheHeader("Set-Cookie"))
	assert.False(t, shouldCacheHeader("Authorization"))
}

func TestSanitizeBody(t *testing.T) {
	masked := sanitizeBody([]byte(`{"email":"a@b.c","password":"hunter22"}`))
	assert.Contains(t, masked, `"email":"a@b.c"`)
	assert.Contains(t, masked, "[REDACTED]")
	assert.NotContains(t, masked, "hunter22")

	assert.Empty(t, sanitizeBody(nil))
	assert.Empty(t, sanitizeBody([]byte("password=hunter22")))
	assert.Empty(t, sanitizeBody([]byte(`["password"]`)))

	long := `{"description":"` + strings.Repeat("x", 1000) + `"}`
	assert.LessOrEqual(t, len(sanitizeBody([]byte(long))), maxLoggedBody+len("...(truncated)"))
}

func TestCircuitBreaker(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker("test", quietLogger())
	cb.now = func() time.Time { return now }

	failure := errors.New("connection refused")
	for i := 0; i < 5; i++ {
		assert.ErrorIs(t, cb.Execute(func() error { return failure }), failure)
	}
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrBreakerOpen)
	assert.False(t, called)

	now = now.Add(11 * time.Second)
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, StateHalfOpen, cb.State())

	assert.ErrorIs(t, cb.Execute(func() error { return failure }), failure)
	assert.Equal(t, StateOpen, cb.State())

	now = now.Add(11 * time.Second)
	for i := 0; i < 3; i++ {
		require.NoError(t, cb.Execute(func() error { return nil }))
	}
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	cb := NewCircuitBreaker("test", quietLogger())
	failure := errors.New("timeout")

	for i := 0; i < 4; i++ {
		_ = cb.Execute(func() error { return failure })
	}
	require.NoError(t, cb.Execute(func() error { return nil }))
	for i := 0; i < 4; i++ {
		_ = cb.Execute(func() error { return failure })
	}
	assert.Equal(t, StateClosed, cb.State())
}

func TestExtractHostname(t *testing.T) {
	assert.Equal(t, "cache.internal", extractHostname("cache.internal:6379"))
	assert.Equal(t, "localhost", extractHostname("localhost"))
}
