package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/lostfound/found-api/internal/metrics"
	apperrors "github.com/lostfound/found-api/pkg/errors"
)

const idempotencyHeader = "Idempotency-Key"

// IdempotencyMiddleware replays the stored response of a POST retried with
// the same Idempotency-Key. The header is optional; without Redis the
// middleware passes every request through.
type IdempotencyMiddleware struct {
	redisClient redis.UniversalClient
	breaker     *CircuitBreaker
	logger      *logrus.Logger
	ttl         time.Duration
}

type IdempotencyRecord struct {
	StatusCode int               `json:"status_code"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
	CreatedAt  time.Time         `json:"created_at"`
}

func NewIdempotencyMiddleware(redisClient redis.UniversalClient, ttl time.Duration, logger *logrus.Logger) *IdempotencyMiddleware {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &IdempotencyMiddleware{
		redisClient: redisClient,
		breaker:     NewCircuitBreaker("idempotency-redis", logger),
		logger:      logger,
		ttl:         ttl,
	}
}

// Handle must run after Authenticate so the fingerprint binds the caller.
func (i *IdempotencyMiddleware) Handle() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost {
			return c.Next()
		}

		idempotencyKey := c.Get(idempotencyHeader)
		if idempotencyKey == "" {
			return c.Next()
		}

		if _, err := uuid.Parse(idempotencyKey); err != nil {
			return WriteError(c, apperrors.NewAppError(apperrors.CodeBadRequest, "Idempotency-Key must be a valid UUID", nil))
		}

		if i.redisClient == nil {
			return c.Next()
		}

		ctx := c.UserContext()
		fingerprint := i.generateFingerprint(c)
		redisKey := fmt.Sprintf("idempotency:%s", idempotencyKey)

		var existingRecord *IdempotencyRecord
		var existingFingerprint string
		err := i.breaker.Execute(func() error {
			record, err := i.getIdempotencyRecord(ctx, redisKey)
			if errors.Is(err, redis.Nil) {
				return nil
			}
			if err != nil {
				return err
			}
			existingRecord = record
			existingFingerprint, err = i.redisClient.Get(ctx, redisKey+":fingerprint").Result()
			if errors.Is(err, redis.Nil) {
				return nil
			}
			return err
		})
		if err != nil {
			// The cache is optional; serve the request without it
			i.logger.WithError(err).Warn("Idempotency cache unavailable")
			return c.Next()
		}

		if existingRecord != nil {
			if existingFingerprint != "" && existingFingerprint != fingerprint {
				return WriteError(c, apperrors.NewAppError(apperrors.CodeIdempotencyConflict,
					"Request differs from original request with same Idempotency-Key", nil))
			}

			metrics.RecordIdempotencyHit("hit")
			return i.returnCachedResponse(c, existingRecord)
		}
		metrics.RecordIdempotencyHit("miss")

		if err := i.breaker.Execute(func() error {
			return i.redisClient.Set(ctx, redisKey+":fingerprint", fingerprint, i.ttl).Err()
		}); err != nil {
			i.logger.WithError(err).Error("Failed to store fingerprint")
		}

		err = c.Next()

		// Only successful responses are replayed
		statusCode := c.Response().StatusCode()
		if statusCode >= 200 && statusCode < 300 {
			record := IdempotencyRecord{
				StatusCode: statusCode,
				Headers:    make(map[string]string),
				Body:       string(c.Response().Body()),
				CreatedAt:  time.Now(),
			}
			c.Response().Header.VisitAll(func(key, value []byte) {
				if shouldCacheHeader(string(key)) {
					record.Headers[string(key)] = string(value)
				}
			})

			if err := i.breaker.Execute(func() error {
				return i.storeIdempotencyRecord(ctx, redisKey, &record)
			}); err != nil {
				i.logger.WithError(err).WithField("idempotency_key", idempotencyKey).Error("Failed to store idempotency record")
			} else {
				i.logger.WithFields(logrus.Fields{
					"idempotency_key": idempotencyKey,
					"status_code":     statusCode,
				}).Debug("Stored idempotency record")
			}
		}

		return err
	}
}

// generateFingerprint hashes method, path, query, body and caller
func (i *IdempotencyMiddleware) generateFingerprint(c *fiber.Ctx) string {
	h := sha256.New()

	h.Write([]byte(c.Method()))
	h.Write([]byte(":"))
	h.Write([]byte(c.Path()))
	h.Write([]byte(":"))
	h.Write(c.Request().URI().QueryString())
	h.Write([]byte(":"))
	h.Write(c.Body())
	h.Write([]byte(":"))
	if userID := GetUserID(c); userID != "" {
		h.Write([]byte(userID))
	}

	return hex.EncodeToString(h.Sum(nil))
}

func (i *IdempotencyMiddleware) getIdempotencyRecord(ctx context.Context, key string) (*IdempotencyRecord, error) {
	data, err := i.redisClient.Get(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	var record IdempotencyRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal idempotency record: %w", err)
	}

	return &record, nil
}

func (i *IdempotencyMiddleware) storeIdempotencyRecord(ctx context.Context, key string, record *IdempotencyRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal idempotency record: %w", err)
	}

	return i.redisClient.Set(ctx, key, data, i.ttl).Err()
}

func (i *IdempotencyMiddleware) returnCachedResponse(c *fiber.Ctx, record *IdempotencyRecord) error {
	for key, value := range record.Headers {
		c.Set(key, value)
	}
	c.Set("X-Idempotency-Cached", "true")

	return c.Status(record.StatusCode).SendString(record.Body)
}

func shouldCacheHeader(header string) bool {
	switch strings.ToLower(header) {
	case "content-type", "location", "x-request-id":
		return true
	}
	return false
}
