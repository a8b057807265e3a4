package middleware

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const maxLoggedBody = 500

// redactedFields never reach the logs.
var redactedFields = []string{"password", "token"}

type ErrorLoggerMiddleware struct {
	logger *logrus.Logger
}

func NewErrorLoggerMiddleware(logger *logrus.Logger) *ErrorLoggerMiddleware {
	return &ErrorLoggerMiddleware{
		logger: logger,
	}
}

// Handle logs 4xx and 5xx responses with detailed context
func (e *ErrorLoggerMiddleware) Handle() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Record start time
		startTime := time.Now()

		// Continue with request
		err := c.Next()

		// Get response status code
		statusCode := c.Response().StatusCode()

		// Log 4xx and 5xx errors
		if statusCode >= 400 {
			duration := time.Since(startTime)

			logFields := logrus.Fields{
				"status_code":   statusCode,
				"method":        c.Method(),
				"path":          c.Path(),
				"ip":            c.IP(),
				"user_agent":    c.Get("User-Agent"),
				"request_id":    RequestID(c),
				"duration_ms":   duration.Milliseconds(),
				"response_size": len(c.Response().Body()),
			}

			// Add user ID if available
			if userID := GetUserID(c); userID != "" {
				logFields["user_id"] = userID
			}

			// Add idempotency key if present
			if idempotencyKey := c.Get("Idempotency-Key"); idempotencyKey != "" {
				logFields["idempotency_key"] = idempotencyKey
			}

			// Add query parameters if present
			if len(c.Request().URI().QueryString()) > 0 {
				logFields["query"] = string(c.Request().URI().QueryString())
			}

			// Add JSON request body for POST/PUT/PATCH; uploads are binary
			if c.Method() == "POST" || c.Method() == "PUT" || c.Method() == "PATCH" {
				if body := sanitizeBody(c.Body()); body != "" {
					logFields["request_body"] = body
				}
			}

			if responseBody := truncate(string(c.Response().Body())); responseBody != "" {
				logFields["response_body"] = responseBody
			}

			// Determine log level based on status code
			logEntry := e.logger.WithFields(logFields)

			if statusCode >= 500 {
				// 5xx errors are server errors - log as Error
				if err != nil {
					logEntry = logEntry.WithError(err)
				}
				logEntry.Error("Server error response")
			} else if statusCode >= 400 {
				// 4xx errors are client errors - log as Warning
				logEntry.Warn("Client error response")
			}
		}

		return err
	}
}

// sanitizeBody returns a loggable rendition of a JSON object body with
// credentials masked. Anything else is omitted.
func sanitizeBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return ""
	}
	for _, key := range redactedFields {
		if _, ok := fields[key]; ok {
			fields[key] = "[REDACTED]"
		}
	}

	masked, err := json.Marshal(fields)
	if err != nil {
		return ""
	}
	return truncate(string(masked))
}

func truncate(s string) string {
	if len(s) > maxLoggedBody {
		return s[:maxLoggedBody] + "...(truncated)"
	}
	return s
}
