package middleware

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/lostfound/found-api/pkg/errors"
)

// WriteError renders err in the standard error envelope. Errors that are not
// AppErrors are reported as internal errors.
func WriteError(c *fiber.Ctx, err error) error {
	appErr := apperrors.As(err)
	return c.Status(appErr.HTTPStatus()).JSON(appErr.ToErrorResponse(RequestID(c)))
}

// RequestID returns the id assigned by the requestid middleware, falling back
// to the inbound header.
func RequestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok && id != "" {
		return id
	}
	return c.Get(fiber.HeaderXRequestID)
}
