package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/lostfound/found-api/internal/services"
	apperrors "github.com/lostfound/found-api/pkg/errors"
)

const (
	localUserID   = "user_id"
	localIdentity = "identity"
	bearerPrefix  = "Bearer "
)

type AuthMiddleware struct {
	resolver *services.IdentityResolver
	logger   *logrus.Logger
}

func NewAuthMiddleware(resolver *services.IdentityResolver, logger *logrus.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		resolver: resolver,
		logger:   logger,
	}
}

// Authenticate requires a valid bearer token and stores the resolved
// identity in the request locals.
func (a *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := BearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return WriteError(c, apperrors.Unauthenticated("Authorization header must be a Bearer token", nil))
		}

		identity, err := a.resolver.Resolve(c.UserContext(), token)
		if err != nil {
			a.logger.WithError(err).WithField("path", c.Path()).Debug("Token validation failed")
			return WriteError(c, err)
		}

		c.Locals(localUserID, identity.UserID)
		c.Locals(localIdentity, identity)

		return c.Next()
	}
}

// BearerToken extracts the credential from an Authorization header value.
func BearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}

// GetUserID extracts user ID from context
func GetUserID(c *fiber.Ctx) string {
	if userID, ok := c.Locals(localUserID).(string); ok {
		return userID
	}
	return ""
}

// GetIdentity returns the identity resolved by Authenticate, or nil.
func GetIdentity(c *fiber.Ctx) *services.Identity {
	if identity, ok := c.Locals(localIdentity).(*services.Identity); ok {
		return identity
	}
	return nil
}
