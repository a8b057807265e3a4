// Package services holds the business rules behind the HTTP handlers:
// identity resolution, ownership checks, registration and login, item
// management and display-name propagation.
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/lostfound/found-api/internal/models"
	"github.com/lostfound/found-api/internal/store"
	apperrors "github.com/lostfound/found-api/pkg/errors"
)

var tracer = otel.Tracer("found-api/services")

// Identity is the verified caller of a request.
type Identity struct {
	UserID string
	Name   string
	Email  string
}

// TokenVerifier validates a session token and returns the user id it binds.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// IdentityResolver turns a bearer credential into a verified identity.
type IdentityResolver struct {
	users  store.UserStore
	tokens TokenVerifier
	logger *logrus.Logger
}

func NewIdentityResolver(users store.UserStore, tokens TokenVerifier, logger *logrus.Logger) *IdentityResolver {
	return &IdentityResolver{users: users, tokens: tokens, logger: logger}
}

// Resolve verifies rawToken and loads the user it names.
func (r *IdentityResolver) Resolve(ctx context.Context, rawToken string) (*Identity, error) {
	ctx, span := tracer.Start(ctx, "identity.resolve")
	defer span.End()

	user, err := r.resolveUser(ctx, rawToken)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("user.id", user.ID))

	return &Identity{UserID: user.ID, Name: user.Name, Email: user.Email}, nil
}

// ResolveUser is Resolve returning the full user record.
func (r *IdentityResolver) ResolveUser(ctx context.Context, rawToken string) (*models.User, error) {
	ctx, span := tracer.Start(ctx, "identity.resolve_user")
	defer span.End()

	user, err := r.resolveUser(ctx, rawToken)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
	return user, err
}

func (r *IdentityResolver) resolveUser(ctx context.Context, rawToken string) (*models.User, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return nil, apperrors.Unauthenticated("No token provided", nil)
	}

	userID, err := r.tokens.Verify(rawToken)
	if err != nil {
		r.logger.WithError(err).Debug("Token verification failed")
		return nil, apperrors.Unauthenticated("Invalid token", err)
	}

	user, err := r.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			r.logger.WithField("user_id", userID).Warn("Token names a user that no longer exists")
			return nil, apperrors.NotFound("User not found")
		}
		r.logger.WithError(err).WithField("user_id", userID).Error("Failed to load user for token")
		return nil, apperrors.Internal("Failed to resolve identity", err)
	}

	return user, nil
}
