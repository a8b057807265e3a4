package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/lostfound/found-api/internal/logging"
	"github.com/lostfound/found-api/internal/metrics"
	"github.com/lostfound/found-api/internal/store"
	apperrors "github.com/lostfound/found-api/pkg/errors"
)

// ProfileService updates display names and keeps the copies on items in sync.
type ProfileService struct {
	users      store.UserStore
	items      store.ItemStore
	authorizer *Authorizer
	logger     *logrus.Logger
}

func NewProfileService(users store.UserStore, items store.ItemStore, authorizer *Authorizer, logger *logrus.Logger) *ProfileService {
	return &ProfileService{
		users:      users,
		items:      items,
		authorizer: authorizer,
		logger:     logger,
	}
}

// UpdateName renames the profile userID on behalf of identity and returns
// how many items were updated.
func (s *ProfileService) UpdateName(ctx context.Context, identity *Identity, userID, name string) (int, error) {
	if err := s.authorizer.Authorize(identity, userID); err != nil {
		s.logger.WithFields(logrus.Fields{
			"user_id":   callerID(identity),
			"target_id": userID,
		}).Warn("Profile update denied")
		return 0, apperrors.Forbidden("You can only update your own profile")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return 0, apperrors.Validation("Name is required")
	}

	return s.PropagateNameChange(ctx, identity.UserID, name)
}

// PropagateNameChange writes the new name to the user record and then to
// every item the user posted. The two writes are not atomic; re-running
// converges to the same state.
func (s *ProfileService) PropagateNameChange(ctx context.Context, userID, name string) (int, error) {
	ctx, span := tracer.Start(ctx, "profile.propagate_name")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	if err := s.users.UpdateName(ctx, userID, name); err != nil {
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, store.ErrNotFound) {
			return 0, apperrors.NotFound("User not found")
		}
		logging.WithUserID(s.logger, userID).WithError(err).Error("Failed to update user name")
		return 0, apperrors.Internal("Failed to update profile", err)
	}

	return s.propagate(ctx, userID, name)
}

// Reconcile copies the user's current name onto their items again, repairing
// a propagation that failed after the user record was written.
func (s *ProfileService) Reconcile(ctx context.Context, identity *Identity, userID string) (int, error) {
	ctx, span := tracer.Start(ctx, "profile.reconcile")
	defer span.End()

	if err := s.authorizer.Authorize(identity, userID); err != nil {
		return 0, apperrors.Forbidden("You can only reconcile your own profile")
	}

	user, err := s.users.GetByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, apperrors.NotFound("User not found")
		}
		return 0, apperrors.Internal("Failed to load user", err)
	}

	return s.propagate(ctx, user.ID, user.Name)
}

func (s *ProfileService) propagate(ctx context.Context, userID, name string) (int, error) {
	updated, err := s.items.UpdatePosterName(ctx, userID, name)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"user_id":       userID,
			"items_updated": updated,
		}).Error("Name propagation to items failed")
		return updated, apperrors.Internal("Profile updated but items could not be refreshed", err)
	}
	metrics.RecordNamePropagation(updated)

	s.logger.WithFields(logrus.Fields{
		"user_id":       userID,
		"items_updated": updated,
	}).Info("Display name propagated")
	return updated, nil
}
