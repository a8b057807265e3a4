package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/lostfound/found-api/internal/logging"
	"github.com/lostfound/found-api/internal/metrics"
	"github.com/lostfound/found-api/internal/models"
	"github.com/lostfound/found-api/internal/store"
	apperrors "github.com/lostfound/found-api/pkg/errors"
)

// ItemService manages found-item postings.
type ItemService struct {
	items      store.ItemStore
	authorizer *Authorizer
	logger     *logrus.Logger
}

func NewItemService(items store.ItemStore, authorizer *Authorizer, logger *logrus.Logger) *ItemService {
	return &ItemService{items: items, authorizer: authorizer, logger: logger}
}

// List returns items matching filter, newest first. Owners are never resolved.
func (s *ItemService) List(ctx context.Context, filter models.ItemFilter) ([]*models.FoundItem, error) {
	ctx, span := tracer.Start(ctx, "items.list")
	defer span.End()

	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperrors.Validation(fmt.Sprintf("Invalid status %q", filter.Status))
	}

	if filter.PostedBy != "" {
		owner, err := s.items.NormalizeID(filter.PostedBy)
		if err != nil {
			return []*models.FoundItem{}, nil
		}
		filter.PostedBy = owner
	}

	var (
		items []*models.FoundItem
		err   error
	)
	if filter.PostedBy != "" {
		items, err = s.items.ListByOwner(ctx, filter.PostedBy)
	} else {
		items, err = s.items.List(ctx)
	}
	if err != nil {
		s.logger.WithError(err).Error("Failed to list items")
		return nil, apperrors.Internal("Failed to list items", err)
	}

	return filter.Apply(items), nil
}

func (s *ItemService) Get(ctx context.Context, id string) (*models.FoundItem, error) {
	ctx, span := tracer.Start(ctx, "items.get")
	defer span.End()

	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("Item not found")
		}
		return nil, apperrors.Internal("Failed to load item", err)
	}
	return item, nil
}

// ListByOwner returns a user's postings, newest first.
func (s *ItemService) ListByOwner(ctx context.Context, ownerID string) ([]*models.FoundItem, error) {
	return s.List(ctx, models.ItemFilter{PostedBy: ownerID})
}

// Stats counts a user's postings per status.
func (s *ItemService) Stats(ctx context.Context, ownerID string) (models.ItemStats, error) {
	items, err := s.ListByOwner(ctx, ownerID)
	if err != nil {
		return models.ItemStats{}, err
	}
	return models.Stats(items), nil
}

// Create posts an item on behalf of identity. The poster's current name is
// copied onto the item.
func (s *ItemService) Create(ctx context.Context, identity *Identity, req models.CreateItemRequest) (*models.FoundItem, error) {
	ctx, span := tracer.Start(ctx, "items.create")
	defer span.End()

	req.Normalize()
	if missing := req.MissingFields(); len(missing) > 0 {
		metrics.RecordItemOperation("create", "invalid")
		return nil, apperrors.Validation("Missing required fields: " + strings.Join(missing, ", "))
	}
	if !models.IsValidCategory(req.Category) {
		metrics.RecordItemOperation("create", "invalid")
		return nil, apperrors.Validation(fmt.Sprintf("Invalid category %q", req.Category))
	}

	item := &models.FoundItem{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Location:     req.Location,
		DateFound:    req.DateFound,
		ContactInfo:  req.ContactInfo,
		ImageURL:     req.ImageURL,
		PostedBy:     identity.UserID,
		PostedByName: identity.Name,
		CreatedAt:    time.Now().UTC(),
		Status:       models.StatusAvailable,
	}
	if err := s.items.Create(ctx, item); err != nil {
		metrics.RecordItemOperation("create", "failure")
		s.logger.WithError(err).WithField("user_id", identity.UserID).Error("Failed to create item")
		return nil, apperrors.Internal("Failed to create item", err)
	}
	span.SetAttributes(attribute.String("item.id", item.ID))
	metrics.RecordItemOperation("create", "success")

	logging.WithItem(s.logger, item.ID, item.PostedBy).Info("Item created")
	return item, nil
}

// UpdateStatus changes an item's status. Items the caller does not own are
// reported as not found.
func (s *ItemService) UpdateStatus(ctx context.Context, identity *Identity, id string, status models.ItemStatus) (*models.FoundItem, error) {
	ctx, span := tracer.Start(ctx, "items.update_status")
	defer span.End()

	if !status.Valid() {
		metrics.RecordItemOperation("update_status", "invalid")
		return nil, apperrors.Validation("Status must be one of available, claimed, returned")
	}

	if _, err := s.ownedItem(ctx, identity, id, "update_status"); err != nil {
		return nil, err
	}

	item, err := s.items.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.RecordItemOperation("update_status", "not_found")
			return nil, apperrors.NotFound("Item not found or you don't have permission to update it")
		}
		metrics.RecordItemOperation("update_status", "failure")
		return nil, apperrors.Internal("Failed to update item", err)
	}
	metrics.RecordItemOperation("update_status", "success")

	logging.WithItem(s.logger, item.ID, item.PostedBy).WithField("status", status).Info("Item status updated")
	return item, nil
}

// Delete removes an item the caller owns.
func (s *ItemService) Delete(ctx context.Context, identity *Identity, id string) error {
	ctx, span := tracer.Start(ctx, "items.delete")
	defer span.End()

	item, err := s.ownedItem(ctx, identity, id, "delete")
	if err != nil {
		return err
	}

	if err := s.items.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.RecordItemOperation("delete", "not_found")
			return apperrors.NotFound("Item not found or you don't have permission to delete it")
		}
		metrics.RecordItemOperation("delete", "failure")
		return apperrors.Internal("Failed to delete item", err)
	}
	metrics.RecordItemOperation("delete", "success")

	logging.WithItem(s.logger, item.ID, item.PostedBy).Info("Item deleted")
	return nil
}

// ownedItem loads id and checks identity owns it. Absence and foreign
// ownership produce the same NOT_FOUND error.
func (s *ItemService) ownedItem(ctx context.Context, identity *Identity, id, operation string) (*models.FoundItem, error) {
	notFound := apperrors.NotFound(fmt.Sprintf("Item not found or you don't have permission to %s it", verb(operation)))

	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.RecordItemOperation(operation, "not_found")
			return nil, notFound
		}
		metrics.RecordItemOperation(operation, "failure")
		return nil, apperrors.Internal("Failed to load item", err)
	}

	if err := s.authorizer.Authorize(identity, item.PostedBy); err != nil {
		metrics.RecordItemOperation(operation, "denied")
		s.logger.WithFields(logrus.Fields{
			"item_id":  item.ID,
			"owner_id": item.PostedBy,
			"user_id":  callerID(identity),
		}).Warn("Ownership check failed")
		return nil, notFound
	}
	return item, nil
}

func verb(operation string) string {
	if operation == "delete" {
		return "delete"
	}
	return "update"
}
