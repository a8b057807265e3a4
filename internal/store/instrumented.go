package store

import (
	"context"
	"errors"
	"time"

	"github.com/lostfound/found-api/internal/metrics"
	"github.com/lostfound/found-api/internal/models"
)

// observe records the duration of a store call. A miss is not a failure.
func observe(operation string, start time.Time, err error) {
	if errors.Is(err, ErrNotFound) {
		err = nil
	}
	metrics.RecordStoreOperation(operation, err, time.Since(start))
}

// InstrumentedUserStore records Prometheus timings around a UserStore.
type InstrumentedUserStore struct {
	next UserStore
}

func NewInstrumentedUserStore(next UserStore) *InstrumentedUserStore {
	return &InstrumentedUserStore{next: next}
}

func (s *InstrumentedUserStore) NormalizeID(raw string) (string, error) {
	return s.next.NormalizeID(raw)
}

func (s *InstrumentedUserStore) Ping(ctx context.Context) error {
	if p, ok := s.next.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (s *InstrumentedUserStore) Create(ctx context.Context, user *models.User) (err error) {
	defer func(start time.Time) { observe("users.create", start, err) }(time.Now())
	return s.next.Create(ctx, user)
}

func (s *InstrumentedUserStore) GetByID(ctx context.Context, id string) (u *models.User, err error) {
	defer func(start time.Time) { observe("users.get_by_id", start, err) }(time.Now())
	return s.next.GetByID(ctx, id)
}

func (s *InstrumentedUserStore) GetByEmail(ctx context.Context, email string) (u *models.User, err error) {
	defer func(start time.Time) { observe("users.get_by_email", start, err) }(time.Now())
	return s.next.GetByEmail(ctx, email)
}

func (s *InstrumentedUserStore) UpdateName(ctx context.Context, id, name string) (err error) {
	defer func(start time.Time) { observe("users.update_name", start, err) }(time.Now())
	return s.next.UpdateName(ctx, id, name)
}

// InstrumentedItemStore records Prometheus timings around an ItemStore.
type InstrumentedItemStore struct {
	next ItemStore
}

func NewInstrumentedItemStore(next ItemStore) *InstrumentedItemStore {
	return &InstrumentedItemStore{next: next}
}

func (s *InstrumentedItemStore) NormalizeID(raw string) (string, error) {
	return s.next.NormalizeID(raw)
}

func (s *InstrumentedItemStore) Ping(ctx context.Context) error {
	if p, ok := s.next.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (s *InstrumentedItemStore) Create(ctx context.Context, item *models.FoundItem) (err error) {
	defer func(start time.Time) { observe("items.create", start, err) }(time.Now())
	return s.next.Create(ctx, item)
}

func (s *InstrumentedItemStore) GetByID(ctx context.Context, id string) (item *models.FoundItem, err error) {
	defer func(start time.Time) { observe("items.get_by_id", start, err) }(time.Now())
	return s.next.GetByID(ctx, id)
}

func (s *InstrumentedItemStore) List(ctx context.Context) (items []*models.FoundItem, err error) {
	defer func(start time.Time) { observe("items.list", start, err) }(time.Now())
	return s.next.List(ctx)
}

func (s *InstrumentedItemStore) ListByOwner(ctx context.Context, ownerID string) (items []*models.FoundItem, err error) {
	defer func(start time.Time) { observe("items.list_by_owner", start, err) }(time.Now())
	return s.next.ListByOwner(ctx, ownerID)
}

func (s *InstrumentedItemStore) UpdateStatus(ctx context.Context, id string, status models.ItemStatus) (item *models.FoundItem, err error) {
	defer func(start time.Time) { observe("items.update_status", start, err) }(time.Now())
	return s.next.UpdateStatus(ctx, id, status)
}

func (s *InstrumentedItemStore) Delete(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { observe("items.delete", start, err) }(time.Now())
	return s.next.Delete(ctx, id)
}

func (s *InstrumentedItemStore) UpdatePosterName(ctx context.Context, ownerID, name string) (n int, err error) {
	defer func(start time.Time) { observe("items.update_poster_name", start, err) }(time.Now())
	return s.next.UpdatePosterName(ctx, ownerID, name)
}
