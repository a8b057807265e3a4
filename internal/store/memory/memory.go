// Package memory is an in-process store used for local development and tests.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lostfound/found-api/internal/models"
	"github.com/lostfound/found-api/internal/store"
)

// normalizeID canonicalizes UUIDs, the id format this backend assigns.
func normalizeID(raw string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %q", store.ErrInvalidID, raw)
	}
	return id.String(), nil
}

// UserStore keeps users in maps guarded by a RWMutex.
type UserStore struct {
	mu      sync.RWMutex
	byID    map[string]*models.User
	byEmail map[string]string
}

// NewUserStore creates an empty user store.
func NewUserStore() *UserStore {
	return &UserStore{
		byID:    make(map[string]*models.User),
		byEmail: make(map[string]string),
	}
}

func (s *UserStore) NormalizeID(raw string) (string, error) { return normalizeID(raw) }

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[user.Email]; exists {
		return store.ErrDuplicateEmail
	}

	user.ID = uuid.New().String()
	cp := *user
	s.byID[user.ID] = &cp
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	id, err := normalizeID(id)
	if err != nil {
		return nil, store.ErrNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *s.byID[id]
	return &cp, nil
}

func (s *UserStore) UpdateName(ctx context.Context, id, name string) error {
	id, err := normalizeID(id)
	if err != nil {
		return store.ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	user.Name = name
	user.UpdatedAt = time.Now().UTC()
	return nil
}

// Delete removes a user. Items keep their dangling postedBy reference.
func (s *UserStore) Delete(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user, ok := s.byID[id]; ok {
		delete(s.byEmail, user.Email)
		delete(s.byID, id)
	}
}

// ItemStore keeps items in a map guarded by a RWMutex.
type ItemStore struct {
	mu    sync.RWMutex
	items map[string]*models.FoundItem
}

// NewItemStore creates an empty item store.
func NewItemStore() *ItemStore {
	return &ItemStore{items: make(map[string]*models.FoundItem)}
}

func (s *ItemStore) NormalizeID(raw string) (string, error) { return normalizeID(raw) }

func (s *ItemStore) Create(ctx context.Context, item *models.FoundItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item.ID = uuid.New().String()
	s.items[item.ID] = copyItem(item)
	return nil
}

func (s *ItemStore) GetByID(ctx context.Context, id string) (*models.FoundItem, error) {
	id, err := normalizeID(id)
	if err != nil {
		return nil, store.ErrNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyItem(item), nil
}

func (s *ItemStore) List(ctx context.Context) ([]*models.FoundItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.FoundItem, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, copyItem(item))
	}
	return out, nil
}

func (s *ItemStore) ListByOwner(ctx context.Context, ownerID string) ([]*models.FoundItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.FoundItem
	for _, item := range s.items {
		if item.PostedBy == ownerID {
			out = append(out, copyItem(item))
		}
	}
	return out, nil
}

func (s *ItemStore) UpdateStatus(ctx context.Context, id string, status models.ItemStatus) (*models.FoundItem, error) {
	id, err := normalizeID(id)
	if err != nil {
		return nil, store.ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	now := time.Now().UTC()
	item.Status = status
	item.UpdatedAt = &now
	return copyItem(item), nil
}

func (s *ItemStore) Delete(ctx context.Context, id string) error {
	id, err := normalizeID(id)
	if err != nil {
		return store.ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *ItemStore) UpdatePosterName(ctx context.Context, ownerID, name string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := 0
	for _, item := range s.items {
		if item.PostedBy == ownerID {
			item.PostedByName = name
			matched++
		}
	}
	return matched, nil
}

func copyItem(item *models.FoundItem) *models.FoundItem {
	cp := *item
	if item.UpdatedAt != nil {
		t := *item.UpdatedAt
		cp.UpdatedAt = &t
	}
	return &cp
}
