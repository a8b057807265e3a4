// Package store defines the document-store contracts the services depend on.
// Backends live in the memory, dynamo and mongo subpackages.
package store

import (
	"context"
	"errors"

	"github.com/lostfound/found-api/internal/models"
)

var (
	// ErrNotFound is returned when no document matches the lookup.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicateEmail is returned when inserting a user whose email is taken.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInvalidID is returned when an id is not in the backend's native format.
	ErrInvalidID = errors.New("invalid document id")
)

// IDNormalizer converts an externally supplied id into the backend's
// canonical string form so two spellings of the same id compare equal.
type IDNormalizer interface {
	NormalizeID(raw string) (string, error)
}

// UserStore is the credential store.
type UserStore interface {
	IDNormalizer
	// Create assigns an ID and inserts the user. Returns ErrDuplicateEmail when the email is taken.
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// UpdateName sets the display name of exactly one user. Returns ErrNotFound when nothing matched.
	UpdateName(ctx context.Context, id, name string) error
}

// ItemStore is the found-item collection.
type ItemStore interface {
	IDNormalizer
	// Create assigns an ID and inserts the item.
	Create(ctx context.Context, item *models.FoundItem) error
	GetByID(ctx context.Context, id string) (*models.FoundItem, error)
	// List returns every item, in no particular order.
	List(ctx context.Context) ([]*models.FoundItem, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.FoundItem, error)
	// UpdateStatus sets status and updatedAt. Returns ErrNotFound when nothing matched.
	UpdateStatus(ctx context.Context, id string, status models.ItemStatus) (*models.FoundItem, error)
	Delete(ctx context.Context, id string) error
	// UpdatePosterName sets postedByName on every item owned by ownerID and
	// returns how many items matched.
	UpdatePosterName(ctx context.Context, ownerID, name string) (int, error)
}

// Pinger is implemented by backends that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
