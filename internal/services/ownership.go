package services

import (
	"errors"

	"github.com/lostfound/found-api/internal/store"
)

// ErrForbidden is returned when the caller does not own the resource.
var ErrForbidden = errors.New("identity does not own resource")

// Authorizer checks that a resolved identity owns a resource.
type Authorizer struct {
	ids store.IDNormalizer
}

func NewAuthorizer(ids store.IDNormalizer) *Authorizer {
	return &Authorizer{ids: ids}
}

// Authorize returns nil when identity owns the resource and ErrForbidden
// otherwise. Ids that do not parse never match.
func (a *Authorizer) Authorize(identity *Identity, resourceOwnerID string) error {
	if identity == nil {
		return ErrForbidden
	}

	caller, err := a.ids.NormalizeID(identity.UserID)
	if err != nil {
		return ErrForbidden
	}
	owner, err := a.ids.NormalizeID(resourceOwnerID)
	if err != nil {
		return ErrForbidden
	}
	if caller != owner {
		return ErrForbidden
	}
	return nil
}

func callerID(identity *Identity) string {
	if identity == nil {
		return ""
	}
	return identity.UserID
}
