package memory

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lostfound/found-api/internal/models"
	"github.com/lostfound/found-api/internal/store"
)

func TestUserStore_UniqueEmail(t *testing.T) {
	ctx := context.Background()
	s := NewUserStore()

	require.NoError(t, s.Create(ctx, &models.User{Email: "bob@x.com", Name: "Bob"}))
	err := s.Create(ctx, &models.User{Email: "bob@x.com", Name: "Robert"})
	assert.ErrorIs(t, err, store.ErrDuplicateEmail)
}

func TestUserStore_ConcurrentDuplicateRegistration(t *testing.T) {
	ctx := context.Background()
	s := NewUserStore()

	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Create(ctx, &models.User{Email: "race@x.com"}); err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
}

func TestUserStore_GetAndUpdate(t *testing.T) {
	ctx := context.Background()
	s := NewUserStore()

	u := &models.User{Email: "alice@x.com", Name: "Alice"}
	require.NoError(t, s.Create(ctx, u))
	require.NotEmpty(t, u.ID)

	got, err := s.GetByID(ctx, strings.ToUpper(u.ID))
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)

	require.NoError(t, s.UpdateName(ctx, u.ID, "Alicia"))
	got, err = s.GetByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Alicia", got.Name)

	assert.ErrorIs(t, s.UpdateName(ctx, "not-a-uuid", "x"), store.ErrNotFound)
	_, err = s.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUserStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewUserStore()

	u := &models.User{Email: "c@x.com", Name: "C"}
	require.NoError(t, s.Create(ctx, u))

	got, err := s.GetByID(ctx, u.ID)
	require.NoError(t, err)
	got.Name = "mutated"

	again, err := s.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "C", again.Name)
}

func TestItemStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewItemStore()

	item := &models.FoundItem{Title: "Umbrella", PostedBy: "owner-1", PostedByName: "Old", Status: models.StatusAvailable}
	require.NoError(t, s.Create(ctx, item))
	require.NoError(t, s.Create(ctx, &models.FoundItem{Title: "Scarf", PostedBy: "owner-1", PostedByName: "Old"}))
	require.NoError(t, s.Create(ctx, &models.FoundItem{Title: "Hat", PostedBy: "owner-2", PostedByName: "Other"}))

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := s.ListByOwner(ctx, "owner-1")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	updated, err := s.UpdateStatus(ctx, item.ID, models.StatusClaimed)
	require.NoError(t, err)
	assert.Equal(t, models.StatusClaimed, updated.Status)
	require.NotNil(t, updated.UpdatedAt)

	n, err := s.UpdatePosterName(ctx, "owner-1", "New")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	other, err := s.ListByOwner(ctx, "owner-2")
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, "Other", other[0].PostedByName)

	require.NoError(t, s.Delete(ctx, item.ID))
	assert.ErrorIs(t, s.Delete(ctx, item.ID), store.ErrNotFound)
	_, err = s.UpdateStatus(ctx, item.ID, models.StatusReturned)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
