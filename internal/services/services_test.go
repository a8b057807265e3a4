package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lostfound/found-api/internal/auth"
	"github.com/lostfound/found-api/internal/models"
	"github.com/lostfound/found-api/internal/store"
	"github.com/lostfound/found-api/internal/store/memory"
	apperrors "github.com/lostfound/found-api/pkg/errors"
)

type fixture struct {
	users    *memory.UserStore
	items    *memory.ItemStore
	tokens   *auth.TokenIssuer
	resolver *IdentityResolver
	auth     *AuthService
	itemSvc  *ItemService
	profile  *ProfileService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	users := memory.NewUserStore()
	items := memory.NewItemStore()
	tokens := auth.NewTokenIssuer("test-secret", time.Hour, "found-api", "")
	resolver := NewIdentityResolver(users, tokens, logger)
	authorizer := NewAuthorizer(users)

	return &fixture{
		users:    users,
		items:    items,
		tokens:   tokens,
		resolver: resolver,
		auth:     NewAuthService(users, auth.NewPasswordHasher(bcrypt.MinCost), tokens, resolver, logger),
		itemSvc:  NewItemService(items, authorizer, logger),
		profile:  NewProfileService(users, items, authorizer, logger),
	}
}

func (f *fixture) register(t *testing.T, name, email string) (*models.AuthResponse, *Identity) {
	t.Helper()
	resp, err := f.auth.Register(context.Background(), models.RegisterRequest{Name: name, Email: email, Password: "secret1"})
	require.NoError(t, err)
	identity, err := f.resolver.Resolve(context.Background(), resp.Token)
	require.NoError(t, err)
	return resp, identity
}

func validItem(title string) models.CreateItemRequest {
	return models.CreateItemRequest{
		Title:       title,
		Description: "Found near the fountain",
		Category:    "Accessories",
		Location:    "Central Park",
		DateFound:   "2024-03-01",
		ContactInfo: "555-0100",
	}
}

func assertCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, code), "want %s, got %v", code, err)
}

func TestRegister_TokenVerifiesToCreatedUser(t *testing.T) {
	f := newFixture(t)

	resp, err := f.auth.Register(context.Background(), models.RegisterRequest{
		Name: "  Bob ", Email: " Bob@X.com ", Password: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, "bob@x.com", resp.User.Email)
	assert.Equal(t, "Bob", resp.User.Name)
	assert.Equal(t, int(time.Hour.Seconds()), resp.ExpiresIn)

	userID, err := f.tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, userID)
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Register(ctx, models.RegisterRequest{Name: "", Email: "a@x.com", Password: "secret1"})
	assertCode(t, err, apperrors.CodeValidation)

	_, err = f.auth.Register(ctx, models.RegisterRequest{Name: "A", Email: "a@x.com", Password: "12345"})
	assertCode(t, err, apperrors.CodeValidation)

	_, err = f.auth.Register(ctx, models.RegisterRequest{Name: "A", Email: "a@x.com", Password: strings.Repeat("x", 73)})
	assertCode(t, err, apperrors.CodeValidation)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Bob", "bob@x.com")

	_, err := f.auth.Register(context.Background(), models.RegisterRequest{Name: "Robert", Email: "BOB@x.com", Password: "secret2"})
	assertCode(t, err, apperrors.CodeConflict)
}

func TestLogin_IdenticalDenial(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Bob", "bob@x.com")
	ctx := context.Background()

	resp, err := f.auth.Login(ctx, models.LoginRequest{Email: "bob@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)

	_, wrongPassword := f.auth.Login(ctx, models.LoginRequest{Email: "bob@x.com", Password: "nope-nope"})
	_, unknownEmail := f.auth.Login(ctx, models.LoginRequest{Email: "nobody@x.com", Password: "secret1"})
	assertCode(t, wrongPassword, apperrors.CodeInvalidCredentials)
	assertCode(t, unknownEmail, apperrors.CodeInvalidCredentials)
	assert.Equal(t, apperrors.As(wrongPassword).Message, apperrors.As(unknownEmail).Message)

	_, err = f.auth.Login(ctx, models.LoginRequest{Email: "bob@x.com"})
	assertCode(t, err, apperrors.CodeValidation)
}

func TestVerify(t *testing.T) {
	f := newFixture(t)
	resp, _ := f.register(t, "Bob", "bob@x.com")
	ctx := context.Background()

	user, err := f.auth.Verify(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "Bob", user.Name)

	_, err = f.auth.Verify(ctx, "")
	assertCode(t, err, apperrors.CodeUnauthenticated)

	_, err = f.auth.Verify(ctx, "garbage.token.value")
	assertCode(t, err, apperrors.CodeUnauthenticated)

	f.users.Delete(ctx, resp.User.ID)
	_, err = f.auth.Verify(ctx, resp.Token)
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestResolve_ExpiredToken(t *testing.T) {
	f := newFixture(t)
	resp, _ := f.register(t, "Bob", "bob@x.com")

	future := auth.NewTokenIssuer("test-secret", time.Hour, "found-api", "").
		WithClock(func() time.Time { return time.Now().Add(2 * time.Hour) })
	resolver := NewIdentityResolver(f.users, future, logrus.New())

	_, err := resolver.Resolve(context.Background(), resp.Token)
	assertCode(t, err, apperrors.CodeUnauthenticated)
}

func TestAuthorizer(t *testing.T) {
	f := newFixture(t)
	_, alice := f.register(t, "Alice", "alice@x.com")
	_, bob := f.register(t, "Bob", "bob@x.com")
	a := NewAuthorizer(f.users)

	assert.NoError(t, a.Authorize(alice, alice.UserID))
	assert.NoError(t, a.Authorize(alice, strings.ToUpper(alice.UserID)))
	assert.ErrorIs(t, a.Authorize(bob, alice.UserID), ErrForbidden)
	assert.ErrorIs(t, a.Authorize(alice, "not-an-id"), ErrForbidden)
	assert.ErrorIs(t, a.Authorize(nil, alice.UserID), ErrForbidden)
}

func TestItems_CreateStampsOwner(t *testing.T) {
	f := newFixture(t)
	_, bob := f.register(t, "Bob", "bob@x.com")

	item, err := f.itemSvc.Create(context.Background(), bob, validItem("Umbrella"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusAvailable, item.Status)
	assert.Equal(t, bob.UserID, item.PostedBy)
	assert.Equal(t, "Bob", item.PostedByName)
	assert.False(t, item.CreatedAt.IsZero())
	assert.Nil(t, item.UpdatedAt)
}

func TestItems_CreateValidation(t *testing.T) {
	f := newFixture(t)
	_, bob := f.register(t, "Bob", "bob@x.com")
	ctx := context.Background()

	req := validItem("Umbrella")
	req.ContactInfo = "  "
	_, err := f.itemSvc.Create(ctx, bob, req)
	assertCode(t, err, apperrors.CodeValidation)
	assert.Contains(t, err.Error(), "contactInfo")

	req = validItem("Umbrella")
	req.Category = "Spaceships"
	_, err = f.itemSvc.Create(ctx, bob, req)
	assertCode(t, err, apperrors.CodeValidation)
}

func TestItems_OnlyOwnerMutates(t *testing.T) {
	f := newFixture(t)
	_, alice := f.register(t, "Alice", "alice@x.com")
	_, bob := f.register(t, "Bob", "bob@x.com")
	ctx := context.Background()

	item, err := f.itemSvc.Create(ctx, alice, validItem("Wallet"))
	require.NoError(t, err)

	_, err = f.itemSvc.UpdateStatus(ctx, bob, item.ID, models.StatusClaimed)
	assertCode(t, err, apperrors.CodeNotFound)
	assertCode(t, f.itemSvc.Delete(ctx, bob, item.ID), apperrors.CodeNotFound)

	updated, err := f.itemSvc.UpdateStatus(ctx, alice, item.ID, models.StatusClaimed)
	require.NoError(t, err)
	assert.Equal(t, models.StatusClaimed, updated.Status)
	require.NotNil(t, updated.UpdatedAt)

	_, err = f.itemSvc.UpdateStatus(ctx, alice, item.ID, "lost")
	assertCode(t, err, apperrors.CodeValidation)

	require.NoError(t, f.itemSvc.Delete(ctx, alice, item.ID))
	_, err = f.itemSvc.Get(ctx, item.ID)
	assertCode(t, err, apperrors.CodeNotFound)
	assertCode(t, f.itemSvc.Delete(ctx, alice, item.ID), apperrors.CodeNotFound)
}

func TestItems_ListFiltersAndStats(t *testing.T) {
	f := newFixture(t)
	_, alice := f.register(t, "Alice", "alice@x.com")
	_, bob := f.register(t, "Bob", "bob@x.com")
	ctx := context.Background()

	wallet, err := f.itemSvc.Create(ctx, alice, validItem("Wallet"))
	require.NoError(t, err)
	_, err = f.itemSvc.Create(ctx, alice, validItem("Keys"))
	require.NoError(t, err)
	_, err = f.itemSvc.Create(ctx, bob, validItem("Scarf"))
	require.NoError(t, err)
	_, err = f.itemSvc.UpdateStatus(ctx, alice, wallet.ID, models.StatusReturned)
	require.NoError(t, err)

	all, err := f.itemSvc.List(ctx, models.ItemFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	found, err := f.itemSvc.List(ctx, models.ItemFilter{Query: "wALLet"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, wallet.ID, found[0].ID)

	mine, err := f.itemSvc.ListByOwner(ctx, strings.ToUpper(alice.UserID))
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	none, err := f.itemSvc.ListByOwner(ctx, "nope")
	require.NoError(t, err)
	assert.Empty(t, none)

	stats, err := f.itemSvc.Stats(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.ItemStats{Total: 2, Available: 1, Returned: 1}, stats)

	_, err = f.itemSvc.List(ctx, models.ItemFilter{Status: "lost"})
	assertCode(t, err, apperrors.CodeValidation)
}

func TestItems_OrphanedItemsStillListed(t *testing.T) {
	f := newFixture(t)
	_, alice := f.register(t, "Alice", "alice@x.com")
	ctx := context.Background()

	_, err := f.itemSvc.Create(ctx, alice, validItem("Wallet"))
	require.NoError(t, err)
	f.users.Delete(ctx, alice.UserID)

	items, err := f.itemSvc.List(ctx, models.ItemFilter{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Alice", items[0].PostedByName)
}

func TestProfile_RenamePropagates(t *testing.T) {
	f := newFixture(t)
	_, alice := f.register(t, "Alice", "alice@x.com")
	_, bob := f.register(t, "Bob", "bob@x.com")
	ctx := context.Background()

	for _, title := range []string{"Wallet", "Keys", "Phone"} {
		_, err := f.itemSvc.Create(ctx, alice, validItem(title))
		require.NoError(t, err)
	}
	_, err := f.itemSvc.Create(ctx, bob, validItem("Scarf"))
	require.NoError(t, err)

	n, err := f.profile.UpdateName(ctx, alice, alice.UserID, "  Alicia ")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	user, err := f.users.GetByID(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Alicia", user.Name)

	items, err := f.itemSvc.List(ctx, models.ItemFilter{})
	require.NoError(t, err)
	for _, item := range items {
		if item.PostedBy == alice.UserID {
			assert.Equal(t, "Alicia", item.PostedByName)
		} else {
			assert.Equal(t, "Bob", item.PostedByName)
		}
	}

	// Same name twice converges to the same state
	n, err = f.profile.UpdateName(ctx, alice, alice.UserID, "Alicia")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestProfile_Denials(t *testing.T) {
	f := newFixture(t)
	_, alice := f.register(t, "Alice", "alice@x.com")
	_, bob := f.register(t, "Bob", "bob@x.com")
	ctx := context.Background()

	_, err := f.profile.UpdateName(ctx, bob, alice.UserID, "Mallory")
	assertCode(t, err, apperrors.CodeForbidden)

	_, err = f.profile.UpdateName(ctx, alice, alice.UserID, "   ")
	assertCode(t, err, apperrors.CodeValidation)

	f.users.Delete(ctx, alice.UserID)
	_, err = f.profile.UpdateName(ctx, alice, alice.UserID, "Alicia")
	assertCode(t, err, apperrors.CodeNotFound)
}

// failingItems fails the dependent write of a rename.
type failingItems struct {
	store.ItemStore
}

func (failingItems) UpdatePosterName(context.Context, string, string) (int, error) {
	return 0, errors.New("items unavailable")
}

func TestProfile_ReconcileRepairsPartialRename(t *testing.T) {
	f := newFixture(t)
	_, alice := f.register(t, "Alice", "alice@x.com")
	ctx := context.Background()

	_, err := f.itemSvc.Create(ctx, alice, validItem("Wallet"))
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	broken := NewProfileService(f.users, failingItems{f.items}, NewAuthorizer(f.users), logger)

	_, err = broken.UpdateName(ctx, alice, alice.UserID, "Alicia")
	assertCode(t, err, apperrors.CodeInternalError)

	user, err := f.users.GetByID(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Alicia", user.Name)

	stale, err := f.itemSvc.ListByOwner(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", stale[0].PostedByName)

	n, err := f.profile.Reconcile(ctx, alice, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	fixed, err := f.itemSvc.ListByOwner(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Alicia", fixed[0].PostedByName)
}
