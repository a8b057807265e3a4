package auth

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_IssueAndVerify(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer("super-secret", time.Hour, "found-api", "found-clients")

	tok, expiresIn, err := issuer.Issue("user-123")
	require.NoError(t, err)
	assert.Equal(t, 3600, expiresIn)

	userID, err := issuer.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestTokenIssuer_Expired(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	issuer := NewTokenIssuer("secret", time.Hour, "", "").WithClock(func() time.Time { return now })

	tok, _, err := issuer.Issue("u1")
	require.NoError(t, err)

	_, err = issuer.Verify(tok)
	require.NoError(t, err)

	now = now.Add(time.Hour + time.Minute)
	_, err = issuer.Verify(tok)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, _, err := NewTokenIssuer("right-secret", time.Hour, "", "").Issue("u2")
	require.NoError(t, err)

	_, err = NewTokenIssuer("wrong-secret", time.Hour, "", "").Verify(tok)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenSignature)
}

func TestTokenIssuer_TamperedPayload(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer("secret", time.Hour, "", "")
	tok, _, err := issuer.Issue("victim")
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	forged := strings.ReplaceAll(string(payload), "victim", "attacker")
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(forged))

	_, err = issuer.Verify(strings.Join(parts, "."))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenSignature)
}

func TestTokenIssuer_RejectsNoneAlgorithm(t *testing.T) {
	t.Parallel()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u3",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID: "u3",
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenIssuer("secret", time.Hour, "", "").Verify(tok)
	assert.Error(t, err)
}

func TestTokenIssuer_Malformed(t *testing.T) {
	t.Parallel()

	_, err := NewTokenIssuer("k", time.Hour, "", "").Verify("not.a.jwt")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestTokenIssuer_AudienceMismatch(t *testing.T) {
	t.Parallel()

	tok, _, err := NewTokenIssuer("secret", time.Hour, "found-api", "web").Issue("u4")
	require.NoError(t, err)

	_, err = NewTokenIssuer("secret", time.Hour, "found-api", "mobile").Verify(tok)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenClaims)
}

func TestTokenIssuer_RequiresExpiry(t *testing.T) {
	t.Parallel()

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "u5"}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewTokenIssuer("secret", time.Hour, "", "").Verify(tok)
	assert.Error(t, err)
}

func TestTokenIssuer_EmptyUserID(t *testing.T) {
	t.Parallel()

	_, _, err := NewTokenIssuer("secret", time.Hour, "", "").Issue("")
	assert.ErrorIs(t, err, ErrTokenClaims)
}
