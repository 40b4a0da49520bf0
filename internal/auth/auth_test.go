package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/content-platform-api/internal/models"
)

type lookupFunc func(ctx context.Context, id string) (*models.User, error)

func (f lookupFunc) GetByID(ctx context.Context, id string) (*models.User, error) { return f(ctx, id) }

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	user := &models.User{ID: "u-1", Email: "w@example.com", Role: models.RoleWriter}

	token, err := issuer.Issue(user)
	require.NoError(t, err)

	userID, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)
}

func TestTokenIssuer_RejectsBadTokens(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	user := &models.User{ID: "u-1"}

	expired := NewTokenIssuer("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, err := expired.Issue(user)
	require.NoError(t, err)

	foreignToken, err := NewTokenIssuer("other-secret", time.Hour).Issue(user)
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "u-1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"malformed":    "not-a-jwt",
		"expired":      expiredToken,
		"wrong secret": foreignToken,
		"alg none":     noneToken,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := issuer.Parse(token)
			assert.ErrorIs(t, err, models.ErrInvalidCredential)
		})
	}
}

func TestPasswordHasher(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("correct horse")
	require.NoError(t, err)

	ok, err := hasher.Verify(hash, "correct horse")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = hasher.Verify(hash, "battery staple")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = hasher.Verify("", "anything")
	require.NoError(t, err)
	assert.False(t, ok, "accounts without a password never match")
}

func TestResolver(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	stored := &models.User{ID: "u-1", Name: "Wren", Role: models.RoleAdmin}
	users := lookupFunc(func(_ context.Context, id string) (*models.User, error) {
		if id == stored.ID {
			return stored, nil
		}
		return nil, nil
	})
	resolver := NewResolver(issuer, users)
	ctx := context.Background()

	t.Run("empty credential is anonymous", func(t *testing.T) {
		actor, err := resolver.Resolve(ctx, "")
		require.NoError(t, err)
		assert.True(t, actor.IsAnonymous())
	})

	t.Run("role comes from the stored user", func(t *testing.T) {
		// token claims say reader, the store says admin
		token, err := issuer.Issue(&models.User{ID: "u-1", Role: models.RoleReader})
		require.NoError(t, err)

		actor, err := resolver.Resolve(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, models.Actor{UserID: "u-1", Name: "Wren", Role: models.RoleAdmin}, actor)
	})

	t.Run("unknown user is invalid", func(t *testing.T) {
		token, err := issuer.Issue(&models.User{ID: "ghost"})
		require.NoError(t, err)

		actor, err := resolver.Resolve(ctx, token)
		assert.ErrorIs(t, err, models.ErrInvalidCredential)
		assert.True(t, actor.IsAnonymous())
	})

	t.Run("garbage is invalid", func(t *testing.T) {
		_, err := resolver.Resolve(ctx, "garbage")
		assert.ErrorIs(t, err, models.ErrInvalidCredential)
	})
}

func signAssertion(t *testing.T, secret string, claims assertionClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestAssertionVerifier(t *testing.T) {
	verifier := NewAssertionVerifier("provider-secret")
	valid := assertionClaims{
		Email: "ext@example.com",
		Name:  "Ext",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "ext-123",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}

	identity, err := verifier.Verify(signAssertion(t, "provider-secret", valid))
	require.NoError(t, err)
	assert.Equal(t, "ext-123", identity.Subject)
	assert.Equal(t, "ext@example.com", identity.Email)

	_, err = verifier.Verify(signAssertion(t, "wrong", valid))
	assert.ErrorIs(t, err, models.ErrInvalidCredential)

	missing := valid
	missing.Email = ""
	_, err = verifier.Verify(signAssertion(t, "provider-secret", missing))
	assert.ErrorIs(t, err, models.ErrInvalidCredential)

	_, err = NewAssertionVerifier("").Verify("anything")
	assert.ErrorIs(t, err, ErrExternalDisabled)
}
