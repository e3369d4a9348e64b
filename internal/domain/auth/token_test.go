package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devsfood/backend/internal/domain/user"
)

func TestTokens_Roundtrip(t *testing.T) {
	tokens := NewTokens([]byte("test-secret"), 24*time.Hour)

	signed, err := tokens.Issue(Identity{UserID: "u1", Role: user.RoleAdmin})
	require.NoError(t, err)

	id, err := tokens.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "u1", id.UserID)
	assert.Equal(t, user.RoleAdmin, id.Role)
}

func TestTokens_WrongSecret(t *testing.T) {
	issuer := NewTokens([]byte("secret-a"), time.Hour)
	verifier := NewTokens([]byte("secret-b"), time.Hour)

	signed, err := issuer.Issue(Identity{UserID: "u1", Role: user.RoleCustomer})
	require.NoError(t, err)

	_, err = verifier.Verify(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_Expired(t *testing.T) {
	tokens := NewTokens([]byte("test-secret"), time.Hour)

	issuedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return issuedAt }
	signed, err := tokens.Issue(Identity{UserID: "u1", Role: user.RoleCustomer})
	require.NoError(t, err)

	tokens.now = func() time.Time { return issuedAt.Add(2 * time.Hour) }
	_, err = tokens.Verify(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_Garbage(t *testing.T) {
	tokens := NewTokens([]byte("test-secret"), time.Hour)

	_, err := tokens.Verify("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}
