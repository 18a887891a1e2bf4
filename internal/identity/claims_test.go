package identity

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signTestToken(t *testing.T, claims IDClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestIdentityFromIDToken(t *testing.T) {
	tok := signTestToken(t, IDClaims{
		Email:   "ann@example.com",
		Name:    "Ann",
		Picture: "https://img/ann.png",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	id, err := IdentityFromIDToken(tok, ProviderGoogle)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", id.Email)
	assert.Equal(t, "Ann", id.DisplayName)
	assert.Equal(t, "https://img/ann.png", id.PhotoURL)
	assert.Equal(t, ProviderGoogle, id.Provider)
}

func TestIdentityFromIDToken_Rejects(t *testing.T) {
	_, err := IdentityFromIDToken("not-a-jwt", ProviderGoogle)
	require.Error(t, err)

	_, err = IdentityFromIDToken(signTestToken(t, IDClaims{Name: "no email"}), ProviderGoogle)
	require.Error(t, err)
}
