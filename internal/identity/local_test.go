package identity

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newLocal(t *testing.T) *LocalProvider {
	t.Helper()
	p, err := OpenLocal(":memory:")
	require.NoError(t, err)
	p.cost = bcrypt.MinCost
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestLocalProvider_SignUpThenSignIn(t *testing.T) {
	p := newLocal(t)
	ctx := context.Background()

	id, err := p.SignUp(ctx, SignUpRequest{DisplayName: "Ann", Email: "Ann@Example.com", Password: "Secret1"})
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", id.Email)
	assert.Equal(t, ProviderLocal, id.Provider)

	got, err := p.SignIn(ctx, "ann@example.com", "Secret1")
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.DisplayName)

	_, err = p.SignIn(ctx, "ann@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = p.SignIn(ctx, "nobody@example.com", "Secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLocalProvider_DuplicateEmail(t *testing.T) {
	p := newLocal(t)
	ctx := context.Background()
	_, err := p.SignUp(ctx, SignUpRequest{DisplayName: "Ann", Email: "ann@example.com", Password: "Secret1"})
	require.NoError(t, err)

	_, err = p.SignUp(ctx, SignUpRequest{DisplayName: "Other", Email: "ann@example.com", Password: "Secret2"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLocalProvider_NoFederation(t *testing.T) {
	p := newLocal(t)
	_, err := p.AuthCodeURL("state")
	assert.ErrorIs(t, err, ErrFederatedUnavailable)
	_, err = p.Exchange(context.Background(), "code")
	assert.ErrorIs(t, err, ErrFederatedUnavailable)
	assert.NoError(t, p.HealthPing(context.Background()))
}

func TestLocalProvider_PersistsOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "accounts.db")
	p, err := OpenLocal(path)
	require.NoError(t, err)
	p.cost = bcrypt.MinCost
	_, err = p.SignUp(context.Background(), SignUpRequest{DisplayName: "Bo", Email: "bo@example.com", Password: "Secret1"})
	require.NoError(t, err)
	require.NoError(t, p.Close())

	reopened, err := OpenLocal(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	_, err = reopened.SignIn(context.Background(), "bo@example.com", "Secret1")
	require.NoError(t, err)
}
