// Package identity adapts external identity providers to the session layer.
package identity

import (
	"context"
	"errors"

	"github.com/tracknfresh/tracknfresh-web/internal/model"
)

var (
	// ErrInvalidCredentials covers unknown accounts and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken is returned by SignUp when the email already has an account.
	ErrEmailTaken = errors.New("email already registered")
	// ErrFederatedUnavailable is returned when federated login is not configured.
	ErrFederatedUnavailable = errors.New("federated login unavailable")
)

// Provider names stamped on identities.
const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
	ProviderLocal    = "local"
)

// SignUpRequest carries the registration form.
type SignUpRequest struct {
	DisplayName string
	Email       string
	PhotoURL    string
	Password    string
}

// Provider validates credentials and returns the resulting identity.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*model.UserIdentity, error)
	SignUp(ctx context.Context, req SignUpRequest) (*model.UserIdentity, error)
	// AuthCodeURL returns the federated login URL carrying state.
	AuthCodeURL(state string) (string, error)
	// Exchange completes a federated login from the authorization code.
	Exchange(ctx context.Context, code string) (*model.UserIdentity, error)
	HealthPing(ctx context.Context) error
	Close() error
}
