package identity

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tracknfresh/tracknfresh-web/internal/model"
)

// IDClaims is the subset of OpenID Connect claims the frontend displays.
type IDClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	jwt.RegisteredClaims
}

// IdentityFromIDToken extracts the caller's identity from an ID token issued by the
// provider. The token arrives over TLS straight from the provider, so the signature
// is not re-verified here.
func IdentityFromIDToken(token, provider string) (*model.UserIdentity, error) {
	var claims IDClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("parse id token: %w", err)
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("id token carries no email claim")
	}
	return &model.UserIdentity{
		Email:       claims.Email,
		DisplayName: claims.Name,
		PhotoURL:    claims.Picture,
		Provider:    provider,
	}, nil
}
