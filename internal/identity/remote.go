package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/tracknfresh/tracknfresh-web/internal/model"
)

// RemoteProvider talks to a REST identity toolkit (accounts:signInWithPassword,
// accounts:signUp, accounts:update, accounts:signInWithIdp).
type RemoteProvider struct {
	http  *resty.Client
	oauth *oauth2.Config
	log   zerolog.Logger
}

// RemoteConfig configures NewRemoteProvider.
type RemoteConfig struct {
	BaseURL string
	APIKey  string
	// OAuth is optional; nil disables federated login.
	OAuth   *oauth2.Config
	Timeout time.Duration
	Log     zerolog.Logger
}

// NewRemoteProvider creates a provider backed by the identity toolkit at cfg.BaseURL.
func NewRemoteProvider(cfg RemoteConfig) (*RemoteProvider, error) {
	if cfg.BaseURL == "" || cfg.APIKey == "" {
		return nil, fmt.Errorf("identity toolkit url and api key are required")
	}
	c := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetQueryParam("key", cfg.APIKey)
	if cfg.Timeout > 0 {
		c.SetTimeout(cfg.Timeout)
	}
	return &RemoteProvider{http: c, oauth: cfg.OAuth, log: cfg.Log}, nil
}

type toolkitResponse struct {
	IDToken     string `json:"idToken"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoUrl"`
	LocalID     string `json:"localId"`
}

type toolkitError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SignIn validates email and password.
func (p *RemoteProvider) SignIn(ctx context.Context, email, password string) (*model.UserIdentity, error) {
	body := map[string]interface{}{"email": email, "password": password, "returnSecureToken": true}
	out, err := p.call(ctx, "/v1/accounts:signInWithPassword", body)
	if err != nil {
		return nil, err
	}
	return p.identity(out, ProviderPassword)
}

// SignUp creates the account, then sets display name and photo.
func (p *RemoteProvider) SignUp(ctx context.Context, req SignUpRequest) (*model.UserIdentity, error) {
	body := map[string]interface{}{"email": req.Email, "password": req.Password, "returnSecureToken": true}
	out, err := p.call(ctx, "/v1/accounts:signUp", body)
	if err != nil {
		return nil, err
	}

	update := map[string]interface{}{
		"idToken":           out.IDToken,
		"displayName":       req.DisplayName,
		"photoUrl":          req.PhotoURL,
		"returnSecureToken": true,
	}
	upd, err := p.call(ctx, "/v1/accounts:update", update)
	if err != nil {
		// the account exists; profile details are cosmetic
		p.log.Warn().Err(err).Str("email", req.Email).Msg("profile update after sign-up failed")
		upd = out
	}
	id, err := p.identity(upd, ProviderPassword)
	if err != nil {
		return nil, err
	}
	if id.DisplayName == "" {
		id.DisplayName = req.DisplayName
	}
	if id.PhotoURL == "" {
		id.PhotoURL = req.PhotoURL
	}
	return id, nil
}

// AuthCodeURL returns the consent page URL for the configured OAuth client.
func (p *RemoteProvider) AuthCodeURL(state string) (string, error) {
	if p.oauth == nil {
		return "", ErrFederatedUnavailable
	}
	return p.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

// Exchange trades the authorization code for the provider's ID token and signs in with it.
func (p *RemoteProvider) Exchange(ctx context.Context, code string) (*model.UserIdentity, error) {
	if p.oauth == nil {
		return nil, ErrFederatedUnavailable
	}
	tok, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("oauth exchange: %w", err)
	}
	idToken, _ := tok.Extra("id_token").(string)
	if idToken == "" {
		return nil, fmt.Errorf("oauth exchange: no id_token in response")
	}

	postBody := url.Values{"id_token": {idToken}, "providerId": {"google.com"}}.Encode()
	body := map[string]interface{}{
		"postBody":            postBody,
		"requestUri":          p.oauth.RedirectURL,
		"returnSecureToken":   true,
		"returnIdpCredential": true,
	}
	out, err := p.call(ctx, "/v1/accounts:signInWithIdp", body)
	if err != nil {
		return nil, err
	}
	return p.identity(out, ProviderGoogle)
}

// HealthPing checks that the toolkit host answers at all; any HTTP status counts.
func (p *RemoteProvider) HealthPing(ctx context.Context) error {
	if _, err := p.http.R().SetContext(ctx).Head("/"); err != nil {
		return fmt.Errorf("identity provider unreachable: %w", err)
	}
	return nil
}

// Close is a no-op; the HTTP client holds no resources that need release.
func (p *RemoteProvider) Close() error { return nil }

func (p *RemoteProvider) call(ctx context.Context, path string, body interface{}) (*toolkitResponse, error) {
	resp, err := p.http.R().SetContext(ctx).SetBody(body).Post(path)
	if err != nil {
		return nil, fmt.Errorf("identity request %s: %w", path, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, classifyToolkitError(path, resp.StatusCode(), resp.Body())
	}
	var out toolkitResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", path, err)
	}
	return &out, nil
}

// identity prefers ID token claims and falls back to the response fields.
func (p *RemoteProvider) identity(out *toolkitResponse, provider string) (*model.UserIdentity, error) {
	if out.IDToken != "" {
		if id, err := IdentityFromIDToken(out.IDToken, provider); err == nil {
			if id.DisplayName == "" {
				id.DisplayName = out.DisplayName
			}
			if id.PhotoURL == "" {
				id.PhotoURL = out.PhotoURL
			}
			return id, nil
		}
	}
	if out.Email == "" {
		return nil, fmt.Errorf("identity provider returned no email")
	}
	return &model.UserIdentity{
		Email:       out.Email,
		DisplayName: out.DisplayName,
		PhotoURL:    out.PhotoURL,
		Provider:    provider,
	}, nil
}

func classifyToolkitError(path string, status int, body []byte) error {
	var te toolkitError
	_ = json.Unmarshal(body, &te)
	msg := te.Error.Message
	// messages may carry a detail suffix, e.g. "WEAK_PASSWORD : Password should be at least 6 characters"
	code, _, _ := strings.Cut(msg, " ")
	switch code {
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "USER_DISABLED", "INVALID_EMAIL":
		return ErrInvalidCredentials
	case "EMAIL_EXISTS":
		return ErrEmailTaken
	}
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	return fmt.Errorf("identity request %s: status %d: %s", path, status, msg)
}

// NewOAuthConfig builds the Google OAuth2 client used for federated login.
func NewOAuthConfig(clientID, clientSecret, redirectURL string, endpoint oauth2.Endpoint) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     endpoint,
	}
}
