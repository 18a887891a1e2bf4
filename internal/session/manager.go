// Package session holds the per-browser authentication state: the signed-in
// identity and one-shot notices, stored in an encrypted cookie.
package session

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"

	"github.com/tracknfresh/tracknfresh-web/internal/events"
	"github.com/tracknfresh/tracknfresh-web/internal/identity"
	"github.com/tracknfresh/tracknfresh-web/internal/model"
)

const (
	cookieName    = "tracknfresh_session"
	keyIdentity   = "identity"
	keyOAuthState = "oauth_state"
	keyOAuthNext  = "oauth_next"
)

// ErrStateMismatch is returned when a federated callback does not carry the state we issued.
var ErrStateMismatch = errors.New("oauth state mismatch")

func init() {
	gob.Register(model.UserIdentity{})
	gob.Register(Notice{})
}

// Options configures the session cookie.
type Options struct {
	HashKey  []byte
	BlockKey []byte
	MaxAge   int
	Secure   bool
}

// Manager is the authentication context handed to every view. It is safe for
// concurrent use; all state lives in the client's cookie.
type Manager struct {
	store    sessions.Store
	provider identity.Provider
	bus      *events.Bus
	log      zerolog.Logger
}

// NewManager wires a cookie store to provider. bus may be nil.
func NewManager(provider identity.Provider, bus *events.Bus, log zerolog.Logger, opts Options) *Manager {
	var keyPairs [][]byte
	if len(opts.BlockKey) > 0 {
		keyPairs = [][]byte{opts.HashKey, opts.BlockKey}
	} else {
		keyPairs = [][]byte{opts.HashKey}
	}
	store := sessions.NewCookieStore(keyPairs...)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   opts.MaxAge,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Manager{store: store, provider: provider, bus: bus, log: log}
}

// Close releases the identity provider.
func (m *Manager) Close() error {
	return m.provider.Close()
}

// get never fails: an undecodable cookie (rotated keys, tampering) yields a fresh session.
func (m *Manager) get(r *http.Request) *sessions.Session {
	s, err := m.store.Get(r, cookieName)
	if err != nil {
		m.log.Debug().Err(err).Msg("discarding unreadable session cookie")
	}
	return s
}

// Current returns the signed-in identity, if any.
func (m *Manager) Current(r *http.Request) (*model.UserIdentity, bool) {
	id, ok := m.get(r).Values[keyIdentity].(model.UserIdentity)
	if !ok || id.Email == "" {
		return nil, false
	}
	return &id, true
}

// LoginWithEmail signs in with email and password.
func (m *Manager) LoginWithEmail(ctx context.Context, w http.ResponseWriter, r *http.Request, email, password string) (*model.UserIdentity, error) {
	id, err := m.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := m.establish(w, r, id, events.KindLogin); err != nil {
		return nil, err
	}
	return id, nil
}

// Register creates an account and signs it in.
func (m *Manager) Register(ctx context.Context, w http.ResponseWriter, r *http.Request, req identity.SignUpRequest) (*model.UserIdentity, error) {
	id, err := m.provider.SignUp(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := m.establish(w, r, id, events.KindRegister); err != nil {
		return nil, err
	}
	return id, nil
}

// BeginFederated issues a fresh state token, remembers next, and returns the consent URL.
func (m *Manager) BeginFederated(w http.ResponseWriter, r *http.Request, next string) (string, error) {
	state := uuid.NewString()
	u, err := m.provider.AuthCodeURL(state)
	if err != nil {
		return "", err
	}
	s := m.get(r)
	s.Values[keyOAuthState] = state
	s.Values[keyOAuthNext] = next
	if err := s.Save(r, w); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return u, nil
}

// CompleteFederated validates state, exchanges code and signs the identity in.
// It returns the destination remembered by BeginFederated.
func (m *Manager) CompleteFederated(ctx context.Context, w http.ResponseWriter, r *http.Request, state, code string) (*model.UserIdentity, string, error) {
	s := m.get(r)
	want, _ := s.Values[keyOAuthState].(string)
	next, _ := s.Values[keyOAuthNext].(string)
	delete(s.Values, keyOAuthState)
	delete(s.Values, keyOAuthNext)
	if err := s.Save(r, w); err != nil {
		return nil, "", fmt.Errorf("save session: %w", err)
	}
	if want == "" || state != want {
		return nil, "", ErrStateMismatch
	}

	id, err := m.provider.Exchange(ctx, code)
	if err != nil {
		return nil, "", err
	}
	if err := m.establish(w, r, id, events.KindLogin); err != nil {
		return nil, "", err
	}
	return id, next, nil
}

// Logout clears the identity. Pending notices survive so the next page can show them.
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) error {
	s := m.get(r)
	prev, _ := s.Values[keyIdentity].(model.UserIdentity)
	delete(s.Values, keyIdentity)
	if err := s.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if prev.Email != "" {
		m.bus.Publish(events.SessionEvent{Kind: events.KindLogout, Email: prev.Email, Provider: prev.Provider})
	}
	return nil
}

func (m *Manager) establish(w http.ResponseWriter, r *http.Request, id *model.UserIdentity, kind events.Kind) error {
	s := m.get(r)
	s.Values[keyIdentity] = *id
	if err := s.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if !m.bus.Publish(events.SessionEvent{Kind: kind, Email: id.Email, Provider: id.Provider}) && m.bus != nil {
		m.log.Warn().Str("kind", string(kind)).Msg("session event dropped: bus full")
	}
	return nil
}
