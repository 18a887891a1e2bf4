package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracknfresh/tracknfresh-web/internal/events"
	"github.com/tracknfresh/tracknfresh-web/internal/identity"
	"github.com/tracknfresh/tracknfresh-web/internal/model"
)

type fakeProvider struct {
	lastState string
}

func (f *fakeProvider) SignIn(_ context.Context, email, password string) (*model.UserIdentity, error) {
	if password != "Secret1" {
		return nil, identity.ErrInvalidCredentials
	}
	return &model.UserIdentity{Email: email, DisplayName: "Ann", Provider: identity.ProviderLocal}, nil
}

func (f *fakeProvider) SignUp(_ context.Context, req identity.SignUpRequest) (*model.UserIdentity, error) {
	return &model.UserIdentity{Email: req.Email, DisplayName: req.DisplayName, Provider: identity.ProviderLocal}, nil
}

func (f *fakeProvider) AuthCodeURL(state string) (string, error) {
	f.lastState = state
	return "https://idp.example/auth?state=" + url.QueryEscape(state), nil
}

func (f *fakeProvider) Exchange(_ context.Context, code string) (*model.UserIdentity, error) {
	return &model.UserIdentity{Email: "fed@example.com", Provider: identity.ProviderGoogle}, nil
}

func (f *fakeProvider) HealthPing(context.Context) error { return nil }
func (f *fakeProvider) Close() error                     { return nil }

func newTestManager(t *testing.T) (*Manager, *fakeProvider, *events.Bus) {
	t.Helper()
	p := &fakeProvider{}
	bus := events.NewBus(8)
	m := NewManager(p, bus, zerolog.Nop(), Options{
		HashKey:  []byte("test-hash-key-0123456789abcdef0123456789"),
		BlockKey: []byte("test-block-key16"),
		MaxAge:   3600,
	})
	return m, p, bus
}

// browser carries the session cookie between requests like a real client.
type browser struct{ cookie *http.Cookie }

func (b *browser) request(method, target string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	if b.cookie != nil {
		req.AddCookie(b.cookie)
	}
	return req
}

func (b *browser) keep(rr *httptest.ResponseRecorder) {
	for _, c := range rr.Result().Cookies() {
		if c.Name == cookieName {
			b.cookie = c
		}
	}
}

func TestLoginWithEmail_StoresIdentityAndPublishes(t *testing.T) {
	m, _, bus := newTestManager(t)
	b := &browser{}

	rr := httptest.NewRecorder()
	id, err := m.LoginWithEmail(context.Background(), rr, b.request(http.MethodPost, "/login"), "ann@example.com", "Secret1")
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", id.Email)
	b.keep(rr)

	got, ok := m.Current(b.request(http.MethodGet, "/"))
	require.True(t, ok)
	assert.Equal(t, "ann@example.com", got.Email)

	evt := <-bus.Subscribe()
	assert.Equal(t, events.KindLogin, evt.Kind)
	assert.Equal(t, "ann@example.com", evt.Email)
}

func TestLoginWithEmail_FailureLeavesSessionAnonymous(t *testing.T) {
	m, _, _ := newTestManager(t)
	b := &browser{}

	rr := httptest.NewRecorder()
	_, err := m.LoginWithEmail(context.Background(), rr, b.request(http.MethodPost, "/login"), "ann@example.com", "wrong")
	assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
	b.keep(rr)

	_, ok := m.Current(b.request(http.MethodGet, "/"))
	assert.False(t, ok)
}

func TestLogout_ClearsIdentity(t *testing.T) {
	m, _, bus := newTestManager(t)
	b := &browser{}

	rr := httptest.NewRecorder()
	_, err := m.Register(context.Background(), rr, b.request(http.MethodPost, "/register"), identity.SignUpRequest{Email: "bo@example.com", DisplayName: "Bo"})
	require.NoError(t, err)
	b.keep(rr)
	assert.Equal(t, events.KindRegister, (<-bus.Subscribe()).Kind)

	rr = httptest.NewRecorder()
	require.NoError(t, m.Logout(rr, b.request(http.MethodPost, "/logout")))
	b.keep(rr)

	_, ok := m.Current(b.request(http.MethodGet, "/"))
	assert.False(t, ok)
	assert.Equal(t, events.KindLogout, (<-bus.Subscribe()).Kind)
}

func TestFederated_StateRoundTrip(t *testing.T) {
	m, p, _ := newTestManager(t)
	b := &browser{}

	rr := httptest.NewRecorder()
	u, err := m.BeginFederated(rr, b.request(http.MethodGet, "/login/google"), "/my-items")
	require.NoError(t, err)
	assert.Contains(t, u, "state=")
	b.keep(rr)

	rr = httptest.NewRecorder()
	id, next, err := m.CompleteFederated(context.Background(), rr, b.request(http.MethodGet, "/cb"), p.lastState, "code")
	require.NoError(t, err)
	assert.Equal(t, "fed@example.com", id.Email)
	assert.Equal(t, "/my-items", next)
	b.keep(rr)

	// state is single use
	rr = httptest.NewRecorder()
	_, _, err = m.CompleteFederated(context.Background(), rr, b.request(http.MethodGet, "/cb"), p.lastState, "code")
	assert.ErrorIs(t, err, ErrStateMismatch)
}

func TestFederated_RejectsForeignState(t *testing.T) {
	m, _, _ := newTestManager(t)
	b := &browser{}

	rr := httptest.NewRecorder()
	_, err := m.BeginFederated(rr, b.request(http.MethodGet, "/login/google"), "/")
	require.NoError(t, err)
	b.keep(rr)

	rr = httptest.NewRecorder()
	_, _, err = m.CompleteFederated(context.Background(), rr, b.request(http.MethodGet, "/cb"), "forged", "code")
	assert.ErrorIs(t, err, ErrStateMismatch)
}

func TestNotices_ShownOnce(t *testing.T) {
	m, _, _ := newTestManager(t)
	b := &browser{}

	rr := httptest.NewRecorder()
	req := b.request(http.MethodGet, "/add-food")
	m.AddNotice(rr, req, NoticeError, "You must log in to access that page.")
	m.AddNotice(rr, req, NoticeError, "You must log in to access that page.")
	b.keep(rr)

	rr = httptest.NewRecorder()
	got := m.Notices(rr, b.request(http.MethodGet, "/login"))
	require.Len(t, got, 1, "duplicate notices collapse")
	assert.Equal(t, NoticeError, got[0].Kind)
	b.keep(rr)

	rr = httptest.NewRecorder()
	assert.Empty(t, m.Notices(rr, b.request(http.MethodGet, "/login")), "re-render must not repeat the notice")
}

func TestCurrent_IgnoresGarbageCookie(t *testing.T) {
	m, _, _ := newTestManager(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: "garbage"})
	_, ok := m.Current(req)
	assert.False(t, ok)
}

func TestIdentityContext(t *testing.T) {
	assert.Nil(t, IdentityFrom(context.Background()))
	id := &model.UserIdentity{Email: "a@b.c"}
	assert.Same(t, id, IdentityFrom(WithIdentity(context.Background(), id)))
}
