package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/tracknfresh/tracknfresh-web/internal/identity"
	"github.com/tracknfresh/tracknfresh-web/internal/model"
	"github.com/tracknfresh/tracknfresh-web/internal/session"
)

const (
	ownerEmail  = "ann@example.com"
	otherEmail  = "bob@example.com"
	sessionName = "tracknfresh_session"
)

var fixedNow = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type fakeFood struct {
	mu            sync.Mutex
	items         map[string]model.FoodItem
	getErr        error
	listErr       error
	nearestErr    error
	addNoteErr    error
	deleteNoteErr error
	addFoodErr    error
	deleteFoodErr error

	addedNotes   []model.Note
	deletedNotes []model.Note
	addedFood    []model.FoodItem
	deletedFood  []string
}

func newFakeFood() *fakeFood {
	return &fakeFood{items: map[string]model.FoodItem{
		"1": {
			ID: "1", Title: "Milk", Category: "Dairy", Quantity: 1,
			ExpiryDate: "2024-01-03", CreatorEmail: ownerEmail,
			Notes: model.Notes{
				{Text: "first", Author: "Ann", AuthorEmail: ownerEmail, Date: "1/1/2024, 9:00:00 AM"},
				{Text: "second", Author: "Ann", AuthorEmail: ownerEmail, Date: "1/1/2024, 10:00:00 AM"},
			},
		},
		"2": {
			ID: "2", Title: "Old Cheese", Category: "Dairy", Quantity: 2,
			ExpiryDate: "2023-12-25", CreatorEmail: otherEmail,
		},
	}}
}

func (f *fakeFood) copyOf(id string) (*model.FoodItem, bool) {
	it, ok := f.items[id]
	if !ok {
		return nil, false
	}
	it.Notes = append(model.Notes{}, it.Notes...)
	return &it, true
}

func (f *fakeFood) ListAll(context.Context) ([]model.FoodItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.FoodItem, 0, len(f.items))
	for _, id := range []string{"1", "2"} {
		if it, ok := f.copyOf(id); ok {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (f *fakeFood) NearestExpiring(context.Context) (*model.FoodItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.nearestErr != nil {
		return nil, f.nearestErr
	}
	it, _ := f.copyOf("1")
	return it, nil
}

func (f *fakeFood) Get(_ context.Context, id string) (*model.FoodItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	it, ok := f.copyOf(id)
	if !ok {
		return nil, model.ErrNotFound
	}
	return it, nil
}

func (f *fakeFood) ListByCreator(_ context.Context, email string) ([]model.FoodItem, error) {
	all, err := f.ListAll(context.Background())
	if err != nil {
		return nil, err
	}
	var out []model.FoodItem
	for _, it := range all {
		if it.CreatorEmail == email {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeFood) AddNote(_ context.Context, _, _ string, note model.Note) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addNoteErr != nil {
		return f.addNoteErr
	}
	f.addedNotes = append(f.addedNotes, note)
	return nil
}

func (f *fakeFood) DeleteNote(_ context.Context, _ string, note model.Note) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteNoteErr != nil {
		return f.deleteNoteErr
	}
	f.deletedNotes = append(f.deletedNotes, note)
	return nil
}

func (f *fakeFood) AddFood(_ context.Context, item model.FoodItem) (*model.FoodItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addFoodErr != nil {
		return nil, f.addFoodErr
	}
	item.ID = "new"
	f.addedFood = append(f.addedFood, item)
	return &item, nil
}

func (f *fakeFood) DeleteFood(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteFoodErr != nil {
		return f.deleteFoodErr
	}
	f.deletedFood = append(f.deletedFood, id)
	return nil
}

// fakeAccounts accepts any email with the password "Secret1".
type fakeAccounts struct{}

func (fakeAccounts) SignIn(_ context.Context, email, password string) (*model.UserIdentity, error) {
	if password != "Secret1" {
		return nil, identity.ErrInvalidCredentials
	}
	return &model.UserIdentity{Email: email, DisplayName: strings.Split(email, "@")[0], Provider: identity.ProviderLocal}, nil
}

func (fakeAccounts) SignUp(_ context.Context, req identity.SignUpRequest) (*model.UserIdentity, error) {
	if req.Email == otherEmail {
		return nil, identity.ErrEmailTaken
	}
	return &model.UserIdentity{Email: req.Email, DisplayName: req.DisplayName, Provider: identity.ProviderLocal}, nil
}

func (fakeAccounts) AuthCodeURL(string) (string, error) { return "", identity.ErrFederatedUnavailable }
func (fakeAccounts) Exchange(context.Context, string) (*model.UserIdentity, error) {
	return nil, identity.ErrFederatedUnavailable
}
func (fakeAccounts) HealthPing(context.Context) error { return nil }
func (fakeAccounts) Close() error                     { return nil }

type fakeHealth struct {
	healthy    bool
	components map[string]bool
	since      time.Time
}

func (f fakeHealth) IsHealthy() bool             { return f.healthy }
func (f fakeHealth) Components() map[string]bool { return f.components }
func (f fakeHealth) Since() time.Time            { return f.since }

// harness drives the router like a browser that keeps its session cookie.
type harness struct {
	t      *testing.T
	router http.Handler
	food   *fakeFood
	cookie *http.Cookie
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithHealth(t, fakeHealth{healthy: true, components: map[string]bool{"food-service": true}})
}

func newHarnessWithHealth(t *testing.T, hr HealthReporter) *harness {
	t.Helper()
	food := newFakeFood()
	mgr := session.NewManager(fakeAccounts{}, nil, zerolog.Nop(), session.Options{
		HashKey:  []byte("test-hash-key-0123456789abcdef0123456789"),
		BlockKey: []byte("test-block-key16"),
		MaxAge:   3600,
	})
	router, err := NewRouter(Deps{
		Food:     food,
		Sessions: mgr,
		Health:   hr,
		Log:      zerolog.Nop(),
		Now:      func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return &harness{t: t, router: router, food: food}
}

func (h *harness) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	h.t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if h.cookie != nil {
		req.AddCookie(h.cookie)
	}
	rr := httptest.NewRecorder()
	h.router.ServeHTTP(rr, req)
	for _, c := range rr.Result().Cookies() {
		if c.Name == sessionName {
			h.cookie = c
		}
	}
	return rr
}

func (h *harness) login(email string) {
	h.t.Helper()
	rr := h.do(http.MethodPost, "/login", url.Values{"email": {email}, "password": {"Secret1"}})
	require.Equal(h.t, http.StatusSeeOther, rr.Code)
	// consume the success notice so later assertions see only their own
	h.do(http.MethodGet, "/", nil)
}

func countNotes(body string) int {
	return strings.Count(body, `<li class="note">`)
}
