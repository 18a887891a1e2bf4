// Package web serves the TrackNFresh pages: a route table of guarded views
// whose data comes from per-route loaders against the food service.
package web

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/tracknfresh/tracknfresh-web/internal/metrics"
	"github.com/tracknfresh/tracknfresh-web/internal/model"
	"github.com/tracknfresh/tracknfresh-web/internal/session"
	"github.com/tracknfresh/tracknfresh-web/internal/web/recovery"
)

const mustLogIn = "You must log in to access that page."

// statusClientClosed is recorded when the browser left before a response was written.
const statusClientClosed = 499

// FoodService is everything the pages need from the remote food service.
type FoodService interface {
	NoteService
	ListAll(ctx context.Context) ([]model.FoodItem, error)
	NearestExpiring(ctx context.Context) (*model.FoodItem, error)
	Get(ctx context.Context, id string) (*model.FoodItem, error)
	ListByCreator(ctx context.Context, email string) ([]model.FoodItem, error)
	AddFood(ctx context.Context, item model.FoodItem) (*model.FoodItem, error)
	DeleteFood(ctx context.Context, id string) error
}

// HealthReporter exposes aggregate and per-dependency health.
type HealthReporter interface {
	IsHealthy() bool
	Components() map[string]bool
	Since() time.Time
}

// Deps are the collaborators injected into the router.
type Deps struct {
	Food      FoodService
	Sessions  *session.Manager
	Health    HealthReporter
	Log       zerolog.Logger
	Federated bool
	Now       func() time.Time
}

// Server holds the handlers' shared state.
type Server struct {
	food      FoodService
	sessions  *session.Manager
	health    HealthReporter
	log       zerolog.Logger
	federated bool
	now       func() time.Time
	views     map[string]*template.Template
}

// NewRouter builds the route table and wraps it with the global middleware.
func NewRouter(d Deps) (*mux.Router, error) {
	if d.Food == nil || d.Sessions == nil {
		return nil, fmt.Errorf("web: food service and session manager are required")
	}
	views, err := parseViews()
	if err != nil {
		return nil, err
	}
	s := &Server{
		food:      d.Food,
		sessions:  d.Sessions,
		health:    d.Health,
		log:       d.Log,
		federated: d.Federated,
		now:       d.Now,
		views:     views,
	}
	if s.now == nil {
		s.now = time.Now
	}

	router := mux.NewRouter()
	for _, rt := range s.routes() {
		h := rt.Handle
		if rt.Load != nil {
			h = s.withLoader(rt.Load, h)
		}
		if rt.Guarded {
			h = s.guard(h)
		}
		router.Handle(rt.Path, h).Methods(rt.Methods...).Name(rt.Name)
	}

	// Global middlewares
	mws := []mux.MiddlewareFunc{
		s.requestContext,
		recovery.Middleware(http.HandlerFunc(s.internalError)),
		s.identity,
	}
	router.Use(mws...)

	// mux does not run middleware for unmatched paths.
	var notFound http.Handler = http.HandlerFunc(s.renderNotFound)
	for i := len(mws) - 1; i >= 0; i-- {
		notFound = mws[i](notFound)
	}
	router.NotFoundHandler = notFound
	return router, nil
}

// guard sends anonymous callers to the login page, remembering where they were going.
func (s *Server) guard(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if session.IdentityFrom(r.Context()) != nil {
			next(w, r)
			return
		}
		s.sessions.AddNotice(w, r, session.NoticeError, mustLogIn)
		http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
	}
}

// identity places the session's user, if any, on the request context.
func (s *Server) identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := s.sessions.Current(r); ok {
			r = r.WithContext(session.WithIdentity(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	if sr.status == 0 {
		sr.status = code
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	return sr.ResponseWriter.Write(b)
}

// requestContext tags the request with an id and a child logger, then logs
// and counts the response.
func (s *Server) requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)

		routeName := "not_found"
		if cur := mux.CurrentRoute(r); cur != nil && cur.GetName() != "" {
			routeName = cur.GetName()
		}
		l := s.log.With().Str("request_id", reqID).Str("route", routeName).Logger()
		r = r.WithContext(l.WithContext(r.Context()))

		sr := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(sr, r)
		if sr.status == 0 {
			if r.Context().Err() != nil {
				sr.status = statusClientClosed
			} else {
				sr.status = http.StatusOK
			}
		}

		metrics.ObserveHTTP(routeName, sr.status)
		l.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sr.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, r, http.StatusInternalServerError, "Something went wrong",
		"An unexpected error occurred. Please try again.")
}
