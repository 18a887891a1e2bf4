package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/tracknfresh/tracknfresh-web/internal/foodservice"
	"github.com/tracknfresh/tracknfresh-web/internal/model"
	"github.com/tracknfresh/tracknfresh-web/internal/session"
)

// Loader fetches what a view needs with exactly one read against the food
// service. It runs on the request context, so a client that goes away cancels it.
type Loader func(r *http.Request) (interface{}, error)

type loadedKey struct{}

// loaded returns the value the route's loader produced.
func loaded[T any](r *http.Request) T {
	v, _ := r.Context().Value(loadedKey{}).(T)
	return v
}

func (s *Server) withLoader(load Loader, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := load(r)
		if err != nil {
			s.renderLoadError(w, r, err)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), loadedKey{}, data)))
	}
}

func (s *Server) renderLoadError(w http.ResponseWriter, r *http.Request, err error) {
	log := zerolog.Ctx(r.Context())
	switch {
	case errors.Is(err, model.ErrNotFound):
		s.renderNotFound(w, r)
	case errors.Is(err, context.Canceled):
		log.Debug().Err(err).Msg("navigation abandoned")
	default:
		log.Error().Stack().Err(err).Int("upstream_status", foodservice.StatusCode(err)).Msg("loader failed")
		msg := "We could not load this page. Please try again later."
		var he *foodservice.HTTPError
		if errors.As(err, &he) && he.Temporary() {
			msg = "The food service is busy right now. Please try again in a moment."
		}
		s.renderError(w, r, http.StatusBadGateway, "Something went wrong", msg)
	}
}

// loadNearest treats an empty inventory as no item rather than a failure.
func (s *Server) loadNearest(r *http.Request) (interface{}, error) {
	item, err := s.food.NearestExpiring(r.Context())
	if errors.Is(err, model.ErrNotFound) {
		return (*model.FoodItem)(nil), nil
	}
	return item, err
}

func (s *Server) loadAll(r *http.Request) (interface{}, error) {
	return s.food.ListAll(r.Context())
}

func (s *Server) loadItem(r *http.Request) (interface{}, error) {
	return s.food.Get(r.Context(), mux.Vars(r)["id"])
}

func (s *Server) loadMine(r *http.Request) (interface{}, error) {
	id := session.IdentityFrom(r.Context())
	if id == nil {
		return nil, model.ErrUnauthenticated
	}
	return s.food.ListByCreator(r.Context(), id.Email)
}
