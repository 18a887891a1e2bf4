package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tracknfresh/tracknfresh-web/internal/model"
	"github.com/tracknfresh/tracknfresh-web/internal/session"
)

type homeData struct {
	Item *itemCard
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	var data homeData
	if item := loaded[*model.FoodItem](r); item != nil {
		c := newCard(*item, s.now())
		data.Item = &c
	}
	s.render(w, r, http.StatusOK, viewHome, "Home", data)
}

func (s *Server) fridge(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := fridgeFilter{
		Q:        strings.TrimSpace(q.Get("q")),
		Category: q.Get("category"),
		Expired:  q.Get("expired"),
	}
	if f.Expired != "only" && f.Expired != "hide" {
		f.Expired = ""
	}
	items := loaded[[]model.FoodItem](r)
	s.render(w, r, http.StatusOK, viewFridge, "Fridge", newFridgeData(items, f, s.now()))
}

func (s *Server) detail(r *http.Request) *FoodDetail {
	return NewFoodDetail(*loaded[*model.FoodItem](r), s.food, s.now)
}

func (s *Server) foodDetail(w http.ResponseWriter, r *http.Request) {
	d := s.detail(r)
	s.render(w, r, http.StatusOK, viewDetail, d.Item.Title, d.View(session.IdentityFrom(r.Context()), ""))
}

// addNote renders the updated copy in place: the new note appears without a
// second fetch, and a failure leaves the copy and the draft as they were.
func (s *Server) addNote(w http.ResponseWriter, r *http.Request) {
	d := s.detail(r)
	user := session.IdentityFrom(r.Context())
	text := r.PostFormValue("text")

	_, err := d.AddNote(r.Context(), user, text)
	switch {
	case err == nil:
		s.render(w, r, http.StatusOK, viewDetail, d.Item.Title, d.View(user, ""),
			successNotice("Note added successfully!"))
	case errors.Is(err, model.ErrUnauthenticated):
		s.render(w, r, http.StatusForbidden, viewDetail, d.Item.Title, d.View(user, text),
			errorNotice("Please log in to add notes"))
	case errors.Is(err, model.ErrForbidden):
		s.render(w, r, http.StatusForbidden, viewDetail, d.Item.Title, d.View(user, text),
			errorNotice("Only the owner can add notes"))
	case errors.Is(err, model.ErrValidation):
		s.render(w, r, http.StatusBadRequest, viewDetail, d.Item.Title, d.View(user, text),
			errorNotice("Please write a note of at most 500 characters."))
	default:
		zerolog.Ctx(r.Context()).Error().Stack().Err(err).Str("food_id", d.Item.ID).Msg("add note failed")
		s.render(w, r, http.StatusBadGateway, viewDetail, d.Item.Title, d.View(user, text),
			errorNotice("Failed to add note. Please try again."))
	}
}

type noteDeleteData struct {
	Item model.FoodItem
	Note model.Note
}

func noteFromForm(r *http.Request) model.Note {
	return model.Note{
		Text:        r.FormValue("text"),
		AuthorEmail: r.FormValue("authorEmail"),
		Date:        r.FormValue("date"),
	}
}

func (s *Server) noteDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	d := s.detail(r)
	user := session.IdentityFrom(r.Context())
	note, ok := d.Find(noteFromForm(r))
	if !ok {
		s.renderError(w, r, http.StatusNotFound, "Note not found", "That note no longer exists.")
		return
	}
	if !model.CanDeleteNote(user, &d.Item, note) {
		s.renderError(w, r, http.StatusForbidden, "Not allowed", "Only the owner who wrote a note can delete it.")
		return
	}
	s.render(w, r, http.StatusOK, viewNoteDelete, "Delete note", noteDeleteData{Item: d.Item, Note: note})
}

func (s *Server) noteDelete(w http.ResponseWriter, r *http.Request) {
	d := s.detail(r)
	if r.PostFormValue("confirm") != "yes" {
		http.Redirect(w, r, "/food/"+d.Item.ID, http.StatusSeeOther)
		return
	}
	user := session.IdentityFrom(r.Context())

	err := d.DeleteNote(r.Context(), user, noteFromForm(r))
	switch {
	case err == nil:
		s.render(w, r, http.StatusOK, viewDetail, d.Item.Title, d.View(user, ""),
			successNotice("Note deleted."))
	case errors.Is(err, model.ErrNotFound):
		s.render(w, r, http.StatusNotFound, viewDetail, d.Item.Title, d.View(user, ""),
			errorNotice("That note no longer exists."))
	case errors.Is(err, model.ErrUnauthenticated), errors.Is(err, model.ErrForbidden):
		s.render(w, r, http.StatusForbidden, viewDetail, d.Item.Title, d.View(user, ""),
			errorNotice("Only the owner who wrote a note can delete it."))
	default:
		zerolog.Ctx(r.Context()).Error().Stack().Err(err).Str("food_id", d.Item.ID).Msg("delete note failed")
		s.render(w, r, http.StatusBadGateway, viewDetail, d.Item.Title, d.View(user, ""),
			errorNotice("Failed to delete note. Please try again."))
	}
}
