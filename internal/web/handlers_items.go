package web

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tracknfresh/tracknfresh-web/internal/model"
	"github.com/tracknfresh/tracknfresh-web/internal/session"
	"github.com/tracknfresh/tracknfresh-web/internal/web/validate"
)

type addFoodData struct {
	Item       model.FoodItem
	Categories []string
}

func (s *Server) addFoodForm(w http.ResponseWriter, r *http.Request) {
	data := addFoodData{Item: model.FoodItem{Quantity: 1, Category: validate.Categories[0]}, Categories: validate.Categories}
	s.render(w, r, http.StatusOK, viewAddFood, "Add food", data)
}

func (s *Server) addFoodSubmit(w http.ResponseWriter, r *http.Request) {
	user := session.IdentityFrom(r.Context())
	qty, err := strconv.Atoi(strings.TrimSpace(r.PostFormValue("quantity")))
	if err != nil {
		qty = 0
	}
	item := model.FoodItem{
		Title:        strings.TrimSpace(r.PostFormValue("title")),
		Category:     r.PostFormValue("category"),
		Quantity:     qty,
		ExpiryDate:   strings.TrimSpace(r.PostFormValue("expiryDate")),
		Description:  strings.TrimSpace(r.PostFormValue("description")),
		ImageURL:     strings.TrimSpace(r.PostFormValue("imageUrl")),
		CreatorEmail: user.Email,
		AddedDate:    s.now().UTC().Format(time.RFC3339),
	}
	data := addFoodData{Item: item, Categories: validate.Categories}

	if err := validate.Food(item); err != nil {
		s.render(w, r, http.StatusBadRequest, viewAddFood, "Add food", data, errorNotice(capitalize(err.Error())+"."))
		return
	}
	created, err := s.food.AddFood(r.Context(), item)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Stack().Err(err).Msg("add food failed")
		s.render(w, r, http.StatusBadGateway, viewAddFood, "Add food", data,
			errorNotice("Failed to add food item. Please try again."))
		return
	}
	zerolog.Ctx(r.Context()).Info().Str("food_id", created.ID).Msg("food item added")
	s.sessions.AddNotice(w, r, session.NoticeSuccess, "Food item added successfully!")
	http.Redirect(w, r, "/my-items", http.StatusSeeOther)
}

type myItemsData struct {
	Cards []itemCard
}

func (s *Server) myItems(w http.ResponseWriter, r *http.Request) {
	items := loaded[[]model.FoodItem](r)
	s.render(w, r, http.StatusOK, viewMyItems, "My items", myItemsData{Cards: newCards(items, s.now())})
}

// ownedItem returns the loaded item if the caller created it, rendering 403 otherwise.
func (s *Server) ownedItem(w http.ResponseWriter, r *http.Request) (*model.FoodItem, bool) {
	item := loaded[*model.FoodItem](r)
	if !model.IsOwner(session.IdentityFrom(r.Context()), item) {
		s.renderError(w, r, http.StatusForbidden, "Not allowed", "Only the owner can delete this item.")
		return nil, false
	}
	return item, true
}

func (s *Server) itemDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	item, ok := s.ownedItem(w, r)
	if !ok {
		return
	}
	s.render(w, r, http.StatusOK, viewItemDelete, "Delete item", newCard(*item, s.now()))
}

func (s *Server) itemDelete(w http.ResponseWriter, r *http.Request) {
	item, ok := s.ownedItem(w, r)
	if !ok {
		return
	}
	if r.PostFormValue("confirm") != "yes" {
		http.Redirect(w, r, "/my-items", http.StatusSeeOther)
		return
	}
	if err := s.food.DeleteFood(r.Context(), item.ID); err != nil {
		zerolog.Ctx(r.Context()).Error().Stack().Err(err).Str("food_id", item.ID).Msg("delete food failed")
		s.sessions.AddNotice(w, r, session.NoticeError, "Failed to delete item. Please try again.")
	} else {
		s.sessions.AddNotice(w, r, session.NoticeSuccess, "Item deleted.")
	}
	http.Redirect(w, r, "/my-items", http.StatusSeeOther)
}
