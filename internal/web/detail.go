package web

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tracknfresh/tracknfresh-web/internal/model"
	"github.com/tracknfresh/tracknfresh-web/internal/web/validate"
)

// NoteService is the part of the food service the detail view mutates through.
type NoteService interface {
	AddNote(ctx context.Context, id, creatorEmail string, note model.Note) error
	DeleteNote(ctx context.Context, id string, note model.Note) error
}

// FoodDetail is the per-request copy of one item. Its notes change only after
// the food service has accepted the change.
type FoodDetail struct {
	Item model.FoodItem
	svc  NoteService
	now  func() time.Time
}

func NewFoodDetail(item model.FoodItem, svc NoteService, now func() time.Time) *FoodDetail {
	if item.Notes == nil {
		item.Notes = model.Notes{}
	}
	if now == nil {
		now = time.Now
	}
	return &FoodDetail{Item: item, svc: svc, now: now}
}

// AddNote sends a note written by author and appends it locally on success.
func (d *FoodDetail) AddNote(ctx context.Context, author *model.UserIdentity, text string) (model.Note, error) {
	text = strings.TrimSpace(text)
	if err := validate.NoteText(text); err != nil {
		return model.Note{}, fmt.Errorf("%w: %v", model.ErrValidation, err)
	}
	if author == nil {
		return model.Note{}, model.ErrUnauthenticated
	}
	if !model.IsOwner(author, &d.Item) {
		return model.Note{}, model.ErrForbidden
	}

	name := author.Name()
	if name == "" {
		name = "Anonymous"
	}
	note := model.Note{
		Text:        text,
		Author:      name,
		AuthorEmail: author.Email,
		Date:        d.now().Format(model.NoteDateLayout),
	}
	if err := d.svc.AddNote(ctx, d.Item.ID, d.Item.CreatorEmail, note); err != nil {
		return model.Note{}, fmt.Errorf("add note to %s: %w", d.Item.ID, err)
	}
	d.Item.Notes = append(d.Item.Notes, note)
	return note, nil
}

// DeleteNote removes the first local note matching target's text, author
// email and date once the food service confirms the deletion.
func (d *FoodDetail) DeleteNote(ctx context.Context, caller *model.UserIdentity, target model.Note) error {
	idx := d.indexOf(target)
	if idx < 0 {
		return fmt.Errorf("note on %s: %w", d.Item.ID, model.ErrNotFound)
	}
	if caller == nil {
		return model.ErrUnauthenticated
	}
	if !model.CanDeleteNote(caller, &d.Item, d.Item.Notes[idx]) {
		return model.ErrForbidden
	}
	if err := d.svc.DeleteNote(ctx, d.Item.ID, d.Item.Notes[idx]); err != nil {
		return fmt.Errorf("delete note from %s: %w", d.Item.ID, err)
	}
	d.Item.Notes = append(d.Item.Notes[:idx:idx], d.Item.Notes[idx+1:]...)
	return nil
}

// Find returns the stored note matching target, if any.
func (d *FoodDetail) Find(target model.Note) (model.Note, bool) {
	idx := d.indexOf(target)
	if idx < 0 {
		return model.Note{}, false
	}
	return d.Item.Notes[idx], true
}

func (d *FoodDetail) indexOf(target model.Note) int {
	for i, n := range d.Item.Notes {
		if n.Same(target) {
			return i
		}
	}
	return -1
}

type noteView struct {
	Note      model.Note
	CanDelete bool
	DeleteURL string
}

type detailView struct {
	Card          itemCard
	Notes         []noteView
	CanAddNote    bool
	AddNoteReason string
	Draft         string
}

// View builds the template data as seen by viewer.
func (d *FoodDetail) View(viewer *model.UserIdentity, draft string) detailView {
	v := detailView{
		Card:       newCard(d.Item, d.now()),
		CanAddNote: model.IsOwner(viewer, &d.Item),
		Draft:      draft,
	}
	switch {
	case viewer == nil:
		v.AddNoteReason = "Please log in to add notes"
	case !v.CanAddNote:
		v.AddNoteReason = "Only the owner can add notes"
	}
	v.Notes = make([]noteView, 0, len(d.Item.Notes))
	for _, n := range d.Item.Notes {
		nv := noteView{Note: n, CanDelete: model.CanDeleteNote(viewer, &d.Item, n)}
		if nv.CanDelete {
			nv.DeleteURL = noteDeleteURL(d.Item.ID, n)
		}
		v.Notes = append(v.Notes, nv)
	}
	return v
}

func noteDeleteURL(itemID string, n model.Note) string {
	q := url.Values{}
	q.Set("text", n.Text)
	q.Set("authorEmail", n.AuthorEmail)
	q.Set("date", n.Date)
	return "/food/" + url.PathEscape(itemID) + "/notes/delete?" + q.Encode()
}
