package web

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracknfresh/tracknfresh-web/internal/model"
)

func newTestDetail(svc NoteService) *FoodDetail {
	item := model.FoodItem{
		ID: "1", Title: "Milk", ExpiryDate: "2024-01-03", CreatorEmail: ownerEmail,
		Notes: model.Notes{
			{Text: "dup", AuthorEmail: ownerEmail, Date: "d1"},
			{Text: "dup", AuthorEmail: ownerEmail, Date: "d1"},
			{Text: "other", AuthorEmail: ownerEmail, Date: "d2"},
		},
	}
	return NewFoodDetail(item, svc, func() time.Time { return fixedNow })
}

func TestFoodDetailAddNote(t *testing.T) {
	owner := &model.UserIdentity{Email: ownerEmail, DisplayName: "Ann"}

	t.Run("success appends exactly one", func(t *testing.T) {
		svc := newFakeFood()
		d := newTestDetail(svc)
		note, err := d.AddNote(context.Background(), owner, "  fresh ")
		require.NoError(t, err)
		assert.Equal(t, model.Note{Text: "fresh", Author: "Ann", AuthorEmail: ownerEmail, Date: "1/1/2024, 12:00:00 AM"}, note)
		assert.Len(t, d.Item.Notes, 4)
		assert.Equal(t, note, d.Item.Notes[3])
	})

	t.Run("failure leaves notes untouched", func(t *testing.T) {
		svc := newFakeFood()
		svc.addNoteErr = errors.New("down")
		d := newTestDetail(svc)
		_, err := d.AddNote(context.Background(), owner, "fresh")
		require.Error(t, err)
		assert.Len(t, d.Item.Notes, 3)
	})

	t.Run("identity without email", func(t *testing.T) {
		d := newTestDetail(newFakeFood())
		d.Item.CreatorEmail = ""
		_, err := d.AddNote(context.Background(), &model.UserIdentity{}, "fresh")
		assert.ErrorIs(t, err, model.ErrForbidden)
	})
}

func TestFoodDetailDeleteNote(t *testing.T) {
	owner := &model.UserIdentity{Email: ownerEmail}

	t.Run("removes only the first match", func(t *testing.T) {
		svc := newFakeFood()
		d := newTestDetail(svc)
		require.NoError(t, d.DeleteNote(context.Background(), owner, model.Note{Text: "dup", AuthorEmail: ownerEmail, Date: "d1"}))
		require.Len(t, d.Item.Notes, 2)
		assert.Equal(t, "dup", d.Item.Notes[0].Text)
		assert.Equal(t, "other", d.Item.Notes[1].Text)
		assert.Len(t, svc.deletedNotes, 1)
	})

	t.Run("failure leaves notes untouched", func(t *testing.T) {
		svc := newFakeFood()
		svc.deleteNoteErr = errors.New("down")
		d := newTestDetail(svc)
		err := d.DeleteNote(context.Background(), owner, model.Note{Text: "other", AuthorEmail: ownerEmail, Date: "d2"})
		require.Error(t, err)
		assert.Len(t, d.Item.Notes, 3)
	})

	t.Run("author of the note only", func(t *testing.T) {
		d := newTestDetail(newFakeFood())
		d.Item.Notes[2].AuthorEmail = otherEmail
		err := d.DeleteNote(context.Background(), owner, model.Note{Text: "other", AuthorEmail: otherEmail, Date: "d2"})
		assert.ErrorIs(t, err, model.ErrForbidden)
		assert.Len(t, d.Item.Notes, 3)
	})

	t.Run("unknown note", func(t *testing.T) {
		d := newTestDetail(newFakeFood())
		err := d.DeleteNote(context.Background(), owner, model.Note{Text: "nope"})
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

func TestFoodDetailView(t *testing.T) {
	d := newTestDetail(newFakeFood())

	anon := d.View(nil, "")
	assert.False(t, anon.CanAddNote)
	assert.Equal(t, "Please log in to add notes", anon.AddNoteReason)
	for _, n := range anon.Notes {
		assert.False(t, n.CanDelete)
		assert.Empty(t, n.DeleteURL)
	}

	owner := d.View(&model.UserIdentity{Email: ownerEmail}, "draft")
	assert.True(t, owner.CanAddNote)
	assert.Empty(t, owner.AddNoteReason)
	assert.Equal(t, "draft", owner.Draft)
	assert.Equal(t, "/food/1/notes/delete?authorEmail=ann%40example.com&date=d2&text=other", owner.Notes[2].DeleteURL)
}
