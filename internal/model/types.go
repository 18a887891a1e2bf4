package model

import (
	"bytes"
	"encoding/json"
)

// FoodItem is a perishable item as served by the remote food service.
type FoodItem struct {
	ID           string `json:"_id,omitempty"`
	Title        string `json:"title"`
	Category     string `json:"category"`
	Quantity     int    `json:"quantity"`
	ExpiryDate   string `json:"expiryDate"`
	AddedDate    string `json:"addedDate,omitempty"`
	Description  string `json:"description,omitempty"`
	ImageURL     string `json:"imageUrl,omitempty"`
	CreatorEmail string `json:"foodCreatorEmail"`
	Notes        Notes  `json:"notes,omitempty"`
}

// Note is a short remark attached to a FoodItem.
type Note struct {
	Text        string `json:"text"`
	Author      string `json:"author"`
	AuthorEmail string `json:"authorEmail"`
	Date        string `json:"date"`
}

// Same reports whether n and o identify the same note (text, author email and date).
func (n Note) Same(o Note) bool {
	return n.Text == o.Text && n.AuthorEmail == o.AuthorEmail && n.Date == o.Date
}

// Notes decodes from either a JSON array or a single JSON object.
type Notes []Note

// UnmarshalJSON accepts `null`, a single note object or an array of notes.
func (ns *Notes) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*ns = Notes{}
		return nil
	}
	if b[0] == '{' {
		var one Note
		if err := json.Unmarshal(b, &one); err != nil {
			return err
		}
		*ns = Notes{one}
		return nil
	}
	var many []Note
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	if many == nil {
		many = []Note{}
	}
	*ns = many
	return nil
}

// UserIdentity is the authenticated caller as reported by the identity provider.
type UserIdentity struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoUrl,omitempty"`
	Provider    string `json:"provider,omitempty"`
}

// Name returns the display name, falling back to the email.
func (u *UserIdentity) Name() string {
	if u == nil {
		return ""
	}
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}

// AddNoteRequest is the body of PUT /food/update/note/{id}.
type AddNoteRequest struct {
	FoodCreatorEmail string `json:"foodCreatorEmail"`
	Note             Note   `json:"note"`
}

// DeleteNoteRequest is the body of DELETE /food/{id}/note.
type DeleteNoteRequest struct {
	Note Note `json:"note"`
}
