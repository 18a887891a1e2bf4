package validate

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/go-openapi/strfmt"

	"github.com/tracknfresh/tracknfresh-web/internal/model"
)

// Categories accepted by the add-food form.
var Categories = []string{"Dairy", "Meat", "Vegetables", "Fruits", "Snacks", "Beverages", "Other"}

func Email(v string) error {
	if v == "" {
		return fmt.Errorf("email is required")
	}
	if len(v) > 320 || !strfmt.IsEmail(v) {
		return fmt.Errorf("invalid email")
	}
	return nil
}

func NonEmpty(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

func MaxLen(field, v string, limit int) error {
	if len(v) > limit {
		return fmt.Errorf("%s exceeds %d characters", field, limit)
	}
	return nil
}

// Password enforces the registration rules: at least 6 characters with
// one uppercase and one lowercase letter.
func Password(v string) error {
	if len(v) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	var upper, lower bool
	for _, r := range v {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		}
	}
	if !upper {
		return fmt.Errorf("password must contain an uppercase letter")
	}
	if !lower {
		return fmt.Errorf("password must contain a lowercase letter")
	}
	return nil
}

// OptionalHTTPURL accepts "" or an absolute http(s) URL.
func OptionalHTTPURL(field, v string) error {
	if v == "" {
		return nil
	}
	u, err := url.Parse(v)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an http(s) URL", field)
	}
	return nil
}

// -------- Form specific helpers ----------

// Credentials validates the email/password login form.
func Credentials(email, password string) error {
	if err := Email(email); err != nil {
		return err
	}
	return NonEmpty("password", password)
}

// Registration validates the sign-up form.
func Registration(name, email, photoURL, password string) error {
	if err := NonEmpty("name", name); err != nil {
		return err
	}
	if err := MaxLen("name", name, 100); err != nil {
		return err
	}
	if err := Email(email); err != nil {
		return err
	}
	if err := OptionalHTTPURL("photo URL", photoURL); err != nil {
		return err
	}
	return Password(password)
}

// NoteText validates the body of a new note.
func NoteText(v string) error {
	if err := NonEmpty("note", v); err != nil {
		return err
	}
	return MaxLen("note", v, 500)
}

// Food validates an item submitted through the add-food form.
func Food(item model.FoodItem) error {
	if err := NonEmpty("title", item.Title); err != nil {
		return err
	}
	if err := MaxLen("title", item.Title, 100); err != nil {
		return err
	}
	if !isCategory(item.Category) {
		return fmt.Errorf("category must be one of %s", strings.Join(Categories, ", "))
	}
	if item.Quantity < 1 {
		return fmt.Errorf("quantity must be at least 1")
	}
	if _, err := model.ParseExpiry(item.ExpiryDate); err != nil {
		return fmt.Errorf("expiry date is invalid")
	}
	if err := MaxLen("description", item.Description, 1000); err != nil {
		return err
	}
	return OptionalHTTPURL("image URL", item.ImageURL)
}

func isCategory(v string) bool {
	for _, c := range Categories {
		if c == v {
			return true
		}
	}
	return false
}
