package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Day is the unit used for days-remaining arithmetic.
const Day = 24 * time.Hour

// ExpiringSoonDays is the inclusive window in which a fresh item is flagged as expiring soon.
const ExpiringSoonDays = 5

// NoteDateLayout matches how notes have historically been dated by the web client.
const NoteDateLayout = "1/2/2006, 3:04:05 PM"

// Freshness states shown as badges.
const (
	StatusFresh        = "fresh"
	StatusExpiringSoon = "expiring-soon"
	StatusExpired      = "expired"
)

var expiryLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseExpiry parses an expiry date as sent by the food service.
// Values without a zone are interpreted as UTC.
func ParseExpiry(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty expiry date", ErrValidation)
	}
	for _, layout := range expiryLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognised expiry date %q", ErrValidation, s)
}

// Expired reports whether expiry is strictly before now.
func Expired(expiry, now time.Time) bool {
	return expiry.Before(now)
}

// DaysRemaining is ceil((expiry - now) / 1 day). It is not clamped at zero.
func DaysRemaining(expiry, now time.Time) int {
	ms := float64(expiry.Sub(now).Milliseconds())
	return int(math.Ceil(ms / float64(Day.Milliseconds())))
}

// Status classifies an expiry date relative to now.
func Status(expiry, now time.Time) string {
	if Expired(expiry, now) {
		return StatusExpired
	}
	if DaysRemaining(expiry, now) <= ExpiringSoonDays {
		return StatusExpiringSoon
	}
	return StatusFresh
}

// IsOwner reports whether the identity created the item.
func IsOwner(u *UserIdentity, item *FoodItem) bool {
	if u == nil || item == nil || u.Email == "" {
		return false
	}
	return u.Email == item.CreatorEmail
}

// CanDeleteNote reports whether u may delete n on item: u must own the item and have authored the note.
func CanDeleteNote(u *UserIdentity, item *FoodItem, n Note) bool {
	return IsOwner(u, item) && u.Email == n.AuthorEmail
}
