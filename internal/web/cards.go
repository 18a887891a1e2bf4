package web

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tracknfresh/tracknfresh-web/internal/model"
)

const statusUnknown = "unknown"

// itemCard is a FoodItem plus the derived values list and detail views show.
type itemCard struct {
	Item        model.FoodItem
	Status      string
	StatusLabel string
	ExpiryLabel string
	DaysLabel   string
	Expired     bool
}

func newCard(item model.FoodItem, now time.Time) itemCard {
	c := itemCard{Item: item, Status: statusUnknown, StatusLabel: "Unknown", ExpiryLabel: item.ExpiryDate, DaysLabel: "unknown"}
	expiry, err := model.ParseExpiry(item.ExpiryDate)
	if err != nil {
		if c.ExpiryLabel == "" {
			c.ExpiryLabel = "unknown"
		}
		return c
	}
	c.ExpiryLabel = expiry.Format("Jan 2, 2006")
	c.Status = model.Status(expiry, now)
	c.Expired = c.Status == model.StatusExpired
	switch c.Status {
	case model.StatusExpired:
		c.StatusLabel = "EXPIRED"
		c.DaysLabel = "expired"
	case model.StatusExpiringSoon:
		c.StatusLabel = "Expiring soon"
	default:
		c.StatusLabel = "Fresh"
	}
	if !c.Expired {
		days := model.DaysRemaining(expiry, now)
		if days == 1 {
			c.DaysLabel = "1 day left"
		} else {
			c.DaysLabel = fmt.Sprintf("%d days left", days)
		}
	}
	return c
}

func newCards(items []model.FoodItem, now time.Time) []itemCard {
	cards := make([]itemCard, 0, len(items))
	for _, it := range items {
		cards = append(cards, newCard(it, now))
	}
	return cards
}

// fridgeFilter holds the fridge query parameters.
type fridgeFilter struct {
	Q        string
	Category string
	Expired  string // "", "only" or "hide"
}

func (f fridgeFilter) keep(c itemCard) bool {
	if f.Q != "" && !strings.Contains(strings.ToLower(c.Item.Title), strings.ToLower(f.Q)) {
		return false
	}
	if f.Category != "" && !strings.EqualFold(c.Item.Category, f.Category) {
		return false
	}
	switch f.Expired {
	case "only":
		return c.Expired
	case "hide":
		return !c.Expired
	}
	return true
}

type fridgeData struct {
	Filter       fridgeFilter
	Categories   []string
	Cards        []itemCard
	Total        int
	ExpiredCount int
}

func newFridgeData(items []model.FoodItem, f fridgeFilter, now time.Time) fridgeData {
	d := fridgeData{Filter: f, Total: len(items), Cards: []itemCard{}}
	seen := make(map[string]bool)
	for _, c := range newCards(items, now) {
		if c.Expired {
			d.ExpiredCount++
		}
		if c.Item.Category != "" && !seen[strings.ToLower(c.Item.Category)] {
			seen[strings.ToLower(c.Item.Category)] = true
			d.Categories = append(d.Categories, c.Item.Category)
		}
		if f.keep(c) {
			d.Cards = append(d.Cards, c)
		}
	}
	sort.Strings(d.Categories)
	return d
}
