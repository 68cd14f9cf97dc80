package search

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/dmara/internal/client/models"
)

func foldTitle(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// ToItem builds the favourite-item payload for r.
func ToItem(r Result, c models.Catalogue) models.ItemInput {
	return models.ItemInput{
		Category: c.ItemCode(r.Category, r.Subtitle),
		Title:    r.Title,
		Subtitle: r.Subtitle,
		ImageURL: r.ImageURL,
	}
}

// ToPost builds a post draft for r. The date is the one the hit implies,
// else today's date in now's location.
func ToPost(r Result, c models.Catalogue, now time.Time) models.PostInput {
	date := r.Date
	if date == "" {
		date = now.Format(models.DateLayout)
	}
	return models.PostInput{
		Category:   c.PostCode(r.Category),
		Title:      r.Title,
		Date:       date,
		PosterURL:  r.ImageURL,
		Visibility: models.VisibilityPublic,
	}
}

// OwnedItems reports results whose category and title match an item the
// user already has.
func OwnedItems(items []models.Item, c models.Catalogue) func(Result) bool {
	owned := make(map[string]bool, len(items))
	for _, it := range items {
		cat, ok := c.CategoryOf(it.Category)
		if !ok {
			continue
		}
		owned[string(cat)+"|"+foldTitle(it.Title)] = true
	}
	return func(r Result) bool {
		return owned[string(r.Category)+"|"+foldTitle(r.Title)]
	}
}
