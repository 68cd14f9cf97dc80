package search

import (
	"strings"

	"github.com/dmitrijs2005/dmara/internal/client/models"
)

// Result is a search hit ready for display. Code is kept for building
// payloads and is never shown.
type Result struct {
	Title    string
	Subtitle string
	ImageURL string
	Category models.Category
	Label    string
	Code     models.Code
	SourceID string
	// Date is YYYY-MM-DD when the hit implies one.
	Date string
}

// Normalize maps a hit to a Result. The subtitle is the hit's own single
// detail if it has one, else its genre list, else sub.Label.
func Normalize(hit Hit, category models.Category, sub models.Subtype, requestDate string) Result {
	r := Result{
		Category: category,
		Label:    sub.Label,
		Code:     sub.Code,
		SourceID: hit.sourceID(),
	}

	switch h := hit.(type) {
	case MediaHit:
		r.Title = first(h.Name, h.Title)
		r.ImageURL = h.Image
		r.Subtitle = subtitle(first(h.Subtitle, h.Artist), h.Genres, sub.Label)
	case PerformanceHit:
		r.Title = h.Name
		r.ImageURL = h.Image
		r.Subtitle = subtitle(h.Genre, nil, sub.Label)
		r.Date = dottedToISO(h.Start)
	case MatchHit:
		r.Title = h.Home + " vs " + h.Away
		r.ImageURL = h.LogoHome
		r.Subtitle = subtitle(h.League, nil, sub.Label)
		r.Date = requestDate
	case ManualHit:
		r.Title = h.Name
		r.ImageURL = h.Image
		r.Subtitle = subtitle(h.Desc, nil, sub.Label)
	}

	if sub.Code == models.CodeActor || sub.Code == models.CodeIdol {
		// Talent subtitles name the subtype; Catalogue.ItemCode reads them back.
		r.Subtitle = sub.Label
	}
	return r
}

func subtitle(single string, many []string, fallback string) string {
	if s := strings.TrimSpace(single); s != "" {
		return s
	}
	var parts []string
	for _, m := range many {
		if m = strings.TrimSpace(m); m != "" {
			parts = append(parts, m)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, ", ")
	}
	return fallback
}

func first(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// dottedToISO turns "2025.07.05" into "2025-07-05"; anything else yields "".
func dottedToISO(s string) string {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 3 || len(parts[0]) != 4 || len(parts[1]) != 2 || len(parts[2]) != 2 {
		return ""
	}
	return parts[0] + "-" + parts[1] + "-" + parts[2]
}
