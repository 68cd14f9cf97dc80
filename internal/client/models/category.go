package models

import (
	"fmt"
	"strings"
)

// Category is a UI-facing grouping shown to the user.
type Category string

const (
	Music    Category = "Music"
	Movie    Category = "Movie"
	Talent   Category = "Talent"
	Sports   Category = "Sports"
	Matches  Category = "Matches"
	DramaOTT Category = "Drama & OTT"
	Shows    Category = "Shows"
)

// Categories lists the UI categories in display order.
var Categories = []Category{Music, Movie, Talent, Sports, Matches, DramaOTT, Shows}

// Code is a backend category code. Codes never reach display directly.
type Code string

const (
	CodeMusic      Code = "MUSIC"
	CodeIdol       Code = "IDOL"
	CodeMovie      Code = "MOVIE"
	CodeDrama      Code = "DRAMA"
	CodeSports     Code = "SPORTS"
	CodeMatch      Code = "MATCH"
	CodeActor      Code = "ACTOR"
	CodeExhibition Code = "EXHIBITION"
	CodeShow       Code = "SHOW"
	CodeFood       Code = "FOOD"
	CodeEtc        Code = "ETC"
)

// Subtitle labels used for the Talent subtypes.
const (
	LabelActor  = "ACTOR"
	LabelArtist = "ARTIST"
)

// Subtype is one backend code behind a UI category, with its display label.
type Subtype struct {
	Code  Code
	Label string
}

// Catalogue maps UI categories to backend codes. The hobbies and posts
// surfaces disagree on the code for Shows, so each is configurable.
type Catalogue struct {
	ShowsItems Code
	ShowsPosts Code
}

func DefaultCatalogue() Catalogue {
	return Catalogue{ShowsItems: CodeExhibition, ShowsPosts: CodeShow}
}

func (c Catalogue) showsItems() Code {
	if c.ShowsItems == "" {
		return CodeExhibition
	}
	return c.ShowsItems
}

func (c Catalogue) showsPosts() Code {
	if c.ShowsPosts == "" {
		return CodeShow
	}
	return c.ShowsPosts
}

// DefaultLabel is the subtitle used when a result carries no detail of its own.
func (c Catalogue) DefaultLabel(cat Category) string {
	switch cat {
	case Matches:
		return "Match"
	case DramaOTT:
		return "Drama"
	case Shows:
		return "Show"
	default:
		return string(cat)
	}
}

// Subtypes returns the hobbies-surface codes for cat in fan-out order.
func (c Catalogue) Subtypes(cat Category) []Subtype {
	switch cat {
	case Music:
		return []Subtype{{CodeMusic, c.DefaultLabel(cat)}}
	case Movie:
		return []Subtype{{CodeMovie, c.DefaultLabel(cat)}}
	case Talent:
		return []Subtype{{CodeActor, LabelActor}, {CodeIdol, LabelArtist}}
	case Sports:
		return []Subtype{{CodeSports, c.DefaultLabel(cat)}}
	case Matches:
		return []Subtype{{CodeMatch, c.DefaultLabel(cat)}}
	case DramaOTT:
		return []Subtype{{CodeDrama, c.DefaultLabel(cat)}}
	case Shows:
		return []Subtype{{c.showsItems(), c.DefaultLabel(cat)}}
	default:
		return nil
	}
}

// ItemCode picks the code a favourite item is saved under. Talent items are
// told apart by their subtitle label.
func (c Catalogue) ItemCode(cat Category, subtitle string) Code {
	if cat == Talent {
		if subtitle == LabelArtist {
			return CodeIdol
		}
		return CodeActor
	}
	subs := c.Subtypes(cat)
	if len(subs) == 0 {
		return CodeEtc
	}
	return subs[0].Code
}

// PostCode returns the posts-surface code for cat.
func (c Catalogue) PostCode(cat Category) Code {
	if cat == Shows {
		return c.showsPosts()
	}
	return c.ItemCode(cat, LabelActor)
}

// CategoryOf groups a backend code under its UI category. Both Shows codes
// are accepted regardless of surface.
func (c Catalogue) CategoryOf(code Code) (Category, bool) {
	switch code {
	case CodeMusic:
		return Music, true
	case CodeMovie:
		return Movie, true
	case CodeActor, CodeIdol:
		return Talent, true
	case CodeSports:
		return Sports, true
	case CodeMatch:
		return Matches, true
	case CodeDrama:
		return DramaOTT, true
	case CodeExhibition, CodeShow, c.showsItems(), c.showsPosts():
		return Shows, true
	default:
		return "", false
	}
}

// LabelFor returns the display label of code, falling back to the category
// default. Raw codes are never returned.
func (c Catalogue) LabelFor(code Code) string {
	cat, ok := c.CategoryOf(code)
	if !ok {
		return "Etc"
	}
	for _, s := range c.Subtypes(cat) {
		if s.Code == code {
			return s.Label
		}
	}
	return c.DefaultLabel(cat)
}

var categoryAliases = map[string]Category{
	"drama":     DramaOTT,
	"ott":       DramaOTT,
	"drama&ott": DramaOTT,
	"match":     Matches,
	"show":      Shows,
	"talents":   Talent,
}

// ParseCategory accepts a UI category name case-insensitively, plus a few
// shell-friendly aliases.
func ParseCategory(s string) (Category, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for _, c := range Categories {
		if strings.ToLower(string(c)) == v {
			return c, nil
		}
	}
	if c, ok := categoryAliases[v]; ok {
		return c, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}
