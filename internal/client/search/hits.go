package search

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/dmara/internal/client/models"
)

// Hit is one raw search result. The concrete type depends on the backend
// code the search was issued for.
type Hit interface {
	sourceID() string
}

// MediaHit covers songs, artists, films, series and actors.
type MediaHit struct {
	ID       flexString `json:"id"`
	Name     string     `json:"name"`
	Title    string     `json:"title"`
	Subtitle string     `json:"subtitle"`
	Artist   string     `json:"artist"`
	Image    string     `json:"image"`
	Type     string     `json:"type"`
	Desc     string     `json:"desc"`
	Genres   []string   `json:"genres"`
}

// PerformanceHit is an exhibition or stage show. Start and End use
// YYYY.MM.DD.
type PerformanceHit struct {
	ID    flexString `json:"id"`
	Name  string     `json:"name"`
	Start string     `json:"start"`
	End   string     `json:"end"`
	Place string     `json:"place"`
	Image string     `json:"image"`
	Genre string     `json:"type"`
}

// MatchHit is one fixture on the requested day.
type MatchHit struct {
	Sport     string     `json:"type"`
	League    string     `json:"league"`
	Home      string     `json:"home"`
	Away      string     `json:"away"`
	Time      string     `json:"time"`
	Status    string     `json:"status"`
	HomeScore flexString `json:"home_score"`
	AwayScore flexString `json:"away_score"`
	LogoHome  string     `json:"logo_home"`
	LogoAway  string     `json:"logo_away"`
}

// ManualHit is a team or a free-form entry echoed back by the backend.
type ManualHit struct {
	ID      flexString `json:"id"`
	Name    string     `json:"name"`
	Image   string     `json:"image"`
	Type    string     `json:"type"`
	SubType string     `json:"sub_type"`
	Desc    string     `json:"desc"`
}

func (h MediaHit) sourceID() string       { return string(h.ID) }
func (h PerformanceHit) sourceID() string { return string(h.ID) }
func (h ManualHit) sourceID() string      { return string(h.ID) }
func (h MatchHit) sourceID() string {
	return h.League + "|" + h.Home + "|" + h.Away + "|" + h.Time
}

// Decode picks the hit shape for code and decodes raw into it.
func Decode(code models.Code, raw json.RawMessage) (Hit, error) {
	var (
		hit Hit
		err error
	)
	switch code {
	case models.CodeMusic, models.CodeIdol, models.CodeMovie, models.CodeDrama, models.CodeActor:
		var h MediaHit
		err = json.Unmarshal(raw, &h)
		hit = h
	case models.CodeExhibition, models.CodeShow:
		var h PerformanceHit
		err = json.Unmarshal(raw, &h)
		hit = h
	case models.CodeMatch:
		var h MatchHit
		err = json.Unmarshal(raw, &h)
		hit = h
	default:
		var h ManualHit
		err = json.Unmarshal(raw, &h)
		hit = h
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s hit: %w", code, err)
	}
	return hit, nil
}

// flexString accepts a JSON string, number or null.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	if i, err := n.Int64(); err == nil {
		*f = flexString(strconv.FormatInt(i, 10))
		return nil
	}
	*f = flexString(n.String())
	return nil
}
