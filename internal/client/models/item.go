package models

import "time"

// Item is a favourite hobby item on the user's profile.
type Item struct {
	ID        int64     `json:"id"`
	Category  Code      `json:"category"`
	Title     string    `json:"title"`
	Subtitle  string    `json:"subtitle"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

type ItemInput struct {
	Category Code   `json:"category"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}
