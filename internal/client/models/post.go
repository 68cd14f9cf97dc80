package models

import "time"

// Visibility controls who may read a post.
type Visibility string

const (
	VisibilityPublic  Visibility = "PUBLIC"
	VisibilityFriends Visibility = "FRIENDS"
	VisibilityPrivate Visibility = "PRIVATE"
)

// DateLayout is the wire format of post dates.
const DateLayout = "2006-01-02"

type Author struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email,omitempty"`
	ProfileImage string `json:"profile_image,omitempty"`
}

// Post is a dated journal entry ("comment") about a hobby.
type Post struct {
	ID         int64      `json:"id"`
	User       Author     `json:"user"`
	Nickname   string     `json:"nickname,omitempty"`
	Category   Code       `json:"category"`
	Title      string     `json:"title"`
	Date       string     `json:"date"`
	DateStr    string     `json:"date_str,omitempty"`
	Content    string     `json:"content"`
	PosterURL  string     `json:"poster_url,omitempty"`
	UserImage  string     `json:"user_image,omitempty"`
	Visibility Visibility `json:"visibility"`
	LikesCount int        `json:"likes_count"`
	IsLiked    bool       `json:"is_liked"`
	IsOwner    bool       `json:"is_owner"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Day parses Date; the zero time is returned for malformed values.
func (p Post) Day() time.Time {
	t, err := time.Parse(DateLayout, p.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}

// LikeState is the backend's answer to a like toggle.
type LikeState struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likes_count"`
}

// PostInput is the create/update payload of a post. ImagePath, when set, is
// uploaded as user_image and turns the request into multipart.
type PostInput struct {
	Category   Code
	Title      string
	Date       string
	Content    string
	PosterURL  string
	Visibility Visibility
	ImagePath  string
}
