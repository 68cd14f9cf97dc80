package models

// UserSummary is a followable user.
type UserSummary struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	DisplayName  string `json:"display_name"`
	ProfileImage string `json:"profile_image"`
	IsFollowing  bool   `json:"is_following"`
}

// Name prefers the display name.
func (u UserSummary) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// Identity is the authenticated account as reported by the auth backend.
type Identity struct {
	PK       int64  `json:"pk"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type Profile struct {
	Nickname     string `json:"nickname"`
	Bio          string `json:"bio"`
	ProfileImage string `json:"profile_image"`
}

// ProfileInput carries a partial update; nil fields are left untouched.
type ProfileInput struct {
	Nickname  *string
	Bio       *string
	ImagePath string
}
