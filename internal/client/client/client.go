package client

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/dmara/internal/client/models"
)

// Client is the backend contract of the dmara terminal client.
type Client interface {
	Close() error
	Ping(ctx context.Context) error

	GoogleLogin(ctx context.Context, googleAccessToken string) (string, error)
	CurrentUser(ctx context.Context) (*models.Identity, error)

	GetProfile(ctx context.Context) (*models.Profile, error)
	UpdateProfile(ctx context.Context, in models.ProfileInput) (*models.Profile, error)

	ListItems(ctx context.Context) ([]models.Item, error)
	CreateItem(ctx context.Context, in models.ItemInput) (models.Item, error)
	DeleteItem(ctx context.Context, id int64) error
	BulkUpdateItems(ctx context.Context, items []models.ItemInput) error
	Search(ctx context.Context, code models.Code, query, date string) ([]json.RawMessage, error)

	ListPosts(ctx context.Context, mode string) ([]models.Post, error)
	GetPost(ctx context.Context, id int64) (models.Post, error)
	CreatePost(ctx context.Context, in models.PostInput) (models.Post, error)
	UpdatePost(ctx context.Context, id int64, in models.PostInput) (models.Post, error)
	DeletePost(ctx context.Context, id int64) error
	ToggleLike(ctx context.Context, id int64) (models.LikeState, error)

	Following(ctx context.Context) ([]models.UserSummary, error)
	Followers(ctx context.Context) ([]models.UserSummary, error)
	RemoveFollower(ctx context.Context, userID int64) error
	SearchUsers(ctx context.Context, username string) ([]models.UserSummary, error)
	ToggleFollow(ctx context.Context, userID int64) (bool, error)

	Notifications(ctx context.Context) ([]models.Notification, error)
	MarkRead(ctx context.Context, id int64) error

	ProxiedURL(raw string) string
	FetchImage(ctx context.Context, raw string) ([]byte, string, error)
}
