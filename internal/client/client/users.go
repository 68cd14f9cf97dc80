package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/dmara/internal/client/models"
)

func (c *HTTPClient) Following(ctx context.Context) ([]models.UserSummary, error) {
	return getList[models.UserSummary](ctx, c, request{method: http.MethodGet, path: pathFollowing, auth: true})
}

func (c *HTTPClient) Followers(ctx context.Context) ([]models.UserSummary, error) {
	return getList[models.UserSummary](ctx, c, request{method: http.MethodGet, path: pathFollowers, auth: true})
}

// RemoveFollower makes userID stop following the caller.
func (c *HTTPClient) RemoveFollower(ctx context.Context, userID int64) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   pathFollowers,
		body:   map[string]int64{"user_id": userID},
		auth:   true,
	}, nil)
}

func (c *HTTPClient) SearchUsers(ctx context.Context, username string) ([]models.UserSummary, error) {
	q := url.Values{"username": {username}}
	return getList[models.UserSummary](ctx, c, request{method: http.MethodGet, path: pathUserSearch, query: q, auth: true})
}

// ToggleFollow flips the follow relation and reports whether the caller now
// follows userID.
func (c *HTTPClient) ToggleFollow(ctx context.Context, userID int64) (bool, error) {
	var resp struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, request{method: http.MethodPost, path: followPath(userID), auth: true}, &resp); err != nil {
		return false, err
	}
	return resp.Message == "Followed", nil
}

func (c *HTTPClient) Notifications(ctx context.Context) ([]models.Notification, error) {
	return getList[models.Notification](ctx, c, request{method: http.MethodGet, path: pathNotification, auth: true})
}

// MarkRead marks one notification as read, or all of them when id is 0.
func (c *HTTPClient) MarkRead(ctx context.Context, id int64) error {
	body := map[string]int64{}
	if id != 0 {
		body["id"] = id
	}
	return c.do(ctx, request{method: http.MethodPost, path: pathNotification, body: body, auth: true}, nil)
}
