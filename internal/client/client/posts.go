package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/dmara/internal/client/models"
)

// ListPosts lists posts; mode "my" restricts to the caller's own.
func (c *HTTPClient) ListPosts(ctx context.Context, mode string) ([]models.Post, error) {
	var q url.Values
	if mode != "" {
		q = url.Values{"mode": {mode}}
	}
	return getList[models.Post](ctx, c, request{method: http.MethodGet, path: pathPosts, query: q, auth: true})
}

func (c *HTTPClient) GetPost(ctx context.Context, id int64) (models.Post, error) {
	var p models.Post
	err := c.do(ctx, request{method: http.MethodGet, path: postPath(id), auth: true}, &p)
	return p, err
}

func postRequest(method, path string, in models.PostInput) request {
	fields := map[string]string{
		"category":   string(in.Category),
		"title":      in.Title,
		"date":       in.Date,
		"content":    in.Content,
		"visibility": string(in.Visibility),
	}
	if in.PosterURL != "" {
		fields["poster_url"] = in.PosterURL
	}
	r := request{method: method, path: path, body: fields, auth: true}
	if in.ImagePath != "" {
		r.files = []filePart{{field: "user_image", path: in.ImagePath}}
	}
	return r
}

func (c *HTTPClient) CreatePost(ctx context.Context, in models.PostInput) (models.Post, error) {
	var p models.Post
	err := c.do(ctx, postRequest(http.MethodPost, pathPosts, in), &p)
	return p, err
}

func (c *HTTPClient) UpdatePost(ctx context.Context, id int64, in models.PostInput) (models.Post, error) {
	var p models.Post
	err := c.do(ctx, postRequest(http.MethodPut, postPath(id), in), &p)
	return p, err
}

func (c *HTTPClient) DeletePost(ctx context.Context, id int64) error {
	return c.do(ctx, request{method: http.MethodDelete, path: postPath(id), auth: true}, nil)
}

// ToggleLike flips the caller's like. Older deployments answer with
// {"status": "liked", "like_count": n}; both shapes are accepted.
func (c *HTTPClient) ToggleLike(ctx context.Context, id int64) (models.LikeState, error) {
	var resp struct {
		Liked      *bool  `json:"liked"`
		LikesCount *int   `json:"likes_count"`
		Status     string `json:"status"`
		LikeCount  *int   `json:"like_count"`
	}
	if err := c.do(ctx, request{method: http.MethodPost, path: likePath(id), auth: true}, &resp); err != nil {
		return models.LikeState{}, err
	}

	var st models.LikeState
	if resp.Liked != nil {
		st.Liked = *resp.Liked
	} else {
		st.Liked = resp.Status == "liked"
	}
	if resp.LikesCount != nil {
		st.LikesCount = *resp.LikesCount
	} else if resp.LikeCount != nil {
		st.LikesCount = *resp.LikeCount
	}
	return st, nil
}
