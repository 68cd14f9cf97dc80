package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/dmara/internal/client/models"
)

func (c *HTTPClient) GetProfile(ctx context.Context) (*models.Profile, error) {
	var p models.Profile
	if err := c.do(ctx, request{method: http.MethodGet, path: pathProfile, auth: true}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProfile sends a PATCH; a profile image turns it into multipart.
func (c *HTTPClient) UpdateProfile(ctx context.Context, in models.ProfileInput) (*models.Profile, error) {
	fields := map[string]string{}
	if in.Nickname != nil {
		fields["nickname"] = *in.Nickname
	}
	if in.Bio != nil {
		fields["bio"] = *in.Bio
	}

	r := request{method: http.MethodPatch, path: pathProfile, body: fields, auth: true}
	if in.ImagePath != "" {
		r.files = []filePart{{field: "image", path: in.ImagePath}}
	}

	var p models.Profile
	if err := c.do(ctx, r, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) ListItems(ctx context.Context) ([]models.Item, error) {
	return getList[models.Item](ctx, c, request{method: http.MethodGet, path: pathItems, auth: true})
}

func (c *HTTPClient) CreateItem(ctx context.Context, in models.ItemInput) (models.Item, error) {
	var it models.Item
	err := c.do(ctx, request{method: http.MethodPost, path: pathItems, body: in, auth: true}, &it)
	return it, err
}

func (c *HTTPClient) DeleteItem(ctx context.Context, id int64) error {
	return c.do(ctx, request{method: http.MethodDelete, path: itemPath(id), auth: true}, nil)
}

// BulkUpdateItems replaces the user's whole item list, in order.
func (c *HTTPClient) BulkUpdateItems(ctx context.Context, items []models.ItemInput) error {
	if items == nil {
		items = []models.ItemInput{}
	}
	return c.do(ctx, request{method: http.MethodPost, path: pathItemsBulk, body: items, auth: true}, nil)
}

// Search queries the external catalogue for one backend code. Results are
// returned raw; their shape depends on the code.
func (c *HTTPClient) Search(ctx context.Context, code models.Code, query, date string) ([]json.RawMessage, error) {
	q := url.Values{}
	q.Set("category", string(code))
	q.Set("query", query)
	if date != "" {
		q.Set("date", date)
	}
	var resp struct {
		Results []json.RawMessage `json:"results"`
	}
	if err := c.do(ctx, request{method: http.MethodGet, path: pathSearch, query: q, auth: true}, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}
