package client

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/dmara/internal/client/models"
)

// GoogleLogin exchanges a Google access token for a backend session key.
func (c *HTTPClient) GoogleLogin(ctx context.Context, googleAccessToken string) (string, error) {
	var resp struct {
		Key         string `json:"key"`
		AccessToken string `json:"access_token"`
	}
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   c.routes.GoogleLogin,
		body:   map[string]string{"access_token": googleAccessToken},
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Key != "" {
		return resp.Key, nil
	}
	if resp.AccessToken != "" {
		return resp.AccessToken, nil
	}
	return "", &ServerError{Status: http.StatusOK, Reason: "login response carried no token"}
}

func (c *HTTPClient) CurrentUser(ctx context.Context) (*models.Identity, error) {
	var id models.Identity
	if err := c.do(ctx, request{method: http.MethodGet, path: c.routes.CurrentUser, auth: true}, &id); err != nil {
		return nil, err
	}
	return &id, nil
}

// Ping reports whether the backend answers at all; any HTTP status counts.
func (c *HTTPClient) Ping(ctx context.Context) error {
	resp, err := c.send(ctx, request{method: http.MethodGet, path: c.routes.CurrentUser})
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			return nil
		}
		return err
	}
	resp.Body.Close()
	return nil
}
