package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// ProxiedURL rewrites a cross-origin image URL to go through the backend's
// image proxy. Same-origin, relative, data:/blob: and already proxied URLs
// are returned as is, so the proxy never fetches from itself.
func (c *HTTPClient) ProxiedURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "data:") || strings.HasPrefix(raw, "blob:") {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	if strings.EqualFold(u.Host, c.base.Host) {
		return raw
	}
	return c.endpoint(pathImageProxy, url.Values{"url": {raw}})
}

// FetchImage downloads an image, through the proxy when needed. Relative
// URLs are resolved against the backend.
func (c *HTTPClient) FetchImage(ctx context.Context, raw string) ([]byte, string, error) {
	target := c.ProxiedURL(raw)
	if target == "" {
		return nil, "", fmt.Errorf("empty image url")
	}
	ref, err := url.Parse(target)
	if err != nil {
		return nil, "", fmt.Errorf("parse image url: %w", err)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" && ref.Scheme != "" {
		return nil, "", fmt.Errorf("unsupported image url scheme %q", ref.Scheme)
	}
	abs := c.base.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, abs.String(), nil)
	if err != nil {
		return nil, "", err
	}
	if tok, ok := c.tokens.Token(ctx); ok && strings.EqualFold(abs.Host, c.base.Host) {
		req.Header.Set("Authorization", "Token "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		return nil, "", fmt.Errorf("%w: %v", ErrNetworkFailure, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", mapStatus(resp)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrNetworkFailure, err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}
