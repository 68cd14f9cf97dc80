package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/dmara/internal/client/session"
	"github.com/dmitrijs2005/dmara/internal/logging"
	"github.com/rs/xid"
)

const RequestIDHeader = "X-Request-ID"

// HTTPClient talks to the REST backend. The token is read from the session
// before every request; it is never cached here.
type HTTPClient struct {
	base   *url.URL
	http   *http.Client
	tokens session.TokenSource
	routes Routes
	logger logging.Logger
}

type Option func(*HTTPClient)

func WithHTTPClient(hc *http.Client) Option { return func(c *HTTPClient) { c.http = hc } }
func WithRoutes(r Routes) Option            { return func(c *HTTPClient) { c.routes = r } }
func WithLogger(l logging.Logger) Option    { return func(c *HTTPClient) { c.logger = l } }

func NewHTTPClient(baseURL string, tokens session.TokenSource, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("server url %q must be absolute", baseURL)
	}
	c := &HTTPClient{
		base:   u,
		http:   &http.Client{Timeout: 15 * time.Second},
		tokens: tokens,
		routes: DefaultRoutes(),
		logger: logging.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// filePart is one uploaded file of a multipart request.
type filePart struct {
	field string
	path  string
}

type request struct {
	method string
	path   string
	query  url.Values
	// body is JSON-encoded unless files are present, in which case it must
	// be a map[string]string of form fields.
	body  any
	files []filePart
	// auth requires a token; without one the request is not sent.
	auth bool
}

func (c *HTTPClient) endpoint(path string, q url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + path
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func (c *HTTPClient) build(ctx context.Context, r request) (*http.Request, error) {
	var (
		body        io.Reader
		contentType string
	)
	switch {
	case len(r.files) > 0:
		buf, ct, err := encodeMultipart(r.body, r.files)
		if err != nil {
			return nil, err
		}
		body, contentType = buf, ct
	case r.body != nil:
		b, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body, contentType = bytes.NewReader(b), "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.endpoint(r.path, r.query), body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, xid.New().String())
	return req, nil
}

func encodeMultipart(fields any, files []filePart) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	if fields != nil {
		m, ok := fields.(map[string]string)
		if !ok {
			return nil, "", fmt.Errorf("multipart body must be map[string]string, got %T", fields)
		}
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := w.WriteField(k, m[k]); err != nil {
				return nil, "", err
			}
		}
	}

	for _, f := range files {
		if err := attach(w, f); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

func attach(w *multipart.Writer, f filePart) error {
	src, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", f.path, err)
	}
	defer src.Close()

	part, err := w.CreateFormFile(f.field, filepath.Base(f.path))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("read %s: %w", f.path, err)
	}
	return nil
}

// do sends r and decodes a 2xx JSON answer into out (if non-nil).
func (c *HTTPClient) do(ctx context.Context, r request, out any) error {
	resp, err := c.send(ctx, r)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return mapStatus(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s %s: %w", r.method, r.path, err)
	}
	return nil
}

func (c *HTTPClient) send(ctx context.Context, r request) (*http.Response, error) {
	token, ok := c.tokens.Token(ctx)
	if r.auth && !ok {
		return nil, ErrUnauthenticated
	}

	req, err := c.build(ctx, r)
	if err != nil {
		return nil, err
	}
	if ok {
		req.Header.Set("Authorization", "Token "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.Warn(ctx, "request failed", "method", r.method, "path", r.path, "request_id", req.Header.Get(RequestIDHeader), "error", err)
		return nil, fmt.Errorf("%w: %v", ErrNetworkFailure, err)
	}
	c.logger.Debug(ctx, "request done",
		"method", r.method, "path", r.path, "status", resp.StatusCode,
		"request_id", req.Header.Get(RequestIDHeader), "took", time.Since(start))
	return resp, nil
}

// mapStatus turns a non-2xx answer into the client error taxonomy.
func mapStatus(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	reason, field := parseReason(body)
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: %s", ErrUnauthenticated, reason)
	}
	return &ServerError{Status: resp.StatusCode, Reason: reason, Field: field}
}

// parseReason understands DRF error bodies: {"detail": ...}, {"message": ...},
// {"error": ...}, {"non_field_errors": [...]} and {"<field>": ["..."]}.
func parseReason(body []byte) (string, string) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(body, &m); err != nil {
		return strings.TrimSpace(string(body)), ""
	}
	for _, k := range []string{"detail", "message", "error", "non_field_errors"} {
		if v, ok := m[k]; ok {
			return firstString(v), ""
		}
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if s := firstString(m[k]); s != "" {
			return s, k
		}
	}
	return "", ""
}

func firstString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0]
	}
	return ""
}

// decodeList accepts either a bare JSON array or a paginated {"results": [...]}.
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []T{}, nil
	}
	var out []T
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	var page struct {
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, err
	}
	if page.Results == nil {
		return []T{}, nil
	}
	return page.Results, nil
}

func getList[T any](ctx context.Context, c *HTTPClient, r request) ([]T, error) {
	var raw json.RawMessage
	if err := c.do(ctx, r, &raw); err != nil {
		return nil, err
	}
	out, err := decodeList[T](raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.path, err)
	}
	return out, nil
}
