// Package oauth runs the browser half of Google sign-in for a terminal
// program: it serves a one-shot loopback callback, waits for the
// authorization code and trades it for a Google access token.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/dmitrijs2005/dmara/internal/logging"
)

const CallbackPath = "/oauth/callback"

var (
	ErrStateMismatch = errors.New("oauth: state mismatch")
	ErrDenied        = errors.New("oauth: authorization denied")
	ErrNoCode        = errors.New("oauth: callback carried no code")
	ErrNotConfigured = errors.New("oauth: google client id is not configured")
)

type callback struct {
	code string
	err  error
}

// GoogleProvider performs the authorization-code flow against Google.
type GoogleProvider struct {
	config oauth2.Config
	addr   string
	logger logging.Logger
}

type Option func(*GoogleProvider)

// WithEndpoint replaces Google's endpoints, for tests.
func WithEndpoint(e oauth2.Endpoint) Option { return func(p *GoogleProvider) { p.config.Endpoint = e } }

func WithLogger(l logging.Logger) Option { return func(p *GoogleProvider) { p.logger = l } }

// NewGoogleProvider builds a provider whose callback listens on addr
// (host:port; port 0 picks a free one).
func NewGoogleProvider(clientID, clientSecret, addr string, opts ...Option) *GoogleProvider {
	p := &GoogleProvider{
		config: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		addr:   addr,
		logger: logging.Nop(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// AccessToken opens the callback listener, hands the consent URL to show
// and blocks until the browser comes back or ctx ends.
func (p *GoogleProvider) AccessToken(ctx context.Context, show func(authURL string)) (string, error) {
	if p.config.ClientID == "" {
		return "", ErrNotConfigured
	}

	ln, err := net.Listen("tcp", p.addr)
	if err != nil {
		return "", fmt.Errorf("oauth: listen on %s: %w", p.addr, err)
	}

	cfg := p.config
	cfg.RedirectURL = "http://" + ln.Addr().String() + CallbackPath
	state := uuid.NewString()

	results := make(chan callback, 1)
	srv := &http.Server{
		Handler:           p.router(state, results),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.logger.Warn(ctx, "oauth callback server stopped", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	show(cfg.AuthCodeURL(state, oauth2.AccessTypeOnline))

	var cb callback
	select {
	case cb = <-results:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	if cb.err != nil {
		return "", cb.err
	}

	tok, err := cfg.Exchange(ctx, cb.code)
	if err != nil {
		return "", fmt.Errorf("oauth: exchange code: %w", err)
	}
	p.logger.Debug(ctx, "google token obtained", "expiry", tok.Expiry)
	return tok.AccessToken, nil
}

func (p *GoogleProvider) router(state string, results chan<- callback) http.Handler {
	r := chi.NewRouter()
	r.Get(CallbackPath, func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		var cb callback
		switch {
		case q.Get("state") != state:
			cb.err = ErrStateMismatch
		case q.Get("error") != "":
			cb.err = fmt.Errorf("%w: %s", ErrDenied, q.Get("error"))
		case q.Get("code") == "":
			cb.err = ErrNoCode
		default:
			cb.code = q.Get("code")
		}

		if cb.err != nil {
			http.Error(w, cb.err.Error(), http.StatusBadRequest)
		} else {
			_, _ = w.Write([]byte("Signed in. You can close this window and return to the terminal.\n"))
		}
		select {
		case results <- cb:
		default:
		}
	})
	return r
}
