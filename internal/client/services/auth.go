package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/dmara/internal/client/client"
	"github.com/dmitrijs2005/dmara/internal/client/models"
	"github.com/dmitrijs2005/dmara/internal/client/session"
	"github.com/dmitrijs2005/dmara/internal/logging"
)

// AuthService defines the sign-in operations of the CLI.
//
// Contract:
//   - LoginWithGoogle: browser consent, then exchange of the Google token
//     for a backend key.
//   - LoginWithToken: adopt a backend key the user already has.
//   - Logout: forget the key locally.
//   - WhoAmI: ask the backend who the key belongs to.
//
// A login only sticks when the backend accepts the key.
type AuthService interface {
	LoginWithGoogle(ctx context.Context, show func(authURL string)) (*models.Identity, error)
	LoginWithToken(ctx context.Context, token string) (*models.Identity, error)
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) (*models.Identity, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// GoogleTokens yields a Google access token after user consent.
type GoogleTokens interface {
	AccessToken(ctx context.Context, show func(authURL string)) (string, error)
}

type authService struct {
	client  client.Client
	session *session.Holder
	google  GoogleTokens
	logger  logging.Logger
}

func NewAuthService(c client.Client, s *session.Holder, google GoogleTokens, logger logging.Logger) AuthService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &authService{client: c, session: s, google: google, logger: logger}
}

var ErrGoogleUnavailable = errors.New("google sign-in is not configured")

func (a *authService) LoginWithGoogle(ctx context.Context, show func(string)) (*models.Identity, error) {
	if a.google == nil {
		return nil, ErrGoogleUnavailable
	}
	gtok, err := a.google.AccessToken(ctx, show)
	if err != nil {
		return nil, fmt.Errorf("google sign-in: %w", err)
	}
	key, err := a.client.GoogleLogin(ctx, gtok)
	if err != nil {
		return nil, fmt.Errorf("backend login: %w", err)
	}
	return a.LoginWithToken(ctx, key)
}

// LoginWithToken stores token, verifies it against the backend and records
// the username. A refused token is removed again.
func (a *authService) LoginWithToken(ctx context.Context, token string) (*models.Identity, error) {
	if err := a.session.SetToken(ctx, token); err != nil {
		return nil, err
	}
	id, err := a.client.CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, client.ErrUnauthenticated) {
			if cerr := a.session.Clear(ctx); cerr != nil {
				a.logger.Error(ctx, "could not drop refused token", "error", cerr)
			}
		}
		return nil, fmt.Errorf("verify token: %w", err)
	}
	tok, _ := a.session.Token(ctx)
	if err := a.session.Establish(ctx, tok, id.Username); err != nil {
		return nil, err
	}
	a.logger.Info(ctx, "logged in", "user", id.Username)
	return id, nil
}

func (a *authService) Logout(ctx context.Context) error {
	return a.session.Clear(ctx)
}

func (a *authService) WhoAmI(ctx context.Context) (*models.Identity, error) {
	return a.client.CurrentUser(ctx)
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
