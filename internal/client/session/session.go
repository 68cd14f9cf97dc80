// Package session holds the process-wide bearer token.
//
// The token lives in durable key-value storage under "userToken" and is read
// fresh on every call, so a logout in one place is seen everywhere at once.
// An absent token is not an error; callers treat it as "unauthenticated".
package session

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/dmara/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/dmara/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

const (
	KeyToken    = "userToken"
	KeyUsername = "userName"
	KeyTheme    = "themeColor"

	DefaultTheme = "#FFD700"
)

var (
	ErrEmptyToken   = errors.New("empty token")
	ErrInvalidTheme = errors.New("theme colour must look like #RRGGBB")
)

var themePattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// TokenSource is the read side of the holder, which is all HTTP callers need.
type TokenSource interface {
	Token(ctx context.Context) (string, bool)
}

type Holder struct {
	mu     sync.Mutex
	repo   metadata.Repository
	logger logging.Logger
	now    func() time.Time
}

func NewHolder(repo metadata.Repository, logger logging.Logger) *Holder {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Holder{repo: repo, logger: logger, now: time.Now}
}

// Token returns the stored token. A JWT-shaped token whose exp claim has
// passed is erased and reported as absent. Storage failures are logged and
// also reported as absent.
func (h *Holder) Token(ctx context.Context) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	raw, err := h.repo.Get(ctx, KeyToken)
	if err != nil {
		h.logger.Error(ctx, "read session token", "error", err)
		return "", false
	}
	tok := strings.TrimSpace(string(raw))
	if tok == "" {
		return "", false
	}

	if h.expired(tok) {
		h.logger.Info(ctx, "session token expired")
		if err := h.repo.Delete(ctx, KeyToken); err != nil {
			h.logger.Warn(ctx, "erase expired token", "error", err)
		}
		return "", false
	}
	return tok, true
}

func (h *Holder) expired(tok string) bool {
	if strings.Count(tok, ".") != 2 {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !h.now().Before(exp.Time)
}

func (h *Holder) SetToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.repo.Set(ctx, KeyToken, []byte(token)); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	return nil
}

// Establish stores the token together with the username shown in the prompt.
func (h *Holder) Establish(ctx context.Context, token, username string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	err := h.repo.SetMany(ctx, map[string][]byte{
		KeyToken:    []byte(token),
		KeyUsername: []byte(username),
	})
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// Clear forgets the token and the cached username. Preferences survive.
func (h *Holder) Clear(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, k := range []string{KeyToken, KeyUsername} {
		if err := h.repo.Delete(ctx, k); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
	}
	return nil
}

func (h *Holder) Username(ctx context.Context) string {
	raw, err := h.repo.Get(ctx, KeyUsername)
	if err != nil {
		return ""
	}
	return string(raw)
}

func (h *Holder) Theme(ctx context.Context) string {
	raw, err := h.repo.Get(ctx, KeyTheme)
	if err != nil || len(raw) == 0 {
		return DefaultTheme
	}
	return string(raw)
}

func (h *Holder) SetTheme(ctx context.Context, colour string) error {
	if !themePattern.MatchString(colour) {
		return ErrInvalidTheme
	}
	return h.repo.Set(ctx, KeyTheme, []byte(strings.ToUpper(colour)))
}
