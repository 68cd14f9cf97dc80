package services

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/dmara/internal/client/cache"
	"github.com/dmitrijs2005/dmara/internal/client/client"
	"github.com/dmitrijs2005/dmara/internal/client/models"
	"github.com/dmitrijs2005/dmara/internal/client/session"
	"github.com/dmitrijs2005/dmara/internal/logging"
)

const FieldFollow = "follow"

type UserCache = cache.Cache[models.UserSummary, struct{}]

type SocialService interface {
	Following() *UserCache
	Followers() *UserCache
	// Load fetches both lists concurrently.
	Load(ctx context.Context) error
	ToggleFollow(ctx context.Context, userID int64) error
	RemoveFollower(ctx context.Context, userID int64, confirm cache.Confirmer) (bool, error)
	SearchUsers(ctx context.Context, query string) ([]models.UserSummary, error)
}

type userEndpoint struct {
	client client.Client
	list   func(context.Context) ([]models.UserSummary, error)
	remove func(context.Context, int64) error
}

func (e userEndpoint) List(ctx context.Context) ([]models.UserSummary, error) { return e.list(ctx) }

func (e userEndpoint) Create(context.Context, struct{}) (models.UserSummary, error) {
	return models.UserSummary{}, cache.ErrUnsupported
}

func (e userEndpoint) Update(context.Context, int64, struct{}) (models.UserSummary, error) {
	return models.UserSummary{}, cache.ErrUnsupported
}

func (e userEndpoint) Delete(ctx context.Context, id int64) error {
	if e.remove == nil {
		return cache.ErrUnsupported
	}
	return e.remove(ctx, id)
}

func (e userEndpoint) Toggle(ctx context.Context, id int64, field string) error {
	if field != FieldFollow {
		return cache.ErrUnsupported
	}
	_, err := e.client.ToggleFollow(ctx, id)
	return err
}

var userSchema = cache.Schema[models.UserSummary, struct{}]{
	ID: func(u models.UserSummary) int64 { return u.ID },
	Toggles: map[string]cache.Toggle[models.UserSummary]{
		FieldFollow: {Flag: func(u *models.UserSummary) *bool { return &u.IsFollowing }},
	},
}

type socialService struct {
	client    client.Client
	tokens    session.TokenSource
	following *UserCache
	followers *UserCache
	logger    logging.Logger
}

func NewSocialService(c client.Client, tokens session.TokenSource, logger logging.Logger) SocialService {
	if logger == nil {
		logger = logging.Nop()
	}
	following := userEndpoint{client: c, list: c.Following}
	followers := userEndpoint{client: c, list: c.Followers, remove: c.RemoveFollower}
	return &socialService{
		client:    c,
		tokens:    tokens,
		following: cache.New[models.UserSummary, struct{}]("following", following, userSchema, tokens, cache.WithLogger(logger)),
		followers: cache.New[models.UserSummary, struct{}]("follower", followers, userSchema, tokens, cache.WithLogger(logger)),
		logger:    logger,
	}
}

func (s *socialService) Following() *UserCache { return s.following }
func (s *socialService) Followers() *UserCache { return s.followers }

func (s *socialService) Load(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.following.Load(gctx) })
	g.Go(func() error { return s.followers.Load(gctx) })
	return g.Wait()
}

// ToggleFollow flips the follow flag optimistically in whichever list shows
// the user. Users in neither list are followed directly and the following
// list is refreshed.
func (s *socialService) ToggleFollow(ctx context.Context, userID int64) error {
	if _, ok := s.followers.Get(userID); ok {
		return s.followers.Toggle(ctx, userID, FieldFollow)
	}
	if _, ok := s.following.Get(userID); ok {
		return s.following.Toggle(ctx, userID, FieldFollow)
	}
	if _, ok := s.tokens.Token(ctx); !ok {
		return client.ErrUnauthenticated
	}
	following, err := s.client.ToggleFollow(ctx, userID)
	if err != nil {
		return err
	}
	s.logger.Info(ctx, "follow toggled", "user_id", userID, "following", following)
	if err := s.following.Load(ctx); err != nil {
		s.logger.Warn(ctx, "could not refresh following list", "error", err)
	}
	return nil
}

func (s *socialService) RemoveFollower(ctx context.Context, userID int64, confirm cache.Confirmer) (bool, error) {
	return s.followers.Remove(ctx, userID, confirm)
}

func (s *socialService) SearchUsers(ctx context.Context, query string) ([]models.UserSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, client.ValidationFailed("username", "is required")
	}
	users, err := s.client.SearchUsers(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return users, nil
}
