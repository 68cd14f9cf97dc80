package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/dmara/internal/client/cache"
	"github.com/dmitrijs2005/dmara/internal/client/client"
	"github.com/dmitrijs2005/dmara/internal/client/models"
	"github.com/dmitrijs2005/dmara/internal/client/session"
	"github.com/dmitrijs2005/dmara/internal/logging"
)

const (
	PostsMine = "my"
	PostsAll  = "all"

	FieldLike = "like"
)

type PostCache = cache.Cache[models.Post, models.PostInput]

type PostService interface {
	Cache() *PostCache
	Load(ctx context.Context, mode string) error
	Get(ctx context.Context, id int64) (models.Post, error)
	Like(ctx context.Context, id int64) error
	Create(ctx context.Context, in models.PostInput) (models.Post, error)
	Update(ctx context.Context, id int64, in models.PostInput) (models.Post, error)
	Delete(ctx context.Context, id int64, confirm cache.Confirmer) (bool, error)
	// Calendar groups the caller's own cached posts of month by day of month.
	Calendar(month time.Time) map[int][]models.Post
	// Day lists the caller's own cached posts dated day.
	Day(day time.Time) []models.Post
}

type postEndpoint struct {
	client client.Client

	mu   sync.Mutex
	mode string
}

func (e *postEndpoint) setMode(m string) {
	e.mu.Lock()
	e.mode = m
	e.mu.Unlock()
}

func (e *postEndpoint) List(ctx context.Context) ([]models.Post, error) {
	e.mu.Lock()
	mode := e.mode
	e.mu.Unlock()
	return e.client.ListPosts(ctx, mode)
}

func (e *postEndpoint) Create(ctx context.Context, in models.PostInput) (models.Post, error) {
	return e.client.CreatePost(ctx, in)
}

func (e *postEndpoint) Update(ctx context.Context, id int64, in models.PostInput) (models.Post, error) {
	return e.client.UpdatePost(ctx, id, in)
}

func (e *postEndpoint) Delete(ctx context.Context, id int64) error {
	return e.client.DeletePost(ctx, id)
}

func (e *postEndpoint) Toggle(ctx context.Context, id int64, field string) error {
	if field != FieldLike {
		return cache.ErrUnsupported
	}
	_, err := e.client.ToggleLike(ctx, id)
	return err
}

// ValidatePost checks a post payload before it is sent.
func ValidatePost(in models.PostInput) error {
	if in.Category == "" {
		return client.ValidationFailed("category", "is required")
	}
	if strings.TrimSpace(in.Title) == "" {
		return client.ValidationFailed("title", "is required")
	}
	if _, err := time.Parse(models.DateLayout, in.Date); err != nil {
		return client.ValidationFailed("date", "must be YYYY-MM-DD")
	}
	if strings.TrimSpace(in.Content) == "" {
		return client.ValidationFailed("content", "is required")
	}
	switch in.Visibility {
	case models.VisibilityPublic, models.VisibilityFriends, models.VisibilityPrivate:
	default:
		return client.ValidationFailed("visibility", "must be PUBLIC, FRIENDS or PRIVATE")
	}
	return nil
}

var postSchema = cache.Schema[models.Post, models.PostInput]{
	ID: func(p models.Post) int64 { return p.ID },
	Toggles: map[string]cache.Toggle[models.Post]{
		FieldLike: {
			Flag:  func(p *models.Post) *bool { return &p.IsLiked },
			Count: func(p *models.Post) *int { return &p.LikesCount },
		},
	},
	Validate: ValidatePost,
}

type postService struct {
	client client.Client
	ep     *postEndpoint
	cache  *PostCache
}

func NewPostService(c client.Client, tokens session.TokenSource, logger logging.Logger) PostService {
	if logger == nil {
		logger = logging.Nop()
	}
	ep := &postEndpoint{client: c, mode: PostsAll}
	return &postService{
		client: c,
		ep:     ep,
		cache:  cache.New[models.Post, models.PostInput]("post", ep, postSchema, tokens, cache.WithLogger(logger)),
	}
}

func (s *postService) Cache() *PostCache { return s.cache }

func (s *postService) Load(ctx context.Context, mode string) error {
	if mode != PostsMine {
		mode = PostsAll
	}
	s.ep.setMode(mode)
	return s.cache.Load(ctx)
}

// Get prefers the cached copy and falls back to the backend.
func (s *postService) Get(ctx context.Context, id int64) (models.Post, error) {
	if p, ok := s.cache.Get(id); ok {
		return p, nil
	}
	return s.client.GetPost(ctx, id)
}

func (s *postService) Like(ctx context.Context, id int64) error {
	return s.cache.Toggle(ctx, id, FieldLike)
}

func (s *postService) Create(ctx context.Context, in models.PostInput) (models.Post, error) {
	if in.Visibility == "" {
		in.Visibility = models.VisibilityPublic
	}
	return s.cache.Create(ctx, in)
}

func (s *postService) Update(ctx context.Context, id int64, in models.PostInput) (models.Post, error) {
	if in.Visibility == "" {
		in.Visibility = models.VisibilityPublic
	}
	return s.cache.Update(ctx, id, in)
}

func (s *postService) Delete(ctx context.Context, id int64, confirm cache.Confirmer) (bool, error) {
	return s.cache.Remove(ctx, id, confirm)
}

func (s *postService) owned(keep func(time.Time) bool) []models.Post {
	var out []models.Post
	for _, p := range s.cache.Snapshot() {
		if !p.IsOwner {
			continue
		}
		d := p.Day()
		if d.IsZero() || !keep(d) {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func (s *postService) Calendar(month time.Time) map[int][]models.Post {
	y, m, _ := month.Date()
	days := make(map[int][]models.Post)
	for _, p := range s.owned(func(d time.Time) bool {
		dy, dm, _ := d.Date()
		return dy == y && dm == m
	}) {
		days[p.Day().Day()] = append(days[p.Day().Day()], p)
	}
	return days
}

func (s *postService) Day(day time.Time) []models.Post {
	want := day.Format(models.DateLayout)
	return s.owned(func(d time.Time) bool { return d.Format(models.DateLayout) == want })
}
