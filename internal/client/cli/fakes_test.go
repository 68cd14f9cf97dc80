package cli

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/dmara/internal/client/client"
	"github.com/dmitrijs2005/dmara/internal/client/config"
	"github.com/dmitrijs2005/dmara/internal/client/models"
	"github.com/dmitrijs2005/dmara/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/dmara/internal/client/search"
	"github.com/dmitrijs2005/dmara/internal/client/services"
	"github.com/dmitrijs2005/dmara/internal/client/session"
	"github.com/dmitrijs2005/dmara/internal/logging"

	_ "modernc.org/sqlite"
)

// fakeClient implements the parts of client.Client the commands reach.
// Anything else panics through the nil embedded interface.
type fakeClient struct {
	client.Client

	mu sync.Mutex

	identity *models.Identity
	pingErr  error

	posts   []models.Post
	likeErr error
	deleted []int64

	items   []models.Item
	created []models.ItemInput
	bulk    [][]models.ItemInput
	bulkErr error

	postsIn []models.PostInput

	hits      map[models.Code][]string
	searchErr error
}

func (f *fakeClient) Close() error { return nil }

func (f *fakeClient) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pingErr
}

func (f *fakeClient) setPingErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pingErr = err
}

func (f *fakeClient) CurrentUser(context.Context) (*models.Identity, error) {
	if f.identity == nil {
		return nil, client.ErrUnauthenticated
	}
	return f.identity, nil
}

func (f *fakeClient) ListPosts(context.Context, string) ([]models.Post, error) {
	return append([]models.Post(nil), f.posts...), nil
}

func (f *fakeClient) ToggleLike(context.Context, int64) (models.LikeState, error) {
	return models.LikeState{}, f.likeErr
}

func (f *fakeClient) CreatePost(_ context.Context, in models.PostInput) (models.Post, error) {
	f.postsIn = append(f.postsIn, in)
	return models.Post{ID: 900, Category: in.Category, Title: in.Title, Date: in.Date, Visibility: in.Visibility, IsOwner: true}, nil
}

func (f *fakeClient) DeletePost(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeClient) ListItems(context.Context) ([]models.Item, error) {
	return append([]models.Item(nil), f.items...), nil
}

func (f *fakeClient) CreateItem(_ context.Context, in models.ItemInput) (models.Item, error) {
	f.created = append(f.created, in)
	return models.Item{ID: int64(100 + len(f.created)), Category: in.Category, Title: in.Title, Subtitle: in.Subtitle}, nil
}

func (f *fakeClient) BulkUpdateItems(_ context.Context, in []models.ItemInput) error {
	f.bulk = append(f.bulk, in)
	if f.bulkErr != nil {
		return f.bulkErr
	}
	f.items = f.items[:0:0]
	for i, it := range in {
		f.items = append(f.items, models.Item{ID: int64(200 + i), Category: it.Category, Title: it.Title, Subtitle: it.Subtitle})
	}
	return nil
}

func (f *fakeClient) Following(context.Context) ([]models.UserSummary, error) { return nil, nil }
func (f *fakeClient) Followers(context.Context) ([]models.UserSummary, error) { return nil, nil }

func (f *fakeClient) Search(_ context.Context, code models.Code, _, _ string) ([]json.RawMessage, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	var out []json.RawMessage
	for _, h := range f.hits[code] {
		out = append(out, json.RawMessage(h))
	}
	return out, nil
}

func media(code models.Code, id int, name string) string {
	return fmt.Sprintf(`{"id":"%s_%d","name":%q,"type":%q}`, code, id, name, code)
}

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE metadata (key TEXT PRIMARY KEY, value BLOB NOT NULL);`)
	require.NoError(t, err)
	return db
}

var testNow = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

// newTestApp wires an App around c with input as the user's keystrokes.
// The session already holds a token.
func newTestApp(t *testing.T, c *fakeClient, input string) (*App, *bytes.Buffer) {
	t.Helper()
	cfg := config.Defaults()
	s := session.NewHolder(metadata.NewSQLiteRepository(setupDB(t)), nil)
	require.NoError(t, s.Establish(context.Background(), "tok", "mara"))

	out := &bytes.Buffer{}
	a := &App{
		cfg:       &cfg,
		logger:    logging.Nop(),
		in:        bufio.NewReader(strings.NewReader(input)),
		out:       out,
		now:       func() time.Time { return testNow },
		session:   s,
		catalogue: cfg.Catalogue(),
	}
	a.auth = services.NewAuthService(c, s, nil, nil)
	a.profile = services.NewProfileService(c)
	a.posts = services.NewPostService(c, s, nil)
	a.items = services.NewItemService(c, s, a.catalogue, nil)
	a.social = services.NewSocialService(c, s, nil)
	a.notes = services.NewNotificationService(c, s, nil)
	a.picker = &linePicker{
		pickerBase: pickerBase{fetcher: c, catalogue: a.catalogue, opts: []search.Option{search.WithDelay(0)}},
		in:         a.in,
		out:        out,
	}
	a.watchNotices()
	return a, out
}

type fakeTimer struct {
	s       *fakeScheduler
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	was := !t.stopped && !t.fired
	t.stopped = true
	return was
}

type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(_ time.Duration, f func()) search.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{s: s, f: f}
	s.timers = append(s.timers, t)
	return t
}

// Fire runs every pending callback on the calling goroutine.
func (s *fakeScheduler) Fire() {
	s.mu.Lock()
	var due []func()
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			due = append(due, t.f)
		}
	}
	s.mu.Unlock()
	for _, f := range due {
		f()
	}
}
