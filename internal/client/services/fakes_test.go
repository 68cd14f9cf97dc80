package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"testing"

	"github.com/dmitrijs2005/dmara/internal/client/models"
	"github.com/dmitrijs2005/dmara/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/dmara/internal/client/session"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// ---- helpers ----

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

func newSession(t *testing.T, token string) *session.Holder {
	t.Helper()
	h := session.NewHolder(metadata.NewSQLiteRepository(setupDB(t)), nil)
	if token != "" {
		require.NoError(t, h.SetToken(context.Background(), token))
	}
	return h
}

type yes struct{}

func (yes) Confirm(context.Context, string) bool { return true }

// ---- fake client ----

// fakeClient implements client.Client. Unset results are zero values.
type fakeClient struct {
	mu sync.Mutex

	CloseErr error
	PingErr  error

	GoogleLoginRet string
	GoogleLoginErr error
	LastGoogleTok  string

	CurrentUserRet *models.Identity
	CurrentUserErr error

	ProfileRet    *models.Profile
	ProfileErr    error
	LastProfileIn *models.ProfileInput

	Items       []models.Item
	ItemsErr    error
	CreatedItem models.Item
	BulkIn      [][]models.ItemInput
	BulkErr     error
	DeletedIDs  []int64

	Posts      []models.Post
	LastMode   string
	LikeErr    error
	CreatedOut models.Post

	FollowingRet []models.UserSummary
	FollowersRet []models.UserSummary
	FollowErr    error
	Followed     []int64
	Removed      []int64
	UsersRet     []models.UserSummary

	NotificationsRet []models.Notification
	ReadIDs          []int64
	MarkReadErr      error

	Calls int
}

func (f *fakeClient) hit() {
	f.mu.Lock()
	f.Calls++
	f.mu.Unlock()
}

func (f *fakeClient) Close() error { return f.CloseErr }

func (f *fakeClient) Ping(ctx context.Context) error {
	f.hit()
	return f.PingErr
}

func (f *fakeClient) GoogleLogin(ctx context.Context, tok string) (string, error) {
	f.hit()
	f.LastGoogleTok = tok
	return f.GoogleLoginRet, f.GoogleLoginErr
}

func (f *fakeClient) CurrentUser(ctx context.Context) (*models.Identity, error) {
	f.hit()
	return f.CurrentUserRet, f.CurrentUserErr
}

func (f *fakeClient) GetProfile(ctx context.Context) (*models.Profile, error) {
	f.hit()
	return f.ProfileRet, f.ProfileErr
}

func (f *fakeClient) UpdateProfile(ctx context.Context, in models.ProfileInput) (*models.Profile, error) {
	f.hit()
	f.LastProfileIn = &in
	return f.ProfileRet, f.ProfileErr
}

func (f *fakeClient) ListItems(ctx context.Context) ([]models.Item, error) {
	f.hit()
	return append([]models.Item(nil), f.Items...), f.ItemsErr
}

func (f *fakeClient) CreateItem(ctx context.Context, in models.ItemInput) (models.Item, error) {
	f.hit()
	it := f.CreatedItem
	it.Category, it.Title, it.Subtitle, it.ImageURL = in.Category, in.Title, in.Subtitle, in.ImageURL
	return it, nil
}

func (f *fakeClient) DeleteItem(ctx context.Context, id int64) error {
	f.hit()
	f.DeletedIDs = append(f.DeletedIDs, id)
	return nil
}

// BulkUpdateItems recreates the rows like the server does, so ids change.
func (f *fakeClient) BulkUpdateItems(ctx context.Context, items []models.ItemInput) error {
	f.hit()
	f.BulkIn = append(f.BulkIn, items)
	if f.BulkErr != nil {
		return f.BulkErr
	}
	f.Items = f.Items[:0:0]
	for i, in := range items {
		f.Items = append(f.Items, models.Item{
			ID: int64(200 + len(f.BulkIn)*10 + i), Category: in.Category,
			Title: in.Title, Subtitle: in.Subtitle, ImageURL: in.ImageURL,
		})
	}
	return nil
}

func (f *fakeClient) Search(ctx context.Context, code models.Code, query, date string) ([]json.RawMessage, error) {
	f.hit()
	return nil, nil
}

func (f *fakeClient) ListPosts(ctx context.Context, mode string) ([]models.Post, error) {
	f.hit()
	f.mu.Lock()
	f.LastMode = mode
	f.mu.Unlock()
	return append([]models.Post(nil), f.Posts...), nil
}

func (f *fakeClient) GetPost(ctx context.Context, id int64) (models.Post, error) {
	f.hit()
	return models.Post{ID: id, Title: "remote"}, nil
}

func (f *fakeClient) CreatePost(ctx context.Context, in models.PostInput) (models.Post, error) {
	f.hit()
	p := f.CreatedOut
	p.Title, p.Date, p.Category, p.Visibility = in.Title, in.Date, in.Category, in.Visibility
	return p, nil
}

func (f *fakeClient) UpdatePost(ctx context.Context, id int64, in models.PostInput) (models.Post, error) {
	f.hit()
	return models.Post{ID: id, Title: in.Title, Date: in.Date}, nil
}

func (f *fakeClient) DeletePost(ctx context.Context, id int64) error {
	f.hit()
	return nil
}

func (f *fakeClient) ToggleLike(ctx context.Context, id int64) (models.LikeState, error) {
	f.hit()
	return models.LikeState{}, f.LikeErr
}

func (f *fakeClient) Following(ctx context.Context) ([]models.UserSummary, error) {
	f.hit()
	return append([]models.UserSummary(nil), f.FollowingRet...), nil
}

func (f *fakeClient) Followers(ctx context.Context) ([]models.UserSummary, error) {
	f.hit()
	return append([]models.UserSummary(nil), f.FollowersRet...), nil
}

func (f *fakeClient) RemoveFollower(ctx context.Context, userID int64) error {
	f.hit()
	f.Removed = append(f.Removed, userID)
	return nil
}

func (f *fakeClient) SearchUsers(ctx context.Context, username string) ([]models.UserSummary, error) {
	f.hit()
	return f.UsersRet, nil
}

func (f *fakeClient) ToggleFollow(ctx context.Context, userID int64) (bool, error) {
	f.hit()
	f.Followed = append(f.Followed, userID)
	return f.FollowErr == nil, f.FollowErr
}

func (f *fakeClient) Notifications(ctx context.Context) ([]models.Notification, error) {
	f.hit()
	return append([]models.Notification(nil), f.NotificationsRet...), nil
}

func (f *fakeClient) MarkRead(ctx context.Context, id int64) error {
	f.hit()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ReadIDs = append(f.ReadIDs, id)
	return f.MarkReadErr
}

func (f *fakeClient) ProxiedURL(raw string) string { return "proxied:" + raw }

func (f *fakeClient) FetchImage(ctx context.Context, raw string) ([]byte, string, error) {
	return nil, "", nil
}
