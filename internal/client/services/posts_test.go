package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/dmara/internal/client/client"
	"github.com/dmitrijs2005/dmara/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePosts() []models.Post {
	return []models.Post{
		{ID: 1, Title: "mine may 3", Date: "2025-05-03", IsOwner: true, LikesCount: 10, IsLiked: true},
		{ID: 2, Title: "mine may 3 again", Date: "2025-05-03", IsOwner: true},
		{ID: 3, Title: "mine june", Date: "2025-06-01", IsOwner: true},
		{ID: 4, Title: "friend may", Date: "2025-05-03"},
		{ID: 5, Title: "broken date", Date: "soon", IsOwner: true},
	}
}

func TestPostService_LoadMode(t *testing.T) {
	fc := &fakeClient{Posts: samplePosts()}
	svc := NewPostService(fc, newSession(t, "tok"), nil)
	ctx := context.Background()

	require.NoError(t, svc.Load(ctx, PostsMine))
	assert.Equal(t, PostsMine, fc.LastMode)

	require.NoError(t, svc.Load(ctx, "bogus"))
	assert.Equal(t, PostsAll, fc.LastMode)
	assert.Len(t, svc.Cache().Snapshot(), 5)
}

func TestPostService_LikeRollsBack(t *testing.T) {
	fc := &fakeClient{Posts: samplePosts(), LikeErr: client.ErrNetworkFailure}
	svc := NewPostService(fc, newSession(t, "tok"), nil)
	ctx := context.Background()
	require.NoError(t, svc.Load(ctx, PostsAll))

	err := svc.Like(ctx, 1)
	require.ErrorIs(t, err, client.ErrNetworkFailure)

	p, ok := svc.Cache().Get(1)
	require.True(t, ok)
	assert.True(t, p.IsLiked)
	assert.Equal(t, 10, p.LikesCount)
}

func TestPostService_LikeUnauthenticatedMakesNoCall(t *testing.T) {
	fc := &fakeClient{}
	svc := NewPostService(fc, newSession(t, ""), nil)

	err := svc.Like(context.Background(), 1)
	assert.ErrorIs(t, err, client.ErrUnauthenticated)
	assert.Zero(t, fc.Calls)
}

func TestPostService_CreateDefaultsAndValidates(t *testing.T) {
	fc := &fakeClient{CreatedOut: models.Post{ID: 99, IsOwner: true}}
	svc := NewPostService(fc, newSession(t, "tok"), nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, models.PostInput{Category: models.CodeMovie, Title: "x", Date: "05/03/2025", Content: "ok"})
	var ve *client.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "date", ve.Field)
	assert.Zero(t, fc.Calls)

	p, err := svc.Create(ctx, models.PostInput{Category: models.CodeMovie, Title: "Her", Date: "2025-05-03", Content: "Lovely"})
	require.NoError(t, err)
	assert.Equal(t, models.VisibilityPublic, p.Visibility)
	assert.Equal(t, int64(99), svc.Cache().Snapshot()[0].ID)
}

func TestPostService_CreateWithBlankCommentMakesNoCall(t *testing.T) {
	fc := &fakeClient{CreatedOut: models.Post{ID: 99}}
	svc := NewPostService(fc, newSession(t, "tok"), nil)

	_, err := svc.Create(context.Background(), models.PostInput{Category: models.CodeMovie, Title: "Her", Date: "2025-05-03", Content: "   "})
	var ve *client.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "content", ve.Field)
	assert.Zero(t, fc.Calls)
	assert.Empty(t, svc.Cache().Snapshot())
}

func TestValidatePost(t *testing.T) {
	ok := models.PostInput{Category: models.CodeShow, Title: "Cats", Date: "2025-01-02", Content: "Fun", Visibility: models.VisibilityFriends}
	require.NoError(t, ValidatePost(ok))

	tests := []struct {
		field string
		mod   func(*models.PostInput)
	}{
		{"category", func(p *models.PostInput) { p.Category = "" }},
		{"title", func(p *models.PostInput) { p.Title = "   " }},
		{"date", func(p *models.PostInput) { p.Date = "" }},
		{"content", func(p *models.PostInput) { p.Content = " \n " }},
		{"visibility", func(p *models.PostInput) { p.Visibility = "SECRET" }},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			in := ok
			tt.mod(&in)
			var ve *client.ValidationError
			require.ErrorAs(t, ValidatePost(in), &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestPostService_CalendarAndDay(t *testing.T) {
	fc := &fakeClient{Posts: samplePosts()}
	svc := NewPostService(fc, newSession(t, "tok"), nil)
	require.NoError(t, svc.Load(context.Background(), PostsAll))

	cal := svc.Calendar(time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC))
	require.Len(t, cal, 1)
	assert.Len(t, cal[3], 2)

	day := svc.Day(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	require.Len(t, day, 1)
	assert.Equal(t, int64(3), day[0].ID)
}

func TestPostService_GetFallsBackToServer(t *testing.T) {
	fc := &fakeClient{Posts: samplePosts()}
	svc := NewPostService(fc, newSession(t, "tok"), nil)
	ctx := context.Background()
	require.NoError(t, svc.Load(ctx, PostsAll))

	p, err := svc.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "mine may 3 again", p.Title)

	p, err = svc.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "remote", p.Title)
}

func TestPostService_DeleteNeedsConfirmation(t *testing.T) {
	fc := &fakeClient{Posts: samplePosts()}
	svc := NewPostService(fc, newSession(t, "tok"), nil)
	ctx := context.Background()
	require.NoError(t, svc.Load(ctx, PostsAll))

	removed, err := svc.Delete(ctx, 4, yes{})
	require.NoError(t, err)
	assert.True(t, removed)
	_, ok := svc.Cache().Get(4)
	assert.False(t, ok)
}
