package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/dmara/internal/client/client"
	"github.com/dmitrijs2005/dmara/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func socialClient() *fakeClient {
	return &fakeClient{
		FollowingRet: []models.UserSummary{{ID: 1, Username: "ann", IsFollowing: true}},
		FollowersRet: []models.UserSummary{
			{ID: 1, Username: "ann", IsFollowing: true},
			{ID: 2, Username: "bob"},
		},
	}
}

func TestSocialService_LoadsBothLists(t *testing.T) {
	fc := socialClient()
	svc := NewSocialService(fc, newSession(t, "tok"), nil)

	require.NoError(t, svc.Load(context.Background()))
	assert.Len(t, svc.Following().Snapshot(), 1)
	assert.Len(t, svc.Followers().Snapshot(), 2)
}

func TestSocialService_ToggleFollowFlipsFlag(t *testing.T) {
	fc := socialClient()
	svc := NewSocialService(fc, newSession(t, "tok"), nil)
	ctx := context.Background()
	require.NoError(t, svc.Load(ctx))

	require.NoError(t, svc.ToggleFollow(ctx, 2))
	u, _ := svc.Followers().Get(2)
	assert.True(t, u.IsFollowing)
	assert.Equal(t, []int64{2}, fc.Followed)
}

func TestSocialService_ToggleFollowRollsBack(t *testing.T) {
	fc := socialClient()
	fc.FollowErr = client.ErrNetworkFailure
	svc := NewSocialService(fc, newSession(t, "tok"), nil)
	ctx := context.Background()
	require.NoError(t, svc.Load(ctx))

	assert.ErrorIs(t, svc.ToggleFollow(ctx, 1), client.ErrNetworkFailure)
	u, _ := svc.Followers().Get(1)
	assert.True(t, u.IsFollowing)
}

func TestSocialService_ToggleFollowUnknownUserRefreshes(t *testing.T) {
	fc := socialClient()
	svc := NewSocialService(fc, newSession(t, "tok"), nil)
	ctx := context.Background()

	require.NoError(t, svc.ToggleFollow(ctx, 9))
	assert.Equal(t, []int64{9}, fc.Followed)
	assert.True(t, svc.Following().Loaded())
}

func TestSocialService_UnauthenticatedMakesNoCall(t *testing.T) {
	fc := socialClient()
	svc := NewSocialService(fc, newSession(t, ""), nil)

	assert.ErrorIs(t, svc.ToggleFollow(context.Background(), 9), client.ErrUnauthenticated)
	assert.Zero(t, fc.Calls)
}

func TestSocialService_RemoveFollower(t *testing.T) {
	fc := socialClient()
	svc := NewSocialService(fc, newSession(t, "tok"), nil)
	ctx := context.Background()
	require.NoError(t, svc.Load(ctx))

	ok, err := svc.RemoveFollower(ctx, 2, yes{})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []int64{2}, fc.Removed)
	assert.Len(t, svc.Followers().Snapshot(), 1)
}

func TestSocialService_SearchUsers(t *testing.T) {
	fc := socialClient()
	fc.UsersRet = []models.UserSummary{{ID: 3, Username: "cat"}}
	svc := NewSocialService(fc, newSession(t, "tok"), nil)

	_, err := svc.SearchUsers(context.Background(), " ")
	assert.ErrorIs(t, err, client.ErrValidationFailed)

	users, err := svc.SearchUsers(context.Background(), "ca")
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
