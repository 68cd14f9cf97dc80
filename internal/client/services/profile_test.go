package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/dmara/internal/client/client"
	"github.com/dmitrijs2005/dmara/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileService_UpdateValidates(t *testing.T) {
	fc := &fakeClient{ProfileRet: &models.Profile{Nickname: "m"}}
	svc := NewProfileService(fc)
	ctx := context.Background()

	blank := "  "
	_, err := svc.Update(ctx, models.ProfileInput{Nickname: &blank})
	assert.ErrorIs(t, err, client.ErrValidationFailed)

	_, err = svc.Update(ctx, models.ProfileInput{})
	assert.ErrorIs(t, err, client.ErrValidationFailed)
	assert.Zero(t, fc.Calls)

	bio := "hello"
	p, err := svc.Update(ctx, models.ProfileInput{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "m", p.Nickname)
	require.NotNil(t, fc.LastProfileIn)
	assert.Equal(t, "hello", *fc.LastProfileIn.Bio)
}

func TestProfileService_ImageURL(t *testing.T) {
	svc := NewProfileService(&fakeClient{})
	assert.Empty(t, svc.ImageURL(nil))
	assert.Empty(t, svc.ImageURL(&models.Profile{}))
	assert.Equal(t, "proxied:https://cdn/x.png", svc.ImageURL(&models.Profile{ProfileImage: "https://cdn/x.png"}))
}
