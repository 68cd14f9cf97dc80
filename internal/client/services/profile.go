package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/dmara/internal/client/client"
	"github.com/dmitrijs2005/dmara/internal/client/models"
)

type ProfileService interface {
	Get(ctx context.Context) (*models.Profile, error)
	Update(ctx context.Context, in models.ProfileInput) (*models.Profile, error)
	// ImageURL returns the address the profile image should be loaded from.
	ImageURL(p *models.Profile) string
}

type profileService struct {
	client client.Client
}

func NewProfileService(c client.Client) ProfileService {
	return &profileService{client: c}
}

func (s *profileService) Get(ctx context.Context) (*models.Profile, error) {
	return s.client.GetProfile(ctx)
}

func (s *profileService) Update(ctx context.Context, in models.ProfileInput) (*models.Profile, error) {
	if in.Nickname != nil && strings.TrimSpace(*in.Nickname) == "" {
		return nil, client.ValidationFailed("nickname", "must not be blank")
	}
	if in.Nickname == nil && in.Bio == nil && in.ImagePath == "" {
		return nil, client.ValidationFailed("profile", "nothing to change")
	}
	return s.client.UpdateProfile(ctx, in)
}

func (s *profileService) ImageURL(p *models.Profile) string {
	if p == nil || p.ProfileImage == "" {
		return ""
	}
	return s.client.ProxiedURL(p.ProfileImage)
}
