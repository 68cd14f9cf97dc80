package services

import (
	"context"

	"github.com/dmitrijs2005/dmara/internal/client/cache"
	"github.com/dmitrijs2005/dmara/internal/client/client"
	"github.com/dmitrijs2005/dmara/internal/client/models"
	"github.com/dmitrijs2005/dmara/internal/client/session"
	"github.com/dmitrijs2005/dmara/internal/logging"
)

const FieldRead = "read"

type NotificationCache = cache.Cache[models.Notification, struct{}]

type NotificationService interface {
	Cache() *NotificationCache
	Load(ctx context.Context) error
	MarkRead(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context) error
	Unread() int
}

type notificationEndpoint struct {
	client client.Client
}

func (e notificationEndpoint) List(ctx context.Context) ([]models.Notification, error) {
	return e.client.Notifications(ctx)
}

func (e notificationEndpoint) Create(context.Context, struct{}) (models.Notification, error) {
	return models.Notification{}, cache.ErrUnsupported
}

func (e notificationEndpoint) Update(context.Context, int64, struct{}) (models.Notification, error) {
	return models.Notification{}, cache.ErrUnsupported
}

func (e notificationEndpoint) Delete(context.Context, int64) error { return cache.ErrUnsupported }

func (e notificationEndpoint) Toggle(ctx context.Context, id int64, field string) error {
	if field != FieldRead {
		return cache.ErrUnsupported
	}
	return e.client.MarkRead(ctx, id)
}

type notificationService struct {
	client client.Client
	cache  *NotificationCache
}

func NewNotificationService(c client.Client, tokens session.TokenSource, logger logging.Logger) NotificationService {
	if logger == nil {
		logger = logging.Nop()
	}
	schema := cache.Schema[models.Notification, struct{}]{
		ID: func(n models.Notification) int64 { return n.ID },
		Toggles: map[string]cache.Toggle[models.Notification]{
			FieldRead: {Flag: func(n *models.Notification) *bool { return &n.IsRead }},
		},
	}
	return &notificationService{
		client: c,
		cache:  cache.New[models.Notification, struct{}]("notification", notificationEndpoint{client: c}, schema, tokens, cache.WithLogger(logger)),
	}
}

func (s *notificationService) Cache() *NotificationCache { return s.cache }

func (s *notificationService) Load(ctx context.Context) error { return s.cache.Load(ctx) }

// MarkRead is a no-op for notifications already read; the backend cannot
// mark them unread again.
func (s *notificationService) MarkRead(ctx context.Context, id int64) error {
	return s.cache.Set(ctx, id, FieldRead, true)
}

func (s *notificationService) MarkAllRead(ctx context.Context) error {
	if err := s.client.MarkRead(ctx, 0); err != nil {
		return err
	}
	return s.cache.Load(ctx)
}

func (s *notificationService) Unread() int {
	n := 0
	for _, it := range s.cache.Snapshot() {
		if !it.IsRead {
			n++
		}
	}
	return n
}
