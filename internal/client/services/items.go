package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/dmara/internal/client/cache"
	"github.com/dmitrijs2005/dmara/internal/client/client"
	"github.com/dmitrijs2005/dmara/internal/client/models"
	"github.com/dmitrijs2005/dmara/internal/client/search"
	"github.com/dmitrijs2005/dmara/internal/client/session"
	"github.com/dmitrijs2005/dmara/internal/logging"
)

type ItemCache = cache.Cache[models.Item, models.ItemInput]

// ItemGroup is one UI category of the favourites list.
type ItemGroup struct {
	Category models.Category
	Items    []models.Item
}

type ItemService interface {
	Cache() *ItemCache
	Load(ctx context.Context) error
	// Groups lists non-empty categories in display order.
	Groups() []ItemGroup
	Add(ctx context.Context, in models.ItemInput) (models.Item, error)
	AddResult(ctx context.Context, r search.Result) (models.Item, error)
	Remove(ctx context.Context, id int64, confirm cache.Confirmer) (bool, error)
	// Move puts item id at position pos (0-based) and saves the new order.
	// If the save fails the previous order is restored.
	Move(ctx context.Context, id int64, pos int) error
	// SaveAll replaces the server list with the local one, in order.
	SaveAll(ctx context.Context) error
	// Owned reports search results the user already has as items.
	Owned() func(search.Result) bool
}

type itemEndpoint struct {
	client client.Client
}

func (e itemEndpoint) List(ctx context.Context) ([]models.Item, error) {
	return e.client.ListItems(ctx)
}

func (e itemEndpoint) Create(ctx context.Context, in models.ItemInput) (models.Item, error) {
	return e.client.CreateItem(ctx, in)
}

func (e itemEndpoint) Update(context.Context, int64, models.ItemInput) (models.Item, error) {
	return models.Item{}, cache.ErrUnsupported
}

func (e itemEndpoint) Delete(ctx context.Context, id int64) error {
	return e.client.DeleteItem(ctx, id)
}

func (e itemEndpoint) Toggle(context.Context, int64, string) error {
	return cache.ErrUnsupported
}

func validateItem(in models.ItemInput) error {
	if in.Category == "" {
		return client.ValidationFailed("category", "is required")
	}
	if strings.TrimSpace(in.Title) == "" {
		return client.ValidationFailed("title", "is required")
	}
	return nil
}

type itemService struct {
	client    client.Client
	catalogue models.Catalogue
	cache     *ItemCache
	logger    logging.Logger

	mu     sync.RWMutex
	groups []ItemGroup
}

func NewItemService(c client.Client, tokens session.TokenSource, catalogue models.Catalogue, logger logging.Logger) ItemService {
	if logger == nil {
		logger = logging.Nop()
	}
	schema := cache.Schema[models.Item, models.ItemInput]{
		ID:       func(it models.Item) int64 { return it.ID },
		Validate: validateItem,
	}
	s := &itemService{
		client:    c,
		catalogue: catalogue,
		cache:     cache.New[models.Item, models.ItemInput]("item", itemEndpoint{client: c}, schema, tokens, cache.WithLogger(logger)),
		logger:    logger,
	}
	s.cache.OnChange(s.regroup)
	return s
}

func (s *itemService) Cache() *ItemCache { return s.cache }

func (s *itemService) Load(ctx context.Context) error { return s.cache.Load(ctx) }

func (s *itemService) Groups() []ItemGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ItemGroup, len(s.groups))
	copy(out, s.groups)
	return out
}

// regroup rebuilds the per-category view from a fresh copy of the list.
func (s *itemService) regroup(items []models.Item) {
	by := make(map[models.Category][]models.Item)
	for _, it := range items {
		cat, ok := s.catalogue.CategoryOf(it.Category)
		if !ok {
			s.logger.Debug(context.Background(), "item with unknown category", "id", it.ID, "category", it.Category)
			continue
		}
		by[cat] = append(by[cat], it)
	}
	var groups []ItemGroup
	for _, cat := range models.Categories {
		if len(by[cat]) > 0 {
			groups = append(groups, ItemGroup{Category: cat, Items: by[cat]})
		}
	}

	s.mu.Lock()
	s.groups = groups
	s.mu.Unlock()
}

func (s *itemService) Add(ctx context.Context, in models.ItemInput) (models.Item, error) {
	return s.cache.Create(ctx, in)
}

func (s *itemService) AddResult(ctx context.Context, r search.Result) (models.Item, error) {
	return s.cache.Create(ctx, search.ToItem(r, s.catalogue))
}

func (s *itemService) Remove(ctx context.Context, id int64, confirm cache.Confirmer) (bool, error) {
	return s.cache.Remove(ctx, id, confirm)
}

func (s *itemService) Move(ctx context.Context, id int64, pos int) error {
	items := s.cache.Snapshot()
	from := -1
	ids := make([]int64, 0, len(items))
	for i, it := range items {
		if it.ID == id {
			from = i
			continue
		}
		ids = append(ids, it.ID)
	}
	if from < 0 {
		return fmt.Errorf("item #%d: %w", id, client.ErrNotFound)
	}
	if pos < 0 || pos >= len(items) {
		return client.ValidationFailed("position", fmt.Sprintf("must be between 1 and %d", len(items)))
	}
	ids = append(ids[:pos], append([]int64{id}, ids[pos:]...)...)
	if err := s.cache.Reorder(ctx, ids, s.persist); err != nil {
		return err
	}
	return s.reload(ctx)
}

// payload maps the local list to bulk_update entries. Talent items carry
// their subtype only in the subtitle, so their code is derived from it.
func (s *itemService) payload(items []models.Item) []models.ItemInput {
	out := make([]models.ItemInput, 0, len(items))
	for _, it := range items {
		code := it.Category
		if cat, ok := s.catalogue.CategoryOf(code); ok && cat == models.Talent {
			code = s.catalogue.ItemCode(models.Talent, it.Subtitle)
		}
		out = append(out, models.ItemInput{
			Category: code,
			Title:    it.Title,
			Subtitle: it.Subtitle,
			ImageURL: it.ImageURL,
		})
	}
	return out
}

func (s *itemService) persist(ctx context.Context, items []models.Item) error {
	if err := s.client.BulkUpdateItems(ctx, s.payload(items)); err != nil {
		return fmt.Errorf("save items: %w", err)
	}
	return nil
}

// reload picks up the ids bulk_update assigned; it recreates the rows.
func (s *itemService) reload(ctx context.Context) error {
	if err := s.cache.Load(ctx); err != nil {
		return fmt.Errorf("items saved, refresh failed: %w", err)
	}
	return nil
}

func (s *itemService) SaveAll(ctx context.Context) error {
	if err := s.persist(ctx, s.cache.Snapshot()); err != nil {
		return err
	}
	return s.reload(ctx)
}

func (s *itemService) Owned() func(search.Result) bool {
	return search.OwnedItems(s.cache.Snapshot(), s.catalogue)
}
