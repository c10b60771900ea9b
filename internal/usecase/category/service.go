// Package category implements cache-aside reads for catalog categories,
// including the derived popularity aggregate.
package category

import (
	"context"
	"fmt"

	"github.com/cinedex-cloud/cinedex/internal/cachekey"
	"github.com/cinedex-cloud/cinedex/internal/domain"
	domcat "github.com/cinedex-cloud/cinedex/internal/domain/category"
	"github.com/cinedex-cloud/cinedex/internal/domain/search"
	"github.com/cinedex-cloud/cinedex/internal/query"
	"github.com/cinedex-cloud/cinedex/internal/usecase/cacheaside"
)

// prefix namespaces every category cache key.
const prefix = "category"

// Service answers category queries through the cache-aside read path.
type Service struct {
	repo       Repository
	workCounts WorkCounter
	entities   EntityCache
	lists      ListCache
	counts     CountCache
}

// New creates a category service.
func New(repo Repository, workCounts WorkCounter, entities EntityCache, lists ListCache, counts CountCache) *Service {
	return &Service{
		repo:       repo,
		workCounts: workCounts,
		entities:   entities,
		lists:      lists,
		counts:     counts,
	}
}

// GetByID returns one category. Absence surfaces as domain.ErrNotFound and
// is never cached.
func (s *Service) GetByID(ctx context.Context, id string) (domcat.Category, error) {
	key := cachekey.New(prefix, "get", cachekey.String("id", id))

	cached, err := s.entities.Get(ctx, key)
	switch {
	case err != nil:
		cacheaside.Degrade(ctx, prefix, err)
	case cached != nil:
		cacheaside.Hit(prefix)
		return *cached, nil
	default:
		cacheaside.Miss(prefix)
	}

	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return domcat.Category{}, fmt.Errorf("get category %s: %w", id, err)
	}

	if err := s.entities.Set(ctx, key, c); err != nil {
		cacheaside.PopulateFailed(ctx, prefix, key, err)
	}
	return c, nil
}

// List returns a page of categories, optionally narrowed by a name query.
func (s *Service) List(ctx context.Context, p search.Params) ([]domcat.Category, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrMalformedQuery, err)
	}

	key := cachekey.New(prefix, "list",
		cachekey.String("query", p.Query),
		cachekey.String("sort", p.Sort),
		cachekey.Int("page", p.Page),
		cachekey.Int("size", p.Size),
	)

	cached, err := s.lists.GetList(ctx, key)
	switch {
	case err != nil:
		cacheaside.Degrade(ctx, prefix, err)
	case cached != nil:
		cacheaside.Hit(prefix)
		return cached, nil
	default:
		cacheaside.Miss(prefix)
	}

	items, err := s.repo.Search(ctx, query.Categories(p))
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	if err := s.lists.SetList(ctx, key, items); err != nil {
		cacheaside.PopulateFailed(ctx, prefix, key, err)
	}
	return items, nil
}

// Popularity returns the number of works referencing the category. The
// aggregate is cached as an opaque scalar under its own key and TTL,
// independent of the category entity entry.
func (s *Service) Popularity(ctx context.Context, id string) (int64, error) {
	key := cachekey.New(prefix, "popularity", cachekey.String("id", id))

	n, ok, err := s.counts.Get(ctx, key)
	switch {
	case err != nil:
		cacheaside.Degrade(ctx, prefix, err)
	case ok:
		cacheaside.Hit(prefix)
		return n, nil
	default:
		cacheaside.Miss(prefix)
	}

	n, err = s.workCounts.Count(ctx, query.WorksByCategory(id))
	if err != nil {
		return 0, fmt.Errorf("count works for category %s: %w", id, err)
	}

	if err := s.counts.Set(ctx, key, n); err != nil {
		cacheaside.PopulateFailed(ctx, prefix, key, err)
	}
	return n, nil
}
