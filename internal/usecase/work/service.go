// Package work implements cache-aside reads for catalog works.
package work

import (
	"context"
	"fmt"

	"github.com/cinedex-cloud/cinedex/internal/cachekey"
	"github.com/cinedex-cloud/cinedex/internal/domain"
	"github.com/cinedex-cloud/cinedex/internal/domain/search"
	domwork "github.com/cinedex-cloud/cinedex/internal/domain/work"
	"github.com/cinedex-cloud/cinedex/internal/query"
	"github.com/cinedex-cloud/cinedex/internal/usecase/cacheaside"
)

// prefix namespaces every work cache key.
const prefix = "work"

// Service answers work queries through the cache-aside read path.
type Service struct {
	repo     Repository
	entities EntityCache
	previews PreviewCache
}

// New creates a work service.
func New(repo Repository, entities EntityCache, previews PreviewCache) *Service {
	return &Service{repo: repo, entities: entities, previews: previews}
}

// GetByID returns one work. Absence surfaces as domain.ErrNotFound and is
// never cached, so an index write landing later becomes visible immediately.
func (s *Service) GetByID(ctx context.Context, id string) (domwork.Work, error) {
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

	w, err := s.repo.Get(ctx, id)
	if err != nil {
		return domwork.Work{}, fmt.Errorf("get work %s: %w", id, err)
	}

	if err := s.entities.Set(ctx, key, w); err != nil {
		cacheaside.PopulateFailed(ctx, prefix, key, err)
	}
	return w, nil
}

// List returns a page of work previews, optionally filtered by category and
// sorted. Free text is not part of the listing contract.
func (s *Service) List(ctx context.Context, p search.Params) ([]domwork.Preview, error) {
	p.Query = ""
	return s.find(ctx, "list", p)
}

// Search returns a page of work previews ranked by the weighted full-text
// match, with the same filter/sort/pagination semantics as List.
func (s *Service) Search(ctx context.Context, p search.Params) ([]domwork.Preview, error) {
	return s.find(ctx, "search", p)
}

func (s *Service) find(ctx context.Context, op string, p search.Params) ([]domwork.Preview, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrMalformedQuery, err)
	}

	key := cachekey.New(prefix, op,
		cachekey.String("query", p.Query),
		cachekey.String("category", p.CategoryID),
		cachekey.String("sort", p.Sort),
		cachekey.Int("page", p.Page),
		cachekey.Int("size", p.Size),
	)

	cached, err := s.previews.GetList(ctx, key)
	switch {
	case err != nil:
		cacheaside.Degrade(ctx, prefix, err)
	case cached != nil:
		cacheaside.Hit(prefix)
		return cached, nil
	default:
		cacheaside.Miss(prefix)
	}

	works, err := s.repo.Search(ctx, query.Works(p))
	if err != nil {
		return nil, fmt.Errorf("%s works: %w", op, err)
	}

	previews := make([]domwork.Preview, 0, len(works))
	for _, w := range works {
		previews = append(previews, w.Preview())
	}

	// Empty pages are cached too: repeated identical zero-hit queries must
	// not reach storage every time.
	if err := s.previews.SetList(ctx, key, previews); err != nil {
		cacheaside.PopulateFailed(ctx, prefix, key, err)
	}
	return previews, nil
}
