// Package contributor implements cache-aside reads for catalog
// contributors. The filmography is an application-side join: the search
// engine cannot join indices, so the service queries the work index once
// per role and merges the results.
package contributor

import (
	"context"
	"fmt"

	"github.com/cinedex-cloud/cinedex/internal/cachekey"
	"github.com/cinedex-cloud/cinedex/internal/domain"
	domcontrib "github.com/cinedex-cloud/cinedex/internal/domain/contributor"
	"github.com/cinedex-cloud/cinedex/internal/domain/search"
	domwork "github.com/cinedex-cloud/cinedex/internal/domain/work"
	"github.com/cinedex-cloud/cinedex/internal/query"
	"github.com/cinedex-cloud/cinedex/internal/usecase/cacheaside"
)

// prefix namespaces every contributor cache key.
const prefix = "contributor"

// filmographyLimit bounds one role sub-query. No catalog contributor comes
// near it.
const filmographyLimit = 1000

// Service answers contributor queries through the cache-aside read path.
type Service struct {
	repo     Repository
	works    WorkSearcher
	entities EntityCache
	lists    ListCache
}

// New creates a contributor service.
func New(repo Repository, works WorkSearcher, entities EntityCache, lists ListCache) *Service {
	return &Service{repo: repo, works: works, entities: entities, lists: lists}
}

// GetByID returns one contributor with the full credits list. A failure in
// any role sub-query fails the whole operation: a partial filmography is
// never returned. Absence surfaces as domain.ErrNotFound and is not cached.
func (s *Service) GetByID(ctx context.Context, id string) (domcontrib.Contributor, error) {
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
		return domcontrib.Contributor{}, fmt.Errorf("get contributor %s: %w", id, err)
	}

	c.Credits, err = s.filmography(ctx, id)
	if err != nil {
		return domcontrib.Contributor{}, fmt.Errorf("filmography for %s: %w", id, err)
	}

	if err := s.entities.Set(ctx, key, c); err != nil {
		cacheaside.PopulateFailed(ctx, prefix, key, err)
	}
	return c, nil
}

// Search returns a page of contributors matched by name, each hydrated via
// GetByID so the credits list is present on every hit.
func (s *Service) Search(ctx context.Context, p search.Params) ([]domcontrib.Contributor, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrMalformedQuery, err)
	}

	key := cachekey.New(prefix, "search",
		cachekey.String("query", p.Query),
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

	hits, err := s.repo.Search(ctx, query.Contributors(p))
	if err != nil {
		return nil, fmt.Errorf("search contributors: %w", err)
	}

	items := make([]domcontrib.Contributor, 0, len(hits))
	for _, hit := range hits {
		full, err := s.GetByID(ctx, hit.ID)
		if err != nil {
			return nil, fmt.Errorf("hydrate contributor %s: %w", hit.ID, err)
		}
		items = append(items, full)
	}

	if err := s.lists.SetList(ctx, key, items); err != nil {
		cacheaside.PopulateFailed(ctx, prefix, key, err)
	}
	return items, nil
}

// filmography issues one work-index search per role, in fixed order, and
// merges the (work id, role) pairs without duplicates.
func (s *Service) filmography(ctx context.Context, id string) ([]domcontrib.Credit, error) {
	credits := make([]domcontrib.Credit, 0)
	seen := make(map[domcontrib.Credit]struct{})

	for _, role := range domwork.Roles() {
		spec := query.Spec{
			Query: query.WorksByContributor(id, role),
			Limit: filmographyLimit,
		}
		works, err := s.works.Search(ctx, spec)
		if err != nil {
			return nil, fmt.Errorf("works by role %s: %w", role, err)
		}
		for _, w := range works {
			credit := domcontrib.Credit{WorkID: w.ID, Role: role}
			if _, dup := seen[credit]; dup {
				continue
			}
			seen[credit] = struct{}{}
			credits = append(credits, credit)
		}
	}
	return credits, nil
}
