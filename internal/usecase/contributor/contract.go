package contributor

import (
	"context"

	domcontrib "github.com/cinedex-cloud/cinedex/internal/domain/contributor"
	domwork "github.com/cinedex-cloud/cinedex/internal/domain/work"
	"github.com/cinedex-cloud/cinedex/internal/query"
)

// Repository defines the storage contract for contributor documents. The
// stored document carries no credits; those are assembled by the service.
type Repository interface {
	Get(ctx context.Context, id string) (domcontrib.Contributor, error)
	Search(ctx context.Context, spec query.Spec) ([]domcontrib.Contributor, error)
}

// WorkSearcher searches the work index for the per-role filmography join.
type WorkSearcher interface {
	Search(ctx context.Context, spec query.Spec) ([]domwork.Work, error)
}

// EntityCache caches single contributors, credits included.
type EntityCache interface {
	Get(ctx context.Context, key string) (*domcontrib.Contributor, error)
	Set(ctx context.Context, key string, v domcontrib.Contributor) error
}

// ListCache caches contributor search results.
type ListCache interface {
	GetList(ctx context.Context, key string) ([]domcontrib.Contributor, error)
	SetList(ctx context.Context, key string, items []domcontrib.Contributor) error
}
