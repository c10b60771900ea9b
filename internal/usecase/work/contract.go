package work

import (
	"context"

	domwork "github.com/cinedex-cloud/cinedex/internal/domain/work"
	"github.com/cinedex-cloud/cinedex/internal/query"
)

// Repository defines the storage contract for works.
type Repository interface {
	Get(ctx context.Context, id string) (domwork.Work, error)
	Search(ctx context.Context, spec query.Spec) ([]domwork.Work, error)
}

// EntityCache caches single works.
type EntityCache interface {
	Get(ctx context.Context, key string) (*domwork.Work, error)
	Set(ctx context.Context, key string, v domwork.Work) error
}

// PreviewCache caches listing/search result collections.
type PreviewCache interface {
	GetList(ctx context.Context, key string) ([]domwork.Preview, error)
	SetList(ctx context.Context, key string, items []domwork.Preview) error
}
