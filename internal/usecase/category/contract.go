package category

import (
	"context"

	domcat "github.com/cinedex-cloud/cinedex/internal/domain/category"
	"github.com/cinedex-cloud/cinedex/internal/query"
)

// Repository defines the storage contract for categories.
type Repository interface {
	Get(ctx context.Context, id string) (domcat.Category, error)
	Search(ctx context.Context, spec query.Spec) ([]domcat.Category, error)
}

// WorkCounter counts works in the work index. Popularity is derived from
// it, never stored on the category document.
type WorkCounter interface {
	Count(ctx context.Context, query string) (int64, error)
}

// EntityCache caches single categories.
type EntityCache interface {
	Get(ctx context.Context, key string) (*domcat.Category, error)
	Set(ctx context.Context, key string, v domcat.Category) error
}

// ListCache caches category listing results.
type ListCache interface {
	GetList(ctx context.Context, key string) ([]domcat.Category, error)
	SetList(ctx context.Context, key string, items []domcat.Category) error
}

// CountCache caches derived scalar aggregates under their own TTL.
type CountCache interface {
	Get(ctx context.Context, key string) (int64, bool, error)
	Set(ctx context.Context, key string, n int64) error
}
