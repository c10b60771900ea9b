// Package catalog implements the storage port over the search store. A
// repo is bound to exactly one entity type, one key prefix and one FT
// index at construction.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cinedex-cloud/cinedex/internal/db"
	"github.com/cinedex-cloud/cinedex/internal/domain"
	"github.com/cinedex-cloud/cinedex/internal/query"
)

// store is the consumer interface for the search connection (ISP).
type store interface {
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Search(ctx context.Context, opts db.SearchOptions) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Repo reads one entity family from its index.
type Repo[T any] struct {
	store     store
	keyPrefix string
	index     string
}

// New creates a storage port bound to one entity type, key prefix and index.
func New[T any](s store, keyPrefix, index string) *Repo[T] {
	return &Repo[T]{store: s, keyPrefix: keyPrefix, index: index}
}

// Get returns the entity stored under the given id. Absence surfaces as
// domain.ErrNotFound, never as a connectivity failure.
func (r *Repo[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	key := r.keyPrefix + id
	raw, err := r.store.JSONGet(ctx, key, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return zero, domain.ErrNotFound
		}
		return zero, mapErr(fmt.Errorf("json.get %s: %w", key, err))
	}

	// JSONPath $ wraps the document in a one-element array.
	var docs []T
	if err := json.Unmarshal(raw, &docs); err != nil {
		return zero, fmt.Errorf("decode document %s: %w", key, err)
	}
	if len(docs) == 0 {
		return zero, domain.ErrNotFound
	}
	return docs[0], nil
}

// Search runs a built query against the repo's index and decodes the hits.
// An empty result is a valid empty slice, not an error.
func (r *Repo[T]) Search(ctx context.Context, spec query.Spec) ([]T, error) {
	result, err := r.store.Search(ctx, db.SearchOptions{
		Index:        r.index,
		Query:        spec.Query,
		Offset:       spec.Offset,
		Limit:        spec.Limit,
		SortBy:       spec.SortBy,
		SortDesc:     spec.SortDesc,
		ReturnFields: []string{"$"},
	})
	if err != nil {
		return nil, mapErr(fmt.Errorf("search %s: %w", r.index, err))
	}

	items := make([]T, 0, len(result.Entries))
	for _, entry := range result.Entries {
		jsonStr, ok := entry.Fields["$"]
		if !ok || jsonStr == "" {
			continue
		}
		var v T
		if err := json.Unmarshal([]byte(jsonStr), &v); err != nil {
			return nil, fmt.Errorf("decode hit %s: %w", entry.Key, err)
		}
		items = append(items, v)
	}
	return items, nil
}

// Count returns the number of documents matching the query without
// materializing the result set.
func (r *Repo[T]) Count(ctx context.Context, q string) (int64, error) {
	n, err := r.store.SearchCount(ctx, r.index, q)
	if err != nil {
		return 0, mapErr(fmt.Errorf("count %s: %w", r.index, err))
	}
	return int64(n), nil
}

// mapErr translates store-level failures into the domain taxonomy.
func mapErr(err error) error {
	switch {
	case errors.Is(err, db.ErrBadQuery):
		return fmt.Errorf("%w: %s", domain.ErrMalformedQuery, err)
	case errors.Is(err, db.ErrUnavailable):
		return fmt.Errorf("%w: %s", domain.ErrServiceUnavailable, err)
	default:
		return err
	}
}
