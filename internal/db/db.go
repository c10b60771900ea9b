package db

import (
	"context"
	"time"
)

// Store is the database facade combining all sub-interfaces. The cache
// connection only exercises KVStore; the search connection exercises
// JSONStore and Searcher. Consumers depend on narrow sub-interfaces (ISP).
type Store interface {
	Pinger
	KVStore
	JSONStore
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides simple key-value operations used by the cache layer.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// JSONStore provides JSON document reads.
type JSONStore interface {
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
}

// Searcher provides search operations over FT indexes.
type Searcher interface {
	Search(ctx context.Context, opts SearchOptions) (*SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// SearchOptions describes one FT.SEARCH invocation.
type SearchOptions struct {
	Index        string
	Query        string
	Offset       int
	Limit        int
	SortBy       string // empty = relevance order
	SortDesc     bool
	ReturnFields []string
}

// SearchEntry is one hit in a search result.
type SearchEntry struct {
	Key    string
	Fields map[string]string
}

// SearchResult is a paginated FT.SEARCH result.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}
