// Package resilient decorates a db.Store with bounded exponential-backoff
// retry on transient connectivity failures. Structural errors (bad query,
// key not found) pass through unretried.
package resilient

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/cinedex-cloud/cinedex/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Config holds the retry budget for one store connection.
type Config struct {
	InitialInterval time.Duration // first retry delay
	Multiplier      float64       // backoff factor
	MaxInterval     time.Duration // cap on a single delay
	MaxElapsedTime  time.Duration // total retry budget per operation
}

// ApplyDefaults fills zero fields with conservative defaults.
func (c *Config) ApplyDefaults() {
	if c.InitialInterval <= 0 {
		c.InitialInterval = 100 * time.Millisecond
	}
	if c.Multiplier <= 0 {
		c.Multiplier = 2.0
	}
	if c.MaxInterval <= 0 {
		c.MaxInterval = 2 * time.Second
	}
	if c.MaxElapsedTime <= 0 {
		c.MaxElapsedTime = 10 * time.Second
	}
}

// Store wraps an inner db.Store with retry. Stateless across calls.
type Store struct {
	inner  db.Store
	cfg    Config
	logger *zap.Logger
}

// Wrap decorates a store with the given retry budget.
func Wrap(inner db.Store, cfg Config, logger *zap.Logger) *Store {
	cfg.ApplyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{inner: inner, cfg: cfg, logger: logger}
}

// retry runs op, retrying transient failures until the elapsed-time budget
// runs out. Exhaustion surfaces as db.ErrUnavailable.
func retry[T any](ctx context.Context, s *Store, name string, op func() (T, error)) (T, error) {
	result, err := backoff.Retry(ctx, func() (T, error) {
		v, opErr := op()
		if opErr != nil && !db.IsTransient(opErr) {
			return v, backoff.Permanent(opErr)
		}
		return v, opErr
	},
		backoff.WithBackOff(&backoff.ExponentialBackOff{
			InitialInterval:     s.cfg.InitialInterval,
			RandomizationFactor: backoff.DefaultRandomizationFactor,
			Multiplier:          s.cfg.Multiplier,
			MaxInterval:         s.cfg.MaxInterval,
		}),
		backoff.WithMaxElapsedTime(s.cfg.MaxElapsedTime),
		backoff.WithNotify(func(err error, next time.Duration) {
			s.logger.Warn("retrying store operation",
				zap.String("op", name),
				zap.Duration("next_attempt_in", next),
				zap.Error(err),
			)
		}),
	)
	if err != nil && db.IsTransient(err) {
		return result, fmt.Errorf("%w: %s: %w", db.ErrUnavailable, name, err)
	}
	return result, err
}

// Ping checks connectivity without retry: callers poll it themselves.
func (s *Store) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

// Get retrieves a value by key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	return retry(ctx, s, db.OpGet, func() ([]byte, error) {
		return s.inner.Get(ctx, key)
	})
}

// SetWithTTL stores a value with an expiration.
func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := retry(ctx, s, db.OpSet, func() (struct{}, error) {
		return struct{}{}, s.inner.SetWithTTL(ctx, key, value, ttl)
	})
	return err
}

// JSONGet retrieves a JSON document by key.
func (s *Store) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	return retry(ctx, s, db.OpJSONGet, func() ([]byte, error) {
		return s.inner.JSONGet(ctx, key, paths...)
	})
}

// Search performs a paginated search.
func (s *Store) Search(ctx context.Context, opts db.SearchOptions) (*db.SearchResult, error) {
	return retry(ctx, s, db.OpSearch, func() (*db.SearchResult, error) {
		return s.inner.Search(ctx, opts)
	})
}

// SearchCount returns the match count for a query.
func (s *Store) SearchCount(ctx context.Context, index, query string) (int, error) {
	return retry(ctx, s, db.OpSearch, func() (int, error) {
		return s.inner.SearchCount(ctx, index, query)
	})
}

// Close shuts down the inner store.
func (s *Store) Close() {
	s.inner.Close()
}

// WaitForReady delegates to the inner store's readiness poll.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	return s.inner.WaitForReady(ctx, timeout)
}
