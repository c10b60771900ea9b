// Package cacheaside holds the shared telemetry for the cache-aside read
// path: cache failures degrade, they never fail a request.
package cacheaside

import (
	"context"

	"go.uber.org/zap"

	"github.com/cinedex-cloud/cinedex/internal/logger"
	"github.com/cinedex-cloud/cinedex/internal/metrics"
)

// Hit records a cache hit for the service.
func Hit(service string) {
	metrics.CacheLookupsTotal.WithLabelValues(service, metrics.CacheHit).Inc()
}

// Miss records a cache miss for the service.
func Miss(service string) {
	metrics.CacheLookupsTotal.WithLabelValues(service, metrics.CacheMiss).Inc()
}

// Degrade treats a cache read failure as a miss. The cache is not
// authoritative, so the request falls through to storage.
func Degrade(ctx context.Context, service string, err error) {
	metrics.CacheLookupsTotal.WithLabelValues(service, metrics.CacheError).Inc()
	logger.FromContext(ctx).Warn("cache read failed, falling through to storage",
		zap.String("service", service), zap.Error(err))
}

// PopulateFailed logs a cache write failure. The read already has its
// result, so the failure is never surfaced.
func PopulateFailed(ctx context.Context, service, key string, err error) {
	logger.FromContext(ctx).Warn("cache populate failed",
		zap.String("service", service), zap.String("key", key), zap.Error(err))
}
