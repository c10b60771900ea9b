package metrics

import "github.com/prometheus/client_golang/prometheus"

// Cache lookup outcomes.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// CacheLookupsTotal counts cache-aside lookups per service and outcome.
var CacheLookupsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "cinedex",
		Name:      "cache_lookups_total",
		Help:      "Cache lookups by service and outcome",
	},
	[]string{"service", "outcome"},
)

func init() {
	prometheus.MustRegister(CacheLookupsTotal)
}
