// Package obs holds the process-wide Prometheus collectors.
package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheRefreshes counts tier-chain runs by the tier that finally served.
	CacheRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campaign_cache_refresh_total",
		Help: "Cache refresh attempts by resulting freshness tier.",
	}, []string{"tier"})

	// CacheHits counts reads served inside the freshness window.
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campaign_cache_hit_total",
		Help: "Reads answered from the cache without touching the upstream.",
	})

	// UpstreamRequests counts gateway calls by endpoint and outcome.
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_requests_total",
		Help: "Upstream Graph API calls by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})
)
