package connectmypool

import "github.com/prometheus/client_golang/prometheus"

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gopool_api_requests_total",
			Help: "ConnectMyPool API requests issued, by endpoint",
		},
		[]string{"endpoint"},
	)
	cacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gopool_api_cache_hits_total",
			Help: "Reads answered from the poll cache without a network call",
		},
		[]string{"endpoint"},
	)
	throttleMasked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gopool_api_throttle_masked_total",
			Help: "Throttle errors hidden behind a stale cached reply",
		},
		[]string{"endpoint"},
	)
	actionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gopool_api_actions_total",
			Help: "Pool actions by outcome",
		},
		[]string{"outcome"},
	)
	actionsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gopool_api_actions_in_flight",
			Help: "Actions currently holding the write lock",
		},
	)
)

// MetricsCollectors exposes the shared API client collectors.
func MetricsCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		requestsTotal,
		cacheHits,
		throttleMasked,
		actionsTotal,
		actionsInFlight,
	}
}
