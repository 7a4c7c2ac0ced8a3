// Package metrics defines the Prometheus metrics exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dealflow"

// DealTransitionsTotal counts applied status and stage changes.
// Labels:
//   - field: "status" or "stage"
//   - from, to: the old and new value
var DealTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deal_transitions_total",
		Help:      "Total number of deal status and stage changes applied.",
	},
	[]string{"field", "from", "to"},
)

// DealUpdatesRejectedTotal counts deal updates rejected by a business rule.
// Label:
//   - kind: the error kind (permission_denied, validation, not_found)
var DealUpdatesRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deal_updates_rejected_total",
		Help:      "Total number of deal updates rejected before persistence.",
	},
	[]string{"kind"},
)

// AnalyticsCacheTotal counts analytics cache lookups.
// Labels:
//   - operation: "summary" or "funnel"
//   - result: "hit", "miss" or "error"
var AnalyticsCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "analytics_cache_total",
		Help:      "Total number of analytics cache lookups by result.",
	},
	[]string{"operation", "result"},
)

// HTTPRequestDuration measures request latency by route pattern.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests by method, route and status.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route", "status"},
)
