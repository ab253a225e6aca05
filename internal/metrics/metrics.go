package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP-сервер представлений
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "template_hub_http_requests_total",
			Help: "Total number of view server requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "template_hub_http_request_duration_seconds",
			Help:    "View server request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Исходящие вызовы к API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "template_hub_api_requests_total",
			Help: "Outbound API calls by operation and result.",
		},
		[]string{"op", "result"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "template_hub_api_request_duration_seconds",
			Help:    "Outbound API call duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	ReactionTogglesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "template_hub_reaction_toggles_total",
			Help: "Reaction toggles by kind and result.",
		},
		[]string{"kind", "result"},
	)

	StaleResponsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "template_hub_stale_responses_total",
			Help: "Listing responses discarded because a newer request was issued.",
		},
		[]string{"kind"},
	)

	StoreChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "template_hub_store_changes_total",
			Help: "Completed entity repository mutations by kind and operation.",
		},
		[]string{"kind", "op"},
	)
)
