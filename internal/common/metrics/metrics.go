// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	InteractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_interactions_total",
			Help: "Total number of inbound platform events by classified intent",
		},
		[]string{"intent"},
	)

	InteractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "intake_interaction_duration_seconds",
			Help:    "Duration of interaction handling in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2, 3, 5, 10},
		},
		[]string{"intent"},
	)

	InteractionsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_interactions_failed_total",
			Help: "Total number of interactions whose handler returned an error",
		},
		[]string{"intent", "error_code"},
	)

	EnrichmentLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_enrichment_lookups_total",
			Help: "Profile enrichment lookups by outcome",
		},
		[]string{"outcome"},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_notifications_total",
			Help: "Notification deliveries by target and status",
		},
		[]string{"target", "status"},
	)

	InteractionsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "intake_interactions_active",
			Help: "Number of interactions currently being handled",
		},
		[]string{"intent"},
	)
)
