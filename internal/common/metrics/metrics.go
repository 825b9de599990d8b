// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BackendAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claims_backend_attempts_total",
			Help: "Total number of backend attempts by operation, backend and outcome",
		},
		[]string{"operation", "backend", "outcome"},
	)

	FallbackTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claims_fallback_transitions_total",
			Help: "Total number of fallback transitions between backend attempts",
		},
		[]string{"operation", "from", "to"},
	)

	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "claims_operation_duration_seconds",
			Help: "Duration of logical claim operations in seconds",
		},
		[]string{"operation"},
	)

	ChatResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_resolutions_total",
			Help: "Total number of chat resolutions by outcome",
		},
		[]string{"outcome"},
	)
)
