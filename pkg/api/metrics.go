package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	castingOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casting_operations_total",
			Help: "Total number of casting operations by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	autoAssignDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "casting_auto_assign_duration_seconds",
		Help:    "Time spent solving and storing an auto-assign request.",
		Buckets: prometheus.DefBuckets,
	})

	autoAssignScore = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "casting_auto_assign_total_score",
		Help:    "Total score of the casting produced by auto-assign.",
		Buckets: prometheus.LinearBuckets(0, 20, 10),
	})
)

// recordOperation counts an operation under its outcome: "success" or the error kind
func recordOperation(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = errorCode(err)
	}
	castingOperationsTotal.WithLabelValues(operation, outcome).Inc()
}
