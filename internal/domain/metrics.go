package domain

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bopkit_operations_total",
			Help: "Engine operations by name and outcome.",
		},
		[]string{"operation", "status"},
	)

	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bopkit_operation_duration_seconds",
			Help:    "Engine operation latency.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		},
		[]string{"operation"},
	)

	indexRebuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bopkit_index_rebuilds_total",
			Help: "Correspondence index rebuilds after splitting or exploding pieces.",
		},
		[]string{"reason"},
	)
)

// WriteMetrics writes the default registry to path in the text exposition
// format.
func WriteMetrics(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
