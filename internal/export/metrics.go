package export

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	batchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "haven_export_batches_total",
		Help: "Completed export batches by destination.",
	}, []string{"destination"})

	batchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "haven_export_batch_duration_seconds",
		Help:    "Wall time to project and hash one export batch.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	}, []string{"destination"})

	auditFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "haven_export_audit_failures_total",
		Help: "Export batches aborted because the audit append failed.",
	})
)
