// Package telemetry exposes the service's Prometheus metrics: lifecycle
// counters, HTTP request durations and the live bed occupancy gauge.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AdmissionsTotal counts admissions created since process start.
	AdmissionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hims",
		Name:      "admissions_total",
		Help:      "Number of patient admissions.",
	})

	// TransfersTotal counts completed ward transfers.
	TransfersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hims",
		Name:      "transfers_total",
		Help:      "Number of completed ward transfers.",
	})

	// DischargesTotal counts discharges, labelled by discharge type.
	DischargesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hims",
		Name:      "discharges_total",
		Help:      "Number of discharges by type.",
	}, []string{"type"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hims",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)
