// Package metrics holds the pipeline's Prometheus collectors. The
// collectors are constructed against an injected registerer so embedding
// applications can expose them on their own registry; nothing here is
// registered globally.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all pipeline metrics.
type Metrics struct {
	// Capture metrics, labeled by debug format.
	BatchesCaptured  *prometheus.CounterVec
	CaptureFailures  *prometheus.CounterVec
	Rotations        *prometheus.CounterVec
	RetentionDeletes *prometheus.CounterVec

	// Transmission metrics.
	SendAttempts     prometheus.Counter
	SendRetries      prometheus.Counter
	SendFailures     prometheus.Counter
	BatchesDelivered prometheus.Counter
	ShortCircuits    prometheus.Counter
}

// New creates the metrics collection registered against the given
// registerer. Pass prometheus.NewRegistry() for an isolated set (tests).
func New(registerer prometheus.Registerer) *Metrics {
	return &Metrics{
		BatchesCaptured: promauto.With(registerer).NewCounterVec(
			prometheus.CounterOpts{
				Name: "mirrorship_batches_captured_total",
				Help: "Batches mirrored to disk, per debug format",
			},
			[]string{"format"},
		),
		CaptureFailures: promauto.With(registerer).NewCounterVec(
			prometheus.CounterOpts{
				Name: "mirrorship_capture_failures_total",
				Help: "Batches that failed to mirror, per debug format",
			},
			[]string{"format"},
		),
		Rotations: promauto.With(registerer).NewCounterVec(
			prometheus.CounterOpts{
				Name: "mirrorship_rotations_total",
				Help: "Debug file rotations, per debug format",
			},
			[]string{"format"},
		),
		RetentionDeletes: promauto.With(registerer).NewCounterVec(
			prometheus.CounterOpts{
				Name: "mirrorship_retention_deletes_total",
				Help: "Rotated debug files deleted by retention, per debug format",
			},
			[]string{"format"},
		),
		SendAttempts: promauto.With(registerer).NewCounter(
			prometheus.CounterOpts{
				Name: "mirrorship_send_attempts_total",
				Help: "Transmission attempts, including retries",
			},
		),
		SendRetries: promauto.With(registerer).NewCounter(
			prometheus.CounterOpts{
				Name: "mirrorship_send_retries_total",
				Help: "Transmission retries after a transient failure",
			},
		),
		SendFailures: promauto.With(registerer).NewCounter(
			prometheus.CounterOpts{
				Name: "mirrorship_send_failures_total",
				Help: "Batches that failed transmission definitively",
			},
		),
		BatchesDelivered: promauto.With(registerer).NewCounter(
			prometheus.CounterOpts{
				Name: "mirrorship_batches_delivered_total",
				Help: "Batches acknowledged by the remote endpoint",
			},
		),
		ShortCircuits: promauto.With(registerer).NewCounter(
			prometheus.CounterOpts{
				Name: "mirrorship_short_circuits_total",
				Help: "Batches acknowledged synthetically with transmission disabled",
			},
		),
	}
}

// NewNop creates metrics backed by a throwaway registry, for callers that
// do not export metrics.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
