// Package metrics exposes Prometheus instrumentation for the session
// lifecycle.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the session lifecycle metrics.
type Metrics struct {
	SessionsCreated prometheus.Counter
	AttestOutcomes  *prometheus.CounterVec
	Redemptions     prometheus.Counter
	OracleDuration  prometheus.Histogram
	OracleFailures  prometheus.Counter
}

// New creates and registers all session metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		SessionsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lockpass_sessions_created_total",
			Help: "Total number of attestation sessions created.",
		}),
		AttestOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lockpass_attest_outcomes_total",
			Help: "Attestation attempts by outcome.",
		}, []string{"outcome"}),
		Redemptions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lockpass_redemptions_total",
			Help: "Total number of redeemed sessions.",
		}),
		OracleDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "lockpass_oracle_check_duration_seconds",
			Help:    "Latency of lock oracle round trips.",
			Buckets: prometheus.DefBuckets,
		}),
		OracleFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lockpass_oracle_failures_total",
			Help: "Lock oracle transport failures.",
		}),
	}
}

// ObserveAttest records one attestation outcome.
func (m *Metrics) ObserveAttest(outcome string) {
	if m == nil {
		return
	}
	m.AttestOutcomes.WithLabelValues(outcome).Inc()
}
