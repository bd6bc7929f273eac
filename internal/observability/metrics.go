// Package observability exposes Prometheus counters for data provenance.
// Whether a result came from cache, the live API, or synthesis is never an
// error surfaced to callers, so metrics and logs are the only honest record.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the mediation counters. A nil *Metrics is a no-op, so wiring
// stays optional in tests.
type Metrics struct {
	cacheHits   *prometheus.CounterVec
	liveCalls   *prometheus.CounterVec
	fallbacks   *prometheus.CounterVec
	quotaDenied prometheus.Counter
}

// NewMetrics registers the mediation counters on the default registry.
func NewMetrics() *Metrics {
	return &Metrics{
		cacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "farefinder_cache_hits_total",
			Help: "Results served from the expiring cache.",
		}, []string{"operation"}),
		liveCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "farefinder_live_calls_total",
			Help: "Successful live API calls.",
		}, []string{"operation"}),
		fallbacks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "farefinder_fallbacks_total",
			Help: "Results served from synthesis, by reason.",
		}, []string{"operation", "reason"}),
		quotaDenied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "farefinder_quota_denied_total",
			Help: "Live calls denied by the local quota tracker.",
		}),
	}
}

// CacheHit records a cache-served result.
func (m *Metrics) CacheHit(operation string) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(operation).Inc()
}

// LiveCall records a successful live API call.
func (m *Metrics) LiveCall(operation string) {
	if m == nil {
		return
	}
	m.liveCalls.WithLabelValues(operation).Inc()
}

// Fallback records a synthesized result and its reason.
func (m *Metrics) Fallback(operation, reason string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(operation, reason).Inc()
}

// QuotaDenied records a quota denial.
func (m *Metrics) QuotaDenied() {
	if m == nil {
		return
	}
	m.quotaDenied.Inc()
}
