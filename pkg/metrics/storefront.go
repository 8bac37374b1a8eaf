package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Checkout submission outcomes.
const (
	OutcomeAccepted    = "accepted"
	OutcomeEmptyCart   = "empty_cart"
	OutcomeInvalid     = "invalid"
	OutcomeInFlight    = "in_flight"
	OutcomeRateLimited = "rate_limited"
	OutcomeFailed      = "failed"
)

// Hand-off results.
const (
	HandOffOpened  = "opened"
	HandOffBlocked = "blocked"
)

// StorefrontMetrics records cart persistence, checkout and session registry activity.
// A nil receiver is valid and records nothing.
type StorefrontMetrics struct {
	persistFailures *prometheus.CounterVec
	submissions     *prometheus.CounterVec
	handOffs        *prometheus.CounterVec
	activeSessions  prometheus.Gauge
	sweepDuration   prometheus.Histogram
	evictions       prometheus.Counter
}

// NewStorefrontMetrics registers the storefront metrics on the provided registerer.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	persistFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_persist_failures_total",
		Help: "Cart snapshot reads or writes that failed and were ignored.",
	}, []string{"op"})
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_submissions_total",
		Help: "Checkout submissions by outcome.",
	}, []string{"outcome"})
	handOffs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_handoffs_total",
		Help: "Dispatch hand-offs by result.",
	}, []string{"result"})
	activeSessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cart_sessions_active",
		Help: "Cart stores currently held in memory.",
	})
	sweepDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cart_session_sweep_duration_seconds",
		Help:    "Duration of idle cart session sweeps in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	evictions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_session_evictions_total",
		Help: "Idle cart stores evicted from memory.",
	})
	reg.MustRegister(persistFailures, submissions, handOffs, activeSessions, sweepDuration, evictions)
	return &StorefrontMetrics{
		persistFailures: persistFailures,
		submissions:     submissions,
		handOffs:        handOffs,
		activeSessions:  activeSessions,
		sweepDuration:   sweepDuration,
		evictions:       evictions,
	}
}

// IncPersistFailure counts a swallowed cart storage failure for op ("load" or "save").
func (m *StorefrontMetrics) IncPersistFailure(op string) {
	if m == nil || m.persistFailures == nil {
		return
	}
	m.persistFailures.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncSubmission counts a checkout submission outcome.
func (m *StorefrontMetrics) IncSubmission(outcome string) {
	if m == nil || m.submissions == nil {
		return
	}
	m.submissions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncHandOff counts a dispatch hand-off result.
func (m *StorefrontMetrics) IncHandOff(result string) {
	if m == nil || m.handOffs == nil {
		return
	}
	m.handOffs.WithLabelValues(normalizeLabel(result)).Inc()
}

// SetActiveSessions reports the number of in-memory cart stores.
func (m *StorefrontMetrics) SetActiveSessions(n int) {
	if m == nil || m.activeSessions == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

// ObserveSweep records one idle-session sweep.
func (m *StorefrontMetrics) ObserveSweep(duration time.Duration, evicted int) {
	if m == nil || m.sweepDuration == nil {
		return
	}
	m.sweepDuration.Observe(duration.Seconds())
	if evicted > 0 {
		m.evictions.Add(float64(evicted))
	}
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
