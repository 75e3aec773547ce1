package discovery

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Scan outcomes recorded in the scans counter.
const (
	OutcomeOK           = "ok"
	OutcomeInsufficient = "insufficient"
	OutcomeFetchError   = "fetch_error"
)

// Metrics holds the prometheus collectors for link discovery.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	scans         *prometheus.CounterVec
	candidates    prometheus.Histogram
	fetchDuration prometheus.Histogram
}

// NewMetrics creates the discovery collectors and registers them with reg
// when reg is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "authorityguard",
			Subsystem: "discovery",
			Name:      "scans_total",
			Help:      "Link discovery scans by outcome.",
		}, []string{"outcome"}),
		candidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "authorityguard",
			Subsystem: "discovery",
			Name:      "candidates",
			Help:      "Number of sitemap candidates produced by successful scans.",
			Buckets:   []float64{1, 2, 5, 10, 20, 35, 50},
		}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "authorityguard",
			Subsystem: "discovery",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of the seed page fetch.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	if reg != nil {
		reg.MustRegister(m.scans, m.candidates, m.fetchDuration)
	}
	return m
}

func (m *Metrics) observeFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.fetchDuration.Observe(d.Seconds())
}

func (m *Metrics) observeScan(outcome string, candidates int) {
	if m == nil {
		return
	}
	m.scans.WithLabelValues(outcome).Inc()
	if outcome != OutcomeFetchError {
		m.candidates.Observe(float64(candidates))
	}
}
