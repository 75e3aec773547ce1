package dashboard

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360studio/authorityguard/session"
)

// Artifact kinds counted by the generated counter.
const (
	kindRobots  = "robots"
	kindSitemap = "sitemap"
	kindSchema  = "schema"
	kindMeta    = "meta"
)

// metrics holds the dashboard collectors. A nil *metrics records nothing.
type metrics struct {
	logins    *prometheus.CounterVec
	artifacts *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer, sessions *session.Store) *metrics {
	m := &metrics{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "authorityguard",
			Subsystem: "dashboard",
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		artifacts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "authorityguard",
			Subsystem: "dashboard",
			Name:      "artifacts_generated_total",
			Help:      "Generated artifacts by kind.",
		}, []string{"kind"}),
	}

	active := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "authorityguard",
		Subsystem: "dashboard",
		Name:      "sessions_active",
		Help:      "Live dashboard sessions.",
	}, func() float64 { return float64(sessions.Len()) })

	reg.MustRegister(m.logins, m.artifacts, active)
	return m
}

func (m *metrics) login(accepted bool) {
	if m == nil {
		return
	}
	result := "rejected"
	if accepted {
		result = "accepted"
	}
	m.logins.WithLabelValues(result).Inc()
}

func (m *metrics) generated(kind string) {
	if m == nil {
		return
	}
	m.artifacts.WithLabelValues(kind).Inc()
}
