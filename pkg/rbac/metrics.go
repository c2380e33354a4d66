package rbac

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts authorization decisions.
type Metrics struct {
	Decisions *prometheus.CounterVec
	Overrides *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg when non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tenantkit",
			Subsystem: "rbac",
			Name:      "decisions_total",
			Help:      "Permission checks by outcome and effective role source.",
		}, []string{"outcome", "source"}),
		Overrides: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tenantkit",
			Subsystem: "rbac",
			Name:      "override_changes_total",
			Help:      "Tenant role override writes by operation.",
		}, []string{"op"}),
	}
	if reg != nil {
		reg.MustRegister(m.Decisions, m.Overrides)
	}
	return m
}
