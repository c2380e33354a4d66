package cache

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts cache outcomes by cache name.
type Metrics struct {
	Hits        *prometheus.CounterVec
	Misses      *prometheus.CounterVec
	LoadErrors  *prometheus.CounterVec
	StoreErrors *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg when non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tenantkit",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Cache lookups served from the store.",
		}, []string{"cache"}),
		Misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tenantkit",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Cache lookups that invoked the loader.",
		}, []string{"cache"}),
		LoadErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tenantkit",
			Subsystem: "cache",
			Name:      "load_errors_total",
			Help:      "Loader invocations that returned an error.",
		}, []string{"cache"}),
		StoreErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tenantkit",
			Subsystem: "cache",
			Name:      "store_errors_total",
			Help:      "Backend read or write failures.",
		}, []string{"cache"}),
	}
	if reg != nil {
		reg.MustRegister(m.Hits, m.Misses, m.LoadErrors, m.StoreErrors)
	}
	return m
}
