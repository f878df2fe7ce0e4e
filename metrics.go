package shopstate

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the state stores and their persistence.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	persistWrites *prometheus.CounterVec
	writeDuration *prometheus.HistogramVec
	rehydrations  *prometheus.CounterVec
	mutations     *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		persistWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shopstate_persist_writes_total",
				Help: "Total number of state snapshots written to storage",
			},
			[]string{"namespace", "result"},
		),
		writeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shopstate_persist_write_duration_seconds",
				Help:    "Duration of storage writes in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"namespace"},
		),
		rehydrations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shopstate_rehydrations_total",
				Help: "Total number of state rehydrations from storage",
			},
			[]string{"namespace", "result"},
		),
		mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shopstate_store_mutations_total",
				Help: "Total number of state-changing store actions",
			},
			[]string{"store", "action"},
		),
	}

	for _, c := range []prometheus.Collector{m.persistWrites, m.writeDuration, m.rehydrations, m.mutations} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeWrite(namespace string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.writeDuration.WithLabelValues(namespace).Observe(d.Seconds())
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.persistWrites.WithLabelValues(namespace, result).Inc()
}

func (m *Metrics) persistResult(namespace, result string) {
	if m == nil {
		return
	}
	m.persistWrites.WithLabelValues(namespace, result).Inc()
}

func (m *Metrics) rehydrated(namespace, result string) {
	if m == nil {
		return
	}
	m.rehydrations.WithLabelValues(namespace, result).Inc()
}

func (m *Metrics) mutated(store, action string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(store, action).Inc()
}
