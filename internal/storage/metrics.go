package storage

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts storage operations. A nil *Metrics records nothing.
type Metrics struct {
	operations    *prometheus.CounterVec
	headFallbacks prometheus.Counter
	headRetries   prometheus.Counter
}

// NewMetrics creates the storage collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storage_operations_total",
				Help: "Total number of storage operations by backend, operation and outcome.",
			},
			[]string{"backend", "op", "outcome"},
		),
		headFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storage_head_fallback_total",
			Help: "HEAD requests rejected with 403/405 and retried as a ranged GET.",
		}),
		headRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storage_head_retries_total",
			Help: "Metadata requests repeated while waiting for an upload to become visible.",
		}),
	}

	for _, c := range []prometheus.Collector{m.operations, m.headFallbacks, m.headRetries} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(backend BackendType, op string, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(string(backend), op, outcome(err)).Inc()
}

func (m *Metrics) headFallback() {
	if m == nil {
		return
	}
	m.headFallbacks.Inc()
}

func (m *Metrics) headRetry() {
	if m == nil {
		return
	}
	m.headRetries.Inc()
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	switch KindOf(err) {
	case KindValidation:
		return "validation"
	case KindConfig:
		return "config"
	case KindNotFound:
		return "not_found"
	case KindIO:
		return "io"
	default:
		return "backend"
	}
}
