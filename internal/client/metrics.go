package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	requests *prometheus.CounterVec
	retries  *prometheus.CounterVec
}

// newMetrics registers the client counters with registerer, a nil
// registerer creates the counters without registering them
func newMetrics(registerer prometheus.Registerer) *metrics {
	factory := promauto.With(registerer)
	return &metrics{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "employee_client",
				Name:      "requests_total",
				Help:      "Completed request attempts by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		retries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "employee_client",
				Name:      "retries_total",
				Help:      "Retry attempts scheduled by operation.",
			},
			[]string{"operation"},
		),
	}
}

func (m *metrics) request(operation, outcome string) {
	m.requests.WithLabelValues(operation, outcome).Inc()
}

func (m *metrics) retry(operation string) {
	m.retries.WithLabelValues(operation).Inc()
}
