package cart

import (
	"github.com/prometheus/client_golang/prometheus"

	"RocketShoes/pkg/kit"
)

const outcomeOK = "ok"

type Metrics struct {
	Operations *prometheus.CounterVec
	Sessions   prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: kit.Namespace,
				Subsystem: "cart",
				Name:      "operations_total",
				Help:      "Cart mutations by operation and outcome",
			},
			[]string{"op", "outcome"},
		),
		Sessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: kit.Namespace,
				Subsystem: "cart",
				Name:      "sessions_active",
				Help:      "Carts held in memory",
			},
		),
	}

	reg.MustRegister(m.Operations, m.Sessions)
	return m
}

func (m *Metrics) observe(op, outcome string) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) setSessions(n int) {
	if m == nil {
		return
	}
	m.Sessions.Set(float64(n))
}
