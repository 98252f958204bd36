// internal/platform/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	cartdom "primepicks/internal/domain/cart"
)

const namespace = "primepicks"

// CartMetrics implements usecase.CartObserver and query.ViewObserver with Prometheus collectors.
type CartMetrics struct {
	Operations  *prometheus.CounterVec
	LatencyMS   *prometheus.HistogramVec
	Enrichments *prometheus.CounterVec
}

// NewCartMetrics registers the cart collectors on reg.
// cartCount, when non-nil, backs a gauge of carts held in memory.
func NewCartMetrics(reg prometheus.Registerer, cartCount func() int) *CartMetrics {
	ops := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cart",
		Name:      "operations_total",
		Help:      "Cart store operations by outcome.",
	}, []string{"op", "result"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "cart",
		Name:      "operation_duration_ms",
		Help:      "Cart store operation latency in milliseconds.",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	}, []string{"op"})
	enrich := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cart",
		Name:      "enrichment_lookups_total",
		Help:      "Catalog lookups made while building cart views.",
	}, []string{"result"})

	reg.MustRegister(ops, latency, enrich)

	if cartCount != nil {
		reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "carts",
			Help:      "Carts currently held in memory.",
		}, func() float64 { return float64(cartCount()) }))
	}

	return &CartMetrics{Operations: ops, LatencyMS: latency, Enrichments: enrich}
}

// ObserveOperation labels errors by kind ("ok" on success).
func (m *CartMetrics) ObserveOperation(op string, err error, elapsed time.Duration) {
	result := "ok"
	if err != nil {
		result = cartdom.ErrorKind(err)
	}
	m.Operations.WithLabelValues(op, result).Inc()
	m.LatencyMS.WithLabelValues(op).Observe(float64(elapsed) / float64(time.Millisecond))
}

func (m *CartMetrics) ObserveEnrichment(ok bool) {
	result := "ok"
	if !ok {
		result = "unavailable"
	}
	m.Enrichments.WithLabelValues(result).Inc()
}
