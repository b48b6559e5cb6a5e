package levelbook

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes level book gauges to Prometheus.
// The gauges are written by the book's own writer after each mutation; scraping
// never touches book state.
type Metrics struct {
	levels        *prometheus.GaugeVec
	poolCapacity  *prometheus.GaugeVec
	poolAvailable *prometheus.GaugeVec
	poolGrows     *prometheus.CounterVec
	marketPrice   *prometheus.GaugeVec
}

// NewMetrics creates the level book collectors and registers them with reg.
// A nil reg skips registration.
func NewMetrics(namespace string, reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		levels: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "levelbook",
			Name:      "levels",
			Help:      "Number of price levels per index",
		}, []string{"symbol", "index"}),
		poolCapacity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "levelbook",
			Name:      "pool_capacity",
			Help:      "Usable slots of the level pool",
		}, []string{"symbol"}),
		poolAvailable: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "levelbook",
			Name:      "pool_available",
			Help:      "Free slots of the level pool",
		}, []string{"symbol"}),
		poolGrows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "levelbook",
			Name:      "pool_grows_total",
			Help:      "Number of times the level pool added a chunk",
		}, []string{"symbol"}),
		marketPrice: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "levelbook",
			Name:      "last_price",
			Help:      "Last traded price in ticks per side",
		}, []string{"symbol", "side"}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{m.levels, m.poolCapacity, m.poolAvailable, m.poolGrows, m.marketPrice} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// bookMetrics holds the label-resolved series of one book so the hot path
// skips the label lookup.
type bookMetrics struct {
	levels        [indexKindCount]prometheus.Gauge
	poolCapacity  prometheus.Gauge
	poolAvailable prometheus.Gauge
	poolGrows     prometheus.Counter
	lastBid       prometheus.Gauge
	lastAsk       prometheus.Gauge
}

func (m *Metrics) forBook(symbol string) *bookMetrics {
	bm := &bookMetrics{
		poolCapacity:  m.poolCapacity.WithLabelValues(symbol),
		poolAvailable: m.poolAvailable.WithLabelValues(symbol),
		poolGrows:     m.poolGrows.WithLabelValues(symbol),
		lastBid:       m.marketPrice.WithLabelValues(symbol, Buy.String()),
		lastAsk:       m.marketPrice.WithLabelValues(symbol, Sell.String()),
	}
	for k := IndexKind(0); k < indexKindCount; k++ {
		bm.levels[k] = m.levels.WithLabelValues(symbol, k.String())
	}
	return bm
}

// forget drops every series of symbol, used when a book is deregistered.
func (m *Metrics) forget(symbol string) {
	m.poolCapacity.DeleteLabelValues(symbol)
	m.poolAvailable.DeleteLabelValues(symbol)
	m.poolGrows.DeleteLabelValues(symbol)
	m.marketPrice.DeleteLabelValues(symbol, Buy.String())
	m.marketPrice.DeleteLabelValues(symbol, Sell.String())
	for k := IndexKind(0); k < indexKindCount; k++ {
		m.levels.DeleteLabelValues(symbol, k.String())
	}
}
