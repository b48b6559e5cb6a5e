package levelbook

import (
	"github.com/0x5487/levelbook/structure"
)

// OrderBookOption configures an OrderBook at construction.
type OrderBookOption func(*orderBookConfig)

type orderBookConfig struct {
	backend    structure.Backend
	chunkSize  uint32
	maxLevels  uint32
	publisher  PublishLevel
	priceScale int32
	metrics    *Metrics
}

func defaultOrderBookConfig() orderBookConfig {
	return orderBookConfig{
		backend:   structure.BackendTree,
		chunkSize: structure.DefaultChunkSize,
	}
}

// WithBackend selects the ordered structure used by all six indices.
func WithBackend(backend structure.Backend) OrderBookOption {
	return func(c *orderBookConfig) {
		c.backend = backend
	}
}

// WithChunkSize sets how many levels the pool adds each time it grows.
func WithChunkSize(size uint32) OrderBookOption {
	return func(c *orderBookConfig) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithMaxLevels caps the number of live levels across all six indices.
// Level creation beyond the cap fails with ErrPoolExhausted. 0 means unlimited.
func WithMaxLevels(limit uint32) OrderBookOption {
	return func(c *orderBookConfig) {
		c.maxLevels = limit
	}
}

// WithPublisher sets the receiver of level updates.
func WithPublisher(p PublishLevel) OrderBookOption {
	return func(c *orderBookConfig) {
		c.publisher = p
	}
}

// WithPriceScale sets the number of fractional digits of a tick, used only to
// render prices in logs.
func WithPriceScale(scale int32) OrderBookOption {
	return func(c *orderBookConfig) {
		c.priceScale = scale
	}
}

// WithMetrics reports the book's gauges to m.
func WithMetrics(m *Metrics) OrderBookOption {
	return func(c *orderBookConfig) {
		c.metrics = m
	}
}
