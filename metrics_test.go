package levelbook

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics("test", reg)
	require.NoError(t, err)

	book := NewOrderBook("BTC-USDT", WithMetrics(m), WithChunkSize(4))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.poolCapacity.WithLabelValues("BTC-USDT")))

	for _, p := range []uint64{100, 99, 98, 97} {
		_, err := book.AddLevel(Bids, p)
		require.NoError(t, err)
	}
	h, err := book.AddLevel(Asks, 101)
	require.NoError(t, err)

	assert.Equal(t, float64(4), testutil.ToFloat64(m.levels.WithLabelValues("BTC-USDT", "Bids")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.levels.WithLabelValues("BTC-USDT", "Asks")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.poolGrows.WithLabelValues("BTC-USDT")))
	assert.Equal(t, float64(7), testutil.ToFloat64(m.poolCapacity.WithLabelValues("BTC-USDT")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.poolAvailable.WithLabelValues("BTC-USDT")))

	require.NoError(t, book.DeleteLevel(Asks, h))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.levels.WithLabelValues("BTC-USDT", "Asks")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.poolAvailable.WithLabelValues("BTC-USDT")))

	book.UpdateLastPrice(&Order{Side: Buy, Price: 100})
	assert.Equal(t, float64(100), testutil.ToFloat64(m.marketPrice.WithLabelValues("BTC-USDT", "buy")))
}

func TestMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics("test", reg)
	require.NoError(t, err)

	_, err = NewMetrics("test", reg)
	assert.Error(t, err)
}

func TestMetrics_ForgetOnDeregister(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics("test", reg)
	require.NoError(t, err)

	registry := NewRegistry(WithMetrics(m))
	book, err := registry.Register("BTC-USDT")
	require.NoError(t, err)
	_, err = book.AddLevel(Bids, 100)
	require.NoError(t, err)
	assert.Equal(t, 6, testutil.CollectAndCount(m.levels))

	require.NoError(t, registry.Deregister("BTC-USDT"))
	assert.Equal(t, 0, testutil.CollectAndCount(m.levels))
}
