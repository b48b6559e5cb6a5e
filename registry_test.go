package levelbook

import (
	"fmt"
	"sync"
	"testing"

	"github.com/0x5487/levelbook/structure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	registry := NewRegistry(WithChunkSize(32))

	book, err := registry.Register("BTC-USDT")
	require.NoError(t, err)
	assert.Equal(t, "BTC-USDT", book.Symbol())
	assert.Same(t, book, registry.OrderBook("BTC-USDT"))
	assert.Equal(t, 1, registry.Len())

	_, err = registry.Register("BTC-USDT")
	assert.ErrorIs(t, err, ErrSymbolExists)

	_, err = registry.Register("")
	assert.ErrorIs(t, err, ErrInvalidParam)

	assert.Nil(t, registry.OrderBook("ETH-USDT"))

	require.NoError(t, registry.Deregister("BTC-USDT"))
	assert.Nil(t, registry.OrderBook("BTC-USDT"))
	assert.Equal(t, 0, registry.Len())
	assert.ErrorIs(t, registry.Deregister("BTC-USDT"), ErrNotFound)

	// a re-registered symbol starts from an empty book
	again, err := registry.Register("BTC-USDT")
	require.NoError(t, err)
	assert.NotEqual(t, book.InstanceID(), again.InstanceID())
	assert.True(t, again.BestBid().IsNil())
}

func TestRegistry_PerSymbolOptions(t *testing.T) {
	registry := NewRegistry(WithBackend(structure.BackendSkiplist))
	publisher := NewMemoryPublishLevel()

	book, err := registry.Register("ETH-USDT", WithPublisher(publisher))
	require.NoError(t, err)

	_, err = book.AddLevel(Asks, 3000)
	require.NoError(t, err)
	assert.Equal(t, 1, publisher.Count())
}

func TestRegistry_ConcurrentRegister(t *testing.T) {
	registry := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			symbol := fmt.Sprintf("SYM-%d", i%10)
			book, err := registry.Register(symbol)
			if err != nil {
				assert.ErrorIs(t, err, ErrSymbolExists)
				return
			}
			assert.Equal(t, symbol, book.Symbol())
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, registry.Len())

	seen := 0
	registry.Range(func(symbol string, book *OrderBook) bool {
		assert.Equal(t, symbol, book.Symbol())
		seen++
		return true
	})
	assert.Equal(t, 10, seen)
}
