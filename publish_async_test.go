package levelbook

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsyncPublishLevel_Basic(t *testing.T) {
	downstream := NewMemoryPublishLevel()
	publisher := NewAsyncPublishLevel(16, downstream)
	publisher.Start()

	for i := uint64(1); i <= 40; i++ {
		publisher.Publish(&LevelUpdate{SequenceID: i, Symbol: "BTC-USDT", Price: i * 10})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, publisher.Shutdown(ctx))

	require.Equal(t, 40, downstream.Count())
	for i, u := range downstream.Logs() {
		assert.Equal(t, uint64(i+1), u.SequenceID)
		assert.Equal(t, uint64(i+1)*10, u.Price)
	}
	assert.Equal(t, int64(0), publisher.Pending())
}

func TestAsyncPublishLevel_CopiesUpdates(t *testing.T) {
	downstream := NewMemoryPublishLevel()
	publisher := NewAsyncPublishLevel(4, downstream)
	publisher.Start()

	u := &LevelUpdate{SequenceID: 1, Price: 100}
	publisher.Publish(u)
	// the caller recycles its update as soon as Publish returns
	*u = LevelUpdate{}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, publisher.Shutdown(ctx))

	require.Equal(t, 1, downstream.Count())
	assert.Equal(t, uint64(100), downstream.Get(0).Price)
}

func TestAsyncPublishLevel_DropAfterShutdown(t *testing.T) {
	downstream := NewMemoryPublishLevel()
	publisher := NewAsyncPublishLevel(4, downstream)
	publisher.Start()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, publisher.Shutdown(ctx))

	publisher.Publish(&LevelUpdate{SequenceID: 1})
	assert.Equal(t, 0, downstream.Count())
}

func TestAsyncPublishLevel_ShutdownTimeout(t *testing.T) {
	release := make(chan struct{})
	downstream := &blockingPublishLevel{release: release}
	publisher := NewAsyncPublishLevel(4, downstream)
	publisher.Start()
	defer close(release)

	publisher.Publish(&LevelUpdate{SequenceID: 1})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, publisher.Shutdown(ctx), ErrPublisherTimeout)
}

func TestAsyncPublishLevel_PowerOf2Validation(t *testing.T) {
	downstream := NewDiscardPublishLevel()

	assert.Panics(t, func() { NewAsyncPublishLevel(15, downstream) })
	assert.Panics(t, func() { NewAsyncPublishLevel(0, downstream) })
	assert.Panics(t, func() { NewAsyncPublishLevel(-1, downstream) })
	assert.NotPanics(t, func() { NewAsyncPublishLevel(16, downstream) })
}

func TestAsyncPublishLevel_SharedByBooks(t *testing.T) {
	downstream := NewMemoryPublishLevel()
	publisher := NewAsyncPublishLevel(64, downstream)
	publisher.Start()

	registry := NewRegistry(WithPublisher(publisher))

	const numBooks = 4
	const levelsPerBook = 100

	var wg sync.WaitGroup
	wg.Add(numBooks)
	for i := 0; i < numBooks; i++ {
		book, err := registry.Register(fmt.Sprintf("SYM-%d", i))
		require.NoError(t, err)

		// each book has its own writer
		go func(book *OrderBook) {
			defer wg.Done()
			for price := uint64(1); price <= levelsPerBook; price++ {
				_, _ = book.AddLevel(Bids, price)
			}
		}(book)
	}
	wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, publisher.Shutdown(ctx))

	require.Equal(t, numBooks*levelsPerBook, downstream.Count())

	// per book, updates arrive in sequence order without gaps
	last := make(map[string]uint64)
	for _, u := range downstream.Logs() {
		assert.Equal(t, UpdateTypeAdd, u.Type)
		assert.Equal(t, last[u.Symbol]+1, u.SequenceID, u.Symbol)
		last[u.Symbol] = u.SequenceID
	}
	assert.Len(t, last, numBooks)
}

type blockingPublishLevel struct {
	release chan struct{}
}

func (p *blockingPublishLevel) Publish(updates ...*LevelUpdate) {
	<-p.release
}
