package structure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelPool_AcquireRelease(t *testing.T) {
	pool := NewLevelPool(PoolOptions{ChunkSize: 8})

	// slot 0 is the sentinel
	assert.Equal(t, uint32(7), pool.Capacity())
	assert.Equal(t, uint32(7), pool.Available())

	h, err := pool.Acquire()
	require.NoError(t, err)
	assert.False(t, h.IsNil())
	assert.Equal(t, uint32(6), pool.Available())
	assert.Equal(t, uint32(1), pool.InUse())

	n := pool.Node(h)
	require.NotNil(t, n)
	assert.Equal(t, uint64(0), n.Price)
	assert.False(t, n.Linked())

	n.Price = 100
	n.TotalVolume = 5
	pool.Release(h)
	assert.Equal(t, uint32(7), pool.Available())

	// stale after release
	assert.Nil(t, pool.Node(h))

	// reused slot comes back zeroed with a new generation
	h2, err := pool.Acquire()
	require.NoError(t, err)
	assert.Equal(t, h.slot(), h2.slot())
	assert.NotEqual(t, h, h2)
	n2 := pool.Node(h2)
	require.NotNil(t, n2)
	assert.Equal(t, uint64(0), n2.Price)
	assert.Equal(t, uint64(0), n2.TotalVolume)
	assert.Nil(t, pool.Node(h))
}

func TestLevelPool_NilHandle(t *testing.T) {
	pool := NewLevelPool(PoolOptions{})

	assert.True(t, NilHandle.IsNil())
	assert.Nil(t, pool.Node(NilHandle))
	assert.Nil(t, pool.Node(makeHandle(1<<20, 0)))
	assert.Equal(t, DefaultChunkSize, pool.ChunkSize())
}

func TestLevelPool_Grow(t *testing.T) {
	var grows [][2]uint32
	pool := NewLevelPool(PoolOptions{
		ChunkSize: 4,
		OnGrow: func(oldCap, newCap uint32) {
			grows = append(grows, [2]uint32{oldCap, newCap})
		},
	})
	assert.Equal(t, uint32(3), pool.Capacity())

	handles := make([]Handle, 0, 10)
	for i := 0; i < 10; i++ {
		h, err := pool.Acquire()
		require.NoError(t, err)
		pool.Node(h).Price = uint64(i)
		handles = append(handles, h)
	}

	assert.Equal(t, [][2]uint32{{3, 7}, {7, 11}}, grows)
	assert.Equal(t, uint32(11), pool.Capacity())
	assert.Equal(t, uint32(1), pool.Available())

	// nodes from earlier chunks are untouched by growth
	for i, h := range handles {
		n := pool.Node(h)
		require.NotNil(t, n)
		assert.Equal(t, uint64(i), n.Price)
	}
}

func TestLevelPool_MaxCapacity(t *testing.T) {
	pool := NewLevelPool(PoolOptions{ChunkSize: 4, MaxCapacity: 5})

	for i := 0; i < 5; i++ {
		_, err := pool.Acquire()
		require.NoError(t, err)
	}
	assert.Equal(t, uint32(5), pool.Capacity())

	h, err := pool.Acquire()
	assert.ErrorIs(t, err, ErrPoolExhausted)
	assert.True(t, h.IsNil())
	assert.Equal(t, uint32(5), pool.InUse())
}

func TestLevelPool_ReleaseDefects(t *testing.T) {
	pool := NewLevelPool(PoolOptions{ChunkSize: 4})

	h, err := pool.Acquire()
	require.NoError(t, err)
	pool.Release(h)

	assert.Panics(t, func() { pool.Release(h) })

	x := NewLevelIndex(pool, "bids", Bid, Descending, BackendTree)
	linked, _, err := x.InsertOrGet(100)
	require.NoError(t, err)
	assert.Panics(t, func() { pool.Release(linked) })

	// the failed release did not disturb the index
	assert.Equal(t, linked, x.Find(100))
	assert.Equal(t, 1, x.Len())
}
