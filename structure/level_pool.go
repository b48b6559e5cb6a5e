package structure

import (
	"errors"
)

// LevelPool is a chunked slot arena for LevelNode values.
// This provides O(1) acquire/release with zero allocations once warmed.
//
// Design:
// - Nodes live in fixed-size chunks that are never reallocated, so a live node never moves
// - Free slots are threaded through the node's left link
// - Slot 0 is a reserved sentinel and doubles as the null link
// - Every release bumps the slot generation, turning retained handles stale

const (
	DefaultChunkSize uint32 = 1024 // Slots per chunk

	nullSlot uint32 = 0
)

var (
	ErrPoolExhausted = errors.New("level pool: max capacity reached")
)

// PoolOptions configures the level pool behavior.
type PoolOptions struct {
	// ChunkSize is the number of slots added per growth step.
	// If 0, DefaultChunkSize is used.
	ChunkSize uint32

	// MaxCapacity sets the maximum number of usable slots.
	// If 0 (default), the pool grows without limit.
	MaxCapacity uint32

	// OnGrow is called after the pool expands.
	// Can be used for logging or metrics.
	OnGrow func(oldCap, newCap uint32)
}

// LevelPool owns every LevelNode of one order book.
type LevelPool struct {
	chunks      [][]LevelNode
	chunkSize   uint32
	capacity    uint32 // usable slots, sentinel excluded
	available   uint32
	freeHead    uint32
	maxCapacity uint32
	onGrow      func(oldCap, newCap uint32)
}

// NewLevelPool creates a pool with one chunk pre-allocated.
func NewLevelPool(opts PoolOptions) *LevelPool {
	chunkSize := opts.ChunkSize
	if chunkSize == 0 {
		chunkSize = DefaultChunkSize
	}
	// the first chunk has to hold the sentinel plus at least one usable slot
	if chunkSize < 2 {
		chunkSize = 2
	}

	p := &LevelPool{
		chunkSize:   chunkSize,
		maxCapacity: opts.MaxCapacity,
		onGrow:      opts.OnGrow,
	}
	p.chunks = append(p.chunks, make([]LevelNode, chunkSize))
	p.thread(1, p.limit(chunkSize))
	return p
}

// limit caps the slot range end at MaxCapacity.
func (p *LevelPool) limit(end uint32) uint32 {
	if p.maxCapacity > 0 && end-1 > p.maxCapacity {
		return p.maxCapacity + 1
	}
	return end
}

// thread pushes slots [start, end) onto the free list.
func (p *LevelPool) thread(start, end uint32) {
	if start >= end {
		return
	}
	for i := start; i < end-1; i++ {
		p.slot(i).left = i + 1
	}
	p.slot(end - 1).left = p.freeHead
	p.freeHead = start

	added := end - start
	p.capacity += added
	p.available += added
}

// grow appends one chunk.
// Returns ErrPoolExhausted if max capacity would be exceeded.
func (p *LevelPool) grow() error {
	oldCap := p.capacity
	if p.maxCapacity > 0 && oldCap >= p.maxCapacity {
		return ErrPoolExhausted
	}

	start := uint32(len(p.chunks)) * p.chunkSize
	p.chunks = append(p.chunks, make([]LevelNode, p.chunkSize))
	p.thread(start, p.limit(start+p.chunkSize))

	if p.onGrow != nil {
		p.onGrow(oldCap, p.capacity)
	}
	return nil
}

func (p *LevelPool) slot(i uint32) *LevelNode {
	return &p.chunks[i/p.chunkSize][i%p.chunkSize]
}

// Acquire returns a handle to a zeroed node, growing by one chunk if necessary.
func (p *LevelPool) Acquire() (Handle, error) {
	if p.freeHead == nullSlot {
		if err := p.grow(); err != nil {
			return NilHandle, err
		}
	}
	idx := p.freeHead
	n := p.slot(idx)
	p.freeHead = n.left

	gen := n.gen
	*n = LevelNode{gen: gen, inUse: true}
	p.available--
	return makeHandle(idx, gen), nil
}

// Release returns the node to the free list and invalidates every copy of h.
// Releasing a stale handle or a node still linked in an index panics.
func (p *LevelPool) Release(h Handle) {
	n := p.Node(h)
	if n == nil {
		panic("LevelPool: release of stale handle")
	}
	if n.Linked() {
		panic("LevelPool: release of linked level")
	}

	*n = LevelNode{gen: n.gen + 1, left: p.freeHead}
	p.freeHead = h.slot()
	p.available++
}

// Node resolves h. Returns nil if h is nil or stale.
func (p *LevelPool) Node(h Handle) *LevelNode {
	idx := h.slot()
	if idx == nullSlot || idx >= uint32(len(p.chunks))*p.chunkSize {
		return nil
	}
	n := p.slot(idx)
	if !n.inUse || n.gen != h.gen() {
		return nil
	}
	return n
}

// handle builds the current handle of a live slot.
func (p *LevelPool) handle(idx uint32) Handle {
	if idx == nullSlot {
		return NilHandle
	}
	return makeHandle(idx, p.slot(idx).gen)
}

// Capacity returns the number of usable slots.
func (p *LevelPool) Capacity() uint32 {
	return p.capacity
}

// Available returns the number of free slots.
func (p *LevelPool) Available() uint32 {
	return p.available
}

// InUse returns the number of acquired slots.
func (p *LevelPool) InUse() uint32 {
	return p.capacity - p.available
}

// ChunkSize returns the growth step in slots.
func (p *LevelPool) ChunkSize() uint32 {
	return p.chunkSize
}
