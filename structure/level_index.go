package structure

import (
	"errors"
)

var (
	ErrLevelNotFound = errors.New("level index: level not found")
)

// Direction is the traversal order of an index, starting from its top.
type Direction int8

const (
	Ascending  Direction = 1 // top is the lowest price
	Descending Direction = 2 // top is the highest price
)

func (d Direction) String() string {
	if d == Descending {
		return "descending"
	}
	return "ascending"
}

// before reports whether price a comes before price b in traversal order.
func (d Direction) before(a, b uint64) bool {
	if d == Descending {
		return a > b
	}
	return a < b
}

// Backend selects the ordered structure behind a LevelIndex.
type Backend int8

const (
	BackendTree     Backend = iota // arena LLRB tree linked through the pool nodes
	BackendSkiplist                // github.com/huandu/skiplist keyed by price
)

func (b Backend) String() string {
	if b == BackendSkiplist {
		return "skiplist"
	}
	return "llrb"
}

// orderer is the ordered structure behind an index. It works on pool slots and
// never acquires or releases nodes itself.
type orderer interface {
	find(price uint64) uint32
	link(idx uint32)
	unlink(idx uint32)
	first() uint32
	next(idx uint32) uint32 // in traversal order
	prev(idx uint32) uint32 // against traversal order
}

// LevelIndex is a price-keyed ordered set of levels backed by a LevelPool.
// Every node it links carries the index's side tag. Top is cached and kept
// current inside InsertOrGet and Remove.
type LevelIndex struct {
	name  string
	side  LevelType
	dir   Direction
	pool  *LevelPool
	ord   orderer
	top   uint32
	count int
}

// NewLevelIndex creates an empty index over pool.
func NewLevelIndex(pool *LevelPool, name string, side LevelType, dir Direction, backend Backend) *LevelIndex {
	x := &LevelIndex{
		name: name,
		side: side,
		dir:  dir,
		pool: pool,
	}
	switch backend {
	case BackendSkiplist:
		x.ord = newSkiplistOrderer(pool, dir)
	default:
		x.ord = newTreeOrderer(pool, dir)
	}
	return x
}

// Find returns the level at price, or NilHandle.
func (x *LevelIndex) Find(price uint64) Handle {
	return x.pool.handle(x.ord.find(price))
}

// InsertOrGet returns the level at price, creating it on first interest.
// inserted is true when a new node was acquired. If the pool is exhausted the
// error is returned and the index is left untouched.
func (x *LevelIndex) InsertOrGet(price uint64) (h Handle, inserted bool, err error) {
	if idx := x.ord.find(price); idx != nullSlot {
		return x.pool.handle(idx), false, nil
	}

	h, err = x.pool.Acquire()
	if err != nil {
		return NilHandle, false, err
	}
	idx := h.slot()
	n := x.pool.slot(idx)
	n.Price = price
	n.Type = x.side
	n.owner = x

	x.ord.link(idx)
	x.count++

	if x.top == nullSlot || x.dir.before(price, x.pool.slot(x.top).Price) {
		x.top = idx
	}
	return h, true, nil
}

// Remove unlinks the level and releases it to the pool.
// Returns ErrLevelNotFound if h is stale or belongs to another index.
func (x *LevelIndex) Remove(h Handle) error {
	n := x.pool.Node(h)
	if n == nil || n.owner != x {
		return ErrLevelNotFound
	}
	idx := h.slot()

	if idx == x.top {
		x.top = x.ord.next(idx)
	}
	x.ord.unlink(idx)
	n.owner = nil
	n.left, n.right, n.parent, n.red = nullSlot, nullSlot, nullSlot, false
	x.count--

	x.pool.Release(h)
	return nil
}

// Contains reports whether h is a live level of this index.
func (x *LevelIndex) Contains(h Handle) bool {
	n := x.pool.Node(h)
	return n != nil && n.owner == x
}

// Top returns the best level by direction, or NilHandle if empty.
func (x *LevelIndex) Top() Handle {
	return x.pool.handle(x.top)
}

// Next returns the level after h in traversal order, or NilHandle at the end
// or when h is not a level of this index.
func (x *LevelIndex) Next(h Handle) Handle {
	if !x.Contains(h) {
		return NilHandle
	}
	return x.pool.handle(x.ord.next(h.slot()))
}

// Prev returns the level before h in traversal order (towards the top).
func (x *LevelIndex) Prev(h Handle) Handle {
	if !x.Contains(h) {
		return NilHandle
	}
	return x.pool.handle(x.ord.prev(h.slot()))
}

// Each walks the levels from the top until fn returns false.
func (x *LevelIndex) Each(fn func(h Handle, n *LevelNode) bool) {
	for idx := x.top; idx != nullSlot; idx = x.ord.next(idx) {
		if !fn(x.pool.handle(idx), x.pool.slot(idx)) {
			return
		}
	}
}

// Prices returns all prices in traversal order (for testing/debugging).
func (x *LevelIndex) Prices() []uint64 {
	result := make([]uint64, 0, x.count)
	x.Each(func(_ Handle, n *LevelNode) bool {
		result = append(result, n.Price)
		return true
	})
	return result
}

// Node resolves a handle of this index. Returns nil for stale or foreign handles.
func (x *LevelIndex) Node(h Handle) *LevelNode {
	n := x.pool.Node(h)
	if n == nil || n.owner != x {
		return nil
	}
	return n
}

// Len returns the number of levels.
func (x *LevelIndex) Len() int {
	return x.count
}

func (x *LevelIndex) Name() string {
	return x.name
}

func (x *LevelIndex) Side() LevelType {
	return x.side
}

func (x *LevelIndex) Direction() Direction {
	return x.dir
}
