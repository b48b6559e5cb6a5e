package structure

// LevelType tags a price level with the side it belongs to.
// Stop indices reuse the tag to mean trigger direction rather than resting side:
// buy stops are Ask-tagged, sell stops are Bid-tagged.
type LevelType int8

const (
	Bid LevelType = 1
	Ask LevelType = 2
)

func (t LevelType) IsBid() bool { return t == Bid }

func (t LevelType) IsAsk() bool { return t == Ask }

func (t LevelType) String() string {
	switch t {
	case Bid:
		return "bid"
	case Ask:
		return "ask"
	}
	return "unknown"
}

// Handle addresses a LevelNode inside a LevelPool.
// The low 32 bits hold the slot, the high 32 bits the slot generation at acquire time.
// A handle goes stale as soon as its node is released.
type Handle uint64

// NilHandle is the absent level.
const NilHandle Handle = 0

func makeHandle(slot, gen uint32) Handle {
	return Handle(uint64(gen)<<32 | uint64(slot))
}

func (h Handle) slot() uint32 { return uint32(h) }

func (h Handle) gen() uint32 { return uint32(h >> 32) }

// IsNil reports whether h is the absent level.
func (h Handle) IsNil() bool { return h.slot() == nullSlot }

// OrderLink is an opaque reference to the resting orders of a level.
// The level book never interprets it; the matching algorithm owns both ends.
type OrderLink struct {
	Head uint64
	Tail uint64
}

// LevelNode is one price level stored in exactly one LevelIndex.
type LevelNode struct {
	Price uint64
	Type  LevelType

	// Aggregates of the resting orders, maintained by the matching algorithm.
	TotalVolume   uint64
	HiddenVolume  uint64
	VisibleVolume uint64
	Orders        uint64
	Queue         OrderLink

	// ordering links (slots), used by the tree backend
	left   uint32
	right  uint32
	parent uint32
	red    bool

	owner *LevelIndex
	gen   uint32
	inUse bool
}

// Linked reports whether the node currently belongs to an index.
func (n *LevelNode) Linked() bool { return n.owner != nil }

// IsBid reports whether the level is Bid-tagged.
func (n *LevelNode) IsBid() bool { return n.Type.IsBid() }

// IsAsk reports whether the level is Ask-tagged.
func (n *LevelNode) IsAsk() bool { return n.Type.IsAsk() }
