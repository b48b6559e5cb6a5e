package levelbook

import (
	"fmt"
	"log/slog"

	"github.com/0x5487/levelbook/structure"
	"github.com/rs/xid"
)

// OrderBook holds the price-level indices of one instrument and the market
// prices derived from them.
//
// An OrderBook is not safe for concurrent use: exactly one goroutine (the
// matching loop of the instrument) may call its methods at a time. No method
// blocks or performs I/O.
type OrderBook struct {
	symbol     string
	instanceID xid.ID
	seqID      uint64 // last LevelUpdate sequence ID
	pool       *structure.LevelPool
	indices    [indexKindCount]*structure.LevelIndex

	lastBidPrice     uint64
	lastAskPrice     uint64
	trailingBidPrice uint64
	trailingAskPrice uint64

	publisher  PublishLevel
	metricsSet *Metrics
	metrics    *bookMetrics
	priceScale int32
}

// NewOrderBook creates an empty order book for symbol.
func NewOrderBook(symbol string, opts ...OrderBookOption) *OrderBook {
	cfg := defaultOrderBookConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	book := &OrderBook{
		symbol:           symbol,
		instanceID:       xid.New(),
		lastBidPrice:     MinPrice,
		lastAskPrice:     MaxPrice,
		trailingBidPrice: MinPrice,
		trailingAskPrice: MaxPrice,
		publisher:        cfg.publisher,
		priceScale:       cfg.priceScale,
	}
	if cfg.metrics != nil {
		book.metricsSet = cfg.metrics
		book.metrics = cfg.metrics.forBook(symbol)
	}

	book.pool = structure.NewLevelPool(structure.PoolOptions{
		ChunkSize:   cfg.chunkSize,
		MaxCapacity: cfg.maxLevels,
		OnGrow:      book.onPoolGrow,
	})
	for k := IndexKind(0); k < indexKindCount; k++ {
		layout := indexLayout[k]
		book.indices[k] = structure.NewLevelIndex(book.pool, layout.name, layout.side, layout.dir, cfg.backend)
	}
	book.reportPool()

	return book
}

func (book *OrderBook) onPoolGrow(oldCap, newCap uint32) {
	logger.Info("level pool grew", "symbol", book.symbol, "old_capacity", oldCap, "new_capacity", newCap)
	if book.metrics != nil {
		book.metrics.poolGrows.Inc()
	}
}

// Symbol returns the instrument symbol.
func (book *OrderBook) Symbol() string {
	return book.symbol
}

// InstanceID identifies this book instance in logs, distinguishing re-registrations of a symbol.
func (book *OrderBook) InstanceID() string {
	return book.instanceID.String()
}

// Index returns the index of kind, or nil for an unknown kind.
func (book *OrderBook) Index(kind IndexKind) *structure.LevelIndex {
	if !kind.valid() {
		return nil
	}
	return book.indices[kind]
}

// AddLevel returns the level at price in the index of kind, creating it on first interest.
// On ErrPoolExhausted no index is modified and the caller must abort the order event.
func (book *OrderBook) AddLevel(kind IndexKind, price uint64) (structure.Handle, error) {
	if !kind.valid() {
		return structure.NilHandle, ErrInvalidParam
	}
	index := book.indices[kind]

	h, inserted, err := index.InsertOrGet(price)
	if err != nil {
		logger.Error("failed to add level", "symbol", book.symbol, "index", kind.String(), "price", price, "error", err)
		return structure.NilHandle, err
	}
	if inserted {
		book.publish(UpdateTypeAdd, kind, h, h == index.Top())
		book.reportIndex(kind)
	}
	return h, nil
}

// DeleteLevel removes the level from the index of kind and releases it.
// h is stale once DeleteLevel returns.
func (book *OrderBook) DeleteLevel(kind IndexKind, h structure.Handle) error {
	if !kind.valid() {
		return ErrInvalidParam
	}
	index := book.indices[kind]
	if !index.Contains(h) {
		logger.Warn("delete of unknown level", "symbol", book.symbol, "index", kind.String())
		return ErrLevelNotFound
	}

	book.publish(UpdateTypeDelete, kind, h, h == index.Top())
	if err := index.Remove(h); err != nil {
		return err
	}
	book.reportIndex(kind)
	return nil
}

// UpdateLevel publishes the current aggregates of a level after the matching
// algorithm changed them.
func (book *OrderBook) UpdateLevel(kind IndexKind, h structure.Handle) error {
	if !kind.valid() {
		return ErrInvalidParam
	}
	index := book.indices[kind]
	if !index.Contains(h) {
		return ErrLevelNotFound
	}
	book.publish(UpdateTypeUpdate, kind, h, h == index.Top())
	return nil
}

// Level returns a read-only copy of the level. ok is false for stale handles.
func (book *OrderBook) Level(h structure.Handle) (level structure.LevelNode, ok bool) {
	n := book.pool.Node(h)
	if n == nil {
		return structure.LevelNode{}, false
	}
	return *n, true
}

// MutableLevel resolves h for the matching algorithm's aggregate bookkeeping.
// Returns nil for stale handles. The pointer must not be retained past DeleteLevel.
func (book *OrderBook) MutableLevel(h structure.Handle) *structure.LevelNode {
	return book.pool.Node(h)
}

// Bid returns the bid level at price, or NilHandle.
func (book *OrderBook) Bid(price uint64) structure.Handle {
	return book.indices[Bids].Find(price)
}

// Ask returns the ask level at price, or NilHandle.
func (book *OrderBook) Ask(price uint64) structure.Handle {
	return book.indices[Asks].Find(price)
}

func (book *OrderBook) BuyStopLevel(price uint64) structure.Handle {
	return book.indices[BuyStop].Find(price)
}

func (book *OrderBook) SellStopLevel(price uint64) structure.Handle {
	return book.indices[SellStop].Find(price)
}

func (book *OrderBook) TrailingBuyStopLevel(price uint64) structure.Handle {
	return book.indices[TrailingBuyStop].Find(price)
}

func (book *OrderBook) TrailingSellStopLevel(price uint64) structure.Handle {
	return book.indices[TrailingSellStop].Find(price)
}

func (book *OrderBook) BestBid() structure.Handle { return book.indices[Bids].Top() }

func (book *OrderBook) BestAsk() structure.Handle { return book.indices[Asks].Top() }

func (book *OrderBook) BestBuyStop() structure.Handle { return book.indices[BuyStop].Top() }

func (book *OrderBook) BestSellStop() structure.Handle { return book.indices[SellStop].Top() }

func (book *OrderBook) BestTrailingBuyStop() structure.Handle {
	return book.indices[TrailingBuyStop].Top()
}

func (book *OrderBook) BestTrailingSellStop() structure.Handle {
	return book.indices[TrailingSellStop].Top()
}

// nextBySide walks bidIndex for bid-tagged levels and askIndex for ask-tagged ones.
func (book *OrderBook) nextBySide(h structure.Handle, bidIndex, askIndex IndexKind) structure.Handle {
	n := book.pool.Node(h)
	if n == nil {
		return structure.NilHandle
	}
	if n.IsBid() {
		return book.indices[bidIndex].Next(h)
	}
	return book.indices[askIndex].Next(h)
}

// NextLevel walks the active book away from the touch: the next lower bid for
// a bid level, the next higher ask for an ask level. Returns NilHandle at the end.
func (book *OrderBook) NextLevel(h structure.Handle) structure.Handle {
	return book.nextBySide(h, Bids, Asks)
}

// NextStopLevel walks pending stops in the direction prices move to trigger
// them: downwards through sell stops, upwards through buy stops.
func (book *OrderBook) NextStopLevel(h structure.Handle) structure.Handle {
	return book.nextBySide(h, SellStop, BuyStop)
}

// NextTrailingStopLevel is NextStopLevel over the trailing stop indices.
func (book *OrderBook) NextTrailingStopLevel(h structure.Handle) structure.Handle {
	return book.nextBySide(h, TrailingSellStop, TrailingBuyStop)
}

// MarketPriceBid is the price sell stops trigger against: the higher of the
// last traded bid price and the best bid.
func (book *OrderBook) MarketPriceBid() uint64 {
	best := MinPrice
	if n := book.pool.Node(book.BestBid()); n != nil {
		best = n.Price
	}
	return max(book.lastBidPrice, best)
}

// MarketPriceAsk is the price buy stops trigger against: the lower of the
// last traded ask price and the best ask.
func (book *OrderBook) MarketPriceAsk() uint64 {
	best := MaxPrice
	if n := book.pool.Node(book.BestAsk()); n != nil {
		best = n.Price
	}
	return min(book.lastAskPrice, best)
}

// UpdateLastPrice records the execution price of order on its side.
// It must be called once per execution, after price and quantity are final and
// before any stop-trigger check that depends on the market price.
func (book *OrderBook) UpdateLastPrice(order *Order) {
	if order.IsBuy() {
		book.lastBidPrice = order.Price
		if book.metrics != nil {
			book.metrics.lastBid.Set(float64(order.Price))
		}
		return
	}
	book.lastAskPrice = order.Price
	if book.metrics != nil {
		book.metrics.lastAsk.Set(float64(order.Price))
	}
}

func (book *OrderBook) LastBidPrice() uint64 { return book.lastBidPrice }

func (book *OrderBook) LastAskPrice() uint64 { return book.lastAskPrice }

func (book *OrderBook) TrailingBidPrice() uint64 { return book.trailingBidPrice }

func (book *OrderBook) TrailingAskPrice() uint64 { return book.trailingAskPrice }

// UpdateTrailingPrices stores the reference prices the matching algorithm last
// recalculated trailing stops against.
func (book *OrderBook) UpdateTrailingPrices(bid, ask uint64) {
	book.trailingBidPrice = bid
	book.trailingAskPrice = ask
}

// Depth returns copies of up to limit levels of kind, best first.
func (book *OrderBook) Depth(kind IndexKind, limit int) ([]structure.LevelNode, error) {
	if !kind.valid() || limit <= 0 {
		return nil, ErrInvalidParam
	}
	index := book.indices[kind]

	result := make([]structure.LevelNode, 0, min(limit, index.Len()))
	index.Each(func(_ structure.Handle, n *structure.LevelNode) bool {
		result = append(result, *n)
		return len(result) < limit
	})
	return result, nil
}

// Stats returns the number of levels per index and the pool usage.
func (book *OrderBook) Stats() BookStats {
	return BookStats{
		Bids:             book.indices[Bids].Len(),
		Asks:             book.indices[Asks].Len(),
		BuyStop:          book.indices[BuyStop].Len(),
		SellStop:         book.indices[SellStop].Len(),
		TrailingBuyStop:  book.indices[TrailingBuyStop].Len(),
		TrailingSellStop: book.indices[TrailingSellStop].Len(),
		PoolCapacity:     book.pool.Capacity(),
		PoolAvailable:    book.pool.Available(),
	}
}

// String renders the symbol and index sizes for logs. Not a stable format.
func (book *OrderBook) String() string {
	return fmt.Sprintf("OrderBook(Symbol=%s; Bids=%d; Asks=%d; BuyStop=%d; SellStop=%d; TrailingBuyStop=%d; TrailingSellStop=%d)",
		book.symbol,
		book.indices[Bids].Len(),
		book.indices[Asks].Len(),
		book.indices[BuyStop].Len(),
		book.indices[SellStop].Len(),
		book.indices[TrailingBuyStop].Len(),
		book.indices[TrailingSellStop].Len(),
	)
}

// LogValue implements slog.LogValuer.
func (book *OrderBook) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("symbol", book.symbol),
		slog.String("instance", book.instanceID.String()),
		slog.Int("bids", book.indices[Bids].Len()),
		slog.Int("asks", book.indices[Asks].Len()),
		slog.Int("buy_stop", book.indices[BuyStop].Len()),
		slog.Int("sell_stop", book.indices[SellStop].Len()),
		slog.Int("trailing_buy_stop", book.indices[TrailingBuyStop].Len()),
		slog.Int("trailing_sell_stop", book.indices[TrailingSellStop].Len()),
		slog.String("market_bid", formatPrice(book.MarketPriceBid(), book.priceScale)),
		slog.String("market_ask", formatPrice(book.MarketPriceAsk(), book.priceScale)),
	)
}

func (book *OrderBook) publish(typ UpdateType, kind IndexKind, h structure.Handle, top bool) {
	if book.publisher == nil {
		return
	}
	book.seqID++
	u := newLevelUpdate(book.seqID, typ, book.symbol, kind, book.pool.Node(h), top)
	book.publisher.Publish(u)
	releaseLevelUpdate(u)
}

func (book *OrderBook) reportIndex(kind IndexKind) {
	if book.metrics == nil {
		return
	}
	book.metrics.levels[kind].Set(float64(book.indices[kind].Len()))
	book.reportPool()
}

func (book *OrderBook) reportPool() {
	if book.metrics == nil {
		return
	}
	book.metrics.poolCapacity.Set(float64(book.pool.Capacity()))
	book.metrics.poolAvailable.Set(float64(book.pool.Available()))
}
