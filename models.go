package levelbook

import (
	"github.com/0x5487/levelbook/structure"
)

type Side int8

const (
	Buy  Side = 1
	Sell Side = 2
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	}
	return "unknown"
}

// Order is the part of an executed order the book needs to track market prices.
// Orders themselves are owned by the matching algorithm.
type Order struct {
	ID       uint64 `json:"id"`
	Side     Side   `json:"side"`
	Price    uint64 `json:"price"`    // Execution price, final when UpdateLastPrice is called
	Quantity uint64 `json:"quantity"` // Executed quantity
}

func (o *Order) IsBuy() bool { return o.Side == Buy }

func (o *Order) IsSell() bool { return o.Side == Sell }

// IndexKind names one of the six price-level indices of a book.
type IndexKind int8

const (
	Bids IndexKind = iota
	Asks
	BuyStop
	SellStop
	TrailingBuyStop
	TrailingSellStop

	indexKindCount
)

// indexLayout fixes the side tag and traversal direction of every index.
// Stop indices reuse the tag for trigger direction: buy stops trigger on rising
// prices and walk upwards, sell stops trigger on falling prices and walk downwards.
var indexLayout = [indexKindCount]struct {
	name string
	side structure.LevelType
	dir  structure.Direction
}{
	Bids:             {"Bids", structure.Bid, structure.Descending},
	Asks:             {"Asks", structure.Ask, structure.Ascending},
	BuyStop:          {"BuyStop", structure.Ask, structure.Ascending},
	SellStop:         {"SellStop", structure.Bid, structure.Descending},
	TrailingBuyStop:  {"TrailingBuyStop", structure.Ask, structure.Ascending},
	TrailingSellStop: {"TrailingSellStop", structure.Bid, structure.Descending},
}

func (k IndexKind) valid() bool {
	return k >= 0 && k < indexKindCount
}

func (k IndexKind) String() string {
	if !k.valid() {
		return "unknown"
	}
	return indexLayout[k].name
}

// BookStats contains the number of levels in each index and the pool usage.
type BookStats struct {
	Bids             int    `json:"bids"`
	Asks             int    `json:"asks"`
	BuyStop          int    `json:"buy_stop"`
	SellStop         int    `json:"sell_stop"`
	TrailingBuyStop  int    `json:"trailing_buy_stop"`
	TrailingSellStop int    `json:"trailing_sell_stop"`
	PoolCapacity     uint32 `json:"pool_capacity"`
	PoolAvailable    uint32 `json:"pool_available"`
}
