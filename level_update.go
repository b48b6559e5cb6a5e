package levelbook

import (
	"sync"
	"time"

	"github.com/0x5487/levelbook/structure"
)

type UpdateType string

const (
	UpdateTypeAdd    UpdateType = "add"
	UpdateTypeUpdate UpdateType = "update"
	UpdateTypeDelete UpdateType = "delete"
)

// LevelUpdate describes a change of one price level.
// SequenceID increases by one for every update of a book and can be used by
// downstream consumers for gap detection.
// Top is true when the level is (or, for deletes, was) the best level of its index.
type LevelUpdate struct {
	SequenceID    uint64              `json:"seq_id"`
	Type          UpdateType          `json:"type"`
	Symbol        string              `json:"symbol"`
	Index         IndexKind           `json:"index"`
	Side          structure.LevelType `json:"side"`
	Price         uint64              `json:"price"`
	TotalVolume   uint64              `json:"total_volume"`
	HiddenVolume  uint64              `json:"hidden_volume"`
	VisibleVolume uint64              `json:"visible_volume"`
	Orders        uint64              `json:"orders"`
	Top           bool                `json:"top"`
	CreatedAt     time.Time           `json:"created_at"`
}

var levelUpdatePool = sync.Pool{
	New: func() any {
		return new(LevelUpdate)
	},
}

func acquireLevelUpdate() *LevelUpdate {
	return levelUpdatePool.Get().(*LevelUpdate)
}

func releaseLevelUpdate(u *LevelUpdate) {
	*u = LevelUpdate{}
	levelUpdatePool.Put(u)
}

func newLevelUpdate(seqID uint64, typ UpdateType, symbol string, kind IndexKind, level *structure.LevelNode, top bool) *LevelUpdate {
	u := acquireLevelUpdate()
	u.SequenceID = seqID
	u.Type = typ
	u.Symbol = symbol
	u.Index = kind
	u.Side = level.Type
	u.Price = level.Price
	u.TotalVolume = level.TotalVolume
	u.HiddenVolume = level.HiddenVolume
	u.VisibleVolume = level.VisibleVolume
	u.Orders = level.Orders
	u.Top = top
	u.CreatedAt = time.Now().UTC()
	return u
}
