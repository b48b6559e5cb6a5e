package structure

import (
	"github.com/huandu/skiplist"
)

// skiplistOrderer keeps slots in a huandu/skiplist sorted in traversal order,
// so the front element is always the top. Unlike the tree it allocates one
// element per level; it exists for comparison and for books where depth churn
// is low.
type skiplistOrderer struct {
	pool *LevelPool
	list *skiplist.SkipList
}

func newSkiplistOrderer(pool *LevelPool, dir Direction) *skiplistOrderer {
	var cmp skiplist.GreaterThanFunc
	if dir == Descending {
		cmp = func(lhs, rhs any) int {
			p1, _ := lhs.(uint64)
			p2, _ := rhs.(uint64)

			if p1 < p2 {
				return 1
			} else if p1 > p2 {
				return -1
			}

			return 0
		}
	} else {
		cmp = func(lhs, rhs any) int {
			p1, _ := lhs.(uint64)
			p2, _ := rhs.(uint64)

			if p1 > p2 {
				return 1
			} else if p1 < p2 {
				return -1
			}

			return 0
		}
	}

	return &skiplistOrderer{
		pool: pool,
		list: skiplist.New(cmp),
	}
}

func slotOf(el *skiplist.Element) uint32 {
	if el == nil {
		return nullSlot
	}
	idx, _ := el.Value.(uint32)
	return idx
}

func (s *skiplistOrderer) find(price uint64) uint32 {
	return slotOf(s.list.Get(price))
}

func (s *skiplistOrderer) link(idx uint32) {
	s.list.Set(s.pool.slot(idx).Price, idx)
}

func (s *skiplistOrderer) unlink(idx uint32) {
	s.list.Remove(s.pool.slot(idx).Price)
}

func (s *skiplistOrderer) first() uint32 {
	return slotOf(s.list.Front())
}

func (s *skiplistOrderer) next(idx uint32) uint32 {
	el := s.list.Get(s.pool.slot(idx).Price)
	if el == nil {
		return nullSlot
	}
	return slotOf(el.Next())
}

func (s *skiplistOrderer) prev(idx uint32) uint32 {
	el := s.list.Get(s.pool.slot(idx).Price)
	if el == nil {
		return nullSlot
	}
	return slotOf(el.Prev())
}
