package structure

// Left-Leaning Red-Black tree over LevelPool slots.
// Links live inside the pooled LevelNode, so the tree itself never allocates.
//
// Design Goals:
// 1. Zero allocation on hot path (insert/delete/search)
// 2. O(log N) worst-case performance guarantee
// 3. Node identity is stable: deletion relinks the successor node in place of
//    the removed one instead of copying keys, so handles held by callers stay valid
//
// Reference: Robert Sedgewick's LLRB implementation
// https://sedgewick.io/wp-content/themes/flavor/uploads/2016/02/LLRB.pdf
//
// Keys are always ordered ascending inside the tree; the index direction only
// decides which end is the top and which way next walks.

type treeOrderer struct {
	pool *LevelPool
	dir  Direction
	root uint32
}

func newTreeOrderer(pool *LevelPool, dir Direction) *treeOrderer {
	return &treeOrderer{pool: pool, dir: dir}
}

func (t *treeOrderer) node(idx uint32) *LevelNode {
	return t.pool.slot(idx)
}

func (t *treeOrderer) isRed(idx uint32) bool {
	if idx == nullSlot {
		return false
	}
	return t.node(idx).red
}

func (t *treeOrderer) setLeft(h, c uint32) {
	t.node(h).left = c
	if c != nullSlot {
		t.node(c).parent = h
	}
}

func (t *treeOrderer) setRight(h, c uint32) {
	t.node(h).right = c
	if c != nullSlot {
		t.node(c).parent = h
	}
}

// rotateLeft performs a left rotation.
//
//	  |              |
//	  h              x
//	 / \    =>      / \
//	a   x          h   c
//	   / \        / \
//	  b   c      a   b
func (t *treeOrderer) rotateLeft(h uint32) uint32 {
	hn := t.node(h)
	x := hn.right
	xn := t.node(x)
	t.setRight(h, xn.left)
	xn.parent = hn.parent
	t.setLeft(x, h)
	xn.red = hn.red
	hn.red = true
	return x
}

// rotateRight performs a right rotation.
//
//	    |          |
//	    h          x
//	   / \   =>   / \
//	  x   c      a   h
//	 / \            / \
//	a   b          b   c
func (t *treeOrderer) rotateRight(h uint32) uint32 {
	hn := t.node(h)
	x := hn.left
	xn := t.node(x)
	t.setLeft(h, xn.right)
	xn.parent = hn.parent
	t.setRight(x, h)
	xn.red = hn.red
	hn.red = true
	return x
}

// flipColors flips the colors of a node and its children.
func (t *treeOrderer) flipColors(h uint32) {
	hn := t.node(h)
	hn.red = !hn.red
	if hn.left != nullSlot {
		t.node(hn.left).red = !t.node(hn.left).red
	}
	if hn.right != nullSlot {
		t.node(hn.right).red = !t.node(hn.right).red
	}
}

func (t *treeOrderer) find(price uint64) uint32 {
	h := t.root
	for h != nullSlot {
		n := t.node(h)
		if price < n.Price {
			h = n.left
		} else if price > n.Price {
			h = n.right
		} else {
			return h
		}
	}
	return nullSlot
}

// link inserts a fresh node. The caller guarantees its price is not present.
func (t *treeOrderer) link(idx uint32) {
	n := t.node(idx)
	n.left, n.right, n.parent = nullSlot, nullSlot, nullSlot
	n.red = true // New nodes are always red in LLRB

	t.root = t.insert(t.root, idx, n.Price)
	root := t.node(t.root)
	root.red = false // Root is always black
	root.parent = nullSlot
}

func (t *treeOrderer) insert(h, idx uint32, price uint64) uint32 {
	if h == nullSlot {
		return idx
	}

	hn := t.node(h)
	switch {
	case price < hn.Price:
		t.setLeft(h, t.insert(hn.left, idx, price))
	case price > hn.Price:
		t.setRight(h, t.insert(hn.right, idx, price))
	default:
		panic("level tree: duplicate price")
	}

	return t.balance(h)
}

// unlink removes a node that is known to be in the tree.
func (t *treeOrderer) unlink(idx uint32) {
	price := t.node(idx).Price

	rn := t.node(t.root)
	if !t.isRed(rn.left) && !t.isRed(rn.right) {
		rn.red = true
	}
	t.root = t.delete(t.root, price)
	if t.root != nullSlot {
		root := t.node(t.root)
		root.red = false
		root.parent = nullSlot
	}

	n := t.node(idx)
	n.left, n.right, n.parent, n.red = nullSlot, nullSlot, nullSlot, false
}

func (t *treeOrderer) delete(h uint32, price uint64) uint32 {
	if price < t.node(h).Price {
		hn := t.node(h)
		if !t.isRed(hn.left) && !t.isRed(t.node(hn.left).left) {
			h = t.moveRedLeft(h)
		}
		t.setLeft(h, t.delete(t.node(h).left, price))
		return t.balance(h)
	}

	if t.isRed(t.node(h).left) {
		h = t.rotateRight(h)
	}
	if price == t.node(h).Price && t.node(h).right == nullSlot {
		return nullSlot
	}
	hn := t.node(h)
	if !t.isRed(hn.right) && !t.isRed(t.node(hn.right).left) {
		h = t.moveRedRight(h)
	}

	hn = t.node(h)
	if price == hn.Price {
		// Splice the minimum of the right subtree into h's position.
		m := t.min(hn.right)
		right := t.deleteMin(hn.right)
		mn := t.node(m)
		t.setLeft(m, hn.left)
		t.setRight(m, right)
		mn.red = hn.red
		mn.parent = hn.parent
		h = m
	} else {
		t.setRight(h, t.delete(hn.right, price))
	}
	return t.balance(h)
}

// deleteMin detaches the minimum node of the subtree rooted at h.
func (t *treeOrderer) deleteMin(h uint32) uint32 {
	hn := t.node(h)
	if hn.left == nullSlot {
		return nullSlot
	}
	if !t.isRed(hn.left) && !t.isRed(t.node(hn.left).left) {
		h = t.moveRedLeft(h)
	}
	t.setLeft(h, t.deleteMin(t.node(h).left))
	return t.balance(h)
}

func (t *treeOrderer) moveRedLeft(h uint32) uint32 {
	t.flipColors(h)
	if t.isRed(t.node(t.node(h).right).left) {
		t.setRight(h, t.rotateRight(t.node(h).right))
		h = t.rotateLeft(h)
		t.flipColors(h)
	}
	return h
}

func (t *treeOrderer) moveRedRight(h uint32) uint32 {
	t.flipColors(h)
	if t.isRed(t.node(t.node(h).left).left) {
		h = t.rotateRight(h)
		t.flipColors(h)
	}
	return h
}

func (t *treeOrderer) balance(h uint32) uint32 {
	if t.isRed(t.node(h).right) && !t.isRed(t.node(h).left) {
		h = t.rotateLeft(h)
	}
	if t.isRed(t.node(h).left) && t.isRed(t.node(t.node(h).left).left) {
		h = t.rotateRight(h)
	}
	if t.isRed(t.node(h).left) && t.isRed(t.node(h).right) {
		t.flipColors(h)
	}
	return h
}

func (t *treeOrderer) min(h uint32) uint32 {
	if h == nullSlot {
		return nullSlot
	}
	for t.node(h).left != nullSlot {
		h = t.node(h).left
	}
	return h
}

func (t *treeOrderer) max(h uint32) uint32 {
	if h == nullSlot {
		return nullSlot
	}
	for t.node(h).right != nullSlot {
		h = t.node(h).right
	}
	return h
}

func (t *treeOrderer) successor(idx uint32) uint32 {
	n := t.node(idx)
	if n.right != nullSlot {
		return t.min(n.right)
	}
	parent := n.parent
	for parent != nullSlot && idx == t.node(parent).right {
		idx = parent
		parent = t.node(parent).parent
	}
	return parent
}

func (t *treeOrderer) predecessor(idx uint32) uint32 {
	n := t.node(idx)
	if n.left != nullSlot {
		return t.max(n.left)
	}
	parent := n.parent
	for parent != nullSlot && idx == t.node(parent).left {
		idx = parent
		parent = t.node(parent).parent
	}
	return parent
}

func (t *treeOrderer) first() uint32 {
	if t.dir == Descending {
		return t.max(t.root)
	}
	return t.min(t.root)
}

func (t *treeOrderer) next(idx uint32) uint32 {
	if t.dir == Descending {
		return t.predecessor(idx)
	}
	return t.successor(idx)
}

func (t *treeOrderer) prev(idx uint32) uint32 {
	if t.dir == Descending {
		return t.successor(idx)
	}
	return t.predecessor(idx)
}
