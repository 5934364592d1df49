package quadtree

import "github.com/pthm-cable/tilephys/geom"

// node is either a leaf (children == nil) or an inner node with exactly four
// children. Inner nodes only keep entries that straddle a split line.
type node struct {
	bounds   geom.AABB
	entries  map[Entry]geom.AABB
	children *[4]*node
	length   int // entries at or below an inner node; unused for leaves
}

func newLeaf(bounds geom.AABB) *node {
	return &node{bounds: bounds, entries: make(map[Entry]geom.AABB)}
}

func (n *node) isLeaf() bool {
	return n.children == nil
}

// len returns the number of entries stored at or below n.
func (n *node) len() int {
	if n.isLeaf() {
		return len(n.entries)
	}
	return n.length
}

// insert places e under n. depth is the depth of n itself.
func (n *node) insert(p Params, depth int, e Entry, b geom.AABB) {
	if n.isLeaf() {
		if depth < p.MaxDepth && len(n.entries) >= p.MaxEntries {
			n.split(p, depth)
			n.insert(p, depth, e, b)
			return
		}
		n.entries[e] = b
		return
	}

	n.length++
	if child := n.childContaining(b); child != nil {
		child.insert(p, depth+1, e, b)
		return
	}
	n.entries[e] = b
}

// split turns a leaf into an inner node and pushes its entries down.
func (n *node) split(p Params, depth int) {
	old := n.entries
	quads := n.bounds.Quadrants()
	n.children = &[4]*node{
		newLeaf(quads[0]),
		newLeaf(quads[1]),
		newLeaf(quads[2]),
		newLeaf(quads[3]),
	}
	n.entries = make(map[Entry]geom.AABB)
	n.length = 0
	for e, b := range old {
		n.insert(p, depth, e, b)
	}
}

// childContaining returns the first child that fully contains b, or nil.
func (n *node) childContaining(b geom.AABB) *node {
	for _, c := range n.children {
		if c.bounds.Contains(b) {
			return c
		}
	}
	return nil
}

// remove deletes e, whose stored bounds are b, from n or its descendants.
// Entries always live under the first child containing them, so the search
// follows a single path.
func (n *node) remove(p Params, e Entry, b geom.AABB) bool {
	if _, ok := n.entries[e]; ok {
		delete(n.entries, e)
		if !n.isLeaf() {
			n.length--
			n.maybeMerge(p)
		}
		return true
	}
	if n.isLeaf() {
		return false
	}

	child := n.childContaining(b)
	if child == nil || !child.remove(p, e, b) {
		return false
	}
	n.length--
	n.maybeMerge(p)
	return true
}

// maybeMerge collapses an inner node into a leaf once it holds MinEntries
// or fewer entries. Drained entries are reinserted with depth reset to 0.
func (n *node) maybeMerge(p Params) {
	if n.isLeaf() || n.length > p.MinEntries {
		return
	}

	drained := make(map[Entry]geom.AABB, n.length)
	n.drainInto(drained)

	n.children = nil
	n.length = 0
	n.entries = make(map[Entry]geom.AABB, len(drained))
	for e, b := range drained {
		n.insert(p, 0, e, b)
	}
}

// drainInto moves every entry at or below n into dst, depth first.
func (n *node) drainInto(dst map[Entry]geom.AABB) {
	for e, b := range n.entries {
		dst[e] = b
	}
	if n.isLeaf() {
		return
	}
	for _, c := range n.children {
		c.drainInto(dst)
	}
}

// stats accumulates structural counters for n and its descendants.
func (n *node) stats(depth int, s *Stats) {
	s.Nodes++
	if depth > s.MaxDepth {
		s.MaxDepth = depth
	}
	if n.isLeaf() {
		s.Leaves++
		return
	}
	s.Straddling += len(n.entries)
	for _, c := range n.children {
		c.stats(depth+1, s)
	}
}

func (n *node) each(depth int, fn func(bounds geom.AABB, depth int, leaf bool) bool) bool {
	if !fn(n.bounds, depth, n.isLeaf()) {
		return false
	}
	if n.isLeaf() {
		return true
	}
	for _, c := range n.children {
		if !c.each(depth+1, fn) {
			return false
		}
	}
	return true
}
