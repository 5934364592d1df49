// Package quadtree implements a region quadtree that maps opaque entries to
// axis-aligned bounding boxes. It is used as the broad phase of the physics
// simulation: queries return a conservative superset of candidates, and the
// caller performs the exact intersection test.
//
// A QuadTree is not safe for concurrent mutation. Any number of goroutines may
// query it as long as no Insert, Remove or SetBounds runs at the same time.
package quadtree

import (
	"errors"
	"fmt"
	"iter"

	"github.com/pthm-cable/tilephys/geom"
)

// ErrInvalidParams is returned by New when the split/merge thresholds are
// inconsistent.
var ErrInvalidParams = errors.New("quadtree: invalid params")

// Entry identifies one item inserted into a QuadTree. Entries are never
// reused within a tree and stay valid across SetBounds calls. The zero Entry
// is never issued.
type Entry uint64

// Params holds the structural thresholds of a tree.
type Params struct {
	MinEntries int // an inner node at or below this count merges into a leaf
	MaxEntries int // a leaf at or above this count splits on the next insert
	MaxDepth   int // leaves at this depth never split
}

// DefaultParams returns the thresholds used by the physics broad phase.
func DefaultParams() Params {
	return Params{MinEntries: 1, MaxEntries: 4, MaxDepth: 10}
}

// Validate checks MinEntries < MaxEntries and non-negative values.
func (p Params) Validate() error {
	if p.MinEntries < 0 || p.MaxEntries < 1 || p.MaxDepth < 0 {
		return fmt.Errorf("%w: negative threshold in %+v", ErrInvalidParams, p)
	}
	if p.MinEntries >= p.MaxEntries {
		return fmt.Errorf("%w: min entries %d must be below max entries %d",
			ErrInvalidParams, p.MinEntries, p.MaxEntries)
	}
	return nil
}

// QuadTree maps entries carrying a payload of type T to bounding boxes.
// Boxes that do not fit inside the root's fixed bounds are kept in a separate
// uncontained set and returned by every query.
type QuadTree[T any] struct {
	params      Params
	lastID      Entry
	items       map[Entry]T
	bounds      map[Entry]geom.AABB
	root        *node
	uncontained map[Entry]geom.AABB
}

// New creates an empty tree covering bounds.
func New[T any](bounds geom.AABB, params Params) (*QuadTree[T], error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &QuadTree[T]{
		params:      params,
		items:       make(map[Entry]T),
		bounds:      make(map[Entry]geom.AABB),
		root:        newLeaf(bounds),
		uncontained: make(map[Entry]geom.AABB),
	}, nil
}

// Params returns the tree's thresholds.
func (t *QuadTree[T]) Params() Params {
	return t.params
}

// RootBounds returns the fixed extent of the root node.
func (t *QuadTree[T]) RootBounds() geom.AABB {
	return t.root.bounds
}

// Len returns the number of live entries.
func (t *QuadTree[T]) Len() int {
	return len(t.items)
}

// Insert stores item with the given bounds and returns its new entry.
func (t *QuadTree[T]) Insert(item T, b geom.AABB) Entry {
	t.lastID++
	e := t.lastID
	t.items[e] = item
	t.insertEntry(e, b)
	return e
}

func (t *QuadTree[T]) insertEntry(e Entry, b geom.AABB) {
	t.bounds[e] = b
	if t.root.bounds.Contains(b) {
		t.root.insert(t.params, 0, e, b)
	} else {
		t.uncontained[e] = b
	}
}

// Remove deletes e and returns its payload and last bounds.
// Unknown entries report false.
func (t *QuadTree[T]) Remove(e Entry) (T, geom.AABB, bool) {
	b, ok := t.removeEntry(e)
	if !ok {
		var zero T
		return zero, geom.AABB{}, false
	}
	item := t.items[e]
	delete(t.items, e)
	return item, b, true
}

func (t *QuadTree[T]) removeEntry(e Entry) (geom.AABB, bool) {
	b, ok := t.bounds[e]
	if !ok {
		return geom.AABB{}, false
	}
	delete(t.bounds, e)
	if _, out := t.uncontained[e]; out {
		delete(t.uncontained, e)
		return b, true
	}
	t.root.remove(t.params, e, b)
	return b, true
}

// Get returns the payload stored for e.
func (t *QuadTree[T]) Get(e Entry) (T, bool) {
	item, ok := t.items[e]
	return item, ok
}

// Bounds returns the bounds last set for e.
func (t *QuadTree[T]) Bounds(e Entry) (geom.AABB, bool) {
	b, ok := t.bounds[e]
	return b, ok
}

// SetBounds replaces the bounds of e by removing and reinserting it, and
// returns the previous bounds. Unknown entries report false and are not
// inserted.
func (t *QuadTree[T]) SetBounds(e Entry, b geom.AABB) (geom.AABB, bool) {
	old, ok := t.removeEntry(e)
	if !ok {
		return geom.AABB{}, false
	}
	t.insertEntry(e, b)
	return old, true
}

// QueryBounds yields every uncontained entry and every entry stored in a node
// whose bounds intersect b (the root is always visited). The result is a
// superset of the entries whose bounds intersect b; callers must re-test.
// Each range over the returned sequence performs a fresh walk.
func (t *QuadTree[T]) QueryBounds(b geom.AABB) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for e := range t.uncontained {
			if !yield(e) {
				return
			}
		}

		stack := []*node{t.root}
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			for e := range n.entries {
				if !yield(e) {
					return
				}
			}
			if n.isLeaf() {
				continue
			}
			for _, c := range n.children {
				if c.bounds.Intersects(b) {
					stack = append(stack, c)
				}
			}
		}
	}
}

// QueryPoint yields every uncontained entry plus the entries stored along the
// path from the root to the leaf containing p.
func (t *QuadTree[T]) QueryPoint(p geom.Vec2) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for e := range t.uncontained {
			if !yield(e) {
				return
			}
		}

		for n := t.root; n != nil; {
			for e := range n.entries {
				if !yield(e) {
					return
				}
			}
			if n.isLeaf() {
				return
			}
			var next *node
			for _, c := range n.children {
				if c.bounds.ContainsPoint(p) {
					next = c
					break
				}
			}
			n = next
		}
	}
}

// Each calls fn for every live entry until fn returns false.
func (t *QuadTree[T]) Each(fn func(e Entry, item T, b geom.AABB) bool) {
	for e, item := range t.items {
		if !fn(e, item, t.bounds[e]) {
			return
		}
	}
}

// Stats describes the current shape of a tree.
type Stats struct {
	Entries     int
	Nodes       int
	Leaves      int
	MaxDepth    int
	Straddling  int // entries held by inner nodes
	Uncontained int
}

// Stats walks the tree and returns structural counters.
func (t *QuadTree[T]) Stats() Stats {
	s := Stats{Entries: len(t.items), Uncontained: len(t.uncontained)}
	t.root.stats(0, &s)
	return s
}

// EachNode calls fn for every node in depth-first order until fn returns
// false.
func (t *QuadTree[T]) EachNode(fn func(bounds geom.AABB, depth int, leaf bool) bool) {
	t.root.each(0, fn)
}
