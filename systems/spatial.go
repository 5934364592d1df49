package systems

import (
	"iter"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/tilephys/geom"
	"github.com/pthm-cable/tilephys/quadtree"
)

// Index is the read side of the broad phase. *quadtree.QuadTree[ecs.Entity]
// implements it.
type Index interface {
	QueryBounds(b geom.AABB) iter.Seq[quadtree.Entry]
	Bounds(e quadtree.Entry) (geom.AABB, bool)
	Get(e quadtree.Entry) (ecs.Entity, bool)
}

// Contacts yields every indexed body other than self whose stored bounds
// strictly intersect b. The broad phase result is re-tested against the
// index's stored bounds, so touching boxes are not contacts.
func Contacts(idx Index, self quadtree.Entry, b geom.AABB) iter.Seq[ecs.Entity] {
	return func(yield func(ecs.Entity) bool) {
		for entry := range idx.QueryBounds(b) {
			if entry == self {
				continue
			}
			other, ok := idx.Bounds(entry)
			if !ok || !b.Intersects(other) {
				continue
			}
			e, ok := idx.Get(entry)
			if !ok {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// PairSet collects entity collisions, keeping one event per unordered pair.
type PairSet struct {
	seen  map[EntityCollision]struct{}
	pairs []EntityCollision
}

// NewPairSet creates an empty pair set.
func NewPairSet() *PairSet {
	return &PairSet{seen: make(map[EntityCollision]struct{})}
}

// Add records c unless the same pair was already added. It reports whether
// c was new.
func (s *PairSet) Add(c EntityCollision) bool {
	c = c.Normalized()
	if c.Entities[0] == c.Entities[1] {
		return false
	}
	if _, ok := s.seen[c]; ok {
		return false
	}
	s.seen[c] = struct{}{}
	s.pairs = append(s.pairs, c)
	return true
}

// Pairs returns the unique pairs in insertion order. The slice is reused by
// the next Reset.
func (s *PairSet) Pairs() []EntityCollision {
	return s.pairs
}

// Len returns the number of unique pairs.
func (s *PairSet) Len() int {
	return len(s.pairs)
}

// Reset empties the set, keeping its storage.
func (s *PairSet) Reset() {
	clear(s.seen)
	s.pairs = s.pairs[:0]
}
