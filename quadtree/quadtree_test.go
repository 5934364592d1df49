package quadtree

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/pthm-cable/tilephys/geom"
)

var worldBounds = geom.NewAABB(geom.V(0, 0), geom.V(16, 16))

func newTree(t testing.TB, p Params) *QuadTree[int] {
	t.Helper()
	tr, err := New[int](worldBounds, p)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return tr
}

// checkNode verifies containment and length bookkeeping below n and returns
// the number of entries found.
func checkNode(t *testing.T, n *node) int {
	t.Helper()
	count := len(n.entries)
	for e, b := range n.entries {
		if !n.bounds.Contains(b) {
			t.Errorf("entry %d %+v escapes node %+v", e, b, n.bounds)
		}
		if !n.isLeaf() && n.childContaining(b) != nil {
			t.Errorf("entry %d %+v kept by inner node but fits a child", e, b)
		}
	}
	if n.isLeaf() {
		return count
	}
	for _, c := range n.children {
		count += checkNode(t, c)
	}
	if n.len() != count {
		t.Errorf("node %+v length = %d, counted %d", n.bounds, n.len(), count)
	}
	return count
}

func randomBox(r *rand.Rand, area geom.AABB) geom.AABB {
	size := geom.V(0.1+r.Float32()*2, 0.1+r.Float32()*2)
	lo := geom.V(
		area.Left()+r.Float32()*(area.Width()-size.X),
		area.Bottom()+r.Float32()*(area.Height()-size.Y),
	)
	return geom.NewAABB(lo, size)
}

func TestNewRejectsInvalidParams(t *testing.T) {
	tests := []struct {
		name string
		p    Params
	}{
		{"min equals max", Params{MinEntries: 4, MaxEntries: 4, MaxDepth: 10}},
		{"min above max", Params{MinEntries: 5, MaxEntries: 4, MaxDepth: 10}},
		{"negative depth", Params{MinEntries: 1, MaxEntries: 4, MaxDepth: -1}},
		{"zero max", Params{MinEntries: 0, MaxEntries: 0, MaxDepth: 10}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New[int](worldBounds, tc.p)
			if !errors.Is(err, ErrInvalidParams) {
				t.Errorf("err = %v, want ErrInvalidParams", err)
			}
		})
	}
}

func TestInsertGetBounds(t *testing.T) {
	tr := newTree(t, DefaultParams())
	b := geom.NewAABB(geom.V(1, 1), geom.V(1, 2))

	e := tr.Insert(42, b)
	if e == 0 {
		t.Fatal("zero entry issued")
	}
	if got, ok := tr.Get(e); !ok || got != 42 {
		t.Errorf("Get = %v, %v", got, ok)
	}
	if got, ok := tr.Bounds(e); !ok || got != b {
		t.Errorf("Bounds = %+v, %v", got, ok)
	}
	if tr.Len() != 1 {
		t.Errorf("Len = %d, want 1", tr.Len())
	}

	e2 := tr.Insert(43, b)
	if e2 == e {
		t.Error("entries must be unique")
	}
}

func TestUnknownEntryMisses(t *testing.T) {
	tr := newTree(t, DefaultParams())
	e := tr.Insert(1, geom.NewAABB(geom.V(1, 1), geom.V(1, 1)))
	if _, _, ok := tr.Remove(e); !ok {
		t.Fatal("first remove should succeed")
	}

	if _, _, ok := tr.Remove(e); ok {
		t.Error("second remove should miss")
	}
	if _, ok := tr.Get(e); ok {
		t.Error("Get on removed entry should miss")
	}
	if _, ok := tr.Bounds(e); ok {
		t.Error("Bounds on removed entry should miss")
	}
	if _, ok := tr.SetBounds(e, worldBounds); ok {
		t.Error("SetBounds on removed entry should miss")
	}
	if tr.Len() != 0 {
		t.Errorf("Len = %d, SetBounds must not reinsert unknown entries", tr.Len())
	}
	if _, _, ok := tr.Remove(Entry(999)); ok {
		t.Error("never issued entry should miss")
	}
}

func TestSplitMergeRoundTrip(t *testing.T) {
	tr := newTree(t, DefaultParams())
	size := geom.V(1, 1)

	// One box per quadrant plus one more in the bottom-left.
	boxes := []geom.AABB{
		geom.NewAABB(geom.V(1, 1), size),
		geom.NewAABB(geom.V(9, 1), size),
		geom.NewAABB(geom.V(1, 9), size),
		geom.NewAABB(geom.V(9, 9), size),
		geom.NewAABB(geom.V(3, 3), size),
	}
	var entries []Entry
	for i, b := range boxes {
		entries = append(entries, tr.Insert(i, b))
		if i < 4 && !tr.root.isLeaf() {
			t.Fatalf("root split early after %d inserts", i+1)
		}
	}

	if tr.root.isLeaf() {
		t.Fatal("root should have split after MaxEntries+1 inserts")
	}
	for i, c := range tr.root.children {
		if !c.isLeaf() {
			t.Errorf("child %d should be a leaf", i)
		}
	}
	if len(tr.root.entries) != 0 {
		t.Errorf("root holds %d straddling entries, want 0", len(tr.root.entries))
	}
	if got := len(tr.root.children[0].entries); got != 2 {
		t.Errorf("bottom-left child holds %d entries, want 2", got)
	}
	checkNode(t, tr.root)

	// Remove down to MinEntries; the root collapses back into a leaf.
	for _, e := range entries[1:] {
		if _, _, ok := tr.Remove(e); !ok {
			t.Fatalf("Remove(%d) missed", e)
		}
		checkNode(t, tr.root)
	}
	if !tr.root.isLeaf() {
		t.Fatal("root should merge into a leaf at MinEntries")
	}
	if b, ok := tr.root.entries[entries[0]]; !ok || b != boxes[0] {
		t.Errorf("surviving entry lost in merge: %+v, %v", b, ok)
	}
}

func TestStraddlingEntryStaysOnInnerNode(t *testing.T) {
	tr := newTree(t, DefaultParams())
	for i := range 4 {
		tr.Insert(i, geom.NewAABB(geom.V(1, 1), geom.V(1, 1)))
	}
	// Crosses the vertical split line at x=8.
	straddle := tr.Insert(99, geom.NewAABB(geom.V(7, 2), geom.V(2, 1)))

	if _, ok := tr.root.entries[straddle]; !ok {
		t.Error("straddling entry should stay on the root")
	}
	checkNode(t, tr.root)
}

func TestMaxDepthStopsSplitting(t *testing.T) {
	tr := newTree(t, Params{MinEntries: 1, MaxEntries: 4, MaxDepth: 3})
	b := geom.NewAABB(geom.V(0.1, 0.1), geom.V(0.1, 0.1))
	for i := range 20 {
		tr.Insert(i, b)
	}

	s := tr.Stats()
	if s.MaxDepth != 3 {
		t.Errorf("MaxDepth = %d, want 3", s.MaxDepth)
	}
	if s.Entries != 20 {
		t.Errorf("Entries = %d, want 20", s.Entries)
	}
	checkNode(t, tr.root)
}

func TestContainmentAfterRandomOps(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	tr := newTree(t, DefaultParams())

	live := map[Entry]geom.AABB{}
	for i := range 500 {
		switch {
		case len(live) > 0 && r.IntN(4) == 0:
			for e := range live {
				tr.Remove(e)
				delete(live, e)
				break
			}
		case len(live) > 0 && r.IntN(3) == 0:
			for e := range live {
				b := randomBox(r, worldBounds)
				tr.SetBounds(e, b)
				live[e] = b
				break
			}
		default:
			b := randomBox(r, worldBounds)
			live[tr.Insert(i, b)] = b
		}
	}

	if got := checkNode(t, tr.root) + len(tr.uncontained); got != len(live) {
		t.Errorf("tree holds %d entries, want %d", got, len(live))
	}
	for e, want := range live {
		if got, ok := tr.Bounds(e); !ok || got != want {
			t.Errorf("Bounds(%d) = %+v, %v; want %+v", e, got, ok, want)
		}
	}
}

func TestQueryBoundsSound(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	tr := newTree(t, DefaultParams())

	live := map[Entry]geom.AABB{}
	for i := range 200 {
		b := randomBox(r, worldBounds)
		live[tr.Insert(i, b)] = b
	}

	for range 100 {
		q := randomBox(r, worldBounds)
		got := map[Entry]bool{}
		for e := range tr.QueryBounds(q) {
			got[e] = true
		}
		for e, b := range live {
			if b.Intersects(q) && !got[e] {
				t.Fatalf("query %+v missed entry %d %+v", q, e, b)
			}
		}
	}
}

func TestQueryIsLazyAndRestartable(t *testing.T) {
	tr := newTree(t, DefaultParams())
	for i := range 10 {
		tr.Insert(i, geom.NewAABB(geom.V(float32(i), 1), geom.V(0.5, 0.5)))
	}
	seq := tr.QueryBounds(worldBounds)

	count := func() int {
		n := 0
		for range seq {
			n++
		}
		return n
	}
	if first, second := count(), count(); first != 10 || second != 10 {
		t.Errorf("walks returned %d and %d entries, want 10 each", first, second)
	}

	seen := 0
	for range seq {
		seen++
		if seen == 3 {
			break
		}
	}
	if seen != 3 {
		t.Errorf("early break saw %d entries", seen)
	}
}

func TestQueryPoint(t *testing.T) {
	tr := newTree(t, DefaultParams())
	target := tr.Insert(0, geom.NewAABB(geom.V(12, 12), geom.V(1, 1)))
	for i := 1; i <= 8; i++ {
		tr.Insert(i, geom.NewAABB(geom.V(1, float32(i)), geom.V(0.5, 0.5)))
	}

	found := false
	for e := range tr.QueryPoint(geom.V(12.5, 12.5)) {
		if e == target {
			found = true
		}
		b, _ := tr.Bounds(e)
		if b.Right() <= 8 {
			t.Errorf("point query in top-right visited far entry %+v", b)
		}
	}
	if !found {
		t.Error("point query missed the containing entry")
	}
}

func TestUncontainedEntries(t *testing.T) {
	tr := newTree(t, DefaultParams())
	outside := tr.Insert(7, geom.NewAABB(geom.V(-5, -5), geom.V(2, 2)))
	crossing := tr.Insert(8, geom.NewAABB(geom.V(15, 15), geom.V(2, 2)))

	if s := tr.Stats(); s.Uncontained != 2 {
		t.Errorf("Uncontained = %d, want 2", s.Uncontained)
	}

	got := map[Entry]bool{}
	for e := range tr.QueryBounds(geom.NewAABB(geom.V(4, 4), geom.V(1, 1))) {
		got[e] = true
	}
	if !got[outside] || !got[crossing] {
		t.Error("uncontained entries must be returned by every query")
	}

	// Moving into the root extent makes the entry contained.
	if _, ok := tr.SetBounds(outside, geom.NewAABB(geom.V(2, 2), geom.V(1, 1))); !ok {
		t.Fatal("SetBounds missed")
	}
	if s := tr.Stats(); s.Uncontained != 1 {
		t.Errorf("Uncontained = %d after move, want 1", s.Uncontained)
	}

	item, b, ok := tr.Remove(crossing)
	if !ok || item != 8 || b.Left() != 15 {
		t.Errorf("Remove = %v, %+v, %v", item, b, ok)
	}
}

func TestRemoveAllCollapsesTree(t *testing.T) {
	r := rand.New(rand.NewPCG(5, 6))
	tr := newTree(t, DefaultParams())

	var entries []Entry
	for i := range 300 {
		entries = append(entries, tr.Insert(i, randomBox(r, worldBounds)))
	}
	for _, e := range entries {
		tr.Remove(e)
	}

	s := tr.Stats()
	if s.Entries != 0 || s.Nodes != 1 || s.Leaves != 1 {
		t.Errorf("empty tree stats = %+v", s)
	}
}

func BenchmarkInsert(b *testing.B) {
	r := rand.New(rand.NewPCG(7, 8))
	boxes := make([]geom.AABB, 1024)
	for i := range boxes {
		boxes[i] = randomBox(r, worldBounds)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tr, _ := New[int](worldBounds, DefaultParams())
		for j, box := range boxes {
			tr.Insert(j, box)
		}
	}
}

func BenchmarkQueryBounds(b *testing.B) {
	r := rand.New(rand.NewPCG(9, 10))
	tr, _ := New[int](worldBounds, DefaultParams())
	for i := range 1024 {
		tr.Insert(i, randomBox(r, worldBounds))
	}
	q := geom.NewAABB(geom.V(4, 4), geom.V(2, 2))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for range tr.QueryBounds(q) {
		}
	}
}

func TestEachNodeMatchesStats(t *testing.T) {
	tr := newTree(t, DefaultParams())
	r := rand.New(rand.NewPCG(7, 7))
	for i := range 40 {
		tr.Insert(i, randomBox(r, worldBounds))
	}

	st := tr.Stats()
	var nodes, leaves, deepest int
	tr.EachNode(func(b geom.AABB, depth int, leaf bool) bool {
		nodes++
		if leaf {
			leaves++
		}
		deepest = max(deepest, depth)
		if !worldBounds.Contains(b) {
			t.Errorf("node %+v outside root", b)
		}
		return true
	})
	if nodes != st.Nodes || leaves != st.Leaves || deepest != st.MaxDepth {
		t.Errorf("EachNode saw %d nodes, %d leaves, depth %d; Stats = %+v", nodes, leaves, deepest, st)
	}

	visited := 0
	tr.EachNode(func(geom.AABB, int, bool) bool {
		visited++
		return false
	})
	if visited != 1 {
		t.Errorf("EachNode continued after false: visited %d", visited)
	}
}
