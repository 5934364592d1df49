package systems

import (
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/tilephys/components"
	"github.com/pthm-cable/tilephys/geom"
	"github.com/pthm-cable/tilephys/quadtree"
)

func TestContacts(t *testing.T) {
	w := ecs.NewWorld()
	mapper := ecs.NewMap1[components.Mass](w)
	newEntity := func() ecs.Entity { return mapper.NewEntity(&components.Mass{Value: 1}) }

	tree, err := quadtree.New[ecs.Entity](geom.NewAABB(geom.V(-64, -64), geom.V(128, 128)), quadtree.DefaultParams())
	if err != nil {
		t.Fatal(err)
	}

	self := newEntity()
	selfEntry := tree.Insert(self, geom.NewAABB(geom.V(0, 0), geom.V(1, 1)))

	overlapping := newEntity()
	tree.Insert(overlapping, geom.NewAABB(geom.V(1.5, 0.5), geom.V(1, 1)))
	touching := newEntity()
	tree.Insert(touching, geom.NewAABB(geom.V(0, 2), geom.V(1, 1)))
	far := newEntity()
	tree.Insert(far, geom.NewAABB(geom.V(40, 40), geom.V(1, 1)))
	outside := newEntity()
	tree.Insert(outside, geom.NewAABB(geom.V(1, 0), geom.V(200, 1)))

	// The body's new box after moving right by 1.
	moved := geom.NewAABB(geom.V(1, 1), geom.V(1, 1))
	got := make(map[ecs.Entity]bool)
	for e := range Contacts(tree, selfEntry, moved) {
		got[e] = true
	}

	want := map[ecs.Entity]bool{overlapping: true}
	if len(got) != len(want) || !got[overlapping] {
		t.Errorf("contacts = %v, want only the overlapping body", got)
	}
	if got[self] {
		t.Error("body collided with itself")
	}
	if got[touching] {
		t.Error("touching boxes reported as a contact")
	}
}

func TestContactsIncludesUncontained(t *testing.T) {
	w := ecs.NewWorld()
	mapper := ecs.NewMap1[components.Mass](w)

	tree, err := quadtree.New[ecs.Entity](geom.NewAABB(geom.V(0, 0), geom.V(16, 16)), quadtree.DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	escaped := mapper.NewEntity(&components.Mass{Value: 1})
	tree.Insert(escaped, geom.NewAABB(geom.V(15, 15), geom.V(4, 4)))

	n := 0
	for range Contacts(tree, 0, geom.NewAABB(geom.V(17, 17), geom.V(1, 1))) {
		n++
	}
	if n != 1 {
		t.Errorf("contacts = %d, want 1", n)
	}
}

func TestPairSetDeduplicates(t *testing.T) {
	w := ecs.NewWorld()
	mapper := ecs.NewMap1[components.Mass](w)
	a := mapper.NewEntity(&components.Mass{Value: 1})
	b := mapper.NewEntity(&components.Mass{Value: 1})
	c := mapper.NewEntity(&components.Mass{Value: 1})

	set := NewPairSet()
	adds := []struct {
		pair [2]ecs.Entity
		want bool
	}{
		{[2]ecs.Entity{a, b}, true},
		{[2]ecs.Entity{b, a}, false},
		{[2]ecs.Entity{a, c}, true},
		{[2]ecs.Entity{a, b}, false},
		{[2]ecs.Entity{c, c}, false},
	}
	for i, add := range adds {
		if got := set.Add(EntityCollision{Entities: add.pair}); got != add.want {
			t.Errorf("add %d = %v, want %v", i, got, add.want)
		}
	}
	if set.Len() != 2 {
		t.Errorf("len = %d, want 2", set.Len())
	}
	for _, p := range set.Pairs() {
		if p.Entities[0].ID() > p.Entities[1].ID() {
			t.Errorf("pair %v not normalized", p)
		}
	}

	set.Reset()
	if set.Len() != 0 || !set.Add(EntityCollision{Entities: [2]ecs.Entity{b, a}}) {
		t.Error("reset did not clear the set")
	}
}
