package systems

import (
	"errors"
	"math"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/tilephys/components"
	"github.com/pthm-cable/tilephys/geom"
)

type fakeBodies struct {
	world  *ecs.World
	mapper *ecs.Map1[components.Mass]
	state  map[ecs.Entity]BodyState
}

func newFakeBodies() *fakeBodies {
	w := ecs.NewWorld()
	return &fakeBodies{
		world:  w,
		mapper: ecs.NewMap1[components.Mass](w),
		state:  make(map[ecs.Entity]BodyState),
	}
}

func (f *fakeBodies) add(s BodyState) ecs.Entity {
	e := f.mapper.NewEntity(&components.Mass{Value: s.Mass})
	f.state[e] = s
	return e
}

func (f *fakeBodies) Body(e ecs.Entity) (BodyState, bool) {
	s, ok := f.state[e]
	return s, ok
}

func (f *fakeBodies) SetVelocity(e ecs.Entity, v geom.Vec2) {
	s := f.state[e]
	s.Velocity = v
	f.state[e] = s
}

func approxEqual(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-5
}

func TestExchangeMomentum(t *testing.T) {
	tests := []struct {
		name           string
		m1, v1, m2, v2 float32
		e              float32
		want1, want2   float32
	}{
		{"elastic equal masses swap", 1, 3, 1, -1, 1, -1, 3},
		{"inelastic equal masses stick", 1, 4, 1, 0, 0, 2, 2},
		{"elastic heavy target", 1, 2, 3, 0, 1, -1, 1},
		{"half restitution", 2, 1, 2, -1, 0.5, -0.5, 0.5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got1, got2 := ExchangeMomentum(tc.m1, tc.v1, tc.m2, tc.v2, tc.e)
			if !approxEqual(got1, tc.want1) || !approxEqual(got2, tc.want2) {
				t.Errorf("got (%v, %v), want (%v, %v)", got1, got2, tc.want1, tc.want2)
			}
			before := tc.m1*tc.v1 + tc.m2*tc.v2
			after := tc.m1*got1 + tc.m2*got2
			if !approxEqual(before, after) {
				t.Errorf("momentum %v -> %v", before, after)
			}
		})
	}
}

func TestCollisionAxis(t *testing.T) {
	a := geom.NewAABB(geom.V(0, 0), geom.V(2, 2))
	tests := []struct {
		name string
		b    geom.AABB
		want Axis
	}{
		{"side overlap", geom.NewAABB(geom.V(1.75, 0.5), geom.V(2, 1)), AxisX},
		{"top overlap", geom.NewAABB(geom.V(0.5, 1.5), geom.V(1, 2)), AxisY},
		{"apart horizontally", geom.NewAABB(geom.V(5, 0.5), geom.V(1, 1)), AxisX},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CollisionAxis(a, tc.b); got != tc.want {
				t.Errorf("axis = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMomentumExchangeResolve(t *testing.T) {
	t.Run("kinematic pair approaching", func(t *testing.T) {
		f := newFakeBodies()
		a := f.add(BodyState{Type: components.Kinematic, Mass: 1, Velocity: geom.V(2, 0.5),
			Bounds: geom.NewAABB(geom.V(0, 0), geom.V(1, 1))})
		b := f.add(BodyState{Type: components.Kinematic, Mass: 1, Velocity: geom.V(-2, 0),
			Bounds: geom.NewAABB(geom.V(0.9, 0), geom.V(1, 1))})

		MomentumExchange{Restitution: 1}.Resolve(f, EntityCollision{Entities: [2]ecs.Entity{a, b}})

		if got := f.state[a].Velocity; got != geom.V(-2, 0.5) {
			t.Errorf("a velocity = %v, want (-2, 0.5)", got)
		}
		if got := f.state[b].Velocity; got != geom.V(2, 0) {
			t.Errorf("b velocity = %v, want (2, 0)", got)
		}
	})

	t.Run("separating pair untouched", func(t *testing.T) {
		f := newFakeBodies()
		a := f.add(BodyState{Type: components.Kinematic, Mass: 1, Velocity: geom.V(-1, 0),
			Bounds: geom.NewAABB(geom.V(0, 0), geom.V(1, 1))})
		b := f.add(BodyState{Type: components.Kinematic, Mass: 1, Velocity: geom.V(1, 0),
			Bounds: geom.NewAABB(geom.V(0.9, 0), geom.V(1, 1))})

		MomentumExchange{Restitution: 1}.Resolve(f, EntityCollision{Entities: [2]ecs.Entity{a, b}})

		if f.state[a].Velocity != geom.V(-1, 0) || f.state[b].Velocity != geom.V(1, 0) {
			t.Errorf("velocities changed: %v, %v", f.state[a].Velocity, f.state[b].Velocity)
		}
	})

	t.Run("static partner reflects", func(t *testing.T) {
		f := newFakeBodies()
		floor := f.add(BodyState{Type: components.Static, Mass: 100, Bounds: geom.NewAABB(geom.V(-5, -1), geom.V(10, 1))})
		body := f.add(BodyState{Type: components.Kinematic, Mass: 1, Velocity: geom.V(1, -4),
			Bounds: geom.NewAABB(geom.V(0, -0.1), geom.V(1, 1))})

		MomentumExchange{Restitution: 0.5}.Resolve(f, EntityCollision{Entities: [2]ecs.Entity{floor, body}})

		if got := f.state[body].Velocity; got != geom.V(1, 2) {
			t.Errorf("velocity = %v, want (1, 2)", got)
		}
		if got := f.state[floor].Velocity; got != geom.Zero {
			t.Errorf("static partner moved: %v", got)
		}
	})
}

func TestDetectOnlyLeavesBodies(t *testing.T) {
	f := newFakeBodies()
	a := f.add(BodyState{Type: components.Kinematic, Mass: 1, Velocity: geom.V(2, 0), Bounds: geom.NewAABB(geom.V(0, 0), geom.V(1, 1))})
	b := f.add(BodyState{Type: components.Kinematic, Mass: 1, Velocity: geom.V(-2, 0), Bounds: geom.NewAABB(geom.V(0.5, 0), geom.V(1, 1))})

	DetectOnly{}.Resolve(f, EntityCollision{Entities: [2]ecs.Entity{a, b}})

	if f.state[a].Velocity != geom.V(2, 0) || f.state[b].Velocity != geom.V(-2, 0) {
		t.Error("detect-only changed velocities")
	}
}

func TestNewResponsePolicy(t *testing.T) {
	if p, err := NewResponsePolicy("detect", 0); err != nil || p != (DetectOnly{}) {
		t.Errorf("detect = %v, %v", p, err)
	}
	if p, err := NewResponsePolicy("momentum", 0.25); err != nil || p != (MomentumExchange{Restitution: 0.25}) {
		t.Errorf("momentum = %v, %v", p, err)
	}
	if _, err := NewResponsePolicy("bounce", 0); !errors.Is(err, ErrUnknownResponse) {
		t.Errorf("err = %v, want ErrUnknownResponse", err)
	}
}
