package components

import (
	"math"
	"testing"

	"github.com/pthm-cable/tilephys/geom"
)

func TestDragTerminalVelocityRoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		vt, mass  float32
		g         float32
		wantCoeff float32
	}{
		{"default body", 55.56, 62, 9.81, 62 * 9.81 / (55.56 * 55.56)},
		{"light body", 10, 1, 9.81, 0.0981},
		{"heavy body", 100, 500, 9.81, 0.4905},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := DragFromTerminalVelocity(tc.vt, tc.mass, tc.g)
			if math.Abs(float64(d.Value-tc.wantCoeff)) > 1e-5 {
				t.Errorf("coefficient = %v, want %v", d.Value, tc.wantCoeff)
			}
			if got := d.TerminalVelocity(tc.mass, tc.g); math.Abs(float64(got-tc.vt)) > 1e-2 {
				t.Errorf("TerminalVelocity = %v, want %v", got, tc.vt)
			}
		})
	}
}

func TestDragEdgeCases(t *testing.T) {
	if d := DragFromTerminalVelocity(0, 62, 9.81); d.Value != 0 {
		t.Errorf("zero terminal velocity gave drag %v", d.Value)
	}
	if vt := (Drag{}).TerminalVelocity(62, 9.81); !math.IsInf(float64(vt), 1) {
		t.Errorf("zero drag terminal velocity = %v, want +Inf", vt)
	}
}

func TestForcesDrain(t *testing.T) {
	var f Forces
	f.Push(geom.V(1, 2))
	f.Push(geom.V(-3, 0.5))

	if got := f.Drain(); got != geom.V(-2, 2.5) {
		t.Errorf("Drain = %v, want (-2, 2.5)", got)
	}
	if len(f.List) != 0 {
		t.Errorf("list not cleared: %v", f.List)
	}
	if got := f.Drain(); got != geom.Zero {
		t.Errorf("second Drain = %v, want zero", got)
	}
}

func TestBodyTypeString(t *testing.T) {
	if Kinematic.String() != "kinematic" || Static.String() != "static" {
		t.Errorf("names = %q, %q", Kinematic, Static)
	}
	if BodyType(9).String() != "unknown" {
		t.Errorf("out of range type = %q", BodyType(9))
	}
}

func TestParseBodyType(t *testing.T) {
	for _, bt := range []BodyType{Kinematic, Static} {
		got, err := ParseBodyType(bt.String())
		if err != nil || got != bt {
			t.Errorf("ParseBodyType(%q) = %v, %v", bt, got, err)
		}
	}
	if _, err := ParseBodyType("dynamic"); err == nil {
		t.Error("expected an error for an unknown name")
	}
}
