package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultsLoad(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Physics.MaxQueuedSteps != 10 {
		t.Errorf("max_queued_steps = %d, want 10", cfg.Physics.MaxQueuedSteps)
	}
	if cfg.Index.MinEntries != 1 || cfg.Index.MaxEntries != 4 || cfg.Index.MaxDepth != 10 {
		t.Errorf("index = %+v, want 1/4/10", cfg.Index)
	}
	if got := cfg.Derived.Gravity.Y; math.Abs(float64(got)+9.81) > 1e-6 {
		t.Errorf("gravity.y = %v, want -9.81", got)
	}
	if d := cfg.Derived.Interval; d < 33*time.Millisecond || d > 34*time.Millisecond {
		t.Errorf("interval = %v, want ~33.3ms", d)
	}

	// Drag is derived from the terminal velocity: b = m*g/vt^2.
	want := 62 * 9.81 / (55.56 * 55.56)
	if math.Abs(float64(cfg.Derived.Drag)-want) > 1e-5 {
		t.Errorf("derived drag = %v, want %v", cfg.Derived.Drag, want)
	}
	if cfg.World.Flat.FillHeight == nil || *cfg.World.Flat.FillHeight != 64 {
		t.Errorf("flat.fill_height = %v, want 64", cfg.World.Flat.FillHeight)
	}
}

func TestParseMergesOverDefaults(t *testing.T) {
	cfg, err := Parse([]byte("physics:\n  drag: 0.5\n  response: momentum\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Derived.Drag != 0.5 {
		t.Errorf("explicit drag = %v, want 0.5", cfg.Derived.Drag)
	}
	if cfg.Physics.Response != "momentum" {
		t.Errorf("response = %q", cfg.Physics.Response)
	}
	// Untouched keys keep their defaults.
	if cfg.Physics.Friction != 0.8 {
		t.Errorf("friction = %v, want default 0.8", cfg.Physics.Friction)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero interval", "physics:\n  interval: 0\n"},
		{"negative interval", "physics:\n  interval: -1\n"},
		{"min equals max entries", "index:\n  min_entries: 4\n  max_entries: 4\n"},
		{"zero sweep step", "physics:\n  max_sweep_step: 0\n"},
		{"sweep step above one tile", "physics:\n  max_sweep_step: 2\n"},
		{"friction above one", "physics:\n  friction: 1.5\n"},
		{"unknown response", "physics:\n  response: bounce\n"},
		{"empty index bounds", "index:\n  bounds:\n    width: 0\n"},
		{"zero spawn mass", "spawn:\n  mass: 0\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("err = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Physics.Friction = 0.6

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Physics.Friction != 0.6 {
		t.Errorf("friction = %v, want 0.6", loaded.Physics.Friction)
	}
}
