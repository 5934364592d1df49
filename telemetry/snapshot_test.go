package telemetry

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	drag := float32(0.25)
	snapshot := &Snapshot{
		Version:   SnapshotVersion,
		Seed:      42,
		Generator: "terrain",
		Step:      1000,
		Bodies: []BodyRecord{
			{
				ID:       1,
				Type:     "kinematic",
				X:        1.5,
				Y:        100,
				Width:    1,
				Height:   2,
				VelX:     3,
				Mass:     62,
				Grounded: true,
				Gravity:  &[2]float32{0, -1.62},
				Drag:     &drag,
			},
			{
				ID:     2,
				Type:   "static",
				X:      -4,
				Y:      98,
				Width:  8,
				Height: 1,
				Mass:   1000,
			},
		},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if filepath.Base(path) != "snapshot_1000.json" {
		t.Errorf("unexpected filename: %s", filepath.Base(path))
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if loaded.Seed != 42 || loaded.Step != 1000 || loaded.Generator != "terrain" {
		t.Errorf("header = %+v", loaded)
	}
	if len(loaded.Bodies) != 2 {
		t.Fatalf("bodies = %d, want 2", len(loaded.Bodies))
	}

	b := loaded.Bodies[0]
	if b.X != 1.5 || b.Height != 2 || b.VelX != 3 || !b.Grounded {
		t.Errorf("body = %+v", b)
	}
	if b.Gravity == nil || b.Gravity[1] != -1.62 || b.Drag == nil || *b.Drag != 0.25 {
		t.Errorf("overrides lost: %+v", b)
	}
	if s := loaded.Bodies[1]; s.Gravity != nil || s.Drag != nil || s.Grounded {
		t.Errorf("static body gained fields: %+v", s)
	}
}

func TestLoadSnapshotRejects(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		data string
	}{
		{"bad json", "{not json"},
		{"wrong version", `{"version": 99, "bodies": []}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, tc.name+".json")
			if err := os.WriteFile(path, []byte(tc.data), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadSnapshot(path); err == nil {
				t.Error("expected an error")
			}
		})
	}

	if _, err := LoadSnapshot(filepath.Join(tmpDir, "missing.json")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
