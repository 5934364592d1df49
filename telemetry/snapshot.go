package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds every body of a simulation so a run can be resumed or
// replayed from the same state. Tiles are not stored: the world is rebuilt
// from its generator and seed.
type Snapshot struct {
	Version   int    `json:"version"`
	Seed      int64  `json:"seed"`
	Generator string `json:"generator"`
	Step      int64  `json:"step"`

	Bodies []BodyRecord `json:"bodies"`
}

// BodyRecord holds one body's state.
type BodyRecord struct {
	ID   uint32 `json:"id"`
	Type string `json:"type"`

	X      float32 `json:"x"`
	Y      float32 `json:"y"`
	Width  float32 `json:"width"`
	Height float32 `json:"height"`
	VelX   float32 `json:"vel_x"`
	VelY   float32 `json:"vel_y"`
	Mass   float32 `json:"mass"`

	Grounded bool `json:"grounded,omitempty"`

	// Per-body overrides, absent when the body uses the global default.
	Gravity *[2]float32 `json:"gravity,omitempty"`
	Drag    *float32    `json:"drag,omitempty"`
}

// SaveSnapshot writes a snapshot to dir as snapshot_<step>.json.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("snapshot_%d.json", snapshot.Step))

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}
	return &snapshot, nil
}
