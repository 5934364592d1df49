package telemetry

import (
	"testing"
	"time"

	"github.com/pthm-cable/tilephys/systems"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	// Simulate a few steps
	for i := 0; i < 5; i++ {
		pc.StartStep()
		pc.StartPhase(systems.PhaseIndexSync)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(systems.PhaseSweep)
		time.Sleep(200 * time.Microsecond)
		pc.EndStep()
	}

	stats := pc.Stats()

	// Verify we got timing data
	if stats.AvgStepDuration <= 0 {
		t.Error("expected positive average step duration")
	}

	// Verify phases are tracked
	if len(stats.PhaseAvg) == 0 {
		t.Error("expected phase averages to be populated")
	}

	if _, ok := stats.PhaseAvg[systems.PhaseIndexSync]; !ok {
		t.Error("expected index_sync phase to be tracked")
	}

	if _, ok := stats.PhaseAvg[systems.PhaseSweep]; !ok {
		t.Error("expected sweep phase to be tracked")
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5) // Small window

	// Fill window completely
	for i := 0; i < 10; i++ {
		pc.StartStep()
		pc.StartPhase(systems.PhaseIndexSync)
		pc.EndStep()
	}

	stats := pc.Stats()

	// Should have data
	if stats.AvgStepDuration <= 0 {
		t.Error("expected positive average step duration after window filled")
	}

	if stats.StepsPerSecond <= 0 {
		t.Error("expected positive steps per second")
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	// Simulate with uneven phase durations
	for i := 0; i < 5; i++ {
		pc.StartStep()
		pc.StartPhase("fast")
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase("slow")
		time.Sleep(100 * time.Microsecond)
		pc.EndStep()
	}

	stats := pc.Stats()

	fastPct := stats.PhasePct["fast"]
	slowPct := stats.PhasePct["slow"]

	// Slow phase should take more % than fast
	if slowPct <= fastPct {
		t.Errorf("expected slow phase (%v%%) > fast phase (%v%%)", slowPct, fastPct)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(10)

	stats := pc.Stats()

	// Empty collector should return zero values without panicking
	if stats.AvgStepDuration != 0 {
		t.Error("expected zero avg step duration for empty collector")
	}

	if stats.PhaseAvg == nil {
		t.Error("expected non-nil PhaseAvg map")
	}

	if stats.PhasePct == nil {
		t.Error("expected non-nil PhasePct map")
	}
}

func TestPerfCollector_FrameTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	// First call establishes baseline
	pc.RecordFrame()
	time.Sleep(16 * time.Millisecond) // ~60fps frame time
	// Second call measures duration
	pc.RecordFrame()

	stats := pc.Stats()

	if stats.FrameDuration < 15*time.Millisecond {
		t.Errorf("expected frame duration >= 15ms, got %v", stats.FrameDuration)
	}

	if stats.FPS <= 0 {
		t.Error("expected positive FPS")
	}

	// With 16ms frames, expect ~60 FPS (allow range 40-80)
	if stats.FPS < 40 || stats.FPS > 80 {
		t.Errorf("expected FPS between 40-80 with 16ms frame time, got %v", stats.FPS)
	}
}

func TestPerfCollector_NilIsNoop(t *testing.T) {
	var pc *PerfCollector
	pc.StartStep()
	pc.StartPhase(systems.PhaseForces)
	pc.EndStep()
	pc.RecordFrame()
}

func TestPerfStats_ToCSV(t *testing.T) {
	stats := PerfStats{
		AvgStepDuration: 1500 * time.Microsecond,
		PhasePct: map[string]float64{
			systems.PhaseSweep:     60,
			systems.PhaseIntegrate: 10,
		},
	}
	row := stats.ToCSV(300)
	if row.WindowEnd != 300 || row.AvgStepUS != 1500 {
		t.Errorf("row = %+v", row)
	}
	if row.SweepPct != 60 || row.IntegratePct != 10 || row.ForcesPct != 0 {
		t.Errorf("phase columns = %+v", row)
	}
}
