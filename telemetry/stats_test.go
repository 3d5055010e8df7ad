package telemetry

import (
	"math"
	"testing"
)

func TestComputeSpeedStats(t *testing.T) {
	values := []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}

	mean, p10, p50, p90 := ComputeSpeedStats(values)

	if math.Abs(mean-55) > 1e-9 {
		t.Errorf("mean = %v, want 55", mean)
	}
	if p10 < 10 || p10 > 20 {
		t.Errorf("p10 = %v, want within [10, 20]", p10)
	}
	if p50 < 40 || p50 > 60 {
		t.Errorf("p50 = %v, want within [40, 60]", p50)
	}
	if p90 < 80 || p90 > 100 {
		t.Errorf("p90 = %v, want within [80, 100]", p90)
	}
}

func TestComputeSpeedStatsEmpty(t *testing.T) {
	mean, p10, p50, p90 := ComputeSpeedStats(nil)
	if mean != 0 || p10 != 0 || p50 != 0 || p90 != 0 {
		t.Errorf("empty input produced nonzero stats: %v %v %v %v", mean, p10, p50, p90)
	}
}

func TestCollectorWindowing(t *testing.T) {
	c := NewCollector(1.0, 1.0/60)

	if got := c.WindowDurationTicks(); got != 60 {
		t.Fatalf("window ticks = %d, want 60", got)
	}
	if c.ShouldFlush(30) {
		t.Error("flush signaled mid-window")
	}
	if !c.ShouldFlush(60) {
		t.Error("flush not signaled at window end")
	}
}

func TestCollectorFlushResetsCounters(t *testing.T) {
	c := NewCollector(1.0, 1.0/60)
	c.RecordSpawn(100)
	c.RecordRemoval(3)

	stats := c.Flush(60, 97, 12, []float64{5, 10, 15}, 0.9, 42.5)

	if stats.Spawned != 100 || stats.Removed != 3 {
		t.Errorf("spawned/removed = %d/%d, want 100/3", stats.Spawned, stats.Removed)
	}
	if stats.LiveCount != 97 || stats.JointCount != 12 {
		t.Errorf("live/joints = %d/%d, want 97/12", stats.LiveCount, stats.JointCount)
	}
	if math.Abs(stats.SimTimeSec-1.0) > 1e-6 {
		t.Errorf("sim_time = %v, want 1.0", stats.SimTimeSec)
	}

	// Next window starts clean.
	next := c.Flush(120, 97, 12, nil, 0.9, 0)
	if next.Spawned != 0 || next.Removed != 0 {
		t.Errorf("counters not reset: %d/%d", next.Spawned, next.Removed)
	}
	if next.WindowStartTick != 60 {
		t.Errorf("window start = %d, want 60", next.WindowStartTick)
	}
}
