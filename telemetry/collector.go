package telemetry

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int64
	dt                  float32

	windowStartTick int64

	// Event counters for current window
	spawned int
	removed int
}

// NewCollector creates a stats collector.
// windowDurationSec is the stats window length in simulation seconds, dt
// the seconds per tick.
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int64(windowDurationSec / float64(dt))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordSpawn records n particles spawned.
func (c *Collector) RecordSpawn(n int) {
	c.spawned += n
}

// RecordRemoval records n particles removed.
func (c *Collector) RecordRemoval(n int) {
	c.removed += n
}

// ShouldFlush returns true once the current window has elapsed.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// The caller provides the end-of-window samples: live and joint counts,
// per-particle speeds, the grid pool hit rate, and total trail intensity.
func (c *Collector) Flush(
	currentTick int64,
	liveCount, jointCount int,
	speeds []float64,
	poolHitRate float64,
	trailTotal float64,
) WindowStats {
	mean, p10, p50, p90 := ComputeSpeedStats(speeds)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),

		LiveCount:  liveCount,
		JointCount: jointCount,

		Spawned: c.spawned,
		Removed: c.removed,

		PoolHitRate: poolHitRate,

		SpeedMean: mean,
		SpeedP10:  p10,
		SpeedP50:  p50,
		SpeedP90:  p90,

		TrailTotal: trailTotal,
	}

	c.windowStartTick = currentTick
	c.spawned = 0
	c.removed = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int64 {
	return c.windowDurationTicks
}
