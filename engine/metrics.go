package engine

import "log/slog"

// Metrics is the read-only surface the viewer polls every frame.
type Metrics struct {
	FPS            float64
	TicksPerSecond float64
	Live           int
	Joints         int
	GridCols       int
	GridRows       int
	PoolHitRate    float64
}

// Metrics samples the current engine state.
func (s *Simulation) Metrics() Metrics {
	perf := s.perf.Stats()
	cols, rows := s.grid.Dims()
	return Metrics{
		FPS:            perf.FPS,
		TicksPerSecond: perf.TicksPerSecond,
		Live:           s.store.Live(),
		Joints:         len(s.store.Joints()),
		GridCols:       cols,
		GridRows:       rows,
		PoolHitRate:    s.grid.PoolStats().HitRate(),
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (m Metrics) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("fps", m.FPS),
		slog.Float64("ticks_per_sec", m.TicksPerSecond),
		slog.Int("live", m.Live),
		slog.Int("joints", m.Joints),
		slog.Int("grid_cols", m.GridCols),
		slog.Int("grid_rows", m.GridRows),
		slog.Float64("pool_hit_rate", m.PoolHitRate),
	)
}
