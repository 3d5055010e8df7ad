// Package engine owns the simulation orchestrator: it wires the
// particle store, spatial grid, force pipeline, constraint solver and
// trail system into a single rerunnable step function driven by an
// external frame loop. The step has no suspension points and no
// blocking I/O; cancellation is simply not calling Step again.
package engine

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cazala/party-sub008/forces"
	"github.com/cazala/party-sub008/joints"
	"github.com/cazala/party-sub008/particle"
	"github.com/cazala/party-sub008/spatial"
	"github.com/cazala/party-sub008/telemetry"
	"github.com/cazala/party-sub008/trail"
)

// Mode selects which pipeline drives particle motion.
type Mode string

const (
	ModeForces Mode = "forces"
	ModeTrail  Mode = "trail"
)

// ParseMode maps a config string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "forces", "":
		return ModeForces, nil
	case "trail":
		return ModeTrail, nil
	}
	return ModeForces, fmt.Errorf("engine: unknown mode %q", s)
}

// RenderSettings is opaque display configuration held for the viewer
// and round-tripped through the configuration snapshot. The engine
// never interprets it.
type RenderSettings struct {
	ColorMode    string
	CustomColor  string
	HueSpeed     float64
	ShowDensity  bool
	ShowVelocity bool
	GlowEffects  bool
}

// Engine defaults.
const (
	DefaultDT              = float32(1.0 / 60.0)
	DefaultCellSize        = float32(100)
	DefaultTrailResolution = 256
	DefaultCapacity        = 4096
	DefaultStatsWindowSec  = 5.0
	DefaultPerfWindow      = 60

	// Particles emitted per step while the pointer action is "emit".
	emitPerStep = 3
	emitSpeed   = float32(60)
)

// Options configures a new Simulation.
type Options struct {
	Width, Height   float32
	DT              float32 // 0 means DefaultDT
	CellSize        float32 // 0 means DefaultCellSize
	Seed            int64
	Mode            Mode // empty means ModeForces
	TrailResolution int  // 0 means DefaultTrailResolution
	Capacity        int  // 0 means DefaultCapacity
	StatsWindowSec  float64
	PerfWindow      int
}

// Simulation is the engine core. It is not re-entrant: a second Step
// must not begin before the prior one returns.
type Simulation struct {
	store    *particle.Store
	grid     *spatial.Grid
	pipeline *forces.Pipeline
	solver   *joints.Solver
	trailSys *trail.System
	mode     Mode

	pool      *workerPool
	perf      *telemetry.PerfCollector
	collector *telemetry.Collector
	events    *telemetry.EventLog
	rng       *rand.Rand

	width, height float32
	dt            float32
	speed         float32
	tick          int64
	time          float32

	snap         []forces.Snapshot
	speedScratch []float64

	frustumCulling                         bool
	cullMinX, cullMinY, cullMaxX, cullMaxY float32

	pointerX, pointerY float32
	pointerActive      bool

	render RenderSettings
}

// New creates a simulation covering a width x height world.
func New(opts Options) (*Simulation, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("engine: world size must be positive, got %vx%v", opts.Width, opts.Height)
	}
	if opts.DT == 0 {
		opts.DT = DefaultDT
	}
	if opts.DT < 0 {
		return nil, fmt.Errorf("engine: dt must be > 0, got %v", opts.DT)
	}
	if opts.CellSize == 0 {
		opts.CellSize = DefaultCellSize
	}
	if opts.Mode == "" {
		opts.Mode = ModeForces
	}
	if opts.Mode != ModeForces && opts.Mode != ModeTrail {
		return nil, fmt.Errorf("engine: unknown mode %q", opts.Mode)
	}
	if opts.TrailResolution == 0 {
		opts.TrailResolution = DefaultTrailResolution
	}
	if opts.Capacity == 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.StatsWindowSec == 0 {
		opts.StatsWindowSec = DefaultStatsWindowSec
	}
	if opts.PerfWindow == 0 {
		opts.PerfWindow = DefaultPerfWindow
	}

	grid, err := spatial.NewGrid(opts.Width, opts.Height, opts.CellSize)
	if err != nil {
		return nil, fmt.Errorf("engine: creating spatial grid: %w", err)
	}

	field, err := trail.NewField(opts.TrailResolution, opts.TrailResolution, opts.Width, opts.Height)
	if err != nil {
		return nil, fmt.Errorf("engine: creating trail field: %w", err)
	}

	pipeline := forces.NewPipeline(opts.Seed)
	if err := pipeline.Bounds().SetRect(0, 0, opts.Width, opts.Height); err != nil {
		return nil, fmt.Errorf("engine: setting bounds rect: %w", err)
	}

	s := &Simulation{
		store:    particle.NewStore(opts.Capacity),
		grid:     grid,
		pipeline: pipeline,
		solver:   joints.NewSolver(),
		trailSys: trail.NewSystem(field),
		mode:     opts.Mode,

		pool:      newWorkerPool(),
		perf:      telemetry.NewPerfCollector(opts.PerfWindow),
		collector: telemetry.NewCollector(opts.StatsWindowSec, opts.DT),
		events:    telemetry.NewEventLog(0),
		rng:       rand.New(rand.NewSource(opts.Seed)),

		width:  opts.Width,
		height: opts.Height,
		dt:     opts.DT,
		speed:  1,

		cullMaxX: opts.Width,
		cullMaxY: opts.Height,
	}
	return s, nil
}

func (s *Simulation) Store() *particle.Store     { return s.store }
func (s *Simulation) Grid() *spatial.Grid        { return s.grid }
func (s *Simulation) Pipeline() *forces.Pipeline { return s.pipeline }
func (s *Simulation) Solver() *joints.Solver     { return s.solver }
func (s *Simulation) Trail() *trail.System       { return s.trailSys }
func (s *Simulation) Mode() Mode                 { return s.mode }
func (s *Simulation) Size() (w, h float32)       { return s.width, s.height }
func (s *Simulation) DT() float32                { return s.dt }
func (s *Simulation) Speed() float32             { return s.speed }
func (s *Simulation) Tick() int64                { return s.tick }
func (s *Simulation) Time() float32              { return s.time }

func (s *Simulation) Perf() *telemetry.PerfCollector { return s.perf }

// SetMode switches the active pipeline between steps.
func (s *Simulation) SetMode(m Mode) error {
	if m != ModeForces && m != ModeTrail {
		return fmt.Errorf("engine: unknown mode %q", m)
	}
	s.mode = m
	return nil
}

// SetSpeed sets the simulation speed multiplier.
func (s *Simulation) SetSpeed(mult float32) error {
	if mult <= 0 {
		return fmt.Errorf("engine: speed multiplier must be > 0, got %v", mult)
	}
	s.speed = mult
	return nil
}

// SetPointer forwards the pointer state to the interaction force and
// keeps a copy for the emit action.
func (s *Simulation) SetPointer(x, y float32, active bool) {
	s.pointerX, s.pointerY = x, y
	s.pointerActive = active
	s.pipeline.Interaction().SetPointer(x, y, active)
}

func (s *Simulation) FrustumCulling() bool { return s.frustumCulling }

// SetFrustumCulling toggles exclusion of off-screen particles from
// force evaluation. A performance policy, not a correctness one.
func (s *Simulation) SetFrustumCulling(on bool) {
	s.frustumCulling = on
}

// SetCullRect sets the active region used when frustum culling is on.
func (s *Simulation) SetCullRect(minX, minY, maxX, maxY float32) error {
	if maxX <= minX || maxY <= minY {
		return fmt.Errorf("engine: cull rect must have positive extent")
	}
	s.cullMinX, s.cullMinY = minX, minY
	s.cullMaxX, s.cullMaxY = maxX, maxY
	return nil
}

func (s *Simulation) RenderSettings() RenderSettings {
	return s.render
}

func (s *Simulation) SetRenderSettings(r RenderSettings) {
	s.render = r
}

// Remove destroys a particle. Its joints are dropped lazily by the
// next constraint solve.
func (s *Simulation) Remove(ref particle.Ref) bool {
	if s.store.Remove(ref) {
		s.collector.RecordRemoval(1)
		s.events.Record(telemetry.NewRemoveEvent(s.tick, 1))
		return true
	}
	return false
}

// Clear removes every particle, joint and trail mark.
func (s *Simulation) Clear() {
	live := s.store.Live()
	s.collector.RecordRemoval(live)
	s.events.Record(telemetry.NewClearEvent(s.tick, live))
	s.store.Clear()
	s.trailSys.Field().Clear()
}

// DrainEvents returns the buffered lifecycle events and empties the
// log.
func (s *Simulation) DrainEvents() []telemetry.Event {
	return s.events.Drain()
}

// Close stops the worker pool. The simulation must not be stepped
// afterward.
func (s *Simulation) Close() {
	s.pool.stop()
}

// Step advances the simulation by one fixed tick: rebuild the spatial
// index, apply the force pipeline against per-module snapshots,
// integrate, relax joints, then advance the trail system in trail
// mode. Step always completes and leaves a consistent, steppable
// state, even with zero particles or every force disabled.
func (s *Simulation) Step() {
	s.perf.StartTick()
	dt := s.dt * s.speed

	if s.pointerActive && s.pipeline.Interaction().Action() == forces.ActionEmit {
		s.emitAtPointer()
	}

	slots := s.store.Slots()
	s.applyCulling(slots)
	s.ensureStepBuffers(len(slots))

	s.perf.StartPhase(telemetry.PhaseSpatialGrid)
	s.grid.Rebuild(slots)

	s.perf.StartPhase(telemetry.PhaseForces)
	state := &forces.State{
		Particles: slots,
		Snap:      s.snap,
		Grid:      s.grid,
		DT:        dt,
		Time:      s.time,
		MaxRadius: s.store.MaxRadius(),
	}
	s.pipeline.Apply(state, s.pool.Run)

	s.perf.StartPhase(telemetry.PhaseIntegrate)
	s.integrate(slots, dt)

	s.perf.StartPhase(telemetry.PhaseConstraints)
	s.solver.Relax(s.store)

	if s.mode == ModeTrail {
		s.perf.StartPhase(telemetry.PhaseTrail)
		s.trailSys.Step(slots)
	}

	s.perf.EndTick()
	s.tick++
	s.time += dt
}

// ensureStepBuffers sizes the snapshot buffer and worker pool range to
// the current slot count.
func (s *Simulation) ensureStepBuffers(n int) {
	if cap(s.snap) < n {
		s.snap = make([]forces.Snapshot, n)
	}
	s.snap = s.snap[:n]
	s.pool.setSlotCount(n)
}

// applyCulling marks particles outside the active region so the force
// pipeline bypasses them. They still integrate their last velocity.
func (s *Simulation) applyCulling(slots []particle.Particle) {
	if !s.frustumCulling {
		for i := range slots {
			slots[i].Culled = false
		}
		return
	}
	for i := range slots {
		p := &slots[i]
		if !p.Alive {
			continue
		}
		p.Culled = p.X+p.Radius < s.cullMinX || p.X-p.Radius > s.cullMaxX ||
			p.Y+p.Radius < s.cullMinY || p.Y-p.Radius > s.cullMaxY
	}
}

// emitAtPointer spawns a burst of particles at the pointer position
// with randomized outward velocities.
func (s *Simulation) emitAtPointer() {
	spawned := 0
	for i := 0; i < emitPerStep; i++ {
		angle := s.rng.Float64() * 2 * math.Pi
		jx := (s.rng.Float32() - 0.5) * 4
		jy := (s.rng.Float32() - 0.5) * 4
		_, err := s.store.Spawn(particle.Particle{
			X:      clamp32(s.pointerX+jx, 0, s.width),
			Y:      clamp32(s.pointerY+jy, 0, s.height),
			VX:     float32(math.Cos(angle)) * emitSpeed,
			VY:     float32(math.Sin(angle)) * emitSpeed,
			Mass:   DefaultSpawnMass,
			Radius: DefaultSpawnSize,
			Color:  particle.Color{R: 255, G: 255, B: 255, A: 255},
		})
		if err != nil {
			break
		}
		spawned++
	}
	if spawned > 0 {
		s.collector.RecordSpawn(spawned)
		s.events.Record(telemetry.NewEmitEvent(s.tick, spawned))
	}
}

// ShouldFlushStats reports whether the stats window has elapsed.
func (s *Simulation) ShouldFlushStats() bool {
	return s.collector.ShouldFlush(s.tick)
}

// FlushWindowStats samples end-of-window state and resets the event
// counters for the next window.
func (s *Simulation) FlushWindowStats() telemetry.WindowStats {
	slots := s.store.Slots()
	speeds := s.speedScratch[:0]
	for i := range slots {
		p := &slots[i]
		if !p.Alive {
			continue
		}
		speeds = append(speeds, float64(fastSqrt(p.VX*p.VX+p.VY*p.VY)))
	}
	s.speedScratch = speeds

	var trailTotal float64
	if s.mode == ModeTrail {
		trailTotal = s.trailSys.Field().Total()
	}

	return s.collector.Flush(
		s.tick,
		s.store.Live(),
		len(s.store.Joints()),
		speeds,
		s.grid.PoolStats().HitRate(),
		trailTotal,
	)
}
