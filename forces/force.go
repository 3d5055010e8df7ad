// Package forces implements the ordered force pipeline. Forces run in
// a fixed, caller-visible order (Gravity, Bounds, Collisions, Flock,
// Fluid, Interaction) because later forces assume earlier positional
// corrections, notably the Bounds reflection, have already been folded
// into the velocity used for this step's pass.
package forces

import (
	"fmt"

	"github.com/cazala/party-sub008/particle"
	"github.com/cazala/party-sub008/spatial"
)

// Snapshot is the frozen view of a particle's position and velocity that
// a force module reads for neighbors. It is refreshed between modules,
// never during one, so no module observes another's in-progress writes.
type Snapshot struct {
	X, Y   float32
	VX, VY float32
}

// Scratch holds per-worker reusable buffers for neighbor queries.
type Scratch struct {
	Neighbors []int32
}

// ChunkFunc processes a contiguous range of particle slots.
type ChunkFunc func(i0, i1 int, scratch *Scratch)

// Runner executes a ChunkFunc across all particle slots, possibly on
// several workers, and returns only after every chunk has completed.
// Successive Runner calls within one Apply therefore act as barriers:
// the fluid force uses one call for its density pass and another for its
// force pass.
type Runner func(fn ChunkFunc)

// State is the shared per-step view handed to each force module.
type State struct {
	Particles []particle.Particle
	Snap      []Snapshot
	Grid      *spatial.Grid
	DT        float32
	Time      float32 // accumulated simulation time, drives wander noise
	MaxRadius float32 // largest live particle radius, sizes collision queries
}

// Force is one unit of the pipeline. Each force owns only its own
// coefficients and writes into per-particle force accumulators;
// accumulation, not replacement, so forces compose additively. Bounds is
// the documented exception: its reflection is a positional correction
// written to position/velocity directly.
type Force interface {
	Name() string
	Enabled() bool
	SetEnabled(enabled bool)
	Apply(s *State, run Runner)
}

// Pipeline holds the six forces in their fixed application order.
type Pipeline struct {
	gravity     *Gravity
	bounds      *Bounds
	collisions  *Collisions
	flock       *Flock
	fluid       *Fluid
	interaction *Interaction

	ordered [6]Force
}

// NewPipeline creates a pipeline with all forces at their defaults.
// The seed drives the flock wander noise.
func NewPipeline(seed int64) *Pipeline {
	p := &Pipeline{
		gravity:     NewGravity(),
		bounds:      NewBounds(),
		collisions:  NewCollisions(),
		flock:       NewFlock(seed),
		fluid:       NewFluid(),
		interaction: NewInteraction(),
	}
	p.ordered = [6]Force{p.gravity, p.bounds, p.collisions, p.flock, p.fluid, p.interaction}
	return p
}

func (p *Pipeline) Gravity() *Gravity         { return p.gravity }
func (p *Pipeline) Bounds() *Bounds           { return p.bounds }
func (p *Pipeline) Collisions() *Collisions   { return p.collisions }
func (p *Pipeline) Flock() *Flock             { return p.flock }
func (p *Pipeline) Fluid() *Fluid             { return p.fluid }
func (p *Pipeline) Interaction() *Interaction { return p.interaction }

// Forces returns the forces in application order.
func (p *Pipeline) Forces() []Force {
	return p.ordered[:]
}

// Apply runs every enabled force in order. A disabled force is bypassed
// entirely: no snapshot refresh, no neighbor query, no allocation.
func (p *Pipeline) Apply(s *State, run Runner) {
	for _, f := range p.ordered {
		if !f.Enabled() {
			continue
		}
		refreshSnapshot(s, run)
		f.Apply(s, run)
	}
}

// refreshSnapshot copies current positions and velocities into the
// frozen view so the next module reads post-correction state from the
// previous module but never its own in-progress writes.
func refreshSnapshot(s *State, run Runner) {
	run(func(i0, i1 int, _ *Scratch) {
		for i := i0; i < i1; i++ {
			p := &s.Particles[i]
			s.Snap[i] = Snapshot{X: p.X, Y: p.Y, VX: p.VX, VY: p.VY}
		}
	})
}

// skip reports whether slot i takes part in force evaluation this step.
func skip(p *particle.Particle) bool {
	return !p.Alive || p.Culled
}

// setPositive assigns v to dst if v > 0, otherwise rejects it and leaves
// the prior value in place.
func setPositive(dst *float32, v float32, name string) error {
	if v <= 0 {
		return fmt.Errorf("forces: %s must be > 0, got %v", name, v)
	}
	*dst = v
	return nil
}
