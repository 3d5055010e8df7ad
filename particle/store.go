// Package particle owns all particle memory for the simulation. Particles
// live in a slot arena with a free list; identity is a stable slot index
// plus a generation counter, so joints and sensor state can reference
// particles without dangling after removal.
package particle

import "fmt"

// Color is an RGBA particle color.
type Color struct {
	R, G, B, A uint8
}

// Particle is a single point mass. The force accumulator (FX, FY) is
// written by force modules during a step and cleared by the integrator.
// Density and NearDensity are working values owned by the fluid pass.
type Particle struct {
	X, Y   float32
	VX, VY float32
	FX, FY float32
	Mass   float32
	Radius float32
	Color  Color

	Alive  bool
	Pinned bool
	// Culled marks the particle as outside the active region for this
	// step. Set by the engine before force evaluation.
	Culled bool

	Density     float32
	NearDensity float32
}

// InvMass returns the inverse mass, or 0 for pinned particles. Pinned
// particles take forces but never move.
func (p *Particle) InvMass() float32 {
	if p.Pinned || p.Mass <= 0 {
		return 0
	}
	return 1 / p.Mass
}

// Ref identifies a particle across removal and slot reuse. A Ref is stale
// once the slot's generation has advanced past Gen.
type Ref struct {
	Index int32
	Gen   uint16
}

// Joint is a distance constraint between two particles. It is relaxed
// iteratively by the solver rather than treated as a force, and dropped
// lazily once either endpoint ref goes stale.
type Joint struct {
	A, B       Ref
	RestLength float32
	Stiffness  float32
}

// Store is the arena of particle slots. No other component allocates
// particle memory.
type Store struct {
	slots  []Particle
	gens   []uint16
	free   []int32
	live   int
	joints []Joint
}

// NewStore creates a store with the given initial slot capacity.
func NewStore(capacity int) *Store {
	if capacity < 0 {
		capacity = 0
	}
	return &Store{
		slots:  make([]Particle, 0, capacity),
		gens:   make([]uint16, 0, capacity),
		free:   make([]int32, 0, 64),
		joints: make([]Joint, 0, 64),
	}
}

// Spawn places a particle into a free slot (or grows the arena) and
// returns its ref. Mass must be positive unless the particle is pinned;
// radius must be positive. Reused slots are fully overwritten, so force
// accumulators and fluid working values from the previous occupant never
// leak into the new particle.
func (s *Store) Spawn(p Particle) (Ref, error) {
	if p.Mass <= 0 && !p.Pinned {
		return Ref{}, fmt.Errorf("particle: mass must be > 0, got %v", p.Mass)
	}
	if p.Radius <= 0 {
		return Ref{}, fmt.Errorf("particle: radius must be > 0, got %v", p.Radius)
	}

	p.Alive = true
	p.FX, p.FY = 0, 0
	p.Culled = false
	p.Density, p.NearDensity = 0, 0

	var idx int32
	if n := len(s.free); n > 0 {
		idx = s.free[n-1]
		s.free = s.free[:n-1]
		s.slots[idx] = p
	} else {
		idx = int32(len(s.slots))
		s.slots = append(s.slots, p)
		s.gens = append(s.gens, 0)
	}
	s.live++
	return Ref{Index: idx, Gen: s.gens[idx]}, nil
}

// Remove frees the particle's slot. The slot index may be reused by a
// later Spawn; the generation bump invalidates outstanding refs. Removing
// an already-stale ref is a no-op.
func (s *Store) Remove(r Ref) bool {
	p := s.Get(r)
	if p == nil {
		return false
	}
	p.Alive = false
	s.gens[r.Index]++
	s.free = append(s.free, r.Index)
	s.live--
	return true
}

// Get resolves a ref to its particle, or nil if the ref is stale or out
// of range. Destruction is expected to race with solver passes across
// steps, so callers skip nil rather than treat it as an error.
func (s *Store) Get(r Ref) *Particle {
	if r.Index < 0 || int(r.Index) >= len(s.slots) {
		return nil
	}
	if s.gens[r.Index] != r.Gen {
		return nil
	}
	p := &s.slots[r.Index]
	if !p.Alive {
		return nil
	}
	return p
}

// At returns the particle in slot i regardless of liveness. Hot loops
// iterate Slots() directly and check Alive themselves.
func (s *Store) At(i int) *Particle {
	return &s.slots[i]
}

// RefAt returns the current ref for slot i.
func (s *Store) RefAt(i int) Ref {
	return Ref{Index: int32(i), Gen: s.gens[i]}
}

// Slots exposes the backing slot array for iteration. Dead slots have
// Alive=false.
func (s *Store) Slots() []Particle {
	return s.slots
}

// Live returns the number of live particles.
func (s *Store) Live() int {
	return s.live
}

// Len returns the slot count, live or not.
func (s *Store) Len() int {
	return len(s.slots)
}

// AddJoint connects two particles with a distance constraint.
func (s *Store) AddJoint(a, b Ref, restLength, stiffness float32) error {
	if restLength < 0 {
		return fmt.Errorf("particle: joint rest length must be >= 0, got %v", restLength)
	}
	if s.Get(a) == nil || s.Get(b) == nil {
		return fmt.Errorf("particle: joint endpoint is not a live particle")
	}
	s.joints = append(s.joints, Joint{A: a, B: b, RestLength: restLength, Stiffness: stiffness})
	return nil
}

// Joints returns the joint list. The solver compacts out joints with
// stale endpoints in place; use the returned slice within a single step.
func (s *Store) Joints() []Joint {
	return s.joints
}

// SetJoints replaces the joint list. Used by the solver after compaction.
func (s *Store) SetJoints(js []Joint) {
	s.joints = js
}

// Clear removes every particle and joint. Slot memory is retained for
// reuse but all generations advance, so every outstanding ref goes stale.
func (s *Store) Clear() {
	for i := range s.slots {
		if s.slots[i].Alive {
			s.slots[i].Alive = false
			s.gens[i]++
		}
	}
	s.free = s.free[:0]
	for i := range s.slots {
		s.free = append(s.free, int32(i))
	}
	s.live = 0
	s.joints = s.joints[:0]
}

// MaxRadius returns the largest radius among live particles. Collision
// queries use it to size their neighbor search.
func (s *Store) MaxRadius() float32 {
	var maxR float32
	for i := range s.slots {
		if s.slots[i].Alive && s.slots[i].Radius > maxR {
			maxR = s.slots[i].Radius
		}
	}
	return maxR
}
