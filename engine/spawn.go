package engine

import (
	"fmt"
	"math"

	"github.com/cazala/party-sub008/particle"
	"github.com/cazala/party-sub008/telemetry"
)

// Spawn pattern shapes.
type Shape string

const (
	ShapeGrid   Shape = "grid"
	ShapeRandom Shape = "random"
	ShapeCircle Shape = "circle"
	ShapeDonut  Shape = "donut"
	ShapeSquare Shape = "square"
)

// ParseShape maps a config string to a Shape.
func ParseShape(s string) (Shape, error) {
	switch Shape(s) {
	case ShapeGrid, ShapeRandom, ShapeCircle, ShapeDonut, ShapeSquare:
		return Shape(s), nil
	case "":
		return ShapeGrid, nil
	}
	return ShapeGrid, fmt.Errorf("engine: unknown spawn shape %q", s)
}

// Initial velocity directions.
type Direction string

const (
	DirectionZero    Direction = "zero"
	DirectionRandom  Direction = "random"
	DirectionOutward Direction = "outward"
	DirectionInward  Direction = "inward"
	DirectionAngle   Direction = "angle"
)

// ParseDirection maps a config string to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case DirectionZero, DirectionRandom, DirectionOutward, DirectionInward, DirectionAngle:
		return Direction(s), nil
	case "":
		return DirectionZero, nil
	}
	return DirectionZero, fmt.Errorf("engine: unknown velocity direction %q", s)
}

// VelocityProfile describes the initial velocity of spawned particles.
type VelocityProfile struct {
	Speed     float32
	Direction Direction
	Angle     float32 // radians, used with DirectionAngle
}

// Spawn defaults.
const (
	DefaultSpawnSpacing = float32(25)
	DefaultSpawnSize    = float32(5)
	DefaultSpawnMass    = float32(1)
)

// SpawnOptions describes one spawn request.
type SpawnOptions struct {
	Count int
	Shape Shape

	// Pattern center; zero means the world center.
	CenterX, CenterY float32

	Spacing float32 // grid lattice pitch
	Radius  float32 // circle/donut/square extent; zero means min(w,h)/4
	Size    float32 // particle radius
	Mass    float32

	// Colors are cycled across spawned particles; empty means white.
	Colors []particle.Color

	Velocity VelocityProfile

	// Joints connects grid-shaped spawns into a lattice of distance
	// constraints at rest length Spacing.
	Joints    bool
	Stiffness float32 // joint stiffness; zero means 1
}

// Spawn creates particles in the requested pattern and returns their
// refs. Partial spawns are rolled back on error so the store is never
// left with half a pattern.
func (s *Simulation) Spawn(opts SpawnOptions) ([]particle.Ref, error) {
	if opts.Count < 0 {
		return nil, fmt.Errorf("engine: spawn count must be >= 0, got %d", opts.Count)
	}
	if opts.Count == 0 {
		return nil, nil
	}
	if opts.Shape == "" {
		opts.Shape = ShapeGrid
	}
	switch opts.Shape {
	case ShapeGrid, ShapeRandom, ShapeCircle, ShapeDonut, ShapeSquare:
	default:
		return nil, fmt.Errorf("engine: unknown spawn shape %q", opts.Shape)
	}
	if opts.Spacing == 0 {
		opts.Spacing = DefaultSpawnSpacing
	}
	if opts.Spacing < 0 {
		return nil, fmt.Errorf("engine: spawn spacing must be >= 0, got %v", opts.Spacing)
	}
	if opts.Size == 0 {
		opts.Size = DefaultSpawnSize
	}
	if opts.Size < 0 {
		return nil, fmt.Errorf("engine: particle size must be >= 0, got %v", opts.Size)
	}
	if opts.Mass == 0 {
		opts.Mass = DefaultSpawnMass
	}
	if opts.Mass < 0 {
		return nil, fmt.Errorf("engine: particle mass must be >= 0, got %v", opts.Mass)
	}
	if opts.CenterX == 0 && opts.CenterY == 0 {
		opts.CenterX = s.width / 2
		opts.CenterY = s.height / 2
	}
	if opts.Radius == 0 {
		opts.Radius = min32(s.width, s.height) / 4
	}
	if opts.Joints && opts.Shape != ShapeGrid {
		return nil, fmt.Errorf("engine: joints require a grid spawn, got shape %q", opts.Shape)
	}
	if opts.Stiffness == 0 {
		opts.Stiffness = 1
	}

	refs := make([]particle.Ref, 0, opts.Count)
	rollback := func() {
		for _, r := range refs {
			s.store.Remove(r)
		}
	}

	side := int(math.Ceil(math.Sqrt(float64(opts.Count))))

	for k := 0; k < opts.Count; k++ {
		x, y := s.spawnPosition(opts, k, side)
		vx, vy := s.spawnVelocity(opts, x, y)

		color := particle.Color{R: 255, G: 255, B: 255, A: 255}
		if len(opts.Colors) > 0 {
			color = opts.Colors[k%len(opts.Colors)]
		}

		ref, err := s.store.Spawn(particle.Particle{
			X: x, Y: y,
			VX: vx, VY: vy,
			Mass:   opts.Mass,
			Radius: opts.Size,
			Color:  color,
		})
		if err != nil {
			rollback()
			return nil, fmt.Errorf("engine: spawning particle %d: %w", k, err)
		}
		s.trailSys.Assign(int(ref.Index))
		refs = append(refs, ref)
	}

	if opts.Joints {
		if err := s.latticeJoints(refs, side, opts); err != nil {
			rollback()
			return nil, err
		}
	}

	s.collector.RecordSpawn(len(refs))
	if len(refs) > 0 {
		s.events.Record(telemetry.NewSpawnEvent(s.tick, len(refs)))
	}
	return refs, nil
}

// spawnPosition places particle k of the pattern.
func (s *Simulation) spawnPosition(opts SpawnOptions, k, side int) (x, y float32) {
	switch opts.Shape {
	case ShapeGrid:
		row, col := k/side, k%side
		origin := float32(side-1) * opts.Spacing / 2
		return opts.CenterX - origin + float32(col)*opts.Spacing,
			opts.CenterY - origin + float32(row)*opts.Spacing

	case ShapeRandom:
		return s.rng.Float32() * s.width, s.rng.Float32() * s.height

	case ShapeCircle:
		angle := 2 * math.Pi * float64(k) / float64(opts.Count)
		return opts.CenterX + opts.Radius*float32(math.Cos(angle)),
			opts.CenterY + opts.Radius*float32(math.Sin(angle))

	case ShapeDonut:
		angle := s.rng.Float64() * 2 * math.Pi
		r := opts.Radius * (0.5 + 0.5*s.rng.Float32())
		return opts.CenterX + r*float32(math.Cos(angle)),
			opts.CenterY + r*float32(math.Sin(angle))

	case ShapeSquare:
		// Evenly spaced along the perimeter, starting top-left.
		t := float32(k) / float32(opts.Count) * 4
		half := opts.Radius
		switch {
		case t < 1:
			return opts.CenterX - half + t*2*half, opts.CenterY - half
		case t < 2:
			return opts.CenterX + half, opts.CenterY - half + (t-1)*2*half
		case t < 3:
			return opts.CenterX + half - (t-2)*2*half, opts.CenterY + half
		default:
			return opts.CenterX - half, opts.CenterY + half - (t-3)*2*half
		}
	}
	return opts.CenterX, opts.CenterY
}

// spawnVelocity computes the initial velocity for a particle at (x, y).
func (s *Simulation) spawnVelocity(opts SpawnOptions, x, y float32) (vx, vy float32) {
	v := opts.Velocity
	if v.Speed == 0 || v.Direction == "" || v.Direction == DirectionZero {
		return 0, 0
	}

	switch v.Direction {
	case DirectionRandom:
		angle := s.rng.Float64() * 2 * math.Pi
		return v.Speed * float32(math.Cos(angle)), v.Speed * float32(math.Sin(angle))

	case DirectionOutward, DirectionInward:
		dx := x - opts.CenterX
		dy := y - opts.CenterY
		dist := fastSqrt(dx*dx + dy*dy)
		if dist < 1e-6 {
			return 0, 0
		}
		sign := float32(1)
		if v.Direction == DirectionInward {
			sign = -1
		}
		return sign * v.Speed * dx / dist, sign * v.Speed * dy / dist

	case DirectionAngle:
		return v.Speed * float32(math.Cos(float64(v.Angle))),
			v.Speed * float32(math.Sin(float64(v.Angle)))
	}
	return 0, 0
}

// latticeJoints connects a grid spawn into a cloth lattice: each
// particle joins its right and down neighbors at rest length Spacing.
func (s *Simulation) latticeJoints(refs []particle.Ref, side int, opts SpawnOptions) error {
	for k, ref := range refs {
		row, col := k/side, k%side
		if col+1 < side && k+1 < len(refs) {
			if err := s.store.AddJoint(ref, refs[k+1], opts.Spacing, opts.Stiffness); err != nil {
				return fmt.Errorf("engine: lattice joint: %w", err)
			}
		}
		if down := k + side; row+1 < side && down < len(refs) {
			if err := s.store.AddJoint(ref, refs[down], opts.Spacing, opts.Stiffness); err != nil {
				return fmt.Errorf("engine: lattice joint: %w", err)
			}
		}
	}
	return nil
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
