package forces

import (
	"math"

	"github.com/ojrac/opensimplex-go"
)

// Flock defaults.
const (
	DefaultNeighborRadius  = 100
	DefaultSeparationRange = 30
	DefaultFlockMaxSpeed   = 300
)

// Flock computes boid steering from spatial-grid neighbors: cohesion
// toward the neighbor centroid, alignment toward the neighbor average
// velocity, and separation away from neighbors inside separationRange
// with magnitude inversely related to distance. An optional wander term
// perturbs each particle along a smooth noise field. The maxSpeed clamp
// is applied to the resulting velocity at integration time, not here.
type Flock struct {
	enabled          bool
	cohesionWeight   float32
	alignmentWeight  float32
	separationWeight float32
	separationRange  float32
	neighborRadius   float32
	maxSpeed         float32
	wanderWeight     float32

	noise opensimplex.Noise32
}

func NewFlock(seed int64) *Flock {
	return &Flock{
		cohesionWeight:   1,
		alignmentWeight:  1,
		separationWeight: 1,
		separationRange:  DefaultSeparationRange,
		neighborRadius:   DefaultNeighborRadius,
		maxSpeed:         DefaultFlockMaxSpeed,
		noise:            opensimplex.NewNormalized32(seed),
	}
}

func (f *Flock) Name() string            { return "flock" }
func (f *Flock) Enabled() bool           { return f.enabled }
func (f *Flock) SetEnabled(enabled bool) { f.enabled = enabled }

func (f *Flock) CohesionWeight() float32    { return f.cohesionWeight }
func (f *Flock) AlignmentWeight() float32   { return f.alignmentWeight }
func (f *Flock) SeparationWeight() float32  { return f.separationWeight }
func (f *Flock) SeparationRange() float32   { return f.separationRange }
func (f *Flock) NeighborRadius() float32    { return f.neighborRadius }
func (f *Flock) MaxSpeed() float32          { return f.maxSpeed }
func (f *Flock) WanderWeight() float32      { return f.wanderWeight }

func (f *Flock) SetCohesionWeight(w float32)   { f.cohesionWeight = w }
func (f *Flock) SetAlignmentWeight(w float32)  { f.alignmentWeight = w }
func (f *Flock) SetSeparationWeight(w float32) { f.separationWeight = w }
func (f *Flock) SetWanderWeight(w float32)     { f.wanderWeight = w }

// SetSeparationRange sets the distance under which separation kicks in.
func (f *Flock) SetSeparationRange(r float32) error {
	return setPositive(&f.separationRange, r, "separation range")
}

// SetNeighborRadius sets the neighborhood query radius.
func (f *Flock) SetNeighborRadius(r float32) error {
	return setPositive(&f.neighborRadius, r, "neighbor radius")
}

// SetMaxSpeed sets the velocity clamp applied by the integrator while
// flocking is enabled.
func (f *Flock) SetMaxSpeed(v float32) error {
	return setPositive(&f.maxSpeed, v, "max speed")
}

func (f *Flock) Apply(s *State, run Runner) {
	radiusSq := f.neighborRadius * f.neighborRadius
	sepRange := f.separationRange

	run(func(i0, i1 int, scratch *Scratch) {
		for i := i0; i < i1; i++ {
			p := &s.Particles[i]
			if skip(p) {
				continue
			}

			scratch.Neighbors = s.Grid.QueryRadiusInto(scratch.Neighbors[:0], s.Snap[i].X, s.Snap[i].Y, f.neighborRadius)

			var sumX, sumY, sumVX, sumVY float32
			var sepX, sepY float32
			count := 0
			for _, j := range scratch.Neighbors {
				if int(j) == i {
					continue
				}
				q := &s.Particles[j]
				if skip(q) {
					continue
				}

				dx := s.Snap[j].X - s.Snap[i].X
				dy := s.Snap[j].Y - s.Snap[i].Y
				distSq := dx*dx + dy*dy
				if distSq > radiusSq {
					continue
				}

				sumX += s.Snap[j].X
				sumY += s.Snap[j].Y
				sumVX += s.Snap[j].VX
				sumVY += s.Snap[j].VY
				count++

				if distSq < sepRange*sepRange && distSq > 1e-9 {
					dist := float32(math.Sqrt(float64(distSq)))
					// Away from the neighbor, stronger the closer it is.
					w := (sepRange - dist) / sepRange
					sepX -= dx / dist * w
					sepY -= dy / dist * w
				}
			}

			var ax, ay float32
			if count > 0 {
				inv := 1 / float32(count)
				ax += (sumX*inv - s.Snap[i].X) * f.cohesionWeight
				ay += (sumY*inv - s.Snap[i].Y) * f.cohesionWeight
				ax += (sumVX*inv - s.Snap[i].VX) * f.alignmentWeight
				ay += (sumVY*inv - s.Snap[i].VY) * f.alignmentWeight
				ax += sepX * f.separationWeight
				ay += sepY * f.separationWeight
			}

			if f.wanderWeight != 0 {
				angle := f.noise.Eval2(float32(i)*0.137, s.Time*0.5) * 2 * math.Pi
				ax += float32(math.Cos(float64(angle))) * f.wanderWeight
				ay += float32(math.Sin(float64(angle))) * f.wanderWeight
			}

			p.FX += p.Mass * ax
			p.FY += p.Mass * ay
		}
	})
}
